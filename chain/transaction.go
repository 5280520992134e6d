package chain

import (
	"errors"
	"fmt"

	"github.com/verdant-labs/verdant/crypto"
	"github.com/verdant-labs/verdant/crypto/hash"
	"github.com/verdant-labs/verdant/types"
)

// NetworkAddress is the reserved sender of reward transactions minted by
// the consensus engine. It never appears as a submitted sender.
const NetworkAddress = "network"

// HashTransaction digests the signable fields of a transaction. The
// result is both the transaction's identity and the message a signature
// covers.
func HashTransaction(tx *types.Transaction) (hash.Hash, error) {
	payload, err := tx.SignablePayload()
	if err != nil {
		return hash.Hash{}, fmt.Errorf("failed to serialize transaction for hashing: %w", err)
	}
	return hash.NewHash(payload), nil
}

// SignTransaction computes the transaction hash and signs it. Signing is
// one-shot: a transaction that already carries a signature is rejected.
func SignTransaction(tx *types.Transaction, priv crypto.PrivateKey) error {
	if priv == nil {
		return errors.New("cannot sign with a nil private key")
	}
	if len(tx.Signature) != 0 {
		return errors.New("transaction is already signed")
	}

	txHash, err := HashTransaction(tx)
	if err != nil {
		return err
	}
	sig, err := priv.Sign(txHash.Bytes())
	if err != nil {
		return fmt.Errorf("failed to sign transaction: %w", err)
	}
	tx.Signature = sig.Bytes()
	return nil
}

// VerifyTransactionSignature recomputes the transaction hash and checks
// the signature against the given public key. Any cryptographic
// mismatch, malformed signature bytes included, yields false rather than
// an error: rejecting an invalid signature is routine, not exceptional.
func VerifyTransactionSignature(tx *types.Transaction, pub crypto.PublicKey) bool {
	if pub == nil || len(tx.Signature) == 0 {
		return false
	}
	txHash, err := HashTransaction(tx)
	if err != nil {
		return false
	}
	return pub.Verify(txHash.Bytes(), crypto.SignatureFromBytes(tx.Signature)) == nil
}
