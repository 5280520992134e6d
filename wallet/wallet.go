package wallet

import (
	"errors"
	"fmt"

	"github.com/tyler-smith/go-bip39"

	"github.com/verdant-labs/verdant/amount"
	"github.com/verdant-labs/verdant/chain"
	"github.com/verdant-labs/verdant/crypto"
	"github.com/verdant-labs/verdant/types"
)

// Wallet holds a mnemonic-derived signing key and its address. The same
// mnemonic and passphrase always recover the same key.
type Wallet struct {
	Mnemonic string
	Address  string

	priv crypto.PrivateKey
	pub  crypto.PublicKey
}

// New generates a wallet from fresh 256-bit entropy.
func New() (*Wallet, error) {
	entropy, err := bip39.NewEntropy(256)
	if err != nil {
		return nil, fmt.Errorf("failed to generate entropy: %w", err)
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return nil, fmt.Errorf("failed to generate mnemonic: %w", err)
	}
	return FromMnemonic(mnemonic, "")
}

// FromMnemonic recovers a wallet from its mnemonic and passphrase.
func FromMnemonic(mnemonic, passphrase string) (*Wallet, error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, errors.New("invalid mnemonic")
	}
	seed := bip39.NewSeed(mnemonic, passphrase)

	priv, err := crypto.NewPrivateKeyFromSeed(seed)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key from seed: %w", err)
	}
	pub := priv.PublicKey()
	addr, err := pub.Address()
	if err != nil {
		return nil, fmt.Errorf("failed to derive address: %w", err)
	}

	return &Wallet{
		Mnemonic: mnemonic,
		Address:  addr.String(),
		priv:     priv,
		pub:      pub,
	}, nil
}

func (w *Wallet) PublicKey() crypto.PublicKey {
	return w.pub
}

// NewTransfer builds and signs a native-asset transfer from this wallet.
func (w *Wallet) NewTransfer(recipient string, amt amount.Amount) (*types.Transaction, error) {
	tx := types.NewTransaction(w.Address, recipient, amt)
	tx.SenderPubKey = w.pub.Bytes()
	if err := chain.SignTransaction(tx, w.priv); err != nil {
		return nil, err
	}
	return tx, nil
}

// Sign signs an externally constructed transaction whose sender is this
// wallet's address.
func (w *Wallet) Sign(tx *types.Transaction) error {
	if tx.Sender != w.Address {
		return fmt.Errorf("transaction sender %q is not this wallet", tx.Sender)
	}
	tx.SenderPubKey = w.pub.Bytes()
	return chain.SignTransaction(tx, w.priv)
}
