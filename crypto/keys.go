package crypto

import (
	"bytes"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/cloudflare/circl/sign/mldsa/mldsa44"
	"github.com/fxamacker/cbor/v2"
)

type privateKey struct {
	privKey *mldsa44.PrivateKey
}

// NewPrivateKey generates a fresh ML-DSA-44 signing key.
func NewPrivateKey() (PrivateKey, error) {
	_, key, err := mldsa44.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	return &privateKey{privKey: key}, nil
}

// NewPrivateKeyFromSeed derives a signing key deterministically from the
// first SeedSize bytes of seed. Wallets use this with a mnemonic-derived seed.
func NewPrivateKeyFromSeed(seed []byte) (PrivateKey, error) {
	if len(seed) < mldsa44.SeedSize {
		return nil, fmt.Errorf("seed too short: need %d bytes, got %d", mldsa44.SeedSize, len(seed))
	}
	var s [mldsa44.SeedSize]byte
	copy(s[:], seed[:mldsa44.SeedSize])
	_, key := mldsa44.NewKeyFromSeed(&s)
	return &privateKey{privKey: key}, nil
}

func (p *privateKey) Bytes() []byte {
	return p.privKey.Bytes()
}

func (p *privateKey) Sign(data []byte) (Signature, error) {
	if p.privKey == nil {
		return nil, errors.New("cannot sign with a nil private key")
	}
	sig := make([]byte, mldsa44.SignatureSize)
	if err := mldsa44.SignTo(p.privKey, data, nil, false, sig); err != nil {
		return nil, fmt.Errorf("failed to sign data: %w", err)
	}
	return &signature{sig: sig}, nil
}

func (p *privateKey) PublicKey() PublicKey {
	pub := p.privKey.Public().(*mldsa44.PublicKey)
	return &publicKey{pubKey: pub}
}

func (p *privateKey) Marshal() ([]byte, error) {
	raw, err := p.privKey.MarshalBinary()
	if err != nil {
		return nil, err
	}
	return cbor.Marshal(raw)
}

func (p *privateKey) Equal(other PrivateKey) bool {
	if other == nil {
		return false
	}
	return bytes.Equal(p.Bytes(), other.Bytes())
}
