package crypto

import (
	"bytes"
	"errors"

	"github.com/cloudflare/circl/sign/mldsa/mldsa44"
	"github.com/fxamacker/cbor/v2"

	"github.com/verdant-labs/verdant/crypto/address"
)

type publicKey struct {
	pubKey *mldsa44.PublicKey
}

// PublicKeyFromBytes reconstructs a public key from its binary encoding.
func PublicKeyFromBytes(data []byte) (PublicKey, error) {
	pk := new(mldsa44.PublicKey)
	if err := pk.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return &publicKey{pubKey: pk}, nil
}

func (p *publicKey) Bytes() []byte {
	return p.pubKey.Bytes()
}

func (p *publicKey) Verify(data []byte, sig Signature) error {
	if sig == nil {
		return errors.New("signature cannot be nil")
	}
	if !mldsa44.Verify(p.pubKey, data, nil, sig.Bytes()) {
		return errors.New("invalid signature")
	}
	return nil
}

func (p *publicKey) Address() (*address.Address, error) {
	return address.FromPublicKeyBytes(p.Bytes())
}

func (p *publicKey) Marshal() ([]byte, error) {
	raw, err := p.pubKey.MarshalBinary()
	if err != nil {
		return nil, err
	}
	return cbor.Marshal(raw)
}

func (p *publicKey) Equal(other PublicKey) bool {
	if other == nil {
		return false
	}
	return bytes.Equal(p.Bytes(), other.Bytes())
}
