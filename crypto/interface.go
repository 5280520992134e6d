package crypto

import "github.com/verdant-labs/verdant/crypto/address"

type PrivateKey interface {
	Bytes() []byte
	Sign(msg []byte) (Signature, error)
	PublicKey() PublicKey
	Marshal() ([]byte, error)
	Equal(other PrivateKey) bool
}

type PublicKey interface {
	Bytes() []byte
	Address() (*address.Address, error)
	Verify(data []byte, signature Signature) error
	Marshal() ([]byte, error)
	Equal(other PublicKey) bool
}

type Signature interface {
	Bytes() []byte
	Verify(pubKey PublicKey, data []byte) error
	Marshal() ([]byte, error)
	Equal(other Signature) bool
}
