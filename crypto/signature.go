package crypto

import (
	"bytes"

	"github.com/fxamacker/cbor/v2"
)

type signature struct {
	sig []byte
}

// SignatureFromBytes wraps raw signature bytes, e.g. ones carried on a
// transaction, so they can be verified against a public key.
func SignatureFromBytes(data []byte) Signature {
	return &signature{sig: data}
}

func (s *signature) Bytes() []byte {
	return s.sig
}

func (s *signature) Verify(pubKey PublicKey, data []byte) error {
	return pubKey.Verify(data, s)
}

func (s *signature) Marshal() ([]byte, error) {
	return cbor.Marshal(s.sig)
}

func (s *signature) Equal(other Signature) bool {
	if other == nil {
		return false
	}
	return bytes.Equal(s.Bytes(), other.Bytes())
}
