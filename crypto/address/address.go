package address

import (
	"bytes"
	"fmt"

	"github.com/btcsuite/btcutil/bech32"
	"github.com/fxamacker/cbor/v2"

	"github.com/verdant-labs/verdant/crypto/hash"
)

const (
	// AddressWords is the number of 5-bit words in the data part of the
	// bech32 address: 20 hash bytes -> 160 bits / 5 bits per word.
	AddressWords = 32
	AddressHRP   = "vd"
)

// Address holds the 32 5-bit words of the bech32 data part.
type Address [AddressWords]byte

// FromPublicKeyBytes derives an Address from a serialized public key:
// the first 20 bytes of its BLAKE2b-256 digest, regrouped into 5-bit words.
func FromPublicKeyBytes(pubKeyBytes []byte) (*Address, error) {
	hashBytes := hash.NewHash(pubKeyBytes)

	words, err := bech32.ConvertBits(hashBytes[:20], 8, 5, true)
	if err != nil {
		return nil, fmt.Errorf("failed to convert public key hash to 5-bit words: %w", err)
	}
	if len(words) != AddressWords {
		return nil, fmt.Errorf("unexpected number of words after conversion: got %d, want %d", len(words), AddressWords)
	}

	var addr Address
	copy(addr[:], words)
	return &addr, nil
}

func NullAddress() *Address {
	return &Address{}
}

// Validate checks that a string is a well-formed bech32 address with the
// verdant HRP and the expected data length.
func Validate(addr string) bool {
	hrp, words, err := bech32.Decode(addr)
	if err != nil {
		return false
	}
	if hrp != AddressHRP {
		return false
	}
	return len(words) == AddressWords
}

func FromString(addr string) (*Address, error) {
	hrp, words, err := bech32.Decode(addr)
	if err != nil {
		return nil, fmt.Errorf("failed to decode bech32 address %q: %w", addr, err)
	}
	if hrp != AddressHRP {
		return nil, fmt.Errorf("invalid address HRP: expected %q, got %q", AddressHRP, hrp)
	}
	if len(words) != AddressWords {
		return nil, fmt.Errorf("invalid decoded data length: expected %d words, got %d", AddressWords, len(words))
	}

	var newAddr Address
	copy(newAddr[:], words)
	return &newAddr, nil
}

func (a *Address) Bytes() []byte {
	return a[:]
}

func (a *Address) String() string {
	encoded, err := bech32.Encode(AddressHRP, a.Bytes())
	if err != nil {
		// Only reachable with corrupted word data; surface it loudly.
		return fmt.Sprintf("<invalid address: %v>", err)
	}
	return encoded
}

func (a *Address) Marshal() ([]byte, error) {
	return cbor.Marshal(a[:])
}

func (a *Address) Unmarshal(data []byte) error {
	var slice []byte
	if err := cbor.Unmarshal(data, &slice); err != nil {
		return err
	}
	if len(slice) != AddressWords {
		return fmt.Errorf("unmarshaled data has incorrect length: expected %d, got %d", AddressWords, len(slice))
	}
	copy(a[:], slice)
	return nil
}

func (a *Address) Equal(other Address) bool {
	return bytes.Equal(a[:], other[:])
}
