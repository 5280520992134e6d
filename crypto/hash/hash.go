package hash

import (
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

const HashSize = 32

type Hash [HashSize]byte

func NewHash(data []byte) Hash {
	h := blake2b.Sum256(data)
	var hash Hash
	copy(hash[:], h[:HashSize])
	return hash
}

// NullHash is the sentinel predecessor of a genesis block.
func NullHash() Hash {
	return Hash{}
}

func FromString(str string) (Hash, error) {
	data, err := hex.DecodeString(str)
	if err != nil {
		return Hash{}, err
	}
	return FromBytes(data)
}

func FromBytes(data []byte) (Hash, error) {
	if len(data) != HashSize {
		return Hash{}, fmt.Errorf("hash should be %d bytes, but it is %v bytes", HashSize, len(data))
	}
	var h Hash
	copy(h[:], data[:HashSize])
	return h, nil
}

func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

func (h Hash) Bytes() []byte {
	return h[:]
}

func (h Hash) Equal(other Hash) bool {
	return h == other
}

// MeetsDifficulty reports whether the hex rendering of the hash starts
// with at least difficulty zero characters. Proof-of-work targets are
// expressed in leading hex zeros, so this checks nibbles directly
// instead of formatting the digest on the mining hot path.
func (h Hash) MeetsDifficulty(difficulty int) bool {
	if difficulty <= 0 {
		return true
	}
	if difficulty > HashSize*2 {
		return false
	}
	for i := 0; i < difficulty; i++ {
		nibble := h[i/2]
		if i%2 == 0 {
			nibble >>= 4
		} else {
			nibble &= 0x0f
		}
		if nibble != 0 {
			return false
		}
	}
	return true
}
