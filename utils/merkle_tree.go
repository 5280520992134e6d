package utils

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// ComputeMerkleRoot calculates the Merkle root of a list of byte slices
// using BLAKE2b-256. Levels with an odd node count are padded by
// duplicating the last node. An empty input yields a nil root.
func ComputeMerkleRoot(data [][]byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	hasher, err := blake2b.New256(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create blake2b hasher: %w", err)
	}

	var level [][]byte
	for _, item := range data {
		if item == nil {
			return nil, errors.New("cannot compute Merkle root with nil data item")
		}
		hasher.Reset()
		hasher.Write(item)
		level = append(level, hasher.Sum(nil))
	}

	for len(level) > 1 {
		if len(level)%2 != 0 {
			level = append(level, level[len(level)-1])
		}

		var nextLevel [][]byte
		for i := 0; i < len(level); i += 2 {
			hasher.Reset()
			hasher.Write(level[i])
			hasher.Write(level[i+1])
			nextLevel = append(nextLevel, hasher.Sum(nil))
		}
		level = nextLevel
	}

	return level[0], nil
}
