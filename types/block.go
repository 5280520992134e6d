package types

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/verdant-labs/verdant/crypto/hash"
	"github.com/verdant-labs/verdant/utils"
)

// EnergySource is the renewable source a miner attributes a block to.
// It feeds carbon-credit accrual and is part of the proof-of-work input.
type EnergySource string

const (
	Solar      EnergySource = "solar"
	Wind       EnergySource = "wind"
	Hydro      EnergySource = "hydro"
	Geothermal EnergySource = "geothermal"
)

// EnergySources returns the fixed enumeration miners choose from.
func EnergySources() []EnergySource {
	return []EnergySource{Solar, Wind, Hydro, Geothermal}
}

func (e EnergySource) Valid() bool {
	switch e {
	case Solar, Wind, Hydro, Geothermal:
		return true
	}
	return false
}

// CreditMultiplier scales the base carbon credit awarded per mined block.
func (e EnergySource) CreditMultiplier() float64 {
	switch e {
	case Solar:
		return 1.2
	case Wind:
		return 1.1
	case Hydro:
		return 1.0
	case Geothermal:
		return 1.3
	}
	return 0
}

// Block is an ordered container of transactions linked to its predecessor
// by hash. Immutable once appended to a shard chain; during mining only
// Nonce and EnergySource change, and the hash must be recomputed after
// every such mutation.
type Block struct {
	Index        int64          `cbor:"1,keyasint"`
	Timestamp    int64          `cbor:"2,keyasint"`
	PrevHash     hash.Hash      `cbor:"3,keyasint"`
	MerkleRoot   []byte         `cbor:"4,keyasint"`
	Nonce        uint64         `cbor:"5,keyasint"`
	EnergySource EnergySource   `cbor:"6,keyasint"`
	Transactions []*Transaction `cbor:"7,keyasint"`
	Hash         hash.Hash      `cbor:"8,keyasint"`
}

func (b *Block) Marshal() ([]byte, error) {
	return cbor.Marshal(b)
}

func (b *Block) Unmarshal(data []byte) error {
	return cbor.Unmarshal(data, b)
}

// sealablePayload is the canonical encoding of every field except the
// hash itself.
func (b *Block) sealablePayload() ([]byte, error) {
	sealed := *b
	sealed.Hash = hash.NullHash()
	return cbor.Marshal(&sealed)
}

// ComputeHash recomputes the block hash from the current field values.
// The mining loop must call it after every nonce or energy-source
// mutation; the hash is never refreshed implicitly on read.
func (b *Block) ComputeHash() error {
	payload, err := b.sealablePayload()
	if err != nil {
		return fmt.Errorf("failed to serialize block for hashing: %w", err)
	}
	b.Hash = hash.NewHash(payload)
	return nil
}

// TransactionsMerkleRoot commits to an ordered transaction set. Both
// block construction and proof verification derive it independently, so
// a block cannot smuggle transactions its Merkle root does not cover.
func TransactionsMerkleRoot(txs []*Transaction) ([]byte, error) {
	if len(txs) == 0 {
		return nil, nil
	}
	txData := make([][]byte, 0, len(txs))
	for _, tx := range txs {
		txBytes, err := tx.Marshal()
		if err != nil {
			return nil, fmt.Errorf("failed to serialize transaction: %w", err)
		}
		txData = append(txData, txBytes)
	}
	return utils.ComputeMerkleRoot(txData)
}
