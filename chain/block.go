package chain

import (
	"fmt"
	"time"

	"github.com/verdant-labs/verdant/crypto/hash"
	"github.com/verdant-labs/verdant/types"
)

// NewBlock builds an unmined block at the given chain position. The
// timestamp is fixed here and survives re-hashing during the nonce
// search; the Merkle root commits to the transaction set in insertion
// order.
func NewBlock(index int64, prevHash hash.Hash, transactions []*types.Transaction) (*types.Block, error) {
	block := &types.Block{
		Index:        index,
		Timestamp:    time.Now().UnixNano(),
		PrevHash:     prevHash,
		Transactions: transactions,
	}

	root, err := types.TransactionsMerkleRoot(transactions)
	if err != nil {
		return nil, fmt.Errorf("failed to commit to transactions: %w", err)
	}
	block.MerkleRoot = root

	if err := block.ComputeHash(); err != nil {
		return nil, err
	}
	return block, nil
}

// NewGenesisBlock creates the first block of a shard chain. Its
// predecessor is the null-hash sentinel.
func NewGenesisBlock() *types.Block {
	block := &types.Block{
		Index:     0,
		Timestamp: time.Now().UnixNano(),
		PrevHash:  hash.NullHash(),
	}
	// Hashing a fresh block cannot fail; the payload is a fixed struct.
	_ = block.ComputeHash()
	return block
}
