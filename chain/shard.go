package chain

import (
	"fmt"
	"sync"

	"github.com/verdant-labs/verdant/crypto/hash"
	"github.com/verdant-labs/verdant/types"
)

// Shard is one independently-chained partition of the ledger: a
// hash-linked chain of blocks plus the pending-transaction pool feeding
// its next candidate. Appends are linearized under the shard lock, so
// block indices are strictly increasing within a shard.
type Shard struct {
	id      types.ShardID
	mu      sync.RWMutex
	chain   []*types.Block
	pending *pendingPool
}

func NewShard(id types.ShardID) *Shard {
	return &Shard{
		id:      id,
		chain:   []*types.Block{NewGenesisBlock()},
		pending: newPendingPool(),
	}
}

func (s *Shard) ID() types.ShardID {
	return s.id
}

// LatestBlock returns the chain tail.
func (s *Shard) LatestBlock() *types.Block {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.chain[len(s.chain)-1]
}

func (s *Shard) Height() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chain)
}

func (s *Shard) BlockAt(index int64) (*types.Block, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if index < 0 || index >= int64(len(s.chain)) {
		return nil, fmt.Errorf("%s has no block at index %d", s.id, index)
	}
	return s.chain[index], nil
}

// AppendBlock accepts a block only if it extends the current tail: its
// PrevHash must equal the tail hash and its index must equal the chain
// length. A rejected candidate is simply discarded; the caller may
// rebuild against the new tail.
func (s *Shard) AppendBlock(block *types.Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tail := s.chain[len(s.chain)-1]
	if !block.PrevHash.Equal(tail.Hash) {
		return fmt.Errorf("%w: %s prev hash %s does not match tail %s",
			ErrChainLinkage, s.id, block.PrevHash, tail.Hash)
	}
	if block.Index != int64(len(s.chain)) {
		return fmt.Errorf("%w: %s expected index %d, got %d",
			ErrChainLinkage, s.id, len(s.chain), block.Index)
	}

	s.chain = append(s.chain, block)
	return nil
}

// Enqueue adds a transaction to the pending pool. No validation happens
// here; the ledger validates before routing.
func (s *Shard) Enqueue(tx *types.Transaction) error {
	return s.pending.Add(tx)
}

func (s *Shard) PendingCount() int {
	return s.pending.Len()
}

// HasPending reports whether a transaction with this hash is already
// queued. The coordinator consults it before settling balances, so a
// resubmission never moves funds twice.
func (s *Shard) HasPending(txHash hash.Hash) bool {
	return s.pending.Contains(txHash)
}

// BuildCandidate drains the whole pending pool into an unmined block
// referencing the current tail. Returns (nil, nil) when nothing is
// pending: mining simply has nothing to do.
func (s *Shard) BuildCandidate() (*types.Block, error) {
	drained := s.pending.DrainAll()
	if len(drained) == 0 {
		return nil, nil
	}

	s.mu.RLock()
	tail := s.chain[len(s.chain)-1]
	index := int64(len(s.chain))
	s.mu.RUnlock()

	candidate, err := NewBlock(index, tail.Hash, drained)
	if err != nil {
		// Hand the transactions back rather than losing them.
		s.requeue(drained)
		return nil, err
	}
	return candidate, nil
}

func (s *Shard) requeue(txs []*types.Transaction) {
	for _, tx := range txs {
		// Duplicate errors cannot occur for freshly drained entries.
		_ = s.pending.Add(tx)
	}
}
