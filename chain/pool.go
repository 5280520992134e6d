package chain

import (
	"container/list"
	"sync"

	"github.com/willf/bloom"

	"github.com/verdant-labs/verdant/crypto/hash"
	"github.com/verdant-labs/verdant/types"
)

const (
	poolBloomItems    = 100_000
	poolBloomFailRate = 0.01
)

// pendingPool is a shard's FIFO queue of transactions awaiting inclusion
// in a candidate block. Insertion order is preserved; draining is atomic
// with respect to concurrent enqueues, so a transaction is never drained
// twice or dropped. The bloom filter is a cheap negative check in front
// of the exact duplicate lookup.
type pendingPool struct {
	mu     sync.Mutex
	order  *list.List
	byHash map[hash.Hash]*list.Element
	seen   *bloom.BloomFilter
}

type poolEntry struct {
	txHash hash.Hash
	tx     *types.Transaction
}

func newPendingPool() *pendingPool {
	return &pendingPool{
		order:  list.New(),
		byHash: make(map[hash.Hash]*list.Element),
		seen:   bloom.NewWithEstimates(poolBloomItems, poolBloomFailRate),
	}
}

func (p *pendingPool) Add(tx *types.Transaction) error {
	txHash, err := HashTransaction(tx)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.seen.Test(txHash.Bytes()) {
		if _, exists := p.byHash[txHash]; exists {
			return ErrDuplicateTransaction
		}
	}

	element := p.order.PushBack(&poolEntry{txHash: txHash, tx: tx})
	p.byHash[txHash] = element
	p.seen.Add(txHash.Bytes())
	return nil
}

// Contains reports whether a transaction with this hash is queued.
func (p *pendingPool) Contains(txHash hash.Hash) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.seen.Test(txHash.Bytes()) {
		return false
	}
	_, exists := p.byHash[txHash]
	return exists
}

// DrainAll removes and returns every pending transaction in insertion
// order. Returns nil when the pool is empty.
func (p *pendingPool) DrainAll() []*types.Transaction {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.order.Len() == 0 {
		return nil
	}

	drained := make([]*types.Transaction, 0, p.order.Len())
	for element := p.order.Front(); element != nil; element = element.Next() {
		drained = append(drained, element.Value.(*poolEntry).tx)
	}
	p.order.Init()
	p.byHash = make(map[hash.Hash]*list.Element)
	return drained
}

func (p *pendingPool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.order.Len()
}
