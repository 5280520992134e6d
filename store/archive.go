package store

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/verdant-labs/verdant/amount"
	"github.com/verdant-labs/verdant/types"
)

const (
	archiveCacheSize     = 1024
	archiveCacheItems    = 100_000
	archiveCacheFailRate = 0.01
)

// BlockArchive persists accepted blocks and carbon-credit snapshots in
// Badger, with an LRU in front of block reads.
type BlockArchive struct {
	db    *Database
	cache *Cache
}

var _ types.BlockArchive = (*BlockArchive)(nil)

func NewBlockArchive(path string) (*BlockArchive, error) {
	db, err := NewDatabase(path)
	if err != nil {
		return nil, err
	}
	cache, err := NewCache(archiveCacheSize, archiveCacheItems, archiveCacheFailRate)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &BlockArchive{db: db, cache: cache}, nil
}

func blockKey(shard types.ShardID, index int64) string {
	return fmt.Sprintf("%s%d-%012d", BlockPrefix, shard, index)
}

func (a *BlockArchive) SaveBlock(shard types.ShardID, block *types.Block) error {
	data, err := block.Marshal()
	if err != nil {
		return fmt.Errorf("failed to serialize block for archival: %w", err)
	}
	key := blockKey(shard, block.Index)
	if err := a.db.Set([]byte(key), data); err != nil {
		return err
	}
	a.cache.Add(key, data)
	return nil
}

func (a *BlockArchive) GetBlock(shard types.ShardID, index int64) (*types.Block, error) {
	key := blockKey(shard, index)

	data, ok := a.cache.Get(key)
	if !ok {
		var err error
		data, err = a.db.Get([]byte(key))
		if err != nil {
			return nil, err
		}
		a.cache.Add(key, data)
	}

	block := new(types.Block)
	if err := block.Unmarshal(data); err != nil {
		return nil, fmt.Errorf("failed to decode archived block: %w", err)
	}
	return block, nil
}

func (a *BlockArchive) SaveCarbonCredits(address string, credits amount.Amount) error {
	data, err := cbor.Marshal(credits.ToNanoVRD())
	if err != nil {
		return err
	}
	return a.db.Set([]byte(CarbonPrefix+address), data)
}

func (a *BlockArchive) GetCarbonCredits(address string) (amount.Amount, error) {
	data, err := a.db.Get([]byte(CarbonPrefix + address))
	if err != nil {
		return 0, err
	}
	var nano int64
	if err := cbor.Unmarshal(data, &nano); err != nil {
		return 0, err
	}
	return amount.Amount(nano), nil
}

func (a *BlockArchive) Close() error {
	return a.db.Close()
}
