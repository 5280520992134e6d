package types

import "github.com/verdant-labs/verdant/amount"

// BlockArchive persists accepted blocks and carbon-credit snapshots.
// The ledger treats it as optional bookkeeping: consensus validity never
// depends on what the archive holds.
type BlockArchive interface {
	SaveBlock(shard ShardID, block *Block) error
	GetBlock(shard ShardID, index int64) (*Block, error)
	SaveCarbonCredits(address string, credits amount.Amount) error
	Close() error
}
