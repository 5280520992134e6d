package types

import "strconv"

// ShardID identifies one partition of the ledger, 0..NumShards-1.
type ShardID int

func (s ShardID) String() string {
	return "shard-" + strconv.Itoa(int(s))
}
