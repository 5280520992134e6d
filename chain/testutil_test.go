package chain

import (
	"encoding/binary"
	"testing"

	"github.com/btcsuite/btcutil/bech32"
	"github.com/stretchr/testify/require"

	"github.com/verdant-labs/verdant/crypto/address"
	"github.com/verdant-labs/verdant/types"
)

// testAddress returns a well-formed bech32 address routing to the
// wanted shard. The salt keeps distinct addresses distinct when a test
// needs several on the same shard.
func testAddress(t *testing.T, salt byte, want types.ShardID, numShards int) string {
	t.Helper()

	payload := make([]byte, 20)
	payload[19] = salt
	for i := uint64(0); ; i++ {
		binary.BigEndian.PutUint64(payload, i)
		words, err := bech32.ConvertBits(payload, 8, 5, true)
		require.NoError(t, err)
		addr, err := bech32.Encode(address.AddressHRP, words)
		require.NoError(t, err)
		if ShardIDForAddress(addr, numShards) == want {
			return addr
		}
	}
}
