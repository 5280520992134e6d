package chain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdant-labs/verdant/amount"
	"github.com/verdant-labs/verdant/crypto/hash"
	"github.com/verdant-labs/verdant/types"
)

func TestNewGenesisBlock(t *testing.T) {
	genesis := NewGenesisBlock()

	assert.Equal(t, int64(0), genesis.Index)
	assert.True(t, genesis.PrevHash.Equal(hash.NullHash()))
	assert.False(t, genesis.Hash.Equal(hash.NullHash()))
	assert.Empty(t, genesis.Transactions)
}

func TestNewBlockCommitsToTransactions(t *testing.T) {
	amt, err := amount.NewAmount(5)
	require.NoError(t, err)
	txs := []*types.Transaction{
		types.NewTransaction("vd1a", "vd1b", amt),
		types.NewTransaction("vd1c", "vd1d", amt),
	}

	prev := hash.NewHash([]byte("previous"))
	block, err := NewBlock(3, prev, txs)
	require.NoError(t, err)

	assert.Equal(t, int64(3), block.Index)
	assert.True(t, block.PrevHash.Equal(prev))
	assert.NotEmpty(t, block.MerkleRoot)

	root, err := types.TransactionsMerkleRoot(txs)
	require.NoError(t, err)
	assert.Equal(t, root, block.MerkleRoot)
}

func TestComputeHashTracksMutations(t *testing.T) {
	amt, err := amount.NewAmount(1)
	require.NoError(t, err)
	block, err := NewBlock(1, hash.NewHash([]byte("prev")), []*types.Transaction{
		types.NewTransaction("vd1a", "vd1b", amt),
	})
	require.NoError(t, err)

	initial := block.Hash

	// Mutating the nonce invalidates the stored hash until recomputed.
	block.Nonce++
	require.NoError(t, block.ComputeHash())
	assert.False(t, block.Hash.Equal(initial))

	block.Nonce--
	require.NoError(t, block.ComputeHash())
	assert.True(t, block.Hash.Equal(initial))

	// The energy source is part of the digest too.
	block.EnergySource = types.Solar
	require.NoError(t, block.ComputeHash())
	assert.False(t, block.Hash.Equal(initial))
}

func TestTimestampStableAcrossRehash(t *testing.T) {
	block, err := NewBlock(1, hash.NewHash([]byte("prev")), nil)
	require.NoError(t, err)

	ts := block.Timestamp
	block.Nonce = 42
	require.NoError(t, block.ComputeHash())
	assert.Equal(t, ts, block.Timestamp)
}
