package consensus

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/verdant-labs/verdant/amount"
	"github.com/verdant-labs/verdant/crypto/hash"
	"github.com/verdant-labs/verdant/types"
)

const testMiner = "vd1testminer"

func testParams() Params {
	p := DefaultParams()
	p.InitialDifficulty = 1
	return p
}

func candidateBlock(t *testing.T) *types.Block {
	t.Helper()

	amt, err := amount.NewAmount(10)
	require.NoError(t, err)
	txs := []*types.Transaction{types.NewTransaction("vd1sender", "vd1recipient", amt)}

	root, err := types.TransactionsMerkleRoot(txs)
	require.NoError(t, err)

	return &types.Block{
		Index:        1,
		Timestamp:    time.Now().UnixNano(),
		PrevHash:     hash.NullHash(),
		MerkleRoot:   root,
		Transactions: txs,
	}
}

func TestNewEngineSanitizesParams(t *testing.T) {
	e := NewEngine(Params{}, nil)

	assert.Equal(t, 1, e.Difficulty())
	assert.Equal(t, 1, e.params.AdjustmentInterval)
	assert.Equal(t, int64(1), e.params.HalvingInterval)
}

func TestMineProducesVerifiableBlock(t *testing.T) {
	e := NewEngine(testParams(), zap.NewNop())
	block := candidateBlock(t)

	require.NoError(t, e.Mine(context.Background(), block, testMiner))

	assert.True(t, block.EnergySource.Valid())
	assert.True(t, block.Hash.MeetsDifficulty(1))
	assert.True(t, e.VerifyBlock(block))
	assert.Equal(t, int64(1), e.BlocksMined())
}

func TestMineWithSourceDeterministic(t *testing.T) {
	first := candidateBlock(t)
	second := *first
	second.Transactions = first.Transactions

	e1 := NewEngine(testParams(), zap.NewNop())
	e2 := NewEngine(testParams(), zap.NewNop())
	require.NoError(t, e1.MineWithSource(context.Background(), first, testMiner, types.Hydro))
	require.NoError(t, e2.MineWithSource(context.Background(), &second, testMiner, types.Hydro))

	assert.Equal(t, first.Nonce, second.Nonce)
	assert.True(t, first.Hash.Equal(second.Hash))
}

func TestMineWithSourceRejectsUnknownSource(t *testing.T) {
	e := NewEngine(testParams(), zap.NewNop())

	err := e.MineWithSource(context.Background(), candidateBlock(t), testMiner, "coal")
	assert.Error(t, err)
}

func TestMineCancellation(t *testing.T) {
	p := testParams()
	// Out of reach for the nonce search in any realistic time.
	p.InitialDifficulty = 20
	e := NewEngine(p, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := e.Mine(ctx, candidateBlock(t), testMiner)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int64(0), e.BlocksMined())
}

func TestVerifyBlockRejectsTampering(t *testing.T) {
	e := NewEngine(testParams(), zap.NewNop())
	block := candidateBlock(t)
	require.NoError(t, e.MineWithSource(context.Background(), block, testMiner, types.Solar))
	require.True(t, e.VerifyBlock(block))

	t.Run("nil block", func(t *testing.T) {
		assert.False(t, e.VerifyBlock(nil))
	})

	t.Run("invalid energy source", func(t *testing.T) {
		tampered := *block
		tampered.EnergySource = "coal"
		assert.False(t, e.VerifyBlock(&tampered))
	})

	t.Run("stale hash after nonce change", func(t *testing.T) {
		tampered := *block
		tampered.Nonce++
		assert.False(t, e.VerifyBlock(&tampered))
	})

	t.Run("smuggled transaction", func(t *testing.T) {
		amt, err := amount.NewAmount(1)
		require.NoError(t, err)
		tampered := *block
		tampered.Transactions = append([]*types.Transaction{}, block.Transactions...)
		tampered.Transactions = append(tampered.Transactions, types.NewTransaction("vd1x", "vd1y", amt))
		assert.False(t, e.VerifyBlock(&tampered))
	})

	t.Run("forged hash", func(t *testing.T) {
		tampered := *block
		tampered.Hash = hash.NullHash()
		assert.False(t, e.VerifyBlock(&tampered))
	})
}

func TestObserveBlockTimeRetargeting(t *testing.T) {
	p := testParams()
	p.InitialDifficulty = 3
	p.AdjustmentInterval = 4
	p.TargetBlockTime = 10 * time.Second
	e := NewEngine(p, zap.NewNop())

	// Three observations leave the window unfilled.
	for i := 0; i < 3; i++ {
		e.ObserveBlockTime(time.Second)
	}
	assert.Equal(t, 3, e.Difficulty())

	// The fourth fills the window; fast blocks raise the difficulty.
	e.ObserveBlockTime(time.Second)
	assert.Equal(t, 4, e.Difficulty())

	// The window cleared, so the next adjustment needs four more.
	for i := 0; i < 4; i++ {
		e.ObserveBlockTime(time.Minute)
	}
	assert.Equal(t, 3, e.Difficulty())
}

func TestObserveBlockTimeFloor(t *testing.T) {
	p := testParams()
	p.AdjustmentInterval = 1
	p.TargetBlockTime = time.Second
	e := NewEngine(p, zap.NewNop())
	require.Equal(t, 1, e.Difficulty())

	e.ObserveBlockTime(time.Hour)
	assert.Equal(t, 1, e.Difficulty())
}

func TestObserveBlockTimeAtTargetHolds(t *testing.T) {
	p := testParams()
	p.InitialDifficulty = 5
	p.AdjustmentInterval = 2
	p.TargetBlockTime = 10 * time.Second
	e := NewEngine(p, zap.NewNop())

	e.ObserveBlockTime(10 * time.Second)
	e.ObserveBlockTime(10 * time.Second)
	assert.Equal(t, 5, e.Difficulty())
}
