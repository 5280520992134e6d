package chain

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/verdant-labs/verdant/amount"
	"github.com/verdant-labs/verdant/consensus"
	"github.com/verdant-labs/verdant/crypto"
	"github.com/verdant-labs/verdant/types"
)

func newTestLedger(t *testing.T, numShards int) *Ledger {
	t.Helper()
	params := consensus.DefaultParams()
	params.InitialDifficulty = 1
	engine := consensus.NewEngine(params, zap.NewNop())
	ledger, err := NewLedger(numShards, engine, nil, zap.NewNop())
	require.NoError(t, err)
	return ledger
}

func TestNewLedgerValidation(t *testing.T) {
	engine := consensus.NewEngine(consensus.DefaultParams(), zap.NewNop())

	_, err := NewLedger(0, engine, nil, zap.NewNop())
	assert.Error(t, err)

	_, err = NewLedger(2, nil, nil, zap.NewNop())
	assert.Error(t, err)
}

func TestFundRejectsMalformedAddress(t *testing.T) {
	ledger := newTestLedger(t, 2)

	err := ledger.Fund("not-bech32", vrd(t, 10))
	assert.ErrorIs(t, err, ErrMalformedAddress)
}

func TestSubmitTransactionValidation(t *testing.T) {
	ledger := newTestLedger(t, 2)
	sender := testAddress(t, 1, 0, 2)
	recipient := testAddress(t, 2, 1, 2)

	assert.Error(t, ledger.SubmitTransaction(nil))

	tx := types.NewTransaction(sender, recipient, vrd(t, 10))
	tx.Amount = 0
	assert.ErrorIs(t, ledger.SubmitTransaction(tx), ErrInvalidAmount)

	tx = types.NewTransaction(NetworkAddress, recipient, vrd(t, 10))
	assert.ErrorIs(t, ledger.SubmitTransaction(tx), ErrReservedSender)

	tx = types.NewTransaction("bogus", recipient, vrd(t, 10))
	assert.ErrorIs(t, ledger.SubmitTransaction(tx), ErrMalformedAddress)

	tx = types.NewTransaction(sender, "bogus", vrd(t, 10))
	assert.ErrorIs(t, ledger.SubmitTransaction(tx), ErrMalformedAddress)
}

func TestSubmitTransactionEnforcesFeeRate(t *testing.T) {
	const numShards = 2
	ledger := newTestLedger(t, numShards)

	sender := testAddress(t, 1, 0, numShards)
	recipient := testAddress(t, 2, 1, numShards)
	require.NoError(t, ledger.Fund(sender, vrd(t, 100)))

	// A negative fee would credit more than it debits, minting VRD
	// out of nothing across the two shards.
	tx := types.NewTransaction(sender, recipient, vrd(t, 10))
	tx.Fee = vrd(t, -5)
	assert.ErrorIs(t, ledger.SubmitTransaction(tx), ErrInvalidFee)

	// A zero fee dodges the mandated rate.
	tx = types.NewTransaction(sender, recipient, vrd(t, 10))
	tx.Fee = 0
	assert.ErrorIs(t, ledger.SubmitTransaction(tx), ErrInvalidFee)

	// Off by one atomic unit is still not the derived fee.
	tx = types.NewTransaction(sender, recipient, vrd(t, 10))
	tx.Fee++
	assert.ErrorIs(t, ledger.SubmitTransaction(tx), ErrInvalidFee)

	// Nothing settled and nothing was minted.
	assert.Equal(t, vrd(t, 100), ledger.GetBalance(sender))
	assert.Equal(t, amount.Amount(0), ledger.GetBalance(recipient))

	// The derived fee passes.
	require.NoError(t, ledger.SubmitTransaction(types.NewTransaction(sender, recipient, vrd(t, 10))))
	assert.Equal(t, vrd(t, 89.9), ledger.GetBalance(sender))
}

func TestSubmitTransactionDuplicateDoesNotResettle(t *testing.T) {
	const numShards = 2
	ledger := newTestLedger(t, numShards)

	sender := testAddress(t, 1, 0, numShards)
	recipient := testAddress(t, 2, 1, numShards)
	require.NoError(t, ledger.Fund(sender, vrd(t, 100)))

	tx := types.NewTransaction(sender, recipient, vrd(t, 10))
	require.NoError(t, ledger.SubmitTransaction(tx))

	err := ledger.SubmitTransaction(tx)
	assert.ErrorIs(t, err, ErrDuplicateTransaction)
	assert.Equal(t, vrd(t, 89.9), ledger.GetBalance(sender))
	assert.Equal(t, vrd(t, 10), ledger.GetBalance(recipient))
}

func TestSubmitTransactionSignatureChecks(t *testing.T) {
	ledger := newTestLedger(t, 2)

	priv, err := crypto.NewPrivateKey()
	require.NoError(t, err)
	addr, err := priv.PublicKey().Address()
	require.NoError(t, err)
	recipient := testAddress(t, 7, 0, 2)
	require.NoError(t, ledger.Fund(addr.String(), vrd(t, 100)))

	// Signature present but no public key attached.
	tx := types.NewTransaction(addr.String(), recipient, vrd(t, 10))
	tx.Signature = []byte{1, 2, 3}
	assert.ErrorIs(t, ledger.SubmitTransaction(tx), ErrInvalidSignature)

	// Public key that does not own the sender address.
	other, err := crypto.NewPrivateKey()
	require.NoError(t, err)
	tx = types.NewTransaction(addr.String(), recipient, vrd(t, 10))
	tx.SenderPubKey = other.PublicKey().Bytes()
	require.NoError(t, SignTransaction(tx, other))
	assert.ErrorIs(t, ledger.SubmitTransaction(tx), ErrInvalidSignature)

	// Properly signed by the key behind the sender address.
	tx = types.NewTransaction(addr.String(), recipient, vrd(t, 10))
	tx.SenderPubKey = priv.PublicKey().Bytes()
	require.NoError(t, SignTransaction(tx, priv))
	assert.NoError(t, ledger.SubmitTransaction(tx))
}

// Funds move between shards while shards not party to the transfer stay
// untouched.
func TestCrossShardTransferSettlement(t *testing.T) {
	const numShards = 3
	ledger := newTestLedger(t, numShards)

	sender := testAddress(t, 1, 0, numShards)
	recipient := testAddress(t, 2, 1, numShards)
	bystander := testAddress(t, 3, 2, numShards)

	require.NoError(t, ledger.Fund(sender, vrd(t, 100)))
	require.NoError(t, ledger.Fund(bystander, vrd(t, 42)))

	tx := types.NewTransaction(sender, recipient, vrd(t, 10))
	require.NoError(t, ledger.SubmitTransaction(tx))

	// 10 VRD moved, 0.1 VRD fee burned.
	assert.Equal(t, vrd(t, 89.9), ledger.GetBalance(sender))
	assert.Equal(t, vrd(t, 10), ledger.GetBalance(recipient))
	assert.Equal(t, vrd(t, 42), ledger.GetBalance(bystander))

	srcShard, err := ledger.Shard(0)
	require.NoError(t, err)
	dstShard, err := ledger.Shard(1)
	require.NoError(t, err)
	idleShard, err := ledger.Shard(2)
	require.NoError(t, err)
	assert.Equal(t, 1, srcShard.PendingCount())
	assert.Equal(t, 1, dstShard.PendingCount())
	assert.Equal(t, 0, idleShard.PendingCount())
}

func TestRequestBlockEndToEnd(t *testing.T) {
	const numShards = 2
	ledger := newTestLedger(t, numShards)

	sender := testAddress(t, 1, 0, numShards)
	recipient := testAddress(t, 2, 0, numShards)
	miner := testAddress(t, 3, 0, numShards)

	require.NoError(t, ledger.Fund(sender, vrd(t, 100)))
	require.NoError(t, ledger.SubmitTransaction(types.NewTransaction(sender, recipient, vrd(t, 10))))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	block, err := ledger.RequestBlock(ctx, miner)
	require.NoError(t, err)
	require.NotNil(t, block)

	shard, err := ledger.Shard(0)
	require.NoError(t, err)
	assert.Equal(t, 2, shard.Height())
	assert.True(t, shard.LatestBlock().Hash.Equal(block.Hash))
	require.Len(t, block.Transactions, 1)
	assert.True(t, block.EnergySource.Valid())

	// The miner earned the full base reward and a carbon credit.
	assert.Equal(t, vrd(t, 50), ledger.GetBalance(miner))
	assert.Greater(t, ledger.GetCarbonCredits(miner), amount.Amount(0))

	// The reward record waits in the pool for the shard's next block.
	assert.Equal(t, 1, shard.PendingCount())
}

func TestRequestBlockEmptyPool(t *testing.T) {
	ledger := newTestLedger(t, 2)
	miner := testAddress(t, 3, 0, 2)

	block, err := ledger.RequestBlock(context.Background(), miner)
	require.NoError(t, err)
	assert.Nil(t, block)
}

func TestRequestBlockMalformedMiner(t *testing.T) {
	ledger := newTestLedger(t, 2)

	_, err := ledger.RequestBlock(context.Background(), "not-an-address")
	assert.ErrorIs(t, err, ErrMalformedAddress)
}

func TestRequestBlockCancelledRequeues(t *testing.T) {
	params := consensus.DefaultParams()
	// High enough that the nonce search cannot finish before cancellation.
	params.InitialDifficulty = 16
	engine := consensus.NewEngine(params, zap.NewNop())
	ledger, err := NewLedger(2, engine, nil, zap.NewNop())
	require.NoError(t, err)

	sender := testAddress(t, 1, 0, 2)
	recipient := testAddress(t, 2, 0, 2)
	miner := testAddress(t, 3, 0, 2)
	require.NoError(t, ledger.Fund(sender, vrd(t, 100)))
	require.NoError(t, ledger.SubmitTransaction(types.NewTransaction(sender, recipient, vrd(t, 10))))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = ledger.RequestBlock(ctx, miner)
	assert.ErrorIs(t, err, context.Canceled)

	// The drained transaction went back; the chain did not grow.
	shard, shardErr := ledger.Shard(0)
	require.NoError(t, shardErr)
	assert.Equal(t, 1, shard.PendingCount())
	assert.Equal(t, 1, shard.Height())
}
