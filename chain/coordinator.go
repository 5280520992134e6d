package chain

import (
	"math/big"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/verdant-labs/verdant/crypto/hash"
	"github.com/verdant-labs/verdant/types"
)

// ShardIDForAddress deterministically assigns an address to a shard:
// the BLAKE2b digest of the address taken modulo the shard count. A
// cryptographic hash keeps the routing uniform regardless of how
// addresses are distributed character-wise.
func ShardIDForAddress(address string, numShards int) types.ShardID {
	h := hash.NewHash([]byte(address))
	bigIntHash := new(big.Int).SetBytes(h.Bytes())
	shardID := bigIntHash.Mod(bigIntHash, big.NewInt(int64(numShards))).Int64()
	return types.ShardID(shardID)
}

// Coordinator routes transactions to their owning shards and makes
// transfers whose sender and recipient live on different shards atomic
// through a reservation-based two-phase commit over the account table.
type Coordinator struct {
	shards   []*Shard
	accounts *AccountTable
	logger   *zap.Logger
}

func NewCoordinator(shards []*Shard, accounts *AccountTable, logger *zap.Logger) *Coordinator {
	return &Coordinator{shards: shards, accounts: accounts, logger: logger}
}

func (c *Coordinator) ShardForAddress(address string) *Shard {
	return c.shards[ShardIDForAddress(address, len(c.shards))]
}

// transfer is one coordinator-managed cross-shard transaction.
type transfer struct {
	id  string
	tx  *types.Transaction
	src *Shard
	dst *Shard
}

// Submit routes a validated transaction. Same-shard transfers skip the
// protocol entirely: one balance critical section and a single enqueue.
// Cross-shard transfers run prepare/commit/abort; a nil return means the
// transfer committed with both sides applied.
func (c *Coordinator) Submit(tx *types.Transaction) error {
	if tx.Amount <= 0 || tx.TotalCost() < tx.Amount {
		return ErrInvalidAmount
	}

	src := c.ShardForAddress(tx.Sender)
	dst := c.ShardForAddress(tx.Recipient)

	// A resubmission must be rejected before any balance moves, not
	// caught by the pool after settlement.
	txHash, err := HashTransaction(tx)
	if err != nil {
		return err
	}
	if src.HasPending(txHash) || dst.HasPending(txHash) {
		return ErrDuplicateTransaction
	}

	if src == dst {
		if err := c.accounts.Transfer(tx.Sender, tx.Recipient, tx.TotalCost(), tx.Amount); err != nil {
			return err
		}
		return src.Enqueue(tx)
	}

	t := &transfer{id: uuid.NewString(), tx: tx, src: src, dst: dst}
	if err := c.prepare(t); err != nil {
		c.abort(t)
		return err
	}
	return c.commit(t)
}

// prepare takes the sender-side hold and checks both participants are
// free of conflicting in-flight transfers. A negative vote leaves every
// balance untouched.
func (c *Coordinator) prepare(t *transfer) error {
	err := c.accounts.Reserve(t.id, t.tx.Sender, t.tx.Recipient, t.tx.TotalCost())
	if err != nil {
		c.logger.Debug("cross-shard prepare voted no",
			zap.String("transfer", t.id),
			zap.Stringer("source", t.src.ID()),
			zap.Stringer("destination", t.dst.ID()),
			zap.Error(err))
		return err
	}
	return nil
}

// commit finalizes the balance movement in one step and enqueues the
// transaction record on both shards for inclusion in their next blocks.
func (c *Coordinator) commit(t *transfer) error {
	if err := c.accounts.Commit(t.id, t.tx.Sender, t.tx.Recipient, t.tx.TotalCost(), t.tx.Amount); err != nil {
		return err
	}

	if err := t.src.Enqueue(t.tx); err != nil {
		return err
	}
	if err := t.dst.Enqueue(t.tx); err != nil {
		return err
	}

	c.logger.Debug("cross-shard transfer committed",
		zap.String("transfer", t.id),
		zap.Stringer("source", t.src.ID()),
		zap.Stringer("destination", t.dst.ID()))
	return nil
}

// abort releases any hold the prepare phase took. No balance changes.
func (c *Coordinator) abort(t *transfer) {
	c.accounts.Abort(t.id, t.tx.Sender, t.tx.Recipient, t.tx.TotalCost())
}
