package chain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/verdant-labs/verdant/amount"
	"github.com/verdant-labs/verdant/consensus"
	"github.com/verdant-labs/verdant/crypto"
	"github.com/verdant-labs/verdant/crypto/address"
	"github.com/verdant-labs/verdant/types"
)

// Ledger owns the shards, the account table, the cross-shard
// coordinator, and the consensus engine. It is the single entry point
// external collaborators call; nothing else in the system holds ambient
// global state.
type Ledger struct {
	shards      []*Shard
	accounts    *AccountTable
	coordinator *Coordinator
	engine      *consensus.Engine
	archive     types.BlockArchive
	logger      *zap.Logger
}

// NewLedger assembles a ledger over numShards partitions. The archive
// is optional bookkeeping and may be nil.
func NewLedger(numShards int, engine *consensus.Engine, archive types.BlockArchive, logger *zap.Logger) (*Ledger, error) {
	if numShards < 1 {
		return nil, fmt.Errorf("ledger needs at least one shard, got %d", numShards)
	}
	if engine == nil {
		return nil, errors.New("ledger needs a consensus engine")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	shards := make([]*Shard, numShards)
	for i := range shards {
		shards[i] = NewShard(types.ShardID(i))
	}
	accounts := NewAccountTable()

	return &Ledger{
		shards:      shards,
		accounts:    accounts,
		coordinator: NewCoordinator(shards, accounts, logger),
		engine:      engine,
		archive:     archive,
		logger:      logger,
	}, nil
}

func (l *Ledger) NumShards() int {
	return len(l.shards)
}

func (l *Ledger) Shard(id types.ShardID) (*Shard, error) {
	if int(id) < 0 || int(id) >= len(l.shards) {
		return nil, fmt.Errorf("no such shard: %d", id)
	}
	return l.shards[id], nil
}

// Fund mints a genesis allocation to an address.
func (l *Ledger) Fund(addr string, amt amount.Amount) error {
	if !address.Validate(addr) {
		return fmt.Errorf("%w: %q", ErrMalformedAddress, addr)
	}
	return l.accounts.Fund(addr, amt)
}

// GetBalance returns an address's native-asset balance, 0 for unknown
// addresses. Never fails.
func (l *Ledger) GetBalance(addr string) amount.Amount {
	return l.accounts.Balance(addr)
}

// GetCarbonCredits returns an address's accrued carbon credit, 0 for
// unknown addresses.
func (l *Ledger) GetCarbonCredits(addr string) amount.Amount {
	return l.engine.CarbonCredits(addr)
}

// SubmitTransaction validates a transfer and routes it through the
// coordinator. A nil return means the transaction was accepted: queued
// on its shard, with balances already settled (same-shard) or committed
// through the two-phase protocol (cross-shard). Validation failures
// mutate nothing.
func (l *Ledger) SubmitTransaction(tx *types.Transaction) error {
	if tx == nil {
		return errors.New("nil transaction")
	}
	if tx.Amount <= 0 {
		return ErrInvalidAmount
	}
	if want := tx.Amount.MulF64(types.FeeRate); tx.Fee != want {
		return fmt.Errorf("%w: got %s, want %s", ErrInvalidFee, tx.Fee, want)
	}
	if tx.Sender == NetworkAddress {
		return ErrReservedSender
	}
	if !address.Validate(tx.Sender) || !address.Validate(tx.Recipient) {
		return fmt.Errorf("%w: %q -> %q", ErrMalformedAddress, tx.Sender, tx.Recipient)
	}
	if len(tx.Signature) != 0 {
		if err := l.checkSignature(tx); err != nil {
			return err
		}
	}
	return l.coordinator.Submit(tx)
}

// checkSignature verifies that the attached public key owns the sender
// address and that the signature covers the transaction hash.
func (l *Ledger) checkSignature(tx *types.Transaction) error {
	if len(tx.SenderPubKey) == 0 {
		return fmt.Errorf("%w: signature without sender public key", ErrInvalidSignature)
	}
	pub, err := crypto.PublicKeyFromBytes(tx.SenderPubKey)
	if err != nil {
		return fmt.Errorf("%w: bad sender public key", ErrInvalidSignature)
	}
	derived, err := pub.Address()
	if err != nil || derived.String() != tx.Sender {
		return fmt.Errorf("%w: public key does not own sender address", ErrInvalidSignature)
	}
	if !VerifyTransactionSignature(tx, pub) {
		return ErrInvalidSignature
	}
	return nil
}

// RequestBlock drains the miner's shard into a candidate, runs the
// proof-of-work search, and appends the mined block. Returns (nil, nil)
// when nothing was pending. On success the miner's reward is minted and
// queued for the shard's next block. Cancelling ctx abandons the search
// and returns the drained transactions to the pool.
func (l *Ledger) RequestBlock(ctx context.Context, minerAddress string) (*types.Block, error) {
	if !address.Validate(minerAddress) {
		return nil, fmt.Errorf("%w: %q", ErrMalformedAddress, minerAddress)
	}

	shard := l.coordinator.ShardForAddress(minerAddress)
	candidate, err := shard.BuildCandidate()
	if err != nil {
		return nil, err
	}
	if candidate == nil {
		return nil, nil
	}

	reward := l.engine.NextReward()

	if err := l.engine.Mine(ctx, candidate, minerAddress); err != nil {
		shard.requeue(candidate.Transactions)
		return nil, err
	}

	if err := shard.AppendBlock(candidate); err != nil {
		shard.requeue(candidate.Transactions)
		return nil, err
	}

	l.issueReward(shard, minerAddress, reward)
	l.archiveBlock(shard, candidate, minerAddress)

	return candidate, nil
}

// issueReward mints the block reward to the miner and queues the reward
// record for the shard's next block. When the supply is exhausted the
// reward is skipped rather than breaking the cap.
func (l *Ledger) issueReward(shard *Shard, minerAddress string, reward amount.Amount) {
	if err := l.accounts.Fund(minerAddress, reward); err != nil {
		l.logger.Warn("skipping block reward",
			zap.String("miner", minerAddress),
			zap.String("reward", reward.String()),
			zap.Error(err))
		return
	}

	rewardTx := &types.Transaction{
		Sender:    NetworkAddress,
		Recipient: minerAddress,
		Amount:    reward,
		Asset:     types.NativeAsset,
		Timestamp: time.Now().UnixNano(),
	}
	if err := shard.Enqueue(rewardTx); err != nil {
		l.logger.Warn("failed to queue reward transaction",
			zap.String("miner", minerAddress),
			zap.Error(err))
	}
}

func (l *Ledger) archiveBlock(shard *Shard, block *types.Block, minerAddress string) {
	if l.archive == nil {
		return
	}
	if err := l.archive.SaveBlock(shard.ID(), block); err != nil {
		l.logger.Warn("failed to archive block",
			zap.Stringer("shard", shard.ID()),
			zap.Int64("index", block.Index),
			zap.Error(err))
	}
	if err := l.archive.SaveCarbonCredits(minerAddress, l.engine.CarbonCredits(minerAddress)); err != nil {
		l.logger.Warn("failed to archive carbon credits",
			zap.String("miner", minerAddress),
			zap.Error(err))
	}
}
