package consensus

import (
	"bytes"
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/verdant-labs/verdant/amount"
	"github.com/verdant-labs/verdant/types"
)

// Params fixes the consensus constants for one chain instance.
type Params struct {
	// InitialDifficulty is the number of leading zero hex characters a
	// block hash must carry at genesis.
	InitialDifficulty int

	// TargetBlockTime is the mining duration retargeting steers toward.
	TargetBlockTime time.Duration

	// AdjustmentInterval is how many mined blocks fill the retargeting
	// window before the difficulty moves.
	AdjustmentInterval int

	// BaseReward is the pre-halving block reward in whole VRD.
	BaseReward int64

	// HalvingInterval is the number of mined blocks per reward halving.
	HalvingInterval int64

	// BaseCredit is the carbon credit awarded per block before the
	// energy-source multiplier.
	BaseCredit float64
}

func DefaultParams() Params {
	return Params{
		InitialDifficulty:  4,
		TargetBlockTime:    60 * time.Second,
		AdjustmentInterval: 10,
		BaseReward:         50,
		HalvingInterval:    210_000,
		BaseCredit:         1.0,
	}
}

// staleCheckInterval is how many nonce attempts pass between cooperative
// cancellation checks, keeping the search abandonable without paying a
// channel select per hash.
const staleCheckInterval = 4096

// Engine is the energy-attributed proof-of-work consensus engine: the
// nonce search, difficulty retargeting over a rolling window of mining
// durations, halving reward schedule, and the auxiliary carbon-credit
// ledger. Verification never touches the timing state, so any party can
// call it without mutating anything shared.
type Engine struct {
	params Params
	logger *zap.Logger

	mu          sync.Mutex
	difficulty  int
	window      []time.Duration
	blocksMined int64
	credits     map[string]amount.Amount
}

func NewEngine(params Params, logger *zap.Logger) *Engine {
	if params.InitialDifficulty < 1 {
		params.InitialDifficulty = 1
	}
	if params.AdjustmentInterval < 1 {
		params.AdjustmentInterval = 1
	}
	if params.HalvingInterval < 1 {
		params.HalvingInterval = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		params:     params,
		logger:     logger,
		difficulty: params.InitialDifficulty,
		credits:    make(map[string]amount.Amount),
	}
}

func (e *Engine) Difficulty() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.difficulty
}

func (e *Engine) BlocksMined() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.blocksMined
}

// Mine searches for a proof on the candidate block, attributing it to an
// energy source chosen uniformly from the fixed enumeration. The search
// is unbounded for a fixed difficulty; callers needing bounded latency
// cancel through ctx.
func (e *Engine) Mine(ctx context.Context, block *types.Block, minerAddress string) error {
	sources := types.EnergySources()
	return e.MineWithSource(ctx, block, minerAddress, sources[rand.Intn(len(sources))])
}

// MineWithSource is Mine with the energy source pinned. Given a fixed
// source and starting nonce, the search is deterministic: the same
// candidate always yields the same (nonce, hash) pair.
func (e *Engine) MineWithSource(ctx context.Context, block *types.Block, minerAddress string, source types.EnergySource) error {
	if !source.Valid() {
		return fmt.Errorf("unknown energy source %q", source)
	}

	difficulty := e.Difficulty()
	block.EnergySource = source

	start := time.Now()
	attempts := 0
	for {
		if err := block.ComputeHash(); err != nil {
			return err
		}
		if block.Hash.MeetsDifficulty(difficulty) {
			break
		}
		block.Nonce++

		attempts++
		if attempts%staleCheckInterval == 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
		}
	}
	elapsed := time.Since(start)

	e.ObserveBlockTime(elapsed)
	e.awardCarbonCredits(minerAddress, source)

	e.mu.Lock()
	e.blocksMined++
	mined := e.blocksMined
	e.mu.Unlock()

	e.logger.Info("block mined",
		zap.Int64("index", block.Index),
		zap.Uint64("nonce", block.Nonce),
		zap.String("energy_source", string(source)),
		zap.Int("difficulty", difficulty),
		zap.Duration("elapsed", elapsed),
		zap.Int64("total_mined", mined))
	return nil
}

// VerifyBlock recomputes the transaction commitment and the block hash
// from the declared fields and checks the proof against the current
// difficulty. It is a pure function of the block plus the difficulty
// setting; an invalid block is routine, so the answer is a boolean.
func (e *Engine) VerifyBlock(block *types.Block) bool {
	if block == nil || !block.EnergySource.Valid() {
		return false
	}

	root, err := types.TransactionsMerkleRoot(block.Transactions)
	if err != nil || !bytes.Equal(root, block.MerkleRoot) {
		return false
	}

	check := *block
	if err := check.ComputeHash(); err != nil {
		return false
	}
	if !check.Hash.Equal(block.Hash) {
		return false
	}
	return block.Hash.MeetsDifficulty(e.Difficulty())
}

// ObserveBlockTime feeds one mining duration into the retargeting
// window. When the window fills, the mean is compared against the
// target: shorter means raise the difficulty by one, longer means lower
// it by one with a floor of one, and the window clears. This symmetric
// step retarget can oscillate under bursty mining rates; that is an
// accepted limitation of the scheme, not a defect to compensate for.
func (e *Engine) ObserveBlockTime(elapsed time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.window = append(e.window, elapsed)
	if len(e.window) < e.params.AdjustmentInterval {
		return
	}

	var total time.Duration
	for _, d := range e.window {
		total += d
	}
	mean := total / time.Duration(len(e.window))

	before := e.difficulty
	if mean < e.params.TargetBlockTime {
		e.difficulty++
	} else if mean > e.params.TargetBlockTime && e.difficulty > 1 {
		e.difficulty--
	}
	e.window = e.window[:0]

	if e.difficulty != before {
		e.logger.Info("difficulty retargeted",
			zap.Int("from", before),
			zap.Int("to", e.difficulty),
			zap.Duration("mean_block_time", mean),
			zap.Duration("target", e.params.TargetBlockTime))
	}
}
