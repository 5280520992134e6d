package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/verdant-labs/verdant/amount"
	"github.com/verdant-labs/verdant/chain"
	"github.com/verdant-labs/verdant/config"
	"github.com/verdant-labs/verdant/consensus"
	"github.com/verdant-labs/verdant/store"
	"github.com/verdant-labs/verdant/types"
	"github.com/verdant-labs/verdant/wallet"
)

func main() {
	configPath := flag.String("config", ".", "directory containing config.yaml")
	rounds := flag.Int("rounds", 10, "number of transfer/mine rounds to run")
	flag.Parse()

	if err := run(*configPath, *rounds); err != nil {
		fmt.Fprintf(os.Stderr, "verdant: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, rounds int) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := config.NewLogger(&cfg.Log)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine := consensus.NewEngine(cfg.Mining.Params(), logger)

	var archive types.BlockArchive
	if cfg.Store.DataDir != "" {
		a, err := store.NewBlockArchive(cfg.Store.DataDir)
		if err != nil {
			return err
		}
		defer a.Close()
		archive = a
	}

	ledger, err := chain.NewLedger(cfg.Ledger.NumShards, engine, archive, logger)
	if err != nil {
		return err
	}

	alice, err := wallet.New()
	if err != nil {
		return err
	}
	bob, err := wallet.New()
	if err != nil {
		return err
	}
	miner, err := wallet.New()
	if err != nil {
		return err
	}

	faucet, _ := amount.NewAmount(1000)
	if err := ledger.Fund(alice.Address, faucet); err != nil {
		return err
	}
	logger.Info("ledger ready",
		zap.Int("shards", cfg.Ledger.NumShards),
		zap.String("alice", alice.Address),
		zap.String("bob", bob.Address),
		zap.String("miner", miner.Address))

	transferAmt, _ := amount.NewAmount(10)
	for round := 0; round < rounds; round++ {
		if ctx.Err() != nil {
			break
		}

		tx, err := alice.NewTransfer(bob.Address, transferAmt)
		if err != nil {
			return err
		}
		if err := ledger.SubmitTransaction(tx); err != nil {
			logger.Warn("transfer rejected", zap.Int("round", round), zap.Error(err))
			continue
		}

		// Each wallet mines its own shard, so every queue the transfer
		// touched gets drained.
		for _, m := range []string{alice.Address, bob.Address, miner.Address} {
			mineCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			block, err := ledger.RequestBlock(mineCtx, m)
			cancel()
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				logger.Warn("mining failed", zap.Int("round", round), zap.Error(err))
				continue
			}
			if block != nil {
				logger.Info("block accepted",
					zap.Int("round", round),
					zap.Int64("index", block.Index),
					zap.String("hash", block.Hash.String()))
			}
		}
	}

	logger.Info("simulation finished",
		zap.String("alice_balance", ledger.GetBalance(alice.Address).String()),
		zap.String("bob_balance", ledger.GetBalance(bob.Address).String()),
		zap.String("miner_balance", ledger.GetBalance(miner.Address).String()),
		zap.String("miner_carbon_credits", ledger.GetCarbonCredits(miner.Address).String()),
		zap.Int("difficulty", engine.Difficulty()),
		zap.Int64("blocks_mined", engine.BlocksMined()))
	return nil
}
