package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/verdant-labs/verdant/consensus"
)

type Config struct {
	Ledger LedgerConfig `mapstructure:"ledger"`
	Mining MiningConfig `mapstructure:"mining"`
	Store  StoreConfig  `mapstructure:"store"`
	Log    LogConfig    `mapstructure:"log"`
}

type LedgerConfig struct {
	NumShards int `mapstructure:"num_shards" valid:"range(1|256)"`
}

type MiningConfig struct {
	InitialDifficulty      int     `mapstructure:"initial_difficulty" valid:"range(1|16)"`
	TargetBlockTimeSeconds int     `mapstructure:"target_block_time_seconds" valid:"range(1|3600)"`
	AdjustmentInterval     int     `mapstructure:"adjustment_interval" valid:"range(1|10000)"`
	BaseReward             int64   `mapstructure:"base_reward"`
	HalvingInterval        int64   `mapstructure:"halving_interval"`
	BaseCredit             float64 `mapstructure:"base_credit"`
}

// Params maps the mining section onto consensus engine parameters.
func (m MiningConfig) Params() consensus.Params {
	return consensus.Params{
		InitialDifficulty:  m.InitialDifficulty,
		TargetBlockTime:    time.Duration(m.TargetBlockTimeSeconds) * time.Second,
		AdjustmentInterval: m.AdjustmentInterval,
		BaseReward:         m.BaseReward,
		HalvingInterval:    m.HalvingInterval,
		BaseCredit:         m.BaseCredit,
	}
}

type StoreConfig struct {
	// DataDir enables the Badger block archive when non-empty.
	DataDir string `mapstructure:"data_dir"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads config.yaml from path, after overlaying any .env file onto
// the environment. Missing config files fall back to defaults; a
// malformed one is an error.
func Load(path string) (*Config, error) {
	// A missing .env is fine.
	_ = godotenv.Load()

	defaults := consensus.DefaultParams()

	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetDefault("ledger.num_shards", 4)
	viper.SetDefault("mining.initial_difficulty", defaults.InitialDifficulty)
	viper.SetDefault("mining.target_block_time_seconds", int(defaults.TargetBlockTime/time.Second))
	viper.SetDefault("mining.adjustment_interval", defaults.AdjustmentInterval)
	viper.SetDefault("mining.base_reward", defaults.BaseReward)
	viper.SetDefault("mining.halving_interval", defaults.HalvingInterval)
	viper.SetDefault("mining.base_credit", defaults.BaseCredit)
	viper.SetDefault("store.data_dir", "")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "console")

	viper.SetEnvPrefix("verdant")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if _, err := govalidator.ValidateStruct(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &config, nil
}
