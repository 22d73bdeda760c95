package main

import (
	"io"
	"log/slog"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Configuration keys. Each is also a flag name and, upper-cased with the
// DYNGRAD_ prefix, an environment variable.
const (
	keyConfig      = "config"
	keyLogLevel    = "log-level"
	keyEpochs      = "epochs"
	keyLR          = "lr"
	keyMomentum    = "momentum"
	keyOptimizer   = "optimizer"
	keySeed        = "seed"
	keyLogInterval = "log-interval"
	keySave        = "save"
)

// TrainConfig holds the settings of a training run.
type TrainConfig struct {
	Epochs      int
	LR          float64
	Momentum    float64
	Optimizer   string // "sgd" or "adam"
	Seed        int64
	LogInterval int
}

// DefaultTrainConfig returns the settings used when nothing is overridden.
func DefaultTrainConfig() TrainConfig {
	return TrainConfig{
		Epochs:      2000,
		LR:          0.1,
		Momentum:    0.9,
		Optimizer:   "sgd",
		Seed:        42,
		LogInterval: 200,
	}
}

// Validate checks the configuration for values training cannot run with.
func (c TrainConfig) Validate() error {
	if c.Epochs <= 0 {
		return errors.Errorf("epochs must be > 0, got %d", c.Epochs)
	}
	if c.LR <= 0 {
		return errors.Errorf("lr must be > 0, got %g", c.LR)
	}
	if c.Momentum < 0 || c.Momentum >= 1 {
		return errors.Errorf("momentum must be in [0, 1), got %g", c.Momentum)
	}
	if c.Optimizer != "sgd" && c.Optimizer != "adam" {
		return errors.Errorf("unknown optimizer %q (want sgd or adam)", c.Optimizer)
	}
	if c.LogInterval < 0 {
		return errors.Errorf("log-interval must be >= 0, got %d", c.LogInterval)
	}
	return nil
}

// bindConfig wires v to the command's flags, the environment and an optional
// config file. Precedence: flag > env > file > default.
func bindConfig(v *viper.Viper, cmd *cobra.Command) error {
	v.SetEnvPrefix("DYNGRAD")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return errors.Wrap(err, "bind flags")
	}

	if file := v.GetString(keyConfig); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return errors.Wrapf(err, "read config %s", file)
		}
	}
	return nil
}

// loadTrainConfig reads a TrainConfig from v, falling back to defaults for
// unset keys.
func loadTrainConfig(v *viper.Viper) (TrainConfig, error) {
	def := DefaultTrainConfig()
	v.SetDefault(keyEpochs, def.Epochs)
	v.SetDefault(keyLR, def.LR)
	v.SetDefault(keyMomentum, def.Momentum)
	v.SetDefault(keyOptimizer, def.Optimizer)
	v.SetDefault(keySeed, def.Seed)
	v.SetDefault(keyLogInterval, def.LogInterval)

	cfg := TrainConfig{
		Epochs:      v.GetInt(keyEpochs),
		LR:          v.GetFloat64(keyLR),
		Momentum:    v.GetFloat64(keyMomentum),
		Optimizer:   strings.ToLower(v.GetString(keyOptimizer)),
		Seed:        v.GetInt64(keySeed),
		LogInterval: v.GetInt(keyLogInterval),
	}
	if err := cfg.Validate(); err != nil {
		return TrainConfig{}, errors.Wrap(err, "invalid config")
	}
	return cfg, nil
}

// newLogger builds a text logger at the named level (debug, info, warn, error).
func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, errors.Wrapf(err, "invalid log level %q", level)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}
