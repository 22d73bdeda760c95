package main

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/born-ml/dyngrad/internal/autodiff"
	"github.com/born-ml/dyngrad/internal/nn"
	"github.com/born-ml/dyngrad/internal/optim"
	"github.com/born-ml/dyngrad/internal/tensor"
)

type sample struct {
	x0, x1 float64
	target float64
}

// xorSamples is the full XOR truth table.
var xorSamples = []sample{
	{0, 0, 0},
	{0, 1, 1},
	{1, 0, 1},
	{1, 1, 0},
}

// Trainer fits an XORNet to the XOR truth table.
type Trainer struct {
	model     *XORNet
	optimizer optim.Optimizer
	loss      *nn.MSELoss
	logger    *slog.Logger
}

// NewTrainer builds the model and optimizer described by cfg.
func NewTrainer(cfg TrainConfig, logger *slog.Logger) (*Trainer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	model := NewXORNet(rand.New(rand.NewSource(cfg.Seed))) //nolint:gosec // reproducible init

	var opt optim.Optimizer
	switch cfg.Optimizer {
	case "adam":
		opt = optim.NewAdam(model.Parameters(), optim.AdamConfig{LR: cfg.LR})
	default:
		opt = optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: cfg.LR, Momentum: cfg.Momentum})
	}

	return &Trainer{
		model:     model,
		optimizer: opt,
		loss:      nn.NewMSELoss(),
		logger:    logger,
	}, nil
}

// Model returns the network being trained.
func (t *Trainer) Model() *XORNet {
	return t.model
}

// Epoch runs one pass over all samples and applies a single optimizer step.
//
// Gradients of the per-sample losses accumulate on the parameters; each
// backward pass is seeded with 1/len(samples) so the step follows the
// gradient of the mean loss. Returns the mean loss before the step.
func (t *Trainer) Epoch() (float64, error) {
	t.optimizer.ZeroGrad()

	seed := tensor.Scalar(1 / float64(len(xorSamples)))
	total := 0.0
	for i, s := range xorSamples {
		loss, err := t.sampleLoss(s)
		if err != nil {
			return 0, errors.Wrapf(err, "sample %d", i)
		}
		total += loss.Data().Item()
		if err := autodiff.Backward(loss, seed); err != nil {
			loss.Release()
			return 0, errors.Wrapf(err, "backward sample %d", i)
		}
		loss.Release()
	}

	if err := t.optimizer.Step(); err != nil {
		return 0, errors.Wrap(err, "optimizer step")
	}
	return total / float64(len(xorSamples)), nil
}

func (t *Trainer) sampleLoss(s sample) (*autodiff.Tensor, error) {
	x, err := autodiff.FromSlice([]float64{s.x0, s.x1}, tensor.Shape{1, 2}, false)
	if err != nil {
		return nil, err
	}
	y, err := autodiff.FromSlice([]float64{s.target}, tensor.Shape{1, 1}, false)
	if err != nil {
		x.Release()
		return nil, err
	}
	defer y.Release()
	pred, err := t.model.Forward(x)
	x.Release()
	if err != nil {
		return nil, err
	}
	defer pred.Release()
	return t.loss.Forward(pred, y)
}

// Fit runs epochs epochs and returns the loss of the last one.
func (t *Trainer) Fit(epochs, logInterval int) (float64, error) {
	var loss float64
	for epoch := 1; epoch <= epochs; epoch++ {
		var err error
		loss, err = t.Epoch()
		if err != nil {
			return 0, errors.Wrapf(err, "epoch %d", epoch)
		}
		if logInterval > 0 && (epoch%logInterval == 0 || epoch == 1) {
			t.logger.Info("training", "epoch", epoch, "loss", loss, "lr", t.optimizer.GetLR())
		}
		t.logger.Debug("epoch done", "epoch", epoch, "loss", loss)
	}
	return loss, nil
}

func newTrainCmd(v *viper.Viper) *cobra.Command {
	def := DefaultTrainConfig()
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train the two-branch network on XOR",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadTrainConfig(v)
			if err != nil {
				return err
			}
			logger, err := newLogger(cmd.ErrOrStderr(), v.GetString(keyLogLevel))
			if err != nil {
				return err
			}

			trainer, err := NewTrainer(cfg, logger)
			if err != nil {
				return err
			}
			logger.Info("starting training",
				"epochs", cfg.Epochs, "optimizer", cfg.Optimizer, "lr", cfg.LR, "seed", cfg.Seed)

			loss, err := trainer.Fit(cfg.Epochs, cfg.LogInterval)
			if err != nil {
				return err
			}
			logger.Info("training finished", "loss", loss)

			if path := v.GetString(keySave); path != "" {
				if err := saveModel(path, trainer.Model(), cfg, cfg.Epochs, loss); err != nil {
					return errors.Wrap(err, "save model")
				}
				logger.Info("model saved", "path", path)
			}
			return printTruthTable(cmd, trainer.Model())
		},
	}

	flags := cmd.Flags()
	flags.Int(keyEpochs, def.Epochs, "number of training epochs")
	flags.Float64(keyLR, def.LR, "learning rate")
	flags.Float64(keyMomentum, def.Momentum, "SGD momentum factor")
	flags.String(keyOptimizer, def.Optimizer, "optimizer: sgd or adam")
	flags.Int64(keySeed, def.Seed, "random seed for weight init")
	flags.Int(keyLogInterval, def.LogInterval, "log loss every N epochs (0 disables)")
	flags.String(keySave, "", "write the trained network to this checkpoint file")
	return cmd
}

// printTruthTable writes the network's prediction for every XOR sample.
func printTruthTable(cmd *cobra.Command, net *XORNet) error {
	out := cmd.OutOrStdout()
	for _, s := range xorSamples {
		pred, err := net.Predict(s.x0, s.x1)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%g XOR %g = %.4f (want %g)\n", s.x0, s.x1, pred, s.target)
	}
	return nil
}
