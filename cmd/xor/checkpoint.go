package main

import (
	"fmt"
	"math/rand"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/born-ml/dyngrad/internal/serialization"
)

const modelType = "XORNet"

// saveModel writes net and its training state to path.
func saveModel(path string, net *XORNet, cfg TrainConfig, epoch int, loss float64) error {
	return serialization.SaveFile(path, net.StateDict(), serialization.Header{
		ModelType: modelType,
		Metadata:  map[string]string{"version": version},
		CheckpointMeta: &serialization.CheckpointMeta{
			Epoch:         epoch,
			Loss:          loss,
			OptimizerType: cfg.Optimizer,
			LR:            cfg.LR,
		},
	})
}

// loadModel reads an XORNet saved by saveModel.
func loadModel(path string) (*XORNet, serialization.Header, error) {
	state, header, err := serialization.LoadFile(path)
	if err != nil {
		return nil, header, err
	}
	if header.ModelType != modelType {
		return nil, header, errors.Errorf("%s holds a %q, not an %s", path, header.ModelType, modelType)
	}
	net := NewXORNet(rand.New(rand.NewSource(0))) //nolint:gosec // weights are overwritten
	if err := net.LoadStateDict(state); err != nil {
		return nil, header, errors.Wrapf(err, "load %s", path)
	}
	return net, header, nil
}

func newPredictCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Evaluate a saved network on the XOR truth table",
		RunE: func(cmd *cobra.Command, _ []string) error {
			net, header, err := loadModel(path)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if meta := header.CheckpointMeta; meta != nil {
				fmt.Fprintf(out, "checkpoint: epoch %d, loss %.6f, %s lr=%g\n",
					meta.Epoch, meta.Loss, meta.OptimizerType, meta.LR)
			}
			return printTruthTable(cmd, net)
		},
	}
	cmd.Flags().StringVar(&path, "load", "xor.dgrd", "checkpoint to evaluate")
	return cmd
}
