package main

import (
	"fmt"
	"io"
	"math/rand"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/born-ml/dyngrad/internal/autodiff"
	"github.com/born-ml/dyngrad/internal/tensor"
)

// runDemo walks through a single product z = a*b, its backward pass, and
// one forward pass of an untrained XORNet.
func runDemo(w io.Writer, seed int64) error {
	a, err := autodiff.FromSlice([]float64{3, 2}, tensor.Shape{2}, true)
	if err != nil {
		return err
	}
	b, err := autodiff.FromSlice([]float64{2, 0.1}, tensor.Shape{2}, true)
	if err != nil {
		return err
	}

	z, err := autodiff.Mul(a, b)
	if err != nil {
		return errors.Wrap(err, "z = a*b")
	}
	fmt.Fprintf(w, "a: %v\n", a)
	fmt.Fprintf(w, "b: %v\n", b)
	fmt.Fprintf(w, "z: %v\n", z)

	if err := autodiff.Backward(z, tensor.Ones(z.Shape())); err != nil {
		return errors.Wrap(err, "backward")
	}
	fmt.Fprintf(w, "dz/da: %v\n", a.Grad())
	fmt.Fprintf(w, "dz/db: %v\n", b.Grad())
	z.Release()

	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // reproducible init
	net := NewXORNet(rng)
	x := autodiff.New(tensor.Randn(tensor.Shape{1, 2}, rng), false)
	out, err := net.Forward(x)
	if err != nil {
		return errors.Wrap(err, "xor forward")
	}
	defer out.Release()
	fmt.Fprintf(w, "xor(%v): %v\n", x.Data(), out.Data())
	for _, n := range autodiff.Trace(out) {
		if !n.IsLeaf() {
			fmt.Fprintf(w, "  %s %v\n", n.GradFn(), n.Shape())
		}
	}
	return nil
}

func newDemoCmd() *cobra.Command {
	var seed int64
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Show a forward and backward pass on a small graph",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDemo(cmd.OutOrStdout(), seed)
		},
	}
	cmd.Flags().Int64Var(&seed, "seed", DefaultTrainConfig().Seed, "random seed")
	return cmd
}
