package main

import (
	"math/rand"

	"github.com/pkg/errors"

	"github.com/born-ml/dyngrad/internal/autodiff"
	"github.com/born-ml/dyngrad/internal/nn"
	"github.com/born-ml/dyngrad/internal/tensor"
)

// XORNet is a two-branch network for the XOR problem.
//
// Each branch maps the [1,2] input through Linear(2,1), ReLU, Linear(1,2) and
// Sigmoid. The two [1,2] branch outputs are concatenated along dim 1 into a
// [1,4] feature row, and a Linear(4,1) with Tanh produces the prediction.
type XORNet struct {
	front *nn.Sequential
	back  *nn.Sequential
	head  *nn.Sequential
}

// NewXORNet creates an XORNet with weights drawn from rng.
func NewXORNet(rng *rand.Rand) *XORNet {
	branch := func() *nn.Sequential {
		return nn.NewSequential(
			nn.NewLinear(2, 1, rng),
			nn.NewReLU(),
			nn.NewLinear(1, 2, rng),
			nn.NewSigmoid(),
		)
	}
	return &XORNet{
		front: branch(),
		back:  branch(),
		head: nn.NewSequential(
			nn.NewLinear(4, 1, rng),
			nn.NewTanh(),
		),
	}
}

// Forward runs x of shape [1,2] through both branches and the head.
func (n *XORNet) Forward(x *autodiff.Tensor) (*autodiff.Tensor, error) {
	f, err := n.front.Forward(x)
	if err != nil {
		return nil, errors.Wrap(err, "front branch")
	}
	b, err := n.back.Forward(x)
	if err != nil {
		f.Release()
		return nil, errors.Wrap(err, "back branch")
	}
	merged, err := autodiff.Concat(f, b, 1)
	f.Release()
	b.Release()
	if err != nil {
		return nil, errors.Wrap(err, "merge branches")
	}
	out, err := n.head.Forward(merged)
	merged.Release()
	if err != nil {
		return nil, errors.Wrap(err, "head")
	}
	return out, nil
}

// Parameters returns the parameters of both branches followed by the head.
func (n *XORNet) Parameters() []*nn.Parameter {
	params := n.front.Parameters()
	params = append(params, n.back.Parameters()...)
	return append(params, n.head.Parameters()...)
}

// StateDict returns the parameter values keyed "front.", "back." and "head.".
func (n *XORNet) StateDict() map[string]*tensor.Buffer {
	state := make(map[string]*tensor.Buffer)
	nn.MergeStateDict(state, "front", n.front.StateDict())
	nn.MergeStateDict(state, "back", n.back.StateDict())
	nn.MergeStateDict(state, "head", n.head.StateDict())
	return state
}

// LoadStateDict restores parameter values saved by StateDict.
func (n *XORNet) LoadStateDict(stateDict map[string]*tensor.Buffer) error {
	parts := []struct {
		prefix string
		seq    *nn.Sequential
	}{{"front", n.front}, {"back", n.back}, {"head", n.head}}
	for _, part := range parts {
		if err := part.seq.LoadStateDict(nn.SubStateDict(stateDict, part.prefix)); err != nil {
			return errors.Wrap(err, part.prefix)
		}
	}
	return nil
}

// Predict returns the network output for a single input pair.
func (n *XORNet) Predict(x0, x1 float64) (float64, error) {
	x, err := autodiff.FromSlice([]float64{x0, x1}, []int{1, 2}, false)
	if err != nil {
		return 0, err
	}
	out, err := n.Forward(x)
	x.Release()
	if err != nil {
		return 0, err
	}
	defer out.Release()
	return out.Data().Item(), nil
}
