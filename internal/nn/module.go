// Package nn implements neural network modules on top of the autodiff engine.
//
// This package provides building blocks for constructing neural networks:
//   - Module interface: Base interface for all NN components
//   - Parameter: Trainable parameters with gradient tracking
//   - Linear: Fully connected layer
//   - Activations: ReLU, Sigmoid, Tanh
//   - Loss functions: MSE
//   - Sequential: Container for stacking layers
//
// Every forward pass builds a fresh graph; gradients land on the parameters'
// leaf tensors when the caller runs autodiff.Backward on a loss.
package nn

import (
	"strings"

	"github.com/born-ml/dyngrad/internal/autodiff"
	"github.com/born-ml/dyngrad/internal/tensor"
)

// Module is the base interface for all neural network components.
//
// Modules can be composed to build complex architectures:
//
//	model := nn.NewSequential(
//	    nn.NewLinear(2, 4, rng),
//	    nn.NewReLU(),
//	    nn.NewLinear(4, 1, rng),
//	)
type Module interface {
	// Forward computes the output of the module given an input tensor.
	Forward(input *autodiff.Tensor) (*autodiff.Tensor, error)

	// Parameters returns all trainable parameters of this module.
	// Returns an empty slice for modules without trainable parameters.
	Parameters() []*Parameter
}

// Stateful is implemented by modules whose parameters can be exported and
// restored by name.
type Stateful interface {
	StateDict() map[string]*tensor.Buffer
	LoadStateDict(stateDict map[string]*tensor.Buffer) error
}

// MergeStateDict copies every entry of src into dst under prefix + "." + name.
func MergeStateDict(dst map[string]*tensor.Buffer, prefix string, src map[string]*tensor.Buffer) {
	for name, buf := range src {
		dst[prefix+"."+name] = buf
	}
}

// SubStateDict returns the entries of stateDict under prefix, with the
// prefix stripped.
func SubStateDict(stateDict map[string]*tensor.Buffer, prefix string) map[string]*tensor.Buffer {
	sub := make(map[string]*tensor.Buffer)
	p := prefix + "."
	for name, buf := range stateDict {
		if rest, ok := strings.CutPrefix(name, p); ok {
			sub[rest] = buf
		}
	}
	return sub
}
