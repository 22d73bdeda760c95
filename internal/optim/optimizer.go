// Package optim implements optimization algorithms for training neural networks.
//
// This package provides:
//   - Optimizer interface: Base interface for all optimizers
//   - SGD: Stochastic Gradient Descent with momentum
//   - Adam: Adaptive Moment Estimation
//
// Optimizers read the gradients autodiff.Backward accumulated on each
// parameter and replace the parameter with an updated leaf.
//
// Example usage:
//
//	optimizer := optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: 0.1})
//
//	for epoch := range epochs {
//	    optimizer.ZeroGrad()
//	    loss, _ := lossFn.Forward(model.Forward(input), target)
//	    _ = autodiff.BackwardScalar(loss)
//	    _ = optimizer.Step()
//	}
package optim

import (
	"github.com/born-ml/dyngrad/internal/nn"
	"github.com/born-ml/dyngrad/internal/tensor"
	"github.com/pkg/errors"
)

// Optimizer is the base interface for all optimization algorithms.
type Optimizer interface {
	// Step applies gradient updates to all parameters.
	// Parameters without a gradient are skipped.
	Step() error

	// ZeroGrad clears all parameter gradients.
	//
	// Gradients accumulate across backward passes, so call this before
	// each new accumulation window.
	ZeroGrad()

	// GetLR returns the current learning rate.
	GetLR() float64
}

// Config is the base configuration for all optimizers.
type Config struct {
	LR float64 // Learning rate
}

// zeroGrad clears the gradients of params.
func zeroGrad(params []*nn.Parameter) {
	for _, param := range params {
		param.ZeroGrad()
	}
}

// checkGrad validates that a gradient matches its parameter's shape.
func checkGrad(param *nn.Parameter, grad *tensor.Buffer) error {
	if !grad.Shape().Equal(param.Data().Shape()) {
		return errors.Errorf("gradient shape %v does not match parameter %q shape %v",
			grad.Shape(), param.Name(), param.Data().Shape())
	}
	return nil
}
