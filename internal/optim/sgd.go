package optim

import (
	"github.com/born-ml/dyngrad/internal/nn"
	"github.com/born-ml/dyngrad/internal/tensor"
	"github.com/pkg/errors"
)

// SGD implements Stochastic Gradient Descent optimizer with optional momentum.
//
// Update rule without momentum:
//
//	param = param - lr * gradient
//
// Update rule with momentum:
//
//	velocity = momentum * velocity + gradient
//	param = param - lr * velocity
type SGD struct {
	params     []*nn.Parameter
	lr         float64
	momentum   float64
	velocities map[*nn.Parameter]*tensor.Buffer
}

// SGDConfig holds configuration for SGD optimizer.
type SGDConfig struct {
	LR       float64 // Learning rate (default: 0.01)
	Momentum float64 // Momentum factor (default: 0.0, range: [0, 1))
}

// NewSGD creates a new SGD optimizer.
func NewSGD(params []*nn.Parameter, config SGDConfig) *SGD {
	if config.LR == 0 {
		config.LR = 0.01
	}

	return &SGD{
		params:     params,
		lr:         config.LR,
		momentum:   config.Momentum,
		velocities: make(map[*nn.Parameter]*tensor.Buffer),
	}
}

// Step performs a single optimization step.
func (s *SGD) Step() error {
	for _, param := range s.params {
		grad := param.Grad()
		if grad == nil {
			// Parameter didn't participate in forward pass, skip
			continue
		}
		if err := checkGrad(param, grad); err != nil {
			return errors.Wrap(err, "sgd")
		}

		update := grad
		if s.momentum != 0 {
			velocity, ok := s.velocities[param]
			if !ok {
				velocity = tensor.Zeros(grad.Shape())
			}
			next, err := velocity.Scale(s.momentum).Add(grad)
			if err != nil {
				return errors.Wrap(err, "sgd")
			}
			s.velocities[param] = next
			update = next
		}

		updated, err := param.Data().Sub(update.Scale(s.lr))
		if err != nil {
			return errors.Wrap(err, "sgd")
		}
		param.Replace(updated)
	}
	return nil
}

// ZeroGrad clears gradients for all parameters.
func (s *SGD) ZeroGrad() {
	zeroGrad(s.params)
}

// GetLR returns the current learning rate.
func (s *SGD) GetLR() float64 {
	return s.lr
}

// SetLR updates the learning rate.
func (s *SGD) SetLR(lr float64) {
	s.lr = lr
}
