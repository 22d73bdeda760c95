package nn

import (
	"github.com/born-ml/dyngrad/internal/autodiff"
	"github.com/pkg/errors"
)

// MSELoss computes Mean Squared Error loss.
//
// Loss = mean((predictions - targets)²)
//
// Example:
//
//	mse := nn.NewMSELoss()
//	loss, err := mse.Forward(predictions, targets)
//	err = autodiff.BackwardScalar(loss)
type MSELoss struct{}

// NewMSELoss creates a new MSE loss function.
func NewMSELoss() *MSELoss {
	return &MSELoss{}
}

// Forward computes the MSE loss as a tensor of shape [1].
// Predictions and targets must have the same shape.
func (m *MSELoss) Forward(predictions, targets *autodiff.Tensor) (*autodiff.Tensor, error) {
	diff, err := autodiff.Sub(predictions, targets)
	if err != nil {
		return nil, errors.Wrap(err, "MSELoss")
	}
	squared, err := autodiff.Pow(diff, 2)
	diff.Release()
	if err != nil {
		return nil, errors.Wrap(err, "MSELoss")
	}
	defer squared.Release()
	return autodiff.Mean(squared)
}
