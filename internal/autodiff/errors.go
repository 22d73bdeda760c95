package autodiff

import (
	"fmt"

	"github.com/born-ml/dyngrad/internal/tensor"
	"github.com/pkg/errors"
)

// Errors returned by operation constructors and Backward.
var (
	// ErrShapeMismatch is returned when operand shapes are incompatible.
	ErrShapeMismatch = tensor.ErrShapeMismatch

	// ErrNotDifferentiable is returned by Backward on a tensor that does not require grad.
	ErrNotDifferentiable = errors.New("tensor does not require grad")

	// ErrSeedShapeMismatch is returned by Backward when the seed shape differs from the output shape.
	ErrSeedShapeMismatch = errors.New("seed shape mismatch")

	// ErrReleased is returned when a released tensor is used as an operand or output.
	ErrReleased = errors.New("tensor has been released")
)

// ShapeMismatchError identifies the two shapes an operation rejected.
type ShapeMismatchError = tensor.ShapeMismatchError

// SeedShapeMismatchError identifies the output shape and the seed shape given to Backward.
type SeedShapeMismatchError struct {
	Output tensor.Shape
	Seed   tensor.Shape
}

// Error implements the error interface.
func (e *SeedShapeMismatchError) Error() string {
	return fmt.Sprintf("backward: seed shape %v does not match output shape %v", e.Seed, e.Output)
}

// Unwrap lets errors.Is match ErrSeedShapeMismatch.
func (e *SeedShapeMismatchError) Unwrap() error {
	return ErrSeedShapeMismatch
}
