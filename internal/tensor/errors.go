package tensor

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrShapeMismatch is the sentinel matched by every shape incompatibility.
var ErrShapeMismatch = errors.New("shape mismatch")

// ShapeMismatchError reports the two operand shapes an operation rejected.
type ShapeMismatchError struct {
	Op string // Operation name (e.g., "add", "matmul")
	A  Shape
	B  Shape
}

// Error implements the error interface.
func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("%s: shape mismatch: %v vs %v", e.Op, e.A, e.B)
}

// Unwrap lets errors.Is match ErrShapeMismatch.
func (e *ShapeMismatchError) Unwrap() error {
	return ErrShapeMismatch
}

func shapeMismatch(op string, a, b Shape) error {
	return errors.WithStack(&ShapeMismatchError{Op: op, A: a.Clone(), B: b.Clone()})
}
