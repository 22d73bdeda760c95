package tensor

import (
	"math"
	"math/rand"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// FromSlice creates a buffer from a Go slice.
// The slice is copied, so later writes to data do not affect the buffer.
//
// Example:
//
//	b, err := tensor.FromSlice([]float64{1, 2, 3, 4}, tensor.Shape{2, 2})
func FromSlice(data []float64, shape Shape) (*Buffer, error) {
	if err := shape.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid shape")
	}
	if shape.NumElements() != len(data) {
		return nil, errors.Errorf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(data))
	}
	return newBuffer(append([]float64(nil), data...), shape), nil
}

// MustFromSlice is FromSlice that panics on error.
// Intended for literals in tests and examples.
func MustFromSlice(data []float64, shape Shape) *Buffer {
	b, err := FromSlice(data, shape)
	if err != nil {
		panic(err)
	}
	return b
}

// Vector creates a 1-D buffer holding a copy of values.
func Vector(values ...float64) *Buffer {
	return MustFromSlice(values, Shape{len(values)})
}

// Scalar creates a buffer of shape [1] holding v.
func Scalar(v float64) *Buffer {
	return newBuffer([]float64{v}, Shape{1})
}

// Zeros creates a buffer filled with zeros.
// Panics if the shape is invalid.
func Zeros(shape Shape) *Buffer {
	if err := shape.Validate(); err != nil {
		panic(err)
	}
	return newBuffer(make([]float64, shape.NumElements()), shape)
}

// Ones creates a buffer filled with ones.
func Ones(shape Shape) *Buffer {
	return Full(shape, 1)
}

// Full creates a buffer filled with a specific value.
func Full(shape Shape, value float64) *Buffer {
	b := Zeros(shape)
	floats.AddConst(value, b.data)
	return b
}

// Randn creates a buffer with values drawn from N(0, 1).
// Note: Uses math/rand (not crypto/rand) - appropriate for ML/statistical purposes.
func Randn(shape Shape, rng *rand.Rand) *Buffer {
	b := Zeros(shape)
	for i := range b.data {
		b.data[i] = rng.NormFloat64()
	}
	return b
}

// Uniform creates a buffer with values drawn uniformly from [low, high).
func Uniform(shape Shape, low, high float64, rng *rand.Rand) *Buffer {
	b := Zeros(shape)
	for i := range b.data {
		b.data[i] = low + rng.Float64()*(high-low)
	}
	return b
}

// XavierUniform draws from U(-sqrt(6/(fanIn+fanOut)), sqrt(6/(fanIn+fanOut))).
func XavierUniform(fanIn, fanOut int, shape Shape, rng *rand.Rand) *Buffer {
	bound := math.Sqrt(6.0 / float64(fanIn+fanOut))
	return Uniform(shape, -bound, bound, rng)
}
