// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public API for the numeric buffers the
// autodiff engine computes on.
//
// A Buffer is an immutable row-major float64 array with a Shape. Every
// operation returns a new Buffer.
//
// Example:
//
//	a := tensor.MustFromSlice([]float64{1, 2, 3, 4}, tensor.Shape{2, 2})
//	b := tensor.Ones(tensor.Shape{2, 2})
//	c, err := a.Add(b)
package tensor

import (
	"math/rand"

	"github.com/born-ml/dyngrad/internal/tensor"
)

// Shape represents tensor dimensions.
type Shape = tensor.Shape

// Buffer is an immutable n-dimensional float64 array.
type Buffer = tensor.Buffer

// ShapeMismatchError reports the operand shapes of a failed operation.
type ShapeMismatchError = tensor.ShapeMismatchError

// ErrShapeMismatch is matched by every shape error.
var ErrShapeMismatch = tensor.ErrShapeMismatch

// FromSlice creates a Buffer holding a copy of data.
func FromSlice(data []float64, shape Shape) (*Buffer, error) {
	return tensor.FromSlice(data, shape)
}

// MustFromSlice is FromSlice that panics on error.
func MustFromSlice(data []float64, shape Shape) *Buffer {
	return tensor.MustFromSlice(data, shape)
}

// Vector creates a 1-D Buffer.
func Vector(values ...float64) *Buffer {
	return tensor.Vector(values...)
}

// Scalar creates a Buffer of shape [1].
func Scalar(v float64) *Buffer {
	return tensor.Scalar(v)
}

// Zeros creates a Buffer filled with zeros.
func Zeros(shape Shape) *Buffer {
	return tensor.Zeros(shape)
}

// Ones creates a Buffer filled with ones.
func Ones(shape Shape) *Buffer {
	return tensor.Ones(shape)
}

// Full creates a Buffer filled with value.
func Full(shape Shape, value float64) *Buffer {
	return tensor.Full(shape, value)
}

// Randn creates a Buffer of standard normal samples drawn from rng.
func Randn(shape Shape, rng *rand.Rand) *Buffer {
	return tensor.Randn(shape, rng)
}

// Concat joins a and b along dim.
func Concat(a, b *Buffer, dim int) (*Buffer, error) {
	return tensor.Concat(a, b, dim)
}
