// Package tensor provides the numeric buffer that every autodiff tensor wraps.
//
// A Buffer is an immutable, row-major array of float64 values with a Shape.
// Every operation allocates a new Buffer; no exported method writes into an
// existing one. Elementwise kernels delegate to gonum's floats package and
// matrix contraction to gonum's mat package.
package tensor

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// Buffer is an n-dimensional array of float64 values.
type Buffer struct {
	data   []float64
	shape  Shape
	stride []int
}

// newBuffer wraps data without copying. Callers must hand over ownership.
func newBuffer(data []float64, shape Shape) *Buffer {
	return &Buffer{
		data:   data,
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
	}
}

// Shape returns the buffer's shape.
func (b *Buffer) Shape() Shape {
	return b.shape.Clone()
}

// Strides returns the buffer's row-major strides.
func (b *Buffer) Strides() []int {
	return append([]int(nil), b.stride...)
}

// NumElements returns the total number of elements.
func (b *Buffer) NumElements() int {
	return len(b.data)
}

// Data returns a copy of the buffer's values in row-major order.
func (b *Buffer) Data() []float64 {
	return append([]float64(nil), b.data...)
}

// At returns the element at the given indices.
// Panics if indices are out of bounds.
func (b *Buffer) At(indices ...int) float64 {
	if len(indices) != len(b.shape) {
		panic(fmt.Sprintf("expected %d indices, got %d", len(b.shape), len(indices)))
	}

	offset := 0
	for i, idx := range indices {
		if idx < 0 || idx >= b.shape[i] {
			panic(fmt.Sprintf("index %d out of bounds for dimension %d (size %d)", idx, i, b.shape[i]))
		}
		offset += idx * b.stride[i]
	}
	return b.data[offset]
}

// Item returns the single value of a one-element buffer.
// Panics if the buffer holds more than one element.
func (b *Buffer) Item() float64 {
	if len(b.data) != 1 {
		panic(fmt.Sprintf("Item() only works for one-element buffers, got shape %v", b.shape))
	}
	return b.data[0]
}

// Equal reports whether both buffers have the same shape and values.
func (b *Buffer) Equal(other *Buffer) bool {
	return b.shape.Equal(other.shape) && floats.Equal(b.data, other.data)
}

// EqualApprox is Equal with an absolute/relative tolerance per element.
func (b *Buffer) EqualApprox(other *Buffer, tol float64) bool {
	return b.shape.Equal(other.shape) && floats.EqualApprox(b.data, other.data, tol)
}

// String returns a human-readable representation of the buffer.
func (b *Buffer) String() string {
	var sb strings.Builder
	sb.WriteString("Buffer")
	fmt.Fprintf(&sb, "%v", []int(b.shape))
	sb.WriteString("(")
	for i, v := range b.data {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%g", v)
	}
	sb.WriteString(")")
	return sb.String()
}
