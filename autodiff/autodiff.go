// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides define-by-run reverse-mode automatic differentiation.
//
// Every operation on a Tensor computes its result immediately and, when any
// operand requires gradients, records a node linking the result to its
// inputs. Backward walks that graph from an output and accumulates
// gradients on the leaves.
//
// Example:
//
//	import (
//	    "github.com/born-ml/dyngrad/autodiff"
//	    "github.com/born-ml/dyngrad/tensor"
//	)
//
//	func main() {
//	    a := autodiff.New(tensor.Vector(3, 2), true)
//	    b := autodiff.New(tensor.Vector(2, 0.1), true)
//
//	    z, _ := autodiff.Mul(a, b) // [6, 0.2]
//	    _ = autodiff.Backward(z, tensor.Ones(z.Shape()))
//
//	    fmt.Println(a.Grad()) // [2, 0.1]
//	    fmt.Println(b.Grad()) // [3, 2]
//	}
package autodiff

import (
	"github.com/born-ml/dyngrad/internal/autodiff"
	"github.com/born-ml/dyngrad/internal/tensor"
)

// Tensor is a node of the computation graph. A *Tensor is a shared handle:
// Clone adds a handle, Release drops one.
type Tensor = autodiff.Tensor

// Node records how a non-leaf tensor was produced.
type Node = autodiff.Node

// Options controls a backward pass.
type Options = autodiff.Options

// Errors.
var (
	ErrShapeMismatch     = autodiff.ErrShapeMismatch
	ErrNotDifferentiable = autodiff.ErrNotDifferentiable
	ErrSeedShapeMismatch = autodiff.ErrSeedShapeMismatch
	ErrReleased          = autodiff.ErrReleased
)

// New creates a leaf tensor over buf.
func New(buf *tensor.Buffer, requiresGrad bool) *Tensor {
	return autodiff.New(buf, requiresGrad)
}

// FromSlice creates a leaf tensor holding a copy of data.
func FromSlice(data []float64, shape tensor.Shape, requiresGrad bool) (*Tensor, error) {
	return autodiff.FromSlice(data, shape, requiresGrad)
}

// Operations

// Add returns a + b element-wise.
func Add(a, b *Tensor) (*Tensor, error) { return autodiff.Add(a, b) }

// Sub returns a - b element-wise.
func Sub(a, b *Tensor) (*Tensor, error) { return autodiff.Sub(a, b) }

// Mul returns a * b element-wise.
func Mul(a, b *Tensor) (*Tensor, error) { return autodiff.Mul(a, b) }

// MatMul returns the 2-D matrix product a @ b.
func MatMul(a, b *Tensor) (*Tensor, error) { return autodiff.MatMul(a, b) }

// Concat joins a and b along dim.
func Concat(a, b *Tensor, dim int) (*Tensor, error) { return autodiff.Concat(a, b, dim) }

// Pow raises x to the constant power k element-wise.
func Pow(x *Tensor, k float64) (*Tensor, error) { return autodiff.Pow(x, k) }

// Scale multiplies x by the constant c.
func Scale(x *Tensor, c float64) (*Tensor, error) { return autodiff.Scale(x, c) }

// ReLU applies max(0, x) element-wise.
func ReLU(x *Tensor) (*Tensor, error) { return autodiff.ReLU(x) }

// Sigmoid applies 1/(1+e^-x) element-wise.
func Sigmoid(x *Tensor) (*Tensor, error) { return autodiff.Sigmoid(x) }

// Tanh applies tanh element-wise.
func Tanh(x *Tensor) (*Tensor, error) { return autodiff.Tanh(x) }

// Sum reduces x to a tensor of shape [1].
func Sum(x *Tensor) (*Tensor, error) { return autodiff.Sum(x) }

// Mean reduces x to its mean, shape [1].
func Mean(x *Tensor) (*Tensor, error) { return autodiff.Mean(x) }

// Backward propagation

// Backward propagates seed (the gradient of the output) through the graph
// and accumulates gradients on every leaf that requires them.
func Backward(output *Tensor, seed *tensor.Buffer) error {
	return autodiff.Backward(output, seed)
}

// BackwardScalar is Backward with a seed of ones.
func BackwardScalar(output *Tensor) error {
	return autodiff.BackwardScalar(output)
}

// BackwardWithOptions is Backward with explicit options.
func BackwardWithOptions(output *Tensor, seed *tensor.Buffer, opts Options) error {
	return autodiff.BackwardWithOptions(output, seed, opts)
}

// Trace returns the tensors reachable from output in backward order.
func Trace(output *Tensor) []*Tensor {
	return autodiff.Trace(output)
}
