package autodiff

import (
	"github.com/pkg/errors"
)

// applyBinary runs a binary operation and, if either operand tracks
// gradients, records a node holding both operands.
func applyBinary(rule BinaryRule, a, b *Tensor) (*Tensor, error) {
	if a.Released() || b.Released() {
		return nil, errors.Wrapf(ErrReleased, "%s", rule)
	}

	data, err := rule.forward(a.data, b.data)
	if err != nil {
		return nil, err
	}

	result := newResult(data, a.requiresGrad || b.requiresGrad)
	if result.requiresGrad {
		result.gradFn = newBinaryNode(a, b, rule)
	}
	return result, nil
}

// applyUnary is applyBinary for single-input operations.
func applyUnary(rule UnaryRule, x *Tensor) (*Tensor, error) {
	if x.Released() {
		return nil, errors.Wrapf(ErrReleased, "%s", rule)
	}

	result := newResult(rule.forward(x.data), x.requiresGrad)
	if result.requiresGrad {
		result.gradFn = newUnaryNode(x, rule)
	}
	return result, nil
}

// Add returns a + b element-wise. Shapes must match exactly.
func Add(a, b *Tensor) (*Tensor, error) {
	return applyBinary(BinaryRule{Op: OpAdd}, a, b)
}

// Sub returns a - b element-wise. Shapes must match exactly.
func Sub(a, b *Tensor) (*Tensor, error) {
	return applyBinary(BinaryRule{Op: OpSub}, a, b)
}

// Mul returns a * b element-wise. Shapes must match exactly.
func Mul(a, b *Tensor) (*Tensor, error) {
	return applyBinary(BinaryRule{Op: OpMul}, a, b)
}

// MatMul returns the matrix product of a [M, K] and b [K, N].
func MatMul(a, b *Tensor) (*Tensor, error) {
	return applyBinary(BinaryRule{Op: OpMatMul}, a, b)
}

// Concat joins a and b along dim. All other dimensions must match.
func Concat(a, b *Tensor, dim int) (*Tensor, error) {
	return applyBinary(BinaryRule{Op: OpConcat, Dim: dim}, a, b)
}

// Pow raises x to the fixed power k element-wise.
func Pow(x *Tensor, k float64) (*Tensor, error) {
	return applyUnary(UnaryRule{Op: OpPow, Param: k}, x)
}

// Scale multiplies x by the constant c.
func Scale(x *Tensor, c float64) (*Tensor, error) {
	return applyUnary(UnaryRule{Op: OpScale, Param: c}, x)
}

// ReLU applies max(0, x) element-wise.
func ReLU(x *Tensor) (*Tensor, error) {
	return applyUnary(UnaryRule{Op: OpReLU}, x)
}

// Sigmoid applies 1 / (1 + exp(-x)) element-wise.
func Sigmoid(x *Tensor) (*Tensor, error) {
	return applyUnary(UnaryRule{Op: OpSigmoid}, x)
}

// Tanh applies tanh(x) element-wise.
func Tanh(x *Tensor) (*Tensor, error) {
	return applyUnary(UnaryRule{Op: OpTanh}, x)
}

// Sum reduces x to a single element of shape [1].
func Sum(x *Tensor) (*Tensor, error) {
	return applyUnary(UnaryRule{Op: OpSum}, x)
}

// Mean reduces x to its average, shape [1].
func Mean(x *Tensor) (*Tensor, error) {
	return applyUnary(UnaryRule{Op: OpMean}, x)
}
