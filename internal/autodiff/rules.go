package autodiff

import (
	"fmt"
	"math"

	"github.com/born-ml/dyngrad/internal/tensor"
)

// UnaryOp enumerates single-input operations.
type UnaryOp int

// Supported unary operations.
const (
	OpPow UnaryOp = iota
	OpReLU
	OpSigmoid
	OpTanh
	OpSum
	OpMean
	OpScale
)

// String returns the operation name.
func (op UnaryOp) String() string {
	switch op {
	case OpPow:
		return "Pow"
	case OpReLU:
		return "ReLU"
	case OpSigmoid:
		return "Sigmoid"
	case OpTanh:
		return "Tanh"
	case OpSum:
		return "Sum"
	case OpMean:
		return "Mean"
	case OpScale:
		return "Scale"
	default:
		return fmt.Sprintf("UnaryOp(%d)", int(op))
	}
}

// UnaryRule is the backward rule of a unary node. Param holds the captured
// operation parameter: the exponent for Pow, the factor for Scale.
type UnaryRule struct {
	Op    UnaryOp
	Param float64
}

// String returns the rule name.
func (r UnaryRule) String() string {
	return r.Op.String()
}

// forward computes the operation's output.
func (r UnaryRule) forward(x *tensor.Buffer) *tensor.Buffer {
	switch r.Op {
	case OpPow:
		return x.PowScalar(r.Param)
	case OpReLU:
		return x.Map(func(v float64) float64 { return math.Max(0, v) })
	case OpSigmoid:
		return x.Map(sigmoid)
	case OpTanh:
		return x.Map(math.Tanh)
	case OpSum:
		return x.Sum()
	case OpMean:
		return x.Sum().Scale(1 / float64(x.NumElements()))
	case OpScale:
		return x.Scale(r.Param)
	default:
		panic(fmt.Sprintf("autodiff: unknown unary op %s", r.Op))
	}
}

// backward maps the upstream gradient to the input gradient.
//
//   - Pow(k):   grad * k * x^(k-1)
//   - ReLU:     grad * (x > 0)
//   - Sigmoid:  grad * y * (1 - y), using the output y
//   - Tanh:     grad * (1 - y²), using the output y
//   - Sum:      grad[0] broadcast to shape(x)
//   - Mean:     grad[0] / n broadcast to shape(x)
//   - Scale(c): grad * c
func (r UnaryRule) backward(x, y, grad *tensor.Buffer) (*tensor.Buffer, error) {
	switch r.Op {
	case OpPow:
		k := r.Param
		if k == 0 {
			return tensor.Zeros(x.Shape()), nil
		}
		return x.Map(func(v float64) float64 { return k * math.Pow(v, k-1) }).Mul(grad)
	case OpReLU:
		return x.Map(func(v float64) float64 {
			if v > 0 {
				return 1
			}
			return 0
		}).Mul(grad)
	case OpSigmoid:
		return y.Map(func(v float64) float64 { return v * (1 - v) }).Mul(grad)
	case OpTanh:
		return y.Map(func(v float64) float64 { return 1 - v*v }).Mul(grad)
	case OpSum:
		return tensor.Full(x.Shape(), grad.Item()), nil
	case OpMean:
		return tensor.Full(x.Shape(), grad.Item()/float64(x.NumElements())), nil
	case OpScale:
		return grad.Scale(r.Param), nil
	default:
		panic(fmt.Sprintf("autodiff: unknown unary op %s", r.Op))
	}
}

// BinaryOp enumerates two-input operations.
type BinaryOp int

// Supported binary operations.
const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpMatMul
	OpConcat
)

// String returns the operation name.
func (op BinaryOp) String() string {
	switch op {
	case OpAdd:
		return "Add"
	case OpSub:
		return "Sub"
	case OpMul:
		return "Mul"
	case OpMatMul:
		return "MatMul"
	case OpConcat:
		return "Concat"
	default:
		return fmt.Sprintf("BinaryOp(%d)", int(op))
	}
}

// BinaryRule is the backward rule of a binary node. Dim is the concatenation
// axis for Concat and unused otherwise.
type BinaryRule struct {
	Op  BinaryOp
	Dim int
}

// String returns the rule name.
func (r BinaryRule) String() string {
	return r.Op.String()
}

// forward computes the operation's output, validating operand shapes.
func (r BinaryRule) forward(a, b *tensor.Buffer) (*tensor.Buffer, error) {
	switch r.Op {
	case OpAdd:
		return a.Add(b)
	case OpSub:
		return a.Sub(b)
	case OpMul:
		return a.Mul(b)
	case OpMatMul:
		return a.MatMul(b)
	case OpConcat:
		return tensor.Concat(a, b, r.Dim)
	default:
		panic(fmt.Sprintf("autodiff: unknown binary op %s", r.Op))
	}
}

// backward maps the upstream gradient to the gradients of both inputs.
//
//   - Add:    grad, grad
//   - Sub:    grad, -grad
//   - Mul:    grad * b, grad * a
//   - MatMul: grad @ bᵀ, aᵀ @ grad
//   - Concat: grad split along Dim at size(a)
func (r BinaryRule) backward(a, b, grad *tensor.Buffer) (*tensor.Buffer, *tensor.Buffer, error) {
	switch r.Op {
	case OpAdd:
		return grad, grad, nil
	case OpSub:
		return grad, grad.Scale(-1), nil
	case OpMul:
		gradA, err := grad.Mul(b)
		if err != nil {
			return nil, nil, err
		}
		gradB, err := grad.Mul(a)
		if err != nil {
			return nil, nil, err
		}
		return gradA, gradB, nil
	case OpMatMul:
		gradA, err := grad.MatMul(b.Transpose())
		if err != nil {
			return nil, nil, err
		}
		gradB, err := a.Transpose().MatMul(grad)
		if err != nil {
			return nil, nil, err
		}
		return gradA, gradB, nil
	case OpConcat:
		return grad.Split(r.Dim, a.Shape()[r.Dim])
	default:
		panic(fmt.Sprintf("autodiff: unknown binary op %s", r.Op))
	}
}

func sigmoid(v float64) float64 {
	return 1 / (1 + math.Exp(-v))
}
