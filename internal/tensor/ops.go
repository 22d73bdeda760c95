package tensor

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Add performs element-wise addition. Shapes must match exactly.
func (b *Buffer) Add(other *Buffer) (*Buffer, error) {
	if !b.shape.Equal(other.shape) {
		return nil, shapeMismatch("add", b.shape, other.shape)
	}
	out := make([]float64, len(b.data))
	floats.AddTo(out, b.data, other.data)
	return newBuffer(out, b.shape), nil
}

// Sub performs element-wise subtraction. Shapes must match exactly.
func (b *Buffer) Sub(other *Buffer) (*Buffer, error) {
	if !b.shape.Equal(other.shape) {
		return nil, shapeMismatch("sub", b.shape, other.shape)
	}
	out := make([]float64, len(b.data))
	floats.SubTo(out, b.data, other.data)
	return newBuffer(out, b.shape), nil
}

// Mul performs element-wise multiplication. Shapes must match exactly.
func (b *Buffer) Mul(other *Buffer) (*Buffer, error) {
	if !b.shape.Equal(other.shape) {
		return nil, shapeMismatch("mul", b.shape, other.shape)
	}
	out := make([]float64, len(b.data))
	floats.MulTo(out, b.data, other.data)
	return newBuffer(out, b.shape), nil
}

// Scale multiplies every element by c.
func (b *Buffer) Scale(c float64) *Buffer {
	out := make([]float64, len(b.data))
	floats.ScaleTo(out, c, b.data)
	return newBuffer(out, b.shape)
}

// AddScalar adds c to every element.
func (b *Buffer) AddScalar(c float64) *Buffer {
	out := b.Data()
	floats.AddConst(c, out)
	return newBuffer(out, b.shape)
}

// PowScalar raises every element to the power k.
func (b *Buffer) PowScalar(k float64) *Buffer {
	return b.Map(func(v float64) float64 { return math.Pow(v, k) })
}

// Map applies f to every element.
func (b *Buffer) Map(f func(float64) float64) *Buffer {
	out := make([]float64, len(b.data))
	for i, v := range b.data {
		out[i] = f(v)
	}
	return newBuffer(out, b.shape)
}

// Sum returns the total sum as a buffer of shape [1].
func (b *Buffer) Sum() *Buffer {
	return Scalar(floats.Sum(b.data))
}

// MatMul performs matrix multiplication: [M, K] @ [K, N] -> [M, N].
func (b *Buffer) MatMul(other *Buffer) (*Buffer, error) {
	if len(b.shape) != 2 || len(other.shape) != 2 || b.shape[1] != other.shape[0] {
		return nil, shapeMismatch("matmul", b.shape, other.shape)
	}
	m, k, n := b.shape[0], b.shape[1], other.shape[1]

	out := mat.NewDense(m, n, nil)
	out.Mul(mat.NewDense(m, k, b.data), mat.NewDense(k, n, other.data))

	return newBuffer(out.RawMatrix().Data, Shape{m, n}), nil
}

// Transpose swaps rows and columns of a 2-D buffer.
// Panics if the buffer is not 2-D.
func (b *Buffer) Transpose() *Buffer {
	if len(b.shape) != 2 {
		panic("Transpose() only works for 2-D buffers")
	}
	rows, cols := b.shape[0], b.shape[1]
	t := mat.DenseCopyOf(mat.NewDense(rows, cols, b.data).T())
	return newBuffer(t.RawMatrix().Data, Shape{cols, rows})
}
