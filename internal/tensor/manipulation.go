package tensor

import (
	"github.com/pkg/errors"
)

// Concat joins a and b along dim. Both must have the same rank and agree on
// every other dimension.
//
// Example:
//
//	a := tensor.Zeros(tensor.Shape{1, 2})
//	b := tensor.Ones(tensor.Shape{1, 2})
//	c, _ := tensor.Concat(a, b, 1) // Shape: [1, 4]
func Concat(a, b *Buffer, dim int) (*Buffer, error) {
	if dim < 0 || dim >= len(a.shape) || !a.shape.sameExcept(b.shape, dim) {
		return nil, shapeMismatch("concat", a.shape, b.shape)
	}

	outShape := a.shape.Clone()
	outShape[dim] = a.shape[dim] + b.shape[dim]

	outer := a.shape.product(0, dim)
	blockA := a.shape.product(dim, len(a.shape))
	blockB := b.shape.product(dim, len(b.shape))

	out := make([]float64, 0, outShape.NumElements())
	for o := 0; o < outer; o++ {
		out = append(out, a.data[o*blockA:(o+1)*blockA]...)
		out = append(out, b.data[o*blockB:(o+1)*blockB]...)
	}
	return newBuffer(out, outShape), nil
}

// Split is the inverse of Concat: it cuts b along dim into a part of size
// sizeA and the remainder.
func (b *Buffer) Split(dim, sizeA int) (*Buffer, *Buffer, error) {
	if dim < 0 || dim >= len(b.shape) {
		return nil, nil, errors.Errorf("split: dim %d out of range for shape %v", dim, b.shape)
	}
	if sizeA <= 0 || sizeA >= b.shape[dim] {
		return nil, nil, errors.Errorf("split: size %d out of range for dimension %d of shape %v", sizeA, dim, b.shape)
	}

	shapeA := b.shape.Clone()
	shapeA[dim] = sizeA
	shapeB := b.shape.Clone()
	shapeB[dim] = b.shape[dim] - sizeA

	outer := b.shape.product(0, dim)
	blockA := shapeA.product(dim, len(shapeA))
	blockB := shapeB.product(dim, len(shapeB))

	dataA := make([]float64, 0, shapeA.NumElements())
	dataB := make([]float64, 0, shapeB.NumElements())
	for o := 0; o < outer; o++ {
		start := o * (blockA + blockB)
		dataA = append(dataA, b.data[start:start+blockA]...)
		dataB = append(dataB, b.data[start+blockA:start+blockA+blockB]...)
	}
	return newBuffer(dataA, shapeA), newBuffer(dataB, shapeB), nil
}
