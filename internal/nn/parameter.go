package nn

import (
	"github.com/born-ml/dyngrad/internal/autodiff"
	"github.com/born-ml/dyngrad/internal/tensor"
)

// Parameter represents a trainable parameter in a neural network.
//
// A parameter owns one handle to a leaf tensor with requires_grad set.
// Tensor data is immutable, so updating a parameter means replacing its leaf
// with a new one (see Replace).
//
// Example:
//
//	weight := nn.NewParameter("weight", tensor.Zeros(tensor.Shape{2, 1}))
//	y, _ := autodiff.MatMul(x, weight.Tensor())
//	_ = autodiff.BackwardScalar(y)
//	grad := weight.Grad()
type Parameter struct {
	name   string
	tensor *autodiff.Tensor
}

// NewParameter creates a new trainable parameter initialized with buf.
func NewParameter(name string, buf *tensor.Buffer) *Parameter {
	return &Parameter{
		name:   name,
		tensor: autodiff.New(buf, true),
	}
}

// Name returns the parameter name.
func (p *Parameter) Name() string {
	return p.name
}

// Tensor returns the parameter's current leaf tensor.
func (p *Parameter) Tensor() *autodiff.Tensor {
	return p.tensor
}

// Data returns the parameter's current values.
func (p *Parameter) Data() *tensor.Buffer {
	return p.tensor.Data()
}

// Grad returns the gradient accumulated on the parameter, or nil before any
// backward pass.
func (p *Parameter) Grad() *tensor.Buffer {
	return p.tensor.Grad()
}

// ZeroGrad clears the accumulated gradient.
func (p *Parameter) ZeroGrad() {
	p.tensor.ZeroGrad()
}

// Replace swaps in a new leaf holding buf and releases the old one.
// Graphs built from the old leaf keep their own handles to it.
func (p *Parameter) Replace(buf *tensor.Buffer) {
	old := p.tensor
	p.tensor = autodiff.New(buf, true)
	old.Release()
}
