package nn

import (
	"math/rand"

	"github.com/born-ml/dyngrad/internal/autodiff"
	"github.com/born-ml/dyngrad/internal/tensor"
	"github.com/pkg/errors"
)

// Linear implements a fully connected (dense) layer.
//
// Performs the transformation: y = x @ W + b
// where:
//   - x is the input tensor with shape [1, in_features]
//   - W is the weight matrix with shape [in_features, out_features]
//   - b is the bias row with shape [1, out_features]
//   - y is the output tensor with shape [1, out_features]
//
// The engine has no broadcasting, so the layer takes one sample at a time.
// Weights are initialized using Xavier/Glorot initialization.
// Biases are initialized to zeros.
type Linear struct {
	inFeatures  int
	outFeatures int
	weight      *Parameter
	bias        *Parameter
}

// NewLinear creates a new Linear layer drawing its weights from rng.
func NewLinear(inFeatures, outFeatures int, rng *rand.Rand) *Linear {
	weightShape := tensor.Shape{inFeatures, outFeatures}
	weight := NewParameter("weight", tensor.XavierUniform(inFeatures, outFeatures, weightShape, rng))
	bias := NewParameter("bias", tensor.Zeros(tensor.Shape{1, outFeatures}))

	return &Linear{
		inFeatures:  inFeatures,
		outFeatures: outFeatures,
		weight:      weight,
		bias:        bias,
	}
}

// Forward computes x @ W + b.
func (l *Linear) Forward(input *autodiff.Tensor) (*autodiff.Tensor, error) {
	inputShape := input.Shape()
	if len(inputShape) != 2 || inputShape[0] != 1 || inputShape[1] != l.inFeatures {
		return nil, errors.Errorf("Linear.Forward: expected input shape [1 %d], got %v", l.inFeatures, inputShape)
	}

	output, err := autodiff.MatMul(input, l.weight.Tensor())
	if err != nil {
		return nil, errors.Wrap(err, "Linear.Forward")
	}
	defer output.Release()
	return autodiff.Add(output, l.bias.Tensor())
}

// Parameters returns [weight, bias].
func (l *Linear) Parameters() []*Parameter {
	return []*Parameter{l.weight, l.bias}
}

// Weight returns the weight parameter.
func (l *Linear) Weight() *Parameter {
	return l.weight
}

// Bias returns the bias parameter.
func (l *Linear) Bias() *Parameter {
	return l.bias
}

// InFeatures returns the number of input features.
func (l *Linear) InFeatures() int {
	return l.inFeatures
}

// OutFeatures returns the number of output features.
func (l *Linear) OutFeatures() int {
	return l.outFeatures
}

// StateDict returns a map of parameter names to their current values.
func (l *Linear) StateDict() map[string]*tensor.Buffer {
	return map[string]*tensor.Buffer{
		"weight": l.weight.Data(),
		"bias":   l.bias.Data(),
	}
}

// LoadStateDict replaces the parameters with values from a state dictionary.
func (l *Linear) LoadStateDict(stateDict map[string]*tensor.Buffer) error {
	expected := map[string]tensor.Shape{
		"weight": {l.inFeatures, l.outFeatures},
		"bias":   {1, l.outFeatures},
	}
	for name, shape := range expected {
		buf, ok := stateDict[name]
		if !ok {
			return errors.Errorf("missing %s in state dict", name)
		}
		if !buf.Shape().Equal(shape) {
			return errors.Errorf("%s shape mismatch: expected %v, got %v", name, shape, buf.Shape())
		}
	}

	l.weight.Replace(stateDict["weight"])
	l.bias.Replace(stateDict["bias"])
	return nil
}
