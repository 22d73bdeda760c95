package nn

import (
	"math"
	"math/rand"
	"testing"

	"github.com/born-ml/dyngrad/internal/autodiff"
	"github.com/born-ml/dyngrad/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sigmoid computes sigmoid for testing.
func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

func row(values ...float64) *autodiff.Tensor {
	return autodiff.New(tensor.MustFromSlice(values, tensor.Shape{1, len(values)}), false)
}

func TestLinear_Shapes(t *testing.T) {
	layer := NewLinear(3, 2, rand.New(rand.NewSource(42)))

	assert.Equal(t, 3, layer.InFeatures())
	assert.Equal(t, 2, layer.OutFeatures())
	assert.Equal(t, tensor.Shape{3, 2}, layer.Weight().Data().Shape())
	assert.Equal(t, tensor.Shape{1, 2}, layer.Bias().Data().Shape())
	assert.Equal(t, []float64{0, 0}, layer.Bias().Data().Data())
	assert.Len(t, layer.Parameters(), 2)

	out, err := layer.Forward(row(1, 2, 3))
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{1, 2}, out.Shape())
}

func TestLinear_ForwardBackward(t *testing.T) {
	layer := NewLinear(2, 1, rand.New(rand.NewSource(1)))
	require.NoError(t, layer.LoadStateDict(map[string]*tensor.Buffer{
		"weight": tensor.MustFromSlice([]float64{2, -1}, tensor.Shape{2, 1}),
		"bias":   tensor.MustFromSlice([]float64{0.5}, tensor.Shape{1, 1}),
	}))

	x := row(3, 4)
	out, err := layer.Forward(x)
	require.NoError(t, err)
	assert.InDelta(t, 2*3-4+0.5, out.Data().Item(), 1e-12)

	require.NoError(t, autodiff.BackwardScalar(out))
	assert.InDeltaSlice(t, []float64{3, 4}, layer.Weight().Grad().Data(), 1e-12)
	assert.InDeltaSlice(t, []float64{1}, layer.Bias().Grad().Data(), 1e-12)
	assert.Nil(t, x.Grad(), "inputs without requires_grad get no gradient")
}

func TestLinear_RejectsBadInput(t *testing.T) {
	layer := NewLinear(2, 1, rand.New(rand.NewSource(1)))

	_, err := layer.Forward(row(1, 2, 3))
	assert.Error(t, err)

	_, err = layer.Forward(autodiff.New(tensor.Vector(1, 2), false))
	assert.Error(t, err)
}

func TestLinear_LoadStateDictErrors(t *testing.T) {
	layer := NewLinear(2, 1, rand.New(rand.NewSource(1)))

	err := layer.LoadStateDict(map[string]*tensor.Buffer{
		"weight": tensor.Zeros(tensor.Shape{2, 1}),
	})
	assert.ErrorContains(t, err, "missing bias")

	err = layer.LoadStateDict(map[string]*tensor.Buffer{
		"weight": tensor.Zeros(tensor.Shape{1, 2}),
		"bias":   tensor.Zeros(tensor.Shape{1, 1}),
	})
	assert.ErrorContains(t, err, "weight shape mismatch")
}

func TestLinear_StateDictRoundTrip(t *testing.T) {
	src := NewLinear(2, 3, rand.New(rand.NewSource(7)))
	dst := NewLinear(2, 3, rand.New(rand.NewSource(8)))

	require.NoError(t, dst.LoadStateDict(src.StateDict()))
	assert.True(t, src.Weight().Data().Equal(dst.Weight().Data()))
	assert.True(t, src.Bias().Data().Equal(dst.Bias().Data()))
}

func TestActivations(t *testing.T) {
	x := row(-1, 0, 2)

	relu, err := NewReLU().Forward(x)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 2}, relu.Data().Data())

	sig, err := NewSigmoid().Forward(x)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{sigmoid(-1), 0.5, sigmoid(2)}, sig.Data().Data(), 1e-12)

	th, err := NewTanh().Forward(x)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{math.Tanh(-1), 0, math.Tanh(2)}, th.Data().Data(), 1e-12)

	assert.Nil(t, NewReLU().Parameters())
	assert.Nil(t, NewSigmoid().Parameters())
	assert.Nil(t, NewTanh().Parameters())
}

func TestSequential(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	model := NewSequential(
		NewLinear(2, 4, rng),
		NewTanh(),
		NewLinear(4, 1, rng),
		NewSigmoid(),
	)

	assert.Equal(t, 4, model.Len())
	assert.Len(t, model.Parameters(), 4)
	assert.IsType(t, &Tanh{}, model.Module(1))

	out, err := model.Forward(row(0.5, -0.5))
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{1, 1}, out.Shape())

	require.NoError(t, autodiff.BackwardScalar(out))
	for _, p := range model.Parameters() {
		assert.NotNil(t, p.Grad(), "parameter %s has no gradient", p.Name())
	}
}

func TestSequential_WrapsErrors(t *testing.T) {
	model := NewSequential(NewTanh(), NewLinear(3, 1, rand.New(rand.NewSource(1))))

	_, err := model.Forward(row(1, 2))
	assert.ErrorContains(t, err, "sequential module 1")
}

func TestMSELoss(t *testing.T) {
	pred := autodiff.New(tensor.MustFromSlice([]float64{1, 2}, tensor.Shape{1, 2}), true)
	target := row(0, 4)

	loss, err := NewMSELoss().Forward(pred, target)
	require.NoError(t, err)
	assert.InDelta(t, (1.0+4.0)/2, loss.Data().Item(), 1e-12)

	require.NoError(t, autodiff.BackwardScalar(loss))
	// d/dp mean((p-t)²) = 2(p-t)/n
	assert.InDeltaSlice(t, []float64{1, -2}, pred.Grad().Data(), 1e-12)

	_, err = NewMSELoss().Forward(pred, row(1))
	assert.ErrorIs(t, err, autodiff.ErrShapeMismatch)
}

func TestParameter_Replace(t *testing.T) {
	p := NewParameter("w", tensor.Vector(1, 2))
	old := p.Tensor()

	y, err := autodiff.Pow(old, 2)
	require.NoError(t, err)
	require.NoError(t, autodiff.BackwardScalar(y))
	assert.Equal(t, []float64{2, 4}, p.Grad().Data())

	p.Replace(tensor.Vector(5, 6))
	assert.Equal(t, "w", p.Name())
	assert.Equal(t, []float64{5, 6}, p.Data().Data())
	assert.Nil(t, p.Grad())
	assert.True(t, p.Tensor().RequiresGrad())

	// y's node still holds the old leaf.
	assert.False(t, old.Released())
	y.Release()
	assert.True(t, old.Released())
}

func TestSequential_ReleaseFreesGraph(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	model := NewSequential(NewLinear(2, 3, rng), NewReLU(), NewLinear(3, 1, rng))
	x := row(1, -1)

	out, err := model.Forward(x)
	require.NoError(t, err)
	for _, p := range model.Parameters() {
		assert.Equal(t, 2, p.Tensor().RefCount(), "parameter %s", p.Name())
	}

	out.Release()
	assert.True(t, out.Released())
	assert.Equal(t, 1, x.RefCount())
	for _, p := range model.Parameters() {
		assert.Equal(t, 1, p.Tensor().RefCount(), "parameter %s", p.Name())
	}
}

func TestSequential_StateDict(t *testing.T) {
	src := NewSequential(NewLinear(2, 3, rand.New(rand.NewSource(1))), NewReLU(), NewLinear(3, 1, rand.New(rand.NewSource(2))))
	dst := NewSequential(NewLinear(2, 3, rand.New(rand.NewSource(3))), NewReLU(), NewLinear(3, 1, rand.New(rand.NewSource(4))))

	state := src.StateDict()
	assert.Len(t, state, 4)
	assert.Contains(t, state, "0.weight")
	assert.Contains(t, state, "2.bias")

	require.NoError(t, dst.LoadStateDict(state))
	for i, p := range src.Parameters() {
		assert.True(t, p.Data().Equal(dst.Parameters()[i].Data()), "parameter %d", i)
	}

	delete(state, "2.weight")
	err := dst.LoadStateDict(state)
	assert.ErrorContains(t, err, "sequential module 2")
}

func TestSubStateDict(t *testing.T) {
	state := map[string]*tensor.Buffer{
		"a.w":  tensor.Vector(1),
		"a.b":  tensor.Vector(2),
		"ab.w": tensor.Vector(3),
	}
	sub := SubStateDict(state, "a")
	assert.Len(t, sub, 2)
	assert.Contains(t, sub, "w")
	assert.Contains(t, sub, "b")

	merged := make(map[string]*tensor.Buffer)
	MergeStateDict(merged, "x", sub)
	assert.Contains(t, merged, "x.w")
}
