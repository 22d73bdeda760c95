package autodiff_test

import (
	"errors"
	"testing"

	"github.com/born-ml/dyngrad/internal/autodiff"
	"github.com/born-ml/dyngrad/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func leaf(t *testing.T, requiresGrad bool, values ...float64) *autodiff.Tensor {
	t.Helper()
	x, err := autodiff.FromSlice(values, tensor.Shape{len(values)}, requiresGrad)
	require.NoError(t, err)
	return x
}

func assertBuffer(t *testing.T, expected []float64, b *tensor.Buffer, msgAndArgs ...any) {
	t.Helper()
	require.NotNil(t, b, msgAndArgs...)
	assert.InDeltaSlice(t, expected, b.Data(), 1e-9, msgAndArgs...)
}

// TestMul_ConcreteScenario checks z = a*b with a=[3,2], b=[2,0.1].
func TestMul_ConcreteScenario(t *testing.T) {
	a := leaf(t, true, 3.0, 2.0)
	b := leaf(t, true, 2.0, 0.1)

	z, err := autodiff.Mul(a, b)
	require.NoError(t, err)
	assertBuffer(t, []float64{6.0, 0.2}, z.Data())

	require.NoError(t, autodiff.Backward(z, tensor.Vector(1, 1)))

	assertBuffer(t, []float64{2.0, 0.1}, a.Grad(), "grad(a)")
	assertBuffer(t, []float64{3.0, 2.0}, b.Grad(), "grad(b)")
}

func TestAdd_GradientIsSeed(t *testing.T) {
	a := leaf(t, true, 1, -2, 3)
	b := leaf(t, true, 4, 5, -6)

	y, err := autodiff.Add(a, b)
	require.NoError(t, err)
	assertBuffer(t, []float64{5, 3, -3}, y.Data())

	seed := tensor.Vector(0.5, 2, -1)
	require.NoError(t, autodiff.Backward(y, seed))

	assertBuffer(t, seed.Data(), a.Grad())
	assertBuffer(t, seed.Data(), b.Grad())
}

func TestMul_GradientWithSeed(t *testing.T) {
	a := leaf(t, true, 1, 2, 3)
	b := leaf(t, true, 4, 5, 6)

	y, err := autodiff.Mul(a, b)
	require.NoError(t, err)

	require.NoError(t, autodiff.Backward(y, tensor.Vector(1, 10, 100)))

	assertBuffer(t, []float64{4, 50, 600}, a.Grad())
	assertBuffer(t, []float64{1, 20, 300}, b.Grad())
}

func TestPow_Gradient(t *testing.T) {
	a := leaf(t, true, 1, 2, 3)

	y, err := autodiff.Pow(a, 3)
	require.NoError(t, err)
	assertBuffer(t, []float64{1, 8, 27}, y.Data())

	require.NoError(t, autodiff.Backward(y, tensor.Vector(1, 1, 2)))

	// seed * 3 * a^2
	assertBuffer(t, []float64{3, 12, 54}, a.Grad())
}

func TestPow_ZeroExponent(t *testing.T) {
	a := leaf(t, true, 0, 2)

	y, err := autodiff.Pow(a, 0)
	require.NoError(t, err)
	assertBuffer(t, []float64{1, 1}, y.Data())

	require.NoError(t, autodiff.BackwardScalar(y))
	// d/da a^0 is zero everywhere, including at a = 0.
	assertBuffer(t, []float64{0, 0}, a.Grad())
}

// TestFanOut checks y = a*a + a, dy/da = 2a + 1.
func TestFanOut(t *testing.T) {
	a := leaf(t, true, -1, 0, 2.5)

	sq, err := autodiff.Mul(a, a)
	require.NoError(t, err)
	y, err := autodiff.Add(sq, a)
	require.NoError(t, err)

	require.NoError(t, autodiff.BackwardScalar(y))

	assertBuffer(t, []float64{-1, 1, 6}, a.Grad())
}

// TestDiamond checks a tensor reached through two intermediate paths.
func TestDiamond(t *testing.T) {
	x := leaf(t, true, 2)

	left, err := autodiff.Pow(x, 2) // x²
	require.NoError(t, err)
	right, err := autodiff.Scale(x, 3) // 3x
	require.NoError(t, err)
	y, err := autodiff.Mul(left, right) // 3x³
	require.NoError(t, err)

	require.NoError(t, autodiff.BackwardScalar(y))

	// 9x² = 36
	assertBuffer(t, []float64{36}, x.Grad())
}

func TestInputsUnchanged(t *testing.T) {
	a := leaf(t, true, 3, 2)
	b := leaf(t, true, 2, 0.1)

	z, err := autodiff.Mul(a, b)
	require.NoError(t, err)
	w, err := autodiff.Add(z, a)
	require.NoError(t, err)
	p, err := autodiff.Pow(w, 2)
	require.NoError(t, err)
	require.NoError(t, autodiff.BackwardScalar(p))

	assertBuffer(t, []float64{3, 2}, a.Data())
	assertBuffer(t, []float64{2, 0.1}, b.Data())
}

func TestRequiresGradPropagation(t *testing.T) {
	cases := []struct {
		name   string
		ga, gb bool
	}{
		{"both", true, true},
		{"left", true, false},
		{"right", false, true},
		{"neither", false, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := leaf(t, tc.ga, 1, 2)
			b := leaf(t, tc.gb, 3, 4)

			y, err := autodiff.Add(a, b)
			require.NoError(t, err)

			assert.Equal(t, tc.ga || tc.gb, y.RequiresGrad())
			assert.Equal(t, !(tc.ga || tc.gb), y.IsLeaf())
			if !y.RequiresGrad() {
				assert.Nil(t, y.GradFn())
				assert.Equal(t, autodiff.NodeLeaf, y.GradFn().Kind())
			} else {
				assert.Equal(t, autodiff.NodeBinary, y.GradFn().Kind())
			}
		})
	}
}

func TestNoGradInputReceivesNothing(t *testing.T) {
	a := leaf(t, true, 1, 2)
	c := leaf(t, false, 5, 7)

	y, err := autodiff.Mul(a, c)
	require.NoError(t, err)
	require.NoError(t, autodiff.BackwardScalar(y))

	assertBuffer(t, []float64{5, 7}, a.Grad())
	assert.Nil(t, c.Grad())
}

func TestGradBeforeBackwardIsNil(t *testing.T) {
	a := leaf(t, true, 1)
	assert.Nil(t, a.Grad())
	assert.True(t, a.IsLeaf())
	assert.True(t, a.RequiresGrad())
}

func TestBackward_AccumulatesAcrossCalls(t *testing.T) {
	a := leaf(t, true, 1, 2)
	b := leaf(t, true, 3, 4)

	y, err := autodiff.Mul(a, b)
	require.NoError(t, err)

	require.NoError(t, autodiff.BackwardScalar(y))
	require.NoError(t, autodiff.BackwardScalar(y))
	assertBuffer(t, []float64{6, 8}, a.Grad())

	a.ZeroGrad()
	assert.Nil(t, a.Grad())

	require.NoError(t, autodiff.BackwardScalar(y))
	assertBuffer(t, []float64{3, 4}, a.Grad())
	assertBuffer(t, []float64{3, 6}, b.Grad())
}

func TestBackward_RetainGrad(t *testing.T) {
	a := leaf(t, true, 2)
	h, err := autodiff.Scale(a, 3)
	require.NoError(t, err)
	y, err := autodiff.Pow(h, 2)
	require.NoError(t, err)

	require.NoError(t, autodiff.BackwardScalar(y))
	assert.Nil(t, h.Grad(), "non-leaf grad is not retained by default")

	a.ZeroGrad()
	require.NoError(t, autodiff.BackwardWithOptions(y, tensor.Ones(y.Shape()), autodiff.Options{RetainGrad: true}))
	assertBuffer(t, []float64{12}, h.Grad(), "dy/dh = 2h")
	assertBuffer(t, []float64{36}, a.Grad(), "dy/da = 2h*3")
}

func TestBackward_OnLeaf(t *testing.T) {
	a := leaf(t, true, 1, 2)
	require.NoError(t, autodiff.Backward(a, tensor.Vector(4, 5)))
	assertBuffer(t, []float64{4, 5}, a.Grad())
}

func TestErrors(t *testing.T) {
	t.Run("ShapeMismatch", func(t *testing.T) {
		a := leaf(t, true, 1, 2)
		b := leaf(t, true, 1, 2, 3)

		y, err := autodiff.Add(a, b)
		require.Error(t, err)
		assert.Nil(t, y)
		assert.True(t, errors.Is(err, autodiff.ErrShapeMismatch))

		var sme *autodiff.ShapeMismatchError
		require.True(t, errors.As(err, &sme))
		assert.Equal(t, tensor.Shape{2}, sme.A)
		assert.Equal(t, tensor.Shape{3}, sme.B)
		assert.Contains(t, err.Error(), "[2] vs [3]")

		_, err = autodiff.Mul(a, b)
		assert.ErrorIs(t, err, autodiff.ErrShapeMismatch)
	})

	t.Run("NotDifferentiable", func(t *testing.T) {
		a := leaf(t, false, 1)
		b := leaf(t, false, 2)
		y, err := autodiff.Add(a, b)
		require.NoError(t, err)

		err = autodiff.BackwardScalar(y)
		assert.ErrorIs(t, err, autodiff.ErrNotDifferentiable)
		assert.Nil(t, a.Grad())
	})

	t.Run("SeedShapeMismatch", func(t *testing.T) {
		a := leaf(t, true, 1, 2)
		y, err := autodiff.Pow(a, 2)
		require.NoError(t, err)

		err = autodiff.Backward(y, tensor.Vector(1, 1, 1))
		assert.ErrorIs(t, err, autodiff.ErrSeedShapeMismatch)

		var sse *autodiff.SeedShapeMismatchError
		require.True(t, errors.As(err, &sse))
		assert.Equal(t, tensor.Shape{2}, sse.Output)
		assert.Equal(t, tensor.Shape{3}, sse.Seed)
		assert.Nil(t, a.Grad(), "no traversal on error")

		assert.ErrorIs(t, autodiff.Backward(y, nil), autodiff.ErrSeedShapeMismatch)
	})
}

func TestNodeShape(t *testing.T) {
	a := leaf(t, true, 1, 2)
	b := leaf(t, true, 3, 4)

	y, err := autodiff.Mul(a, b)
	require.NoError(t, err)

	node := y.GradFn()
	require.NotNil(t, node)
	assert.Equal(t, "MulBackward", node.String())
	assert.Equal(t, []*autodiff.Tensor{a, b}, node.Inputs())

	rule, ok := node.BinaryRule()
	assert.True(t, ok)
	assert.Equal(t, autodiff.OpMul, rule.Op)

	p, err := autodiff.Pow(a, 2.5)
	require.NoError(t, err)
	urule, ok := p.GradFn().UnaryRule()
	assert.True(t, ok)
	assert.Equal(t, autodiff.UnaryRule{Op: autodiff.OpPow, Param: 2.5}, urule)
	assert.Equal(t, autodiff.NodeUnary, p.GradFn().Kind())
}

func TestTrace_ConsumersBeforeProducers(t *testing.T) {
	a := leaf(t, true, 1)
	b, err := autodiff.Scale(a, 2)
	require.NoError(t, err)
	c, err := autodiff.Mul(b, a)
	require.NoError(t, err)
	d, err := autodiff.Add(c, b)
	require.NoError(t, err)

	order := autodiff.Trace(d)
	require.Len(t, order, 4)

	pos := make(map[*autodiff.Tensor]int)
	for i, x := range order {
		pos[x] = i
	}
	assert.Equal(t, 0, pos[d])
	assert.Less(t, pos[d], pos[c])
	assert.Less(t, pos[c], pos[b])
	assert.Less(t, pos[b], pos[a])
}

func TestSharedHandles(t *testing.T) {
	a := leaf(t, true, 1, 2)
	assert.Equal(t, 1, a.RefCount())

	alias := a.Clone()
	assert.Same(t, a, alias)
	assert.Equal(t, 2, a.RefCount())
	alias.Release()
	assert.Equal(t, 1, a.RefCount())

	y, err := autodiff.Mul(a, a)
	require.NoError(t, err)
	assert.Equal(t, 3, a.RefCount(), "node holds one handle per operand")

	z, err := autodiff.Pow(y, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, y.RefCount())

	require.NoError(t, autodiff.BackwardScalar(z))
	assertBuffer(t, []float64{4, 32}, a.Grad(), "d(a^4)/da = 4a^3")

	// Dropping the user handles to z and y releases the whole graph.
	y.Release()
	assert.False(t, y.Released(), "z still holds y")
	z.Release()
	assert.True(t, z.Released())
	assert.True(t, y.Released())
	assert.Equal(t, 1, a.RefCount())

	// a stays usable.
	assertBuffer(t, []float64{1, 2}, a.Data())
	assertBuffer(t, []float64{4, 32}, a.Grad())

	a.Release()
	assert.True(t, a.Released())
	assert.Nil(t, a.Data())
	a.Release() // no-op
	assert.Equal(t, 0, a.RefCount())
}

func TestReleasedOperand(t *testing.T) {
	a := leaf(t, true, 1)
	a.Release()

	_, err := autodiff.Pow(a, 2)
	assert.ErrorIs(t, err, autodiff.ErrReleased)
	_, err = autodiff.Add(a, a)
	assert.ErrorIs(t, err, autodiff.ErrReleased)
	assert.ErrorIs(t, autodiff.BackwardScalar(a), autodiff.ErrReleased)
}

func TestDetach(t *testing.T) {
	a := leaf(t, true, 2, 3)
	d := a.Detach()

	assert.False(t, d.RequiresGrad())
	assert.True(t, d.IsLeaf())
	assert.Same(t, a.Data(), d.Data())

	y, err := autodiff.Mul(a, d)
	require.NoError(t, err)
	require.NoError(t, autodiff.BackwardScalar(y))

	// Only the tracked path contributes: d(a*d)/da = d.
	assertBuffer(t, []float64{2, 3}, a.Grad())
	assert.Nil(t, d.Grad())
}

func TestTensorString(t *testing.T) {
	a := leaf(t, true, 1)
	assert.Equal(t, "Tensor(Buffer[1](1), requires_grad=true)", a.String())

	y, err := autodiff.Sigmoid(a)
	require.NoError(t, err)
	assert.Contains(t, y.String(), "grad_fn=SigmoidBackward")
}
