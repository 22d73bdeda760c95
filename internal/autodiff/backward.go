package autodiff

import (
	"github.com/born-ml/dyngrad/internal/tensor"
	"github.com/pkg/errors"
)

// Options tunes a backward pass.
type Options struct {
	// RetainGrad also stores the accumulated gradient on non-leaf tensors,
	// for inspection. Leaves always receive their gradient.
	RetainGrad bool
}

// Backward propagates seed from output back to every ancestor leaf that
// requires grad, adding the result into each leaf's Grad.
//
// Algorithm:
//  1. Topologically order the graph so every tensor comes after all of its consumers
//  2. Seed the pending gradient of output
//  3. Visit tensors in that order; each node maps its pending gradient to its
//     inputs, which is added (never assigned) to their pending gradients
//  4. Once every node is processed, add the pending gradients of leaves into Grad
//
// Gradients are summed with whatever Grad already holds; call ZeroGrad to reset.
//
// Example:
//
//	a := autodiff.New(tensor.Vector(3, 2), true)
//	b := autodiff.New(tensor.Vector(2, 0.1), true)
//	z, _ := autodiff.Mul(a, b)
//	_ = autodiff.Backward(z, tensor.Ones(z.Shape()))
//	a.Grad() // [2, 0.1]
func Backward(output *Tensor, seed *tensor.Buffer) error {
	return BackwardWithOptions(output, seed, Options{})
}

// BackwardScalar is Backward with an all-ones seed of output's shape,
// the usual seed for a scalar loss.
func BackwardScalar(output *Tensor) error {
	if output.Released() {
		return errors.Wrap(ErrReleased, "backward")
	}
	return Backward(output, tensor.Ones(output.Shape()))
}

// BackwardWithOptions is Backward with explicit options.
func BackwardWithOptions(output *Tensor, seed *tensor.Buffer, opts Options) error {
	if output.Released() {
		return errors.Wrap(ErrReleased, "backward")
	}
	if !output.requiresGrad {
		return errors.Wrapf(ErrNotDifferentiable, "backward on %v", output.Shape())
	}
	if seed == nil || !seed.Shape().Equal(output.Shape()) {
		var seedShape tensor.Shape
		if seed != nil {
			seedShape = seed.Shape()
		}
		return errors.WithStack(&SeedShapeMismatchError{Output: output.Shape(), Seed: seedShape})
	}

	order := Trace(output)

	pending := make(map[*Tensor]*tensor.Buffer, len(order))
	pending[output] = seed

	for _, t := range order {
		grad, ok := pending[t]
		if !ok || t.gradFn == nil {
			continue
		}
		if err := propagate(t, grad, pending); err != nil {
			return err
		}
	}

	// All nodes succeeded; only now touch Grad so a failed pass leaves no partial state.
	for _, t := range order {
		grad, ok := pending[t]
		if !ok {
			continue
		}
		if !t.IsLeaf() && !opts.RetainGrad {
			continue
		}
		if err := t.accumulateGrad(grad); err != nil {
			return err
		}
	}
	return nil
}

// propagate invokes t's backward rule and adds the input gradients into pending.
func propagate(t *Tensor, grad *tensor.Buffer, pending map[*Tensor]*tensor.Buffer) error {
	node := t.gradFn
	switch node.kind {
	case NodeUnary:
		x := node.inputs[0]
		gradX, err := node.unary.backward(x.data, t.data, grad)
		if err != nil {
			return errors.Wrapf(err, "backward through %s", node)
		}
		return accumulate(pending, x, gradX)

	case NodeBinary:
		a, b := node.inputs[0], node.inputs[1]
		gradA, gradB, err := node.binary.backward(a.data, b.data, grad)
		if err != nil {
			return errors.Wrapf(err, "backward through %s", node)
		}
		if err := accumulate(pending, a, gradA); err != nil {
			return err
		}
		return accumulate(pending, b, gradB)

	default:
		return errors.Errorf("backward: unexpected node kind %s", node.kind)
	}
}

// accumulate adds grad into target's pending gradient.
// Targets that do not require grad are skipped: nothing past them is tracked.
func accumulate(pending map[*Tensor]*tensor.Buffer, target *Tensor, grad *tensor.Buffer) error {
	if !target.requiresGrad {
		return nil
	}
	existing, ok := pending[target]
	if !ok {
		pending[target] = grad
		return nil
	}
	sum, err := existing.Add(grad)
	if err != nil {
		return errors.Wrap(err, "accumulate gradient")
	}
	pending[target] = sum
	return nil
}

// accumulateGrad adds grad into t.grad, keeping prior content.
func (t *Tensor) accumulateGrad(grad *tensor.Buffer) error {
	if t.grad == nil {
		t.grad = grad
		return nil
	}
	sum, err := t.grad.Add(grad)
	if err != nil {
		return errors.Wrap(err, "accumulate gradient")
	}
	t.grad = sum
	return nil
}

// Trace returns every tensor reachable from output through tensors that
// require grad, ordered so that each tensor appears after all of its consumers.
// output is first.
func Trace(output *Tensor) []*Tensor {
	type frame struct {
		t    *Tensor
		next int
	}

	visited := make(map[*Tensor]bool)
	var postorder []*Tensor

	stack := []frame{{t: output}}
	visited[output] = true
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		inputs := top.t.gradFn.Inputs()
		if top.next < len(inputs) {
			in := inputs[top.next]
			top.next++
			if in.requiresGrad && !visited[in] {
				visited[in] = true
				stack = append(stack, frame{t: in})
			}
			continue
		}
		postorder = append(postorder, top.t)
		stack = stack[:len(stack)-1]
	}

	// Reverse postorder: consumers before producers.
	for i, j := 0, len(postorder)-1; i < j; i, j = i+1, j-1 {
		postorder[i], postorder[j] = postorder[j], postorder[i]
	}
	return postorder
}
