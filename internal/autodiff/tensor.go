package autodiff

import (
	"fmt"

	"github.com/born-ml/dyngrad/internal/tensor"
)

// Tensor is a numeric buffer plus the bookkeeping reverse-mode autodiff needs.
//
// A *Tensor is a shared handle: every node that consumes a tensor holds the
// same pointer, so a gradient accumulated on a shared ancestor is visible to
// every holder. The share count mirrors how many holders (user handles and
// graph nodes) are alive; Release drops one of them.
//
// The data buffer is fixed at construction. Only grad changes afterwards,
// and only through Backward and ZeroGrad.
type Tensor struct {
	data         *tensor.Buffer
	requiresGrad bool
	grad         *tensor.Buffer // nil until the first backward contribution
	gradFn       *Node          // nil for leaves

	// Single-threaded by contract, so no atomics. Concurrent forward passes
	// sharing leaves would need a lock around grad and refs.
	refs int
}

// New creates a leaf tensor wrapping buf.
//
// Example:
//
//	a := autodiff.New(tensor.Vector(3, 2), true)
//	b := autodiff.New(tensor.Vector(2, 0.1), true)
//	z, _ := autodiff.Mul(a, b) // z.Data() = [6, 0.2]
func New(buf *tensor.Buffer, requiresGrad bool) *Tensor {
	if buf == nil {
		panic("autodiff.New: nil buffer")
	}
	return &Tensor{
		data:         buf,
		requiresGrad: requiresGrad,
		refs:         1,
	}
}

// FromSlice creates a leaf tensor from a Go slice.
func FromSlice(data []float64, shape tensor.Shape, requiresGrad bool) (*Tensor, error) {
	buf, err := tensor.FromSlice(data, shape)
	if err != nil {
		return nil, err
	}
	return New(buf, requiresGrad), nil
}

// newResult creates an operation output. The node is attached by the caller.
func newResult(buf *tensor.Buffer, requiresGrad bool) *Tensor {
	return &Tensor{
		data:         buf,
		requiresGrad: requiresGrad,
		refs:         1,
	}
}

// Data returns the tensor's values. Returns nil after the tensor is released.
func (t *Tensor) Data() *tensor.Buffer {
	return t.data
}

// Shape returns the tensor's shape.
func (t *Tensor) Shape() tensor.Shape {
	if t.data == nil {
		return nil
	}
	return t.data.Shape()
}

// Grad returns the accumulated gradient, or nil if no backward pass has
// contributed one yet.
func (t *Tensor) Grad() *tensor.Buffer {
	return t.grad
}

// RequiresGrad returns true if gradients are tracked through this tensor.
func (t *Tensor) RequiresGrad() bool {
	return t.requiresGrad
}

// GradFn returns the node that produced this tensor, or nil for a leaf.
func (t *Tensor) GradFn() *Node {
	return t.gradFn
}

// IsLeaf reports whether the tensor was created by the user rather than by an operation.
func (t *Tensor) IsLeaf() bool {
	return t.gradFn == nil
}

// ZeroGrad clears the accumulated gradient back to none.
func (t *Tensor) ZeroGrad() {
	t.grad = nil
}

// Clone returns another handle to the same tensor and bumps the share count.
// No data is copied.
func (t *Tensor) Clone() *Tensor {
	t.refs++
	return t
}

// RefCount returns the number of live handles to this tensor.
func (t *Tensor) RefCount() int {
	return t.refs
}

// Release drops one handle. When the last handle goes, the tensor frees its
// data, gradient and node; the node in turn releases its inputs.
// Releasing an already released tensor is a no-op.
func (t *Tensor) Release() {
	if t.refs <= 0 {
		return
	}
	t.refs--
	if t.refs > 0 {
		return
	}
	if t.gradFn != nil {
		t.gradFn.release()
	}
	t.gradFn = nil
	t.data = nil
	t.grad = nil
}

// Released reports whether the last handle has been released.
func (t *Tensor) Released() bool {
	return t.refs <= 0
}

// Detach returns a new leaf that shares this tensor's data but does not track gradients.
//
// Useful for stopping gradient flow at a specific point, e.g. for targets.
func (t *Tensor) Detach() *Tensor {
	return New(t.data, false)
}

// String returns a human-readable representation of the tensor.
func (t *Tensor) String() string {
	if t.data == nil {
		return "Tensor(released)"
	}
	if t.gradFn != nil {
		return fmt.Sprintf("Tensor(%v, requires_grad=%t, grad_fn=%s)", t.data, t.requiresGrad, t.gradFn)
	}
	return fmt.Sprintf("Tensor(%v, requires_grad=%t)", t.data, t.requiresGrad)
}
