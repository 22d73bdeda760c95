package autodiff

// NodeKind tags the variant a Node holds.
type NodeKind int

// Node variants.
const (
	// NodeLeaf is reported for tensors without a producing node. No Node value
	// ever carries this kind; a leaf simply has a nil GradFn.
	NodeLeaf NodeKind = iota
	NodeUnary
	NodeBinary
)

// String returns the variant name.
func (k NodeKind) String() string {
	switch k {
	case NodeLeaf:
		return "Leaf"
	case NodeUnary:
		return "Unary"
	case NodeBinary:
		return "Binary"
	default:
		return "Unknown"
	}
}

// Node records how a non-leaf tensor was produced: its inputs and the rule
// used to route gradients back to them.
//
// The node holds its own handles to the inputs (see Tensor.Clone), so inputs
// stay alive for as long as any tensor built from them does.
type Node struct {
	kind   NodeKind
	inputs [2]*Tensor
	unary  UnaryRule
	binary BinaryRule
}

func newUnaryNode(input *Tensor, rule UnaryRule) *Node {
	return &Node{
		kind:   NodeUnary,
		inputs: [2]*Tensor{input.Clone(), nil},
		unary:  rule,
	}
}

func newBinaryNode(a, b *Tensor, rule BinaryRule) *Node {
	return &Node{
		kind:   NodeBinary,
		inputs: [2]*Tensor{a.Clone(), b.Clone()},
		binary: rule,
	}
}

// Kind returns the node variant. A nil node reports NodeLeaf.
func (n *Node) Kind() NodeKind {
	if n == nil {
		return NodeLeaf
	}
	return n.kind
}

// Inputs returns the operands in call order.
func (n *Node) Inputs() []*Tensor {
	switch n.Kind() {
	case NodeUnary:
		return []*Tensor{n.inputs[0]}
	case NodeBinary:
		return []*Tensor{n.inputs[0], n.inputs[1]}
	default:
		return nil
	}
}

// UnaryRule returns the rule of a unary node.
func (n *Node) UnaryRule() (UnaryRule, bool) {
	return n.unary, n.Kind() == NodeUnary
}

// BinaryRule returns the rule of a binary node.
func (n *Node) BinaryRule() (BinaryRule, bool) {
	return n.binary, n.Kind() == NodeBinary
}

// String returns the backward rule name, e.g. "MulBackward".
func (n *Node) String() string {
	switch n.Kind() {
	case NodeUnary:
		return n.unary.String() + "Backward"
	case NodeBinary:
		return n.binary.String() + "Backward"
	default:
		return "Leaf"
	}
}

func (n *Node) release() {
	for i, in := range n.inputs {
		if in != nil {
			in.Release()
			n.inputs[i] = nil
		}
	}
}
