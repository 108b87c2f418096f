package scene

// Node is one element of the scene tree. Entities are a node variant; the
// root and grouping nodes carry no entity. Attach/Detach perform framework
// bookkeeping only; they never trigger user callbacks, which belong to
// the explicit Add/Destroy lifecycle (see Behavior).
type Node struct {
	parent   *Node
	children []*Node
	entity   *Entity // nil for plain grouping nodes
}

func NewGroupNode() *Node {
	return &Node{}
}

func (n *Node) Parent() *Node { return n.parent }

// Children returns the node's children in attach order.
func (n *Node) Children() []*Node { return n.children }

func (n *Node) Entity() *Entity { return n.entity }

// Attach links n under parent. A node already attached elsewhere is
// detached first, so a node has at most one parent.
func (n *Node) Attach(parent *Node) {
	if parent == nil || parent == n {
		panic("scene: Attach requires a parent distinct from the node")
	}
	if n.parent != nil {
		n.Detach()
	}
	n.parent = parent
	parent.children = append(parent.children, n)
	n.onAttached()
}

// Detach unlinks n from its parent. Detaching an unattached node is a
// no-op. The subtree below n stays intact.
func (n *Node) Detach() {
	p := n.parent
	if p == nil {
		return
	}
	for i, c := range p.children {
		if c == n {
			p.children = append(p.children[:i], p.children[i+1:]...)
			break
		}
	}
	n.parent = nil
	n.onDetached()
}

// Attached reports whether the node is reachable from some parent.
func (n *Node) Attached() bool { return n.parent != nil }

// onAttached and onDetached are the framework-fixed lifecycle hooks. They
// stay unexported so variants cannot override graph bookkeeping; per-kind
// customization goes through the Behavior callback slots instead.
func (n *Node) onAttached() {}
func (n *Node) onDetached() {}

// walk visits n and every descendant, depth first.
func (n *Node) walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.children {
		c.walk(fn)
	}
}
