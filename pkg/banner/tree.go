package banner

// Walk visits every node depth-first in render order. Returning false from
// fn skips the node's children.
func Walk(nodes []Node, fn func(n *Node, depth int) bool) {
	var walk func(nodes []Node, depth int)
	walk = func(nodes []Node, depth int) {
		for i := range nodes {
			if fn(&nodes[i], depth) {
				walk(nodes[i].Children, depth+1)
			}
		}
	}
	walk(nodes, 0)
}

// Roots returns the render tree for a component list.
//
// Components may be supplied nested (children inline) or flat (children at
// the top level naming their container through ParentID), or a mix. The
// result contains only root nodes; flat children are attached to their
// container after any inline children, preserving input order. Children
// whose parent cannot be found are dropped; [Validate] reports them.
//
// The input is not modified: only nodes on the path to an attached child are
// copied.
func Roots(components []Node) []Node {
	pending := make(map[string][]Node)
	var roots []Node
	for _, n := range components {
		if n.IsRoot() {
			roots = append(roots, n)
			continue
		}
		pending[n.ParentID] = append(pending[n.ParentID], n)
	}
	if len(pending) == 0 {
		return roots
	}
	return attach(roots, pending)
}

func attach(nodes []Node, pending map[string][]Node) []Node {
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		extra, hasExtra := pending[n.ID]
		if hasExtra {
			delete(pending, n.ID)
		}
		if len(n.Children) == 0 && !hasExtra {
			out[i] = n
			continue
		}
		children := make([]Node, 0, len(n.Children)+len(extra))
		children = append(children, n.Children...)
		children = append(children, extra...)
		n.Children = attach(children, pending)
		out[i] = n
	}
	return out
}

// Index maps every node id in the tree to the node.
func Index(nodes []Node) map[string]*Node {
	idx := make(map[string]*Node)
	Walk(nodes, func(n *Node, _ int) bool {
		if _, dup := idx[n.ID]; !dup {
			idx[n.ID] = n
		}
		return true
	})
	return idx
}
