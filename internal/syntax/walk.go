package syntax

import "iter"

// Preorder yields id and its descendants in document order. When descend is
// non-nil and returns false for a node, that node is still yielded but its
// children are not visited.
func (t *Tree) Preorder(id NodeID, descend func(NodeID) bool) iter.Seq[NodeID] {
	return func(yield func(NodeID) bool) {
		if !id.IsValid() {
			return
		}
		stack := []NodeID{id}
		for len(stack) > 0 {
			n := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if !yield(n) {
				return
			}
			if descend != nil && !descend(n) {
				continue
			}
			children := t.Children(n)
			for i := len(children) - 1; i >= 0; i-- {
				stack = append(stack, children[i])
			}
		}
	}
}

// Walk calls visit for id and its descendants in document order. Returning
// false from visit skips the node's children.
func (t *Tree) Walk(id NodeID, visit func(NodeID) bool) {
	for range t.Preorder(id, visit) {
	}
}

// Contains reports whether any node of the given kind lies in id's subtree,
// id included.
func (t *Tree) Contains(id NodeID, kind Kind) bool {
	for n := range t.Preorder(id, nil) {
		if t.nodes[n].Kind == kind {
			return true
		}
	}
	return false
}
