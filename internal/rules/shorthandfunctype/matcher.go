package shorthandfunctype

import (
	"iter"

	"github.com/wharflab/typelint/internal/syntax"
)

// ContainerKind tells which construct holds the lone call signature.
type ContainerKind uint8

const (
	// ContainerInterface is an interface declaration.
	ContainerInterface ContainerKind = iota
	// ContainerObjectType is an object type literal in any type position.
	ContainerObjectType
)

func (k ContainerKind) String() string {
	if k == ContainerInterface {
		return "interface"
	}
	return "object type"
}

// Match is one construct that can be written as a function type.
type Match struct {
	// Container is the InterfaceDeclaration or ObjectType node.
	Container syntax.NodeID
	// Signature is the container's only member.
	Signature syntax.NodeID
	Kind      ContainerKind
}

// Matches yields every match in tree in document order. The walk is lazy;
// stopping the iteration stops the traversal. Bogus regions are skipped.
func Matches(tree *syntax.Tree) iter.Seq[Match] {
	return func(yield func(Match) bool) {
		notBogus := func(id syntax.NodeID) bool {
			return tree.Kind(id) != syntax.KindBogus
		}
		for id := range tree.Preorder(tree.Root(), notBogus) {
			m, ok := matchNode(tree, id)
			if ok && !yield(m) {
				return
			}
		}
	}
}

func matchNode(tree *syntax.Tree, id syntax.NodeID) (Match, bool) {
	switch tree.Kind(id) {
	case syntax.KindInterfaceDeclaration:
		if tree.Child(id, syntax.KindHeritageClause).IsValid() {
			return Match{}, false
		}
		body := tree.Child(id, syntax.KindInterfaceBody)
		if sig, ok := loneCallSignature(tree, body); ok {
			return Match{Container: id, Signature: sig, Kind: ContainerInterface}, true
		}
	case syntax.KindObjectType:
		if sig, ok := loneCallSignature(tree, id); ok {
			return Match{Container: id, Signature: sig, Kind: ContainerObjectType}, true
		}
	}
	return Match{}, false
}

func loneCallSignature(tree *syntax.Tree, members syntax.NodeID) (syntax.NodeID, bool) {
	if !members.IsValid() {
		return 0, false
	}
	children := tree.Children(members)
	if len(children) != 1 || tree.Kind(children[0]) != syntax.KindCallSignature {
		return 0, false
	}
	return children[0], true
}
