package shorthandfunctype

import (
	"github.com/wharflab/typelint/internal/rules"
	"github.com/wharflab/typelint/internal/syntax"
)

// Classify decides whether the rewrite for m may be applied unattended.
//
// An interface that declares type parameters while its call signature
// declares its own is ambiguous: the alias keeps the interface parameters
// and the function type keeps the signature's, which callers that
// instantiate the interface explicitly may not expect. Such fixes are
// unsafe. Every other rewrite is a pure respelling of the same type.
func Classify(tree *syntax.Tree, m Match) rules.FixSafety {
	if m.Kind == ContainerInterface &&
		tree.Child(m.Container, syntax.KindTypeParameterList).IsValid() &&
		tree.Child(m.Signature, syntax.KindTypeParameterList).IsValid() {
		return rules.FixUnsafe
	}
	return rules.FixSafe
}
