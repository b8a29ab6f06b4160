package syntax

import (
	"iter"

	"github.com/cockroachdb/errors"

	"github.com/wharflab/typelint/internal/span"
)

// NodeID addresses a node in a Tree's arena. The zero value means "no node".
type NodeID uint32

// IsValid reports whether id refers to a node.
func (id NodeID) IsValid() bool {
	return id != 0
}

// Node is one arena entry.
//
// Span covers the node's tokens without surrounding trivia. FirstToken and
// LastToken are inclusive token indices; a node without tokens has
// LastToken == FirstToken-1.
type Node struct {
	Kind       Kind
	Flags      Flags
	Span       span.Span
	Parent     NodeID
	FirstToken int
	LastToken  int

	childStart uint32
	childEnd   uint32
}

// Tree is an immutable syntax tree over one source file.
// It is safe for concurrent reads.
type Tree struct {
	src    []byte
	tokens []Token
	nodes  []Node
	edges  []NodeID
	root   NodeID
	errs   []*ParseError
	lines  *span.LineIndex
}

// Source returns the parsed text. The slice must not be modified.
func (t *Tree) Source() []byte { return t.src }

// Lines returns the line index for the source.
func (t *Tree) Lines() *span.LineIndex { return t.lines }

// Root returns the Module node.
func (t *Tree) Root() NodeID { return t.root }

// Len returns the number of nodes.
func (t *Tree) Len() int { return len(t.nodes) - 1 }

// Node returns a copy of the node with the given id.
func (t *Tree) Node(id NodeID) Node { return t.nodes[id] }

// Kind returns the kind of id, or KindInvalid for the zero id.
func (t *Tree) Kind(id NodeID) Kind { return t.nodes[id].Kind }

// Span returns the node's span.
func (t *Tree) Span(id NodeID) span.Span { return t.nodes[id].Span }

// Parent returns the node's parent, or 0 for the root.
func (t *Tree) Parent(id NodeID) NodeID { return t.nodes[id].Parent }

// Flags returns the node's modifier flags.
func (t *Tree) Flags(id NodeID) Flags { return t.nodes[id].Flags }

// Children returns the node's children in source order. The slice must not
// be modified.
func (t *Tree) Children(id NodeID) []NodeID {
	n := &t.nodes[id]
	return t.edges[n.childStart:n.childEnd:n.childEnd]
}

// Child returns the first child of the given kind, or 0.
func (t *Tree) Child(id NodeID, kind Kind) NodeID {
	for _, c := range t.Children(id) {
		if t.nodes[c].Kind == kind {
			return c
		}
	}
	return 0
}

// ChildAt returns the i-th child, or 0 when out of range.
func (t *Tree) ChildAt(id NodeID, i int) NodeID {
	children := t.Children(id)
	if i < 0 || i >= len(children) {
		return 0
	}
	return children[i]
}

// Text returns the node's source text.
func (t *Tree) Text(id NodeID) string {
	return t.nodes[id].Span.Text(t.src)
}

// Tokens returns the tokens covered by the node. The slice must not be
// modified.
func (t *Tree) Tokens(id NodeID) []Token {
	n := &t.nodes[id]
	if n.LastToken < n.FirstToken {
		return nil
	}
	return t.tokens[n.FirstToken : n.LastToken+1 : n.LastToken+1]
}

// TokenCount returns the number of tokens including the final EOF token.
func (t *Tree) TokenCount() int { return len(t.tokens) }

// Token returns the token at index i.
func (t *Tree) Token(i int) *Token { return &t.tokens[i] }

// TokenText returns the source text of token i.
func (t *Tree) TokenText(i int) string {
	return t.tokens[i].Span.Text(t.src)
}

// TriviaText returns the source text of a trivia piece.
func (t *Tree) TriviaText(tr Trivia) string {
	return tr.Span.Text(t.src)
}

// Ancestors yields the parents of id from nearest to the root.
func (t *Tree) Ancestors(id NodeID) iter.Seq[NodeID] {
	return func(yield func(NodeID) bool) {
		for p := t.nodes[id].Parent; p.IsValid(); p = t.nodes[p].Parent {
			if !yield(p) {
				return
			}
		}
	}
}

// Errors returns the recorded parse errors in source order. Each matches
// ErrParseIncomplete under errors.Is.
func (t *Tree) Errors() []*ParseError {
	return t.errs
}

// HasErrors reports whether any region failed to parse.
func (t *Tree) HasErrors() bool {
	return len(t.errs) > 0
}

// Err summarizes the parse errors, or returns nil for a clean parse.
func (t *Tree) Err() error {
	if len(t.errs) == 0 {
		return nil
	}
	err := errors.Mark(t.errs[0], ErrParseIncomplete)
	if len(t.errs) > 1 {
		err = errors.WithDetailf(err, "%d more syntax errors", len(t.errs)-1)
	}
	return err
}
