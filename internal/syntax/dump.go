package syntax

import (
	"fmt"
	"strings"
)

// Dump renders the subtree rooted at id as an indented outline, one node per
// line. Identifiers and literals include their text.
func (t *Tree) Dump(id NodeID) string {
	var sb strings.Builder
	t.dump(&sb, id, 0)
	return sb.String()
}

func (t *Tree) dump(sb *strings.Builder, id NodeID, depth int) {
	n := &t.nodes[id]
	sb.WriteString(strings.Repeat("  ", depth))
	fmt.Fprintf(sb, "%s %s", n.Kind, n.Span)
	switch n.Kind {
	case KindIdentifier, KindLiteralType:
		fmt.Fprintf(sb, " %q", t.Text(id))
	}
	sb.WriteByte('\n')
	for _, c := range t.Children(id) {
		t.dump(sb, c, depth+1)
	}
}
