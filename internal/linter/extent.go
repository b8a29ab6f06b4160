package linter

import (
	"fortio.org/safecast"

	"github.com/wharflab/typelint/internal/directive"
	"github.com/wharflab/typelint/internal/syntax"
)

// ConstructExtent returns the extent function used to widen next-line
// suppressions: for a 0-based line it returns the last 0-based line of the
// largest node that starts at the line's first non-blank byte. Lines where
// no node starts map to themselves.
func ConstructExtent(tree *syntax.Tree) directive.ExtentFunc {
	ends := make(map[uint32]uint32)
	for i := 1; i <= tree.Len(); i++ {
		id := syntax.NodeID(i)
		if id == tree.Root() {
			continue
		}
		sp := tree.Span(id)
		if sp.Empty() {
			continue
		}
		if sp.End > ends[sp.Start] {
			ends[sp.Start] = sp.End
		}
	}

	src := tree.Source()
	lines := tree.Lines()
	return func(line int) int {
		start := lines.LineStart(line + 1)
		if start < 0 {
			return line
		}
		for start < len(src) && (src[start] == ' ' || src[start] == '\t') {
			start++
		}
		off, err := safecast.Conv[uint32](start)
		if err != nil {
			return line
		}
		end, ok := ends[off]
		if !ok {
			return line
		}
		return max(line, lines.Position(end-1).Line-1)
	}
}
