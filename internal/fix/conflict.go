package fix

import (
	"cmp"

	"github.com/wharflab/typelint/internal/rules"
)

// editsOverlap checks if two edits overlap.
// Overlapping edits cannot both be applied safely. An insertion touching
// the boundary of a replacement does not overlap it.
func editsOverlap(a, b rules.TextEdit) bool {
	return a.Span.Overlaps(b.Span)
}

// compareEdits orders edits by start offset, then by end offset.
func compareEdits(a, b rules.TextEdit) int {
	if c := cmp.Compare(a.Span.Start, b.Span.Start); c != 0 {
		return c
	}
	return cmp.Compare(a.Span.End, b.Span.End)
}

// anyOverlap reports whether an edit in edits overlaps one in reserved.
func anyOverlap(edits, reserved []rules.TextEdit) bool {
	for _, e := range edits {
		for _, r := range reserved {
			if editsOverlap(e, r) {
				return true
			}
		}
	}
	return false
}

// selfOverlap reports whether two edits of one fix overlap.
func selfOverlap(edits []rules.TextEdit) bool {
	for i := range edits {
		for j := i + 1; j < len(edits); j++ {
			if editsOverlap(edits[i], edits[j]) {
				return true
			}
		}
	}
	return false
}
