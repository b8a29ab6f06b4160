package span

import (
	"sort"
	"unicode/utf8"
)

// Position is a resolved point in a source file.
type Position struct {
	// Line is 1-based.
	Line int `json:"line"`
	// Column is the 0-based byte offset within the line.
	Column int `json:"column"`
	// Char is the 0-based character (rune) offset within the line.
	Char int `json:"char"`
}

// LineIndex maps byte offsets to line/column positions.
// It is immutable after construction and safe for concurrent use.
type LineIndex struct {
	src []byte
	// starts[i] is the byte offset at which line i+1 begins.
	starts []int
}

// NewLineIndex builds the line table for src.
// Lines are split on '\n'; a '\r' before it belongs to the line's content.
func NewLineIndex(src []byte) *LineIndex {
	starts := make([]int, 1, 64)
	for i, b := range src {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &LineIndex{src: src, starts: starts}
}

// LineCount returns the number of lines. A trailing newline opens a final
// empty line, so "a\n" has two lines.
func (li *LineIndex) LineCount() int {
	return len(li.starts)
}

// LineStart returns the byte offset where the 1-based line begins,
// or -1 when the line does not exist.
func (li *LineIndex) LineStart(line int) int {
	if line < 1 || line > len(li.starts) {
		return -1
	}
	return li.starts[line-1]
}

// LineEnd returns the byte offset of the end of the 1-based line's content,
// excluding its line terminator. Returns -1 when the line does not exist.
func (li *LineIndex) LineEnd(line int) int {
	if line < 1 || line > len(li.starts) {
		return -1
	}
	end := len(li.src)
	if line < len(li.starts) {
		end = li.starts[line] - 1
	}
	if end > li.starts[line-1] && li.src[end-1] == '\r' {
		end--
	}
	return end
}

// Position resolves a byte offset. Offsets past the end are clamped to the
// end of the text.
func (li *LineIndex) Position(offset uint32) Position {
	off := min(int(offset), len(li.src))
	// Index of the last line start <= off.
	i := sort.Search(len(li.starts), func(i int) bool { return li.starts[i] > off }) - 1
	start := li.starts[i]
	return Position{
		Line:   i + 1,
		Column: off - start,
		Char:   utf8.RuneCount(li.src[start:off]),
	}
}

// Resolve returns the start and end positions of a span.
func (li *LineIndex) Resolve(s Span) (Position, Position) {
	return li.Position(s.Start), li.Position(s.End)
}

// Offset converts a 1-based line and 0-based byte column back to an offset.
// Returns -1 when the line does not exist; columns are clamped to the line.
func (li *LineIndex) Offset(line, column int) int {
	start := li.LineStart(line)
	if start < 0 {
		return -1
	}
	end := li.LineEnd(line)
	return min(start+max(column, 0), end)
}
