package rules

import "github.com/wharflab/typelint/internal/span"

// Position is a resolved point: 1-based line, 0-based byte column and
// 0-based character column.
type Position = span.Position

// Location is a resolved range in a source file. Start is inclusive and End
// is exclusive.
type Location struct {
	File  string   `json:"file"`
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// NewLocation resolves sp against the file's line index.
func NewLocation(file string, lines *span.LineIndex, sp span.Span) Location {
	start, end := lines.Resolve(sp)
	return Location{File: file, Start: start, End: end}
}

// NewFileLocation creates a location for file-level issues.
// Uses -1 as sentinel since 0 would be invalid (lines are 1-based).
func NewFileLocation(file string) Location {
	return Location{
		File:  file,
		Start: Position{Line: -1, Column: -1, Char: -1},
		End:   Position{Line: -1, Column: -1, Char: -1},
	}
}

// IsFileLevel returns true if this is a file-level location (no specific line).
func (l Location) IsFileLevel() bool {
	return l.Start.Line < 0
}

// IsMultiline reports whether the range spans more than one line.
func (l Location) IsMultiline() bool {
	return l.End.Line > l.Start.Line
}
