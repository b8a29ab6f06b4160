// Package sourcemap provides line-oriented access to source text: line
// lookup, snippet extraction and comment discovery for inline directives.
package sourcemap

import (
	"bytes"
	"strings"
)

// DirectivePrefix starts every suppression comment.
const DirectivePrefix = "typelint-ignore"

// SourceMap provides efficient access to source code by line.
// It precomputes line boundaries for fast snippet extraction.
//
// All line numbers are 0-based.
type SourceMap struct {
	source []byte

	// lines are the individual lines without line endings.
	lines []string

	// lineOffsets[i] is the byte offset where line i starts in source.
	lineOffsets []int
}

// New creates a SourceMap from source content.
// Lines are split on \n; a trailing \r is dropped from each line.
func New(source []byte) *SourceMap {
	rawLines := bytes.Split(source, []byte{'\n'})
	lines := make([]string, len(rawLines))
	lineOffsets := make([]int, len(rawLines))

	offset := 0
	for i, line := range rawLines {
		lineOffsets[i] = offset
		lines[i] = strings.TrimSuffix(string(line), "\r")
		offset += len(line) + 1
	}

	return &SourceMap{
		source:      source,
		lines:       lines,
		lineOffsets: lineOffsets,
	}
}

// Lines returns all lines (without line endings).
// The returned slice should not be modified.
func (sm *SourceMap) Lines() []string {
	return sm.lines
}

// LineCount returns the total number of lines. A trailing newline yields a
// final empty line.
func (sm *SourceMap) LineCount() int {
	return len(sm.lines)
}

// Line returns the text of a specific line (0-based).
// Returns empty string if line is out of range.
func (sm *SourceMap) Line(line int) string {
	if line < 0 || line >= len(sm.lines) {
		return ""
	}
	return sm.lines[line]
}

// LineOffset returns the byte offset where a line starts (0-based).
// Returns -1 if line is out of range.
func (sm *SourceMap) LineOffset(line int) int {
	if line < 0 || line >= len(sm.lineOffsets) {
		return -1
	}
	return sm.lineOffsets[line]
}

// LineOf returns the 0-based line containing the byte offset, clamped to
// the last line.
func (sm *SourceMap) LineOf(offset int) int {
	lo, hi := 0, len(sm.lineOffsets)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if sm.lineOffsets[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

// Snippet extracts a range of lines as a single string.
// Both startLine and endLine are 0-based and inclusive; the range is clamped.
func (sm *SourceMap) Snippet(startLine, endLine int) string {
	startLine = max(startLine, 0)
	endLine = min(endLine, len(sm.lines)-1)
	if startLine > endLine {
		return ""
	}
	return strings.Join(sm.lines[startLine:endLine+1], "\n")
}

// SnippetAround extracts context lines around a target line.
func (sm *SourceMap) SnippetAround(line, before, after int) string {
	return sm.Snippet(line-before, line+after)
}

// Source returns the raw source content.
// The returned slice should not be modified.
func (sm *SourceMap) Source() []byte {
	return sm.source
}

// Comment is a comment that occupies a whole line.
type Comment struct {
	// Line is the 0-based line number where the comment appears.
	Line int

	// Text is the comment including its delimiters, with surrounding
	// whitespace trimmed.
	Text string

	// Body is the comment content without delimiters, trimmed.
	Body string

	// IsDirective is true for typelint suppression comments.
	IsDirective bool
}

// Comments returns the whole-line comments of the source in line order:
// `// text` lines and single-line `/* text */` blocks. Comments that follow
// code on the same line are not returned.
func (sm *SourceMap) Comments() []Comment {
	var comments []Comment
	for i, line := range sm.lines {
		if c, ok := parseComment(i, line); ok {
			comments = append(comments, c)
		}
	}
	return comments
}

func parseComment(line int, text string) (Comment, bool) {
	trimmed := strings.TrimSpace(text)
	var body string
	switch {
	case strings.HasPrefix(trimmed, "//"):
		body = strings.TrimPrefix(trimmed, "//")
	case strings.HasPrefix(trimmed, "/*") && strings.HasSuffix(trimmed, "*/") && len(trimmed) >= 4:
		body = strings.TrimSuffix(strings.TrimPrefix(trimmed, "/*"), "*/")
	default:
		return Comment{}, false
	}
	body = strings.TrimSpace(body)
	return Comment{
		Line:        line,
		Text:        trimmed,
		Body:        body,
		IsDirective: isDirectiveComment(body),
	}, true
}

// isDirectiveComment checks for "typelint-ignore" followed by a space, '-'
// (typelint-ignore-all) or the end of the comment.
func isDirectiveComment(body string) bool {
	rest, ok := strings.CutPrefix(body, DirectivePrefix)
	return ok && (rest == "" || rest[0] == ' ' || rest[0] == '\t' || rest[0] == '-' || rest[0] == ':')
}

// IsCommentLine reports whether the 0-based line is a whole-line comment.
func (sm *SourceMap) IsCommentLine(line int) bool {
	_, ok := parseComment(line, sm.Line(line))
	return ok
}

// CommentsForLine returns the contiguous block of comment lines that ends
// immediately before line.
func (sm *SourceMap) CommentsForLine(line int) []Comment {
	start := line
	for start > 0 && sm.IsCommentLine(start-1) {
		start--
	}
	comments := make([]Comment, 0, line-start)
	for i := start; i < line; i++ {
		c, _ := parseComment(i, sm.lines[i])
		comments = append(comments, c)
	}
	return comments
}
