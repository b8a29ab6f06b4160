// Package directive provides inline suppression directives for linting.
//
// Directives are whole-line comments:
//
//	// typelint-ignore lint/style/useShorthandFunctionType: reason
//	// typelint-ignore-all style: generated file
//	// typelint-ignore-start useShorthandFunctionType
//	// typelint-ignore-end useShorthandFunctionType
//
// Directives can be:
//   - Next-line: Affects the construct starting on the next code line
//   - Global: Affects the entire file
//   - Range: Affects the lines between a start and its matching end
package directive

import (
	"math"
	"slices"
	"strings"
)

// DirectiveType indicates the scope of a directive.
type DirectiveType int

const (
	// TypeNextLine affects only the next non-comment line.
	TypeNextLine DirectiveType = iota
	// TypeGlobal affects the entire file.
	TypeGlobal
	// TypeRange affects the lines between -start and -end.
	TypeRange
)

// String returns a human-readable name for the directive type.
func (t DirectiveType) String() string {
	switch t {
	case TypeNextLine:
		return "next-line"
	case TypeGlobal:
		return "global"
	case TypeRange:
		return "range"
	default:
		return "unknown"
	}
}

// LineRange represents a range of lines affected by a directive.
// Line numbers are 0-based to match SourceMap conventions.
type LineRange struct {
	// Start is the 0-based line number (inclusive).
	Start int
	// End is the 0-based line number (inclusive).
	// For global directives, this is math.MaxInt.
	End int
}

// Contains returns true if the given 0-based line is within the range.
func (r LineRange) Contains(line int) bool {
	return line >= r.Start && line <= r.End
}

// GlobalRange returns a LineRange that covers the entire file.
func GlobalRange() LineRange {
	return LineRange{Start: 0, End: math.MaxInt}
}

// Directive represents a parsed inline suppression directive.
type Directive struct {
	// Type indicates the directive scope.
	Type DirectiveType

	// Rules contains the rule references to suppress: full codes, group
	// paths ("lint/style", "style") or bare names.
	// A single-element slice containing "all" means suppress all rules.
	Rules []string

	// Line is the 0-based line number where the directive appears.
	// For ranges it is the line of the -start comment.
	Line int

	// EndLine is the 0-based line of the -end comment of a range, or -1.
	EndLine int

	// AppliesTo is the range of lines affected by this directive.
	AppliesTo LineRange

	// Used is set to true when this directive suppresses at least one diagnostic.
	Used bool

	// RawText is the original comment text (for error messages).
	RawText string

	// Reason is the explanation after the ':' separator.
	Reason string
}

// SuppressesRule returns true if this directive suppresses the given rule code.
func (d *Directive) SuppressesRule(ruleCode string) bool {
	for _, r := range d.Rules {
		if r == "all" || matchesRule(r, ruleCode) {
			return true
		}
	}
	return false
}

// matchesRule checks if a directive rule reference matches a rule code.
// Supports:
//   - Exact match: "lint/style/useShorthandFunctionType"
//   - Group match: "lint/style" or "style" matches every rule in the group
//   - Name match: "useShorthandFunctionType" or "style/useShorthandFunctionType"
func matchesRule(ref, ruleCode string) bool {
	ref = strings.TrimSuffix(ref, "/")
	if ref == ruleCode {
		return true
	}
	code := strings.TrimPrefix(ruleCode, "lint/")
	if ref == "lint" && code != ruleCode {
		return true
	}
	ref = strings.TrimPrefix(ref, "lint/")
	return code == ref ||
		strings.HasPrefix(code, ref+"/") ||
		strings.HasSuffix(code, "/"+ref)
}

// SuppressesLine returns true if this directive suppresses diagnostics on the given line.
// Line is 0-based.
func (d *Directive) SuppressesLine(line int) bool {
	return d.AppliesTo.Contains(line)
}

// sameRules reports whether two rule lists name the same rules, ignoring
// order.
func sameRules(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as, bs := slices.Clone(a), slices.Clone(b)
	slices.Sort(as)
	slices.Sort(bs)
	return slices.Equal(as, bs)
}

// ParseResult contains all directives parsed from a file plus any errors.
type ParseResult struct {
	// Directives contains successfully parsed directives.
	Directives []Directive

	// Errors contains parse errors for malformed directives.
	Errors []ParseError
}

// ParseError represents an error parsing a directive.
type ParseError struct {
	// Line is the 0-based line number where the error occurred.
	Line int

	// Message describes what went wrong.
	Message string

	// RawText is the original comment text.
	RawText string
}
