package rules

import (
	"github.com/wharflab/typelint/internal/sourcemap"
	"github.com/wharflab/typelint/internal/syntax"
)

// LintInput contains everything a rule needs to check one source file.
//
// Tree and Source are always non-nil when Check is called. Tree may contain
// Bogus regions; rules must skip them rather than fail.
//
// LintInput is read-only. The same Tree is shared by every rule that runs
// on the file, possibly from several goroutines.
type LintInput struct {
	// File is the path used in diagnostics.
	File string

	// Tree is the parsed syntax tree.
	Tree *syntax.Tree

	// Source is the raw file content.
	Source []byte

	// Config is the rule-specific configuration (type depends on rule).
	Config any
}

// SourceMap returns a line-oriented view of the source.
func (in LintInput) SourceMap() *sourcemap.SourceMap {
	return sourcemap.New(in.Source)
}

// Location resolves a span of the input to a Location.
func (in LintInput) Location(s Span) Location {
	return NewLocation(in.File, in.Tree.Lines(), s)
}

// RuleMetadata contains static information about a rule.
type RuleMetadata struct {
	// Code is the unique identifier, e.g. "lint/style/useShorthandFunctionType".
	Code string

	// Name is the short rule name, e.g. "useShorthandFunctionType".
	Name string

	// Description explains what the rule checks.
	Description string

	// DocURL links to detailed documentation.
	DocURL string

	// DefaultSeverity is the severity when not overridden.
	DefaultSeverity Severity

	// Category groups related rules (e.g. "style", "suspicious").
	Category string

	// EnabledByDefault indicates if the rule runs without explicit opt-in.
	EnabledByDefault bool

	// IsExperimental marks rules that may change or be removed.
	IsExperimental bool

	// FixKind is the safety of the fixes the rule offers, or FixNone.
	FixKind FixKind

	// Version is the release that introduced the rule.
	Version string

	// Sources names equivalent rules in other linters, e.g.
	// "@typescript-eslint/prefer-function-type".
	Sources []string
}

// Rule is the interface that all linting rules must implement.
type Rule interface {
	// Metadata returns static information about the rule.
	Metadata() RuleMetadata

	// Check runs the rule against the given input and returns its
	// diagnostics in source order.
	Check(input LintInput) []Diagnostic
}
