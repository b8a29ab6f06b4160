// Package testutil provides test helpers for rules and reporters.
package testutil

import (
	"slices"
	"strings"
	"testing"

	"github.com/wharflab/typelint/internal/rules"
	"github.com/wharflab/typelint/internal/syntax"
)

// ParseSource parses content and fails the test if parsing reported any
// syntax error.
func ParseSource(tb testing.TB, content string) *syntax.Tree {
	tb.Helper()

	tree, err := syntax.Parse([]byte(content))
	if err != nil {
		tb.Fatalf("failed to parse source: %v", err)
	}
	if err := tree.Err(); err != nil {
		tb.Fatalf("source has syntax errors: %v", err)
	}
	return tree
}

// MakeLintInput creates a LintInput for testing a rule. Syntax errors are
// allowed so that recovery behavior can be tested.
func MakeLintInput(tb testing.TB, file, content string) rules.LintInput {
	tb.Helper()

	tree, err := syntax.Parse([]byte(content))
	if err != nil {
		tb.Fatalf("failed to parse source: %v", err)
	}

	return rules.LintInput{
		File:   file,
		Tree:   tree,
		Source: tree.Source(),
		Config: nil, // Set by individual tests if needed
	}
}

// MakeLintInputWithConfig creates a LintInput with rule configuration.
func MakeLintInputWithConfig(tb testing.TB, file, content string, config any) rules.LintInput {
	tb.Helper()

	input := MakeLintInput(tb, file, content)
	input.Config = config
	return input
}

// ApplyEdits applies non-overlapping edits to content, last edit first.
func ApplyEdits(tb testing.TB, content string, edits []rules.TextEdit) string {
	tb.Helper()

	sorted := slices.Clone(edits)
	slices.SortFunc(sorted, func(a, b rules.TextEdit) int {
		return int(b.Span.Start) - int(a.Span.Start)
	})
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Span.End > sorted[i-1].Span.Start {
			tb.Fatalf("overlapping edits %s and %s", sorted[i].Span, sorted[i-1].Span)
		}
	}

	out := content
	for _, e := range sorted {
		if int(e.Span.End) > len(out) {
			tb.Fatalf("edit %s outside content of %d bytes", e.Span, len(out))
		}
		out = out[:e.Span.Start] + e.NewText + out[e.Span.End:]
	}
	return out
}

// RuleTestCase defines a test case for table-driven rule tests.
type RuleTestCase struct {
	// Name is the test case name.
	Name string

	// Content is the source to lint.
	Content string

	// Config is the optional rule configuration.
	Config any

	// WantDiagnostics is the expected number of diagnostics.
	// Use -1 to skip the count check.
	WantDiagnostics int

	// WantSpans are the expected primary span texts in order.
	WantSpans []string

	// WantFixed is the content after applying every fix, when non-empty.
	WantFixed string
}

// RunRuleTests runs a table of test cases against a rule.
func RunRuleTests(t *testing.T, rule rules.Rule, cases []RuleTestCase) {
	t.Helper()

	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			input := MakeLintInputWithConfig(t, "test.ts", tc.Content, tc.Config)
			diags := rule.Check(input)

			if tc.WantDiagnostics >= 0 && len(diags) != tc.WantDiagnostics {
				t.Errorf("got %d diagnostics, want %d", len(diags), tc.WantDiagnostics)
				for i, d := range diags {
					t.Logf("  [%d] %s: %s", i, d.RuleCode, d.Span.Text(input.Source))
				}
			}

			if len(tc.WantSpans) > 0 {
				if len(diags) != len(tc.WantSpans) {
					t.Errorf("got %d diagnostics, want %d", len(diags), len(tc.WantSpans))
				} else {
					for i, want := range tc.WantSpans {
						if got := diags[i].Span.Text(input.Source); got != want {
							t.Errorf("diagnostic[%d] span = %q, want %q", i, got, want)
						}
					}
				}
			}

			if tc.WantFixed != "" {
				var edits []rules.TextEdit
				for _, d := range diags {
					if d.Fix != nil {
						edits = append(edits, d.Fix.Edits...)
					}
				}
				if got := ApplyEdits(t, tc.Content, edits); got != tc.WantFixed {
					t.Errorf("fixed content:\n%s\nwant:\n%s", got, tc.WantFixed)
				}
			}
		})
	}
}

// AssertNoDiagnostics fails the test if there are any diagnostics.
func AssertNoDiagnostics(tb testing.TB, diags []rules.Diagnostic) {
	tb.Helper()
	if len(diags) > 0 {
		tb.Errorf("expected no diagnostics, got %d:", len(diags))
		for _, d := range diags {
			tb.Logf("  - %s at line %d: %s", d.RuleCode, d.Line(), d.Message)
		}
	}
}

// AssertDiagnosticCount fails if the diagnostic count doesn't match.
func AssertDiagnosticCount(tb testing.TB, diags []rules.Diagnostic, want int) {
	tb.Helper()
	if len(diags) != want {
		tb.Errorf("got %d diagnostics, want %d", len(diags), want)
		for _, d := range diags {
			tb.Logf("  - %s at line %d: %s", d.RuleCode, d.Line(), d.Message)
		}
	}
}

// Lines joins lines with "\n" and adds a trailing newline.
func Lines(lines ...string) string {
	return strings.Join(lines, "\n") + "\n"
}
