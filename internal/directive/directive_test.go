package directive

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wharflab/typelint/internal/rules"
	"github.com/wharflab/typelint/internal/sourcemap"
	"github.com/wharflab/typelint/internal/testutil"
)

const code = "lint/style/useShorthandFunctionType"

func parse(content string, opts Options) *ParseResult {
	return Parse(sourcemap.New([]byte(content)), opts)
}

func TestParseNextLine(t *testing.T) {
	t.Parallel()
	result := parse(testutil.Lines(
		"// typelint-ignore lint/style/useShorthandFunctionType: kept for declaration merging",
		"interface A { (): void }",
	), Options{})

	require.Empty(t, result.Errors)
	require.Len(t, result.Directives, 1)
	d := result.Directives[0]
	assert.Equal(t, TypeNextLine, d.Type)
	assert.Equal(t, []string{code}, d.Rules)
	assert.Equal(t, "kept for declaration merging", d.Reason)
	assert.Equal(t, LineRange{Start: 1, End: 1}, d.AppliesTo)
	assert.Equal(t, 0, d.Line)
	assert.Equal(t, -1, d.EndLine)
}

func TestParseMultipleRules(t *testing.T) {
	t.Parallel()
	result := parse("// typelint-ignore style, useShorthandFunctionType lint/complexity\nlet x;\n", Options{})

	require.Len(t, result.Directives, 1)
	assert.Equal(t, []string{"style", "useShorthandFunctionType", "lint/complexity"}, result.Directives[0].Rules)
	assert.Empty(t, result.Directives[0].Reason)
}

func TestParseSkipsBlankAndCommentLines(t *testing.T) {
	t.Parallel()
	result := parse(testutil.Lines(
		"// typelint-ignore style",
		"",
		"// unrelated",
		"/* block */",
		"type A = { (): void };",
	), Options{})

	require.Len(t, result.Directives, 1)
	assert.Equal(t, LineRange{Start: 4, End: 4}, result.Directives[0].AppliesTo)
}

func TestParseNextLineAtEOF(t *testing.T) {
	t.Parallel()
	result := parse("let x;\n// typelint-ignore style\n", Options{})

	require.Len(t, result.Directives, 1)
	assert.Equal(t, LineRange{Start: -1, End: -1}, result.Directives[0].AppliesTo)
}

func TestParseNextLineExtent(t *testing.T) {
	t.Parallel()
	content := testutil.Lines(
		"  // typelint-ignore style",
		"  interface A {",
		"    (): void;",
		"  }",
	)
	var asked []int
	result := parse(content, Options{Extent: func(line int) int {
		asked = append(asked, line)
		return 3
	}})

	require.Len(t, result.Directives, 1)
	assert.Equal(t, []int{1}, asked)
	assert.Equal(t, LineRange{Start: 1, End: 3}, result.Directives[0].AppliesTo)
}

func TestParseGlobal(t *testing.T) {
	t.Parallel()
	result := parse("let x;\n/* typelint-ignore-all all: generated */\ntype A = { (): void };\n", Options{})

	require.Empty(t, result.Errors)
	require.Len(t, result.Directives, 1)
	d := result.Directives[0]
	assert.Equal(t, TypeGlobal, d.Type)
	assert.Equal(t, LineRange{Start: 0, End: math.MaxInt}, d.AppliesTo)
	assert.Equal(t, "generated", d.Reason)
	assert.True(t, d.SuppressesRule(code))
}

func TestParseRange(t *testing.T) {
	t.Parallel()
	result := parse(testutil.Lines(
		"// typelint-ignore-start style: legacy block",
		"type A = { (): void };",
		"type B = { (): void };",
		"// typelint-ignore-end style",
		"type C = { (): void };",
	), Options{})

	require.Empty(t, result.Errors)
	require.Len(t, result.Directives, 1)
	d := result.Directives[0]
	assert.Equal(t, TypeRange, d.Type)
	assert.Equal(t, 0, d.Line)
	assert.Equal(t, 3, d.EndLine)
	assert.Equal(t, LineRange{Start: 1, End: 2}, d.AppliesTo)
	assert.Equal(t, "legacy block", d.Reason)
}

func TestParseNestedRanges(t *testing.T) {
	t.Parallel()
	result := parse(testutil.Lines(
		"// typelint-ignore-start style",
		"// typelint-ignore-start complexity",
		"let x;",
		"// typelint-ignore-end style",
		"let y;",
		"// typelint-ignore-end complexity",
	), Options{})

	require.Empty(t, result.Errors)
	require.Len(t, result.Directives, 2)
	assert.Equal(t, []string{"style"}, result.Directives[0].Rules)
	assert.Equal(t, LineRange{Start: 1, End: 2}, result.Directives[0].AppliesTo)
	assert.Equal(t, []string{"complexity"}, result.Directives[1].Rules)
	assert.Equal(t, LineRange{Start: 2, End: 4}, result.Directives[1].AppliesTo)
}

func TestParseNestedRangesFull(t *testing.T) {
	t.Parallel()
	result := parse(testutil.Lines(
		"// typelint-ignore-start style",
		"// typelint-ignore-start complexity",
		"let x;",
		"// typelint-ignore-end style",
		"let y;",
		"// typelint-ignore-end complexity",
	), Options{})

	want := []Directive{
		{Type: TypeRange, Rules: []string{"style"}, Line: 0, EndLine: 3, AppliesTo: LineRange{Start: 1, End: 2}},
		{Type: TypeRange, Rules: []string{"complexity"}, Line: 1, EndLine: 5, AppliesTo: LineRange{Start: 2, End: 4}},
	}
	if diff := cmp.Diff(want, result.Directives, cmpopts.IgnoreFields(Directive{}, "RawText")); diff != "" {
		t.Errorf("directives mismatch (-want +got):\n%s", diff)
	}
}

func TestParseUnbalancedRanges(t *testing.T) {
	t.Parallel()
	result := parse(testutil.Lines(
		"// typelint-ignore-end style",
		"// typelint-ignore-start complexity",
		"let x;",
	), Options{})

	require.Len(t, result.Errors, 2)
	assert.Equal(t, 0, result.Errors[0].Line)
	assert.Contains(t, result.Errors[0].Message, "without a matching typelint-ignore-start")
	assert.Equal(t, 1, result.Errors[1].Line)
	assert.Contains(t, result.Errors[1].Message, "without a matching typelint-ignore-end")

	// The unterminated range still applies to the rest of the file.
	require.Len(t, result.Directives, 1)
	assert.Equal(t, LineRange{Start: 2, End: 3}, result.Directives[0].AppliesTo)
}

func TestParseErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		content string
		message string
	}{
		{"empty rule list", "// typelint-ignore\nlet x;\n", "empty rule list"},
		{"reason only", "// typelint-ignore: because\nlet x;\n", "empty rule list"},
		{"unknown suffix", "// typelint-ignore-everything style\nlet x;\n", "malformed suppression comment"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			result := parse(tt.content, Options{})
			assert.Empty(t, result.Directives)
			require.Len(t, result.Errors, 1)
			assert.Equal(t, tt.message, result.Errors[0].Message)
			assert.Equal(t, 0, result.Errors[0].Line)
		})
	}
}

func TestParseIgnoresNonDirectives(t *testing.T) {
	t.Parallel()
	result := parse(testutil.Lines(
		"// typelint-ignored is not a directive",
		"let x; // typelint-ignore style",
		"// see typelint-ignore style",
	), Options{})
	assert.Empty(t, result.Directives)
	assert.Empty(t, result.Errors)
}

func TestParseValidator(t *testing.T) {
	t.Parallel()
	known := func(ref string) bool { return ref == "useShorthandFunctionType" }
	result := parse("// typelint-ignore useShorthandFunctionType noSuchRule all\nlet x;\n", Options{Validator: known})

	require.Len(t, result.Errors, 1)
	assert.Equal(t, "unknown rule code(s): noSuchRule", result.Errors[0].Message)
	require.Len(t, result.Directives, 1, "directive is kept despite unknown codes")
}

func TestSuppressesRule(t *testing.T) {
	t.Parallel()
	tests := []struct {
		ref  string
		want bool
	}{
		{"lint/style/useShorthandFunctionType", true},
		{"style/useShorthandFunctionType", true},
		{"useShorthandFunctionType", true},
		{"lint/style", true},
		{"lint/style/", true},
		{"style", true},
		{"lint", true},
		{"all", true},
		{"lint/complexity", false},
		{"useShorthand", false},
		{"shorthandFunctionType", false},
		{"sty", false},
	}
	for _, tt := range tests {
		d := Directive{Rules: []string{tt.ref}}
		assert.Equal(t, tt.want, d.SuppressesRule(code), tt.ref)
	}
}

func TestDirectiveTypeString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "next-line", TypeNextLine.String())
	assert.Equal(t, "global", TypeGlobal.String())
	assert.Equal(t, "range", TypeRange.String())
	assert.Equal(t, "unknown", DirectiveType(9).String())
}

func diagAt(line int, ruleCode string) rules.Diagnostic {
	return rules.Diagnostic{
		Location: rules.Location{File: "a.ts", Start: rules.Position{Line: line}},
		RuleCode: ruleCode,
	}
}

func TestFilter(t *testing.T) {
	t.Parallel()
	directives := []Directive{
		{Type: TypeNextLine, Rules: []string{"style"}, Line: 0, AppliesTo: LineRange{Start: 1, End: 3}},
		{Type: TypeNextLine, Rules: []string{"complexity"}, Line: 5, AppliesTo: LineRange{Start: 6, End: 6}},
		{Type: TypeRange, Rules: []string{"style"}, Line: 7, AppliesTo: LineRange{Start: 8, End: 9}},
	}
	diags := []rules.Diagnostic{
		diagAt(3, code),  // line 2 (0-based): first directive
		diagAt(7, code),  // wrong rule for the second directive
		diagAt(10, code), // range
		diagAt(12, code), // outside everything
	}

	result := Filter(diags, directives)

	assert.Len(t, result.Suppressed, 2)
	require.Len(t, result.Diagnostics, 2)
	assert.Equal(t, 7, result.Diagnostics[0].Line())
	assert.Equal(t, 12, result.Diagnostics[1].Line())
	require.Len(t, result.UnusedDirectives, 1)
	assert.Equal(t, 5, result.UnusedDirectives[0].Line)

	for _, d := range directives {
		assert.False(t, d.Used, "input directives must not be modified")
	}
}

func TestFilterFirstMatchWins(t *testing.T) {
	t.Parallel()
	directives := []Directive{
		{Type: TypeGlobal, Rules: []string{"all"}, AppliesTo: GlobalRange()},
		{Type: TypeNextLine, Rules: []string{"style"}, Line: 0, AppliesTo: LineRange{Start: 1, End: 1}},
	}
	result := Filter([]rules.Diagnostic{diagAt(2, code)}, directives)

	assert.Empty(t, result.Diagnostics)
	require.Len(t, result.UnusedDirectives, 1)
	assert.Equal(t, TypeNextLine, result.UnusedDirectives[0].Type)
}

func TestParseAndFilter(t *testing.T) {
	t.Parallel()
	src := testutil.Lines(
		"// typelint-ignore useShorthandFunctionType: public API",
		"type A = { (): void };",
		"type B = { (): void };",
	)
	input := testutil.MakeLintInput(t, "a.ts", src)
	result := Parse(sourcemap.New(input.Source), Options{})

	diags := []rules.Diagnostic{diagAt(2, code), diagAt(3, code)}
	filtered := Filter(diags, result.Directives)
	require.Len(t, filtered.Diagnostics, 1)
	assert.Equal(t, 3, filtered.Diagnostics[0].Line())
	assert.Empty(t, filtered.UnusedDirectives)
}
