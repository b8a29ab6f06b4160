package processor

import (
	"testing"

	"github.com/wharflab/typelint/internal/config"
	"github.com/wharflab/typelint/internal/rules"
)

const ruleCode = "lint/style/useShorthandFunctionType"

func diagAt(file string, line int, code string, severity rules.Severity) rules.Diagnostic {
	loc := rules.Location{
		File:  file,
		Start: rules.Position{Line: line, Column: 0},
		End:   rules.Position{Line: line, Column: 4},
	}
	return rules.NewDiagnostic(loc, rules.Span{}, code, "msg", severity)
}

func TestChain(t *testing.T) {
	diags := []rules.Diagnostic{
		diagAt("a.ts", 1, "rule1", rules.SeverityWarning),
		diagAt("b.ts", 2, "rule2", rules.SeverityError),
	}

	// Chain that filters out all diagnostics
	chain := NewChain(&mockProcessor{name: "filter-all", filter: func(rules.Diagnostic) bool { return false }})
	ctx := NewContext(config.Default(), nil)

	result := chain.Process(diags, ctx)
	if len(result) != 0 {
		t.Errorf("expected 0 diagnostics, got %d", len(result))
	}
}

func TestChain_Names(t *testing.T) {
	chain := NewChain(NewPathNormalization(), NewSorting())
	names := chain.Names()
	if len(names) != 2 || names[0] != "path-normalization" || names[1] != "sorting" {
		t.Errorf("unexpected names %v", names)
	}
}

func TestContext_ConfigForFile(t *testing.T) {
	base := config.Default()
	nested := config.Default()
	nested.Output.TabWidth = 8

	ctx := NewContext(base, nil)
	ctx.FileConfigs["pkg/a.ts"] = nested

	if got := ctx.ConfigForFile("pkg/a.ts"); got != nested {
		t.Error("expected the per-file config")
	}
	if got := ctx.ConfigForFile("b.ts"); got != base {
		t.Error("expected the base config for unknown files")
	}
	if NewContext(nil, nil).Config == nil {
		t.Error("nil config should fall back to defaults")
	}
}

func TestContext_GetSourceMap(t *testing.T) {
	ctx := NewContext(nil, map[string][]byte{"a.ts": []byte("let x;\nlet y;\n")})

	sm := ctx.GetSourceMap("a.ts")
	if sm == nil {
		t.Fatal("expected a source map")
	}
	if sm != ctx.GetSourceMap("a.ts") {
		t.Error("source map should be cached")
	}
	if sm.Line(1) != "let y;" {
		t.Errorf("Line(1) = %q", sm.Line(1))
	}
	if ctx.GetSourceMap("missing.ts") != nil {
		t.Error("expected nil for unknown file")
	}
}

func TestPathNormalization(t *testing.T) {
	diags := []rules.Diagnostic{
		diagAt("path\\to\\file.ts", 1, "rule1", rules.SeverityWarning),
	}

	p := NewPathNormalization()
	ctx := NewContext(config.Default(), nil)

	result := p.Process(diags, ctx)
	if len(result) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(result))
	}
	if result[0].Location.File != "path/to/file.ts" {
		t.Errorf("expected path/to/file.ts, got %s", result[0].Location.File)
	}
	if diags[0].Location.File != "path\\to\\file.ts" {
		t.Error("input slice must not be modified")
	}
}

func TestDeduplication(t *testing.T) {
	nested := diagAt("file.ts", 1, "rule1", rules.SeverityWarning)
	nested.Location.Start.Column = 2
	diags := []rules.Diagnostic{
		diagAt("file.ts", 1, "rule1", rules.SeverityWarning),
		// duplicate
		diagAt("file.ts", 1, "rule1", rules.SeverityWarning),
		// different line
		diagAt("file.ts", 2, "rule1", rules.SeverityWarning),
		// different rule
		diagAt("file.ts", 1, "rule2", rules.SeverityWarning),
		// same line, different span
		nested,
	}

	p := NewDeduplication()
	ctx := NewContext(config.Default(), nil)

	result := p.Process(diags, ctx)
	if len(result) != 4 {
		t.Errorf("expected 4 unique diagnostics, got %d", len(result))
	}
}

func TestSorting(t *testing.T) {
	diags := []rules.Diagnostic{
		diagAt("b.ts", 2, "rule2", rules.SeverityWarning),
		diagAt("a.ts", 1, "rule1", rules.SeverityWarning),
		diagAt("b.ts", 1, "rule1", rules.SeverityWarning),
	}

	p := NewSorting()
	ctx := NewContext(config.Default(), nil)

	result := p.Process(diags, ctx)
	if len(result) != 3 {
		t.Fatalf("expected 3 diagnostics, got %d", len(result))
	}

	if result[0].Location.File != "a.ts" {
		t.Errorf("first diagnostic should be in a.ts, got %s", result[0].Location.File)
	}
	if result[1].Location.File != "b.ts" || result[1].Location.Start.Line != 1 {
		t.Errorf(
			"second diagnostic should be b.ts:1, got %s:%d",
			result[1].Location.File, result[1].Location.Start.Line)
	}
	if result[2].Location.File != "b.ts" || result[2].Location.Start.Line != 2 {
		t.Errorf(
			"third diagnostic should be b.ts:2, got %s:%d",
			result[2].Location.File, result[2].Location.Start.Line)
	}
}

func TestEnableFilter(t *testing.T) {
	diags := []rules.Diagnostic{
		diagAt("file.ts", 1, ruleCode, rules.SeverityWarning),
		diagAt("file.ts", 2, "lint/complexity/noUselessTypeConstraint", rules.SeverityWarning),
		diagAt("file.ts", 3, "lint/suspicious/noExplicitAny", rules.SeverityOff),
	}

	cfg := config.Default()
	cfg.Rules.Exclude = append(cfg.Rules.Exclude, "style/*")

	p := NewEnableFilter()
	ctx := NewContext(cfg, nil)

	result := p.Process(diags, ctx)
	if len(result) != 1 {
		t.Fatalf("expected 1 diagnostic (disabled and off rules filtered), got %d", len(result))
	}
	if result[0].RuleCode != "lint/complexity/noUselessTypeConstraint" {
		t.Errorf("expected lint/complexity/noUselessTypeConstraint, got %s", result[0].RuleCode)
	}
}

func TestEnableFilter_PerFileConfig(t *testing.T) {
	diags := []rules.Diagnostic{
		diagAt("legacy/a.ts", 1, ruleCode, rules.SeverityWarning),
		diagAt("src/b.ts", 1, ruleCode, rules.SeverityWarning),
	}

	legacy := config.Default()
	legacy.Rules.Exclude = []string{ruleCode}

	ctx := NewContext(config.Default(), nil)
	ctx.FileConfigs["legacy/a.ts"] = legacy

	result := NewEnableFilter().Process(diags, ctx)
	if len(result) != 1 || result[0].Location.File != "src/b.ts" {
		t.Fatalf("expected only src/b.ts to remain, got %+v", result)
	}
}

func TestSeverityOverride(t *testing.T) {
	diags := []rules.Diagnostic{
		diagAt("file.ts", 1, ruleCode, rules.SeverityWarning),
		diagAt("file.ts", 2, "lint/complexity/noUselessTypeConstraint", rules.SeverityWarning),
	}

	cfg := config.Default()
	cfg.Rules.Set(ruleCode, config.RuleConfig{Severity: "info"})

	p := NewSeverityOverride()
	ctx := NewContext(cfg, nil)

	result := p.Process(diags, ctx)
	if len(result) != 2 {
		t.Fatalf("expected 2 diagnostics, got %d", len(result))
	}
	if result[0].Severity != rules.SeverityInfo {
		t.Errorf("expected severity info for %s, got %s", ruleCode, result[0].Severity)
	}
	if result[1].Severity != rules.SeverityWarning {
		t.Errorf("expected severity warning, got %s", result[1].Severity)
	}
}

func TestSeverityOverride_Off(t *testing.T) {
	cfg := config.Default()
	cfg.Rules.Set(ruleCode, config.RuleConfig{Severity: "off"})
	ctx := NewContext(cfg, nil)

	chain := NewChain(NewSeverityOverride(), NewEnableFilter())
	result := chain.Process([]rules.Diagnostic{diagAt("file.ts", 1, ruleCode, rules.SeverityWarning)}, ctx)
	if len(result) != 0 {
		t.Fatalf("expected the rule to be turned off, got %d diagnostics", len(result))
	}
}

func TestPathExclusionFilter(t *testing.T) {
	diags := []rules.Diagnostic{
		diagAt("src/main.ts", 1, ruleCode, rules.SeverityWarning),
		diagAt("test/main.test.ts", 1, ruleCode, rules.SeverityWarning),
		diagAt("vendor/lib.d.ts", 1, ruleCode, rules.SeverityWarning),
	}

	cfg := config.Default()
	cfg.Rules.Set(ruleCode, config.RuleConfig{
		Exclude: config.ExcludeConfig{
			Paths: []string{"test/**", "vendor/**"},
		},
	})

	p := NewPathExclusionFilter()
	ctx := NewContext(cfg, nil)

	result := p.Process(diags, ctx)
	if len(result) != 1 {
		t.Fatalf("expected 1 diagnostic (test and vendor excluded), got %d", len(result))
	}
	if result[0].Location.File != "src/main.ts" {
		t.Errorf("expected src/main.ts, got %s", result[0].Location.File)
	}
}

// mockProcessor is a test helper for custom processor behavior.
type mockProcessor struct {
	name   string
	filter func(d rules.Diagnostic) bool
}

func (m *mockProcessor) Name() string { return m.name }

func (m *mockProcessor) Process(diags []rules.Diagnostic, _ *Context) []rules.Diagnostic {
	if m.filter == nil {
		return diags
	}
	return filterDiagnostics(diags, m.filter)
}

func TestSeverityOverride_AutoEnableOffRules(t *testing.T) {
	registry := rules.NewRegistry()
	registry.Register(&mockRuleWithMetadata{
		code:            "lint/suspicious/noEmptyInterface",
		defaultSeverity: rules.SeverityOff,
	})

	diags := []rules.Diagnostic{
		diagAt("file.ts", 1, "lint/suspicious/noEmptyInterface", rules.SeverityOff),
	}

	cfg := config.Default()
	cfg.Rules.Set("lint/suspicious/noEmptyInterface", config.RuleConfig{
		Options: map[string]any{"allow-with-extends": true},
	})

	p := NewSeverityOverrideWithRegistry(registry)
	ctx := NewContext(cfg, nil)

	result := p.Process(diags, ctx)
	if len(result) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(result))
	}
	if result[0].Severity != rules.SeverityWarning {
		t.Errorf("expected severity=warning (auto-enabled), got %v", result[0].Severity)
	}
}

// mockRuleWithMetadata is a mock rule for testing
type mockRuleWithMetadata struct {
	code            string
	defaultSeverity rules.Severity
}

func (m *mockRuleWithMetadata) Metadata() rules.RuleMetadata {
	return rules.RuleMetadata{
		Code:            m.code,
		DefaultSeverity: m.defaultSeverity,
	}
}

func (m *mockRuleWithMetadata) Check(_ rules.LintInput) []rules.Diagnostic {
	return nil
}
