package fix

import (
	"context"
	"errors"
	"testing"

	"github.com/wharflab/typelint/internal/config"
	"github.com/wharflab/typelint/internal/rules"
	"github.com/wharflab/typelint/internal/rules/shorthandfunctype"
	"github.com/wharflab/typelint/internal/span"
	"github.com/wharflab/typelint/internal/syntax"
)

const testRule = "lint/style/useShorthandFunctionType"

// diagWithFix builds a diagnostic whose primary span is the span of its
// first edit.
func diagWithFix(file string, safety FixSafety, edits ...rules.TextEdit) rules.Diagnostic {
	var sp span.Span
	if len(edits) > 0 {
		sp = edits[0].Span
	}
	d := rules.NewDiagnostic(rules.NewFileLocation(file), sp, testRule, "msg", rules.SeverityWarning)
	return d.WithFix(&rules.Fix{Description: "fix", Safety: safety, Edits: edits})
}

func lint(path string, content []byte) []rules.Diagnostic {
	tree, _ := syntax.Parse(content)
	return shorthandfunctype.New().Check(rules.LintInput{File: path, Tree: tree, Source: content})
}

func TestApplyEdit(t *testing.T) {
	t.Parallel()
	got := applyEdit([]byte("let a: { (): void };"), edit(7, 19, "() => void"))
	if string(got) != "let a: () => void;" {
		t.Errorf("applyEdit() = %q", got)
	}

	got = applyEdit([]byte("a\r\nb\r\n"), edit(0, 1, "x\ny"))
	if string(got) != "x\r\ny\r\nb\r\n" {
		t.Errorf("applyEdit() on CRLF content = %q", got)
	}
}

func TestApplyEdits_Descending(t *testing.T) {
	t.Parallel()
	got := applyEdits([]byte("0123456789"), []rules.TextEdit{
		edit(1, 2, "one"),
		edit(8, 9, "eight"),
		edit(4, 4, "+"),
	})
	if string(got) != "0one23+4567eight9" {
		t.Errorf("applyEdits() = %q", got)
	}
}

func TestFixer_Apply_SingleFix(t *testing.T) {
	t.Parallel()
	src := "type A = { (): void };\n"
	sources := map[string][]byte{"a.ts": []byte(src)}

	fixer := &Fixer{SafetyThreshold: FixSafe}
	result, err := fixer.Apply(context.Background(), lint("a.ts", []byte(src)), sources)
	if err != nil {
		t.Fatalf("Apply error: %v", err)
	}

	if result.TotalApplied() != 1 {
		t.Errorf("TotalApplied() = %d, want 1", result.TotalApplied())
	}
	if result.FilesModified() != 1 {
		t.Errorf("FilesModified() = %d, want 1", result.FilesModified())
	}

	fc := result.Changes["a.ts"]
	if fc == nil {
		t.Fatal("FileChange for a.ts is nil")
	}
	if got := string(fc.ModifiedContent); got != "type A = () => void;\n" {
		t.Errorf("ModifiedContent = %q", got)
	}
	if string(fc.OriginalContent) != src {
		t.Error("OriginalContent was modified")
	}
	if fc.Passes != 1 {
		t.Errorf("Passes = %d, want 1", fc.Passes)
	}
}

func TestFixer_Apply_MultipleFiles(t *testing.T) {
	t.Parallel()
	sources := map[string][]byte{
		"a.ts":     []byte("interface A { (): void }\ntype B = { (): string };\n"),
		"b/c.ts":   []byte("let f: { (n: number): void }[] = [];\n"),
		"clean.ts": []byte("let x = 1;\n"),
	}
	var diags []rules.Diagnostic
	for path, content := range sources {
		diags = append(diags, lint(path, content)...)
	}

	fixer := &Fixer{SafetyThreshold: FixSafe, Concurrency: 2}
	result, err := fixer.Apply(context.Background(), diags, sources)
	if err != nil {
		t.Fatalf("Apply error: %v", err)
	}

	want := map[string]string{
		"a.ts":     "type A = () => void\ntype B = () => string;\n",
		"b/c.ts":   "let f: ((n: number) => void)[] = [];\n",
		"clean.ts": "let x = 1;\n",
	}
	for path, content := range want {
		if got := string(result.Changes[path].ModifiedContent); got != content {
			t.Errorf("%s: ModifiedContent = %q, want %q", path, got, content)
		}
	}
	if result.TotalApplied() != 3 {
		t.Errorf("TotalApplied() = %d, want 3", result.TotalApplied())
	}
	if result.FilesModified() != 2 {
		t.Errorf("FilesModified() = %d, want 2", result.FilesModified())
	}
}

func TestFixer_Apply_Conflict(t *testing.T) {
	t.Parallel()
	src := []byte("interface B {\n  (x: number): { (): string };\n}\n")
	sources := map[string][]byte{"a.ts": src}
	diags := lint("a.ts", src)
	if len(diags) != 2 {
		t.Fatalf("got %d diagnostics, want 2", len(diags))
	}

	fixer := &Fixer{SafetyThreshold: FixSafe}
	result, err := fixer.Apply(context.Background(), diags, sources)
	if err != nil {
		t.Fatalf("Apply error: %v", err)
	}

	fc := result.Changes["a.ts"]
	if got := string(fc.ModifiedContent); got != "type B = (x: number) => { (): string }\n" {
		t.Errorf("ModifiedContent = %q", got)
	}
	if len(fc.FixesSkipped) != 1 || fc.FixesSkipped[0].Reason != SkipConflict {
		t.Fatalf("FixesSkipped = %+v, want one conflict", fc.FixesSkipped)
	}
	if fc.FixesSkipped[0].Location != diags[1].Location {
		t.Error("skipped fix should point at the inner diagnostic")
	}
}

func TestFixer_Apply_ResolverFixesConflictsOnLaterPass(t *testing.T) {
	t.Parallel()
	src := []byte("interface B {\n  (x: number): { (): string };\n}\n")
	sources := map[string][]byte{"a.ts": src}

	resolves := 0
	fixer := &Fixer{
		SafetyThreshold: FixSafe,
		Resolver: ResolverFunc(func(_ context.Context, rc ResolveContext) ([]rules.Diagnostic, error) {
			resolves++
			return lint(rc.FilePath, rc.Content), nil
		}),
	}
	result, err := fixer.Apply(context.Background(), lint("a.ts", src), sources)
	if err != nil {
		t.Fatalf("Apply error: %v", err)
	}

	fc := result.Changes["a.ts"]
	if got := string(fc.ModifiedContent); got != "type B = (x: number) => () => string\n" {
		t.Errorf("ModifiedContent = %q", got)
	}
	if fc.Passes != 2 {
		t.Errorf("Passes = %d, want 2", fc.Passes)
	}
	if resolves != 1 {
		t.Errorf("resolver called %d times, want 1", resolves)
	}
	if len(fc.FixesApplied) != 2 || fc.FixesApplied[0].Pass != 1 || fc.FixesApplied[1].Pass != 2 {
		t.Errorf("FixesApplied = %+v", fc.FixesApplied)
	}
	if len(fc.FixesSkipped) != 0 {
		t.Errorf("FixesSkipped = %+v, want none", fc.FixesSkipped)
	}
}

func TestFixer_Apply_MaxPasses(t *testing.T) {
	t.Parallel()
	src := []byte("type A = { (): { (): { (): void } } };\n")
	sources := map[string][]byte{"a.ts": src}

	fixer := &Fixer{
		SafetyThreshold: FixSafe,
		MaxPasses:       2,
		Resolver: ResolverFunc(func(_ context.Context, rc ResolveContext) ([]rules.Diagnostic, error) {
			return lint(rc.FilePath, rc.Content), nil
		}),
	}
	result, err := fixer.Apply(context.Background(), lint("a.ts", src), sources)
	if err != nil {
		t.Fatalf("Apply error: %v", err)
	}

	fc := result.Changes["a.ts"]
	if fc.Passes != 2 {
		t.Errorf("Passes = %d, want 2", fc.Passes)
	}
	if got := string(fc.ModifiedContent); got != "type A = () => () => { (): void };\n" {
		t.Errorf("ModifiedContent = %q", got)
	}
}

func TestFixer_Apply_ResolverError(t *testing.T) {
	t.Parallel()
	src := []byte("interface B {\n  (x: number): { (): string };\n}\n")
	boom := errors.New("boom")
	fixer := &Fixer{
		SafetyThreshold: FixSafe,
		Resolver: ResolverFunc(func(context.Context, ResolveContext) ([]rules.Diagnostic, error) {
			return nil, boom
		}),
	}
	_, err := fixer.Apply(context.Background(), lint("a.ts", src), map[string][]byte{"a.ts": src})
	if !errors.Is(err, boom) {
		t.Errorf("Apply error = %v, want %v", err, boom)
	}
}

func TestFixer_Apply_SafetyThreshold(t *testing.T) {
	t.Parallel()
	sources := map[string][]byte{"a.ts": []byte("0123456789")}
	diags := []rules.Diagnostic{
		diagWithFix("a.ts", FixSafe, edit(0, 1, "a")),
		diagWithFix("a.ts", FixUnsafe, edit(5, 6, "f")),
	}

	tests := []struct {
		threshold   FixSafety
		wantApplied int
		wantContent string
	}{
		{FixSafe, 1, "a123456789"},
		{FixUnsafe, 2, "a1234f6789"},
	}
	for _, tt := range tests {
		t.Run(tt.threshold.String(), func(t *testing.T) {
			t.Parallel()
			fixer := &Fixer{SafetyThreshold: tt.threshold}
			result, err := fixer.Apply(context.Background(), diags, sources)
			if err != nil {
				t.Fatalf("Apply error: %v", err)
			}
			if result.TotalApplied() != tt.wantApplied {
				t.Errorf("TotalApplied() = %d, want %d", result.TotalApplied(), tt.wantApplied)
			}
			if got := string(result.Changes["a.ts"].ModifiedContent); got != tt.wantContent {
				t.Errorf("ModifiedContent = %q, want %q", got, tt.wantContent)
			}
		})
	}
}

func TestFixer_Apply_SkipReasons(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		fixer *Fixer
		diag  rules.Diagnostic
		want  SkipReason
	}{
		{
			name:  "rule filter",
			fixer: &Fixer{RuleFilter: []string{"lint/style/other"}},
			diag:  diagWithFix("a.ts", FixSafe, edit(0, 1, "x")),
			want:  SkipRuleFilter,
		},
		{
			name:  "safety",
			fixer: &Fixer{SafetyThreshold: FixSafe},
			diag:  diagWithFix("a.ts", FixUnsafe, edit(0, 1, "x")),
			want:  SkipSafety,
		},
		{
			name:  "fix mode never",
			fixer: &Fixer{FixModes: map[string]map[string]FixMode{"a.ts": {testRule: FixModeNever}}},
			diag:  diagWithFix("a.ts", FixSafe, edit(0, 1, "x")),
			want:  SkipFixMode,
		},
		{
			name:  "fix mode explicit without filter",
			fixer: &Fixer{FixModes: map[string]map[string]FixMode{"a.ts": {testRule: FixModeExplicit}}},
			diag:  diagWithFix("a.ts", FixSafe, edit(0, 1, "x")),
			want:  SkipFixMode,
		},
		{
			name:  "fix mode unsafe-only",
			fixer: &Fixer{FixModes: map[string]map[string]FixMode{"a.ts": {testRule: FixModeUnsafeOnly}}},
			diag:  diagWithFix("a.ts", FixSafe, edit(0, 1, "x")),
			want:  SkipFixMode,
		},
		{
			name:  "no edits",
			fixer: &Fixer{},
			diag:  diagWithFix("a.ts", FixSafe),
			want:  SkipNoEdits,
		},
		{
			name:  "edit past end of file",
			fixer: &Fixer{},
			diag:  diagWithFix("a.ts", FixSafe, edit(5, 50, "x")),
			want:  SkipInvalidEdit,
		},
		{
			name:  "overlapping edits in one fix",
			fixer: &Fixer{},
			diag:  diagWithFix("a.ts", FixSafe, edit(0, 3, "x"), edit(2, 4, "y")),
			want:  SkipInvalidEdit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			sources := map[string][]byte{"a.ts": []byte("0123456789")}
			result, err := tt.fixer.Apply(context.Background(), []rules.Diagnostic{tt.diag}, sources)
			if err != nil {
				t.Fatalf("Apply error: %v", err)
			}
			fc := result.Changes["a.ts"]
			if fc.HasChanges() {
				t.Errorf("expected no changes, got %q", fc.ModifiedContent)
			}
			if len(fc.FixesSkipped) != 1 {
				t.Fatalf("FixesSkipped = %+v, want 1 entry", fc.FixesSkipped)
			}
			if fc.FixesSkipped[0].Reason != tt.want {
				t.Errorf("Reason = %v, want %v", fc.FixesSkipped[0].Reason, tt.want)
			}
		})
	}
}

func TestFixer_Apply_FixModesAllow(t *testing.T) {
	t.Parallel()
	sources := map[string][]byte{"a.ts": []byte("0123456789")}
	diags := []rules.Diagnostic{diagWithFix("a.ts", FixSafe, edit(0, 1, "x"))}

	fixers := map[string]*Fixer{
		"explicit with filter": {
			RuleFilter: []string{testRule},
			FixModes:   map[string]map[string]FixMode{"a.ts": {testRule: FixModeExplicit}},
		},
		"unsafe-only with --fix-unsafe": {
			SafetyThreshold: FixUnsafe,
			FixModes:        map[string]map[string]FixMode{"a.ts": {testRule: FixModeUnsafeOnly}},
		},
		"other file configured": {
			FixModes: map[string]map[string]FixMode{"b.ts": {testRule: FixModeNever}},
		},
	}
	for name, fixer := range fixers {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			result, err := fixer.Apply(context.Background(), diags, sources)
			if err != nil {
				t.Fatalf("Apply error: %v", err)
			}
			if result.TotalApplied() != 1 {
				t.Errorf("TotalApplied() = %d, want 1", result.TotalApplied())
			}
		})
	}
}

func TestFixer_Apply_VerifierRollsBack(t *testing.T) {
	t.Parallel()
	sources := map[string][]byte{"a.ts": []byte("0123456789")}
	diags := []rules.Diagnostic{
		diagWithFix("a.ts", FixSafe, edit(0, 1, "x")),
		diagWithFix("a.ts", FixSafe, edit(2, 3, "y")),
	}

	var verified string
	fixer := &Fixer{
		Verifier: VerifierFunc(func(path string, content []byte) error {
			verified = path + ":" + string(content)
			return errors.New("does not parse")
		}),
	}
	result, err := fixer.Apply(context.Background(), diags, sources)
	if err != nil {
		t.Fatalf("Apply error: %v", err)
	}

	if verified != "a.ts:x1y3456789" {
		t.Errorf("verifier saw %q", verified)
	}
	fc := result.Changes["a.ts"]
	if fc.HasChanges() || string(fc.ModifiedContent) != "0123456789" {
		t.Errorf("content should be rolled back, got %q", fc.ModifiedContent)
	}
	if len(fc.FixesSkipped) != 2 {
		t.Fatalf("FixesSkipped = %+v, want 2 entries", fc.FixesSkipped)
	}
	for _, s := range fc.FixesSkipped {
		if s.Reason != SkipVerify || s.Error != "does not parse" {
			t.Errorf("skipped = %+v", s)
		}
	}
}

func TestFixer_Apply_Canceled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sources := map[string][]byte{"a.ts": []byte("0123456789")}
	diags := []rules.Diagnostic{diagWithFix("a.ts", FixSafe, edit(0, 1, "x"))}

	result, err := (&Fixer{}).Apply(ctx, diags, sources)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Apply error = %v, want context.Canceled", err)
	}
	if result != nil {
		t.Error("partial result should be discarded")
	}
}

func TestFixer_Apply_UnknownFile(t *testing.T) {
	t.Parallel()
	sources := map[string][]byte{"a.ts": []byte("0123456789")}
	diags := []rules.Diagnostic{diagWithFix("other.ts", FixSafe, edit(0, 1, "x"))}

	result, err := (&Fixer{}).Apply(context.Background(), diags, sources)
	if err != nil {
		t.Fatalf("Apply error: %v", err)
	}
	if result.TotalApplied() != 0 || result.TotalSkipped() != 0 {
		t.Errorf("applied %d, skipped %d; want nothing", result.TotalApplied(), result.TotalSkipped())
	}
}

func TestBuildFixModes(t *testing.T) {
	t.Parallel()
	if BuildFixModes(nil) != nil {
		t.Error("BuildFixModes(nil) should be nil")
	}

	cfg := config.Default()
	cfg.Rules.Set(testRule, config.RuleConfig{Fix: FixModeExplicit})
	cfg.Rules.Set("lint/style/noSeverity", config.RuleConfig{Severity: "error"})

	modes := BuildFixModes(cfg)
	if len(modes) != 1 || modes[testRule] != FixModeExplicit {
		t.Errorf("BuildFixModes() = %v", modes)
	}
}
