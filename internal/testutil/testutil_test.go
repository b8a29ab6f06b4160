package testutil

import (
	"testing"

	"github.com/wharflab/typelint/internal/rules"
	"github.com/wharflab/typelint/internal/span"
	"github.com/wharflab/typelint/internal/syntax"
)

func TestParseSource(t *testing.T) {
	tree := ParseSource(t, "interface A { (): void }\n")
	if tree == nil {
		t.Fatal("ParseSource returned nil")
	}
	if got := tree.Kind(tree.ChildAt(tree.Root(), 0)); got != syntax.KindInterfaceDeclaration {
		t.Errorf("first statement = %v, want InterfaceDeclaration", got)
	}
}

func TestMakeLintInput(t *testing.T) {
	content := "type A = { (): void };\n"
	input := MakeLintInput(t, "src/a.ts", content)

	if input.File != "src/a.ts" {
		t.Errorf("File = %q, want %q", input.File, "src/a.ts")
	}
	if input.Tree == nil {
		t.Error("Tree is nil")
	}
	if string(input.Source) != content {
		t.Errorf("Source = %q, want %q", string(input.Source), content)
	}
	if input.Config != nil {
		t.Error("Config should be nil")
	}
}

func TestMakeLintInputAllowsSyntaxErrors(t *testing.T) {
	input := MakeLintInput(t, "a.ts", "interface {")
	if !input.Tree.HasErrors() {
		t.Error("expected syntax errors to be recorded")
	}
}

func TestMakeLintInputWithConfig(t *testing.T) {
	config := struct{ Max int }{Max: 100}
	input := MakeLintInputWithConfig(t, "a.ts", "let a = 1", config)

	if input.Config == nil {
		t.Fatal("Config is nil")
	}
	cfg, ok := input.Config.(struct{ Max int })
	if !ok || cfg.Max != 100 {
		t.Errorf("Config = %#v, want Max=100", input.Config)
	}
}

func TestApplyEdits(t *testing.T) {
	content := "abcdef"
	got := ApplyEdits(t, content, []rules.TextEdit{
		{Span: span.MustNew(0, 1), NewText: "A"},
		{Span: span.MustNew(3, 5), NewText: ""},
		{Span: span.MustNew(6, 6), NewText: "!"},
	})
	if want := "Abcf!"; got != want {
		t.Errorf("ApplyEdits = %q, want %q", got, want)
	}
}

func TestLines(t *testing.T) {
	if got, want := Lines("a", "", "b"), "a\n\nb\n"; got != want {
		t.Errorf("Lines = %q, want %q", got, want)
	}
}
