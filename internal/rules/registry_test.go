package rules

import (
	"testing"
)

// mockRule is a simple rule for testing.
type mockRule struct {
	code     string
	enabled  bool
	category string
	fixKind  FixKind
}

func (r *mockRule) Metadata() RuleMetadata {
	return RuleMetadata{
		Code:             r.code,
		Name:             "Mock Rule " + r.code,
		Description:      "A mock rule for testing",
		DefaultSeverity:  SeverityWarning,
		Category:         r.category,
		EnabledByDefault: r.enabled,
		FixKind:          r.fixKind,
	}
}

func (r *mockRule) Check(LintInput) []Diagnostic {
	return nil
}

func TestRegistry_Register(t *testing.T) {
	reg := NewRegistry()

	reg.Register(&mockRule{code: "lint/style/first"})

	if !reg.Has("lint/style/first") {
		t.Error("Has() = false after registration")
	}
}

func TestRegistry_Register_Duplicate(t *testing.T) {
	reg := NewRegistry()
	rule := &mockRule{code: "lint/style/dup"}
	reg.Register(rule)

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic on duplicate registration")
		}
	}()

	reg.Register(rule) // Should panic
}

func TestRegistry_Get(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&mockRule{code: "lint/style/get"})

	got := reg.Get("lint/style/get")
	if got == nil {
		t.Fatal("Get() returned nil")
	}
	if got.Metadata().Code != "lint/style/get" {
		t.Errorf("Get().Code = %q, want %q", got.Metadata().Code, "lint/style/get")
	}

	if reg.Get("nonexistent") != nil {
		t.Error("Get() should return nil for nonexistent rule")
	}
}

func TestRegistry_Lookup(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&mockRule{code: "lint/style/useShorthandFunctionType"})
	reg.Register(&mockRule{code: "lint/style/shared"})
	reg.Register(&mockRule{code: "lint/suspicious/shared"})

	tests := []struct {
		ref  string
		want string
	}{
		{"lint/style/useShorthandFunctionType", "lint/style/useShorthandFunctionType"},
		{"style/useShorthandFunctionType", "lint/style/useShorthandFunctionType"},
		{"useShorthandFunctionType", "lint/style/useShorthandFunctionType"},
		{"style/shared", "lint/style/shared"},
		{"shared", ""},
		{"Shorthand", ""},
	}

	for _, tc := range tests {
		t.Run(tc.ref, func(t *testing.T) {
			got := reg.Lookup(tc.ref)
			if tc.want == "" {
				if got != nil {
					t.Errorf("Lookup(%q) = %q, want nil", tc.ref, got.Metadata().Code)
				}
				return
			}
			if got == nil || got.Metadata().Code != tc.want {
				t.Errorf("Lookup(%q) = %v, want %q", tc.ref, got, tc.want)
			}
		})
	}
}

func TestRegistry_All(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&mockRule{code: "c-rule"})
	reg.Register(&mockRule{code: "a-rule"})
	reg.Register(&mockRule{code: "b-rule"})

	all := reg.All()
	if len(all) != 3 {
		t.Fatalf("All() returned %d rules, want 3", len(all))
	}

	want := []string{"a-rule", "b-rule", "c-rule"}
	for i, rule := range all {
		if c := rule.Metadata().Code; c != want[i] {
			t.Errorf("All()[%d].Code = %q, want %q", i, c, want[i])
		}
	}
}

func TestRegistry_Codes(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&mockRule{code: "z-rule"})
	reg.Register(&mockRule{code: "a-rule"})

	codes := reg.Codes()
	if len(codes) != 2 || codes[0] != "a-rule" || codes[1] != "z-rule" {
		t.Errorf("Codes() = %v, want [a-rule z-rule]", codes)
	}
}

func TestRegistry_Filters(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&mockRule{code: "s1", category: "style", enabled: true, fixKind: FixKindSafe})
	reg.Register(&mockRule{code: "s2", category: "style"})
	reg.Register(&mockRule{code: "x1", category: "suspicious", enabled: true})

	if n := len(reg.EnabledByDefault()); n != 2 {
		t.Errorf("EnabledByDefault() returned %d, want 2", n)
	}
	if n := len(reg.ByCategory("style")); n != 2 {
		t.Errorf("ByCategory(style) returned %d, want 2", n)
	}
	fixable := reg.Fixable()
	if len(fixable) != 1 || fixable[0].Metadata().Code != "s1" {
		t.Errorf("Fixable() = %v, want [s1]", fixable)
	}
}
