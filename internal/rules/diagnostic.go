package rules

import (
	"github.com/wharflab/typelint/internal/span"
)

// Span is a byte range in the checked file.
type Span = span.Span

// FixSafety classifies how confidently a fix can be applied.
//
//nolint:recvcheck // UnmarshalText requires pointer receiver
type FixSafety int

const (
	// FixSafe fixes never change behavior and may be applied unattended.
	FixSafe FixSafety = iota
	// FixUnsafe fixes are offered but need explicit confirmation.
	FixUnsafe
)

func (s FixSafety) String() string {
	if s == FixSafe {
		return "safe"
	}
	return "unsafe"
}

// MarshalText implements encoding.TextMarshaler.
func (s FixSafety) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *FixSafety) UnmarshalText(b []byte) error {
	if string(b) == "safe" {
		*s = FixSafe
	} else {
		*s = FixUnsafe
	}
	return nil
}

// FixKind describes the fixes a rule can produce.
type FixKind int

const (
	FixNone FixKind = iota
	FixKindSafe
	FixKindUnsafe
)

// TextEdit replaces the bytes covered by Span with NewText.
// An empty NewText deletes; an empty Span inserts.
type TextEdit struct {
	Span    Span   `json:"span"`
	NewText string `json:"newText"`
}

// Fix is a set of non-overlapping edits applied all-or-nothing.
type Fix struct {
	// Description explains what this fix does.
	Description string `json:"description"`
	// Safety controls whether the fix is applied by --fix.
	Safety FixSafety `json:"safety"`
	// Edits are ordered by span start.
	Edits []TextEdit `json:"edits"`
}

// Diagnostic is a single finding of a rule.
type Diagnostic struct {
	// Location is the resolved primary span.
	Location Location `json:"location"`

	// Span is the primary span as byte offsets.
	Span Span `json:"-"`

	// RuleCode identifies the rule, e.g. "lint/style/useShorthandFunctionType".
	RuleCode string `json:"rule"`

	// Message is a human-readable description of the issue.
	Message string `json:"message"`

	// Notes are static rationale lines rendered after the code frame.
	Notes []string `json:"notes,omitempty"`

	// Severity indicates how critical this diagnostic is.
	Severity Severity `json:"severity"`

	// DocURL links to documentation about this rule (optional).
	DocURL string `json:"docUrl,omitempty"`

	// Fix is the offered rewrite, nil when none could be synthesized.
	Fix *Fix `json:"fix,omitempty"`
}

// NewDiagnostic creates a diagnostic with the minimum required fields.
func NewDiagnostic(loc Location, sp Span, ruleCode, message string, severity Severity) Diagnostic {
	return Diagnostic{
		Location: loc,
		Span:     sp,
		RuleCode: ruleCode,
		Message:  message,
		Severity: severity,
	}
}

// WithNote appends a rationale note.
func (d Diagnostic) WithNote(note string) Diagnostic {
	d.Notes = append(d.Notes[:len(d.Notes):len(d.Notes)], note)
	return d
}

// WithDocURL adds a documentation URL.
func (d Diagnostic) WithDocURL(url string) Diagnostic {
	d.DocURL = url
	return d
}

// WithFix attaches a fix.
func (d Diagnostic) WithFix(fix *Fix) Diagnostic {
	d.Fix = fix
	return d
}

// File returns the file path from the location.
func (d Diagnostic) File() string {
	return d.Location.File
}

// Line returns the 1-based starting line.
func (d Diagnostic) Line() int {
	return d.Location.Start.Line
}

// Fixable reports whether the diagnostic carries a fix with edits.
func (d Diagnostic) Fixable() bool {
	return d.Fix != nil && len(d.Fix.Edits) > 0
}
