// Package shorthandfunctype implements lint/style/useShorthandFunctionType.
//
// An interface or object type literal whose only member is a call signature
// is a function type spelled the long way:
//
//	interface Example {
//	  (): string;
//	}
//
// is reported and rewritten to
//
//	type Example = () => string
//
// Interfaces that extend other types are left alone, since the heritage
// clause cannot be expressed on a function type. Construct signatures are
// out of scope.
package shorthandfunctype

import (
	"github.com/sirupsen/logrus"

	"github.com/wharflab/typelint/internal/rules"
)

// Code is the rule identifier.
const Code = "lint/style/useShorthandFunctionType"

const (
	message = "Use a function type instead of a call signature."
	note    = "Types containing only a call signature can be shortened to a function type."
)

// Rule implements lint/style/useShorthandFunctionType.
type Rule struct{}

// New creates the rule.
func New() *Rule {
	return &Rule{}
}

// Metadata returns the rule metadata.
func (r *Rule) Metadata() rules.RuleMetadata {
	return rules.RuleMetadata{
		Code:             Code,
		Name:             "useShorthandFunctionType",
		Description:      "Enforce using function types instead of object types with call signatures",
		DocURL:           "https://github.com/wharflab/typelint/blob/main/docs/rules/use-shorthand-function-type.md",
		DefaultSeverity:  rules.SeverityWarning,
		Category:         "style",
		EnabledByDefault: true,
		FixKind:          rules.FixKindSafe,
		Version:          "0.1.0",
		Sources:          []string{"@typescript-eslint/prefer-function-type"},
	}
}

// Check reports every lone call signature. Each diagnostic points at the
// signature and carries a fix when one can be synthesized.
func (r *Rule) Check(input rules.LintInput) []rules.Diagnostic {
	meta := r.Metadata()
	var diags []rules.Diagnostic

	for m := range Matches(input.Tree) {
		sp := input.Tree.Span(m.Signature)
		d := rules.NewDiagnostic(input.Location(sp), sp, meta.Code, message, meta.DefaultSeverity).
			WithNote(note).
			WithDocURL(meta.DocURL)

		fix, err := Synthesize(input.Tree, m)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"rule": meta.Code,
				"file": input.File,
				"line": d.Line(),
			}).WithError(err).Debug("no fix offered")
		} else {
			d = d.WithFix(fix)
		}
		diags = append(diags, d)
	}

	return diags
}

func init() {
	rules.Register(New())
}
