package processor

import (
	"testing"

	"github.com/wharflab/typelint/internal/rules"
)

func TestSupersession_ErrorSuppressesLower(t *testing.T) {
	t.Parallel()
	p := NewSupersession()

	diags := []rules.Diagnostic{
		{
			RuleCode: "lint/correctness/noReservedName",
			Severity: rules.SeverityError,
			Location: rules.Location{File: "a.ts", Start: rules.Position{Line: 1}},
		},
		{
			RuleCode: "lint/style/useShorthandFunctionType",
			Severity: rules.SeverityWarning,
			Location: rules.Location{File: "a.ts", Start: rules.Position{Line: 1}},
		},
		{
			RuleCode: "lint/style/useShorthandFunctionType",
			Severity: rules.SeverityWarning,
			Location: rules.Location{File: "a.ts", Start: rules.Position{Line: 5}},
		},
	}

	result := p.Process(diags, nil)
	if len(result) != 2 {
		t.Fatalf("expected 2 diags, got %d", len(result))
	}
	if result[0].RuleCode != "lint/correctness/noReservedName" {
		t.Errorf("expected noReservedName, got %q", result[0].RuleCode)
	}
	if result[1].RuleCode != "lint/style/useShorthandFunctionType" || result[1].Location.Start.Line != 5 {
		t.Errorf("expected useShorthandFunctionType on line 5, got %q on line %d",
			result[1].RuleCode, result[1].Location.Start.Line)
	}
}

func TestSupersession_MultipleErrors(t *testing.T) {
	t.Parallel()
	p := NewSupersession()

	diags := []rules.Diagnostic{
		{
			RuleCode: "rule/error-a",
			Severity: rules.SeverityError,
			Location: rules.Location{File: "a.ts", Start: rules.Position{Line: 3}},
		},
		{
			RuleCode: "rule/error-b",
			Severity: rules.SeverityError,
			Location: rules.Location{File: "a.ts", Start: rules.Position{Line: 3}},
		},
		{
			RuleCode: "rule/info",
			Severity: rules.SeverityInfo,
			Location: rules.Location{File: "a.ts", Start: rules.Position{Line: 3}},
		},
	}

	result := p.Process(diags, nil)
	if len(result) != 2 {
		t.Fatalf("expected 2 diags (both errors kept, info dropped), got %d", len(result))
	}
}

func TestSupersession_NoErrors(t *testing.T) {
	t.Parallel()
	p := NewSupersession()

	diags := []rules.Diagnostic{
		{
			RuleCode: "lint/style/useShorthandFunctionType",
			Severity: rules.SeverityWarning,
			Location: rules.Location{File: "a.ts", Start: rules.Position{Line: 1}},
		},
		{
			RuleCode: "lint/suspicious/noDuplicateName",
			Severity: rules.SeverityWarning,
			Location: rules.Location{File: "a.ts", Start: rules.Position{Line: 3}},
		},
	}

	result := p.Process(diags, nil)
	if len(result) != 2 {
		t.Fatalf("expected 2 diags (no suppression), got %d", len(result))
	}
}
