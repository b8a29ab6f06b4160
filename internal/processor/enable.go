package processor

import (
	"github.com/wharflab/typelint/internal/rules"
)

// EnableFilter removes diagnostics for disabled rules.
// Filters out diagnostics with severity "off" and respects the
// include/exclude patterns of the [rules] table.
type EnableFilter struct{}

// NewEnableFilter creates a new enable filter processor.
func NewEnableFilter() *EnableFilter {
	return &EnableFilter{}
}

// Name returns the processor's identifier.
func (p *EnableFilter) Name() string {
	return "enable-filter"
}

// Process filters out diagnostics for disabled rules.
// Rules are disabled if:
//  1. Severity is "off" (after SeverityOverride has run)
//  2. Excluded by Include/Exclude patterns
func (p *EnableFilter) Process(diags []rules.Diagnostic, ctx *Context) []rules.Diagnostic {
	return filterDiagnostics(diags, func(d rules.Diagnostic) bool {
		if d.Severity == rules.SeverityOff {
			return false
		}

		cfg := ctx.ConfigForFile(d.Location.File)
		if cfg != nil {
			if enabled := cfg.Rules.IsEnabled(d.RuleCode); enabled != nil {
				return *enabled
			}
		}
		return true
	})
}
