package processor

import (
	"github.com/wharflab/typelint/internal/rules"
)

// SeverityOverride applies severity overrides from configuration.
// Allows users to downgrade warnings to info, upgrade info to errors, etc.
// Also auto-enables rules with DefaultSeverity "off" when options are configured.
type SeverityOverride struct {
	registry *rules.Registry
}

// NewSeverityOverride creates a new severity override processor.
func NewSeverityOverride() *SeverityOverride {
	return NewSeverityOverrideWithRegistry(rules.DefaultRegistry())
}

// NewSeverityOverrideWithRegistry creates a severity override processor with a custom registry.
func NewSeverityOverrideWithRegistry(registry *rules.Registry) *SeverityOverride {
	if registry == nil {
		registry = rules.DefaultRegistry()
	}
	return &SeverityOverride{
		registry: registry,
	}
}

// Name returns the processor's identifier.
func (p *SeverityOverride) Name() string {
	return "severity-override"
}

// Process applies severity overrides from config.
func (p *SeverityOverride) Process(diags []rules.Diagnostic, ctx *Context) []rules.Diagnostic {
	return transformDiagnostics(diags, func(d rules.Diagnostic) rules.Diagnostic {
		cfg := ctx.ConfigForFile(d.Location.File)
		if cfg == nil {
			return d
		}

		if override := cfg.Rules.GetSeverity(d.RuleCode); override != "" {
			sev, err := rules.ParseSeverity(override)
			if err != nil {
				// Rejected by config validation; keep the rule's severity.
				return d
			}
			d.Severity = sev
			return d
		}

		ruleConfig := cfg.Rules.Get(d.RuleCode)
		if ruleConfig != nil && len(ruleConfig.Options) > 0 {
			rule := p.registry.Get(d.RuleCode)
			if rule != nil && rule.Metadata().DefaultSeverity == rules.SeverityOff {
				d.Severity = rules.SeverityWarning
			}
		}
		return d
	})
}
