package linter

import (
	"slices"

	"github.com/wharflab/typelint/internal/config"
	"github.com/wharflab/typelint/internal/rules"
)

// EnabledRuleCodes returns the sorted codes of the rules that are active
// for the given config.
func EnabledRuleCodes(cfg *config.Config) []string {
	var enabled []string
	for _, rule := range rules.All() {
		meta := rule.Metadata()
		if isRuleEnabled(meta.Code, meta.DefaultSeverity, cfg) {
			enabled = append(enabled, meta.Code)
		}
	}
	slices.Sort(enabled)
	return enabled
}

// isRuleEnabled checks if a rule is effectively enabled based on config.
func isRuleEnabled(ruleCode string, defaultSeverity rules.Severity, cfg *config.Config) bool {
	if cfg == nil {
		return defaultSeverity != rules.SeverityOff
	}

	// Explicit include/exclude patterns win.
	if enabled := cfg.Rules.IsEnabled(ruleCode); enabled != nil {
		return *enabled
	}

	// Respect explicit severity overrides (on/off).
	if sev := cfg.Rules.GetSeverity(ruleCode); sev != "" {
		return sev != "off"
	}

	// A rule that is off by default is enabled by configuring options.
	if defaultSeverity == rules.SeverityOff {
		ruleConfig := cfg.Rules.Get(ruleCode)
		return ruleConfig != nil && len(ruleConfig.Options) > 0
	}

	return true
}
