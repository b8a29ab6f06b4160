package config

import (
	"maps"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// FixMode controls when auto-fixes are applied for a rule.
type FixMode string

const (
	// FixModeNever disables fixes even with --fix.
	FixModeNever FixMode = "never"

	// FixModeExplicit requires --fix-rule to apply.
	FixModeExplicit FixMode = "explicit"

	// FixModeAlways applies with --fix when safety threshold is met (default).
	FixModeAlways FixMode = "always"

	// FixModeUnsafeOnly requires --fix-unsafe to apply.
	FixModeUnsafeOnly FixMode = "unsafe-only"
)

// RulePrefix is the namespace shared by all rule codes.
const RulePrefix = "lint/"

// RuleGroups lists the rule groups that can be configured.
var RuleGroups = []string{"complexity", "correctness", "style", "suspicious"}

// RuleConfig represents per-rule configuration.
// Can be specified in TOML as:
//
//	[rules.style.useShorthandFunctionType]
//	severity = "error"
//	fix = "always"
//	exclude = { paths = ["generated/**"] }
type RuleConfig struct {
	// Severity overrides the rule's default severity.
	// Use "off" to disable the rule.
	Severity string `json:"severity,omitempty" koanf:"severity"`

	// Fix controls when auto-fixes are applied for this rule.
	// Values: never, explicit, always (default), unsafe-only.
	Fix FixMode `json:"fix,omitempty" koanf:"fix"`

	// Exclude contains path patterns where this rule should not run.
	Exclude ExcludeConfig `json:"exclude" koanf:"exclude"`

	// Options contains rule-specific configuration options.
	Options map[string]any `json:"-" koanf:",remain"`
}

// ExcludeConfig defines file exclusion patterns for a rule.
type ExcludeConfig struct {
	// Paths contains glob patterns for files to exclude.
	Paths []string `json:"paths,omitempty" koanf:"paths"`
}

// RulesConfig contains rule selection and per-rule configuration.
//
// Example TOML:
//
//	[rules]
//	include = ["style/*"]
//	exclude = ["style/useShorthandFunctionType"]
//
//	[rules.style.useShorthandFunctionType]
//	severity = "error"
type RulesConfig struct {
	// Include explicitly enables rules.
	Include []string `json:"include,omitempty" koanf:"include"`

	// Exclude explicitly disables rules.
	Exclude []string `json:"exclude,omitempty" koanf:"exclude"`

	Complexity  map[string]RuleConfig `json:"complexity,omitempty" koanf:"complexity"`
	Correctness map[string]RuleConfig `json:"correctness,omitempty" koanf:"correctness"`
	Style       map[string]RuleConfig `json:"style,omitempty" koanf:"style"`
	Suspicious  map[string]RuleConfig `json:"suspicious,omitempty" koanf:"suspicious"`
}

// Get returns the configuration for a specific rule.
// Returns nil if no configuration exists for the rule.
// ruleCode may be a full code ("lint/style/useShorthandFunctionType") or
// group-qualified ("style/useShorthandFunctionType").
func (rc *RulesConfig) Get(ruleCode string) *RuleConfig {
	if rc == nil {
		return nil
	}
	group, name := parseRuleCode(ruleCode)
	m := rc.groupMap(group)
	if m == nil {
		return nil
	}
	if cfg, ok := m[name]; ok {
		return &cfg
	}
	return nil
}

// parseRuleCode parses a rule code into group and name.
// "lint/style/useShorthandFunctionType" -> ("style", "useShorthandFunctionType")
// "useShorthandFunctionType" -> ("", "useShorthandFunctionType")
func parseRuleCode(ruleCode string) (string, string) {
	code := strings.TrimPrefix(ruleCode, RulePrefix)
	if idx := strings.Index(code, "/"); idx > 0 {
		return code[:idx], code[idx+1:]
	}
	return "", code
}

// IsEnabled checks if a rule is enabled based on Include/Exclude patterns.
// Returns nil if no configuration specifies enabled/disabled (use rule default).
// Include takes precedence over Exclude.
func (rc *RulesConfig) IsEnabled(ruleCode string) *bool {
	if rc == nil {
		return nil
	}

	if matchesAnyPattern(ruleCode, rc.Include) {
		return boolPtr(true)
	}
	if matchesAnyPattern(ruleCode, rc.Exclude) {
		return boolPtr(false)
	}
	return nil
}

// matchesAnyPattern checks if ruleCode matches any pattern in the list.
// Patterns are matched against the code without the "lint/" prefix and may
// use glob syntax: "*", "style/*", "style/use*".
func matchesAnyPattern(ruleCode string, patterns []string) bool {
	code := strings.TrimPrefix(ruleCode, RulePrefix)
	for _, pattern := range patterns {
		pattern = strings.TrimPrefix(pattern, RulePrefix)
		if pattern == "*" || pattern == code {
			return true
		}
		if ok, err := doublestar.Match(pattern, code); err == nil && ok {
			return true
		}
	}
	return false
}

// GetSeverity returns the severity override for a rule.
// Returns empty string if no override is configured.
func (rc *RulesConfig) GetSeverity(ruleCode string) string {
	if cfg := rc.Get(ruleCode); cfg != nil {
		return cfg.Severity
	}
	return ""
}

// GetFixMode returns the fix mode for a rule.
// Returns FixModeAlways (default) if no override is configured.
func (rc *RulesConfig) GetFixMode(ruleCode string) FixMode {
	if cfg := rc.Get(ruleCode); cfg != nil && cfg.Fix != "" {
		return cfg.Fix
	}
	return FixModeAlways
}

// FixModes returns the configured fix modes keyed by full rule code.
func (rc *RulesConfig) FixModes() map[string]FixMode {
	if rc == nil {
		return nil
	}
	modes := make(map[string]FixMode)
	for _, group := range RuleGroups {
		for name, cfg := range rc.groupMap(group) {
			if cfg.Fix != "" {
				modes[RulePrefix+group+"/"+name] = cfg.Fix
			}
		}
	}
	return modes
}

// GetExcludePaths returns the exclusion patterns for a rule.
func (rc *RulesConfig) GetExcludePaths(ruleCode string) []string {
	if cfg := rc.Get(ruleCode); cfg != nil && cfg.Exclude.Paths != nil {
		out := make([]string, len(cfg.Exclude.Paths))
		copy(out, cfg.Exclude.Paths)
		return out
	}
	return nil
}

// GetOptions returns rule-specific options.
// Returns nil if no options are configured.
// Returns a shallow copy to prevent mutation of internal state.
func (rc *RulesConfig) GetOptions(ruleCode string) map[string]any {
	if cfg := rc.Get(ruleCode); cfg != nil && cfg.Options != nil {
		out := make(map[string]any, len(cfg.Options))
		maps.Copy(out, cfg.Options)
		return out
	}
	return nil
}

// Set stores configuration for a rule.
// Creates the group map if nil.
// Returns false if the group is unknown.
func (rc *RulesConfig) Set(ruleCode string, cfg RuleConfig) bool {
	group, name := parseRuleCode(ruleCode)
	var m *map[string]RuleConfig
	switch group {
	case "complexity":
		m = &rc.Complexity
	case "correctness":
		m = &rc.Correctness
	case "style":
		m = &rc.Style
	case "suspicious":
		m = &rc.Suspicious
	default:
		return false
	}
	if *m == nil {
		*m = make(map[string]RuleConfig)
	}
	(*m)[name] = cfg
	return true
}

// groupMap returns the map for a given group.
func (rc *RulesConfig) groupMap(group string) map[string]RuleConfig {
	switch group {
	case "complexity":
		return rc.Complexity
	case "correctness":
		return rc.Correctness
	case "style":
		return rc.Style
	case "suspicious":
		return rc.Suspicious
	default:
		return nil
	}
}

// boolPtr returns a pointer to a bool value.
func boolPtr(b bool) *bool {
	return &b
}
