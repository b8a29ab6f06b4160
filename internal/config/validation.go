package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/v2"

	"github.com/wharflab/typelint/internal/rules"
)

// Formats lists the accepted output formats.
var Formats = []string{"text", "json", "sarif", "github-actions", "markdown"}

var fixModes = []FixMode{FixModeNever, FixModeExplicit, FixModeAlways, FixModeUnsafeOnly}

func decodeConfig(raw map[string]any) (*Config, error) {
	normalizeOutputAliases(raw)
	if err := validateRuleGroups(raw); err != nil {
		return nil, err
	}

	k := koanf.New(".")
	if err := k.Load(confmap.Provider(raw, ""), nil); err != nil {
		return nil, fmt.Errorf("load normalized config: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// normalizeOutputAliases moves top-level shorthand keys (format = "json")
// into the [output] table.
func normalizeOutputAliases(raw map[string]any) {
	outputRaw, ok := raw["output"].(map[string]any)
	if !ok || outputRaw == nil {
		outputRaw = make(map[string]any)
		raw["output"] = outputRaw
	}

	for _, key := range []string{"format", "path", "show-source", "fail-level", "tab-width"} {
		value, ok := raw[key]
		if !ok {
			continue
		}
		if _, exists := outputRaw[key]; !exists {
			outputRaw[key] = value
		}
		delete(raw, key)
	}
}

func validateRuleGroups(raw map[string]any) error {
	rulesRaw, ok := raw["rules"].(map[string]any)
	if !ok {
		return nil
	}
	for key := range rulesRaw {
		if key == "include" || key == "exclude" || slices.Contains(RuleGroups, key) {
			continue
		}
		return fmt.Errorf("unknown rule group %q (expected one of %s)", key, strings.Join(RuleGroups, ", "))
	}
	return nil
}

// Validate checks enumerated values and glob patterns.
func (c *Config) Validate() error {
	if !slices.Contains(Formats, c.Output.Format) {
		return fmt.Errorf("invalid output format %q (expected one of %s)", c.Output.Format, strings.Join(Formats, ", "))
	}
	if _, err := rules.ParseSeverity(c.Output.FailLevel); err != nil {
		return fmt.Errorf("invalid fail-level: %w", err)
	}
	if c.Output.TabWidth < 1 {
		return fmt.Errorf("invalid tab-width %d: must be at least 1", c.Output.TabWidth)
	}
	for _, p := range slices.Concat(c.Files.Include, c.Files.Exclude) {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid file pattern %q", p)
		}
	}

	for _, group := range RuleGroups {
		for name, rc := range c.Rules.groupMap(group) {
			code := RulePrefix + group + "/" + name
			if rc.Severity != "" {
				if _, err := rules.ParseSeverity(rc.Severity); err != nil {
					return fmt.Errorf("rule %s: %w", code, err)
				}
			}
			if rc.Fix != "" && !slices.Contains(fixModes, rc.Fix) {
				return fmt.Errorf("rule %s: invalid fix mode %q", code, rc.Fix)
			}
			for _, p := range rc.Exclude.Paths {
				if !doublestar.ValidatePattern(p) {
					return fmt.Errorf("rule %s: invalid exclude pattern %q", code, p)
				}
			}
		}
	}
	return nil
}
