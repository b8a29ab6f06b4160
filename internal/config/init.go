package config

import (
	"bytes"
	"fmt"

	"github.com/pelletier/go-toml/v2"

	"github.com/wharflab/typelint/internal/rules"
)

// templateFile is the shape written by "typelint config init". It mirrors
// Config with TOML tags and only the keys worth editing.
type templateFile struct {
	Output           templateOutput           `toml:"output"`
	InlineDirectives templateInlineDirectives `toml:"inline-directives"`
	Files            templateFiles            `toml:"files"`
	Rules            map[string]any           `toml:"rules"`
}

type templateOutput struct {
	Format     string `toml:"format"`
	FailLevel  string `toml:"fail-level"`
	ShowSource bool   `toml:"show-source"`
	TabWidth   int    `toml:"tab-width"`
}

type templateInlineDirectives struct {
	Enabled    bool `toml:"enabled"`
	WarnUnused bool `toml:"warn-unused"`
}

type templateFiles struct {
	Include []string `toml:"include"`
	Exclude []string `toml:"exclude"`
}

type templateRule struct {
	Severity string  `toml:"severity"`
	Fix      FixMode `toml:"fix,omitempty"`
}

// Template renders a config file for cfg listing every rule in metas with
// its default severity.
func Template(cfg *Config, metas []rules.RuleMetadata) ([]byte, error) {
	groups := make(map[string]map[string]templateRule)
	for _, meta := range metas {
		group, name := parseRuleCode(meta.Code)
		if group == "" {
			continue
		}
		if groups[group] == nil {
			groups[group] = make(map[string]templateRule)
		}
		entry := templateRule{Severity: meta.DefaultSeverity.String()}
		if meta.FixKind != rules.FixNone {
			entry.Fix = cfg.Rules.GetFixMode(meta.Code)
		}
		groups[group][name] = entry
	}

	ruleTable := make(map[string]any, len(groups))
	for group, entries := range groups {
		ruleTable[group] = entries
	}

	file := templateFile{
		Output: templateOutput{
			Format:     cfg.Output.Format,
			FailLevel:  cfg.Output.FailLevel,
			ShowSource: cfg.Output.ShowSource,
			TabWidth:   cfg.Output.TabWidth,
		},
		InlineDirectives: templateInlineDirectives{
			Enabled:    cfg.InlineDirectives.Enabled,
			WarnUnused: cfg.InlineDirectives.WarnUnused,
		},
		Files: templateFiles{
			Include: cfg.Files.Include,
			Exclude: cfg.Files.Exclude,
		},
		Rules: ruleTable,
	}

	var buf bytes.Buffer
	buf.WriteString("# typelint configuration\n\n")
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(false)
	if err := enc.Encode(file); err != nil {
		return nil, fmt.Errorf("encode config template: %w", err)
	}
	return buf.Bytes(), nil
}
