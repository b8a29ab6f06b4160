package processor

import (
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/wharflab/typelint/internal/rules"
)

// PathExclusionFilter removes diagnostics based on per-rule path exclusions
// ([rules.<group>.<name>] exclude.paths).
type PathExclusionFilter struct{}

// NewPathExclusionFilter creates a new path exclusion filter processor.
func NewPathExclusionFilter() *PathExclusionFilter {
	return &PathExclusionFilter{}
}

// Name returns the processor's identifier.
func (p *PathExclusionFilter) Name() string {
	return "path-exclusion-filter"
}

// Process filters out diagnostics for files that match exclusion patterns.
func (p *PathExclusionFilter) Process(diags []rules.Diagnostic, ctx *Context) []rules.Diagnostic {
	return filterDiagnostics(diags, func(d rules.Diagnostic) bool {
		cfg := ctx.ConfigForFile(d.Location.File)
		if cfg == nil {
			return true
		}
		patterns := cfg.Rules.GetExcludePaths(d.RuleCode)
		if len(patterns) == 0 {
			return true
		}

		file := filepath.ToSlash(d.Location.File)
		for _, pattern := range patterns {
			matched, err := doublestar.Match(pattern, file)
			if err != nil {
				// Invalid pattern - skip this check
				continue
			}
			if matched {
				return false
			}
		}
		return true
	})
}
