package linter

import (
	"github.com/wharflab/typelint/internal/config"
	"github.com/wharflab/typelint/internal/processor"
	"github.com/wharflab/typelint/internal/rules"
)

// CLIProcessors returns the standard CLI processor chain.
func CLIProcessors() *processor.Chain {
	return processor.NewChain(
		processor.NewPathNormalization(),     // Normalize paths for cross-platform consistency
		processor.NewSeverityOverride(),      // Apply severity overrides (must run before EnableFilter)
		processor.NewEnableFilter(),          // Filter rules with severity="off"
		processor.NewPathExclusionFilter(),   // Apply per-rule path exclusions
		processor.NewInlineDirectiveFilter(), // Apply inline ignore directives
		processor.NewSupersession(),          // Drop lower-severity when error exists
		processor.NewDeduplication(),         // Remove duplicate diagnostics
		processor.NewSorting(),               // Stable output ordering
	)
}

// FixProcessors returns the chain used when re-linting during fix passes.
// Paths are left as given so they match the fixer's file keys.
func FixProcessors() *processor.Chain {
	return processor.NewChain(
		processor.NewSeverityOverride(),
		processor.NewEnableFilter(),
		processor.NewPathExclusionFilter(),
		processor.NewInlineDirectiveFilter(),
		processor.NewSupersession(),
		processor.NewDeduplication(),
		processor.NewSorting(),
	)
}

// NewProcessorContext builds the processor context for lint results.
// Each result contributes its source, config and construct extent.
func NewProcessorContext(cfg *config.Config, results []*Result) *processor.Context {
	sources := make(map[string][]byte, len(results))
	for _, r := range results {
		sources[r.FilePath] = r.Source
	}
	ctx := processor.NewContext(cfg, sources)
	for _, r := range results {
		ctx.FileConfigs[r.FilePath] = r.Config
		ctx.Extents[r.FilePath] = r.Extent
	}
	return ctx
}

// Process runs chain over the diagnostics of results.
func Process(chain *processor.Chain, cfg *config.Config, results []*Result) []rules.Diagnostic {
	var diags []rules.Diagnostic
	for _, r := range results {
		diags = append(diags, r.Diagnostics...)
	}
	return chain.Process(diags, NewProcessorContext(cfg, results))
}
