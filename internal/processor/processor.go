// Package processor provides a composable diagnostic processing pipeline.
//
// Diagnostics flow through a sequence of processors, each transforming the
// slice (filtering, modifying, or augmenting).
//
// Standard pipeline order:
//  1. PathNormalization - Cross-platform path consistency
//  2. SeverityOverride - Apply config severity overrides
//  3. EnableFilter - Remove diagnostics for disabled rules
//  4. PathExclusionFilter - Remove per-rule path exclusions
//  5. InlineDirectiveFilter - Apply // typelint-ignore comments
//  6. Supersession - Drop lower-severity diagnostics on error lines
//  7. Deduplication - Remove duplicate diagnostics
//  8. Sorting - Stable output ordering
package processor

import (
	"path/filepath"

	"github.com/wharflab/typelint/internal/config"
	"github.com/wharflab/typelint/internal/directive"
	"github.com/wharflab/typelint/internal/rules"
	"github.com/wharflab/typelint/internal/sourcemap"
)

// Processor transforms a slice of diagnostics.
// Implementations should be stateless where possible, using Context for shared state.
type Processor interface {
	// Name returns the processor's identifier (for debugging/logging).
	Name() string

	// Process applies the processor's logic to diagnostics.
	// Returns the transformed slice (may be same, filtered, or modified).
	// Must not modify the input slice; return a new slice if filtering.
	Process(diags []rules.Diagnostic, ctx *Context) []rules.Diagnostic
}

// Context provides shared state for processors.
// Populated once before running the chain, then passed to each processor.
type Context struct {
	// Config is the configuration used when no per-file config is known.
	Config *config.Config

	// FileConfigs maps file paths to the config discovered for them.
	FileConfigs map[string]*config.Config

	// FileSources maps file paths to their raw source content.
	FileSources map[string][]byte

	// Extents maps file paths to the construct extent of their syntax tree,
	// used to widen next-line suppressions over multi-line declarations.
	Extents map[string]directive.ExtentFunc

	// SourceMaps caches parsed source maps by file path.
	// Lazily populated by GetSourceMap.
	sourceMaps map[string]*sourcemap.SourceMap
}

// NewContext creates a new processor context.
func NewContext(cfg *config.Config, fileSources map[string][]byte) *Context {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Context{
		Config:      cfg,
		FileConfigs: make(map[string]*config.Config),
		FileSources: fileSources,
		Extents:     make(map[string]directive.ExtentFunc),
		sourceMaps:  make(map[string]*sourcemap.SourceMap),
	}
}

// ConfigForFile returns the config that applies to file.
func (ctx *Context) ConfigForFile(file string) *config.Config {
	if cfg, ok := ctx.FileConfigs[file]; ok && cfg != nil {
		return cfg
	}
	if cfg, ok := ctx.FileConfigs[filepath.FromSlash(file)]; ok && cfg != nil {
		return cfg
	}
	return ctx.Config
}

// GetSourceMap returns or creates a SourceMap for the given file.
// Returns nil if the file is not in FileSources.
func (ctx *Context) GetSourceMap(file string) *sourcemap.SourceMap {
	if sm, ok := ctx.sourceMaps[file]; ok {
		return sm
	}
	source, ok := ctx.FileSources[file]
	if !ok {
		source, ok = ctx.FileSources[filepath.FromSlash(file)]
	}
	if !ok {
		return nil
	}
	sm := sourcemap.New(source)
	ctx.sourceMaps[file] = sm
	return sm
}

// Chain runs processors in sequence.
type Chain struct {
	processors []Processor
}

// NewChain creates a new processor chain.
func NewChain(processors ...Processor) *Chain {
	return &Chain{processors: processors}
}

// Names returns the processor names in execution order.
func (c *Chain) Names() []string {
	names := make([]string, len(c.processors))
	for i, p := range c.processors {
		names[i] = p.Name()
	}
	return names
}

// Process runs all processors in sequence.
func (c *Chain) Process(diags []rules.Diagnostic, ctx *Context) []rules.Diagnostic {
	for _, p := range c.processors {
		diags = p.Process(diags, ctx)
	}
	return diags
}

// filterDiagnostics is a helper for processors that filter diagnostics.
// It returns a new slice containing only diagnostics where keep() returns true.
func filterDiagnostics(diags []rules.Diagnostic, keep func(d rules.Diagnostic) bool) []rules.Diagnostic {
	result := make([]rules.Diagnostic, 0, len(diags))
	for _, d := range diags {
		if keep(d) {
			result = append(result, d)
		}
	}
	return result
}

// transformDiagnostics is a helper for processors that modify diagnostics.
// It returns a new slice with each diagnostic transformed by transform().
func transformDiagnostics(
	diags []rules.Diagnostic,
	transform func(d rules.Diagnostic) rules.Diagnostic,
) []rules.Diagnostic {
	result := make([]rules.Diagnostic, len(diags))
	for i, d := range diags {
		result[i] = transform(d)
	}
	return result
}
