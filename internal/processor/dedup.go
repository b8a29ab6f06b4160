package processor

import (
	"fmt"
	"path/filepath"

	"github.com/wharflab/typelint/internal/rules"
)

// Deduplication removes duplicate diagnostics.
// Two diagnostics are duplicates if they share file, start position, end
// position and rule code. Nested matches of the same rule report distinct
// spans and are kept.
type Deduplication struct{}

// NewDeduplication creates a new deduplication processor.
func NewDeduplication() *Deduplication {
	return &Deduplication{}
}

// Name returns the processor's identifier.
func (p *Deduplication) Name() string {
	return "deduplication"
}

// Process removes duplicate diagnostics, keeping the first occurrence.
func (p *Deduplication) Process(diags []rules.Diagnostic, _ *Context) []rules.Diagnostic {
	seen := make(map[string]bool)
	return filterDiagnostics(diags, func(d rules.Diagnostic) bool {
		loc := d.Location
		key := fmt.Sprintf("%s:%d:%d:%d:%d:%s",
			filepath.ToSlash(loc.File), loc.Start.Line, loc.Start.Column, loc.End.Line, loc.End.Column, d.RuleCode)
		if seen[key] {
			return false
		}
		seen[key] = true
		return true
	})
}
