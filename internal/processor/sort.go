package processor

import (
	"github.com/wharflab/typelint/internal/reporter"
	"github.com/wharflab/typelint/internal/rules"
)

// Sorting ensures stable, deterministic output ordering.
// Order: file path, then line number, then column, then rule code.
type Sorting struct{}

// NewSorting creates a new sorting processor.
func NewSorting() *Sorting {
	return &Sorting{}
}

// Name returns the processor's identifier.
func (p *Sorting) Name() string {
	return "sorting"
}

// Process sorts diagnostics in a stable order.
func (p *Sorting) Process(diags []rules.Diagnostic, _ *Context) []rules.Diagnostic {
	return reporter.SortDiagnostics(diags)
}
