package processor

import (
	"strings"

	"github.com/wharflab/typelint/internal/rules"
)

// PathNormalization converts file paths to forward slashes so output is
// identical on every platform.
type PathNormalization struct{}

// NewPathNormalization creates a new path normalization processor.
func NewPathNormalization() *PathNormalization {
	return &PathNormalization{}
}

// Name returns the processor's identifier.
func (p *PathNormalization) Name() string {
	return "path-normalization"
}

// Process normalizes all file paths to use forward slashes.
func (p *PathNormalization) Process(diags []rules.Diagnostic, _ *Context) []rules.Diagnostic {
	return transformDiagnostics(diags, func(d rules.Diagnostic) rules.Diagnostic {
		d.Location.File = strings.ReplaceAll(d.Location.File, "\\", "/")
		return d
	})
}
