package processor

import (
	"path/filepath"

	"github.com/wharflab/typelint/internal/rules"
)

// Supersession suppresses lower-severity diagnostics when an error-level
// diagnostic starts on the same file and line. A style suggestion is noise
// on a line that already fails.
type Supersession struct{}

// NewSupersession creates a new supersession processor.
func NewSupersession() *Supersession {
	return &Supersession{}
}

// Name returns the processor's identifier.
func (p *Supersession) Name() string {
	return "supersession"
}

// Process removes diagnostics that are superseded by an error at the same
// file+line. Only error-level diagnostics suppress lower-severity ones.
func (p *Supersession) Process(diags []rules.Diagnostic, _ *Context) []rules.Diagnostic {
	type locKey struct {
		file string
		line int
	}

	errorLocations := make(map[locKey]struct{})
	for _, d := range diags {
		if d.Severity != rules.SeverityError {
			continue
		}
		if d.Location.File == "" || d.Location.IsFileLevel() {
			continue
		}
		errorLocations[locKey{
			file: filepath.ToSlash(d.Location.File),
			line: d.Location.Start.Line,
		}] = struct{}{}
	}

	if len(errorLocations) == 0 {
		return diags
	}

	return filterDiagnostics(diags, func(d rules.Diagnostic) bool {
		if d.Severity == rules.SeverityError {
			return true
		}
		if d.Location.File == "" || d.Location.IsFileLevel() {
			return true
		}
		_, hasError := errorLocations[locKey{
			file: filepath.ToSlash(d.Location.File),
			line: d.Location.Start.Line,
		}]
		return !hasError
	})
}
