package directive

import "github.com/wharflab/typelint/internal/rules"

// FilterResult contains the results of filtering diagnostics through directives.
type FilterResult struct {
	// Diagnostics that were not suppressed.
	Diagnostics []rules.Diagnostic

	// Suppressed diagnostics that were filtered out.
	Suppressed []rules.Diagnostic

	// UnusedDirectives that did not suppress any diagnostics.
	UnusedDirectives []Directive
}

// Filter applies directives to filter diagnostics.
// Diagnostics are suppressed if a directive matches both:
//   - The diagnostic's rule code (or "all")
//   - The diagnostic's starting line
//
// Diagnostics use 1-based lines; directives use 0-based.
//
// The first matching directive wins and is the only one marked as Used, so
// a later overlapping directive may be reported as unused.
func Filter(diags []rules.Diagnostic, directives []Directive) *FilterResult {
	result := &FilterResult{
		Diagnostics: make([]rules.Diagnostic, 0, len(diags)),
		Suppressed:  make([]rules.Diagnostic, 0),
	}

	directiveCopies := make([]Directive, len(directives))
	copy(directiveCopies, directives)

	for _, d := range diags {
		suppressed := false
		line0 := d.Line() - 1

		for i := range directiveCopies {
			dir := &directiveCopies[i]
			if dir.SuppressesLine(line0) && dir.SuppressesRule(d.RuleCode) {
				suppressed = true
				dir.Used = true
				break
			}
		}

		if suppressed {
			result.Suppressed = append(result.Suppressed, d)
		} else {
			result.Diagnostics = append(result.Diagnostics, d)
		}
	}

	for _, d := range directiveCopies {
		if !d.Used {
			result.UnusedDirectives = append(result.UnusedDirectives, d)
		}
	}

	return result
}
