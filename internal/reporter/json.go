package reporter

import (
	"encoding/json"
	"io"

	"github.com/wharflab/typelint/internal/rules"
)

// JSONOutput is the top-level structure for JSON output.
type JSONOutput struct {
	// Files contains results grouped by file.
	Files []FileResult `json:"files"`
	// Summary contains aggregate statistics.
	Summary Summary `json:"summary"`
	// FilesScanned is the total number of files scanned.
	FilesScanned int `json:"files_scanned"`
	// RulesEnabled is the total number of rules that were active.
	RulesEnabled int `json:"rules_enabled"`
}

// FileResult contains the linting results for a single file.
type FileResult struct {
	File        string             `json:"file"`
	Diagnostics []rules.Diagnostic `json:"diagnostics"`
}

// Summary contains aggregate statistics about diagnostics.
type Summary struct {
	Total    int `json:"total"`
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Info     int `json:"info"`
	Fixable  int `json:"fixable"`
	Files    int `json:"files"`
}

// JSONReporter formats diagnostics as JSON output.
type JSONReporter struct {
	writer io.Writer
}

// NewJSONReporter creates a new JSON reporter.
func NewJSONReporter(w io.Writer) *JSONReporter {
	return &JSONReporter{writer: w}
}

// Report implements Reporter.
func (r *JSONReporter) Report(diags []rules.Diagnostic, _ map[string][]byte, metadata ReportMetadata) error {
	byFile := make(map[string][]rules.Diagnostic)
	filesOrder := make([]string, 0)

	for _, d := range SortDiagnostics(normalizePaths(diags)) {
		file := d.Location.File
		if _, exists := byFile[file]; !exists {
			filesOrder = append(filesOrder, file)
		}
		byFile[file] = append(byFile[file], d)
	}

	output := JSONOutput{
		Files:        make([]FileResult, 0, len(filesOrder)),
		Summary:      calculateSummary(diags, len(filesOrder)),
		FilesScanned: metadata.FilesScanned,
		RulesEnabled: metadata.RulesEnabled,
	}

	for _, file := range filesOrder {
		output.Files = append(output.Files, FileResult{
			File:        file,
			Diagnostics: byFile[file],
		})
	}

	enc := json.NewEncoder(r.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}

// calculateSummary computes aggregate statistics from diagnostics.
func calculateSummary(diags []rules.Diagnostic, fileCount int) Summary {
	summary := Summary{
		Total: len(diags),
		Files: fileCount,
	}

	for _, d := range diags {
		switch d.Severity {
		case rules.SeverityError:
			summary.Errors++
		case rules.SeverityWarning:
			summary.Warnings++
		case rules.SeverityInfo:
			summary.Info++
		case rules.SeverityOff:
			// Filtered out before reporting.
		}
		if d.Fixable() {
			summary.Fixable++
		}
	}

	return summary
}
