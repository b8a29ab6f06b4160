package reporter

import (
	"io"
	"path/filepath"
	"sort"

	"github.com/owenrumney/go-sarif/v3/pkg/report/v210/sarif"

	"github.com/wharflab/typelint/internal/rules"
)

// Default SARIF tool information.
const (
	defaultToolName = "typelint"
	defaultToolURI  = "https://github.com/wharflab/typelint"
)

// SARIFReporter formats diagnostics as SARIF (Static Analysis Results Interchange Format).
// SARIF is a standard format for static analysis tools, widely supported by CI/CD systems
// including GitHub Code Scanning and Azure DevOps.
//
// See: https://docs.oasis-open.org/sarif/sarif/v2.1.0/
type SARIFReporter struct {
	writer      io.Writer
	toolName    string
	toolVersion string
	toolURI     string
}

// NewSARIFReporter creates a new SARIF reporter.
func NewSARIFReporter(w io.Writer, toolName, toolVersion, toolURI string) *SARIFReporter {
	if toolName == "" {
		toolName = defaultToolName
	}
	if toolURI == "" {
		toolURI = defaultToolURI
	}
	return &SARIFReporter{
		writer:      w,
		toolName:    toolName,
		toolVersion: toolVersion,
		toolURI:     toolURI,
	}
}

// Report implements Reporter. Columns are 1-based character offsets.
func (r *SARIFReporter) Report(diags []rules.Diagnostic, sources map[string][]byte, _ ReportMetadata) error {
	report := sarif.NewReport()

	run := sarif.NewRunWithInformationURI(r.toolName, r.toolURI)
	if r.toolVersion != "" {
		run.Tool.Driver.WithVersion(r.toolVersion)
	}

	ruleSet := make(map[string]rules.Diagnostic)
	fileSet := make(map[string]struct{})

	for _, d := range diags {
		if _, exists := ruleSet[d.RuleCode]; !exists {
			ruleSet[d.RuleCode] = d
		}
		fileSet[filepath.ToSlash(d.Location.File)] = struct{}{}
	}

	ruleCodes := make([]string, 0, len(ruleSet))
	for code := range ruleSet {
		ruleCodes = append(ruleCodes, code)
	}
	sort.Strings(ruleCodes)

	for _, code := range ruleCodes {
		d := ruleSet[code]
		rule := run.AddRule(code)
		if meta := ruleMetadata(code); meta != nil && meta.Description != "" {
			rule.WithShortDescription(sarif.NewMultiformatMessageString().WithText(meta.Description))
		} else if len(d.Notes) > 0 {
			rule.WithShortDescription(sarif.NewMultiformatMessageString().WithText(d.Notes[0]))
		}
		if d.DocURL != "" {
			rule.WithHelpURI(d.DocURL)
		}
	}

	files := make([]string, 0, len(fileSet))
	for file := range fileSet {
		files = append(files, file)
	}
	sort.Strings(files)

	for _, file := range files {
		run.AddDistinctArtifact(file)
	}

	for _, d := range SortDiagnostics(diags) {
		filePath := filepath.ToSlash(d.Location.File)

		result := sarif.NewRuleResult(d.RuleCode).
			WithMessage(sarif.NewTextMessage(d.Message)).
			WithLevel(severityToSARIFLevel(d.Severity))

		physicalLocation := sarif.NewPhysicalLocation().
			WithArtifactLocation(sarif.NewSimpleArtifactLocation(filePath))

		if !d.Location.IsFileLevel() {
			region := sarif.NewRegion().
				WithStartLine(d.Location.Start.Line).
				WithStartColumn(d.Location.Start.Char + 1).
				WithEndLine(d.Location.End.Line).
				WithEndColumn(d.Location.End.Char + 1)

			if src, ok := sources[d.Location.File]; ok && d.Span.InBounds(len(src)) {
				region.WithSnippet(sarif.NewArtifactContent().WithText(d.Span.Text(src)))
			}
			physicalLocation.WithRegion(region)
		}

		result.WithLocations([]*sarif.Location{
			sarif.NewLocationWithPhysicalLocation(physicalLocation),
		})

		run.AddResult(result)
	}

	report.AddRun(run)

	return report.PrettyWrite(r.writer)
}

// ruleMetadata looks up a registered rule.
func ruleMetadata(code string) *rules.RuleMetadata {
	r := rules.Get(code)
	if r == nil {
		return nil
	}
	meta := r.Metadata()
	return &meta
}

// SARIF severity levels.
const (
	sarifLevelError   = "error"
	sarifLevelWarning = "warning"
	sarifLevelNote    = "note"
)

// severityToSARIFLevel maps our Severity to SARIF levels.
// SARIF uses: "error", "warning", "note", "none"
func severityToSARIFLevel(s rules.Severity) string {
	switch s {
	case rules.SeverityError:
		return sarifLevelError
	case rules.SeverityWarning:
		return sarifLevelWarning
	case rules.SeverityInfo, rules.SeverityOff:
		return sarifLevelNote
	default:
		return sarifLevelWarning
	}
}
