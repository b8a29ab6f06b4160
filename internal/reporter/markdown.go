package reporter

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/wharflab/typelint/internal/rules"
)

// MarkdownReporter formats diagnostics as concise markdown tables for AI
// agents. Fixable rows are marked with the fix safety.
type MarkdownReporter struct {
	writer io.Writer
}

// NewMarkdownReporter creates a new Markdown reporter.
func NewMarkdownReporter(w io.Writer) *MarkdownReporter {
	return &MarkdownReporter{writer: w}
}

// Report implements Reporter.
func (r *MarkdownReporter) Report(diags []rules.Diagnostic, _ map[string][]byte, _ ReportMetadata) error {
	if len(diags) == 0 {
		_, err := fmt.Fprintln(r.writer, "**No issues found**")
		return err
	}

	sorted := SortDiagnosticsBySeverity(normalizePaths(diags))

	// Count files and issues
	fileSet := make(map[string]struct{})
	for _, d := range sorted {
		fileSet[d.Location.File] = struct{}{}
	}
	fileCount := len(fileSet)

	// Write summary and table
	if fileCount == 1 {
		var filename string
		for f := range fileSet {
			filename = f
		}
		return r.writeSingleFileTable(sorted, filename)
	}

	return r.writeMultiFileTable(sorted, fileCount)
}

// writeSingleFileTable writes a markdown table for diagnostics in a single file.
func (r *MarkdownReporter) writeSingleFileTable(sorted []rules.Diagnostic, filename string) error {
	if _, err := fmt.Fprintf(r.writer, "**%d %s** in `%s`\n\n",
		len(sorted), pluralize(len(sorted), "issue", "issues"), filename); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(r.writer, "| Line | Issue |"); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(r.writer, "|------|-------|"); err != nil {
		return err
	}

	for _, d := range sorted {
		if _, err := fmt.Fprintf(r.writer, "| %s | %s %s |\n",
			formatLineNumber(d), severityEmoji(d.Severity), issueText(d)); err != nil {
			return err
		}
	}

	return nil
}

// writeMultiFileTable writes a markdown table for diagnostics across multiple files.
func (r *MarkdownReporter) writeMultiFileTable(sorted []rules.Diagnostic, fileCount int) error {
	if _, err := fmt.Fprintf(r.writer, "**%d %s** across %d files\n\n",
		len(sorted), pluralize(len(sorted), "issue", "issues"), fileCount); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(r.writer, "| File | Line | Issue |"); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(r.writer, "|------|------|-------|"); err != nil {
		return err
	}

	for _, d := range sorted {
		if _, err := fmt.Fprintf(r.writer, "| %s | %s | %s %s |\n",
			d.Location.File, formatLineNumber(d), severityEmoji(d.Severity), issueText(d)); err != nil {
			return err
		}
	}

	return nil
}

// issueText is the message cell: the message plus a fix marker.
func issueText(d rules.Diagnostic) string {
	text := escapeMarkdown(d.Message)
	if d.Fixable() {
		text += " _(" + strings.ToLower(fixLabel(d.Fix)) + ")_"
	}
	return text
}

// formatLineNumber returns the display string for a diagnostic's line number.
func formatLineNumber(d rules.Diagnostic) string {
	if d.Location.IsFileLevel() || d.Location.Start.Line <= 0 {
		return "-"
	}
	return strconv.Itoa(d.Location.Start.Line)
}

// SortDiagnosticsBySeverity sorts diagnostics by severity (errors first),
// then by file and position.
func SortDiagnosticsBySeverity(diags []rules.Diagnostic) []rules.Diagnostic {
	sorted := SortDiagnostics(diags)
	sort.SliceStable(sorted, func(i, j int) bool {
		return severityPriority(sorted[i].Severity) < severityPriority(sorted[j].Severity)
	})
	return sorted
}

// severityPriority returns a numeric priority for sorting (lower = more severe).
func severityPriority(s rules.Severity) int {
	switch s {
	case rules.SeverityError:
		return 0
	case rules.SeverityWarning:
		return 1
	case rules.SeverityInfo:
		return 2
	default:
		return 3
	}
}

// severityEmoji returns an emoji indicator for the severity level.
func severityEmoji(s rules.Severity) string {
	switch s {
	case rules.SeverityError:
		return "❌"
	case rules.SeverityWarning:
		return "⚠️"
	case rules.SeverityInfo:
		return "ℹ️"
	default:
		return "⚠️"
	}
}

// escapeMarkdown escapes special markdown characters in table cells.
func escapeMarkdown(s string) string {
	// Escape pipe characters which break table formatting
	s = strings.ReplaceAll(s, "|", "\\|")
	// Replace newlines with spaces
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", "")
	return s
}

// pluralize returns singular or plural form based on count.
func pluralize(count int, singular, plural string) string {
	if count == 1 {
		return singular
	}
	return plural
}
