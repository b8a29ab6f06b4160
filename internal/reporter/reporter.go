// Package reporter provides output formatters for lint results.
//
// The package supports multiple output formats:
//   - text: code frames with carets and a diff of each fix
//   - json: Machine-readable JSON output
//   - sarif: Static Analysis Results Interchange Format for CI/CD integration
//   - github-actions: Native GitHub Actions workflow annotations
//   - markdown: Concise markdown tables for AI agents
package reporter

import (
	"cmp"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/gkampitakis/ciinfo"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"

	"github.com/wharflab/typelint/internal/rules"
)

// ReportMetadata contains contextual information about the lint run.
type ReportMetadata struct {
	// FilesScanned is the total number of files that were scanned.
	FilesScanned int
	// RulesEnabled is the total number of rules that were active (not "off").
	RulesEnabled int
}

// Reporter formats and outputs diagnostics.
type Reporter interface {
	// Report writes diagnostics to the configured output.
	Report(diags []rules.Diagnostic, sources map[string][]byte, metadata ReportMetadata) error
}

// SortDiagnostics sorts diagnostics by file, line, column and rule code for
// stable output.
func SortDiagnostics(diags []rules.Diagnostic) []rules.Diagnostic {
	sorted := slices.Clone(diags)
	slices.SortStableFunc(sorted, func(a, b rules.Diagnostic) int {
		return cmp.Or(
			cmp.Compare(a.Location.File, b.Location.File),
			cmp.Compare(a.Location.Start.Line, b.Location.Start.Line),
			cmp.Compare(a.Location.Start.Column, b.Location.Start.Column),
			cmp.Compare(a.RuleCode, b.RuleCode),
		)
	})
	return sorted
}

// Format represents an output format type.
type Format string

const (
	// FormatText is human-readable terminal output.
	FormatText Format = "text"
	// FormatJSON is machine-readable JSON output.
	FormatJSON Format = "json"
	// FormatSARIF is Static Analysis Results Interchange Format.
	FormatSARIF Format = "sarif"
	// FormatGitHubActions is GitHub Actions workflow command output.
	FormatGitHubActions Format = "github-actions"
	// FormatMarkdown is concise markdown tables for AI agents.
	FormatMarkdown Format = "markdown"
)

// ParseFormat parses a format string into a Format type.
// Returns an error if the format is unknown.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "text", "":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "sarif":
		return FormatSARIF, nil
	case "github-actions", "github":
		return FormatGitHubActions, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unknown format: %q (valid: text, json, sarif, github-actions, markdown)", s)
	}
}

// Options configures reporter creation.
type Options struct {
	// Format specifies the output format.
	Format Format

	// Writer is the output destination.
	Writer io.Writer

	// Color enables/disables colored output (text format only).
	// nil means auto-detect.
	Color *bool

	// ShowSource enables code frames and fix diffs (text format only).
	ShowSource bool

	// TabWidth is the default tab expansion in code frames.
	TabWidth int

	// TabWidthFor overrides TabWidth per file.
	TabWidthFor func(path string) int

	// ToolVersion is included in SARIF output.
	ToolVersion string

	// ToolName is the tool name for SARIF output.
	ToolName string

	// ToolURI is the tool information URI for SARIF output.
	ToolURI string
}

// DefaultOptions returns sensible defaults for reporter options.
func DefaultOptions() Options {
	return Options{
		Format:      FormatText,
		Writer:      os.Stdout,
		Color:       nil, // auto-detect
		ShowSource:  true,
		TabWidth:    2,
		ToolName:    defaultToolName,
		ToolURI:     defaultToolURI,
		ToolVersion: "dev",
	}
}

// New creates a reporter based on the format specified in options.
func New(opts Options) (Reporter, error) {
	if opts.Writer == nil {
		opts.Writer = os.Stdout
	}

	switch opts.Format {
	case FormatText, "":
		textOpts := TextOptions{
			Color:       ResolveColor(opts.Color, opts.Writer),
			ShowSource:  opts.ShowSource,
			TabWidth:    opts.TabWidth,
			TabWidthFor: opts.TabWidthFor,
		}
		return &textReporterAdapter{
			reporter: NewTextReporter(textOpts),
			writer:   opts.Writer,
		}, nil

	case FormatJSON:
		return NewJSONReporter(opts.Writer), nil

	case FormatSARIF:
		return NewSARIFReporter(opts.Writer, opts.ToolName, opts.ToolVersion, opts.ToolURI), nil

	case FormatGitHubActions:
		return NewGitHubActionsReporter(opts.Writer), nil

	case FormatMarkdown:
		return NewMarkdownReporter(opts.Writer), nil

	default:
		return nil, fmt.Errorf("unknown format: %q", opts.Format)
	}
}

// ResolveColor decides whether text output to w is styled. An explicit
// setting wins. Otherwise NO_COLOR disables and CLICOLOR_FORCE enables
// styling; a terminal gets color when termenv detects a profile, and CI
// logs that render ANSI sequences get it without a terminal.
func ResolveColor(explicit *bool, w io.Writer) bool {
	if explicit != nil {
		return *explicit
	}
	if termenv.EnvNoColor() {
		return false
	}
	if f, ok := w.(interface{ Fd() uintptr }); ok && isatty.IsTerminal(f.Fd()) {
		return termenv.EnvColorProfile() != termenv.Ascii
	}
	if os.Getenv("CLICOLOR_FORCE") != "" && os.Getenv("CLICOLOR_FORCE") != "0" {
		return true
	}
	return ciinfo.IsCI && ansiCI(ciinfo.Name)
}

// ansiCI reports whether the named CI service renders ANSI colors in its
// job logs.
func ansiCI(name string) bool {
	switch name {
	case "GitHub Actions", "GitLab CI", "Buildkite", "CircleCI", "Drone", "Woodpecker":
		return true
	default:
		return false
	}
}

// textReporterAdapter adapts TextReporter to the Reporter interface.
type textReporterAdapter struct {
	reporter *TextReporter
	writer   io.Writer
}

// Report implements Reporter.
func (a *textReporterAdapter) Report(diags []rules.Diagnostic, sources map[string][]byte, _ ReportMetadata) error {
	return a.reporter.Print(a.writer, diags, sources)
}

// normalizePaths returns a copy of diags with forward-slash file paths.
func normalizePaths(diags []rules.Diagnostic) []rules.Diagnostic {
	out := slices.Clone(diags)
	for i := range out {
		out[i].Location.File = filepath.ToSlash(out[i].Location.File)
	}
	return out
}

// GetWriter returns an io.Writer for the given output path.
// Supports "stdout", "stderr", or file paths.
func GetWriter(path string) (io.Writer, func() error, error) {
	switch path {
	case "stdout", "":
		return os.Stdout, func() error { return nil }, nil
	case "stderr":
		return os.Stderr, func() error { return nil }, nil
	default:
		f, err := os.Create(path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create output file: %w", err)
		}
		return f, f.Close, nil
	}
}
