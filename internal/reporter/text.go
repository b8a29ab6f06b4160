package reporter

import (
	"bytes"
	"cmp"
	"fmt"
	"io"
	"slices"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/cockroachdb/errors"
	"github.com/mattn/go-runewidth"

	"github.com/wharflab/typelint/internal/rules"
	"github.com/wharflab/typelint/internal/span"
)

// ErrRenderInconsistency marks a diagnostic that cannot be rendered
// because its spans do not fit the source. It indicates a bug in a rule;
// nothing is written for the affected file.
var ErrRenderInconsistency = errors.New("render inconsistency")

// headerWidth is the column the header rule extends to.
const headerWidth = 88

var (
	headerStyle  = lipgloss.NewStyle().Bold(true)
	fixableStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("252"))
	ruleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	infoStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	lineNumStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	gutterStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	markerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	deleteStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	insertStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("34"))

	severityStyles = map[rules.Severity]lipgloss.Style{
		rules.SeverityError:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		rules.SeverityWarning: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
		rules.SeverityInfo:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
	}
)

// TextOptions configures the text reporter output.
type TextOptions struct {
	// Color enables ANSI styling. The plain format is the stable one.
	Color bool

	// ShowSource shows the code frame and the fix diff.
	ShowSource bool

	// TabWidth is the number of columns a tab expands to. Defaults to 2.
	TabWidth int

	// TabWidthFor overrides TabWidth per file, e.g. from .editorconfig.
	TabWidthFor func(path string) int
}

// DefaultTextOptions returns sensible defaults for text output.
func DefaultTextOptions() TextOptions {
	return TextOptions{ShowSource: true, TabWidth: 2}
}

func (o TextOptions) tabWidth(path string) int {
	if o.TabWidthFor != nil {
		if w := o.TabWidthFor(path); w > 0 {
			return w
		}
	}
	if o.TabWidth > 0 {
		return o.TabWidth
	}
	return 2
}

// TextReporter formats diagnostics as a human-readable report.
type TextReporter struct {
	opts TextOptions
}

// NewTextReporter creates a new text reporter with the given options.
func NewTextReporter(opts TextOptions) *TextReporter {
	return &TextReporter{opts: opts}
}

// Print writes the report for every file, in path order. A file whose
// diagnostics cannot be rendered is skipped and its error is returned
// after the remaining files have been written.
func (r *TextReporter) Print(w io.Writer, diags []rules.Diagnostic, sources map[string][]byte) error {
	byFile := make(map[string][]rules.Diagnostic)
	for _, d := range diags {
		byFile[d.File()] = append(byFile[d.File()], d)
	}
	files := make([]string, 0, len(byFile))
	for f := range byFile {
		files = append(files, f)
	}
	slices.Sort(files)

	var errs []error
	for _, f := range files {
		if err := RenderText(w, f, sources[f], byFile[f], r.opts); err != nil {
			if !errors.Is(err, ErrRenderInconsistency) {
				return err
			}
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RenderText renders the diagnostics of one file. The output depends only
// on the arguments. Diagnostics are written in primary span order.
//
// If any diagnostic has a span or fix edit outside source, or a fix whose
// edits overlap, RenderText writes nothing and returns an error marked
// with ErrRenderInconsistency.
func RenderText(w io.Writer, file string, source []byte, diags []rules.Diagnostic, opts TextOptions) error {
	sorted := slices.Clone(diags)
	slices.SortStableFunc(sorted, func(a, b rules.Diagnostic) int {
		if c := cmp.Compare(a.Span.Start, b.Span.Start); c != 0 {
			return c
		}
		return cmp.Compare(a.RuleCode, b.RuleCode)
	})

	lines := span.NewLineIndex(source)
	for _, d := range sorted {
		if err := checkDiagnostic(d, source); err != nil {
			return errors.Wrapf(err, "%s", file)
		}
	}

	p := &printer{opts: opts, tabWidth: opts.tabWidth(file)}
	for _, d := range sorted {
		p.writeDiagnostic(file, source, lines, d)
	}
	_, err := w.Write(p.buf.Bytes())
	return err
}

// checkDiagnostic validates the spans a diagnostic will be rendered from.
func checkDiagnostic(d rules.Diagnostic, source []byte) error {
	if !d.Span.InBounds(len(source)) {
		return errors.Mark(
			errors.Newf("%s: span %s outside source of %d bytes", d.RuleCode, d.Span, len(source)),
			ErrRenderInconsistency)
	}
	if d.Fix == nil {
		return nil
	}
	edits := sortedEdits(d.Fix.Edits)
	for i, e := range edits {
		if !e.Span.InBounds(len(source)) {
			return errors.Mark(
				errors.Newf("%s: fix edit %s outside source of %d bytes", d.RuleCode, e.Span, len(source)),
				ErrRenderInconsistency)
		}
		if i > 0 && edits[i-1].Span.Overlaps(e.Span) {
			return errors.Mark(
				errors.Newf("%s: fix edits %s and %s overlap", d.RuleCode, edits[i-1].Span, e.Span),
				ErrRenderInconsistency)
		}
	}
	return nil
}

func sortedEdits(edits []rules.TextEdit) []rules.TextEdit {
	out := slices.Clone(edits)
	slices.SortFunc(out, func(a, b rules.TextEdit) int {
		if c := cmp.Compare(a.Span.Start, b.Span.Start); c != 0 {
			return c
		}
		return cmp.Compare(a.Span.End, b.Span.End)
	})
	return out
}

// applyFix returns source with the edits of fix applied. Edits must have
// passed checkDiagnostic.
func applyFix(source []byte, fix *rules.Fix) string {
	var sb strings.Builder
	pos := uint32(0)
	for _, e := range sortedEdits(fix.Edits) {
		sb.Write(source[pos:e.Span.Start])
		sb.WriteString(e.NewText)
		pos = e.Span.End
	}
	sb.Write(source[pos:])
	return sb.String()
}

type printer struct {
	buf      bytes.Buffer
	opts     TextOptions
	tabWidth int
}

func (p *printer) line(s string) {
	p.buf.WriteString(s)
	p.buf.WriteByte('\n')
}

func (p *printer) style(st lipgloss.Style, s string) string {
	if !p.opts.Color || s == "" {
		return s
	}
	return st.Render(s)
}

func (p *printer) expandTabs(s string) string {
	if !strings.Contains(s, "\t") {
		return s
	}
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", p.tabWidth))
}

func (p *printer) writeDiagnostic(file string, source []byte, lines *span.LineIndex, d rules.Diagnostic) {
	sevStyle, ok := severityStyles[d.Severity]
	if !ok {
		sevStyle = severityStyles[rules.SeverityWarning]
	}

	p.writeHeader(file, lines, d)
	p.line("")
	p.line("  " + p.style(sevStyle, d.Severity.Glyph()) + " " + d.Message)
	p.line("")

	if p.opts.ShowSource {
		p.writeFrame(source, lines, d.Span, sevStyle)
		p.line("")
	}

	for _, note := range d.Notes {
		p.line("  " + p.style(infoStyle, "i") + " " + note)
		p.line("")
	}

	if d.Fix == nil {
		return
	}
	p.line("  " + p.style(infoStyle, "i") + " " + fixLabel(d.Fix) + ": " + d.Fix.Description)
	p.line("")
	if p.opts.ShowSource {
		p.writeDiff(string(source), applyFix(source, d.Fix))
		p.line("")
	}
}

// writeHeader writes "<file>:<line>:<col> <rule>[ FIXABLE] ━━━".
// The column is 1-based and counts characters.
func (p *printer) writeHeader(file string, lines *span.LineIndex, d rules.Diagnostic) {
	pos := lines.Position(d.Span.Start)
	head := fmt.Sprintf("%s:%d:%d %s", file, pos.Line, pos.Char+1, d.RuleCode)
	styled := p.style(headerStyle, head)
	if d.Fixable() {
		head += " FIXABLE"
		styled += " " + p.style(fixableStyle, "FIXABLE")
	}
	rule := strings.Repeat("━", max(3, headerWidth-runewidth.StringWidth(head)-1))
	p.line(styled + " " + p.style(ruleStyle, rule))
}

// writeFrame writes the code frame for sp: one line of context on each
// side, the span's lines marked with '>' and a caret row under each.
func (p *printer) writeFrame(source []byte, lines *span.LineIndex, sp span.Span, sevStyle lipgloss.Style) {
	start, end := lines.Resolve(sp)
	startLine, endLine := start.Line, end.Line
	// A span ending at the start of a line does not highlight that line.
	if endLine > startLine && end.Column == 0 {
		endLine--
	}

	first := max(1, startLine-1)
	last := min(lines.LineCount(), endLine+1)
	width := len(fmt.Sprint(last))
	blank := strings.Repeat(" ", width)

	for n := first; n <= last; n++ {
		lineStart, lineEnd := lines.LineStart(n), lines.LineEnd(n)
		text := p.expandTabs(string(source[lineStart:lineEnd]))
		highlighted := n >= startLine && n <= endLine

		marker := "  "
		if highlighted {
			marker = p.style(markerStyle, ">") + " "
		}
		row := "  " + marker + p.style(lineNumStyle, pad(n, width)) + " " + p.style(gutterStyle, "│")
		if t := strings.TrimRight(text, " "); t != "" {
			row += " " + t
		}
		p.line(row)

		if !highlighted {
			continue
		}
		segStart := max(int(sp.Start), lineStart)
		segEnd := min(int(sp.End), lineEnd)
		if segStart == lineStart && n > startLine {
			// Continuation lines are marked from their first non-blank.
			for segStart < segEnd && (source[segStart] == ' ' || source[segStart] == '\t') {
				segStart++
			}
		}
		if segEnd < segStart {
			continue
		}
		indent := runewidth.StringWidth(p.expandTabs(string(source[lineStart:segStart])))
		carets := runewidth.StringWidth(p.expandTabs(string(source[segStart:segEnd])))
		if carets == 0 {
			if !sp.Empty() {
				continue
			}
			carets = 1
		}
		p.line("    " + blank + " " + p.style(gutterStyle, "│") + " " +
			strings.Repeat(" ", indent) + p.style(sevStyle, strings.Repeat("^", carets)))
	}
}

func fixLabel(fix *rules.Fix) string {
	if fix.Safety == rules.FixUnsafe {
		return "Unsafe fix"
	}
	return "Safe fix"
}

// PrintTextPlain writes diagnostics without any styling.
func PrintTextPlain(w io.Writer, diags []rules.Diagnostic, sources map[string][]byte) error {
	return NewTextReporter(DefaultTextOptions()).Print(w, diags, sources)
}
