package processor

import (
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"github.com/wharflab/typelint/internal/config"
	"github.com/wharflab/typelint/internal/directive"
	"github.com/wharflab/typelint/internal/rules"
	"github.com/wharflab/typelint/internal/span"
)

// Codes of the diagnostics reported about suppression comments themselves.
const (
	UnusedDirectiveCode    = "suppressions/unused"
	MalformedDirectiveCode = "suppressions/parse"
	MissingReasonCode      = "suppressions/missing-reason"
)

// InlineDirectiveFilter applies // typelint-ignore comments. It removes the
// diagnostics they suppress and adds diagnostics about the comments
// themselves: malformed comments always, unused ones and ones without a
// reason when [inline-directives] asks for it.
type InlineDirectiveFilter struct {
	registry *rules.Registry
}

// NewInlineDirectiveFilter creates a new inline directive filter.
func NewInlineDirectiveFilter() *InlineDirectiveFilter {
	return NewInlineDirectiveFilterWithRegistry(rules.DefaultRegistry())
}

// NewInlineDirectiveFilterWithRegistry creates a filter that validates rule
// references against registry.
func NewInlineDirectiveFilterWithRegistry(registry *rules.Registry) *InlineDirectiveFilter {
	if registry == nil {
		registry = rules.DefaultRegistry()
	}
	return &InlineDirectiveFilter{registry: registry}
}

// Name returns the processor's identifier.
func (p *InlineDirectiveFilter) Name() string {
	return "inline-directive-filter"
}

// Process filters diagnostics file by file. Every file in the context is
// scanned, so a stale directive is reported even when its file has no
// remaining diagnostics.
func (p *InlineDirectiveFilter) Process(diags []rules.Diagnostic, ctx *Context) []rules.Diagnostic {
	byFile := make(map[string][]rules.Diagnostic)
	for _, d := range diags {
		file := filepath.ToSlash(d.Location.File)
		byFile[file] = append(byFile[file], d)
	}

	files := make(map[string]string, len(ctx.FileSources))
	for file := range ctx.FileSources {
		files[filepath.ToSlash(file)] = file
	}
	for file := range byFile {
		if _, ok := files[file]; !ok {
			files[file] = file
		}
	}

	result := make([]rules.Diagnostic, 0, len(diags))
	for _, key := range slices.Sorted(maps.Keys(files)) {
		file := files[key]
		fileDiags := byFile[key]

		cfg := ctx.ConfigForFile(file)
		if cfg != nil && !cfg.InlineDirectives.Enabled {
			result = append(result, fileDiags...)
			continue
		}
		sm := ctx.GetSourceMap(file)
		if sm == nil {
			result = append(result, fileDiags...)
			continue
		}

		opts := directive.Options{Extent: ctx.Extents[file]}
		if cfg != nil && cfg.InlineDirectives.ValidateRules {
			opts.Validator = p.known
		}
		parsed := directive.Parse(sm, opts)
		filtered := directive.Filter(fileDiags, parsed.Directives)
		result = append(result, filtered.Diagnostics...)

		meta := directiveReport{path: key, src: sm.Source(), lines: span.NewLineIndex(sm.Source())}
		for _, perr := range parsed.Errors {
			result = append(result, meta.diagnostic(perr.Line, perr.RawText, MalformedDirectiveCode,
				"Suppression comment is invalid: "+perr.Message+"."))
		}
		if cfg == nil {
			continue
		}
		if cfg.InlineDirectives.WarnUnused {
			for _, d := range filtered.UnusedDirectives {
				result = append(result, meta.diagnostic(d.Line, d.RawText, UnusedDirectiveCode,
					"Suppression comment has no effect: no diagnostic of "+strings.Join(d.Rules, ", ")+" is reported here."))
			}
		}
		if cfg.InlineDirectives.RequireReason {
			for _, d := range parsed.Directives {
				if d.Reason == "" {
					result = append(result, meta.diagnostic(d.Line, d.RawText, MissingReasonCode,
						"Suppression comment has no reason; add one after a ':'."))
				}
			}
		}
	}
	return result
}

// known accepts rule groups as well as rule codes and names.
func (p *InlineDirectiveFilter) known(ref string) bool {
	ref = strings.TrimSuffix(ref, "/")
	if ref == "lint" {
		return true
	}
	if slices.Contains(config.RuleGroups, strings.TrimPrefix(ref, config.RulePrefix)) {
		return true
	}
	return p.registry.Known(ref)
}

type directiveReport struct {
	path  string
	src   []byte
	lines *span.LineIndex
}

// diagnostic reports a problem with the comment on the 0-based line. The
// span covers the comment text.
func (r directiveReport) diagnostic(line int, text, code, message string) rules.Diagnostic {
	start := r.lines.LineStart(line + 1)
	end := r.lines.LineEnd(line + 1)
	if start < 0 {
		return rules.NewDiagnostic(rules.NewFileLocation(r.path), span.Span{}, code, message, rules.SeverityWarning)
	}
	content := string(r.src[start:end])
	if i := strings.Index(content, text); i >= 0 && text != "" {
		start, end = start+i, start+i+len(text)
	}
	sp := span.MustNew(start, end)
	return rules.NewDiagnostic(rules.NewLocation(r.path, r.lines, sp), sp, code, message, rules.SeverityWarning)
}
