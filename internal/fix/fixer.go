package fix

import (
	"bytes"
	"context"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"

	"github.com/wharflab/typelint/internal/config"
	"github.com/wharflab/typelint/internal/rules"
)

const (
	defaultMaxPasses   = 10
	defaultConcurrency = 4
)

// normalizePath ensures consistent path format for map lookups.
// This handles Windows vs Unix path separator differences.
func normalizePath(path string) string {
	return filepath.Clean(path)
}

// Fixer applies the fixes of diagnostics to source files.
type Fixer struct {
	// SafetyThreshold determines the minimum safety level for fixes.
	// Only fixes with Safety <= SafetyThreshold will be applied.
	SafetyThreshold FixSafety

	// RuleFilter limits fixes to specific rule codes.
	// If empty, all rules are eligible.
	RuleFilter []string

	// FixModes maps file paths to their per-rule fix modes.
	// Outer key is the normalized file path, inner key is the rule code.
	// If nil or a file/rule is not present, FixModeAlways is assumed.
	FixModes map[string]map[string]FixMode

	// Resolver re-lints content after a pass in which fixes conflicted.
	// Nil means a single pass.
	Resolver Resolver

	// Verifier checks the content produced by each pass. A pass whose
	// output fails verification is rolled back.
	Verifier Verifier

	// MaxPasses bounds the number of passes per file. Defaults to 10.
	MaxPasses int

	// Concurrency sets the number of files fixed in parallel.
	// Defaults to 4 if not set.
	Concurrency int
}

// Result contains the outcome of applying fixes.
type Result struct {
	// Changes contains modifications for each file.
	Changes map[string]*FileChange
}

// TotalApplied returns the total number of fixes applied across all files.
func (r *Result) TotalApplied() int {
	count := 0
	for _, fc := range r.Changes {
		count += len(fc.FixesApplied)
	}
	return count
}

// TotalSkipped returns the total number of fixes skipped across all files.
func (r *Result) TotalSkipped() int {
	count := 0
	for _, fc := range r.Changes {
		count += len(fc.FixesSkipped)
	}
	return count
}

// FilesModified returns the number of files with actual changes.
func (r *Result) FilesModified() int {
	count := 0
	for _, fc := range r.Changes {
		if fc.HasChanges() {
			count++
		}
	}
	return count
}

// Apply applies the fixes of diags to sources, which maps file paths to
// their original content. Files are fixed independently and in parallel.
//
// Within a file, fixes are taken in the order of their diagnostics; a fix
// overlapping one already taken is skipped. When a Resolver is set and a
// pass skipped conflicting fixes, the file is re-linted and fixed again
// until a pass applies nothing or MaxPasses is reached.
//
// If ctx is canceled, Apply returns the context error and no result.
func (f *Fixer) Apply(ctx context.Context, diags []rules.Diagnostic, sources map[string][]byte) (*Result, error) {
	result := &Result{
		Changes: make(map[string]*FileChange, len(sources)),
	}
	for path, content := range sources {
		result.Changes[normalizePath(path)] = &FileChange{
			Path:            path,
			OriginalContent: content,
			ModifiedContent: bytes.Clone(content),
		}
	}

	byFile := make(map[string][]rules.Diagnostic)
	for _, d := range diags {
		if d.Fix == nil {
			continue
		}
		path := normalizePath(d.File())
		if result.Changes[path] == nil {
			continue
		}
		byFile[path] = append(byFile[path], d)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency())
	for path, fileDiags := range byFile {
		fc := result.Changes[path]
		g.Go(func() error {
			return f.fixFile(gctx, fc, fileDiags)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (f *Fixer) concurrency() int {
	if f.Concurrency > 0 {
		return f.Concurrency
	}
	return defaultConcurrency
}

func (f *Fixer) maxPasses() int {
	if f.MaxPasses > 0 {
		return f.MaxPasses
	}
	return defaultMaxPasses
}

// fixFile runs fix passes over one file until it settles.
func (f *Fixer) fixFile(ctx context.Context, fc *FileChange, diags []rules.Diagnostic) error {
	for pass := 1; ; pass++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		p := f.runPass(fc.ModifiedContent, diags, pass)
		fc.Passes = pass

		if len(p.applied) > 0 && f.Verifier != nil {
			if err := f.Verifier.Verify(fc.Path, p.content); err != nil {
				for _, a := range p.applied {
					p.skipped = append(p.skipped, SkippedFix{
						RuleCode: a.RuleCode,
						Reason:   SkipVerify,
						Location: a.Location,
						Error:    err.Error(),
					})
				}
				fc.FixesSkipped = p.skipped
				return nil
			}
		}

		fc.ModifiedContent = p.content
		fc.FixesApplied = append(fc.FixesApplied, p.applied...)
		fc.FixesSkipped = p.skipped

		if f.Resolver == nil || len(p.applied) == 0 || !p.conflicted || pass >= f.maxPasses() {
			return nil
		}

		next, err := f.Resolver.Resolve(ctx, ResolveContext{FilePath: fc.Path, Content: fc.ModifiedContent})
		if err != nil {
			return errors.Wrapf(err, "re-lint %s after fix pass %d", fc.Path, pass)
		}
		diags = next
	}
}

type passResult struct {
	content    []byte
	applied    []AppliedFix
	skipped    []SkippedFix
	conflicted bool
}

// runPass applies every eligible, non-conflicting fix of diags to content.
// Fixes are atomic: either all edits of a fix are applied, or none are.
func (f *Fixer) runPass(content []byte, diags []rules.Diagnostic, pass int) passResult {
	var res passResult

	candidates := make([]rules.Diagnostic, 0, len(diags))
	for _, d := range diags {
		if d.Fix == nil {
			continue
		}
		if reason, ok := f.eligible(d, len(content)); !ok {
			res.skipped = append(res.skipped, SkippedFix{RuleCode: d.RuleCode, Reason: reason, Location: d.Location})
			continue
		}
		candidates = append(candidates, d)
	}

	// Earlier diagnostics win conflicts. For nested matches that is the
	// enclosing one.
	slices.SortStableFunc(candidates, func(a, b rules.Diagnostic) int {
		return compareEdits(rules.TextEdit{Span: a.Span}, rules.TextEdit{Span: b.Span})
	})

	var reserved []rules.TextEdit
	for _, d := range candidates {
		if anyOverlap(d.Fix.Edits, reserved) {
			res.conflicted = true
			res.skipped = append(res.skipped, SkippedFix{RuleCode: d.RuleCode, Reason: SkipConflict, Location: d.Location})
			continue
		}
		reserved = append(reserved, d.Fix.Edits...)
		res.applied = append(res.applied, AppliedFix{
			RuleCode:    d.RuleCode,
			Description: d.Fix.Description,
			Location:    d.Location,
			Pass:        pass,
			Edits:       d.Fix.Edits,
		})
	}

	res.content = applyEdits(content, reserved)
	return res
}

// eligible checks a fix against the configured filters and the content it
// is meant for.
func (f *Fixer) eligible(d rules.Diagnostic, contentLen int) (SkipReason, bool) {
	switch {
	case !f.ruleAllowed(d.RuleCode):
		return SkipRuleFilter, false
	case d.Fix.Safety > f.SafetyThreshold:
		return SkipSafety, false
	case !f.fixModeAllowed(d.File(), d.RuleCode):
		return SkipFixMode, false
	case len(d.Fix.Edits) == 0:
		return SkipNoEdits, false
	}
	for _, e := range d.Fix.Edits {
		if !e.Span.InBounds(contentLen) {
			return SkipInvalidEdit, false
		}
	}
	if selfOverlap(d.Fix.Edits) {
		return SkipInvalidEdit, false
	}
	return 0, true
}

// ruleAllowed checks if a rule passes the filter.
func (f *Fixer) ruleAllowed(ruleCode string) bool {
	if len(f.RuleFilter) == 0 {
		return true
	}
	return slices.Contains(f.RuleFilter, ruleCode)
}

// fixModeAllowed checks if a fix is allowed based on the file's per-rule fix mode config.
// Returns true if the fix should be applied.
func (f *Fixer) fixModeAllowed(filePath, ruleCode string) bool {
	mode := config.FixModeAlways // default
	if f.FixModes != nil {
		if fileModes, ok := f.FixModes[normalizePath(filePath)]; ok {
			if m, ok := fileModes[ruleCode]; ok {
				mode = m
			}
		}
	}

	switch mode {
	case config.FixModeNever:
		return false
	case config.FixModeExplicit:
		// Only apply if rule is in --fix-rule list
		return len(f.RuleFilter) > 0 && slices.Contains(f.RuleFilter, ruleCode)
	case config.FixModeUnsafeOnly:
		// Only apply if --fix-unsafe was used (SafetyThreshold >= FixUnsafe)
		return f.SafetyThreshold >= rules.FixUnsafe
	default:
		return true
	}
}

// applyEdits applies non-overlapping edits to content, last edit first so
// earlier offsets stay valid.
func applyEdits(content []byte, edits []rules.TextEdit) []byte {
	if len(edits) == 0 {
		return content
	}
	sorted := slices.Clone(edits)
	slices.SortFunc(sorted, func(a, b rules.TextEdit) int { return compareEdits(b, a) })

	out := bytes.Clone(content)
	for _, e := range sorted {
		out = applyEdit(out, e)
	}
	return out
}

// applyEdit replaces the span of edit with its text. Line breaks in the
// replacement follow the style of the content.
func applyEdit(content []byte, edit rules.TextEdit) []byte {
	newText := edit.NewText
	if bytes.Contains(content, []byte("\r\n")) {
		// File uses CRLF, normalize any LF-only to CRLF
		newText = strings.ReplaceAll(newText, "\r\n", "\n")
		newText = strings.ReplaceAll(newText, "\n", "\r\n")
	}

	var result bytes.Buffer
	result.Grow(len(content) - int(edit.Span.Len()) + len(newText))
	result.Write(content[:edit.Span.Start])
	result.WriteString(newText)
	result.Write(content[edit.Span.End:])
	return result.Bytes()
}
