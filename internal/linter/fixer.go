package linter

import (
	"context"
	"path/filepath"

	"github.com/cockroachdb/errors"

	"github.com/wharflab/typelint/internal/config"
	"github.com/wharflab/typelint/internal/fix"
	"github.com/wharflab/typelint/internal/rules"
	"github.com/wharflab/typelint/internal/syntax"
	"github.com/wharflab/typelint/internal/syntaxcheck"
)

// ErrSyntaxRegression marks fixed content with more parse errors than the
// content it was derived from.
var ErrSyntaxRegression = errors.New("fix introduced syntax errors")

// FixOptions configures NewFixer.
type FixOptions struct {
	// Unsafe also applies unsafe fixes.
	Unsafe bool

	// Rules limits fixes to these rule codes.
	Rules []string

	// Verify adds the tree-sitter cross-check to the built-in one.
	Verify bool

	// Concurrency bounds files fixed in parallel.
	Concurrency int

	// Channel receives re-lint warnings.
	Channel Channel
}

// NewFixer builds a fixer for lint results. Conflicting fixes are retried
// on later passes by re-linting the fixed content, and every pass is
// verified to parse no worse than the original. The sources passed to
// [fix.Fixer.Apply] must be keyed by the results' file paths.
func NewFixer(ctx context.Context, results []*Result, opts FixOptions) *fix.Fixer {
	originals := make(map[string][]byte, len(results))
	configs := make(map[string]*config.Config, len(results))
	modes := make(map[string]map[string]fix.FixMode, len(results))
	for _, r := range results {
		originals[r.FilePath] = r.Source
		configs[r.FilePath] = r.Config
		modes[filepath.Clean(r.FilePath)] = fix.BuildFixModes(r.Config)
	}

	threshold := rules.FixSafe
	if opts.Unsafe {
		threshold = rules.FixUnsafe
	}

	return &fix.Fixer{
		SafetyThreshold: threshold,
		RuleFilter:      opts.Rules,
		FixModes:        modes,
		Resolver:        newResolver(configs, opts.Channel),
		Verifier:        newVerifier(ctx, originals, opts.Verify),
		Concurrency:     opts.Concurrency,
	}
}

// newResolver re-lints fixed content with the file's config and the fix
// processor chain, so suppressed diagnostics stay suppressed.
func newResolver(configs map[string]*config.Config, ch Channel) fix.Resolver {
	chain := FixProcessors()
	return fix.ResolverFunc(func(ctx context.Context, rc fix.ResolveContext) ([]rules.Diagnostic, error) {
		cfg := configs[rc.FilePath]
		res, err := LintFile(ctx, Input{
			FilePath: rc.FilePath,
			Content:  rc.Content,
			Config:   cfg,
			Channel:  ch,
		})
		if err != nil {
			return nil, err
		}
		return Process(chain, res.Config, []*Result{res}), nil
	})
}

// newVerifier rejects content on which the built-in parser reports more
// errors than on the original and, with treeSitter set, content the
// tree-sitter grammar rejects.
func newVerifier(ctx context.Context, originals map[string][]byte, treeSitter bool) fix.Verifier {
	ts := syntaxcheck.Verifier{Ctx: ctx, Originals: originals}
	return fix.VerifierFunc(func(path string, content []byte) error {
		before := 0
		if orig, ok := originals[path]; ok {
			if tree, err := syntax.Parse(orig); err == nil {
				before = len(tree.Errors())
			}
		}
		tree, err := syntax.Parse(content)
		if err != nil {
			return err
		}
		if after := len(tree.Errors()); after > before {
			first := tree.Errors()[0]
			return errors.Mark(
				errors.Newf("%s: %d parse errors after fixing, %d before: %v", path, after, before, first),
				ErrSyntaxRegression,
			)
		}
		if treeSitter {
			return ts.Verify(path, content)
		}
		return nil
	})
}
