// Package linter provides the lint pipeline shared by the check and fix
// paths of the CLI.
//
// The pipeline: config discovery → parse → rule execution → diagnostic
// collection. Callers use [LintFile] or [LintFiles] to run the pipeline and
// then apply the processor chain from [CLIProcessors] to filter and order
// the results.
package linter

import (
	"cmp"
	"context"
	"os"
	"slices"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"

	"github.com/wharflab/typelint/internal/config"
	"github.com/wharflab/typelint/internal/directive"
	"github.com/wharflab/typelint/internal/rules"
	_ "github.com/wharflab/typelint/internal/rules/all" // Register all rules.
	"github.com/wharflab/typelint/internal/syntax"
)

const defaultConcurrency = 4

// Input configures a single invocation of [LintFile].
type Input struct {
	// FilePath is used for config discovery and diagnostic locations.
	FilePath string

	// Content is the file content to lint. If nil, LintFile reads from FilePath.
	Content []byte

	// Config is the resolved configuration. If nil, LintFile loads from FilePath.
	Config *config.Config

	// Channel receives progress and diagnostic output. Nil means silent.
	Channel Channel
}

// Result contains the output of [LintFile].
type Result struct {
	// FilePath is the path of the linted file.
	FilePath string

	// Diagnostics are raw diagnostics before processor filtering, ordered
	// by span.
	Diagnostics []rules.Diagnostic

	// Source is the linted content.
	Source []byte

	// Tree is the parsed syntax tree.
	Tree *syntax.Tree

	// Extent maps a line to the end of the construct starting on it.
	Extent directive.ExtentFunc

	// Config is the resolved config (loaded or passed in via Input).
	Config *config.Config
}

// LintFile runs the full lint pipeline for one file.
// It returns raw diagnostics before processor filtering.
func LintFile(ctx context.Context, input Input) (*Result, error) {
	ch := channelOrNop(input.Channel)

	content := input.Content
	if content == nil {
		var err error
		content, err = os.ReadFile(input.FilePath)
		if err != nil {
			return nil, errors.Wrapf(err, "read %s", input.FilePath)
		}
	}

	cfg := input.Config
	if cfg == nil {
		var err error
		cfg, err = config.Load(input.FilePath)
		if err != nil {
			ch.Warn("config load error for " + input.FilePath + ": " + err.Error())
			cfg = config.Default()
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tree, err := syntax.Parse(content)
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", input.FilePath)
	}
	for _, perr := range tree.Errors() {
		ch.Log(LevelDebug, input.FilePath+": "+perr.Error())
	}

	baseInput := rules.LintInput{
		File:   input.FilePath,
		Tree:   tree,
		Source: content,
	}

	var diags []rules.Diagnostic
	for _, rule := range rules.All() {
		meta := rule.Metadata()
		if !isRuleEnabled(meta.Code, meta.DefaultSeverity, cfg) {
			continue
		}
		ruleInput := baseInput
		ruleInput.Config = cfg.Rules.GetOptions(meta.Code)
		diags = append(diags, rule.Check(ruleInput)...)
	}

	// Each rule reports in source order; merge them by span.
	slices.SortStableFunc(diags, func(a, b rules.Diagnostic) int {
		return cmp.Or(
			cmp.Compare(a.Span.Start, b.Span.Start),
			cmp.Compare(a.Span.End, b.Span.End),
			cmp.Compare(a.RuleCode, b.RuleCode),
		)
	})

	return &Result{
		FilePath:    input.FilePath,
		Diagnostics: diags,
		Source:      content,
		Tree:        tree,
		Extent:      ConstructExtent(tree),
		Config:      cfg,
	}, nil
}

// LintFiles lints inputs in parallel, at most concurrency at a time
// (default 4). Results are returned in input order. The first error
// cancels the remaining files and is returned without partial results.
func LintFiles(ctx context.Context, inputs []Input, concurrency int) ([]*Result, error) {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	results := make([]*Result, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, in := range inputs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			ch := channelOrNop(in.Channel)
			ch.Progress("Linting "+in.FilePath, (i+1)*100/len(inputs))
			res, err := LintFile(gctx, in)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
