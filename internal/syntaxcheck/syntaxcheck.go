// Package syntaxcheck cross-checks source text with the tree-sitter
// TypeScript grammar.
//
// The linter's own parser recovers from errors, so it cannot tell
// whether a fix broke a file in a way that happens to parse. The tree-sitter
// grammar is an independent opinion: fixed output is only written when it
// has no ERROR or MISSING nodes that the original did not already have.
package syntaxcheck

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	sitter "github.com/tree-sitter/go-tree-sitter"
	tsts "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// ErrSyntax marks errors reported for malformed source.
var ErrSyntax = errors.New("syntax error")

// Problem is the first malformed node found in a file.
type Problem struct {
	// Line and Column are 1-based.
	Line, Column int
	// Kind is the tree-sitter node type, or "MISSING <type>".
	Kind string
}

// languageFor picks the grammar by file extension.
func languageFor(path string) *sitter.Language {
	if strings.EqualFold(filepath.Ext(path), ".tsx") {
		return sitter.NewLanguage(tsts.LanguageTSX())
	}
	return sitter.NewLanguage(tsts.LanguageTypescript())
}

// Check parses content and returns an error marked with ErrSyntax when the
// tree contains errors. The path only selects the grammar.
func Check(ctx context.Context, path string, content []byte) error {
	p, err := FirstProblem(ctx, path, content)
	if err != nil {
		return err
	}
	if p == nil {
		return nil
	}
	return errors.Mark(
		errors.Newf("%s:%d:%d: %s", path, p.Line, p.Column, p.Kind),
		ErrSyntax,
	)
}

// FirstProblem returns the first ERROR or MISSING node in document order,
// or nil when the source parses cleanly.
func FirstProblem(ctx context.Context, path string, content []byte) (*Problem, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(languageFor(path)); err != nil {
		return nil, errors.Wrapf(err, "load grammar for %s", path)
	}

	tree := parser.ParseCtx(ctx, content, nil)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if tree == nil {
		return nil, errors.Newf("parse %s: no tree", path)
	}
	defer tree.Close()

	root := tree.RootNode()
	if !root.HasError() {
		return nil, nil
	}
	return findProblem(root), nil
}

func findProblem(n *sitter.Node) *Problem {
	if n.IsError() || n.IsMissing() {
		kind := n.Kind()
		if n.IsMissing() {
			kind = "MISSING " + kind
		}
		pt := n.StartPosition()
		return &Problem{Line: int(pt.Row) + 1, Column: int(pt.Column) + 1, Kind: kind}
	}
	for i := range n.ChildCount() {
		child := n.Child(i)
		if child == nil || !(child.HasError() || child.IsMissing()) {
			continue
		}
		if p := findProblem(child); p != nil {
			return p
		}
	}
	return nil
}

// Verifier rejects fixed content that tree-sitter reports as malformed
// when the original content was clean. Originals holds the content before
// fixing, keyed by path.
type Verifier struct {
	Ctx       context.Context //nolint:containedctx // Verify has no context parameter
	Originals map[string][]byte
}

// Verify implements the fix package's Verifier.
func (v Verifier) Verify(path string, content []byte) error {
	ctx := v.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	if orig, ok := v.Originals[path]; ok {
		p, err := FirstProblem(ctx, path, orig)
		if err != nil {
			return err
		}
		if p != nil {
			// Already broken; nothing to compare against.
			return nil
		}
	}
	return Check(ctx, path, content)
}
