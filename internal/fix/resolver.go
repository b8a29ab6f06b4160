package fix

import (
	"context"

	"github.com/wharflab/typelint/internal/rules"
)

// ResolveContext provides the content a pass left behind.
type ResolveContext struct {
	// FilePath is the path to the file being fixed.
	FilePath string

	// Content is the current file content after the previous pass.
	Content []byte
}

// Resolver recomputes diagnostics for content that earlier passes already
// modified. Fixes that conflicted with an applied fix are dropped on the
// pass that saw the conflict; the resolver finds them again at their new
// positions so the next pass can apply them.
//
// Implementations should respect context cancellation.
type Resolver interface {
	Resolve(ctx context.Context, resolveCtx ResolveContext) ([]rules.Diagnostic, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, resolveCtx ResolveContext) ([]rules.Diagnostic, error)

// Resolve calls f.
func (f ResolverFunc) Resolve(ctx context.Context, resolveCtx ResolveContext) ([]rules.Diagnostic, error) {
	return f(ctx, resolveCtx)
}

// Verifier checks that fixed content is still well formed.
type Verifier interface {
	Verify(path string, content []byte) error
}

// VerifierFunc adapts a function to the Verifier interface.
type VerifierFunc func(path string, content []byte) error

// Verify calls f.
func (f VerifierFunc) Verify(path string, content []byte) error {
	return f(path, content)
}
