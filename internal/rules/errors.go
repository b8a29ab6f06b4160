package rules

import "github.com/cockroachdb/errors"

// ErrUnsynthesizable marks a match for which no faithful fix can be
// rendered. The diagnostic is still reported, without a fix.
var ErrUnsynthesizable = errors.New("fix cannot be synthesized")

// Unsynthesizable returns an error marked with ErrUnsynthesizable.
func Unsynthesizable(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), ErrUnsynthesizable)
}
