package syntax

import (
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/wharflab/typelint/internal/span"
)

// ErrParseIncomplete marks errors for source regions the parser could not
// fully understand. The region is represented by a Bogus node and parsing
// continues after it.
var ErrParseIncomplete = errors.New("parse incomplete")

// ParseError describes one malformed region.
type ParseError struct {
	Span    span.Span
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s at %s", e.Message, e.Span)
}

// Is lets errors.Is(err, ErrParseIncomplete) match any ParseError.
func (e *ParseError) Is(target error) bool {
	return target == ErrParseIncomplete
}
