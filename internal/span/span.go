// Package span models byte ranges in a source file and maps them to
// line/column positions.
//
// Offsets are byte indices into the original text. A Span is half-open:
// Start is inclusive and End is exclusive.
package span

import (
	"fmt"

	"fortio.org/safecast"
)

// Span is an immutable half-open byte range [Start, End).
type Span struct {
	Start uint32 `json:"start"`
	End   uint32 `json:"end"`
}

// New returns the span [start, end).
// It fails when either offset is negative, overflows uint32, or start > end.
func New(start, end int) (Span, error) {
	s, err := safecast.Conv[uint32](start)
	if err != nil {
		return Span{}, fmt.Errorf("span start %d: %w", start, err)
	}
	e, err := safecast.Conv[uint32](end)
	if err != nil {
		return Span{}, fmt.Errorf("span end %d: %w", end, err)
	}
	if s > e {
		return Span{}, fmt.Errorf("span start %d after end %d", start, end)
	}
	return Span{Start: s, End: e}, nil
}

// MustNew is like New but panics on invalid offsets.
// Intended for tests and constant spans.
func MustNew(start, end int) Span {
	sp, err := New(start, end)
	if err != nil {
		panic(err)
	}
	return sp
}

// At returns an empty span at offset.
func At(offset uint32) Span {
	return Span{Start: offset, End: offset}
}

// Len returns the number of bytes covered.
func (s Span) Len() uint32 {
	return s.End - s.Start
}

// Empty reports whether the span covers no bytes.
func (s Span) Empty() bool {
	return s.Start == s.End
}

// Contains reports whether offset lies within [Start, End).
func (s Span) Contains(offset uint32) bool {
	return offset >= s.Start && offset < s.End
}

// ContainsSpan reports whether other lies entirely within s.
func (s Span) ContainsSpan(other Span) bool {
	return other.Start >= s.Start && other.End <= s.End
}

// Overlaps reports whether the two spans share at least one byte.
// Two empty spans at the same offset are treated as overlapping, since
// two insertions at one point have no defined order.
func (s Span) Overlaps(other Span) bool {
	if s.Empty() && other.Empty() {
		return s.Start == other.Start
	}
	return s.Start < other.End && other.Start < s.End
}

// Cover returns the smallest span containing both s and other.
func (s Span) Cover(other Span) Span {
	if other.Start < s.Start {
		s.Start = other.Start
	}
	if other.End > s.End {
		s.End = other.End
	}
	return s
}

// Shift moves the span by delta bytes. The caller guarantees the result
// stays non-negative.
func (s Span) Shift(delta int) Span {
	if delta >= 0 {
		d := uint32(delta)
		return Span{Start: s.Start + d, End: s.End + d}
	}
	d := uint32(-delta)
	return Span{Start: s.Start - d, End: s.End - d}
}

// Text returns the bytes of src covered by the span.
// Out-of-range spans are clamped to src.
func (s Span) Text(src []byte) string {
	n := uint32(len(src))
	start, end := min(s.Start, n), min(s.End, n)
	return string(src[start:end])
}

// InBounds reports whether the span is a valid range in a text of length n.
func (s Span) InBounds(n int) bool {
	return s.Start <= s.End && int(s.End) <= n
}

// String implements fmt.Stringer.
func (s Span) String() string {
	return fmt.Sprintf("%d..%d", s.Start, s.End)
}
