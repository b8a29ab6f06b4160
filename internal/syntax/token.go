package syntax

import "github.com/wharflab/typelint/internal/span"

// TokenKind classifies a lexed token.
type TokenKind uint8

const (
	TokenEOF TokenKind = iota
	TokenIdent
	TokenNumber
	TokenString
	TokenTemplate
	TokenRegex
	TokenPunct
	TokenPrivateName
	TokenUnknown
)

var tokenKindNames = [...]string{
	TokenEOF:         "EOF",
	TokenIdent:       "identifier",
	TokenNumber:      "number",
	TokenString:      "string",
	TokenTemplate:    "template",
	TokenRegex:       "regex",
	TokenPunct:       "punctuation",
	TokenPrivateName: "private name",
	TokenUnknown:     "unknown",
}

func (k TokenKind) String() string {
	if int(k) < len(tokenKindNames) {
		return tokenKindNames[k]
	}
	return "unknown"
}

// TriviaKind classifies non-semantic source text attached to tokens.
type TriviaKind uint8

const (
	TriviaWhitespace TriviaKind = iota
	TriviaNewline
	TriviaLineComment
	TriviaBlockComment
)

// IsComment reports whether the trivia is a comment.
func (k TriviaKind) IsComment() bool {
	return k == TriviaLineComment || k == TriviaBlockComment
}

// Trivia is a run of whitespace, a line break, or a comment.
type Trivia struct {
	Kind TriviaKind
	Span span.Span
}

// Token is a lexed token with its attached trivia.
//
// Leading trivia is everything between the previous token's trailing trivia
// and this token. Trailing trivia is the whitespace and comments that follow
// the token on the same line; it never contains a line break.
type Token struct {
	Kind     TokenKind
	Span     span.Span
	Leading  []Trivia
	Trailing []Trivia

	// NewlineBefore is set when a line break separates this token from the
	// previous one.
	NewlineBefore bool
}

// HasComments reports whether any comment is attached to the token.
func (t *Token) HasComments() bool {
	for _, tr := range t.Leading {
		if tr.Kind.IsComment() {
			return true
		}
	}
	for _, tr := range t.Trailing {
		if tr.Kind.IsComment() {
			return true
		}
	}
	return false
}
