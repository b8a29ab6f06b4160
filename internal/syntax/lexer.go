package syntax

import (
	"unicode"
	"unicode/utf8"

	"github.com/wharflab/typelint/internal/span"
)

// Punctuators longer than one byte, longest first. '>' is never combined so
// that nested type arguments close one at a time.
var multiPunct = []string{
	"...", "===", "!==", "**=", "&&=", "||=", "??=",
	"=>", "==", "!=", "&&", "||", "??", "?.", "++", "--",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "**",
}

// Keywords after which a '/' starts a regular expression literal.
var regexAfterKeyword = map[string]bool{
	"return": true, "typeof": true, "case": true, "do": true, "else": true,
	"in": true, "of": true, "new": true, "delete": true, "void": true,
	"throw": true, "yield": true, "await": true, "instanceof": true,
}

type lexer struct {
	src    []byte
	pos    int
	tokens []Token
	errs   []*ParseError
}

// lex splits src into tokens. The last token is always TokenEOF and carries
// the file's trailing trivia as leading trivia.
func lex(src []byte) ([]Token, []*ParseError) {
	l := &lexer{src: src, tokens: make([]Token, 0, len(src)/4+1)}
	l.run()
	return l.tokens, l.errs
}

func mkSpan(start, end int) span.Span {
	return span.Span{Start: uint32(start), End: uint32(end)} //nolint:gosec // source length is checked in Parse
}

func (l *lexer) errorf(start, end int, msg string) {
	l.errs = append(l.errs, &ParseError{Span: mkSpan(start, end), Message: msg})
}

func (l *lexer) run() {
	for {
		leading, newline := l.scanTrivia(true)
		start := l.pos
		if l.pos >= len(l.src) {
			l.tokens = append(l.tokens, Token{
				Kind:          TokenEOF,
				Span:          mkSpan(start, start),
				Leading:       leading,
				NewlineBefore: newline,
			})
			return
		}
		kind := l.scanToken()
		tok := Token{
			Kind:          kind,
			Span:          mkSpan(start, l.pos),
			Leading:       leading,
			NewlineBefore: newline,
		}
		tok.Trailing, _ = l.scanTrivia(false)
		l.tokens = append(l.tokens, tok)
	}
}

// scanTrivia consumes whitespace and comments. When leading is false it
// stops before the first line break and skips block comments spanning lines.
func (l *lexer) scanTrivia(leading bool) ([]Trivia, bool) {
	var (
		out     []Trivia
		newline bool
	)
	n := len(l.src)
	for l.pos < n {
		start := l.pos
		c := l.src[l.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\v' || c == '\f':
			for l.pos < n && isBlank(l.src[l.pos]) {
				l.pos++
			}
			out = appendWhitespace(out, start, l.pos)
		case c == '\n' || c == '\r':
			if !leading {
				return out, newline
			}
			l.pos++
			if c == '\r' && l.pos < n && l.src[l.pos] == '\n' {
				l.pos++
			}
			newline = true
			out = append(out, Trivia{Kind: TriviaNewline, Span: mkSpan(start, l.pos)})
		case c == 0xEF && start == 0 && hasPrefixAt(l.src, 0, "\uFEFF"):
			l.pos += len("\uFEFF")
			out = appendWhitespace(out, start, l.pos)
		case c == '#' && start == 0 && hasPrefixAt(l.src, 0, "#!"):
			l.skipLine()
			out = append(out, Trivia{Kind: TriviaLineComment, Span: mkSpan(start, l.pos)})
		case c == '/' && hasPrefixAt(l.src, l.pos, "//"):
			l.skipLine()
			out = append(out, Trivia{Kind: TriviaLineComment, Span: mkSpan(start, l.pos)})
		case c == '/' && hasPrefixAt(l.src, l.pos, "/*"):
			end, multiline, ok := l.blockCommentEnd(start)
			if !leading && multiline {
				return out, newline
			}
			if !ok {
				l.errorf(start, end, "unterminated block comment")
			}
			l.pos = end
			newline = newline || multiline
			out = append(out, Trivia{Kind: TriviaBlockComment, Span: mkSpan(start, l.pos)})
		default:
			return out, newline
		}
	}
	return out, newline
}

func appendWhitespace(out []Trivia, start, end int) []Trivia {
	if k := len(out) - 1; k >= 0 && out[k].Kind == TriviaWhitespace && int(out[k].Span.End) == start {
		out[k].Span.End = uint32(end) //nolint:gosec // source length is checked in Parse
		return out
	}
	return append(out, Trivia{Kind: TriviaWhitespace, Span: mkSpan(start, end)})
}

func isBlank(c byte) bool {
	return c == ' ' || c == '\t' || c == '\v' || c == '\f'
}

func hasPrefixAt(src []byte, at int, prefix string) bool {
	return len(src)-at >= len(prefix) && string(src[at:at+len(prefix)]) == prefix
}

// skipLine advances to the line terminator, leaving "\r\n" or "\n" unconsumed.
func (l *lexer) skipLine() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == '\n' || (c == '\r' && (l.pos+1 == len(l.src) || l.src[l.pos+1] == '\n')) {
			return
		}
		l.pos++
	}
}

func (l *lexer) blockCommentEnd(start int) (end int, multiline, ok bool) {
	for i := start + 2; i+1 < len(l.src); i++ {
		switch l.src[i] {
		case '\n', '\r':
			multiline = true
		case '*':
			if l.src[i+1] == '/' {
				return i + 2, multiline, true
			}
		}
	}
	return len(l.src), true, false
}

func (l *lexer) scanToken() TokenKind {
	c := l.src[l.pos]
	switch {
	case isIdentStart(c) || c >= utf8.RuneSelf:
		if c >= utf8.RuneSelf {
			r, size := utf8.DecodeRune(l.src[l.pos:])
			if !unicode.IsLetter(r) {
				l.pos += size
				return TokenUnknown
			}
		}
		l.scanIdentTail()
		return TokenIdent
	case c == '#' && l.pos+1 < len(l.src) && isIdentStart(l.src[l.pos+1]):
		l.pos++
		l.scanIdentTail()
		return TokenPrivateName
	case isDigit(c) || (c == '.' && l.pos+1 < len(l.src) && isDigit(l.src[l.pos+1])):
		l.scanNumber()
		return TokenNumber
	case c == '"' || c == '\'':
		start := l.pos
		if !l.skipString(c) {
			l.errorf(start, l.pos, "unterminated string literal")
		}
		return TokenString
	case c == '`':
		start := l.pos
		if !l.skipTemplate() {
			l.errorf(start, l.pos, "unterminated template literal")
		}
		return TokenTemplate
	case c == '/' && l.regexAllowed():
		if l.scanRegex() {
			return TokenRegex
		}
	}
	for _, p := range multiPunct {
		if hasPrefixAt(l.src, l.pos, p) {
			if p == "?." && l.pos+2 < len(l.src) && isDigit(l.src[l.pos+2]) {
				break
			}
			l.pos += len(p)
			return TokenPunct
		}
	}
	l.pos++
	if c < 0x20 || c == 0x7f {
		return TokenUnknown
	}
	return TokenPunct
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || c == '\\' || (c|0x20 >= 'a' && c|0x20 <= 'z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func (l *lexer) scanIdentTail() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if isIdentStart(c) || isDigit(c) {
			l.pos++
			continue
		}
		if c >= utf8.RuneSelf {
			r, size := utf8.DecodeRune(l.src[l.pos:])
			if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r) || unicode.Is(unicode.Mc, r) {
				l.pos += size
				continue
			}
		}
		return
	}
}

func (l *lexer) scanNumber() {
	hex := hasPrefixAt(l.src, l.pos, "0x") || hasPrefixAt(l.src, l.pos, "0X")
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case isDigit(c) || isIdentStart(c) || c == '.':
			l.pos++
		case (c == '+' || c == '-') && !hex && (l.src[l.pos-1]|0x20) == 'e':
			l.pos++
		default:
			return
		}
	}
}

// skipString consumes a quoted string. It stops at an unescaped line break.
func (l *lexer) skipString(quote byte) bool {
	l.pos++
	for l.pos < len(l.src) {
		switch l.src[l.pos] {
		case '\\':
			l.pos = min(l.pos+2, len(l.src))
		case quote:
			l.pos++
			return true
		case '\n', '\r':
			return false
		default:
			l.pos++
		}
	}
	return false
}

func (l *lexer) skipTemplate() bool {
	l.pos++
	for l.pos < len(l.src) {
		switch l.src[l.pos] {
		case '\\':
			l.pos = min(l.pos+2, len(l.src))
		case '`':
			l.pos++
			return true
		case '$':
			if hasPrefixAt(l.src, l.pos, "${") {
				l.pos += 2
				if !l.skipTemplateExpr() {
					return false
				}
				continue
			}
			l.pos++
		default:
			l.pos++
		}
	}
	return false
}

func (l *lexer) skipTemplateExpr() bool {
	depth := 1
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == '{':
			depth++
			l.pos++
		case c == '}':
			depth--
			l.pos++
			if depth == 0 {
				return true
			}
		case c == '"' || c == '\'':
			l.skipString(c)
		case c == '`':
			if !l.skipTemplate() {
				return false
			}
		case hasPrefixAt(l.src, l.pos, "//"):
			l.skipLine()
		case hasPrefixAt(l.src, l.pos, "/*"):
			end, _, _ := l.blockCommentEnd(l.pos)
			l.pos = end
		default:
			l.pos++
		}
	}
	return false
}

func (l *lexer) regexAllowed() bool {
	if len(l.tokens) == 0 {
		return true
	}
	prev := &l.tokens[len(l.tokens)-1]
	text := string(l.src[prev.Span.Start:prev.Span.End])
	switch prev.Kind {
	case TokenIdent:
		return regexAfterKeyword[text]
	case TokenPunct:
		return text != ")" && text != "]" && text != "}"
	default:
		return false
	}
}

// scanRegex consumes a regular expression literal. On failure the position
// is left unchanged so the '/' lexes as punctuation.
func (l *lexer) scanRegex() bool {
	i := l.pos + 1
	inClass := false
	for i < len(l.src) {
		c := l.src[i]
		switch {
		case c == '\n' || c == '\r':
			return false
		case c == '\\':
			i += 2
			continue
		case c == '[':
			inClass = true
		case c == ']':
			inClass = false
		case c == '/' && !inClass:
			if i == l.pos+1 {
				return false
			}
			l.pos = i + 1
			l.scanIdentTail()
			return true
		}
		i++
	}
	return false
}
