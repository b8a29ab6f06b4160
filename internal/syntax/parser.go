// Package syntax parses TypeScript declarations into an immutable arena tree.
//
// The parser understands declarations and the full type grammar. Expression
// code (initializers, statement bodies outside blocks) is kept as token runs,
// except for the parts that hold types: arrow functions, function
// expressions, object literal methods, type assertions and call type
// arguments are parsed into nodes, and function bodies are parsed as blocks.
//
// Parsing never aborts. A region that cannot be understood becomes a Bogus
// node and an error matching ErrParseIncomplete.
package syntax

import (
	"sort"

	"fortio.org/safecast"
	"github.com/cockroachdb/errors"

	"github.com/wharflab/typelint/internal/span"
)

// Parse builds the syntax tree for src. The returned error is non-nil only
// when src cannot be addressed with 32-bit offsets; syntax problems are
// reported through Tree.Errors.
func Parse(src []byte) (*Tree, error) {
	if _, err := safecast.Conv[uint32](len(src)); err != nil {
		return nil, errors.Wrapf(err, "source of %d bytes is too large", len(src))
	}

	toks, lexErrs := lex(src)
	p := &parser{
		src:   src,
		toks:  toks,
		nodes: make([]Node, 1, len(toks)/2+2),
	}
	p.parseModule()

	errs := append(lexErrs, p.errs...)
	sort.SliceStable(errs, func(i, j int) bool {
		return errs[i].Span.Start < errs[j].Span.Start
	})

	return &Tree{
		src:    src,
		tokens: toks,
		nodes:  p.nodes,
		edges:  p.edges,
		root:   p.root,
		errs:   errs,
		lines:  span.NewLineIndex(src),
	}, nil
}

type parser struct {
	src     []byte
	toks    []Token
	pos     int
	nodes   []Node
	edges   []NodeID
	scratch []NodeID
	errs    []*ParseError
	root    NodeID

	// noConditional is set while parsing the extends clause of a conditional
	// type, where a nested `extends` belongs to the outer type.
	noConditional bool
}

// marker tracks a node that is still open.
type marker struct {
	id      NodeID
	scratch int
	errs    int
}

// snapshot captures parser state for speculative parsing.
type snapshot struct {
	pos, nodes, edges, scratch, errs int
}

func (p *parser) snapshot() snapshot {
	return snapshot{pos: p.pos, nodes: len(p.nodes), edges: len(p.edges), scratch: len(p.scratch), errs: len(p.errs)}
}

func (p *parser) restore(s snapshot) {
	p.pos = s.pos
	p.nodes = p.nodes[:s.nodes]
	p.edges = p.edges[:s.edges]
	p.scratch = p.scratch[:s.scratch]
	p.errs = p.errs[:s.errs]
}

// --- tree building ---------------------------------------------------------

func (p *parser) open(kind Kind) marker {
	id := NodeID(len(p.nodes)) //nolint:gosec // bounded by token count
	p.nodes = append(p.nodes, Node{Kind: kind, FirstToken: p.pos})
	return marker{id: id, scratch: len(p.scratch), errs: len(p.errs)}
}

// openBefore opens a node that adopts the most recently closed node as its
// first child.
func (p *parser) openBefore(kind Kind) marker {
	last := p.scratch[len(p.scratch)-1]
	id := NodeID(len(p.nodes)) //nolint:gosec // bounded by token count
	p.nodes = append(p.nodes, Node{Kind: kind, FirstToken: p.nodes[last].FirstToken})
	return marker{id: id, scratch: len(p.scratch) - 1, errs: len(p.errs)}
}

func (p *parser) close(m marker) NodeID {
	children := p.scratch[m.scratch:]
	start := uint32(len(p.edges)) //nolint:gosec // bounded by node count
	p.edges = append(p.edges, children...)
	for _, c := range children {
		p.nodes[c].Parent = m.id
	}
	p.scratch = append(p.scratch[:m.scratch], m.id)

	n := &p.nodes[m.id]
	n.childStart = start
	n.childEnd = uint32(len(p.edges)) //nolint:gosec // bounded by node count
	n.LastToken = p.pos - 1
	if n.LastToken >= n.FirstToken {
		n.Span = span.Span{Start: p.toks[n.FirstToken].Span.Start, End: p.toks[n.LastToken].Span.End}
	} else {
		n.Span = span.At(p.toks[p.pos].Span.Start)
	}
	if len(p.errs) > m.errs && n.Kind.recoverable() {
		n.Kind = KindBogus
	}
	return m.id
}

func (p *parser) setFlags(m marker, f Flags) {
	p.nodes[m.id].Flags |= f
}

// --- token access ----------------------------------------------------------

func (p *parser) cur() *Token {
	return &p.toks[p.pos]
}

func (p *parser) peek(k int) *Token {
	return &p.toks[min(p.pos+k, len(p.toks)-1)]
}

func (p *parser) is(k int, s string) bool {
	t := p.peek(k)
	return (t.Kind == TokenPunct || t.Kind == TokenIdent) && string(p.src[t.Span.Start:t.Span.End]) == s
}

func (p *parser) at(s string) bool {
	return p.is(0, s)
}

func (p *parser) kindAt(k int) TokenKind {
	return p.peek(k).Kind
}

func (p *parser) atEOF() bool {
	return p.cur().Kind == TokenEOF
}

func (p *parser) atCloser() bool {
	return p.at(")") || p.at("]") || p.at("}")
}

func (p *parser) bump() {
	if p.toks[p.pos].Kind != TokenEOF {
		p.pos++
	}
}

func (p *parser) eat(s string) bool {
	if p.at(s) {
		p.bump()
		return true
	}
	return false
}

func (p *parser) expect(s string) {
	if !p.eat(s) {
		p.errorHere("expected '" + s + "'")
	}
}

func (p *parser) errorHere(msg string) {
	p.errs = append(p.errs, &ParseError{Span: p.cur().Span, Message: msg})
}

// bogusToken wraps the current token in a Bogus node.
func (p *parser) bogusToken(msg string) {
	m := p.open(KindBogus)
	p.errorHere(msg)
	p.bump()
	p.close(m)
}

// skipBalanced consumes a bracketed group starting at the current opener.
func (p *parser) skipBalanced() {
	depth := 0
	for !p.atEOF() {
		switch {
		case p.at("(") || p.at("[") || p.at("{"):
			depth++
		case p.atCloser():
			depth--
		}
		p.bump()
		if depth <= 0 {
			return
		}
	}
	p.errorHere("unbalanced brackets")
}

// nested parses a bracketed sub-grammar where conditional types are allowed
// again.
func (p *parser) nested(fn func()) {
	saved := p.noConditional
	p.noConditional = false
	fn()
	p.noConditional = saved
}

func (p *parser) isName(k int) bool {
	switch p.kindAt(k) {
	case TokenIdent, TokenString, TokenNumber, TokenPrivateName:
		return true
	default:
		return p.is(k, "[")
	}
}

// --- statements ------------------------------------------------------------

func (p *parser) parseModule() {
	m := p.open(KindModule)
	p.parseStatements(false)
	p.root = p.close(m)
}

func (p *parser) parseStatements(inBlock bool) {
	for !p.atEOF() {
		if inBlock && p.at("}") {
			return
		}
		start := p.pos
		p.parseStatement()
		if p.pos == start {
			p.bogusToken("unexpected token")
		}
	}
}

func (p *parser) parseStatement() {
	if p.at(";") {
		m := p.open(KindOpaqueStatement)
		p.bump()
		p.close(m)
		return
	}
	if p.at("{") {
		p.parseBlock()
		return
	}

	k, flags := p.scanModifiers()
	switch kw := p.peek(k); {
	case kw.Kind != TokenIdent:
		p.parseOpaqueStatement()
	case p.is(k, "interface") && p.kindAt(k+1) == TokenIdent:
		p.parseInterface(k, flags)
	case p.is(k, "type") && p.kindAt(k+1) == TokenIdent && !flags.Has(FlagDefault):
		p.parseTypeAlias(k, flags)
	case p.is(k, "function"):
		p.parseFunction(k, flags)
	case p.is(k, "class"):
		p.parseClass(k, flags)
	case p.is(k, "var"), p.is(k, "const") && !p.is(k+1, "enum"),
		p.is(k, "let") && (p.kindAt(k+1) == TokenIdent || p.is(k+1, "[") || p.is(k+1, "{")):
		p.parseVariable(k, flags)
	case p.is(k, "namespace") && p.kindAt(k+1) == TokenIdent,
		p.is(k, "module") && !p.peek(k+1).NewlineBefore && (p.kindAt(k+1) == TokenIdent || p.kindAt(k+1) == TokenString),
		p.is(k, "global") && flags.Has(FlagDeclare) && p.is(k+1, "{"):
		p.parseNamespace(k, flags)
	default:
		p.parseOpaqueStatement()
	}
}

// scanModifiers looks past declaration modifiers without consuming them.
func (p *parser) scanModifiers() (int, Flags) {
	var flags Flags
	k := 0
	for {
		switch {
		case p.is(k, "export"):
			flags |= FlagExport
		case p.is(k, "declare") && p.kindAt(k+1) == TokenIdent && !p.peek(k+1).NewlineBefore:
			flags |= FlagDeclare
		case p.is(k, "default") && flags.Has(FlagExport):
			flags |= FlagDefault
		case p.is(k, "abstract") && p.is(k+1, "class"):
			flags |= FlagAbstract
		case p.is(k, "async") && p.is(k+1, "function") && !p.peek(k+1).NewlineBefore:
			flags |= FlagAsync
		default:
			return k, flags
		}
		k++
	}
}

func (p *parser) bumpN(n int) {
	for range n {
		p.bump()
	}
}

func (p *parser) parseInterface(mods int, flags Flags) {
	m := p.open(KindInterfaceDeclaration)
	p.setFlags(m, flags)
	p.bumpN(mods + 1)
	p.parseIdentifier()
	if p.at("<") {
		p.parseTypeParameters()
	}
	if p.at("extends") {
		h := p.open(KindHeritageClause)
		p.bump()
		for {
			p.parseType()
			if !p.eat(",") {
				break
			}
		}
		p.close(h)
	}
	b := p.open(KindInterfaceBody)
	p.expect("{")
	p.parseTypeMembers()
	p.expect("}")
	p.close(b)
	p.close(m)
}

func (p *parser) parseTypeAlias(mods int, flags Flags) {
	m := p.open(KindTypeAliasDeclaration)
	p.setFlags(m, flags)
	p.bumpN(mods + 1)
	p.parseIdentifier()
	if p.at("<") {
		p.parseTypeParameters()
	}
	p.expect("=")
	p.parseType()
	p.parseStatementEnd()
	p.close(m)
}

func (p *parser) parseFunction(mods int, flags Flags) {
	m := p.open(KindFunctionDeclaration)
	p.setFlags(m, flags)
	p.bumpN(mods + 1)
	p.eat("*")
	if p.cur().Kind == TokenIdent {
		p.parseIdentifier()
	}
	p.parseSignatureTail()
	if p.at("{") {
		p.parseBlock()
	} else {
		p.parseStatementEnd()
	}
	p.close(m)
}

func (p *parser) parseVariable(mods int, flags Flags) {
	m := p.open(KindVariableStatement)
	p.setFlags(m, flags)
	p.bumpN(mods + 1)
	for {
		d := p.open(KindVariableDeclarator)
		if p.at("{") || p.at("[") {
			p.skipBalanced()
		} else {
			p.parseIdentifier()
		}
		p.eat("!")
		if p.at(":") {
			p.parseTypeAnnotation()
		}
		if p.eat("=") {
			p.parseOpaqueRun(true, false)
		}
		p.close(d)
		if !p.eat(",") {
			break
		}
	}
	p.parseStatementEnd()
	p.close(m)
}

func (p *parser) parseNamespace(mods int, flags Flags) {
	m := p.open(KindNamespaceDeclaration)
	p.setFlags(m, flags)
	p.bumpN(mods)
	global := p.at("global")
	p.bump()
	switch {
	case global:
	case p.cur().Kind == TokenString:
		p.bump()
	default:
		p.parseIdentifier()
		for p.eat(".") {
			p.parseIdentifier()
		}
	}
	if p.at("{") {
		p.parseBlock()
	} else {
		p.parseStatementEnd()
	}
	p.close(m)
}

func (p *parser) parseBlock() {
	m := p.open(KindBlock)
	p.bump()
	p.parseStatements(true)
	p.expect("}")
	p.close(m)
}

func (p *parser) parseClass(mods int, flags Flags) {
	m := p.open(KindClassDeclaration)
	p.setFlags(m, flags)
	p.bumpN(mods + 1)
	if p.cur().Kind == TokenIdent && !p.at("extends") && !p.at("implements") {
		p.parseIdentifier()
	}
	if p.at("<") {
		p.parseTypeParameters()
	}
	if p.at("extends") || p.at("implements") {
		h := p.open(KindHeritageClause)
		for !p.atEOF() && !p.at("{") {
			if p.at("(") || p.at("[") || p.at("<") {
				p.skipAngleOrBalanced()
				continue
			}
			p.bump()
		}
		p.close(h)
	}
	b := p.open(KindClassBody)
	p.expect("{")
	for !p.atEOF() && !p.at("}") {
		start := p.pos
		p.parseClassMember()
		if p.pos == start {
			p.bogusToken("unexpected token in class body")
		}
	}
	p.expect("}")
	p.close(b)
	p.close(m)
}

// skipAngleOrBalanced skips a bracketed group, treating '<' '>' as brackets.
func (p *parser) skipAngleOrBalanced() {
	if !p.at("<") {
		p.skipBalanced()
		return
	}
	depth := 0
	for !p.atEOF() && !p.at("{") {
		switch {
		case p.at("<"):
			depth++
		case p.at(">"):
			depth--
		}
		p.bump()
		if depth <= 0 {
			return
		}
	}
}

var classModifiers = map[string]Flags{
	"public": 0, "private": 0, "protected": 0, "override": 0, "declare": 0, "accessor": 0,
	"static":   FlagStatic,
	"readonly": FlagReadonly,
	"abstract": FlagAbstract,
	"async":    FlagAsync,
}

func (p *parser) parseClassMember() {
	if p.eat(";") {
		return
	}
	if p.at("static") && p.is(1, "{") {
		p.bump()
		p.parseBlock()
		return
	}

	m := p.open(KindClassProperty)
	for p.at("@") {
		p.skipDecorator()
	}
	for {
		f, ok := classModifiers[p.cur().Span.Text(p.src)]
		if !ok || p.cur().Kind != TokenIdent || !(p.isName(1) || p.is(1, "*")) {
			break
		}
		p.setFlags(m, f)
		p.bump()
	}
	p.eat("*")
	accessor := (p.at("get") || p.at("set")) && p.isName(1)
	if accessor {
		p.bump()
	}
	if !p.parsePropertyName() {
		p.errorHere("expected class member")
		p.close(m)
		return
	}
	if !p.eat("?") {
		p.eat("!")
	}

	if accessor || p.at("(") || p.at("<") {
		p.nodes[m.id].Kind = KindClassMethod
		p.parseSignatureTail()
		if p.at("{") {
			p.parseBlock()
		} else {
			p.parseMemberEnd(false)
		}
	} else {
		if p.at(":") {
			p.parseTypeAnnotation()
		}
		if p.eat("=") {
			p.parseOpaqueRun(false, true)
		}
		p.parseMemberEnd(false)
	}
	p.close(m)
}

func (p *parser) skipDecorator() {
	p.bump()
	for p.cur().Kind == TokenIdent || p.at(".") {
		p.bump()
	}
	if p.at("(") {
		p.skipBalanced()
	}
}

// parsePropertyName consumes a member name. It reports false when no name is
// present.
func (p *parser) parsePropertyName() bool {
	switch p.cur().Kind {
	case TokenIdent:
		p.parseIdentifier()
	case TokenString, TokenNumber, TokenPrivateName:
		p.bump()
	default:
		if !p.at("[") {
			return false
		}
		p.skipBalanced()
	}
	return true
}

// statementKeywords start a new statement when they begin a line.
var statementKeywords = map[string]bool{
	"interface": true, "type": true, "function": true, "class": true,
	"const": true, "let": true, "var": true, "export": true, "import": true,
	"declare": true, "namespace": true, "module": true, "abstract": true,
	"enum": true, "if": true, "for": true, "while": true, "do": true,
	"return": true, "switch": true, "try": true, "throw": true,
	"break": true, "continue": true,
}

// blockOpeners are tokens after which '{' starts a statement block rather
// than an object literal.
var blockOpeners = map[string]bool{
	")": true, "=>": true, "else": true, "try": true, "finally": true, "do": true,
}

func (p *parser) parseOpaqueStatement() {
	if p.atCloser() {
		return
	}
	m := p.open(KindOpaqueStatement)
	p.parseOpaqueRun(false, false)
	p.eat(";")
	p.close(m)
}

// parseOpaqueRun consumes expression tokens until the end of the current
// statement or list element. Blocks introduced by control flow or arrow
// functions are parsed as statements so nested declarations stay visible,
// and typed expression constructs become nodes.
func (p *parser) parseOpaqueRun(stopAtComma, newlineEnds bool) {
	first := p.pos
	depth := 0
	for !p.atEOF() {
		tok := p.cur()
		if depth == 0 {
			if p.at(";") || p.atCloser() || (stopAtComma && p.at(",")) {
				return
			}
			if p.pos > first && tok.NewlineBefore {
				if newlineEnds || (tok.Kind == TokenIdent && statementKeywords[tok.Span.Text(p.src)]) {
					return
				}
			}
		}
		if p.parseEmbedded(first, newlineEnds) {
			continue
		}
		switch {
		case p.at("{") && p.pos > first && blockOpeners[p.toks[p.pos-1].Span.Text(p.src)]:
			p.parseBlock()
			continue
		case p.at("(") || p.at("[") || p.at("{"):
			depth++
		case p.atCloser():
			depth--
		}
		p.bump()
	}
}

// parseStatementEnd accepts an explicit or automatic semicolon and skips any
// unexpected tokens up to the end of the statement.
func (p *parser) parseStatementEnd() {
	if p.eat(";") || p.atEOF() || p.at("}") || p.cur().NewlineBefore {
		return
	}
	p.errorHere("expected ';'")
	p.skipToStatementEnd()
}

func (p *parser) skipToStatementEnd() {
	for !p.atEOF() && !p.at("}") && !p.cur().NewlineBefore {
		if p.eat(";") {
			return
		}
		if p.at("(") || p.at("[") || p.at("{") {
			p.skipBalanced()
			continue
		}
		p.bump()
	}
}

// parseMemberEnd handles the separator after an interface or class member.
func (p *parser) parseMemberEnd(allowComma bool) {
	if p.eat(";") || (allowComma && p.eat(",")) {
		return
	}
	if p.atEOF() || p.at("}") || p.cur().NewlineBefore {
		return
	}
	p.errorHere("expected ';'")
	for !p.atEOF() && !p.at("}") && !p.cur().NewlineBefore {
		if p.eat(";") || (allowComma && p.eat(",")) {
			return
		}
		if p.at("(") || p.at("[") || p.at("{") {
			p.skipBalanced()
			continue
		}
		p.bump()
	}
}

// --- shared pieces ---------------------------------------------------------

func (p *parser) parseIdentifier() {
	if p.cur().Kind != TokenIdent {
		p.errorHere("expected identifier")
		return
	}
	m := p.open(KindIdentifier)
	p.bump()
	p.close(m)
}

// parseSignatureTail parses `<T>(params): R` as found in call signatures,
// methods and function declarations.
func (p *parser) parseSignatureTail() {
	if p.at("<") {
		p.parseTypeParameters()
	}
	if p.at("(") {
		p.parseParameters()
	} else {
		p.errorHere("expected '('")
	}
	if p.at(":") {
		m := p.open(KindTypeAnnotation)
		p.bump()
		p.parseReturnType()
		p.close(m)
	}
}

func (p *parser) parseTypeParameters() {
	m := p.open(KindTypeParameterList)
	p.bump()
	p.nested(func() {
		for !p.atEOF() && !p.at(">") {
			tp := p.open(KindTypeParameter)
			for (p.at("const") || p.at("in") || p.at("out")) && p.kindAt(1) == TokenIdent {
				p.bump()
			}
			p.parseIdentifier()
			if p.eat("extends") {
				p.parseType()
			}
			if p.eat("=") {
				p.parseType()
			}
			p.close(tp)
			if !p.eat(",") {
				break
			}
		}
	})
	p.expect(">")
	p.close(m)
}

func (p *parser) parseTypeArguments() {
	m := p.open(KindTypeArguments)
	p.bump()
	p.nested(func() {
		for !p.atEOF() && !p.at(">") {
			p.parseType()
			if !p.eat(",") {
				break
			}
		}
	})
	p.expect(">")
	p.close(m)
}

var parameterModifiers = map[string]Flags{
	"public": 0, "private": 0, "protected": 0, "override": 0,
	"readonly": FlagReadonly,
}

func (p *parser) parseParameters() {
	m := p.open(KindParameterList)
	p.bump()
	p.nested(func() {
		for !p.atEOF() && !p.at(")") {
			p.parseParameter()
			if !p.eat(",") {
				break
			}
		}
	})
	p.expect(")")
	p.close(m)
}

func (p *parser) parseParameter() {
	m := p.open(KindParameter)
	for p.at("@") {
		p.skipDecorator()
	}
	for {
		f, ok := parameterModifiers[p.cur().Span.Text(p.src)]
		if !ok || p.cur().Kind != TokenIdent ||
			(p.kindAt(1) != TokenIdent && !p.is(1, "{") && !p.is(1, "[") && !p.is(1, "...")) {
			break
		}
		p.setFlags(m, f)
		p.bump()
	}
	if p.eat("...") {
		p.setFlags(m, FlagRest)
	}
	switch {
	case p.at("{") || p.at("["):
		p.skipBalanced()
	case p.cur().Kind == TokenIdent:
		p.parseIdentifier()
	default:
		p.errorHere("expected parameter name")
	}
	if p.eat("?") {
		p.setFlags(m, FlagOptional)
	}
	if p.at(":") {
		p.parseTypeAnnotation()
	}
	if p.eat("=") {
		p.parseOpaqueRun(true, false)
	}
	p.close(m)
}

func (p *parser) parseTypeAnnotation() {
	m := p.open(KindTypeAnnotation)
	p.bump()
	p.parseType()
	p.close(m)
}

// parseReturnType also accepts type predicates.
func (p *parser) parseReturnType() {
	switch {
	case p.at("asserts") && !p.peek(1).NewlineBefore && (p.kindAt(1) == TokenIdent) && !p.is(1, "is"):
		m := p.open(KindTypePredicate)
		p.setFlags(m, FlagAsserts)
		p.bump()
		p.bump()
		if p.at("is") && !p.cur().NewlineBefore {
			p.bump()
			p.parseType()
		}
		p.close(m)
	case p.cur().Kind == TokenIdent && p.is(1, "is") && !p.peek(1).NewlineBefore:
		m := p.open(KindTypePredicate)
		p.bump()
		p.bump()
		p.parseType()
		p.close(m)
	default:
		p.parseType()
	}
}

// --- type members ----------------------------------------------------------

func (p *parser) parseTypeMembers() {
	for !p.atEOF() && !p.at("}") {
		start := p.pos
		p.parseTypeMember()
		if p.pos == start {
			p.bogusToken("unexpected token in type members")
		}
	}
}

func (p *parser) parseTypeMember() {
	switch {
	case p.at("(") || p.at("<"):
		m := p.open(KindCallSignature)
		p.parseSignatureTail()
		p.parseMemberEnd(true)
		p.close(m)
	case p.at("new") && (p.is(1, "(") || p.is(1, "<")):
		m := p.open(KindConstructSignature)
		p.bump()
		p.parseSignatureTail()
		p.parseMemberEnd(true)
		p.close(m)
	case p.isIndexSignature(0):
		m := p.open(KindIndexSignature)
		p.parseIndexSignatureBody()
		p.parseMemberEnd(true)
		p.close(m)
	default:
		p.parseNamedMember()
	}
}

func (p *parser) isIndexSignature(k int) bool {
	if p.is(k, "readonly") && p.is(k+1, "[") {
		k++
	}
	return p.is(k, "[") && p.kindAt(k+1) == TokenIdent && p.is(k+2, ":")
}

func (p *parser) parseIndexSignatureBody() {
	p.eat("readonly")
	p.bump()
	param := p.open(KindParameter)
	p.parseIdentifier()
	p.parseTypeAnnotation()
	p.close(param)
	p.expect("]")
	if p.at(":") {
		p.parseTypeAnnotation()
	}
}

func (p *parser) parseNamedMember() {
	m := p.open(KindPropertySignature)
	if p.at("readonly") && p.isName(1) {
		p.setFlags(m, FlagReadonly)
		p.bump()
	}
	accessor := (p.at("get") || p.at("set")) && p.isName(1)
	if accessor {
		p.bump()
	}
	if !p.parsePropertyName() {
		p.errorHere("expected property name")
		if !p.atCloser() {
			p.bump()
		}
		p.parseMemberEnd(true)
		p.close(m)
		return
	}
	if p.eat("?") {
		p.setFlags(m, FlagOptional)
	}
	if accessor || p.at("(") || p.at("<") {
		p.nodes[m.id].Kind = KindMethodSignature
		p.parseSignatureTail()
	} else if p.at(":") {
		p.parseTypeAnnotation()
	}
	p.parseMemberEnd(true)
	p.close(m)
}

// --- types -----------------------------------------------------------------

func (p *parser) parseType() {
	switch {
	case p.isStartOfFunctionType():
		p.parseFunctionType(KindFunctionType)
		return
	case p.at("new") || (p.at("abstract") && p.is(1, "new")):
		p.parseFunctionType(KindConstructorType)
		return
	}
	p.parseUnionType()
	if !p.noConditional && p.at("extends") && !p.cur().NewlineBefore {
		m := p.openBefore(KindConditionalType)
		p.bump()
		p.noConditional = true
		p.parseType()
		p.noConditional = false
		p.expect("?")
		p.parseType()
		p.expect(":")
		p.parseType()
		p.close(m)
	}
}

func (p *parser) isStartOfFunctionType() bool {
	if p.at("<") {
		return true
	}
	if !p.at("(") {
		return false
	}
	depth := 0
	for i := p.pos; i < len(p.toks); i++ {
		tok := &p.toks[i]
		if tok.Kind != TokenPunct {
			if tok.Kind == TokenEOF {
				return false
			}
			continue
		}
		switch tok.Span.Text(p.src) {
		case "(", "[", "{":
			depth++
		case ")", "]", "}":
			depth--
			if depth == 0 {
				return i+1 < len(p.toks) && p.toks[i+1].Kind == TokenPunct && p.toks[i+1].Span.Text(p.src) == "=>"
			}
		}
	}
	return false
}

func (p *parser) parseFunctionType(kind Kind) {
	m := p.open(kind)
	if kind == KindConstructorType {
		if p.eat("abstract") {
			p.setFlags(m, FlagAbstract)
		}
		p.bump()
	}
	if p.at("<") {
		p.parseTypeParameters()
	}
	if p.at("(") {
		p.parseParameters()
	} else {
		p.errorHere("expected '('")
	}
	p.expect("=>")
	p.parseReturnType()
	p.close(m)
}

func (p *parser) parseUnionType() {
	if p.at("|") {
		m := p.open(KindUnionType)
		for p.eat("|") {
			p.parseIntersectionType()
		}
		p.close(m)
		return
	}
	p.parseIntersectionType()
	if p.at("|") {
		m := p.openBefore(KindUnionType)
		for p.eat("|") {
			p.parseIntersectionType()
		}
		p.close(m)
	}
}

func (p *parser) parseIntersectionType() {
	if p.at("&") {
		m := p.open(KindIntersectionType)
		for p.eat("&") {
			p.parseTypeOperator()
		}
		p.close(m)
		return
	}
	p.parseTypeOperator()
	if p.at("&") {
		m := p.openBefore(KindIntersectionType)
		for p.eat("&") {
			p.parseTypeOperator()
		}
		p.close(m)
	}
}

// typeTerminators never start a type.
var typeTerminators = map[string]bool{
	")": true, "]": true, "}": true, ",": true, ";": true, ">": true,
	"=": true, "|": true, "&": true, ":": true, "?": true, "=>": true,
}

func (p *parser) startsType(k int) bool {
	t := p.peek(k)
	if t.Kind == TokenEOF || t.NewlineBefore && t.Kind != TokenIdent {
		return false
	}
	return t.Kind != TokenPunct || !typeTerminators[t.Span.Text(p.src)]
}

func (p *parser) parseTypeOperator() {
	switch {
	case (p.at("keyof") || p.at("unique") || p.at("readonly")) && p.startsType(1):
		m := p.open(KindTypeOperator)
		p.bump()
		p.parseTypeOperator()
		p.close(m)
	case p.at("infer") && p.kindAt(1) == TokenIdent:
		m := p.open(KindInferType)
		p.bump()
		p.parseIdentifier()
		if p.at("extends") && !p.cur().NewlineBefore {
			snap := p.snapshot()
			saved := p.noConditional
			p.bump()
			p.noConditional = true
			p.parseType()
			p.noConditional = saved
			if !saved && p.at("?") {
				p.restore(snap)
			}
		}
		p.close(m)
	default:
		p.parsePostfixType()
	}
}

func (p *parser) parsePostfixType() {
	p.parsePrimaryType()
	for p.at("[") && !p.cur().NewlineBefore {
		if p.is(1, "]") {
			m := p.openBefore(KindArrayType)
			p.bump()
			p.bump()
			p.close(m)
			continue
		}
		m := p.openBefore(KindIndexedAccessType)
		p.bump()
		p.nested(p.parseType)
		p.expect("]")
		p.close(m)
	}
}

func (p *parser) parsePrimaryType() {
	tok := p.cur()
	switch {
	case p.at("("):
		m := p.open(KindParenthesizedType)
		p.bump()
		p.nested(p.parseType)
		p.expect(")")
		p.close(m)
	case p.at("{"):
		if p.isMappedType() {
			p.parseMappedType()
		} else {
			p.parseObjectType()
		}
	case p.at("["):
		p.parseTupleType()
	case tok.Kind == TokenTemplate:
		m := p.open(KindTemplateLiteralType)
		p.bump()
		p.close(m)
	case tok.Kind == TokenString || tok.Kind == TokenNumber,
		p.at("true"), p.at("false"), p.at("null"):
		m := p.open(KindLiteralType)
		p.bump()
		p.close(m)
	case p.at("-") && p.kindAt(1) == TokenNumber:
		m := p.open(KindLiteralType)
		p.bump()
		p.bump()
		p.close(m)
	case p.at("this"):
		m := p.open(KindThisType)
		p.bump()
		p.close(m)
	case p.at("typeof") && p.startsType(1):
		p.parseTypeQuery()
	case p.at("import") && p.is(1, "("):
		m := p.open(KindReferenceType)
		p.bump()
		p.skipBalanced()
		p.parseQualifiedTail()
		p.close(m)
	case tok.Kind == TokenIdent:
		m := p.open(KindReferenceType)
		p.parseIdentifier()
		p.parseQualifiedTail()
		p.close(m)
	default:
		m := p.open(KindBogus)
		p.errorHere("expected type")
		if !p.atCloser() && !p.at(";") && !p.at(",") {
			p.bump()
		}
		p.close(m)
	}
}

// parseQualifiedTail consumes `.Name` segments and optional type arguments.
func (p *parser) parseQualifiedTail() {
	for p.at(".") && p.kindAt(1) == TokenIdent {
		p.bump()
		p.bump()
	}
	if p.at("<") && !p.cur().NewlineBefore {
		p.parseTypeArguments()
	}
}

func (p *parser) parseTypeQuery() {
	m := p.open(KindTypeQuery)
	p.bump()
	if p.at("import") && p.is(1, "(") {
		p.bump()
		p.skipBalanced()
	} else if p.cur().Kind == TokenIdent {
		p.bump()
	} else {
		p.errorHere("expected identifier")
	}
	p.parseQualifiedTail()
	p.close(m)
}

func (p *parser) parseObjectType() {
	m := p.open(KindObjectType)
	p.bump()
	p.nested(p.parseTypeMembers)
	p.expect("}")
	p.close(m)
}

func (p *parser) isMappedType() bool {
	k := 1
	if p.is(k, "+") || p.is(k, "-") {
		k++
	}
	if p.is(k, "readonly") {
		k++
	}
	return p.is(k, "[") && p.kindAt(k+1) == TokenIdent && p.is(k+2, "in")
}

func (p *parser) parseMappedType() {
	m := p.open(KindMappedType)
	p.bump()
	p.nested(func() {
		if p.eat("+") || p.eat("-") {
			p.expect("readonly")
		} else {
			p.eat("readonly")
		}
		p.bump()
		tp := p.open(KindTypeParameter)
		p.parseIdentifier()
		p.bump()
		p.parseType()
		p.close(tp)
		if p.eat("as") {
			p.parseType()
		}
		p.expect("]")
		if p.eat("+") || p.eat("-") {
			p.expect("?")
		} else {
			p.eat("?")
		}
		if p.at(":") {
			p.parseTypeAnnotation()
		}
		if !p.eat(";") {
			p.eat(",")
		}
	})
	p.expect("}")
	p.close(m)
}

func (p *parser) parseTupleType() {
	m := p.open(KindTupleType)
	p.bump()
	p.nested(func() {
		for !p.atEOF() && !p.at("]") {
			p.eat("...")
			if p.cur().Kind == TokenIdent && (p.is(1, ":") || (p.is(1, "?") && p.is(2, ":"))) {
				p.bump()
				p.eat("?")
				p.bump()
			}
			p.parseType()
			p.eat("?")
			if !p.eat(",") {
				break
			}
		}
	})
	p.expect("]")
	p.close(m)
}
