package syntax

// Expression code stays a flat token run except where it carries type
// syntax: arrow function heads, function expressions, object literal
// methods, type assertions and call type arguments. Each of these is parsed
// speculatively; when the head does not parse cleanly the parser rolls back
// and the tokens stay opaque.

// parseEmbedded parses the construct starting at the current token of an
// opaque run beginning at first. It reports whether anything was consumed.
func (p *parser) parseEmbedded(first int, newlineEnds bool) bool {
	start := p.pos == first || p.expressionStart()
	tok := p.cur()
	switch {
	case p.at("function") && start:
		return p.tryFunctionExpression()
	case p.at("(") && (start || p.afterAsync()):
		return p.tryArrowFunction(newlineEnds)
	case p.at("<") && start:
		return p.tryArrowFunction(newlineEnds) || p.tryTypeAssertion()
	case p.at("<") && p.pos > first && !tok.NewlineBefore:
		return p.tryCallTypeArguments()
	case (p.at("as") || p.at("satisfies")) && p.pos > first && !start && !tok.NewlineBefore:
		return p.tryAsExpression()
	case p.pos > first && (p.isPrev("{") || p.isPrev(",")) &&
		(p.isName(0) || p.at("*")):
		return p.tryObjectMethod()
	}
	return false
}

func (p *parser) isPrev(s string) bool {
	if p.pos == 0 {
		return false
	}
	prev := &p.toks[p.pos-1]
	return (prev.Kind == TokenPunct || prev.Kind == TokenIdent) && prev.Span.Text(p.src) == s
}

// expressionStart reports whether the previous token leaves the parser
// expecting an operand.
func (p *parser) expressionStart() bool {
	if p.pos == 0 {
		return true
	}
	prev := &p.toks[p.pos-1]
	text := prev.Span.Text(p.src)
	switch prev.Kind {
	case TokenIdent:
		return regexAfterKeyword[text]
	case TokenPunct:
		return text != ")" && text != "]" && text != "}" && text != "!"
	default:
		return false
	}
}

func (p *parser) afterAsync() bool {
	return p.isPrev("async") && !p.cur().NewlineBefore
}

func (p *parser) rollback(s snapshot) bool {
	p.restore(s)
	return false
}

// tryArrowFunction parses `<T>(params): R => body`.
func (p *parser) tryArrowFunction(newlineEnds bool) bool {
	snap := p.snapshot()
	m := p.open(KindArrowFunction)
	if p.at("<") {
		p.parseTypeParameters()
	}
	if !p.at("(") {
		return p.rollback(snap)
	}
	p.parseParameters()
	if p.at(":") {
		a := p.open(KindTypeAnnotation)
		p.bump()
		p.parseReturnType()
		p.close(a)
	}
	if len(p.errs) > snap.errs || !p.at("=>") || p.cur().NewlineBefore {
		return p.rollback(snap)
	}
	p.bump()
	if p.at("{") {
		p.parseBlock()
	} else {
		p.parseOpaqueRun(true, newlineEnds)
	}
	p.close(m)
	return true
}

func (p *parser) tryFunctionExpression() bool {
	snap := p.snapshot()
	m := p.open(KindFunctionExpression)
	p.bump()
	p.eat("*")
	if p.cur().Kind == TokenIdent {
		p.parseIdentifier()
	}
	if !p.at("(") && !p.at("<") {
		return p.rollback(snap)
	}
	p.parseSignatureTail()
	if len(p.errs) > snap.errs || !p.at("{") {
		return p.rollback(snap)
	}
	p.parseBlock()
	p.close(m)
	return true
}

// tryObjectMethod parses a method in an object literal, such as
// `async m<T>(x: T): R { ... }`.
func (p *parser) tryObjectMethod() bool {
	snap := p.snapshot()
	m := p.open(KindObjectMethod)
	for (p.at("async") || p.at("get") || p.at("set")) && (p.isName(1) || p.is(1, "*")) {
		p.bump()
	}
	p.eat("*")
	if !p.parsePropertyName() || !(p.at("(") || p.at("<")) {
		return p.rollback(snap)
	}
	p.parseSignatureTail()
	if len(p.errs) > snap.errs || !p.at("{") {
		return p.rollback(snap)
	}
	p.parseBlock()
	p.close(m)
	return true
}

// tryTypeAssertion parses the prefix form `<T>expr`. Only the `<T>` part
// belongs to the node.
func (p *parser) tryTypeAssertion() bool {
	snap := p.snapshot()
	m := p.open(KindTypeAssertion)
	p.bump()
	p.nested(p.parseType)
	if len(p.errs) > snap.errs || !p.at(">") {
		return p.rollback(snap)
	}
	p.bump()
	p.close(m)
	return true
}

// tryAsExpression parses `as T` and `satisfies T`.
func (p *parser) tryAsExpression() bool {
	snap := p.snapshot()
	m := p.open(KindTypeAssertion)
	p.bump()
	if !p.startsType(0) {
		return p.rollback(snap)
	}
	p.parseType()
	if len(p.errs) > snap.errs {
		return p.rollback(snap)
	}
	p.close(m)
	return true
}

// tryCallTypeArguments parses `<A, B>` when it is followed by a call or a
// tagged template.
func (p *parser) tryCallTypeArguments() bool {
	snap := p.snapshot()
	p.parseTypeArguments()
	if len(p.errs) > snap.errs || !(p.at("(") || p.cur().Kind == TokenTemplate) {
		return p.rollback(snap)
	}
	return true
}
