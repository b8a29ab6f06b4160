package shorthandfunctype

import (
	"strings"

	"github.com/wharflab/typelint/internal/rules"
	"github.com/wharflab/typelint/internal/syntax"
)

const (
	interfaceFixDescription  = "Alias a function type instead of using an interface with a call signature."
	objectTypeFixDescription = "Use a function type instead of an object type with a call signature."
)

// Synthesize builds the rewrite for m. The returned fix has exactly one
// edit. Errors are marked with rules.ErrUnsynthesizable.
//
// The function type is rendered from the signature's own tokens on a single
// line, spaced the same way whatever the source looked like: one space after
// ',' and ':', around '=>', '|', '&' and '=', none inside brackets. Block
// comments inside the rendered parts are kept; a line comment there, or any
// comment elsewhere in the container, makes the match unsynthesizable.
func Synthesize(tree *syntax.Tree, m Match) (*rules.Fix, error) {
	if tree.Contains(m.Signature, syntax.KindBogus) {
		return nil, rules.Unsynthesizable("call signature at %s has syntax errors", tree.Span(m.Signature))
	}

	r := &renderer{tree: tree, memberEnds: memberEnds(tree, m)}
	fn, err := r.functionType(m.Signature)
	if err != nil {
		return nil, err
	}

	var edit rules.TextEdit
	var desc string
	if m.Kind == ContainerInterface {
		edit, err = r.interfaceEdit(m, fn)
		desc = interfaceFixDescription
	} else {
		edit, err = r.objectTypeEdit(m, fn)
		desc = objectTypeFixDescription
	}
	if err != nil {
		return nil, err
	}

	return &rules.Fix{
		Description: desc,
		Safety:      Classify(tree, m),
		Edits:       []rules.TextEdit{edit},
	}, nil
}

// tokenRange is an inclusive range of token indices.
type tokenRange struct {
	first, last int
}

type renderer struct {
	tree *syntax.Tree
	// rendered holds the token ranges already copied into the output; gaps
	// inside them have been checked for comments.
	rendered []tokenRange
	// memberEnds holds the last token of every type member nested in the
	// match. Members separated only by a line break get a ';' when joined.
	memberEnds map[int]bool
}

func memberEnds(tree *syntax.Tree, m Match) map[int]bool {
	ends := make(map[int]bool)
	for id := range tree.Preorder(m.Container, nil) {
		if id != m.Signature && tree.Kind(id).IsTypeMember() {
			ends[tree.Node(id).LastToken] = true
		}
	}
	return ends
}

func (r *renderer) functionType(sig syntax.NodeID) (string, error) {
	tree := r.tree
	var sb strings.Builder

	if tp := tree.Child(sig, syntax.KindTypeParameterList); tp.IsValid() {
		text, err := r.renderNode(tp)
		if err != nil {
			return "", err
		}
		sb.WriteString(text)
	}

	params := tree.Child(sig, syntax.KindParameterList)
	if !params.IsValid() {
		return "", rules.Unsynthesizable("call signature at %s has no parameter list", tree.Span(sig))
	}
	text, err := r.renderNode(params)
	if err != nil {
		return "", err
	}
	sb.WriteString(text)
	sb.WriteString(" => ")

	ann := tree.Child(sig, syntax.KindTypeAnnotation)
	if !ann.IsValid() {
		sb.WriteString("any")
		return sb.String(), nil
	}
	n := tree.Node(ann)
	// Skip the ':'.
	text, err = r.render(n.FirstToken+1, n.LastToken)
	if err != nil {
		return "", err
	}
	sb.WriteString(text)
	return sb.String(), nil
}

func (r *renderer) interfaceEdit(m Match, fn string) (rules.TextEdit, error) {
	tree := r.tree
	decl := tree.Node(m.Container)

	if decl.Flags.Has(syntax.FlagDefault) {
		return rules.TextEdit{}, rules.Unsynthesizable("default-exported interface at %s has no type alias form", decl.Span)
	}
	if tree.Contains(m.Signature, syntax.KindThisType) {
		return rules.TextEdit{}, rules.Unsynthesizable("call signature at %s refers to this", tree.Span(m.Signature))
	}
	name := tree.Child(m.Container, syntax.KindIdentifier)
	if !name.IsValid() {
		return rules.TextEdit{}, rules.Unsynthesizable("interface at %s has no name", decl.Span)
	}

	var sb strings.Builder
	if decl.Flags.Has(syntax.FlagExport) {
		sb.WriteString("export ")
	}
	if decl.Flags.Has(syntax.FlagDeclare) {
		sb.WriteString("declare ")
	}
	sb.WriteString("type ")
	sb.WriteString(tree.Text(name))
	if tp := tree.Child(m.Container, syntax.KindTypeParameterList); tp.IsValid() {
		text, err := r.renderNode(tp)
		if err != nil {
			return rules.TextEdit{}, err
		}
		sb.WriteString(text)
	}
	sb.WriteString(" = ")
	sb.WriteString(fn)

	if err := r.checkComments(decl.FirstToken, decl.LastToken); err != nil {
		return rules.TextEdit{}, err
	}

	// The edit runs through the line break ending the declaration. Whatever
	// followed the closing brace on its line is written back unchanged.
	sp := decl.Span
	closing := tree.Token(decl.LastToken)
	next := tree.Token(decl.LastToken + 1)
	switch {
	case next.NewlineBefore:
		if nl, ok := firstNewline(next.Leading); ok {
			sb.Write(tree.Source()[closing.Span.End:nl.Span.End])
			sp.End = nl.Span.End
		}
	case next.Kind == syntax.TokenEOF:
	case tree.TokenText(decl.LastToken+1) == ";", tree.TokenText(decl.LastToken+1) == "}":
	default:
		// Another statement shares the line.
		sb.WriteByte(';')
	}

	return rules.TextEdit{Span: sp, NewText: sb.String()}, nil
}

func (r *renderer) objectTypeEdit(m Match, fn string) (rules.TextEdit, error) {
	n := r.tree.Node(m.Container)
	if err := r.checkComments(n.FirstToken, n.LastToken); err != nil {
		return rules.TextEdit{}, err
	}
	if needsParens(r.tree, m.Container) {
		fn = "(" + fn + ")"
	}
	return rules.TextEdit{Span: n.Span, NewText: fn}, nil
}

// needsParens reports whether a function type in place of id would bind
// differently than the object type it replaces.
func needsParens(tree *syntax.Tree, id syntax.NodeID) bool {
	parent := tree.Parent(id)
	switch tree.Kind(parent) {
	case syntax.KindUnionType, syntax.KindIntersectionType,
		syntax.KindArrayType, syntax.KindTypeOperator:
		return true
	case syntax.KindIndexedAccessType:
		return tree.ChildAt(parent, 0) == id
	case syntax.KindConditionalType:
		return tree.ChildAt(parent, 0) == id || tree.ChildAt(parent, 1) == id
	case syntax.KindTupleType:
		// Optional element marker.
		return tree.TokenText(tree.Node(id).LastToken+1) == "?"
	default:
		return false
	}
}

func (r *renderer) renderNode(id syntax.NodeID) (string, error) {
	n := r.tree.Node(id)
	return r.render(n.FirstToken, n.LastToken)
}

// render joins tokens first..last.
func (r *renderer) render(first, last int) (string, error) {
	tree := r.tree
	r.rendered = append(r.rendered, tokenRange{first, last})

	j := newJoiner()
	for i := first; i <= last; i++ {
		if i > first {
			for _, tr := range gap(tree, i) {
				switch tr.Kind {
				case syntax.TriviaLineComment:
					return "", rules.Unsynthesizable("line comment at %s cannot be kept on one line", tr.Span)
				case syntax.TriviaBlockComment:
					j.write(tree.TriviaText(tr))
				}
			}
		}
		text := tree.TokenText(i)
		next := ""
		if i < last {
			next = tree.TokenText(i + 1)
		}
		if text == "," && next == ")" {
			continue
		}
		j.write(text)
		if r.memberEnds[i] && i < last && text != ";" && text != "," && next != "}" {
			j.write(";")
		}
	}
	return j.sb.String(), nil
}

// checkComments fails when a comment sits between two tokens of first..last
// that were not copied into the output.
func (r *renderer) checkComments(first, last int) error {
	for i := first + 1; i <= last; i++ {
		if r.isRendered(i) {
			continue
		}
		for _, tr := range gap(r.tree, i) {
			if tr.Kind.IsComment() {
				return rules.Unsynthesizable("comment at %s would be lost", tr.Span)
			}
		}
	}
	return nil
}

// isRendered reports whether the gap before token i lies inside a rendered
// range.
func (r *renderer) isRendered(i int) bool {
	for _, rg := range r.rendered {
		if rg.first < i && i <= rg.last {
			return true
		}
	}
	return false
}

// gap returns the trivia between token i-1 and token i.
func gap(tree *syntax.Tree, i int) []syntax.Trivia {
	prev, cur := tree.Token(i-1), tree.Token(i)
	if len(prev.Trailing) == 0 {
		return cur.Leading
	}
	if len(cur.Leading) == 0 {
		return prev.Trailing
	}
	out := make([]syntax.Trivia, 0, len(prev.Trailing)+len(cur.Leading))
	out = append(out, prev.Trailing...)
	return append(out, cur.Leading...)
}

func firstNewline(trivia []syntax.Trivia) (syntax.Trivia, bool) {
	for _, tr := range trivia {
		if tr.Kind == syntax.TriviaNewline {
			return tr, true
		}
	}
	return syntax.Trivia{}, false
}

// joiner concatenates token texts with canonical spacing. The source's
// whitespace plays no part.
type joiner struct {
	sb   strings.Builder
	prev string
	// levels tracks conditional types per bracket level, so that their '?'
	// and ':' are told apart from optional markers and annotations.
	levels []conditionalLevel
}

type conditionalLevel struct {
	extends   int
	questions int
}

// Symbols for tokens whose spacing depends on context.
const (
	symConditionalQuestion = "?cond"
	symConditionalColon    = ":cond"
	symComment             = "/*"
)

func newJoiner() *joiner {
	return &joiner{levels: []conditionalLevel{{}}}
}

func (j *joiner) write(text string) {
	sym := text
	lv := &j.levels[len(j.levels)-1]
	switch {
	case strings.HasPrefix(text, "/*"):
		sym = symComment
	case text == "extends":
		lv.extends++
	case text == "?" && lv.extends > 0:
		sym = symConditionalQuestion
		lv.extends--
		lv.questions++
	case text == ":" && lv.questions > 0:
		sym = symConditionalColon
		lv.questions--
	}

	if j.sb.Len() > 0 && spaceBetween(j.prev, sym) {
		j.sb.WriteByte(' ')
	}
	j.sb.WriteString(text)
	j.prev = sym

	switch text {
	case "(", "[", "{", "<":
		j.levels = append(j.levels, conditionalLevel{})
	case ")", "]", "}", ">":
		if len(j.levels) > 1 {
			j.levels = j.levels[:len(j.levels)-1]
		}
	}
}

// typeKeywords are words that may be followed directly by a bracket.
var typeKeywords = map[string]bool{
	"keyof": true, "readonly": true, "unique": true, "typeof": true,
	"infer": true, "extends": true, "is": true, "asserts": true,
	"new": true, "in": true, "as": true, "abstract": true,
}

func spaceBetween(prev, next string) bool {
	if prev == "{" && next == "}" {
		return false
	}
	switch prev {
	case "(", "[", "<", ".", "...", "-", "+":
		return false
	case "{":
		return true
	}
	switch next {
	case ")", "]", ">", ",", ";", ".", "?", ":":
		return false
	case "-", "+":
		return prev != "]"
	case "(", "[", "<":
		if typeKeywords[prev] {
			return true
		}
		switch prev {
		case ")", "]", ">", "?":
			return false
		}
		return !isWord(prev)
	}
	return true
}

func isWord(sym string) bool {
	if sym == "" || sym == symComment {
		return false
	}
	c := sym[0]
	return c == '_' || c == '$' || c == '"' || c == '\'' || c == '`' || c >= 0x80 ||
		('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}
