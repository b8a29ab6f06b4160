package syntax

import (
	"slices"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, src string) *Tree {
	t.Helper()
	tree, err := Parse([]byte(src))
	require.NoError(t, err)
	return tree
}

// find returns the nodes of kind in document order.
func find(tree *Tree, kind Kind) []NodeID {
	var out []NodeID
	for id := range tree.Preorder(tree.Root(), nil) {
		if tree.Kind(id) == kind {
			out = append(out, id)
		}
	}
	return out
}

func TestParseInterfaceWithCallSignature(t *testing.T) {
	t.Parallel()
	tree := mustParse(t, "interface Example {\n (): string;\n}\n")
	require.False(t, tree.HasErrors())
	require.NoError(t, tree.Err())

	want := `Module 0..34
  InterfaceDeclaration 0..34
    Identifier 10..17 "Example"
    InterfaceBody 18..34
      CallSignature 21..32
        ParameterList 21..23
        TypeAnnotation 23..31
          ReferenceType 25..31
            Identifier 25..31 "string"
`
	assert.Equal(t, want, tree.Dump(tree.Root()))
}

func TestParseObjectTypeInParameter(t *testing.T) {
	t.Parallel()
	src := "function foo(example: { (): number }): number { return example(); }"
	tree := mustParse(t, src)
	require.False(t, tree.HasErrors())

	objects := find(tree, KindObjectType)
	require.Len(t, objects, 1)
	assert.Equal(t, "{ (): number }", tree.Text(objects[0]))

	sig := tree.ChildAt(objects[0], 0)
	assert.Equal(t, KindCallSignature, tree.Kind(sig))
	assert.Equal(t, "(): number", tree.Text(sig))

	// Parent chain: TypeAnnotation -> Parameter -> ParameterList -> FunctionDeclaration.
	var kinds []Kind
	for a := range tree.Ancestors(objects[0]) {
		kinds = append(kinds, tree.Kind(a))
	}
	assert.Equal(t, []Kind{
		KindTypeAnnotation, KindParameter, KindParameterList,
		KindFunctionDeclaration, KindModule,
	}, kinds)

	assert.Len(t, find(tree, KindBlock), 1)
}

func TestParseTypes(t *testing.T) {
	t.Parallel()
	tests := []struct {
		src  string
		want Kind
	}{
		{"A | B", KindUnionType},
		{"| A | B", KindUnionType},
		{"A & B", KindIntersectionType},
		{"A[]", KindArrayType},
		{`A["k"]`, KindIndexedAccessType},
		{"[a: string, b?: number, ...rest: C[]]", KindTupleType},
		{"(A)", KindParenthesizedType},
		{`"x"`, KindLiteralType},
		{"-1", KindLiteralType},
		{"true", KindLiteralType},
		{"this", KindThisType},
		{"typeof x.y", KindTypeQuery},
		{"keyof A", KindTypeOperator},
		{"readonly string[]", KindTypeOperator},
		{"A extends B ? C : D", KindConditionalType},
		{"T extends (infer R)[] ? R : never", KindConditionalType},
		{"T extends [infer H extends string, ...infer R] ? H : never", KindConditionalType},
		{"`a${B}c`", KindTemplateLiteralType},
		{"(a: string) => void", KindFunctionType},
		{"<T>(x: T) => T", KindFunctionType},
		{"(x: unknown) => x is string", KindFunctionType},
		{"new () => A", KindConstructorType},
		{"abstract new () => A", KindConstructorType},
		{"{ [K in keyof T]?: T[K] }", KindMappedType},
		{"{ a: string; b(): void }", KindObjectType},
		{`import("x").Y<Z>`, KindReferenceType},
		{"Map<string, Array<Set<number>>>", KindReferenceType},
		{"ns.Inner", KindReferenceType},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			t.Parallel()
			tree := mustParse(t, "type T = "+tt.src+";")
			require.False(t, tree.HasErrors(), "errors: %v", tree.Errors())

			alias := tree.ChildAt(tree.Root(), 0)
			require.Equal(t, KindTypeAliasDeclaration, tree.Kind(alias))
			children := tree.Children(alias)
			typ := children[len(children)-1]
			assert.Equal(t, tt.want, tree.Kind(typ))
			assert.Equal(t, tt.src, tree.Text(typ))
		})
	}
}

func TestParseTypeMembers(t *testing.T) {
	t.Parallel()
	src := `interface M {
  (): void;
  new (): M;
  m(): void;
  p?: string,
  readonly [k: string]: unknown;
  get g(): number
}
`
	tree := mustParse(t, src)
	require.False(t, tree.HasErrors(), "errors: %v", tree.Errors())

	body := find(tree, KindInterfaceBody)
	require.Len(t, body, 1)

	var kinds []Kind
	for _, c := range tree.Children(body[0]) {
		kinds = append(kinds, tree.Kind(c))
	}
	assert.Equal(t, []Kind{
		KindCallSignature, KindConstructSignature, KindMethodSignature,
		KindPropertySignature, KindIndexSignature, KindMethodSignature,
	}, kinds)

	prop := tree.ChildAt(body[0], 3)
	assert.True(t, tree.Flags(prop).Has(FlagOptional))
	assert.Equal(t, "p?: string,", tree.Text(prop))
}

func TestParseDeclarationModifiers(t *testing.T) {
	t.Parallel()
	tree := mustParse(t, "export declare interface A<T> extends B<T>, C { (x: T): void }\nexport default interface D { (): void }\n")
	require.False(t, tree.HasErrors(), "errors: %v", tree.Errors())

	decls := find(tree, KindInterfaceDeclaration)
	require.Len(t, decls, 2)
	assert.True(t, tree.Flags(decls[0]).Has(FlagExport|FlagDeclare))
	assert.False(t, tree.Flags(decls[0]).Has(FlagDefault))
	assert.NotZero(t, tree.Child(decls[0], KindTypeParameterList))
	assert.NotZero(t, tree.Child(decls[0], KindHeritageClause))
	assert.True(t, tree.Flags(decls[1]).Has(FlagExport|FlagDefault))
}

func TestParseNestedDeclarations(t *testing.T) {
	t.Parallel()
	src := `namespace N.M {
  export function f(a = { x: 1 }, ...rest: number[]) {
    if (a) {
      interface I { (): void }
    }
  }
  const g = () => {
    type X = { (): void };
  };
  class C<T> extends Base<T> implements I {
    static count = 0;
    private handler?: { (e: Event): void };
    method<U>(u: U): { (): U } { return () => u; }
    static { init(); }
  }
}
`
	tree := mustParse(t, src)
	require.False(t, tree.HasErrors(), "errors: %v", tree.Errors())

	assert.Len(t, find(tree, KindNamespaceDeclaration), 1)
	assert.Len(t, find(tree, KindInterfaceDeclaration), 1)
	assert.Len(t, find(tree, KindTypeAliasDeclaration), 1)
	assert.Len(t, find(tree, KindClassProperty), 2)
	assert.Len(t, find(tree, KindClassMethod), 1)

	var objects []string
	for _, id := range find(tree, KindObjectType) {
		objects = append(objects, tree.Text(id))
	}
	assert.Equal(t, []string{"{ (): void }", "{ (e: Event): void }", "{ (): U }"}, objects)

	params := find(tree, KindParameter)
	require.NotEmpty(t, params)
	assert.True(t, slices.ContainsFunc(params, func(id NodeID) bool {
		return tree.Flags(id).Has(FlagRest)
	}))
}

func TestParseTypedExpressions(t *testing.T) {
	t.Parallel()
	tests := []struct {
		src  string
		kind Kind
		text string
	}{
		{"const a = (x: A): B => x;", KindArrowFunction, "(x: A): B => x"},
		{"const a = <T,>(x: T) => x, b = 1;", KindArrowFunction, "<T,>(x: T) => x"},
		{"f(async (x: A) => { await x; });", KindArrowFunction, "(x: A) => { await x; }"},
		{"const a = function* g<T>(x: T): T { return x; };", KindFunctionExpression, "function* g<T>(x: T): T { return x; }"},
		{"const o = { a: 1, async m(x: A) {}, get n(): B { return b; } };", KindObjectMethod, "async m(x: A) {}"},
		{"let x = y as const;", KindTypeAssertion, "as const"},
		{"let x = y satisfies Record<string, A>;", KindTypeAssertion, "satisfies Record<string, A>"},
		{"let x = <A>y;", KindTypeAssertion, "<A>"},
		{"let x = new Map<string, A>();", KindTypeArguments, "<string, A>"},
		{"let x = tag<A>`t`;", KindTypeArguments, "<A>"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			t.Parallel()
			tree := mustParse(t, tt.src)
			require.False(t, tree.HasErrors(), "errors: %v", tree.Errors())
			nodes := find(tree, tt.kind)
			require.NotEmpty(t, nodes)
			assert.Equal(t, tt.text, tree.Text(nodes[0]))
		})
	}
}

// Plain expressions stay token runs.
func TestParseUntypedExpressions(t *testing.T) {
	t.Parallel()
	inputs := []string{
		"let a = b < c, d = e > (f);",
		"let a = b ? (c) : d;",
		"for (let i = 0; i < n; i++) { g(i); }",
		"if (a) (b);",
		"import * as ns from \"x\";",
		"let a = (b, c);",
	}
	for _, src := range inputs {
		t.Run(src, func(t *testing.T) {
			t.Parallel()
			tree := mustParse(t, src)
			require.False(t, tree.HasErrors(), "errors: %v", tree.Errors())
			assert.Empty(t, find(tree, KindArrowFunction))
			assert.Empty(t, find(tree, KindTypeAssertion))
			assert.Empty(t, find(tree, KindTypeArguments))
		})
	}
}

func TestParseAutomaticSemicolons(t *testing.T) {
	t.Parallel()
	tree := mustParse(t, "type A = string\ntype B = number\nlet x = 1\nconst y = x\n  + 2\n")
	require.False(t, tree.HasErrors(), "errors: %v", tree.Errors())
	assert.Len(t, find(tree, KindTypeAliasDeclaration), 2)
	assert.Len(t, find(tree, KindVariableStatement), 2)
}

func TestParseRecovery(t *testing.T) {
	t.Parallel()
	src := "interface A { (: string; }\ninterface B { (): void }\n"
	tree := mustParse(t, src)

	require.True(t, tree.HasErrors())
	err := tree.Err()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrParseIncomplete))
	for _, e := range tree.Errors() {
		assert.ErrorIs(t, e, ErrParseIncomplete)
	}

	// The broken declaration is collapsed; the next one is intact.
	top := tree.Children(tree.Root())
	require.Len(t, top, 2)
	assert.Equal(t, KindBogus, tree.Kind(top[0]))
	assert.Equal(t, KindInterfaceDeclaration, tree.Kind(top[1]))
	assert.Equal(t, "interface B { (): void }", tree.Text(top[1]))
}

func TestParseNeverStalls(t *testing.T) {
	t.Parallel()
	inputs := []string{
		"",
		"}",
		")))",
		"interface",
		"interface X {",
		"type = ;",
		"type T = {",
		"type T = (",
		"type T = A extends",
		"class { ",
		"function (",
		"/* unterminated",
		"'unterminated",
		"`a${",
		"interface A { [k: string }",
	}
	for _, src := range inputs {
		t.Run(src, func(t *testing.T) {
			t.Parallel()
			tree := mustParse(t, src)
			assert.Equal(t, KindModule, tree.Kind(tree.Root()))
			assert.LessOrEqual(t, int(tree.Span(tree.Root()).End), len(src))
		})
	}
}

func TestTrivia(t *testing.T) {
	t.Parallel()
	src := "\uFEFF// header\ntype A = () => void; // trailing\n"
	tree := mustParse(t, src)
	require.False(t, tree.HasErrors(), "errors: %v", tree.Errors())

	first := tree.Token(0)
	assert.Equal(t, "type", tree.TokenText(0))
	require.Len(t, first.Leading, 3)
	assert.Equal(t, TriviaWhitespace, first.Leading[0].Kind)
	assert.Equal(t, TriviaLineComment, first.Leading[1].Kind)
	assert.Equal(t, "// header", tree.TriviaText(first.Leading[1]))
	assert.Equal(t, TriviaNewline, first.Leading[2].Kind)
	assert.True(t, first.NewlineBefore)

	alias := tree.ChildAt(tree.Root(), 0)
	toks := tree.Tokens(alias)
	semi := toks[len(toks)-1]
	assert.True(t, semi.HasComments())
	require.Len(t, semi.Trailing, 2)
	assert.Equal(t, TriviaLineComment, semi.Trailing[1].Kind)

	eof := tree.Token(tree.TokenCount() - 1)
	assert.Equal(t, TokenEOF, eof.Kind)
	require.Len(t, eof.Leading, 1)
	assert.Equal(t, TriviaNewline, eof.Leading[0].Kind)
}

func TestTrailingTriviaStopsAtLineBreak(t *testing.T) {
	t.Parallel()
	tree := mustParse(t, "type A = B /* one */ /* two\n */\n")
	idx := slices.IndexFunc(tree.tokens, func(tok Token) bool {
		return tok.Span.Text(tree.Source()) == "B"
	})
	require.GreaterOrEqual(t, idx, 0)
	b := tree.Token(idx)
	require.Len(t, b.Trailing, 3)
	assert.Equal(t, "/* one */", tree.TriviaText(b.Trailing[1]))
	assert.Equal(t, TriviaWhitespace, b.Trailing[2].Kind)
}

func TestPreorderSkipsChildren(t *testing.T) {
	t.Parallel()
	tree := mustParse(t, "type A = { (): { (): void } };\ntype B = { (): void };")

	var visited []NodeID
	for id := range tree.Preorder(tree.Root(), func(id NodeID) bool {
		return tree.Kind(id) != KindObjectType
	}) {
		if tree.Kind(id) == KindObjectType {
			visited = append(visited, id)
		}
	}
	require.Len(t, visited, 2)
	assert.Equal(t, "{ (): { (): void } }", tree.Text(visited[0]))
	assert.Equal(t, "{ (): void }", tree.Text(visited[1]))

	assert.Len(t, find(tree, KindObjectType), 3)
	assert.True(t, tree.Contains(tree.Root(), KindCallSignature))
	assert.False(t, tree.Contains(tree.Root(), KindBogus))
}

func TestPreorderStopsEarly(t *testing.T) {
	t.Parallel()
	tree := mustParse(t, "type A = B;\ntype C = D;")
	count := 0
	for range tree.Preorder(tree.Root(), nil) {
		count++
		if count == 2 {
			break
		}
	}
	assert.Equal(t, 2, count)
}
