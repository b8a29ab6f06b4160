package syntax

// Kind is the closed set of node variants.
type Kind uint8

const (
	KindInvalid Kind = iota

	// Statements.
	KindModule
	KindInterfaceDeclaration
	KindInterfaceBody
	KindHeritageClause
	KindTypeAliasDeclaration
	KindFunctionDeclaration
	KindVariableStatement
	KindVariableDeclarator
	KindClassDeclaration
	KindClassBody
	KindClassProperty
	KindClassMethod
	KindNamespaceDeclaration
	KindBlock
	KindOpaqueStatement

	// Expression constructs that carry type syntax.
	KindArrowFunction
	KindFunctionExpression
	KindObjectMethod
	KindTypeAssertion

	// Type members.
	KindCallSignature
	KindConstructSignature
	KindMethodSignature
	KindPropertySignature
	KindIndexSignature

	// Types.
	KindObjectType
	KindMappedType
	KindFunctionType
	KindConstructorType
	KindReferenceType
	KindUnionType
	KindIntersectionType
	KindArrayType
	KindIndexedAccessType
	KindTupleType
	KindParenthesizedType
	KindLiteralType
	KindThisType
	KindTypeQuery
	KindTypeOperator
	KindInferType
	KindConditionalType
	KindTypePredicate
	KindTemplateLiteralType

	// Shared pieces.
	KindIdentifier
	KindTypeParameterList
	KindTypeParameter
	KindTypeArguments
	KindParameterList
	KindParameter
	KindTypeAnnotation

	// KindBogus covers a region that could not be parsed.
	KindBogus

	kindCount
)

var kindNames = [...]string{
	KindInvalid:              "Invalid",
	KindModule:               "Module",
	KindInterfaceDeclaration: "InterfaceDeclaration",
	KindInterfaceBody:        "InterfaceBody",
	KindHeritageClause:       "HeritageClause",
	KindTypeAliasDeclaration: "TypeAliasDeclaration",
	KindFunctionDeclaration:  "FunctionDeclaration",
	KindVariableStatement:    "VariableStatement",
	KindVariableDeclarator:   "VariableDeclarator",
	KindClassDeclaration:     "ClassDeclaration",
	KindClassBody:            "ClassBody",
	KindClassProperty:        "ClassProperty",
	KindClassMethod:          "ClassMethod",
	KindNamespaceDeclaration: "NamespaceDeclaration",
	KindBlock:                "Block",
	KindOpaqueStatement:      "OpaqueStatement",
	KindArrowFunction:        "ArrowFunction",
	KindFunctionExpression:   "FunctionExpression",
	KindObjectMethod:         "ObjectMethod",
	KindTypeAssertion:        "TypeAssertion",
	KindCallSignature:        "CallSignature",
	KindConstructSignature:   "ConstructSignature",
	KindMethodSignature:      "MethodSignature",
	KindPropertySignature:    "PropertySignature",
	KindIndexSignature:       "IndexSignature",
	KindObjectType:           "ObjectType",
	KindMappedType:           "MappedType",
	KindFunctionType:         "FunctionType",
	KindConstructorType:      "ConstructorType",
	KindReferenceType:        "ReferenceType",
	KindUnionType:            "UnionType",
	KindIntersectionType:     "IntersectionType",
	KindArrayType:            "ArrayType",
	KindIndexedAccessType:    "IndexedAccessType",
	KindTupleType:            "TupleType",
	KindParenthesizedType:    "ParenthesizedType",
	KindLiteralType:          "LiteralType",
	KindThisType:             "ThisType",
	KindTypeQuery:            "TypeQuery",
	KindTypeOperator:         "TypeOperator",
	KindInferType:            "InferType",
	KindConditionalType:      "ConditionalType",
	KindTypePredicate:        "TypePredicate",
	KindTemplateLiteralType:  "TemplateLiteralType",
	KindIdentifier:           "Identifier",
	KindTypeParameterList:    "TypeParameterList",
	KindTypeParameter:        "TypeParameter",
	KindTypeArguments:        "TypeArguments",
	KindParameterList:        "ParameterList",
	KindParameter:            "Parameter",
	KindTypeAnnotation:       "TypeAnnotation",
	KindBogus:                "Bogus",
}

func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return "Invalid"
}

// IsTypeMember reports whether k can appear directly inside an object type
// or interface body.
func (k Kind) IsTypeMember() bool {
	switch k {
	case KindCallSignature, KindConstructSignature, KindMethodSignature,
		KindPropertySignature, KindIndexSignature, KindBogus:
		return true
	default:
		return false
	}
}

// recoverable kinds collapse into Bogus when an error is recorded while
// they are open, so consumers never see a half-parsed type construct.
func (k Kind) recoverable() bool {
	switch k {
	case KindInterfaceDeclaration, KindTypeAliasDeclaration,
		KindCallSignature, KindConstructSignature, KindMethodSignature,
		KindPropertySignature, KindIndexSignature,
		KindObjectType, KindMappedType, KindFunctionType, KindConstructorType,
		KindTupleType, KindParenthesizedType, KindTypeArguments,
		KindTypeParameterList, KindParameter, KindIndexedAccessType:
		return true
	default:
		return false
	}
}

// Flags records modifier keywords present on a node.
type Flags uint16

const (
	FlagExport Flags = 1 << iota
	FlagDeclare
	FlagDefault
	FlagOptional
	FlagRest
	FlagReadonly
	FlagAbstract
	FlagStatic
	FlagAsync
	FlagAsserts
)

// Has reports whether all bits of f2 are set.
func (f Flags) Has(f2 Flags) bool {
	return f&f2 == f2
}
