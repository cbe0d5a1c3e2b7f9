package sema

import (
	"nilan/ast"
	"nilan/types"
)

// Typed pairs a surface expression with the type the analyser inferred
// for it. Typed values exist only while the analyser translates a body:
// Analyse does not return them, and the bytecode compiler works from
// the untyped AST.
type Typed struct {
	Expression ast.Expression
	Type       types.Type
}

// TypedDeclaration is a top-level declaration together with the type
// environment entry it contributed (its own, possibly polymorphic,
// signature).
type TypedDeclaration struct {
	Declaration ast.Declaration
	Signature   types.Type
}
