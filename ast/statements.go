// statements.go contains all statement AST nodes. A statement node does
// not itself produce a value.
package ast

import "nilan/token"

// TypeName is the untyped, parsed representation of a typename from the
// surface grammar: either a simple (possibly generic) name, or a
// function type written "fn(T, U) -> V". It is translated into a
// types.Type by the semantic analyser.
type TypeName struct {
	Name       string     // the base identifier, e.g. "Number"; empty when IsFunction
	Args       []TypeName // generic arguments, e.g. the "T" in "Array[T]"
	IsFunction bool
	ParamTypes []TypeName
	ReturnType *TypeName
}

// Param is a single formal parameter: a name and its declared type.
type Param struct {
	Name     token.Token
	TypeName TypeName
}

// ExpressionStmt is a statement consisting of a single expression whose
// value is discarded, e.g. "foo + bar;".
type ExpressionStmt struct {
	Expression Expression
}

func (e ExpressionStmt) Accept(v StmtVisitor) any { return v.VisitExpressionStmt(e) }

// PrintStmt outputs the result of evaluating Expression.
type PrintStmt struct {
	Expression Expression
}

func (p PrintStmt) Accept(v StmtVisitor) any { return v.VisitPrintStmt(p) }

// ReturnStmt returns from the enclosing function. Value is nil for a
// bare "return;".
type ReturnStmt struct {
	Value Expression
	Span  token.Span
}

func (r ReturnStmt) Accept(v StmtVisitor) any { return v.VisitReturnStmt(r) }

// BlockStmt is a sequence of statements forming a new lexical scope.
type BlockStmt struct {
	Statements []Stmt
}

func (b BlockStmt) Accept(v StmtVisitor) any { return v.VisitBlockStmt(b) }

// IfElseStmt is a conditional. Else is nil when no else-branch was
// written.
type IfElseStmt struct {
	Predicate Expression
	Then      BlockStmt
	Else      *BlockStmt
}

func (i IfElseStmt) Accept(v StmtVisitor) any { return v.VisitIfElseStmt(i) }

// WhileStmt repeats Body for as long as Predicate evaluates true.
type WhileStmt struct {
	Predicate Expression
	Body      BlockStmt
}

func (w WhileStmt) Accept(v StmtVisitor) any { return v.VisitWhileStmt(w) }

// FunctionDeclaration declares a function with optional generic formal
// type parameters, value parameters, an optional return type (Void by
// default), and a body. Function declarations may not nest.
type FunctionDeclaration struct {
	Name          token.Token
	GenericParams []token.Token
	Params        []Param
	ReturnType    *TypeName
	Body          BlockStmt
}

func (f FunctionDeclaration) Accept(v StmtVisitor) any { return v.VisitFunctionDeclaration(f) }

// ExternFunctionDeclaration declares a function with no body, available
// for calls and emitted as an unresolved symbol by the (out-of-core)
// native backend.
type ExternFunctionDeclaration struct {
	Name       token.Token
	Params     []Param
	ReturnType *TypeName
}

func (e ExternFunctionDeclaration) Accept(v StmtVisitor) any {
	return v.VisitExternFunctionDeclaration(e)
}

// Declaration is the top-level wrapper produced by parsing a program.
// Declarations may not nest; currently the only variant is Function,
// wrapping a FunctionDeclaration or an ExternFunctionDeclaration. The
// parser also wraps a stray top-level statement in a Declaration; the
// semantic analyser and the bytecode compiler reject it.
type Declaration struct {
	Function Stmt
}
