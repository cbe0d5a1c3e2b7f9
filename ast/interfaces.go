// interfaces.go contains the visitor interfaces that any code traversing
// expression and statement AST nodes must implement, along with the
// Expression and Stmt interfaces all AST nodes satisfy.
package ast

// ExpressionVisitor is the interface for operating on all Expression AST
// nodes. A type wanting to perform an operation over expressions (an
// ast printer, the semantic analyser, the bytecode compiler) implements
// this interface; each Visit method corresponds to one Expression
// variant named in the data model.
type ExpressionVisitor interface {
	VisitBoolean(b Boolean) any
	VisitNumber(n Number) any
	VisitString(s String) any
	VisitIdentifier(id Identifier) any
	VisitArray(arr Array) any
	VisitAccess(access Access) any
	VisitAssignment(assign Assignment) any
	VisitAnd(and And) any
	VisitOr(or Or) any
	VisitOperation(op Operation) any
	VisitUnary(unary Unary) any
	VisitGrouping(grouping Grouping) any
	VisitFunctionCall(call FunctionCall) any
	VisitVariable(v Variable) any
	VisitParseError(p ParseError) any
}

// StmtVisitor is the interface for operating on all Statement AST nodes.
type StmtVisitor interface {
	VisitExpressionStmt(stmt ExpressionStmt) any
	VisitPrintStmt(stmt PrintStmt) any
	VisitReturnStmt(stmt ReturnStmt) any
	VisitBlockStmt(stmt BlockStmt) any
	VisitIfElseStmt(stmt IfElseStmt) any
	VisitWhileStmt(stmt WhileStmt) any
	VisitFunctionDeclaration(stmt FunctionDeclaration) any
	VisitExternFunctionDeclaration(stmt ExternFunctionDeclaration) any
}

// Stmt is the base interface for all statement nodes in the AST.
// Each statement type implements Accept, dispatching to the matching
// Visit method on a StmtVisitor.
type Stmt interface {
	Accept(v StmtVisitor) any
}

// Expression is the core interface for all expression nodes in the AST.
// Accept dispatches to the matching Visit method on an ExpressionVisitor,
// decoupling behaviour (interpretation, type checking, compiling) from
// the node data itself.
type Expression interface {
	Accept(v ExpressionVisitor) any
}
