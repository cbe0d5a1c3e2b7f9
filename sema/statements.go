package sema

import (
	"fmt"

	"nilan/ast"
	"nilan/token"
	"nilan/types"
)

// bodyAnalyser carries the state specific to translating one function
// body.
type bodyAnalyser struct {
	analyser *Analyser
}

func (b *bodyAnalyser) translateBlock(block ast.BlockStmt, varEnv types.VariableEnv) error {
	// Each block gets its own cloned scope: bindings introduced inside
	// (by a let expression) never leak back out to the caller's scope.
	scoped := varEnv.Clone()
	for _, stmt := range block.Statements {
		if err := b.translateStatement(stmt, scoped); err != nil {
			return err
		}
	}
	return nil
}

func (b *bodyAnalyser) translateStatement(stmt ast.Stmt, varEnv types.VariableEnv) error {
	switch s := stmt.(type) {
	case ast.ExpressionStmt:
		_, err := b.translateExpression(s.Expression, varEnv)
		return err

	case ast.PrintStmt:
		_, err := b.translateExpression(s.Expression, varEnv)
		return err

	case ast.ReturnStmt:
		// A return's operand is only translated for its own sake (to
		// resolve identifiers and catch ill-typed sub-expressions): it
		// is not unified against the enclosing function's declared or
		// defaulted return type.
		if s.Value == nil {
			return nil
		}
		_, err := b.translateExpression(s.Value, varEnv)
		return err

	case ast.BlockStmt:
		return b.translateBlock(s, varEnv)

	case ast.IfElseStmt:
		predicate, err := b.translateExpression(s.Predicate, varEnv)
		if err != nil {
			return err
		}
		if err := types.Unify(predicate.Type, types.Mono(types.Bool)); err != nil {
			return unifyErr(exprSpan(s.Predicate), err)
		}
		if err := b.translateBlock(s.Then, varEnv); err != nil {
			return err
		}
		if s.Else != nil {
			return b.translateBlock(*s.Else, varEnv)
		}
		return nil

	case ast.WhileStmt:
		predicate, err := b.translateExpression(s.Predicate, varEnv)
		if err != nil {
			return err
		}
		if err := types.Unify(predicate.Type, types.Mono(types.Bool)); err != nil {
			return unifyErr(exprSpan(s.Predicate), err)
		}
		return b.translateBlock(s.Body, varEnv)

	case ast.FunctionDeclaration:
		return errorAt(s.Name.Span, "function declarations may not nest")

	case ast.ExternFunctionDeclaration:
		return errorAt(s.Name.Span, "function declarations may not nest")

	default:
		return errorAt(token.Span{}, fmt.Sprintf("unsupported statement %T", stmt))
	}
}
