package sema

import (
	"nilan/ast"
	"nilan/internal/diagnostic"
	"nilan/token"
)

// errorAt builds an error-severity diagnostic anchored at span, the
// analyser's equivalent of the parser's diagnostic.New(span, message).
func errorAt(span token.Span, message string) error {
	return diagnostic.New(span, message)
}

// unifyErr reports a types.Unify failure (which carries no position of
// its own) as a diagnostic anchored at span.
func unifyErr(span token.Span, err error) error {
	return diagnostic.New(span, err.Error())
}

// exprSpan recovers the source span covered by expr. Nodes that carry
// their own Span field report it directly; nodes built purely from
// tokens and sub-expressions join the spans of their parts.
func exprSpan(expr ast.Expression) token.Span {
	switch e := expr.(type) {
	case ast.Boolean:
		return e.Span
	case ast.Number:
		return e.Span
	case ast.String:
		return e.Span
	case ast.Identifier:
		return e.Name.Span
	case ast.Array:
		return e.Span
	case ast.Access:
		return exprSpan(e.Target).Join(e.Name.Span)
	case ast.Assignment:
		return e.Name.Span.Join(exprSpan(e.Value))
	case ast.And:
		return exprSpan(e.Left).Join(exprSpan(e.Right))
	case ast.Or:
		return exprSpan(e.Left).Join(exprSpan(e.Right))
	case ast.Operation:
		return exprSpan(e.Left).Join(exprSpan(e.Right))
	case ast.Unary:
		return e.Operator.Span.Join(exprSpan(e.Right))
	case ast.Grouping:
		return exprSpan(e.Expression)
	case ast.FunctionCall:
		return e.Span
	case ast.Variable:
		return e.Name.Span.Join(exprSpan(e.Initializer))
	case ast.ParseError:
		return e.Span
	default:
		return token.Span{}
	}
}
