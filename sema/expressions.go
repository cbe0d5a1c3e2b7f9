package sema

import (
	"fmt"

	"nilan/ast"
	"nilan/internal/diagnostic"
	"nilan/token"
	"nilan/types"
)

func (b *bodyAnalyser) translateExpression(expr ast.Expression, varEnv types.VariableEnv) (Typed, error) {
	switch e := expr.(type) {
	case ast.Boolean:
		return Typed{Expression: e, Type: types.Mono(types.Bool)}, nil

	case ast.Number:
		return Typed{Expression: e, Type: types.Mono(types.Number)}, nil

	case ast.String:
		return Typed{Expression: e, Type: types.Mono(types.String)}, nil

	case ast.Identifier:
		t, ok := varEnv[e.Name.Lexeme]
		if !ok {
			return Typed{}, errorAt(e.Name.Span, fmt.Sprintf("undefined variable %q", e.Name.Lexeme))
		}
		return Typed{Expression: e, Type: t}, nil

	case ast.Array:
		if len(e.Elements) == 0 {
			return Typed{}, errorAt(e.Span, "array literal may not be empty")
		}
		first, err := b.translateExpression(e.Elements[0], varEnv)
		if err != nil {
			return Typed{}, err
		}
		for _, el := range e.Elements[1:] {
			typed, err := b.translateExpression(el, varEnv)
			if err != nil {
				return Typed{}, err
			}
			if err := types.Unify(first.Type, typed.Type); err != nil {
				return Typed{}, diagnostic.New(exprSpan(el), err.Error()).
					WithLabel(exprSpan(e.Elements[0]), "element type established here")
			}
		}
		return Typed{Expression: e, Type: types.Apply{Constructor: types.Array, Arguments: []types.Type{first.Type}}}, nil

	case ast.Access:
		return Typed{}, errorAt(e.Name.Span, "field access is not supported")

	case ast.Assignment:
		existing, ok := varEnv[e.Name.Lexeme]
		if !ok {
			return Typed{}, errorAt(e.Name.Span, fmt.Sprintf("undefined variable %q", e.Name.Lexeme))
		}
		value, err := b.translateExpression(e.Value, varEnv)
		if err != nil {
			return Typed{}, err
		}
		if err := types.Unify(existing, value.Type); err != nil {
			return Typed{}, diagnostic.New(exprSpan(e.Value), err.Error()).
				WithLabel(e.Name.Span, fmt.Sprintf("%q declared with a different type", e.Name.Lexeme))
		}
		return Typed{Expression: e, Type: existing}, nil

	case ast.And:
		return b.translateLogical(e.Left, e.Right, e, varEnv)

	case ast.Or:
		return b.translateLogical(e.Left, e.Right, e, varEnv)

	case ast.Operation:
		return b.translateOperation(e, varEnv)

	case ast.Unary:
		return b.translateUnary(e, varEnv)

	case ast.Grouping:
		return b.translateExpression(e.Expression, varEnv)

	case ast.FunctionCall:
		return b.translateFunctionCall(e, varEnv)

	case ast.Variable:
		initializer, err := b.translateExpression(e.Initializer, varEnv)
		if err != nil {
			return Typed{}, err
		}
		varEnv[e.Name.Lexeme] = initializer.Type
		return Typed{Expression: e, Type: initializer.Type}, nil

	case ast.ParseError:
		// Already reported by the parser; return a fresh variable so
		// translation of the surrounding expression can proceed without
		// a second, redundant diagnostic.
		return Typed{Expression: e, Type: types.Variable{Name: b.analyser.fresh()}}, nil

	default:
		return Typed{}, errorAt(token.Span{}, fmt.Sprintf("unsupported expression %T", expr))
	}
}

func (b *bodyAnalyser) translateLogical(left, right, node ast.Expression, varEnv types.VariableEnv) (Typed, error) {
	l, err := b.translateExpression(left, varEnv)
	if err != nil {
		return Typed{}, err
	}
	if err := types.Unify(l.Type, types.Mono(types.Bool)); err != nil {
		return Typed{}, unifyErr(exprSpan(left), err)
	}
	r, err := b.translateExpression(right, varEnv)
	if err != nil {
		return Typed{}, err
	}
	if err := types.Unify(r.Type, types.Mono(types.Bool)); err != nil {
		return Typed{}, unifyErr(exprSpan(right), err)
	}
	return Typed{Expression: node, Type: types.Mono(types.Bool)}, nil
}

func (b *bodyAnalyser) translateOperation(op ast.Operation, varEnv types.VariableEnv) (Typed, error) {
	left, err := b.translateExpression(op.Left, varEnv)
	if err != nil {
		return Typed{}, err
	}
	right, err := b.translateExpression(op.Right, varEnv)
	if err != nil {
		return Typed{}, err
	}

	switch op.Operator.TokenType {
	case token.ADD, token.SUB, token.MULT, token.DIV:
		// String concatenation is the one exception to arithmetic's
		// Number/Number -> Number rule.
		if op.Operator.TokenType == token.ADD {
			if err := types.Unify(left.Type, types.Mono(types.String)); err == nil {
				if err := types.Unify(right.Type, types.Mono(types.String)); err == nil {
					return Typed{Expression: op, Type: types.Mono(types.String)}, nil
				}
			}
		}
		if err := types.Unify(left.Type, types.Mono(types.Number)); err != nil {
			return Typed{}, unifyErr(exprSpan(op.Left), err)
		}
		if err := types.Unify(right.Type, types.Mono(types.Number)); err != nil {
			return Typed{}, unifyErr(exprSpan(op.Right), err)
		}
		return Typed{Expression: op, Type: types.Mono(types.Number)}, nil

	case token.LESS, token.LESS_EQUAL, token.LARGER, token.LARGER_EQUAL:
		if err := types.Unify(left.Type, types.Mono(types.Number)); err != nil {
			return Typed{}, unifyErr(exprSpan(op.Left), err)
		}
		if err := types.Unify(right.Type, types.Mono(types.Number)); err != nil {
			return Typed{}, unifyErr(exprSpan(op.Right), err)
		}
		return Typed{Expression: op, Type: types.Mono(types.Bool)}, nil

	case token.EQUAL_EQUAL, token.NOT_EQUAL:
		if err := types.Unify(left.Type, right.Type); err != nil {
			return Typed{}, diagnostic.New(exprSpan(op), err.Error()).
				WithLabel(exprSpan(op.Left), "left operand").
				WithLabel(exprSpan(op.Right), "right operand")
		}
		return Typed{Expression: op, Type: types.Mono(types.Bool)}, nil

	default:
		return Typed{}, errorAt(op.Operator.Span, fmt.Sprintf("unsupported operator %q", op.Operator.Lexeme))
	}
}

func (b *bodyAnalyser) translateUnary(u ast.Unary, varEnv types.VariableEnv) (Typed, error) {
	right, err := b.translateExpression(u.Right, varEnv)
	if err != nil {
		return Typed{}, err
	}
	switch u.Operator.TokenType {
	case token.BANG:
		if err := types.Unify(right.Type, types.Mono(types.Bool)); err != nil {
			return Typed{}, unifyErr(exprSpan(u.Right), err)
		}
		return Typed{Expression: u, Type: types.Mono(types.Bool)}, nil
	case token.SUB:
		if err := types.Unify(right.Type, types.Mono(types.Number)); err != nil {
			return Typed{}, unifyErr(exprSpan(u.Right), err)
		}
		return Typed{Expression: u, Type: types.Mono(types.Number)}, nil
	default:
		return Typed{}, errorAt(u.Operator.Span, fmt.Sprintf("unsupported unary operator %q", u.Operator.Lexeme))
	}
}

func (b *bodyAnalyser) translateFunctionCall(call ast.FunctionCall, varEnv types.VariableEnv) (Typed, error) {
	signature, ok := varEnv[call.Callee.Lexeme]
	if !ok {
		return Typed{}, errorAt(call.Callee.Span, fmt.Sprintf("undefined function %q", call.Callee.Lexeme))
	}

	explicitArgs := make([]types.Type, len(call.GenericArgs))
	for i, g := range call.GenericArgs {
		t, err := translateTypeName(g, b.analyser.typeEnv, call.Span)
		if err != nil {
			return Typed{}, err
		}
		explicitArgs[i] = t
	}

	resolved := signature
	if scheme, isScheme := signature.(types.PolymorphicType); isScheme {
		resolved = types.Instantiate(scheme, explicitArgs, b.analyser.fresh)
	}

	arrow, ok := resolved.(types.Apply)
	if !ok || arrow.Constructor != types.Arrow {
		return Typed{}, errorAt(call.Callee.Span, fmt.Sprintf("%q is not callable", call.Callee.Lexeme))
	}
	paramTypes := arrow.Arguments[:len(arrow.Arguments)-1]
	returnType := arrow.Arguments[len(arrow.Arguments)-1]

	if len(call.Arguments) != len(paramTypes) {
		return Typed{}, errorAt(call.Span, fmt.Sprintf("%q expects %d argument(s), got %d", call.Callee.Lexeme, len(paramTypes), len(call.Arguments)))
	}
	for i, argExpr := range call.Arguments {
		arg, err := b.translateExpression(argExpr, varEnv)
		if err != nil {
			return Typed{}, err
		}
		if err := types.Unify(arg.Type, paramTypes[i]); err != nil {
			return Typed{}, diagnostic.New(exprSpan(argExpr), err.Error()).
				WithLabel(call.Callee.Span, fmt.Sprintf("in call to %q", call.Callee.Lexeme))
		}
	}

	return Typed{Expression: call, Type: returnType}, nil
}
