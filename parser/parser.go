// Package parser implements nilan's front end: recursive-descent
// statements and Pratt-precedence expressions, producing the ast
// package's untyped AST. This is the single front end named in the
// design notes — the source historically grew a second, grammar-driven
// parser alongside this one; that duplication is not reproduced here.
package parser

import (
	"fmt"
	"strconv"

	"github.com/hashicorp/go-multierror"

	"nilan/ast"
	"nilan/internal/diagnostic"
	"nilan/token"
)

// Precedence orders operator binding strength from loosest to tightest.
type Precedence int

const (
	PrecNone Precedence = iota
	PrecAssignment
	PrecOr
	PrecAnd
	PrecEquality
	PrecComparison
	PrecTerm
	PrecFactor
	PrecUnary
	PrecCall
	PrecPrimary
)

type prefixFn func(p *Parser) (ast.Expression, error)
type infixFn func(p *Parser, left ast.Expression) (ast.Expression, error)

type parseRule struct {
	prefix     prefixFn
	infix      infixFn
	precedence Precedence
}

// rules is the Pratt parse-rule table: for each token type, the prefix
// handler to call when it starts an expression, the infix handler to
// call when it follows one, and its left-binding precedence.
var rules map[token.TokenType]parseRule

func init() {
	rules = map[token.TokenType]parseRule{
		token.LPA:          {prefix: (*Parser).grouping, infix: (*Parser).call, precedence: PrecCall},
		token.LBRACKET:     {prefix: (*Parser).array, precedence: PrecNone},
		token.DOT:          {infix: (*Parser).access, precedence: PrecCall},
		token.SUB:          {prefix: (*Parser).unary, infix: (*Parser).binary, precedence: PrecTerm},
		token.ADD:          {infix: (*Parser).binary, precedence: PrecTerm},
		token.BANG:         {prefix: (*Parser).unary, precedence: PrecUnary},
		token.MULT:         {infix: (*Parser).binary, precedence: PrecFactor},
		token.DIV:          {infix: (*Parser).binary, precedence: PrecFactor},
		token.NOT_EQUAL:    {infix: (*Parser).binary, precedence: PrecEquality},
		token.EQUAL_EQUAL:  {infix: (*Parser).binary, precedence: PrecEquality},
		token.LESS:         {infix: (*Parser).binary, precedence: PrecComparison},
		token.LESS_EQUAL:   {infix: (*Parser).binary, precedence: PrecComparison},
		token.LARGER:       {infix: (*Parser).binary, precedence: PrecComparison},
		token.LARGER_EQUAL: {infix: (*Parser).binary, precedence: PrecComparison},
		token.AND:          {infix: (*Parser).and, precedence: PrecAnd},
		token.OR:           {infix: (*Parser).or, precedence: PrecOr},
		token.ASSIGN:       {infix: (*Parser).assign, precedence: PrecAssignment},
		token.NUMBER:       {prefix: (*Parser).number, precedence: PrecNone},
		token.STRING:       {prefix: (*Parser).string, precedence: PrecNone},
		token.TRUE:         {prefix: (*Parser).literalBool, precedence: PrecNone},
		token.FALSE:        {prefix: (*Parser).literalBool, precedence: PrecNone},
		token.IDENTIFIER:   {prefix: (*Parser).identifier, precedence: PrecNone},
	}
}

func (p *Parser) ruleFor(tt token.TokenType) parseRule {
	return rules[tt]
}

// Parser turns a token stream into a slice of declarations plus any
// diagnostics accumulated along the way.
type Parser struct {
	tokens      []token.Token
	position    int
	diagnostics []diagnostic.Diagnostic
	panicMode   bool
}

// Make constructs a new Parser over the given tokens.
func Make(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens, position: 0}
}

// Diagnostics returns every diagnostic recorded during Parse.
func (p *Parser) Diagnostics() []diagnostic.Diagnostic {
	return p.diagnostics
}

// Print prints the AST as prettified JSON to standard output.
func (p *Parser) Print(declarations []ast.Declaration) {
	if _, err := PrintASTJSON(declarations); err != nil {
		fmt.Println("error producing AST JSON:", err)
	}
}

// PrintToFile writes the AST for the provided declarations to a JSON
// file at the given path.
func (p *Parser) PrintToFile(declarations []ast.Declaration, path string) error {
	return WriteASTJSONToFile(declarations, path)
}

func (p *Parser) peek() token.Token     { return p.tokens[p.position] }
func (p *Parser) previous() token.Token { return p.tokens[p.position-1] }

func (p *Parser) advance() token.Token {
	if !p.isFinished() {
		p.position++
	}
	return p.previous()
}

func (p *Parser) isFinished() bool {
	return p.peek().TokenType == token.EOF
}

func (p *Parser) checkType(tt token.TokenType) bool {
	return !p.isFinished() && p.peek().TokenType == tt
}

func (p *Parser) isMatch(tokenTypes ...token.TokenType) bool {
	for _, tt := range tokenTypes {
		if p.checkType(tt) {
			p.advance()
			return true
		}
	}
	return false
}

// Parse parses the whole token stream into declarations, synchronizing
// past each parse error to the next statement boundary so independent
// errors are all reported. The returned error aggregates every recorded
// diagnostic via go-multierror; it is nil when parsing succeeded
// cleanly.
func (p *Parser) Parse() ([]ast.Declaration, error) {
	var declarations []ast.Declaration

	for !p.isFinished() {
		decl, err := p.declaration()
		if err != nil {
			p.report(err)
			p.synchronize()
			continue
		}
		declarations = append(declarations, decl)
	}

	return declarations, p.aggregatedError()
}

func (p *Parser) aggregatedError() error {
	if len(p.diagnostics) == 0 {
		return nil
	}
	var result *multierror.Error
	for _, d := range p.diagnostics {
		result = multierror.Append(result, d)
	}
	return result
}

// report records a diagnostic for err, suppressing cascades while
// panicMode is set.
func (p *Parser) report(err error) {
	if p.panicMode {
		return
	}
	p.panicMode = true

	var span token.Span
	message := err.Error()
	if se, ok := err.(SyntaxError); ok {
		span = se.Span
	}
	p.diagnostics = append(p.diagnostics, diagnostic.New(span, message))
}

// synchronize discards tokens until a likely statement boundary, so
// the next declaration can be parsed independently.
func (p *Parser) synchronize() {
	p.panicMode = false
	for !p.isFinished() {
		if p.previous().TokenType == token.SEMICOLON {
			return
		}
		switch p.peek().TokenType {
		case token.FUNC, token.EXTERN, token.IF, token.WHILE, token.RETURN, token.LET, token.LCUR, token.PRINT:
			return
		}
		p.advance()
	}
}

// declaration parses a top-level function (optionally "extern")
// declaration. A stray statement at top level is still parsed (for
// resilience) and wrapped as a Declaration; the semantic analyser
// rejects anything that is not a function.
func (p *Parser) declaration() (ast.Declaration, error) {
	if p.isMatch(token.EXTERN) {
		stmt, err := p.externFunctionDeclaration()
		if err != nil {
			return ast.Declaration{}, err
		}
		return ast.Declaration{Function: stmt}, nil
	}
	if p.isMatch(token.FUNC) {
		stmt, err := p.functionDeclaration()
		if err != nil {
			return ast.Declaration{}, err
		}
		return ast.Declaration{Function: stmt}, nil
	}

	stmt, err := p.statement()
	if err != nil {
		return ast.Declaration{}, err
	}
	return ast.Declaration{Function: stmt}, nil
}

func (p *Parser) functionDeclaration() (ast.Stmt, error) {
	name, err := p.consume(token.IDENTIFIER, "expected function name")
	if err != nil {
		return nil, err
	}

	generics, err := p.genericParams()
	if err != nil {
		return nil, err
	}

	params, err := p.paramList()
	if err != nil {
		return nil, err
	}

	returnType, err := p.optionalReturnType()
	if err != nil {
		return nil, err
	}

	if _, err := p.consume(token.LCUR, "expected '{' to begin function body"); err != nil {
		return nil, err
	}
	body, err := p.blockStatement()
	if err != nil {
		return nil, err
	}

	return ast.FunctionDeclaration{
		Name:          name,
		GenericParams: generics,
		Params:        params,
		ReturnType:    returnType,
		Body:          body,
	}, nil
}

func (p *Parser) externFunctionDeclaration() (ast.Stmt, error) {
	if _, err := p.consume(token.FUNC, "expected 'fn' after 'extern'"); err != nil {
		return nil, err
	}
	name, err := p.consume(token.IDENTIFIER, "expected function name")
	if err != nil {
		return nil, err
	}
	params, err := p.paramList()
	if err != nil {
		return nil, err
	}
	returnType, err := p.optionalReturnType()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.SEMICOLON, "expected ';' after extern function declaration"); err != nil {
		return nil, err
	}
	return ast.ExternFunctionDeclaration{Name: name, Params: params, ReturnType: returnType}, nil
}

func (p *Parser) genericParams() ([]token.Token, error) {
	if !p.isMatch(token.LBRACKET) {
		return nil, nil
	}
	var params []token.Token
	for {
		name, err := p.consume(token.IDENTIFIER, "expected generic type parameter name")
		if err != nil {
			return nil, err
		}
		params = append(params, name)
		if !p.isMatch(token.COMMA) {
			break
		}
	}
	if _, err := p.consume(token.RBRACKET, "expected ']' after generic type parameters"); err != nil {
		return nil, err
	}
	return params, nil
}

func (p *Parser) paramList() ([]ast.Param, error) {
	if _, err := p.consume(token.LPA, "expected '(' after function name"); err != nil {
		return nil, err
	}
	var params []ast.Param
	if !p.checkType(token.RPA) {
		for {
			name, err := p.consume(token.IDENTIFIER, "expected parameter name")
			if err != nil {
				return nil, err
			}
			if _, err := p.consume(token.COLON, "expected ':' after parameter name"); err != nil {
				return nil, err
			}
			tn, err := p.typeName()
			if err != nil {
				return nil, err
			}
			params = append(params, ast.Param{Name: name, TypeName: tn})
			if !p.isMatch(token.COMMA) {
				break
			}
		}
	}
	if _, err := p.consume(token.RPA, "expected ')' after parameters"); err != nil {
		return nil, err
	}
	return params, nil
}

func (p *Parser) optionalReturnType() (*ast.TypeName, error) {
	if !p.isMatch(token.ARROW) {
		return nil, nil
	}
	tn, err := p.typeName()
	if err != nil {
		return nil, err
	}
	return &tn, nil
}

// typeName parses a typename: IDENT ("[" typename,... "]")? or a
// function type "fn(" typenames? ")" "->" typename.
func (p *Parser) typeName() (ast.TypeName, error) {
	if p.isMatch(token.FUNC) {
		if _, err := p.consume(token.LPA, "expected '(' in function type"); err != nil {
			return ast.TypeName{}, err
		}
		var params []ast.TypeName
		if !p.checkType(token.RPA) {
			for {
				pt, err := p.typeName()
				if err != nil {
					return ast.TypeName{}, err
				}
				params = append(params, pt)
				if !p.isMatch(token.COMMA) {
					break
				}
			}
		}
		if _, err := p.consume(token.RPA, "expected ')' in function type"); err != nil {
			return ast.TypeName{}, err
		}
		if _, err := p.consume(token.ARROW, "expected '->' in function type"); err != nil {
			return ast.TypeName{}, err
		}
		ret, err := p.typeName()
		if err != nil {
			return ast.TypeName{}, err
		}
		return ast.TypeName{IsFunction: true, ParamTypes: params, ReturnType: &ret}, nil
	}

	name, err := p.consume(token.IDENTIFIER, "expected a type name")
	if err != nil {
		return ast.TypeName{}, err
	}
	tn := ast.TypeName{Name: name.Lexeme}
	if p.isMatch(token.LBRACKET) {
		for {
			arg, err := p.typeName()
			if err != nil {
				return ast.TypeName{}, err
			}
			tn.Args = append(tn.Args, arg)
			if !p.isMatch(token.COMMA) {
				break
			}
		}
		if _, err := p.consume(token.RBRACKET, "expected ']' after generic type arguments"); err != nil {
			return ast.TypeName{}, err
		}
	}
	return tn, nil
}

// statement dispatches on the leading token: return, if, while, block,
// let, print (supplemented), otherwise an expression statement.
func (p *Parser) statement() (ast.Stmt, error) {
	switch {
	case p.isMatch(token.RETURN):
		return p.returnStatement()
	case p.isMatch(token.IF):
		return p.ifStatement()
	case p.isMatch(token.WHILE):
		return p.whileStatement()
	case p.isMatch(token.LCUR):
		return p.blockStatement()
	case p.isMatch(token.LET):
		return p.letStatement()
	case p.isMatch(token.PRINT):
		return p.printStatement()
	default:
		return p.expressionStatement()
	}
}

func (p *Parser) returnStatement() (ast.Stmt, error) {
	keyword := p.previous()
	var value ast.Expression
	if !p.checkType(token.SEMICOLON) {
		var err error
		value, err = p.expression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(token.SEMICOLON, "expected ';' after return statement"); err != nil {
		return nil, err
	}
	return ast.ReturnStmt{Value: value, Span: keyword.Span}, nil
}

func (p *Parser) ifStatement() (ast.Stmt, error) {
	predicate, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.LCUR, "expected '{' after if predicate"); err != nil {
		return nil, err
	}
	thenBlock, err := p.blockStatement()
	if err != nil {
		return nil, err
	}

	var elseBlock *ast.BlockStmt
	if p.isMatch(token.ELSE) {
		if _, err := p.consume(token.LCUR, "expected '{' after else"); err != nil {
			return nil, err
		}
		block, err := p.blockStatement()
		if err != nil {
			return nil, err
		}
		elseBlock = &block
	}

	return ast.IfElseStmt{Predicate: predicate, Then: thenBlock, Else: elseBlock}, nil
}

func (p *Parser) whileStatement() (ast.Stmt, error) {
	predicate, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.LCUR, "expected '{' after while predicate"); err != nil {
		return nil, err
	}
	body, err := p.blockStatement()
	if err != nil {
		return nil, err
	}
	return ast.WhileStmt{Predicate: predicate, Body: body}, nil
}

func (p *Parser) letStatement() (ast.Stmt, error) {
	name, err := p.consume(token.IDENTIFIER, "expected variable name after 'let'")
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.ASSIGN, "expected '=' after variable name"); err != nil {
		return nil, err
	}
	initializer, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.SEMICOLON, "expected ';' after variable declaration"); err != nil {
		return nil, err
	}
	return ast.ExpressionStmt{Expression: ast.Variable{Name: name, Initializer: initializer}}, nil
}

func (p *Parser) printStatement() (ast.Stmt, error) {
	expr, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.SEMICOLON, "expected ';' after print statement"); err != nil {
		return nil, err
	}
	return ast.PrintStmt{Expression: expr}, nil
}

func (p *Parser) expressionStatement() (ast.Stmt, error) {
	expr, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.SEMICOLON, "expected ';' after expression"); err != nil {
		return nil, err
	}
	return ast.ExpressionStmt{Expression: expr}, nil
}

func (p *Parser) blockStatement() (ast.BlockStmt, error) {
	var statements []ast.Stmt
	for !p.checkType(token.RCUR) && !p.isFinished() {
		decl, err := p.declaration()
		if err != nil {
			return ast.BlockStmt{}, err
		}
		statements = append(statements, decl.Function)
	}
	if _, err := p.consume(token.RCUR, "expected '}' to close block"); err != nil {
		return ast.BlockStmt{}, err
	}
	return ast.BlockStmt{Statements: statements}, nil
}

// expression parses with the Pratt algorithm starting at the lowest
// precedence, Assignment.
func (p *Parser) expression() (ast.Expression, error) {
	return p.parsePrecedence(PrecAssignment)
}

func (p *Parser) parsePrecedence(precedence Precedence) (ast.Expression, error) {
	tok := p.advance()
	rule := p.ruleFor(tok.TokenType)
	if rule.prefix == nil {
		return nil, CreateSyntaxError(tok.Span, tok.Line, tok.Column, "expected an expression")
	}

	left, err := rule.prefix(p)
	if err != nil {
		return nil, err
	}

	for !p.isFinished() {
		next := p.ruleFor(p.peek().TokenType)
		if precedence > next.precedence {
			break
		}
		if next.infix == nil {
			break
		}
		p.advance()
		left, err = next.infix(p, left)
		if err != nil {
			return nil, err
		}
	}

	return left, nil
}

func (p *Parser) grouping() (ast.Expression, error) {
	expr, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.RPA, "expected ')' after expression"); err != nil {
		return nil, err
	}
	return ast.Grouping{Expression: expr}, nil
}

func (p *Parser) array() (ast.Expression, error) {
	start := p.previous()
	var elements []ast.Expression
	if !p.checkType(token.RBRACKET) {
		for {
			elem, err := p.expression()
			if err != nil {
				return nil, err
			}
			elements = append(elements, elem)
			if !p.isMatch(token.COMMA) {
				break
			}
		}
	}
	end, err := p.consume(token.RBRACKET, "expected ']' after array elements")
	if err != nil {
		return nil, err
	}
	return ast.Array{Elements: elements, Span: start.Span.Join(end.Span)}, nil
}

func (p *Parser) unary() (ast.Expression, error) {
	operator := p.previous()
	right, err := p.parsePrecedence(PrecUnary)
	if err != nil {
		return nil, err
	}
	return ast.Unary{Operator: operator, Right: right}, nil
}

func (p *Parser) binary(left ast.Expression) (ast.Expression, error) {
	operator := p.previous()
	rule := p.ruleFor(operator.TokenType)
	right, err := p.parsePrecedence(rule.precedence + 1)
	if err != nil {
		return nil, err
	}
	return ast.Operation{Left: left, Operator: operator, Right: right}, nil
}

func (p *Parser) and(left ast.Expression) (ast.Expression, error) {
	right, err := p.parsePrecedence(PrecAnd + 1)
	if err != nil {
		return nil, err
	}
	return ast.And{Left: left, Right: right}, nil
}

func (p *Parser) or(left ast.Expression) (ast.Expression, error) {
	right, err := p.parsePrecedence(PrecOr + 1)
	if err != nil {
		return nil, err
	}
	return ast.Or{Left: left, Right: right}, nil
}

func (p *Parser) assign(left ast.Expression) (ast.Expression, error) {
	equals := p.previous()
	value, err := p.parsePrecedence(PrecAssignment)
	if err != nil {
		return nil, err
	}
	id, ok := left.(ast.Identifier)
	if !ok {
		return nil, CreateSyntaxError(equals.Span, equals.Line, equals.Column, "invalid assignment target")
	}
	return ast.Assignment{Name: id.Name, Value: value}, nil
}

func (p *Parser) access(left ast.Expression) (ast.Expression, error) {
	name, err := p.consume(token.IDENTIFIER, "expected property name after '.'")
	if err != nil {
		return nil, err
	}
	return ast.Access{Target: left, Name: name}, nil
}

// call parses the argument list of a plain (non-generic) function
// call. Calls with explicit generic arguments are parsed eagerly by
// identifier, since the generic-argument brackets bind tighter than
// any infix operator.
func (p *Parser) call(left ast.Expression) (ast.Expression, error) {
	id, ok := left.(ast.Identifier)
	if !ok {
		tok := p.previous()
		return nil, CreateSyntaxError(tok.Span, tok.Line, tok.Column, "only named functions can be called")
	}
	args, end, err := p.argumentList()
	if err != nil {
		return nil, err
	}
	return ast.FunctionCall{Callee: id.Name, Arguments: args, Span: id.Name.Span.Join(end.Span)}, nil
}

func (p *Parser) argumentList() ([]ast.Expression, token.Token, error) {
	var args []ast.Expression
	if !p.checkType(token.RPA) {
		for {
			arg, err := p.expression()
			if err != nil {
				return nil, token.Token{}, err
			}
			args = append(args, arg)
			if !p.isMatch(token.COMMA) {
				break
			}
		}
	}
	end, err := p.consume(token.RPA, "expected ')' after arguments")
	if err != nil {
		return nil, token.Token{}, err
	}
	return args, end, nil
}

func (p *Parser) number() (ast.Expression, error) {
	tok := p.previous()
	value, ok := tok.Literal.(float64)
	if !ok {
		var err error
		value, err = strconv.ParseFloat(tok.Lexeme, 64)
		if err != nil {
			return nil, CreateSyntaxError(tok.Span, tok.Line, tok.Column, "malformed number literal")
		}
	}
	return ast.Number{Value: value, Span: tok.Span}, nil
}

func (p *Parser) string() (ast.Expression, error) {
	tok := p.previous()
	value, _ := tok.Literal.(string)
	return ast.String{Value: value, Span: tok.Span}, nil
}

func (p *Parser) literalBool() (ast.Expression, error) {
	tok := p.previous()
	return ast.Boolean{Value: tok.TokenType == token.TRUE, Span: tok.Span}, nil
}

// identifier parses a bare identifier reference, or — if immediately
// followed by "[" — a call site with explicit generic type arguments
// ("name[T, U](args)"), per §4.2.
func (p *Parser) identifier() (ast.Expression, error) {
	name := p.previous()
	if !p.checkType(token.LBRACKET) {
		return ast.Identifier{Name: name}, nil
	}

	p.advance() // consume '['
	var generics []ast.TypeName
	for {
		tn, err := p.typeName()
		if err != nil {
			return nil, err
		}
		generics = append(generics, tn)
		if !p.isMatch(token.COMMA) {
			break
		}
	}
	if _, err := p.consume(token.RBRACKET, "expected ']' after generic type arguments"); err != nil {
		return nil, err
	}
	if _, err := p.consume(token.LPA, "expected '(' after generic type arguments"); err != nil {
		return nil, err
	}
	args, end, err := p.argumentList()
	if err != nil {
		return nil, err
	}
	return ast.FunctionCall{Callee: name, GenericArgs: generics, Arguments: args, Span: name.Span.Join(end.Span)}, nil
}

// consume advances past the current token if it matches tokenType,
// otherwise returns a SyntaxError.
func (p *Parser) consume(tokenType token.TokenType, errorMessage string) (token.Token, error) {
	if p.checkType(tokenType) {
		return p.advance(), nil
	}
	current := p.peek()
	return token.Token{}, CreateSyntaxError(current.Span, current.Line, current.Column, errorMessage)
}
