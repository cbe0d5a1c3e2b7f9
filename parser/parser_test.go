package parser

import (
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/require"

	"nilan/ast"
	"nilan/lexer"
)

func parseDeclarations(t *testing.T, source string) ([]ast.Declaration, error) {
	t.Helper()
	tokens := lexer.New(source).Scan()
	return Make(tokens).Parse()
}

func TestParseFunctionDeclaration(t *testing.T) {
	decls, err := parseDeclarations(t, `fn main() { return 1; }`)
	require.NoError(t, err)
	require.Len(t, decls, 1)

	fn, ok := decls[0].Function.(ast.FunctionDeclaration)
	require.True(t, ok)
	require.Equal(t, "main", fn.Name.Lexeme)
	require.Len(t, fn.Body.Statements, 1)
}

func TestParseArithmeticPrecedence(t *testing.T) {
	decls, err := parseDeclarations(t, `fn main() { return 1 + 2 * 3; }`)
	require.NoError(t, err)

	fn := decls[0].Function.(ast.FunctionDeclaration)
	ret := fn.Body.Statements[0].(ast.ReturnStmt)
	op := ret.Value.(ast.Operation)
	require.Equal(t, "+", op.Operator.Lexeme)

	right := op.Right.(ast.Operation)
	require.Equal(t, "*", right.Operator.Lexeme)
}

func TestParenthesisTransparency(t *testing.T) {
	withParens, err := parseDeclarations(t, `fn main() { return (1 + 2); }`)
	require.NoError(t, err)
	withoutParens, err := parseDeclarations(t, `fn main() { return 1 + 2; }`)
	require.NoError(t, err)

	fnA := withParens[0].Function.(ast.FunctionDeclaration)
	fnB := withoutParens[0].Function.(ast.FunctionDeclaration)

	retA := fnA.Body.Statements[0].(ast.ReturnStmt)
	retB := fnB.Body.Statements[0].(ast.ReturnStmt)

	grouped := retA.Value.(ast.Grouping)
	require.Equal(t, retB.Value, grouped.Expression)
}

func TestParseWhileLoop(t *testing.T) {
	decls, err := parseDeclarations(t, `fn main() { let x = 0; while x < 3 { x = x + 1; } return x; }`)
	require.NoError(t, err)

	fn := decls[0].Function.(ast.FunctionDeclaration)
	require.Len(t, fn.Body.Statements, 3)

	while, ok := fn.Body.Statements[1].(ast.WhileStmt)
	require.True(t, ok)
	require.Len(t, while.Body.Statements, 1)
}

func TestParseGenericFunctionCall(t *testing.T) {
	decls, err := parseDeclarations(t, `fn main() { return id[Number](42); }`)
	require.NoError(t, err)

	fn := decls[0].Function.(ast.FunctionDeclaration)
	ret := fn.Body.Statements[0].(ast.ReturnStmt)
	call := ret.Value.(ast.FunctionCall)
	require.Equal(t, "id", call.Callee.Lexeme)
	require.Len(t, call.GenericArgs, 1)
	require.Equal(t, "Number", call.GenericArgs[0].Name)
	require.Len(t, call.Arguments, 1)
}

func TestParseExternFunctionDeclaration(t *testing.T) {
	decls, err := parseDeclarations(t, `extern fn puts(s: String) -> Void;`)
	require.NoError(t, err)

	extern, ok := decls[0].Function.(ast.ExternFunctionDeclaration)
	require.True(t, ok)
	require.Equal(t, "puts", extern.Name.Lexeme)
	require.Len(t, extern.Params, 1)
}

func TestParseErrorRecoveryCollectsMultipleDiagnostics(t *testing.T) {
	_, err := parseDeclarations(t, `fn main() { return ; let = ; }`)
	require.Error(t, err)

	var merr *multierror.Error
	require.ErrorAs(t, err, &merr)
	require.GreaterOrEqual(t, len(merr.Errors), 2)
}

func TestParseIfElse(t *testing.T) {
	decls, err := parseDeclarations(t, `fn main() { if true { return 1; } else { return 2; } }`)
	require.NoError(t, err)

	fn := decls[0].Function.(ast.FunctionDeclaration)
	ifStmt, ok := fn.Body.Statements[0].(ast.IfElseStmt)
	require.True(t, ok)
	require.NotNil(t, ifStmt.Else)
}

func TestParseStringConcatenation(t *testing.T) {
	decls, err := parseDeclarations(t, `fn main() { return "foo" + "bar"; }`)
	require.NoError(t, err)

	fn := decls[0].Function.(ast.FunctionDeclaration)
	ret := fn.Body.Statements[0].(ast.ReturnStmt)
	op := ret.Value.(ast.Operation)
	require.Equal(t, "foo", op.Left.(ast.String).Value)
	require.Equal(t, "bar", op.Right.(ast.String).Value)
}
