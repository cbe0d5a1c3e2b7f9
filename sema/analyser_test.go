package sema

import (
	"testing"

	"github.com/stretchr/testify/require"

	"nilan/ast"
	"nilan/internal/diagnostic"
	"nilan/lexer"
	"nilan/parser"
	"nilan/token"
)

func identToken(name string) token.Token {
	return token.CreateToken(token.IDENTIFIER, name, token.Span{}, 1, 0)
}

func analyse(t *testing.T, source string) ([]TypedDeclaration, error) {
	t.Helper()
	tokens := lexer.New(source).Scan()
	decls, err := parser.Make(tokens).Parse()
	require.NoError(t, err)
	return New().Analyse(decls)
}

func TestAnalyseSimpleFunction(t *testing.T) {
	_, err := analyse(t, `fn main() { return 1 + 2; }`)
	require.NoError(t, err)
}

func TestAnalyseRejectsArithmeticOnStringAndNumber(t *testing.T) {
	_, err := analyse(t, `fn main() { return "a" + 1; }`)
	require.Error(t, err)
}

func TestAnalyseAllowsStringConcatenation(t *testing.T) {
	_, err := analyse(t, `fn main() { return "a" + "b"; }`)
	require.NoError(t, err)
}

func TestAnalyseRejectsEmptyArrayLiteral(t *testing.T) {
	_, err := analyse(t, `fn main() { return []; }`)
	require.Error(t, err)
}

func TestAnalyseRejectsMismatchedArrayElements(t *testing.T) {
	_, err := analyse(t, `fn main() { return [1, "a"]; }`)
	require.Error(t, err)
}

func TestAnalyseLetBindingIntroducesVariable(t *testing.T) {
	_, err := analyse(t, `fn main() { let x = 1; return x + 1; }`)
	require.NoError(t, err)
}

func TestAnalyseLetBindingDoesNotLeakOutOfBlock(t *testing.T) {
	_, err := analyse(t, `fn main() { if true { let x = 1; } return x; }`)
	require.Error(t, err)
}

func TestAnalyseIfElseBranchesRequireBoolPredicate(t *testing.T) {
	_, err := analyse(t, `fn main() { if 1 { return 1; } return 0; }`)
	require.Error(t, err)
}

func TestAnalyseWhileLoopBody(t *testing.T) {
	_, err := analyse(t, `fn main() { let x = 0; while x < 3 { x = x + 1; } return x; }`)
	require.NoError(t, err)
}

func TestAnalyseGenericFunctionCall(t *testing.T) {
	decls, err := analyse(t, `
		fn identity[T](x: T) -> T { return x; }
		fn main() { return identity[Number](42); }
	`)
	require.NoError(t, err)
	require.Len(t, decls, 2)
}

func TestAnalyseFunctionCallArgumentCountMismatch(t *testing.T) {
	_, err := analyse(t, `
		fn add(a: Number, b: Number) -> Number { return a + b; }
		fn main() { return add(1); }
	`)
	require.Error(t, err)
}

func TestAnalyseUndefinedVariableIsAnError(t *testing.T) {
	_, err := analyse(t, `fn main() { return y; }`)
	require.Error(t, err)
}

func TestAnalyseExternDeclarationIsCallable(t *testing.T) {
	_, err := analyse(t, `
		extern fn puts(s: String) -> Void;
		fn main() { puts("hi"); return 0; }
	`)
	require.NoError(t, err)
}

func TestAnalyseUnannotatedFunctionMayReturnAnyValue(t *testing.T) {
	_, err := analyse(t, `fn main() { let x = 0; while x < 3 { x = x + 1; } return "done"; }`)
	require.NoError(t, err)
}

func TestAnalyseTypeMismatchProducesLabelledDiagnostic(t *testing.T) {
	_, err := analyse(t, `fn main() { return true == 1; }`)
	require.Error(t, err)

	d, ok := err.(diagnostic.Diagnostic)
	require.True(t, ok, "expected a diagnostic.Diagnostic, got %T", err)
	require.NotEmpty(t, d.Labels)
}

func TestAnalyseNestedFunctionDeclarationIsRejected(t *testing.T) {
	decls := []ast.Declaration{
		{Function: ast.FunctionDeclaration{
			Name: identToken("main"),
			Body: ast.BlockStmt{Statements: []ast.Stmt{
				ast.FunctionDeclaration{Name: identToken("inner")},
			}},
		}},
	}
	_, err := New().Analyse(decls)
	require.Error(t, err)
}
