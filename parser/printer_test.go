package parser

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"nilan/ast"
	"nilan/token"
)

func decodeJSON(t *testing.T, jsonStr string) []map[string]any {
	t.Helper()
	var out []map[string]any
	require.NoError(t, json.Unmarshal([]byte(jsonStr), &out))
	return out
}

func TestPrintASTJSON_PrintStmt(t *testing.T) {
	decls := []ast.Declaration{
		{Function: ast.PrintStmt{Expression: ast.Number{Value: 42}}},
	}

	jsonStr, err := PrintASTJSON(decls)
	require.NoError(t, err)

	out := decodeJSON(t, jsonStr)
	require.Len(t, out, 1)
	require.Equal(t, "PrintStmt", out[0]["type"])
	require.Equal(t, 42.0, out[0]["expression"])
}

func TestPrintASTJSON_VariableNilInitializer(t *testing.T) {
	name := token.CreateLiteralToken(token.IDENTIFIER, "x", "x", token.Span{}, 0, 0)
	decls := []ast.Declaration{
		{Function: ast.ExpressionStmt{Expression: ast.Variable{Name: name}}},
	}

	jsonStr, err := PrintASTJSON(decls)
	require.NoError(t, err)

	out := decodeJSON(t, jsonStr)
	expr := out[0]["expression"].(map[string]any)
	require.Equal(t, "Variable", expr["type"])
	require.Equal(t, "x", expr["name"])
	require.Nil(t, expr["initializer"])
}

func TestPrintASTJSON_OperationExpression(t *testing.T) {
	decls := []ast.Declaration{
		{Function: ast.ExpressionStmt{Expression: ast.Operation{
			Left:     ast.Number{Value: 1},
			Operator: token.CreateToken(token.ADD, "+", token.Span{}, 0, 0),
			Right:    ast.Number{Value: 2},
		}}},
	}

	jsonStr, err := PrintASTJSON(decls)
	require.NoError(t, err)

	out := decodeJSON(t, jsonStr)
	expr := out[0]["expression"].(map[string]any)
	require.Equal(t, "Operation", expr["type"])
	require.Equal(t, "+", expr["operator"])
	require.Equal(t, 1.0, expr["left"])
	require.Equal(t, 2.0, expr["right"])
}

func TestWriteASTJSONToFile(t *testing.T) {
	decls := []ast.Declaration{
		{Function: ast.PrintStmt{Expression: ast.String{Value: "hello nilan!"}}},
	}

	filePath := filepath.Join(os.TempDir(), "nilan_ast_printer_test.json")
	defer os.Remove(filePath)

	require.NoError(t, WriteASTJSONToFile(decls, filePath))

	bytes, err := os.ReadFile(filePath)
	require.NoError(t, err)

	out := decodeJSON(t, string(bytes))
	require.Equal(t, "PrintStmt", out[0]["type"])
	require.Equal(t, "hello nilan!", out[0]["expression"])
}
