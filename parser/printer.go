package parser

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"

	"nilan/ast"
)

// astPrinter implements the ast Visitor interfaces and builds a
// JSON-friendly representation of the AST using maps and slices. Each
// Visit method returns a value that can be marshaled to JSON.
type astPrinter struct{}

func (p astPrinter) VisitExpressionStmt(stmt ast.ExpressionStmt) any {
	return map[string]any{"type": "ExpressionStmt", "expression": stmt.Expression.Accept(p)}
}

func (p astPrinter) VisitPrintStmt(stmt ast.PrintStmt) any {
	return map[string]any{"type": "PrintStmt", "expression": stmt.Expression.Accept(p)}
}

func (p astPrinter) VisitReturnStmt(stmt ast.ReturnStmt) any {
	return map[string]any{"type": "ReturnStmt", "value": nilOrAccept(stmt.Value, p)}
}

func (p astPrinter) VisitBlockStmt(stmt ast.BlockStmt) any {
	stmts := make([]any, 0, len(stmt.Statements))
	for _, s := range stmt.Statements {
		stmts = append(stmts, s.Accept(p))
	}
	return map[string]any{"type": "BlockStmt", "statements": stmts}
}

func (p astPrinter) VisitIfElseStmt(stmt ast.IfElseStmt) any {
	var elseVal any
	if stmt.Else != nil {
		elseVal = stmt.Else.Accept(p)
	}
	return map[string]any{
		"type":      "IfElseStmt",
		"predicate": stmt.Predicate.Accept(p),
		"then":      stmt.Then.Accept(p),
		"else":      elseVal,
	}
}

func (p astPrinter) VisitWhileStmt(stmt ast.WhileStmt) any {
	return map[string]any{
		"type":      "WhileStmt",
		"predicate": stmt.Predicate.Accept(p),
		"body":      stmt.Body.Accept(p),
	}
}

func (p astPrinter) VisitFunctionDeclaration(stmt ast.FunctionDeclaration) any {
	return map[string]any{
		"type":   "FunctionDeclaration",
		"name":   stmt.Name.Lexeme,
		"params": paramNames(stmt.Params),
		"body":   stmt.Body.Accept(p),
	}
}

func (p astPrinter) VisitExternFunctionDeclaration(stmt ast.ExternFunctionDeclaration) any {
	return map[string]any{
		"type":   "ExternFunctionDeclaration",
		"name":   stmt.Name.Lexeme,
		"params": paramNames(stmt.Params),
	}
}

func (p astPrinter) VisitBoolean(b ast.Boolean) any    { return b.Value }
func (p astPrinter) VisitNumber(n ast.Number) any      { return n.Value }
func (p astPrinter) VisitString(s ast.String) any      { return s.Value }
func (p astPrinter) VisitIdentifier(id ast.Identifier) any {
	return map[string]any{"type": "Identifier", "name": id.Name.Lexeme}
}

func (p astPrinter) VisitArray(a ast.Array) any {
	elems := make([]any, 0, len(a.Elements))
	for _, e := range a.Elements {
		elems = append(elems, e.Accept(p))
	}
	return map[string]any{"type": "Array", "elements": elems}
}

func (p astPrinter) VisitAccess(a ast.Access) any {
	return map[string]any{"type": "Access", "target": a.Target.Accept(p), "name": a.Name.Lexeme}
}

func (p astPrinter) VisitAssignment(a ast.Assignment) any {
	return map[string]any{"type": "Assignment", "name": a.Name.Lexeme, "value": a.Value.Accept(p)}
}

func (p astPrinter) VisitAnd(a ast.And) any {
	return map[string]any{"type": "And", "left": a.Left.Accept(p), "right": a.Right.Accept(p)}
}

func (p astPrinter) VisitOr(o ast.Or) any {
	return map[string]any{"type": "Or", "left": o.Left.Accept(p), "right": o.Right.Accept(p)}
}

func (p astPrinter) VisitOperation(op ast.Operation) any {
	return map[string]any{
		"type":     "Operation",
		"operator": op.Operator.Lexeme,
		"left":     op.Left.Accept(p),
		"right":    op.Right.Accept(p),
	}
}

func (p astPrinter) VisitUnary(u ast.Unary) any {
	return map[string]any{"type": "Unary", "operator": u.Operator.Lexeme, "right": u.Right.Accept(p)}
}

func (p astPrinter) VisitGrouping(g ast.Grouping) any {
	return map[string]any{"type": "Grouping", "expression": g.Expression.Accept(p)}
}

func (p astPrinter) VisitFunctionCall(c ast.FunctionCall) any {
	args := make([]any, 0, len(c.Arguments))
	for _, a := range c.Arguments {
		args = append(args, a.Accept(p))
	}
	return map[string]any{"type": "FunctionCall", "callee": c.Callee.Lexeme, "arguments": args}
}

func (p astPrinter) VisitVariable(v ast.Variable) any {
	return map[string]any{"type": "Variable", "name": v.Name.Lexeme, "initializer": nilOrAccept(v.Initializer, p)}
}

func (p astPrinter) VisitParseError(pe ast.ParseError) any {
	return map[string]any{"type": "ParseError", "message": pe.Message}
}

func nilOrAccept(expr ast.Expression, p ast.ExpressionVisitor) any {
	if expr == nil {
		return nil
	}
	return expr.Accept(p)
}

func paramNames(params []ast.Param) []string {
	names := make([]string, 0, len(params))
	for _, param := range params {
		names = append(names, param.Name.Lexeme)
	}
	return names
}

// PrintASTJSON converts a slice of declarations into a prettified JSON
// string, printing it (highlighted yellow when stdout is a terminal)
// and returning it for callers that want to persist it.
func PrintASTJSON(declarations []ast.Declaration) (string, error) {
	printer := astPrinter{}
	out := make([]any, 0, len(declarations))
	for _, d := range declarations {
		out = append(out, d.Function.Accept(printer))
	}
	bytes, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", err
	}
	jsonStr := string(bytes)

	highlight := color.New(color.FgYellow)
	highlight.Println("----- AST JSON -----")
	highlight.Println(jsonStr)
	highlight.Println("-----")
	return jsonStr, nil
}

// WriteASTJSONToFile writes the prettified AST JSON to the given file path.
func WriteASTJSONToFile(declarations []ast.Declaration, path string) error {
	s, err := PrintASTJSON(declarations)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating AST file: %w", err)
	}
	defer f.Close()
	if _, err := f.Write([]byte(s)); err != nil {
		return fmt.Errorf("error writing AST to file: %w", err)
	}
	return nil
}
