package bytecode

import (
	"fmt"

	"nilan/ast"
	"nilan/token"
)

// Local tracks one declared local variable's name and stack slot within
// the function currently being compiled. The slot is relative to the
// call frame: the VM reads and writes it at the frame's base plus slot.
type Local struct {
	name  string
	depth int
	slot  int
}

// functionCompiler holds the state specific to compiling one function's
// body: its Chunk and the locals currently in scope.
type functionCompiler struct {
	chunk      *Chunk
	locals     []Local
	scopeDepth int
}

func (fc *functionCompiler) beginScope() { fc.scopeDepth++ }

// endScope pops every local declared at the scope being exited,
// emitting one Pop per local so the VM's stack mirrors the compiler's
// view of what's in scope.
func (fc *functionCompiler) endScope() {
	fc.scopeDepth--
	for len(fc.locals) > 0 && fc.locals[len(fc.locals)-1].depth > fc.scopeDepth {
		fc.locals = fc.locals[:len(fc.locals)-1]
		fc.chunk.Emit(OpPop)
	}
}

func (fc *functionCompiler) declareLocal(name string) int {
	slot := len(fc.locals)
	fc.locals = append(fc.locals, Local{name: name, depth: fc.scopeDepth, slot: slot})
	return slot
}

func (fc *functionCompiler) resolveLocal(name string) (int, bool) {
	for i := len(fc.locals) - 1; i >= 0; i-- {
		if fc.locals[i].name == name {
			return fc.locals[i].slot, true
		}
	}
	return 0, false
}

// Compiler compiles a whole program's declarations into a table of
// Functions, keyed by name. Extern declarations get a Function with a
// nil Chunk, a marker the VM uses to dispatch to a native
// implementation instead of executing bytecode.
type Compiler struct {
	functions map[string]*Function
}

func NewCompiler() *Compiler {
	return &Compiler{functions: map[string]*Function{}}
}

// Compile translates decls in two passes: the first allocates a
// *Function stub per declaration (so forward and mutually recursive
// calls resolve to the right pointer before any body is compiled), the
// second fills in each non-extern Function's Chunk.
func (c *Compiler) Compile(decls []ast.Declaration) (map[string]*Function, error) {
	for _, decl := range decls {
		switch fn := decl.Function.(type) {
		case ast.FunctionDeclaration:
			c.functions[fn.Name.Lexeme] = &Function{Name: fn.Name.Lexeme, Arity: len(fn.Params)}
		case ast.ExternFunctionDeclaration:
			c.functions[fn.Name.Lexeme] = &Function{Name: fn.Name.Lexeme, Arity: len(fn.Params)}
		default:
			return nil, fmt.Errorf("top-level declarations must be functions")
		}
	}

	for _, decl := range decls {
		fn, ok := decl.Function.(ast.FunctionDeclaration)
		if !ok {
			continue
		}
		target := c.functions[fn.Name.Lexeme]
		if err := c.compileFunctionBody(fn, target); err != nil {
			return nil, err
		}
	}

	return c.functions, nil
}

func (c *Compiler) compileFunctionBody(fn ast.FunctionDeclaration, target *Function) error {
	fc := &functionCompiler{chunk: &Chunk{}}
	fc.beginScope()
	for _, p := range fn.Params {
		fc.declareLocal(p.Name.Lexeme)
	}

	for _, stmt := range fn.Body.Statements {
		if err := c.compileStmt(fc, stmt); err != nil {
			return err
		}
	}

	// A function whose body falls off the end without an explicit
	// return (legal for a Void-returning function) still needs exactly
	// one value on the stack for Return to hand back to the caller.
	fc.chunk.Emit(OpConstant, addVoidConstant(fc.chunk))
	fc.chunk.Emit(OpReturn)

	target.Chunk = fc.chunk
	return nil
}

// addVoidConstant records the placeholder value a Void-returning
// function leaves on the stack. Void carries no information, so any
// fixed Value works; Number(0) is used since it is the cheapest Value
// to construct.
func addVoidConstant(chunk *Chunk) int {
	chunk.Constants = append(chunk.Constants, NumberValue(0))
	return len(chunk.Constants) - 1
}

func (c *Compiler) compileStmt(fc *functionCompiler, stmt ast.Stmt) error {
	switch s := stmt.(type) {
	case ast.ExpressionStmt:
		if v, ok := s.Expression.(ast.Variable); ok {
			if err := c.compileExpr(fc, v.Initializer); err != nil {
				return err
			}
			fc.declareLocal(v.Name.Lexeme)
			return nil
		}
		if err := c.compileExpr(fc, s.Expression); err != nil {
			return err
		}
		fc.chunk.Emit(OpPop)
		return nil

	case ast.PrintStmt:
		if err := c.compileExpr(fc, s.Expression); err != nil {
			return err
		}
		fc.chunk.Emit(OpPrint)
		return nil

	case ast.ReturnStmt:
		if s.Value != nil {
			if err := c.compileExpr(fc, s.Value); err != nil {
				return err
			}
		} else {
			fc.chunk.Emit(OpConstant, addVoidConstant(fc.chunk))
		}
		fc.chunk.Emit(OpReturn)
		return nil

	case ast.BlockStmt:
		fc.beginScope()
		for _, inner := range s.Statements {
			if err := c.compileStmt(fc, inner); err != nil {
				return err
			}
		}
		fc.endScope()
		return nil

	case ast.IfElseStmt:
		if err := c.compileExpr(fc, s.Predicate); err != nil {
			return err
		}
		jumpIfFalse := fc.chunk.EmitPlaceholderJump(OpJumpIfFalse)
		if err := c.compileStmt(fc, s.Then); err != nil {
			return err
		}
		if s.Else != nil {
			jumpEnd := fc.chunk.EmitPlaceholderJump(OpJump)
			fc.chunk.PatchJump(jumpIfFalse, len(fc.chunk.Code))
			if err := c.compileStmt(fc, *s.Else); err != nil {
				return err
			}
			fc.chunk.PatchJump(jumpEnd, len(fc.chunk.Code))
		} else {
			fc.chunk.PatchJump(jumpIfFalse, len(fc.chunk.Code))
		}
		return nil

	case ast.WhileStmt:
		loopStart := len(fc.chunk.Code)
		if err := c.compileExpr(fc, s.Predicate); err != nil {
			return err
		}
		jumpIfFalse := fc.chunk.EmitPlaceholderJump(OpJumpIfFalse)
		if err := c.compileStmt(fc, s.Body); err != nil {
			return err
		}
		fc.chunk.EmitLoop(loopStart)
		fc.chunk.PatchJump(jumpIfFalse, len(fc.chunk.Code))
		return nil

	case ast.FunctionDeclaration, ast.ExternFunctionDeclaration:
		return fmt.Errorf("function declarations may not nest")

	default:
		return fmt.Errorf("unsupported statement %T", stmt)
	}
}

func (c *Compiler) compileExpr(fc *functionCompiler, expr ast.Expression) error {
	switch e := expr.(type) {
	case ast.Boolean:
		if e.Value {
			fc.chunk.Emit(OpTrue)
		} else {
			fc.chunk.Emit(OpFalse)
		}
		return nil

	case ast.Number:
		fc.chunk.AddConstant(NumberValue(e.Value))
		return nil

	case ast.String:
		fc.chunk.AddConstant(StringValue(e.Value))
		return nil

	case ast.Identifier:
		if slot, ok := fc.resolveLocal(e.Name.Lexeme); ok {
			fc.chunk.Emit(OpReadVariable, slot)
			return nil
		}
		if fn, ok := c.functions[e.Name.Lexeme]; ok {
			fc.chunk.AddConstant(FunctionValue(fn))
			return nil
		}
		return fmt.Errorf("unresolved identifier %q", e.Name.Lexeme)

	case ast.Array:
		return fmt.Errorf("array construction has no bytecode representation")

	case ast.Access:
		return fmt.Errorf("field access has no bytecode representation")

	case ast.Assignment:
		if err := c.compileExpr(fc, e.Value); err != nil {
			return err
		}
		slot, ok := fc.resolveLocal(e.Name.Lexeme)
		if !ok {
			return fmt.Errorf("unresolved identifier %q", e.Name.Lexeme)
		}
		fc.chunk.Emit(OpAssignVariable, slot)
		fc.chunk.Emit(OpReadVariable, slot)
		return nil

	case ast.And:
		if err := c.compileExpr(fc, e.Left); err != nil {
			return err
		}
		falsePos := fc.chunk.EmitPlaceholderJump(OpJumpIfFalse)
		if err := c.compileExpr(fc, e.Right); err != nil {
			return err
		}
		endPos := fc.chunk.EmitPlaceholderJump(OpJump)
		fc.chunk.PatchJump(falsePos, len(fc.chunk.Code))
		fc.chunk.Emit(OpFalse)
		fc.chunk.PatchJump(endPos, len(fc.chunk.Code))
		return nil

	case ast.Or:
		if err := c.compileExpr(fc, e.Left); err != nil {
			return err
		}
		falsePos := fc.chunk.EmitPlaceholderJump(OpJumpIfFalse)
		fc.chunk.Emit(OpTrue)
		endPos := fc.chunk.EmitPlaceholderJump(OpJump)
		fc.chunk.PatchJump(falsePos, len(fc.chunk.Code))
		if err := c.compileExpr(fc, e.Right); err != nil {
			return err
		}
		fc.chunk.PatchJump(endPos, len(fc.chunk.Code))
		return nil

	case ast.Operation:
		if err := c.compileExpr(fc, e.Left); err != nil {
			return err
		}
		if err := c.compileExpr(fc, e.Right); err != nil {
			return err
		}
		switch e.Operator.TokenType {
		case token.ADD:
			fc.chunk.Emit(OpAdd)
		case token.SUB:
			fc.chunk.Emit(OpSubtract)
		case token.MULT:
			fc.chunk.Emit(OpMultiply)
		case token.DIV:
			fc.chunk.Emit(OpDivide)
		case token.EQUAL_EQUAL:
			fc.chunk.Emit(OpEqual)
		case token.NOT_EQUAL:
			fc.chunk.Emit(OpEqual)
			fc.chunk.Emit(OpNot)
		case token.LARGER:
			fc.chunk.Emit(OpGreater)
		case token.LESS:
			fc.chunk.Emit(OpLess)
		case token.LARGER_EQUAL:
			fc.chunk.Emit(OpLess)
			fc.chunk.Emit(OpNot)
		case token.LESS_EQUAL:
			fc.chunk.Emit(OpGreater)
			fc.chunk.Emit(OpNot)
		default:
			return fmt.Errorf("unsupported operator %q", e.Operator.Lexeme)
		}
		return nil

	case ast.Unary:
		if err := c.compileExpr(fc, e.Right); err != nil {
			return err
		}
		switch e.Operator.TokenType {
		case token.BANG:
			fc.chunk.Emit(OpNot)
		case token.SUB:
			fc.chunk.Emit(OpNegate)
		default:
			return fmt.Errorf("unsupported unary operator %q", e.Operator.Lexeme)
		}
		return nil

	case ast.Grouping:
		return c.compileExpr(fc, e.Expression)

	case ast.FunctionCall:
		fn, ok := c.functions[e.Callee.Lexeme]
		if !ok {
			return fmt.Errorf("undefined function %q", e.Callee.Lexeme)
		}
		fc.chunk.AddConstant(FunctionValue(fn))
		for _, arg := range e.Arguments {
			if err := c.compileExpr(fc, arg); err != nil {
				return err
			}
		}
		fc.chunk.Emit(OpCall, len(e.Arguments))
		return nil

	case ast.Variable:
		// Reached only when a let-binding appears somewhere other than
		// its own statement; the parser always wraps "let x = e;" as an
		// ExpressionStmt, which declares the local directly instead of
		// routing through here.
		if err := c.compileExpr(fc, e.Initializer); err != nil {
			return err
		}
		fc.declareLocal(e.Name.Lexeme)
		return nil

	case ast.ParseError:
		return fmt.Errorf("cannot compile a parse error node: %s", e.Message)

	default:
		return fmt.Errorf("unsupported expression %T", expr)
	}
}
