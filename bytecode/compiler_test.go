package bytecode

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"nilan/lexer"
	"nilan/parser"
)

func compileSource(t *testing.T, source string) map[string]*Function {
	t.Helper()
	tokens := lexer.New(source).Scan()
	p := parser.Make(tokens)
	decls, err := p.Parse()
	require.NoError(t, err)
	functions, err := NewCompiler().Compile(decls)
	require.NoError(t, err)
	return functions
}

func TestCompileSimpleArithmeticFunction(t *testing.T) {
	functions := compileSource(t, "fn main() -> number { return 1 + 2; }")
	main, ok := functions["main"]
	require.True(t, ok)
	require.NotNil(t, main.Chunk)
	require.Equal(t, 0, main.Arity)

	listing := main.Chunk.Disassemble()
	require.Contains(t, listing, "Constant")
	require.Contains(t, listing, "Add")
	require.Contains(t, listing, "Return")
}

func TestCompileExternHasNoChunk(t *testing.T) {
	functions := compileSource(t, `
extern fn puts(s: string) -> void;
fn main() -> void { puts("hi"); }
`)
	puts, ok := functions["puts"]
	require.True(t, ok)
	require.Nil(t, puts.Chunk)
	require.Equal(t, 1, puts.Arity)
}

func TestCompileLetBindingDeclaresLocalWithoutExtraPop(t *testing.T) {
	functions := compileSource(t, `
fn main() -> number {
	let x = 5;
	return x;
}
`)
	listing := functions["main"].Chunk.Disassemble()
	require.Contains(t, listing, "ReadVariable")
	require.NotContains(t, listing, "Pop")
}

func TestCompileIfElseEmitsExactlyOneForwardJumpPair(t *testing.T) {
	functions := compileSource(t, `
fn main() -> number {
	if (true) {
		return 1;
	} else {
		return 2;
	}
}
`)
	code := functions["main"].Chunk.Code
	jumps := 0
	offsets := 0
	for i := 0; i < len(code); i += InstructionLength(Opcode(code[i])) {
		switch Opcode(code[i]) {
		case OpJumpIfFalse, OpJump:
			jumps++
		case OpOffset:
			offsets++
		}
	}
	require.Equal(t, 2, jumps)
	require.Equal(t, 2, offsets)
}

func TestCompileWhileLoopEmitsExactlyOneLoopOpcode(t *testing.T) {
	functions := compileSource(t, `
fn main() -> number {
	let x = 0;
	while (x < 3) {
		x = x + 1;
	}
	return x;
}
`)
	code := functions["main"].Chunk.Code
	loops := 0
	for i := 0; i < len(code); i += InstructionLength(Opcode(code[i])) {
		if Opcode(code[i]) == OpLoop {
			loops++
		}
	}
	require.Equal(t, 1, loops)
}

func TestCompileArrayLiteralHasNoBytecodeRepresentation(t *testing.T) {
	tokens := lexer.New(`fn main() -> Array[number] { return [1, 2, 3]; }`).Scan()
	p := parser.Make(tokens)
	decls, err := p.Parse()
	require.NoError(t, err)
	_, err = NewCompiler().Compile(decls)
	require.Error(t, err)
}

func TestCompileFunctionCallPushesCalleeThenArguments(t *testing.T) {
	functions := compileSource(t, `
fn double(n: number) -> number { return n * 2; }
fn main() -> number { return double(21); }
`)
	listing := functions["main"].Chunk.Disassemble()
	require.Contains(t, listing, "Call")

	calleeAt := strings.Index(listing, "(<fn double>)")
	argAt := strings.Index(listing, "(21)")
	callAt := strings.Index(listing, "Call")
	require.GreaterOrEqual(t, calleeAt, 0)
	require.Less(t, calleeAt, argAt)
	require.Less(t, argAt, callAt)
}
