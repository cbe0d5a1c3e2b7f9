package vm

import (
	"bytes"
	"testing"

	"nilan/bytecode"
	"nilan/lexer"
	"nilan/parser"
)

func run(t *testing.T, source string) (string, bytecode.Value) {
	t.Helper()
	tokens := lexer.New(source).Scan()
	p := parser.Make(tokens)
	decls, err := p.Parse()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	functions, err := bytecode.NewCompiler().Compile(decls)
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}
	var out bytes.Buffer
	machine := New(&out)
	result, err := machine.Run(functions, "main")
	if err != nil {
		t.Fatalf("runtime error: %v", err)
	}
	return out.String(), result
}

func TestVMArithmetic(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   float64
	}{
		{"add", "fn main() -> number { return 2 + 3; }", 5},
		{"sub", "fn main() -> number { return 9 - 4; }", 5},
		{"mul", "fn main() -> number { return 3 * 4; }", 12},
		{"div", "fn main() -> number { return 10 / 2; }", 5},
		{"precedence", "fn main() -> number { return 2 + 3 * 4; }", 14},
		{"negate", "fn main() -> number { return -(5 - 10); }", 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, result := run(t, tt.source)
			if !result.IsNumber() || result.Number != tt.want {
				t.Errorf("got %s, want Number(%g)", result, tt.want)
			}
		})
	}
}

func TestVMStringConcatenation(t *testing.T) {
	_, result := run(t, `fn main() -> string { return "foo" + "bar"; }`)
	if !result.IsString() || result.Obj.Str != "foobar" {
		t.Errorf("got %s, want String(foobar)", result)
	}
}

func TestVMComparisonsAndEquality(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   bool
	}{
		{"less true", "fn main() -> bool { return 1 < 2; }", true},
		{"less false", "fn main() -> bool { return 2 < 1; }", false},
		{"greater equal via not less", "fn main() -> bool { return 2 >= 2; }", true},
		{"not equal", "fn main() -> bool { return 1 != 2; }", true},
		{"equal numbers", "fn main() -> bool { return 2 == 2; }", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, result := run(t, tt.source)
			if !result.IsBool() || result.Bool != tt.want {
				t.Errorf("got %s, want Bool(%t)", result, tt.want)
			}
		})
	}
}

func TestVMIfElseBranches(t *testing.T) {
	source := `
fn classify(n: number) -> string {
	if (n < 0) {
		return "negative";
	} else {
		return "non-negative";
	}
}
fn main() -> string { return classify(-1); }
`
	_, result := run(t, source)
	if !result.IsString() || result.Obj.Str != "negative" {
		t.Errorf("got %s, want String(negative)", result)
	}
}

func TestVMWhileLoopAccumulates(t *testing.T) {
	source := `
fn sumTo(n: number) -> number {
	let total = 0;
	let i = 0;
	while (i < n) {
		total = total + i;
		i = i + 1;
	}
	return total;
}
fn main() -> number { return sumTo(5); }
`
	_, result := run(t, source)
	if !result.IsNumber() || result.Number != 10 {
		t.Errorf("got %s, want Number(10)", result)
	}
}

func TestVMLogicalShortCircuit(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   bool
	}{
		{"and both true", "fn main() -> bool { return true and true; }", true},
		{"and short circuits", "fn main() -> bool { return false and true; }", false},
		{"or short circuits", "fn main() -> bool { return true or false; }", true},
		{"or falls through", "fn main() -> bool { return false or true; }", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, result := run(t, tt.source)
			if !result.IsBool() || result.Bool != tt.want {
				t.Errorf("got %s, want Bool(%t)", result, tt.want)
			}
		})
	}
}

func TestVMRecursiveCall(t *testing.T) {
	source := `
fn fact(n: number) -> number {
	if (n < 2) {
		return 1;
	}
	return n * fact(n - 1);
}
fn main() -> number { return fact(5); }
`
	_, result := run(t, source)
	if !result.IsNumber() || result.Number != 120 {
		t.Errorf("got %s, want Number(120)", result)
	}
}

func TestVMExternCallToPuts(t *testing.T) {
	source := `
extern fn puts(s: string) -> void;
fn main() -> void { puts("hello"); }
`
	out, _ := run(t, source)
	if out != "hello\n" {
		t.Errorf("got output %q, want %q", out, "hello\n")
	}
}

func TestVMRawChunkStackDiscipline(t *testing.T) {
	chunk := &bytecode.Chunk{}
	chunk.AddConstant(bytecode.NumberValue(5))
	chunk.AddConstant(bytecode.NumberValue(1))
	chunk.Emit(bytecode.OpAdd)
	chunk.Emit(bytecode.OpReturn)

	functions := map[string]*bytecode.Function{
		"main": {Name: "main", Chunk: chunk},
	}
	machine := New(nil)
	result, err := machine.Run(functions, "main")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsNumber() || result.Number != 6 {
		t.Errorf("got %s, want Number(6)", result)
	}
}
