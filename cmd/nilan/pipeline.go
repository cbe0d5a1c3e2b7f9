package main

import (
	"fmt"
	"os"

	"nilan/bytecode"
	"nilan/internal/diagnostic"
	"nilan/lexer"
	"nilan/parser"
	"nilan/sema"
)

// compileResult holds everything a source file compiles down to: the
// table of bytecode Functions, keyed by name.
type compileResult struct {
	functions map[string]*bytecode.Function
}

// entryPoint names the program's entry point function, fixed to "main"
// by convention across the CLI.
const entryPoint = "main"

// compileFile runs the full front end over the file at path: lex,
// parse, semantically analyse, then compile to bytecode. Parse and
// semantic-analysis failures are rendered Diagnostics; a bytecode
// compile failure (always a structural defect, not a user-facing
// diagnostic) is written as a plain message. Either way the failure is
// reported back as a single error so callers can map it to exit code 1.
func compileFile(path string) (*compileResult, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	tokens := lexer.New(string(source)).Scan()

	p := parser.Make(tokens)
	decls, err := p.Parse()
	if err != nil {
		for _, d := range p.Diagnostics() {
			_ = diagnostic.Render(os.Stderr, source, d, true)
		}
		return nil, err
	}

	if _, err := sema.New().Analyse(decls); err != nil {
		if d, ok := err.(diagnostic.Diagnostic); ok {
			_ = diagnostic.Render(os.Stderr, source, d, true)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		return nil, err
	}

	functions, err := bytecode.NewCompiler().Compile(decls)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return nil, err
	}

	return &compileResult{functions: functions}, nil
}
