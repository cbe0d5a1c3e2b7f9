package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/google/subcommands"

	"nilan/bytecode"
	"nilan/lexer"
	"nilan/parser"
	"nilan/sema"
	"nilan/token"
	"nilan/vm"
)

// replCmd starts an interactive session, outside the core's tested
// surface: each accepted program is recompiled from scratch and its
// "main" function (if any) is executed immediately. Input is buffered
// until braces balance, so a multi-line function declaration can be
// typed across several prompts before it is sent through the
// lexer/parser/sema/bytecode/vm pipeline.
type replCmd struct{}

func (*replCmd) Name() string     { return "repl" }
func (*replCmd) Synopsis() string { return "start an interactive nilan session" }
func (*replCmd) Usage() string    { return "repl\n" }
func (*replCmd) SetFlags(f *flag.FlagSet) {}

func (*replCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	rl, err := readline.New(">>> ")
	if err != nil {
		fmt.Println("repl: could not start line editor:", err)
		return subcommands.ExitFailure
	}
	defer rl.Close()

	var buffer strings.Builder
	for {
		if buffer.Len() == 0 {
			rl.SetPrompt(">>> ")
		} else {
			rl.SetPrompt("... ")
		}

		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return subcommands.ExitSuccess
		}
		if err != nil {
			fmt.Println("repl:", err)
			return subcommands.ExitFailure
		}

		if buffer.Len() == 0 && strings.TrimSpace(line) == "exit" {
			return subcommands.ExitSuccess
		}

		if buffer.Len() > 0 {
			buffer.WriteString("\n")
		}
		buffer.WriteString(line)
		source := buffer.String()

		tokens := lexer.New(source).Scan()
		if !inputReady(tokens) {
			continue
		}

		p := parser.Make(tokens)
		decls, err := p.Parse()
		if err != nil {
			fmt.Println("parse error:", err)
			buffer.Reset()
			continue
		}

		if _, err := sema.New().Analyse(decls); err != nil {
			fmt.Println(err)
			buffer.Reset()
			continue
		}

		functions, err := bytecode.NewCompiler().Compile(decls)
		if err != nil {
			fmt.Println(err)
			buffer.Reset()
			continue
		}

		if _, ok := functions[entryPoint]; ok {
			machine := vm.New(os.Stdout)
			result, err := machine.Run(functions, entryPoint)
			if err != nil {
				fmt.Println(err)
			} else {
				fmt.Fprintln(os.Stdout, result)
			}
		}

		buffer.Reset()
	}
}

// inputReady reports whether tokens form a balanced, complete-looking
// program: every brace closed and the last significant token isn't one
// that obviously expects a continuation.
func inputReady(tokens []token.Token) bool {
	depth := 0
	for _, tok := range tokens {
		switch tok.TokenType {
		case token.LCUR:
			depth++
		case token.RCUR:
			depth--
		}
	}
	if depth > 0 {
		return false
	}

	last := lastNonEOF(tokens)
	if last == nil {
		return true
	}

	switch last.TokenType {
	case token.ASSIGN, token.ADD, token.SUB, token.MULT, token.DIV, token.BANG,
		token.EQUAL_EQUAL, token.NOT_EQUAL, token.LESS, token.LESS_EQUAL,
		token.LARGER, token.LARGER_EQUAL, token.COMMA, token.LPA, token.LCUR,
		token.IF, token.ELSE, token.WHILE, token.FOR, token.FUNC, token.RETURN,
		token.LET, token.AND, token.OR, token.PRINT:
		return false
	}
	return true
}

func lastNonEOF(tokens []token.Token) *token.Token {
	for i := len(tokens) - 1; i >= 0; i-- {
		if tokens[i].TokenType != token.EOF {
			return &tokens[i]
		}
	}
	return nil
}
