package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/google/subcommands"
)

// buildCmd implements "build <file> -o <output> [--no-link]". The
// native code generator that would turn bytecode into an ELF/Mach-O
// object file lives outside this core (spec §6); build instead writes
// the disassembled bytecode for every compiled function to -o, so the
// subcommand still exercises the full front end and produces an
// artifact a caller can inspect.
type buildCmd struct {
	output string
	noLink bool
}

func (*buildCmd) Name() string     { return "build" }
func (*buildCmd) Synopsis() string { return "compile a nilan source file" }
func (*buildCmd) Usage() string {
	return "build <file> -o <output> [--no-link]\n"
}

func (b *buildCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&b.output, "o", "a.out", "output path")
	f.BoolVar(&b.noLink, "no-link", false, "skip linking (no-op: this core has no native linker)")
}

func (b *buildCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "build: missing source file")
		return subcommands.ExitUsageError
	}

	result, err := compileFile(args[0])
	if err != nil {
		return subcommands.ExitStatus(1)
	}

	names := make([]string, 0, len(result.functions))
	for name := range result.functions {
		names = append(names, name)
	}
	sort.Strings(names)

	listing := ""
	for _, name := range names {
		fn := result.functions[name]
		listing += fmt.Sprintf("fn %s/%d:\n", fn.Name, fn.Arity)
		if fn.Chunk == nil {
			listing += "  <extern, no chunk>\n"
			continue
		}
		listing += fn.Chunk.Disassemble()
	}

	if err := os.WriteFile(b.output, []byte(listing), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "build: writing %s: %v\n", b.output, err)
		return subcommands.ExitStatus(1)
	}

	return subcommands.ExitSuccess
}
