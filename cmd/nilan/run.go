package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"nilan/vm"
)

// runCmd implements "run <file>": compile and immediately execute a
// source file's "main" function, per spec §6.
type runCmd struct{}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "compile and execute a nilan source file" }
func (*runCmd) Usage() string {
	return "run <file>\n"
}

func (*runCmd) SetFlags(f *flag.FlagSet) {}

func (*runCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "run: missing source file")
		return subcommands.ExitUsageError
	}

	result, err := compileFile(args[0])
	if err != nil {
		return subcommands.ExitStatus(1)
	}

	machine := vm.New(os.Stdout)
	if _, err := machine.Run(result.functions, entryPoint); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitStatus(2)
	}

	return subcommands.ExitSuccess
}
