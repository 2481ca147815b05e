package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"nilan/vm"
)

// runCmd implements the "run" subcommand, matching the teacher's
// cmd_run.go: compile and execute one source file to completion.
type runCmd struct{}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "Compile and run a nilan source file" }
func (*runCmd) Usage() string {
	return "run <file>: compile and execute a nilan source file.\n"
}
func (r *runCmd) SetFlags(f *flag.FlagSet) {}

func (r *runCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "nilan run: no file provided")
		return subcommands.ExitUsageError
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "nilan run: %v\n", err)
		return subcommands.ExitFailure
	}

	machine := vm.New()
	result := machine.Interpret(string(data))
	switch result {
	case vm.InterpretCompileError:
		return subcommands.ExitUsageError
	case vm.InterpretRuntimeError:
		return subcommands.ExitFailure
	default:
		return subcommands.ExitSuccess
	}
}
