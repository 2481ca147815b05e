package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"nilan/compiler"
	"nilan/debug"
	"nilan/table"
)

// disasmCmd implements the "disasm" subcommand: compile a file without
// running it, and print its bytecode in the §6 disassembly format.
type disasmCmd struct{}

func (*disasmCmd) Name() string     { return "disasm" }
func (*disasmCmd) Synopsis() string { return "Compile a nilan source file and print its bytecode" }
func (*disasmCmd) Usage() string {
	return "disasm <file>: compile a nilan source file and dump its disassembly.\n"
}
func (*disasmCmd) SetFlags(f *flag.FlagSet) {}

func (*disasmCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "nilan disasm: no file provided")
		return subcommands.ExitUsageError
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "nilan disasm: %v\n", err)
		return subcommands.ExitFailure
	}

	chk, errs := compiler.Compile(string(data), table.NewStrings())
	if len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintln(os.Stderr, e.Error())
		}
		return subcommands.ExitUsageError
	}

	debug.Disassemble(os.Stdout, chk, args[0])
	return subcommands.ExitSuccess
}
