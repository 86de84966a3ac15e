package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Yusee-Programmer/tauraro-sub008/internal/compiler"
	"github.com/Yusee-Programmer/tauraro-sub008/internal/diag"
	"github.com/Yusee-Programmer/tauraro-sub008/internal/value"
)

// newRunCmd builds `tauraro run <file>` (spec.md §6): compile the
// entry script as module "__main__" and execute it, reporting a
// compile failure as exit code 3 and an uncaught exception as exit
// code 1 with a printed traceback -- db47h-ngaro/cmd/retro/main.go's
// atExit dump-and-exit pattern, generalized past its single `panic`
// case to the three failure currencies this toolchain distinguishes.
func newRunCmd() *cobra.Command {
	var noJIT bool
	var debug bool
	cmd := &cobra.Command{
		Use:   "run <file>",
		Short: "Compile and execute a Tauraro source file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFile(args[0], noJIT, debug)
		},
	}
	cmd.Flags().BoolVar(&noJIT, "no-jit", false, "disable the hot-loop JIT")
	cmd.Flags().BoolVar(&debug, "debug", false, "dump bytecode before running and print an uncolored traceback on an uncaught exception")
	return cmd
}

func runFile(path string, noJIT, debug bool) error {
	co, err := compileFile(path)
	if err != nil {
		return diagFromCompile(err)
	}
	if debug {
		fmt.Fprint(os.Stderr, compiler.Disassemble(co))
	}

	m, loader, err := newInterpreter(noJIT)
	if err != nil {
		return newExitError(exitUsageErr, err.Error())
	}

	mod := value.NewModule("__main__").AsModule()
	if abs, absErr := filepath.Abs(path); absErr == nil {
		mod.Dir = filepath.Dir(abs)
	}
	m.Modules["__main__"] = mod

	if err := runModuleBody(m, loader, co, mod); err != nil {
		return reportRunErr(err, debug)
	}
	return nil
}

// reportRunErr distinguishes a language-level uncaught exception
// (printed as a traceback, exit 1) from any other Go error escaping
// execution (a host-level failure, exit 1 with its bare message --
// e.g. an I/O error surfaced by a builtin). `--debug` disables color
// so the traceback is safe to pipe/diff; it is the one degree of
// freedom the current value.Frame data model actually supports, since
// a Frame only ever carries FuncName/Line/Filename -- see DESIGN.md's
// cmd/tauraro entry for why live variable snapshots are out of scope.
func reportRunErr(err error, debug bool) error {
	if exc, ok := err.(*value.ExceptionObj); ok {
		useColor := !debug && stderrIsTTY()
		_ = diag.Print(os.Stderr, exc, useColor)
		return newExitError(exitRuntimeErr, "")
	}
	return newExitError(exitRuntimeErr, err.Error())
}
