package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/Yusee-Programmer/tauraro-sub008/internal/compiler"
	"github.com/Yusee-Programmer/tauraro-sub008/internal/diag"
	"github.com/Yusee-Programmer/tauraro-sub008/internal/importer"
	"github.com/Yusee-Programmer/tauraro-sub008/internal/parser"
	"github.com/Yusee-Programmer/tauraro-sub008/internal/value"
	"github.com/Yusee-Programmer/tauraro-sub008/internal/vm"
)

// newReplCmd builds `tauraro repl` (spec.md §6): an interactive
// session that parses and executes one chunk per line against a
// single persistent "__main__" module, echoing the last expression's
// repr the way Python's own interactive mode echoes `_`.
func newReplCmd() *cobra.Command {
	var noJIT bool
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive Tauraro session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRepl(noJIT)
		},
	}
	cmd.Flags().BoolVar(&noJIT, "no-jit", false, "disable the hot-loop JIT")
	return cmd
}

func runRepl(noJIT bool) error {
	m, loader, err := newInterpreter(noJIT)
	if err != nil {
		return newExitError(exitUsageErr, err.Error())
	}
	mod := value.NewModule("__main__").AsModule()
	m.Modules["__main__"] = mod

	rl, err := readline.New(">>> ")
	if err != nil {
		return newExitError(exitUsageErr, err.Error())
	}
	defer rl.Close()

	useColor := stderrIsTTY()
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if len(line) == 0 {
				break
			}
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return newExitError(exitUsageErr, err.Error())
		}
		if line == "" {
			continue
		}
		evalReplLine(m, loader, mod, line, useColor)
	}
	return nil
}

// evalReplLine compiles and runs one line of input, reporting a
// compile error or uncaught exception inline rather than aborting the
// session -- spec.md's REPL keeps running after a bad line.
func evalReplLine(m *vm.VM, loader *importer.Loader, mod *value.ModuleObj, line string, useColor bool) {
	astMod, err := parser.Parse("<repl>", []byte(line))
	if err != nil {
		fmt.Println(diagFromCompile(err).Error())
		return
	}
	echoed := rewriteLastExprForEcho(astMod)

	co, err := compiler.Compile("__main__", astMod)
	if err != nil {
		fmt.Println(diagFromCompile(err).Error())
		return
	}

	if err := runModuleBody(m, loader, co, mod); err != nil {
		if exc, ok := err.(*value.ExceptionObj); ok {
			_ = diag.Print(m.Stdout, exc, useColor)
			return
		}
		fmt.Println(err.Error())
		return
	}

	if echoed {
		if v, ok := mod.Globals.Get(value.Str("_")); ok && v.Kind != value.KindNone {
			fmt.Println(value.Repr(v))
		}
	}
}
