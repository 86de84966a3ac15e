package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// main dispatches to one of the run/compile/repl subcommands and
// translates whatever they return into a process exit code, the
// cobra-based descendant of db47h-ngaro/cmd/retro/main.go's own
// atExit pattern: that function printed an unhandled error and exited
// 1 unconditionally, since retro only had one failure mode. This
// toolchain distinguishes four (spec.md §6 "Exit codes"), carried on
// the *exitError a subcommand returns; anything else escaping cobra
// (a bad flag, an unknown subcommand) is usage error, exit code 2.
func main() {
	os.Exit(run())
}

func run() int {
	root := newRootCmd()
	err := root.Execute()
	if err == nil {
		return exitOK
	}

	var ee *exitError
	if errors.As(err, &ee) {
		if ee.msg != "" {
			fmt.Fprintln(os.Stderr, ee.msg)
		}
		return ee.code
	}

	fmt.Fprintln(os.Stderr, err)
	return exitUsageErr
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "tauraro",
		Short:         "The Tauraro language toolchain",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCmd(), newCompileCmd(), newReplCmd())
	return root
}
