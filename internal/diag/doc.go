// Package diag formats a raised exception's traceback for display on
// standard error, the way an interactive run or the `run`/`repl`
// subcommands of cmd/tauraro report an uncaught exception (spec.md §7
// "prints the exception name, message, and a chronological traceback
// (oldest frame first) to standard error"). Formatting is split from
// printing so tests can assert on the formatted string without a
// terminal, and so cmd/tauraro can decide when color is appropriate.
package diag
