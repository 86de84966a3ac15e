// Command tauraro is the Tauraro toolchain's front end: `run` compiles
// and executes a source file in the register VM, `compile` emits a C,
// wasm, or bytecode artifact, and `repl` starts an interactive session.
// Grounded on db47h-ngaro/cmd/retro/main.go's flag-driven main +
// atExit/error-dump shape, rebuilt on a github.com/spf13/cobra
// subcommand tree since spec.md §6 specifies a subcommand CLI rather
// than ngaro's single-command tool (see SPEC_FULL.md §B "CLI").
package main
