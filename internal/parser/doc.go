// Package parser builds an internal/ast tree from an internal/lexer
// token stream: a recursive-descent parser over statements with a
// precedence-climbing core for expressions (spec.md §4.3).
//
// Grounded on db47h/ngaro's asm/parser.go: a single `parser` struct
// driving its own cursor over the token stream, small helper methods
// per grammar production, and position-carrying errors. Unlike the
// teacher, which collects up to 10 errors before aborting, this parser
// reports the first error and halts (spec.md §4.3's minimal-recovery
// requirement).
package parser
