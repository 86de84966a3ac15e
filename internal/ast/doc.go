// Package ast defines the node set produced by internal/parser for the
// Python-grammar subset in spec.md §4.3: simple and compound
// statements, the full expression grammar (lambdas, comprehensions,
// generator expressions, f-strings, walrus, conditional expressions,
// starred unpacking, stepped slicing), and the `extern "libname" { … }`
// FFI declaration block.
//
// There is no teacher equivalent — db47h/ngaro's assembler has no AST,
// only a flat token stream it assembles directly — so the node shapes
// here are new, following the interface-plus-concrete-struct-tag style
// other example repos in the pack use for syntax trees.
package ast
