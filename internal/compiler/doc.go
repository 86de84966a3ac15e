// Package compiler lowers an internal/ast tree into register-based
// bytecode: one CodeObject per function body, carrying its
// instruction stream, constant pool, named-local table, free-variable
// (closure) table, and line-number table (spec.md §4.4).
//
// Grounded on db47h-ngaro/asm/asm.go's Assemble/Disassemble pair
// (generalized from Forth-word-per-cell assembly to a tree-walking
// bytecode emitter) and on vm/core.go's opcode numbering style for
// internal/compiler/opcodes.go.
package compiler
