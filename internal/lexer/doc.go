// Package lexer turns UTF-8 Tauraro source text into a lazy sequence of
// tokens with source positions (spec.md §4.2). It tracks indentation
// (emitting INDENT/DEDENT/NEWLINE the way Python's tokenizer does),
// joins explicitly- and implicitly-continued physical lines, and
// recognizes the closed keyword set (including the bilingual Hausa
// aliases spec.md calls for).
//
// The scanning loop is built the same way db47h/ngaro's asm parser
// builds its assembler scanner: a small hand-written state machine
// driving rune-at-a-time reads, rather than a generated scanner.
package lexer
