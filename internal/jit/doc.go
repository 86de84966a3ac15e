// Package jit implements spec.md §4.6's tiered JIT: a per-loop
// backward-branch counter that, once a range-based for-loop has run
// long enough to be worth it, compiles the loop body into a Go
// closure chain operating directly on the frame's register slice
// instead of being re-dispatched one instruction at a time by
// internal/vm's interpreter switch.
//
// The compiled form never touches a Value's internals except through
// the arithmetic/comparison helpers internal/value already exports
// (the same ones internal/vm's interpreter calls), so "no raw buffer
// writes" (spec.md §4.6 "Safety") holds without this package needing
// its own unsafe code generator: Go itself is the safe code-generator
// API the spec asks for, and the closure chain is the safe "buffer".
package jit
