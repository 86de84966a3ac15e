// Package stdlib registers a handful of representative built-in
// modules (math, os, json, time) as *value.ModuleObj instances,
// enough to exercise internal/importer's built-in-module search-path
// branch end to end. spec.md §1 explicitly scopes the ~30-module
// Tauraro standard library out of this implementation; these shims
// are the ambient stand-in the import system needs to have something
// real to resolve, not an attempt at parity with any of them.
package stdlib
