// Package ffi implements spec.md §4.8: a cross-platform native library
// loader, a (library, symbol) signature registry keyed "libname!symbol",
// and argument/return marshalling between value.Value and the C ABI.
//
// It is the Go-native replacement for what a cgo-based implementation
// would do: github.com/ebitengine/purego opens libraries and resolves
// symbols without a C compiler in the build, and this package builds a
// dynamically-typed Go function value per registered signature via
// reflect.FuncOf + purego.RegisterFunc, since the set of signatures is
// only known at compile/import time, not at Go build time.
//
// internal/importer calls BindExterns once per module that declares
// `extern` functions, binding all of that module's externs together, the
// same "resolve once at import time" shape spec.md §4.9 and §4.8
// describe together. Every failure mode spec.md §4.8 names -- missing
// library, missing symbol, argument-count mismatch -- surfaces as a
// *value.OpError carrying value.ErrFFIError, the same currency every
// other VM-internal failure is reported in (internal/vm/exceptions.go's
// asException boundary).
package ffi
