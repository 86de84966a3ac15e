package ffi

import (
	"github.com/Yusee-Programmer/tauraro-sub008/internal/compiler"
	"github.com/Yusee-Programmer/tauraro-sub008/internal/value"
)

// BindExterns resolves every extern declaration carried on a module's
// CodeObject (compiler.CodeObject.Externs, populated from `extern
// "lib" { ... }` blocks) against reg, installing each resulting
// callable into globals under its declared name. This is the "resolved
// by internal/ffi at import time" step SPEC_FULL.md §D and spec.md
// §4.9 both describe; internal/importer calls it once per module, right
// after executing the module body, the same point db47h-ngaro's own
// loader would wire up anything the VM can't resolve on its own.
//
// A single failure aborts the whole block and is returned as-is (an
// *value.OpError carrying value.ErrFFIError) rather than partially
// binding -- a module with one bad extern declaration has no usable
// FFI surface at all, so there is nothing sound to leave half-bound.
func BindExterns(reg *Registry, externs []compiler.ExternFunc, globals *value.DictObj) error {
	for _, ef := range externs {
		sig, err := signatureFromExtern(ef)
		if err != nil {
			return err
		}
		fn, err := reg.Define(sig)
		if err != nil {
			return err
		}
		globals.Set(value.Str(ef.Name), fn)
	}
	return nil
}

func signatureFromExtern(ef compiler.ExternFunc) (*Signature, error) {
	sig := &Signature{Library: ef.Library, Symbol: ef.Name}
	for _, p := range ef.ParamTypes {
		tag, err := ParseTag(p)
		if err != nil {
			return nil, err
		}
		sig.Params = append(sig.Params, tag)
	}
	ret, err := ParseTag(ef.ReturnType)
	if err != nil {
		return nil, err
	}
	sig.Return = ret
	return sig, nil
}
