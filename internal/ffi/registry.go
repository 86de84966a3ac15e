package ffi

import (
	"reflect"
	"sync"

	"github.com/ebitengine/purego"
	"github.com/pkg/errors"

	"github.com/Yusee-Programmer/tauraro-sub008/internal/value"
)

// Registry is the process-wide (spec.md §5 "Shared resources") table
// of FFI signatures and the Value callables bound to them, keyed
// "libname!symbol". Define holds an internal mutex for its whole
// lookup-or-bind step, so concurrent Define calls are serialized.
type Registry struct {
	loader *Loader
	mu     sync.Mutex
	sigs   map[string]*Signature
	fns    map[string]value.Value
}

// NewRegistry builds an empty Registry backed by loader.
func NewRegistry(loader *Loader) *Registry {
	return &Registry{loader: loader, sigs: map[string]*Signature{}, fns: map[string]value.Value{}}
}

// Define resolves sig's symbol in its library and returns a
// value.Function (Native-backed) that marshals Tauraro Values to and
// from the C ABI on every call. A given (library, symbol) pair is
// resolved once; a second Define with the same key returns the
// already-bound function without touching purego again.
func (r *Registry) Define(sig *Signature) (value.Value, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := sig.Key()
	if fn, ok := r.fns[key]; ok {
		return fn, nil
	}

	handle, err := r.loader.Load(sig.Library)
	if err != nil {
		return value.Value{}, err
	}

	symAddr, err := purego.Dlsym(handle, sig.Symbol)
	if err != nil {
		return value.Value{}, &value.OpError{
			TypeName: value.ErrFFIError,
			Message:  errors.Wrapf(err, "ffi: symbol %q not found in %q", sig.Symbol, sig.Library).Error(),
		}
	}

	dynFn, err := buildDynamicFunc(sig, symAddr)
	if err != nil {
		return value.Value{}, err
	}

	nativeFn := bindNative(sig, dynFn)
	fn := value.NativeFunction(sig.Symbol, nativeFn)
	r.sigs[key] = sig
	r.fns[key] = fn
	return fn, nil
}

// Lookup returns the already-bound function for "libname!symbol", if
// any Define call has resolved it.
func (r *Registry) Lookup(key string) (value.Value, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn, ok := r.fns[key]
	return fn, ok
}

// buildDynamicFunc constructs a Go function value with the exact
// parameter/return shape sig describes and registers it against
// symAddr via purego.RegisterFunc. The function's type is not known at
// Go compile time -- signatures are discovered at Tauraro compile/
// import time -- so it is assembled with reflect.FuncOf and a pointer
// to a zero func value, the technique purego's own docs describe for
// binding symbols whose signature isn't fixed ahead of time.
func buildDynamicFunc(sig *Signature, symAddr uintptr) (reflect.Value, error) {
	in := make([]reflect.Type, len(sig.Params))
	for i, tag := range sig.Params {
		gt := tag.goType()
		if gt == nil {
			return reflect.Value{}, &value.OpError{TypeName: value.ErrFFIError, Message: "ffi: void is not a valid parameter type"}
		}
		in[i] = gt
	}
	var out []reflect.Type
	if sig.Return != TagVoid {
		rt := sig.Return.goType()
		if rt == nil {
			return reflect.Value{}, &value.OpError{TypeName: value.ErrFFIError, Message: "ffi: unknown return type"}
		}
		out = []reflect.Type{rt}
	}

	fnType := reflect.FuncOf(in, out, false)
	fnPtr := reflect.New(fnType)
	purego.RegisterFunc(fnPtr.Interface(), symAddr)
	return fnPtr.Elem(), nil
}

// bindNative wraps dynFn (built by buildDynamicFunc) as a value.NativeFn
// that marshals args in and the result back out per sig's tags,
// enforcing the argument-count check spec.md §4.8 calls out as an
// FFIError rather than a Go panic from reflect.Value.Call.
func bindNative(sig *Signature, dynFn reflect.Value) value.NativeFn {
	return func(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
		if len(args) != len(sig.Params) {
			return value.Value{}, &value.OpError{
				TypeName: value.ErrFFIError,
				Message:  "ffi: argument-count mismatch calling " + sig.Key(),
			}
		}
		in := make([]reflect.Value, len(args))
		for i, a := range args {
			in[i] = sig.Params[i].toGoValue(a)
		}
		out := dynFn.Call(in)
		if sig.Return == TagVoid || len(out) == 0 {
			return value.None, nil
		}
		return sig.Return.fromGoValue(out[0]), nil
	}
}
