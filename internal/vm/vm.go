package vm

import (
	"fmt"
	"io"
	"os"

	"github.com/Yusee-Programmer/tauraro-sub008/internal/compiler"
	"github.com/Yusee-Programmer/tauraro-sub008/internal/jit"
	"github.com/Yusee-Programmer/tauraro-sub008/internal/value"
)

// ModuleLoader resolves an `import` statement to a loaded module
// value. internal/importer implements this; VM only depends on the
// interface to avoid a vm<->importer dependency cycle (importer must
// call back into the VM to execute a module's top-level code).
type ModuleLoader interface {
	Load(vm *VM, name string, level int, from *value.ModuleObj) (value.Value, error)
}

// Option configures a VM at construction time, mirroring the
// functional-options pattern db47h-ngaro/vm.go uses for Instance.
type Option func(*VM)

// WithLoader installs the module loader `import` statements dispatch
// to. Without one, every import fails with ImportError.
func WithLoader(l ModuleLoader) Option {
	return func(vm *VM) { vm.Loader = l }
}

// WithStdout redirects the output of print() and friends.
func WithStdout(w io.Writer) Option {
	return func(vm *VM) { vm.Stdout = w }
}

// WithMaxDepth caps call-stack recursion, raising RecursionError past
// the limit (spec.md §7 "RecursionError").
func WithMaxDepth(n int) Option {
	return func(vm *VM) { vm.MaxDepth = n }
}

// WithNoJIT disables the hot-loop JIT (the `run --no-jit` CLI flag,
// spec.md §6), forcing every range-loop to stay interpreted.
func WithNoJIT() Option {
	return func(vm *VM) { vm.jitDisabled = true }
}

// defaultJITThreshold is how many times a range-loop's backward branch
// must fire before its body is offered to the JIT (spec.md §4.6
// "typical: 100-1000 iterations").
const defaultJITThreshold = 200

// VM is one Tauraro interpreter instance: the set of loaded modules,
// the built-ins module every other module's globals fall back to, and
// the shared configuration (loader, output sink, recursion limit)
// every frame on the call stack sees.
type VM struct {
	Builtins *value.ModuleObj
	Modules  map[string]*value.ModuleObj
	Loader   ModuleLoader
	Stdout   io.Writer

	MaxDepth int
	depth    int

	jitDisabled bool
	jitCache    *jit.Cache
	hotCounts   map[hotLoopKey]int
}

// New constructs a VM with the built-in functions and exception types
// installed (builtins.go).
func New(opts ...Option) *VM {
	vm := &VM{
		Modules:   map[string]*value.ModuleObj{},
		Stdout:    os.Stdout,
		MaxDepth:  1000,
		jitCache:  jit.NewCache(),
		hotCounts: map[hotLoopKey]int{},
	}
	for _, opt := range opts {
		opt(vm)
	}
	vm.Builtins = newBuiltinsModule(vm)
	return vm
}

// RunModule compiles-result co as a fresh module named `name`,
// executing its top-level code, and returns the resulting module
// object. Any cache hit short-circuits -- including one still mid-
// initialization -- so a circular import sees the partially populated
// module instead of re-entering its body (spec.md §4.9: "the module is
// inserted into the cache under its dotted name with an 'initializing'
// marker" before its body runs; "circular imports succeed for names
// already defined at the point of re-import and fail otherwise", the
// "fail otherwise" falling naturally out of the partial module's
// globals dict not yet having the name).
func (vm *VM) RunModule(co *compiler.CodeObject, name string) (*value.ModuleObj, error) {
	if m, ok := vm.Modules[name]; ok {
		return m, nil
	}
	mod := value.NewModule(name).AsModule()
	vm.Modules[name] = mod
	if err := vm.execModuleBody(co, mod); err != nil {
		delete(vm.Modules, name)
		return nil, err
	}
	mod.Loaded = true
	return mod, nil
}

// RunModuleAt is RunModule plus the package metadata (dotted package
// path and backing directory) internal/importer needs on a module
// value to resolve a later relative import against it.
func (vm *VM) RunModuleAt(co *compiler.CodeObject, name, pkg, dir string) (*value.ModuleObj, error) {
	if m, ok := vm.Modules[name]; ok {
		return m, nil
	}
	mod := value.NewModule(name).AsModule()
	mod.Package = pkg
	mod.Dir = dir
	vm.Modules[name] = mod
	if err := vm.execModuleBody(co, mod); err != nil {
		delete(vm.Modules, name)
		return nil, err
	}
	mod.Loaded = true
	return mod, nil
}

// execModuleBody runs co as mod's top-level frame, writing every
// global store directly into mod.Globals.
func (vm *VM) execModuleBody(co *compiler.CodeObject, mod *value.ModuleObj) error {
	f := newFrame(co, mod, nil)
	_, err := vm.runFrame(f)
	return err
}

// ExecIn runs co as a top-level frame against the already-existing mod,
// without any of RunModule's caching/circular-import bookkeeping. It is
// the entry point `cmd/tauraro`'s `repl` command uses to execute each
// line the user types against one persistent module across the whole
// session -- RunModule's cache would otherwise treat every line after
// the first as a hit against "__main__" and never execute it.
func (vm *VM) ExecIn(co *compiler.CodeObject, mod *value.ModuleObj) error {
	return vm.execModuleBody(co, mod)
}

// CallFunction invokes fn (a Function or BoundMethod Value) with the
// given positional and keyword arguments, the entry point both
// OpCall's handler and any Go-side embedder use.
func (vm *VM) CallFunction(fn value.Value, args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	switch fn.Kind {
	case value.KindFunction:
		return vm.callFunctionObj(fn.AsFunction(), args, kwargs)
	case value.KindBoundMethod:
		bm := fn.AsBoundMethod()
		full := append([]value.Value{bm.Receiver}, args...)
		return vm.callFunctionObj(bm.Fn.AsFunction(), full, kwargs)
	case value.KindClass:
		return vm.instantiate(fn.AsClass(), args, kwargs)
	default:
		if call, cls, ok := value.LookupMRO(classOf(fn), "__call__"); ok {
			return vm.callBound(call, cls, fn, args, kwargs)
		}
		return value.Value{}, newOpError(value.ErrTypeError, fmt.Sprintf("%q object is not callable", fn.Kind))
	}
}

func (vm *VM) callFunctionObj(fn *value.FunctionObj, args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if fn.Native != nil {
		return fn.Native(args, kwargs)
	}
	co, ok := fn.Code.(*compiler.CodeObject)
	if !ok {
		return value.Value{}, newOpError(value.ErrRuntimeError, "function has no compiled code")
	}
	vm.depth++
	defer func() { vm.depth-- }()
	if vm.depth > vm.MaxDepth {
		return value.Value{}, newOpError(value.ErrRecursionError, "maximum recursion depth exceeded")
	}
	locals, err := bindCall(co, args, kwargs)
	if err != nil {
		return value.Value{}, err
	}
	f := newFrame(co, fn.Globals, fn.Freevars)
	for i, v := range locals {
		f.setLocal(i, v)
	}
	f.FuncName = fn.Name
	f.DefiningClass = fn.DefiningClass

	if co.IsGenerator {
		return vm.newGeneratorValue(fn.Name, f), nil
	}
	return vm.runFrame(f)
}

func (vm *VM) callBound(fnVal value.Value, definer *value.Class, receiver value.Value, args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	fn := fnVal.AsFunction()
	full := append([]value.Value{receiver}, args...)
	bound := *fn
	bound.DefiningClass = definer
	return vm.callFunctionObj(&bound, full, kwargs)
}

func classOf(v value.Value) *value.Class {
	switch v.Kind {
	case value.KindInstance:
		return v.AsInstance().Class
	case value.KindClass:
		return v.AsClass()
	default:
		return value.ObjectClass
	}
}
