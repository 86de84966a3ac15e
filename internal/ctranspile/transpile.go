package ctranspile

import (
	"fmt"
	"strings"

	"github.com/Yusee-Programmer/tauraro-sub008/internal/ast"
	"github.com/pkg/errors"
)

// Result is what Transpile produces: C source plus the header it
// `#include`s, and -- only for Options.Backend == BackendWasm, and
// only when at least one top-level function stayed within wasm.go's
// restricted scope -- a minimal wasm module for those functions.
type Result struct {
	Header string
	Source string
	Wasm   []byte // nil unless BackendWasm produced at least one eligible function
}

// UnsupportedError reports an AST construct outside the subset this
// transpiler emits C for. Transpile fails closed: rather than emit
// broken C for a construct it does not understand, it stops and
// reports exactly where, the same "decline rather than guess" posture
// internal/jit takes for loop bodies outside its own restricted scope.
type UnsupportedError struct {
	Pos  ast.Pos
	What string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("%s: ctranspile: unsupported: %s", e.Pos.String(), e.What)
}

type emitter struct {
	b      strings.Builder
	opts   Options
	indent int
	// natives tracks which local/parameter names in the function
	// currently being emitted carry a native (unboxed) C type, so
	// emitExpr can decide whether a binary operation lowers to a
	// runtime helper call or inline C arithmetic.
	natives map[string]NativeType
	// retType is the native return type of the function currently
	// being emitted, NativeNone for boxed (the default).
	retType NativeType
	err     error
}

func (e *emitter) fail(pos ast.Pos, what string) {
	if e.err == nil {
		e.err = &UnsupportedError{Pos: pos, What: what}
	}
}

func (e *emitter) writeIndent() { e.b.WriteString(strings.Repeat("\t", e.indent)) }

func (e *emitter) writef(format string, args ...interface{}) {
	e.writeIndent()
	fmt.Fprintf(&e.b, format, args...)
}

// Transpile walks mod and returns the C translation unit for it, or
// the first UnsupportedError encountered (wrapped with
// github.com/pkg/errors the way every host-level failure in this
// module is, per SPEC_FULL.md §B).
func Transpile(mod *ast.Module, opts Options) (Result, error) {
	e := &emitter{opts: opts, natives: map[string]NativeType{}}
	e.writef("#include \"tauraro_rt.h\"\n\n")
	if opts.Memory != MemAutomatic {
		e.writef("/* memory strategy: %s */\n\n", opts.Memory)
	}
	e.b.WriteString(emitIntrinsicDefs(opts))

	for _, s := range mod.Body {
		e.emitTopLevel(s)
		if e.err != nil {
			return Result{}, errors.Wrap(e.err, "ctranspile: transpile module")
		}
	}

	res := Result{Header: RuntimeHeader(opts), Source: e.b.String()}
	if opts.Backend == BackendWasm {
		wasm, ok := EmitWasm(mod)
		if ok {
			res.Wasm = wasm
		}
	}
	return res, nil
}

func (e *emitter) emitTopLevel(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.FunctionDef:
		e.emitFunction(n)
	case *ast.ClassDef:
		e.emitClass(n)
	case *ast.ExternBlock:
		// Foreign declarations are resolved by internal/ffi at import
		// time, not emitted as C -- nothing to do here.
	case *ast.ExprStmt:
		if isDocstring(n.X) {
			return
		}
		e.fail(n.Position(), "top-level expression statement")
	case *ast.Import, *ast.ImportFrom:
		// The module search/loader machinery (internal/importer) has no
		// C-level equivalent; a transpiled program links its imports at
		// C compile time instead, which is outside this pass's scope.
	default:
		e.fail(s.Position(), fmt.Sprintf("top-level %T", s))
	}
}

func isDocstring(x ast.Expr) bool {
	_, ok := x.(*ast.StringExpr)
	return ok
}

// emitFunction writes one top-level function. Each parameter's C type
// comes from inferType on its annotation; the return type likewise
// from fn.Returns, defaulting to boxed Value for both when absent.
func (e *emitter) emitFunction(fn *ast.FunctionDef) {
	saved, savedRet := e.natives, e.retType
	e.natives = map[string]NativeType{}
	defer func() { e.natives, e.retType = saved, savedRet }()

	retType := "Value"
	if fn.Returns != nil {
		if nt, ok := inferType(fn.Returns); ok {
			e.retType = nt
			retType = nt.cType()
		}
	}

	params := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		nt, ok := inferType(p.Annotation)
		if ok {
			e.natives[p.Name] = nt
		}
		params[i] = fmt.Sprintf("%s %s", nt.cType(), p.Name)
	}
	if len(params) == 0 {
		params = []string{"void"}
	}

	e.writef("%s tauraro_fn_%s(%s) {\n", retType, fn.Name, strings.Join(params, ", "))
	e.indent++
	for _, s := range fn.Body {
		e.emitStmt(s)
	}
	e.indent--
	e.writef("}\n\n")
}
