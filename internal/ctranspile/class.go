package ctranspile

import (
	"fmt"

	"github.com/Yusee-Programmer/tauraro-sub008/internal/ast"
)

// emitClass writes a class's instance struct, one C function per
// method, a method-name lookup table, and a descriptor carrying its
// base-class pointers (spec.md §4.7 "Classes. Each class produces a
// struct ..., a MRO descriptor table, and C functions for each
// method. Dispatch is by method-name lookup against the class's
// attribute map (no vtable -- dynamic attribute addition must remain
// possible)").
//
// Base order in the descriptor is declaration order, a source-level
// approximation of the runtime's C3Linearize (internal/value); the
// transpiler has no class registry to resolve a true MRO against at
// this stage, so ambiguous multiple-inheritance diamonds resolve the
// same way the VM would only when declaration order already matches
// C3's result (recorded in DESIGN.md as a known transpile-time
// simplification).
func (e *emitter) emitClass(cd *ast.ClassDef) {
	cname := "Tauraro_" + cd.Name
	fields, methods := splitClassBody(cd.Body)

	e.writef("typedef struct %s {\n", cname)
	if e.opts.Memory == MemAutomatic {
		e.writef("\tTaurarroObj header;\n")
	}
	for _, f := range fields {
		nt, _ := inferType(f.Annotation)
		e.writef("\t%s %s;\n", nt.cType(), f.Target.(*ast.NameExpr).Id)
	}
	e.writef("} %s;\n\n", cname)

	names := make([]string, 0, len(methods))
	for _, m := range methods {
		e.emitMethod(cname, m)
		names = append(names, m.Name)
	}

	e.writef("static TaurarroMethodEntry %s_methods[] = {\n", cname)
	for _, m := range methods {
		e.writef("\t{ %q, %s_method_%s },\n", m.Name, cname, m.Name)
	}
	e.writef("};\n\n")

	baseVar := "NULL"
	if len(cd.Bases) > 0 {
		baseVar = cname + "_bases"
		e.writef("static TaurarroClassDesc *%s[] = {\n", baseVar)
		for _, b := range cd.Bases {
			if n, ok := b.(*ast.NameExpr); ok {
				e.writef("\t&Tauraro_%s_desc,\n", n.Id)
			}
		}
		e.writef("};\n\n")
	}

	e.writef("TaurarroClassDesc Tauraro_%s_desc = {\n", cd.Name)
	e.writef("\t%q, %s, %d, %s_methods, %d\n", cd.Name, baseVar, len(cd.Bases), cname, len(names))
	e.writef("};\n\n")
}

// splitClassBody separates a class body into native-field declarations
// (bare `name: type` class attributes) and method definitions; any
// other statement (a plain assignment, a nested class, a docstring
// expression) is not instance state and is skipped at the struct
// level -- spec.md's "struct for instance state" names fields, not
// arbitrary class-body statements.
func splitClassBody(body []ast.Stmt) (fields []*ast.AnnAssign, methods []*ast.FunctionDef) {
	for _, s := range body {
		switch n := s.(type) {
		case *ast.AnnAssign:
			if _, ok := n.Target.(*ast.NameExpr); ok {
				fields = append(fields, n)
			}
		case *ast.FunctionDef:
			methods = append(methods, n)
		}
	}
	return fields, methods
}

func (e *emitter) emitMethod(cname string, fn *ast.FunctionDef) {
	e.writef("Value %s_method_%s(Value self, Value *args, int nargs) {\n", cname, fn.Name)
	e.indent++
	for i, p := range fn.Params {
		if p.Name == "self" {
			continue
		}
		nt, _ := inferType(p.Annotation)
		e.writeIndent()
		e.b.WriteString(fmt.Sprintf("%s %s = ", nt.cType(), p.Name))
		if nt == NativeNone {
			e.b.WriteString(fmt.Sprintf("args[%d];\n", i-1))
		} else {
			e.b.WriteString(fmt.Sprintf("%s(args[%d]);\n", nt.unboxFn(), i-1))
		}
	}
	for _, s := range fn.Body {
		e.emitStmt(s)
	}
	e.indent--
	e.writef("}\n\n")
}
