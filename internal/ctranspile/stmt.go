package ctranspile

import (
	"fmt"

	"github.com/Yusee-Programmer/tauraro-sub008/internal/ast"
)

func (e *emitter) emitStmt(s ast.Stmt) {
	if e.err != nil {
		return
	}
	switch n := s.(type) {
	case *ast.ExprStmt:
		if isDocstring(n.X) {
			return
		}
		e.writeIndent()
		e.emitExprStatement(n.X)
		e.b.WriteString(";\n")
	case *ast.AnnAssign:
		e.emitAnnAssign(n)
	case *ast.Assign:
		e.emitAssign(n)
	case *ast.AugAssign:
		e.emitAugAssign(n)
	case *ast.Return:
		e.writeIndent()
		if n.Value == nil {
			e.b.WriteString("return;\n")
		} else {
			e.b.WriteString("return ")
			e.emitExprAs(n.Value, e.retType)
			e.b.WriteString(";\n")
		}
	case *ast.If:
		e.emitIf(n)
	case *ast.While:
		e.writeIndent()
		e.b.WriteString("while (")
		e.emitTruthy(n.Test)
		e.b.WriteString(") {\n")
		e.indent++
		for _, st := range n.Body {
			e.emitStmt(st)
		}
		e.indent--
		e.writef("}\n")
	case *ast.For:
		e.emitFor(n)
	case *ast.Pass:
		// nothing to emit
	case *ast.Break:
		e.writef("break;\n")
	case *ast.Continue:
		e.writef("continue;\n")
	case *ast.FunctionDef:
		// A nested def becomes its own top-level C function (C has no
		// closures without hand-rolled trampolines, which spec.md's
		// transpiler scope does not ask for); free variables are not
		// supported here and fail closed like any other unscoped
		// construct would.
		if len(n.Decorators) > 0 {
			e.fail(n.Position(), "decorated nested function")
			return
		}
		e.emitFunction(n)
	default:
		e.fail(s.Position(), fmt.Sprintf("statement %T", s))
	}
}

func (e *emitter) emitExprStatement(x ast.Expr) {
	if call, ok := x.(*ast.CallExpr); ok {
		if name, ok := call.Func.(*ast.NameExpr); ok && name.Id == "print" {
			e.emitPrintCall(call)
			return
		}
	}
	e.emitExpr(x)
}

func (e *emitter) emitPrintCall(call *ast.CallExpr) {
	e.b.WriteString("tauraro_print_n((Value[]){")
	for i, a := range call.Args {
		if i > 0 {
			e.b.WriteString(", ")
		}
		e.emitBoxed(a)
	}
	fmt.Fprintf(&e.b, "}, %d)", len(call.Args))
}

func (e *emitter) emitAnnAssign(n *ast.AnnAssign) {
	name, ok := n.Target.(*ast.NameExpr)
	if !ok {
		e.fail(n.Position(), "annotated assignment to non-name target")
		return
	}
	nt, _ := inferType(n.Annotation)
	e.natives[name.Id] = nt
	e.writeIndent()
	fmt.Fprintf(&e.b, "%s %s", nt.cType(), name.Id)
	if n.Value != nil {
		e.b.WriteString(" = ")
		e.emitExprAs(n.Value, nt)
	}
	e.b.WriteString(";\n")
}

func (e *emitter) emitAssign(n *ast.Assign) {
	if len(n.Targets) != 1 {
		e.fail(n.Position(), "chained/tuple assignment target")
		return
	}
	name, ok := n.Targets[0].(*ast.NameExpr)
	if !ok {
		e.fail(n.Position(), "assignment to non-name target")
		return
	}
	e.writeIndent()
	if nt, declared := e.natives[name.Id]; declared {
		fmt.Fprintf(&e.b, "%s = ", name.Id)
		e.emitExprAs(n.Value, nt)
	} else {
		fmt.Fprintf(&e.b, "Value %s = ", name.Id)
		e.emitBoxed(n.Value)
	}
	e.b.WriteString(";\n")
}

func (e *emitter) emitAugAssign(n *ast.AugAssign) {
	name, ok := n.Target.(*ast.NameExpr)
	if !ok {
		e.fail(n.Position(), "augmented assignment to non-name target")
		return
	}
	nt, declared := e.natives[name.Id]
	e.writeIndent()
	if declared && nt != NativeStr && hasNativeOperator(n.Op) {
		fmt.Fprintf(&e.b, "%s = %s %s ", name.Id, name.Id, cOperator(n.Op))
		e.emitExprAs(n.Value, nt)
	} else if declared {
		// "//" and "**" have no native C spelling -- round-trip through
		// the boxed runtime function and unbox the result back in.
		fmt.Fprintf(&e.b, "%s = %s(tauraro_%s(", name.Id, nt.unboxFn(), runtimeOpName(n.Op))
		e.emitBoxed(n.Target)
		e.b.WriteString(", ")
		e.emitBoxed(n.Value)
		e.b.WriteString("))")
	} else {
		fmt.Fprintf(&e.b, "%s = tauraro_%s(%s, ", name.Id, runtimeOpName(n.Op), name.Id)
		e.emitBoxed(n.Value)
		e.b.WriteString(")")
	}
	e.b.WriteString(";\n")
}

func (e *emitter) emitIf(n *ast.If) {
	e.writeIndent()
	e.b.WriteString("if (")
	e.emitTruthy(n.Test)
	e.b.WriteString(") {\n")
	e.indent++
	for _, st := range n.Body {
		e.emitStmt(st)
	}
	e.indent--
	e.writef("}")
	if len(n.Orelse) > 0 {
		e.b.WriteString(" else {\n")
		e.indent++
		for _, st := range n.Orelse {
			e.emitStmt(st)
		}
		e.indent--
		e.writef("}\n")
	} else {
		e.b.WriteString("\n")
	}
}

// emitFor lowers `for x in range(...)` into a plain C for loop, the
// one iteration form this pass gives native codegen (mirroring
// internal/jit's own choice to specialize range loops -- see
// internal/jit/doc.go). Any other iterable fails closed.
func (e *emitter) emitFor(n *ast.For) {
	target, ok := n.Target.(*ast.NameExpr)
	call, isCall := n.Iter.(*ast.CallExpr)
	if !ok || !isCall {
		e.fail(n.Position(), "for-loop over a non-range iterable")
		return
	}
	fname, _ := call.Func.(*ast.NameExpr)
	if fname == nil || fname.Id != "range" {
		e.fail(n.Position(), "for-loop over a non-range iterable")
		return
	}
	start, stop, step := "0", "", "1"
	switch len(call.Args) {
	case 1:
		stop = exprToC(call.Args[0])
	case 2:
		start, stop = exprToC(call.Args[0]), exprToC(call.Args[1])
	case 3:
		start, stop, step = exprToC(call.Args[0]), exprToC(call.Args[1]), exprToC(call.Args[2])
	default:
		e.fail(n.Position(), "range() with an unsupported argument count")
		return
	}
	e.natives[target.Id] = NativeInt
	e.writeIndent()
	fmt.Fprintf(&e.b, "for (int64_t %s = %s; %s < %s; %s += %s) {\n", target.Id, start, target.Id, stop, target.Id, step)
	e.indent++
	for _, st := range n.Body {
		e.emitStmt(st)
	}
	e.indent--
	e.writef("}\n")
}

// exprToC renders a simple literal/name expression inline, used only
// for range() bounds where a full emitExpr's boxed/native distinction
// does not apply (the bound is always a plain int64_t).
func exprToC(x ast.Expr) string {
	switch n := x.(type) {
	case *ast.NumberExpr:
		if n.IsFloat {
			return n.Literal
		}
		return fmt.Sprintf("%d", n.Int)
	case *ast.NameExpr:
		return n.Id
	default:
		return "0"
	}
}
