package ctranspile

import (
	"fmt"
	"strconv"

	"github.com/Yusee-Programmer/tauraro-sub008/internal/ast"
)

// nativeKindOf reports the NativeType x would naturally evaluate to if
// every sub-expression involved is already native, or NativeNone if x
// has to be boxed (an unannotated name, a call, a container literal,
// ...). emitExpr/emitExprAs use it to decide between inline C
// arithmetic and a tauraro_* runtime call -- spec.md §4.7's "mixing
// annotated and unannotated in one expression promotes the native
// side to a boxed Value before operating" is the NativeNone case here.
func (e *emitter) nativeKindOf(x ast.Expr) NativeType {
	switch n := x.(type) {
	case *ast.NumberExpr:
		if n.IsFloat {
			return NativeFloat
		}
		return NativeInt
	case *ast.StringExpr:
		return NativeStr
	case *ast.ConstExpr:
		if n.Kind == ast.ConstTrue || n.Kind == ast.ConstFalse {
			return NativeBool
		}
		return NativeNone
	case *ast.NameExpr:
		return e.natives[n.Id]
	case *ast.UnaryOpExpr:
		if n.Op == "not" {
			return NativeBool
		}
		return e.nativeKindOf(n.X)
	case *ast.BinOpExpr:
		if n.Op == "**" {
			// No native pow operator in C; always go through tauraro_pow.
			return NativeNone
		}
		l, r := e.nativeKindOf(n.Left), e.nativeKindOf(n.Right)
		if l == NativeNone || r == NativeNone || l == NativeStr || r == NativeStr || l == NativeBool || r == NativeBool {
			return NativeNone
		}
		if l == NativeFloat || r == NativeFloat {
			return NativeFloat
		}
		return NativeInt
	default:
		return NativeNone
	}
}

// emitExpr renders x in whatever representation it naturally falls
// into (native if every operand is native, boxed otherwise).
func (e *emitter) emitExpr(x ast.Expr) {
	e.emitExprAs(x, e.nativeKindOf(x))
}

// emitExprAs renders x coerced to want: native C code for want !=
// NativeNone (boxing the result only where an inner sub-expression
// could not stay native), or a fully boxed Value for want ==
// NativeNone.
func (e *emitter) emitExprAs(x ast.Expr, want NativeType) {
	if e.err != nil {
		return
	}
	if want == NativeNone {
		e.emitBoxed(x)
		return
	}
	switch n := x.(type) {
	case *ast.NumberExpr:
		if n.IsFloat {
			// Format from the parsed float64 rather than n.Literal:
			// Python numeric literals allow digit-group underscores and
			// other spellings C's lexer does not.
			e.b.WriteString(strconv.FormatFloat(n.Float, 'g', -1, 64))
		} else {
			fmt.Fprintf(&e.b, "%d", n.Int)
		}
	case *ast.ConstExpr:
		if n.Kind == ast.ConstTrue {
			e.b.WriteString("true")
		} else {
			e.b.WriteString("false")
		}
	case *ast.StringExpr:
		fmt.Fprintf(&e.b, "%q", n.Value)
	case *ast.NameExpr:
		if nt, ok := e.natives[n.Id]; ok && nt == want {
			e.b.WriteString(n.Id)
			return
		}
		// Native wanted but the name is boxed (or a different native
		// kind): unbox through the runtime helper.
		fmt.Fprintf(&e.b, "%s(", want.unboxFn())
		e.emitBoxed(x)
		e.b.WriteString(")")
	case *ast.UnaryOpExpr:
		e.emitUnary(n, want)
	case *ast.BinOpExpr:
		if e.nativeKindOf(x) == NativeNone {
			fmt.Fprintf(&e.b, "%s(", want.unboxFn())
			e.emitBoxed(x)
			e.b.WriteString(")")
			return
		}
		e.b.WriteString("(")
		e.emitExprAs(n.Left, want)
		fmt.Fprintf(&e.b, " %s ", cOperator(n.Op))
		e.emitExprAs(n.Right, want)
		e.b.WriteString(")")
	default:
		fmt.Fprintf(&e.b, "%s(", want.unboxFn())
		e.emitBoxed(x)
		e.b.WriteString(")")
	}
}

// emitBoxed renders x as a fully boxed Value expression: literals
// through the tauraro_box_* constructors, arithmetic through the
// tauraro_* runtime functions, names directly (already Value-typed
// locals) or boxed on the fly if they happen to be a tracked native.
func (e *emitter) emitBoxed(x ast.Expr) {
	if e.err != nil {
		return
	}
	switch n := x.(type) {
	case *ast.NumberExpr:
		if n.IsFloat {
			fmt.Fprintf(&e.b, "tauraro_box_float(%s)", strconv.FormatFloat(n.Float, 'g', -1, 64))
		} else {
			fmt.Fprintf(&e.b, "tauraro_box_int(%d)", n.Int)
		}
	case *ast.ConstExpr:
		switch n.Kind {
		case ast.ConstTrue:
			e.b.WriteString("tauraro_box_bool(true)")
		case ast.ConstFalse:
			e.b.WriteString("tauraro_box_bool(false)")
		default:
			e.b.WriteString("((Value){0})")
		}
	case *ast.StringExpr:
		fmt.Fprintf(&e.b, "tauraro_box_str(%q)", n.Value)
	case *ast.NameExpr:
		if nt, ok := e.natives[n.Id]; ok {
			fmt.Fprintf(&e.b, "tauraro_box_%s(%s)", boxSuffix(nt), n.Id)
			return
		}
		e.b.WriteString(n.Id)
	case *ast.BinOpExpr:
		fmt.Fprintf(&e.b, "tauraro_%s(", runtimeOpName(n.Op))
		e.emitBoxed(n.Left)
		e.b.WriteString(", ")
		e.emitBoxed(n.Right)
		e.b.WriteString(")")
	case *ast.UnaryOpExpr:
		e.emitBoxedUnary(n)
	case *ast.CompareExpr:
		e.emitCompare(n, true)
	case *ast.BoolOpExpr:
		e.emitBoolOp(n)
	case *ast.CallExpr:
		e.emitCall(n)
	case *ast.AttributeExpr:
		e.emitBoxed(n.Value)
		fmt.Fprintf(&e.b, " /* .%s not resolved: no static attribute map at transpile time */", n.Attr)
		e.fail(n.Position(), "attribute access (requires a runtime attribute map lookup)")
	default:
		e.fail(x.Position(), fmt.Sprintf("expression %T", x))
	}
}

func (e *emitter) emitUnary(n *ast.UnaryOpExpr, want NativeType) {
	switch n.Op {
	case "-":
		e.b.WriteString("(-")
		e.emitExprAs(n.X, want)
		e.b.WriteString(")")
	case "~":
		e.b.WriteString("(~")
		e.emitExprAs(n.X, NativeInt)
		e.b.WriteString(")")
	case "not":
		e.b.WriteString("(!")
		e.emitTruthy(n.X)
		e.b.WriteString(")")
	default:
		e.fail(n.Position(), "unary operator "+n.Op)
	}
}

func (e *emitter) emitBoxedUnary(n *ast.UnaryOpExpr) {
	switch n.Op {
	case "-":
		e.b.WriteString("tauraro_sub(tauraro_box_int(0), ")
		e.emitBoxed(n.X)
		e.b.WriteString(")")
	case "not":
		e.b.WriteString("tauraro_box_bool(!tauraro_truthy(")
		e.emitBoxed(n.X)
		e.b.WriteString("))")
	default:
		e.fail(n.Position(), "unary operator "+n.Op+" on a boxed operand")
	}
}

// emitTruthy renders x as a plain C `bool`-valued expression, for if/
// while conditions. Native-comparable expressions lower to C's own
// operators; anything boxed routes through tauraro_truthy.
func (e *emitter) emitTruthy(x ast.Expr) {
	if cmp, ok := x.(*ast.CompareExpr); ok {
		e.emitCompare(cmp, false)
		return
	}
	if e.nativeKindOf(x) != NativeNone && e.nativeKindOf(x) != NativeStr {
		e.emitExprAs(x, e.nativeKindOf(x))
		return
	}
	e.b.WriteString("tauraro_truthy(")
	e.emitBoxed(x)
	e.b.WriteString(")")
}

// emitCompare renders a (possibly chained) comparison. asBoxed selects
// between a `Value` result (tauraro_box_bool around the combined C
// bool) and a bare C bool, since emitBoxed and emitTruthy both need
// this but want different wrappers.
func (e *emitter) emitCompare(n *ast.CompareExpr, asBoxed bool) {
	if asBoxed {
		e.b.WriteString("tauraro_box_bool(")
	}
	e.b.WriteString("(")
	left := n.Left
	for i, op := range n.Ops {
		if i > 0 {
			e.b.WriteString(" && ")
		}
		e.emitComparePair(left, op, n.Comparators[i])
		left = n.Comparators[i]
	}
	e.b.WriteString(")")
	if asBoxed {
		e.b.WriteString(")")
	}
}

func (e *emitter) emitComparePair(l ast.Expr, op string, r ast.Expr) {
	lt, rt := e.nativeKindOf(l), e.nativeKindOf(r)
	if lt != NativeNone && rt != NativeNone && lt != NativeStr && rt != NativeStr {
		e.b.WriteString("(")
		e.emitExprAs(l, lt)
		fmt.Fprintf(&e.b, " %s ", cOperator(op))
		e.emitExprAs(r, lt)
		e.b.WriteString(")")
		return
	}
	fmt.Fprintf(&e.b, "(tauraro_compare(")
	e.emitBoxed(l)
	e.b.WriteString(", ")
	e.emitBoxed(r)
	fmt.Fprintf(&e.b, ") %s 0)", compareToC(op))
}

func (e *emitter) emitBoolOp(n *ast.BoolOpExpr) {
	e.b.WriteString("tauraro_box_bool(")
	sep := " && "
	if n.Op == "or" {
		sep = " || "
	}
	e.b.WriteString("(")
	for i, v := range n.Values {
		if i > 0 {
			e.b.WriteString(sep)
		}
		e.emitTruthy(v)
	}
	e.b.WriteString(")")
	e.b.WriteString(")")
}

func (e *emitter) emitCall(n *ast.CallExpr) {
	if inName, isIntrinsic := isIntrinsicCall(n); isIntrinsic {
		e.emitIntrinsicCall(inName, n)
		return
	}
	name, ok := n.Func.(*ast.NameExpr)
	if !ok {
		e.fail(n.Position(), "call to a non-name callee (method/attribute dispatch)")
		return
	}
	if len(n.Keywords) > 0 {
		e.fail(n.Position(), "call with keyword arguments")
		return
	}
	fmt.Fprintf(&e.b, "tauraro_fn_%s(", name.Id)
	for i, a := range n.Args {
		if i > 0 {
			e.b.WriteString(", ")
		}
		e.emitBoxed(a)
	}
	e.b.WriteString(")")
}

func (e *emitter) emitIntrinsicCall(name string, n *ast.CallExpr) {
	a0, a1 := "0", "0"
	if len(n.Args) > 0 {
		a0 = "(uint64_t)(" + boxedAsIntLiteral(n.Args[0]) + ")"
	}
	if len(n.Args) > 1 {
		a1 = "(uint64_t)(" + boxedAsIntLiteral(n.Args[1]) + ")"
	}
	fmt.Fprintf(&e.b, "tauraro_box_int((int64_t)tauraro_%s(%s, %s))", name, a0, a1)
}

// boxedAsIntLiteral renders an intrinsic call argument as a plain
// int64_t expression; intrinsics are always called with native-int
// operands in practice (port numbers, addresses, register values).
func boxedAsIntLiteral(x ast.Expr) string {
	if n, ok := x.(*ast.NumberExpr); ok && !n.IsFloat {
		return fmt.Sprintf("%d", n.Int)
	}
	if n, ok := x.(*ast.NameExpr); ok {
		return n.Id
	}
	return "0"
}

// hasNativeOperator reports whether op has a direct C infix spelling;
// "**" (pow) does not, and "//" only approximates Python's floor
// division (see cOperator), but both are still excluded here so
// augmented assignment goes through the exact boxed runtime helper
// instead of compounding the approximation silently.
func hasNativeOperator(op string) bool {
	switch op {
	case "+", "-", "*", "/", "%", "&", "|", "^", "<<", ">>":
		return true
	default:
		return false
	}
}

// cOperator maps a Python binary operator to its native C spelling.
// "//" truncates toward zero under plain C division, which only
// matches Python's floor-toward-negative-infinity semantics for
// same-signed operands; mixed-sign native floor-division is a known
// gap of the native fast path (the boxed path's tauraro_floordiv is
// exact, per internal/value's own FloorDiv).
func cOperator(op string) string {
	switch op {
	case "//":
		return "/"
	default:
		return op
	}
}

func compareToC(op string) string {
	switch op {
	case "==":
		return "=="
	case "!=":
		return "!="
	case "<":
		return "<"
	case "<=":
		return "<="
	case ">":
		return ">"
	case ">=":
		return ">="
	default:
		return "=="
	}
}

func runtimeOpName(op string) string {
	switch op {
	case "+":
		return "add"
	case "-":
		return "sub"
	case "*":
		return "mul"
	case "/":
		return "div"
	case "//":
		return "floordiv"
	case "%":
		return "mod"
	case "**":
		return "pow"
	default:
		return "add"
	}
}

func boxSuffix(nt NativeType) string {
	switch nt {
	case NativeInt:
		return "int"
	case NativeFloat:
		return "float"
	case NativeBool:
		return "bool"
	case NativeStr:
		return "str"
	default:
		return "int"
	}
}
