package ctranspile

import "github.com/Yusee-Programmer/tauraro-sub008/internal/ast"

// NativeType is one of the four annotation-recognized native C
// representations spec.md §4.7 names; NativeNone means "no recognized
// annotation", which keeps the variable boxed.
type NativeType int

const (
	NativeNone NativeType = iota
	NativeInt
	NativeFloat
	NativeBool
	NativeStr
)

// cType is the C type a NativeType lowers to.
func (t NativeType) cType() string {
	switch t {
	case NativeInt:
		return "int64_t"
	case NativeFloat:
		return "double"
	case NativeBool:
		return "bool"
	case NativeStr:
		return "const char*"
	default:
		return "Value"
	}
}

// unboxFn is the tauraro_rt.h helper that converts a boxed Value into
// t's native representation; callers use it whenever a native-typed
// parameter or local receives a boxed argument, per spec.md §4.7
// "Mixing annotated and unannotated in one expression promotes the
// native side to a boxed Value before operating" -- the reverse
// direction (boxed argument, native parameter) needs the same kind of
// conversion at the call boundary.
func (t NativeType) unboxFn() string {
	switch t {
	case NativeInt:
		return "tauraro_unbox_int"
	case NativeFloat:
		return "tauraro_unbox_float"
	case NativeBool:
		return "tauraro_unbox_bool"
	case NativeStr:
		return "tauraro_unbox_str"
	default:
		return ""
	}
}

// inferType resolves a type annotation expression to the NativeType it
// names, or NativeNone if ann is nil or not one of the four recognized
// bare names (spec.md §4.7: "When source annotates int/float/bool/str
// ..."). Annotations are restricted to bare names here; subscripted
// generics (`list[int]`) and anything else always stay boxed.
func inferType(ann ast.Expr) (NativeType, bool) {
	name, ok := ann.(*ast.NameExpr)
	if !ok {
		return NativeNone, false
	}
	switch name.Id {
	case "int":
		return NativeInt, true
	case "float":
		return NativeFloat, true
	case "bool":
		return NativeBool, true
	case "str":
		return NativeStr, true
	default:
		return NativeNone, false
	}
}
