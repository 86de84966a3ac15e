package stdlib

import (
	"math"

	"github.com/Yusee-Programmer/tauraro-sub008/internal/value"
)

// mathModule grounds its function selection on the one-Go-stdlib-call-
// per-builtin shape internal/vm/builtins.go already uses for
// print/len/abs/etc: each export is a thin value.NativeFn wrapper
// around the matching math.* function.
func mathModule() *value.ModuleObj {
	mod := newModule("math")
	set := func(name string, fn value.NativeFn) { mod.Globals.Set(value.Str(name), value.NativeFunction(name, fn)) }

	mod.Globals.Set(value.Str("pi"), value.Float(math.Pi))
	mod.Globals.Set(value.Str("e"), value.Float(math.E))
	mod.Globals.Set(value.Str("inf"), value.Float(math.Inf(1)))
	mod.Globals.Set(value.Str("nan"), value.Float(math.NaN()))

	set("sqrt", unaryFloatFn("sqrt", math.Sqrt))
	set("floor", unaryFloatToIntFn("floor", math.Floor))
	set("ceil", unaryFloatToIntFn("ceil", math.Ceil))
	set("sin", unaryFloatFn("sin", math.Sin))
	set("cos", unaryFloatFn("cos", math.Cos))
	set("tan", unaryFloatFn("tan", math.Tan))
	set("log", unaryFloatFn("log", math.Log))
	set("log2", unaryFloatFn("log2", math.Log2))
	set("log10", unaryFloatFn("log10", math.Log10))
	set("exp", unaryFloatFn("exp", math.Exp))
	set("pow", func(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
		if len(args) != 2 {
			return value.Value{}, typeErrf("math.pow() takes exactly 2 arguments, got %d", len(args))
		}
		a, err := asFloat(args[0])
		if err != nil {
			return value.Value{}, err
		}
		b, err := asFloat(args[1])
		if err != nil {
			return value.Value{}, err
		}
		return value.Float(math.Pow(a, b)), nil
	})
	set("isnan", func(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
		f, err := asFloat1(args)
		if err != nil {
			return value.Value{}, err
		}
		return value.Bool(math.IsNaN(f)), nil
	})

	return mod
}

func unaryFloatFn(name string, fn func(float64) float64) value.NativeFn {
	return func(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
		f, err := asFloat1(args)
		if err != nil {
			return value.Value{}, err
		}
		return value.Float(fn(f)), nil
	}
}

func unaryFloatToIntFn(name string, fn func(float64) float64) value.NativeFn {
	return func(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
		f, err := asFloat1(args)
		if err != nil {
			return value.Value{}, err
		}
		return value.Int(int64(fn(f))), nil
	}
}

func asFloat1(args []value.Value) (float64, error) {
	if len(args) != 1 {
		return 0, typeErrf("expected exactly 1 argument, got %d", len(args))
	}
	return asFloat(args[0])
}

func asFloat(v value.Value) (float64, error) {
	switch v.Kind {
	case value.KindFloat:
		return v.AsFloat(), nil
	case value.KindInt:
		return float64(v.AsInt()), nil
	case value.KindBool:
		return float64(v.AsInt()), nil
	default:
		return 0, typeErrf("expected a number, got %s", v.Kind)
	}
}
