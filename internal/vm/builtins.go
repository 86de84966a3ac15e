package vm

import (
	"fmt"

	"github.com/Yusee-Programmer/tauraro-sub008/internal/value"
)

// newBuiltinsModule installs the built-in functions and exception
// constructors every module's globals fall back to (spec.md §4.1), and
// wires value.GeneratorClass's dunder methods -- both are one-time,
// VM-instance-scoped setup, grounded on db47h-ngaro/vm.go's Option
// pattern wiring its own fixed instruction set once at construction.
func newBuiltinsModule(vm *VM) *value.ModuleObj {
	mod := value.NewModule("builtins").AsModule()
	set := func(name string, fn value.NativeFn) {
		mod.Globals.Set(value.Str(name), value.NativeFunction(name, fn))
	}

	set("print", builtinPrint(vm))
	set("len", builtinLen)
	set("range", builtinRange)
	set("str", builtinStr)
	set("int", builtinInt)
	set("float", builtinFloat)
	set("bool", builtinBool)
	set("repr", builtinRepr)
	set("list", builtinList)
	set("tuple", builtinTuple)
	set("set", builtinSet)
	set("dict", builtinDict)
	set("type", builtinType(vm))
	set("isinstance", builtinIsinstance(vm))
	set("issubclass", builtinIssubclass)
	set("hasattr", builtinHasattr(vm))
	set("getattr", builtinGetattr(vm))
	set("setattr", builtinSetattr(vm))
	set("abs", builtinAbs)
	set("min", builtinMinMax(vm, value.CmpLT))
	set("max", builtinMinMax(vm, value.CmpGT))
	set("sum", builtinSum)
	set("id", builtinID)
	set("next", builtinNext(vm))

	for _, name := range builtinExceptionNames {
		n := name
		set(n, func(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
			msg := ""
			if len(args) > 0 {
				msg = value.ToDisplayString(args[0])
			}
			return value.NewException(n, msg), nil
		})
	}

	installGeneratorMethods(vm)
	return mod
}

var builtinExceptionNames = []string{
	"Exception", value.ErrSyntaxError, value.ErrIndentationError, value.ErrTabError,
	value.ErrNameError, value.ErrUnboundLocalError, value.ErrAttributeError, value.ErrTypeError,
	value.ErrValueError, value.ErrKeyError, value.ErrIndexError, value.ErrZeroDivisionError,
	value.ErrOverflowError, value.ErrArithmeticError, value.ErrImportError, value.ErrModuleNotFoundError,
	value.ErrInheritanceError, value.ErrRecursionError, value.ErrRuntimeError, value.ErrNotImplementedError,
	value.ErrAssertionError, value.ErrFFIError, value.ErrStopIteration, value.ErrCancelledError,
}

func builtinPrint(vm *VM) value.NativeFn {
	return func(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
		sep, end := " ", "\n"
		if v, ok := kwargs["sep"]; ok {
			sep = value.ToDisplayString(v)
		}
		if v, ok := kwargs["end"]; ok {
			end = value.ToDisplayString(v)
		}
		for i, a := range args {
			if i > 0 {
				fmt.Fprint(vm.Stdout, sep)
			}
			fmt.Fprint(vm.Stdout, value.ToDisplayString(a))
		}
		fmt.Fprint(vm.Stdout, end)
		return value.None, nil
	}
}

func builtinLen(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Value{}, newOpError(value.ErrTypeError, "len() takes exactly one argument")
	}
	n, ok := value.Len(args[0])
	if !ok {
		return value.Value{}, newOpError(value.ErrTypeError, fmt.Sprintf("object of type %q has no len()", args[0].Kind))
	}
	return value.Int(int64(n)), nil
}

func builtinRange(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	var start, stop, step int64 = 0, 0, 1
	switch len(args) {
	case 1:
		stop = args[0].AsInt()
	case 2:
		start, stop = args[0].AsInt(), args[1].AsInt()
	case 3:
		start, stop, step = args[0].AsInt(), args[1].AsInt(), args[2].AsInt()
	default:
		return value.Value{}, newOpError(value.ErrTypeError, "range expected 1 to 3 arguments")
	}
	if step == 0 {
		return value.Value{}, newOpError(value.ErrValueError, "range() arg 3 must not be zero")
	}
	return value.NewRange(start, stop, step), nil
}

func builtinStr(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if len(args) == 0 {
		return value.Str(""), nil
	}
	return value.Str(value.ToDisplayString(args[0])), nil
}

func builtinRepr(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Value{}, newOpError(value.ErrTypeError, "repr() takes exactly one argument")
	}
	return value.Str(value.Repr(args[0])), nil
}

func builtinInt(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if len(args) == 0 {
		return value.Int(0), nil
	}
	v := args[0]
	switch v.Kind {
	case value.KindInt, value.KindBool:
		return value.Int(v.AsInt()), nil
	case value.KindFloat:
		return value.Int(int64(v.AsFloat())), nil
	case value.KindStr:
		var n int64
		if _, err := fmt.Sscanf(v.AsStr(), "%d", &n); err != nil {
			return value.Value{}, newOpError(value.ErrValueError, fmt.Sprintf("invalid literal for int(): %q", v.AsStr()))
		}
		return value.Int(n), nil
	}
	return value.Value{}, newOpError(value.ErrTypeError, fmt.Sprintf("int() argument must be a string or a number, not %q", v.Kind))
}

func builtinFloat(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if len(args) == 0 {
		return value.Float(0), nil
	}
	v := args[0]
	switch v.Kind {
	case value.KindInt, value.KindBool:
		return value.Float(float64(v.AsInt())), nil
	case value.KindFloat:
		return v, nil
	case value.KindStr:
		var f float64
		if _, err := fmt.Sscanf(v.AsStr(), "%g", &f); err != nil {
			return value.Value{}, newOpError(value.ErrValueError, fmt.Sprintf("could not convert string to float: %q", v.AsStr()))
		}
		return value.Float(f), nil
	}
	return value.Value{}, newOpError(value.ErrTypeError, fmt.Sprintf("float() argument must be a string or a number, not %q", v.Kind))
}

func builtinBool(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if len(args) == 0 {
		return value.Bool(false), nil
	}
	return value.Bool(args[0].Truthy()), nil
}

func builtinList(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if len(args) == 0 {
		return value.List(nil), nil
	}
	items, err := collect(args[0])
	if err != nil {
		return value.Value{}, err
	}
	return value.List(items), nil
}

func builtinTuple(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if len(args) == 0 {
		return value.Tuple(nil), nil
	}
	items, err := collect(args[0])
	if err != nil {
		return value.Value{}, err
	}
	return value.Tuple(items), nil
}

func builtinSet(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if len(args) == 0 {
		return value.NewSet(nil), nil
	}
	items, err := collect(args[0])
	if err != nil {
		return value.Value{}, err
	}
	return value.NewSet(items), nil
}

func builtinDict(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	d := value.NewDict()
	if len(args) == 1 && args[0].Kind == value.KindDict {
		for _, kv := range args[0].AsDict().Items() {
			d.AsDict().Set(kv[0], kv[1])
		}
	}
	for k, v := range kwargs {
		d.AsDict().Set(value.Str(k), v)
	}
	return d, nil
}

func collect(v value.Value) ([]value.Value, error) {
	it, ok := value.Iter(v)
	if !ok {
		return nil, newOpError(value.ErrTypeError, fmt.Sprintf("%q object is not iterable", v.Kind))
	}
	var out []value.Value
	for {
		item, ok := it.Next()
		if !ok {
			return out, nil
		}
		out = append(out, item)
	}
}

func builtinType(vm *VM) value.NativeFn {
	return func(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
		if len(args) != 1 {
			return value.Value{}, newOpError(value.ErrTypeError, "type() takes exactly one argument")
		}
		return value.ClassValue(classOf(args[0])), nil
	}
}

func builtinIsinstance(vm *VM) value.NativeFn {
	return func(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
		if len(args) != 2 {
			return value.Value{}, newOpError(value.ErrTypeError, "isinstance() takes exactly two arguments")
		}
		if args[1].Kind != value.KindClass {
			return value.Value{}, newOpError(value.ErrTypeError, "isinstance() arg 2 must be a type")
		}
		target := args[1].AsClass()
		for _, c := range classOf(args[0]).MRO {
			if c == target {
				return value.Bool(true), nil
			}
		}
		return value.Bool(false), nil
	}
}

func builtinIssubclass(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if len(args) != 2 || args[0].Kind != value.KindClass || args[1].Kind != value.KindClass {
		return value.Value{}, newOpError(value.ErrTypeError, "issubclass() takes two class arguments")
	}
	target := args[1].AsClass()
	for _, c := range args[0].AsClass().MRO {
		if c == target {
			return value.Bool(true), nil
		}
	}
	return value.Bool(false), nil
}

func builtinHasattr(vm *VM) value.NativeFn {
	return func(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
		if len(args) != 2 {
			return value.Value{}, newOpError(value.ErrTypeError, "hasattr() takes exactly two arguments")
		}
		_, err := vm.getAttr(args[0], args[1].AsStr())
		return value.Bool(err == nil), nil
	}
}

func builtinGetattr(vm *VM) value.NativeFn {
	return func(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
		if len(args) < 2 {
			return value.Value{}, newOpError(value.ErrTypeError, "getattr() takes at least two arguments")
		}
		v, err := vm.getAttr(args[0], args[1].AsStr())
		if err != nil {
			if len(args) >= 3 {
				return args[2], nil
			}
			return value.Value{}, err
		}
		return v, nil
	}
}

func builtinSetattr(vm *VM) value.NativeFn {
	return func(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
		if len(args) != 3 {
			return value.Value{}, newOpError(value.ErrTypeError, "setattr() takes exactly three arguments")
		}
		if err := vm.setAttr(args[0], args[1].AsStr(), args[2]); err != nil {
			return value.Value{}, err
		}
		return value.None, nil
	}
}

func builtinAbs(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Value{}, newOpError(value.ErrTypeError, "abs() takes exactly one argument")
	}
	switch v := args[0]; v.Kind {
	case value.KindInt, value.KindBool:
		n := v.AsInt()
		if n < 0 {
			n = -n
		}
		return value.Int(n), nil
	case value.KindFloat:
		f := v.AsFloat()
		if f < 0 {
			f = -f
		}
		return value.Float(f), nil
	}
	return value.Value{}, newOpError(value.ErrTypeError, fmt.Sprintf("bad operand type for abs(): %q", args[0].Kind))
}

func builtinMinMax(vm *VM, kind value.CmpKindArg) value.NativeFn {
	return func(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
		items := args
		if len(args) == 1 {
			collected, err := collect(args[0])
			if err != nil {
				return value.Value{}, err
			}
			items = collected
		}
		if len(items) == 0 {
			return value.Value{}, newOpError(value.ErrValueError, "min()/max() arg is an empty sequence")
		}
		best := items[0]
		for _, it := range items[1:] {
			better, err := value.Compare(kind, it, best)
			if err != nil {
				return value.Value{}, err
			}
			if better {
				best = it
			}
		}
		return best, nil
	}
}

func builtinSum(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if len(args) == 0 {
		return value.Value{}, newOpError(value.ErrTypeError, "sum() takes at least one argument")
	}
	items, err := collect(args[0])
	if err != nil {
		return value.Value{}, err
	}
	total := value.Int(0)
	if len(args) > 1 {
		total = args[1]
	}
	for _, it := range items {
		total, err = value.Add(total, it)
		if err != nil {
			return value.Value{}, err
		}
	}
	return total, nil
}

func builtinID(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Value{}, newOpError(value.ErrTypeError, "id() takes exactly one argument")
	}
	return value.Int(int64(value.Hash(args[0]))), nil
}

// builtinNext drives any iterator (generator, native value.Iterator
// wrapper, or user __iter__/__next__ object) one step via vm.iterNext,
// the same dispatch OpForIter uses. A second argument supplies the
// default to return on exhaustion instead of raising StopIteration,
// matching Python's next(it, default) form.
func builtinNext(vm *VM) value.NativeFn {
	return func(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
		if len(args) < 1 {
			return value.Value{}, newOpError(value.ErrTypeError, "next expected at least 1 argument")
		}
		v, ok, err := vm.iterNext(args[0])
		if err != nil {
			return value.Value{}, err
		}
		if !ok {
			if len(args) >= 2 {
				return args[1], nil
			}
			return value.Value{}, value.NewException(value.ErrStopIteration, "").AsException()
		}
		return v, nil
	}
}

// installGeneratorMethods wires __iter__/__next__/send/throw onto
// value.GeneratorClass once per VM, the deferred half of
// value.GeneratorClass's doc comment promise (internal/value can't
// import internal/vm, so it leaves the method bodies for us to attach).
func installGeneratorMethods(vm *VM) {
	value.GeneratorClass.Attrs["__iter__"] = value.NativeFunction("__iter__", func(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
		return args[0], nil
	})
	value.GeneratorClass.Attrs["__next__"] = value.NativeFunction("__next__", func(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
		return generatorNext(args[0])
	})
	value.GeneratorClass.Attrs["send"] = value.NativeFunction("send", func(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
		sent := value.None
		if len(args) > 1 {
			sent = args[1]
		}
		return generatorSend(args[0], sent)
	})
	value.GeneratorClass.Attrs["throw"] = value.NativeFunction("throw", func(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
		if len(args) < 2 {
			return value.Value{}, newOpError(value.ErrTypeError, "throw() takes at least two arguments")
		}
		return generatorThrow(args[0], toException(args[1]))
	})
}
