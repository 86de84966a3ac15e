package vm

import (
	"fmt"

	"github.com/Yusee-Programmer/tauraro-sub008/internal/value"
)

// getItem implements `container[key]` (spec.md §4.4 "Indexing and
// slicing"): int/slice indexing into str/bytes/list/tuple/range, key
// lookup into dict, and a __getitem__ dunder fallback for instances.
func (vm *VM) getItem(container, key value.Value) (value.Value, error) {
	if key.Kind == value.KindSlice {
		return vm.getSlice(container, key.AsSlice())
	}
	switch container.Kind {
	case value.KindStr:
		idx, err := intIndex(key)
		if err != nil {
			return value.Value{}, err
		}
		runes := []rune(container.AsStr())
		idx = normIdx(idx, len(runes))
		if idx < 0 || idx >= len(runes) {
			return value.Value{}, newOpError(value.ErrIndexError, "string index out of range")
		}
		return value.Str(string(runes[idx])), nil
	case value.KindBytes:
		idx, err := intIndex(key)
		if err != nil {
			return value.Value{}, err
		}
		b := container.AsBytes()
		idx = normIdx(idx, len(b))
		if idx < 0 || idx >= len(b) {
			return value.Value{}, newOpError(value.ErrIndexError, "index out of range")
		}
		return value.Int(int64(b[idx])), nil
	case value.KindList:
		idx, err := intIndex(key)
		if err != nil {
			return value.Value{}, err
		}
		v, ok := container.AsList().Get(idx)
		if !ok {
			return value.Value{}, newOpError(value.ErrIndexError, "list index out of range")
		}
		return v, nil
	case value.KindTuple:
		idx, err := intIndex(key)
		if err != nil {
			return value.Value{}, err
		}
		items := container.AsTuple().Items()
		n := normIdx(idx, len(items))
		if n < 0 || n >= len(items) {
			return value.Value{}, newOpError(value.ErrIndexError, "tuple index out of range")
		}
		return items[n], nil
	case value.KindRange:
		idx, err := intIndex(key)
		if err != nil {
			return value.Value{}, err
		}
		r := container.AsRange()
		n := normIdx(idx, r.Len())
		if n < 0 || n >= r.Len() {
			return value.Value{}, newOpError(value.ErrIndexError, "range index out of range")
		}
		return value.Int(r.At(n)), nil
	case value.KindDict:
		v, ok := container.AsDict().Get(key)
		if !ok {
			return value.Value{}, newOpError(value.ErrKeyError, value.Repr(key))
		}
		return v, nil
	case value.KindInstance:
		return vm.callDunder(container, "__getitem__", key)
	}
	return value.Value{}, newOpError(value.ErrTypeError, fmt.Sprintf("%q object is not subscriptable", container.Kind))
}

func (vm *VM) getSlice(container value.Value, s *value.SliceObj) (value.Value, error) {
	switch container.Kind {
	case value.KindStr:
		runes := []rune(container.AsStr())
		start, stop, step := s.Resolve(len(runes))
		out := make([]rune, 0)
		for i := start; step > 0 && i < stop || step < 0 && i > stop; i += step {
			out = append(out, runes[i])
		}
		return value.Str(string(out)), nil
	case value.KindList:
		start, stop, step := s.Resolve(container.AsList().Len())
		return value.List(container.AsList().Slice(start, stop, step)), nil
	case value.KindTuple:
		items := container.AsTuple().Items()
		start, stop, step := s.Resolve(len(items))
		return value.Tuple(sliceInts(items, start, stop, step)), nil
	}
	return value.Value{}, newOpError(value.ErrTypeError, fmt.Sprintf("%q object is not subscriptable", container.Kind))
}

func sliceInts(items []value.Value, start, stop, step int) []value.Value {
	var out []value.Value
	if step > 0 {
		for i := start; i < stop; i += step {
			out = append(out, items[i])
		}
	} else {
		for i := start; i > stop; i += step {
			out = append(out, items[i])
		}
	}
	return out
}

func (vm *VM) setItem(container, key, val value.Value) error {
	switch container.Kind {
	case value.KindList:
		idx, err := intIndex(key)
		if err != nil {
			return err
		}
		if !container.AsList().Set(idx, val) {
			return newOpError(value.ErrIndexError, "list assignment index out of range")
		}
		return nil
	case value.KindDict:
		if !value.Hashable(key) {
			return newOpError(value.ErrTypeError, fmt.Sprintf("unhashable type: %q", key.Kind))
		}
		container.AsDict().Set(key, val)
		return nil
	case value.KindInstance:
		_, err := vm.callDunder2(container, "__setitem__", key, val)
		return err
	}
	return newOpError(value.ErrTypeError, fmt.Sprintf("%q object does not support item assignment", container.Kind))
}

func (vm *VM) delItem(container, key value.Value) error {
	switch container.Kind {
	case value.KindList:
		idx, err := intIndex(key)
		if err != nil {
			return err
		}
		if !container.AsList().Delete(idx) {
			return newOpError(value.ErrIndexError, "list assignment index out of range")
		}
		return nil
	case value.KindDict:
		if !container.AsDict().Delete(key) {
			return newOpError(value.ErrKeyError, value.Repr(key))
		}
		return nil
	case value.KindSet:
		if !container.AsSet().Remove(key) {
			return newOpError(value.ErrKeyError, value.Repr(key))
		}
		return nil
	case value.KindInstance:
		_, err := vm.callDunder(container, "__delitem__", key)
		return err
	}
	return newOpError(value.ErrTypeError, fmt.Sprintf("%q object doesn't support item deletion", container.Kind))
}

func (vm *VM) callDunder(recv value.Value, name string, arg value.Value) (value.Value, error) {
	fn, err := vm.getAttr(recv, name)
	if err != nil {
		return value.Value{}, err
	}
	return vm.CallFunction(fn, []value.Value{arg}, nil)
}

func (vm *VM) callDunder2(recv value.Value, name string, a, b value.Value) (value.Value, error) {
	fn, err := vm.getAttr(recv, name)
	if err != nil {
		return value.Value{}, err
	}
	return vm.CallFunction(fn, []value.Value{a, b}, nil)
}

func intIndex(key value.Value) (int, error) {
	if key.Kind != value.KindInt && key.Kind != value.KindBool {
		return 0, newOpError(value.ErrTypeError, fmt.Sprintf("indices must be integers, not %q", key.Kind))
	}
	return int(key.AsInt()), nil
}

func normIdx(idx, n int) int {
	if idx < 0 {
		idx += n
	}
	return idx
}

// getIter implements OpGetIter: built-in containers produce a
// value.Iterator wrapped as value.NewIterator; an Instance with
// __iter__ is called and its result (commonly itself, or a generator)
// is returned as-is since OpForIter drives __next__ directly.
func (vm *VM) getIter(v value.Value) (value.Value, error) {
	if it, ok := value.Iter(v); ok {
		return value.NewIterator(it), nil
	}
	if v.Kind == value.KindInstance {
		fn, err := vm.getAttr(v, "__iter__")
		if err != nil {
			return value.Value{}, newOpError(value.ErrTypeError, fmt.Sprintf("%q object is not iterable", v.AsInstance().Class.Name))
		}
		return vm.CallFunction(fn, nil, nil)
	}
	return value.Value{}, newOpError(value.ErrTypeError, fmt.Sprintf("%q object is not iterable", v.Kind))
}

// iterNext implements OpForIter, returning ok=false (not an error) on
// normal exhaustion (a StopIteration raised by __next__ is translated
// to that rather than propagated, spec.md §4.6).
func (vm *VM) iterNext(v value.Value) (value.Value, bool, error) {
	if v.Kind == value.KindInstance && v.AsInstance().Class == value.IteratorClass {
		it := v.AsInstance().Native.(value.Iterator)
		val, ok := it.Next()
		return val, ok, nil
	}
	fn, err := vm.getAttr(v, "__next__")
	if err != nil {
		return value.Value{}, false, err
	}
	val, err := vm.CallFunction(fn, nil, nil)
	if err != nil {
		if exc, ok := err.(*value.ExceptionObj); ok && exc.TypeName == value.ErrStopIteration {
			return value.Value{}, false, nil
		}
		return value.Value{}, false, err
	}
	return val, true, nil
}
