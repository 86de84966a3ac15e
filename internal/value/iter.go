package value

// Iterator is a lazy, single-pass cursor produced by Iter. Range and
// List are restartable by calling Iter again on the same Value
// (spec.md §4.1), but a given Iterator instance is always single-pass.
type Iterator interface {
	// Next returns the next value, or ok=false at exhaustion.
	Next() (Value, bool)
}

type sliceIterator struct {
	items []Value
	pos   int
}

func (it *sliceIterator) Next() (Value, bool) {
	if it.pos >= len(it.items) {
		return Value{}, false
	}
	v := it.items[it.pos]
	it.pos++
	return v, true
}

type rangeIterator struct {
	r   *RangeObj
	pos int
}

func (it *rangeIterator) Next() (Value, bool) {
	if it.pos >= it.r.Len() {
		return Value{}, false
	}
	v := Int(it.r.At(it.pos))
	it.pos++
	return v, true
}

type dictKeyIterator struct {
	keys []Value
	pos  int
}

func (it *dictKeyIterator) Next() (Value, bool) {
	if it.pos >= len(it.keys) {
		return Value{}, false
	}
	v := it.keys[it.pos]
	it.pos++
	return v, true
}

type stringIterator struct {
	runes []rune
	pos   int
}

func (it *stringIterator) Next() (Value, bool) {
	if it.pos >= len(it.runes) {
		return Value{}, false
	}
	v := Str(string(it.runes[it.pos]))
	it.pos++
	return v, true
}

// Iter returns a fresh Iterator over v, or ok=false if v is not
// iterable. List/Tuple/Dict(keys)/Set/Frozenset/Range/Str are built in;
// Instance iteration (via __iter__) is the VM's responsibility since it
// requires calling back into user code.
func Iter(v Value) (Iterator, bool) {
	switch v.Kind {
	case KindList:
		items := append([]Value(nil), v.ref.(*ListObj).items...)
		return &sliceIterator{items: items}, true
	case KindTuple:
		return &sliceIterator{items: v.ref.(*TupleObj).items}, true
	case KindDict:
		return &dictKeyIterator{keys: v.ref.(*DictObj).Keys()}, true
	case KindSet, KindFrozenset:
		items := append([]Value(nil), v.ref.(*SetObj).items...)
		return &sliceIterator{items: items}, true
	case KindRange:
		return &rangeIterator{r: v.ref.(*RangeObj)}, true
	case KindStr:
		return &stringIterator{runes: []rune(v.AsStr())}, true
	default:
		return nil, false
	}
}

// RangeIterState exposes a range iterator's immutable bounds and
// current cursor position to a caller outside this package (namely
// internal/jit, which needs to know a for-loop's (start, stop, step)
// before compiling the loop body to native-register code; spec.md
// §4.6 restricts the JIT to "range-based for-loops" specifically).
// ok is false for any other iterator kind.
func RangeIterState(it Iterator) (start, stop, step int64, pos int, ok bool) {
	ri, ok := it.(*rangeIterator)
	if !ok {
		return 0, 0, 0, 0, false
	}
	return ri.r.Start, ri.r.Stop, ri.r.Step, ri.pos, true
}

// Len returns the length of a sized container, or ok=false if v has no
// well-defined length (spec.md §8 "Boundary": every built-in empty
// container must report len 0).
func Len(v Value) (int, bool) {
	switch v.Kind {
	case KindStr:
		return len([]rune(v.AsStr())), true
	case KindBytes:
		return len(v.AsBytes()), true
	case KindList:
		return v.ref.(*ListObj).Len(), true
	case KindTuple:
		return v.ref.(*TupleObj).Len(), true
	case KindDict:
		return v.ref.(*DictObj).Len(), true
	case KindSet, KindFrozenset:
		return v.ref.(*SetObj).Len(), true
	case KindRange:
		return v.ref.(*RangeObj).Len(), true
	default:
		return 0, false
	}
}
