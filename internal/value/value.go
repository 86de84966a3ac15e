// Package value implements Tauraro's runtime value representation: a
// tagged union with one variant per kind, reference-counted heap
// objects, and the generic operations (truthiness, equality, hashing,
// repr/str) that every back end (VM, JIT, transpiled C) shares.
package value

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind identifies which payload of a Value is meaningful. The tag alone
// determines that; no operation may read a payload field without first
// checking Kind.
type Kind uint8

const (
	KindNone Kind = iota
	KindBool
	KindInt
	KindFloat
	KindStr
	KindBytes
	KindList
	KindTuple
	KindDict
	KindSet
	KindFrozenset
	KindRange
	KindFunction
	KindBoundMethod
	KindClass
	KindInstance
	KindModule
	KindException
	KindSlice

	// KindUnbound marks a local or global slot deleted by `del`. It is
	// never a first-class value: the VM checks for it at every local/
	// global read and raises UnboundLocalError/NameError before it can
	// reach a generic value operation (arithmetic, repr, ...).
	KindUnbound
)

// Unbound is the sentinel stored into a deleted local/free slot by
// OpDelLocal/OpDelFree. See KindUnbound.
var Unbound = Value{Kind: KindUnbound}

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "NoneType"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindStr:
		return "str"
	case KindBytes:
		return "bytes"
	case KindList:
		return "list"
	case KindTuple:
		return "tuple"
	case KindDict:
		return "dict"
	case KindSet:
		return "set"
	case KindFrozenset:
		return "frozenset"
	case KindRange:
		return "range"
	case KindFunction:
		return "function"
	case KindBoundMethod:
		return "method"
	case KindClass:
		return "type"
	case KindInstance:
		return "object"
	case KindModule:
		return "module"
	case KindException:
		return "exception"
	case KindSlice:
		return "slice"
	case KindUnbound:
		return "<unbound>"
	default:
		return "unknown"
	}
}

// heapObject is implemented by every reference-counted payload kind.
// incref/decref are invoked by Retain/Release; a payload reaching zero
// references from decref may free owned resources, but cyclic
// references are never collected (spec.md §3 "Ownership").
type heapObject interface {
	incref()
	decref() int32
	refs() int32
}

// refcount is embedded in every heap object to implement heapObject.
type refcount struct {
	n int32
}

func (r *refcount) incref()      { r.n++ }
func (r *refcount) decref() int32 { r.n--; return r.n }
func (r *refcount) refs() int32  { return r.n }

// Value is the single runtime representation for every Tauraro value.
// Immediate kinds (None, Bool, Int, Float) are stored inline in i/f;
// every other kind stores a pointer to a heap object in ref. Str is
// logically immutable but still heap-allocated (it can be large).
type Value struct {
	Kind Kind
	i    int64   // Bool (0/1), Int
	f    float64 // Float
	ref  heapObject
}

// None is the singleton null value.
var None = Value{Kind: KindNone}

// Bool constructs a boolean value.
func Bool(b bool) Value {
	var i int64
	if b {
		i = 1
	}
	return Value{Kind: KindBool, i: i}
}

// Int constructs an integer value.
func Int(n int64) Value { return Value{Kind: KindInt, i: n} }

// Float constructs a float value.
func Float(f float64) Value { return Value{Kind: KindFloat, f: f} }

// strObj is the heap payload for Str.
type strObj struct {
	refcount
	s string
}

// Str constructs a string value. Every operation that transforms a
// string returns a fresh Str (spec.md §3 invariant v).
func Str(s string) Value {
	return Value{Kind: KindStr, ref: &strObj{s: s}}
}

// AsStr returns the Go string underlying a Str value. Panics if Kind
// is not KindStr; callers are expected to check Kind first, mirroring
// the VM's own unchecked-payload-access discipline once a Kind has
// been dispatched on.
func (v Value) AsStr() string {
	return v.ref.(*strObj).s
}

// bytesObj is the heap payload for Bytes.
type bytesObj struct {
	refcount
	b []byte
}

// Bytes constructs a byte-string value.
func Bytes(b []byte) Value {
	cp := make([]byte, len(b))
	copy(cp, b)
	return Value{Kind: KindBytes, ref: &bytesObj{b: cp}}
}

// AsBytes returns the underlying byte slice of a Bytes value.
func (v Value) AsBytes() []byte { return v.ref.(*bytesObj).b }

// AsInt returns the underlying int64 of an Int or Bool value.
func (v Value) AsInt() int64 { return v.i }

// AsFloat returns the underlying float64 of a Float value.
func (v Value) AsFloat() float64 { return v.f }

// AsBool returns the underlying bool of a Bool value.
func (v Value) AsBool() bool { return v.i != 0 }

// Retain increments the reference count of a heap-backed value. It is
// a no-op for immediate kinds.
func (v Value) Retain() Value {
	if v.ref != nil {
		v.ref.incref()
	}
	return v
}

// Release decrements the reference count of a heap-backed value. It is
// a no-op for immediate kinds. The return value is the count after the
// decrement purely for diagnostics; Tauraro does not free Go-GC'd
// memory explicitly (the arena/refcount discipline matters for the
// transpiled-C back end, not for the Go runtime's own heap).
func (v Value) Release() int32 {
	if v.ref == nil {
		return 0
	}
	return v.ref.decref()
}

// Truthy implements Tauraro's truthiness rules (spec.md §4.1): the
// falsy set is None, Bool(false), numeric zero, and empty
// string/bytes/list/tuple/dict/set.
func (v Value) Truthy() bool {
	switch v.Kind {
	case KindNone:
		return false
	case KindBool:
		return v.i != 0
	case KindInt:
		return v.i != 0
	case KindFloat:
		return v.f != 0
	case KindStr:
		return len(v.AsStr()) != 0
	case KindBytes:
		return len(v.AsBytes()) != 0
	case KindList:
		return v.ref.(*ListObj).Len() != 0
	case KindTuple:
		return len(v.ref.(*TupleObj).items) != 0
	case KindDict:
		return v.ref.(*DictObj).Len() != 0
	case KindSet, KindFrozenset:
		return v.ref.(*SetObj).Len() != 0
	case KindRange:
		return v.ref.(*RangeObj).Len() != 0
	default:
		return true
	}
}

// Is implements identity comparison ("is").
func Is(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindNone:
		return true
	case KindBool, KindInt:
		return a.i == b.i
	case KindFloat:
		return a.f == b.f
	default:
		return a.ref == b.ref
	}
}

// Equal implements value equality ("=="). Containers compare element
// by element; heap objects with identity-only semantics (Function,
// Class, Module) fall back to Is.
func Equal(a, b Value) bool {
	if a.Kind == KindInt && b.Kind == KindFloat {
		return float64(a.i) == b.f
	}
	if a.Kind == KindFloat && b.Kind == KindInt {
		return a.f == float64(b.i)
	}
	if a.Kind != b.Kind {
		if (a.Kind == KindBool || a.Kind == KindInt) && (b.Kind == KindBool || b.Kind == KindInt) {
			return a.i == b.i
		}
		return false
	}
	switch a.Kind {
	case KindNone:
		return true
	case KindBool, KindInt:
		return a.i == b.i
	case KindFloat:
		return a.f == b.f
	case KindStr:
		return a.AsStr() == b.AsStr()
	case KindBytes:
		return string(a.AsBytes()) == string(b.AsBytes())
	case KindList:
		return equalSeq(a.ref.(*ListObj).items, b.ref.(*ListObj).items)
	case KindTuple:
		return equalSeq(a.ref.(*TupleObj).items, b.ref.(*TupleObj).items)
	case KindDict:
		return a.ref.(*DictObj).equal(b.ref.(*DictObj))
	case KindSet, KindFrozenset:
		return a.ref.(*SetObj).equal(b.ref.(*SetObj))
	case KindRange:
		ra, rb := a.ref.(*RangeObj), b.ref.(*RangeObj)
		return *ra == *rb
	default:
		return a.ref == b.ref
	}
}

func equalSeq(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// Hashable reports whether v may be used as a dict key / set element.
func Hashable(v Value) bool {
	switch v.Kind {
	case KindList, KindDict, KindSet:
		return false
	case KindTuple:
		for _, e := range v.ref.(*TupleObj).items {
			if !Hashable(e) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// Hash computes a hash consistent with Equal: Equal(a,b) implies
// Hash(a) == Hash(b).
func Hash(v Value) uint64 {
	const offset64 = 14695981039346656037
	const prime64 = 1099511628211
	switch v.Kind {
	case KindNone:
		return 0
	case KindBool, KindInt:
		return uint64(v.i)
	case KindFloat:
		if v.f == math.Trunc(v.f) {
			return uint64(int64(v.f))
		}
		return math.Float64bits(v.f)
	case KindStr:
		h := uint64(offset64)
		for _, c := range []byte(v.AsStr()) {
			h ^= uint64(c)
			h *= prime64
		}
		return h
	case KindBytes:
		h := uint64(offset64)
		for _, c := range v.AsBytes() {
			h ^= uint64(c)
			h *= prime64
		}
		return h
	case KindTuple:
		h := uint64(offset64)
		for _, e := range v.ref.(*TupleObj).items {
			h ^= Hash(e)
			h *= prime64
		}
		return h
	case KindFrozenset:
		var h uint64
		for _, e := range v.ref.(*SetObj).items {
			h ^= Hash(e) // order independent
		}
		return h
	default:
		// Identity hash for Function/Class/Instance/Module/BoundMethod/
		// Exception: hash the pointer's string form. Instances with a
		// user-defined __hash__ are hashed by the VM before reaching here.
		h := uint64(offset64)
		for _, c := range []byte(fmt.Sprintf("%p", v.ref)) {
			h ^= uint64(c)
			h *= prime64
		}
		return h
	}
}

// Repr returns the debug representation (e.g. quoted strings).
func Repr(v Value) string {
	switch v.Kind {
	case KindNone:
		return "None"
	case KindBool:
		if v.AsBool() {
			return "True"
		}
		return "False"
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return formatFloat(v.f)
	case KindStr:
		return strconv.Quote(v.AsStr())
	case KindBytes:
		return "b" + strconv.Quote(string(v.AsBytes()))
	case KindList:
		return reprSeq("[", "]", v.ref.(*ListObj).items)
	case KindTuple:
		items := v.ref.(*TupleObj).items
		if len(items) == 1 {
			return "(" + Repr(items[0]) + ",)"
		}
		return reprSeq("(", ")", items)
	case KindDict:
		return v.ref.(*DictObj).repr()
	case KindSet:
		if v.ref.(*SetObj).Len() == 0 {
			return "set()"
		}
		return reprSeq("{", "}", v.ref.(*SetObj).items)
	case KindFrozenset:
		return "frozenset(" + reprSeq("{", "}", v.ref.(*SetObj).items) + ")"
	case KindRange:
		r := v.ref.(*RangeObj)
		return fmt.Sprintf("range(%d, %d, %d)", r.Start, r.Stop, r.Step)
	case KindFunction:
		return fmt.Sprintf("<function %s>", v.ref.(*FunctionObj).Name)
	case KindBoundMethod:
		return fmt.Sprintf("<bound method %s>", v.ref.(*BoundMethodObj).Fn.ref.(*FunctionObj).Name)
	case KindClass:
		return fmt.Sprintf("<class '%s'>", v.ref.(*Class).Name)
	case KindInstance:
		return fmt.Sprintf("<%s object>", v.ref.(*Instance).Class.Name)
	case KindModule:
		return fmt.Sprintf("<module '%s'>", v.ref.(*ModuleObj).Name)
	case KindException:
		return v.ref.(*ExceptionObj).Error()
	case KindSlice:
		s := v.ref.(*SliceObj)
		return fmt.Sprintf("slice(%s, %s, %s)", Repr(s.Start), Repr(s.Stop), Repr(s.Step))
	default:
		return "<?>"
	}
}

func reprSeq(open, close string, items []Value) string {
	var b strings.Builder
	b.WriteString(open)
	for i, e := range items {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(Repr(e))
	}
	b.WriteString(close)
	return b.String()
}

func formatFloat(f float64) string {
	if math.IsInf(f, 1) {
		return "inf"
	}
	if math.IsInf(f, -1) {
		return "-inf"
	}
	if math.IsNaN(f) {
		return "nan"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// Str2 returns the "informal"/print representation, which for most
// kinds equals Repr except Str itself (unquoted) and containers of
// strings (which still repr their elements, matching Python semantics).
func ToDisplayString(v Value) string {
	if v.Kind == KindStr {
		return v.AsStr()
	}
	return Repr(v)
}
