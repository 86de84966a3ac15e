package ffi

import (
	"reflect"

	"github.com/Yusee-Programmer/tauraro-sub008/internal/value"
)

// TypeTag is one of the C-ABI primitive spellings spec.md §4.8 names.
type TypeTag string

const (
	TagI8     TypeTag = "i8"
	TagI16    TypeTag = "i16"
	TagI32    TypeTag = "i32"
	TagI64    TypeTag = "i64"
	TagU8     TypeTag = "u8"
	TagU16    TypeTag = "u16"
	TagU32    TypeTag = "u32"
	TagU64    TypeTag = "u64"
	TagF32    TypeTag = "f32"
	TagF64    TypeTag = "f64"
	TagChar   TypeTag = "char"
	TagCStr   TypeTag = "c_string"
	TagPtr    TypeTag = "pointer"
	TagBool   TypeTag = "bool"
	TagSizeT  TypeTag = "size_t"
	TagVoid   TypeTag = "void" // return only
)

// ParseTag normalizes an annotation name (as captured by
// compiler.ExternFunc.ParamTypes/ReturnType) into a TypeTag, failing
// with FFIError if it names something outside spec.md §4.8's fixed tag
// set -- the registry would otherwise silently mismarshal.
func ParseTag(name string) (TypeTag, error) {
	switch TypeTag(name) {
	case TagI8, TagI16, TagI32, TagI64, TagU8, TagU16, TagU32, TagU64,
		TagF32, TagF64, TagChar, TagCStr, TagPtr, TagBool, TagSizeT, TagVoid:
		return TypeTag(name), nil
	default:
		return "", &value.OpError{TypeName: value.ErrFFIError, Message: "unknown FFI type tag " + name}
	}
}

// goType returns the concrete Go type purego.RegisterFunc should use to
// marshal a value carrying this tag. c_string maps to Go string (purego
// marshals it to/from a null-terminated buffer itself); pointer and
// size_t map to uintptr, matching purego's own "opaque handle" and
// "platform word" conventions.
func (t TypeTag) goType() reflect.Type {
	switch t {
	case TagI8:
		return reflect.TypeOf(int8(0))
	case TagI16:
		return reflect.TypeOf(int16(0))
	case TagI32:
		return reflect.TypeOf(int32(0))
	case TagI64:
		return reflect.TypeOf(int64(0))
	case TagU8, TagChar:
		return reflect.TypeOf(uint8(0))
	case TagU16:
		return reflect.TypeOf(uint16(0))
	case TagU32:
		return reflect.TypeOf(uint32(0))
	case TagU64:
		return reflect.TypeOf(uint64(0))
	case TagF32:
		return reflect.TypeOf(float32(0))
	case TagF64:
		return reflect.TypeOf(float64(0))
	case TagCStr:
		return reflect.TypeOf("")
	case TagPtr, TagSizeT:
		return reflect.TypeOf(uintptr(0))
	case TagBool:
		return reflect.TypeOf(false)
	default:
		return nil // TagVoid, only legal as a return type
	}
}

// toGoValue marshals a Value into the reflect.Value the C ABI call
// expects for this tag. Integer widths truncate (spec.md §4.8); a
// Value whose Kind doesn't match the tag's expectation is caller
// responsibility per spec.md §4.8's "type mismatch is undefined
// behavior" clause, so this does not itself type-check v.Kind.
func (t TypeTag) toGoValue(v value.Value) reflect.Value {
	gt := t.goType()
	switch t {
	case TagI8, TagI16, TagI32, TagI64:
		return reflect.ValueOf(v.AsInt()).Convert(gt)
	case TagU8, TagChar, TagU16, TagU32, TagU64:
		return reflect.ValueOf(v.AsInt()).Convert(gt)
	case TagF32, TagF64:
		return reflect.ValueOf(v.AsFloat()).Convert(gt)
	case TagCStr:
		return reflect.ValueOf(v.AsStr())
	case TagPtr, TagSizeT:
		return reflect.ValueOf(uintptr(v.AsInt()))
	case TagBool:
		return reflect.ValueOf(v.AsBool())
	default:
		return reflect.Zero(gt)
	}
}

// fromGoValue un-marshals a C ABI return into a Value of the kind
// spec.md §4.8 says corresponds to the tag.
func (t TypeTag) fromGoValue(rv reflect.Value) value.Value {
	switch t {
	case TagI8, TagI16, TagI32, TagI64, TagU8, TagChar, TagU16, TagU32, TagU64:
		return value.Int(rv.Convert(reflect.TypeOf(int64(0))).Int())
	case TagF32, TagF64:
		return value.Float(rv.Convert(reflect.TypeOf(float64(0))).Float())
	case TagCStr:
		return value.Str(rv.String())
	case TagPtr, TagSizeT:
		return value.Int(int64(rv.Uint()))
	case TagBool:
		return value.Bool(rv.Bool())
	default:
		return value.None
	}
}
