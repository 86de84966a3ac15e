package ffi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yusee-Programmer/tauraro-sub008/internal/compiler"
	"github.com/Yusee-Programmer/tauraro-sub008/internal/value"
)

func TestParseTagAcceptsSpecTagsAndRejectsOthers(t *testing.T) {
	for _, ok := range []string{"i8", "i16", "i32", "i64", "u8", "u16", "u32", "u64", "f32", "f64", "char", "c_string", "pointer", "bool", "size_t", "void"} {
		_, err := ParseTag(ok)
		assert.NoError(t, err, ok)
	}
	_, err := ParseTag("int128")
	require.Error(t, err)
	opErr, ok := err.(*value.OpError)
	require.True(t, ok)
	assert.Equal(t, value.ErrFFIError, opErr.TypeName)
}

func TestSignatureKeyJoinsLibraryAndSymbol(t *testing.T) {
	sig := &Signature{Library: "libm.so.6", Symbol: "sqrt"}
	assert.Equal(t, "libm.so.6!sqrt", sig.Key())
}

func TestCandidateNamesDecoratesBareNames(t *testing.T) {
	names := candidateNames("foo")
	assert.Contains(t, names, "foo")
	found := false
	for _, n := range names {
		if n == "libfoo.so" || n == "libfoo.dylib" || n == "libfoo.dll" {
			found = true
		}
	}
	assert.True(t, found, "expected a decorated candidate among %v", names)
}

func TestCandidateNamesLeavesAlreadyExtensionedNamesAlone(t *testing.T) {
	names := candidateNames("libc.so.6")
	assert.Equal(t, []string{"libc.so.6"}, names)
}

func TestBindExternsFailsClosedOnUnknownTypeTag(t *testing.T) {
	reg := NewRegistry(NewLoader(nil))
	globals := value.NewDict().AsDict()
	externs := []compiler.ExternFunc{{Library: "libc.so.6", Name: "abs", ParamTypes: []string{"int128"}, ReturnType: "i32"}}

	err := BindExterns(reg, externs, globals)
	require.Error(t, err)
	opErr, ok := err.(*value.OpError)
	require.True(t, ok)
	assert.Equal(t, value.ErrFFIError, opErr.TypeName)
}

// TestDefineAndCallLibcAbs exercises the full Load/Define/Call path
// against libc's abs(int), a symbol every Linux/macOS host this runs
// the test suite on carries, marshalling an argument and a return
// value across the boundary exactly as spec.md §4.8 describes.
func TestDefineAndCallLibcAbs(t *testing.T) {
	reg := NewRegistry(NewLoader(nil))
	sig := &Signature{Library: "libc.so.6", Symbol: "abs", Params: []TypeTag{TagI32}, Return: TagI32}

	fn, err := reg.Define(sig)
	require.NoError(t, err)

	result, err := fn.AsFunction().Native([]value.Value{value.Int(-7)}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(7), result.AsInt())
}

func TestDefineCachesRepeatedSignature(t *testing.T) {
	reg := NewRegistry(NewLoader(nil))
	sig := &Signature{Library: "libc.so.6", Symbol: "abs", Params: []TypeTag{TagI32}, Return: TagI32}

	first, err := reg.Define(sig)
	require.NoError(t, err)
	second, err := reg.Define(sig)
	require.NoError(t, err)

	assert.Same(t, first.AsFunction(), second.AsFunction())
}

func TestCallFailsClosedOnArgumentCountMismatch(t *testing.T) {
	reg := NewRegistry(NewLoader(nil))
	sig := &Signature{Library: "libc.so.6", Symbol: "abs", Params: []TypeTag{TagI32}, Return: TagI32}

	fn, err := reg.Define(sig)
	require.NoError(t, err)

	_, err = fn.AsFunction().Native(nil, nil)
	require.Error(t, err)
	opErr, ok := err.(*value.OpError)
	require.True(t, ok)
	assert.Equal(t, value.ErrFFIError, opErr.TypeName)
}

func TestLoadFailsClosedOnMissingLibrary(t *testing.T) {
	l := NewLoader(nil)
	_, err := l.Load("definitely-not-a-real-library-xyz")
	require.Error(t, err)
	opErr, ok := err.(*value.OpError)
	require.True(t, ok)
	assert.Equal(t, value.ErrFFIError, opErr.TypeName)
}
