package ctranspile

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yusee-Programmer/tauraro-sub008/internal/ast"
	"github.com/Yusee-Programmer/tauraro-sub008/internal/parser"
)

func parseModule(t *testing.T, src string) *ast.Module {
	t.Helper()
	mod, err := parser.Parse("<test>", []byte(src))
	require.NoError(t, err)
	return mod
}

func TestTranspileBoxedArithmeticFunction(t *testing.T) {
	src := "def add(a, b):\n    return a + b\n"
	mod := parseModule(t, src)

	res, err := Transpile(mod, Options{})
	require.NoError(t, err)
	assert.Contains(t, res.Source, "Value tauraro_fn_add(Value a, Value b)")
	assert.Contains(t, res.Source, "tauraro_add(a, b)")
	assert.Contains(t, res.Header, "tauraro_add")
}

func TestTranspileNativeAnnotatedFunctionEmitsInlineArithmetic(t *testing.T) {
	src := "def add(a: int, b: int) -> int:\n    return a + b\n"
	mod := parseModule(t, src)

	res, err := Transpile(mod, Options{})
	require.NoError(t, err)
	assert.Contains(t, res.Source, "int64_t tauraro_fn_add(int64_t a, int64_t b)")
	assert.Contains(t, res.Source, "return (a + b);")
}

func TestTranspileMixedAnnotatedPromotesToBoxed(t *testing.T) {
	src := "def f(a: int, b):\n    return a + b\n"
	mod := parseModule(t, src)

	res, err := Transpile(mod, Options{})
	require.NoError(t, err)
	assert.Contains(t, res.Source, "tauraro_box_int(a)")
}

func TestTranspileRangeForLoopBecomesCFor(t *testing.T) {
	src := "def f(n: int) -> int:\n    total: int = 0\n    for i in range(n):\n        total = total + i\n    return total\n"
	mod := parseModule(t, src)

	res, err := Transpile(mod, Options{})
	require.NoError(t, err)
	assert.Contains(t, res.Source, "for (int64_t i = 0; i < n; i += 1)")
	assert.Contains(t, res.Source, "total = (total + i);")
}

func TestTranspileFailsClosedOnUnsupportedConstruct(t *testing.T) {
	src := "def f():\n    return [1, 2, 3]\n"
	mod := parseModule(t, src)

	_, err := Transpile(mod, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported")
}

func TestTranspileClassEmitsStructAndMethodTable(t *testing.T) {
	src := "class Point:\n    x: int\n    y: int\n\n    def reset(self):\n        pass\n"
	mod := parseModule(t, src)

	res, err := Transpile(mod, Options{})
	require.NoError(t, err)
	assert.Contains(t, res.Source, "typedef struct Tauraro_Point")
	assert.Contains(t, res.Source, "int64_t x;")
	assert.Contains(t, res.Source, "Tauraro_Point_methods[]")
	assert.Contains(t, res.Source, "TaurarroClassDesc Tauraro_Point_desc")
}

func TestTranspileManualMemoryStrategyOmitsRefcountHeader(t *testing.T) {
	src := "def f():\n    pass\n"
	mod := parseModule(t, src)

	res, err := Transpile(mod, Options{Memory: MemManual})
	require.NoError(t, err)
	assert.Contains(t, res.Header, "manual")
	assert.NotContains(t, res.Header, "refcount")
}

func TestTranspileFreestandingEmitsInlineAssembly(t *testing.T) {
	src := "def halt():\n    hlt()\n"
	mod := parseModule(t, src)

	res, err := Transpile(mod, Options{Freestanding: true, TargetArch: "amd64"})
	require.NoError(t, err)
	assert.Contains(t, res.Source, "__asm__ __volatile__(\"hlt\"")
}

func TestTranspileHostedIntrinsicIsSafeStub(t *testing.T) {
	src := "def halt():\n    hlt()\n"
	mod := parseModule(t, src)

	res, err := Transpile(mod, Options{Freestanding: false})
	require.NoError(t, err)
	assert.Contains(t, res.Source, "return 0;")
	assert.NotContains(t, res.Source, "__asm__")
}

func TestEmitWasmCompilesEligibleIntFunction(t *testing.T) {
	src := "def add(a: int, b: int) -> int:\n    return a + b\n"
	mod := parseModule(t, src)

	wasm, ok := EmitWasm(mod)
	require.True(t, ok)
	assert.Equal(t, []byte("\x00asm"), wasm[:4])
}

func TestEmitWasmDeclinesOnFloatOrUnannotated(t *testing.T) {
	src := "def add(a, b):\n    return a + b\n"
	mod := parseModule(t, src)

	_, ok := EmitWasm(mod)
	assert.False(t, ok)
}

func TestTranspileBackendWasmPopulatesResultWasm(t *testing.T) {
	src := "def add(a: int, b: int) -> int:\n    return a + b\n"
	mod := parseModule(t, src)

	res, err := Transpile(mod, Options{Backend: BackendWasm})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Wasm)
}

func TestUnsupportedErrorMessageNamesThePosition(t *testing.T) {
	src := "x = 1\n"
	mod := parseModule(t, src)

	_, err := Transpile(mod, Options{})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "ctranspile"))
	assert.True(t, strings.Contains(err.Error(), "<test>:1:1:"))
}
