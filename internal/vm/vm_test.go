package vm

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yusee-Programmer/tauraro-sub008/internal/compiler"
	"github.com/Yusee-Programmer/tauraro-sub008/internal/parser"
	"github.com/Yusee-Programmer/tauraro-sub008/internal/value"
)

// runSrc compiles and executes src as a fresh module, returning the
// module's globals for inspection plus anything written to stdout.
func runSrc(t *testing.T, src string) (*value.ModuleObj, string, error) {
	t.Helper()
	mod, err := parser.Parse("<test>", []byte(src))
	require.NoError(t, err)
	co, err := compiler.Compile("<test>", mod)
	require.NoError(t, err)

	var out bytes.Buffer
	m := New(WithStdout(&out))
	modObj, err := m.RunModule(co, "__main__")
	return modObj, out.String(), err
}

func mustGlobal(t *testing.T, mod *value.ModuleObj, name string) value.Value {
	t.Helper()
	v, ok := mod.Globals.Get(value.Str(name))
	require.True(t, ok, "global %q not set", name)
	return v
}

func TestArithmeticAndPrint(t *testing.T) {
	mod, out, err := runSrc(t, "x = 2 + 3 * 4\nprint(x)\n")
	require.NoError(t, err)
	assert.Equal(t, int64(14), mustGlobal(t, mod, "x").AsInt())
	assert.Equal(t, "14\n", out)
}

func TestFusedLocalsArithmeticMatchesUnfused(t *testing.T) {
	// This body compiles to the peephole-fused AddLocals form; a wrong
	// fusion (e.g. wrong register wiring) would silently compute the
	// wrong value instead of erroring.
	mod, _, err := runSrc(t, "def f(a, b):\n    return a + b\nresult = f(7, 5)\n")
	require.NoError(t, err)
	assert.Equal(t, int64(12), mustGlobal(t, mod, "result").AsInt())
}

func TestClosureCapturesEnclosingLocal(t *testing.T) {
	src := "def make_adder(n):\n" +
		"    def adder(x):\n" +
		"        return x + n\n" +
		"    return adder\n" +
		"add5 = make_adder(5)\n" +
		"result = add5(10)\n"
	mod, _, err := runSrc(t, src)
	require.NoError(t, err)
	assert.Equal(t, int64(15), mustGlobal(t, mod, "result").AsInt())
}

func TestWhileLoopWithBreakAndContinue(t *testing.T) {
	src := "total = 0\n" +
		"i = 0\n" +
		"while i < 10:\n" +
		"    i = i + 1\n" +
		"    if i % 2 == 0:\n" +
		"        continue\n" +
		"    if i > 7:\n" +
		"        break\n" +
		"    total = total + i\n"
	mod, _, err := runSrc(t, src)
	require.NoError(t, err)
	// odd i in 1..7: 1+3+5+7 = 16
	assert.Equal(t, int64(16), mustGlobal(t, mod, "total").AsInt())
}

func TestTryExceptCatchesRaisedException(t *testing.T) {
	src := "caught = None\n" +
		"try:\n" +
		"    raise ValueError(\"bad\")\n" +
		"except ValueError as e:\n" +
		"    caught = str(e)\n"
	mod, _, err := runSrc(t, src)
	require.NoError(t, err)
	assert.Contains(t, mustGlobal(t, mod, "caught").AsStr(), "bad")
}

func TestFinallyRunsOnNormalAndExceptionalPaths(t *testing.T) {
	src := "steps = 0\n" +
		"def f():\n" +
		"    global steps\n" +
		"    try:\n" +
		"        steps = steps + 1\n" +
		"    finally:\n" +
		"        steps = steps + 10\n" +
		"f()\n" +
		"try:\n" +
		"    try:\n" +
		"        raise ValueError(\"x\")\n" +
		"    finally:\n" +
		"        steps = steps + 100\n" +
		"except ValueError:\n" +
		"    steps = steps + 1000\n"
	mod, _, err := runSrc(t, src)
	require.NoError(t, err)
	// normal path runs the try body then the finally (1 + 10); the
	// exceptional path runs the finally before the exception propagates
	// out to the enclosing except (100 then 1000).
	assert.Equal(t, int64(1111), mustGlobal(t, mod, "steps").AsInt())
}

func TestUnhandledExceptionPropagatesAsError(t *testing.T) {
	_, _, err := runSrc(t, "raise RuntimeError(\"boom\")\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestSliceWithNegativeAndOmittedBounds(t *testing.T) {
	src := "a = [0, 1, 2, 3, 4, 5]\n" +
		"b = a[1:4]\n" +
		"c = a[:3]\n" +
		"d = a[::-1]\n"
	mod, _, err := runSrc(t, src)
	require.NoError(t, err)
	toInts := func(v value.Value) []int64 {
		var out []int64
		for _, it := range v.AsList().Items() {
			out = append(out, it.AsInt())
		}
		return out
	}
	assert.Equal(t, []int64{1, 2, 3}, toInts(mustGlobal(t, mod, "b")))
	assert.Equal(t, []int64{0, 1, 2}, toInts(mustGlobal(t, mod, "c")))
	assert.Equal(t, []int64{5, 4, 3, 2, 1, 0}, toInts(mustGlobal(t, mod, "d")))
}

func TestStarUnpackingAssignment(t *testing.T) {
	src := "first, *middle, last = [1, 2, 3, 4, 5]\n"
	mod, _, err := runSrc(t, src)
	require.NoError(t, err)
	assert.Equal(t, int64(1), mustGlobal(t, mod, "first").AsInt())
	assert.Equal(t, int64(5), mustGlobal(t, mod, "last").AsInt())
	var mid []int64
	for _, v := range mustGlobal(t, mod, "middle").AsList().Items() {
		mid = append(mid, v.AsInt())
	}
	assert.Equal(t, []int64{2, 3, 4}, mid)
}

func TestGeneratorYieldsInOrderThenStops(t *testing.T) {
	src := "def gen():\n" +
		"    yield 1\n" +
		"    yield 2\n" +
		"    yield 3\n" +
		"out = [v for v in gen()]\n"
	mod, _, err := runSrc(t, src)
	require.NoError(t, err)
	var got []int64
	for _, v := range mustGlobal(t, mod, "out").AsList().Items() {
		got = append(got, v.AsInt())
	}
	assert.Equal(t, []int64{1, 2, 3}, got)
}

func TestGeneratorSendFeedsValueBackIntoYieldExpr(t *testing.T) {
	src := "def echo():\n" +
		"    x = yield 1\n" +
		"    yield x\n" +
		"g = echo()\n" +
		"first = next(g)\n" +
		"second = g.send(42)\n"
	mod, _, err := runSrc(t, src)
	require.NoError(t, err)
	assert.Equal(t, int64(1), mustGlobal(t, mod, "first").AsInt())
	assert.Equal(t, int64(42), mustGlobal(t, mod, "second").AsInt())
}

func TestClassInstantiationRunsInitAndBindsMethods(t *testing.T) {
	src := "class Counter:\n" +
		"    def __init__(self, start):\n" +
		"        self.n = start\n" +
		"    def bump(self):\n" +
		"        self.n = self.n + 1\n" +
		"        return self.n\n" +
		"c = Counter(10)\n" +
		"a = c.bump()\n" +
		"b = c.bump()\n"
	mod, _, err := runSrc(t, src)
	require.NoError(t, err)
	assert.Equal(t, int64(11), mustGlobal(t, mod, "a").AsInt())
	assert.Equal(t, int64(12), mustGlobal(t, mod, "b").AsInt())
}

func TestUnknownAttributeRaisesAttributeError(t *testing.T) {
	src := "class Empty:\n" +
		"    pass\n" +
		"e = Empty()\n" +
		"e.missing\n"
	_, _, err := runSrc(t, src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AttributeError")
}

func TestRecursionDepthIsBounded(t *testing.T) {
	mod, err := parser.Parse("<test>", []byte("def f():\n    return f()\nf()\n"))
	require.NoError(t, err)
	co, err := compiler.Compile("<test>", mod)
	require.NoError(t, err)
	m := New(WithMaxDepth(50))
	_, err = m.RunModule(co, "__main__")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RecursionError")
}

func TestOutOfRangeRegisterRecoversAsRuntimeError(t *testing.T) {
	// Hand-build a malformed CodeObject bypassing the compiler: OpAdd
	// reads registers far past NumRegisters, which a correct compiler
	// output would never emit. This exercises safeStep's recover()
	// boundary rather than the compiler's own correctness.
	co := &compiler.CodeObject{
		Name:         "<malformed>",
		NumRegisters: 1,
		Instrs: []compiler.Instr{
			{Op: compiler.OpAdd, A: 0, B: 5, C: 6},
			{Op: compiler.OpReturn, A: 0},
		},
	}
	m := New()
	mod := value.NewModule("__main__").AsModule()
	f := newFrame(co, mod, nil)
	_, err := m.runFrame(f)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RuntimeError")
}

func TestDelLocalThenReadRaisesUnboundLocalError(t *testing.T) {
	src := "def f():\n" +
		"    x = 1\n" +
		"    del x\n" +
		"    return x\n" +
		"f()\n"
	_, _, err := runSrc(t, src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UnboundLocalError")
}

func TestDelLocalThenFusedArithmeticRaisesUnboundLocalError(t *testing.T) {
	// `c = a + b` compiles to a peephole-fused AddLocals instruction
	// (Load a, Load b, Add, Store c collapse into one op); deleting b
	// first must still be caught by that fused op, not silently read
	// as a stale value the way a check inside OpLoadLocal alone would
	// miss.
	src := "def f(a, b):\n" +
		"    del b\n" +
		"    c = a + b\n" +
		"    return c\n" +
		"f(1, 2)\n"
	_, _, err := runSrc(t, src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UnboundLocalError")
}

func TestDelGlobalThenReadRaisesNameError(t *testing.T) {
	src := "x = 1\n" +
		"del x\n" +
		"print(x)\n"
	_, _, err := runSrc(t, src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NameError")
}

func TestDelUndefinedGlobalRaisesNameError(t *testing.T) {
	_, _, err := runSrc(t, "del undefined_name\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NameError")
}

func TestDelAttrAndDelItemStillWork(t *testing.T) {
	src := "class Box:\n" +
		"    pass\n" +
		"b = Box()\n" +
		"b.n = 1\n" +
		"del b.n\n" +
		"d = {\"k\": 1}\n" +
		"del d[\"k\"]\n" +
		"has_key = \"k\" in d\n"
	mod, _, err := runSrc(t, src)
	require.NoError(t, err)
	assert.False(t, mustGlobal(t, mod, "has_key").Truthy())
}

func TestImportWithoutLoaderFails(t *testing.T) {
	_, _, err := runSrc(t, "import somemodule\n")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "ImportError") || strings.Contains(err.Error(), "no module loader"))
}
