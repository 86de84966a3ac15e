package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yusee-Programmer/tauraro-sub008/internal/parser"
	"github.com/Yusee-Programmer/tauraro-sub008/internal/value"
)

func compileOK(t *testing.T, src string) *CodeObject {
	t.Helper()
	mod, err := parser.Parse("<test>", []byte(src))
	require.NoError(t, err)
	co, err := Compile("<test>", mod)
	require.NoError(t, err)
	return co
}

func hasOp(co *CodeObject, op Op) bool {
	for _, in := range co.Instrs {
		if in.Op == op {
			return true
		}
	}
	return false
}

func countOp(co *CodeObject, op Op) int {
	n := 0
	for _, in := range co.Instrs {
		if in.Op == op {
			n++
		}
	}
	return n
}

func TestCompileSimpleAssignIsGlobalAtModuleScope(t *testing.T) {
	co := compileOK(t, "x = 1\n")
	assert.True(t, hasOp(co, OpStoreGlobal))
	assert.False(t, hasOp(co, OpStoreLocal))
}

func TestCompileFunctionUsesLocalsNotGlobals(t *testing.T) {
	co := compileOK(t, "def f(a):\n    b = a + 1\n    return b\n")
	require.Len(t, co.Codes, 1)
	fn := co.Codes[0]
	assert.Equal(t, "f", fn.Name)
	assert.Equal(t, 1, fn.NumArgs)
	assert.Contains(t, fn.Locals, "a")
	assert.Contains(t, fn.Locals, "b")
	assert.True(t, hasOp(fn, OpReturn))
}

func TestCompileDelNameEmitsDelLocalOrDelGlobal(t *testing.T) {
	co := compileOK(t, "x = 1\ndel x\n")
	assert.True(t, hasOp(co, OpDelGlobal))
	assert.False(t, hasOp(co, OpDelLocal))

	fn := compileOK(t, "def f():\n    x = 1\n    del x\n").Codes[0]
	assert.True(t, hasOp(fn, OpDelLocal))
	assert.False(t, hasOp(fn, OpDelGlobal))
}

func TestCompileDelAttrAndDelItemUnchanged(t *testing.T) {
	co := compileOK(t, "d = {}\ndel d[\"k\"]\n")
	assert.True(t, hasOp(co, OpDelItem))
}

func TestCompileClosureCapturesEnclosingLocal(t *testing.T) {
	co := compileOK(t, "def outer():\n    x = 1\n    def inner():\n        return x\n    return inner\n")
	outer := co.Codes[0]
	assert.Contains(t, outer.CellVars, "x")
	require.Len(t, outer.Codes, 1)
	inner := outer.Codes[0]
	assert.Contains(t, inner.Freevars, "x")
	assert.True(t, hasOp(inner, OpLoadFree))
}

func TestCompileIfElseEmitsTwoJumpPaths(t *testing.T) {
	co := compileOK(t, "if x:\n    y = 1\nelse:\n    y = 2\n")
	assert.True(t, hasOp(co, OpJumpIfFalse))
	assert.True(t, hasOp(co, OpJump))
}

func TestCompileWhileLoopWithBreakAndContinue(t *testing.T) {
	co := compileOK(t, "while x:\n    if y:\n        break\n    continue\n")
	assert.True(t, hasOp(co, OpJumpIfFalse))
	// two unconditional jumps beyond the loop-back edge: break and continue
	assert.GreaterOrEqual(t, countOp(co, OpJump), 3)
}

func TestCompileForLoopUsesIterProtocol(t *testing.T) {
	co := compileOK(t, "for i in xs:\n    pass\n")
	assert.True(t, hasOp(co, OpGetIter))
	assert.True(t, hasOp(co, OpForIter))
}

func TestCompileTryExceptBuildsExceptionTable(t *testing.T) {
	co := compileOK(t, "try:\n    x = 1\nexcept ValueError as e:\n    x = 2\n")
	require.Len(t, co.ExcTable, 1)
	assert.Equal(t, []string{"ValueError"}, co.ExcTable[0].Types)
}

func TestCompileTryFinallyAddsFinallyRange(t *testing.T) {
	co := compileOK(t, "try:\n    x = 1\nfinally:\n    y = 2\n")
	require.Len(t, co.ExcTable, 1)
	assert.True(t, co.ExcTable[0].IsFinally)
}

func TestCompileChainedComparisonEvaluatesEachOperandOnce(t *testing.T) {
	co := compileOK(t, "r = 1 < x < 10\n")
	// two OpCompare instructions, one per link in the chain
	assert.Equal(t, 2, countOp(co, OpCompare))
}

func TestCompileBoolOpShortCircuits(t *testing.T) {
	co := compileOK(t, "r = a and b\n")
	assert.True(t, hasOp(co, OpJumpIfFalseOrPop))
}

func TestCompileListComprehensionBuildsInlineLoop(t *testing.T) {
	co := compileOK(t, "xs = [i * i for i in range(10) if i % 2 == 0]\n")
	assert.True(t, hasOp(co, OpBuildList))
	assert.True(t, hasOp(co, OpGetIter))
	assert.True(t, hasOp(co, OpForIter))
}

func TestCompileClassDefEmitsMakeClass(t *testing.T) {
	co := compileOK(t, "class Point:\n    def __init__(self, x):\n        self.x = x\n")
	assert.True(t, hasOp(co, OpMakeClass))
}

func TestCompileExternBlockRecordsSignature(t *testing.T) {
	co := compileOK(t, "extern \"libm.so\" {\n    def sqrt(x: float) -> float\n}\n")
	require.Len(t, co.Externs, 1)
	assert.Equal(t, "libm.so", co.Externs[0].Library)
	assert.Equal(t, "sqrt", co.Externs[0].Name)
	assert.Equal(t, []string{"float"}, co.Externs[0].ParamTypes)
}

func TestCompileFloatAndIntConstantsDoNotShareASlot(t *testing.T) {
	co := compileOK(t, "a = 1\nb = 1.0\n")
	ints, floats := 0, 0
	for _, c := range co.Consts {
		switch c.Kind {
		case value.KindInt:
			ints++
		case value.KindFloat:
			floats++
		}
	}
	assert.Equal(t, 1, ints)
	assert.Equal(t, 1, floats)
}

func TestPeepholeFusesLoadLoadOpStore(t *testing.T) {
	co := compileOK(t, "def f(a, b):\n    c = a + b\n    return c\n")
	fn := co.Codes[0]
	assert.True(t, hasOp(fn, OpAddLocals))
	assert.False(t, hasOp(fn, OpAdd))
}

func TestDisassembleProducesNonEmptyListing(t *testing.T) {
	co := compileOK(t, "def f(a):\n    return a + 1\n")
	text := Disassemble(co)
	assert.Contains(t, text, "<module>")
	assert.Contains(t, text, "f (regs=")
}

func TestCompileParamDefaultIsFoldedIntoConstPool(t *testing.T) {
	co := compileOK(t, "def f(a, b=2):\n    return a + b\n")
	fn := co.Codes[0]
	require.Len(t, fn.Params, 2)
	assert.False(t, fn.Params[0].HasDefault)
	require.True(t, fn.Params[1].HasDefault)
	assert.Equal(t, int64(2), fn.Consts[fn.Params[1].DefaultConst].AsInt())
}

func TestCompileNonConstantDefaultFails(t *testing.T) {
	mod, err := parser.Parse("<test>", []byte("def f(a=g()):\n    return a\n"))
	require.NoError(t, err)
	_, err = Compile("<test>", mod)
	require.Error(t, err)
}

func TestCompileCallKeywordArgCountsTwoRegistersPerPair(t *testing.T) {
	co := compileOK(t, "f(1, x=2)\n")
	var call Instr
	for _, in := range co.Instrs {
		if in.Op == OpCall {
			call = in
		}
	}
	assert.Equal(t, 3, call.B) // 1 positional + (name, value) pair
	assert.Equal(t, 1, call.C)
}

func TestCompileCallTrailingStarArgsUsesCallUnpack(t *testing.T) {
	co := compileOK(t, "f(1, *xs)\n")
	var call Instr
	for _, in := range co.Instrs {
		if in.Op == OpCallUnpack {
			call = in
		}
	}
	assert.Equal(t, 1, call.Target&1)
}

func TestCompileCallNonTrailingStarArgsFails(t *testing.T) {
	mod, err := parser.Parse("<test>", []byte("f(*xs, 1)\n"))
	require.NoError(t, err)
	_, err = Compile("<test>", mod)
	require.Error(t, err)
}

func TestCompileBreakOutsideLoopFails(t *testing.T) {
	mod, err := parser.Parse("<test>", []byte("break\n"))
	require.NoError(t, err)
	_, err = Compile("<test>", mod)
	require.Error(t, err)
	_, ok := err.(*CompileError)
	assert.True(t, ok)
}
