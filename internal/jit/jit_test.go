package jit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yusee-Programmer/tauraro-sub008/internal/compiler"
	"github.com/Yusee-Programmer/tauraro-sub008/internal/value"
)

// buildSumLoop compiles the body of `total = total + i` for a loop
// whose induction variable lands in register 0 and whose running sum
// lives in register 1: Add 1,1,0 (R[1] = R[1] + R[0]).
func buildSumLoop() []compiler.Instr {
	return []compiler.Instr{
		{Op: compiler.OpAdd, A: 1, B: 1, C: 0},
	}
}

func TestCompileSumLoopMatchesManualSum(t *testing.T) {
	body := buildSumLoop()
	fn, ok := Compile(body, nil, false, 0)
	require.True(t, ok)

	regs := make([]value.Value, 2)
	regs[1] = value.Int(0)
	require.NoError(t, fn(regs, 0, 10, 1))

	var want int64
	for i := int64(0); i < 10; i++ {
		want += i
	}
	assert.Equal(t, want, regs[1].AsInt())
}

func TestCompileDeclinesOnUnsupportedOpcode(t *testing.T) {
	body := []compiler.Instr{
		{Op: compiler.OpCall, A: 0, B: 1, C: 0},
	}
	_, ok := Compile(body, nil, false, 0)
	assert.False(t, ok)
}

func TestCompileDeclinesWhenFrameHasCellVars(t *testing.T) {
	body := buildSumLoop()
	_, ok := Compile(body, nil, true, 0)
	assert.False(t, ok)
}

func TestCompileDeclinesOnEmptyBody(t *testing.T) {
	_, ok := Compile(nil, nil, false, 0)
	assert.False(t, ok)
}

func TestCompileResolvesLoadConstFromPool(t *testing.T) {
	consts := []value.Value{value.Int(100)}
	body := []compiler.Instr{
		{Op: compiler.OpLoadConst, A: 1, B: 0},
		{Op: compiler.OpAdd, A: 2, B: 1, C: 0},
	}
	fn, ok := Compile(body, consts, false, 0)
	require.True(t, ok)

	regs := make([]value.Value, 3)
	require.NoError(t, fn(regs, 5, 6, 1))
	assert.Equal(t, int64(105), regs[2].AsInt())
}

func TestCompileNegativeStepIteratesDownward(t *testing.T) {
	body := buildSumLoop()
	fn, ok := Compile(body, nil, false, 0)
	require.True(t, ok)

	regs := make([]value.Value, 2)
	regs[1] = value.Int(0)
	require.NoError(t, fn(regs, 5, 0, -1))
	assert.Equal(t, int64(5+4+3+2+1), regs[1].AsInt())
}

func TestCompilePropagatesArithmeticErrorAsGenuineException(t *testing.T) {
	body := []compiler.Instr{
		{Op: compiler.OpFloorDiv, A: 1, B: 1, C: 0},
	}
	fn, ok := Compile(body, nil, false, 0)
	require.True(t, ok)

	regs := make([]value.Value, 2)
	regs[1] = value.Int(10)
	err := fn(regs, 0, 3, 1)
	require.Error(t, err)
	opErr, ok := err.(*value.OpError)
	require.True(t, ok)
	assert.Equal(t, value.ErrZeroDivisionError, opErr.TypeName)
}

func TestCompileComparisonProducesBool(t *testing.T) {
	body := []compiler.Instr{
		{Op: compiler.OpCompare, A: 1, B: 0, C: 2, Cmp: compiler.CmpLT},
	}
	fn, ok := Compile(body, nil, false, 0)
	require.True(t, ok)

	regs := make([]value.Value, 3)
	regs[2] = value.Int(5)
	require.NoError(t, fn(regs, 0, 1, 1))
	assert.True(t, regs[1].Truthy())
}

func TestCacheCompilesOnceAndReusesResult(t *testing.T) {
	c := NewCache()
	body := buildSumLoop()

	fn1, ok1 := c.CompileCached(body, nil, false, 0)
	fn2, ok2 := c.CompileCached(body, nil, false, 0)
	require.True(t, ok1)
	require.True(t, ok2)
	assert.Equal(t, 1, c.Len())

	regs := make([]value.Value, 2)
	regs[1] = value.Int(0)
	require.NoError(t, fn1(regs, 0, 3, 1))
	regs2 := make([]value.Value, 2)
	regs2[1] = value.Int(0)
	require.NoError(t, fn2(regs2, 0, 3, 1))
	assert.Equal(t, regs[1].AsInt(), regs2[1].AsInt())
}

func TestCacheDistinguishesDifferentLoopRegisters(t *testing.T) {
	c := NewCache()
	body := buildSumLoop()
	c.CompileCached(body, nil, false, 0)
	c.CompileCached(body, nil, false, 3)
	assert.Equal(t, 2, c.Len())
}

func TestCacheRemembersDeclinedCompilationsToo(t *testing.T) {
	c := NewCache()
	body := []compiler.Instr{{Op: compiler.OpRaise, A: 0}}
	_, ok := c.CompileCached(body, nil, false, 0)
	assert.False(t, ok)
	assert.Equal(t, 1, c.Len())
}
