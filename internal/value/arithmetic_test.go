package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFloorDivRoundsTowardNegativeInfinity(t *testing.T) {
	v, err := FloorDiv(Int(-7), Int(2))
	require.NoError(t, err)
	assert.Equal(t, int64(-4), v.AsInt())
}

func TestModTakesDivisorSign(t *testing.T) {
	v, err := Mod(Int(-7), Int(3))
	require.NoError(t, err)
	assert.Equal(t, int64(2), v.AsInt())

	v, err = Mod(Int(7), Int(-3))
	require.NoError(t, err)
	assert.Equal(t, int64(-2), v.AsInt())
}

func TestPowIntExponentStaysInt(t *testing.T) {
	v, err := Pow(Int(2), Int(10))
	require.NoError(t, err)
	assert.Equal(t, KindInt, v.Kind)
	assert.Equal(t, int64(1024), v.AsInt())
}

func TestPowNegativeExponentPromotesToFloat(t *testing.T) {
	v, err := Pow(Int(2), Int(-1))
	require.NoError(t, err)
	assert.Equal(t, KindFloat, v.Kind)
	assert.InDelta(t, 0.5, v.AsFloat(), 1e-9)
}

func TestAddStringAndIntCoercesToString(t *testing.T) {
	v, err := Add(Str("x"), Int(1))
	require.NoError(t, err)
	assert.Equal(t, KindStr, v.Kind)
	assert.Equal(t, "x1", v.AsStr())

	v, err = Add(Int(1), Str("x"))
	require.NoError(t, err)
	assert.Equal(t, "1x", v.AsStr())
}

func TestAddIntAndListIsTypeError(t *testing.T) {
	_, err := Add(Int(1), List(nil))
	require.Error(t, err)
	_, ok := err.(*OpError)
	assert.True(t, ok)
}

func TestDivByZeroRaisesZeroDivisionError(t *testing.T) {
	_, err := Div(Int(1), Int(0))
	require.Error(t, err)
	opErr := err.(*OpError)
	assert.Equal(t, ErrZeroDivisionError, opErr.TypeName)
}

func TestMulStringRepeat(t *testing.T) {
	v, err := Mul(Str("ab"), Int(3))
	require.NoError(t, err)
	assert.Equal(t, "ababab", v.AsStr())
}

func TestCompareListsLexicographic(t *testing.T) {
	lt, err := Compare(CmpLT, List([]Value{Int(1), Int(2)}), List([]Value{Int(1), Int(3)}))
	require.NoError(t, err)
	assert.True(t, lt)
}
