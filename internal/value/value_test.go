package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruthiness(t *testing.T) {
	falsy := []Value{
		None,
		Bool(false),
		Int(0),
		Float(0),
		Str(""),
		Bytes(nil),
		List(nil),
		Tuple(nil),
		NewDict(),
		NewSet(nil),
	}
	for _, v := range falsy {
		assert.Falsef(t, v.Truthy(), "expected %s to be falsy", Repr(v))
	}

	truthy := []Value{Bool(true), Int(1), Int(-1), Float(0.1), Str("x"), List([]Value{Int(1)})}
	for _, v := range truthy {
		assert.Truef(t, v.Truthy(), "expected %s to be truthy", Repr(v))
	}
}

func TestEqualityVsIdentity(t *testing.T) {
	a := Str("hi")
	b := Str("hi")
	assert.True(t, Equal(a, b))
	assert.False(t, Is(a, b), "distinct Str allocations must not be identical")

	c := a
	assert.True(t, Is(a, c))
}

func TestHashConsistentWithEqual(t *testing.T) {
	pairs := [][2]Value{
		{Int(3), Int(3)},
		{Int(3), Float(3)},
		{Str("abc"), Str("abc")},
		{Tuple([]Value{Int(1), Str("x")}), Tuple([]Value{Int(1), Str("x")})},
	}
	for _, p := range pairs {
		assert.True(t, Equal(p[0], p[1]))
		assert.Equal(t, Hash(p[0]), Hash(p[1]))
	}
}

func TestDictInsertionOrderPreserved(t *testing.T) {
	d := NewDict().ref.(*DictObj)
	d.Set(Str("b"), Int(2))
	d.Set(Str("a"), Int(1))
	d.Set(Str("c"), Int(3))
	d.Set(Str("a"), Int(99)) // update, not re-insert

	keys := d.Keys()
	got := make([]string, len(keys))
	for i, k := range keys {
		got[i] = k.AsStr()
	}
	assert.Equal(t, []string{"b", "a", "c"}, got)
	v, ok := d.Get(Str("a"))
	assert.True(t, ok)
	assert.Equal(t, int64(99), v.AsInt())
}

func TestListSliceClampsBounds(t *testing.T) {
	l := List([]Value{Int(0), Int(1), Int(2), Int(3), Int(4)}).ref.(*ListObj)
	out := l.Slice(-100, 100, 1)
	assert.Len(t, out, 5)

	out = l.Slice(2, 2, 1)
	assert.Len(t, out, 0)
}

func TestRangeLenZero(t *testing.T) {
	r := NewRange(0, 0, 1).ref.(*RangeObj)
	assert.Equal(t, 0, r.Len())
}

func TestIterRestartable(t *testing.T) {
	r := NewRange(0, 3, 1)
	it1, ok := Iter(r)
	assert.True(t, ok)
	var got1 []int64
	for {
		v, ok := it1.Next()
		if !ok {
			break
		}
		got1 = append(got1, v.AsInt())
	}
	assert.Equal(t, []int64{0, 1, 2}, got1)

	it2, _ := Iter(r)
	v, ok := it2.Next()
	assert.True(t, ok)
	assert.Equal(t, int64(0), v.AsInt())
}
