package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mkClass creates a class directly (bypassing NewClass's error
// plumbing) for use as a base in tests that need a fixed parent chain.
func mkClass(t *testing.T, name string, bases []*Class) *Class {
	t.Helper()
	v, err := NewClass(name, bases, map[string]Value{})
	require.NoError(t, err)
	return v.AsClass()
}

func TestMROBasics(t *testing.T) {
	a := mkClass(t, "A", nil)
	assert.Equal(t, []*Class{a, ObjectClass}, a.MRO)
	assert.Equal(t, a, a.MRO[0])
	assert.Equal(t, ObjectClass, a.MRO[len(a.MRO)-1])
}

// TestDiamondMRO reproduces Scenario B from spec.md §8: D(B, C) where
// B(A) and C(A) must linearize to (D, B, C, A, object).
func TestDiamondMRO(t *testing.T) {
	a := mkClass(t, "A", nil)
	b := mkClass(t, "B", []*Class{a})
	c := mkClass(t, "C", []*Class{a})
	d := mkClass(t, "D", []*Class{b, c})

	names := make([]string, len(d.MRO))
	for i, k := range d.MRO {
		names[i] = k.Name
	}
	assert.Equal(t, []string{"D", "B", "C", "A", "object"}, names)
}

func TestInconsistentMROFails(t *testing.T) {
	// X(A, B), Y(B, A): a class Z(X, Y) cannot be linearized.
	a := mkClass(t, "A", nil)
	b := mkClass(t, "B", nil)
	x := mkClass(t, "X", []*Class{a, b})
	y := mkClass(t, "Y", []*Class{b, a})
	_, err := NewClass("Z", []*Class{x, y}, map[string]Value{})
	require.Error(t, err)
	var ierr *InheritanceError
	assert.ErrorAs(t, err, &ierr)
}

func TestSuperAfter(t *testing.T) {
	a := mkClass(t, "A", nil)
	b := mkClass(t, "B", []*Class{a})
	c := mkClass(t, "C", []*Class{a})
	d := mkClass(t, "D", []*Class{b, c})

	rest := SuperAfter(d.MRO, b)
	require.Len(t, rest, 3)
	assert.Equal(t, "C", rest[0].Name)
	assert.Equal(t, "A", rest[1].Name)
	assert.Equal(t, "object", rest[2].Name)
}

func TestLookupMROAndProperty(t *testing.T) {
	a := mkClass(t, "A", nil)
	a.Attrs["greet"] = Str("hi")
	b := mkClass(t, "B", []*Class{a})

	v, defC, ok := LookupMRO(b, "greet")
	require.True(t, ok)
	assert.Equal(t, "A", defC.Name)
	assert.Equal(t, "hi", v.AsStr())

	_, _, ok = LookupMRO(b, "missing")
	assert.False(t, ok)

	b.Props["x"] = &Property{Get: Str("getter")}
	p, ok := LookupProperty(b, "x")
	require.True(t, ok)
	assert.Equal(t, "getter", p.Get.AsStr())
}
