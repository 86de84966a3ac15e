package stdlib

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yusee-Programmer/tauraro-sub008/internal/value"
)

func call(t *testing.T, mod *value.ModuleObj, name string, args ...value.Value) value.Value {
	t.Helper()
	fnVal, ok := mod.Globals.Get(value.Str(name))
	require.True(t, ok, "%s not exported", name)
	v, err := fnVal.AsFunction().Native(args, nil)
	require.NoError(t, err)
	return v
}

func TestBuiltinsCoversExpectedModules(t *testing.T) {
	mods := Builtins()
	for _, name := range []string{"math", "os", "json", "time"} {
		assert.Contains(t, mods, name)
		assert.True(t, mods[name].Loaded)
	}
}

func TestMathSqrtAndPow(t *testing.T) {
	mod := mathModule()
	assert.Equal(t, 3.0, call(t, mod, "sqrt", value.Float(9)).AsFloat())
	assert.Equal(t, 8.0, call(t, mod, "pow", value.Int(2), value.Int(3)).AsFloat())
	pi, ok := mod.Globals.Get(value.Str("pi"))
	require.True(t, ok)
	assert.InDelta(t, 3.14159265, pi.AsFloat(), 1e-6)
}

func TestMathFloorCeilReturnInts(t *testing.T) {
	mod := mathModule()
	assert.Equal(t, int64(3), call(t, mod, "floor", value.Float(3.7)).AsInt())
	assert.Equal(t, int64(4), call(t, mod, "ceil", value.Float(3.1)).AsInt())
}

func TestOsGetenvWithDefault(t *testing.T) {
	mod := osModule()
	v := call(t, mod, "getenv", value.Str("TAURARO_DOES_NOT_EXIST_XYZ"), value.Str("fallback"))
	assert.Equal(t, "fallback", v.AsStr())
}

func TestJSONRoundTripsDictAndList(t *testing.T) {
	mod := jsonModule()
	d := value.NewDict()
	d.AsDict().Set(value.Str("name"), value.Str("tauraro"))
	d.AsDict().Set(value.Str("nums"), value.List([]value.Value{value.Int(1), value.Int(2), value.Int(3)}))

	encoded := call(t, mod, "dumps", d)
	require.Equal(t, value.KindStr, encoded.Kind)

	decoded := call(t, mod, "loads", encoded)
	require.Equal(t, value.KindDict, decoded.Kind)
	name, ok := decoded.AsDict().Get(value.Str("name"))
	require.True(t, ok)
	assert.Equal(t, "tauraro", name.AsStr())
	nums, ok := decoded.AsDict().Get(value.Str("nums"))
	require.True(t, ok)
	assert.Len(t, nums.AsList().Items(), 3)
}

func TestJSONDumpsRejectsNonStringKeys(t *testing.T) {
	mod := jsonModule()
	d := value.NewDict()
	d.AsDict().Set(value.Int(1), value.Str("x"))
	fnVal, _ := mod.Globals.Get(value.Str("dumps"))
	_, err := fnVal.AsFunction().Native([]value.Value{d}, nil)
	require.Error(t, err)
}

func TestTimeSleepRejectsNegativeDuration(t *testing.T) {
	mod := timeModule()
	fnVal, _ := mod.Globals.Get(value.Str("sleep"))
	_, err := fnVal.AsFunction().Native([]value.Value{value.Int(-1)}, nil)
	require.Error(t, err)
}

func TestTimeTimeIsPositive(t *testing.T) {
	mod := timeModule()
	v := call(t, mod, "time")
	assert.Greater(t, v.AsFloat(), 0.0)
}
