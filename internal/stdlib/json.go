package stdlib

import (
	"encoding/json"

	"github.com/Yusee-Programmer/tauraro-sub008/internal/value"
)

// jsonModule wraps Go's encoding/json behind dumps/loads, converting
// through a plain interface{} tree rather than attempting a custom
// Marshaler on value.Value itself -- value stays free of any encoding
// concern, consistent with it otherwise being a pure data-model
// package (value.go/container.go have no I/O imports).
func jsonModule() *value.ModuleObj {
	mod := newModule("json")
	set := func(name string, fn value.NativeFn) { mod.Globals.Set(value.Str(name), value.NativeFunction(name, fn)) }

	set("dumps", func(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
		if len(args) != 1 {
			return value.Value{}, typeErrf("json.dumps() takes exactly 1 argument, got %d", len(args))
		}
		native, err := toNative(args[0])
		if err != nil {
			return value.Value{}, err
		}
		b, err := json.Marshal(native)
		if err != nil {
			return value.Value{}, valueErrf("json.dumps(): %v", err)
		}
		return value.Str(string(b)), nil
	})
	set("loads", func(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
		if len(args) != 1 {
			return value.Value{}, typeErrf("json.loads() takes exactly 1 argument, got %d", len(args))
		}
		var native any
		if err := json.Unmarshal([]byte(args[0].AsStr()), &native); err != nil {
			return value.Value{}, valueErrf("json.loads(): %v", err)
		}
		return fromNative(native), nil
	})

	return mod
}

// toNative converts a Value into the interface{} shape encoding/json
// understands (map[string]any, []any, string, float64, bool, nil).
// Dict keys that are not strings fail: JSON objects only support
// string keys.
func toNative(v value.Value) (any, error) {
	switch v.Kind {
	case value.KindNone:
		return nil, nil
	case value.KindBool:
		return v.AsBool(), nil
	case value.KindInt:
		return v.AsInt(), nil
	case value.KindFloat:
		return v.AsFloat(), nil
	case value.KindStr:
		return v.AsStr(), nil
	case value.KindList:
		items := v.AsList().Items()
		out := make([]any, len(items))
		for i, it := range items {
			n, err := toNative(it)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	case value.KindTuple:
		items := v.AsTuple().Items()
		out := make([]any, len(items))
		for i, it := range items {
			n, err := toNative(it)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	case value.KindDict:
		out := map[string]any{}
		for _, kv := range v.AsDict().Items() {
			if kv[0].Kind != value.KindStr {
				return nil, typeErrf("json.dumps(): dict keys must be str, got %s", kv[0].Kind)
			}
			n, err := toNative(kv[1])
			if err != nil {
				return nil, err
			}
			out[kv[0].AsStr()] = n
		}
		return out, nil
	default:
		return nil, typeErrf("json.dumps(): object of type %s is not JSON serializable", v.Kind)
	}
}

func fromNative(n any) value.Value {
	switch x := n.(type) {
	case nil:
		return value.None
	case bool:
		return value.Bool(x)
	case float64:
		return value.Float(x)
	case string:
		return value.Str(x)
	case []any:
		items := make([]value.Value, len(x))
		for i, e := range x {
			items[i] = fromNative(e)
		}
		return value.List(items)
	case map[string]any:
		d := value.NewDict()
		for k, e := range x {
			d.AsDict().Set(value.Str(k), fromNative(e))
		}
		return d
	default:
		return value.None
	}
}
