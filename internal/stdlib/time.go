package stdlib

import (
	"time"

	"github.com/Yusee-Programmer/tauraro-sub008/internal/value"
)

// timeModule covers the two calls spec.md §5's concurrency model
// actually depends on being observable (a monotonic-ish wall clock
// read, and a blocking sleep) rather than the full calendar/strftime
// surface of a real time module.
func timeModule() *value.ModuleObj {
	mod := newModule("time")
	set := func(name string, fn value.NativeFn) { mod.Globals.Set(value.Str(name), value.NativeFunction(name, fn)) }

	set("time", func(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
		return value.Float(float64(time.Now().UnixNano()) / 1e9), nil
	})
	set("sleep", func(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
		if len(args) != 1 {
			return value.Value{}, typeErrf("time.sleep() takes exactly 1 argument, got %d", len(args))
		}
		secs, err := asFloat(args[0])
		if err != nil {
			return value.Value{}, err
		}
		if secs < 0 {
			return value.Value{}, valueErrf("sleep length must be non-negative")
		}
		time.Sleep(time.Duration(secs * float64(time.Second)))
		return value.None, nil
	})

	return mod
}
