package stdlib

import (
	"os"
	"runtime"

	"github.com/Yusee-Programmer/tauraro-sub008/internal/value"
)

// osModule exposes enough of Go's os package to make environment and
// working-directory access observable from Tauraro source; it does not
// attempt the full file-object/descriptor surface spec.md's os module
// implies -- out of scope per spec.md §1, see package doc.
func osModule() *value.ModuleObj {
	mod := newModule("os")
	set := func(name string, fn value.NativeFn) { mod.Globals.Set(value.Str(name), value.NativeFunction(name, fn)) }

	osName := "posix"
	if runtime.GOOS == "windows" {
		osName = "nt"
	}
	mod.Globals.Set(value.Str("name"), value.Str(osName))
	mod.Globals.Set(value.Str("sep"), value.Str(string(os.PathSeparator)))
	mod.Globals.Set(value.Str("linesep"), value.Str(lineSep()))

	set("getenv", func(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
		if len(args) < 1 {
			return value.Value{}, typeErrf("os.getenv() takes at least 1 argument")
		}
		key := args[0].AsStr()
		if v, ok := os.LookupEnv(key); ok {
			return value.Str(v), nil
		}
		if len(args) >= 2 {
			return args[1], nil
		}
		return value.None, nil
	})
	set("getcwd", func(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
		wd, err := os.Getwd()
		if err != nil {
			return value.Value{}, value.NewException(value.ErrRuntimeError, err.Error()).AsException()
		}
		return value.Str(wd), nil
	})
	set("listdir", func(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
		dir := "."
		if len(args) >= 1 {
			dir = args[0].AsStr()
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			return value.Value{}, value.NewException(value.ErrRuntimeError, err.Error()).AsException()
		}
		names := make([]value.Value, 0, len(entries))
		for _, e := range entries {
			names = append(names, value.Str(e.Name()))
		}
		return value.List(names), nil
	})

	return mod
}

func lineSep() string {
	if runtime.GOOS == "windows" {
		return "\r\n"
	}
	return "\n"
}
