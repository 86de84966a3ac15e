package stdlib

import "github.com/Yusee-Programmer/tauraro-sub008/internal/value"

// Builtins returns a fresh set of the built-in modules internal/importer
// consults before ever touching the filesystem search path (spec.md
// §4.9 "built-in module table"). Each call builds new ModuleObj
// instances so two *vm.VM instances never share mutable module state.
func Builtins() map[string]*value.ModuleObj {
	return map[string]*value.ModuleObj{
		"math": mathModule(),
		"os":   osModule(),
		"json": jsonModule(),
		"time": timeModule(),
	}
}
