package stdlib

import (
	"fmt"

	"github.com/Yusee-Programmer/tauraro-sub008/internal/value"
)

// newModule builds a Loaded built-in module ready to hand back from
// internal/importer's built-in-module branch without ever running a
// CodeObject body for it.
func newModule(name string) *value.ModuleObj {
	mod := value.NewModule(name).AsModule()
	mod.Loaded = true
	return mod
}

func typeErrf(format string, args ...any) error {
	return value.NewException(value.ErrTypeError, fmt.Sprintf(format, args...)).AsException()
}

func valueErrf(format string, args ...any) error {
	return value.NewException(value.ErrValueError, fmt.Sprintf(format, args...)).AsException()
}
