package vm

import (
	"github.com/Yusee-Programmer/tauraro-sub008/internal/value"
)

// doImport resolves `import name` / `from . import name` by delegating
// to vm.Loader (internal/importer in the full toolchain); level is the
// number of leading dots on a relative import (0 for an absolute one).
func (vm *VM) doImport(name string, level int, from *value.ModuleObj) (value.Value, error) {
	if vm.Loader == nil {
		return value.Value{}, newOpError(value.ErrImportError, "no module loader configured")
	}
	v, err := vm.Loader.Load(vm, name, level, from)
	if err != nil {
		return value.Value{}, err
	}
	return v, nil
}
