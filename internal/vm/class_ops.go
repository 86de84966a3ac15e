package vm

import (
	"github.com/Yusee-Programmer/tauraro-sub008/internal/value"
)

// instantiate implements `Cls(args...)`: allocate a bare instance, then
// call __init__ on it if the class (or an ancestor) defines one.
// __init__'s return value is discarded, matching spec.md §4.1 "a class
// body's __init__ must return None".
func (vm *VM) instantiate(cls *value.Class, args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	inst := value.NewInstance(cls)
	if init, definer, ok := value.LookupMRO(cls, "__init__"); ok && init.Kind == value.KindFunction {
		if _, err := vm.callBound(init, definer, inst, args, kwargs); err != nil {
			return value.Value{}, err
		}
	}
	return inst, nil
}
