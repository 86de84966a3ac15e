package vm

import (
	"fmt"

	"github.com/Yusee-Programmer/tauraro-sub008/internal/value"
)

// getAttr implements `obj.name`, dispatching in the order spec.md §4.5
// documents: a property descriptor's getter first, then the instance's
// own attribute dict, then the class MRO (binding a plain function
// found there into a BoundMethod).
func (vm *VM) getAttr(obj value.Value, name string) (value.Value, error) {
	switch obj.Kind {
	case value.KindModule:
		mod := obj.AsModule()
		if v, ok := mod.Globals.Get(value.Str(name)); ok {
			return v, nil
		}
		return value.Value{}, newOpError(value.ErrAttributeError,
			fmt.Sprintf("module %q has no attribute %q", mod.Name, name))
	case value.KindClass:
		cls := obj.AsClass()
		if v, _, ok := value.LookupMRO(cls, name); ok {
			return v, nil
		}
		return value.Value{}, newOpError(value.ErrAttributeError,
			fmt.Sprintf("type object %q has no attribute %q", cls.Name, name))
	case value.KindInstance:
		inst := obj.AsInstance()
		if p, ok := value.LookupProperty(inst.Class, name); ok {
			if p.Get.Kind != value.KindFunction {
				return value.Value{}, newOpError(value.ErrAttributeError,
					fmt.Sprintf("%q object attribute %q is not readable", inst.Class.Name, name))
			}
			return vm.CallFunction(p.Get, []value.Value{obj}, nil)
		}
		if v, ok := inst.Attrs[name]; ok {
			return v, nil
		}
		if v, cls, ok := value.LookupMRO(inst.Class, name); ok {
			if v.Kind == value.KindFunction {
				return value.BoundMethod(obj, v), nil
			}
			_ = cls
			return v, nil
		}
		return value.Value{}, newOpError(value.ErrAttributeError,
			fmt.Sprintf("%q object has no attribute %q", inst.Class.Name, name))
	default:
		if cls, ok := builtinClassOf(obj); ok {
			if v, _, ok := value.LookupMRO(cls, name); ok {
				if v.Kind == value.KindFunction {
					return value.BoundMethod(obj, v), nil
				}
				return v, nil
			}
		}
		return value.Value{}, newOpError(value.ErrAttributeError,
			fmt.Sprintf("%q object has no attribute %q", obj.Kind, name))
	}
}

// setAttr implements `obj.name = value`.
func (vm *VM) setAttr(obj value.Value, name string, val value.Value) error {
	switch obj.Kind {
	case value.KindModule:
		obj.AsModule().Globals.Set(value.Str(name), val)
		return nil
	case value.KindInstance:
		inst := obj.AsInstance()
		if p, ok := value.LookupProperty(inst.Class, name); ok {
			if p.Set.Kind != value.KindFunction {
				return newOpError(value.ErrAttributeError,
					fmt.Sprintf("can't set attribute %q", name))
			}
			_, err := vm.CallFunction(p.Set, []value.Value{obj, val}, nil)
			return err
		}
		inst.Attrs[name] = val
		return nil
	case value.KindClass:
		obj.AsClass().Attrs[name] = val
		return nil
	default:
		return newOpError(value.ErrAttributeError,
			fmt.Sprintf("%q object attributes are read-only", obj.Kind))
	}
}

// delAttr implements `del obj.name`.
func (vm *VM) delAttr(obj value.Value, name string) error {
	switch obj.Kind {
	case value.KindInstance:
		inst := obj.AsInstance()
		if p, ok := value.LookupProperty(inst.Class, name); ok {
			if p.Del.Kind != value.KindFunction {
				return newOpError(value.ErrAttributeError, fmt.Sprintf("can't delete attribute %q", name))
			}
			_, err := vm.CallFunction(p.Del, []value.Value{obj}, nil)
			return err
		}
		if _, ok := inst.Attrs[name]; !ok {
			return newOpError(value.ErrAttributeError,
				fmt.Sprintf("%q object has no attribute %q", inst.Class.Name, name))
		}
		delete(inst.Attrs, name)
		return nil
	default:
		return newOpError(value.ErrAttributeError, fmt.Sprintf("%q object attributes are read-only", obj.Kind))
	}
}

// builtinClassOf reports the built-in class backing a non-Instance,
// non-Class Value (e.g. generator), so getAttr can still resolve
// methods installed on it (value.GeneratorClass's __iter__/__next__).
func builtinClassOf(v value.Value) (*value.Class, bool) {
	return nil, false
}
