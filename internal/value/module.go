package value

// ModuleObj is the heap payload for Module: a name, its globals dict
// and the subset of globals re-exported to importers (spec.md §3).
type ModuleObj struct {
	refcount
	Name    string
	Globals *DictObj
	Exports *DictObj
	Loaded  bool
	// Package, if non-empty, is the dotted package path this module
	// belongs to (for relative-import resolution, spec.md §4.9).
	Package string
	Dir     string // directory backing a package (has __init__)
}

// NewModule constructs an (initially unloaded) Module value.
func NewModule(name string) Value {
	m := &ModuleObj{
		Name:    name,
		Globals: NewDict().ref.(*DictObj),
		Exports: NewDict().ref.(*DictObj),
	}
	return Value{Kind: KindModule, ref: m}
}

func (v Value) AsModule() *ModuleObj { return v.ref.(*ModuleObj) }

// ModuleValue wraps an already-constructed ModuleObj (e.g. one
// internal/vm's RunModuleAt or internal/stdlib's Builtins() produced)
// as a Value, for callers that hold the *ModuleObj directly instead of
// building it fresh via NewModule.
func ModuleValue(m *ModuleObj) Value { return Value{Kind: KindModule, ref: m} }
