package value

// GeneratorClass is the built-in class backing generator objects
// (spec.md §4.6 "Generators"). It carries no Tauraro-level attributes
// of its own; internal/vm populates __iter__/__next__/__send__ once at
// startup and every generator Instance stores its suspended-frame
// state in Instance.Native (the same opaque-payload escape hatch
// class.go documents for built-in types implemented in Go).
var GeneratorClass = &Class{Name: "generator", Attrs: map[string]Value{}}

func init() {
	GeneratorClass.Bases = []*Class{ObjectClass}
	GeneratorClass.MRO = []*Class{GeneratorClass, ObjectClass}
}

// NewGenerator allocates a bare generator instance; native is the
// owning package's suspended-execution state (an internal/vm type
// this package never names).
func NewGenerator(name string, native interface{}) Value {
	inst := &Instance{Class: GeneratorClass, Attrs: map[string]Value{"__name__": Str(name)}, Native: native}
	return Value{Kind: KindInstance, ref: inst}
}
