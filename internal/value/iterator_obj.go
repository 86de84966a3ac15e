package value

// IteratorClass is the built-in class backing the Value wrapper around
// a Go-side Iterator (produced by Iter for the built-in container
// kinds, or by a user __iter__ implementation that hands back a native
// cursor). Mirrors GeneratorClass's Instance.Native escape hatch:
// internal/vm installs __iter__/__next__ on it once at startup.
var IteratorClass = &Class{Name: "iterator", Attrs: map[string]Value{}}

func init() {
	IteratorClass.Bases = []*Class{ObjectClass}
	IteratorClass.MRO = []*Class{IteratorClass, ObjectClass}
}

// NewIterator wraps a native Iterator as a Tauraro Value.
func NewIterator(it Iterator) Value {
	inst := &Instance{Class: IteratorClass, Attrs: map[string]Value{}, Native: it}
	return Value{Kind: KindInstance, ref: inst}
}
