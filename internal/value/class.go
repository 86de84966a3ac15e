package value

import (
	"fmt"
)

// Property is a class attribute descriptor with get/set/delete
// intercepts (spec.md §4.5 "Attribute access on instances").
type Property struct {
	Get Value // Function or zero Value
	Set Value
	Del Value
}

// Class is the runtime representation of a class: name, linearized
// MRO, own attribute map and property descriptors.
type Class struct {
	refcount
	Name  string
	Bases []*Class
	MRO   []*Class // MRO[0] == this class, MRO[len-1] == object
	Attrs map[string]Value
	Props map[string]*Property
}

// ObjectClass is the root of every MRO (spec.md §3 invariant iii).
var ObjectClass = &Class{Name: "object", Attrs: map[string]Value{}}

func init() {
	ObjectClass.MRO = []*Class{ObjectClass}
}

// InheritanceError is raised when C3 linearization fails to produce a
// monotonic merge.
type InheritanceError struct {
	Msg string
}

func (e *InheritanceError) Error() string { return e.Msg }

// NewClass creates a class from (name, bases, attrs), computing its
// MRO by C3 linearization (spec.md §4.1). If bases is empty, object is
// used implicitly.
func NewClass(name string, bases []*Class, attrs map[string]Value) (Value, error) {
	if len(bases) == 0 {
		bases = []*Class{ObjectClass}
	}
	c := &Class{Name: name, Bases: bases, Attrs: attrs, Props: map[string]*Property{}}
	mro, err := c3Linearize(c)
	if err != nil {
		return Value{}, err
	}
	c.MRO = mro
	return Value{Kind: KindClass, ref: c}, nil
}

// c3Linearize computes the C3 MRO of c: c followed by the merge of the
// linearizations of each base plus the base list itself, preserving
// relative base order and requiring each class to precede its
// ancestors. Fails with InheritanceError if no monotonic merge exists.
func c3Linearize(c *Class) ([]*Class, error) {
	if len(c.Bases) == 0 {
		return []*Class{c}, nil
	}
	var sequences [][]*Class
	for _, b := range c.Bases {
		seq := make([]*Class, len(b.MRO))
		copy(seq, b.MRO)
		sequences = append(sequences, seq)
	}
	baseOrder := make([]*Class, len(c.Bases))
	copy(baseOrder, c.Bases)
	sequences = append(sequences, baseOrder)

	merged := []*Class{c}
	for {
		// drop empty sequences
		nonEmpty := sequences[:0]
		for _, s := range sequences {
			if len(s) > 0 {
				nonEmpty = append(nonEmpty, s)
			}
		}
		sequences = nonEmpty
		if len(sequences) == 0 {
			return merged, nil
		}
		var head *Class
		for _, seq := range sequences {
			cand := seq[0]
			if !inTail(cand, sequences) {
				head = cand
				break
			}
		}
		if head == nil {
			return nil, &InheritanceError{Msg: fmt.Sprintf("cannot create a consistent method resolution order (MRO) for class %q", c.Name)}
		}
		merged = append(merged, head)
		for i, seq := range sequences {
			if len(seq) > 0 && seq[0] == head {
				sequences[i] = seq[1:]
			}
		}
	}
}

func inTail(cls *Class, sequences [][]*Class) bool {
	for _, seq := range sequences {
		for i := 1; i < len(seq); i++ {
			if seq[i] == cls {
				return true
			}
		}
	}
	return false
}

// LookupMRO walks c's MRO left to right looking for name in each
// class's own Attrs, returning the defining class alongside the value.
func LookupMRO(c *Class, name string) (Value, *Class, bool) {
	for _, k := range c.MRO {
		if v, ok := k.Attrs[name]; ok {
			return v, k, true
		}
	}
	return Value{}, nil, false
}

// LookupProperty walks c's MRO looking for a property descriptor.
func LookupProperty(c *Class, name string) (*Property, bool) {
	for _, k := range c.MRO {
		if p, ok := k.Props[name]; ok {
			return p, true
		}
	}
	return nil, false
}

// SuperAfter returns the slice of the MRO starting just after
// callerClass, for super()'s lookup semantics (spec.md §4.1).
func SuperAfter(receiverMRO []*Class, callerClass *Class) []*Class {
	for i, c := range receiverMRO {
		if c == callerClass {
			if i+1 < len(receiverMRO) {
				return receiverMRO[i+1:]
			}
			return nil
		}
	}
	return nil
}

// Instance is the runtime representation of an object: a class
// pointer plus its own attribute dict. Native is an optional opaque
// payload used by built-in types implemented in Go (e.g. open file
// handles) that still want class-based dispatch.
type Instance struct {
	refcount
	Class  *Class
	Attrs  map[string]Value
	Native interface{}
}

// NewInstance allocates a bare instance of c. Callers must invoke
// __init__ themselves (the VM does this as part of call dispatch);
// spec.md §3 invariant iv only guarantees Class is non-nil once
// __init__ *returns*, not at allocation time.
func NewInstance(c *Class) Value {
	return Value{Kind: KindInstance, ref: &Instance{Class: c, Attrs: map[string]Value{}}}
}

// AsClass/AsInstance are typed accessors mirroring AsStr/AsInt.
func (v Value) AsClass() *Class       { return v.ref.(*Class) }
func (v Value) AsInstance() *Instance { return v.ref.(*Instance) }

// ClassValue wraps an existing *Class as a Class value.
func ClassValue(c *Class) Value { return Value{Kind: KindClass, ref: c} }
