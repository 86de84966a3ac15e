package value

import "strings"

// ListObj is the heap payload for List: a mutable, ordered sequence.
type ListObj struct {
	refcount
	items []Value
}

// List constructs a List value from the given items (copied).
func List(items []Value) Value {
	cp := make([]Value, len(items))
	copy(cp, items)
	return Value{Kind: KindList, ref: &ListObj{items: cp}}
}

// Items returns the backing slice. Callers that mutate it must go
// through the List-specific methods so Len stays consistent.
func (l *ListObj) Items() []Value { return l.items }
func (l *ListObj) Len() int       { return len(l.items) }

// AsList, AsTuple, AsDict, AsSet are typed accessors mirroring AsStr/
// AsInt, for callers outside this package (internal/vm's opcode
// dispatch) that need the underlying container payload.
func (v Value) AsList() *ListObj { return v.ref.(*ListObj) }

func (l *ListObj) Append(v Value) { l.items = append(l.items, v) }

func (l *ListObj) Get(idx int) (Value, bool) {
	idx = normIndex(idx, len(l.items))
	if idx < 0 || idx >= len(l.items) {
		return Value{}, false
	}
	return l.items[idx], true
}

func (l *ListObj) Set(idx int, v Value) bool {
	idx = normIndex(idx, len(l.items))
	if idx < 0 || idx >= len(l.items) {
		return false
	}
	l.items[idx] = v
	return true
}

func (l *ListObj) Delete(idx int) bool {
	idx = normIndex(idx, len(l.items))
	if idx < 0 || idx >= len(l.items) {
		return false
	}
	l.items = append(l.items[:idx], l.items[idx+1:]...)
	return true
}

// Slice returns a new ListObj holding items[start:stop:step], clamping
// start/stop to bounds per spec.md §8 ("slice start/stop beyond bounds
// clamps").
func (l *ListObj) Slice(start, stop, step int) []Value {
	return sliceValues(l.items, start, stop, step)
}

func normIndex(idx, length int) int {
	if idx < 0 {
		idx += length
	}
	return idx
}

func sliceValues(items []Value, start, stop, step int) []Value {
	n := len(items)
	if step == 0 {
		step = 1
	}
	if step > 0 {
		if start < 0 {
			start = 0
		}
		if stop > n {
			stop = n
		}
		if start >= stop {
			return nil
		}
		out := make([]Value, 0, (stop-start+step-1)/step)
		for i := start; i < stop; i += step {
			out = append(out, items[i])
		}
		return out
	}
	if start > n-1 {
		start = n - 1
	}
	if stop < -1 {
		stop = -1
	}
	if start <= stop {
		return nil
	}
	out := make([]Value, 0)
	for i := start; i > stop; i += step {
		out = append(out, items[i])
	}
	return out
}

// TupleObj is the heap payload for Tuple: an immutable, fixed-length
// sequence, hashable iff every element is hashable.
type TupleObj struct {
	refcount
	items []Value
}

// Tuple constructs a Tuple value.
func Tuple(items []Value) Value {
	cp := make([]Value, len(items))
	copy(cp, items)
	return Value{Kind: KindTuple, ref: &TupleObj{items: cp}}
}

func (t *TupleObj) Items() []Value { return t.items }
func (t *TupleObj) Len() int       { return len(t.items) }

func (v Value) AsTuple() *TupleObj { return v.ref.(*TupleObj) }

// dictEntry is one insertion-ordered slot of a DictObj.
type dictEntry struct {
	key, val Value
	deleted  bool
}

// DictObj is the heap payload for Dict: insertion-ordered mapping.
// Index by hash bucket into the entries slice so iteration order is
// always insertion order with duplicates collapsed to the first
// occurrence's position (spec.md §8).
type DictObj struct {
	refcount
	entries []dictEntry
	index   map[uint64][]int // hash -> indices into entries
}

// NewDict constructs an empty Dict.
func NewDict() Value {
	return Value{Kind: KindDict, ref: &DictObj{index: make(map[uint64][]int)}}
}

func (d *DictObj) find(key Value) (int, bool) {
	h := Hash(key)
	for _, idx := range d.index[h] {
		e := &d.entries[idx]
		if !e.deleted && Equal(e.key, key) {
			return idx, true
		}
	}
	return -1, false
}

// Set inserts or updates key -> val, preserving first-insertion order.
func (d *DictObj) Set(key, val Value) {
	if idx, ok := d.find(key); ok {
		d.entries[idx].val = val
		return
	}
	idx := len(d.entries)
	d.entries = append(d.entries, dictEntry{key: key, val: val})
	h := Hash(key)
	d.index[h] = append(d.index[h], idx)
}

func (d *DictObj) Get(key Value) (Value, bool) {
	if idx, ok := d.find(key); ok {
		return d.entries[idx].val, true
	}
	return Value{}, false
}

func (d *DictObj) Delete(key Value) bool {
	idx, ok := d.find(key)
	if !ok {
		return false
	}
	d.entries[idx].deleted = true
	return true
}

func (v Value) AsDict() *DictObj { return v.ref.(*DictObj) }

func (d *DictObj) Len() int {
	n := 0
	for _, e := range d.entries {
		if !e.deleted {
			n++
		}
	}
	return n
}

// Keys returns keys in insertion order.
func (d *DictObj) Keys() []Value {
	out := make([]Value, 0, len(d.entries))
	for _, e := range d.entries {
		if !e.deleted {
			out = append(out, e.key)
		}
	}
	return out
}

// Items returns (key, val) pairs in insertion order.
func (d *DictObj) Items() [][2]Value {
	out := make([][2]Value, 0, len(d.entries))
	for _, e := range d.entries {
		if !e.deleted {
			out = append(out, [2]Value{e.key, e.val})
		}
	}
	return out
}

func (d *DictObj) equal(o *DictObj) bool {
	if d.Len() != o.Len() {
		return false
	}
	for _, e := range d.entries {
		if e.deleted {
			continue
		}
		v, ok := o.Get(e.key)
		if !ok || !Equal(v, e.val) {
			return false
		}
	}
	return true
}

func (d *DictObj) repr() string {
	var b strings.Builder
	b.WriteByte('{')
	first := true
	for _, e := range d.entries {
		if e.deleted {
			continue
		}
		if !first {
			b.WriteString(", ")
		}
		first = false
		b.WriteString(Repr(e.key))
		b.WriteString(": ")
		b.WriteString(Repr(e.val))
	}
	b.WriteByte('}')
	return b.String()
}

// SetObj is the heap payload for both Set (mutable) and Frozenset
// (immutable) — Kind on the owning Value distinguishes the two.
type SetObj struct {
	refcount
	items []Value
	index map[uint64][]int
}

// NewSet constructs an empty mutable Set.
func NewSet(items []Value) Value {
	s := &SetObj{index: make(map[uint64][]int)}
	for _, it := range items {
		s.Add(it)
	}
	return Value{Kind: KindSet, ref: s}
}

// NewFrozenset constructs an immutable Frozenset.
func NewFrozenset(items []Value) Value {
	s := &SetObj{index: make(map[uint64][]int)}
	for _, it := range items {
		s.Add(it)
	}
	return Value{Kind: KindFrozenset, ref: s}
}

func (v Value) AsSet() *SetObj { return v.ref.(*SetObj) }

func (s *SetObj) Len() int { return len(s.items) }
func (s *SetObj) Items() []Value { return s.items }

func (s *SetObj) Contains(v Value) bool {
	h := Hash(v)
	for _, idx := range s.index[h] {
		if Equal(s.items[idx], v) {
			return true
		}
	}
	return false
}

func (s *SetObj) Add(v Value) {
	if s.Contains(v) {
		return
	}
	idx := len(s.items)
	s.items = append(s.items, v)
	h := Hash(v)
	s.index[h] = append(s.index[h], idx)
}

func (s *SetObj) Remove(v Value) bool {
	h := Hash(v)
	for i, idx := range s.index[h] {
		if Equal(s.items[idx], v) {
			s.items = append(s.items[:idx], s.items[idx+1:]...)
			s.rebuildIndex()
			_ = i
			return true
		}
	}
	return false
}

func (s *SetObj) rebuildIndex() {
	s.index = make(map[uint64][]int)
	for i, v := range s.items {
		h := Hash(v)
		s.index[h] = append(s.index[h], i)
	}
}

func (s *SetObj) equal(o *SetObj) bool {
	if s.Len() != o.Len() {
		return false
	}
	for _, v := range s.items {
		if !o.Contains(v) {
			return false
		}
	}
	return true
}

// SliceObj is the heap payload for Slice, produced by `a[start:stop:step]`
// syntax (OpBuildSlice) and consumed by OpGetItem/OpSetItem/OpDelItem.
// Start/Stop/Step are None when the corresponding part was omitted, so
// the indexing helpers can tell "omitted" (clamp to the container's
// bound) apart from an explicit 0.
type SliceObj struct {
	refcount
	Start, Stop, Step Value
}

// NewSlice constructs a Slice value.
func NewSlice(start, stop, step Value) Value {
	return Value{Kind: KindSlice, ref: &SliceObj{Start: start, Stop: stop, Step: step}}
}

func (v Value) AsSlice() *SliceObj { return v.ref.(*SliceObj) }

// Resolve computes concrete (start, stop, step) int indices against a
// sequence of length n, applying Python's None-means-"whole extent in
// this direction" and negative-step defaulting rules.
func (s *SliceObj) Resolve(n int) (start, stop, step int) {
	step = 1
	if s.Step.Kind == KindInt {
		step = int(s.Step.AsInt())
	}
	if step > 0 {
		start, stop = 0, n
	} else {
		start, stop = n-1, -1
	}
	if s.Start.Kind == KindInt {
		start = normIndex(int(s.Start.AsInt()), n)
	}
	if s.Stop.Kind == KindInt {
		stop = normIndex(int(s.Stop.AsInt()), n)
	}
	return start, stop, step
}

// RangeObj is the heap payload for Range: an immutable (start, stop,
// step) triple, restartable on every call to Iter.
type RangeObj struct {
	refcount
	Start, Stop, Step int64
}

// NewRange constructs a Range value. Panics if step == 0 (callers are
// expected to raise ValueError before calling this, mirroring the VM's
// eager-validation discipline for built-ins).
func NewRange(start, stop, step int64) Value {
	if step == 0 {
		panic("range() arg 3 must not be zero")
	}
	return Value{Kind: KindRange, ref: &RangeObj{Start: start, Stop: stop, Step: step}}
}

func (r *RangeObj) Len() int {
	if r.Step > 0 {
		if r.Stop <= r.Start {
			return 0
		}
		return int((r.Stop - r.Start + r.Step - 1) / r.Step)
	}
	if r.Stop >= r.Start {
		return 0
	}
	return int((r.Start - r.Stop - r.Step - 1) / -r.Step)
}

func (r *RangeObj) At(i int) int64 { return r.Start + int64(i)*r.Step }

func (v Value) AsRange() *RangeObj { return v.ref.(*RangeObj) }
