package jit

import (
	"encoding/binary"
	"hash/fnv"
	"sync"

	"github.com/google/uuid"

	"github.com/Yusee-Programmer/tauraro-sub008/internal/compiler"
	"github.com/Yusee-Programmer/tauraro-sub008/internal/value"
)

// entry is one cached compilation result, keyed by the content hash of
// the instructions it was compiled from. ID is not used for lookup --
// the hash is -- but gives every distinct compiled loop a stable
// externally-visible identity (SPEC_FULL.md §B "IDs"), which a future
// `--debug` flag can print alongside a loop's hit count.
type entry struct {
	ID      uuid.UUID
	Fn      Compiled
	Ok      bool
	Hits    int
}

// Cache memoizes Compile results by the loop body's instruction
// content, so a loop entered many times (e.g. inside an outer loop,
// or across repeated calls to the same function) pays the compile
// cost once. Safe for concurrent use since a VM's generator coroutines
// may each be running their own frame of the same CodeObject.
type Cache struct {
	mu      sync.Mutex
	entries map[uint64]*entry
}

// NewCache constructs an empty compilation cache.
func NewCache() *Cache {
	return &Cache{entries: map[uint64]*entry{}}
}

// CompileCached looks up (or compiles and stores) the Compiled closure
// for body. The hash covers op/A/B/C/Cmp for every instruction plus
// loopReg, so two textually-identical loop bodies at different
// registers are cached separately (a Compiled closure hardcodes
// loopReg and every operand register index).
func (c *Cache) CompileCached(body []compiler.Instr, consts []value.Value, hasCells bool, loopReg int) (Compiled, bool) {
	h := hashBody(body, loopReg)
	c.mu.Lock()
	if e, ok := c.entries[h]; ok {
		e.Hits++
		c.mu.Unlock()
		return e.Fn, e.Ok
	}
	c.mu.Unlock()

	fn, ok := Compile(body, consts, hasCells, loopReg)
	e := &entry{ID: newCacheID(), Fn: fn, Ok: ok, Hits: 1}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.entries[h]; ok {
		return existing.Fn, existing.Ok
	}
	c.entries[h] = e
	return e.Fn, e.Ok
}

// Len reports how many distinct loop bodies have been compiled
// (successfully or not), for tests and future diagnostics.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func hashBody(body []compiler.Instr, loopReg int) uint64 {
	h := fnv.New64a()
	var buf [8]byte
	write := func(n int64) {
		binary.LittleEndian.PutUint64(buf[:], uint64(n))
		h.Write(buf[:])
	}
	write(int64(loopReg))
	for _, in := range body {
		write(int64(in.Op))
		write(int64(in.A))
		write(int64(in.B))
		write(int64(in.C))
		write(int64(in.Cmp))
	}
	return h.Sum64()
}

func newCacheID() uuid.UUID {
	id, err := uuid.NewRandom()
	if err != nil {
		return uuid.Nil
	}
	return id
}
