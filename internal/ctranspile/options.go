package ctranspile

// MemStrategy selects how the emitted C manages heap allocations for
// boxed values and class instances (spec.md §4.7 "Memory strategy
// switch").
type MemStrategy int

const (
	// MemAutomatic declares a reference-counted object header with
	// tauraro_incref/tauraro_decref in tauraro_rt.h. This is the
	// default. Emitted function bodies do not call them: no decrement
	// is emitted at scope exit.
	MemAutomatic MemStrategy = iota
	// MemManual declares allocate(n)/free_(p) in tauraro_rt.h; no
	// automatic decrements are emitted.
	MemManual
	// MemArena declares a bump allocator (arena_alloc/arena_reset) in
	// tauraro_rt.h. Emitted function bodies neither allocate from an
	// arena nor reset one on function exit.
	MemArena
)

func (m MemStrategy) String() string {
	switch m {
	case MemManual:
		return "manual"
	case MemArena:
		return "arena"
	default:
		return "automatic"
	}
}

// Backend selects the translation unit Transpile produces.
type Backend int

const (
	// BackendC emits a .c file plus tauraro_rt.h, per spec.md §4.7.
	BackendC Backend = iota
	// BackendWasm additionally attempts to emit a minimal wasm module
	// for eligible top-level functions (wasm.go), for `compile
	// --backend wasm`'s self-check via internal/wasmrun.
	BackendWasm
)

// Options configures one Transpile call. The zero value is boxed
// emission, automatic memory strategy, hosted mode, BackendC --
// spec.md's defaults.
type Options struct {
	Memory       MemStrategy
	Freestanding bool
	// TargetArch selects the inline-assembly dialect freestanding mode
	// emits for hardware intrinsics (intrinsics.go). Only "amd64" is
	// implemented; anything else falls back to the hosted stubs.
	TargetArch string
	Backend    Backend
}
