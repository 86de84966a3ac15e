// Package vm executes compiled Tauraro bytecode (internal/compiler's
// CodeObject) on a register-file frame stack.
//
// Grounded on db47h-ngaro/vm/core.go's Instance.Run(): a flat
// for-PC-in-range dispatch loop over a big opcode switch, with a
// single defer/recover at the call boundary translating any Go panic
// into a returned error. This implementation generalizes that shape
// from a single global data/address stack shared by the whole VM to
// one register file per call frame, and from the teacher's
// recover()-to-error translation to spec.md's exception-table-driven
// unwinding: a raised exception first searches the current frame's
// ExcTable before ever reaching Go's own panic/recover machinery,
// which is reserved for genuine VM-internal faults (index out of
// range, a nil CodeRef) that get wrapped into a RuntimeError at the
// frame boundary exactly the way Run() wraps a Go panic into an
// *errors.Wrapf'd error.
//
// Generators suspend cooperatively on a dedicated goroutine
// synchronized by a pair of unbuffered channels (see generator.go),
// following the ancestor-frame/cancellation-channel shape sketched in
// the yaegi Go-source interpreter's frame type -- the nearest thing in
// the example pack to a suspendable call frame, since Ngaro's own VM
// has no notion of coroutines. Tauraro otherwise runs single-threaded
// with no preemption (spec.md §4.6): only one generator goroutine is
// ever runnable at a time, the rest parked on a channel receive.
package vm
