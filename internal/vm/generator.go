package vm

import (
	"github.com/Yusee-Programmer/tauraro-sub008/internal/value"
)

// genState is the suspended-execution state of one generator, grounded
// on the yaegi interpreter's frame type (an ancestor-pointer call stack
// plus a cancellation channel -- the nearest thing in the example pack
// to a suspendable call frame) and corroborated by db47h-ngaro/vm.go's
// own doc-comment TODO sketching "go routines that leverage channels"
// for concurrent execution. A generator's body runs on its own
// goroutine; resumeCh/yieldCh are unbuffered so the driving goroutine
// and the generator goroutine are never both runnable (spec.md §4.6:
// Tauraro generators are cooperative, not concurrent).
type genState struct {
	vm       *VM
	frame    *Frame
	resumeCh chan resumeMsg
	yieldCh  chan yieldMsg
	started  bool
	done     bool
}

type resumeMsg struct {
	val     value.Value
	sendErr error // set by throw(); delivered as the error OpYield's resume returns
}

type yieldMsg struct {
	val value.Value
	ok  bool // false: the frame returned (exhausted) rather than yielded
	err error
}

// newGeneratorValue wraps f (a freshly bound, not-yet-run frame for a
// generator function) as a Tauraro generator object. The frame's body
// doesn't start running until the first next()/send(None).
func (vm *VM) newGeneratorValue(name string, f *Frame) value.Value {
	gs := &genState{
		vm:       vm,
		frame:    f,
		resumeCh: make(chan resumeMsg),
		yieldCh:  make(chan yieldMsg),
	}
	f.Gen = gs
	return value.NewGenerator(name, gs)
}

// doYield implements OpYield from inside the generator's own goroutine:
// hand val to whoever called next()/send(), then block until resumed.
func (vm *VM) doYield(f *Frame, val value.Value) (value.Value, error) {
	if f.Gen == nil {
		return value.Value{}, newOpError(value.ErrRuntimeError, "'yield' outside generator")
	}
	f.Gen.yieldCh <- yieldMsg{val: val, ok: true}
	msg := <-f.Gen.resumeCh
	if msg.sendErr != nil {
		return value.Value{}, msg.sendErr
	}
	return msg.val, nil
}

// doYieldFrom implements `yield from iterable`: pumps iterable's own
// values through this generator's yield point and returns the
// delegate's final value (its StopIteration.Value) once it's exhausted.
func (vm *VM) doYieldFrom(f *Frame, iterable value.Value) (value.Value, error) {
	it, err := vm.getIter(iterable)
	if err != nil {
		return value.Value{}, err
	}
	result := value.None
	for {
		v, ok, err := vm.iterNext(it)
		if err != nil {
			return value.Value{}, err
		}
		if !ok {
			break
		}
		sent, err := vm.doYield(f, v)
		if err != nil {
			return value.Value{}, err
		}
		result = sent
	}
	return result, nil
}

// doAwait is Tauraro's simplified single-threaded await (spec.md §4.6
// Non-goals exclude a real event loop): an awaitable coroutine is
// driven to completion synchronously and its return value produced,
// exactly like exhausting yield from on it; any other value awaits to
// itself.
func (vm *VM) doAwait(f *Frame, v value.Value) (value.Value, error) {
	if v.Kind != value.KindInstance || v.AsInstance().Class != value.GeneratorClass {
		return v, nil
	}
	return vm.doYieldFrom(f, v)
}

// genNext drives gs one step, starting its goroutine on first use and
// rendezvousing on resumeCh/yieldCh otherwise. ok=false with a nil err
// signals the generator returned (PEP 479-style StopIteration carrying
// the return value is synthesized by the caller, generatorNext).
func genNext(gs *genState, sendVal value.Value, sendErr error) (value.Value, bool, error) {
	if gs.done {
		return value.Value{}, false, nil
	}
	if !gs.started {
		gs.started = true
		go func() {
			val, err := gs.vm.runFrame(gs.frame)
			gs.yieldCh <- yieldMsg{val: val, ok: false, err: err}
		}()
	} else {
		gs.resumeCh <- resumeMsg{val: sendVal, sendErr: sendErr}
	}
	msg := <-gs.yieldCh
	if !msg.ok {
		gs.done = true
	}
	if msg.err != nil {
		return value.Value{}, false, msg.err
	}
	return msg.val, msg.ok, nil
}

// generatorNext implements the generator's __next__ method installed
// on value.GeneratorClass: advance one step, translating exhaustion
// into a raised StopIteration carrying the generator's return value
// (spec.md §4.6).
func generatorNext(recv value.Value) (value.Value, error) {
	gs := recv.AsInstance().Native.(*genState)
	v, ok, err := genNext(gs, value.None, nil)
	if err != nil {
		return value.Value{}, err
	}
	if !ok {
		exc := value.NewException(value.ErrStopIteration, "").AsException()
		exc.Value = v
		return value.Value{}, exc
	}
	return v, nil
}

// generatorSend implements .send(value): like __next__ but resumes the
// generator's last `yield` expression with the given value instead of
// None. Sending a non-None value to a not-yet-started generator is a
// TypeError (spec.md §4.6 "can't send non-None value to a just-started
// generator").
func generatorSend(recv, sent value.Value) (value.Value, error) {
	gs := recv.AsInstance().Native.(*genState)
	if !gs.started && sent.Kind != value.KindNone {
		return value.Value{}, newOpError(value.ErrTypeError, "can't send non-None value to a just-started generator")
	}
	v, ok, err := genNext(gs, sent, nil)
	if err != nil {
		return value.Value{}, err
	}
	if !ok {
		exc := value.NewException(value.ErrStopIteration, "").AsException()
		exc.Value = v
		return value.Value{}, exc
	}
	return v, nil
}

// generatorThrow implements .throw(exc): raises exc at the generator's
// suspended yield point.
func generatorThrow(recv value.Value, exc *value.ExceptionObj) (value.Value, error) {
	gs := recv.AsInstance().Native.(*genState)
	if !gs.started || gs.done {
		return value.Value{}, exc
	}
	v, ok, err := genNext(gs, value.None, exc)
	if err != nil {
		return value.Value{}, err
	}
	if !ok {
		inner := value.NewException(value.ErrStopIteration, "").AsException()
		inner.Value = v
		return value.Value{}, inner
	}
	return v, nil
}
