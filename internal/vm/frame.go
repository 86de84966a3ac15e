package vm

import (
	"github.com/Yusee-Programmer/tauraro-sub008/internal/compiler"
	"github.com/Yusee-Programmer/tauraro-sub008/internal/value"
)

// Frame is one activation record: a register file plus the bookkeeping
// the dispatch loop (exec.go) needs to resolve locals, free variables,
// and -- when the running CodeObject is a generator -- suspend
// mid-instruction. Grounded on db47h-ngaro/vm/core.go's Instance, with
// the single global data stack split into one Regs slice per call
// (every Tauraro function is its own register window rather than
// sharing the interpreter's one stack).
type Frame struct {
	Code     *compiler.CodeObject
	Regs     []value.Value
	Globals  *value.ModuleObj
	Freevars []*value.Cell

	// cells holds the *value.Cell backing each of Code.CellVars'
	// register slots; getLocal/setLocal indirect through it instead of
	// Regs for any slot present here.
	cells map[int]*value.Cell

	// cellRefs is OpLoadCellRef's scratch space: register index ->
	// the raw *value.Cell it produced, consumed by the following
	// OpMakeFunction. It never participates in ordinary register
	// reads/writes (ops reading a plain register always mean Regs or,
	// for a CellVar slot, the boxed cell -- never this map).
	cellRefs map[int]*value.Cell

	PC           int
	FuncName     string
	DefiningClass *value.Class

	// CurExc is the exception currently being handled by this frame
	// (set by OpPushExcInfo / a running except clause), consulted by a
	// bare `raise` with no operand (spec.md §4.5 "bare raise inside an
	// except clause re-raises").
	CurExc *value.ExceptionObj

	// pendingExc is set when control reached an IsFinally handler
	// because an exception unwound into it (as opposed to falling
	// through normally after the try body completed); OpEndFinally
	// re-raises it once the finally block finishes running.
	pendingExc *value.ExceptionObj

	// Gen is non-nil only while this frame belongs to a generator,
	// wiring OpYield to the goroutine/channel rendezvous in
	// generator.go instead of returning normally.
	Gen *genState

	Parent *Frame
}

func newFrame(co *compiler.CodeObject, globals *value.ModuleObj, freevars []*value.Cell) *Frame {
	f := &Frame{
		Code:     co,
		Regs:     make([]value.Value, co.NumRegisters),
		Globals:  globals,
		Freevars: freevars,
		FuncName: co.Name,
	}
	if len(co.CellVars) > 0 {
		f.cells = make(map[int]*value.Cell, len(co.CellVars))
		slotOf := make(map[string]int, len(co.Locals))
		for i, name := range co.Locals {
			slotOf[name] = i
		}
		for _, name := range co.CellVars {
			f.cells[slotOf[name]] = &value.Cell{}
		}
	}
	return f
}

func (f *Frame) getLocal(slot int) value.Value {
	if c, ok := f.cells[slot]; ok {
		return c.V
	}
	return f.Regs[slot]
}

func (f *Frame) setLocal(slot int, v value.Value) {
	if c, ok := f.cells[slot]; ok {
		c.V = v
		return
	}
	f.Regs[slot] = v
}

// recordCellRef finds the *value.Cell OpLoadCellRef should capture for
// local slot (own cellvar) or free-variable index (this frame's own
// already-captured cell), recorded at register dst for the following
// OpMakeFunction to read back.
func (f *Frame) recordCellRef(dst, slot int, ownFree bool) {
	if f.cellRefs == nil {
		f.cellRefs = map[int]*value.Cell{}
	}
	if ownFree {
		f.cellRefs[dst] = f.Freevars[slot]
		return
	}
	f.cellRefs[dst] = f.cells[slot]
}
