package vm

import (
	"github.com/Yusee-Programmer/tauraro-sub008/internal/compiler"
	"github.com/Yusee-Programmer/tauraro-sub008/internal/value"
)

// hotLoopKey identifies a range-for-loop's backward-branch target: a
// given CodeObject's ForIter instruction at pc (spec.md §4.6 "An
// instruction-executed counter is maintained per range-based for-loop
// backward-branch target").
type hotLoopKey struct {
	co *compiler.CodeObject
	pc int
}

// tryJIT is consulted by OpForIter's handler (exec.go) on every pass
// through a for-loop header. It returns ran=true once it has executed
// the loop's remaining iterations natively, having already written
// every effect into f.Regs exactly as continued interpretation would
// have; the caller then jumps to forIn.Target (the loop's normal
// exhaustion address) instead of resuming the dispatch loop.
func (vm *VM) tryJIT(f *Frame, forIn compiler.Instr) (ran bool, err error) {
	if vm.jitDisabled {
		return false, nil
	}
	key := hotLoopKey{co: f.Code, pc: f.PC}
	vm.hotCounts[key]++
	if vm.hotCounts[key] < defaultJITThreshold {
		return false, nil
	}

	iterVal := f.Regs[forIn.B]
	if iterVal.Kind != value.KindInstance || iterVal.AsInstance().Class != value.IteratorClass {
		return false, nil
	}
	it, ok := iterVal.AsInstance().Native.(value.Iterator)
	if !ok {
		return false, nil
	}
	start, stop, step, pos, ok := value.RangeIterState(it)
	if !ok || step == 0 {
		return false, nil
	}

	body, ok := straightLineBody(f.Code.Instrs, f.PC)
	if !ok {
		return false, nil
	}

	hasCells := len(f.Code.CellVars) > 0
	fn, ok := vm.jitCache.CompileCached(body, f.Code.Consts, hasCells, forIn.A)
	if !ok {
		return false, nil
	}

	cur := start + int64(pos)*step
	if err := fn(f.Regs, cur, stop, step); err != nil {
		return false, err
	}
	f.PC = forIn.Target
	return true, nil
}

// straightLineBody returns the instruction slice between a ForIter at
// forIterPC and its matching backward Jump, or ok=false if the body
// contains anything but the straight-line opcodes the JIT understands
// -- including a nested branch, break, or continue, since spec.md
// §4.6 "Scope" restricts the JIT to loops "whose operations are
// restricted to ... register load/store" (no control flow inside).
func straightLineBody(instrs []compiler.Instr, forIterPC int) ([]compiler.Instr, bool) {
	for end := forIterPC + 1; end < len(instrs); end++ {
		in := instrs[end]
		if in.Op == compiler.OpJump && in.Target == forIterPC {
			return instrs[forIterPC+1 : end], true
		}
		if !jitBodyOps[in.Op] {
			return nil, false
		}
	}
	return nil, false
}

var jitBodyOps = map[compiler.Op]bool{
	compiler.OpNop: true, compiler.OpLoadConst: true, compiler.OpLoadLocal: true,
	compiler.OpStoreLocal: true, compiler.OpMove: true, compiler.OpDup: true,
	compiler.OpLoadNone: true, compiler.OpLoadTrue: true, compiler.OpLoadFalse: true,
	compiler.OpAdd: true, compiler.OpSub: true, compiler.OpMul: true, compiler.OpDiv: true,
	compiler.OpFloorDiv: true, compiler.OpMod: true, compiler.OpPow: true,
	compiler.OpBitAnd: true, compiler.OpBitOr: true, compiler.OpBitXor: true,
	compiler.OpShl: true, compiler.OpShr: true,
	compiler.OpNeg: true, compiler.OpNot: true, compiler.OpInvert: true,
	compiler.OpAddLocals: true, compiler.OpSubLocals: true, compiler.OpMulLocals: true,
	compiler.OpDivLocals: true, compiler.OpModLocals: true, compiler.OpBitAndLocals: true,
	compiler.OpBitOrLocals: true, compiler.OpBitXorLocals: true, compiler.OpShlLocals: true,
	compiler.OpShrLocals: true, compiler.OpCompareLocals: true, compiler.OpCompare: true,
}
