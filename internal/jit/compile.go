package jit

import (
	"github.com/Yusee-Programmer/tauraro-sub008/internal/compiler"
	"github.com/Yusee-Programmer/tauraro-sub008/internal/value"
)

// Compiled is a compiled range-loop body, callable in place of
// re-dispatching the loop one interpreter step at a time (spec.md
// §4.6 "emit a function that takes (register_pointer, start, stop,
// step)"). regs is the owning frame's live register slice; Compiled
// writes the induction variable and every register the body assigns
// directly into it, exactly as the interpreter would have.
type Compiled func(regs []value.Value, start, stop, step int64) error

// thunk is one compiled instruction: a closure over its operands that
// mutates regs in place. Chaining these is the "closure chain" this
// package's safety argument rests on (see doc.go) -- there is no
// buffer for a thunk to write past, only ordinary slice indexing.
type thunk func(regs []value.Value) error

// allowedOps is spec.md §4.6 "Scope": arithmetic, bitwise, unary,
// comparisons, and register load/store. Anything else -- calls,
// subscripting, attribute access, branches, iteration -- declines
// compilation. The guarded runtime-helper fast path spec.md mentions
// for list subscript/append/length is not implemented in this pass
// (see DESIGN.md): without static types, every such op would need a
// runtime type guard with its own bail path, and the numeric core
// here already exercises the compile/cache/threshold machinery the
// spec is evaluating.
var allowedOps = map[compiler.Op]bool{
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

// binOps mirrors internal/vm's own opcode-to-helper table (exec.go's
// binOps/localsBinOps); duplicated here rather than imported because
// internal/vm imports this package to drive the JIT, so the reverse
// import would cycle. Both tables call the same internal/value
// functions, so the arithmetic semantics never diverge between the
// interpreted and compiled paths.
var binOps = map[compiler.Op]func(a, b value.Value) (value.Value, error){
	compiler.OpAdd: value.Add, compiler.OpSub: value.Sub, compiler.OpMul: value.Mul,
	compiler.OpDiv: value.Div, compiler.OpFloorDiv: value.FloorDiv, compiler.OpMod: value.Mod,
	compiler.OpPow: value.Pow, compiler.OpBitAnd: value.BitAnd, compiler.OpBitOr: value.BitOr,
	compiler.OpBitXor: value.BitXor, compiler.OpShl: value.Shl, compiler.OpShr: value.Shr,
	compiler.OpAddLocals: value.Add, compiler.OpSubLocals: value.Sub, compiler.OpMulLocals: value.Mul,
	compiler.OpDivLocals: value.Div, compiler.OpModLocals: value.Mod,
	compiler.OpBitAndLocals: value.BitAnd, compiler.OpBitOrLocals: value.BitOr,
	compiler.OpBitXorLocals: value.BitXor, compiler.OpShlLocals: value.Shl, compiler.OpShrLocals: value.Shr,
}

// Compile attempts to turn a straight-line loop body into a Compiled
// closure chain. consts is the owning CodeObject's constant pool,
// needed to resolve OpLoadConst at compile time (constants are
// immutable once a CodeObject exists, so baking the Value itself into
// the closure is safe). hasCells must be true when the owning
// CodeObject has any CellVars -- a compiled body indexes regs
// directly and has no way to honor a local that is actually boxed in
// a *value.Cell shared with a closure, so compilation is declined
// rather than silently diverging from the interpreter on that local.
// loopReg is the register the induction variable is written to each
// iteration (ForIter's destination register).
func Compile(body []compiler.Instr, consts []value.Value, hasCells bool, loopReg int) (Compiled, bool) {
	if hasCells || len(body) == 0 {
		return nil, false
	}
	thunks := make([]thunk, 0, len(body))
	for _, in := range body {
		t, ok := compileInstr(in, consts)
		if !ok {
			return nil, false
		}
		thunks = append(thunks, t)
	}
	return func(regs []value.Value, start, stop, step int64) error {
		for i := start; loopContinues(i, stop, step); i += step {
			regs[loopReg] = value.Int(i)
			for _, t := range thunks {
				if err := t(regs); err != nil {
					return err
				}
			}
		}
		return nil
	}, true
}

func loopContinues(i, stop, step int64) bool {
	if step > 0 {
		return i < stop
	}
	return i > stop
}

func compileInstr(in compiler.Instr, consts []value.Value) (thunk, bool) {
	if !allowedOps[in.Op] {
		return nil, false
	}
	switch in.Op {
	case compiler.OpNop:
		return func(regs []value.Value) error { return nil }, true
	case compiler.OpLoadNone:
		a := in.A
		return func(regs []value.Value) error { regs[a] = value.None; return nil }, true
	case compiler.OpLoadTrue:
		a := in.A
		return func(regs []value.Value) error { regs[a] = value.Bool(true); return nil }, true
	case compiler.OpLoadFalse:
		a := in.A
		return func(regs []value.Value) error { regs[a] = value.Bool(false); return nil }, true
	case compiler.OpLoadConst:
		if in.B < 0 || in.B >= len(consts) {
			return nil, false
		}
		a, k := in.A, consts[in.B]
		return func(regs []value.Value) error { regs[a] = k; return nil }, true
	case compiler.OpMove, compiler.OpDup, compiler.OpLoadLocal:
		// R[A] = R[B] (OpLoadLocal's "local" already lives in a register
		// slot in this register machine, so loading one is just a copy).
		a, b := in.A, in.B
		return func(regs []value.Value) error { regs[a] = regs[b]; return nil }, true
	case compiler.OpStoreLocal:
		// L[B] = R[A] -- the destination/source registers are reversed
		// from OpLoadLocal's operand order (opcodes.go).
		a, b := in.A, in.B
		return func(regs []value.Value) error { regs[b] = regs[a]; return nil }, true
	case compiler.OpNeg:
		a, b := in.A, in.B
		return func(regs []value.Value) error {
			v, err := value.Neg(regs[b])
			if err != nil {
				return err
			}
			regs[a] = v
			return nil
		}, true
	case compiler.OpNot:
		a, b := in.A, in.B
		return func(regs []value.Value) error { regs[a] = value.Bool(!regs[b].Truthy()); return nil }, true
	case compiler.OpInvert:
		a, b := in.A, in.B
		return func(regs []value.Value) error {
			v, err := value.Invert(regs[b])
			if err != nil {
				return err
			}
			regs[a] = v
			return nil
		}, true
	case compiler.OpCompare, compiler.OpCompareLocals:
		a, b, c, cmp := in.A, in.B, in.C, in.Cmp
		return func(regs []value.Value) error {
			r, err := compareValues(cmp, regs[b], regs[c])
			if err != nil {
				return err
			}
			regs[a] = value.Bool(r)
			return nil
		}, true
	default:
		fn, ok := binOps[in.Op]
		if !ok {
			return nil, false
		}
		a, b, c := in.A, in.B, in.C
		return func(regs []value.Value) error {
			v, err := fn(regs[b], regs[c])
			if err != nil {
				return err
			}
			regs[a] = v
			return nil
		}, true
	}
}

// compareValues mirrors internal/vm's compareExec (exec.go), translating
// compiler.CmpKind to value.CmpKindArg for the relational operators and
// handling ==/!= directly via value.Equal, exactly as the interpreter does.
func compareValues(kind compiler.CmpKind, a, b value.Value) (bool, error) {
	switch kind {
	case compiler.CmpEQ:
		return value.Equal(a, b), nil
	case compiler.CmpNE:
		return !value.Equal(a, b), nil
	default:
		var vk value.CmpKindArg
		switch kind {
		case compiler.CmpLT:
			vk = value.CmpLT
		case compiler.CmpLE:
			vk = value.CmpLE
		case compiler.CmpGT:
			vk = value.CmpGT
		case compiler.CmpGE:
			vk = value.CmpGE
		}
		return value.Compare(vk, a, b)
	}
}
