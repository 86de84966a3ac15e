package compiler

// fusedLocalOp maps a (load-load-op-store) sequence's arithmetic/
// comparison opcode to its fused "operate directly on two locals"
// form (spec.md §4.4's "peephole fusion of common Load+Load+Op+Store
// sequences").
var fusedLocalOp = map[Op]Op{
	OpAdd:    OpAddLocals,
	OpSub:    OpSubLocals,
	OpMul:    OpMulLocals,
	OpDiv:    OpDivLocals,
	OpMod:    OpModLocals,
	OpBitAnd: OpBitAndLocals,
	OpBitOr:  OpBitOrLocals,
	OpBitXor: OpBitXorLocals,
	OpShl:    OpShlLocals,
	OpShr:    OpShrLocals,
	OpCompare: OpCompareLocals,
}

// ApplyPeephole scans co's instruction stream for the pattern
//
//	LoadLocal  ta, la
//	LoadLocal  tb, lb
//	<op>       td, ta, tb
//	StoreLocal td, lc
//
// and fuses it into a single <op>Locals lc, la, lb, eliminating the
// two temporary registers. Jump targets are instruction indices, not
// register numbers, so deleting instructions requires rewriting every
// Target that pointed past the fused window; this pass therefore only
// fuses runs with no jump target landing inside them.
func ApplyPeephole(co *CodeObject) {
	jumpTargets := map[int]bool{}
	for _, in := range co.Instrs {
		if isJumpOp(in.Op) {
			jumpTargets[in.Target] = true
		}
	}

	out := make([]Instr, 0, len(co.Instrs))
	remap := make([]int, len(co.Instrs)) // old index -> new index
	i := 0
	for i < len(co.Instrs) {
		if i+3 < len(co.Instrs) && fusesAt(co.Instrs, i, jumpTargets) {
			a := co.Instrs[i]
			b := co.Instrs[i+1]
			op := co.Instrs[i+2]
			st := co.Instrs[i+3]
			fused, ok := fusedLocalOp[op.Op]
			if ok {
				instr := Instr{Op: fused, A: st.B, B: a.B, C: b.B, Line: op.Line}
				if op.Op == OpCompare {
					instr.Cmp = op.Cmp
				}
				remap[i] = len(out)
				remap[i+1] = len(out)
				remap[i+2] = len(out)
				remap[i+3] = len(out)
				out = append(out, instr)
				i += 4
				continue
			}
		}
		remap[i] = len(out)
		out = append(out, co.Instrs[i])
		i++
	}

	for idx := range out {
		if isJumpOp(out[idx].Op) {
			out[idx].Target = remap[out[idx].Target]
		}
	}
	co.Instrs = out
}

func fusesAt(instrs []Instr, i int, jumpTargets map[int]bool) bool {
	a, b, op, st := instrs[i], instrs[i+1], instrs[i+2], instrs[i+3]
	if a.Op != OpLoadLocal || b.Op != OpLoadLocal || st.Op != OpStoreLocal {
		return false
	}
	if _, ok := fusedLocalOp[op.Op]; !ok {
		return false
	}
	if op.B != a.A || op.C != b.A {
		// op must consume exactly the two just-loaded temporaries
		return false
	}
	if st.A != op.A {
		return false
	}
	for k := i + 1; k <= i+3; k++ {
		if jumpTargets[k] {
			return false
		}
	}
	return true
}

func isJumpOp(op Op) bool {
	switch op {
	case OpJump, OpJumpIfFalse, OpJumpIfTrue, OpJumpIfFalseOrPop, OpJumpIfTrueOrPop, OpForIter:
		return true
	default:
		return false
	}
}
