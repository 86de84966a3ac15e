package compiler

// Op is one register-machine instruction opcode.
type Op uint8

// Tauraro register machine opcodes. Each instruction addresses up to
// three register/constant operands (A, B, C); the meaning of each
// operand is opcode-specific (documented per group below).
const (
	OpNop Op = iota

	// Constant and register movement.
	OpLoadConst  // R[A] = K[B]
	OpLoadLocal  // R[A] = L[B]
	OpStoreLocal // L[B] = R[A]
	OpLoadGlobal // R[A] = Globals[K[B].(string)]
	OpStoreGlobal
	OpLoadFree  // R[A] = *Freevars[B]
	OpStoreFree // *Freevars[B] = R[A]
	OpDelLocal  // unbind local slot B; a later LoadLocal/*Locals read of B raises UnboundLocalError
	OpDelFree   // unbind this frame's freevar cell B; a later LoadFree of B raises NameError
	OpDelGlobal // delete Globals[K[B].(string)]; raises NameError if absent
	OpLoadNone
	OpLoadTrue
	OpLoadFalse
	OpMove // R[A] = R[B]

	// Arithmetic / bitwise (R[A] = R[B] op R[C]).
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpFloorDiv
	OpMod
	OpPow
	OpBitAnd
	OpBitOr
	OpBitXor
	OpShl
	OpShr
	OpNeg    // R[A] = -R[B]
	OpNot    // R[A] = not R[B]
	OpInvert // R[A] = ~R[B]

	// Peephole-fused local-operand forms: R[A] = L[B] op L[C] (spec.md
	// §4.4's "AddLocals c, a, b" family), generated only by the
	// peephole pass, never by the straightforward tree-walk emitter.
	OpAddLocals
	OpSubLocals
	OpMulLocals
	OpDivLocals
	OpModLocals
	OpBitAndLocals
	OpBitOrLocals
	OpBitXorLocals
	OpShlLocals
	OpShrLocals
	OpCompareLocals // R[A] = L[B] <cmp> L[C]; cmp kind in Instr.Cmp

	// Comparison (R[A] = R[B] <cmp> R[C]; cmp kind in Instr.Cmp).
	OpCompare

	// Boolean combinators / identity / membership.
	OpIs
	OpIn

	// Containers.
	OpBuildList   // R[A] = list(R[B]..R[B+C-1])
	OpBuildTuple  // R[A] = tuple(R[B]..R[B+C-1])
	OpBuildSet    // R[A] = set(R[B]..R[B+C-1])
	OpBuildDict   // R[A] = dict from C (key,value) pairs starting at R[B]
	OpBuildSlice  // R[A] = slice(R[B], R[B+1], R[B+2])
	OpGetItem     // R[A] = R[B][R[C]]
	OpSetItem     // R[A][R[B]] = R[C]
	OpDelItem     // del R[A][R[B]]
	OpGetAttr     // R[A] = R[B].K[C].(string)
	OpSetAttr     // R[B].K[C].(string) = R[A]
	OpDelAttr     // del R[A].K[C].(string)

	// Calls.
	OpCall        // R[A] = R[A](R[A+1]..R[A+B]); C = keyword-arg pair count trailing (each pair is 2 of the B registers); a list/set in R[A] instead gets R[B] appended/added (comprehensions)
	OpCallUnpack  // like OpCall, but Instr.Target bit0 = last positional register holds a *args spread, bit1 = last keyword pair's value register holds a **kwargs spread
	OpLoadCellRef  // R[A] = the *value.Cell backing local slot B (C=0) or this frame's own freevar slot B (C=1); not the dereferenced value -- used only to build a MakeFunction capture list
	OpMakeFunction // R[A] = closure over CodeObject Codes[B] capturing the C cells OpLoadCellRef recorded at R[Target..Target+C-1]
	OpMakeClass   // R[A] = class built from name K[B], bases at R[A+1..], body result dict at R[C]
	OpReturn      // return R[A]
	OpReturnNone

	// Iteration.
	OpGetIter // R[A] = iter(R[B])
	OpForIter // R[A] = next(R[B]); on exhaustion jump to Instr.Target

	// Control flow.
	OpJump         // unconditional jump to Instr.Target
	OpJumpIfFalse  // if not R[A]: jump
	OpJumpIfTrue   // if R[A]: jump
	OpJumpIfFalseOrPop // short-circuit and/or support
	OpJumpIfTrueOrPop
	OpPopTop

	// Exceptions.
	OpRaise       // raise R[A] (R[A] may be NoneValue for bare re-raise)
	OpRaiseFrom   // raise R[A] from R[B]
	OpPushExcInfo // R[A] = current exception being handled
	OpEndFinally  // resume pending return/raise/break/continue after a finally block

	// Module system.
	OpImport     // R[A] = import module named K[B].(string), level C
	OpImportFrom // R[A] = getattr(R[B], K[C].(string)) with import-time fallback to submodule
	OpImportStar // import * from module in R[A] into globals

	// Generators / coroutines.
	OpYield    // suspend, yielding R[A]; resumes with sent value in R[A]
	OpYieldFrom
	OpAwait

	// Misc.
	OpAssertFail // raise AssertionError with optional message R[A]
	OpDup        // R[A] = R[B] (no-op alias kept distinct from Move for disassembly clarity)
	OpHalt
)

// CmpKind identifies the comparison performed by OpCompare/OpCompareLocals.
type CmpKind uint8

const (
	CmpLT CmpKind = iota
	CmpLE
	CmpGT
	CmpGE
	CmpEQ
	CmpNE
)

func (k CmpKind) String() string {
	switch k {
	case CmpLT:
		return "<"
	case CmpLE:
		return "<="
	case CmpGT:
		return ">"
	case CmpGE:
		return ">="
	case CmpEQ:
		return "=="
	case CmpNE:
		return "!="
	default:
		return "?"
	}
}

var opNames = map[Op]string{
	OpNop: "Nop", OpLoadConst: "LoadConst", OpLoadLocal: "LoadLocal",
	OpStoreLocal: "StoreLocal", OpLoadGlobal: "LoadGlobal", OpStoreGlobal: "StoreGlobal",
	OpLoadFree: "LoadFree", OpStoreFree: "StoreFree", OpDelLocal: "DelLocal", OpDelFree: "DelFree", OpDelGlobal: "DelGlobal", OpLoadNone: "LoadNone",
	OpLoadTrue: "LoadTrue", OpLoadFalse: "LoadFalse", OpMove: "Move",
	OpAdd: "Add", OpSub: "Sub", OpMul: "Mul", OpDiv: "Div", OpFloorDiv: "FloorDiv",
	OpMod: "Mod", OpPow: "Pow", OpBitAnd: "BitAnd", OpBitOr: "BitOr", OpBitXor: "BitXor",
	OpShl: "Shl", OpShr: "Shr", OpNeg: "Neg", OpNot: "Not", OpInvert: "Invert",
	OpAddLocals: "AddLocals", OpSubLocals: "SubLocals", OpMulLocals: "MulLocals",
	OpDivLocals: "DivLocals", OpModLocals: "ModLocals", OpBitAndLocals: "BitAndLocals",
	OpBitOrLocals: "BitOrLocals", OpBitXorLocals: "BitXorLocals", OpShlLocals: "ShlLocals",
	OpShrLocals: "ShrLocals", OpCompareLocals: "CompareLocals",
	OpCompare: "Compare", OpIs: "Is", OpIn: "In",
	OpBuildList: "BuildList", OpBuildTuple: "BuildTuple", OpBuildSet: "BuildSet",
	OpBuildDict: "BuildDict", OpBuildSlice: "BuildSlice",
	OpGetItem: "GetItem", OpSetItem: "SetItem", OpDelItem: "DelItem",
	OpGetAttr: "GetAttr", OpSetAttr: "SetAttr", OpDelAttr: "DelAttr",
	OpCall: "Call", OpCallUnpack: "CallUnpack", OpLoadCellRef: "LoadCellRef", OpMakeFunction: "MakeFunction",
	OpMakeClass: "MakeClass", OpReturn: "Return", OpReturnNone: "ReturnNone",
	OpGetIter: "GetIter", OpForIter: "ForIter",
	OpJump: "Jump", OpJumpIfFalse: "JumpIfFalse", OpJumpIfTrue: "JumpIfTrue",
	OpJumpIfFalseOrPop: "JumpIfFalseOrPop", OpJumpIfTrueOrPop: "JumpIfTrueOrPop",
	OpPopTop: "PopTop",
	OpRaise: "Raise", OpRaiseFrom: "RaiseFrom", OpPushExcInfo: "PushExcInfo",
	OpEndFinally: "EndFinally",
	OpImport: "Import", OpImportFrom: "ImportFrom", OpImportStar: "ImportStar",
	OpYield: "Yield", OpYieldFrom: "YieldFrom", OpAwait: "Await",
	OpAssertFail: "AssertFail", OpDup: "Dup", OpHalt: "Halt",
}

func (op Op) String() string {
	if s, ok := opNames[op]; ok {
		return s
	}
	return "Op(?)"
}
