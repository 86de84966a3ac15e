package compiler

import (
	"fmt"
	"strings"

	"github.com/Yusee-Programmer/tauraro-sub008/internal/value"
)

// Disassemble renders co's instruction stream as human-readable text,
// one line per instruction, in the `pc: OPCODE a b c` shape that
// `tauraro run --debug` dumps to stderr before executing (spec.md
// §4.6, §6). Grounded on db47h-ngaro/asm/asm.go's
// Disassemble, generalized from a flat Forth-cell listing to a
// register-machine one (constant/jump operands rendered inline,
// nested CodeObjects recursed into under an indented header).
func Disassemble(co *CodeObject) string {
	var b strings.Builder
	disassembleInto(&b, co, "")
	return b.String()
}

func disassembleInto(b *strings.Builder, co *CodeObject, indent string) {
	fmt.Fprintf(b, "%s%s (regs=%d, args=%d, locals=%v)\n", indent, co.Name, co.NumRegisters, co.NumArgs, co.Locals)
	for pc, in := range co.Instrs {
		fmt.Fprintf(b, "%s%4d  %-16s", indent, pc, in.Op.String())
		switch in.Op {
		case OpLoadConst:
			fmt.Fprintf(b, "r%d, %s\n", in.A, constRepr(co, in.B))
		case OpMakeFunction:
			fmt.Fprintf(b, "r%d, code[%d], nfree=%d, base=r%d\n", in.A, in.B, in.C, in.Target)
		case OpMakeClass:
			fmt.Fprintf(b, "r%d, name=%s, ns=r%d, base=r%d\n", in.A, constRepr(co, in.B), in.C, in.Target)
		case OpLoadGlobal, OpStoreGlobal:
			fmt.Fprintf(b, "r%d, %s\n", in.A, constRepr(co, in.B))
		case OpDelGlobal:
			fmt.Fprintf(b, "%s\n", constRepr(co, in.B))
		case OpDelLocal:
			fmt.Fprintf(b, "slot=%d (%s)\n", in.B, localName(co, in.B))
		case OpDelFree:
			fmt.Fprintf(b, "free=%d\n", in.B)
		case OpGetAttr, OpSetAttr, OpDelAttr:
			fmt.Fprintf(b, "r%d, r%d, %s\n", in.A, in.B, constRepr(co, in.C))
		case OpCompare, OpCompareLocals:
			fmt.Fprintf(b, "r%d, r%d, r%d  cmp=%s\n", in.A, in.B, in.C, in.Cmp)
		case OpCallUnpack:
			fmt.Fprintf(b, "r%d, nregs=%d, nkw=%d  star=%v starstar=%v\n", in.A, in.B, in.C, in.Target&1 != 0, in.Target&2 != 0)
		default:
			if isJumpOp(in.Op) {
				fmt.Fprintf(b, "-> %d  (a=%d b=%d c=%d)\n", in.Target, in.A, in.B, in.C)
			} else {
				fmt.Fprintf(b, "r%d, r%d, r%d\n", in.A, in.B, in.C)
			}
		}
	}
	if len(co.ExcTable) > 0 {
		fmt.Fprintf(b, "%sexception table:\n", indent)
		for _, r := range co.ExcTable {
			fmt.Fprintf(b, "%s  [%d,%d) -> %d types=%v finally=%v\n", indent, r.Start, r.End, r.Handler, r.Types, r.IsFinally)
		}
	}
	for i, child := range co.Codes {
		fmt.Fprintf(b, "%s-- code[%d] --\n", indent, i)
		disassembleInto(b, child, indent+"  ")
	}
}

func constRepr(co *CodeObject, idx int) string {
	if idx < 0 || idx >= len(co.Consts) {
		return "<bad-const>"
	}
	return value.Repr(co.Consts[idx])
}

func localName(co *CodeObject, slot int) string {
	if slot < 0 || slot >= len(co.Locals) {
		return "?"
	}
	return co.Locals[slot]
}
