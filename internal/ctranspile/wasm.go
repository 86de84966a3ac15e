package ctranspile

import (
	"bytes"
	"encoding/binary"

	"github.com/Yusee-Programmer/tauraro-sub008/internal/ast"
)

// EmitWasm is the wasm analogue of internal/jit's "restricted
// straight-line scope" idea (internal/jit/doc.go), applied at
// transpile time instead of at a hot-loop backward branch: a
// top-level function is eligible only if every parameter and its
// return are annotated `int`, and its body is exactly one `return
// <expr>` built from int literals, parameter names, +/-/* binary
// operators, and unary `-` -- no calls, no control flow, no other
// types. Anything wider falls outside this pass's scope and is
// silently excluded from the module rather than failing the whole
// transpile (the C output from Transpile is the authoritative result;
// the wasm module is only `compile --backend wasm`'s self-check that
// internal/wasmrun executes via wazero).
//
// The binary format encoded here is the WebAssembly 1.0 module
// encoding (magic, version, then Type/Function/Export/Code sections);
// no assembler/encoder from the example pack covers wasm specifically,
// so this is grounded instead on db47h-ngaro/asm's own role -- a
// hand-written encoder turning parsed instructions into a binary
// image one section/opcode at a time (asm/parser.go's write) --
// generalized from a Forth vm.Cell image to the wasm binary format.
func EmitWasm(mod *ast.Module) ([]byte, bool) {
	var out []wasmFunc
	for _, s := range mod.Body {
		fn, ok := s.(*ast.FunctionDef)
		if !ok {
			continue
		}
		if wf, ok := compileWasmFunc(fn); ok {
			out = append(out, wf)
		}
	}
	if len(out) == 0 {
		return nil, false
	}
	return encodeWasmModule(out), true
}

type wasmFunc struct {
	name    string
	nparams int
	body    []byte // already includes the trailing 0x0b (end)
}

func compileWasmFunc(fn *ast.FunctionDef) (wasmFunc, bool) {
	if fn.Returns == nil {
		return wasmFunc{}, false
	}
	if nt, ok := inferType(fn.Returns); !ok || nt != NativeInt {
		return wasmFunc{}, false
	}
	locals := map[string]int{}
	for i, p := range fn.Params {
		nt, ok := inferType(p.Annotation)
		if !ok || nt != NativeInt {
			return wasmFunc{}, false
		}
		locals[p.Name] = i
	}
	if len(fn.Body) != 1 {
		return wasmFunc{}, false
	}
	ret, ok := fn.Body[0].(*ast.Return)
	if !ok || ret.Value == nil {
		return wasmFunc{}, false
	}
	var code bytes.Buffer
	if !emitWasmExpr(&code, ret.Value, locals) {
		return wasmFunc{}, false
	}
	code.WriteByte(0x0b) // end
	return wasmFunc{name: fn.Name, nparams: len(fn.Params), body: code.Bytes()}, true
}

// emitWasmExpr writes x's instructions into code, reporting false if x
// falls outside the restricted scope documented on EmitWasm.
func emitWasmExpr(code *bytes.Buffer, x ast.Expr, locals map[string]int) bool {
	switch n := x.(type) {
	case *ast.NumberExpr:
		if n.IsFloat {
			return false
		}
		code.WriteByte(0x42) // i64.const
		writeSLEB128(code, n.Int)
		return true
	case *ast.NameExpr:
		idx, ok := locals[n.Id]
		if !ok {
			return false
		}
		code.WriteByte(0x20) // local.get
		writeULEB128(code, uint64(idx))
		return true
	case *ast.UnaryOpExpr:
		if n.Op != "-" {
			return false
		}
		code.WriteByte(0x42) // i64.const 0
		writeSLEB128(code, 0)
		if !emitWasmExpr(code, n.X, locals) {
			return false
		}
		code.WriteByte(0x7d) // i64.sub
		return true
	case *ast.BinOpExpr:
		var op byte
		switch n.Op {
		case "+":
			op = 0x7c // i64.add
		case "-":
			op = 0x7d // i64.sub
		case "*":
			op = 0x7e // i64.mul
		default:
			return false
		}
		if !emitWasmExpr(code, n.Left, locals) {
			return false
		}
		if !emitWasmExpr(code, n.Right, locals) {
			return false
		}
		code.WriteByte(op)
		return true
	default:
		return false
	}
}

// --- WebAssembly 1.0 binary encoding ---

const (
	wasmSecType     = 1
	wasmSecFunction = 3
	wasmSecExport   = 7
	wasmSecCode     = 10
	wasmValI64      = 0x7e
	wasmExportFunc  = 0x00
)

func encodeWasmModule(funcs []wasmFunc) []byte {
	var mod bytes.Buffer
	mod.WriteString("\x00asm")
	binary.Write(&mod, binary.LittleEndian, uint32(1))

	// Type section: one func type per wasmFunc, (i64^n) -> i64.
	var types bytes.Buffer
	writeULEB128(&types, uint64(len(funcs)))
	for _, f := range funcs {
		types.WriteByte(0x60) // func type tag
		writeULEB128(&types, uint64(f.nparams))
		for i := 0; i < f.nparams; i++ {
			types.WriteByte(wasmValI64)
		}
		types.WriteByte(1) // one result
		types.WriteByte(wasmValI64)
	}
	writeSection(&mod, wasmSecType, types.Bytes())

	// Function section: type index == func index, 1:1.
	var funcSec bytes.Buffer
	writeULEB128(&funcSec, uint64(len(funcs)))
	for i := range funcs {
		writeULEB128(&funcSec, uint64(i))
	}
	writeSection(&mod, wasmSecFunction, funcSec.Bytes())

	// Export section: export every function under its source name.
	var exports bytes.Buffer
	writeULEB128(&exports, uint64(len(funcs)))
	for i, f := range funcs {
		writeName(&exports, f.name)
		exports.WriteByte(wasmExportFunc)
		writeULEB128(&exports, uint64(i))
	}
	writeSection(&mod, wasmSecExport, exports.Bytes())

	// Code section: one entry per function, no additional locals.
	var code bytes.Buffer
	writeULEB128(&code, uint64(len(funcs)))
	for _, f := range funcs {
		var body bytes.Buffer
		writeULEB128(&body, 0) // zero local-declaration groups
		body.Write(f.body)
		writeULEB128(&code, uint64(body.Len()))
		code.Write(body.Bytes())
	}
	writeSection(&mod, wasmSecCode, code.Bytes())

	return mod.Bytes()
}

func writeSection(mod *bytes.Buffer, id byte, payload []byte) {
	mod.WriteByte(id)
	writeULEB128(mod, uint64(len(payload)))
	mod.Write(payload)
}

func writeName(b *bytes.Buffer, s string) {
	writeULEB128(b, uint64(len(s)))
	b.WriteString(s)
}

func writeULEB128(b *bytes.Buffer, v uint64) {
	for {
		c := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b.WriteByte(c | 0x80)
		} else {
			b.WriteByte(c)
			return
		}
	}
}

func writeSLEB128(b *bytes.Buffer, v int64) {
	for {
		c := byte(v & 0x7f)
		v >>= 7
		signBitSet := c&0x40 != 0
		if (v == 0 && !signBitSet) || (v == -1 && signBitSet) {
			b.WriteByte(c)
			return
		}
		b.WriteByte(c | 0x80)
	}
}
