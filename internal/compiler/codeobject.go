package compiler

import (
	"fmt"

	"github.com/Yusee-Programmer/tauraro-sub008/internal/value"
)

// Instr is one register-machine instruction. Not every field is
// meaningful for every Op; see opcodes.go's per-group comments.
type Instr struct {
	Op     Op
	A, B, C int
	Cmp    CmpKind
	Target int // absolute instruction index, for jump/loop opcodes
	Line   int
}

// ExcRange is one entry of a CodeObject's exception table: while the
// program counter is within [Start,End), an exception matching Types
// (empty means "bare except", matches anything) transfers control to
// Handler with the exception bound to register ExcReg.
type ExcRange struct {
	Start, End int
	Handler    int
	Types      []string // empty = catch-all
	ExcReg     int
	IsFinally  bool
}

// CodeObject is the compiled form of one function body (or the
// top-level module body, treated as an implicit zero-argument
// function). It is the register-machine analogue of a Python code
// object: instructions, constant pool, named-local table, free-variable
// (closure) table, and a line-number table for tracebacks (spec.md
// §4.4).
type CodeObject struct {
	Name     string
	Filename string

	Instrs []Instr
	Consts []value.Value
	Codes  []*CodeObject // nested function/lambda/class-body CodeObjects, indexed by OpMakeFunction's B operand

	// NumRegisters is the register-file size this CodeObject needs;
	// computed by the compiler's register allocator.
	NumRegisters int

	// Locals lists this function's own local variable names in
	// declaration order; their register slots are NumArgs-fixed
	// prefixes followed by other locals.
	Locals  []string
	NumArgs int

	// Params carries call-binding metadata for each formal parameter,
	// in declaration order, so internal/vm can bind a call's positional
	// and keyword arguments without re-walking the source ast.FunctionDef.
	Params []ParamInfo

	// Freevars lists the names of enclosing-scope variables this
	// function closes over, in the order MakeFunction expects captured
	// cells to be passed.
	Freevars []string

	// CellVars lists this function's own locals that are captured by a
	// nested function and therefore must live in a *value.Cell instead
	// of a plain register slot.
	CellVars []string

	ExcTable []ExcRange

	// Externs carries the `extern "lib" { ... }` declarations compiled
	// out of this module's top level; internal/ffi resolves them at
	// import time (spec.md §4.8).
	Externs []ExternFunc

	IsGenerator bool
	IsAsync     bool
}

// ParamInfo is one formal parameter's call-binding metadata. Default,
// when HasDefault is set, was constant-folded at compile time into
// this CodeObject's own Consts pool (index DefaultConst) rather than
// carried as a live ast.Expr -- parameter defaults are restricted to
// compile-time constants (spec.md §4.4 doesn't mandate Python's
// evaluated-once-in-the-defining-scope default semantics, and folding
// into the callee's own constant pool avoids needing another
// MakeFunction operand to pass "defaults evaluated by the caller").
type ParamInfo struct {
	Name         string
	HasDefault   bool
	DefaultConst int // index into this CodeObject's Consts, -1 if none
	Variadic     bool // *args
	KwVariadic   bool // **kwargs
	KeywordOnly  bool
}

// ExternFunc is one foreign-function signature declared by an
// `extern` block, carried on the module CodeObject for internal/ffi to
// bind when the module is imported.
type ExternFunc struct {
	Library    string
	Name       string
	ParamTypes []string
	ReturnType string
}

// CodeName implements value.CodeRef.
func (c *CodeObject) CodeName() string { return c.Name }

func (c *CodeObject) String() string {
	return fmt.Sprintf("<code %s at %s>", c.Name, c.Filename)
}

func newCodeObject(name, filename string) *CodeObject {
	return &CodeObject{Name: name, Filename: filename}
}

// addConst interns v into the constant pool, returning its index.
// Interning matters for the peephole pass and keeps small modules'
// pools compact; equal immediates share a slot.
func (c *CodeObject) addConst(v value.Value) int {
	for i, k := range c.Consts {
		if sameConst(k, v) {
			return i
		}
	}
	c.Consts = append(c.Consts, v)
	return len(c.Consts) - 1
}

// addCodeConst appends a nested CodeObject and returns its index for
// use as OpMakeFunction's code-table operand.
func (c *CodeObject) addCodeConst(child *CodeObject) int {
	c.Codes = append(c.Codes, child)
	return len(c.Codes) - 1
}

// sameConst compares constants by kind and bit pattern rather than
// value.Equal, since e.g. Int(1) and Float(1.0) must not share a slot
// (their runtime types differ even though they compare equal).
func sameConst(a, b value.Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case value.KindNone:
		return true
	case value.KindBool, value.KindInt:
		return a.AsInt() == b.AsInt()
	case value.KindFloat:
		return a.AsFloat() == b.AsFloat()
	case value.KindStr:
		return a.AsStr() == b.AsStr()
	default:
		return false
	}
}
