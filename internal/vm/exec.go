package vm

import (
	"fmt"

	"github.com/Yusee-Programmer/tauraro-sub008/internal/compiler"
	"github.com/Yusee-Programmer/tauraro-sub008/internal/value"
)

type binOpFn func(a, b value.Value) (value.Value, error)

var binOps = map[compiler.Op]binOpFn{
	compiler.OpAdd: value.Add, compiler.OpSub: value.Sub, compiler.OpMul: value.Mul,
	compiler.OpDiv: value.Div, compiler.OpFloorDiv: value.FloorDiv, compiler.OpMod: value.Mod,
	compiler.OpPow: value.Pow, compiler.OpBitAnd: value.BitAnd, compiler.OpBitOr: value.BitOr,
	compiler.OpBitXor: value.BitXor, compiler.OpShl: value.Shl, compiler.OpShr: value.Shr,
}

// localsBinOps mirrors binOps for the peephole-fused OpXLocals forms.
var localsBinOps = map[compiler.Op]binOpFn{
	compiler.OpAddLocals: value.Add, compiler.OpSubLocals: value.Sub, compiler.OpMulLocals: value.Mul,
	compiler.OpDivLocals: value.Div, compiler.OpModLocals: value.Mod,
	compiler.OpBitAndLocals: value.BitAnd, compiler.OpBitOrLocals: value.BitOr,
	compiler.OpBitXorLocals: value.BitXor, compiler.OpShlLocals: value.Shl, compiler.OpShrLocals: value.Shr,
}

// runFrame is the dispatch loop: a flat switch over f.Code.Instrs,
// grounded on db47h-ngaro/vm/core.go's Instance.Run() shape (see
// doc.go). An error from any instruction is turned into a
// *value.ExceptionObj and first offered to f.Code's own exception
// table before propagating to the caller as an ordinary Go error.
func (vm *VM) runFrame(f *Frame) (value.Value, error) {
	instrs := f.Code.Instrs
	for f.PC < len(instrs) {
		in := instrs[f.PC]
		result, jump, err := vm.safeStep(f, in)
		if err != nil {
			exc := asException(err)
			if r, ok := findHandler(f.Code, f.PC, exc); ok {
				f.Regs[r.ExcReg] = value.ExceptionValue(exc)
				f.CurExc = exc
				if r.IsFinally {
					f.pendingExc = exc
				}
				f.PC = r.Handler
				continue
			}
			pushTraceback(exc, f, in.Line)
			return value.Value{}, exc
		}
		if result.done {
			return result.val, nil
		}
		if jump {
			continue
		}
		f.PC++
	}
	return value.None, nil
}

// stepResult carries OpReturn/OpReturnNone's payload back out of step
// without step itself needing to know about the outer loop's return
// path.
type stepResult struct {
	done bool
	val  value.Value
}

// safeStep wraps step in the same recover()-to-error boundary
// db47h-ngaro/vm/core.go's Run() uses around its own dispatch loop,
// so a VM-internal fault (bad register index, nil CodeRef) surfaces
// as a catchable RuntimeError through the normal findHandler path
// instead of crashing the process.
func (vm *VM) safeStep(f *Frame, in compiler.Instr) (result stepResult, jump bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newOpError(value.ErrRuntimeError, fmt.Sprintf("internal error at pc=%d: %v", f.PC, r))
		}
	}()
	return vm.step(f, in)
}

// step executes one instruction, returning (result, jumped, err).
// jumped is true when step already updated f.PC itself (a taken jump)
// and the loop must not also increment it.
func (vm *VM) step(f *Frame, in compiler.Instr) (stepResult, bool, error) {
	co := f.Code
	switch in.Op {
	case compiler.OpNop:
		// no-op

	case compiler.OpLoadConst:
		f.Regs[in.A] = co.Consts[in.B]
	case compiler.OpLoadLocal:
		v, err := vm.getLocalChecked(f, co, in.B)
		if err != nil {
			return stepResult{}, false, err
		}
		f.Regs[in.A] = v
	case compiler.OpStoreLocal:
		f.setLocal(in.B, f.Regs[in.A])
	case compiler.OpDelLocal:
		f.setLocal(in.B, value.Unbound)
	case compiler.OpLoadGlobal:
		name := co.Consts[in.B].AsStr()
		v, err := vm.lookupGlobal(f, name)
		if err != nil {
			return stepResult{}, false, err
		}
		f.Regs[in.A] = v
	case compiler.OpStoreGlobal:
		f.Globals.Globals.Set(co.Consts[in.B], f.Regs[in.A])
	case compiler.OpDelGlobal:
		name := co.Consts[in.B].AsStr()
		if !f.Globals.Globals.Delete(co.Consts[in.B]) {
			return stepResult{}, false, newOpError(value.ErrNameError, fmt.Sprintf("name %q is not defined", name))
		}
	case compiler.OpLoadFree:
		v := f.Freevars[in.B].V
		if v.Kind == value.KindUnbound {
			return stepResult{}, false, newOpError(value.ErrNameError, fmt.Sprintf("free variable %q referenced before assignment in enclosing scope", freeVarName(co, in.B)))
		}
		f.Regs[in.A] = v
	case compiler.OpStoreFree:
		f.Freevars[in.B].V = f.Regs[in.A]
	case compiler.OpDelFree:
		f.Freevars[in.B].V = value.Unbound
	case compiler.OpLoadNone:
		f.Regs[in.A] = value.None
	case compiler.OpLoadTrue:
		f.Regs[in.A] = value.Bool(true)
	case compiler.OpLoadFalse:
		f.Regs[in.A] = value.Bool(false)
	case compiler.OpMove, compiler.OpDup:
		f.Regs[in.A] = f.Regs[in.B]

	case compiler.OpNeg:
		v, err := value.Neg(f.Regs[in.B])
		if err != nil {
			return stepResult{}, false, err
		}
		f.Regs[in.A] = v
	case compiler.OpNot:
		f.Regs[in.A] = value.Bool(!f.Regs[in.B].Truthy())
	case compiler.OpInvert:
		v, err := value.Invert(f.Regs[in.B])
		if err != nil {
			return stepResult{}, false, err
		}
		f.Regs[in.A] = v

	case compiler.OpAddLocals, compiler.OpSubLocals, compiler.OpMulLocals, compiler.OpDivLocals,
		compiler.OpModLocals, compiler.OpBitAndLocals, compiler.OpBitOrLocals, compiler.OpBitXorLocals,
		compiler.OpShlLocals, compiler.OpShrLocals:
		lhs, err := vm.getLocalChecked(f, co, in.B)
		if err != nil {
			return stepResult{}, false, err
		}
		rhs, err := vm.getLocalChecked(f, co, in.C)
		if err != nil {
			return stepResult{}, false, err
		}
		v, err := localsBinOps[in.Op](lhs, rhs)
		if err != nil {
			return stepResult{}, false, err
		}
		f.Regs[in.A] = v
	case compiler.OpAdd, compiler.OpSub, compiler.OpMul, compiler.OpDiv, compiler.OpFloorDiv, compiler.OpMod,
		compiler.OpPow, compiler.OpBitAnd, compiler.OpBitOr, compiler.OpBitXor, compiler.OpShl, compiler.OpShr:
		v, err := binOps[in.Op](f.Regs[in.B], f.Regs[in.C])
		if err != nil {
			return stepResult{}, false, err
		}
		f.Regs[in.A] = v
	case compiler.OpCompareLocals:
		lhs, err := vm.getLocalChecked(f, co, in.B)
		if err != nil {
			return stepResult{}, false, err
		}
		rhs, err := vm.getLocalChecked(f, co, in.C)
		if err != nil {
			return stepResult{}, false, err
		}
		r, err := vm.compareExec(in.Cmp, lhs, rhs)
		if err != nil {
			return stepResult{}, false, err
		}
		f.Regs[in.A] = value.Bool(r)

	case compiler.OpCompare:
		r, err := vm.compareExec(in.Cmp, f.Regs[in.B], f.Regs[in.C])
		if err != nil {
			return stepResult{}, false, err
		}
		f.Regs[in.A] = value.Bool(r)
	case compiler.OpIs:
		f.Regs[in.A] = value.Bool(value.Is(f.Regs[in.B], f.Regs[in.C]))
	case compiler.OpIn:
		r, err := vm.containsExec(f.Regs[in.B], f.Regs[in.C])
		if err != nil {
			return stepResult{}, false, err
		}
		f.Regs[in.A] = value.Bool(r)

	case compiler.OpBuildList:
		f.Regs[in.A] = value.List(append([]value.Value(nil), f.Regs[in.B:in.B+in.C]...))
	case compiler.OpBuildTuple:
		f.Regs[in.A] = value.Tuple(append([]value.Value(nil), f.Regs[in.B:in.B+in.C]...))
	case compiler.OpBuildSet:
		f.Regs[in.A] = value.NewSet(f.Regs[in.B : in.B+in.C])
	case compiler.OpBuildDict:
		d := value.NewDict()
		for i := 0; i < in.C; i++ {
			d.AsDict().Set(f.Regs[in.B+2*i], f.Regs[in.B+2*i+1])
		}
		f.Regs[in.A] = d
	case compiler.OpBuildSlice:
		f.Regs[in.A] = newSliceValue(f.Regs[in.B], f.Regs[in.B+1], f.Regs[in.B+2])

	case compiler.OpGetItem:
		v, err := vm.getItem(f.Regs[in.B], f.Regs[in.C])
		if err != nil {
			return stepResult{}, false, err
		}
		f.Regs[in.A] = v
	case compiler.OpSetItem:
		if err := vm.setItem(f.Regs[in.A], f.Regs[in.B], f.Regs[in.C]); err != nil {
			return stepResult{}, false, err
		}
	case compiler.OpDelItem:
		if err := vm.delItem(f.Regs[in.A], f.Regs[in.B]); err != nil {
			return stepResult{}, false, err
		}

	case compiler.OpGetAttr:
		v, err := vm.getAttr(f.Regs[in.B], co.Consts[in.C].AsStr())
		if err != nil {
			return stepResult{}, false, err
		}
		f.Regs[in.A] = v
	case compiler.OpSetAttr:
		if err := vm.setAttr(f.Regs[in.B], co.Consts[in.C].AsStr(), f.Regs[in.A]); err != nil {
			return stepResult{}, false, err
		}
	case compiler.OpDelAttr:
		if err := vm.delAttr(f.Regs[in.A], co.Consts[in.C].AsStr()); err != nil {
			return stepResult{}, false, err
		}

	case compiler.OpCall:
		fn := f.Regs[in.A]
		// Comprehension append convention: a list or set in R[A] adds R[B].
		if fn.Kind == value.KindList {
			fn.AsList().Append(f.Regs[in.B])
			break
		}
		if fn.Kind == value.KindSet {
			fn.AsSet().Add(f.Regs[in.B])
			break
		}
		nPositional := in.B - 2*in.C
		args := append([]value.Value(nil), f.Regs[in.A+1:in.A+1+nPositional]...)
		kwargs := make(map[string]value.Value, in.C)
		base := in.A + 1 + nPositional
		for i := 0; i < in.C; i++ {
			kwargs[f.Regs[base+2*i].AsStr()] = f.Regs[base+2*i+1]
		}
		v, err := vm.CallFunction(fn, args, kwargs)
		if err != nil {
			return stepResult{}, false, err
		}
		f.Regs[in.A] = v
	case compiler.OpCallUnpack:
		fn := f.Regs[in.A]
		nPositional := in.B - 2*in.C
		args := f.Regs[in.A+1 : in.A+1+nPositional]
		base := in.A + 1 + nPositional
		kwNames := make([]value.Value, in.C)
		kwVals := make([]value.Value, in.C)
		for i := 0; i < in.C; i++ {
			kwNames[i] = f.Regs[base+2*i]
			kwVals[i] = f.Regs[base+2*i+1]
		}
		positional, kwargs, err := expandCallArgs(args, kwNames, kwVals, in.Target&1 != 0, in.Target&2 != 0)
		if err != nil {
			return stepResult{}, false, err
		}
		v, err := vm.CallFunction(fn, positional, kwargs)
		if err != nil {
			return stepResult{}, false, err
		}
		f.Regs[in.A] = v

	case compiler.OpLoadCellRef:
		f.recordCellRef(in.A, in.B, in.C != 0)
	case compiler.OpMakeFunction:
		child := co.Codes[in.B]
		freevars := make([]*value.Cell, in.C)
		for i := 0; i < in.C; i++ {
			freevars[i] = f.cellRefs[in.Target+i]
		}
		params := make([]value.Param, len(child.Params))
		for i, p := range child.Params {
			params[i] = value.Param{
				Name: p.Name, Variadic: p.Variadic, KwVariadic: p.KwVariadic, KeywordOnly: p.KeywordOnly,
				HasDefault: p.HasDefault,
			}
			if p.HasDefault {
				params[i].Default = child.Consts[p.DefaultConst]
			}
		}
		fnVal := value.Function(child.Name, params, child, f.Globals)
		fn := fnVal.AsFunction()
		fn.Freevars = freevars
		fn.IsGenerator = child.IsGenerator
		fn.IsAsync = child.IsAsync
		f.Regs[in.A] = fnVal
	case compiler.OpMakeClass:
		name := co.Consts[in.B].AsStr()
		bodyDict := f.Regs[in.C].AsDict()
		attrs := map[string]value.Value{}
		for _, kv := range bodyDict.Items() {
			attrs[kv[0].AsStr()] = kv[1]
		}
		var bases []*value.Class
		for _, b := range f.Regs[in.A+1 : in.C] {
			bases = append(bases, b.AsClass())
		}
		cls, err := value.NewClass(name, bases, attrs)
		if err != nil {
			return stepResult{}, false, newOpError(value.ErrInheritanceError, err.Error())
		}
		for _, v := range attrs {
			if v.Kind == value.KindFunction {
				v.AsFunction().DefiningClass = cls.AsClass()
			}
		}
		f.Regs[in.A] = cls

	case compiler.OpReturn:
		return stepResult{done: true, val: f.Regs[in.A]}, false, nil
	case compiler.OpReturnNone:
		return stepResult{done: true, val: value.None}, false, nil

	case compiler.OpGetIter:
		it, err := vm.getIter(f.Regs[in.B])
		if err != nil {
			return stepResult{}, false, err
		}
		f.Regs[in.A] = it
	case compiler.OpForIter:
		if ran, err := vm.tryJIT(f, in); ran || err != nil {
			if err != nil {
				return stepResult{}, false, err
			}
			return stepResult{}, true, nil
		}
		v, ok, err := vm.iterNext(f.Regs[in.B])
		if err != nil {
			return stepResult{}, false, err
		}
		if !ok {
			f.PC = in.Target
			return stepResult{}, true, nil
		}
		f.Regs[in.A] = v

	case compiler.OpJump:
		f.PC = in.Target
		return stepResult{}, true, nil
	case compiler.OpJumpIfFalse:
		if !f.Regs[in.A].Truthy() {
			f.PC = in.Target
			return stepResult{}, true, nil
		}
	case compiler.OpJumpIfTrue:
		if f.Regs[in.A].Truthy() {
			f.PC = in.Target
			return stepResult{}, true, nil
		}
	case compiler.OpJumpIfFalseOrPop:
		// the "OrPop" half of the stack-machine name this opcode was
		// modeled on is moot here: R[A] already holds the short-circuit
		// value compileBoolOp/compileCompare wrote there, so testing and
		// conditionally jumping is the whole job.
		if !f.Regs[in.A].Truthy() {
			f.PC = in.Target
			return stepResult{}, true, nil
		}
	case compiler.OpJumpIfTrueOrPop:
		if f.Regs[in.A].Truthy() {
			f.PC = in.Target
			return stepResult{}, true, nil
		}
	case compiler.OpPopTop:
		// register machine: nothing to pop; kept for disassembly parity
		// with the stack-machine opcode family it was modeled on.

	case compiler.OpRaise:
		var exc *value.ExceptionObj
		if in.A < 0 || f.Regs[in.A].Kind == value.KindNone {
			if f.CurExc == nil {
				return stepResult{}, false, newOpError(value.ErrRuntimeError, "No active exception to re-raise")
			}
			exc = f.CurExc
		} else {
			exc = toException(f.Regs[in.A])
		}
		return stepResult{}, false, exc
	case compiler.OpRaiseFrom:
		exc := toException(f.Regs[in.A])
		exc.Cause = toException(f.Regs[in.B])
		return stepResult{}, false, exc
	case compiler.OpPushExcInfo:
		if f.CurExc != nil {
			f.Regs[in.A] = value.ExceptionValue(f.CurExc)
		}
	case compiler.OpEndFinally:
		if f.pendingExc != nil {
			exc := f.pendingExc
			f.pendingExc = nil
			return stepResult{}, false, exc
		}

	case compiler.OpImport:
		v, err := vm.doImport(co.Consts[in.B].AsStr(), in.C, f.Globals)
		if err != nil {
			return stepResult{}, false, err
		}
		f.Regs[in.A] = v
	case compiler.OpImportFrom:
		name := co.Consts[in.C].AsStr()
		v, err := vm.getAttr(f.Regs[in.B], name)
		if err != nil {
			sub, subErr := vm.doImport(name, 0, f.Globals)
			if subErr != nil {
				return stepResult{}, false, err
			}
			v = sub
		}
		f.Regs[in.A] = v
	case compiler.OpImportStar:
		mod := f.Regs[in.A].AsModule()
		for _, kv := range mod.Exports.Items() {
			f.Globals.Globals.Set(kv[0], kv[1])
		}

	case compiler.OpYield:
		v, err := vm.doYield(f, f.Regs[in.A])
		if err != nil {
			return stepResult{}, false, err
		}
		f.Regs[in.A] = v
	case compiler.OpYieldFrom:
		v, err := vm.doYieldFrom(f, f.Regs[in.A])
		if err != nil {
			return stepResult{}, false, err
		}
		f.Regs[in.A] = v
	case compiler.OpAwait:
		v, err := vm.doAwait(f, f.Regs[in.A])
		if err != nil {
			return stepResult{}, false, err
		}
		f.Regs[in.A] = v

	case compiler.OpAssertFail:
		msg := "assertion failed"
		if in.A >= 0 && f.Regs[in.A].Kind == value.KindStr {
			msg = f.Regs[in.A].AsStr()
		}
		return stepResult{}, false, newOpError(value.ErrAssertionError, msg)
	case compiler.OpHalt:
		return stepResult{done: true, val: value.None}, false, nil

	default:
		return stepResult{}, false, newOpError(value.ErrRuntimeError, fmt.Sprintf("unimplemented opcode %s", in.Op))
	}
	return stepResult{}, false, nil
}

func (vm *VM) compareExec(kind compiler.CmpKind, a, b value.Value) (bool, error) {
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

func (vm *VM) containsExec(item, container value.Value) (bool, error) {
	switch container.Kind {
	case value.KindStr:
		if item.Kind != value.KindStr {
			return false, newOpError(value.ErrTypeError, "'in <str>' requires string as left operand")
		}
		return indexOfSubstr(container.AsStr(), item.AsStr()), nil
	case value.KindDict:
		_, ok := container.AsDict().Get(item)
		return ok, nil
	case value.KindSet, value.KindFrozenset:
		return container.AsSet().Contains(item), nil
	case value.KindList, value.KindTuple, value.KindRange:
		it, _ := value.Iter(container)
		for {
			v, ok := it.Next()
			if !ok {
				return false, nil
			}
			if value.Equal(v, item) {
				return true, nil
			}
		}
	}
	return false, newOpError(value.ErrTypeError, fmt.Sprintf("argument of type %q is not iterable", container.Kind))
}

func indexOfSubstr(s, sub string) bool {
	if sub == "" {
		return true
	}
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}

func toException(v value.Value) *value.ExceptionObj {
	if v.Kind == value.KindException {
		return v.AsException()
	}
	if v.Kind == value.KindInstance {
		inst := v.AsInstance()
		msg := ""
		if a, ok := inst.Attrs["args"]; ok {
			msg = value.ToDisplayString(a)
		}
		return value.NewException(inst.Class.Name, msg).AsException()
	}
	return value.NewException(value.ErrTypeError, "exceptions must derive from BaseException").AsException()
}

func newSliceValue(start, stop, step value.Value) value.Value {
	return value.NewSlice(start, stop, step)
}

// getLocalChecked reads local slot idx, raising UnboundLocalError if a
// `del` unbound it. Every read of a local register -- whether the
// plain OpLoadLocal path or a peephole-fused OpXLocals/OpCompareLocals
// instruction -- must go through this instead of f.getLocal directly,
// or a deleted local feeding a fused op would silently read the
// KindUnbound sentinel as if it were an ordinary value.
func (vm *VM) getLocalChecked(f *Frame, co *compiler.CodeObject, idx int) (value.Value, error) {
	v := f.getLocal(idx)
	if v.Kind == value.KindUnbound {
		name := "?"
		if idx >= 0 && idx < len(co.Locals) {
			name = co.Locals[idx]
		}
		return value.Value{}, newOpError(value.ErrUnboundLocalError, fmt.Sprintf("local variable %q referenced before assignment", name))
	}
	return v, nil
}

func freeVarName(co *compiler.CodeObject, idx int) string {
	if idx >= 0 && idx < len(co.Freevars) {
		return co.Freevars[idx]
	}
	return "?"
}

func (vm *VM) lookupGlobal(f *Frame, name string) (value.Value, error) {
	if v, ok := f.Globals.Globals.Get(value.Str(name)); ok {
		return v, nil
	}
	if v, ok := vm.Builtins.Globals.Get(value.Str(name)); ok {
		return v, nil
	}
	return value.Value{}, newOpError(value.ErrNameError, fmt.Sprintf("name %q is not defined", name))
}
