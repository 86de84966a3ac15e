package compiler

import (
	"fmt"
	"sort"

	"github.com/Yusee-Programmer/tauraro-sub008/internal/ast"
	"github.com/Yusee-Programmer/tauraro-sub008/internal/value"
)

// CompileError reports a problem discovered during lowering that the
// parser could not catch (undefined `nonlocal` target, `break`/
// `continue` outside a loop, and similar static-scoping mistakes).
type CompileError struct {
	Pos ast.Pos
	Msg string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos.String(), e.Msg)
}

// Compile lowers a parsed module into its top-level CodeObject. Nested
// function and class bodies are reachable from it through its Codes
// table, which OpMakeFunction's B operand indexes (a class body is
// compiled as a function whose call returns the namespace dict).
func Compile(filename string, mod *ast.Module) (co *CodeObject, err error) {
	defer func() {
		if r := recover(); r != nil {
			if ce, ok := r.(*CompileError); ok {
				err = ce
				return
			}
			panic(r)
		}
	}()
	root := BuildModuleScope(mod)
	fc := newFuncCompiler(filename, "<module>", root, nil)
	fc.compileBody(mod.Body)
	fc.emit(OpLoadNone, 0, 0, 0)
	fc.emit(OpReturn, 0, 0, 0)
	fc.finish()
	return fc.co, nil
}

type loopCtx struct {
	breakJumps    []int
	continueJumps []int
	continueTgt   int // filled in once known; -1 while pending
}

// funcCompiler lowers one function/module/class/lambda body into a
// CodeObject, given the Scope that symtab.go already resolved for it.
type funcCompiler struct {
	co       *CodeObject
	scope    *Scope
	localReg map[string]int // name -> register slot for this scope's own locals (incl. cellvars)
	freeIdx  map[string]int // name -> index into co.Freevars
	nextReg  int
	loops    []*loopCtx
	// excDepth tracks nested try regions so raise-from-finally retains
	// the right enclosing handler; populated while compiling Try.
}

func newFuncCompiler(filename, name string, scope *Scope, params []ast.Param) *funcCompiler {
	co := newCodeObject(name, filename)
	fc := &funcCompiler{
		co:       co,
		scope:    scope,
		localReg: map[string]int{},
		freeIdx:  map[string]int{},
	}

	for i, p := range params {
		co.Locals = append(co.Locals, p.Name)
		fc.localReg[p.Name] = i
	}
	co.NumArgs = len(params)

	others := make([]string, 0, len(scope.Locals))
	for name := range scope.Locals {
		if _, isParam := fc.localReg[name]; isParam {
			continue
		}
		others = append(others, name)
	}
	sort.Strings(others)
	for _, name := range others {
		fc.localReg[name] = len(co.Locals)
		co.Locals = append(co.Locals, name)
	}

	cellNames := make([]string, 0, len(scope.CellVars))
	for name := range scope.CellVars {
		cellNames = append(cellNames, name)
	}
	sort.Strings(cellNames)
	co.CellVars = cellNames

	freeNames := make([]string, 0, len(scope.FreeVars))
	for name := range scope.FreeVars {
		freeNames = append(freeNames, name)
	}
	sort.Strings(freeNames)
	co.Freevars = freeNames
	for i, name := range freeNames {
		fc.freeIdx[name] = i
	}

	fc.nextReg = len(co.Locals)
	return fc
}

func (fc *funcCompiler) finish() {
	fc.co.NumRegisters = fc.nextReg
	ApplyPeephole(fc.co)
}

func (fc *funcCompiler) alloc() int {
	r := fc.nextReg
	fc.nextReg++
	return r
}

func (fc *funcCompiler) emit(op Op, a, b, c int) int {
	fc.co.Instrs = append(fc.co.Instrs, Instr{Op: op, A: a, B: b, C: c})
	return len(fc.co.Instrs) - 1
}

func (fc *funcCompiler) emitAt(pos ast.Pos, op Op, a, b, c int) int {
	idx := fc.emit(op, a, b, c)
	fc.co.Instrs[idx].Line = pos.Line
	return idx
}

func (fc *funcCompiler) patchTarget(idx, target int) {
	fc.co.Instrs[idx].Target = target
}

func (fc *funcCompiler) here() int { return len(fc.co.Instrs) }

func (fc *funcCompiler) fail(pos ast.Pos, format string, args ...interface{}) {
	panic(&CompileError{Pos: pos, Msg: fmt.Sprintf(format, args...)})
}

// ---- name resolution ----

type nameClass int

const (
	nameLocal nameClass = iota
	nameGlobal
	nameFree
)

func (fc *funcCompiler) classify(name string) nameClass {
	if fc.scope.Kind == ScopeModule {
		return nameGlobal
	}
	if fc.scope.Globals[name] {
		return nameGlobal
	}
	if _, ok := fc.localReg[name]; ok {
		return nameLocal
	}
	if _, ok := fc.freeIdx[name]; ok {
		return nameFree
	}
	return nameGlobal
}

func (fc *funcCompiler) loadName(pos ast.Pos, name string) int {
	dst := fc.alloc()
	switch fc.classify(name) {
	case nameLocal:
		fc.emitAt(pos, OpLoadLocal, dst, fc.localReg[name], 0)
	case nameFree:
		fc.emitAt(pos, OpLoadFree, dst, fc.freeIdx[name], 0)
	default:
		k := fc.co.addConst(value.Str(name))
		fc.emitAt(pos, OpLoadGlobal, dst, k, 0)
	}
	return dst
}

func (fc *funcCompiler) storeName(pos ast.Pos, name string, src int) {
	switch fc.classify(name) {
	case nameLocal:
		fc.emitAt(pos, OpStoreLocal, src, fc.localReg[name], 0)
	case nameFree:
		fc.emitAt(pos, OpStoreFree, src, fc.freeIdx[name], 0)
	default:
		k := fc.co.addConst(value.Str(name))
		fc.emitAt(pos, OpStoreGlobal, src, k, 0)
	}
}

// ---- statements ----

func (fc *funcCompiler) compileBody(body []ast.Stmt) {
	for _, st := range body {
		fc.compileStmt(st)
	}
}

func (fc *funcCompiler) compileStmt(st ast.Stmt) {
	switch n := st.(type) {
	case *ast.ExprStmt:
		fc.compileExpr(n.X)
	case *ast.Assign:
		v := fc.compileExpr(n.Value)
		for _, t := range n.Targets {
			fc.compileAssignTarget(t, v)
		}
	case *ast.AugAssign:
		fc.compileAugAssign(n)
	case *ast.AnnAssign:
		if n.Value != nil {
			v := fc.compileExpr(n.Value)
			fc.compileAssignTarget(n.Target, v)
		}
	case *ast.Del:
		for _, t := range n.Targets {
			fc.compileDelTarget(t)
		}
	case *ast.Return:
		if n.Value == nil {
			fc.emitAt(n.Pos, OpReturnNone, 0, 0, 0)
		} else {
			v := fc.compileExpr(n.Value)
			fc.emitAt(n.Pos, OpReturn, v, 0, 0)
		}
	case *ast.Raise:
		fc.compileRaise(n)
	case *ast.Assert:
		fc.compileAssert(n)
	case *ast.Pass:
	case *ast.Break:
		fc.compileBreak(n.Pos)
	case *ast.Continue:
		fc.compileContinue(n.Pos)
	case *ast.Global, *ast.Nonlocal:
		// purely a symtab directive; no code to emit
	case *ast.Import:
		fc.compileImport(n)
	case *ast.ImportFrom:
		fc.compileImportFrom(n)
	case *ast.If:
		fc.compileIf(n)
	case *ast.While:
		fc.compileWhile(n)
	case *ast.For:
		fc.compileFor(n)
	case *ast.Try:
		fc.compileTry(n)
	case *ast.With:
		fc.compileWith(n)
	case *ast.Match:
		fc.compileMatch(n)
	case *ast.FunctionDef:
		fc.compileFunctionDef(n)
	case *ast.ClassDef:
		fc.compileClassDef(n)
	case *ast.ExternBlock:
		fc.compileExternBlock(n)
	case *ast.Yield:
		y := &ast.YieldExpr{Value: n.Value, From: n.From}
		y.Pos = n.Pos
		fc.compileYield(y)
	default:
		fc.fail(st.Position(), "compiler: unsupported statement %T", st)
	}
}

func (fc *funcCompiler) compileAssignTarget(t ast.Expr, src int) {
	switch tt := t.(type) {
	case *ast.NameExpr:
		fc.storeName(tt.Pos, tt.Id, src)
	case *ast.AttributeExpr:
		obj := fc.compileExpr(tt.Value)
		k := fc.co.addConst(value.Str(tt.Attr))
		fc.emitAt(tt.Pos, OpSetAttr, src, obj, k)
	case *ast.SubscriptExpr:
		obj := fc.compileExpr(tt.Value)
		idx := fc.compileExpr(tt.Index)
		fc.emitAt(tt.Pos, OpSetItem, obj, idx, src)
	case *ast.TupleExpr:
		fc.compileUnpackTarget(tt.Elts, src)
	case *ast.ListExpr:
		fc.compileUnpackTarget(tt.Elts, src)
	default:
		fc.fail(t.Position(), "compiler: invalid assignment target %T", t)
	}
}

// compileUnpackTarget destructures src (an iterable) across elts,
// supporting at most one starred element (spec.md §4.3 star-unpacking).
func (fc *funcCompiler) compileUnpackTarget(elts []ast.Expr, src int) {
	starIdx := -1
	for i, e := range elts {
		if _, ok := e.(*ast.StarredExpr); ok {
			starIdx = i
		}
	}
	if starIdx < 0 {
		for i, e := range elts {
			dst := fc.alloc()
			idxR := fc.loadConst(value.Int(int64(i)))
			fc.emitAt(e.Position(), OpGetItem, dst, src, idxR)
			fc.compileAssignTarget(e, dst)
		}
		return
	}
	for i := 0; i < starIdx; i++ {
		dst := fc.alloc()
		idxR := fc.loadConst(value.Int(int64(i)))
		fc.emitAt(elts[i].Position(), OpGetItem, dst, src, idxR)
		fc.compileAssignTarget(elts[i], dst)
	}
	tailLen := len(elts) - starIdx - 1
	base := fc.nextReg
	fc.loadConst(value.Int(int64(starIdx)))
	if tailLen == 0 {
		fc.loadConst(value.None)
	} else {
		fc.loadConst(value.Int(int64(-tailLen)))
	}
	fc.loadConst(value.None)
	sliceR := fc.alloc()
	fc.emit(OpBuildSlice, sliceR, base, 0)
	midDst := fc.alloc()
	fc.emit(OpGetItem, midDst, src, sliceR)
	fc.compileAssignTarget(elts[starIdx].(*ast.StarredExpr).Value, midDst)
	for i := 0; i < tailLen; i++ {
		dst := fc.alloc()
		idxR := fc.loadConst(value.Int(int64(starIdx + 1 + i - len(elts))))
		fc.emit(OpGetItem, dst, src, idxR)
		fc.compileAssignTarget(elts[starIdx+1+i], dst)
	}
}

func (fc *funcCompiler) compileDelTarget(t ast.Expr) {
	switch tt := t.(type) {
	case *ast.AttributeExpr:
		obj := fc.compileExpr(tt.Value)
		k := fc.co.addConst(value.Str(tt.Attr))
		fc.emitAt(tt.Pos, OpDelAttr, obj, 0, k)
	case *ast.SubscriptExpr:
		obj := fc.compileExpr(tt.Value)
		idx := fc.compileExpr(tt.Index)
		fc.emitAt(tt.Pos, OpDelItem, obj, idx, 0)
	case *ast.NameExpr:
		switch fc.classify(tt.Id) {
		case nameLocal:
			fc.emitAt(tt.Pos, OpDelLocal, 0, fc.localReg[tt.Id], 0)
		case nameFree:
			fc.emitAt(tt.Pos, OpDelFree, 0, fc.freeIdx[tt.Id], 0)
		default:
			k := fc.co.addConst(value.Str(tt.Id))
			fc.emitAt(tt.Pos, OpDelGlobal, 0, k, 0)
		}
	}
}

var augToBin = map[string]Op{
	"+": OpAdd, "-": OpSub, "*": OpMul, "/": OpDiv, "//": OpFloorDiv,
	"%": OpMod, "**": OpPow, "&": OpBitAnd, "|": OpBitOr, "^": OpBitXor,
	"<<": OpShl, ">>": OpShr,
}

func (fc *funcCompiler) compileAugAssign(n *ast.AugAssign) {
	cur := fc.compileExpr(n.Target)
	rhs := fc.compileExpr(n.Value)
	dst := fc.alloc()
	op, ok := augToBin[n.Op]
	if !ok {
		fc.fail(n.Pos, "compiler: unknown augmented operator %q", n.Op)
	}
	fc.emitAt(n.Pos, op, dst, cur, rhs)
	fc.compileAssignTarget(n.Target, dst)
}

func (fc *funcCompiler) compileRaise(n *ast.Raise) {
	if n.Exc == nil {
		fc.emitAt(n.Pos, OpRaise, -1, 0, 0)
		return
	}
	exc := fc.compileExpr(n.Exc)
	if n.Cause != nil {
		cause := fc.compileExpr(n.Cause)
		fc.emitAt(n.Pos, OpRaiseFrom, exc, cause, 0)
		return
	}
	fc.emitAt(n.Pos, OpRaise, exc, 0, 0)
}

func (fc *funcCompiler) compileAssert(n *ast.Assert) {
	test := fc.compileExpr(n.Test)
	skip := fc.emitAt(n.Pos, OpJumpIfTrue, test, 0, 0)
	if n.Msg != nil {
		msg := fc.compileExpr(n.Msg)
		fc.emit(OpAssertFail, msg, 0, 0)
	} else {
		fc.emit(OpAssertFail, -1, 0, 0)
	}
	fc.patchTarget(skip, fc.here())
}

func (fc *funcCompiler) compileImport(n *ast.Import) {
	for _, nm := range n.Names {
		k := fc.co.addConst(value.Str(joinDotted(nm.Path)))
		dst := fc.alloc()
		fc.emitAt(n.Pos, OpImport, dst, k, 0)
		name := nm.Alias
		if name == "" {
			name = nm.Path[0]
		}
		fc.storeName(n.Pos, name, dst)
	}
}

func (fc *funcCompiler) compileImportFrom(n *ast.ImportFrom) {
	modK := fc.co.addConst(value.Str(joinDotted(n.Module)))
	modDst := fc.alloc()
	fc.emitAt(n.Pos, OpImport, modDst, modK, n.Level)
	if n.Star {
		fc.emitAt(n.Pos, OpImportStar, modDst, 0, 0)
		return
	}
	for _, nm := range n.Names {
		attrK := fc.co.addConst(value.Str(nm.Path[0]))
		dst := fc.alloc()
		fc.emitAt(n.Pos, OpImportFrom, dst, modDst, attrK)
		name := nm.Alias
		if name == "" {
			name = nm.Path[0]
		}
		fc.storeName(n.Pos, name, dst)
	}
}

func joinDotted(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += "."
		}
		out += p
	}
	return out
}

func (fc *funcCompiler) compileIf(n *ast.If) {
	test := fc.compileExpr(n.Test)
	jf := fc.emitAt(n.Pos, OpJumpIfFalse, test, 0, 0)
	fc.compileBody(n.Body)
	if len(n.Orelse) == 0 {
		fc.patchTarget(jf, fc.here())
		return
	}
	jend := fc.emit(OpJump, 0, 0, 0)
	fc.patchTarget(jf, fc.here())
	fc.compileBody(n.Orelse)
	fc.patchTarget(jend, fc.here())
}

func (fc *funcCompiler) compileWhile(n *ast.While) {
	start := fc.here()
	test := fc.compileExpr(n.Test)
	jf := fc.emitAt(n.Pos, OpJumpIfFalse, test, 0, 0)

	lc := &loopCtx{continueTgt: start}
	fc.loops = append(fc.loops, lc)
	fc.compileBody(n.Body)
	fc.loops = fc.loops[:len(fc.loops)-1]

	for _, j := range lc.continueJumps {
		fc.patchTarget(j, start)
	}
	fc.emit(OpJump, 0, 0, 0)
	fc.patchTarget(fc.here()-1, start)
	fc.patchTarget(jf, fc.here())
	fc.compileBody(n.Orelse)
	for _, j := range lc.breakJumps {
		fc.patchTarget(j, fc.here())
	}
}

func (fc *funcCompiler) compileFor(n *ast.For) {
	iter := fc.compileExpr(n.Iter)
	iterReg := fc.alloc()
	fc.emitAt(n.Pos, OpGetIter, iterReg, iter, 0)

	loopStart := fc.here()
	itemReg := fc.alloc()
	forIter := fc.emitAt(n.Pos, OpForIter, itemReg, iterReg, 0)
	fc.compileAssignTarget(n.Target, itemReg)

	lc := &loopCtx{continueTgt: loopStart}
	fc.loops = append(fc.loops, lc)
	fc.compileBody(n.Body)
	fc.loops = fc.loops[:len(fc.loops)-1]

	for _, j := range lc.continueJumps {
		fc.patchTarget(j, loopStart)
	}
	back := fc.emit(OpJump, 0, 0, 0)
	fc.patchTarget(back, loopStart)
	fc.patchTarget(forIter, fc.here())
	fc.compileBody(n.Orelse)
	for _, j := range lc.breakJumps {
		fc.patchTarget(j, fc.here())
	}
}

func (fc *funcCompiler) compileBreak(pos ast.Pos) {
	if len(fc.loops) == 0 {
		fc.fail(pos, "'break' outside loop")
	}
	lc := fc.loops[len(fc.loops)-1]
	j := fc.emitAt(pos, OpJump, 0, 0, 0)
	lc.breakJumps = append(lc.breakJumps, j)
}

func (fc *funcCompiler) compileContinue(pos ast.Pos) {
	if len(fc.loops) == 0 {
		fc.fail(pos, "'continue' not properly in loop")
	}
	lc := fc.loops[len(fc.loops)-1]
	j := fc.emitAt(pos, OpJump, 0, 0, 0)
	lc.continueJumps = append(lc.continueJumps, j)
}

// compileTry emits the body, then records an exception-table entry
// covering it per handler, plus a catch-all finally region, matching
// spec.md §4.5's "exception table maps [start_pc,end_pc) to a handler".
func (fc *funcCompiler) compileTry(n *ast.Try) {
	start := fc.here()
	fc.compileBody(n.Body)
	normalEnd := fc.here()
	jend := fc.emit(OpJump, 0, 0, 0)

	var handlerEndJumps []int
	for _, h := range n.Handlers {
		handlerStart := fc.here()
		excReg := fc.alloc()
		fc.emit(OpPushExcInfo, excReg, 0, 0)
		if h.Name != "" {
			fc.storeName(h.Pos, h.Name, excReg)
		}
		var types []string
		if h.Type != nil {
			if nm, ok := h.Type.(*ast.NameExpr); ok {
				types = []string{nm.Id}
			}
		}
		fc.co.ExcTable = append(fc.co.ExcTable, ExcRange{
			Start: start, End: normalEnd, Handler: handlerStart,
			Types: types, ExcReg: excReg,
		})
		fc.compileBody(h.Body)
		handlerEndJumps = append(handlerEndJumps, fc.emit(OpJump, 0, 0, 0))
	}

	fc.patchTarget(jend, fc.here())
	fc.compileBody(n.Orelse)
	afterElse := fc.emit(OpJump, 0, 0, 0)
	for _, j := range handlerEndJumps {
		fc.patchTarget(j, fc.here())
	}
	fc.patchTarget(afterElse, fc.here())

	if len(n.Finally) > 0 {
		finallyStart := fc.here()
		fc.co.ExcTable = append(fc.co.ExcTable, ExcRange{
			Start: start, End: finallyStart, Handler: finallyStart,
			IsFinally: true,
		})
		fc.compileBody(n.Finally)
		fc.emit(OpEndFinally, 0, 0, 0)
	}
}

func (fc *funcCompiler) compileWith(n *ast.With) {
	// with ctx as target: body  ==  ctx_ = ctx; target = ctx_.__enter__()
	// try: body finally: ctx_.__exit__(None, None, None)
	type ctxInfo struct{ reg int }
	infos := make([]ctxInfo, 0, len(n.Items))
	for _, item := range n.Items {
		ctxReg := fc.compileExpr(item.Ctx)
		enterK := fc.co.addConst(value.Str("__enter__"))
		boundReg := fc.alloc()
		fc.emit(OpGetAttr, boundReg, ctxReg, enterK)
		resultReg := fc.alloc()
		fc.emit(OpCall, boundReg, 0, 0)
		fc.emit(OpMove, resultReg, boundReg, 0)
		if item.Target != nil {
			fc.compileAssignTarget(item.Target, resultReg)
		}
		infos = append(infos, ctxInfo{reg: ctxReg})
	}
	start := fc.here()
	fc.compileBody(n.Body)
	normalEnd := fc.here()

	// The normal path falls through into the __exit__ calls below; an
	// exception raised in the body reaches them through the finally range.
	finallyStart := fc.here()
	fc.co.ExcTable = append(fc.co.ExcTable, ExcRange{
		Start: start, End: normalEnd, Handler: finallyStart, IsFinally: true,
	})
	for i := len(infos) - 1; i >= 0; i-- {
		exitK := fc.co.addConst(value.Str("__exit__"))
		boundReg := fc.alloc()
		fc.emit(OpGetAttr, boundReg, infos[i].reg, exitK)
		for j := 0; j < 3; j++ {
			fc.emit(OpLoadNone, fc.alloc(), 0, 0)
		}
		fc.emit(OpCall, boundReg, 3, 0)
	}
	fc.emit(OpEndFinally, 0, 0, 0)
}

// compileMatch lowers `match`/`case` to a linear if/elif chain: each
// case's Pattern is either a bare capture name (always matches,
// binding the subject) or an arbitrary expression compared for
// equality against the subject. This covers spec.md §4.3's stated
// Python-subset scope, not PEP 634's full structural patterns.
func (fc *funcCompiler) compileMatch(n *ast.Match) {
	subject := fc.compileExpr(n.Subject)
	var endJumps []int
	for _, c := range n.Cases {
		var condReg int
		isWildcard := false
		if nm, ok := c.Pattern.(*ast.NameExpr); ok && nm.Id == "_" {
			isWildcard = true
		} else if nm, ok := c.Pattern.(*ast.NameExpr); ok {
			fc.storeName(c.Pos, nm.Id, subject)
			isWildcard = true
		} else {
			patReg := fc.compileExpr(c.Pattern)
			condReg = fc.alloc()
			fc.emit(OpCompare, condReg, subject, patReg)
			fc.co.Instrs[len(fc.co.Instrs)-1].Cmp = CmpEQ
		}
		var jf int
		if !isWildcard {
			if c.Guard != nil {
				guard := fc.compileExpr(c.Guard)
				both := fc.alloc()
				fc.emit(OpBitAnd, both, condReg, guard)
				jf = fc.emit(OpJumpIfFalse, both, 0, 0)
			} else {
				jf = fc.emit(OpJumpIfFalse, condReg, 0, 0)
			}
		} else if c.Guard != nil {
			guard := fc.compileExpr(c.Guard)
			jf = fc.emit(OpJumpIfFalse, guard, 0, 0)
		}
		fc.compileBody(c.Body)
		endJumps = append(endJumps, fc.emit(OpJump, 0, 0, 0))
		if !isWildcard || c.Guard != nil {
			fc.patchTarget(jf, fc.here())
		}
	}
	for _, j := range endJumps {
		fc.patchTarget(j, fc.here())
	}
}

func (fc *funcCompiler) compileExternBlock(n *ast.ExternBlock) {
	for _, d := range n.Decls {
		ef := ExternFunc{Library: n.Library, Name: d.Name}
		for _, p := range d.Params {
			ef.ParamTypes = append(ef.ParamTypes, annotationName(p.Annotation))
		}
		ef.ReturnType = annotationName(d.Returns)
		fc.co.Externs = append(fc.co.Externs, ef)
	}
}

func annotationName(e ast.Expr) string {
	if nm, ok := e.(*ast.NameExpr); ok {
		return nm.Id
	}
	return ""
}

// ---- function & class definitions ----

func (fc *funcCompiler) compileFunctionDef(n *ast.FunctionDef) {
	childScope := fc.scope.Children[n]
	childFC := newFuncCompiler(fc.co.Filename, n.Name, childScope, n.Params)
	childFC.co.IsGenerator = n.IsGenerator
	childFC.co.IsAsync = n.IsAsync
	childFC.compileDefaults(n.Pos, n.Params)
	childFC.compileBody(n.Body)
	childFC.emit(OpLoadNone, 0, 0, 0)
	childFC.emit(OpReturn, 0, 0, 0)
	childFC.finish()

	fnReg := fc.emitMakeFunction(n.Pos, childFC.co, childFC.co.Freevars, n.Decorators)
	fc.storeName(n.Pos, n.Name, fnReg)
}

// compileDefaults records each parameter's call-binding metadata onto
// fc.co.Params, constant-folding Default expressions (foldConst) into
// fc.co's own constant pool rather than evaluating them in the
// defining scope at MakeFunction time.
func (fc *funcCompiler) compileDefaults(pos ast.Pos, params []ast.Param) {
	for _, p := range params {
		pi := ParamInfo{
			Name:        p.Name,
			Variadic:    p.IsVariadic,
			KwVariadic:  p.IsKwVariadic,
			KeywordOnly: p.KeywordOnly,
			DefaultConst: -1,
		}
		if p.Default != nil {
			v, ok := foldConst(p.Default)
			if !ok {
				fc.fail(pos, "compiler: default value for parameter %q must be a constant expression", p.Name)
			}
			pi.HasDefault = true
			pi.DefaultConst = fc.co.addConst(v)
		}
		fc.co.Params = append(fc.co.Params, pi)
	}
}

// foldConst evaluates the restricted constant-expression subset
// allowed for parameter defaults: literals, None/True/False, and
// unary minus applied to a numeric literal.
func foldConst(e ast.Expr) (value.Value, bool) {
	switch n := e.(type) {
	case *ast.NumberExpr:
		if n.IsFloat {
			return value.Float(n.Float), true
		}
		return value.Int(n.Int), true
	case *ast.StringExpr:
		return value.Str(n.Value), true
	case *ast.ConstExpr:
		switch n.Kind {
		case ast.ConstTrue:
			return value.Bool(true), true
		case ast.ConstFalse:
			return value.Bool(false), true
		case ast.ConstNone:
			return value.None, true
		}
	case *ast.UnaryOpExpr:
		if n.Op == "-" {
			v, ok := foldConst(n.X)
			if !ok {
				return value.Value{}, false
			}
			switch v.Kind {
			case value.KindInt:
				return value.Int(-v.AsInt()), true
			case value.KindFloat:
				return value.Float(-v.AsFloat()), true
			}
		}
	}
	return value.Value{}, false
}

// emitMakeFunction emits the capture-window loads for childCo's free
// variables (each pulled from the defining scope as a *value.Cell
// reference via OpLoadCellRef, never a dereferenced value), followed
// by OpMakeFunction itself. Instr.Target on the OpMakeFunction
// instruction records the capture window's base register, since the
// window length (C) is already carried by the normal C operand.
func (fc *funcCompiler) emitMakeFunction(pos ast.Pos, childCo *CodeObject, freeNames []string, decorators []ast.Expr) int {
	base := fc.nextReg
	for _, name := range freeNames {
		r := fc.alloc()
		switch fc.classify(name) {
		case nameLocal:
			fc.emitAt(pos, OpLoadCellRef, r, fc.localReg[name], 0)
		case nameFree:
			fc.emitAt(pos, OpLoadCellRef, r, fc.freeIdx[name], 1)
		default:
			fc.fail(pos, "compiler: free variable %q not found in any enclosing scope", name)
		}
	}
	fnReg := fc.alloc()
	codeIdx := fc.co.addCodeConst(childCo)
	idx := fc.emitAt(pos, OpMakeFunction, fnReg, codeIdx, len(freeNames))
	fc.co.Instrs[idx].Target = base // base register of the capture window

	for i := len(decorators) - 1; i >= 0; i-- {
		dec := fc.compileExpr(decorators[i])
		fc.emitAt(pos, OpCall, dec, 0, 0)
	}
	return fnReg
}

func (fc *funcCompiler) compileClassDef(n *ast.ClassDef) {
	childScope := fc.scope.Children[n]
	bodyFC := newFuncCompiler(fc.co.Filename, n.Name, childScope, nil)
	bodyFC.compileBody(n.Body)
	// Build the namespace dict from every local this body assigned.
	keys := make([]int, 0, len(bodyFC.co.Locals))
	for _, name := range bodyFC.co.Locals {
		k := bodyFC.co.addConst(value.Str(name))
		kr := bodyFC.alloc()
		bodyFC.emit(OpLoadConst, kr, k, 0)
		vr := bodyFC.alloc()
		bodyFC.emit(OpLoadLocal, vr, bodyFC.localReg[name], 0)
		_ = vr // value register sits immediately after kr; OpBuildDict reads the (key,value) pairs by stride from keys[0]
		keys = append(keys, kr)
	}
	nsReg := -1
	if len(keys) > 0 {
		nsReg = keys[0]
		bodyFC.emit(OpBuildDict, nsReg, keys[0], len(keys))
	} else {
		nsReg = bodyFC.alloc()
		bodyFC.emit(OpBuildDict, nsReg, 0, 0)
	}
	bodyFC.emit(OpReturn, nsReg, 0, 0)
	bodyFC.finish()

	fnReg := fc.emitMakeFunction(n.Pos, bodyFC.co, bodyFC.co.Freevars, nil)
	fc.emit(OpCall, fnReg, 0, 0)

	baseRegs := make([]int, 0, len(n.Bases))
	for _, b := range n.Bases {
		baseRegs = append(baseRegs, fc.compileExpr(b))
	}
	nameK := fc.co.addConst(value.Str(n.Name))
	// OpMakeClass window: class at R[A], bases at R[A+1..C-1], dict at R[C].
	clsReg := fc.alloc()
	for _, b := range baseRegs {
		fc.emit(OpMove, fc.alloc(), b, 0)
	}
	dictReg := fc.alloc()
	fc.emit(OpMove, dictReg, fnReg, 0)
	fc.emitAt(n.Pos, OpMakeClass, clsReg, nameK, dictReg)

	result := clsReg
	for i := len(n.Decorators) - 1; i >= 0; i-- {
		dec := fc.compileExpr(n.Decorators[i])
		fc.emit(OpCall, dec, 0, 0)
		result = dec
	}
	fc.storeName(n.Pos, n.Name, result)
}

// ---- expressions ----

func (fc *funcCompiler) compileExpr(e ast.Expr) int {
	switch n := e.(type) {
	case *ast.NameExpr:
		return fc.loadName(n.Pos, n.Id)
	case *ast.NumberExpr:
		return fc.loadConst(numberValue(n))
	case *ast.StringExpr:
		if n.IsBytes {
			return fc.loadConst(value.Bytes([]byte(n.Value)))
		}
		return fc.loadConst(value.Str(n.Value))
	case *ast.ConstExpr:
		switch n.Kind {
		case ast.ConstTrue:
			r := fc.alloc()
			fc.emit(OpLoadTrue, r, 0, 0)
			return r
		case ast.ConstFalse:
			r := fc.alloc()
			fc.emit(OpLoadFalse, r, 0, 0)
			return r
		default:
			r := fc.alloc()
			fc.emit(OpLoadNone, r, 0, 0)
			return r
		}
	case *ast.FStringExpr:
		return fc.compileFString(n)
	case *ast.BinOpExpr:
		return fc.compileBinOp(n)
	case *ast.UnaryOpExpr:
		return fc.compileUnaryOp(n)
	case *ast.BoolOpExpr:
		return fc.compileBoolOp(n)
	case *ast.CompareExpr:
		return fc.compileCompare(n)
	case *ast.CallExpr:
		return fc.compileCall(n)
	case *ast.AttributeExpr:
		obj := fc.compileExpr(n.Value)
		k := fc.co.addConst(value.Str(n.Attr))
		dst := fc.alloc()
		fc.emitAt(n.Pos, OpGetAttr, dst, obj, k)
		return dst
	case *ast.SubscriptExpr:
		obj := fc.compileExpr(n.Value)
		idx := fc.compileExpr(n.Index)
		dst := fc.alloc()
		fc.emitAt(n.Pos, OpGetItem, dst, obj, idx)
		return dst
	case *ast.SliceExpr:
		return fc.compileSlice(n)
	case *ast.ListExpr:
		return fc.compileSeqLiteral(n.Pos, OpBuildList, n.Elts)
	case *ast.TupleExpr:
		return fc.compileSeqLiteral(n.Pos, OpBuildTuple, n.Elts)
	case *ast.SetExpr:
		return fc.compileSeqLiteral(n.Pos, OpBuildSet, n.Elts)
	case *ast.DictExpr:
		return fc.compileDictLiteral(n)
	case *ast.LambdaExpr:
		return fc.compileLambda(n)
	case *ast.IfExpr:
		return fc.compileTernary(n)
	case *ast.NamedExpr:
		v := fc.compileExpr(n.Value)
		fc.storeName(n.Target.Pos, n.Target.Id, v)
		return v
	case *ast.ListCompExpr:
		return fc.compileComprehension(n.Pos, OpBuildList, n.Elt, nil, nil, n.Generators)
	case *ast.SetCompExpr:
		return fc.compileComprehension(n.Pos, OpBuildSet, n.Elt, nil, nil, n.Generators)
	case *ast.DictCompExpr:
		return fc.compileComprehension(n.Pos, OpBuildDict, nil, n.Key, n.Value, n.Generators)
	case *ast.GeneratorExpr:
		// Eagerly materialized as a list: the whole generator expression
		// is evaluated where it appears instead of being suspended lazily.
		return fc.compileComprehension(n.Pos, OpBuildList, n.Elt, nil, nil, n.Generators)
	case *ast.StarredExpr:
		return fc.compileExpr(n.Value)
	case *ast.AwaitExpr:
		v := fc.compileExpr(n.Value)
		dst := fc.alloc()
		fc.emit(OpMove, dst, v, 0)
		fc.emitAt(n.Pos, OpAwait, dst, v, 0)
		return dst
	case *ast.YieldExpr:
		return fc.compileYield(n)
	default:
		fc.fail(e.Position(), "compiler: unsupported expression %T", e)
		return 0
	}
}

func (fc *funcCompiler) loadConst(v value.Value) int {
	dst := fc.alloc()
	k := fc.co.addConst(v)
	fc.emit(OpLoadConst, dst, k, 0)
	return dst
}

func numberValue(n *ast.NumberExpr) value.Value {
	if n.IsFloat {
		return value.Float(n.Float)
	}
	return value.Int(n.Int)
}

func (fc *funcCompiler) compileFString(n *ast.FStringExpr) int {
	parts := make([]int, 0, len(n.Literals)+len(n.Exprs))
	for i, lit := range n.Literals {
		parts = append(parts, fc.loadConst(value.Str(lit)))
		if i < len(n.Exprs) {
			v := fc.compileExpr(n.Exprs[i])
			parts = append(parts, v)
		}
	}
	if len(parts) == 0 {
		return fc.loadConst(value.Str(""))
	}
	acc := parts[0]
	for _, p := range parts[1:] {
		next := fc.alloc()
		fc.emitAt(n.Pos, OpAdd, next, acc, p)
		acc = next
	}
	return acc
}

var binOps = map[string]Op{
	"+": OpAdd, "-": OpSub, "*": OpMul, "/": OpDiv, "//": OpFloorDiv,
	"%": OpMod, "**": OpPow, "&": OpBitAnd, "|": OpBitOr, "^": OpBitXor,
	"<<": OpShl, ">>": OpShr,
}

func (fc *funcCompiler) compileBinOp(n *ast.BinOpExpr) int {
	l := fc.compileExpr(n.Left)
	r := fc.compileExpr(n.Right)
	op, ok := binOps[n.Op]
	if !ok {
		fc.fail(n.Pos, "compiler: unknown binary operator %q", n.Op)
	}
	dst := fc.alloc()
	fc.emitAt(n.Pos, op, dst, l, r)
	return dst
}

func (fc *funcCompiler) compileUnaryOp(n *ast.UnaryOpExpr) int {
	x := fc.compileExpr(n.X)
	dst := fc.alloc()
	switch n.Op {
	case "-":
		fc.emitAt(n.Pos, OpNeg, dst, x, 0)
	case "+":
		fc.emit(OpMove, dst, x, 0)
	case "~":
		fc.emitAt(n.Pos, OpInvert, dst, x, 0)
	case "not":
		fc.emitAt(n.Pos, OpNot, dst, x, 0)
	default:
		fc.fail(n.Pos, "compiler: unknown unary operator %q", n.Op)
	}
	return dst
}

// compileBoolOp short-circuits `and`/`or` chains with jumps rather
// than always evaluating every operand.
func (fc *funcCompiler) compileBoolOp(n *ast.BoolOpExpr) int {
	result := fc.alloc()
	var endJumps []int
	for i, v := range n.Values {
		r := fc.compileExpr(v)
		fc.emit(OpMove, result, r, 0)
		if i == len(n.Values)-1 {
			break
		}
		var j int
		if n.Op == "and" {
			j = fc.emit(OpJumpIfFalseOrPop, result, 0, 0)
		} else {
			j = fc.emit(OpJumpIfTrueOrPop, result, 0, 0)
		}
		endJumps = append(endJumps, j)
	}
	for _, j := range endJumps {
		fc.patchTarget(j, fc.here())
	}
	return result
}

var cmpKinds = map[string]CmpKind{
	"<": CmpLT, "<=": CmpLE, ">": CmpGT, ">=": CmpGE, "==": CmpEQ, "!=": CmpNE,
}

// compileCompare evaluates each operand exactly once and short-
// circuits false comparisons in a chain (spec.md §4.4 "comparison
// chaining evaluates each operand once").
func (fc *funcCompiler) compileCompare(n *ast.CompareExpr) int {
	left := fc.compileExpr(n.Left)
	result := fc.alloc()
	fc.emit(OpLoadTrue, result, 0, 0)
	var endJumps []int
	for i, op := range n.Ops {
		right := fc.compileExpr(n.Comparators[i])
		switch op {
		case "is":
			fc.emitAt(n.Pos, OpIs, result, left, right)
		case "is not":
			fc.emitAt(n.Pos, OpIs, result, left, right)
			fc.emitAt(n.Pos, OpNot, result, result, 0)
		case "in":
			fc.emitAt(n.Pos, OpIn, result, left, right)
		case "not in":
			fc.emitAt(n.Pos, OpIn, result, left, right)
			fc.emitAt(n.Pos, OpNot, result, result, 0)
		default:
			fc.emitAt(n.Pos, OpCompare, result, left, right)
			fc.co.Instrs[len(fc.co.Instrs)-1].Cmp = cmpKinds[op]
		}
		left = right
		if i < len(n.Ops)-1 {
			j := fc.emit(OpJumpIfFalseOrPop, result, 0, 0)
			endJumps = append(endJumps, j)
		}
	}
	for _, j := range endJumps {
		fc.patchTarget(j, fc.here())
	}
	return result
}

// compileCall lays out the call's argument window as [positional
// registers][keyword (name, value) register pairs], counting B as the
// total register span rather than the logical argument count (a
// keyword pair occupies two registers). Spread arguments (`*args`,
// `**kwargs`) are restricted to a single trailing occurrence each --
// the common shape (`f(a, b, *rest)`, `f(x=1, **extra)`) -- since the
// fixed A/B/C operand encoding has no room to carry an arbitrary
// bitmask of spread positions; that restriction is recorded on
// OpCallUnpack's Target as a 2-bit flag field rather than attempting
// full Python interleaved-spread generality.
func (fc *funcCompiler) compileCall(n *ast.CallExpr) int {
	fn := fc.compileExpr(n.Func)
	argBase := fc.nextReg
	for i, a := range n.Args {
		r := fc.compileExpr(a)
		if r != argBase+i {
			moved := fc.alloc()
			fc.emit(OpMove, moved, r, 0)
		}
	}
	nArgs := len(n.Args)

	hasStarArgs := false
	for i := range n.StarArgs {
		if i != len(n.Args)-1 {
			fc.fail(n.Pos, "compiler: only a single trailing *args expansion is supported in a call")
		}
		hasStarArgs = true
	}

	hasStarKwargs := false
	for i, kw := range n.Keywords {
		nameReg := fc.alloc()
		if kw.Name == "" {
			if i != len(n.Keywords)-1 {
				fc.fail(n.Pos, "compiler: only a single trailing **kwargs expansion is supported in a call")
			}
			hasStarKwargs = true
			fc.emit(OpLoadNone, nameReg, 0, 0)
		} else {
			nameK := fc.co.addConst(value.Str(kw.Name))
			fc.emit(OpLoadConst, nameReg, nameK, 0)
		}
		vr := fc.compileExpr(kw.Value)
		if vr != nameReg+1 {
			moved := fc.alloc()
			fc.emit(OpMove, moved, vr, 0)
		}
		nArgs += 2
	}

	dst := fc.alloc()
	op := OpCall
	if hasStarArgs || hasStarKwargs {
		op = OpCallUnpack
	}
	idx := fc.emitAt(n.Pos, op, fn, nArgs, len(n.Keywords))
	if op == OpCallUnpack {
		flags := 0
		if hasStarArgs {
			flags |= 1
		}
		if hasStarKwargs {
			flags |= 2
		}
		fc.co.Instrs[idx].Target = flags
	}
	fc.emit(OpMove, dst, fn, 0)
	return dst
}

// compileSlice emits the three slice bound operands into contiguous
// registers (OpBuildSlice's R[B], R[B+1], R[B+2]), moving a
// non-contiguous result from compileExpr into place exactly like
// compileCall does for its own argument window.
func (fc *funcCompiler) compileSlice(n *ast.SliceExpr) int {
	base := fc.nextReg
	for i := 0; i < 3; i++ {
		fc.alloc()
	}
	for i, part := range []ast.Expr{n.Lower, n.Upper, n.Step} {
		var r int
		if part != nil {
			r = fc.compileExpr(part)
		} else {
			r = fc.loadConst(value.None)
		}
		if r != base+i {
			fc.emit(OpMove, base+i, r, 0)
		}
	}
	dst := fc.alloc()
	fc.emitAt(n.Pos, OpBuildSlice, dst, base, 0)
	return dst
}

func (fc *funcCompiler) compileSeqLiteral(pos ast.Pos, op Op, elts []ast.Expr) int {
	base := fc.nextReg
	for i, e := range elts {
		r := fc.compileExpr(e)
		if r != base+i {
			moved := fc.alloc()
			fc.emit(OpMove, moved, r, 0)
		}
	}
	dst := fc.alloc()
	fc.emitAt(pos, op, dst, base, len(elts))
	return dst
}

// compileDictLiteral builds the dict from its plain key/value pairs,
// then folds in any `**expr` expansions (spec.md §4.3) with a plain
// `.update(...)` call -- the same attribute-dispatch path `with`
// statements use for `__enter__`/`__exit__`, rather than a dedicated
// merge opcode.
func (fc *funcCompiler) compileDictLiteral(n *ast.DictExpr) int {
	base := fc.nextReg
	count := 0
	expansions := make([]ast.Expr, 0)
	for i, k := range n.Keys {
		if k == nil {
			expansions = append(expansions, n.Values[i])
			continue
		}
		fc.compileExpr(k)
		fc.compileExpr(n.Values[i])
		count++
	}
	dst := fc.alloc()
	if count > 0 {
		fc.emitAt(n.Pos, OpBuildDict, dst, base, count)
	} else {
		fc.emitAt(n.Pos, OpBuildDict, dst, 0, 0)
	}
	for _, expr := range expansions {
		updateK := fc.co.addConst(value.Str("update"))
		bound := fc.alloc()
		fc.emit(OpGetAttr, bound, dst, updateK)
		other := fc.compileExpr(expr)
		if other != bound+1 {
			moved := fc.alloc()
			fc.emit(OpMove, moved, other, 0)
		}
		fc.emit(OpCall, bound, 1, 0)
	}
	return dst
}

func (fc *funcCompiler) compileLambda(n *ast.LambdaExpr) int {
	childScope := buildLambdaScope(fc.scope, n)
	childFC := newFuncCompiler(fc.co.Filename, "<lambda>", childScope, n.Params)
	childFC.compileDefaults(n.Pos, n.Params)
	v := childFC.compileExpr(n.Body)
	childFC.emit(OpReturn, v, 0, 0)
	childFC.finish()
	return fc.emitMakeFunction(n.Pos, childFC.co, childFC.co.Freevars, nil)
}

func (fc *funcCompiler) compileTernary(n *ast.IfExpr) int {
	test := fc.compileExpr(n.Test)
	result := fc.alloc()
	jf := fc.emitAt(n.Pos, OpJumpIfFalse, test, 0, 0)
	body := fc.compileExpr(n.Body)
	fc.emit(OpMove, result, body, 0)
	jend := fc.emit(OpJump, 0, 0, 0)
	fc.patchTarget(jf, fc.here())
	orelse := fc.compileExpr(n.Orelse)
	fc.emit(OpMove, result, orelse, 0)
	fc.patchTarget(jend, fc.here())
	return result
}

// compileComprehension lowers list/set/dict comprehensions (and the
// eagerly-materialized generator-expression fallback) into an inline
// nested-loop that appends/inserts into a freshly built container.
func (fc *funcCompiler) compileComprehension(pos ast.Pos, kind Op, elt, key, val ast.Expr, gens []ast.Comprehension) int {
	var result int
	switch kind {
	case OpBuildList:
		result = fc.alloc()
		fc.emit(OpBuildList, result, 0, 0)
	case OpBuildSet:
		result = fc.alloc()
		fc.emit(OpBuildSet, result, 0, 0)
	case OpBuildDict:
		result = fc.alloc()
		fc.emit(OpBuildDict, result, 0, 0)
	}
	var emitInner func(i int)
	emitInner = func(i int) {
		if i == len(gens) {
			switch kind {
			case OpBuildList, OpBuildSet:
				v := fc.compileExpr(elt)
				fc.emit(OpCall, result, v, 1) // append convention: Call on a container acts as append
			case OpBuildDict:
				k := fc.compileExpr(key)
				v := fc.compileExpr(val)
				fc.emit(OpSetItem, result, k, v)
			}
			return
		}
		g := gens[i]
		iter := fc.compileExpr(g.Iter)
		iterReg := fc.alloc()
		fc.emitAt(pos, OpGetIter, iterReg, iter, 0)
		loopStart := fc.here()
		itemReg := fc.alloc()
		forIter := fc.emitAt(pos, OpForIter, itemReg, iterReg, 0)
		fc.compileAssignTarget(g.Target, itemReg)
		skipJumps := make([]int, 0, len(g.Ifs))
		for _, cond := range g.Ifs {
			c := fc.compileExpr(cond)
			skipJumps = append(skipJumps, fc.emitAt(pos, OpJumpIfFalse, c, 0, 0))
		}
		emitInner(i + 1)
		for _, j := range skipJumps {
			fc.patchTarget(j, fc.here())
		}
		back := fc.emit(OpJump, 0, 0, 0)
		fc.patchTarget(back, loopStart)
		fc.patchTarget(forIter, fc.here())
	}
	emitInner(0)
	return result
}

func (fc *funcCompiler) compileYield(n *ast.YieldExpr) int {
	dst := fc.alloc()
	if n.From != nil {
		v := fc.compileExpr(n.From)
		fc.emit(OpMove, dst, v, 0)
		fc.emitAt(n.Pos, OpYieldFrom, dst, v, 0)
		return dst
	}
	if n.Value == nil {
		fc.emit(OpLoadNone, dst, 0, 0)
		fc.emitAt(n.Pos, OpYield, dst, dst, 0)
		return dst
	}
	v := fc.compileExpr(n.Value)
	fc.emit(OpMove, dst, v, 0)
	fc.emitAt(n.Pos, OpYield, dst, v, 0)
	return dst
}
