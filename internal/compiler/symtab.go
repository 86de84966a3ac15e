package compiler

import "github.com/Yusee-Programmer/tauraro-sub008/internal/ast"

// ScopeKind distinguishes the three binding contexts spec.md §4.4's
// "Scoping" section names: module (globals), function (locals/cells/
// frees), and class (its body executes once, as a one-shot namespace,
// and does not participate in closure lookup for nested functions).
type ScopeKind int

const (
	ScopeModule ScopeKind = iota
	ScopeFunction
	ScopeClass
)

// Scope is one node of the static scope tree built by BuildModuleScope,
// consumed by compiler.go to decide whether a name reference becomes
// OpLoadLocal, OpLoadFree, or OpLoadGlobal.
type Scope struct {
	Kind     ScopeKind
	Parent   *Scope
	Children map[ast.Node]*Scope

	Params    []string
	Locals    map[string]bool // assigned somewhere in this scope's own body
	Globals   map[string]bool // named in a `global` statement
	Nonlocals map[string]bool // named in a `nonlocal` statement
	CellVars  map[string]bool // local names captured by a nested function
	FreeVars  map[string]bool // names this scope itself captures from an enclosing function
}

func newScope(kind ScopeKind, parent *Scope) *Scope {
	return &Scope{
		Kind:      kind,
		Parent:    parent,
		Children:  map[ast.Node]*Scope{},
		Locals:    map[string]bool{},
		Globals:   map[string]bool{},
		Nonlocals: map[string]bool{},
		CellVars:  map[string]bool{},
		FreeVars:  map[string]bool{},
	}
}

// IsLocal reports whether name is a plain local register slot of this
// scope (bound here, not promoted to a cell, not declared global).
func (s *Scope) IsLocal(name string) bool {
	return s.Locals[name] && !s.Globals[name] && !s.Nonlocals[name] && !s.CellVars[name]
}

// BuildModuleScope constructs the full scope tree for a parsed module.
func BuildModuleScope(mod *ast.Module) *Scope {
	root := newScope(ScopeModule, nil)
	collectBindings(root, mod.Body)
	buildChildScopes(root, mod.Body)
	resolveFreeVars(root, mod.Body)
	return root
}

// collectBindings finds every name this scope binds directly: it does
// not descend into nested function/class bodies (those get their own
// scope), but does descend into ordinary control-flow bodies and
// comprehensions. Tauraro comprehensions share their enclosing
// function's scope rather than getting Python 3's own implicit
// function scope (documented simplification, DESIGN.md).
func collectBindings(s *Scope, body []ast.Stmt) {
	for _, st := range body {
		collectStmtBindings(s, st)
	}
}

func bindTarget(s *Scope, e ast.Expr) {
	switch t := e.(type) {
	case *ast.NameExpr:
		s.Locals[t.Id] = true
	case *ast.TupleExpr:
		for _, el := range t.Elts {
			bindTarget(s, el)
		}
	case *ast.ListExpr:
		for _, el := range t.Elts {
			bindTarget(s, el)
		}
	case *ast.StarredExpr:
		bindTarget(s, t.Value)
	// Attribute/Subscript targets bind nothing new; they mutate an
	// existing object rather than introducing a local.
	case *ast.AttributeExpr, *ast.SubscriptExpr:
	}
}

func collectStmtBindings(s *Scope, st ast.Stmt) {
	switch n := st.(type) {
	case *ast.Assign:
		for _, t := range n.Targets {
			bindTarget(s, t)
		}
		collectExprBindings(s, n.Value)
	case *ast.AugAssign:
		bindTarget(s, n.Target)
		collectExprBindings(s, n.Value)
	case *ast.AnnAssign:
		bindTarget(s, n.Target)
		if n.Value != nil {
			collectExprBindings(s, n.Value)
		}
	case *ast.For:
		bindTarget(s, n.Target)
		collectExprBindings(s, n.Iter)
		collectBindings(s, n.Body)
		collectBindings(s, n.Orelse)
	case *ast.While:
		collectExprBindings(s, n.Test)
		collectBindings(s, n.Body)
		collectBindings(s, n.Orelse)
	case *ast.If:
		collectExprBindings(s, n.Test)
		collectBindings(s, n.Body)
		collectBindings(s, n.Orelse)
	case *ast.With:
		for _, item := range n.Items {
			collectExprBindings(s, item.Ctx)
			if item.Target != nil {
				bindTarget(s, item.Target)
			}
		}
		collectBindings(s, n.Body)
	case *ast.Try:
		collectBindings(s, n.Body)
		for _, h := range n.Handlers {
			if h.Name != "" {
				s.Locals[h.Name] = true
			}
			collectBindings(s, h.Body)
		}
		collectBindings(s, n.Orelse)
		collectBindings(s, n.Finally)
	case *ast.Match:
		collectExprBindings(s, n.Subject)
		for _, c := range n.Cases {
			bindTarget(s, c.Pattern)
			collectBindings(s, c.Body)
		}
	case *ast.Global:
		for _, name := range n.Names {
			s.Globals[name] = true
		}
	case *ast.Nonlocal:
		for _, name := range n.Names {
			s.Nonlocals[name] = true
		}
	case *ast.Import:
		for _, nm := range n.Names {
			if nm.Alias != "" {
				s.Locals[nm.Alias] = true
			} else {
				s.Locals[nm.Path[0]] = true
			}
		}
	case *ast.ImportFrom:
		for _, nm := range n.Names {
			if nm.Alias != "" {
				s.Locals[nm.Alias] = true
			} else {
				s.Locals[nm.Path[0]] = true
			}
		}
	case *ast.FunctionDef:
		s.Locals[n.Name] = true
	case *ast.ClassDef:
		s.Locals[n.Name] = true
	case *ast.ExprStmt:
		collectExprBindings(s, n.X)
	case *ast.Return:
		if n.Value != nil {
			collectExprBindings(s, n.Value)
		}
	}
}

// collectExprBindings only needs to descend for walrus assignments and
// comprehensions (whose targets bind into this scope under the
// simplification above).
func collectExprBindings(s *Scope, e ast.Expr) {
	switch n := e.(type) {
	case nil:
	case *ast.NamedExpr:
		s.Locals[n.Target.Id] = true
		collectExprBindings(s, n.Value)
	case *ast.ListCompExpr:
		for _, g := range n.Generators {
			bindTarget(s, g.Target)
		}
	case *ast.SetCompExpr:
		for _, g := range n.Generators {
			bindTarget(s, g.Target)
		}
	case *ast.DictCompExpr:
		for _, g := range n.Generators {
			bindTarget(s, g.Target)
		}
	case *ast.GeneratorExpr:
		for _, g := range n.Generators {
			bindTarget(s, g.Target)
		}
	case *ast.BinOpExpr:
		collectExprBindings(s, n.Left)
		collectExprBindings(s, n.Right)
	case *ast.BoolOpExpr:
		for _, v := range n.Values {
			collectExprBindings(s, v)
		}
	case *ast.CallExpr:
		collectExprBindings(s, n.Func)
		for _, a := range n.Args {
			collectExprBindings(s, a)
		}
	case *ast.IfExpr:
		collectExprBindings(s, n.Test)
		collectExprBindings(s, n.Body)
		collectExprBindings(s, n.Orelse)
	case *ast.TupleExpr:
		for _, el := range n.Elts {
			collectExprBindings(s, el)
		}
	case *ast.ListExpr:
		for _, el := range n.Elts {
			collectExprBindings(s, el)
		}
	}
}

// buildChildScopes recurses into nested def/class/lambda bodies,
// creating and populating a child Scope for each.
func buildChildScopes(parent *Scope, body []ast.Stmt) {
	for _, st := range body {
		walkForChildScopes(parent, st)
	}
}

func walkForChildScopes(parent *Scope, st ast.Stmt) {
	switch n := st.(type) {
	case *ast.FunctionDef:
		child := newScope(ScopeFunction, parent)
		for _, p := range n.Params {
			child.Params = append(child.Params, p.Name)
			child.Locals[p.Name] = true
		}
		collectBindings(child, n.Body)
		buildChildScopes(child, n.Body)
		resolveFreeVars(child, n.Body)
		parent.Children[n] = child
	case *ast.ClassDef:
		child := newScope(ScopeClass, parent)
		collectBindings(child, n.Body)
		buildChildScopes(child, n.Body)
		resolveFreeVars(child, n.Body)
		parent.Children[n] = child
	case *ast.If:
		buildChildScopes(parent, n.Body)
		buildChildScopes(parent, n.Orelse)
	case *ast.While:
		buildChildScopes(parent, n.Body)
		buildChildScopes(parent, n.Orelse)
	case *ast.For:
		buildChildScopes(parent, n.Body)
		buildChildScopes(parent, n.Orelse)
	case *ast.With:
		buildChildScopes(parent, n.Body)
	case *ast.Try:
		buildChildScopes(parent, n.Body)
		for _, h := range n.Handlers {
			buildChildScopes(parent, h.Body)
		}
		buildChildScopes(parent, n.Orelse)
		buildChildScopes(parent, n.Finally)
	case *ast.Match:
		for _, c := range n.Cases {
			buildChildScopes(parent, c.Body)
		}
	}
}

// resolveFreeVars walks every name *load* in s's own body (nested
// scopes get their own call from buildChildScopes) and marks each
// cross-scope reference as a FreeVar on the referencing scope and on
// every scope between it and the defining function scope, so the cell
// can be passed down through them, and as a CellVar on the defining
// function scope. Class scopes are invisible
// to closures: a nested function inside a method does not close over
// the class body's own locals (Python semantics).
func resolveFreeVars(s *Scope, body []ast.Stmt) {
	for _, st := range body {
		walkNamesStmt(s, st, resolveLoad)
	}
}

func resolveLoad(s *Scope, name string) {
	if s.Locals[name] && !s.Globals[name] && !s.Nonlocals[name] {
		return // bound locally in this very scope
	}
	if s.Globals[name] {
		return // explicit global, resolved at runtime against module globals
	}
	// Search enclosing FUNCTION scopes only (skip class scopes, and
	// skip the module scope unless nothing closer matched, in which
	// case it's a plain global lookup).
	for anc := s.Parent; anc != nil; anc = anc.Parent {
		if anc.Kind == ScopeClass {
			continue
		}
		if anc.Kind == ScopeModule {
			break // falls through to OpLoadGlobal; no FreeVar needed
		}
		if anc.Locals[name] && !anc.Globals[name] {
			anc.CellVars[name] = true
			s.FreeVars[name] = true
			for mid := s.Parent; mid != anc; mid = mid.Parent {
				mid.FreeVars[name] = true
			}
			return
		}
	}
}

// walkNamesStmt/walkNamesExpr perform a pure read-only traversal over
// every Name reference in scope s's own body (not descending into
// nested def/class, which resolveFreeVars already handled separately
// via buildChildScopes's own resolveFreeVars call on the child).
func walkNamesStmt(s *Scope, st ast.Stmt, visit func(*Scope, string)) {
	switch n := st.(type) {
	case *ast.ExprStmt:
		walkNamesExpr(s, n.X, visit)
	case *ast.Assign:
		walkNamesExpr(s, n.Value, visit)
		for _, t := range n.Targets {
			walkTargetLoads(s, t, visit)
		}
	case *ast.AugAssign:
		walkNamesExpr(s, n.Target, visit)
		walkNamesExpr(s, n.Value, visit)
	case *ast.AnnAssign:
		if n.Value != nil {
			walkNamesExpr(s, n.Value, visit)
		}
	case *ast.Return:
		walkNamesExpr(s, n.Value, visit)
	case *ast.Raise:
		walkNamesExpr(s, n.Exc, visit)
		walkNamesExpr(s, n.Cause, visit)
	case *ast.Assert:
		walkNamesExpr(s, n.Test, visit)
		walkNamesExpr(s, n.Msg, visit)
	case *ast.Del:
		for _, t := range n.Targets {
			walkTargetLoads(s, t, visit)
		}
	case *ast.If:
		walkNamesExpr(s, n.Test, visit)
		for _, b := range n.Body {
			walkNamesStmt(s, b, visit)
		}
		for _, b := range n.Orelse {
			walkNamesStmt(s, b, visit)
		}
	case *ast.While:
		walkNamesExpr(s, n.Test, visit)
		for _, b := range n.Body {
			walkNamesStmt(s, b, visit)
		}
		for _, b := range n.Orelse {
			walkNamesStmt(s, b, visit)
		}
	case *ast.For:
		walkNamesExpr(s, n.Iter, visit)
		walkTargetLoads(s, n.Target, visit)
		for _, b := range n.Body {
			walkNamesStmt(s, b, visit)
		}
		for _, b := range n.Orelse {
			walkNamesStmt(s, b, visit)
		}
	case *ast.With:
		for _, item := range n.Items {
			walkNamesExpr(s, item.Ctx, visit)
		}
		for _, b := range n.Body {
			walkNamesStmt(s, b, visit)
		}
	case *ast.Try:
		for _, b := range n.Body {
			walkNamesStmt(s, b, visit)
		}
		for _, h := range n.Handlers {
			walkNamesExpr(s, h.Type, visit)
			for _, b := range h.Body {
				walkNamesStmt(s, b, visit)
			}
		}
		for _, b := range n.Orelse {
			walkNamesStmt(s, b, visit)
		}
		for _, b := range n.Finally {
			walkNamesStmt(s, b, visit)
		}
	case *ast.Match:
		walkNamesExpr(s, n.Subject, visit)
		for _, c := range n.Cases {
			walkNamesExpr(s, c.Guard, visit)
			for _, b := range c.Body {
				walkNamesStmt(s, b, visit)
			}
		}
	case *ast.FunctionDef:
		for _, p := range n.Params {
			walkNamesExpr(s, p.Default, visit)
		}
		// decorators reference names in *this* scope
		for _, d := range n.Decorators {
			walkNamesExpr(s, d, visit)
		}
	case *ast.ClassDef:
		for _, b := range n.Bases {
			walkNamesExpr(s, b, visit)
		}
		for _, d := range n.Decorators {
			walkNamesExpr(s, d, visit)
		}
	}
}

func walkTargetLoads(s *Scope, e ast.Expr, visit func(*Scope, string)) {
	switch t := e.(type) {
	case *ast.NameExpr:
		visit(s, t.Id)
	case *ast.TupleExpr:
		for _, el := range t.Elts {
			walkTargetLoads(s, el, visit)
		}
	case *ast.ListExpr:
		for _, el := range t.Elts {
			walkTargetLoads(s, el, visit)
		}
	case *ast.StarredExpr:
		walkTargetLoads(s, t.Value, visit)
	case *ast.AttributeExpr:
		walkNamesExpr(s, t.Value, visit)
	case *ast.SubscriptExpr:
		walkNamesExpr(s, t.Value, visit)
		walkNamesExpr(s, t.Index, visit)
	}
}

func walkNamesExpr(s *Scope, e ast.Expr, visit func(*Scope, string)) {
	switch n := e.(type) {
	case nil:
	case *ast.NameExpr:
		visit(s, n.Id)
	case *ast.NamedExpr:
		walkNamesExpr(s, n.Value, visit)
		visit(s, n.Target.Id)
	case *ast.BinOpExpr:
		walkNamesExpr(s, n.Left, visit)
		walkNamesExpr(s, n.Right, visit)
	case *ast.UnaryOpExpr:
		walkNamesExpr(s, n.X, visit)
	case *ast.BoolOpExpr:
		for _, v := range n.Values {
			walkNamesExpr(s, v, visit)
		}
	case *ast.CompareExpr:
		walkNamesExpr(s, n.Left, visit)
		for _, c := range n.Comparators {
			walkNamesExpr(s, c, visit)
		}
	case *ast.CallExpr:
		walkNamesExpr(s, n.Func, visit)
		for _, a := range n.Args {
			walkNamesExpr(s, a, visit)
		}
		for _, kw := range n.Keywords {
			walkNamesExpr(s, kw.Value, visit)
		}
	case *ast.AttributeExpr:
		walkNamesExpr(s, n.Value, visit)
	case *ast.SubscriptExpr:
		walkNamesExpr(s, n.Value, visit)
		walkNamesExpr(s, n.Index, visit)
	case *ast.SliceExpr:
		walkNamesExpr(s, n.Lower, visit)
		walkNamesExpr(s, n.Upper, visit)
		walkNamesExpr(s, n.Step, visit)
	case *ast.ListExpr:
		for _, el := range n.Elts {
			walkNamesExpr(s, el, visit)
		}
	case *ast.TupleExpr:
		for _, el := range n.Elts {
			walkNamesExpr(s, el, visit)
		}
	case *ast.SetExpr:
		for _, el := range n.Elts {
			walkNamesExpr(s, el, visit)
		}
	case *ast.DictExpr:
		for _, k := range n.Keys {
			walkNamesExpr(s, k, visit)
		}
		for _, v := range n.Values {
			walkNamesExpr(s, v, visit)
		}
	case *ast.StarredExpr:
		walkNamesExpr(s, n.Value, visit)
	case *ast.DoubleStarredExpr:
		walkNamesExpr(s, n.Value, visit)
	case *ast.IfExpr:
		walkNamesExpr(s, n.Test, visit)
		walkNamesExpr(s, n.Body, visit)
		walkNamesExpr(s, n.Orelse, visit)
	case *ast.ListCompExpr:
		walkComprehension(s, n.Elt, n.Generators, visit)
	case *ast.SetCompExpr:
		walkComprehension(s, n.Elt, n.Generators, visit)
	case *ast.GeneratorExpr:
		walkComprehension(s, n.Elt, n.Generators, visit)
	case *ast.DictCompExpr:
		for _, g := range n.Generators {
			walkNamesExpr(s, g.Iter, visit)
			for _, f := range g.Ifs {
				walkNamesExpr(s, f, visit)
			}
		}
		walkNamesExpr(s, n.Key, visit)
		walkNamesExpr(s, n.Value, visit)
	case *ast.FStringExpr:
		for _, ex := range n.Exprs {
			walkNamesExpr(s, ex, visit)
		}
	case *ast.AwaitExpr:
		walkNamesExpr(s, n.Value, visit)
	case *ast.YieldExpr:
		walkNamesExpr(s, n.Value, visit)
		walkNamesExpr(s, n.From, visit)
	case *ast.LambdaExpr:
		for _, p := range n.Params {
			walkNamesExpr(s, p.Default, visit)
		}
		// the lambda body itself is resolved against its own child
		// scope, built and resolved separately by the expression
		// compiler when it emits the closure (see compiler.go).
	}
}

// buildLambdaScope builds and resolves the scope for a lambda body on
// demand (lambdas are expressions, not statements, so they are not
// discovered by buildChildScopes's statement walk).
func buildLambdaScope(parent *Scope, lam *ast.LambdaExpr) *Scope {
	if existing, ok := parent.Children[lam]; ok {
		return existing
	}
	child := newScope(ScopeFunction, parent)
	for _, p := range lam.Params {
		child.Params = append(child.Params, p.Name)
		child.Locals[p.Name] = true
	}
	collectExprBindings(child, lam.Body)
	walkNamesExpr(child, lam.Body, resolveLoad)
	parent.Children[lam] = child
	return child
}

func walkComprehension(s *Scope, elt ast.Expr, gens []ast.Comprehension, visit func(*Scope, string)) {
	for _, g := range gens {
		walkNamesExpr(s, g.Iter, visit)
		for _, f := range g.Ifs {
			walkNamesExpr(s, f, visit)
		}
	}
	walkNamesExpr(s, elt, visit)
}
