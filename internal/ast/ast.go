package ast

import "github.com/Yusee-Programmer/tauraro-sub008/internal/lexer"

// Pos is the source position carried by every node, for diagnostics
// and for the compiler's line-number table.
type Pos = lexer.Position

// Node is implemented by every AST node.
type Node interface {
	Position() Pos
}

// Stmt is implemented by statement nodes.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is implemented by expression nodes.
type Expr interface {
	Node
	exprNode()
}

type base struct {
	Pos Pos
}

func (b base) Position() Pos { return b.Pos }

// Module is the root node of a parsed file.
type Module struct {
	base
	Body []Stmt
}

// ---- Simple statements ----

type ExprStmt struct {
	base
	X Expr
}

// Assign covers plain assignment with one or more targets (chained
// assignment `a = b = 1`) and tuple/list targets for unpacking.
type Assign struct {
	base
	Targets []Expr
	Value   Expr
}

// AugAssign covers `+=`, `-=`, etc.
type AugAssign struct {
	base
	Target Expr
	Op     string
	Value  Expr
}

// AnnAssign covers `x: int = 1` and bare `x: int`.
type AnnAssign struct {
	base
	Target Expr
	Annotation Expr
	Value      Expr // nil if no initializer
}

type Del struct {
	base
	Targets []Expr
}

type Return struct {
	base
	Value Expr // nil for bare `return`
}

type Raise struct {
	base
	Exc  Expr // nil for bare `raise`
	Cause Expr // non-nil for `raise X from Y`
}

type Yield struct {
	base
	Value  Expr // nil for bare `yield`
	From   Expr // non-nil for `yield from`
}

type Assert struct {
	base
	Test Expr
	Msg  Expr // nil if absent
}

type Pass struct{ base }
type Break struct{ base }
type Continue struct{ base }

type Global struct {
	base
	Names []string
}

type Nonlocal struct {
	base
	Names []string
}

// ImportName is one `name` or `name as alias` item.
type ImportName struct {
	Path  []string // dotted path segments
	Alias string   // "" if no `as`
}

type Import struct {
	base
	Names []ImportName
}

// ImportFrom covers `from .pkg import a, b as c` and `from . import x`.
type ImportFrom struct {
	base
	Level int // number of leading dots
	Module []string
	Names  []ImportName // empty + Star=true for `from x import *`
	Star   bool
}

// ---- Compound statements ----

type If struct {
	base
	Test   Expr
	Body   []Stmt
	Orelse []Stmt // may itself be a single []Stmt{*If} for elif chains
}

type While struct {
	base
	Test   Expr
	Body   []Stmt
	Orelse []Stmt
}

type For struct {
	base
	Target Expr
	Iter   Expr
	Body   []Stmt
	Orelse []Stmt
	IsAsync bool
}

type ExceptClause struct {
	Pos   Pos
	Type  Expr   // nil for bare `except:`
	Name  string // "" if no `as name`
	Body  []Stmt
}

type Try struct {
	base
	Body     []Stmt
	Handlers []ExceptClause
	Orelse   []Stmt
	Finally  []Stmt
}

// WithItem is one `expr [as target]` clause of a `with` statement.
type WithItem struct {
	Ctx    Expr
	Target Expr // nil if no `as`
}

type With struct {
	base
	Items   []WithItem
	Body    []Stmt
	IsAsync bool
}

// MatchCase is one `case pattern [if guard]:` arm. Patterns are kept
// as plain expressions (literal/capture/sequence/mapping patterns all
// parse into Expr shapes the compiler destructures at compile time,
// mirroring the "restricted to a Python subset" framing of spec.md
// §4.3 rather than a full PEP 634 pattern grammar).
type MatchCase struct {
	Pos   Pos
	Pattern Expr
	Guard   Expr // nil if no `if` guard
	Body    []Stmt
}

type Match struct {
	base
	Subject Expr
	Cases   []MatchCase
}

// Param is one function parameter (positional, keyword-only, *args,
// or **kwargs).
type Param struct {
	Name       string
	Annotation Expr // nil if absent
	Default    Expr // nil if absent
	IsVariadic bool // *args
	IsKwVariadic bool // **kwargs
	KeywordOnly  bool // after a bare '*' or *args in the param list
}

type FunctionDef struct {
	base
	Name       string
	Params     []Param
	Returns    Expr // return-type annotation, nil if absent
	Body       []Stmt
	Decorators []Expr
	IsAsync    bool
	IsGenerator bool // set by the parser when a `yield`/`yield from` appears in Body
}

type ClassDef struct {
	base
	Name       string
	Bases      []Expr
	Keywords   []Keyword // e.g. metaclass=...
	Body       []Stmt
	Decorators []Expr
}

// ExternBlock is the `extern "libname" { decl... }` FFI declaration
// form (spec.md §4.3, §4.8).
type ExternBlock struct {
	base
	Library string
	Decls   []ExternDecl
}

// ExternDecl declares one foreign function signature:
// `def name(argtypes...) -> rettype`.
type ExternDecl struct {
	Pos     Pos
	Name    string
	Params  []Param
	Returns Expr
}

func (*Module) stmtNode()      {}
func (*ExprStmt) stmtNode()    {}
func (*Assign) stmtNode()      {}
func (*AugAssign) stmtNode()   {}
func (*AnnAssign) stmtNode()   {}
func (*Del) stmtNode()         {}
func (*Return) stmtNode()      {}
func (*Raise) stmtNode()       {}
func (*Yield) stmtNode()       {}
func (*Assert) stmtNode()      {}
func (*Pass) stmtNode()        {}
func (*Break) stmtNode()       {}
func (*Continue) stmtNode()    {}
func (*Global) stmtNode()      {}
func (*Nonlocal) stmtNode()    {}
func (*Import) stmtNode()      {}
func (*ImportFrom) stmtNode()  {}
func (*If) stmtNode()          {}
func (*While) stmtNode()       {}
func (*For) stmtNode()         {}
func (*Try) stmtNode()         {}
func (*With) stmtNode()        {}
func (*Match) stmtNode()       {}
func (*FunctionDef) stmtNode() {}
func (*ClassDef) stmtNode()    {}
func (*ExternBlock) stmtNode() {}
