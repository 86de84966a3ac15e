package parser

import (
	"github.com/Yusee-Programmer/tauraro-sub008/internal/ast"
	"github.com/Yusee-Programmer/tauraro-sub008/internal/lexer"
)

// parseExpr parses a full testlist: one or more comma-separated
// expressions, producing a TupleExpr when more than one is present.
func (p *parser) parseExpr() (ast.Expr, error) {
	return p.parseExprList()
}

func (p *parser) parseExprList() (ast.Expr, error) {
	pos := p.cur.Pos
	first, err := p.parseExprNoTupleOrStar()
	if err != nil {
		return nil, err
	}
	if !p.atDelim(",") {
		return first, nil
	}
	elts := []ast.Expr{first}
	for p.atDelim(",") {
		p.advance()
		if p.atEndOfExprList() {
			break
		}
		e, err := p.parseExprNoTupleOrStar()
		if err != nil {
			return nil, err
		}
		elts = append(elts, e)
	}
	t := &ast.TupleExpr{Elts: elts}
	t.Pos = pos
	return t, nil
}

func (p *parser) atEndOfExprList() bool {
	if p.at(lexer.NEWLINE) || p.at(lexer.EOF) || p.at(lexer.DEDENT) {
		return true
	}
	return p.atDelim(")") || p.atDelim("]") || p.atDelim("}") || p.atDelim(":") || p.atDelim(";")
}

func (p *parser) parseExprNoTupleOrStar() (ast.Expr, error) {
	if p.atOp("*") {
		pos := p.cur.Pos
		p.advance()
		v, err := p.parseExprNoTuple()
		if err != nil {
			return nil, err
		}
		s := &ast.StarredExpr{Value: v}
		s.Pos = pos
		return s, nil
	}
	return p.parseExprNoTuple()
}

// parseExprNoTuple parses a single expression at conditional-or-lambda
// precedence: no top-level comma.
func (p *parser) parseExprNoTuple() (ast.Expr, error) {
	if p.atKeyword("lambda") {
		return p.parseLambda()
	}
	return p.parseNamedExpr()
}

func (p *parser) parseNamedExpr() (ast.Expr, error) {
	if p.at(lexer.IDENT) {
		nameTok := p.cur
		if peek := p.toks.Peek(); peek.Kind == lexer.OP && peek.Literal == ":=" {
			p.advance() // name
			p.advance() // ':='
			v, err := p.parseExprNoTuple()
			if err != nil {
				return nil, err
			}
			n := &ast.NameExpr{Id: nameTok.Literal}
			n.Pos = nameTok.Pos
			ne := &ast.NamedExpr{Target: n, Value: v}
			ne.Pos = nameTok.Pos
			return ne, nil
		}
	}
	return p.parseTernary()
}

func (p *parser) parseTernary() (ast.Expr, error) {
	pos := p.cur.Pos
	body, err := p.parseOrTest()
	if err != nil {
		return nil, err
	}
	if p.atKeyword("if") {
		p.advance()
		test, err := p.parseOrTest()
		if err != nil {
			return nil, err
		}
		if err := p.expectKeyword("else"); err != nil {
			return nil, err
		}
		orelse, err := p.parseExprNoTuple()
		if err != nil {
			return nil, err
		}
		e := &ast.IfExpr{Test: test, Body: body, Orelse: orelse}
		e.Pos = pos
		return e, nil
	}
	return body, nil
}

func (p *parser) parseOrTest() (ast.Expr, error) {
	pos := p.cur.Pos
	left, err := p.parseAndTest()
	if err != nil {
		return nil, err
	}
	if !p.atKeyword("or") {
		return left, nil
	}
	values := []ast.Expr{left}
	for p.atKeyword("or") {
		p.advance()
		v, err := p.parseAndTest()
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	b := &ast.BoolOpExpr{Op: "or", Values: values}
	b.Pos = pos
	return b, nil
}

func (p *parser) parseAndTest() (ast.Expr, error) {
	pos := p.cur.Pos
	left, err := p.parseNotTest()
	if err != nil {
		return nil, err
	}
	if !p.atKeyword("and") {
		return left, nil
	}
	values := []ast.Expr{left}
	for p.atKeyword("and") {
		p.advance()
		v, err := p.parseNotTest()
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	b := &ast.BoolOpExpr{Op: "and", Values: values}
	b.Pos = pos
	return b, nil
}

func (p *parser) parseNotTest() (ast.Expr, error) {
	if p.atKeyword("not") {
		pos := p.cur.Pos
		p.advance()
		x, err := p.parseNotTest()
		if err != nil {
			return nil, err
		}
		u := &ast.UnaryOpExpr{Op: "not", X: x}
		u.Pos = pos
		return u, nil
	}
	return p.parseComparison()
}

func (p *parser) parseComparison() (ast.Expr, error) {
	pos := p.cur.Pos
	left, err := p.parseBitOr()
	if err != nil {
		return nil, err
	}
	var ops []string
	var comps []ast.Expr
	for {
		op, ok := p.matchCompareOp()
		if !ok {
			break
		}
		right, err := p.parseBitOr()
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
		comps = append(comps, right)
	}
	if len(ops) == 0 {
		return left, nil
	}
	c := &ast.CompareExpr{Left: left, Ops: ops, Comparators: comps}
	c.Pos = pos
	return c, nil
}

func (p *parser) matchCompareOp() (string, bool) {
	if p.at(lexer.OP) {
		switch p.cur.Literal {
		case "<", "<=", ">", ">=", "==", "!=":
			lit := p.cur.Literal
			p.advance()
			return lit, true
		}
		return "", false
	}
	if p.atKeyword("in") {
		p.advance()
		return "in", true
	}
	if p.atKeyword("not") {
		if peek := p.toks.Peek(); peek.Kind == lexer.KEYWORD && peek.Literal == "in" {
			p.advance()
			p.advance()
			return "not in", true
		}
		return "", false
	}
	if p.atKeyword("is") {
		p.advance()
		if p.atKeyword("not") {
			p.advance()
			return "is not", true
		}
		return "is", true
	}
	return "", false
}

// parseTargetExpr parses an assignment-target expression: names,
// attribute/subscript chains, starred targets, and parenthesized or
// bracketed tuple/list targets — stopping below the comparison and
// boolean levels so that `for x in y` does not let the comparison
// grammar swallow `in` as part of the target.
func (p *parser) parseTargetExpr() (ast.Expr, error) {
	if p.atOp("*") {
		pos := p.cur.Pos
		p.advance()
		v, err := p.parseTargetExpr()
		if err != nil {
			return nil, err
		}
		s := &ast.StarredExpr{Value: v}
		s.Pos = pos
		return s, nil
	}
	return p.parseBitOr()
}

func (p *parser) parseBinaryLevel(next func() (ast.Expr, error), ops map[string]bool) (ast.Expr, error) {
	pos := p.cur.Pos
	left, err := next()
	if err != nil {
		return nil, err
	}
	for p.at(lexer.OP) && ops[p.cur.Literal] {
		op := p.cur.Literal
		p.advance()
		right, err := next()
		if err != nil {
			return nil, err
		}
		b := &ast.BinOpExpr{Op: op, Left: left, Right: right}
		b.Pos = pos
		left = b
	}
	return left, nil
}

var bitOrOps = map[string]bool{"|": true}
var bitXorOps = map[string]bool{"^": true}
var bitAndOps = map[string]bool{"&": true}
var shiftOps = map[string]bool{"<<": true, ">>": true}
var arithOps = map[string]bool{"+": true, "-": true}
var termOps = map[string]bool{"*": true, "/": true, "//": true, "%": true}

func (p *parser) parseBitOr() (ast.Expr, error)  { return p.parseBinaryLevel(p.parseBitXor, bitOrOps) }
func (p *parser) parseBitXor() (ast.Expr, error) { return p.parseBinaryLevel(p.parseBitAnd, bitXorOps) }
func (p *parser) parseBitAnd() (ast.Expr, error) { return p.parseBinaryLevel(p.parseShift, bitAndOps) }
func (p *parser) parseShift() (ast.Expr, error)  { return p.parseBinaryLevel(p.parseArith, shiftOps) }
func (p *parser) parseArith() (ast.Expr, error)  { return p.parseBinaryLevel(p.parseTerm, arithOps) }
func (p *parser) parseTerm() (ast.Expr, error)   { return p.parseBinaryLevel(p.parseUnary, termOps) }

func (p *parser) parseUnary() (ast.Expr, error) {
	if p.at(lexer.OP) && (p.cur.Literal == "+" || p.cur.Literal == "-" || p.cur.Literal == "~") {
		pos := p.cur.Pos
		op := p.cur.Literal
		p.advance()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		u := &ast.UnaryOpExpr{Op: op, X: x}
		u.Pos = pos
		return u, nil
	}
	return p.parsePower()
}

// parsePower binds `**` tighter than unary on its left but allows a
// unary operand on its right (`2 ** -1`), and is right-associative
// (`2 ** 3 ** 2 == 2 ** (3 ** 2)`).
func (p *parser) parsePower() (ast.Expr, error) {
	pos := p.cur.Pos
	left, err := p.parseAtomTrailer()
	if err != nil {
		return nil, err
	}
	if p.atOp("**") {
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		b := &ast.BinOpExpr{Op: "**", Left: left, Right: right}
		b.Pos = pos
		return b, nil
	}
	return left, nil
}

func (p *parser) parseAtomTrailer() (ast.Expr, error) {
	atom, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	for {
		pos := p.cur.Pos
		switch {
		case p.atDelim("."):
			p.advance()
			t, err := p.expect(lexer.IDENT)
			if err != nil {
				return nil, err
			}
			a := &ast.AttributeExpr{Value: atom, Attr: t.Literal}
			a.Pos = pos
			atom = a
		case p.atDelim("("):
			atom, err = p.parseCallTrailer(pos, atom)
			if err != nil {
				return nil, err
			}
		case p.atDelim("["):
			atom, err = p.parseSubscriptTrailer(pos, atom)
			if err != nil {
				return nil, err
			}
		default:
			return atom, nil
		}
	}
}

func (p *parser) parseCallTrailer(pos lexer.Position, fn ast.Expr) (ast.Expr, error) {
	p.advance() // '('
	call := &ast.CallExpr{Func: fn, StarArgs: map[int]bool{}}
	call.Pos = pos
	for !p.atDelim(")") {
		switch {
		case p.atOp("**"):
			p.advance()
			v, err := p.parseExprNoTuple()
			if err != nil {
				return nil, err
			}
			call.Keywords = append(call.Keywords, ast.Keyword{Value: v})
			call.StarKwargs = true
		case p.atOp("*"):
			p.advance()
			v, err := p.parseExprNoTuple()
			if err != nil {
				return nil, err
			}
			call.StarArgs[len(call.Args)] = true
			call.Args = append(call.Args, v)
		case p.at(lexer.IDENT) && isOpLiteral(p.toks.Peek(), "="):
			nameTok, _ := p.expect(lexer.IDENT)
			p.advance() // '='
			v, err := p.parseExprNoTuple()
			if err != nil {
				return nil, err
			}
			call.Keywords = append(call.Keywords, ast.Keyword{Name: nameTok.Literal, Value: v})
		default:
			v, err := p.parseExprNoTuple()
			if err != nil {
				return nil, err
			}
			if p.atKeyword("for") {
				gens, err := p.parseComprehensionClauses()
				if err != nil {
					return nil, err
				}
				g := &ast.GeneratorExpr{Elt: v, Generators: gens}
				g.Pos = pos
				v = g
			}
			call.Args = append(call.Args, v)
		}
		if p.atDelim(",") {
			p.advance()
			continue
		}
		break
	}
	if err := p.expectDelim(")"); err != nil {
		return nil, err
	}
	return call, nil
}

func isOpLiteral(t lexer.Token, lit string) bool {
	return t.Kind == lexer.OP && t.Literal == lit
}

func (p *parser) parseSubscriptTrailer(pos lexer.Position, val ast.Expr) (ast.Expr, error) {
	p.advance() // '['
	idx, err := p.parseSliceOrIndex()
	if err != nil {
		return nil, err
	}
	if err := p.expectDelim("]"); err != nil {
		return nil, err
	}
	s := &ast.SubscriptExpr{Value: val, Index: idx}
	s.Pos = pos
	return s, nil
}

func (p *parser) parseSliceOrIndex() (ast.Expr, error) {
	pos := p.cur.Pos
	first, err := p.parseSliceItem()
	if err != nil {
		return nil, err
	}
	if !p.atDelim(",") {
		return first, nil
	}
	elts := []ast.Expr{first}
	for p.atDelim(",") {
		p.advance()
		if p.atDelim("]") {
			break
		}
		e, err := p.parseSliceItem()
		if err != nil {
			return nil, err
		}
		elts = append(elts, e)
	}
	t := &ast.TupleExpr{Elts: elts}
	t.Pos = pos
	return t, nil
}

func (p *parser) parseSliceItem() (ast.Expr, error) {
	pos := p.cur.Pos
	var lower, upper, step ast.Expr
	var err error
	isSlice := false
	if !p.atDelim(":") {
		lower, err = p.parseExprNoTuple()
		if err != nil {
			return nil, err
		}
	}
	if p.atDelim(":") {
		isSlice = true
		p.advance()
		if !p.atDelim(":") && !p.atDelim("]") && !p.atDelim(",") {
			upper, err = p.parseExprNoTuple()
			if err != nil {
				return nil, err
			}
		}
		if p.atDelim(":") {
			p.advance()
			if !p.atDelim("]") && !p.atDelim(",") {
				step, err = p.parseExprNoTuple()
				if err != nil {
					return nil, err
				}
			}
		}
	}
	if !isSlice {
		return lower, nil
	}
	s := &ast.SliceExpr{Lower: lower, Upper: upper, Step: step}
	s.Pos = pos
	return s, nil
}

func (p *parser) parseAtom() (ast.Expr, error) {
	pos := p.cur.Pos
	switch {
	case p.at(lexer.INT):
		t := p.advance()
		n := &ast.NumberExpr{Int: t.IntVal, Literal: t.Literal}
		n.Pos = pos
		return n, nil
	case p.at(lexer.FLOAT):
		t := p.advance()
		n := &ast.NumberExpr{IsFloat: true, Float: t.FloatVal, Literal: t.Literal}
		n.Pos = pos
		return n, nil
	case p.at(lexer.STRING) || p.at(lexer.BYTES):
		return p.parseStringLiteral()
	case p.at(lexer.FSTRING_START):
		return p.parseFString()
	case p.at(lexer.IDENT):
		t := p.advance()
		n := &ast.NameExpr{Id: t.Literal}
		n.Pos = pos
		return n, nil
	case p.atKeyword("True"):
		p.advance()
		c := &ast.ConstExpr{Kind: ast.ConstTrue}
		c.Pos = pos
		return c, nil
	case p.atKeyword("False"):
		p.advance()
		c := &ast.ConstExpr{Kind: ast.ConstFalse}
		c.Pos = pos
		return c, nil
	case p.atKeyword("None"):
		p.advance()
		c := &ast.ConstExpr{Kind: ast.ConstNone}
		c.Pos = pos
		return c, nil
	case p.atKeyword("lambda"):
		return p.parseLambda()
	case p.atKeyword("yield"):
		return p.parseYieldExpr()
	case p.atKeyword("await"):
		p.advance()
		v, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		a := &ast.AwaitExpr{Value: v}
		a.Pos = pos
		return a, nil
	case p.atDelim("("):
		return p.parseParenExpr()
	case p.atDelim("["):
		return p.parseListExpr()
	case p.atDelim("{"):
		return p.parseBraceExpr()
	}
	return nil, p.errorf("unexpected token %s %q", p.cur.Kind, p.cur.Literal)
}

func (p *parser) parseStringLiteral() (ast.Expr, error) {
	pos := p.cur.Pos
	t := p.advance()
	val := t.Literal
	isBytes := t.IsBytes
	for p.at(lexer.STRING) || p.at(lexer.BYTES) {
		nt := p.advance()
		val += nt.Literal
	}
	s := &ast.StringExpr{Value: val, IsBytes: isBytes, IsRaw: t.IsRaw}
	s.Pos = pos
	return s, nil
}

// parseFString consumes an f-string's token run and recursively parses
// each embedded expression segment as a standalone expression.
func (p *parser) parseFString() (ast.Expr, error) {
	pos := p.cur.Pos
	p.advance() // FSTRING_START
	f := &ast.FStringExpr{}
	f.Pos = pos
	var curLit string
	for !p.at(lexer.FSTRING_END) {
		switch p.cur.Kind {
		case lexer.FSTRING_MIDDLE:
			curLit += p.cur.Literal
			p.advance()
		case lexer.FSTRING_EXPR_START:
			exprSrc := p.cur.Literal
			p.advance()
			e, err := parseSubExpr(p.file, exprSrc)
			if err != nil {
				return nil, err
			}
			f.Literals = append(f.Literals, curLit)
			f.Exprs = append(f.Exprs, e)
			curLit = ""
		default:
			return nil, p.errorf("malformed f-string")
		}
	}
	p.advance() // FSTRING_END
	f.Literals = append(f.Literals, curLit)
	return f, nil
}

// parseSubExpr parses one f-string `{...}` payload as a standalone
// expression, reusing the same lexer/parser pipeline.
//
// TODO: rebase the sub-expression's positions onto the enclosing
// f-string's location instead of restarting at line 1 of the fragment;
// diagnostics inside f-string expressions currently point into the
// fragment, not the source file.
func parseSubExpr(file, src string) (ast.Expr, error) {
	toks, err := lexer.Lex(file, []byte(src))
	if err != nil {
		return nil, err
	}
	sp := &parser{file: file, toks: toks}
	sp.cur = sp.toks.Next()
	e, err := sp.parseExprNoTuple()
	if err != nil {
		return nil, err
	}
	if !sp.at(lexer.EOF) {
		return nil, sp.errorf("unexpected trailing tokens in f-string expression")
	}
	return e, nil
}

func (p *parser) parseYieldExpr() (*ast.YieldExpr, error) {
	pos := p.cur.Pos
	p.advance() // 'yield'
	if p.atKeyword("from") {
		p.advance()
		v, err := p.parseExprNoTuple()
		if err != nil {
			return nil, err
		}
		y := &ast.YieldExpr{From: v}
		y.Pos = pos
		return y, nil
	}
	if p.atEndOfExprList() || p.atDelim(",") {
		y := &ast.YieldExpr{}
		y.Pos = pos
		return y, nil
	}
	v, err := p.parseExprList()
	if err != nil {
		return nil, err
	}
	y := &ast.YieldExpr{Value: v}
	y.Pos = pos
	return y, nil
}

func (p *parser) parseLambda() (ast.Expr, error) {
	pos := p.cur.Pos
	p.advance() // 'lambda'
	var params []ast.Param
	var err error
	if !p.atDelim(":") {
		params, err = p.parseParamList(":")
		if err != nil {
			return nil, err
		}
	}
	if err := p.expectDelim(":"); err != nil {
		return nil, err
	}
	body, err := p.parseExprNoTuple()
	if err != nil {
		return nil, err
	}
	l := &ast.LambdaExpr{Params: params, Body: body}
	l.Pos = pos
	return l, nil
}

func (p *parser) parseParenExpr() (ast.Expr, error) {
	pos := p.cur.Pos
	p.advance() // '('
	if p.atDelim(")") {
		p.advance()
		t := &ast.TupleExpr{}
		t.Pos = pos
		return t, nil
	}
	first, err := p.parseExprNoTupleOrStar()
	if err != nil {
		return nil, err
	}
	if p.atKeyword("for") || p.atKeyword("async") {
		gens, err := p.parseComprehensionClauses()
		if err != nil {
			return nil, err
		}
		if err := p.expectDelim(")"); err != nil {
			return nil, err
		}
		g := &ast.GeneratorExpr{Elt: first, Generators: gens}
		g.Pos = pos
		return g, nil
	}
	hadComma := false
	elts := []ast.Expr{first}
	for p.atDelim(",") {
		hadComma = true
		p.advance()
		if p.atDelim(")") {
			break
		}
		e, err := p.parseExprNoTupleOrStar()
		if err != nil {
			return nil, err
		}
		elts = append(elts, e)
	}
	if err := p.expectDelim(")"); err != nil {
		return nil, err
	}
	if !hadComma {
		return first, nil
	}
	t := &ast.TupleExpr{Elts: elts}
	t.Pos = pos
	return t, nil
}

func (p *parser) parseListExpr() (ast.Expr, error) {
	pos := p.cur.Pos
	p.advance() // '['
	if p.atDelim("]") {
		p.advance()
		l := &ast.ListExpr{}
		l.Pos = pos
		return l, nil
	}
	first, err := p.parseExprNoTupleOrStar()
	if err != nil {
		return nil, err
	}
	if p.atKeyword("for") || p.atKeyword("async") {
		gens, err := p.parseComprehensionClauses()
		if err != nil {
			return nil, err
		}
		if err := p.expectDelim("]"); err != nil {
			return nil, err
		}
		c := &ast.ListCompExpr{Elt: first, Generators: gens}
		c.Pos = pos
		return c, nil
	}
	elts := []ast.Expr{first}
	for p.atDelim(",") {
		p.advance()
		if p.atDelim("]") {
			break
		}
		e, err := p.parseExprNoTupleOrStar()
		if err != nil {
			return nil, err
		}
		elts = append(elts, e)
	}
	if err := p.expectDelim("]"); err != nil {
		return nil, err
	}
	l := &ast.ListExpr{Elts: elts}
	l.Pos = pos
	return l, nil
}

func (p *parser) parseBraceExpr() (ast.Expr, error) {
	pos := p.cur.Pos
	p.advance() // '{'
	if p.atDelim("}") {
		p.advance()
		d := &ast.DictExpr{}
		d.Pos = pos
		return d, nil
	}
	if p.atOp("**") {
		p.advance()
		v, err := p.parseExprNoTuple()
		if err != nil {
			return nil, err
		}
		return p.parseDictExprBody(pos, []ast.Expr{nil}, []ast.Expr{v})
	}
	first, err := p.parseExprNoTupleOrStar()
	if err != nil {
		return nil, err
	}
	if p.atDelim(":") {
		p.advance()
		val, err := p.parseExprNoTuple()
		if err != nil {
			return nil, err
		}
		if p.atKeyword("for") || p.atKeyword("async") {
			gens, err := p.parseComprehensionClauses()
			if err != nil {
				return nil, err
			}
			if err := p.expectDelim("}"); err != nil {
				return nil, err
			}
			c := &ast.DictCompExpr{Key: first, Value: val, Generators: gens}
			c.Pos = pos
			return c, nil
		}
		return p.parseDictExprBody(pos, []ast.Expr{first}, []ast.Expr{val})
	}
	if p.atKeyword("for") || p.atKeyword("async") {
		gens, err := p.parseComprehensionClauses()
		if err != nil {
			return nil, err
		}
		if err := p.expectDelim("}"); err != nil {
			return nil, err
		}
		c := &ast.SetCompExpr{Elt: first, Generators: gens}
		c.Pos = pos
		return c, nil
	}
	elts := []ast.Expr{first}
	for p.atDelim(",") {
		p.advance()
		if p.atDelim("}") {
			break
		}
		e, err := p.parseExprNoTupleOrStar()
		if err != nil {
			return nil, err
		}
		elts = append(elts, e)
	}
	if err := p.expectDelim("}"); err != nil {
		return nil, err
	}
	s := &ast.SetExpr{Elts: elts}
	s.Pos = pos
	return s, nil
}

func (p *parser) parseDictExprBody(pos lexer.Position, keys, values []ast.Expr) (ast.Expr, error) {
	for p.atDelim(",") {
		p.advance()
		if p.atDelim("}") {
			break
		}
		if p.atOp("**") {
			p.advance()
			v, err := p.parseExprNoTuple()
			if err != nil {
				return nil, err
			}
			keys = append(keys, nil)
			values = append(values, v)
			continue
		}
		k, err := p.parseExprNoTuple()
		if err != nil {
			return nil, err
		}
		if err := p.expectDelim(":"); err != nil {
			return nil, err
		}
		v, err := p.parseExprNoTuple()
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
		values = append(values, v)
	}
	if err := p.expectDelim("}"); err != nil {
		return nil, err
	}
	d := &ast.DictExpr{Keys: keys, Values: values}
	d.Pos = pos
	return d, nil
}

func (p *parser) parseComprehensionClauses() ([]ast.Comprehension, error) {
	var gens []ast.Comprehension
	for p.atKeyword("for") || p.atKeyword("async") {
		isAsync := false
		if p.atKeyword("async") {
			isAsync = true
			p.advance()
		}
		if err := p.expectKeyword("for"); err != nil {
			return nil, err
		}
		targets, err := p.parseTargetList()
		if err != nil {
			return nil, err
		}
		var target ast.Expr
		if len(targets) == 1 {
			target = targets[0]
		} else {
			target = &ast.TupleExpr{Elts: targets}
		}
		if err := p.expectKeyword("in"); err != nil {
			return nil, err
		}
		iter, err := p.parseOrTest()
		if err != nil {
			return nil, err
		}
		comp := ast.Comprehension{Target: target, Iter: iter, IsAsync: isAsync}
		for p.atKeyword("if") {
			p.advance()
			cond, err := p.parseOrTest()
			if err != nil {
				return nil, err
			}
			comp.Ifs = append(comp.Ifs, cond)
		}
		gens = append(gens, comp)
	}
	return gens, nil
}
