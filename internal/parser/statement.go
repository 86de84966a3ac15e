package parser

import (
	"github.com/Yusee-Programmer/tauraro-sub008/internal/ast"
	"github.com/Yusee-Programmer/tauraro-sub008/internal/lexer"
)

// parseStatement parses one logical line, returning one or more
// statements (a simple-statement line may hold several, separated by
// ';').
func (p *parser) parseStatement() ([]ast.Stmt, error) {
	if p.at(lexer.KEYWORD) {
		switch p.cur.Literal {
		case "if":
			s, err := p.parseIf()
			return []ast.Stmt{s}, err
		case "while":
			s, err := p.parseWhile()
			return []ast.Stmt{s}, err
		case "for":
			s, err := p.parseFor(false)
			return []ast.Stmt{s}, err
		case "try":
			s, err := p.parseTry()
			return []ast.Stmt{s}, err
		case "with":
			s, err := p.parseWith(false)
			return []ast.Stmt{s}, err
		case "def":
			s, err := p.parseFunctionDef(nil, false)
			return []ast.Stmt{s}, err
		case "class":
			s, err := p.parseClassDef(nil)
			return []ast.Stmt{s}, err
		case "async":
			return p.parseAsyncStatement()
		case "match":
			s, err := p.parseMatch()
			return []ast.Stmt{s}, err
		}
	}
	if p.atOp("@") {
		return p.parseDecorated()
	}
	if p.atKeyword_Extern() {
		s, err := p.parseExternBlock()
		return []ast.Stmt{s}, err
	}
	return p.parseSimpleStatementLine()
}

// atKeyword_Extern recognizes the contextual `extern` keyword, which is
// not in the closed reserved-word set (spec.md keeps it to a single
// declaration form) and therefore lexes as a plain IDENT.
func (p *parser) atKeyword_Extern() bool {
	return p.at(lexer.IDENT) && p.cur.Literal == "extern"
}

func (p *parser) parseAsyncStatement() ([]ast.Stmt, error) {
	pos := p.cur.Pos
	p.advance() // 'async'
	switch {
	case p.atKeyword("def"):
		s, err := p.parseFunctionDef(nil, true)
		return []ast.Stmt{s}, err
	case p.atKeyword("for"):
		s, err := p.parseFor(true)
		return []ast.Stmt{s}, err
	case p.atKeyword("with"):
		s, err := p.parseWith(true)
		return []ast.Stmt{s}, err
	}
	return nil, &ParseError{Pos: pos, Msg: "expected 'def', 'for' or 'with' after 'async'"}
}

func (p *parser) parseDecorated() ([]ast.Stmt, error) {
	var decorators []ast.Expr
	for p.atOp("@") {
		p.advance()
		e, err := p.parseExprNoTuple()
		if err != nil {
			return nil, err
		}
		decorators = append(decorators, e)
		if _, err := p.expect(lexer.NEWLINE); err != nil {
			return nil, err
		}
		p.skipNewlines()
	}
	isAsync := false
	if p.atKeyword("async") {
		isAsync = true
		p.advance()
	}
	switch {
	case p.atKeyword("def"):
		s, err := p.parseFunctionDef(decorators, isAsync)
		return []ast.Stmt{s}, err
	case p.atKeyword("class"):
		s, err := p.parseClassDef(decorators)
		return []ast.Stmt{s}, err
	}
	return nil, p.errorf("expected function or class definition after decorator")
}

// parseSimpleStatementLine parses one or more semicolon-separated
// simple statements terminated by NEWLINE or EOF.
func (p *parser) parseSimpleStatementLine() ([]ast.Stmt, error) {
	var out []ast.Stmt
	for {
		s, err := p.parseSimpleStatement()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
		if p.atDelim(";") {
			p.advance()
			if p.at(lexer.NEWLINE) || p.at(lexer.EOF) {
				break
			}
			continue
		}
		break
	}
	if p.at(lexer.NEWLINE) {
		p.advance()
	} else if !p.at(lexer.EOF) && !p.at(lexer.DEDENT) {
		return nil, p.errorf("expected NEWLINE, got %s", p.cur.Kind)
	}
	return out, nil
}

func (p *parser) parseSimpleStatement() (ast.Stmt, error) {
	pos := p.cur.Pos
	if p.at(lexer.KEYWORD) {
		switch p.cur.Literal {
		case "pass":
			p.advance()
			return &ast.Pass{}, nil
		case "break":
			p.advance()
			return &ast.Break{}, nil
		case "continue":
			p.advance()
			return &ast.Continue{}, nil
		case "return":
			p.advance()
			if p.at(lexer.NEWLINE) || p.at(lexer.EOF) || p.atDelim(";") {
				return &ast.Return{}, nil
			}
			v, err := p.parseExprList()
			if err != nil {
				return nil, err
			}
			return &ast.Return{Value: v}, nil
		case "raise":
			p.advance()
			return p.parseRaise(pos)
		case "del":
			p.advance()
			targets, err := p.parseTargetList()
			if err != nil {
				return nil, err
			}
			return &ast.Del{Targets: targets}, nil
		case "assert":
			p.advance()
			test, err := p.parseExprNoTuple()
			if err != nil {
				return nil, err
			}
			var msg ast.Expr
			if p.atDelim(",") {
				p.advance()
				msg, err = p.parseExpr()
				if err != nil {
					return nil, err
				}
			}
			return &ast.Assert{Test: test, Msg: msg}, nil
		case "global":
			p.advance()
			names, err := p.parseNameList()
			if err != nil {
				return nil, err
			}
			return &ast.Global{Names: names}, nil
		case "nonlocal":
			p.advance()
			names, err := p.parseNameList()
			if err != nil {
				return nil, err
			}
			return &ast.Nonlocal{Names: names}, nil
		case "import":
			p.advance()
			return p.parseImport(pos)
		case "from":
			p.advance()
			return p.parseImportFrom(pos)
		case "yield":
			y, err := p.parseYieldExpr()
			if err != nil {
				return nil, err
			}
			return &ast.Yield{Value: y.Value, From: y.From}, nil
		}
	}
	return p.parseExprOrAssignStatement(pos)
}

func (p *parser) parseNameList() ([]string, error) {
	var names []string
	for {
		t, err := p.expect(lexer.IDENT)
		if err != nil {
			return nil, err
		}
		names = append(names, t.Literal)
		if p.atDelim(",") {
			p.advance()
			continue
		}
		break
	}
	return names, nil
}

func (p *parser) parseRaise(pos lexer.Position) (ast.Stmt, error) {
	if p.at(lexer.NEWLINE) || p.at(lexer.EOF) || p.atDelim(";") {
		return &ast.Raise{}, nil
	}
	exc, err := p.parseExprNoTuple()
	if err != nil {
		return nil, err
	}
	var cause ast.Expr
	if p.atKeyword("from") {
		p.advance()
		cause, err = p.parseExprNoTuple()
		if err != nil {
			return nil, err
		}
	}
	return &ast.Raise{Exc: exc, Cause: cause}, nil
}

func (p *parser) parseImport(pos lexer.Position) (ast.Stmt, error) {
	var names []ast.ImportName
	for {
		path, err := p.parseDottedName()
		if err != nil {
			return nil, err
		}
		alias := ""
		if p.atKeyword("as") {
			p.advance()
			t, err := p.expect(lexer.IDENT)
			if err != nil {
				return nil, err
			}
			alias = t.Literal
		}
		names = append(names, ast.ImportName{Path: path, Alias: alias})
		if p.atDelim(",") {
			p.advance()
			continue
		}
		break
	}
	return &ast.Import{Names: names}, nil
}

func (p *parser) parseDottedName() ([]string, error) {
	var parts []string
	t, err := p.expect(lexer.IDENT)
	if err != nil {
		return nil, err
	}
	parts = append(parts, t.Literal)
	for p.atDelim(".") {
		p.advance()
		t, err := p.expect(lexer.IDENT)
		if err != nil {
			return nil, err
		}
		parts = append(parts, t.Literal)
	}
	return parts, nil
}

func (p *parser) parseImportFrom(pos lexer.Position) (ast.Stmt, error) {
	level := 0
	for p.atDelim(".") || p.atOp("...") {
		if p.atOp("...") {
			level += 3
		} else {
			level++
		}
		p.advance()
	}
	var module []string
	if p.at(lexer.IDENT) {
		m, err := p.parseDottedName()
		if err != nil {
			return nil, err
		}
		module = m
	}
	if err := p.expectKeyword("import"); err != nil {
		return nil, err
	}
	stmt := &ast.ImportFrom{Level: level, Module: module}
	if p.atOp("*") {
		p.advance()
		stmt.Star = true
		return stmt, nil
	}
	paren := p.atDelim("(")
	if paren {
		p.advance()
	}
	for {
		t, err := p.expect(lexer.IDENT)
		if err != nil {
			return nil, err
		}
		alias := ""
		if p.atKeyword("as") {
			p.advance()
			at, err := p.expect(lexer.IDENT)
			if err != nil {
				return nil, err
			}
			alias = at.Literal
		}
		stmt.Names = append(stmt.Names, ast.ImportName{Path: []string{t.Literal}, Alias: alias})
		if p.atDelim(",") {
			p.advance()
			if paren && p.atDelim(")") {
				break
			}
			continue
		}
		break
	}
	if paren {
		if err := p.expectDelim(")"); err != nil {
			return nil, err
		}
	}
	return stmt, nil
}

// parseTargetList parses a comma-separated list of assignment targets
// (used by `del`, `for` loop targets, and comprehension targets). It
// deliberately parses at the bitwise-or precedence level rather than
// the full expression grammar, since a bare `for x in y` must not let
// the comparison level swallow `in` as part of the target.
func (p *parser) parseTargetList() ([]ast.Expr, error) {
	var out []ast.Expr
	for {
		e, err := p.parseTargetExpr()
		if err != nil {
			return nil, err
		}
		out = append(out, e)
		if p.atDelim(",") {
			p.advance()
			if p.at(lexer.NEWLINE) || p.at(lexer.EOF) {
				break
			}
			continue
		}
		break
	}
	return out, nil
}

// parseExprOrAssignStatement handles plain expression statements,
// assignment (incl. chained and tuple-target), augmented assignment,
// and annotated assignment — they all start by parsing one expression
// list and then looking at what follows it.
func (p *parser) parseExprOrAssignStatement(pos lexer.Position) (ast.Stmt, error) {
	first, err := p.parseExprList()
	if err != nil {
		return nil, err
	}
	if p.atDelim(":") && isSimpleTarget(first) {
		p.advance()
		annot, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		var value ast.Expr
		if p.atOp("=") {
			p.advance()
			value, err = p.parseExprList()
			if err != nil {
				return nil, err
			}
		}
		n := &ast.AnnAssign{Target: first, Annotation: annot, Value: value}
		n.Pos = pos
		return n, nil
	}
	if op, ok := augAssignOp(p.cur); ok {
		p.advance()
		value, err := p.parseExprList()
		if err != nil {
			return nil, err
		}
		n := &ast.AugAssign{Target: first, Op: op, Value: value}
		n.Pos = pos
		return n, nil
	}
	if p.atOp("=") {
		targets := []ast.Expr{first}
		var value ast.Expr
		for p.atOp("=") {
			p.advance()
			v, err := p.parseExprList()
			if err != nil {
				return nil, err
			}
			value = v
			targets = append(targets, v)
		}
		// last parsed value is the RHS; everything before it is a target.
		value = targets[len(targets)-1]
		targets = targets[:len(targets)-1]
		n := &ast.Assign{Targets: targets, Value: value}
		n.Pos = pos
		return n, nil
	}
	n := &ast.ExprStmt{X: first}
	n.Pos = pos
	return n, nil
}

func isSimpleTarget(e ast.Expr) bool {
	switch e.(type) {
	case *ast.NameExpr, *ast.AttributeExpr, *ast.SubscriptExpr:
		return true
	}
	return false
}

func augAssignOp(t lexer.Token) (string, bool) {
	if t.Kind != lexer.OP {
		return "", false
	}
	switch t.Literal {
	case "+=", "-=", "*=", "/=", "//=", "%=", "**=", "&=", "|=", "^=", "<<=", ">>=":
		return t.Literal[:len(t.Literal)-1], true
	}
	return "", false
}

func (p *parser) parseIf() (ast.Stmt, error) {
	pos := p.cur.Pos
	p.advance() // 'if'
	test, err := p.parseExprNoTuple()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	node := &ast.If{Test: test, Body: body}
	node.Pos = pos
	if p.atKeyword("elif") {
		elif, err := p.parseIf_Elif()
		if err != nil {
			return nil, err
		}
		node.Orelse = []ast.Stmt{elif}
		return node, nil
	}
	if p.atKeyword("else") {
		p.advance()
		orelse, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		node.Orelse = orelse
	}
	return node, nil
}

func (p *parser) parseIf_Elif() (ast.Stmt, error) {
	pos := p.cur.Pos
	p.advance() // 'elif'
	test, err := p.parseExprNoTuple()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	node := &ast.If{Test: test, Body: body}
	node.Pos = pos
	if p.atKeyword("elif") {
		elif, err := p.parseIf_Elif()
		if err != nil {
			return nil, err
		}
		node.Orelse = []ast.Stmt{elif}
	} else if p.atKeyword("else") {
		p.advance()
		orelse, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		node.Orelse = orelse
	}
	return node, nil
}

func (p *parser) parseWhile() (ast.Stmt, error) {
	pos := p.cur.Pos
	p.advance()
	test, err := p.parseExprNoTuple()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	node := &ast.While{Test: test, Body: body}
	node.Pos = pos
	if p.atKeyword("else") {
		p.advance()
		orelse, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		node.Orelse = orelse
	}
	return node, nil
}

func (p *parser) parseFor(isAsync bool) (ast.Stmt, error) {
	pos := p.cur.Pos
	p.advance() // 'for'
	target, err := p.parseTargetList()
	if err != nil {
		return nil, err
	}
	var targetExpr ast.Expr
	if len(target) == 1 {
		targetExpr = target[0]
	} else {
		targetExpr = &ast.TupleExpr{Elts: target}
	}
	if err := p.expectKeyword("in"); err != nil {
		return nil, err
	}
	iter, err := p.parseExprList()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	node := &ast.For{Target: targetExpr, Iter: iter, Body: body, IsAsync: isAsync}
	node.Pos = pos
	if p.atKeyword("else") {
		p.advance()
		orelse, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		node.Orelse = orelse
	}
	return node, nil
}

func (p *parser) parseTry() (ast.Stmt, error) {
	pos := p.cur.Pos
	p.advance() // 'try'
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	node := &ast.Try{Body: body}
	node.Pos = pos
	for p.atKeyword("except") {
		hpos := p.cur.Pos
		p.advance()
		var typ ast.Expr
		name := ""
		if !p.atDelim(":") {
			typ, err = p.parseExpr()
			if err != nil {
				return nil, err
			}
			if p.atKeyword("as") {
				p.advance()
				t, err := p.expect(lexer.IDENT)
				if err != nil {
					return nil, err
				}
				name = t.Literal
			}
		}
		hbody, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		node.Handlers = append(node.Handlers, ast.ExceptClause{Pos: hpos, Type: typ, Name: name, Body: hbody})
	}
	if p.atKeyword("else") {
		p.advance()
		orelse, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		node.Orelse = orelse
	}
	if p.atKeyword("finally") {
		p.advance()
		fin, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		node.Finally = fin
	}
	return node, nil
}

func (p *parser) parseWith(isAsync bool) (ast.Stmt, error) {
	pos := p.cur.Pos
	p.advance() // 'with'
	var items []ast.WithItem
	for {
		ctx, err := p.parseExprNoTuple()
		if err != nil {
			return nil, err
		}
		var target ast.Expr
		if p.atKeyword("as") {
			p.advance()
			target, err = p.parsePrimaryTarget()
			if err != nil {
				return nil, err
			}
		}
		items = append(items, ast.WithItem{Ctx: ctx, Target: target})
		if p.atDelim(",") {
			p.advance()
			continue
		}
		break
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	node := &ast.With{Items: items, Body: body, IsAsync: isAsync}
	node.Pos = pos
	return node, nil
}

func (p *parser) parsePrimaryTarget() (ast.Expr, error) {
	return p.parseTargetExpr()
}

func (p *parser) parseMatch() (ast.Stmt, error) {
	pos := p.cur.Pos
	p.advance() // 'match'
	subject, err := p.parseExprNoTuple()
	if err != nil {
		return nil, err
	}
	if err := p.expectDelim(":"); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.NEWLINE); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.INDENT); err != nil {
		return nil, err
	}
	node := &ast.Match{Subject: subject}
	node.Pos = pos
	for p.atKeyword("case") {
		cpos := p.cur.Pos
		p.advance()
		pattern, err := p.parseExprNoTuple()
		if err != nil {
			return nil, err
		}
		var guard ast.Expr
		if p.atKeyword("if") {
			p.advance()
			guard, err = p.parseExpr()
			if err != nil {
				return nil, err
			}
		}
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		node.Cases = append(node.Cases, ast.MatchCase{Pos: cpos, Pattern: pattern, Guard: guard, Body: body})
	}
	if _, err := p.expect(lexer.DEDENT); err != nil {
		return nil, err
	}
	return node, nil
}

func (p *parser) parseFunctionDef(decorators []ast.Expr, isAsync bool) (ast.Stmt, error) {
	pos := p.cur.Pos
	p.advance() // 'def'
	name, err := p.expect(lexer.IDENT)
	if err != nil {
		return nil, err
	}
	if err := p.expectDelim("("); err != nil {
		return nil, err
	}
	params, err := p.parseParamList(")")
	if err != nil {
		return nil, err
	}
	if err := p.expectDelim(")"); err != nil {
		return nil, err
	}
	var returns ast.Expr
	if p.atOp("->") {
		p.advance()
		returns, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}
	body, isGen, err := p.parseFunctionBody()
	if err != nil {
		return nil, err
	}
	node := &ast.FunctionDef{
		Name: name.Literal, Params: params, Returns: returns, Body: body,
		Decorators: decorators, IsAsync: isAsync, IsGenerator: isGen,
	}
	node.Pos = pos
	return node, nil
}

// parseFunctionBody parses the block and reports whether it contains a
// `yield`/`yield from`, which marks the function as a generator
// (spec.md §4.5's generator/coroutine suspension model).
func (p *parser) parseFunctionBody() ([]ast.Stmt, bool, error) {
	body, err := p.parseBlock()
	if err != nil {
		return nil, false, err
	}
	return body, containsYield(body), nil
}

func containsYield(stmts []ast.Stmt) bool {
	for _, s := range stmts {
		if stmtContainsYield(s) {
			return true
		}
	}
	return false
}

func stmtContainsYield(s ast.Stmt) bool {
	switch n := s.(type) {
	case *ast.Yield:
		return true
	case *ast.ExprStmt:
		return exprContainsYield(n.X)
	case *ast.Assign:
		return exprContainsYield(n.Value)
	case *ast.If:
		return containsYield(n.Body) || containsYield(n.Orelse)
	case *ast.While:
		return containsYield(n.Body) || containsYield(n.Orelse)
	case *ast.For:
		return containsYield(n.Body) || containsYield(n.Orelse)
	case *ast.Try:
		if containsYield(n.Body) || containsYield(n.Orelse) || containsYield(n.Finally) {
			return true
		}
		for _, h := range n.Handlers {
			if containsYield(h.Body) {
				return true
			}
		}
		return false
	case *ast.With:
		return containsYield(n.Body)
	}
	return false
}

func exprContainsYield(e ast.Expr) bool {
	switch e.(type) {
	case *ast.YieldExpr:
		return true
	}
	return false
}

func (p *parser) parseParamList(closing string) ([]ast.Param, error) {
	var params []ast.Param
	keywordOnly := false
	for !p.atDelim(closing) {
		if p.atOp("*") {
			p.advance()
			if p.atDelim(closing) || p.atDelim(",") {
				keywordOnly = true
				if p.atDelim(",") {
					p.advance()
				}
				continue
			}
			t, err := p.expect(lexer.IDENT)
			if err != nil {
				return nil, err
			}
			var annot ast.Expr
			if closing != ":" && p.atDelim(":") {
				p.advance()
				annot, err = p.parseExprNoTuple()
				if err != nil {
					return nil, err
				}
			}
			params = append(params, ast.Param{Name: t.Literal, Annotation: annot, IsVariadic: true})
			keywordOnly = true
		} else if p.atOp("**") {
			p.advance()
			t, err := p.expect(lexer.IDENT)
			if err != nil {
				return nil, err
			}
			params = append(params, ast.Param{Name: t.Literal, IsKwVariadic: true})
		} else {
			t, err := p.expect(lexer.IDENT)
			if err != nil {
				return nil, err
			}
			param := ast.Param{Name: t.Literal, KeywordOnly: keywordOnly}
			// A lambda's parameter list ends at ":", so it has no annotations.
			if closing != ":" && p.atDelim(":") {
				p.advance()
				param.Annotation, err = p.parseExprNoTuple()
				if err != nil {
					return nil, err
				}
			}
			if p.atOp("=") {
				p.advance()
				param.Default, err = p.parseExprNoTuple()
				if err != nil {
					return nil, err
				}
			}
			params = append(params, param)
		}
		if p.atDelim(",") {
			p.advance()
			continue
		}
		break
	}
	return params, nil
}

func (p *parser) parseClassDef(decorators []ast.Expr) (ast.Stmt, error) {
	pos := p.cur.Pos
	p.advance() // 'class'
	name, err := p.expect(lexer.IDENT)
	if err != nil {
		return nil, err
	}
	var bases []ast.Expr
	var keywords []ast.Keyword
	if p.atDelim("(") {
		p.advance()
		for !p.atDelim(")") {
			if p.at(lexer.IDENT) && p.toks.Peek().Kind == lexer.OP && p.toks.Peek().Literal == "=" {
				kt, _ := p.expect(lexer.IDENT)
				p.advance() // '='
				v, err := p.parseExprNoTuple()
				if err != nil {
					return nil, err
				}
				keywords = append(keywords, ast.Keyword{Name: kt.Literal, Value: v})
			} else {
				b, err := p.parseExprNoTuple()
				if err != nil {
					return nil, err
				}
				bases = append(bases, b)
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
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	node := &ast.ClassDef{Name: name.Literal, Bases: bases, Keywords: keywords, Body: body, Decorators: decorators}
	node.Pos = pos
	return node, nil
}

// parseExternBlock parses `extern "libname" { def name(params) -> ret ... }`
// (spec.md §4.3, §4.8).
func (p *parser) parseExternBlock() (ast.Stmt, error) {
	pos := p.cur.Pos
	p.advance() // 'extern'
	libTok, err := p.expect(lexer.STRING)
	if err != nil {
		return nil, err
	}
	if err := p.expectDelim("{"); err != nil {
		return nil, err
	}
	p.skipNewlines()
	node := &ast.ExternBlock{Library: libTok.Literal}
	node.Pos = pos
	for !p.atDelim("}") {
		if err := p.expectKeyword("def"); err != nil {
			return nil, err
		}
		dpos := p.cur.Pos
		nameTok, err := p.expect(lexer.IDENT)
		if err != nil {
			return nil, err
		}
		if err := p.expectDelim("("); err != nil {
			return nil, err
		}
		params, err := p.parseParamList(")")
		if err != nil {
			return nil, err
		}
		if err := p.expectDelim(")"); err != nil {
			return nil, err
		}
		var ret ast.Expr
		if p.atOp("->") {
			p.advance()
			ret, err = p.parseExpr()
			if err != nil {
				return nil, err
			}
		}
		node.Decls = append(node.Decls, ast.ExternDecl{Pos: dpos, Name: nameTok.Literal, Params: params, Returns: ret})
		p.skipNewlines()
	}
	if err := p.expectDelim("}"); err != nil {
		return nil, err
	}
	return node, nil
}
