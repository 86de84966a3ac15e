package parser

import (
	"fmt"

	"github.com/Yusee-Programmer/tauraro-sub008/internal/ast"
	"github.com/Yusee-Programmer/tauraro-sub008/internal/lexer"
)

// ParseError is the single error a parse run reports (spec.md §4.3:
// "the parser reports one error and halts").
type ParseError struct {
	Pos lexer.Position
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: SyntaxError: %s", e.Pos, e.Msg)
}

type parser struct {
	file string
	toks *lexer.TokenStream
	cur  lexer.Token
}

// Parse lexes and parses src, returning the resulting *ast.Module.
func Parse(name string, src []byte) (*ast.Module, error) {
	toks, err := lexer.Lex(name, src)
	if err != nil {
		return nil, err
	}
	p := &parser{file: name, toks: toks}
	p.cur = p.toks.Next()
	return p.parseModule()
}

func (p *parser) errorf(format string, args ...interface{}) error {
	return &ParseError{Pos: p.cur.Pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) advance() lexer.Token {
	t := p.cur
	p.cur = p.toks.Next()
	return t
}

func (p *parser) at(k lexer.Kind) bool { return p.cur.Kind == k }

func (p *parser) atKeyword(word string) bool {
	return p.cur.Kind == lexer.KEYWORD && p.cur.Literal == word
}

func (p *parser) atOp(lit string) bool {
	return p.cur.Kind == lexer.OP && p.cur.Literal == lit
}

func (p *parser) atDelim(lit string) bool {
	return p.cur.Kind == lexer.DELIM && p.cur.Literal == lit
}

func (p *parser) expect(k lexer.Kind) (lexer.Token, error) {
	if !p.at(k) {
		return lexer.Token{}, p.errorf("expected %s, got %s", k, p.cur.Kind)
	}
	return p.advance(), nil
}

func (p *parser) expectKeyword(word string) error {
	if !p.atKeyword(word) {
		return p.errorf("expected keyword %q, got %q", word, p.cur.Literal)
	}
	p.advance()
	return nil
}

func (p *parser) expectDelim(lit string) error {
	if !p.atDelim(lit) {
		return p.errorf("expected %q, got %q", lit, p.cur.Literal)
	}
	p.advance()
	return nil
}

func (p *parser) expectOp(lit string) error {
	if !p.atOp(lit) {
		return p.errorf("expected %q, got %q", lit, p.cur.Literal)
	}
	p.advance()
	return nil
}

// skipNewlines consumes zero or more NEWLINE tokens (blank logical
// lines between statements).
func (p *parser) skipNewlines() {
	for p.at(lexer.NEWLINE) {
		p.advance()
	}
}

func (p *parser) parseModule() (*ast.Module, error) {
	mod := &ast.Module{}
	p.skipNewlines()
	for !p.at(lexer.EOF) {
		stmts, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		mod.Body = append(mod.Body, stmts...)
		p.skipNewlines()
	}
	return mod, nil
}

// parseBlock parses `: NEWLINE INDENT stmt+ DEDENT`.
func (p *parser) parseBlock() ([]ast.Stmt, error) {
	if err := p.expectDelim(":"); err != nil {
		return nil, err
	}
	if p.at(lexer.NEWLINE) {
		p.advance()
		if _, err := p.expect(lexer.INDENT); err != nil {
			return nil, err
		}
		var body []ast.Stmt
		for !p.at(lexer.DEDENT) {
			stmts, err := p.parseStatement()
			if err != nil {
				return nil, err
			}
			body = append(body, stmts...)
			p.skipNewlines()
		}
		p.advance() // DEDENT
		return body, nil
	}
	// single-line suite: `if x: y = 1`
	return p.parseSimpleStatementLine()
}
