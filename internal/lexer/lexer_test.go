package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kinds(toks []Token) []Kind {
	out := make([]Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func collect(t *testing.T, src string) []Token {
	t.Helper()
	s, err := Lex("<test>", []byte(src))
	require.NoError(t, err)
	var toks []Token
	for {
		tok := s.Next()
		toks = append(toks, tok)
		if tok.Kind == EOF {
			break
		}
	}
	return toks
}

func TestIndentationBasic(t *testing.T) {
	src := "if x:\n    y = 1\n    z = 2\nw = 3\n"
	toks := collect(t, src)
	ks := kinds(toks)
	assert.Contains(t, ks, INDENT)
	assert.Contains(t, ks, DEDENT)

	var sawIndentAtDepth1, sawDedent bool
	for i, k := range ks {
		if k == INDENT {
			sawIndentAtDepth1 = true
		}
		if k == DEDENT {
			sawDedent = true
			_ = i
		}
	}
	assert.True(t, sawIndentAtDepth1)
	assert.True(t, sawDedent)
}

func TestBlankAndCommentLinesDoNotAffectIndent(t *testing.T) {
	src := "if x:\n    y = 1\n\n    # a comment\n    z = 2\n"
	toks := collect(t, src)
	indents := 0
	for _, k := range kinds(toks) {
		if k == INDENT {
			indents++
		}
	}
	assert.Equal(t, 1, indents)
}

func TestImplicitLineJoiningInsideBrackets(t *testing.T) {
	src := "x = (1 +\n     2)\n"
	toks := collect(t, src)
	newlineCount := 0
	for _, tok := range toks {
		if tok.Kind == NEWLINE {
			newlineCount++
		}
	}
	assert.Equal(t, 1, newlineCount)
}

func TestBackslashLineJoining(t *testing.T) {
	src := "x = 1 + \\\n    2\n"
	toks := collect(t, src)
	newlineCount := 0
	for _, tok := range toks {
		if tok.Kind == NEWLINE {
			newlineCount++
		}
	}
	assert.Equal(t, 1, newlineCount)
}

func TestKeywordVsIdentifier(t *testing.T) {
	toks := collect(t, "def foo():\n    pass\n")
	require.GreaterOrEqual(t, len(toks), 3)
	assert.Equal(t, KEYWORD, toks[0].Kind)
	assert.Equal(t, "def", toks[0].Literal)
	assert.Equal(t, IDENT, toks[1].Kind)
	assert.Equal(t, "foo", toks[1].Literal)
}

func TestHausaAliasResolvesToCanonicalKeyword(t *testing.T) {
	toks := collect(t, "idan x:\n    wuce\n")
	assert.Equal(t, KEYWORD, toks[0].Kind)
	assert.Equal(t, "if", toks[0].Literal)
}

func TestNumericLiterals(t *testing.T) {
	toks := collect(t, "0x1F 0o17 0b101 1_000 3.14 2e10\n")
	require.True(t, len(toks) >= 6)
	assert.Equal(t, INT, toks[0].Kind)
	assert.Equal(t, int64(31), toks[0].IntVal)
	assert.Equal(t, INT, toks[1].Kind)
	assert.Equal(t, int64(15), toks[1].IntVal)
	assert.Equal(t, INT, toks[2].Kind)
	assert.Equal(t, int64(5), toks[2].IntVal)
	assert.Equal(t, INT, toks[3].Kind)
	assert.Equal(t, int64(1000), toks[3].IntVal)
	assert.Equal(t, FLOAT, toks[4].Kind)
	assert.Equal(t, FLOAT, toks[5].Kind)
}

func TestStringLiteralEscapesAndRaw(t *testing.T) {
	toks := collect(t, `"a\nb" r"a\nb"` + "\n")
	require.True(t, len(toks) >= 2)
	assert.Equal(t, STRING, toks[0].Kind)
	assert.Equal(t, "a\nb", toks[0].Literal)
	assert.Equal(t, STRING, toks[1].Kind)
	assert.True(t, toks[1].IsRaw)
	assert.Equal(t, `a\nb`, toks[1].Literal)
}

func TestReservedKeywordAsIdentifierFails(t *testing.T) {
	// "class" used where an identifier is expected still lexes as
	// KEYWORD; it is the parser's job to reject it there. The lexer
	// contract only guarantees the canonical spelling comes back.
	toks := collect(t, "class\n")
	assert.Equal(t, KEYWORD, toks[0].Kind)
	assert.Equal(t, "class", toks[0].Literal)
}

func TestFStringNestedSubscript(t *testing.T) {
	src := "f\"{u['name']} is {u['age']}\"\n"
	toks := collect(t, src)
	ks := kinds(toks)
	assert.Equal(t, FSTRING_START, ks[0])

	var exprs []string
	for _, tok := range toks {
		if tok.Kind == FSTRING_EXPR_START {
			exprs = append(exprs, tok.Literal)
		}
	}
	require.Len(t, exprs, 2)
	assert.Equal(t, "u['name']", exprs[0])
	assert.Equal(t, "u['age']", exprs[1])

	var sawEnd bool
	for _, k := range ks {
		if k == FSTRING_END {
			sawEnd = true
		}
	}
	assert.True(t, sawEnd)
}

func TestFStringDoubledBraceIsLiteral(t *testing.T) {
	toks := collect(t, `f"{{literal}}"` + "\n")
	var mids []string
	for _, tok := range toks {
		if tok.Kind == FSTRING_MIDDLE {
			mids = append(mids, tok.Literal)
		}
	}
	require.Len(t, mids, 1)
	assert.Equal(t, "{literal}", mids[0])
}

func TestOperatorMaximalMunch(t *testing.T) {
	toks := collect(t, "a **= b // c\n")
	assert.Equal(t, "**=", toks[1].Literal)
	assert.Equal(t, "//", toks[3].Literal)
}

func TestUnterminatedStringIsSyntaxError(t *testing.T) {
	_, err := Lex("<test>", []byte("x = \"abc\n"))
	require.Error(t, err)
	se, ok := err.(*SyntaxError)
	require.True(t, ok)
	assert.Equal(t, "SyntaxError", se.Kind)
}

func TestUnindentMismatchIsIndentationError(t *testing.T) {
	src := "if x:\n    if y:\n        z = 1\n  w = 2\n"
	_, err := Lex("<test>", []byte(src))
	require.Error(t, err)
	se, ok := err.(*SyntaxError)
	require.True(t, ok)
	assert.Equal(t, "IndentationError", se.Kind)
}
