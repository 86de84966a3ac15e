package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yusee-Programmer/tauraro-sub008/internal/ast"
)

func parseOK(t *testing.T, src string) *ast.Module {
	t.Helper()
	mod, err := Parse("<test>", []byte(src))
	require.NoError(t, err)
	require.NotNil(t, mod)
	return mod
}

func TestParseFunctionDefWithDefaultsAndAnnotations(t *testing.T) {
	mod := parseOK(t, "def add(a: int, b: int = 1) -> int:\n    return a + b\n")
	require.Len(t, mod.Body, 1)
	fn, ok := mod.Body[0].(*ast.FunctionDef)
	require.True(t, ok)
	assert.Equal(t, "add", fn.Name)
	require.Len(t, fn.Params, 2)
	assert.Equal(t, "a", fn.Params[0].Name)
	assert.Equal(t, "b", fn.Params[1].Name)
	require.NotNil(t, fn.Params[1].Default)
	require.NotNil(t, fn.Returns)
	require.Len(t, fn.Body, 1)
	ret, ok := fn.Body[0].(*ast.Return)
	require.True(t, ok)
	bin, ok := ret.Value.(*ast.BinOpExpr)
	require.True(t, ok)
	assert.Equal(t, "+", bin.Op)
}

func TestParseIfElifElse(t *testing.T) {
	mod := parseOK(t, "if a:\n    x = 1\nelif b:\n    x = 2\nelse:\n    x = 3\n")
	ifNode, ok := mod.Body[0].(*ast.If)
	require.True(t, ok)
	require.Len(t, ifNode.Orelse, 1)
	elif, ok := ifNode.Orelse[0].(*ast.If)
	require.True(t, ok)
	require.Len(t, elif.Orelse, 1)
}

func TestParseForLoopInKeywordDoesNotSwallowTarget(t *testing.T) {
	mod := parseOK(t, "for x in range(10):\n    pass\n")
	forNode, ok := mod.Body[0].(*ast.For)
	require.True(t, ok)
	name, ok := forNode.Target.(*ast.NameExpr)
	require.True(t, ok)
	assert.Equal(t, "x", name.Id)
	call, ok := forNode.Iter.(*ast.CallExpr)
	require.True(t, ok)
	fn, ok := call.Func.(*ast.NameExpr)
	require.True(t, ok)
	assert.Equal(t, "range", fn.Id)
}

func TestParseTryExceptFinally(t *testing.T) {
	mod := parseOK(t, "try:\n    x = 1\nexcept ValueError as e:\n    pass\nfinally:\n    y = 2\n")
	tryNode, ok := mod.Body[0].(*ast.Try)
	require.True(t, ok)
	require.Len(t, tryNode.Handlers, 1)
	assert.Equal(t, "e", tryNode.Handlers[0].Name)
	require.NotNil(t, tryNode.Handlers[0].Type)
	require.Len(t, tryNode.Finally, 1)
}

func TestParseClassDefWithBases(t *testing.T) {
	mod := parseOK(t, "class D(B, C):\n    pass\n")
	cls, ok := mod.Body[0].(*ast.ClassDef)
	require.True(t, ok)
	assert.Equal(t, "D", cls.Name)
	require.Len(t, cls.Bases, 2)
}

func TestParseLambdaAndComprehensions(t *testing.T) {
	mod := parseOK(t, "f = lambda x: x * 2\nsq = [x * x for x in range(5) if x % 2 == 0]\n")
	assign, ok := mod.Body[0].(*ast.Assign)
	require.True(t, ok)
	_, ok = assign.Value.(*ast.LambdaExpr)
	require.True(t, ok)

	assign2, ok := mod.Body[1].(*ast.Assign)
	require.True(t, ok)
	comp, ok := assign2.Value.(*ast.ListCompExpr)
	require.True(t, ok)
	require.Len(t, comp.Generators, 1)
	require.Len(t, comp.Generators[0].Ifs, 1)
}

func TestParseWalrus(t *testing.T) {
	mod := parseOK(t, "if (n := 10) > 5:\n    pass\n")
	ifNode, ok := mod.Body[0].(*ast.If)
	require.True(t, ok)
	cmp, ok := ifNode.Test.(*ast.CompareExpr)
	require.True(t, ok)
	named, ok := cmp.Left.(*ast.NamedExpr)
	require.True(t, ok)
	assert.Equal(t, "n", named.Target.Id)
}

func TestParseFStringNestedSubscript(t *testing.T) {
	mod := parseOK(t, "x = f\"{u['name']} is {u['age']}\"\n")
	assign, ok := mod.Body[0].(*ast.Assign)
	require.True(t, ok)
	fstr, ok := assign.Value.(*ast.FStringExpr)
	require.True(t, ok)
	require.Len(t, fstr.Exprs, 2)
	sub, ok := fstr.Exprs[0].(*ast.SubscriptExpr)
	require.True(t, ok)
	str, ok := sub.Index.(*ast.StringExpr)
	require.True(t, ok)
	assert.Equal(t, "name", str.Value)
}

func TestParseWithStatement(t *testing.T) {
	mod := parseOK(t, "with open(\"f\") as fh:\n    pass\n")
	w, ok := mod.Body[0].(*ast.With)
	require.True(t, ok)
	require.Len(t, w.Items, 1)
	name, ok := w.Items[0].Target.(*ast.NameExpr)
	require.True(t, ok)
	assert.Equal(t, "fh", name.Id)
}

func TestParseExternBlock(t *testing.T) {
	mod := parseOK(t, "extern \"libm.so\" {\n    def sqrt(x: float) -> float\n}\n")
	ext, ok := mod.Body[0].(*ast.ExternBlock)
	require.True(t, ok)
	assert.Equal(t, "libm.so", ext.Library)
	require.Len(t, ext.Decls, 1)
	assert.Equal(t, "sqrt", ext.Decls[0].Name)
}

func TestParseChainedComparisonAndSlicing(t *testing.T) {
	mod := parseOK(t, "ok = 1 < x < 10\npart = xs[1:10:2]\n")
	a1, _ := mod.Body[0].(*ast.Assign)
	cmp, ok := a1.Value.(*ast.CompareExpr)
	require.True(t, ok)
	assert.Equal(t, []string{"<", "<"}, cmp.Ops)

	a2, _ := mod.Body[1].(*ast.Assign)
	sub, ok := a2.Value.(*ast.SubscriptExpr)
	require.True(t, ok)
	sl, ok := sub.Index.(*ast.SliceExpr)
	require.True(t, ok)
	require.NotNil(t, sl.Lower)
	require.NotNil(t, sl.Upper)
	require.NotNil(t, sl.Step)
}

func TestParseDictAndSetLiterals(t *testing.T) {
	mod := parseOK(t, "d = {'a': 1, **extra}\ns = {1, 2, 3}\n")
	a1, _ := mod.Body[0].(*ast.Assign)
	d, ok := a1.Value.(*ast.DictExpr)
	require.True(t, ok)
	require.Len(t, d.Keys, 2)
	assert.Nil(t, d.Keys[1])

	a2, _ := mod.Body[1].(*ast.Assign)
	_, ok = a2.Value.(*ast.SetExpr)
	require.True(t, ok)
}

func TestParseReportsSingleErrorAndHalts(t *testing.T) {
	_, err := Parse("<test>", []byte("def (:\n"))
	require.Error(t, err)
	_, ok := err.(*ParseError)
	assert.True(t, ok)
}
