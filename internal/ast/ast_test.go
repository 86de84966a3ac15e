package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNodesImplementStmtAndExprMarkerInterfaces(t *testing.T) {
	var _ Stmt = &Assign{}
	var _ Stmt = &If{}
	var _ Stmt = &FunctionDef{}
	var _ Stmt = &ExternBlock{}
	var _ Expr = &BinOpExpr{}
	var _ Expr = &FStringExpr{}
	var _ Expr = &ListCompExpr{}
	assert.True(t, true)
}

func TestPositionIsCarriedThroughBase(t *testing.T) {
	n := &NameExpr{base: base{Pos: Pos{Line: 3, Col: 5, File: "x.tr"}}, Id: "x"}
	assert.Equal(t, 3, n.Position().Line)
	assert.Equal(t, 5, n.Position().Col)
}
