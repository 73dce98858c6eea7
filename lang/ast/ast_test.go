package ast_test

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/newj-lang/newj/lang/ast"
	"github.com/newj-lang/newj/lang/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ident(name string, line, col int) *ast.LiteralExpr {
	return &ast.LiteralExpr{
		Tok: token.IDENT,
		Val: token.Value{Raw: name, Pos: token.MakePos(line, col)},
	}
}

func TestProgramAddItem(t *testing.T) {
	var prog ast.Program

	fn := &ast.FuncDecl{
		Func: token.MakePos(1, 1),
		Name: &ast.TypedIdent{Name: "f", Start: token.MakePos(1, 6)},
		Body: &ast.Block{Lbrace: token.MakePos(1, 10), Rbrace: token.MakePos(1, 11)},
	}
	require.True(t, prog.AddItem(fn))
	assert.Equal(t, fn, prog.Find("f"))

	dup := &ast.FuncDecl{
		Func: token.MakePos(2, 1),
		Name: &ast.TypedIdent{Name: "f", Start: token.MakePos(2, 6)},
		Body: &ast.Block{Lbrace: token.MakePos(2, 10), Rbrace: token.MakePos(2, 11)},
	}
	assert.False(t, prog.AddItem(dup))
	assert.Len(t, prog.Items, 1)
	assert.Equal(t, fn, prog.Find("f"))
}

func TestIsAssignable(t *testing.T) {
	assert.True(t, ast.IsAssignable(ident("x", 1, 1)))
	assert.False(t, ast.IsAssignable(&ast.LiteralExpr{Tok: token.INT, Val: token.Value{Raw: "1"}}))
	assert.False(t, ast.IsAssignable(&ast.BinOpExpr{
		Left: ident("x", 1, 1), Op: token.PLUS, Right: ident("y", 1, 5),
	}))
}

func TestIsValidStmt(t *testing.T) {
	call := &ast.CallExpr{Fn: ident("f", 1, 1), Lparen: token.MakePos(1, 2), Rparen: token.MakePos(1, 3)}
	assert.True(t, ast.IsValidStmt(call))
	assert.False(t, ast.IsValidStmt(ident("f", 1, 1)))
}

func TestVarDeclKind(t *testing.T) {
	cases := []struct {
		tok    token.Token
		global bool
		want   ast.DeclKind
	}{
		{token.LET, false, ast.DeclLet},
		{token.CONST, false, ast.DeclConstLocal},
		{token.CONST, true, ast.DeclConstGlobal},
	}
	for _, c := range cases {
		t.Run(c.want.String(), func(t *testing.T) {
			decl := ast.VarDecl{DeclTok: c.tok, Global: c.global}
			assert.Equal(t, c.want, decl.Kind())
		})
	}
}

func TestSpans(t *testing.T) {
	// x + foo on line 1, cols 1, 3, 5
	bin := &ast.BinOpExpr{
		Left:  ident("x", 1, 1),
		Op:    token.PLUS,
		OpPos: token.MakePos(1, 3),
		Right: ident("foo", 1, 5),
	}
	start, end := bin.Span()
	assert.Equal(t, token.MakePos(1, 1), start)
	assert.Equal(t, token.MakePos(1, 8), end)

	ret := &ast.ReturnStmt{Return: token.MakePos(2, 1)}
	start, end = ret.Span()
	assert.Equal(t, token.MakePos(2, 1), start)
	assert.Equal(t, token.MakePos(2, 7), end)
}

func TestNodeFormat(t *testing.T) {
	bin := &ast.BinOpExpr{Left: ident("x", 1, 1), Op: token.PLUS, Right: ident("y", 1, 5)}
	assert.Equal(t, "binop +", fmt.Sprintf("%v", bin))
	assert.Equal(t, "bino", fmt.Sprintf("%4v", bin))
	assert.Equal(t, "  binop +", fmt.Sprintf("%9v", bin))
	assert.Equal(t, "binop +  ", fmt.Sprintf("%-9v", bin))

	call := &ast.CallExpr{Fn: ident("f", 1, 1), Args: []ast.Expr{ident("x", 1, 3)}}
	assert.Equal(t, "call {args=1}", fmt.Sprintf("%#v", call))
}

func TestPrinter(t *testing.T) {
	block := &ast.Block{
		Lbrace: token.MakePos(1, 10),
		Stmts: []ast.Stmt{
			&ast.ReturnStmt{Return: token.MakePos(1, 12), Value: ident("x", 1, 19)},
		},
		Rbrace: token.MakePos(1, 21),
	}

	var buf bytes.Buffer
	p := ast.Printer{Output: &buf}
	require.NoError(t, p.Print(block, nil))
	assert.Equal(t, "block\n. return\n. . identifier x\n", buf.String())
}
