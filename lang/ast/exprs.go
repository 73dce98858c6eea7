package ast

import (
	"fmt"

	"github.com/newj-lang/newj/lang/token"
)

// IsAssignable returns true if e can be assigned to, which is only the case
// for identifier expressions.
func IsAssignable(e Expr) bool {
	lit, ok := e.(*LiteralExpr)
	return ok && lit.Tok == token.IDENT
}

// IsValidStmt returns true if e is a valid ExprStmt expression. Only
// function calls are valid statements.
func IsValidStmt(e Expr) bool {
	_, ok := e.(*CallExpr)
	return ok
}

type (
	// BadExpr represents a bad expression that failed to parse.
	BadExpr struct {
		Start token.Pos
		End   token.Pos
	}

	// LiteralExpr represents a literal or a variable reference, the
	// "literal-or-variable" production: an integer, float or string literal,
	// or an identifier.
	LiteralExpr struct {
		Tok token.Token // INT, FLOAT, STRING or IDENT
		Val token.Value
	}

	// BinOpExpr represents a binary expression, e.g. x + y.
	BinOpExpr struct {
		Left  Expr
		Op    token.Token
		OpPos token.Pos
		Right Expr
	}

	// CallExpr represents a function call, e.g. f(x, y). The end position is
	// that of the closing parenthesis.
	CallExpr struct {
		Fn     Expr
		Lparen token.Pos
		Args   []Expr
		Commas []token.Pos // len(Args)-1
		Rparen token.Pos
	}
)

func (n *BadExpr) expr() {}
func (n *BadExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, "bad expr", nil)
}
func (n *BadExpr) Span() (start, end token.Pos) { return n.Start, n.End }
func (n *BadExpr) Walk(_ Visitor)               {}

func (n *LiteralExpr) expr() {}
func (n *LiteralExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, n.Tok.String()+" "+n.Val.Raw, nil)
}
func (n *LiteralExpr) Span() (start, end token.Pos) {
	return n.Val.Pos, n.Val.Pos.Add(len(n.Val.Raw))
}
func (n *LiteralExpr) Walk(_ Visitor) {}

func (n *BinOpExpr) expr() {}
func (n *BinOpExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, "binop "+n.Op.String(), nil)
}
func (n *BinOpExpr) Span() (start, end token.Pos) {
	start, _ = n.Left.Span()
	_, end = n.Right.Span()
	return start, end
}
func (n *BinOpExpr) Walk(v Visitor) {
	Walk(v, n.Left)
	Walk(v, n.Right)
}

func (n *CallExpr) expr() {}
func (n *CallExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, "call", map[string]int{"args": len(n.Args)})
}
func (n *CallExpr) Span() (start, end token.Pos) {
	start, _ = n.Fn.Span()
	return start, n.Rparen.Add(1)
}
func (n *CallExpr) Walk(v Visitor) {
	Walk(v, n.Fn)
	for _, a := range n.Args {
		Walk(v, a)
	}
}
