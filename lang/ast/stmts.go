package ast

import (
	"fmt"

	"github.com/newj-lang/newj/lang/token"
)

type (
	// BadStmt represents a bad statement that failed to parse.
	BadStmt struct {
		Start token.Pos
		End   token.Pos
	}

	// Block represents a braced block of statements.
	Block struct {
		Lbrace token.Pos
		Stmts  []Stmt
		Rbrace token.Pos
	}

	// IfStmt represents an if statement with an optional else branch. The
	// else branch, when present, is either a *Block or another *IfStmt
	// (else-if chain).
	IfStmt struct {
		If     token.Pos
		Lparen token.Pos
		Cond   Expr
		Rparen token.Pos
		Then   Stmt      // typically a *Block
		Else   token.Pos // 0 if no else branch
		False  Stmt      // nil, *Block or *IfStmt
	}

	// WhileStmt represents a while loop.
	WhileStmt struct {
		While  token.Pos
		Lparen token.Pos
		Cond   Expr
		Rparen token.Pos
		Body   Stmt // typically a *Block
	}

	// ReturnStmt represents a return statement with an optional value.
	ReturnStmt struct {
		Return token.Pos
		Value  Expr // may be nil
	}

	// ExprStmt represents an expression used as statement, which is only
	// valid for function calls.
	ExprStmt struct {
		Expr Expr
	}

	// AssignStmt represents a plain or compound assignment statement. For
	// compound assignments, AssignTok is the augmented operator (+=, -=, *=).
	AssignStmt struct {
		Dest      Expr // guaranteed to be an identifier *LiteralExpr
		AssignTok token.Token
		AssignPos token.Pos
		Value     Expr
	}
)

func (n *BadStmt) BlockEnding() bool { return false }
func (n *BadStmt) Format(f fmt.State, verb rune) {
	format(f, verb, n, "bad stmt", nil)
}
func (n *BadStmt) Span() (start, end token.Pos) { return n.Start, n.End }
func (n *BadStmt) Walk(_ Visitor)               {}

func (n *Block) BlockEnding() bool { return false }
func (n *Block) Format(f fmt.State, verb rune) {
	format(f, verb, n, "block", map[string]int{"stmts": len(n.Stmts)})
}
func (n *Block) Span() (start, end token.Pos) { return n.Lbrace, n.Rbrace.Add(1) }
func (n *Block) Walk(v Visitor) {
	for _, s := range n.Stmts {
		Walk(v, s)
	}
}

func (n *IfStmt) BlockEnding() bool { return false }
func (n *IfStmt) Format(f fmt.State, verb rune) {
	lbl := "if"
	if n.False != nil {
		lbl += "/else"
	}
	format(f, verb, n, lbl, nil)
}
func (n *IfStmt) Span() (start, end token.Pos) {
	if n.False != nil {
		_, end = n.False.Span()
	} else {
		_, end = n.Then.Span()
	}
	return n.If, end
}
func (n *IfStmt) Walk(v Visitor) {
	Walk(v, n.Cond)
	Walk(v, n.Then)
	if n.False != nil {
		Walk(v, n.False)
	}
}

func (n *WhileStmt) BlockEnding() bool { return false }
func (n *WhileStmt) Format(f fmt.State, verb rune) {
	format(f, verb, n, "while", nil)
}
func (n *WhileStmt) Span() (start, end token.Pos) {
	_, end = n.Body.Span()
	return n.While, end
}
func (n *WhileStmt) Walk(v Visitor) {
	Walk(v, n.Cond)
	Walk(v, n.Body)
}

func (n *ReturnStmt) BlockEnding() bool { return true }
func (n *ReturnStmt) Format(f fmt.State, verb rune) {
	format(f, verb, n, "return", nil)
}
func (n *ReturnStmt) Span() (start, end token.Pos) {
	// the span starts at the return token even when a value is present
	if n.Value != nil {
		_, end = n.Value.Span()
		return n.Return, end
	}
	return n.Return, n.Return.Add(len("return"))
}
func (n *ReturnStmt) Walk(v Visitor) {
	if n.Value != nil {
		Walk(v, n.Value)
	}
}

func (n *ExprStmt) BlockEnding() bool { return false }
func (n *ExprStmt) Format(f fmt.State, verb rune) {
	format(f, verb, n, "expr stmt", nil)
}
func (n *ExprStmt) Span() (start, end token.Pos) { return n.Expr.Span() }
func (n *ExprStmt) Walk(v Visitor)               { Walk(v, n.Expr) }

func (n *AssignStmt) BlockEnding() bool { return false }
func (n *AssignStmt) Format(f fmt.State, verb rune) {
	format(f, verb, n, "assign "+n.AssignTok.String(), nil)
}
func (n *AssignStmt) Span() (start, end token.Pos) {
	start, _ = n.Dest.Span()
	_, end = n.Value.Span()
	return start, end
}
func (n *AssignStmt) Walk(v Visitor) {
	Walk(v, n.Dest)
	Walk(v, n.Value)
}
