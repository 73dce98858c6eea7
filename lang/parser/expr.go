package parser

import (
	"github.com/newj-lang/newj/lang/ast"
	"github.com/newj-lang/newj/lang/token"
)

// Binary operator priorities for precedence climbing; all NewJ binary
// operators are left-associative. A call suffix binds tighter than any
// binary operator.
var binopPriority = [...]int{
	token.OROR: 1, token.ANDAND: 1, token.OR: 1,
	token.EQL: 12, token.NEQ: 12,
	token.PIPE: 14,
	token.LT:   15, token.LE: 15, token.GT: 15, token.GE: 15,
	token.AMPERSAND: 16,
	token.LTLT:      18, token.GTGT: 18,
	token.PLUS: 20, token.MINUS: 20,
	token.STAR: 22, token.SLASH: 22,
}

func (p *parser) parseExpr() ast.Expr {
	return p.parseSubExpr(0)
}

// parses a SubExpr where the binary operator has a priority higher than the
// provided priority (for precedence climbing).
func (p *parser) parseSubExpr(priority int) ast.Expr {
	left := p.parseSuffixedExpr()

	for p.tok.IsBinop() && binopPriority[p.tok] > priority {
		var bin ast.BinOpExpr
		bin.Left = left
		bin.Op = p.tok
		bin.OpPos = p.expect(p.tok)
		bin.Right = p.parseSubExpr(binopPriority[bin.Op])
		left = &bin
	}

	return left
}

// parseSuffixedExpr parses a primary expression followed by any number of
// call suffixes: when a '(' follows the current expression, that expression
// becomes the callee of a call.
func (p *parser) parseSuffixedExpr() ast.Expr {
	primary := p.parsePrimaryExpr()
	for p.tok == token.LPAREN {
		primary = p.parseCallExpr(primary)
	}
	return primary
}

func (p *parser) parsePrimaryExpr() ast.Expr {
	switch p.tok {
	case token.INT, token.FLOAT, token.STRING, token.IDENT:
		lit := &ast.LiteralExpr{Tok: p.tok, Val: p.val}
		p.advance()
		return lit

	case token.LPAREN:
		p.expect(token.LPAREN)
		expr := p.parseExpr()
		p.expect(token.RPAREN)
		return expr

	default:
		p.errorExpected(p.val.Pos, "expression")
		panic(errPanicMode)
	}
}

func (p *parser) parseCallExpr(fn ast.Expr) *ast.CallExpr {
	var expr ast.CallExpr
	expr.Fn = fn
	expr.Lparen = p.expect(token.LPAREN)
	if p.tok != token.RPAREN {
		expr.Args = append(expr.Args, p.parseExpr())
		for p.tok == token.COMMA {
			expr.Commas = append(expr.Commas, p.expect(token.COMMA))
			expr.Args = append(expr.Args, p.parseExpr())
		}
	}
	expr.Rparen = p.expect(token.RPAREN)
	return &expr
}
