package parser

import (
	"github.com/newj-lang/newj/lang/ast"
	"github.com/newj-lang/newj/lang/token"
)

func (p *parser) parseProgram() *ast.Program {
	var prog ast.Program
	for {
		p.skipSeparators()
		if p.tok == token.EOF {
			break
		}
		before := p.val.Pos
		item := p.parseTopLevel()
		if item == nil {
			// a discarded item, errors already reported; always make
			// progress when synchronization stopped on the offending token
			if p.val.Pos == before && p.tok != token.EOF {
				p.advance()
			}
			continue
		}
		if !prog.AddItem(item) {
			start, _ := item.Span()
			p.error(start, "top-level item "+item.Identifier()+" already exists")
		}
	}
	prog.EOF = p.val.Pos
	return &prog
}

// returns nil for a top-level item to discard after a parse error; the
// parser has then synchronized to the next statement boundary.
func (p *parser) parseTopLevel() (item ast.TopLevel) {
	defer func() {
		if err := recover(); err != nil {
			if err == errPanicMode {
				p.syncAfterError()
				item = nil
				return
			}
			panic(err)
		}
	}()

	switch p.tok {
	case token.FUNC:
		return p.parseFuncDecl()
	case token.CONST:
		return p.parseVarDecl(true)
	case token.STRUCT:
		return p.parseStructDecl()
	default:
		p.errorExpected(p.val.Pos, "top-level item")
		panic(errPanicMode)
	}
}

func (p *parser) parseFuncDecl() *ast.FuncDecl {
	var fn ast.FuncDecl
	fn.Func = p.expect(token.FUNC)
	fn.Name = p.parseIdent()

	if p.tok == token.LPAREN {
		fn.Lparen = p.expect(token.LPAREN)
		for p.tok != token.RPAREN {
			fn.Params = append(fn.Params, p.parseParam())
			if p.tok != token.COMMA {
				break
			}
			fn.Commas = append(fn.Commas, p.expect(token.COMMA))
		}
		fn.Rparen = p.expect(token.RPAREN)
	}

	if p.tok == token.COLON {
		// the explicit return type is carried by the name identifier
		fn.Name.Colon = p.expect(token.COLON)
		fn.Name.Type, fn.Name.TypeLit, fn.Name.TypePos = p.parseTypeTok()
	}

	fn.Body = p.parseStmt()
	return &fn
}

func (p *parser) parseStructDecl() *ast.StructDecl {
	var st ast.StructDecl
	st.Struct = p.expect(token.STRUCT)
	st.Name = p.val.Raw
	st.NamePos = p.expect(token.IDENT)
	st.Lbrace = p.expect(token.LBRACE)
	for {
		p.skipSeparators()
		if tokenIn(p.tok, token.RBRACE, token.EOF) {
			break
		}
		st.Fields = append(st.Fields, p.parseParam())
	}
	st.Rbrace = p.expect(token.RBRACE)
	return &st
}

func (p *parser) parseVarDecl(global bool) *ast.VarDecl {
	var decl ast.VarDecl
	decl.Global = global
	decl.DeclTok = p.tok
	if global {
		decl.DeclStart = p.expect(token.CONST)
	} else {
		decl.DeclStart = p.expect(token.LET, token.CONST)
	}

	decl.Name = p.parseIdent()
	if p.tok == token.COLON {
		decl.Name.Colon = p.expect(token.COLON)
		decl.Name.Type, decl.Name.TypeLit, decl.Name.TypePos = p.parseTypeTok()
	}

	decl.Assign = p.expect(token.EQ)
	decl.Value = p.parseExpr()
	return &decl
}

func (p *parser) parseIdent() *ast.TypedIdent {
	var id ast.TypedIdent
	id.Name = p.val.Raw
	id.Start = p.expect(token.IDENT)
	return &id
}

func (p *parser) parseParam() *ast.Param {
	var param ast.Param
	param.Name = p.val.Raw
	param.Start = p.expect(token.IDENT)
	param.Colon = p.expect(token.COLON)
	param.Type, param.TypeLit, param.TypePos = p.parseTypeTok()
	return &param
}

// parseTypeTok consumes a type token: a builtin type keyword or a user
// identifier.
func (p *parser) parseTypeTok() (token.Token, string, token.Pos) {
	if !p.tok.IsType() {
		p.errorExpected(p.val.Pos, "type")
		panic(errPanicMode)
	}
	tok, lit := p.tok, p.val.Raw
	pos := p.expect(p.tok)
	return tok, lit, pos
}

// parses a single statement; after a syntax error it synchronizes to the
// next statement boundary and returns a BadStmt covering the interval.
func (p *parser) parseStmt() (stmt ast.Stmt) {
	start := p.val.Pos

	defer func() {
		if err := recover(); err != nil {
			if err == errPanicMode {
				// synchronize to the next statement boundary and generate a
				// BadStmt for the interval.
				stmt = &ast.BadStmt{
					Start: start,
					End:   p.syncAfterError(),
				}
				return
			}
			panic(err)
		}
	}()

	switch p.tok {
	case token.LBRACE:
		return p.parseBlock()

	case token.IF:
		return p.parseIfStmt()

	case token.WHILE:
		return p.parseWhileStmt()

	case token.RETURN:
		return p.parseReturnStmt()

	case token.LET, token.CONST:
		return p.parseVarDecl(false)

	default:
		// can only be a func call or an assignment statement
		return p.parseExprOrAssignStmt()
	}
}

func (p *parser) parseBlock() *ast.Block {
	var block ast.Block
	block.Lbrace = p.expect(token.LBRACE)
	for {
		p.skipSeparators()
		if tokenIn(p.tok, token.RBRACE, token.EOF) {
			break
		}
		if stmt := p.parseStmt(); stmt != nil {
			block.Stmts = append(block.Stmts, stmt)
		}
	}
	block.Rbrace = p.expect(token.RBRACE)
	return &block
}

func (p *parser) parseIfStmt() *ast.IfStmt {
	var stmt ast.IfStmt
	stmt.If = p.expect(token.IF)
	stmt.Lparen = p.expect(token.LPAREN)
	stmt.Cond = p.parseExpr()
	stmt.Rparen = p.expect(token.RPAREN)
	stmt.Then = p.parseStmt()

	if p.tok == token.ELSE {
		stmt.Else = p.expect(token.ELSE)
		if p.tok == token.IF {
			stmt.False = p.parseIfStmt()
		} else {
			stmt.False = p.parseBlock()
		}
	}
	return &stmt
}

func (p *parser) parseWhileStmt() *ast.WhileStmt {
	var stmt ast.WhileStmt
	stmt.While = p.expect(token.WHILE)
	stmt.Lparen = p.expect(token.LPAREN)
	stmt.Cond = p.parseExpr()
	stmt.Rparen = p.expect(token.RPAREN)
	stmt.Body = p.parseStmt()
	return &stmt
}

func (p *parser) parseReturnStmt() *ast.ReturnStmt {
	var stmt ast.ReturnStmt
	stmt.Return = p.expect(token.RETURN)
	if maybeExprStart(p.tok) {
		stmt.Value = p.parseExpr()
	}
	return &stmt
}

func maybeExprStart(tok token.Token) bool {
	return tokenIn(tok, token.INT, token.FLOAT, token.STRING, token.IDENT, token.LPAREN)
}

func (p *parser) parseExprOrAssignStmt() ast.Stmt {
	start := p.val.Pos
	expr := p.parseExpr()

	switch {
	case p.tok == token.EQ || p.tok.IsAugBinop():
		if !ast.IsAssignable(expr) {
			pos, _ := expr.Span()
			p.errorExpected(pos, "assignable expression")
			panic(errPanicMode)
		}
		var stmt ast.AssignStmt
		stmt.Dest = expr
		stmt.AssignTok = p.tok
		stmt.AssignPos = p.expect(p.tok)
		stmt.Value = p.parseExpr()
		return &stmt

	default:
		if !ast.IsValidStmt(expr) {
			p.errorExpected(start, "function call")
			_, end := expr.Span()
			return &ast.BadStmt{Start: start, End: end}
		}
		return &ast.ExprStmt{Expr: expr}
	}
}
