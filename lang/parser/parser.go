// Package parser implements the parser that transforms NewJ source code
// into an abstract syntax tree (AST).
package parser

import (
	"errors"
	"os"
	"strings"

	"github.com/newj-lang/newj/lang/ast"
	"github.com/newj-lang/newj/lang/scanner"
	"github.com/newj-lang/newj/lang/token"
)

// ParseFiles is a helper function that parses the source files and returns
// the file handles along with the ASTs and any error encountered. The error,
// if non-nil, is guaranteed to be a scanner.ErrorList.
func ParseFiles(files ...string) ([]*token.File, []*ast.Program, error) {
	if len(files) == 0 {
		return nil, nil, nil
	}

	var p parser

	handles := make([]*token.File, len(files))
	res := make([]*ast.Program, 0, len(files))
	for i, file := range files {
		b, err := os.ReadFile(file)
		if err != nil {
			p.errors.Add(token.Position{Filename: file}, err.Error())
			continue
		}

		handles[i] = p.init(file, b)
		prog := p.parseProgram()
		prog.Name = file
		res = append(res, prog)
	}
	p.errors.Sort()
	return handles, res, p.errors.Err()
}

// ParseProgram is a helper function that parses a single program from a
// slice of bytes and returns the AST, the file handle for position
// reporting under the specified filename, and any error encountered. The
// error, if non-nil, is guaranteed to be a scanner.ErrorList.
func ParseProgram(filename string, src []byte) (*ast.Program, *token.File, error) {
	var p parser
	file := p.init(filename, src)
	prog := p.parseProgram()
	prog.Name = filename
	return prog, file, p.errors.Err()
}

// parser parses source files and generates an AST.
type parser struct {
	// those fields are immutable after p.init
	scanner scanner.Scanner
	errors  scanner.ErrorList
	file    *token.File

	// current token
	tok token.Token
	val token.Value
}

func (p *parser) init(filename string, src []byte) *token.File {
	p.file = token.NewFile(filename, len(src))
	p.scanner.Init(p.file, src, p.errors.Add)

	// advance to first token
	p.advance()
	return p.file
}

func (p *parser) advance() {
	p.tok = p.scanner.Scan(&p.val)
}

// skipSeparators consumes any run of newline and semicolon tokens.
// Consecutive separators collapse; blank lines before a statement are
// silently consumed.
func (p *parser) skipSeparators() {
	for p.tok == token.NEWLINE || p.tok == token.SEMICOLON {
		p.advance()
	}
}

var errPanicMode = errors.New("panic")

// expect returns the position of the current token and consumes it if it is
// one of the expected tokens, otherwise it reports an error and panics with
// errPanicMode which gets recovered at the statement level, resulting in a
// BadStmt.
func (p *parser) expect(toks ...token.Token) token.Pos {
	pos := p.val.Pos

	var buf strings.Builder
	var ok bool
	for i, tok := range toks {
		if p.tok == tok {
			ok = true
			break
		}
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(tok.GoString())
	}

	if !ok {
		var lbl string
		if len(toks) > 1 {
			lbl = "one of " + buf.String()
		} else {
			lbl = buf.String()
		}
		p.errorExpected(pos, lbl)
		panic(errPanicMode)
	}

	p.advance()
	return pos
}

func (p *parser) error(pos token.Pos, msg string) {
	lpos := p.file.Position(pos)
	p.errors.Add(lpos, msg)
}

func (p *parser) errorExpected(pos token.Pos, msg string) {
	msg = "expected " + msg
	if pos == p.val.Pos {
		// the error happened at the current position;
		// make the error message more specific
		switch lit := p.tok.Literal(p.val); lit {
		case "":
			msg += ", found " + p.tok.GoString()
		default:
			// print 123 rather than 'INT', etc.
			msg += ", found " + lit
		}
	}
	p.error(pos, msg)
}

// syncAfterError advances to the next statement boundary: just past a
// newline or semicolon, or at a closing brace or EOF. It returns the
// position reached, used as the end of the BadStmt covering the interval.
func (p *parser) syncAfterError() token.Pos {
	for {
		switch p.tok {
		case token.NEWLINE, token.SEMICOLON:
			p.advance()
			return p.val.Pos
		case token.RBRACE, token.EOF:
			return p.val.Pos
		}
		p.advance()
	}
}

func tokenIn(t token.Token, toks ...token.Token) bool {
	for _, tok := range toks {
		if t == tok {
			return true
		}
	}
	return false
}
