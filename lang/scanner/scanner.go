// Package scanner implements the tokenizer that turns NewJ source bytes
// into the token stream consumed by the parser.
package scanner

import (
	"fmt"
	"go/scanner"
	"os"

	"github.com/newj-lang/newj/lang/token"
)

type (
	Error     = scanner.Error
	ErrorList = scanner.ErrorList
)

var PrintError = scanner.PrintError

// TokenAndValue combines the token type with the token value type in the same
// struct.
type TokenAndValue struct {
	Token token.Token
	Value token.Value
}

// ScanFiles is a helper function that tokenizes the source files and returns
// the file handles and the list of tokens, grouped by the file at the same
// index, along with any error encountered. The error, if non-nil, is
// guaranteed to be an ErrorList.
func ScanFiles(files ...string) ([]*token.File, [][]TokenAndValue, error) {
	if len(files) == 0 {
		return nil, nil, nil
	}

	var (
		s      Scanner
		tokVal token.Value
		el     ErrorList
	)

	handles := make([]*token.File, len(files))
	tokensByFile := make([][]TokenAndValue, len(files))
	for i, file := range files {
		b, err := os.ReadFile(file)
		if err != nil {
			el.Add(token.Position{Filename: file}, err.Error())
			continue
		}

		handles[i] = token.NewFile(file, len(b))
		s.Init(handles[i], b, el.Add)
		for {
			tok := s.Scan(&tokVal)
			tokensByFile[i] = append(tokensByFile[i], TokenAndValue{
				Token: tok,
				Value: tokVal,
			})
			if tok == token.EOF {
				break
			}
		}
	}
	el.Sort()
	return handles, tokensByFile, el.Err()
}

// Scanner tokenizes source files for the parser to consume.
type Scanner struct {
	// immutable state after Init
	file *token.File // source file handle
	src  []byte
	err  func(pos token.Position, msg string)

	// mutable scanning state
	cur  int // current byte, -1 at end of file
	off  int // offset in bytes of cur
	roff int // reading offset in bytes (position after current byte)
}

// Init initializes the scanner to tokenize a new file. It panics if the file
// size is not the same as the length of the src slice.
func (s *Scanner) Init(file *token.File, src []byte, errHandler func(token.Position, string)) {
	if file.Size() != len(src) {
		panic(fmt.Sprintf("file size (%d) does not match src len (%d)", file.Size(), len(src)))
	}

	s.file = file
	s.src = src
	s.err = errHandler

	s.cur = ' '
	s.off = 0
	s.roff = 0
	s.advance()
}

// read the next byte into s.cur; s.cur < 0 means end-of-file.
func (s *Scanner) advance() {
	if s.roff >= len(s.src) {
		s.off = len(s.src)
		if s.cur == '\n' {
			s.file.AddLine(s.off)
		}
		s.cur = -1
		return
	}

	s.off = s.roff
	if s.cur == '\n' {
		s.file.AddLine(s.off)
	}
	s.cur = int(s.src[s.roff])
	s.roff++
}

func (s *Scanner) error(off int, msg string) {
	if s.err != nil {
		s.err(s.file.Position(s.file.Pos(off)), msg)
	}
}

func (s *Scanner) errorf(off int, format string, args ...any) {
	s.error(off, fmt.Sprintf(format, args...))
}

// advance only if the current byte matches any of the specified ones.
func (s *Scanner) advanceIf(matches ...byte) bool {
	for _, m := range matches {
		if s.cur == int(m) {
			s.advance()
			return true
		}
	}
	return false
}

// Scan returns the next token in the source file.
func (s *Scanner) Scan(tokVal *token.Value) (tok token.Token) {
	s.skipWhitespaceAndComments()

	// current token start
	pos := s.file.Pos(s.off)
	start := s.off

	switch cur := s.cur; {
	case isLetter(cur):
		// keywords and identifiers
		lit := s.ident()
		tok = token.IDENT
		if len(lit) > 1 {
			// keywords are longer than one letter - avoid lookup otherwise
			tok = token.LookupKw(lit)
		}
		*tokVal = token.Value{Raw: lit, Pos: pos}

	case isDigit(cur):
		// integer and float
		tok = s.number(tokVal, pos, start)

	default:
		// keywords, identifiers and numbers are done

		s.advance() // always make progress
		switch cur {
		case '\n':
			tok = token.NEWLINE
			*tokVal = token.Value{Raw: "\n", Pos: pos}

		case '"':
			tok = token.STRING
			lit, val := s.shortString()
			*tokVal = token.Value{Raw: lit, Pos: pos, String: val}

		case '(', ')', ',', '{', '}', ':', ';', '/':
			// unambiguous single-byte punctuation
			tok = token.LookupPunct(string(byte(cur)))
			*tokVal = token.Value{Raw: tok.String(), Pos: pos}

		case '+', '-', '*', '=':
			// single-byte operators that can be followed by '=' and nothing else
			if s.advanceIf('=') {
				tok = token.LookupPunct(string(s.src[start:s.off]))
			} else {
				tok = token.LookupPunct(string(byte(cur)))
			}
			*tokVal = token.Value{Raw: tok.String(), Pos: pos}

		case '<', '>':
			// can be followed by the same or by '='
			s.advanceIf(byte(cur), '=')
			tok = token.LookupPunct(string(s.src[start:s.off]))
			*tokVal = token.Value{Raw: tok.String(), Pos: pos}

		case '|', '&':
			// doubled form is the boolean operator, single is the bitwise one
			s.advanceIf(byte(cur))
			tok = token.LookupPunct(string(s.src[start:s.off]))
			*tokVal = token.Value{Raw: tok.String(), Pos: pos}

		case '!':
			// only valid when followed by '='
			if s.advanceIf('=') {
				tok = token.NEQ
				*tokVal = token.Value{Raw: tok.String(), Pos: pos}
				break
			}
			s.error(start, "illegal character '!'")
			tok = token.ILLEGAL
			*tokVal = token.Value{Raw: "!", Pos: pos}

		case -1:
			tok = token.EOF
			*tokVal = token.Value{Raw: "", Pos: pos}

		default:
			s.errorf(start, "illegal character %#U", rune(cur))
			tok = token.ILLEGAL
			*tokVal = token.Value{Raw: string(byte(cur)), Pos: pos}
		}
	}
	return tok
}

func (s *Scanner) ident() string {
	start := s.off
	for isLetter(s.cur) || isDigit(s.cur) {
		s.advance()
	}
	return string(s.src[start:s.off])
}

// skip spaces, tabs, carriage returns and comments; newlines are tokens and
// are left for Scan. A comment runs from '#' to the end of the line.
func (s *Scanner) skipWhitespaceAndComments() {
	for {
		switch s.cur {
		case ' ', '\t', '\r':
			s.advance()
		case '#':
			for s.cur != '\n' && s.cur != -1 {
				s.advance()
			}
		default:
			return
		}
	}
}

func isLetter(c int) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}

func isDigit(c int) bool {
	return '0' <= c && c <= '9'
}
