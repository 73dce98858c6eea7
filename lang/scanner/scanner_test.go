package scanner_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/newj-lang/newj/lang/scanner"
	"github.com/newj-lang/newj/lang/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scanAll(t *testing.T, src string) ([]scanner.TokenAndValue, error) {
	t.Helper()

	var (
		s   scanner.Scanner
		el  scanner.ErrorList
		val token.Value
	)
	file := token.NewFile("test.nj", len(src))
	s.Init(file, []byte(src), el.Add)

	var toks []scanner.TokenAndValue
	for {
		tok := s.Scan(&val)
		toks = append(toks, scanner.TokenAndValue{Token: tok, Value: val})
		if tok == token.EOF {
			break
		}
	}
	return toks, el.Err()
}

func kinds(toks []scanner.TokenAndValue) []token.Token {
	res := make([]token.Token, len(toks))
	for i, tv := range toks {
		res[i] = tv.Token
	}
	return res
}

func TestScanKinds(t *testing.T) {
	cases := []struct {
		desc string
		src  string
		want []token.Token
	}{
		{"empty", "", []token.Token{token.EOF}},
		{"ident", "abc", []token.Token{token.IDENT, token.EOF}},
		{"keyword case-insensitive", "FUNC While", []token.Token{token.FUNC, token.WHILE, token.EOF}},
		{"ret alias", "ret", []token.Token{token.RETURN, token.EOF}},
		{"single letter ident", "x", []token.Token{token.IDENT, token.EOF}},
		{"decl", "let i: int32 = 0", []token.Token{
			token.LET, token.IDENT, token.COLON, token.INT32, token.EQ, token.INT, token.EOF,
		}},
		{"compound ops", "== <= >= << >> || && += -= *= !=", []token.Token{
			token.EQL, token.LE, token.GE, token.LTLT, token.GTGT, token.OROR,
			token.ANDAND, token.PLUSEQ, token.MINUSEQ, token.STAREQ, token.NEQ, token.EOF,
		}},
		{"single ops", "+ - * / | & < > =", []token.Token{
			token.PLUS, token.MINUS, token.STAR, token.SLASH, token.PIPE,
			token.AMPERSAND, token.LT, token.GT, token.EQ, token.EOF,
		}},
		{"newline separators", "a\nb", []token.Token{
			token.IDENT, token.NEWLINE, token.IDENT, token.EOF,
		}},
		{"semicolons", "a;b", []token.Token{
			token.IDENT, token.SEMICOLON, token.IDENT, token.EOF,
		}},
		{"comment to eol", "a # comment == ignored\nb", []token.Token{
			token.IDENT, token.NEWLINE, token.IDENT, token.EOF,
		}},
		{"call", "f(1, 2)", []token.Token{
			token.IDENT, token.LPAREN, token.INT, token.COMMA, token.INT, token.RPAREN, token.EOF,
		}},
		{"string", `"hello"`, []token.Token{token.STRING, token.EOF}},
		{"float", "1.25", []token.Token{token.FLOAT, token.EOF}},
	}
	for _, c := range cases {
		t.Run(c.desc, func(t *testing.T) {
			toks, err := scanAll(t, c.src)
			require.NoError(t, err)
			assert.Equal(t, c.want, kinds(toks))
		})
	}
}

func TestScanValues(t *testing.T) {
	toks, err := scanAll(t, `123 0x7B 0b1111011 1.5 "a\"b" name`)
	require.NoError(t, err)
	require.Len(t, toks, 7)

	assert.Equal(t, token.INT, toks[0].Token)
	assert.Equal(t, int64(123), toks[0].Value.Int)
	assert.Equal(t, "123", toks[0].Value.Raw)

	assert.Equal(t, token.INT, toks[1].Token)
	assert.Equal(t, int64(123), toks[1].Value.Int)
	assert.Equal(t, "0x7B", toks[1].Value.Raw)

	assert.Equal(t, token.INT, toks[2].Token)
	assert.Equal(t, int64(123), toks[2].Value.Int)

	assert.Equal(t, token.FLOAT, toks[3].Token)
	assert.Equal(t, 1.5, toks[3].Value.Float)

	assert.Equal(t, token.STRING, toks[4].Token)
	assert.Equal(t, `"a\"b"`, toks[4].Value.Raw)
	assert.Equal(t, `a\"b`, toks[4].Value.String)

	assert.Equal(t, token.IDENT, toks[5].Token)
	assert.Equal(t, "name", toks[5].Value.Raw)
}

func TestScanErrors(t *testing.T) {
	cases := []struct {
		desc string
		src  string
		want string // error "contains" this string
	}{
		{"unterminated string", `"abc`, "unterminated string literal"},
		{"lone bang", "!x", "illegal character '!'"},
		{"unknown byte", "a @ b", "illegal character"},
		{"int out of range", "99999999999999999999", "integer literal value out of range"},
		{"invalid hex", "0x", "invalid hexadecimal literal"},
		{"invalid binary", "0b", "invalid binary literal"},
	}
	for _, c := range cases {
		t.Run(c.desc, func(t *testing.T) {
			_, err := scanAll(t, c.src)
			require.Error(t, err)
			assert.Contains(t, err.Error(), c.want)
		})
	}
}

// The concatenation of each token's source slice, in order, yields the
// original source modulo stripped whitespace and comments.
func TestRoundTrip(t *testing.T) {
	sources := []string{
		"func main() { return }",
		"func add(a: int32, b: int32): int32 { return a + b }",
		"let i: int32 = 0\nwhile (i < 10) { i += 1 }",
		"const K: int64 = 2 + 3",
		`print("hello")`,
		"x = 0x1F | 0b101 << 2",
	}
	for _, src := range sources {
		t.Run(src, func(t *testing.T) {
			toks, err := scanAll(t, src)
			require.NoError(t, err)

			var sb strings.Builder
			for _, tv := range toks {
				sb.WriteString(tv.Value.Raw)
			}
			assert.Equal(t, stripSpace(src), stripSpace(sb.String()))
		})
	}
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r':
			return -1
		}
		return r
	}, s)
}

func TestScanFiles(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "main.nj")
	require.NoError(t, os.WriteFile(file, []byte("func main() { return }"), 0600))

	handles, toks, err := scanner.ScanFiles(file)
	require.NoError(t, err)
	require.Len(t, handles, 1)
	require.Len(t, toks, 1)
	assert.Equal(t, file, handles[0].Name())
	assert.Equal(t, token.FUNC, toks[0][0].Token)
	assert.Equal(t, token.EOF, toks[0][len(toks[0])-1].Token)
}
