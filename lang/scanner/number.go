package scanner

import (
	"errors"
	"strconv"

	"github.com/newj-lang/newj/lang/token"
)

// number scans an integer or float literal. Integers may be decimal, "0x"
// hexadecimal or "0b" binary; floats are <digits>.<digits>.
func (s *Scanner) number(tokVal *token.Value, pos token.Pos, start int) token.Token {
	base := 10

	if s.cur == '0' {
		s.advance()
		switch s.cur {
		case 'x', 'X':
			base = 16
			s.advance()
			n := 0
			for isHexDigit(s.cur) {
				s.advance()
				n++
			}
			if n == 0 {
				s.error(start, "invalid hexadecimal literal")
			}
			return s.intValue(tokVal, pos, start, base)
		case 'b', 'B':
			base = 2
			s.advance()
			n := 0
			for s.cur == '0' || s.cur == '1' {
				s.advance()
				n++
			}
			if n == 0 {
				s.error(start, "invalid binary literal")
			}
			return s.intValue(tokVal, pos, start, base)
		}
	}

	for isDigit(s.cur) {
		s.advance()
	}

	if s.cur == '.' {
		s.advance()
		for isDigit(s.cur) {
			s.advance()
		}
		lit := string(s.src[start:s.off])
		v, err := strconv.ParseFloat(lit, 64)
		if err != nil && errors.Is(err, strconv.ErrRange) {
			s.error(start, "float literal value out of range")
		}
		*tokVal = token.Value{Raw: lit, Pos: pos, Float: v}
		return token.FLOAT
	}
	return s.intValue(tokVal, pos, start, base)
}

func (s *Scanner) intValue(tokVal *token.Value, pos token.Pos, start, base int) token.Token {
	lit := string(s.src[start:s.off])
	digits := lit
	if base != 10 && len(lit) > 2 {
		digits = lit[2:] // strip the 0x/0b prefix
	}
	v, err := strconv.ParseInt(digits, base, 64)
	if err != nil && errors.Is(err, strconv.ErrRange) {
		// syntax errors would have already generated an error, but not range
		s.error(start, "integer literal value out of range")
	}
	*tokVal = token.Value{Raw: lit, Pos: pos, Int: v}
	return token.INT
}

func isHexDigit(c int) bool {
	return isDigit(c) || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}
