package scanner

// shortString scans a double-quoted string literal. The opening quote has
// already been consumed. Backslash escapes are kept verbatim in the value;
// the only escape the scanner itself interprets is '\"', which does not
// terminate the literal. An unterminated string reports an error and yields
// everything up to the end of file.
func (s *Scanner) shortString() (lit, val string) {
	start := s.off - 1 // include the opening quote

	for {
		switch s.cur {
		case -1:
			s.error(start, "unterminated string literal")
			return string(s.src[start:s.off]), string(s.src[start+1 : s.off])
		case '\\':
			s.advance()
			if s.cur != -1 {
				s.advance() // the escaped byte, possibly '"'
			}
		case '"':
			s.advance()
			return string(s.src[start:s.off]), string(s.src[start+1 : s.off-1])
		default:
			s.advance()
		}
	}
}
