package token

import gotoken "go/token"

const (
	lineBits = 18
	colBits  = 32 - lineBits

	// MaxLines is the maximum 1-based line number value that can be encoded in
	// Pos.
	MaxLines = (1 << lineBits) - 1
	// MaxCols is the maximum 1-based column number value that can be encoded in
	// Pos.
	MaxCols = (1 << colBits) - 1

	lineMask = MaxLines
	colMask  = MaxCols
)

// Pos is an efficient encoding of a 1-based line and column position in a
// 32-bit unsigned integer. A value of 0 for either line or column should be
// interpreted as "unknown".
type Pos uint32

// MakePos creates a Pos value encoding the provided line and col. It is the
// caller's responsibility to ensure the values are > 0 and <= the maximum
// allowed.
func MakePos(line, col int) Pos {
	return Pos(col<<lineBits | line)
}

// LineCol returns the line and column values encoded in Pos.
func (p Pos) LineCol() (int, int) {
	l := p & lineMask
	c := (p >> lineBits) & colMask
	return int(l), int(c)
}

// Add returns the position n columns after p, on the same line. It is used
// to compute the end position of tokens, which never span lines.
func (p Pos) Add(n int) Pos {
	l, c := p.LineCol()
	return MakePos(l, c+n)
}

// IsValid returns true if both the line and column values are known.
func (p Pos) IsValid() bool {
	l, c := p.LineCol()
	return l > 0 && c > 0
}

// Position is a full position description, compatible with the go/scanner
// error machinery that the diagnostics sink is built on.
type Position = gotoken.Position

// PosMode controls how positions are rendered in phase dumps.
type PosMode int

// List of supported position rendering modes.
const (
	PosNone    PosMode = iota // no positions
	PosLineCol                // line:col
	PosLong                   // file:line:col
)

// FormatPos renders the position of pos in the provided file according to
// mode. The withFile argument forces the filename even for PosLineCol.
func FormatPos(mode PosMode, file *File, pos Pos, withFile bool) string {
	if mode == PosNone || file == nil {
		return ""
	}
	lpos := file.Position(pos)
	if mode == PosLineCol && !withFile {
		lpos.Filename = ""
	}
	return lpos.String()
}
