package token

import "sort"

// File is the handle of a single source file. It records the byte offset of
// each line start as the scanner discovers them, so that byte offsets can be
// translated to compact Pos values and back to full Positions.
type File struct {
	name  string
	size  int
	lines []int // byte offset of each line start; lines[0] is always 0
}

// NewFile creates the handle for a source file of the given name and size in
// bytes.
func NewFile(name string, size int) *File {
	return &File{name: name, size: size, lines: []int{0}}
}

// Name returns the file name provided to NewFile.
func (f *File) Name() string { return f.name }

// Size returns the size in bytes provided to NewFile.
func (f *File) Size() int { return f.size }

// AddLine records the byte offset of a new line start. Offsets must be added
// in increasing order; smaller or equal offsets are ignored.
func (f *File) AddLine(offset int) {
	if last := f.lines[len(f.lines)-1]; offset > last && offset < f.size {
		f.lines = append(f.lines, offset)
	}
}

// Pos translates a byte offset into a compact Pos value. Only lines already
// recorded via AddLine are considered, which is always the case when called
// with the scanner's current offset.
func (f *File) Pos(offset int) Pos {
	line := sort.SearchInts(f.lines, offset+1) // index of first line start > offset
	col := offset - f.lines[line-1] + 1
	if line > MaxLines || col > MaxCols {
		return Pos(0)
	}
	return MakePos(line, col)
}

// Position translates a compact Pos value into a full Position, including
// the byte offset when the line is known.
func (f *File) Position(pos Pos) Position {
	line, col := pos.LineCol()
	lpos := Position{Filename: f.name, Line: line, Column: col}
	if line >= 1 && line <= len(f.lines) {
		lpos.Offset = f.lines[line-1] + col - 1
	}
	return lpos
}
