package bytecode

import (
	"encoding/binary"
	"io"
	"math"
	"os"
)

// The on-disk image layout:
//
//	+0 : magic bytes 0x7E 'N' 'J'
//	+3 : u32 little-endian header-table length
//	+7 : header table: {name: 6 bytes incl. NUL, u32 offset, u32 length}+
//	     ".data" entry appears iff the data segment is non-empty,
//	     ".text" always
//	+… : data bytes
//	+… : text: concatenation of the 64-bit operations, little-endian
var magic = [3]byte{0x7E, 'N', 'J'}

const headerEntrySize = 6 + 4 + 4

type headerEntry struct {
	name   string // at most 5 bytes, NUL-padded to 6
	offset uint32
	length uint32
}

// WriteFile serializes the image to the named file.
func (p *Program) WriteFile(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := p.Write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Write serializes the in-memory image to w.
func (p *Program) Write(w io.Writer) error {
	var entries []headerEntry
	if len(p.Data) > 0 {
		entries = append(entries, headerEntry{name: ".data"})
	}
	entries = append(entries, headerEntry{name: ".text"})

	headerLen := len(entries) * headerEntrySize
	if uint64(headerLen) > math.MaxUint32 {
		p.errorf("header table too long: %d bytes", headerLen)
	}

	// segment locations are known once the header length is: back-patch the
	// entries before writing them out
	offset := len(magic) + 4 + headerLen
	for i := range entries {
		var length int
		switch entries[i].name {
		case ".data":
			length = len(p.Data)
		case ".text":
			length = len(p.Text) * 8
		}
		if uint64(length) > math.MaxUint32 {
			p.errorf("segment %s exceeds the maximum length: %d bytes", entries[i].name, length)
		}
		entries[i].offset = uint32(offset)
		entries[i].length = uint32(length)
		offset += length
	}

	buf := make([]byte, 0, offset)
	buf = append(buf, magic[:]...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(headerLen))
	for _, e := range entries {
		var name [6]byte
		copy(name[:], e.name)
		buf = append(buf, name[:]...)
		buf = binary.LittleEndian.AppendUint32(buf, e.offset)
		buf = binary.LittleEndian.AppendUint32(buf, e.length)
	}
	buf = append(buf, p.Data...)
	for _, op := range p.Text {
		buf = binary.LittleEndian.AppendUint64(buf, op.Encode())
	}

	_, err := w.Write(buf)
	return err
}
