package bytecode

import (
	"fmt"

	"github.com/newj-lang/newj/lang/ir"
	"github.com/newj-lang/newj/lang/token"
)

// Fixed layout addresses of the VISA machine.
const (
	PCStart   uint64 = 0x80000000 // base address of the text segment
	DataStart uint64 = 0x8C000000 // base address of the data segment
)

// Fixed roles of the 64-register file.
const (
	zeroReg      uint8 = 0  // hardware zero
	scratchStart uint8 = 1  // scratch / syscall args: 1-9
	retStart     uint8 = 10 // return-value registers: 10-12
	paramStart   uint8 = 13 // parameter passing: 13-19
	tempStart    uint8 = 20 // caller-allocated temporaries: 20-60
	tempEnd      uint8 = 61 // first register past the temporaries
	spReg        uint8 = 61 // stack pointer
	fpReg        uint8 = 62 // frame pointer
	raReg        uint8 = 63 // return address

	maxParams = int(tempStart - paramStart) // 7
)

// Fixup is a pending patch to an instruction whose target label address was
// not yet known when the instruction was emitted. Absolute fixups patch the
// single-immediate slot of a jump; relative fixups patch the 32-bit
// immediate field with a PC-relative word offset.
type Fixup struct {
	Label    string
	Absolute bool
}

// Program is an in-memory VISA image: the data segment, the text segment as
// a list of 64-bit operations, the label table and the pending-fixup table.
// After FromIR completes, the pending-fixup table is empty unless a label
// could not be resolved, which FromIR diagnoses.
type Program struct {
	Data   []byte
	Text   []Operation
	Labels map[string]uint64 // label to absolute byte address
	Fixups map[uint64]Fixup  // pending, keyed by instruction byte address

	textEnd uint64 // next instruction address
	errh    func(token.Position, string)
}

// Empty returns a valid image with no data and no text, written for
// programs that have no main function.
func Empty() *Program {
	return &Program{
		Labels:  make(map[string]uint64),
		Fixups:  make(map[uint64]Fixup),
		textEnd: PCStart,
	}
}

// FromIR generates a VISA program from the IR program. It returns nil when
// the input has no main function. Diagnostics are reported through errh and
// never abort generation; the resulting image may be incomplete when
// diagnostics were emitted.
func FromIR(input *ir.Program, errh func(token.Position, string)) *Program {
	if input == nil || input.LookupFunction("main") == nil {
		return nil
	}

	p := &Program{
		Labels:  make(map[string]uint64),
		Fixups:  make(map[uint64]Fixup),
		textEnd: PCStart,
		errh:    errh,
	}
	for _, fn := range input.Funcs {
		p.generate(fn)
	}
	if n := len(p.Fixups); n > 0 {
		p.errorf("%d label references could not be resolved", n)
	}
	return p
}

func (p *Program) errorf(format string, args ...any) {
	if p.errh != nil {
		p.errh(token.Position{}, fmt.Sprintf(format, args...))
	}
}

func (p *Program) emit(op Operation) {
	p.Text = append(p.Text, op)
	p.textEnd += 8
}

// appendData appends the string plus a trailing NUL to the data segment and
// returns the absolute address of its first byte.
func (p *Program) appendData(s string) uint64 {
	addr := DataStart + uint64(len(p.Data))
	p.Data = append(p.Data, s...)
	p.Data = append(p.Data, 0)
	return addr
}

// assignLabel publishes a label at the current text offset and drains any
// pending fixups that reference it.
func (p *Program) assignLabel(label string) {
	loc := p.textEnd
	p.Labels[label] = loc

	for addr, fx := range p.Fixups {
		if fx.Label != label {
			continue
		}
		op := &p.Text[(addr-PCStart)/8]
		if fx.Absolute {
			op.Data = Imm54(loc >> 3)
		} else {
			data := op.Data.(RegImm)
			data.Imm = relativeWords(loc, addr)
			op.Data = data
		}
		delete(p.Fixups, addr)
	}
}

// readLabel returns the immediate encoding of a label reference for the
// instruction at instAddr: the word-indexed absolute target, or the
// PC-relative word offset. A reference to a not-yet-defined label enqueues
// a fixup and returns 0 as placeholder.
func (p *Program) readLabel(label string, absolute bool, instAddr uint64) uint64 {
	loc, ok := p.Labels[label]
	if !ok {
		p.Fixups[instAddr] = Fixup{Label: label, Absolute: absolute}
		return 0
	}
	if absolute {
		return loc >> 3
	}
	return uint64(relativeWords(loc, instAddr))
}

// relativeWords computes the PC-relative word offset from the instruction
// at instAddr to the target address.
func relativeWords(target, instAddr uint64) uint32 {
	return uint32(int32((int64(target) - int64(instAddr+8)) >> 3))
}
