package bytecode

import (
	"math"

	"github.com/newj-lang/newj/lang/ir"
)

func (g *funcGen) emitInstr(ins *ir.Instr, n int) {
	switch ins.Op {
	case ir.Add, ir.Sub:
		g.emitAddSub(ins)
	case ir.Mul:
		g.emitMul(ins)
	case ir.BitOr:
		g.emitBitOr(ins)
	case ir.ShiftLeft, ir.ShiftRight:
		g.emitShift(ins)
	case ir.Assign:
		g.emitAssign(ins)
	case ir.Eq, ir.Ne, ir.Lt, ir.Le, ir.Gt, ir.Ge:
		// comparisons emit nothing on their own, they are consumed when the
		// dependent branch is lowered
	case ir.Phi:
		// the phi operands were coalesced to a single register during
		// planning, no code is needed
	case ir.Branch:
		g.emitBranch(ins)
	case ir.Call:
		g.emitCall(ins, n)
	case ir.Ret:
		g.emitRet(ins)
	case ir.Halt:
		g.p.emit(Operation{Code: SYSCALL, Data: RegImm{Imm: 5}})
	default:
		g.p.errorf("instruction %s cannot be translated to bytecode", ins)
	}
}

// immVal returns the integer value of an immediate operand.
func (g *funcGen) immVal(o ir.Operand) int64 {
	switch v := o.Data.(type) {
	case int64:
		return v
	case bool:
		if v {
			return 1
		}
		return 0
	default:
		g.p.errorf("operand %s has no integer value", o)
		return 0
	}
}

// loadLiteral loads a 64-bit value into dest: a single ori when the value
// fits in 32 bits, a lui+ori pair otherwise.
func (g *funcGen) loadLiteral(dest uint8, val uint64) {
	if val > math.MaxUint32 {
		g.load64(dest, val)
		return
	}
	g.p.emit(Operation{Code: ORI, Data: RegImm{Regs: [2]uint8{dest, 0}, Imm: uint32(val)}})
}

// load64 loads a full 64-bit value into dest via a lui+ori pair.
func (g *funcGen) load64(dest uint8, val uint64) {
	g.p.emit(Operation{Code: LUI, Data: RegImm{Regs: [2]uint8{dest, 0}, Imm: uint32(val >> 32)}})
	g.p.emit(Operation{Code: ORI, Data: RegImm{Regs: [2]uint8{dest, dest}, Imm: uint32(val)}})
}

// signedImm32 checks that v fits the 32-bit immediate field as a signed
// value and returns its two's complement encoding.
func (g *funcGen) signedImm32(v int64) uint32 {
	if v < math.MinInt32 || v > math.MaxInt32 {
		g.p.errorf("value %d overflows the 32-bit immediate field", v)
	}
	return uint32(int32(v))
}

// unsignedImm32 checks that v fits the 32-bit immediate field.
func (g *funcGen) unsignedImm32(v int64) uint32 {
	if v < 0 || v > math.MaxUint32 {
		g.p.errorf("value %d overflows the 32-bit immediate field", v)
	}
	return uint32(v)
}

func (g *funcGen) emitAddSub(ins *ir.Instr) {
	res, _ := ins.Result()
	dest := g.regOf(res)
	lhs, rhs := ins.Operands[1], ins.Operands[2]

	code := ADD
	if ins.Op == ir.Sub {
		code = SUB
	}

	switch {
	case lhs.Immediate && rhs.Immediate:
		l, r := g.immVal(lhs), g.immVal(rhs)
		var v int64
		if ins.Op == ir.Add {
			if (r > 0 && l > math.MaxInt64-r) || (r < 0 && l < math.MinInt64-r) {
				g.p.errorf("detected integer overflow of %d + %d", l, r)
			}
			v = l + r
		} else {
			if (r < 0 && l > math.MaxInt64+r) || (r > 0 && l < math.MinInt64+r) {
				g.p.errorf("detected integer overflow of %d - %d", l, r)
			}
			v = l - r
		}
		g.loadLiteral(dest, uint64(v))

	case lhs.Immediate:
		if ins.Op == ir.Add {
			g.p.emit(Operation{Code: ADDI, Data: RegImm{
				Regs: [2]uint8{dest, g.regOf(rhs)},
				Imm:  g.signedImm32(g.immVal(lhs)),
			}})
			return
		}
		// prime a scratch register with the constant so that an aliased
		// destination is not clobbered before the subtract reads it
		g.loadLiteral(scratchStart, uint64(g.immVal(lhs)))
		g.p.emit(Operation{Code: code, Data: ThreeReg{dest, scratchStart, g.regOf(rhs)}})

	case rhs.Immediate:
		imm := g.immVal(rhs)
		if ins.Op == ir.Sub {
			// subtracting a constant is an addi of the negated value
			imm = -imm
		}
		g.p.emit(Operation{Code: ADDI, Data: RegImm{
			Regs: [2]uint8{dest, g.regOf(lhs)},
			Imm:  g.signedImm32(imm),
		}})

	default:
		g.p.emit(Operation{Code: code, Data: ThreeReg{dest, g.regOf(lhs), g.regOf(rhs)}})
	}
}

func (g *funcGen) emitMul(ins *ir.Instr) {
	res, _ := ins.Result()
	lhs, rhs := ins.Operands[1], ins.Operands[2]
	if lhs.Immediate || rhs.Immediate {
		g.p.errorf("unsupported mul variant: %s", ins)
		return
	}
	g.p.emit(Operation{Code: MUL, Data: ThreeReg{g.regOf(res), g.regOf(lhs), g.regOf(rhs)}})
}

func (g *funcGen) emitBitOr(ins *ir.Instr) {
	res, _ := ins.Result()
	dest := g.regOf(res)
	lhs, rhs := ins.Operands[1], ins.Operands[2]

	switch {
	case lhs.Immediate && rhs.Immediate:
		g.loadLiteral(dest, uint64(g.immVal(lhs))|uint64(g.immVal(rhs)))
	case rhs.Immediate:
		g.p.emit(Operation{Code: ORI, Data: RegImm{
			Regs: [2]uint8{dest, g.regOf(lhs)},
			Imm:  g.unsignedImm32(g.immVal(rhs)),
		}})
	case lhs.Immediate:
		g.p.emit(Operation{Code: ORI, Data: RegImm{
			Regs: [2]uint8{dest, g.regOf(rhs)},
			Imm:  g.unsignedImm32(g.immVal(lhs)),
		}})
	default:
		g.p.emit(Operation{Code: OR, Data: ThreeReg{dest, g.regOf(lhs), g.regOf(rhs)}})
	}
}

func (g *funcGen) emitShift(ins *ir.Instr) {
	res, _ := ins.Result()
	dest := g.regOf(res)
	lhs, rhs := ins.Operands[1], ins.Operands[2]

	if lhs.Immediate {
		g.p.errorf("cannot use %s as the left-hand side of a shift", lhs)
		return
	}

	if rhs.Immediate {
		code := SLI
		if ins.Op == ir.ShiftRight {
			code = SRI
		}
		g.p.emit(Operation{Code: code, Data: RegImm{
			Regs: [2]uint8{dest, g.regOf(lhs)},
			Imm:  g.unsignedImm32(g.immVal(rhs)),
		}})
		return
	}

	code := SL
	if ins.Op == ir.ShiftRight {
		code = SR
	}
	g.p.emit(Operation{Code: code, Data: ThreeReg{dest, g.regOf(lhs), g.regOf(rhs)}})
}

func (g *funcGen) emitAssign(ins *ir.Instr) {
	res, _ := ins.Result()
	dest := g.regOf(res)
	src := ins.Operands[len(ins.Operands)-1]

	if !src.Immediate {
		// register to register copy
		g.p.emit(Operation{Code: ORI, Data: RegImm{Regs: [2]uint8{dest, g.regOf(src)}}})
		return
	}

	switch src.Type.Kind {
	case ir.Str:
		addr := g.p.appendData(src.Data.(string))
		g.load64(dest, addr)
	case ir.I32, ir.Bool:
		g.p.emit(Operation{Code: ORI, Data: RegImm{
			Regs: [2]uint8{dest, 0},
			Imm:  uint32(g.immVal(src)),
		}})
	case ir.I64:
		g.load64(dest, uint64(g.immVal(src)))
	default:
		g.p.errorf("cannot use %s as the rhs of an assignment", src)
	}
}

func (g *funcGen) emitRet(ins *ir.Instr) {
	for i, o := range ins.Operands {
		reg := retStart + uint8(i)
		if o.Immediate {
			g.loadLiteral(reg, uint64(g.immVal(o)))
		} else {
			g.p.emit(Operation{Code: ORI, Data: RegImm{Regs: [2]uint8{reg, g.regOf(o)}}})
		}
	}
	g.p.emit(Operation{Code: JR, Data: ThreeReg{raReg, 0, 0}})
}
