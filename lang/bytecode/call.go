package bytecode

import "github.com/newj-lang/newj/lang/ir"

// syscall codes used by the print builtin, selected by argument type.
const (
	printI32 = 1
	printStr = 4
	printI64 = 5
)

// emitCall lowers a call at instruction index n, implementing the
// caller-saved spill protocol: push the live registers, set up the argument
// registers, jal to the callee, copy the return value and restore.
func (g *funcGen) emitCall(ins *ir.Instr, n int) {
	var res ir.Operand
	hasRes := false
	operands := ins.Operands
	if r, ok := ins.Result(); ok {
		res, hasRes = r, true
		operands = operands[1:]
	}
	callee, args := operands[0], operands[1:]
	name, _ := callee.Data.(string)

	if name == "print" {
		// not a real call: no registers are saved and no argument registers
		// are set up, the syscall consumes the value directly
		g.emitPrint(ins, args)
		return
	}

	live := g.liveAcross(n)
	size := int64(8 * len(live))

	g.p.emit(Operation{Code: ADDI, Data: RegImm{
		Regs: [2]uint8{spReg, spReg},
		Imm:  g.signedImm32(-size),
	}})
	for i, reg := range live {
		g.p.emit(Operation{Code: SQW, Data: RegImm{
			Regs: [2]uint8{reg, spReg},
			Imm:  uint32(8 * i),
		}})
	}

	for i, arg := range args {
		preg := paramStart + uint8(i)
		if !arg.Immediate {
			g.p.emit(Operation{Code: OR, Data: ThreeReg{preg, 0, g.regOf(arg)}})
			continue
		}
		if arg.Type.Kind == ir.Str {
			g.load64(preg, g.p.appendData(arg.Data.(string)))
			continue
		}
		g.loadLiteral(preg, uint64(g.immVal(arg)))
	}

	instAddr := g.p.textEnd
	g.p.emit(Operation{Code: JAL, Data: Imm54(g.p.readLabel(name, true, instAddr))})

	if hasRes {
		g.p.emit(Operation{Code: ORI, Data: RegImm{Regs: [2]uint8{g.regOf(res), retStart}}})
	}

	for i := len(live) - 1; i >= 0; i-- {
		g.p.emit(Operation{Code: LQW, Data: RegImm{
			Regs: [2]uint8{live[i], spReg},
			Imm:  uint32(8 * i),
		}})
	}
	g.p.emit(Operation{Code: ADDI, Data: RegImm{
		Regs: [2]uint8{spReg, spReg},
		Imm:  g.signedImm32(size),
	}})
}

// emitPrint lowers the print builtin to a syscall sequence derived from the
// argument's type. A string literal argument is first appended to the data
// segment.
func (g *funcGen) emitPrint(ins *ir.Instr, args []ir.Operand) {
	if len(args) != 1 {
		g.p.errorf("print takes a single argument: %s", ins)
		return
	}
	arg := args[0]

	var code uint32
	switch arg.Type.Kind {
	case ir.I32, ir.Bool:
		code = printI32
	case ir.I64:
		code = printI64
	case ir.Str:
		code = printStr
	default:
		g.p.errorf("cannot print a value of type %s", arg.Type)
		return
	}

	reg := scratchStart
	switch {
	case !arg.Immediate:
		reg = g.regOf(arg)
	case arg.Type.Kind == ir.Str:
		g.load64(reg, g.p.appendData(arg.Data.(string)))
	default:
		g.loadLiteral(reg, uint64(g.immVal(arg)))
	}

	g.p.emit(Operation{Code: SYSCALL, Data: RegImm{Regs: [2]uint8{reg, 0}, Imm: code}})
}
