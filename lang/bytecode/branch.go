package bytecode

import "github.com/newj-lang/newj/lang/ir"

// emitBranch lowers a branch: unconditional with a single label operand, or
// conditional with (condition, true-label, false-label). For a conditional
// branch, the comparison that produced the condition is recovered to emit a
// fused compare-and-jump sequence; a condition with no producing comparison
// is branched on directly against zero.
func (g *funcGen) emitBranch(ins *ir.Instr) {
	if len(ins.Operands) == 1 {
		g.jumpTo(ins.Operands[0].SymName())
		return
	}

	cond := ins.Operands[0]
	trueL := ins.Operands[1].SymName()
	falseL := ins.Operands[2].SymName()

	cmp := g.findComparison(cond.SymName())
	if cmp == nil {
		// a boolean value in a register, e.g. a phi result: non-zero is true
		g.condJump(JNE, g.regOf(cond), zeroReg, trueL)
		g.jumpTo(falseL)
		return
	}

	lhs, rhs := cmp.Operands[1], cmp.Operands[2]
	switch cmp.Op {
	case ir.Eq:
		g.emitCompareJump(JEQ, lhs, rhs, trueL, falseL)
	case ir.Ne:
		g.emitCompareJump(JNE, lhs, rhs, trueL, falseL)
	case ir.Lt:
		g.emitOrderedJump(lhs, rhs, false, trueL, falseL)
	case ir.Le:
		g.emitOrderedJump(lhs, rhs, true, trueL, falseL)
	case ir.Gt:
		g.emitOrderedJump(rhs, lhs, false, trueL, falseL)
	case ir.Ge:
		g.emitOrderedJump(rhs, lhs, true, trueL, falseL)
	}
}

// findComparison locates the most recent emitted instruction whose result
// is the provided condition name and whose opcode is a comparison.
func (g *funcGen) findComparison(name string) *ir.Instr {
	for i := len(g.emitted) - 1; i >= 0; i-- {
		ins := g.emitted[i]
		if !ins.Op.IsComparison() {
			continue
		}
		if res, ok := ins.Result(); ok && res.SymName() == name {
			return ins
		}
	}
	return nil
}

// jumpTo emits an unconditional jump to a label, with an absolute-mode
// fixup when the label is not yet defined.
func (g *funcGen) jumpTo(label string) {
	instAddr := g.p.textEnd
	g.p.emit(Operation{Code: JMP, Data: Imm54(g.p.readLabel(label, true, instAddr))})
}

// condJump emits a conditional jump comparing two registers, with a
// PC-relative fixup when the label is not yet defined.
func (g *funcGen) condJump(code Opcode, r0, r1 uint8, label string) {
	instAddr := g.p.textEnd
	g.p.emit(Operation{Code: code, Data: RegImm{
		Regs: [2]uint8{r0, r1},
		Imm:  uint32(g.p.readLabel(label, false, instAddr)),
	}})
}

// materialize returns the register holding the operand, loading an
// immediate into scratch register 1 first when needed.
func (g *funcGen) materialize(o ir.Operand) uint8 {
	if !o.Immediate {
		return g.regOf(o)
	}
	g.loadLiteral(scratchStart, uint64(g.immVal(o)))
	return scratchStart
}

// emitCompareJump lowers an eq or ne branch: jump to trueL when the
// comparison holds, fall through to an unconditional jump to falseL. A
// both-constant comparison collapses to a single jmp.
func (g *funcGen) emitCompareJump(code Opcode, lhs, rhs ir.Operand, trueL, falseL string) {
	if lhs.Immediate && rhs.Immediate {
		taken := g.immVal(lhs) == g.immVal(rhs)
		if code == JNE {
			taken = !taken
		}
		if taken {
			g.jumpTo(trueL)
		} else {
			g.jumpTo(falseL)
		}
		return
	}

	lreg := g.materialize(lhs)
	rreg := g.materialize(rhs)
	g.condJump(code, lreg, rreg, trueL)
	g.jumpTo(falseL)
}

// emitOrderedJump lowers an ordered branch on lhs < rhs (strict) or
// lhs <= rhs (orEqual): set scratch register 1 from the comparison and jump
// on non-zero, with the equality case folded into an slti upper bound when
// the right side is constant, or an extra jeq otherwise.
func (g *funcGen) emitOrderedJump(lhs, rhs ir.Operand, orEqual bool, trueL, falseL string) {
	if lhs.Immediate && rhs.Immediate {
		l, r := g.immVal(lhs), g.immVal(rhs)
		taken := l < r || (orEqual && l == r)
		if taken {
			g.jumpTo(trueL)
		} else {
			g.jumpTo(falseL)
		}
		return
	}

	if rhs.Immediate {
		bound := g.immVal(rhs)
		if orEqual {
			bound++
		}
		g.p.emit(Operation{Code: SLTI, Data: RegImm{
			Regs: [2]uint8{scratchStart, g.regOf(lhs)},
			Imm:  g.signedImm32(bound),
		}})
		g.condJump(JNE, scratchStart, zeroReg, trueL)
		g.jumpTo(falseL)
		return
	}

	lreg := g.materialize(lhs)
	rreg := g.regOf(rhs)
	g.p.emit(Operation{Code: SLT, Data: ThreeReg{scratchStart, lreg, rreg}})
	g.condJump(JNE, scratchStart, zeroReg, trueL)
	if orEqual {
		if lhs.Immediate {
			// the slt result overwrote the constant in scratch register 1
			lreg = g.materialize(lhs)
		}
		g.condJump(JEQ, lreg, rreg, trueL)
	}
	g.jumpTo(falseL)
}
