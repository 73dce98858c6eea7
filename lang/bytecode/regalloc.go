package bytecode

import (
	"github.com/newj-lang/newj/lang/ir"
	"golang.org/x/exp/slices"
)

// registerInfo records the register assigned to a symbolic operand name
// along with the instruction indices that write and read it, used to decide
// which registers are live across a call.
type registerInfo struct {
	reg    uint8
	writes []int
	reads  []int
}

// funcGen is the per-function generation state: the register assignment and
// the instructions already emitted, used to recover the comparands of a
// conditional branch.
type funcGen struct {
	p       *Program
	fn      *ir.Function
	regs    map[string]*registerInfo
	emitted []*ir.Instr
}

// generate runs the per-function pipeline: register planning, then label
// publication and instruction emission.
func (p *Program) generate(fn *ir.Function) {
	g := &funcGen{p: p, fn: fn, regs: make(map[string]*registerInfo)}
	if !g.plan() {
		return
	}

	p.assignLabel(fn.Name)
	n := 0
	for _, block := range fn.Blocks {
		p.assignLabel(block.Label)
		for i := range block.Instrs {
			ins := &block.Instrs[i]
			g.emitInstr(ins, n)
			g.emitted = append(g.emitted, ins)
			n++
		}
	}
}

// plan walks all three-address operations once to record writes and reads
// of every register-tracked operand and to compute the register assignment.
// It returns false when the function cannot be generated at all.
func (g *funcGen) plan() bool {
	params := g.fn.Parameters()
	if len(params) > maxParams {
		g.p.errorf("function %s has more than %d parameters; %d parameter functions are not supported",
			g.fn.Name, maxParams, len(params))
		return false
	}
	for i, param := range params {
		g.regs[param.SymName()] = &registerInfo{reg: paramStart + uint8(i), writes: []int{0}}
	}

	n := 0
	for _, block := range g.fn.Blocks {
		for i := range block.Instrs {
			ins := &block.Instrs[i]

			if ins.Op == ir.Phi {
				g.coalescePhi(ins, n)
			} else if res, ok := ins.Result(); ok {
				name := res.SymName()
				if info, ok := g.regs[name]; ok {
					info.writes = append(info.writes, n)
				} else {
					g.allocate(name, n)
				}
			}

			for _, in := range ins.Inputs() {
				if in.Immediate {
					continue
				}
				// only operands already tracked are reads: labels are never
				// tracked, variables and temporaries always are
				if info, ok := g.regs[in.SymName()]; ok {
					info.reads = append(info.reads, n)
				}
			}
			n++
		}
	}
	return true
}

// allocate assigns the lowest-numbered free temporary register to a name on
// its first definition, using a sorted scan with a hole rule.
func (g *funcGen) allocate(name string, n int) {
	used := make([]uint8, 0, len(g.regs))
	for _, info := range g.regs {
		used = append(used, info.reg)
	}
	slices.Sort(used)

	last := tempStart
	for _, reg := range used {
		if reg == last {
			last++
		} else if reg > last {
			break
		}
	}
	if last >= tempEnd {
		g.p.errorf("too many temporaries in function %s", g.fn.Name)
	}
	g.regs[name] = &registerInfo{reg: last, writes: []int{n}}
}

// coalescePhi assigns the minimum of the already-assigned registers of the
// phi operands to every operand of the phi, including its result.
func (g *funcGen) coalescePhi(ins *ir.Instr, n int) {
	reg := uint8(0xFF)
	for _, in := range ins.Inputs() {
		info, ok := g.regs[in.SymName()]
		if !ok {
			g.p.errorf("phi operand %v has no register", in)
			return
		}
		if info.reg < reg {
			reg = info.reg
		}
	}
	for _, in := range ins.Inputs() {
		g.regs[in.SymName()].reg = reg
	}

	res, _ := ins.Result()
	if info, ok := g.regs[res.SymName()]; ok {
		info.reg = reg
		info.writes = append(info.writes, n)
	} else {
		g.regs[res.SymName()] = &registerInfo{reg: reg, writes: []int{n}}
	}
}

// regOf returns the register assigned to a non-immediate operand.
func (g *funcGen) regOf(o ir.Operand) uint8 {
	info, ok := g.regs[o.SymName()]
	if !ok {
		g.p.errorf("operand %v has no register in function %s", o, g.fn.Name)
		return zeroReg
	}
	return info.reg
}

// liveAcross returns the caller-saved registers live across the call at
// instruction index n: stack pointer, frame pointer and return address,
// plus any temporary register written before the call and read at or after
// it, in ascending register order.
func (g *funcGen) liveAcross(n int) []uint8 {
	live := []uint8{spReg, fpReg, raReg}
	seen := map[uint8]bool{spReg: true, fpReg: true, raReg: true}

	for _, info := range g.regs {
		if info.reg < tempStart || info.reg >= tempEnd || seen[info.reg] {
			continue
		}
		// live when the latest write precedes the call and a read at or
		// after the call postdates it
		writtenBefore := len(info.writes) > 0 && info.writes[len(info.writes)-1] < n
		var readAfter bool
		for _, r := range info.reads {
			if r >= n {
				readAfter = true
				break
			}
		}
		if writtenBefore && readAfter {
			live = append(live, info.reg)
			seen[info.reg] = true
		}
	}
	slices.Sort(live)
	return live
}
