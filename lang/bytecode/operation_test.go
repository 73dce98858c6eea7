package bytecode_test

import (
	"fmt"
	"testing"

	"github.com/newj-lang/newj/lang/bytecode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// For every operation whose payload fields are within field widths,
// decode(encode(op)) == op.
func TestEncodeDecodeRoundTrip(t *testing.T) {
	ops := []bytecode.Operation{
		{Code: bytecode.ADD, Data: bytecode.ThreeReg{20, 13, 14}},
		{Code: bytecode.SUB, Data: bytecode.ThreeReg{21, 20, 0}},
		{Code: bytecode.OR, Data: bytecode.ThreeReg{13, 0, 20}},
		{Code: bytecode.SL, Data: bytecode.ThreeReg{22, 21, 20}},
		{Code: bytecode.SR, Data: bytecode.ThreeReg{63, 62, 61}},
		{Code: bytecode.SLT, Data: bytecode.ThreeReg{1, 20, 21}},
		{Code: bytecode.MUL, Data: bytecode.ThreeReg{20, 20, 21}},
		{Code: bytecode.JR, Data: bytecode.ThreeReg{63, 0, 0}},
		{Code: bytecode.SYSCALL, Data: bytecode.RegImm{Regs: [2]uint8{0, 0}, Imm: 5}},
		{Code: bytecode.ORI, Data: bytecode.RegImm{Regs: [2]uint8{20, 0}, Imm: 1234}},
		{Code: bytecode.LUI, Data: bytecode.RegImm{Regs: [2]uint8{20, 0}, Imm: 0xFFFFFFFF}},
		{Code: bytecode.SLI, Data: bytecode.RegImm{Regs: [2]uint8{20, 21}, Imm: 3}},
		{Code: bytecode.SRI, Data: bytecode.RegImm{Regs: [2]uint8{20, 21}, Imm: 63}},
		{Code: bytecode.SLTI, Data: bytecode.RegImm{Regs: [2]uint8{1, 20}, Imm: 11}},
		{Code: bytecode.ADDI, Data: bytecode.RegImm{Regs: [2]uint8{61, 61}, Imm: 0xFFFFFFE8}},
		{Code: bytecode.JEQ, Data: bytecode.RegImm{Regs: [2]uint8{20, 1}, Imm: 2}},
		{Code: bytecode.JNE, Data: bytecode.RegImm{Regs: [2]uint8{1, 0}, Imm: 1}},
		{Code: bytecode.LW, Data: bytecode.RegImm{Regs: [2]uint8{20, 61}, Imm: 16}},
		{Code: bytecode.SW, Data: bytecode.RegImm{Regs: [2]uint8{20, 61}, Imm: 8}},
		{Code: bytecode.LQW, Data: bytecode.RegImm{Regs: [2]uint8{63, 61}, Imm: 16}},
		{Code: bytecode.SQW, Data: bytecode.RegImm{Regs: [2]uint8{61, 61}, Imm: 0}},
		{Code: bytecode.LB, Data: bytecode.RegImm{Regs: [2]uint8{2, 20}, Imm: 0}},
		{Code: bytecode.SB, Data: bytecode.RegImm{Regs: [2]uint8{2, 20}, Imm: 1}},
		{Code: bytecode.JMP, Data: bytecode.Imm54(0x10000002)},
		{Code: bytecode.JAL, Data: bytecode.Imm54(0x10000000)},
		{Code: bytecode.JMP, Data: bytecode.Imm54(1<<54 - 1)},
	}
	for _, op := range ops {
		t.Run(op.String(), func(t *testing.T) {
			raw := op.Encode()
			assert.Equal(t, op, bytecode.Decode(raw))
		})
	}
}

func TestEncodeFields(t *testing.T) {
	// opcode in the top 10 bits
	raw := bytecode.Operation{Code: bytecode.JMP, Data: bytecode.Imm54(0)}.Encode()
	assert.Equal(t, uint64(bytecode.JMP), raw>>54)

	// three-register form: r0 at 53..48, r1 at 47..42, r2 at 41..36
	raw = bytecode.Operation{Code: bytecode.ADD, Data: bytecode.ThreeReg{20, 13, 14}}.Encode()
	assert.Equal(t, uint64(20), raw>>48&0x3F)
	assert.Equal(t, uint64(13), raw>>42&0x3F)
	assert.Equal(t, uint64(14), raw>>36&0x3F)

	// single-immediate form: low 54 bits
	raw = bytecode.Operation{Code: bytecode.JAL, Data: bytecode.Imm54(0x10000000)}.Encode()
	assert.Equal(t, uint64(0x10000000), raw&(1<<54-1))
}

func TestOpcodeGroups(t *testing.T) {
	assert.Equal(t, bytecode.Opcode(0), bytecode.SYSCALL)
	assert.Equal(t, bytecode.Opcode(1), bytecode.ADD)
	assert.Equal(t, bytecode.Opcode(13), bytecode.MUL)
	assert.Equal(t, bytecode.Opcode(100), bytecode.JMP)
	assert.Equal(t, bytecode.Opcode(104), bytecode.JR)
	assert.Equal(t, bytecode.Opcode(200), bytecode.LW)
	assert.Equal(t, bytecode.Opcode(207), bytecode.SB)

	require.True(t, bytecode.ADD.Valid())
	assert.Equal(t, "add", bytecode.ADD.String())
	assert.False(t, bytecode.Opcode(99).Valid())
	assert.Equal(t, fmt.Sprintf("opcode(%d)", 99), bytecode.Opcode(99).String())
}
