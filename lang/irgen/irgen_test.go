package irgen_test

import (
	"strings"
	"testing"

	"github.com/newj-lang/newj/lang/ir"
	"github.com/newj-lang/newj/lang/irgen"
	"github.com/newj-lang/newj/lang/parser"
	"github.com/newj-lang/newj/lang/scanner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func build(t *testing.T, src string) (*ir.Program, scanner.ErrorList) {
	t.Helper()

	prog, file, err := parser.ParseProgram("test.nj", []byte(src))
	require.NoError(t, err)

	var el scanner.ErrorList
	irProg := irgen.Build(file, prog, el.Add)
	require.NotNil(t, irProg)
	return irProg, el
}

func TestEmptyMain(t *testing.T) {
	p, el := build(t, "func main() { return }")
	require.Empty(t, el)

	require.Len(t, p.Funcs, 1)
	fn := p.Funcs[0]
	assert.Equal(t, "main", fn.Name)
	require.Len(t, fn.Blocks, 1)
	assert.Equal(t, "main_entry", fn.Blocks[0].Label)

	require.Len(t, fn.Blocks[0].Instrs, 1)
	halt := fn.Blocks[0].Instrs[0]
	assert.Equal(t, ir.Halt, halt.Op)
	require.Len(t, halt.Operands, 1)
	assert.Equal(t, ir.Imm(int64(0), ir.I32Type), halt.Operands[0])
}

func TestImplicitTermination(t *testing.T) {
	// main with no trailing return gets a halt, other functions a ret
	p, el := build(t, "func f() { print(1) }\nfunc main() { f() }")
	require.Empty(t, el)

	f := p.LookupFunction("f")
	last := f.Blocks[len(f.Blocks)-1]
	assert.Equal(t, ir.Ret, last.Instrs[len(last.Instrs)-1].Op)

	main := p.LookupFunction("main")
	last = main.Blocks[len(main.Blocks)-1]
	assert.Equal(t, ir.Halt, last.Instrs[len(last.Instrs)-1].Op)
}

func TestGlobalConstFold(t *testing.T) {
	p, el := build(t, "const K: int64 = 2 + 3")
	require.Empty(t, el)

	assert.Empty(t, p.Funcs)
	require.Contains(t, p.Globals, "K")
	assert.Equal(t, ir.Imm(int64(5), ir.I64Type), p.Globals["K"])
}

func TestGlobalConstUnfoldable(t *testing.T) {
	_, el := build(t, "const K: int64 = f()")
	require.Len(t, el, 1)
	assert.Contains(t, el[0].Msg, "could not evaluate the constant K")
}

func TestLocalConstRedeclared(t *testing.T) {
	// a duplicate global is rejected by the parser's program container, so
	// the builder's redeclaration check is exercised on a local constant
	// redeclared in the same scope
	_, el := build(t, "func main() { const a = 1\nconst a = 2 }")
	require.Len(t, el, 1)
	assert.Contains(t, el[0].Msg, "redeclaring the local constant a")
}

func TestLocalArithmetic(t *testing.T) {
	src := `
func add(a: int32, b: int32): int32 { return a + b }
func main() { print(add(2, 3)) }
`
	p, el := build(t, src)
	require.Empty(t, el)

	add := p.LookupFunction("add")
	require.NotNil(t, add)
	assert.Equal(t, []string{"a", "b"}, add.ParamNames)
	require.Len(t, add.Blocks, 1)

	instrs := add.Blocks[0].Instrs
	require.Len(t, instrs, 2)
	assert.Equal(t, ir.Add, instrs[0].Op)
	res, ok := instrs[0].Result()
	require.True(t, ok)
	assert.Equal(t, "temp_0", res.SymName())
	assert.Equal(t, ir.Ret, instrs[1].Op)
	assert.Equal(t, "temp_0", instrs[1].Operands[0].SymName())

	main := p.LookupFunction("main")
	require.NotNil(t, main)
	instrs = main.Blocks[0].Instrs
	require.Len(t, instrs, 3)

	// call to add produces a value
	assert.Equal(t, ir.Call, instrs[0].Op)
	res, ok = instrs[0].Result()
	require.True(t, ok)
	assert.Equal(t, "add", instrs[0].Inputs()[0].Data)

	// call to print consumes it and produces none
	assert.Equal(t, ir.Call, instrs[1].Op)
	_, ok = instrs[1].Result()
	assert.False(t, ok)
	assert.Equal(t, "print", instrs[1].Inputs()[0].Data)

	assert.Equal(t, ir.Halt, instrs[2].Op)
}

func TestShortCircuitCondition(t *testing.T) {
	src := `
func f(x: int32): int32 {
	if (x == 0 or x == 1) { return 1 }
	return 0
}
`
	p, el := build(t, src)
	require.Empty(t, el)

	fn := p.LookupFunction("f")
	require.NotNil(t, fn)
	require.Len(t, fn.Blocks, 4)

	var branches, phis int
	for _, b := range fn.Blocks {
		for _, ins := range b.Instrs {
			switch ins.Op {
			case ir.Branch:
				branches++
			case ir.Phi:
				phis++
			}
		}
	}
	assert.Equal(t, 2, branches)
	assert.Zero(t, phis, "control never merges before the returns, no phi is materialised")

	// both tails are single returns
	thenB, exitB := fn.Blocks[2], fn.Blocks[3]
	require.Len(t, thenB.Instrs, 1)
	assert.Equal(t, ir.Ret, thenB.Instrs[0].Op)
	require.Len(t, exitB.Instrs, 1)
	assert.Equal(t, ir.Ret, exitB.Instrs[0].Op)
}

func TestWhileLoop(t *testing.T) {
	src := `
func main() {
	let i: int32 = 0
	while (i < 10) { i += 1 }
}
`
	p, el := build(t, src)
	require.Empty(t, el)

	fn := p.LookupFunction("main")
	require.NotNil(t, fn)
	require.Len(t, fn.Blocks, 4)

	entry, cond, body, exit := fn.Blocks[0], fn.Blocks[1], fn.Blocks[2], fn.Blocks[3]

	require.Len(t, entry.Instrs, 2)
	assert.Equal(t, ir.Assign, entry.Instrs[0].Op)
	assert.Equal(t, "i", entry.Instrs[0].Operands[0].SymName())
	assert.Equal(t, ir.Branch, entry.Instrs[1].Op)
	assert.Equal(t, cond.Label, entry.Instrs[1].Operands[0].SymName())

	require.Len(t, cond.Instrs, 2)
	assert.Equal(t, ir.Lt, cond.Instrs[0].Op)
	assert.Equal(t, ir.Branch, cond.Instrs[1].Op)
	require.Len(t, cond.Instrs[1].Operands, 3)
	assert.Equal(t, body.Label, cond.Instrs[1].Operands[1].SymName())
	assert.Equal(t, exit.Label, cond.Instrs[1].Operands[2].SymName())

	require.Len(t, body.Instrs, 2)
	assert.Equal(t, ir.Add, body.Instrs[0].Op)
	assert.Equal(t, "i", body.Instrs[0].Operands[0].SymName())
	assert.Equal(t, ir.Branch, body.Instrs[1].Op)
	assert.Equal(t, cond.Label, body.Instrs[1].Operands[0].SymName())

	require.Len(t, exit.Instrs, 1)
	assert.Equal(t, ir.Halt, exit.Instrs[0].Op)
}

func TestShortCircuitValue(t *testing.T) {
	src := `
func g(): int32 {
	let b = 1 == 1 or 2 == 2
	if (b) { return 1 }
	return 0
}
`
	p, el := build(t, src)
	require.Empty(t, el)

	fn := p.LookupFunction("g")
	require.NotNil(t, fn)

	var phi *ir.Instr
	for _, b := range fn.Blocks {
		for i := range b.Instrs {
			if b.Instrs[i].Op == ir.Phi {
				phi = &b.Instrs[i]
			}
		}
	}
	require.NotNil(t, phi, "a short-circuit value context materialises a phi at the merge")
	assert.Len(t, phi.Inputs(), 2)
	res, ok := phi.Result()
	require.True(t, ok)
	assert.Equal(t, "temp_2", res.SymName())
	assert.Same(t, ir.BoolType, res.Type)

	// the declaration copies the merged value into b
	merge := fn.Blocks[2]
	require.Len(t, merge.Instrs, 3)
	assert.Equal(t, ir.Assign, merge.Instrs[1].Op)
	assert.Equal(t, "b", merge.Instrs[1].Operands[0].SymName())
}

func TestAssignPeephole(t *testing.T) {
	src := `
func main() {
	let x = 1
	x = x + 2
}
`
	p, el := build(t, src)
	require.Empty(t, el)

	instrs := p.LookupFunction("main").Blocks[0].Instrs
	// assign x=1; add renamed to x; halt - no separate assign for x = x + 2
	require.Len(t, instrs, 3)
	assert.Equal(t, ir.Assign, instrs[0].Op)
	assert.Equal(t, ir.Add, instrs[1].Op)
	assert.Equal(t, "x", instrs[1].Operands[0].SymName())
	assert.Equal(t, ir.Halt, instrs[2].Op)
}

func TestUndefinedVariable(t *testing.T) {
	_, el := build(t, "func main() { print(nope) }")
	require.Len(t, el, 1)
	assert.Contains(t, el[0].Msg, "variable nope does not exist")
}

func TestUndefinedFunction(t *testing.T) {
	_, el := build(t, "func main() { nope(1) }")
	require.Len(t, el, 1)
	assert.Contains(t, el[0].Msg, "function nope is not defined")
}

func TestArityMismatch(t *testing.T) {
	_, el := build(t, "func f(x: int32) { return }\nfunc main() { f(1, 2) }")
	require.Len(t, el, 1)
	assert.Contains(t, el[0].Msg, "function f is not defined")
}

func TestUnknownTypeName(t *testing.T) {
	_, el := build(t, "func f(x: widget) { return }")
	require.Len(t, el, 1)
	assert.Contains(t, el[0].Msg, "unknown type name widget")
}

func TestScopeShadowing(t *testing.T) {
	src := `
func main() {
	let x = 1
	{
		let x = 2
		print(x)
	}
	print(x)
}
`
	_, el := build(t, src)
	// an inner block may shadow, this is not a redeclaration
	require.Empty(t, el)
}

func TestStructRegistered(t *testing.T) {
	src := `
struct point {
	x: int32
	y: int64
}
func main() { return }
`
	p, el := build(t, src)
	require.Empty(t, el)

	st := p.LookupType("point")
	require.NotNil(t, st)
	assert.Equal(t, ir.Struct, st.Kind)
	require.Len(t, st.Fields, 2)
	assert.Equal(t, "x", st.Fields[0].Name)
	assert.Same(t, ir.I64Type, st.Fields[1].Type)
	assert.Equal(t, uint64(8), st.Fields[1].Offset)
}

// After IR build, every basic block's last operation is a terminator and
// block labels are unique within a function.
func TestBlockInvariants(t *testing.T) {
	sources := []string{
		"func main() { return }",
		"func add(a: int32, b: int32): int32 { return a + b }\nfunc main() { print(add(2, 3)) }",
		"func f(x: int32): int32 {\n\tif (x == 0 or x == 1) { return 1 }\n\treturn 0\n}\nfunc main() { print(f(1)) }",
		"func main() {\n\tlet i: int32 = 0\n\twhile (i < 10) { i += 1 }\n}",
		"func g(x: int32): int32 {\n\tif (x < 1) { return 1 } else { return 2 }\n}\nfunc main() { print(g(0)) }",
	}
	for _, src := range sources {
		t.Run(src, func(t *testing.T) {
			p, el := build(t, src)
			require.Empty(t, el)

			for _, fn := range p.Funcs {
				labels := make(map[string]bool)
				tempWrites := make(map[string]int)
				for _, b := range fn.Blocks {
					assert.True(t, b.Terminated(), "block %s of %s is not terminated", b.Label, fn.Name)
					assert.False(t, labels[b.Label], "duplicate label %s in %s", b.Label, fn.Name)
					labels[b.Label] = true

					for i := range b.Instrs {
						res, ok := b.Instrs[i].Result()
						if ok && strings.HasPrefix(res.SymName(), "temp_") {
							tempWrites[res.SymName()]++
						}
					}
				}
				// generated temporaries are written at most once
				for name, n := range tempWrites {
					assert.Equal(t, 1, n, "temporary %s of %s written %d times", name, fn.Name, n)
				}
			}
		})
	}
}
