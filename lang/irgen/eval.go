package irgen

import (
	"github.com/newj-lang/newj/lang/ast"
	"github.com/newj-lang/newj/lang/ir"
	"github.com/newj-lang/newj/lang/token"
)

var binops = map[token.Token]ir.Op{
	token.PLUS:      ir.Add,
	token.MINUS:     ir.Sub,
	token.STAR:      ir.Mul,
	token.SLASH:     ir.Div,
	token.LTLT:      ir.ShiftLeft,
	token.GTGT:      ir.ShiftRight,
	token.PIPE:      ir.BitOr,
	token.AMPERSAND: ir.BitAnd,
	token.EQL:       ir.Eq,
	token.NEQ:       ir.Ne,
	token.LT:        ir.Lt,
	token.LE:        ir.Le,
	token.GT:        ir.Gt,
	token.GE:        ir.Ge,
	token.OROR:      ir.BoolOr,
	token.OR:        ir.BoolOr,
	token.ANDAND:    ir.BoolAnd,
}

// foldConstant recursively evaluates an integer-literal expression to an
// immediate operand. Only integer literals and pairwise +/- of foldable
// sides fold; anything else returns false and the caller diagnoses. Folded
// values adopt the i64 type.
func (b *builder) foldConstant(expr ast.Expr) (ir.Operand, bool) {
	switch expr := expr.(type) {
	case *ast.LiteralExpr:
		if expr.Tok == token.INT {
			return ir.Imm(expr.Val.Int, ir.I64Type), true
		}

	case *ast.BinOpExpr:
		if expr.Op != token.PLUS && expr.Op != token.MINUS {
			break
		}
		lhs, ok := b.foldConstant(expr.Left)
		if !ok {
			break
		}
		rhs, ok := b.foldConstant(expr.Right)
		if !ok {
			break
		}
		lv, lok := lhs.Data.(int64)
		rv, rok := rhs.Data.(int64)
		if !lok || !rok {
			b.errorf(expr, "left and right hand sides of expression are of different types")
			break
		}
		if expr.Op == token.PLUS {
			return ir.Imm(lv+rv, ir.I64Type), true
		}
		return ir.Imm(lv-rv, ir.I64Type), true
	}
	return ir.Operand{}, false
}

// evalCondition lowers a boolean expression used as a branch condition,
// with short-circuit semantics and without introducing spurious
// temporaries: control transfers to trueL when the condition holds and to
// falseL otherwise. The current block is terminated when it returns.
func (b *builder) evalCondition(expr ast.Expr, trueL, falseL string) {
	if bin, ok := expr.(*ast.BinOpExpr); ok {
		switch bin.Op {
		case token.ANDAND:
			shortL := b.blockName()
			b.evalCondition(bin.Left, shortL, falseL)
			b.appendBlock(shortL)
			b.evalCondition(bin.Right, trueL, falseL)
			return
		case token.OROR, token.OR:
			shortL := b.blockName()
			b.evalCondition(bin.Left, trueL, shortL)
			b.appendBlock(shortL)
			b.evalCondition(bin.Right, trueL, falseL)
			return
		}
	}

	// a comparison, a boolean-typed call or a boolean variable: evaluate
	// and branch directly.
	cond := b.eval(expr)
	b.append(ir.Instr{Op: ir.Branch, Operands: []ir.Operand{
		cond, ir.Label(trueL), ir.Label(falseL),
	}})
}

// eval lowers an expression to an operand, minting a fresh temporary for
// any non-literal result.
func (b *builder) eval(expr ast.Expr) ir.Operand {
	switch expr := expr.(type) {
	case *ast.LiteralExpr:
		return b.evalLiteral(expr)
	case *ast.BinOpExpr:
		return b.evalBinOp(expr)
	case *ast.CallExpr:
		return b.evalCall(expr)
	default:
		b.errorf(expr, "%v cannot be evaluated", expr)
		return ir.Imm(int64(0), ir.I32Type)
	}
}

func (b *builder) evalLiteral(expr *ast.LiteralExpr) ir.Operand {
	switch expr.Tok {
	case token.INT:
		return ir.Imm(expr.Val.Int, ir.I32Type)
	case token.FLOAT:
		return ir.Imm(expr.Val.Float, ir.F64Type)
	case token.STRING:
		return ir.Imm(expr.Val.String, ir.StrType)
	case token.IDENT:
		name := expr.Val.Raw
		if op, ok := b.lookup(name); ok {
			return op
		}
		if op, ok := b.builtins[name]; ok {
			return op
		}
		b.errorf(expr, "variable %s does not exist", name)
		return ir.Imm(int64(0), ir.I32Type)
	default:
		b.errorf(expr, "cannot get value from %v", expr)
		return ir.Imm(int64(0), ir.I32Type)
	}
}

func (b *builder) evalBinOp(expr *ast.BinOpExpr) ir.Operand {
	op, ok := binops[expr.Op]
	if !ok {
		b.errorf(expr, "unimplemented operation %s", expr.Op)
		return ir.Imm(int64(0), ir.I32Type)
	}

	if op == ir.BoolOr || op == ir.BoolAnd {
		return b.evalShortCircuit(expr, op)
	}

	lhs := b.eval(expr.Left)
	rhs := b.eval(expr.Right)

	resType := lhs.Type
	if op.IsComparison() {
		resType = ir.BoolType
	}
	res := ir.Name(b.tempName(), resType)
	b.append(ir.Instr{Op: op, Operands: []ir.Operand{res, lhs, rhs}})
	return res
}

// evalShortCircuit lowers a boolean || or && expression outside of a
// condition context: a short-circuit diamond with a phi at the merge.
func (b *builder) evalShortCircuit(expr *ast.BinOpExpr, op ir.Op) ir.Operand {
	lhs := b.eval(expr.Left)
	if lhs.Type.Kind != ir.Bool {
		b.errorf(expr.Left, "operand of %s is not a boolean", expr.Op)
		return ir.Imm(false, ir.BoolType)
	}

	shortL := b.blockName()
	mergeL := b.blockName()

	// for ||, the right side only evaluates when the left is false; for
	// &&, only when it is true.
	t, f := ir.Label(mergeL), ir.Label(shortL)
	if op == ir.BoolAnd {
		t, f = f, t
	}
	b.append(ir.Instr{Op: ir.Branch, Operands: []ir.Operand{lhs, t, f}})

	b.appendBlock(shortL)
	rhs := b.eval(expr.Right)
	b.branchTo(mergeL)

	b.appendBlock(mergeL)
	res := ir.Name(b.tempName(), ir.BoolType)
	b.append(ir.Instr{Op: ir.Phi, Operands: []ir.Operand{res, lhs, rhs}})
	return res
}

func (b *builder) evalCall(expr *ast.CallExpr) ir.Operand {
	lit, ok := expr.Fn.(*ast.LiteralExpr)
	if !ok || lit.Tok != token.IDENT {
		b.errorf(expr.Fn, "callee must be a function name")
		return ir.Imm(int64(0), ir.I32Type)
	}
	name := lit.Val.Raw

	callee := b.prog.LookupFunctionArity(name, len(expr.Args))
	if callee == nil {
		b.errorf(expr, "function %s is not defined", name)
		return ir.Imm(int64(0), ir.I32Type)
	}

	operands := make([]ir.Operand, 0, len(expr.Args)+2)
	var res ir.Operand
	if callee.Type.Return.Kind != ir.Unit {
		res = ir.Name(b.tempName(), callee.Type.Return)
		operands = append(operands, res)
	}
	operands = append(operands, ir.Imm(name, callee.Type))
	for _, arg := range expr.Args {
		operands = append(operands, b.eval(arg))
	}
	b.append(ir.Instr{Op: ir.Call, Operands: operands})

	if callee.Type.Return.Kind == ir.Unit {
		return ir.Imm(nil, ir.UnitType)
	}
	return res
}
