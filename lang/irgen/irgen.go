// Package irgen implements the IR builder that lowers a parsed AST to the
// linear three-address representation, maintaining a stack of scope maps,
// folding global constant initializers and inserting phi operations at
// short-circuit merge points.
package irgen

import (
	"fmt"
	"strconv"

	"github.com/dolthub/swiss"
	"github.com/newj-lang/newj/lang/ast"
	"github.com/newj-lang/newj/lang/ir"
	"github.com/newj-lang/newj/lang/token"
)

// Build lowers the AST program to an IR program. Diagnostics are reported
// through errh and never abort the build; the returned program may be
// incomplete when diagnostics were emitted. The file handle is used to
// resolve node positions for diagnostics.
func Build(file *token.File, prog *ast.Program, errh func(token.Position, string)) *ir.Program {
	b := &builder{
		prog: ir.NewProgram(),
		file: file,
		errh: errh,
		builtins: map[string]ir.Operand{
			"print": ir.Imm("print", ir.FuncType(nil, ir.UnitType)),
		},
	}
	b.pushScope() // global scope

	for _, item := range prog.Items {
		switch item := item.(type) {
		case *ast.VarDecl:
			b.globalDecl(item)
		case *ast.StructDecl:
			b.structDecl(item)
		case *ast.FuncDecl:
			b.function(item)
		}
	}
	return b.prog
}

// scope is a flat symbol table mapping source names to IR operands.
type scope = swiss.Map[string, ir.Operand]

type builder struct {
	prog     *ir.Program
	file     *token.File
	errh     func(token.Position, string)
	builtins map[string]ir.Operand

	fn     *ir.Function // current function, nil at the top level
	scopes []*scope     // innermost last; scopes[0] is the global scope

	temps  int // monotonic counter for temp_<N> names
	blocks int // monotonic counter for generated block labels
}

func (b *builder) errorf(n ast.Node, format string, args ...any) {
	if b.errh == nil {
		return
	}
	var lpos token.Position
	if n != nil {
		start, _ := n.Span()
		lpos = b.file.Position(start)
	} else {
		lpos = token.Position{Filename: b.file.Name()}
	}
	b.errh(lpos, fmt.Sprintf(format, args...))
}

func (b *builder) pushScope() {
	b.scopes = append(b.scopes, swiss.NewMap[string, ir.Operand](8))
}

func (b *builder) popScope() {
	b.scopes = b.scopes[:len(b.scopes)-1]
}

func (b *builder) globalScope() *scope { return b.scopes[0] }
func (b *builder) currentScope() *scope {
	return b.scopes[len(b.scopes)-1]
}

// bind registers name in the provided scope; it returns false if the name
// is already bound in that scope.
func (b *builder) bind(sc *scope, name string, op ir.Operand) bool {
	if sc.Has(name) {
		return false
	}
	sc.Put(name, op)
	return true
}

// lookup walks the scope stack innermost-first for the provided name.
func (b *builder) lookup(name string) (ir.Operand, bool) {
	for i := len(b.scopes) - 1; i >= 0; i-- {
		if op, ok := b.scopes[i].Get(name); ok {
			return op, true
		}
	}
	return ir.Operand{}, false
}

func (b *builder) tempName() string {
	name := "temp_" + strconv.Itoa(b.temps)
	b.temps++
	return name
}

func (b *builder) blockName() string {
	var name string
	if b.fn != nil {
		name = b.fn.Name + strconv.Itoa(b.blocks)
	} else {
		name = strconv.Itoa(b.blocks)
	}
	b.blocks++
	return name
}

func (b *builder) currentBlock() *ir.BasicBlock {
	if b.fn == nil {
		return nil
	}
	if len(b.fn.Blocks) == 0 {
		return b.appendBlock(b.fn.Name + "_entry")
	}
	return b.fn.Blocks[len(b.fn.Blocks)-1]
}

func (b *builder) appendBlock(label string) *ir.BasicBlock {
	if b.fn == nil {
		b.errorf(nil, "could not add block %s, as there is no current function", label)
		return nil
	}
	block := &ir.BasicBlock{Label: label}
	b.fn.Blocks = append(b.fn.Blocks, block)
	return block
}

func (b *builder) append(ins ir.Instr) {
	block := b.currentBlock()
	if block == nil {
		return
	}
	block.Instrs = append(block.Instrs, ins)
}

func (b *builder) branchTo(label string) {
	b.append(ir.Instr{Op: ir.Branch, Operands: []ir.Operand{ir.Label(label)}})
}

// typeFrom resolves a type annotation token to a type descriptor. Unknown
// type names are diagnosed and default to i32 so that lowering can
// continue.
func (b *builder) typeFrom(n ast.Node, tok token.Token, lit string) *ir.Type {
	switch tok {
	case token.INT32:
		return ir.I32Type
	case token.INT64:
		return ir.I64Type
	case token.IDENT:
		if t := b.prog.LookupType(lit); t != nil {
			return t
		}
		b.errorf(n, "unknown type name %s", lit)
		return ir.I32Type
	default:
		b.errorf(n, "could not get type from %s", tok)
		return ir.I32Type
	}
}

func (b *builder) globalDecl(decl *ast.VarDecl) {
	id := decl.Identifier()

	val, ok := b.foldConstant(decl.Value)
	if !ok {
		b.errorf(decl, "could not evaluate the constant %s", id)
		return
	}

	if !b.bind(b.globalScope(), id, val) {
		b.errorf(decl, "redeclaring the global constant %s", id)
		return
	}
	b.prog.Globals[id] = val
}

func (b *builder) structDecl(decl *ast.StructDecl) {
	fields := make([]ir.Field, len(decl.Fields))
	var off uint64
	for i, fld := range decl.Fields {
		fields[i] = ir.Field{
			Name:   fld.Name,
			Type:   b.typeFrom(fld, fld.Type, fld.TypeLit),
			Offset: off,
		}
		off += 8
	}
	if !b.prog.RegisterType(decl.Name, &ir.Type{Kind: ir.Struct, Fields: fields}) {
		b.errorf(decl, "redeclaring the type %s", decl.Name)
	}
}

func (b *builder) function(decl *ast.FuncDecl) {
	params := make([]*ir.Type, len(decl.Params))
	names := make([]string, len(decl.Params))
	for i, p := range decl.Params {
		params[i] = b.typeFrom(p, p.Type, p.TypeLit)
		names[i] = p.Name
	}
	ret := ir.UnitType
	if decl.Name.Typed() {
		ret = b.typeFrom(decl.Name, decl.Name.Type, decl.Name.TypeLit)
	}

	fn := b.prog.RegisterFunction(decl.Name.Name, ir.FuncType(params, ret))
	fn.ParamNames = names
	b.fn = fn
	b.appendBlock(fn.Name + "_entry")

	b.pushScope()
	for i, name := range names {
		if !b.bind(b.currentScope(), name, ir.Name(name, params[i])) {
			b.errorf(decl.Params[i], "parameter %s is not unique", name)
		}
	}

	b.stmt(decl.Body)

	if !b.currentBlock().Terminated() {
		if fn.Name == "main" {
			b.append(ir.Instr{Op: ir.Halt, Operands: []ir.Operand{ir.Imm(int64(0), ir.I32Type)}})
		} else {
			b.append(ir.Instr{Op: ir.Ret})
		}
	}

	b.popScope()
	b.fn = nil
}

func (b *builder) stmt(stmt ast.Stmt) {
	switch stmt := stmt.(type) {
	case *ast.Block:
		b.pushScope()
		if cur := b.currentBlock(); len(cur.Instrs) > 0 && cur.Terminated() {
			b.appendBlock(b.blockName())
		}
		for _, s := range stmt.Stmts {
			b.stmt(s)
		}
		b.popScope()

	case *ast.VarDecl:
		b.localDecl(stmt)

	case *ast.AssignStmt:
		b.assign(stmt)

	case *ast.ExprStmt:
		b.callStmt(stmt)

	case *ast.ReturnStmt:
		if stmt.Value == nil && b.fn != nil && b.fn.Name == "main" {
			// a valueless return from main exits the program
			b.append(ir.Instr{Op: ir.Halt, Operands: []ir.Operand{ir.Imm(int64(0), ir.I32Type)}})
			return
		}
		var operands []ir.Operand
		if stmt.Value != nil {
			operands = append(operands, b.eval(stmt.Value))
		}
		b.append(ir.Instr{Op: ir.Ret, Operands: operands})

	case *ast.IfStmt:
		b.ifStmt(stmt)

	case *ast.WhileStmt:
		b.whileStmt(stmt)

	case *ast.BadStmt:
		// already diagnosed by the parser

	default:
		b.errorf(stmt, "unimplemented ir gen for node %v", stmt)
	}
}

func (b *builder) localDecl(decl *ast.VarDecl) {
	id := decl.Identifier()

	if decl.DeclTok == token.CONST {
		val, ok := b.foldConstant(decl.Value)
		if !ok {
			b.errorf(decl, "could not evaluate the constant %s", id)
			return
		}
		if !b.bind(b.currentScope(), id, val) {
			b.errorf(decl, "redeclaring the local constant %s", id)
		}
		return
	}

	init := b.eval(decl.Value)
	dest := ir.Name(id, init.Type)
	if decl.Name.Typed() {
		dest.Type = b.typeFrom(decl.Name, decl.Name.Type, decl.Name.TypeLit)
	}
	b.append(ir.Instr{Op: ir.Assign, Operands: []ir.Operand{dest, init}})
	if !b.bind(b.currentScope(), id, dest) {
		b.errorf(decl, "redeclaring the local variable %s", id)
	}
}

func (b *builder) assign(stmt *ast.AssignStmt) {
	name := stmt.Dest.(*ast.LiteralExpr).Val.Raw
	dest, ok := b.lookup(name)
	if !ok {
		b.errorf(stmt.Dest, "variable %s does not exist", name)
		return
	}
	if dest.Immediate {
		b.errorf(stmt.Dest, "cannot assign to the constant %s", name)
		return
	}

	src := b.eval(stmt.Value)

	if stmt.AssignTok.IsAugBinop() {
		var op ir.Op
		switch stmt.AssignTok.AugBinop() {
		case token.PLUS:
			op = ir.Add
		case token.MINUS:
			op = ir.Sub
		case token.STAR:
			op = ir.Mul
		}
		b.append(ir.Instr{Op: op, Operands: []ir.Operand{dest, dest, src}})
		return
	}

	// plain assignment: if the source is the result of the previous
	// instruction, rename that result to the destination instead of
	// emitting a copy.
	if block := b.currentBlock(); len(block.Instrs) > 0 && !src.Immediate {
		last := &block.Instrs[len(block.Instrs)-1]
		if res, ok := last.Result(); ok && res.SymName() == src.SymName() {
			last.Operands[0] = dest
			return
		}
	}
	b.append(ir.Instr{Op: ir.Assign, Operands: []ir.Operand{dest, src}})
}

func (b *builder) callStmt(stmt *ast.ExprStmt) {
	call, ok := stmt.Expr.(*ast.CallExpr)
	if !ok {
		b.errorf(stmt, "cannot do anything with %v in visit", stmt.Expr)
		return
	}

	callee, ok := b.resolveCallee(call)
	if !ok {
		return
	}

	operands := []ir.Operand{callee}
	for _, arg := range call.Args {
		operands = append(operands, b.eval(arg))
	}
	b.append(ir.Instr{Op: ir.Call, Operands: operands})
}

// resolveCallee resolves the callee expression of a call against the
// function table (matching on arity) and the builtin table. It returns an
// immediate func-typed operand referencing the callee by name.
func (b *builder) resolveCallee(call *ast.CallExpr) (ir.Operand, bool) {
	lit, ok := call.Fn.(*ast.LiteralExpr)
	if !ok || lit.Tok != token.IDENT {
		b.errorf(call.Fn, "callee must be a function name")
		return ir.Operand{}, false
	}
	name := lit.Val.Raw

	if fn := b.prog.LookupFunctionArity(name, len(call.Args)); fn != nil {
		return ir.Imm(name, fn.Type), true
	}
	if op, ok := b.builtins[name]; ok {
		return op, true
	}
	b.errorf(call, "function %s is not defined", name)
	return ir.Operand{}, false
}

func (b *builder) ifStmt(stmt *ast.IfStmt) {
	thenL := b.blockName()
	elseL := b.blockName() // the else block, or the exit when there is none

	b.evalCondition(stmt.Cond, thenL, elseL)

	b.appendBlock(thenL)
	b.stmt(stmt.Then)

	if stmt.False == nil {
		if !b.currentBlock().Terminated() {
			b.branchTo(elseL)
		}
		b.appendBlock(elseL)
		return
	}

	exitL := b.blockName()
	thenTerminated := b.currentBlock().Terminated()
	if !thenTerminated {
		b.branchTo(exitL)
	}

	b.appendBlock(elseL)
	b.stmt(stmt.False)
	elseTerminated := b.currentBlock().Terminated()
	if !elseTerminated {
		b.branchTo(exitL)
	}

	if !thenTerminated || !elseTerminated {
		b.appendBlock(exitL)
	}
}

func (b *builder) whileStmt(stmt *ast.WhileStmt) {
	condL := b.blockName()
	bodyL := b.blockName()
	exitL := b.blockName()

	b.branchTo(condL)
	b.appendBlock(condL)
	b.evalCondition(stmt.Cond, bodyL, exitL)

	b.appendBlock(bodyL)
	b.stmt(stmt.Body)
	if !b.currentBlock().Terminated() {
		b.branchTo(condL)
	}

	b.appendBlock(exitL)
}
