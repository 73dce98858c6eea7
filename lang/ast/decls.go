package ast

import (
	"fmt"

	"github.com/newj-lang/newj/lang/token"
)

// DeclKind identifies the kind of a variable declaration.
type DeclKind int

// List of variable declaration kinds.
const (
	DeclLet DeclKind = iota
	DeclConstLocal
	DeclConstGlobal
)

func (k DeclKind) String() string {
	switch k {
	case DeclLet:
		return "let"
	case DeclConstLocal:
		return "const"
	case DeclConstGlobal:
		return "const-global"
	default:
		return "unknown"
	}
}

type (
	// TypedIdent represents an identifier with an optional explicit type
	// annotation. At a function's name position, the annotation is the
	// function's return type.
	TypedIdent struct {
		Name    string    // identifier text
		Start   token.Pos // position of the identifier
		Colon   token.Pos // 0 if no explicit type
		Type    token.Token
		TypeLit string    // raw text of the type token, empty if none
		TypePos token.Pos // 0 if no explicit type
	}

	// Param represents a function or struct-field parameter: identifier plus
	// mandatory type.
	Param struct {
		Name    string    // identifier text
		Start   token.Pos // position of the identifier
		Colon   token.Pos
		Type    token.Token
		TypeLit string // raw text of the type token
		TypePos token.Pos
	}

	// FuncDecl represents a function definition. The Name carries the
	// optional return-type annotation.
	FuncDecl struct {
		Func   token.Pos
		Name   *TypedIdent
		Lparen token.Pos // 0 if no parameter list
		Params []*Param
		Commas []token.Pos // always len(Params)-1 when a list is present
		Rparen token.Pos   // 0 if no parameter list
		Body   Stmt // the body statement, typically a *Block
	}

	// VarDecl represents a variable declaration, either a top-level constant
	// or a local let/const statement.
	VarDecl struct {
		DeclTok   token.Token // LET or CONST
		DeclStart token.Pos
		Name      *TypedIdent
		Assign    token.Pos
		Value     Expr
		Global    bool // true when declared at the top level
	}

	// StructDecl represents a struct type declaration.
	StructDecl struct {
		Struct  token.Pos
		Name    string
		NamePos token.Pos
		Lbrace  token.Pos
		Fields  []*Param
		Rbrace  token.Pos
	}
)

// Typed returns true if the identifier carries an explicit type annotation.
func (n *TypedIdent) Typed() bool { return n.TypePos != 0 }

func (n *TypedIdent) Format(f fmt.State, verb rune) {
	lbl := "ident " + n.Name
	if n.Typed() {
		lbl += ": " + n.TypeLit
	}
	format(f, verb, n, lbl, nil)
}

func (n *TypedIdent) Span() (start, end token.Pos) {
	if n.Typed() {
		return n.Start, n.TypePos.Add(len(n.TypeLit))
	}
	return n.Start, n.Start.Add(len(n.Name))
}

func (n *TypedIdent) Walk(_ Visitor) {}

func (n *Param) Format(f fmt.State, verb rune) {
	format(f, verb, n, "param "+n.Name+": "+n.TypeLit, nil)
}

func (n *Param) Span() (start, end token.Pos) {
	return n.Start, n.TypePos.Add(len(n.TypeLit))
}

func (n *Param) Walk(_ Visitor) {}

func (n *FuncDecl) Identifier() string { return n.Name.Name }

func (n *FuncDecl) Format(f fmt.State, verb rune) {
	format(f, verb, n, "func "+n.Name.Name, map[string]int{"params": len(n.Params)})
}

func (n *FuncDecl) Span() (start, end token.Pos) {
	_, end = n.Body.Span()
	return n.Func, end
}

func (n *FuncDecl) Walk(v Visitor) {
	Walk(v, n.Name)
	for _, p := range n.Params {
		Walk(v, p)
	}
	Walk(v, n.Body)
}

// Kind returns the declaration kind: let, local constant or global constant.
func (n *VarDecl) Kind() DeclKind {
	switch {
	case n.DeclTok == token.LET:
		return DeclLet
	case n.Global:
		return DeclConstGlobal
	default:
		return DeclConstLocal
	}
}

func (n *VarDecl) Identifier() string { return n.Name.Name }

// BlockEnding implements Stmt for local declarations.
func (n *VarDecl) BlockEnding() bool { return false }

func (n *VarDecl) Format(f fmt.State, verb rune) {
	format(f, verb, n, n.Kind().String()+" "+n.Name.Name, nil)
}

func (n *VarDecl) Span() (start, end token.Pos) {
	if n.Value != nil {
		_, end = n.Value.Span()
	} else {
		_, end = n.Name.Span()
	}
	return n.DeclStart, end
}

func (n *VarDecl) Walk(v Visitor) {
	Walk(v, n.Name)
	if n.Value != nil {
		Walk(v, n.Value)
	}
}

func (n *StructDecl) Identifier() string { return n.Name }

func (n *StructDecl) Format(f fmt.State, verb rune) {
	format(f, verb, n, "struct "+n.Name, map[string]int{"fields": len(n.Fields)})
}

func (n *StructDecl) Span() (start, end token.Pos) {
	return n.Struct, n.Rbrace.Add(1)
}

func (n *StructDecl) Walk(v Visitor) {
	for _, fld := range n.Fields {
		Walk(v, fld)
	}
}
