// Package ast defines the types to represent the abstract syntax tree (AST)
// of the NewJ language. Nodes form a strictly tree-shaped structure: a
// function exclusively owns its parameters, return-type annotation and body,
// a block exclusively owns its statements, and expressions own their
// subexpressions. There are no parent pointers.
package ast

import (
	"fmt"
	"sort"
	"strings"

	"github.com/newj-lang/newj/lang/token"
)

// Node represents any node in the AST.
type Node interface {
	// Every Node implements the fmt.Formatter interface so they can print a
	// description of themselves. The only supported verbs are 'v' and 's'.
	// The '#' flag can be used to print count information about children
	// nodes. A width can be set to define the number of runes to print for
	// the node description - by default, that width is padded with spaces
	// on the left if the description is shorter, otherwise it is truncated
	// to that width. The '-' flag can be used to pad with spaces on the
	// right instead, and the '+' flag can be used to prevent padding
	// altogether - it only truncates if longer.
	fmt.Formatter

	// Span reports the start and end position of the node.
	Span() (start, end token.Pos)

	// Walk enters each node inside itself to implement the Visitor pattern.
	Walk(v Visitor)
}

// Expr represents an expression in the AST.
type Expr interface {
	Node
	expr()
}

// Stmt represents a statement in the AST.
type Stmt interface {
	Node

	// BlockEnding returns true if the statement should only appear as the
	// last statement in a block (return).
	BlockEnding() bool
}

// TopLevel represents a top-level item of a program: a function definition,
// a global constant declaration or a struct declaration.
type TopLevel interface {
	Node

	// Identifier returns the name under which the item is registered in the
	// program.
	Identifier() string
}

// Program is the top-level container of a parsed source file. Items are kept
// in source order and indexed by identifier; identifiers are unique within a
// program.
type Program struct {
	// Name is the filename, which may be empty if the program was not parsed
	// from a file.
	Name string

	// Items is the ordered list of top-level items.
	Items []TopLevel

	// EOF is the position of the end-of-file marker, useful for empty files
	// to get a valid position.
	EOF token.Pos

	index map[string]TopLevel
}

// Find returns the top-level item registered under id, or nil if there is
// none.
func (p *Program) Find(id string) TopLevel {
	return p.index[id]
}

// AddItem registers a top-level item. It returns false without registering
// if an item with the same identifier already exists.
func (p *Program) AddItem(item TopLevel) bool {
	if p.index == nil {
		p.index = make(map[string]TopLevel)
	}
	id := item.Identifier()
	if _, ok := p.index[id]; ok {
		return false
	}
	p.index[id] = item
	p.Items = append(p.Items, item)
	return true
}

func (p *Program) Format(f fmt.State, verb rune) {
	lbl := "program"
	if p.Name != "" {
		lbl += " " + strings.ReplaceAll(p.Name, "\\", "/")
	}
	format(f, verb, p, lbl, map[string]int{"items": len(p.Items)})
}

func (p *Program) Span() (start, end token.Pos) {
	if len(p.Items) == 0 {
		return p.EOF, p.EOF
	}
	start, _ = p.Items[0].Span()
	_, end = p.Items[len(p.Items)-1].Span()
	return start, end
}

func (p *Program) Walk(v Visitor) {
	for _, it := range p.Items {
		Walk(v, it)
	}
}

func format(f fmt.State, verb rune, n Node, label string, counts map[string]int) {
	if verb != 'v' && verb != 's' {
		fmt.Fprintf(f, "%%!%c(%T)", verb, n)
		return
	}

	// replace tabs and newlines with the corresponding unicode key
	label = strings.ReplaceAll(label, "\r\n", "⏎")
	label = strings.ReplaceAll(label, "\n", "⏎")
	label = strings.ReplaceAll(label, "\t", "⭾")

	if w, ok := f.Width(); ok {
		minus, plus := f.Flag('-'), f.Flag('+')
		runes := []rune(label)
		if len(runes) >= w {
			runes = runes[:w]
		} else if minus {
			runes = append(runes, []rune(strings.Repeat(" ", w-len(runes)))...)
		} else if !plus {
			runes = append([]rune(strings.Repeat(" ", w-len(runes))), runes...)
		}
		label = string(runes)
	}

	fmt.Fprint(f, label)
	if f.Flag('#') && len(counts) > 0 {
		keys := make([]string, 0, len(counts))
		for k := range counts {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		fmt.Fprint(f, " {")
		for i, k := range keys {
			if i > 0 {
				fmt.Fprint(f, ", ")
			}
			fmt.Fprintf(f, "%s=%d", k, counts[k])
		}
		fmt.Fprint(f, "}")
	}
}
