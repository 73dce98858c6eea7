package ir

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

var opSymbols = map[Op]string{
	Add:        "+",
	Sub:        "-",
	Mul:        "*",
	Div:        "/",
	ShiftLeft:  "<<",
	ShiftRight: ">>",
	BitOr:      "|",
	BitAnd:     "&",
	BoolOr:     "||",
	BoolAnd:    "&&",
	Eq:         "==",
	Ne:         "!=",
	Lt:         "<",
	Le:         "<=",
	Gt:         ">",
	Ge:         ">=",
}

func (ins *Instr) String() string {
	var sb strings.Builder
	if res, ok := ins.Result(); ok {
		fmt.Fprintf(&sb, "%s = ", res)
	}

	if sym, ok := opSymbols[ins.Op]; ok {
		fmt.Fprintf(&sb, "%s %s %s", ins.Operands[1], sym, ins.Operands[2])
		return sb.String()
	}

	switch ins.Op {
	case Assign:
		fmt.Fprintf(&sb, "%s", ins.Operands[len(ins.Operands)-1])
	default:
		sb.WriteString(ins.Op.String())
		for _, in := range ins.Inputs() {
			sb.WriteByte(' ')
			sb.WriteString(in.String())
		}
	}
	return sb.String()
}

// Fprint writes a human-readable dump of the program to w: the global
// constant bindings in sorted order, then each function with its blocks and
// instructions in canonical walk order.
func Fprint(w io.Writer, p *Program) error {
	names := maps.Keys(p.Globals)
	slices.Sort(names)
	for _, name := range names {
		if _, err := fmt.Fprintf(w, "global %s = %s\n", name, p.Globals[name]); err != nil {
			return err
		}
	}
	if len(names) > 0 && len(p.Funcs) > 0 {
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}

	for i, fn := range p.Funcs {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "%s", fn.Name); err != nil {
			return err
		}
		for _, param := range fn.Parameters() {
			if _, err := fmt.Fprintf(w, " %s", param); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w, " {"); err != nil {
			return err
		}
		for _, b := range fn.Blocks {
			if _, err := fmt.Fprintf(w, "%s:\n", b.Label); err != nil {
				return err
			}
			for i := range b.Instrs {
				if _, err := fmt.Fprintf(w, "\t%s\n", &b.Instrs[i]); err != nil {
					return err
				}
			}
		}
		if _, err := fmt.Fprintln(w, "}"); err != nil {
			return err
		}
	}
	return nil
}
