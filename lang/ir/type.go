package ir

import "strings"

// Kind discriminates the type descriptors.
type Kind int

// List of type kinds: the primitives, function types and struct types.
const (
	Unit Kind = iota
	Bool
	Str
	I32
	I64
	F32
	F64
	Func
	Struct
)

var kindNames = [...]string{
	Unit:   "unit",
	Bool:   "boolean",
	Str:    "string",
	I32:    "i32",
	I64:    "i64",
	F32:    "f32",
	F64:    "f64",
	Func:   "func",
	Struct: "struct",
}

func (k Kind) String() string { return kindNames[k] }

// Type is a type descriptor. Primitive types are shared singletons;
// function and struct types carry their composition.
type Type struct {
	Kind Kind

	// function types
	Params []*Type
	Return *Type

	// struct types
	Fields []Field
}

// Field is a single named field of a struct type.
type Field struct {
	Name   string
	Type   *Type
	Offset uint64
}

// Shared descriptors for the primitive types.
var (
	UnitType = &Type{Kind: Unit}
	BoolType = &Type{Kind: Bool}
	StrType  = &Type{Kind: Str}
	I32Type  = &Type{Kind: I32}
	I64Type  = &Type{Kind: I64}
	F32Type  = &Type{Kind: F32}
	F64Type  = &Type{Kind: F64}
)

// FuncType builds a function type descriptor from its parameter types and
// return type.
func FuncType(params []*Type, ret *Type) *Type {
	return &Type{Kind: Func, Params: params, Return: ret}
}

// Equal reports whether two type descriptors describe the same type.
func (t *Type) Equal(other *Type) bool {
	if t == other {
		return true
	}
	if t == nil || other == nil || t.Kind != other.Kind {
		return false
	}
	switch t.Kind {
	case Func:
		if len(t.Params) != len(other.Params) || !t.Return.Equal(other.Return) {
			return false
		}
		for i, p := range t.Params {
			if !p.Equal(other.Params[i]) {
				return false
			}
		}
		return true
	case Struct:
		if len(t.Fields) != len(other.Fields) {
			return false
		}
		for i, f := range t.Fields {
			o := other.Fields[i]
			if f.Name != o.Name || !f.Type.Equal(o.Type) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	if t.Kind != Func {
		return t.Kind.String()
	}
	var sb strings.Builder
	sb.WriteString("func(")
	for i, p := range t.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p.String())
	}
	sb.WriteString("): ")
	sb.WriteString(t.Return.String())
	return sb.String()
}
