package ir

// Program is an ordered list of uniquely-named functions along with the type
// table and the global constant bindings produced by constant folding.
type Program struct {
	Funcs []*Function

	// Globals holds the folded global constant bindings, keyed by source
	// name.
	Globals map[string]Operand

	types map[string]*Type
}

// NewProgram creates an empty program with the builtin type names
// registered.
func NewProgram() *Program {
	return &Program{
		Globals: make(map[string]Operand),
		types: map[string]*Type{
			"int32":   I32Type,
			"int64":   I64Type,
			"float32": F32Type,
			"float64": F64Type,
			"boolean": BoolType,
			"string":  StrType,
			"unit":    UnitType,
		},
	}
}

// FunctionExists returns true if a function with the provided name is
// registered.
func (p *Program) FunctionExists(name string) bool {
	return p.LookupFunction(name) != nil
}

// LookupFunction returns the registered function with the provided name, or
// nil.
func (p *Program) LookupFunction(name string) *Function {
	for _, fn := range p.Funcs {
		if fn.Name == name {
			return fn
		}
	}
	return nil
}

// LookupFunctionArity returns the registered function with the provided
// name and parameter count, or nil.
func (p *Program) LookupFunctionArity(name string, paramCount int) *Function {
	for _, fn := range p.Funcs {
		if fn.Name == name && len(fn.Type.Params) == paramCount {
			return fn
		}
	}
	return nil
}

// RegisterFunction registers a function under the provided name and type
// and returns it. If a function with the same name and type already exists,
// that function is returned instead.
func (p *Program) RegisterFunction(name string, typ *Type) *Function {
	for _, fn := range p.Funcs {
		if fn.Name == name && fn.Type.Equal(typ) {
			return fn
		}
	}
	fn := &Function{Name: name, Type: typ}
	p.Funcs = append(p.Funcs, fn)
	return fn
}

// LookupType returns the type registered under the provided name. If no
// type is registered, it falls back to the type of the function with that
// name. Returns nil when neither exists.
func (p *Program) LookupType(name string) *Type {
	if t, ok := p.types[name]; ok {
		return t
	}
	if fn := p.LookupFunction(name); fn != nil {
		return fn.Type
	}
	return nil
}

// RegisterType registers a named type, e.g. a struct declaration. It
// returns false if the name is already taken.
func (p *Program) RegisterType(name string, typ *Type) bool {
	if _, ok := p.types[name]; ok {
		return false
	}
	p.types[name] = typ
	return true
}
