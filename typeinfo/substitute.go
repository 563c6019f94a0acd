package typeinfo

// Bindings maps type-variable symbols to the types they stand for.
type Bindings map[string]TypeInfo

// Merge returns a new Bindings holding b overlaid with other.
func (b Bindings) Merge(other Bindings) Bindings {
	out := make(Bindings, len(b)+len(other))
	for k, v := range b {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// Substitute replaces every bound type variable in t. Containers are always
// rebuilt, so the result never aliases a mutable part of t. Unbound
// variables keep their symbol and get their bound substituted.
func Substitute(t TypeInfo, b Bindings) TypeInfo {
	switch v := t.(type) {
	case *FormalTypeParameter:
		if !v.IsWildcard() {
			if r, ok := b[v.symbol]; ok && r != nil {
				return Substitute(r, nil)
			}
		}
		return &FormalTypeParameter{symbol: v.symbol, bound: Substitute(v.bound, b)}
	case *Parameterized:
		p := &Parameterized{name: v.name, full: v.full}
		if v.args != nil {
			p.args = make([]TypeInfo, len(v.args))
			for i, a := range v.args {
				p.args[i] = Substitute(a, b)
			}
		}
		return p
	case *Array:
		return NewArray(Substitute(v.elem, b), v.dim)
	case *Vararg:
		return &Vararg{elem: Substitute(v.elem, b)}
	case *Function:
		defs := make([]FunctionSignature, len(v.defs))
		for i, d := range v.defs {
			defs[i] = FunctionSignature{Parameters: SubstituteAll(d.Parameters, b)}
			if d.Return != nil {
				defs[i].Return = Substitute(d.Return, b)
			}
		}
		return &Function{defs: defs, innerCtor: v.innerCtor}
	}
	return t
}

func SubstituteAll(ts []TypeInfo, b Bindings) []TypeInfo {
	if ts == nil {
		return nil
	}
	out := make([]TypeInfo, len(ts))
	for i, t := range ts {
		out[i] = Substitute(t, b)
	}
	return out
}

// Clone returns a deep copy of t that shares only immutable leaves.
func Clone(t TypeInfo) TypeInfo {
	return Substitute(t, nil)
}

// Erasure strips type arguments and replaces type variables by the erasure
// of their bound.
func Erasure(t TypeInfo) TypeInfo {
	switch v := t.(type) {
	case *FormalTypeParameter:
		return Erasure(v.bound)
	case *Parameterized:
		return NewQualified(v.name)
	case *Array:
		return NewArray(Erasure(v.elem), v.dim)
	case *Vararg:
		return NewVararg(Erasure(v.elem))
	}
	return t
}

// FreeVariables lists the symbols of the non-wildcard type variables in t,
// in first-occurrence order.
func FreeVariables(t TypeInfo) []string {
	var out []string
	seen := make(map[string]bool)
	var walk func(TypeInfo)
	walk = func(t TypeInfo) {
		switch v := t.(type) {
		case *FormalTypeParameter:
			if !v.IsWildcard() && !seen[v.symbol] {
				seen[v.symbol] = true
				out = append(out, v.symbol)
			}
			walk(v.bound)
		case *Parameterized:
			for _, a := range v.args {
				walk(a)
			}
		case *Array:
			walk(v.elem)
		case *Vararg:
			walk(v.elem)
		case *Function:
			for _, d := range v.defs {
				for _, p := range d.Parameters {
					walk(p)
				}
				if d.Return != nil {
					walk(d.Return)
				}
			}
		}
	}
	walk(t)
	return out
}

func IsReference(t TypeInfo) bool {
	switch t.Kind() {
	case KindQualified, KindParameterized, KindArray, KindVararg, KindFormal, KindNull:
		return true
	}
	return false
}

// Equal reports structural equality.
func Equal(a, b TypeInfo) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch x := a.(type) {
	case *Primitive:
		return x.name == b.(*Primitive).name
	case *VoidType, *NullType:
		return true
	case *Qualified:
		return x.name == b.(*Qualified).name
	case *Parameterized:
		y := b.(*Parameterized)
		return x.name == y.name && x.full == y.full && EqualAll(x.args, y.args)
	case *Array:
		y := b.(*Array)
		return x.dim == y.dim && Equal(x.elem, y.elem)
	case *Vararg:
		return Equal(x.elem, b.(*Vararg).elem)
	case *FormalTypeParameter:
		y := b.(*FormalTypeParameter)
		return x.symbol == y.symbol && Equal(x.bound, y.bound)
	case *Function:
		y := b.(*Function)
		if x.innerCtor != y.innerCtor || len(x.defs) != len(y.defs) {
			return false
		}
		for i := range x.defs {
			if !EqualAll(x.defs[i].Parameters, y.defs[i].Parameters) || !Equal(x.defs[i].Return, y.defs[i].Return) {
				return false
			}
		}
		return true
	}
	return false
}

func EqualAll(a, b []TypeInfo) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}
