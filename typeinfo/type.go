// Package typeinfo models the types that appear in JVM declarations and at
// call sites: primitives, class types, parameterized types, arrays, varargs,
// type variables and functional (method reference / lambda) positions.
//
// Values are immutable except for Parameterized placeholders, which can be
// populated exactly once. Substitution never mutates its input.
package typeinfo

import (
	"errors"
	"strings"
)

const ObjectName = "java.lang.Object"

var ErrAlreadyPopulated = errors.New("type arguments already populated")

type Kind int

const (
	KindPrimitive Kind = iota
	KindVoid
	KindNull
	KindQualified
	KindParameterized
	KindArray
	KindVararg
	KindFormal
	KindFunction
)

func (k Kind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindVoid:
		return "void"
	case KindNull:
		return "null"
	case KindQualified:
		return "qualified"
	case KindParameterized:
		return "parameterized"
	case KindArray:
		return "array"
	case KindVararg:
		return "vararg"
	case KindFormal:
		return "formal"
	case KindFunction:
		return "function"
	}
	return "unknown"
}

type TypeInfo interface {
	Kind() Kind
	// QualifiedName returns the erased, fully qualified name. It panics for
	// *Function, which has no single name.
	QualifiedName() string
	// Name returns the display form, including type arguments and array or
	// vararg suffixes.
	Name() string
	String() string
}

type Primitive struct {
	name string
}

func (p *Primitive) Kind() Kind            { return KindPrimitive }
func (p *Primitive) QualifiedName() string { return p.name }
func (p *Primitive) Name() string          { return p.name }
func (p *Primitive) String() string        { return p.name }

type VoidType struct{}

var Void = &VoidType{}

func (*VoidType) Kind() Kind            { return KindVoid }
func (*VoidType) QualifiedName() string { return "void" }
func (*VoidType) Name() string          { return "void" }
func (*VoidType) String() string        { return "void" }

type NullType struct{}

var Null = &NullType{}

func (*NullType) Kind() Kind            { return KindNull }
func (*NullType) QualifiedName() string { return "null" }
func (*NullType) Name() string          { return "null" }
func (*NullType) String() string        { return "null" }

type Qualified struct {
	name string
}

var Object = NewQualified(ObjectName)

func NewQualified(name string) *Qualified {
	return &Qualified{name: name}
}

func (q *Qualified) Kind() Kind            { return KindQualified }
func (q *Qualified) QualifiedName() string { return q.name }
func (q *Qualified) Name() string          { return q.name }
func (q *Qualified) String() string        { return q.name }

// Parameterized is a class type with type arguments. A placeholder created
// by NewPlaceholder has no arguments until Populate is called.
type Parameterized struct {
	name string
	args []TypeInfo
	full bool
}

func NewParameterized(name string, args ...TypeInfo) *Parameterized {
	p := &Parameterized{name: name}
	if len(args) > 0 {
		p.args = append([]TypeInfo(nil), args...)
		p.full = true
	}
	return p
}

func NewPlaceholder(name string) *Parameterized {
	return &Parameterized{name: name}
}

// Populate sets the type arguments of a placeholder. It fails if the
// arguments were already set.
func (p *Parameterized) Populate(args []TypeInfo) error {
	if p.full {
		return ErrAlreadyPopulated
	}
	if len(args) == 0 {
		return errors.New("populate with empty type argument list")
	}
	p.args = append([]TypeInfo(nil), args...)
	p.full = true
	return nil
}

func (p *Parameterized) TypeArguments() []TypeInfo {
	return append([]TypeInfo(nil), p.args...)
}

func (p *Parameterized) Arity() int                 { return len(p.args) }
func (p *Parameterized) IsFullyParameterized() bool { return p.full }
func (p *Parameterized) Kind() Kind                 { return KindParameterized }
func (p *Parameterized) QualifiedName() string      { return p.name }
func (p *Parameterized) String() string             { return p.Name() }

func (p *Parameterized) Name() string {
	if len(p.args) == 0 {
		return p.name
	}
	var sb strings.Builder
	sb.WriteString(p.name)
	sb.WriteByte('<')
	for i, a := range p.args {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(a.Name())
	}
	sb.WriteByte('>')
	return sb.String()
}

type Array struct {
	elem TypeInfo
	dim  int
}

// NewArray wraps elem in dim array dimensions. A zero dimension returns elem
// itself and nested arrays are flattened.
func NewArray(elem TypeInfo, dim int) TypeInfo {
	if dim <= 0 {
		return elem
	}
	if a, ok := elem.(*Array); ok {
		return &Array{elem: a.elem, dim: a.dim + dim}
	}
	return &Array{elem: elem, dim: dim}
}

func (a *Array) Element() TypeInfo { return a.elem }
func (a *Array) Dimension() int    { return a.dim }
func (a *Array) Kind() Kind        { return KindArray }
func (a *Array) String() string    { return a.Name() }

// ComponentType strips one dimension.
func (a *Array) ComponentType() TypeInfo {
	return NewArray(a.elem, a.dim-1)
}

func (a *Array) QualifiedName() string {
	return a.elem.QualifiedName() + strings.Repeat("[]", a.dim)
}

func (a *Array) Name() string {
	return a.elem.Name() + strings.Repeat("[]", a.dim)
}

// Vararg is a trailing variable-arity parameter.
type Vararg struct {
	elem TypeInfo
}

func NewVararg(elem TypeInfo) *Vararg {
	return &Vararg{elem: elem}
}

func (v *Vararg) Element() TypeInfo     { return v.elem }
func (v *Vararg) AsArray() TypeInfo     { return NewArray(v.elem, 1) }
func (v *Vararg) Kind() Kind            { return KindVararg }
func (v *Vararg) QualifiedName() string { return v.elem.QualifiedName() + "[]" }
func (v *Vararg) Name() string          { return v.elem.Name() + "..." }
func (v *Vararg) String() string        { return v.Name() }

const WildcardSymbol = "?"

// FormalTypeParameter is a type variable. Wildcard type arguments are
// represented with the symbol "?" and their upper bound.
type FormalTypeParameter struct {
	symbol string
	bound  TypeInfo
}

func NewFormal(symbol string, bound TypeInfo) *FormalTypeParameter {
	if bound == nil {
		bound = Object
	}
	return &FormalTypeParameter{symbol: symbol, bound: bound}
}

func NewWildcard(bound TypeInfo) *FormalTypeParameter {
	return NewFormal(WildcardSymbol, bound)
}

func (f *FormalTypeParameter) Symbol() string    { return f.symbol }
func (f *FormalTypeParameter) Bound() TypeInfo   { return f.bound }
func (f *FormalTypeParameter) IsWildcard() bool  { return f.symbol == WildcardSymbol }
func (f *FormalTypeParameter) Kind() Kind        { return KindFormal }
func (f *FormalTypeParameter) String() string    { return f.Name() }
func (f *FormalTypeParameter) HasDefaultBound() bool {
	return f.bound.Kind() == KindQualified && f.bound.QualifiedName() == ObjectName
}

// WithBound returns a copy of f bound to b.
func (f *FormalTypeParameter) WithBound(b TypeInfo) *FormalTypeParameter {
	return NewFormal(f.symbol, b)
}

// QualifiedName is the erasure: the qualified name of the bound.
func (f *FormalTypeParameter) QualifiedName() string {
	return f.bound.QualifiedName()
}

func (f *FormalTypeParameter) Name() string {
	if f.IsWildcard() && !f.HasDefaultBound() {
		return "? extends " + f.bound.Name()
	}
	return f.symbol
}

type FunctionSignature struct {
	Parameters []TypeInfo
	Return     TypeInfo
}

func (s FunctionSignature) String() string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i, p := range s.Parameters {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p.Name())
	}
	sb.WriteString(") -> ")
	if s.Return == nil {
		sb.WriteString("void")
	} else {
		sb.WriteString(s.Return.Name())
	}
	return sb.String()
}

// Function stands for a method reference or lambda position. It carries
// every structurally compatible signature until the call site picks one.
type Function struct {
	defs      []FunctionSignature
	innerCtor bool
}

func NewFunction(defs []FunctionSignature, innerConstructor bool) *Function {
	return &Function{defs: append([]FunctionSignature(nil), defs...), innerCtor: innerConstructor}
}

func (f *Function) Definitions() []FunctionSignature {
	return append([]FunctionSignature(nil), f.defs...)
}

func (f *Function) IsInnerConstructor() bool { return f.innerCtor }
func (f *Function) Kind() Kind               { return KindFunction }
func (f *Function) String() string           { return f.Name() }

func (f *Function) QualifiedName() string {
	panic("typeinfo: function type has no qualified name")
}

func (f *Function) Name() string {
	parts := make([]string, len(f.defs))
	for i, d := range f.defs {
		parts[i] = d.String()
	}
	return "{" + strings.Join(parts, " | ") + "}"
}
