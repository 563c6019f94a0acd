package java

import (
	"strings"

	"github.com/dhamidi/jbind/typeinfo"
)

type Visibility string

const (
	VisibilityPublic    Visibility = "public"
	VisibilityProtected Visibility = "protected"
	VisibilityPrivate   Visibility = "private"
	VisibilityPackage   Visibility = "package"
)

type ClassKind string

const (
	ClassKindClass      ClassKind = "class"
	ClassKindInterface  ClassKind = "interface"
	ClassKindEnum       ClassKind = "enum"
	ClassKindAnnotation ClassKind = "annotation"
)

// ClassID identifies a class within one catalog.
type ClassID int64

// ClassInfo is a decoded class declaration. Names are binary names in
// source form: java.util.Map$Entry. A ClassInfo is never modified after
// construction.
type ClassInfo struct {
	ID         ClassID
	Unit       string
	Name       string
	SimpleName string
	Package    string
	Descriptor string
	Signature  string

	Visibility  Visibility
	Kind        ClassKind
	IsAbstract  bool
	IsFinal     bool
	IsStatic    bool
	IsInner     bool
	IsAnonymous bool

	// OuterClass is the enclosing class of a nested class.
	OuterClass   string
	SuperClass   string
	Interfaces   []string
	InnerClasses []string

	TypeParameters          []*typeinfo.FormalTypeParameter
	ParameterizedSupertypes []typeinfo.TypeInfo
}

func (c *ClassInfo) IsInterface() bool {
	return c.Kind == ClassKindInterface || c.Kind == ClassKindAnnotation
}

// HasEnclosingInstance reports whether constructing the class takes an
// implicit instance of OuterClass.
func (c *ClassInfo) HasEnclosingInstance() bool {
	return c.IsInner && !c.IsStatic && !c.IsAnonymous && !c.IsInterface() && c.OuterClass != ""
}

// Type returns the class as a type: parameterized over its own formals
// when it is generic.
func (c *ClassInfo) Type() typeinfo.TypeInfo {
	if len(c.TypeParameters) == 0 {
		return typeinfo.NewQualified(c.Name)
	}
	args := make([]typeinfo.TypeInfo, len(c.TypeParameters))
	for i, f := range c.TypeParameters {
		args[i] = f
	}
	return typeinfo.NewParameterized(c.Name, args...)
}

// SupertypeArguments returns the type arguments c passes to the supertype
// named name, if c's signature parameterizes it.
func (c *ClassInfo) SupertypeArguments(name string) ([]typeinfo.TypeInfo, bool) {
	for _, t := range c.ParameterizedSupertypes {
		if p, ok := t.(*typeinfo.Parameterized); ok && p.QualifiedName() == name {
			return p.TypeArguments(), true
		}
	}
	return nil, false
}

// InnerConstructor names the constructor of a non-static inner class. The
// implicit enclosing instance parameter is not part of the argument list.
type InnerConstructor struct {
	Outer string
	Inner string
}

// Prefix is the binary name of the outer class without its package,
// followed by "$": A$B$ for the inner class p.A$B$C.
func (ic InnerConstructor) Prefix() string {
	if pkg := PackageName(ic.Outer); pkg != "" {
		return strings.TrimPrefix(ic.Outer, pkg+".") + "$"
	}
	return ic.Outer + "$"
}

type MethodInfo struct {
	Class *ClassInfo
	// Name is the simple class name for constructors.
	Name             string
	InnerConstructor *InnerConstructor
	Descriptor       string
	Signature        string
	Arguments        []typeinfo.TypeInfo
	Return           typeinfo.TypeInfo
	Throws           []string
	TypeParameters   []*typeinfo.FormalTypeParameter
	// Order is the position of the method in its class file.
	Order int

	Visibility     Visibility
	IsStatic       bool
	IsAbstract     bool
	IsFinal        bool
	IsSynchronized bool
	IsVarargs      bool
	IsBridge       bool
	IsConstructor  bool
}

func (m *MethodInfo) Arity() int { return len(m.Arguments) }

// WithTypes returns a copy of m with substituted argument and return types.
func (m *MethodInfo) WithTypes(args []typeinfo.TypeInfo, ret typeinfo.TypeInfo) *MethodInfo {
	c := *m
	c.Arguments = append([]typeinfo.TypeInfo(nil), args...)
	c.Return = ret
	return &c
}

// Key identifies the method within its class.
func (m *MethodInfo) Key() string {
	return m.Name + m.Descriptor
}

func (m *MethodInfo) String() string {
	var sb strings.Builder
	if m.Class != nil {
		sb.WriteString(m.Class.Name)
		sb.WriteByte('.')
	}
	if m.InnerConstructor != nil {
		sb.WriteString(m.InnerConstructor.Prefix())
	}
	sb.WriteString(m.Name)
	sb.WriteByte('(')
	for i, a := range m.Arguments {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(a.Name())
	}
	sb.WriteByte(')')
	if !m.IsConstructor && m.Return != nil {
		sb.WriteString(" ")
		sb.WriteString(m.Return.Name())
	}
	return sb.String()
}

type FieldInfo struct {
	Class      *ClassInfo
	Name       string
	Type       typeinfo.TypeInfo
	Descriptor string
	Signature  string

	Visibility     Visibility
	IsStatic       bool
	IsFinal        bool
	IsVolatile     bool
	IsTransient    bool
	IsEnumConstant bool
}

// WithType returns a copy of f with a substituted type.
func (f *FieldInfo) WithType(t typeinfo.TypeInfo) *FieldInfo {
	c := *f
	c.Type = t
	return &c
}

// OwningClassInfo describes the class a call site appears in.
type OwningClassInfo struct {
	// Name is the innermost enclosing class.
	Name string
	// Constructible lists the classes "new" may instantiate at the site.
	Constructible []string
	// TypeArguments bind the formals of Name, by position.
	TypeArguments []typeinfo.TypeInfo
}

func NewOwningClassInfo(name string, constructible []string, typeArgs ...typeinfo.TypeInfo) *OwningClassInfo {
	return &OwningClassInfo{
		Name:          name,
		Constructible: append([]string(nil), constructible...),
		TypeArguments: append([]typeinfo.TypeInfo(nil), typeArgs...),
	}
}

func (o *OwningClassInfo) CanConstruct(name string) bool {
	if o == nil || len(o.Constructible) == 0 {
		return true
	}
	for _, c := range o.Constructible {
		if c == name {
			return true
		}
	}
	return false
}

// Bindings maps formals to the owning class's type arguments. A formal
// without an argument is bound to its own bound.
func (o *OwningClassInfo) Bindings(formals []*typeinfo.FormalTypeParameter) typeinfo.Bindings {
	b := make(typeinfo.Bindings, len(formals))
	for i, f := range formals {
		if o != nil && i < len(o.TypeArguments) && o.TypeArguments[i] != nil {
			b[f.Symbol()] = o.TypeArguments[i]
			continue
		}
		b[f.Symbol()] = f.Bound()
	}
	return b
}

// SimpleName returns the part of a binary name after the last '.' or '$'.
func SimpleName(name string) string {
	if i := strings.LastIndexAny(name, ".$"); i >= 0 {
		return name[i+1:]
	}
	return name
}

// PackageName returns the package part of a binary name.
func PackageName(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[:i]
	}
	return ""
}
