package java

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dhamidi/jbind/classfile"
	"github.com/dhamidi/jbind/signature"
	"github.com/dhamidi/jbind/typeinfo"
)

// RawClass is the undecoded form of a class as catalog stores persist it.
// Names are binary names in source form.
type RawClass struct {
	Unit         string
	Name         string
	Flags        classfile.AccessFlags
	Signature    string
	SuperClass   string
	Interfaces   []string
	InnerClasses []string

	// Set for nested classes, from the class's own InnerClasses entry.
	Nested     bool
	Anonymous  bool
	OuterClass string
	InnerFlags classfile.AccessFlags
}

type RawMethod struct {
	Name       string
	Descriptor string
	Signature  string
	Flags      classfile.AccessFlags
	Exceptions []string
}

type RawField struct {
	Name       string
	Descriptor string
	Signature  string
	Flags      classfile.AccessFlags
}

// SimpleName is the name of a nested class within its outer class, or
// the part after the last separator for any other class.
func (r RawClass) SimpleName() string {
	if r.Nested && r.OuterClass != "" && strings.HasPrefix(r.Name, r.OuterClass+"$") {
		return r.Name[len(r.OuterClass)+1:]
	}
	return SimpleName(r.Name)
}

// Declaration is everything a catalog records about one class file.
type Declaration struct {
	Class   RawClass
	Methods []RawMethod
	Fields  []RawField
}

// NewClassInfo decodes a raw class. A malformed signature is reported
// together with a ClassInfo built without generic information.
func NewClassInfo(id ClassID, raw RawClass) (*ClassInfo, error) {
	flags := raw.Flags
	if raw.Nested {
		flags = raw.InnerFlags | (raw.Flags & (classfile.AccInterface | classfile.AccAnnotation | classfile.AccEnum))
	}
	c := &ClassInfo{
		ID:           id,
		Unit:         raw.Unit,
		Name:         raw.Name,
		SimpleName:   raw.SimpleName(),
		Package:      PackageName(raw.Name),
		Descriptor:   "L" + classfile.SourceToInternalName(raw.Name) + ";",
		Signature:    raw.Signature,
		Visibility:   visibilityFromAccessFlags(flags),
		Kind:         classKindFromAccessFlags(raw.Flags),
		IsAbstract:   flags.IsAbstract(),
		IsFinal:      flags.IsFinal(),
		IsStatic:     flags.IsStatic(),
		IsInner:      raw.Nested,
		IsAnonymous:  raw.Anonymous,
		OuterClass:   raw.OuterClass,
		SuperClass:   raw.SuperClass,
		Interfaces:   append([]string(nil), raw.Interfaces...),
		InnerClasses: append([]string(nil), raw.InnerClasses...),
	}
	if raw.Signature == "" {
		return c, nil
	}
	cs, err := signature.DecodeClass(raw.Signature)
	if err != nil {
		return c, fmt.Errorf("class %s: %w", raw.Name, err)
	}
	c.TypeParameters = cs.TypeParameters
	supers, err := signature.DecodeParameterizedSupertypes(raw.Signature, cs.TypeParameters)
	if err != nil {
		return c, fmt.Errorf("class %s: %w", raw.Name, err)
	}
	c.ParameterizedSupertypes = supers
	return c, nil
}

// NewMethodInfo decodes a raw method of class. A present signature takes
// precedence over the descriptor; when it is malformed the method is built
// from the descriptor and the error is returned alongside it. An invalid
// descriptor yields a nil method.
func NewMethodInfo(class *ClassInfo, raw RawMethod, order int) (*MethodInfo, error) {
	m := &MethodInfo{
		Class:          class,
		Name:           raw.Name,
		Descriptor:     raw.Descriptor,
		Signature:      raw.Signature,
		Throws:         append([]string(nil), raw.Exceptions...),
		Order:          order,
		Visibility:     visibilityFromAccessFlags(raw.Flags),
		IsStatic:       raw.Flags.IsStatic(),
		IsAbstract:     raw.Flags.IsAbstract(),
		IsFinal:        raw.Flags.IsFinal(),
		IsSynchronized: raw.Flags.IsSynchronized(),
		IsVarargs:      raw.Flags.IsVarargs(),
		IsBridge:       raw.Flags.IsBridge(),
		IsConstructor:  raw.Name == "<init>",
	}
	if m.IsConstructor {
		m.Name = class.SimpleName
	}

	desc, err := signature.DecodeMethodSignature(raw.Descriptor, nil)
	if err != nil {
		return nil, fmt.Errorf("method %s.%s: descriptor: %w", class.Name, raw.Name, err)
	}
	decoded := desc
	fromSignature := false
	var sigErr error
	if raw.Signature != "" {
		var formals []*typeinfo.FormalTypeParameter
		if !m.IsStatic {
			formals = class.TypeParameters
		}
		ms, err := signature.DecodeMethodSignature(raw.Signature, formals)
		switch {
		case err != nil:
			sigErr = fmt.Errorf("method %s.%s: %w", class.Name, raw.Name, err)
		case len(ms.Arguments) != len(desc.Arguments) && !(m.IsConstructor && len(ms.Arguments) < len(desc.Arguments)):
			sigErr = fmt.Errorf("method %s.%s: %w: signature has %d arguments, descriptor %d",
				class.Name, raw.Name, signature.ErrMalformedSignature, len(ms.Arguments), len(desc.Arguments))
		default:
			decoded = ms
			fromSignature = true
		}
	}

	args := decoded.Arguments
	if m.IsConstructor && class.HasEnclosingInstance() {
		m.InnerConstructor = &InnerConstructor{Outer: class.OuterClass, Inner: class.SimpleName}
		implicit := !fromSignature || len(decoded.Arguments) == len(desc.Arguments)
		if implicit && len(args) > 0 && typeinfo.Erasure(args[0]).QualifiedName() == class.OuterClass {
			args = args[1:]
		}
	}
	if m.IsVarargs && len(args) > 0 {
		if arr, ok := args[len(args)-1].(*typeinfo.Array); ok {
			args = append(args[:len(args)-1:len(args)-1], typeinfo.NewVararg(arr.ComponentType()))
		}
	}
	m.Arguments = args
	m.Return = decoded.Return
	m.TypeParameters = decoded.TypeParameters
	return m, sigErr
}

// NewFieldInfo decodes a raw field of class, with the same signature
// precedence as NewMethodInfo.
func NewFieldInfo(class *ClassInfo, raw RawField) (*FieldInfo, error) {
	f := &FieldInfo{
		Class:          class,
		Name:           raw.Name,
		Descriptor:     raw.Descriptor,
		Signature:      raw.Signature,
		Visibility:     visibilityFromAccessFlags(raw.Flags),
		IsStatic:       raw.Flags.IsStatic(),
		IsFinal:        raw.Flags.IsFinal(),
		IsVolatile:     raw.Flags.IsVolatile(),
		IsTransient:    raw.Flags.IsTransient(),
		IsEnumConstant: raw.Flags.IsEnum(),
	}
	t, err := signature.DecodeFieldSignature(raw.Descriptor, nil)
	if err != nil {
		return nil, fmt.Errorf("field %s.%s: descriptor: %w", class.Name, raw.Name, err)
	}
	f.Type = t
	if raw.Signature == "" {
		return f, nil
	}
	var formals []*typeinfo.FormalTypeParameter
	if !f.IsStatic {
		formals = class.TypeParameters
	}
	st, err := signature.DecodeFieldSignature(raw.Signature, formals)
	if err != nil {
		return f, fmt.Errorf("field %s.%s: %w", class.Name, raw.Name, err)
	}
	f.Type = st
	return f, nil
}

// IsMalformedSignature reports whether err came from a signature that did
// not decode. Such errors still come with a usable declaration.
func IsMalformedSignature(err error) bool {
	return errors.Is(err, signature.ErrMalformedSignature)
}

func visibilityFromAccessFlags(flags classfile.AccessFlags) Visibility {
	if flags.IsPublic() {
		return VisibilityPublic
	}
	if flags.IsProtected() {
		return VisibilityProtected
	}
	if flags.IsPrivate() {
		return VisibilityPrivate
	}
	return VisibilityPackage
}

func classKindFromAccessFlags(flags classfile.AccessFlags) ClassKind {
	if flags.IsAnnotation() {
		return ClassKindAnnotation
	}
	if flags.IsEnum() {
		return ClassKindEnum
	}
	if flags.IsInterface() {
		return ClassKindInterface
	}
	return ClassKindClass
}
