// Package classfile reads the parts of a JVM class file that describe a
// class's declarations: names, access flags, supertypes, fields, methods
// and their Signature, Exceptions and InnerClasses attributes. Bytecode is
// not decoded.
package classfile

import "strings"

type ClassFile struct {
	MinorVersion uint16
	MajorVersion uint16
	ConstantPool ConstantPool
	AccessFlags  AccessFlags
	ThisClass    uint16
	SuperClass   uint16
	Interfaces   []uint16
	Fields       []Member
	Methods      []Member
	Attributes   []Attribute

	// Decoded from Attributes.
	Signature    string
	InnerClasses []InnerClass
}

// Member is a field or method.
type Member struct {
	AccessFlags AccessFlags
	Name        string
	Descriptor  string
	Attributes  []Attribute

	// Decoded from Attributes.
	Signature  string
	Exceptions []string
}

// InnerClass is one entry of the InnerClasses attribute. Names are in
// internal form; Outer and SimpleName are empty for local and anonymous
// classes.
type InnerClass struct {
	Inner       string
	Outer       string
	SimpleName  string
	AccessFlags AccessFlags
}

func (cf *ClassFile) ClassName() string {
	return cf.ConstantPool.GetClassName(cf.ThisClass)
}

func (cf *ClassFile) SuperClassName() string {
	if cf.SuperClass == 0 {
		return ""
	}
	return cf.ConstantPool.GetClassName(cf.SuperClass)
}

func (cf *ClassFile) InterfaceNames() []string {
	names := make([]string, len(cf.Interfaces))
	for i, idx := range cf.Interfaces {
		names[i] = cf.ConstantPool.GetClassName(idx)
	}
	return names
}

func (cf *ClassFile) IsInterface() bool {
	return cf.AccessFlags.IsInterface() && !cf.AccessFlags.IsAnnotation()
}

func (cf *ClassFile) IsAnnotation() bool { return cf.AccessFlags.IsAnnotation() }
func (cf *ClassFile) IsEnum() bool       { return cf.AccessFlags.IsEnum() }
func (cf *ClassFile) IsModule() bool     { return cf.AccessFlags.IsModule() }

// OwnInnerClassEntry returns the InnerClasses entry describing the class
// itself, present when it is nested.
func (cf *ClassFile) OwnInnerClassEntry() (InnerClass, bool) {
	name := cf.ClassName()
	for _, ic := range cf.InnerClasses {
		if ic.Inner == name {
			return ic, true
		}
	}
	return InnerClass{}, false
}

// MemberClasses lists the classes declared directly inside this one.
func (cf *ClassFile) MemberClasses() []string {
	name := cf.ClassName()
	var out []string
	for _, ic := range cf.InnerClasses {
		if ic.Outer == name {
			out = append(out, ic.Inner)
		}
	}
	return out
}

func (cf *ClassFile) GetField(name string) *Member {
	for i := range cf.Fields {
		if cf.Fields[i].Name == name {
			return &cf.Fields[i]
		}
	}
	return nil
}

func (cf *ClassFile) GetMethods(name string) []*Member {
	var methods []*Member
	for i := range cf.Methods {
		if cf.Methods[i].Name == name {
			methods = append(methods, &cf.Methods[i])
		}
	}
	return methods
}

func (m *Member) IsConstructor() bool       { return m.Name == "<init>" }
func (m *Member) IsStaticInitializer() bool { return m.Name == "<clinit>" }

func InternalToSourceName(name string) string {
	return strings.ReplaceAll(name, "/", ".")
}

func SourceToInternalName(name string) string {
	return strings.ReplaceAll(name, ".", "/")
}
