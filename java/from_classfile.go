package java

import (
	"io"
	"os"

	"github.com/dhamidi/jbind/classfile"
)

func DeclarationFromFile(unit, path string) (*Declaration, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DeclarationFromReader(unit, f)
}

func DeclarationFromReader(unit string, r io.Reader) (*Declaration, error) {
	cf, err := classfile.Parse(r)
	if err != nil {
		return nil, err
	}
	return DeclarationFromClassFile(unit, cf), nil
}

// DeclarationFromClassFile converts a parsed class file. Synthetic members
// and static initializers are left out; bridge methods are kept and
// flagged.
func DeclarationFromClassFile(unit string, cf *classfile.ClassFile) *Declaration {
	decl := &Declaration{
		Class: RawClass{
			Unit:      unit,
			Name:      classfile.InternalToSourceName(cf.ClassName()),
			Flags:     cf.AccessFlags,
			Signature: cf.Signature,
		},
	}

	if cf.SuperClass != 0 {
		decl.Class.SuperClass = classfile.InternalToSourceName(cf.SuperClassName())
	}
	for _, iface := range cf.InterfaceNames() {
		decl.Class.Interfaces = append(decl.Class.Interfaces, classfile.InternalToSourceName(iface))
	}
	for _, inner := range cf.MemberClasses() {
		decl.Class.InnerClasses = append(decl.Class.InnerClasses, classfile.InternalToSourceName(inner))
	}
	if own, ok := cf.OwnInnerClassEntry(); ok {
		decl.Class.Nested = true
		decl.Class.Anonymous = own.SimpleName == ""
		decl.Class.OuterClass = classfile.InternalToSourceName(own.Outer)
		decl.Class.InnerFlags = own.AccessFlags
	}

	for i := range cf.Fields {
		field := &cf.Fields[i]
		if field.AccessFlags.IsSynthetic() {
			continue
		}
		decl.Fields = append(decl.Fields, RawField{
			Name:       field.Name,
			Descriptor: field.Descriptor,
			Signature:  field.Signature,
			Flags:      field.AccessFlags,
		})
	}

	for i := range cf.Methods {
		method := &cf.Methods[i]
		if method.AccessFlags.IsSynthetic() && !method.AccessFlags.IsBridge() {
			continue
		}
		if method.IsStaticInitializer() {
			continue
		}
		raw := RawMethod{
			Name:       method.Name,
			Descriptor: method.Descriptor,
			Signature:  method.Signature,
			Flags:      method.AccessFlags,
		}
		for _, e := range method.Exceptions {
			raw.Exceptions = append(raw.Exceptions, classfile.InternalToSourceName(e))
		}
		decl.Methods = append(decl.Methods, raw)
	}

	return decl
}

// Decode turns a declaration into decoded class, method and field infos.
// Signature errors are collected and returned; the affected members fall
// back to their descriptors. Members with invalid descriptors are dropped.
func (d *Declaration) Decode(id ClassID) (*ClassInfo, []*MethodInfo, []*FieldInfo, []error) {
	var errs []error
	class, err := NewClassInfo(id, d.Class)
	if err != nil {
		errs = append(errs, err)
	}
	methods := make([]*MethodInfo, 0, len(d.Methods))
	for i, raw := range d.Methods {
		m, err := NewMethodInfo(class, raw, i)
		if err != nil {
			errs = append(errs, err)
		}
		if m != nil {
			methods = append(methods, m)
		}
	}
	fields := make([]*FieldInfo, 0, len(d.Fields))
	for _, raw := range d.Fields {
		f, err := NewFieldInfo(class, raw)
		if err != nil {
			errs = append(errs, err)
		}
		if f != nil {
			fields = append(fields, f)
		}
	}
	return class, methods, fields, errs
}
