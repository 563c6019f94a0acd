package classfile

import (
	"encoding/binary"
	"fmt"
)

const (
	AttrSignature    = "Signature"
	AttrExceptions   = "Exceptions"
	AttrInnerClasses = "InnerClasses"
)

type Attribute struct {
	Name string
	Info []byte
}

func findAttribute(attrs []Attribute, name string) *Attribute {
	for i := range attrs {
		if attrs[i].Name == name {
			return &attrs[i]
		}
	}
	return nil
}

func decodeSignature(a *Attribute, cp ConstantPool) (string, error) {
	if len(a.Info) != 2 {
		return "", fmt.Errorf("signature attribute has length %d, want 2", len(a.Info))
	}
	return cp.GetUtf8(binary.BigEndian.Uint16(a.Info)), nil
}

func decodeExceptions(a *Attribute, cp ConstantPool) ([]string, error) {
	if len(a.Info) < 2 {
		return nil, fmt.Errorf("exceptions attribute truncated")
	}
	n := int(binary.BigEndian.Uint16(a.Info))
	if len(a.Info) != 2+2*n {
		return nil, fmt.Errorf("exceptions attribute has length %d, want %d", len(a.Info), 2+2*n)
	}
	out := make([]string, n)
	for i := range out {
		out[i] = cp.GetClassName(binary.BigEndian.Uint16(a.Info[2+2*i:]))
	}
	return out, nil
}

func decodeInnerClasses(a *Attribute, cp ConstantPool) ([]InnerClass, error) {
	if len(a.Info) < 2 {
		return nil, fmt.Errorf("inner classes attribute truncated")
	}
	n := int(binary.BigEndian.Uint16(a.Info))
	if len(a.Info) != 2+8*n {
		return nil, fmt.Errorf("inner classes attribute has length %d, want %d", len(a.Info), 2+8*n)
	}
	out := make([]InnerClass, n)
	for i := range out {
		e := a.Info[2+8*i:]
		out[i] = InnerClass{
			Inner:       cp.GetClassName(binary.BigEndian.Uint16(e[0:])),
			Outer:       cp.GetClassName(binary.BigEndian.Uint16(e[2:])),
			SimpleName:  cp.GetUtf8(binary.BigEndian.Uint16(e[4:])),
			AccessFlags: AccessFlags(binary.BigEndian.Uint16(e[6:])),
		}
	}
	return out, nil
}
