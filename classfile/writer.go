package classfile

import (
	"bytes"
	"encoding/binary"
	"unicode/utf16"
)

// Builder assembles a class file containing declarations only. It is the
// inverse of Parse for the parts Parse decodes and is used to produce
// fixtures and synthetic classes. Names are in internal form.
type Builder struct {
	cp      ConstantPool
	utf8    map[string]uint16
	classes map[string]uint16

	access     AccessFlags
	this       uint16
	super      uint16
	interfaces []uint16
	fields     []builtMember
	methods    []builtMember
	attrs      []builtAttribute
	inner      []byte
	innerCount uint16
}

type builtMember struct {
	access     AccessFlags
	name, desc uint16
	attrs      []builtAttribute
}

type builtAttribute struct {
	name uint16
	info []byte
}

func NewBuilder(name, super string, access AccessFlags) *Builder {
	b := &Builder{
		utf8:    make(map[string]uint16),
		classes: make(map[string]uint16),
		access:  access,
	}
	b.this = b.class(name)
	if super != "" {
		b.super = b.class(super)
	}
	return b
}

func (b *Builder) add(e ConstantPoolEntry) uint16 {
	b.cp = append(b.cp, e)
	idx := uint16(len(b.cp))
	if e.Tag().IsWide() {
		b.cp = append(b.cp, nil)
	}
	return idx
}

func (b *Builder) utf(s string) uint16 {
	if idx, ok := b.utf8[s]; ok {
		return idx
	}
	idx := b.add(&ConstantUtf8Info{Value: s})
	b.utf8[s] = idx
	return idx
}

func (b *Builder) class(name string) uint16 {
	if idx, ok := b.classes[name]; ok {
		return idx
	}
	idx := b.add(&ConstantClassInfo{NameIndex: b.utf(name)})
	b.classes[name] = idx
	return idx
}

// Constant adds an entry the reader keeps opaque, such as a long.
func (b *Builder) Constant(tag ConstantTag) *Builder {
	b.add(&ConstantOpaqueInfo{tag: tag})
	return b
}

func (b *Builder) Interface(name string) *Builder {
	b.interfaces = append(b.interfaces, b.class(name))
	return b
}

func (b *Builder) Signature(sig string) *Builder {
	b.attrs = append(b.attrs, b.signatureAttr(sig))
	return b
}

func (b *Builder) InnerClass(inner, outer, simpleName string, access AccessFlags) *Builder {
	var outerIdx, nameIdx uint16
	if outer != "" {
		outerIdx = b.class(outer)
	}
	if simpleName != "" {
		nameIdx = b.utf(simpleName)
	}
	b.inner = binary.BigEndian.AppendUint16(b.inner, b.class(inner))
	b.inner = binary.BigEndian.AppendUint16(b.inner, outerIdx)
	b.inner = binary.BigEndian.AppendUint16(b.inner, nameIdx)
	b.inner = binary.BigEndian.AppendUint16(b.inner, uint16(access))
	b.innerCount++
	return b
}

func (b *Builder) Field(access AccessFlags, name, desc, sig string) *Builder {
	m := builtMember{access: access, name: b.utf(name), desc: b.utf(desc)}
	if sig != "" {
		m.attrs = append(m.attrs, b.signatureAttr(sig))
	}
	b.fields = append(b.fields, m)
	return b
}

func (b *Builder) Method(access AccessFlags, name, desc, sig string, exceptions ...string) *Builder {
	m := builtMember{access: access, name: b.utf(name), desc: b.utf(desc)}
	if sig != "" {
		m.attrs = append(m.attrs, b.signatureAttr(sig))
	}
	if len(exceptions) > 0 {
		info := binary.BigEndian.AppendUint16(nil, uint16(len(exceptions)))
		for _, e := range exceptions {
			info = binary.BigEndian.AppendUint16(info, b.class(e))
		}
		m.attrs = append(m.attrs, builtAttribute{name: b.utf(AttrExceptions), info: info})
	}
	b.methods = append(b.methods, m)
	return b
}

func (b *Builder) signatureAttr(sig string) builtAttribute {
	return builtAttribute{name: b.utf(AttrSignature), info: binary.BigEndian.AppendUint16(nil, b.utf(sig))}
}

// Bytes serializes the class file.
func (b *Builder) Bytes() []byte {
	attrs := b.attrs
	if b.innerCount > 0 {
		info := binary.BigEndian.AppendUint16(nil, b.innerCount)
		attrs = append(attrs, builtAttribute{name: b.utf(AttrInnerClasses), info: append(info, b.inner...)})
	}

	var buf bytes.Buffer
	u2 := func(v uint16) { buf.Write(binary.BigEndian.AppendUint16(nil, v)) }
	u4 := func(v uint32) { buf.Write(binary.BigEndian.AppendUint32(nil, v)) }

	u4(Magic)
	u2(0)
	u2(52)
	u2(uint16(len(b.cp) + 1))
	for _, e := range b.cp {
		if e == nil {
			continue
		}
		buf.WriteByte(byte(e.Tag()))
		switch v := e.(type) {
		case *ConstantUtf8Info:
			enc := encodeModifiedUtf8(v.Value)
			u2(uint16(len(enc)))
			buf.Write(enc)
		case *ConstantClassInfo:
			u2(v.NameIndex)
		default:
			size, _ := e.Tag().payloadSize()
			buf.Write(make([]byte, size))
		}
	}
	u2(uint16(b.access))
	u2(b.this)
	u2(b.super)
	u2(uint16(len(b.interfaces)))
	for _, i := range b.interfaces {
		u2(i)
	}
	writeAttrs := func(attrs []builtAttribute) {
		u2(uint16(len(attrs)))
		for _, a := range attrs {
			u2(a.name)
			u4(uint32(len(a.info)))
			buf.Write(a.info)
		}
	}
	for _, members := range [][]builtMember{b.fields, b.methods} {
		u2(uint16(len(members)))
		for _, m := range members {
			u2(uint16(m.access))
			u2(m.name)
			u2(m.desc)
			writeAttrs(m.attrs)
		}
	}
	writeAttrs(attrs)
	return buf.Bytes()
}

func encodeModifiedUtf8(s string) []byte {
	var out []byte
	for _, r := range s {
		if r > 0xFFFF {
			hi, lo := utf16.EncodeRune(r)
			out = appendModifiedUnit(out, hi)
			out = appendModifiedUnit(out, lo)
			continue
		}
		out = appendModifiedUnit(out, r)
	}
	return out
}

func appendModifiedUnit(out []byte, r rune) []byte {
	switch {
	case r != 0 && r < 0x80:
		return append(out, byte(r))
	case r < 0x800:
		return append(out, 0xC0|byte(r>>6), 0x80|byte(r&0x3F))
	}
	return append(out, 0xE0|byte(r>>12), 0x80|byte((r>>6)&0x3F), 0x80|byte(r&0x3F))
}
