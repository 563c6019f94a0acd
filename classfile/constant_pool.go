package classfile

// ConstantPoolEntry is one constant pool slot. Only UTF-8 and class
// entries are decoded; everything else is kept as an opaque tag.
type ConstantPoolEntry interface {
	Tag() ConstantTag
}

type ConstantUtf8Info struct {
	Value string
}

func (c *ConstantUtf8Info) Tag() ConstantTag { return ConstantUtf8 }

type ConstantClassInfo struct {
	NameIndex uint16
}

func (c *ConstantClassInfo) Tag() ConstantTag { return ConstantClass }

type ConstantOpaqueInfo struct {
	tag ConstantTag
}

func (c *ConstantOpaqueInfo) Tag() ConstantTag { return c.tag }

// ConstantPool is indexed from 1 like the class file format; slot i is
// stored at position i-1. The second slot of a long or double is nil.
type ConstantPool []ConstantPoolEntry

func (cp ConstantPool) entry(index uint16) ConstantPoolEntry {
	if index == 0 || int(index) > len(cp) {
		return nil
	}
	return cp[index-1]
}

func (cp ConstantPool) GetUtf8(index uint16) string {
	if e, ok := cp.entry(index).(*ConstantUtf8Info); ok {
		return e.Value
	}
	return ""
}

// GetClassName returns the internal name (slash separated) of a class
// entry.
func (cp ConstantPool) GetClassName(index uint16) string {
	if e, ok := cp.entry(index).(*ConstantClassInfo); ok {
		return cp.GetUtf8(e.NameIndex)
	}
	return ""
}
