package signature

import (
	"fmt"
	"strings"

	"github.com/dhamidi/jbind/typeinfo"
)

// Encode serializes t in signature grammar. Null and function types have
// no encoding.
func Encode(t typeinfo.TypeInfo) (string, error) {
	var sb strings.Builder
	if err := encode(&sb, t); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// EncodeTypeParameters serializes a formal type parameter list, each
// parameter with its bound as class bound.
func EncodeTypeParameters(formals []*typeinfo.FormalTypeParameter) (string, error) {
	if len(formals) == 0 {
		return "", nil
	}
	var sb strings.Builder
	sb.WriteByte('<')
	for _, f := range formals {
		sb.WriteString(f.Symbol())
		sb.WriteByte(':')
		if err := encode(&sb, f.Bound()); err != nil {
			return "", err
		}
	}
	sb.WriteByte('>')
	return sb.String(), nil
}

// EncodeMethod serializes a method signature.
func EncodeMethod(ms *MethodSignature) (string, error) {
	var sb strings.Builder
	tp, err := EncodeTypeParameters(ms.TypeParameters)
	if err != nil {
		return "", err
	}
	sb.WriteString(tp)
	sb.WriteByte('(')
	for _, a := range ms.Arguments {
		if err := encode(&sb, a); err != nil {
			return "", err
		}
	}
	sb.WriteByte(')')
	ret := ms.Return
	if ret == nil {
		ret = typeinfo.Void
	}
	if err := encode(&sb, ret); err != nil {
		return "", err
	}
	for _, t := range ms.Throws {
		sb.WriteByte('^')
		if err := encode(&sb, t); err != nil {
			return "", err
		}
	}
	return sb.String(), nil
}

func encode(sb *strings.Builder, t typeinfo.TypeInfo) error {
	switch v := t.(type) {
	case *typeinfo.Primitive:
		sb.WriteByte(primitiveTag(v))
	case *typeinfo.VoidType:
		sb.WriteByte('V')
	case *typeinfo.Qualified:
		sb.WriteByte('L')
		sb.WriteString(strings.ReplaceAll(v.QualifiedName(), ".", "/"))
		sb.WriteByte(';')
	case *typeinfo.Parameterized:
		sb.WriteByte('L')
		sb.WriteString(strings.ReplaceAll(v.QualifiedName(), ".", "/"))
		if args := v.TypeArguments(); len(args) > 0 {
			sb.WriteByte('<')
			for _, a := range args {
				if err := encode(sb, a); err != nil {
					return err
				}
			}
			sb.WriteByte('>')
		}
		sb.WriteByte(';')
	case *typeinfo.Array:
		sb.WriteString(strings.Repeat("[", v.Dimension()))
		return encode(sb, v.Element())
	case *typeinfo.Vararg:
		sb.WriteByte('[')
		return encode(sb, v.Element())
	case *typeinfo.FormalTypeParameter:
		if v.IsWildcard() {
			if v.HasDefaultBound() {
				sb.WriteByte('*')
				return nil
			}
			sb.WriteByte('+')
			return encode(sb, v.Bound())
		}
		sb.WriteByte('T')
		sb.WriteString(v.Symbol())
		sb.WriteByte(';')
	default:
		return fmt.Errorf("encode %s type %s: no signature form", t.Kind(), t.Name())
	}
	return nil
}

func primitiveTag(p *typeinfo.Primitive) byte {
	switch p {
	case typeinfo.Byte:
		return 'B'
	case typeinfo.Char:
		return 'C'
	case typeinfo.Double:
		return 'D'
	case typeinfo.Float:
		return 'F'
	case typeinfo.Int:
		return 'I'
	case typeinfo.Long:
		return 'J'
	case typeinfo.Short:
		return 'S'
	}
	return 'Z'
}
