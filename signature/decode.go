// Package signature decodes and encodes JVM generic signature strings
// (the Signature attribute of classes, methods and fields) into typeinfo
// values.
//
// The decoder is a recursive-descent parser. Every production takes the
// input, a position and an immutable context holding the formal type
// parameters currently in scope, and returns the decoded fragment together
// with the position after it.
package signature

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dhamidi/jbind/typeinfo"
)

var ErrMalformedSignature = errors.New("malformed signature")

// ClassSignature is a decoded class Signature attribute.
type ClassSignature struct {
	TypeParameters []*typeinfo.FormalTypeParameter
	Superclass     typeinfo.TypeInfo
	Interfaces     []typeinfo.TypeInfo
}

// MethodSignature is a decoded method Signature attribute or descriptor.
type MethodSignature struct {
	TypeParameters []*typeinfo.FormalTypeParameter
	Arguments      []typeinfo.TypeInfo
	Return         typeinfo.TypeInfo
	Throws         []typeinfo.TypeInfo
}

// scope is the parse context: formal type parameters visible to type
// variable references. It is never modified after creation.
type scope struct {
	formals map[string]*typeinfo.FormalTypeParameter
}

func newScope(formals []*typeinfo.FormalTypeParameter) scope {
	return scope{}.with(formals)
}

func (s scope) with(formals []*typeinfo.FormalTypeParameter) scope {
	if len(formals) == 0 {
		return s
	}
	m := make(map[string]*typeinfo.FormalTypeParameter, len(s.formals)+len(formals))
	for k, v := range s.formals {
		m[k] = v
	}
	for _, f := range formals {
		m[f.Symbol()] = f
	}
	return scope{formals: m}
}

func (s scope) lookup(symbol string) typeinfo.TypeInfo {
	if f, ok := s.formals[symbol]; ok {
		return f
	}
	return typeinfo.NewFormal(symbol, nil)
}

func malformed(in string, pos int, format string, args ...any) error {
	return fmt.Errorf("%w: %s at offset %d in %q", ErrMalformedSignature, fmt.Sprintf(format, args...), pos, in)
}

// DecodeClass decodes a complete class signature.
func DecodeClass(sig string) (*ClassSignature, error) {
	cs := &ClassSignature{}
	ctx := newScope(nil)
	pos := 0
	if strings.HasPrefix(sig, "<") {
		formals, next, err := parseTypeParameters(sig, pos, ctx)
		if err != nil {
			return nil, err
		}
		cs.TypeParameters = formals
		ctx = ctx.with(formals)
		pos = next
	}
	super, pos, err := parseClassType(sig, pos, ctx)
	if err != nil {
		return nil, err
	}
	cs.Superclass = super
	for pos < len(sig) {
		iface, next, err := parseClassType(sig, pos, ctx)
		if err != nil {
			return nil, err
		}
		cs.Interfaces = append(cs.Interfaces, iface)
		pos = next
	}
	return cs, nil
}

// DecodeClassSignature returns the formal type parameters a class
// signature declares. A parameter's bound is its class bound, else its
// first interface bound, else java.lang.Object. Further interface bounds
// are not kept.
func DecodeClassSignature(sig string) ([]*typeinfo.FormalTypeParameter, error) {
	cs, err := DecodeClass(sig)
	if err != nil {
		return nil, err
	}
	return cs.TypeParameters, nil
}

// DecodeTypeParameters decodes a bare type parameter list such as
// "<K:Ljava/lang/Object;V:Ljava/lang/Object;>".
func DecodeTypeParameters(sig string) ([]*typeinfo.FormalTypeParameter, error) {
	formals, pos, err := parseTypeParameters(sig, 0, newScope(nil))
	if err != nil {
		return nil, err
	}
	if pos != len(sig) {
		return nil, malformed(sig, pos, "trailing data")
	}
	return formals, nil
}

// DecodeParameterizedSupertypes returns the superclass and interfaces of a
// class signature that carry type arguments. Type variables resolve to the
// formals in known, falling back to the class's own declarations.
func DecodeParameterizedSupertypes(sig string, known []*typeinfo.FormalTypeParameter) ([]typeinfo.TypeInfo, error) {
	cs, err := DecodeClass(sig)
	if err != nil {
		return nil, err
	}
	bindings := make(typeinfo.Bindings, len(known))
	for _, f := range known {
		bindings[f.Symbol()] = f
	}
	var out []typeinfo.TypeInfo
	for _, t := range append([]typeinfo.TypeInfo{cs.Superclass}, cs.Interfaces...) {
		p, ok := t.(*typeinfo.Parameterized)
		if !ok || p.Arity() == 0 {
			continue
		}
		out = append(out, typeinfo.Substitute(p, bindings))
	}
	return out, nil
}

// DecodeMethodSignature decodes a method signature. Method descriptors are
// a subset of the grammar and decode as well. classFormals are the type
// parameters of the declaring class; the method's own parameters shadow
// them.
func DecodeMethodSignature(sig string, classFormals []*typeinfo.FormalTypeParameter) (*MethodSignature, error) {
	ms := &MethodSignature{}
	ctx := newScope(classFormals)
	pos := 0
	if strings.HasPrefix(sig, "<") {
		formals, next, err := parseTypeParameters(sig, pos, ctx)
		if err != nil {
			return nil, err
		}
		ms.TypeParameters = formals
		ctx = ctx.with(formals)
		pos = next
	}
	if pos >= len(sig) || sig[pos] != '(' {
		return nil, malformed(sig, pos, "expected '('")
	}
	pos++
	for {
		if pos >= len(sig) {
			return nil, malformed(sig, pos, "unterminated parameter list")
		}
		if sig[pos] == ')' {
			pos++
			break
		}
		arg, next, err := parseJavaType(sig, pos, ctx)
		if err != nil {
			return nil, err
		}
		ms.Arguments = append(ms.Arguments, arg)
		pos = next
	}
	if pos < len(sig) && sig[pos] == 'V' {
		ms.Return = typeinfo.Void
		pos++
	} else {
		ret, next, err := parseJavaType(sig, pos, ctx)
		if err != nil {
			return nil, err
		}
		ms.Return = ret
		pos = next
	}
	for pos < len(sig) {
		if sig[pos] != '^' {
			return nil, malformed(sig, pos, "trailing data")
		}
		t, next, err := parseReferenceType(sig, pos+1, ctx)
		if err != nil {
			return nil, err
		}
		ms.Throws = append(ms.Throws, t)
		pos = next
	}
	return ms, nil
}

// DecodeMethodArguments returns the parameter types and the method's own
// type parameters.
func DecodeMethodArguments(sig string, classFormals []*typeinfo.FormalTypeParameter) ([]typeinfo.TypeInfo, []*typeinfo.FormalTypeParameter, error) {
	ms, err := DecodeMethodSignature(sig, classFormals)
	if err != nil {
		return nil, nil, err
	}
	return ms.Arguments, ms.TypeParameters, nil
}

func DecodeMethodReturn(sig string, classFormals []*typeinfo.FormalTypeParameter) (typeinfo.TypeInfo, error) {
	ms, err := DecodeMethodSignature(sig, classFormals)
	if err != nil {
		return nil, err
	}
	return ms.Return, nil
}

// DecodeFieldSignature decodes a field signature or field descriptor.
func DecodeFieldSignature(sig string, classFormals []*typeinfo.FormalTypeParameter) (typeinfo.TypeInfo, error) {
	t, pos, err := parseJavaType(sig, 0, newScope(classFormals))
	if err != nil {
		return nil, err
	}
	if pos != len(sig) {
		return nil, malformed(sig, pos, "trailing data")
	}
	return t, nil
}

// parseTypeParameters: '<' TypeParameter {TypeParameter} '>'
func parseTypeParameters(in string, pos int, ctx scope) ([]*typeinfo.FormalTypeParameter, int, error) {
	if pos >= len(in) || in[pos] != '<' {
		return nil, pos, malformed(in, pos, "expected '<'")
	}
	pos++
	var formals []*typeinfo.FormalTypeParameter
	for {
		if pos >= len(in) {
			return nil, pos, malformed(in, pos, "unterminated type parameter list")
		}
		if in[pos] == '>' {
			if len(formals) == 0 {
				return nil, pos, malformed(in, pos, "empty type parameter list")
			}
			return formals, pos + 1, nil
		}
		f, next, err := parseTypeParameter(in, pos, ctx.with(formals))
		if err != nil {
			return nil, pos, err
		}
		formals = append(formals, f)
		pos = next
	}
}

// parseTypeParameter: Identifier ':' [ReferenceType] {':' ReferenceType}
// An empty bound list leaves the Object default.
func parseTypeParameter(in string, pos int, ctx scope) (*typeinfo.FormalTypeParameter, int, error) {
	colon := strings.IndexByte(in[pos:], ':')
	if colon <= 0 {
		return nil, pos, malformed(in, pos, "expected type parameter name")
	}
	symbol := in[pos : pos+colon]
	if strings.ContainsAny(symbol, "<>;/[.") {
		return nil, pos, malformed(in, pos, "invalid type parameter name %q", symbol)
	}
	pos += colon + 1

	var bound typeinfo.TypeInfo
	if pos < len(in) && in[pos] != ':' && in[pos] != '>' {
		t, next, err := parseReferenceType(in, pos, ctx)
		if err != nil {
			return nil, pos, err
		}
		bound = t
		pos = next
	}
	for pos < len(in) && in[pos] == ':' {
		t, next, err := parseReferenceType(in, pos+1, ctx)
		if err != nil {
			return nil, pos, err
		}
		if bound == nil {
			bound = t
		}
		pos = next
	}
	return typeinfo.NewFormal(symbol, bound), pos, nil
}

// parseJavaType: BaseType | ReferenceType
func parseJavaType(in string, pos int, ctx scope) (typeinfo.TypeInfo, int, error) {
	if pos >= len(in) {
		return nil, pos, malformed(in, pos, "unexpected end of input")
	}
	if p, ok := baseType(in[pos]); ok {
		return p, pos + 1, nil
	}
	return parseReferenceType(in, pos, ctx)
}

// parseReferenceType: ClassType | TypeVariable | ArrayType
func parseReferenceType(in string, pos int, ctx scope) (typeinfo.TypeInfo, int, error) {
	if pos >= len(in) {
		return nil, pos, malformed(in, pos, "unexpected end of input")
	}
	switch in[pos] {
	case 'L':
		return parseClassType(in, pos, ctx)
	case 'T':
		return parseTypeVariable(in, pos, ctx)
	case '[':
		return parseArrayType(in, pos, ctx)
	}
	return nil, pos, malformed(in, pos, "unknown type tag %q", in[pos])
}

// parseArrayType: '[' {'['} JavaType
func parseArrayType(in string, pos int, ctx scope) (typeinfo.TypeInfo, int, error) {
	dim := 0
	for pos < len(in) && in[pos] == '[' {
		dim++
		pos++
	}
	elem, next, err := parseJavaType(in, pos, ctx)
	if err != nil {
		return nil, pos, err
	}
	return typeinfo.NewArray(elem, dim), next, nil
}

// parseTypeVariable: 'T' Identifier ';'
func parseTypeVariable(in string, pos int, ctx scope) (typeinfo.TypeInfo, int, error) {
	end := strings.IndexByte(in[pos:], ';')
	if end < 0 {
		return nil, pos, malformed(in, pos, "missing ';' after type variable")
	}
	symbol := in[pos+1 : pos+end]
	if symbol == "" || strings.ContainsAny(symbol, "<>/[.:") {
		return nil, pos, malformed(in, pos, "invalid type variable %q", symbol)
	}
	return ctx.lookup(symbol), pos + end + 1, nil
}

// parseClassType: 'L' Name [TypeArguments] {'.' Identifier [TypeArguments]} ';'
//
// Inner class qualification yields the binary name (Outer$Inner) with the
// type arguments of the innermost class.
func parseClassType(in string, pos int, ctx scope) (typeinfo.TypeInfo, int, error) {
	if pos >= len(in) || in[pos] != 'L' {
		return nil, pos, malformed(in, pos, "expected class type")
	}
	pos++
	name, pos, err := parseIdentifier(in, pos)
	if err != nil {
		return nil, pos, err
	}
	name = strings.ReplaceAll(name, "/", ".")
	var args []typeinfo.TypeInfo
	for {
		if pos >= len(in) {
			return nil, pos, malformed(in, pos, "missing ';' after class type")
		}
		switch in[pos] {
		case '<':
			if args != nil {
				return nil, pos, malformed(in, pos, "duplicate type arguments")
			}
			a, next, err := parseTypeArguments(in, pos, ctx)
			if err != nil {
				return nil, pos, err
			}
			args = a
			pos = next
		case '.':
			inner, next, err := parseIdentifier(in, pos+1)
			if err != nil {
				return nil, pos, err
			}
			name += "$" + inner
			args = nil
			pos = next
		case ';':
			if len(args) == 0 {
				return typeinfo.NewQualified(name), pos + 1, nil
			}
			return typeinfo.NewParameterized(name, args...), pos + 1, nil
		default:
			return nil, pos, malformed(in, pos, "unexpected %q in class type", in[pos])
		}
	}
}

func parseIdentifier(in string, pos int) (string, int, error) {
	start := pos
	for pos < len(in) {
		switch in[pos] {
		case '<', '.', ';', '>', ':', '[':
			if pos == start {
				return "", pos, malformed(in, pos, "expected identifier")
			}
			return in[start:pos], pos, nil
		}
		pos++
	}
	return "", pos, malformed(in, pos, "unexpected end of input")
}

// parseTypeArguments: '<' TypeArgument {TypeArgument} '>'
func parseTypeArguments(in string, pos int, ctx scope) ([]typeinfo.TypeInfo, int, error) {
	pos++
	var args []typeinfo.TypeInfo
	for {
		if pos >= len(in) {
			return nil, pos, malformed(in, pos, "unbalanced '<'")
		}
		if in[pos] == '>' {
			if len(args) == 0 {
				return nil, pos, malformed(in, pos, "empty type argument list")
			}
			return args, pos + 1, nil
		}
		arg, next, err := parseTypeArgument(in, pos, ctx)
		if err != nil {
			return nil, pos, err
		}
		args = append(args, arg)
		pos = next
	}
}

// parseTypeArgument: '*' | ['+' | '-'] ReferenceType
//
// Wildcards become formals with symbol "?": unbounded and lower-bounded
// wildcards are bounded by Object, "? extends X" by X.
func parseTypeArgument(in string, pos int, ctx scope) (typeinfo.TypeInfo, int, error) {
	switch in[pos] {
	case '*':
		return typeinfo.NewWildcard(nil), pos + 1, nil
	case '+':
		t, next, err := parseReferenceType(in, pos+1, ctx)
		if err != nil {
			return nil, pos, err
		}
		return typeinfo.NewWildcard(t), next, nil
	case '-':
		_, next, err := parseReferenceType(in, pos+1, ctx)
		if err != nil {
			return nil, pos, err
		}
		return typeinfo.NewWildcard(nil), next, nil
	}
	return parseReferenceType(in, pos, ctx)
}

func baseType(c byte) (*typeinfo.Primitive, bool) {
	switch c {
	case 'B':
		return typeinfo.Byte, true
	case 'C':
		return typeinfo.Char, true
	case 'D':
		return typeinfo.Double, true
	case 'F':
		return typeinfo.Float, true
	case 'I':
		return typeinfo.Int, true
	case 'J':
		return typeinfo.Long, true
	case 'S':
		return typeinfo.Short, true
	case 'Z':
		return typeinfo.Boolean, true
	}
	return nil, false
}
