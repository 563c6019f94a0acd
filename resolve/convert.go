package resolve

import (
	"context"

	"github.com/dhamidi/jbind/java"
	"github.com/dhamidi/jbind/typeinfo"
)

// Phase is the applicability phase a candidate matched in. Phases are
// tried in order: no boxing nor varargs, boxing, vararg expansion.
type Phase int

const (
	PhaseStrict Phase = iota
	PhaseLoose
	PhaseVarargs
)

func (p Phase) String() string {
	switch p {
	case PhaseLoose:
		return "loose"
	case PhaseVarargs:
		return "varargs"
	}
	return "strict"
}

// conversion is the cost of passing arguments to parameters.
type conversion struct {
	distance int
	phase    Phase
}

func (c conversion) add(o conversion) conversion {
	return conversion{distance: c.distance + o.distance, phase: max(c.phase, o.phase)}
}

var arrayInterfaces = map[string]bool{
	typeinfo.ObjectName:    true,
	"java.lang.Cloneable":  true,
	"java.io.Serializable": true,
}

// convert returns the cost of passing an argument of type arg where param
// is expected.
func (e *Engine) convert(ctx context.Context, arg, param typeinfo.TypeInfo) (conversion, bool) {
	w := e.weights
	if f, ok := param.(*typeinfo.FormalTypeParameter); ok {
		param = f.Bound()
	}
	if v, ok := param.(*typeinfo.Vararg); ok {
		param = v.AsArray()
	}
	if f, ok := arg.(*typeinfo.FormalTypeParameter); ok {
		arg = f.Bound()
	}
	if v, ok := arg.(*typeinfo.Vararg); ok {
		arg = v.AsArray()
	}

	switch a := arg.(type) {
	case *typeinfo.Function:
		if param.Kind() == typeinfo.KindPrimitive || param.Kind() == typeinfo.KindArray {
			return conversion{}, false
		}
		if !e.acceptsFunction(ctx, param, a) {
			return conversion{}, false
		}
		return conversion{distance: w.FunctionalTarget}, true

	case *typeinfo.VoidType:
		return conversion{}, false

	case *typeinfo.NullType:
		if !typeinfo.IsReference(param) {
			return conversion{}, false
		}
		return conversion{distance: w.NullConversion}, true

	case *typeinfo.Primitive:
		if p, ok := param.(*typeinfo.Primitive); ok {
			steps, ok := typeinfo.WideningSteps(a, p)
			if !ok {
				return conversion{}, false
			}
			return conversion{distance: steps * w.PrimitiveWidening}, true
		}
		if param.Kind() == typeinfo.KindArray {
			return conversion{}, false
		}
		hops, ok := e.distance(ctx, typeinfo.Box(a).QualifiedName(), param.QualifiedName())
		if !ok {
			return conversion{}, false
		}
		return conversion{distance: w.Boxing + hops*w.ReferenceHop, phase: PhaseLoose}, true

	case *typeinfo.Array:
		switch p := param.(type) {
		case *typeinfo.Array:
			return e.convertArray(ctx, a, p)
		case *typeinfo.Qualified, *typeinfo.Parameterized:
			if arrayInterfaces[p.QualifiedName()] {
				return conversion{distance: w.ReferenceHop}, true
			}
		}
		return conversion{}, false
	}

	// arg is a class type
	switch p := param.(type) {
	case *typeinfo.Primitive:
		unboxed, ok := typeinfo.Unbox(arg.QualifiedName())
		if !ok {
			return conversion{}, false
		}
		steps, ok := typeinfo.WideningSteps(unboxed, p)
		if !ok {
			return conversion{}, false
		}
		return conversion{distance: w.Boxing + steps*w.PrimitiveWidening, phase: PhaseLoose}, true
	case *typeinfo.Array, *typeinfo.VoidType:
		return conversion{}, false
	}
	hops, ok := e.distance(ctx, arg.QualifiedName(), param.QualifiedName())
	if !ok {
		return conversion{}, false
	}
	return conversion{distance: hops * w.ReferenceHop}, true
}

func (e *Engine) convertArray(ctx context.Context, a, p *typeinfo.Array) (conversion, bool) {
	if a.Dimension() == p.Dimension() {
		ae, pe := a.Element(), p.Element()
		if ae.Kind() == typeinfo.KindPrimitive || pe.Kind() == typeinfo.KindPrimitive {
			if ae.Kind() == pe.Kind() && ae.Name() == pe.Name() {
				return conversion{}, true
			}
			return conversion{}, false
		}
		c, ok := e.convert(ctx, ae, pe)
		if !ok || c.phase != PhaseStrict {
			return conversion{}, false
		}
		return c, true
	}
	// String[][] passes as Object[]
	if a.Dimension() > p.Dimension() && arrayInterfaces[typeinfo.Erasure(p.Element()).QualifiedName()] {
		return conversion{distance: e.weights.ReferenceHop}, true
	}
	return conversion{}, false
}

// acceptsFunction reports whether param is a functional interface one of
// f's definitions fits. Interfaces missing from the catalog are accepted.
func (e *Engine) acceptsFunction(ctx context.Context, param typeinfo.TypeInfo, f *typeinfo.Function) bool {
	sam, known := e.functionalMethod(ctx, param.QualifiedName())
	if !known {
		return true
	}
	if sam == nil {
		return false
	}
	for _, def := range f.Definitions() {
		if len(def.Parameters) == sam.Arity() {
			return true
		}
	}
	return false
}

// functionalMethod returns the single abstract method of an interface.
// known is false when the catalog does not have the class; a known class
// that is not a functional interface yields a nil method.
func (e *Engine) functionalMethod(ctx context.Context, name string) (sam *java.MethodInfo, known bool) {
	class := e.lookupClass(ctx, name)
	if class == nil {
		return nil, false
	}
	if !class.IsInterface() {
		return nil, true
	}
	var abstract []*java.MethodInfo
	e.walk(ctx, name, nil, func(l level) bool {
		if l.class == nil || l.name == typeinfo.ObjectName {
			return true
		}
		methods, err := e.catalog.LookupMethods(ctx, []java.ClassID{l.class.ID}, "")
		if err != nil {
			log.Warningf("failed to look up methods of %s: %s", l.name, err)
			return true
		}
		for _, m := range methods {
			if !m.IsAbstract || m.IsStatic || m.IsBridge || isObjectMethod(m) || overridden(abstract, m) {
				continue
			}
			abstract = append(abstract, m)
		}
		return true
	})
	if len(abstract) != 1 {
		return nil, true
	}
	return abstract[0], true
}

// isObjectMethod reports whether m redeclares a public method of Object.
func isObjectMethod(m *java.MethodInfo) bool {
	switch m.Name {
	case "equals":
		return m.Arity() == 1 && m.Arguments[0].QualifiedName() == typeinfo.ObjectName
	case "hashCode", "toString":
		return m.Arity() == 0
	}
	return false
}

func overridden(seen []*java.MethodInfo, m *java.MethodInfo) bool {
	for _, s := range seen {
		if s.Name == m.Name && sameErasure(s.Arguments, m.Arguments) {
			return true
		}
	}
	return false
}

func sameErasure(a, b []typeinfo.TypeInfo) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if typeinfo.Erasure(a[i]).QualifiedName() != typeinfo.Erasure(b[i]).QualifiedName() {
			return false
		}
	}
	return true
}
