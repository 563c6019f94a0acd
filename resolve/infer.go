package resolve

import (
	"context"

	"github.com/dhamidi/jbind/java"
	"github.com/dhamidi/jbind/typeinfo"
)

// inferMethodBindings binds the type parameters of m from the argument
// evidence. params are m's arguments with class bindings applied. The
// first piece of evidence for a variable wins.
func (e *Engine) inferMethodBindings(ctx context.Context, m *java.MethodInfo, params, args []typeinfo.TypeInfo) typeinfo.Bindings {
	if len(m.TypeParameters) == 0 {
		return nil
	}
	vars := make(map[string]bool, len(m.TypeParameters))
	for _, f := range m.TypeParameters {
		vars[f.Symbol()] = true
	}
	out := make(typeinfo.Bindings)
	for i, arg := range args {
		var param typeinfo.TypeInfo
		switch {
		case i < len(params)-1:
			param = params[i]
		case len(params) == 0:
			return out
		default:
			param = params[len(params)-1]
			if v, ok := param.(*typeinfo.Vararg); ok && !(len(args) == len(params) && arg.Kind() == typeinfo.KindArray) {
				param = v.Element()
			}
		}
		e.unify(ctx, param, arg, vars, out)
	}
	return out
}

func (e *Engine) unify(ctx context.Context, param, arg typeinfo.TypeInfo, vars map[string]bool, out typeinfo.Bindings) {
	switch p := param.(type) {
	case *typeinfo.FormalTypeParameter:
		if p.IsWildcard() {
			if !p.HasDefaultBound() {
				e.unify(ctx, p.Bound(), arg, vars, out)
			}
			return
		}
		if !vars[p.Symbol()] {
			return
		}
		if _, bound := out[p.Symbol()]; bound {
			return
		}
		switch a := arg.(type) {
		case *typeinfo.Primitive:
			out[p.Symbol()] = typeinfo.Box(a)
		case *typeinfo.NullType, *typeinfo.Function, *typeinfo.VoidType:
		default:
			out[p.Symbol()] = arg
		}

	case *typeinfo.Array:
		switch a := arg.(type) {
		case *typeinfo.Array:
			if a.Dimension() >= p.Dimension() {
				e.unify(ctx, p.Element(), typeinfo.NewArray(a.Element(), a.Dimension()-p.Dimension()), vars, out)
			}
		case *typeinfo.Vararg:
			e.unify(ctx, p, a.AsArray(), vars, out)
		}

	case *typeinfo.Vararg:
		e.unify(ctx, p.AsArray(), arg, vars, out)

	case *typeinfo.Parameterized:
		if f, ok := arg.(*typeinfo.Function); ok {
			e.unifyFunction(ctx, p, f, vars, out)
			return
		}
		if arg.Kind() == typeinfo.KindPrimitive {
			arg = typeinfo.Box(arg.(*typeinfo.Primitive))
		}
		if !typeinfo.IsReference(arg) || arg.Kind() == typeinfo.KindNull {
			return
		}
		view, ok := e.asSuper(ctx, arg, p.QualifiedName())
		if !ok {
			return
		}
		pv, ok := view.(*typeinfo.Parameterized)
		if !ok {
			return
		}
		pargs, aargs := p.TypeArguments(), pv.TypeArguments()
		for i := range pargs {
			if i < len(aargs) {
				e.unify(ctx, pargs[i], aargs[i], vars, out)
			}
		}
	}
}

// unifyFunction infers from a lambda or method reference passed where the
// functional interface p is expected, by matching the interface method's
// return type against the definitions' return types.
func (e *Engine) unifyFunction(ctx context.Context, p *typeinfo.Parameterized, f *typeinfo.Function, vars map[string]bool, out typeinfo.Bindings) {
	sam, _ := e.functionalMethod(ctx, p.QualifiedName())
	if sam == nil || sam.Return == nil {
		return
	}
	iface := e.bindingsOf(ctx, p)
	params := typeinfo.SubstituteAll(sam.Arguments, iface)
	ret := typeinfo.Substitute(sam.Return, iface)
	if len(typeinfo.FreeVariables(ret)) == 0 {
		return
	}
	for _, def := range f.Definitions() {
		if len(def.Parameters) != len(params) || def.Return == nil {
			continue
		}
		// parameters first: they may carry a variable the return needs
		for i, dp := range def.Parameters {
			if dp != nil {
				e.unify(ctx, params[i], dp, vars, out)
			}
		}
		e.unify(ctx, ret, def.Return, vars, out)
		return
	}
}
