package resolve

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/dhamidi/jbind/java"
	"github.com/dhamidi/jbind/typeinfo"
)

// ReferenceRequest describes a method reference such as String::length,
// s::charAt or Box::new.
type ReferenceRequest struct {
	Owning   *java.OwningClassInfo
	Classes  []string
	Receiver typeinfo.TypeInfo
	// Member is the method name, or "new" for a constructor reference.
	Member string
	// Bound is set when the reference is taken on an expression rather
	// than a type: s::length passes no receiver argument.
	Bound bool
}

// ReferenceResult holds every member the reference may denote, and the
// Function evidence that stands for it at a call site.
type ReferenceResult struct {
	Members  []*java.MethodInfo
	Function *typeinfo.Function
}

// ResolveMethodReference collects the overloads a method reference can
// denote. Which one applies is decided once the reference is matched
// against a functional interface, so all of them are kept. Unbound
// references to instance methods take the receiver as first parameter.
func (e *Engine) ResolveMethodReference(ctx context.Context, req *ReferenceRequest) (*ReferenceResult, error) {
	ctx, span := tracer.Start(ctx, "resolve.Engine.ResolveMethodReference",
		trace.WithAttributes(attribute.String("member", req.Member)))
	defer span.End()

	base := &Request{Owning: req.Owning, Classes: req.Classes, Receiver: req.Receiver}
	res := &ReferenceResult{}
	var defs []typeinfo.FunctionSignature
	innerCtor := false

	for _, r := range e.roots(ctx, base) {
		if req.Member == "new" {
			class := e.lookupClass(ctx, r.name)
			if class == nil || class.IsAbstract || class.IsInterface() {
				continue
			}
			ret := typeinfo.Substitute(class.Type(), r.bindings)
			for _, m := range e.methods(ctx, class, class.SimpleName) {
				if !m.IsConstructor {
					continue
				}
				m = m.WithTypes(typeinfo.SubstituteAll(m.Arguments, r.bindings), ret)
				res.Members = append(res.Members, m)
				defs = append(defs, typeinfo.FunctionSignature{Parameters: m.Arguments, Return: ret})
				innerCtor = innerCtor || m.InnerConstructor != nil
			}
			continue
		}

		var seen []*java.MethodInfo
		e.walk(ctx, r.name, r.bindings, func(l level) bool {
			if l.class == nil {
				return true
			}
			for _, m := range e.methods(ctx, l.class, req.Member) {
				if m.IsConstructor || m.IsBridge || overridden(seen, m) {
					continue
				}
				seen = append(seen, m)
				params := typeinfo.SubstituteAll(m.Arguments, l.bindings)
				var ret typeinfo.TypeInfo
				if m.Return != nil {
					ret = typeinfo.Substitute(m.Return, l.bindings)
				}
				sub := m.WithTypes(params, ret)
				res.Members = append(res.Members, sub)
				if !m.IsStatic && !req.Bound {
					receiver := req.Receiver
					if receiver == nil {
						receiver = e.rootType(ctx, r)
					}
					params = append([]typeinfo.TypeInfo{receiver}, params...)
				}
				defs = append(defs, typeinfo.FunctionSignature{Parameters: params, Return: ret})
			}
			return true
		})
	}

	span.SetAttributes(attribute.Int("candidates", len(res.Members)))
	if len(res.Members) == 0 {
		e.audit.record(kindReference, outcomeUnresolved)
		return res, &ResolutionError{Kind: ErrNoMatchFound, Member: req.Member, Classes: rootNames(base)}
	}
	if len(res.Members) == 1 {
		e.audit.record(kindReference, outcomeExact)
	} else {
		e.audit.record(kindReference, outcomeApproximate)
	}
	res.Function = typeinfo.NewFunction(defs, innerCtor)
	return res, nil
}

// rootType is the type of a root class with its bindings applied.
func (e *Engine) rootType(ctx context.Context, r root) typeinfo.TypeInfo {
	class := e.lookupClass(ctx, r.name)
	if class == nil {
		return typeinfo.NewQualified(r.name)
	}
	return typeinfo.Substitute(class.Type(), r.bindings)
}
