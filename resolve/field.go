package resolve

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/dhamidi/jbind/java"
	"github.com/dhamidi/jbind/typeinfo"
)

// FieldRequest describes a field access: receiver.name, or a bare name
// looked up through Classes.
type FieldRequest struct {
	Owning   *java.OwningClassInfo
	Classes  []string
	Receiver typeinfo.TypeInfo
	Name     string
}

type FieldResult struct {
	// Field has its type substituted as seen from the receiver.
	Field           *java.FieldInfo
	Root            string
	InvokerDistance int
}

// ResolveField finds the nearest field called req.Name, trying each root
// in order.
func (e *Engine) ResolveField(ctx context.Context, req *FieldRequest) (*FieldResult, error) {
	ctx, span := tracer.Start(ctx, "resolve.Engine.ResolveField",
		trace.WithAttributes(attribute.String("member", req.Name)))
	defer span.End()

	roots := e.roots(ctx, &Request{Owning: req.Owning, Classes: req.Classes, Receiver: req.Receiver})
	for _, r := range roots {
		var found *FieldResult
		e.walk(ctx, r.name, r.bindings, func(l level) bool {
			if l.class == nil {
				return true
			}
			fields, err := e.catalog.LookupFields(ctx, []java.ClassID{l.class.ID}, req.Name)
			if err != nil {
				log.Warningf("failed to look up field %s.%s: %s", l.name, req.Name, err)
				return true
			}
			if len(fields) == 0 {
				return true
			}
			f := fields[0]
			found = &FieldResult{
				Field:           f.WithType(typeinfo.Substitute(f.Type, l.bindings)),
				Root:            r.name,
				InvokerDistance: l.distance,
			}
			return false
		})
		if found != nil {
			span.SetAttributes(attribute.String("class", found.Field.Class.Name))
			e.audit.record(kindField, outcomeExact)
			return found, nil
		}
	}
	e.audit.record(kindField, outcomeUnresolved)
	return nil, &ResolutionError{Kind: ErrNoMatchFound, Member: req.Name, Classes: rootNames(&Request{Owning: req.Owning, Classes: req.Classes, Receiver: req.Receiver})}
}
