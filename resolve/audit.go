package resolve

import "sync/atomic"

// AuditInfo counts what a session resolved. The counters carry no meaning
// for resolution itself.
type AuditInfo struct {
	methods    atomic.Int64
	classes    atomic.Int64
	fields     atomic.Int64
	references atomic.Int64

	exact       atomic.Int64
	approximate atomic.Int64
	unresolved  atomic.Int64
}

type AuditSnapshot struct {
	Methods          int64 `json:"methods"`
	Classes          int64 `json:"classes"`
	Fields           int64 `json:"fields"`
	MethodReferences int64 `json:"method_references"`
	Exact            int64 `json:"exact"`
	Approximate      int64 `json:"approximate"`
	Unresolved       int64 `json:"unresolved"`
}

func (a *AuditInfo) Snapshot() AuditSnapshot {
	return AuditSnapshot{
		Methods:          a.methods.Load(),
		Classes:          a.classes.Load(),
		Fields:           a.fields.Load(),
		MethodReferences: a.references.Load(),
		Exact:            a.exact.Load(),
		Approximate:      a.approximate.Load(),
		Unresolved:       a.unresolved.Load(),
	}
}

// Total is the number of resolved sites.
func (s AuditSnapshot) Total() int64 {
	return s.Methods + s.Classes + s.Fields + s.MethodReferences
}

type outcome string

const (
	outcomeExact       outcome = "exact"
	outcomeApproximate outcome = "approximate"
	outcomeUnresolved  outcome = "unresolved"
)

// record counts one resolution of kind with the given outcome.
func (a *AuditInfo) record(kind string, o outcome) {
	switch o {
	case outcomeUnresolved:
		a.unresolved.Add(1)
	case outcomeExact:
		a.exact.Add(1)
	case outcomeApproximate:
		a.approximate.Add(1)
	}
	resolutions.WithLabelValues(kind, string(o)).Inc()
	if o == outcomeUnresolved {
		return
	}
	switch kind {
	case kindMethod:
		a.methods.Add(1)
	case kindConstructor:
		a.classes.Add(1)
	case kindField:
		a.fields.Add(1)
	case kindReference:
		a.references.Add(1)
	}
}

const (
	kindMethod      = "method"
	kindConstructor = "constructor"
	kindField       = "field"
	kindReference   = "method_reference"
)
