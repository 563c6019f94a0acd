// Package resolve selects the member a Java call site invokes.
//
// Candidates are gathered by walking the supertype graph of each root
// class breadth first. Each applicable candidate carries an invoker
// distance (supertype hops from the root to the declaring class) and an
// argument distance (summed conversion costs, see Weights). A candidate
// with both distances zero wins outright. Otherwise concrete candidates
// that need no conversion are taken from the first root that has any,
// and the rest are pooled and ranked by phase, invoker distance and
// argument distance. Ties left after that are reduced by specificity;
// what remains is reported as ambiguous.
package resolve

import (
	"context"
	"slices"

	"github.com/tliron/commonlog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dhamidi/jbind/catalog"
	"github.com/dhamidi/jbind/java"
	"github.com/dhamidi/jbind/typeinfo"
)

var (
	log    = commonlog.GetLogger("jbind.resolve")
	tracer = otel.Tracer("jbind.resolve")
)

type Option func(*Engine)

func WithWeights(w Weights) Option {
	return func(e *Engine) { e.weights = w }
}

// WithUnits restricts class lookups to the given compilation units.
func WithUnits(units ...string) Option {
	return func(e *Engine) { e.units = append([]string(nil), units...) }
}

// WithAudit makes the engine count into a shared AuditInfo.
func WithAudit(a *AuditInfo) Option {
	return func(e *Engine) { e.audit = a }
}

// Engine resolves call sites against a catalog. It holds no per-site
// state and is safe for concurrent use.
type Engine struct {
	catalog catalog.Catalog
	units   []string
	weights Weights
	audit   *AuditInfo
}

func NewEngine(cat catalog.Catalog, opts ...Option) *Engine {
	e := &Engine{catalog: cat, weights: DefaultWeights}
	for _, opt := range opts {
		opt(e)
	}
	if e.audit == nil {
		e.audit = &AuditInfo{}
	}
	return e
}

func (e *Engine) Audit() *AuditInfo { return e.audit }

func (e *Engine) Weights() Weights { return e.weights }

// Request describes one method or constructor call site.
type Request struct {
	Owning *java.OwningClassInfo
	// Classes are the classes searched for the member, nearest first.
	// Empty means the owning class.
	Classes []string
	// Receiver is the static type of the receiver expression, if any. It
	// takes precedence over Classes.
	Receiver typeinfo.TypeInfo
	// Member is the method name; ignored for constructors.
	Member      string
	Arguments   []typeinfo.TypeInfo
	Constructor bool
	// Super starts the search at the direct superclass of each class.
	Super bool
}

func (r *Request) kind() string {
	if r.Constructor {
		return kindConstructor
	}
	return kindMethod
}

func (r *Request) member() string {
	if r.Constructor {
		return "<init>"
	}
	return r.Member
}

// Candidate is an applicable member with its scores.
type Candidate struct {
	Method *java.MethodInfo
	// Root is the class the search for this candidate started at.
	Root             string
	InvokerDistance  int
	ArgumentDistance int
	Phase            Phase
	// Deferred candidates are only considered once no root yields a
	// concrete candidate without conversions.
	Deferred bool
	// Parameters are the candidate's arguments with all known bindings
	// applied.
	Parameters []typeinfo.TypeInfo
	Bindings   typeinfo.Bindings
}

func (c *Candidate) exact() bool {
	return c.InvokerDistance == 0 && c.ArgumentDistance == 0 && c.Phase == PhaseStrict
}

// Result is a resolved call site. Members hold more than one method only
// together with ErrAmbiguousResolution.
type Result struct {
	Members    []*java.MethodInfo
	Candidates []Candidate
	Exact      bool
}

// Member returns the single resolved method, or nil.
func (r *Result) Member() *java.MethodInfo {
	if len(r.Members) != 1 {
		return nil
	}
	return r.Members[0]
}

// ResolveMethodInvocation resolves name(args...) as written inside owning,
// searching classes in order.
func (e *Engine) ResolveMethodInvocation(ctx context.Context, owning *java.OwningClassInfo, classes []string, name string, args ...typeinfo.TypeInfo) (*Result, error) {
	return e.Resolve(ctx, &Request{Owning: owning, Classes: classes, Member: name, Arguments: args})
}

// ResolveConstructorInvocation resolves new C(args...) for each class C
// in classes that owning may construct.
func (e *Engine) ResolveConstructorInvocation(ctx context.Context, owning *java.OwningClassInfo, classes []string, args ...typeinfo.TypeInfo) (*Result, error) {
	return e.Resolve(ctx, &Request{Owning: owning, Classes: classes, Arguments: args, Constructor: true})
}

func (e *Engine) Resolve(ctx context.Context, req *Request) (*Result, error) {
	ctx, span := tracer.Start(ctx, "resolve.Engine.Resolve",
		trace.WithAttributes(
			attribute.String("member", req.member()),
			attribute.Int("arguments", len(req.Arguments)),
			attribute.Bool("constructor", req.Constructor),
		))
	defer span.End()

	groups, _ := e.gather(ctx, req)
	n := 0
	for _, g := range groups {
		n += len(g)
	}
	candidatesScored.Observe(float64(n))

	res, err := e.choose(ctx, req, groups)
	span.SetAttributes(attribute.Int("candidates", n))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if len(res.Members) > 0 {
			// ambiguous, with every remaining member reported
			e.audit.record(req.kind(), outcomeApproximate)
		} else {
			e.audit.record(req.kind(), outcomeUnresolved)
		}
		return res, err
	}
	span.SetAttributes(attribute.Bool("exact", res.Exact))
	if res.Exact {
		e.audit.record(req.kind(), outcomeExact)
	} else {
		e.audit.record(req.kind(), outcomeApproximate)
	}
	return res, nil
}

// Explanation is every candidate a call site considered.
type Explanation struct {
	// Applicable candidates, grouped by root in search order.
	Applicable [][]Candidate
	// Rejected members matched by name and arity but not by argument types.
	Rejected []*java.MethodInfo
	Result   *Result
	Err      error
}

// Explain resolves req and reports how the result was reached. It does
// not count into the audit.
func (e *Engine) Explain(ctx context.Context, req *Request) *Explanation {
	groups, rejected := e.gather(ctx, req)
	res, err := e.choose(ctx, req, groups)
	return &Explanation{Applicable: groups, Rejected: rejected, Result: res, Err: err}
}

// root is a class a search starts at, with the bindings of its formals.
type root struct {
	name     string
	bindings typeinfo.Bindings
}

func (e *Engine) roots(ctx context.Context, req *Request) []root {
	if req.Receiver != nil && !req.Super {
		t := req.Receiver
		if f, ok := t.(*typeinfo.FormalTypeParameter); ok {
			t = f.Bound()
		}
		switch t.Kind() {
		case typeinfo.KindQualified, typeinfo.KindParameterized:
			return []root{{name: t.QualifiedName(), bindings: e.bindingsOf(ctx, t)}}
		case typeinfo.KindArray, typeinfo.KindVararg:
			return []root{{name: typeinfo.ObjectName}}
		}
		log.Debugf("receiver %s has no members", t.Name())
		return nil
	}

	names := req.Classes
	if len(names) == 0 && req.Owning != nil {
		names = []string{req.Owning.Name}
	}
	var out []root
	for _, name := range names {
		r := root{name: name}
		class := e.lookupClass(ctx, name)
		if class != nil && req.Owning != nil && name == req.Owning.Name {
			r.bindings = req.Owning.Bindings(class.TypeParameters)
		}
		if req.Super {
			if class == nil || class.SuperClass == "" {
				log.Debugf("no superclass known for %s", name)
				continue
			}
			super := e.lookupClass(ctx, class.SuperClass)
			r = root{
				name:     class.SuperClass,
				bindings: supertypeBindings(level{name: name, class: class, bindings: r.bindings}, super),
			}
		} else if req.Constructor && !req.Owning.CanConstruct(name) {
			log.Debugf("%s is not constructible here", name)
			continue
		}
		out = append(out, r)
	}
	return out
}

// gather scores every member matching req by name and arity, grouped by
// root. Members whose argument types do not fit are returned separately.
func (e *Engine) gather(ctx context.Context, req *Request) ([][]Candidate, []*java.MethodInfo) {
	var groups [][]Candidate
	var rejected []*java.MethodInfo
	for _, r := range e.roots(ctx, req) {
		var group []Candidate
		seen := map[string]bool{}
		consider := func(l level, m *java.MethodInfo, invoker int) {
			key := m.Class.Name + "#" + m.Key()
			if seen[key] || !fitsArity(m, len(req.Arguments)) {
				return
			}
			seen[key] = true
			c, ok := e.score(ctx, m, l.bindings, req.Arguments)
			if !ok {
				rejected = append(rejected, m)
				return
			}
			c.Root = r.name
			c.InvokerDistance = invoker
			group = append(group, c)
		}

		if req.Constructor {
			class := e.lookupClass(ctx, r.name)
			if class == nil {
				log.Debugf("constructor of unknown class %s", r.name)
				continue
			}
			if (class.IsAbstract || class.IsInterface()) && !req.Super {
				log.Debugf("%s cannot be instantiated", r.name)
				continue
			}
			l := level{name: r.name, class: class, bindings: r.bindings}
			for _, m := range e.methods(ctx, class, class.SimpleName) {
				if m.IsConstructor {
					consider(l, m, 0)
				}
			}
			groups = append(groups, group)
			continue
		}

		broken, reachedObject := false, false
		e.walk(ctx, r.name, r.bindings, func(l level) bool {
			if l.class == nil {
				if len(builtinSupertypes[l.name]) == 0 {
					broken = true
				}
				return true
			}
			if l.name == typeinfo.ObjectName {
				reachedObject = true
			}
			for _, m := range e.methods(ctx, l.class, req.Member) {
				if !m.IsConstructor && !m.IsBridge {
					consider(l, m, l.distance)
				}
			}
			return true
		})
		if broken && !reachedObject {
			// the hierarchy stops at a class the catalog lacks; any object
			// still has Object's methods
			e.walk(ctx, typeinfo.ObjectName, nil, func(l level) bool {
				if l.class != nil {
					for _, m := range e.methods(ctx, l.class, req.Member) {
						if !m.IsConstructor && !m.IsBridge {
							consider(l, m, UnknownDistance)
						}
					}
				}
				return true
			})
		}
		groups = append(groups, group)
	}
	return groups, rejected
}

func (e *Engine) methods(ctx context.Context, class *java.ClassInfo, name string) []*java.MethodInfo {
	methods, err := e.catalog.LookupMethods(ctx, []java.ClassID{class.ID}, name)
	if err != nil {
		log.Warningf("failed to look up %s.%s: %s", class.Name, name, err)
		return nil
	}
	return methods
}

func fitsArity(m *java.MethodInfo, n int) bool {
	if m.Arity() == n {
		return true
	}
	return isVarargs(m.Arguments) && n >= m.Arity()-1
}

func isVarargs(params []typeinfo.TypeInfo) bool {
	return len(params) > 0 && params[len(params)-1].Kind() == typeinfo.KindVararg
}

// score applies class bindings and inferred method bindings to m and
// computes its argument distance.
func (e *Engine) score(ctx context.Context, m *java.MethodInfo, classBindings typeinfo.Bindings, args []typeinfo.TypeInfo) (Candidate, bool) {
	bindings := classBindings
	if len(m.TypeParameters) > 0 && len(classBindings) > 0 {
		// method formals shadow class formals of the same name
		bindings = make(typeinfo.Bindings, len(classBindings))
		for k, v := range classBindings {
			bindings[k] = v
		}
		for _, f := range m.TypeParameters {
			delete(bindings, f.Symbol())
		}
	}
	params := typeinfo.SubstituteAll(m.Arguments, bindings)
	if inferred := e.inferMethodBindings(ctx, m, params, args); len(inferred) > 0 {
		params = typeinfo.SubstituteAll(params, inferred)
		bindings = bindings.Merge(inferred)
	}
	conv, ok := e.argumentConversion(ctx, params, args)
	if !ok {
		return Candidate{}, false
	}
	c := Candidate{
		Method:           m,
		ArgumentDistance: conv.distance,
		Phase:            conv.phase,
		Parameters:       params,
		Bindings:         bindings,
	}
	c.Deferred = m.IsAbstract || m.Class.Name == typeinfo.ObjectName || conv.distance != 0 || conv.phase != PhaseStrict
	return c, true
}

// argumentConversion tries args against params at fixed arity, then with
// the trailing vararg expanded.
func (e *Engine) argumentConversion(ctx context.Context, params, args []typeinfo.TypeInfo) (conversion, bool) {
	if len(params) == len(args) {
		total, ok := conversion{}, true
		for i := range args {
			c, fits := e.convert(ctx, args[i], params[i])
			if !fits {
				ok = false
				break
			}
			total = total.add(c)
		}
		if ok {
			return total, true
		}
	}
	if !isVarargs(params) || len(args) < len(params)-1 {
		return conversion{}, false
	}
	last := len(params) - 1
	elem := params[last].(*typeinfo.Vararg).Element()
	total := conversion{distance: e.weights.VarargWrap, phase: PhaseVarargs}
	for i, arg := range args {
		param := elem
		if i < last {
			param = params[i]
		}
		c, ok := e.convert(ctx, arg, param)
		if !ok {
			return conversion{}, false
		}
		total = total.add(c)
	}
	return total, true
}

func (e *Engine) choose(ctx context.Context, req *Request, groups [][]Candidate) (*Result, error) {
	var pool []Candidate
	for _, group := range groups {
		for _, c := range group {
			if c.exact() {
				return e.result(req, []Candidate{c}, true), nil
			}
		}
		var accepted []Candidate
		for _, c := range group {
			if !c.Deferred {
				accepted = append(accepted, c)
			}
		}
		if len(accepted) > 0 {
			return e.finish(ctx, req, accepted)
		}
		pool = append(pool, group...)
	}
	if len(pool) == 0 {
		return &Result{}, &ResolutionError{Kind: ErrNoMatchFound, Member: req.member(), Classes: rootNames(req)}
	}
	return e.finish(ctx, req, pool)
}

func (e *Engine) finish(ctx context.Context, req *Request, cands []Candidate) (*Result, error) {
	best := e.best(ctx, cands)
	res := e.result(req, best, false)
	if len(best) > 1 {
		return res, &ResolutionError{
			Kind:       ErrAmbiguousResolution,
			Member:     req.member(),
			Classes:    rootNames(req),
			Candidates: len(best),
		}
	}
	return res, nil
}

// best narrows cands by phase, invoker distance and argument distance,
// then drops candidates another one is more specific than.
func (e *Engine) best(ctx context.Context, cands []Candidate) []Candidate {
	cands = minimal(cands, func(c *Candidate) int { return int(c.Phase) })
	cands = minimal(cands, func(c *Candidate) int { return c.InvokerDistance })
	cands = minimal(cands, func(c *Candidate) int { return c.ArgumentDistance })
	if len(cands) == 1 {
		return cands
	}

	var out []Candidate
	for i := range cands {
		dominated := false
		for j := range cands {
			if i != j && e.dominates(ctx, &cands[j], &cands[i], j < i) {
				dominated = true
				break
			}
		}
		if !dominated {
			out = append(out, cands[i])
		}
	}
	slices.SortStableFunc(out, func(a, b Candidate) int {
		if a.InvokerDistance != b.InvokerDistance {
			return a.InvokerDistance - b.InvokerDistance
		}
		return a.Method.Order - b.Method.Order
	})
	return out
}

// dominates reports whether a makes b redundant: a overrides b, or a's
// parameters all fit b's and not the other way around. Of two abstract
// override-equivalent members in unrelated classes the earlier one stays.
func (e *Engine) dominates(ctx context.Context, a, b *Candidate, earlier bool) bool {
	ma, mb := a.Method, b.Method
	equivalent := sameErasure(ma.Arguments, mb.Arguments) || sameErasure(a.Parameters, b.Parameters)
	if !ma.IsConstructor && equivalent && ma.Class.Name != mb.Class.Name {
		if e.isSubclass(ctx, ma.Class.Name, mb.Class.Name) {
			return true
		}
		if e.isSubclass(ctx, mb.Class.Name, ma.Class.Name) {
			return false
		}
		if ma.IsAbstract != mb.IsAbstract {
			return !ma.IsAbstract
		}
		// two concrete members of unrelated types stay ambiguous
		return ma.IsAbstract && earlier
	}
	return e.moreSpecific(ctx, a.Parameters, b.Parameters) && !e.moreSpecific(ctx, b.Parameters, a.Parameters)
}

func (e *Engine) isSubclass(ctx context.Context, sub, super string) bool {
	_, ok := e.distance(ctx, sub, super)
	return ok
}

// moreSpecific reports whether every parameter of a fits the matching
// parameter of b without boxing.
func (e *Engine) moreSpecific(ctx context.Context, a, b []typeinfo.TypeInfo) bool {
	n := max(len(a), len(b))
	for i := 0; i < n; i++ {
		pa, pb := paramAt(a, i, n), paramAt(b, i, n)
		if pa == nil || pb == nil {
			return false
		}
		c, ok := e.convert(ctx, pa, pb)
		if !ok || c.phase != PhaseStrict {
			return false
		}
	}
	return true
}

// paramAt is the i-th of n parameters, expanding a trailing vararg when
// the lists differ in length.
func paramAt(params []typeinfo.TypeInfo, i, n int) typeinfo.TypeInfo {
	if len(params) == n && (i < n-1 || !isVarargs(params)) {
		return params[i]
	}
	if !isVarargs(params) {
		if i < len(params) {
			return params[i]
		}
		return nil
	}
	last := len(params) - 1
	if i < last {
		return params[i]
	}
	return params[last].(*typeinfo.Vararg).Element()
}

func minimal(cands []Candidate, key func(*Candidate) int) []Candidate {
	lowest := key(&cands[0])
	for i := range cands {
		lowest = min(lowest, key(&cands[i]))
	}
	out := cands[:0:0]
	for i := range cands {
		if key(&cands[i]) == lowest {
			out = append(out, cands[i])
		}
	}
	return out
}

// result substitutes the chosen candidates' types.
func (e *Engine) result(req *Request, chosen []Candidate, exact bool) *Result {
	res := &Result{Candidates: chosen, Exact: exact}
	for _, c := range chosen {
		ret := c.Method.Return
		if ret != nil {
			ret = typeinfo.Substitute(ret, c.Bindings)
		}
		m := c.Method.WithTypes(c.Parameters, ret)
		logUnresolved(m)
		res.Members = append(res.Members, m)
	}
	return res
}

func logUnresolved(m *java.MethodInfo) {
	var free []string
	for _, a := range m.Arguments {
		free = append(free, typeinfo.FreeVariables(a)...)
	}
	if m.Return != nil {
		free = append(free, typeinfo.FreeVariables(m.Return)...)
	}
	if len(free) == 0 {
		return
	}
	slices.Sort(free)
	log.Debugf("%s: %s in %s", ErrUnresolvedTypeVariable, slices.Compact(free), m)
}

func rootNames(req *Request) []string {
	if req.Receiver != nil {
		return []string{req.Receiver.Name()}
	}
	if len(req.Classes) > 0 {
		return req.Classes
	}
	if req.Owning != nil {
		return []string{req.Owning.Name}
	}
	return nil
}
