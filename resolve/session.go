package resolve

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/dhamidi/jbind/catalog"
)

type SiteKind int

const (
	SiteMethod SiteKind = iota
	SiteConstructor
	SiteField
	SiteMethodReference
)

func (k SiteKind) String() string {
	switch k {
	case SiteConstructor:
		return kindConstructor
	case SiteField:
		return kindField
	case SiteMethodReference:
		return kindReference
	}
	return kindMethod
}

// Site is one call site of a session. Sites are cached by identity: the
// same *Site resolves once per session.
type Site struct {
	Kind      SiteKind
	Request   *Request
	Field     *FieldRequest
	Reference *ReferenceRequest
}

func MethodSite(req *Request) *Site {
	if req.Constructor {
		return &Site{Kind: SiteConstructor, Request: req}
	}
	return &Site{Kind: SiteMethod, Request: req}
}

func FieldSite(req *FieldRequest) *Site {
	return &Site{Kind: SiteField, Field: req}
}

func ReferenceSite(req *ReferenceRequest) *Site {
	return &Site{Kind: SiteMethodReference, Reference: req}
}

// Outcome is what a site resolved to. Exactly one of Result, Field and
// Reference is set, matching the site's kind; Err may accompany it.
type Outcome struct {
	Site      *Site
	Result    *Result
	Field     *FieldResult
	Reference *ReferenceResult
	Err       error
}

// Session resolves the call sites of one analysis run. It owns an engine
// with its own audit counters and a cache of site outcomes.
type Session struct {
	ID      uuid.UUID
	engine  *Engine
	cache   Cache[*Site, *Outcome]
	workers int
}

// NewSession starts a session over cat. workers bounds ResolveAll's
// parallelism; zero or less means 4.
func NewSession(cat catalog.Catalog, workers int, opts ...Option) *Session {
	if workers <= 0 {
		workers = 4
	}
	opts = append([]Option{WithAudit(&AuditInfo{})}, opts...)
	return &Session{
		ID:      uuid.New(),
		engine:  NewEngine(cat, opts...),
		workers: workers,
	}
}

func (s *Session) Engine() *Engine { return s.engine }

func (s *Session) Audit() AuditSnapshot { return s.engine.Audit().Snapshot() }

// Resolve resolves site, or returns its cached outcome.
func (s *Session) Resolve(ctx context.Context, site *Site) *Outcome {
	out, _ := s.cache.GetOrResolve(site, func() (*Outcome, error) {
		return s.resolve(ctx, site), nil
	})
	return out
}

func (s *Session) resolve(ctx context.Context, site *Site) *Outcome {
	out := &Outcome{Site: site}
	switch site.Kind {
	case SiteMethod, SiteConstructor:
		if site.Request == nil {
			out.Err = fmt.Errorf("%s site without request", site.Kind)
			break
		}
		out.Result, out.Err = s.engine.Resolve(ctx, site.Request)
	case SiteField:
		if site.Field == nil {
			out.Err = fmt.Errorf("%s site without request", site.Kind)
			break
		}
		out.Field, out.Err = s.engine.ResolveField(ctx, site.Field)
	case SiteMethodReference:
		if site.Reference == nil {
			out.Err = fmt.Errorf("%s site without request", site.Kind)
			break
		}
		out.Reference, out.Err = s.engine.ResolveMethodReference(ctx, site.Reference)
	default:
		out.Err = fmt.Errorf("unknown site kind %d", site.Kind)
	}
	if out.Err != nil {
		log.Debugf("session %s: %s", s.ID, out.Err)
	}
	return out
}

// ResolveAll resolves sites in parallel. Outcomes line up with sites.
// Resolution failures are reported per outcome; the returned error is
// only set when ctx is done.
func (s *Session) ResolveAll(ctx context.Context, sites []*Site) ([]*Outcome, error) {
	ctx, span := tracer.Start(ctx, "resolve.Session.ResolveAll",
		trace.WithAttributes(
			attribute.String("session", s.ID.String()),
			attribute.Int("sites", len(sites)),
		))
	defer span.End()

	outcomes := make([]*Outcome, len(sites))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, site := range sites {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = s.Resolve(gctx, site)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return outcomes, err
	}
	return outcomes, nil
}

// Reset forgets every cached outcome.
func (s *Session) Reset() {
	s.cache.Reset()
}
