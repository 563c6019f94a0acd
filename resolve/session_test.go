package resolve

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/dhamidi/jbind/catalog"
	"github.com/dhamidi/jbind/catalog/catalogtest"
	"github.com/dhamidi/jbind/typeinfo"
)

func newTestSession(t *testing.T, workers int) *Session {
	t.Helper()
	mem := catalog.NewMemory()
	if _, err := catalogtest.Fill(context.Background(), mem); err != nil {
		t.Fatalf("Fill: %v", err)
	}
	return NewSession(mem, workers)
}

func TestSessionResolveAll(t *testing.T) {
	s := newTestSession(t, 2)
	if s.ID == uuid.Nil {
		t.Error("session has no id")
	}
	ctx := context.Background()
	printer := []string{"com.example.Printer"}

	exact := MethodSite(&Request{Classes: printer, Member: "print", Arguments: []typeinfo.TypeInfo{stringType, stringType}})
	sites := []*Site{
		exact,
		MethodSite(&Request{Classes: printer, Member: "pick", Arguments: []typeinfo.TypeInfo{stringType, stringType}}),
		FieldSite(&FieldRequest{Receiver: typeinfo.NewParameterized("com.example.Box", stringType), Name: "value"}),
		ReferenceSite(&ReferenceRequest{Classes: []string{"java.lang.String"}, Member: "length"}),
		MethodSite(&Request{Classes: []string{"com.example.Outer$Inner"}, Constructor: true, Arguments: []typeinfo.TypeInfo{stringType}}),
		exact,
	}
	outcomes, err := s.ResolveAll(ctx, sites)
	if err != nil {
		t.Fatalf("ResolveAll: %v", err)
	}
	if len(outcomes) != len(sites) {
		t.Fatalf("got %d outcomes for %d sites", len(outcomes), len(sites))
	}
	for i, o := range outcomes {
		if o.Site != sites[i] {
			t.Errorf("outcome %d is for another site", i)
		}
	}
	if outcomes[0] != outcomes[5] {
		t.Error("repeated site resolved twice")
	}
	if outcomes[0].Result.Member() == nil || outcomes[0].Err != nil {
		t.Errorf("print: %v", outcomes[0].Err)
	}
	if !errors.Is(outcomes[1].Err, ErrAmbiguousResolution) {
		t.Errorf("pick: err = %v, want ErrAmbiguousResolution", outcomes[1].Err)
	}
	if got := outcomes[2].Field.Field.Type.Name(); got != "java.lang.String" {
		t.Errorf("value type = %q", got)
	}
	if outcomes[3].Reference == nil || outcomes[3].Err != nil {
		t.Errorf("String::length: %v", outcomes[3].Err)
	}
	if outcomes[4].Result.Member().InnerConstructor == nil {
		t.Error("inner constructor lost")
	}

	got := s.Audit()
	want := AuditSnapshot{Methods: 2, Classes: 1, Fields: 1, MethodReferences: 1, Exact: 4, Approximate: 1}
	if got != want {
		t.Errorf("audit = %+v, want %+v", got, want)
	}
}

func TestSessionReset(t *testing.T) {
	s := newTestSession(t, 0)
	ctx := context.Background()
	site := MethodSite(&Request{Receiver: typeinfo.NewQualified("com.example.A"), Member: "f"})

	first := s.Resolve(ctx, site)
	if s.Resolve(ctx, site) != first {
		t.Error("second Resolve did not hit the cache")
	}
	s.Reset()
	if s.Resolve(ctx, site) == first {
		t.Error("Resolve after Reset returned the cached outcome")
	}
	if got := s.Audit().Methods; got != 2 {
		t.Errorf("methods = %d, want 2", got)
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	a := newTestSession(t, 1)
	b := newTestSession(t, 1)
	if a.ID == b.ID {
		t.Error("sessions share an id")
	}
	a.Resolve(context.Background(), FieldSite(&FieldRequest{Classes: []string{"java.lang.Integer"}, Name: "MAX_VALUE"}))
	if b.Audit().Total() != 0 {
		t.Errorf("audit leaked between sessions: %+v", b.Audit())
	}
}

func TestSessionMalformedSite(t *testing.T) {
	s := newTestSession(t, 1)
	o := s.Resolve(context.Background(), &Site{Kind: SiteField})
	if o.Err == nil {
		t.Error("field site without request resolved")
	}
}

func TestSessionCancelled(t *testing.T) {
	s := newTestSession(t, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.ResolveAll(ctx, []*Site{MethodSite(&Request{Receiver: typeinfo.NewQualified("com.example.A"), Member: "f"})})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
