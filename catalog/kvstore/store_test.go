package kvstore

import (
	"context"
	"testing"

	"github.com/dhamidi/jbind/catalog/catalogtest"
	"github.com/dhamidi/jbind/java"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open("")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore(t *testing.T) {
	catalogtest.TestStore(t, newTestStore(t))
}

func TestReopenOnDisk(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	ids, err := catalogtest.Fill(ctx, s)
	if err != nil {
		t.Fatalf("Fill: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s, err = Open(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	got, err := s.LookupClasses(ctx, nil, "Box")
	if err != nil {
		t.Fatalf("LookupClasses: %v", err)
	}
	if len(got) != 1 || got[0].ID != ids["com.example.Box"] {
		t.Fatalf("LookupClasses(Box) after reopen = %v", got)
	}

	id, err := s.Add(ctx, "extra", &java.Declaration{Class: java.RawClass{Name: "org.extra.Thing"}})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	for name, old := range ids {
		if old == id {
			t.Errorf("new class got id %d already used by %s", id, name)
		}
	}
}

func TestKeys(t *testing.T) {
	a := simpleKey("Entry", "rt", 1)
	b := simpleKey("Entry", "rt", 2)
	if string(a) >= string(b) {
		t.Errorf("simple keys do not sort by id: %q >= %q", a, b)
	}
	id, err := decodeID(encodeID(java.ClassID(258)))
	if err != nil || id != 258 {
		t.Errorf("decodeID(encodeID(258)) = %d, %v", id, err)
	}
	if _, err := decodeID([]byte{1, 2}); err == nil {
		t.Error("decodeID accepted two bytes")
	}
}
