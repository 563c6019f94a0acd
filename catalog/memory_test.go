package catalog_test

import (
	"context"
	"sync"
	"testing"

	"github.com/dhamidi/jbind/catalog"
	"github.com/dhamidi/jbind/catalog/catalogtest"
	"github.com/dhamidi/jbind/java"
)

func TestMemory(t *testing.T) {
	catalogtest.TestStore(t, catalog.NewMemory())
}

func TestMemoryConcurrentAdd(t *testing.T) {
	ctx := context.Background()
	m := catalog.NewMemory()
	lib := catalogtest.Library()

	var wg sync.WaitGroup
	for _, e := range lib {
		wg.Add(1)
		go func(e catalogtest.Entry) {
			defer wg.Done()
			if _, err := m.Add(ctx, e.Unit, e.Declaration); err != nil {
				t.Errorf("Add(%s): %v", e.Declaration.Class.Name, err)
			}
		}(e)
	}
	wg.Wait()

	if m.Len() != len(lib) {
		t.Errorf("Len() = %d, want %d", m.Len(), len(lib))
	}
}

func TestMemoryRejectsEmptyDeclaration(t *testing.T) {
	m := catalog.NewMemory()
	if _, err := m.Add(context.Background(), "x", &java.Declaration{}); err == nil {
		t.Error("Add(empty) succeeded")
	}
}

func TestSameNameInTwoUnits(t *testing.T) {
	ctx := context.Background()
	m := catalog.NewMemory()
	decl := &java.Declaration{Class: java.RawClass{Name: "org.dup.Thing", SuperClass: "java.lang.Object"}}
	first, err := m.Add(ctx, "one", decl)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	second, err := m.Add(ctx, "two", decl)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if first == second {
		t.Fatalf("both units got id %d", first)
	}

	tests := []struct {
		units []string
		want  int
	}{
		{nil, 2},
		{[]string{"one"}, 1},
		{[]string{"two"}, 1},
		{[]string{"three"}, 0},
	}
	for _, tt := range tests {
		got, err := m.LookupClasses(ctx, tt.units, "org.dup.Thing")
		if err != nil {
			t.Fatalf("LookupClasses: %v", err)
		}
		if len(got) != tt.want {
			t.Errorf("LookupClasses(%v) = %d classes, want %d", tt.units, len(got), tt.want)
		}
	}
}
