package catalog_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dhamidi/jbind/catalog"
	"github.com/dhamidi/jbind/catalog/catalogtest"
	"github.com/dhamidi/jbind/java"
)

type countingCatalog struct {
	catalog.Catalog
	classes atomic.Int64
	supers  atomic.Int64
}

func (c *countingCatalog) LookupClasses(ctx context.Context, units []string, name string) ([]*java.ClassInfo, error) {
	c.classes.Add(1)
	return c.Catalog.LookupClasses(ctx, units, name)
}

func (c *countingCatalog) LookupSuperTypeNames(ctx context.Context, id java.ClassID, r catalog.Relation) ([]string, error) {
	c.supers.Add(1)
	return c.Catalog.LookupSuperTypeNames(ctx, id, r)
}

func TestCached(t *testing.T) {
	ctx := context.Background()
	mem := catalog.NewMemory()
	ids, err := catalogtest.Fill(ctx, mem)
	if err != nil {
		t.Fatalf("Fill: %v", err)
	}
	inner := &countingCatalog{Catalog: mem}
	cached, err := catalog.NewCached(inner, catalog.CacheOptions{})
	if err != nil {
		t.Fatalf("NewCached: %v", err)
	}
	defer cached.Close()

	t.Run("second lookup is served from cache", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			got, err := cached.LookupClasses(ctx, nil, "java.lang.String")
			if err != nil {
				t.Fatalf("LookupClasses: %v", err)
			}
			if len(got) != 1 {
				t.Fatalf("LookupClasses = %d classes", len(got))
			}
			cached.Wait()
		}
		if n := inner.classes.Load(); n != 1 {
			t.Errorf("inner LookupClasses called %d times, want 1", n)
		}
	})

	t.Run("units are part of the key", func(t *testing.T) {
		got, err := cached.LookupClasses(ctx, []string{catalogtest.AppUnit}, "java.lang.String")
		if err != nil {
			t.Fatalf("LookupClasses: %v", err)
		}
		if len(got) != 0 {
			t.Errorf("LookupClasses(app) = %d classes, want 0", len(got))
		}
	})

	t.Run("relation is part of the key", func(t *testing.T) {
		id := ids["java.lang.Integer"]
		sup, err := cached.LookupSuperTypeNames(ctx, id, catalog.SuperClass)
		if err != nil {
			t.Fatalf("LookupSuperTypeNames: %v", err)
		}
		cached.Wait()
		ifaces, err := cached.LookupSuperTypeNames(ctx, id, catalog.Interface)
		if err != nil {
			t.Fatalf("LookupSuperTypeNames: %v", err)
		}
		if len(sup) != 1 || sup[0] != "java.lang.Number" {
			t.Errorf("superclass = %v", sup)
		}
		if len(ifaces) != 1 || ifaces[0] != "java.lang.Comparable" {
			t.Errorf("interfaces = %v", ifaces)
		}
	})

	t.Run("reset forgets", func(t *testing.T) {
		before := inner.classes.Load()
		cached.Reset()
		if _, err := cached.LookupClasses(ctx, nil, "java.lang.String"); err != nil {
			t.Fatalf("LookupClasses: %v", err)
		}
		if got := inner.classes.Load(); got != before+1 {
			t.Errorf("inner LookupClasses called %d times after reset, want %d", got, before+1)
		}
	})

	t.Run("errors are not cached", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			if _, err := cached.LookupClassByID(ctx, 424242); err == nil {
				t.Fatal("LookupClassByID(424242) succeeded")
			}
		}
	})
}

func TestCachedIdleExpiry(t *testing.T) {
	ctx := context.Background()
	mem := catalog.NewMemory()
	if _, err := catalogtest.Fill(ctx, mem); err != nil {
		t.Fatalf("Fill: %v", err)
	}
	inner := &countingCatalog{Catalog: mem}
	cached, err := catalog.NewCached(inner, catalog.CacheOptions{TTL: 300 * time.Millisecond})
	if err != nil {
		t.Fatalf("NewCached: %v", err)
	}
	defer cached.Close()

	lookup := func() {
		t.Helper()
		if _, err := cached.LookupClasses(ctx, nil, "java.lang.Integer"); err != nil {
			t.Fatalf("LookupClasses: %v", err)
		}
		cached.Wait()
	}

	// each hit comes within the ttl of the previous one, though the last
	// is past the ttl of the first load
	lookup()
	time.Sleep(200 * time.Millisecond)
	lookup()
	time.Sleep(200 * time.Millisecond)
	lookup()
	if n := inner.classes.Load(); n != 1 {
		t.Errorf("inner LookupClasses called %d times, want 1", n)
	}

	time.Sleep(400 * time.Millisecond)
	lookup()
	if n := inner.classes.Load(); n != 2 {
		t.Errorf("inner LookupClasses called %d times after idling, want 2", n)
	}
}
