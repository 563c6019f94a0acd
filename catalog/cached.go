package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/dhamidi/jbind/java"
)

const (
	DefaultCacheEntries = 500
	DefaultCacheTTL     = 5 * time.Minute
)

type CacheOptions struct {
	MaxEntries int64
	TTL        time.Duration
}

// Cached wraps a Catalog with size-bounded caches for class, supertype
// and method lookups. Entries expire after TTL without a hit. Field and
// inner class lookups pass through.
type Cached struct {
	inner Catalog
	ttl   time.Duration

	byID    *ristretto.Cache[int64, *java.ClassInfo]
	classes *ristretto.Cache[string, []*java.ClassInfo]
	supers  *ristretto.Cache[string, []string]
	methods *ristretto.Cache[string, []*java.MethodInfo]
}

func NewCached(inner Catalog, opts CacheOptions) (*Cached, error) {
	if opts.MaxEntries <= 0 {
		opts.MaxEntries = DefaultCacheEntries
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultCacheTTL
	}
	c := &Cached{inner: inner, ttl: opts.TTL}
	var err error
	if c.byID, err = newCache[int64, *java.ClassInfo](opts.MaxEntries); err != nil {
		return nil, err
	}
	if c.classes, err = newCache[string, []*java.ClassInfo](opts.MaxEntries); err != nil {
		return nil, err
	}
	if c.supers, err = newCache[string, []string](opts.MaxEntries); err != nil {
		return nil, err
	}
	if c.methods, err = newCache[string, []*java.MethodInfo](opts.MaxEntries); err != nil {
		return nil, err
	}
	return c, nil
}

func newCache[K ristretto.Key, V any](entries int64) (*ristretto.Cache[K, V], error) {
	cache, err := ristretto.NewCache(&ristretto.Config[K, V]{
		NumCounters:        entries * 10,
		MaxCost:            entries,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog cache: %w", err)
	}
	return cache, nil
}

// cachedLookup serves key from cache or loads it. A hit stores the entry
// again, so entries expire once they go unused for ttl.
func cachedLookup[K ristretto.Key, V any](cache *ristretto.Cache[K, V], ttl time.Duration, label string, key K, load func() (V, error)) (V, error) {
	if v, ok := cache.Get(key); ok {
		cacheRequests.WithLabelValues(label, "hit").Inc()
		cache.SetWithTTL(key, v, 1, ttl)
		return v, nil
	}
	cacheRequests.WithLabelValues(label, "miss").Inc()
	v, err := load()
	if err != nil {
		return v, err
	}
	cache.SetWithTTL(key, v, 1, ttl)
	return v, nil
}

func (c *Cached) LookupClasses(ctx context.Context, units []string, name string) ([]*java.ClassInfo, error) {
	key := strings.Join(units, ",") + "|" + name
	return cachedLookup(c.classes, c.ttl, "classes", key, func() ([]*java.ClassInfo, error) {
		return c.inner.LookupClasses(ctx, units, name)
	})
}

func (c *Cached) LookupClassByID(ctx context.Context, id java.ClassID) (*java.ClassInfo, error) {
	return cachedLookup(c.byID, c.ttl, "class_by_id", int64(id), func() (*java.ClassInfo, error) {
		return c.inner.LookupClassByID(ctx, id)
	})
}

func (c *Cached) LookupMethods(ctx context.Context, classIDs []java.ClassID, name string) ([]*java.MethodInfo, error) {
	key := idsKey(classIDs) + "|" + name
	return cachedLookup(c.methods, c.ttl, "methods", key, func() ([]*java.MethodInfo, error) {
		return c.inner.LookupMethods(ctx, classIDs, name)
	})
}

func (c *Cached) LookupFields(ctx context.Context, classIDs []java.ClassID, name string) ([]*java.FieldInfo, error) {
	return c.inner.LookupFields(ctx, classIDs, name)
}

func (c *Cached) LookupSuperTypeNames(ctx context.Context, classID java.ClassID, relation Relation) ([]string, error) {
	key := fmt.Sprintf("%d|%d", classID, relation)
	return cachedLookup(c.supers, c.ttl, "supertypes", key, func() ([]string, error) {
		return c.inner.LookupSuperTypeNames(ctx, classID, relation)
	})
}

func (c *Cached) LookupInnerClassNames(ctx context.Context, classIDs []java.ClassID, units []string) ([]string, error) {
	return c.inner.LookupInnerClassNames(ctx, classIDs, units)
}

// Wait blocks until pending cache writes are visible.
func (c *Cached) Wait() {
	c.byID.Wait()
	c.classes.Wait()
	c.supers.Wait()
	c.methods.Wait()
}

// Reset drops every cached entry.
func (c *Cached) Reset() {
	c.byID.Clear()
	c.classes.Clear()
	c.supers.Clear()
	c.methods.Clear()
}

func (c *Cached) Close() {
	c.byID.Close()
	c.classes.Close()
	c.supers.Close()
	c.methods.Close()
}

func idsKey(ids []java.ClassID) string {
	var sb strings.Builder
	for i, id := range ids {
		if i > 0 {
			sb.WriteByte(',')
		}
		fmt.Fprintf(&sb, "%d", id)
	}
	return sb.String()
}
