package resolve

import "sync"

// Cache memoizes results per call site. Keys are compared with ==, so
// pointer keys give identity semantics. Entries never expire; Reset drops
// them all between runs.
type Cache[K comparable, V any] struct {
	entries sync.Map
}

type cacheEntry[V any] struct {
	once  sync.Once
	value V
	err   error
}

// GetOrResolve returns the cached result for key or runs compute. compute
// runs at most once per key, also under concurrent callers; the others
// wait for it.
func (c *Cache[K, V]) GetOrResolve(key K, compute func() (V, error)) (V, error) {
	e, loaded := c.entries.LoadOrStore(key, &cacheEntry[V]{})
	entry := e.(*cacheEntry[V])
	if loaded {
		cacheLookups.WithLabelValues("hit").Inc()
	} else {
		cacheLookups.WithLabelValues("miss").Inc()
	}
	entry.once.Do(func() {
		entry.value, entry.err = compute()
	})
	return entry.value, entry.err
}

func (c *Cache[K, V]) Reset() {
	c.entries.Clear()
}

func (c *Cache[K, V]) Len() int {
	n := 0
	c.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
