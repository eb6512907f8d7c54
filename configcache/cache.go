// Package configcache provides a read-through memoization layer in front of
// keyed table lookups. Entries never expire on their own; callers invalidate
// after every write that could change a previously cached result. Unbounded
// growth is an accepted tradeoff for the low-cardinality, per-guild key space.
package configcache

import (
	"sort"
	"strings"

	"github.com/patrickmn/go-cache"
)

// Filter is a typed query shape. Fields returns the column/value pairs the
// query filters on.
type Filter interface {
	Fields() map[string]string
}

// Key canonicalizes a filter into a cache key. Fields are sorted by name, so
// two filters that produce the same set of pairs collide to the same entry
// no matter how they were constructed.
func Key(f Filter) string {
	fields := f.Fields()
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(fields[name])
		b.WriteByte(';')
	}
	return b.String()
}

// Cache memoizes the results of single-row and multi-row lookups keyed by a
// filter. A nil single-row result is itself a cached fact: "no row found" is
// not re-queried until the entry is invalidated. One-row and many-row
// lookups for the same filter occupy disjoint key spaces.
type Cache[F Filter, T any] struct {
	entries *cache.Cache
	one     func(F) (*T, error)
	all     func(F) ([]T, error)
}

// New builds a cache over the given query functions. Either function may be
// nil if the corresponding lookup shape is never used.
func New[F Filter, T any](one func(F) (*T, error), all func(F) ([]T, error)) *Cache[F, T] {
	return &Cache[F, T]{
		entries: cache.New(cache.NoExpiration, 0),
		one:     one,
		all:     all,
	}
}

// QueryOne returns the memoized single-row result for the filter, querying
// the backing store on a miss. The returned pointer may be nil (no row).
func (c *Cache[F, T]) QueryOne(f F) (*T, error) {
	key := "one|" + Key(f)
	if v, ok := c.entries.Get(key); ok {
		return v.(*T), nil
	}
	row, err := c.one(f)
	if err != nil {
		return nil, err
	}
	c.entries.Set(key, row, cache.NoExpiration)
	return row, nil
}

// QueryAll returns the memoized multi-row result for the filter, querying
// the backing store on a miss.
func (c *Cache[F, T]) QueryAll(f F) ([]T, error) {
	key := "all|" + Key(f)
	if v, ok := c.entries.Get(key); ok {
		return v.([]T), nil
	}
	rows, err := c.all(f)
	if err != nil {
		return nil, err
	}
	c.entries.Set(key, rows, cache.NoExpiration)
	return rows, nil
}

// Invalidate removes the cached entries for the filter if present; a no-op
// if absent. Callers must invalidate after every insert, update, or delete
// that could change the result of a previously cached query.
func (c *Cache[F, T]) Invalidate(f F) {
	c.entries.Delete("one|" + Key(f))
	c.entries.Delete("all|" + Key(f))
}
