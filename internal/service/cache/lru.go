package cache

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/kapu/skincheck-go/internal/domain"
)

// LRU is a fixed-capacity cache with least-recently-accessed eviction.
// Get refreshes recency. Safe for concurrent use.
type LRU[K comparable, V any] struct {
	inner    *lru.Cache[K, V]
	capacity int
}

func NewLRU[K comparable, V any](capacity int) (*LRU[K, V], error) {
	inner, err := lru.New[K, V](capacity)
	if err != nil {
		return nil, fmt.Errorf("create lru cache: %w", err)
	}
	return &LRU[K, V]{inner: inner, capacity: capacity}, nil
}

func (c *LRU[K, V]) Get(key K) (V, bool) {
	return c.inner.Get(key)
}

// Put inserts or replaces key, evicting the least-recently-accessed entry
// when a new key arrives at capacity. It reports whether an eviction happened.
func (c *LRU[K, V]) Put(key K, value V) bool {
	return c.inner.Add(key, value)
}

// Peek reads without touching recency.
func (c *LRU[K, V]) Peek(key K) (V, bool) {
	return c.inner.Peek(key)
}

func (c *LRU[K, V]) Contains(key K) bool {
	return c.inner.Contains(key)
}

func (c *LRU[K, V]) Capacity() int {
	return c.capacity
}

func (c *LRU[K, V]) Len() int {
	return c.inner.Len()
}

// Key identifies one cached enrichment value. Hash is set for values derived
// from source text (translations), so a changed source misses the cache.
type Key struct {
	Identity string
	Hash     string
}

func (k Key) String() string {
	if k.Hash == "" {
		return k.Identity
	}
	return k.Identity + "#" + k.Hash
}

// FieldCaches holds one LRU per field kind.
type FieldCaches struct {
	caches map[domain.FieldKind]*LRU[Key, string]
}

// CacheKinds are the field kinds that get their own cache.
var CacheKinds = []domain.FieldKind{
	domain.FieldPurpose,
	domain.FieldSuitability,
	domain.FieldDescription,
	domain.FieldShortText,
	domain.FieldExplanation,
}

func NewFieldCaches(capacity int) (*FieldCaches, error) {
	fc := &FieldCaches{caches: make(map[domain.FieldKind]*LRU[Key, string], len(CacheKinds))}
	for _, kind := range CacheKinds {
		c, err := NewLRU[Key, string](capacity)
		if err != nil {
			return nil, fmt.Errorf("%s cache: %w", kind, err)
		}
		fc.caches[kind] = c
	}
	return fc, nil
}

// For returns the cache of kind, or nil for kinds without one.
func (fc *FieldCaches) For(kind domain.FieldKind) *LRU[Key, string] {
	return fc.caches[kind]
}

func (fc *FieldCaches) Get(kind domain.FieldKind, key Key) (string, bool) {
	c := fc.For(kind)
	if c == nil {
		return "", false
	}
	return c.Get(key)
}

func (fc *FieldCaches) Put(kind domain.FieldKind, key Key, value string) {
	if c := fc.For(kind); c != nil {
		c.Put(key, value)
	}
}
