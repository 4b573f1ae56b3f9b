package cache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/kapu/skincheck-go/internal/domain"
)

func newTestLRU(t *testing.T, capacity int) *LRU[string, string] {
	t.Helper()
	c, err := NewLRU[string, string](capacity)
	if err != nil {
		t.Fatalf("NewLRU: %v", err)
	}
	return c
}

func TestLRUEvictsLeastRecentlyAccessed(t *testing.T) {
	c := newTestLRU(t, 100)
	for i := 0; i < 100; i++ {
		c.Put(fmt.Sprintf("k%d", i), "v")
	}

	// k0 becomes most recent; k1 is now the oldest.
	if _, ok := c.Get("k0"); !ok {
		t.Fatal("k0 missing before eviction")
	}

	if evicted := c.Put("k100", "v"); !evicted {
		t.Fatal("101st key should evict")
	}
	if c.Len() != 100 {
		t.Fatalf("len = %d", c.Len())
	}
	if c.Contains("k1") {
		t.Fatal("least recently accessed key k1 survived")
	}
	for _, k := range []string{"k0", "k2", "k99", "k100"} {
		if !c.Contains(k) {
			t.Fatalf("%s was evicted", k)
		}
	}
}

func TestLRUReplaceDoesNotEvict(t *testing.T) {
	c := newTestLRU(t, 2)
	c.Put("a", "1")
	c.Put("b", "2")
	if evicted := c.Put("a", "3"); evicted {
		t.Fatal("replacing an existing key evicted")
	}
	if v, _ := c.Get("a"); v != "3" {
		t.Fatalf("a = %q", v)
	}
	if c.Capacity() != 2 || c.Len() != 2 {
		t.Fatalf("capacity/len = %d/%d", c.Capacity(), c.Len())
	}
}

func TestLRUPeekKeepsRecency(t *testing.T) {
	c := newTestLRU(t, 2)
	c.Put("a", "1")
	c.Put("b", "2")
	c.Peek("a")
	c.Put("c", "3")
	if c.Contains("a") {
		t.Fatal("peek refreshed recency")
	}
}

func TestLRUBoundUnderConcurrency(t *testing.T) {
	c := newTestLRU(t, 100)
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				key := fmt.Sprintf("%d-%d", w, i)
				c.Put(key, key)
				c.Get(key)
			}
		}(w)
	}
	wg.Wait()

	if c.Len() > c.Capacity() {
		t.Fatalf("len %d exceeds capacity %d", c.Len(), c.Capacity())
	}
}

func TestNewLRURejectsNonPositiveCapacity(t *testing.T) {
	if _, err := NewLRU[string, string](0); err == nil {
		t.Fatal("expected error for zero capacity")
	}
}

func TestFieldCachesAreIndependent(t *testing.T) {
	fc, err := NewFieldCaches(100)
	if err != nil {
		t.Fatalf("NewFieldCaches: %v", err)
	}

	key := Key{Identity: "글리세린"}
	fc.Put(domain.FieldPurpose, key, "보습")

	if v, ok := fc.Get(domain.FieldPurpose, key); !ok || v != "보습" {
		t.Fatalf("purpose = %q, %v", v, ok)
	}
	if _, ok := fc.Get(domain.FieldDescription, key); ok {
		t.Fatal("value leaked into description cache")
	}

	hashed := Key{Identity: "글리세린", Hash: "abc"}
	if _, ok := fc.Get(domain.FieldPurpose, hashed); ok {
		t.Fatal("hashed key should be distinct")
	}
	if fc.For(domain.FieldKind("unknown")) != nil {
		t.Fatal("unknown kind should have no cache")
	}
}
