package http

import (
	"strconv"
	"testing"
	"time"
)

func TestLRUCacheEviction(t *testing.T) {
	c := newLRUCache[int](3, time.Minute)

	for i := 0; i < 4; i++ {
		c.Set("k"+strconv.Itoa(i), i)
	}

	if _, found := c.Get("k0"); found {
		t.Fatal("oldest entry must be evicted at capacity")
	}
	for i := 1; i < 4; i++ {
		if v, found := c.Get("k" + strconv.Itoa(i)); !found || v != i {
			t.Fatalf("k%d = %d found=%v", i, v, found)
		}
	}
}

func TestLRUCacheRecentUseSurvivesEviction(t *testing.T) {
	c := newLRUCache[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)

	// Touch "a" so "b" becomes the eviction candidate
	if _, found := c.Get("a"); !found {
		t.Fatal("a missing")
	}
	c.Set("c", 3)

	if _, found := c.Get("b"); found {
		t.Fatal("b should have been evicted")
	}
	if _, found := c.Get("a"); !found {
		t.Fatal("recently used entry evicted")
	}
}

func TestLRUCacheTTL(t *testing.T) {
	c := newLRUCache[string](10, 10*time.Millisecond)
	c.Set("k", "v")

	if _, found := c.Get("k"); !found {
		t.Fatal("fresh entry missing")
	}
	time.Sleep(20 * time.Millisecond)
	if _, found := c.Get("k"); found {
		t.Fatal("expired entry still served")
	}
	if n := c.CleanExpired(); n != 0 {
		// Get already removed it
		t.Fatalf("CleanExpired removed %d entries", n)
	}
}

func TestLRUCachePurge(t *testing.T) {
	c := newLRUCache[int](10, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Purge()

	if _, found := c.Get("a"); found {
		t.Fatal("purged entry still present")
	}
	c.Set("a", 3)
	if v, found := c.Get("a"); !found || v != 3 {
		t.Fatal("cache unusable after purge")
	}
}
