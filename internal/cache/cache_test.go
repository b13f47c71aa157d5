package cache

import (
	"testing"
	"time"
)

func TestGetSet(t *testing.T) {
	c := New[string](4, time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Error("hit on empty cache")
	}

	c.Set("k", "v")
	got, ok := c.Get("k")
	if !ok || got != "v" {
		t.Errorf("got %q, %v", got, ok)
	}
}

func TestTTLExpiry(t *testing.T) {
	c := New[int](4, 10*time.Millisecond)
	c.Set("k", 1)

	time.Sleep(20 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Error("expired item still served")
	}
	if c.Len() != 0 {
		t.Errorf("len = %d after expiry read", c.Len())
	}
}

func TestLRUEviction(t *testing.T) {
	c := New[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)

	// Touch a so b is the eviction candidate.
	c.Get("a")
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("least recently used item survived eviction")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("recently used item evicted")
	}
	if c.Len() != 2 {
		t.Errorf("len = %d, want 2", c.Len())
	}
}

func TestDeleteAndPurge(t *testing.T) {
	c := New[int](4, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)

	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Error("deleted key still present")
	}

	c.Purge()
	if c.Len() != 0 {
		t.Errorf("len = %d after purge", c.Len())
	}
}
