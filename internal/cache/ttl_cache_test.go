package cache

import (
	"testing"
	"time"
)

func TestTTLGetSet(t *testing.T) {
	c := NewTTL[string, int]()
	now := time.Now()

	if _, ok := c.Get("missing", now); ok {
		t.Fatalf("expected miss for absent key")
	}

	c.Set("a", 42, now, time.Minute)
	value, ok := c.Get("a", now.Add(30*time.Second))
	if !ok || value != 42 {
		t.Fatalf("expected hit with 42, got %d ok=%v", value, ok)
	}

	if _, ok := c.Get("a", now.Add(2*time.Minute)); ok {
		t.Fatalf("expected expiry after TTL")
	}
}

func TestTTLInvalidate(t *testing.T) {
	c := NewTTL[string, string]()
	now := time.Now()

	c.Set("k", "v", now, time.Minute)
	c.Invalidate("k")
	if _, ok := c.Get("k", now); ok {
		t.Fatalf("expected miss after invalidate")
	}
}
