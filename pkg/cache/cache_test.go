package cache

import (
	"testing"
	"time"
)

func TestSetAndGet(t *testing.T) {
	c := New()
	c.Set("storedir:acme", "s1", 1*time.Second)
	val, ok := c.Get("storedir:acme")
	if !ok || val != "s1" {
		t.Fatalf("expected s1, got %v, exists=%v", val, ok)
	}
}

func TestExpiration(t *testing.T) {
	c := New()
	c.Set("storedir:acme", "s1", 50*time.Millisecond)
	time.Sleep(80 * time.Millisecond)
	if _, ok := c.Get("storedir:acme"); ok {
		t.Fatal("expected expired key to return false")
	}
}

func TestDelete(t *testing.T) {
	c := New()
	c.Set("storedir:acme", "s1", 1*time.Second)
	c.Delete("storedir:acme")
	if _, ok := c.Get("storedir:acme"); ok {
		t.Fatal("expected deleted key to return false")
	}
}

func TestInvalidatePrefix(t *testing.T) {
	c := New()
	c.Set("storedir:acme", "s1", 1*time.Second)
	c.Set("storedir:bolt", "s2", 1*time.Second)
	c.Set("session:abc", "tok", 1*time.Second)
	c.Invalidate("storedir:")
	if _, ok := c.Get("storedir:acme"); ok {
		t.Fatal("expected storedir keys to be invalidated")
	}
	if _, ok := c.Get("session:abc"); !ok {
		t.Fatal("expected unrelated key to survive")
	}
}
