package cache

import (
	"testing"
	"time"
)

func TestMemoryGetSet(t *testing.T) {
	m := NewMemory(time.Hour)
	defer m.Close()

	if _, ok := m.Get("missing"); ok {
		t.Fatalf("hit on missing key")
	}

	m.Set("k", 42, time.Minute)
	v, ok := m.Get("k")
	if !ok {
		t.Fatalf("miss after set")
	}
	if v.(int) != 42 {
		t.Fatalf("got %v, want 42", v)
	}
}

func TestMemoryExpiry(t *testing.T) {
	m := NewMemory(time.Hour)
	defer m.Close()

	m.Set("k", "v", -time.Second)
	if _, ok := m.Get("k"); ok {
		t.Fatalf("expired entry served")
	}
}

func TestMemoryInvalidateExact(t *testing.T) {
	m := NewMemory(time.Hour)
	defer m.Close()

	m.Set("ref:roles", 1, time.Minute)
	m.Set("ref:labels", 2, time.Minute)
	m.Invalidate("ref:roles")

	if _, ok := m.Get("ref:roles"); ok {
		t.Fatalf("invalidated key still present")
	}
	if _, ok := m.Get("ref:labels"); !ok {
		t.Fatalf("unrelated key dropped by exact invalidation")
	}
}

func TestMemoryInvalidatePrefix(t *testing.T) {
	m := NewMemory(time.Hour)
	defer m.Close()

	m.Set("ref:roles", 1, time.Minute)
	m.Set("ref:departments", 2, time.Minute)
	m.Set("other", 3, time.Minute)
	m.Invalidate("ref:*")

	if _, ok := m.Get("ref:roles"); ok {
		t.Fatalf("prefix invalidation left ref:roles")
	}
	if _, ok := m.Get("ref:departments"); ok {
		t.Fatalf("prefix invalidation left ref:departments")
	}
	if _, ok := m.Get("other"); !ok {
		t.Fatalf("prefix invalidation dropped unrelated key")
	}
}

func TestMemorySweep(t *testing.T) {
	m := NewMemory(10 * time.Millisecond)
	defer m.Close()

	m.Set("short", 1, time.Millisecond)
	m.Set("long", 2, time.Hour)
	time.Sleep(50 * time.Millisecond)

	m.mu.RLock()
	_, shortKept := m.store["short"]
	_, longKept := m.store["long"]
	m.mu.RUnlock()
	if shortKept {
		t.Fatalf("sweep left expired entry in the map")
	}
	if !longKept {
		t.Fatalf("sweep dropped live entry")
	}
}

func TestMemoryCloseIdempotent(t *testing.T) {
	m := NewMemory(time.Hour)
	m.Close()
	m.Close()
}

func TestDisabledIsInert(t *testing.T) {
	var c Cache = Disabled{}
	c.Set("k", 1, time.Minute)
	if _, ok := c.Get("k"); ok {
		t.Fatalf("disabled cache returned a value")
	}
	c.Invalidate("k")
	c.Close()
}
