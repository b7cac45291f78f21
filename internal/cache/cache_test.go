package cache

import (
	"testing"
	"time"
)

func TestMemoryCacheSetGet(t *testing.T) {
	c := NewMemory()

	c.Set("USD_INR", "83.0", time.Minute)

	got, ok := c.Get("USD_INR")
	if !ok {
		t.Fatalf("expected cache hit")
	}
	if got != "83.0" {
		t.Fatalf("Get() = %q, want %q", got, "83.0")
	}
}

func TestMemoryCacheMiss(t *testing.T) {
	c := NewMemory()
	if _, ok := c.Get("missing"); ok {
		t.Fatalf("expected miss for absent key")
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	mc := &memoryCache{entries: make(map[string]entry), now: time.Now}
	mc.Set("k", "v", 50*time.Millisecond)

	// Entries are never served past their deadline, regardless of wall
	// clock progress between Set and Get.
	mc.now = func() time.Time { return time.Now().Add(time.Second) }

	if _, ok := mc.Get("k"); ok {
		t.Fatalf("expected expired entry to miss")
	}
}

func TestMemoryCacheZeroTTLStoresNothing(t *testing.T) {
	c := NewMemory()
	c.Set("k", "v", 0)
	if _, ok := c.Get("k"); ok {
		t.Fatalf("expected zero-TTL Set to be a no-op")
	}
}

func TestMemoryCacheDelete(t *testing.T) {
	c := NewMemory()
	c.Set("k", "v", time.Minute)
	c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Fatalf("expected deleted key to miss")
	}
}
