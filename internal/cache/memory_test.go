package cache

import (
	"testing"
	"time"
)

func TestMemoryPutAndGet(t *testing.T) {
	store, err := NewMemory(time.Hour, nil)
	if err != nil {
		t.Fatalf("NewMemory() error = %v", err)
	}

	key := "GET /users"
	if err := store.Put(key, testEntry("data")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, ok := store.Get(key)
	if !ok {
		t.Fatal("Get() ok = false, want true")
	}
	if string(got.Body) != "data" {
		t.Errorf("Body = %s, want data", got.Body)
	}

	if _, ok := store.Get("GET /other"); ok {
		t.Error("Get() ok = true for absent key, want false")
	}
}

func TestMemoryExpiry(t *testing.T) {
	ttl := 300 * time.Second
	clk, advance := fakeClock(time.Now())
	store, err := NewMemory(ttl, clk)
	if err != nil {
		t.Fatalf("NewMemory() error = %v", err)
	}

	key := "GET /users"
	if err := store.Put(key, testEntry("data")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	advance(ttl - time.Second)
	if _, ok := store.Get(key); !ok {
		t.Error("Get() ok = false just before TTL, want true")
	}

	advance(2 * time.Second)
	if _, ok := store.Get(key); ok {
		t.Error("Get() ok = true past TTL, want false")
	}
}

func TestMemoryClear(t *testing.T) {
	store, err := NewMemory(time.Hour, nil)
	if err != nil {
		t.Fatalf("NewMemory() error = %v", err)
	}

	for _, key := range []string{"GET /a", "GET /b"} {
		if err := store.Put(key, testEntry(key)); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
	}

	removed, err := store.Clear()
	if err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if removed != 2 {
		t.Errorf("Clear() removed = %d, want 2", removed)
	}

	removed, err = store.Clear()
	if err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if removed != 0 {
		t.Errorf("Clear() removed = %d, want 0", removed)
	}
}
