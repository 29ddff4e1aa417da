package corpuscache

import "testing"

func TestCacheRoundTrip(t *testing.T) {
	c, err := New[int](4)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	data := []byte("hello")
	if _, ok := c.Get(data); ok {
		t.Fatal("expected miss on empty cache")
	}

	c.Put(data, 42)
	got, ok := c.Get(data)
	if !ok || got != 42 {
		t.Fatalf("got %d, %v, want 42, true", got, ok)
	}
}

func TestContentHashStable(t *testing.T) {
	a := ContentHash([]byte("same"))
	b := ContentHash([]byte("same"))
	if a != b {
		t.Fatalf("expected identical hashes, got %q and %q", a, b)
	}
	if ContentHash([]byte("same")) == ContentHash([]byte("different")) {
		t.Fatal("expected different content to hash differently")
	}
}

func TestCacheEviction(t *testing.T) {
	c, err := New[int](1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	c.Put([]byte("a"), 1)
	c.Put([]byte("b"), 2)

	if _, ok := c.Get([]byte("a")); ok {
		t.Fatal("expected oldest entry to be evicted")
	}
	if got, ok := c.Get([]byte("b")); !ok || got != 2 {
		t.Fatalf("got %d, %v, want 2, true", got, ok)
	}
}
