// Package corpuscache is an in-process, content-hash-keyed front for
// extraction results, so that within one plistrc extract run, files whose
// bytes are identical are decoded only once. Nothing is kept between runs.
// It mirrors
// the generics-based CacheableParser/ParsingCache split the Bazel-gazelle
// extension in the example corpus uses for its own parse cache, backed here
// by an in-memory LRU instead of a JSON file, since a single plistrc
// extract run already holds the whole corpus in memory.
package corpuscache

import (
	"crypto/sha256"
	"encoding/hex"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cache fronts up to capacity entries of type T, keyed by the SHA-256 hash
// of the source bytes that produced each entry.
type Cache[T any] struct {
	entries *lru.Cache[string, T]
}

// New creates a Cache holding at most capacity entries; the least recently
// used entry is evicted once capacity is exceeded.
func New[T any](capacity int) (*Cache[T], error) {
	entries, err := lru.New[string, T](capacity)
	if err != nil {
		return nil, err
	}
	return &Cache[T]{entries: entries}, nil
}

// ContentHash returns the cache key for a file's raw bytes.
func ContentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Get returns the cached value for data's content hash, if present.
func (c *Cache[T]) Get(data []byte) (T, bool) {
	return c.entries.Get(ContentHash(data))
}

// Put records value under data's content hash.
func (c *Cache[T]) Put(data []byte, value T) {
	c.entries.Add(ContentHash(data), value)
}

// Len reports how many entries are currently cached.
func (c *Cache[T]) Len() int {
	return c.entries.Len()
}
