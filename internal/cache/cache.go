package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for caching fetched page text and search results
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key generates a cache key from a URL or query string
func Key(s string) string {
	hash := sha256.Sum256([]byte(s))
	return "deepscout:v1:" + hex.EncodeToString(hash[:])
}
