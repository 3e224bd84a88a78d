package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"
)

// Entry is one cached response.
type Entry struct {
	Key       string          `json:"key"`
	Data      json.RawMessage `json:"data"`
	CreatedAt time.Time       `json:"created_at"`
	ExpiresAt time.Time       `json:"expires_at"`
}

func newEntry(key string, data json.RawMessage, now time.Time, ttl time.Duration) *Entry {
	return &Entry{
		Key:       key,
		Data:      data,
		CreatedAt: now.UTC(),
		ExpiresAt: now.Add(ttl).UTC(),
	}
}

// ExpiredAt reports whether the entry has expired at now.
func (e *Entry) ExpiredAt(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

// Key derives a cache key from request parts. Parts are joined with a NUL
// separator so ("ab", "c") and ("a", "bc") differ.
func Key(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return hex.EncodeToString(sum[:])
}
