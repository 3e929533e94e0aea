package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Key builds a fixed-length cache key from its parts. Parts are joined with a
// separator that cannot occur in hex output, so ("ab","c") and ("a","bc")
// never collide.
func Key(parts ...string) string {
	h := sha256.New()
	for i, p := range parts {
		if i > 0 {
			h.Write([]byte{0})
		}
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// ShortKey returns the first 12 hex characters of key for logging
func ShortKey(key string) string {
	if len(key) <= 12 {
		return key
	}
	return strings.ToLower(key[:12])
}
