package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// Key computes a deterministic cache key from the semantically relevant
// inputs of a cached operation, for example the operation kind plus the
// free-text input. Parts are NUL-separated so that ("ab", "c") and
// ("a", "bc") hash differently.
func Key(parts ...string) string {
	h := sha256.New()
	var sep [1]byte
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write(sep[:])
	}
	return hex.EncodeToString(h.Sum(nil))
}
