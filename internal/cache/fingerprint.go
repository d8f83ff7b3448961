package cache

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// Fingerprint returns the hex BLAKE3 digest of parts. Each part is length
// prefixed so that ("ab", "c") and ("a", "bc") differ.
func Fingerprint(parts ...string) string {
	h := blake3.New()
	var prefix [8]byte
	for _, p := range parts {
		n := uint64(len(p))
		for i := range prefix {
			prefix[i] = byte(n >> (8 * i))
		}
		_, _ = h.Write(prefix[:])
		_, _ = h.WriteString(p)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Sum returns the hex BLAKE3-256 digest of data.
func Sum(data []byte) string {
	b3 := blake3.Sum256(data)
	return hex.EncodeToString(b3[:])
}
