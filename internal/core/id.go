package core

import (
	"crypto/rand"
	"fmt"
	"time"
)

// idAlphabet has 64 URL-safe symbols, so a random byte masked to 6 bits
// maps uniformly onto it.
const (
	idAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"
	idLength   = 21
)

// NewID returns a 21-character identifier drawn from a URL-safe alphabet
// using crypto/rand. At 126 bits of entropy, collisions are negligible
// for the lifetime of a store.
func NewID() string {
	buf := make([]byte, idLength)
	if _, err := rand.Read(buf); err != nil {
		// Fallback to timestamp if random fails
		return fmt.Sprintf("id_%d", time.Now().UnixNano())
	}
	for i, b := range buf {
		buf[i] = idAlphabet[b&63]
	}
	return string(buf)
}
