package crypto

import (
	"crypto/rand"
)

const (
	idAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789_-"
	idLength   = 22 // 22 * 6 = 132 bits of entropy, slightly above a uuid
)

// NewRefreshID returns a new opaque refresh-token identifier.
//
// Identifiers are nanoid-style: random bytes masked onto a 64-character
// URL-safe alphabet. Randomness, not a timestamp, is what makes rotation
// safe - two concurrent logins must never mint the same identifier.
func NewRefreshID() (string, error) {
	// 64-character alphabet: every 6-bit value maps to exactly one
	// character, so no rejection loop is needed.
	const mask = byte(len(idAlphabet) - 1)

	buf := make([]byte, idLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	id := make([]byte, idLength)
	for i, b := range buf {
		id[i] = idAlphabet[b&mask]
	}
	return string(id), nil
}
