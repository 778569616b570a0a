package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"
)

// shareTokenBytes is the entropy of a share token. 32 bytes (256 bits)
// makes a token unguessable and unique with overwhelming probability;
// the registry's unique constraint is the backstop for the theoretical
// collision.
const shareTokenBytes = 32

// shareTokenPattern matches a well-formed share token: 64 lowercase
// hex characters.
var shareTokenPattern = regexp.MustCompile(`^[a-f0-9]{64}$`)

// NewShareToken returns a fresh capability token from a
// cryptographically secure random source.
func NewShareToken() (string, error) {
	buf := make([]byte, shareTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate share token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// ValidShareTokenFormat checks the token shape before any lookup.
// Rejecting garbage here avoids a registry round trip; it never
// replaces the registry check.
func ValidShareTokenFormat(token string) bool {
	return shareTokenPattern.MatchString(token)
}
