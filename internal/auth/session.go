// Package auth provides session credentials, share tokens and
// password hashing.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidCredential indicates a malformed or forged credential.
	ErrInvalidCredential = errors.New("invalid session credential")
	// ErrExpiredCredential indicates a well-formed credential whose
	// embedded expiry has elapsed.
	ErrExpiredCredential = errors.New("session credential expired")
)

// SessionClaims is the payload embedded in a session credential.
type SessionClaims struct {
	UserID int64 `json:"uid"`
	jwt.RegisteredClaims
}

// SessionSigner mints and verifies self-contained session credentials.
// Nothing is persisted server-side; validity is derived purely from
// the signature and the embedded expiry. The secret is read-only after
// construction, so one signer is shared by all request goroutines.
type SessionSigner struct {
	secret []byte
	ttl    time.Duration
}

// NewSessionSigner creates a signer with the process-wide secret.
// Rotating the secret invalidates all outstanding sessions.
func NewSessionSigner(secret []byte, ttl time.Duration) *SessionSigner {
	return &SessionSigner{secret: secret, ttl: ttl}
}

// Issue mints a signed credential for the given user.
func (s *SessionSigner) Issue(userID int64) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session credential: %w", err)
	}
	return token, nil
}

// Verify checks the signature and expiry of a credential and returns
// the embedded user ID. Liveness of the user is the caller's concern.
func (s *SessionSigner) Verify(credential string) (int64, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(credential, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrExpiredCredential
		}
		return 0, ErrInvalidCredential
	}

	if !token.Valid || claims.UserID <= 0 {
		return 0, ErrInvalidCredential
	}

	return claims.UserID, nil
}

// TTL returns the configured session lifetime.
func (s *SessionSigner) TTL() time.Duration {
	return s.ttl
}
