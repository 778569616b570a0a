package auth

import (
	"testing"
)

func TestNewShareToken_Format(t *testing.T) {
	t.Parallel()

	token, err := NewShareToken()
	if err != nil {
		t.Fatalf("NewShareToken failed: %v", err)
	}

	// 32 random bytes, hex encoded
	if len(token) != 64 {
		t.Errorf("expected 64-char token, got %d chars: %s", len(token), token)
	}

	if !ValidShareTokenFormat(token) {
		t.Errorf("freshly minted token fails format check: %s", token)
	}
}

func TestNewShareToken_Unique(t *testing.T) {
	t.Parallel()

	const numTokens = 1000
	seen := make(map[string]bool, numTokens)

	for i := 0; i < numTokens; i++ {
		token, err := NewShareToken()
		if err != nil {
			t.Fatalf("NewShareToken failed: %v", err)
		}
		if seen[token] {
			t.Fatalf("duplicate token after %d draws: %s", i, token)
		}
		seen[token] = true
	}
}

func TestValidShareTokenFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		token string
		want  bool
	}{
		{"valid", "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef", true},
		{"empty", "", false},
		{"too short", "abcdef", false},
		{"too long", "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef00", false},
		{"uppercase hex", "0123456789ABCDEF0123456789ABCDEF0123456789ABCDEF0123456789ABCDEF", false},
		{"non-hex chars", "z123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef", false},
		{"sql injection", "'; DROP TABLE share_grants; --", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ValidShareTokenFormat(tt.token); got != tt.want {
				t.Errorf("ValidShareTokenFormat(%q) = %v, want %v", tt.token, got, tt.want)
			}
		})
	}
}
