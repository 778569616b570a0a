package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkpad/inkpad/internal/auth"
	"github.com/inkpad/inkpad/internal/metrics"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestAuthService(users *memUserStore) *AuthService {
	signer := auth.NewSessionSigner([]byte("0123456789abcdef0123456789abcdef"), time.Hour)
	return NewAuthService(users, signer, discardLogger(), metrics.NewNoop())
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	t.Parallel()

	users := newMemUserStore()
	svc := newTestAuthService(users)
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "alice@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.NotZero(t, user.ID)

	loggedIn, credential, err := svc.Login(ctx, "alice@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
	assert.NotEmpty(t, credential)

	identity, err := svc.Verify(ctx, credential)
	require.NoError(t, err)
	assert.True(t, identity.Authenticated)
	assert.Equal(t, user.ID, identity.UserID)
}

func TestAuthService_RegisterValidation(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(newMemUserStore())
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		email    string
		password string
		wantErr  error
	}{
		{"missing username", "", "a@example.com", "longenough", ErrMissingField},
		{"missing email", "alice", "", "longenough", ErrMissingField},
		{"missing password", "alice", "a@example.com", "", ErrMissingField},
		{"bad email", "alice", "not-an-email", "longenough", ErrInvalidEmail},
		{"short password", "alice", "a@example.com", "short", ErrPasswordTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := svc.Register(ctx, tt.username, tt.email, tt.password)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAuthService_RegisterDuplicate(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(newMemUserStore())
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "alice@example.com", "s3cret-pass")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "alice", "alice@example.com", "other-pass")
	assert.ErrorIs(t, err, ErrUserExists)
}

// Unknown email and wrong password must be indistinguishable.
func TestAuthService_LoginFailures(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(newMemUserStore())
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "alice@example.com", "s3cret-pass")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "nobody@example.com", "s3cret-pass")
	assert.ErrorIs(t, err, ErrInvalidLogin)

	_, _, err = svc.Login(ctx, "alice@example.com", "wrong-pass")
	assert.ErrorIs(t, err, ErrInvalidLogin)
}

// A valid credential for a deleted user must not authenticate.
func TestAuthService_VerifyDeletedUser(t *testing.T) {
	t.Parallel()

	users := newMemUserStore()
	svc := newTestAuthService(users)
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "alice@example.com", "s3cret-pass")
	require.NoError(t, err)

	_, credential, err := svc.Login(ctx, "alice@example.com", "s3cret-pass")
	require.NoError(t, err)

	users.delete(user.ID)

	identity, err := svc.Verify(ctx, credential)
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.False(t, identity.Authenticated)
}

func TestAuthService_VerifyGarbage(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(newMemUserStore())

	_, err := svc.Verify(context.Background(), "not-a-credential")
	assert.ErrorIs(t, err, ErrInvalidCredential)
}
