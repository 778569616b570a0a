package auth

import (
	"context"

	"github.com/inkpad/inkpad/internal/model"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const identityContextKey contextKey = "identity"

// ContextWithIdentity attaches the resolved identity to the context.
func ContextWithIdentity(ctx context.Context, id model.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, id)
}

// IdentityFromContext retrieves the identity set by the session
// middleware. Requests that never passed through it are anonymous.
func IdentityFromContext(ctx context.Context) model.Identity {
	id, ok := ctx.Value(identityContextKey).(model.Identity)
	if !ok {
		return model.Anonymous()
	}
	return id
}

// UserIDFromContext returns the authenticated user ID, if any.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	id := IdentityFromContext(ctx)
	return id.UserID, id.Authenticated
}
