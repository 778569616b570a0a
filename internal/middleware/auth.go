// Package middleware provides HTTP middleware components.
package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/inkpad/inkpad/internal/auth"
	"github.com/inkpad/inkpad/internal/model"
	"github.com/inkpad/inkpad/internal/service"
)

// SessionVerifier resolves a bearer credential to an identity.
type SessionVerifier interface {
	Verify(ctx context.Context, credential string) (model.Identity, error)
}

// SessionConfig holds configuration for the session middleware.
type SessionConfig struct {
	Logger   *slog.Logger
	Verifier SessionVerifier
}

// RequireAuth returns middleware that admits only authenticated
// identities. Missing, malformed, expired and orphaned credentials all
// produce the same 401 body so the response never discloses which
// check failed.
func RequireAuth(cfg SessionConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			credential := extractBearer(r)
			if credential == "" {
				logAuthFailure(cfg.Logger, r, "missing_credential")
				writeAuthError(w)
				return
			}

			identity, err := cfg.Verifier.Verify(r.Context(), credential)
			if err != nil {
				logAuthFailure(cfg.Logger, r, authFailureReason(err))
				writeAuthError(w)
				return
			}

			ctx := auth.ContextWithIdentity(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth returns middleware for routes that accept both
// variants of Identity. A request without a credential proceeds as
// anonymous; so does one whose credential fails verification, since
// public routes authorize by capability token, not session.
func OptionalAuth(cfg SessionConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := model.Anonymous()

			if credential := extractBearer(r); credential != "" {
				resolved, err := cfg.Verifier.Verify(r.Context(), credential)
				if err == nil {
					identity = resolved
				} else {
					cfg.Logger.Debug("optional auth ignored credential",
						slog.String("reason", authFailureReason(err)),
						slog.String("request_id", GetRequestID(r.Context())),
					)
				}
			}

			ctx := auth.ContextWithIdentity(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractBearer extracts the session credential from the
// Authorization header. Absence is a valid anonymous state.
func extractBearer(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

// authFailureReason maps verification errors to log labels. The
// distinction exists only server-side.
func authFailureReason(err error) string {
	switch {
	case errors.Is(err, service.ErrExpiredCredential):
		return "expired_credential"
	case errors.Is(err, service.ErrUserNotFound):
		return "user_not_found"
	default:
		return "invalid_credential"
	}
}

func logAuthFailure(logger *slog.Logger, r *http.Request, reason string) {
	logger.Warn("authentication failed",
		slog.String("reason", reason),
		slog.String("ip", r.RemoteAddr),
		slog.String("endpoint", r.Method+" "+r.URL.Path),
		slog.String("request_id", GetRequestID(r.Context())),
	)
}

// writeAuthError writes a 401 Unauthorized response.
// Uses the same message for all auth failures to prevent enumeration.
func writeAuthError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"Invalid or missing credential","code":"UNAUTHORIZED"}`))
}
