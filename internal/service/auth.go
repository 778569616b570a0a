// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/inkpad/inkpad/internal/auth"
	"github.com/inkpad/inkpad/internal/metrics"
	"github.com/inkpad/inkpad/internal/model"
	"github.com/inkpad/inkpad/internal/repository"
)

// Auth service errors. ErrInvalidCredential, ErrExpiredCredential and
// ErrUserNotFound all collapse to the same unauthenticated outcome at
// the handler boundary; they stay distinct here for server-side logs.
var (
	ErrInvalidLogin      = errors.New("invalid email or password")
	ErrUserExists        = errors.New("username or email already taken")
	ErrMissingField      = errors.New("username, email and password are required")
	ErrInvalidEmail      = errors.New("invalid email address")
	ErrPasswordTooShort  = errors.New("password too short")
	ErrUserNotFound      = errors.New("user no longer exists")
	ErrInvalidCredential = auth.ErrInvalidCredential
	ErrExpiredCredential = auth.ErrExpiredCredential
)

const minPasswordLength = 8

// UserStore is the slice of the repository the auth service needs.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
}

// AuthService handles registration, login and session verification.
type AuthService struct {
	users   UserStore
	signer  *auth.SessionSigner
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserStore, signer *auth.SessionSigner, logger *slog.Logger, recorder metrics.Recorder) *AuthService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &AuthService{
		users:   users,
		signer:  signer,
		logger:  logger.With("component", "service.auth"),
		metrics: recorder,
	}
}

// Register creates a new account with an argon2id-hashed password.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(strings.ToLower(email))

	if username == "" || email == "" || password == "" {
		return nil, ErrMissingField
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmail
	}
	if len(password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user registered", "user_id", user.ID)

	return user, nil
}

// Login verifies the password and mints a session credential. Unknown
// email and wrong password produce the same error so login failures
// do not confirm account existence.
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, "", ErrInvalidLogin
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, "", ErrInvalidLogin
		}
		return nil, "", fmt.Errorf("get user: %w", err)
	}

	match, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil || !match {
		return nil, "", ErrInvalidLogin
	}

	credential, err := s.signer.Issue(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("issue session credential: %w", err)
	}

	s.logger.Info("user logged in", "user_id", user.ID)

	return user, credential, nil
}

// Verify resolves a bearer credential to an identity. Beyond the
// signature and expiry check it confirms the user still exists, so a
// deleted account cannot ride out an unexpired credential. Read-only;
// safe for concurrent use from any number of request goroutines.
func (s *AuthService) Verify(ctx context.Context, credential string) (model.Identity, error) {
	userID, err := s.signer.Verify(credential)
	if err != nil {
		s.metrics.IncSessionVerified("rejected")
		return model.Anonymous(), err
	}

	if _, err := s.users.GetUserByID(ctx, userID); err != nil {
		s.metrics.IncSessionVerified("rejected")
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.Anonymous(), ErrUserNotFound
		}
		return model.Anonymous(), fmt.Errorf("liveness check: %w", err)
	}

	s.metrics.IncSessionVerified("ok")
	return model.Authenticated(userID), nil
}
