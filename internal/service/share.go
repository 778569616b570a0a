package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/inkpad/inkpad/internal/auth"
	"github.com/inkpad/inkpad/internal/metrics"
	"github.com/inkpad/inkpad/internal/model"
	"github.com/inkpad/inkpad/internal/repository"
)

// Share service errors. ErrNotOwner is surfaced to callers as "not
// found" so issuing against someone else's note does not confirm the
// note exists. ErrShareExpired and ErrShareNotFound produce the same
// user-visible outcome; they stay distinct for server-side logs.
var (
	ErrNotOwner       = errors.New("caller does not own the note")
	ErrInvalidTTL     = errors.New("ttl must be a positive number of days")
	ErrInvalidPerm    = errors.New("invalid share permission")
	ErrShareNotFound  = errors.New("share link not found")
	ErrShareExpired   = errors.New("share link expired")
	ErrShareForbidden = errors.New("share link does not permit editing")
)

// maxTokenRetries bounds regeneration after a token collision. With
// 256-bit tokens a single retry is already effectively unreachable.
const maxTokenRetries = 3

// GrantStore is the registry slice the share service needs.
type GrantStore interface {
	CreateGrant(ctx context.Context, grant *model.ShareGrant) error
	GetGrantByToken(ctx context.Context, token string) (*model.ShareGrant, error)
	ListGrantsByCreator(ctx context.Context, userID int64, now time.Time) ([]*repository.OwnedGrant, error)
	DeleteGrant(ctx context.Context, id string, createdBy int64) error
}

// ShareService issues, resolves and revokes share grants.
type ShareService struct {
	grants     GrantStore
	notes      NoteStore
	users      UserStore
	baseURL    string
	defaultTTL int
	maxTTL     int
	logger     *slog.Logger
	metrics    metrics.Recorder
	now        func() time.Time
}

// NewShareService creates a new ShareService. defaultTTLDays applies
// when the caller omits a TTL; maxTTLDays clamps oversized requests.
func NewShareService(
	grants GrantStore,
	notes NoteStore,
	users UserStore,
	baseURL string,
	defaultTTLDays, maxTTLDays int,
	logger *slog.Logger,
	recorder metrics.Recorder,
) *ShareService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &ShareService{
		grants:     grants,
		notes:      notes,
		users:      users,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		defaultTTL: defaultTTLDays,
		maxTTL:     maxTTLDays,
		logger:     logger.With("component", "service.share"),
		metrics:    recorder,
		now:        time.Now,
	}
}

// IssueInput defines input for issuing a share grant.
type IssueInput struct {
	NoteID     int64
	OwnerID    int64
	Permission model.Permission
	TTLDays    int // 0 means the configured default
}

// IssuedShare is a freshly minted grant plus the public URL that
// carries its token.
type IssuedShare struct {
	Grant     *model.ShareGrant
	ShareURL  string
	NoteTitle string
}

// Issue mints a new grant for a note the caller owns. A note owned by
// someone else (or missing) yields ErrNotOwner. Multiple live grants
// per note are allowed; issuing never touches existing grants.
func (s *ShareService) Issue(ctx context.Context, input IssueInput) (*IssuedShare, error) {
	if !input.Permission.IsValid() {
		return nil, ErrInvalidPerm
	}

	ttl := input.TTLDays
	if ttl == 0 {
		ttl = s.defaultTTL
	}
	if ttl < 0 {
		return nil, ErrInvalidTTL
	}
	if ttl > s.maxTTL {
		ttl = s.maxTTL
	}

	note, err := s.notes.GetNoteForOwner(ctx, input.NoteID, input.OwnerID)
	if err != nil {
		if errors.Is(err, repository.ErrNoteNotFound) {
			return nil, ErrNotOwner
		}
		return nil, fmt.Errorf("check note ownership: %w", err)
	}

	now := s.now().UTC()
	grant := &model.ShareGrant{
		NoteID:     note.ID,
		Permission: input.Permission,
		ExpiresAt:  now.Add(time.Duration(ttl) * 24 * time.Hour),
		CreatedBy:  input.OwnerID,
	}

	// The registry's unique constraint on token is the final backstop;
	// retrying generation covers the vanishingly unlikely collision.
	for attempt := 0; ; attempt++ {
		token, err := auth.NewShareToken()
		if err != nil {
			return nil, err
		}
		grant.ID = ulid.Make().String()
		grant.Token = token

		err = s.grants.CreateGrant(ctx, grant)
		if err == nil {
			break
		}
		if errors.Is(err, repository.ErrTokenExists) && attempt < maxTokenRetries {
			continue
		}
		return nil, fmt.Errorf("create share grant: %w", err)
	}

	s.metrics.IncGrantIssued()
	s.logger.Info("share grant issued",
		"grant_id", grant.ID,
		"note_id", grant.NoteID,
		"permission", grant.Permission,
		"expires_at", grant.ExpiresAt,
	)

	return &IssuedShare{
		Grant:     grant,
		ShareURL:  s.shareURL(grant.Token),
		NoteTitle: note.Title,
	}, nil
}

// Resolve looks up a grant by token and applies the expiry check.
// A missing token and an expired one are indistinguishable to the
// caller; a grant the reaper has not yet swept still reads as invalid
// the instant its expiry passes.
func (s *ShareService) Resolve(ctx context.Context, token string) (*model.ShareGrant, error) {
	if !auth.ValidShareTokenFormat(token) {
		s.metrics.IncShareResolved("not_found")
		return nil, ErrShareNotFound
	}

	grant, err := s.grants.GetGrantByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrGrantNotFound) {
			s.metrics.IncShareResolved("not_found")
			return nil, ErrShareNotFound
		}
		return nil, fmt.Errorf("get share grant: %w", err)
	}

	if grant.ExpiredAt(s.now()) {
		s.metrics.IncShareResolved("expired")
		s.logger.Info("share link expired", "grant_id", grant.ID, "expired_at", grant.ExpiresAt)
		return nil, ErrShareExpired
	}

	s.metrics.IncShareResolved("ok")
	return grant, nil
}

// SharedNote is the public view of a note reached through a grant.
type SharedNote struct {
	Note     *model.Note
	SharedBy string
	CanEdit  bool
}

// ViewShared resolves a token and loads the note it grants access to.
// A note or sharer deleted between issuance and access reads the same
// as an invalid link.
func (s *ShareService) ViewShared(ctx context.Context, token string) (*SharedNote, error) {
	grant, err := s.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}

	note, err := s.notes.GetNoteByID(ctx, grant.NoteID)
	if err != nil {
		if errors.Is(err, repository.ErrNoteNotFound) {
			return nil, ErrShareNotFound
		}
		return nil, fmt.Errorf("get shared note: %w", err)
	}

	sharer, err := s.users.GetUserByID(ctx, grant.CreatedBy)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrShareNotFound
		}
		return nil, fmt.Errorf("get sharer: %w", err)
	}

	return &SharedNote{
		Note:     note,
		SharedBy: sharer.Username,
		CanEdit:  grant.Permission.CanWrite(),
	}, nil
}

// UpdateShared edits a note through a write-capable grant. The grant
// authorizes the edit by capability, not identity: no session is
// involved, and a read-only grant is rejected with ErrShareForbidden
// even though the token resolved.
func (s *ShareService) UpdateShared(ctx context.Context, token, title, content string) (*model.Note, error) {
	grant, err := s.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}

	if !grant.Permission.CanWrite() {
		return nil, ErrShareForbidden
	}

	if strings.TrimSpace(title) == "" {
		return nil, ErrTitleRequired
	}

	note, err := s.notes.GetNoteByID(ctx, grant.NoteID)
	if err != nil {
		if errors.Is(err, repository.ErrNoteNotFound) {
			return nil, ErrShareNotFound
		}
		return nil, fmt.Errorf("get shared note: %w", err)
	}

	note.Title = title
	note.Content = content
	if err := s.notes.UpdateNote(ctx, note); err != nil {
		if errors.Is(err, repository.ErrNoteNotFound) {
			return nil, ErrShareNotFound
		}
		return nil, fmt.Errorf("update shared note: %w", err)
	}

	s.logger.Info("note updated via share link", "grant_id", grant.ID, "note_id", note.ID)

	return note, nil
}

// ShareListItem is one of the caller's live shares.
type ShareListItem struct {
	Grant     *model.ShareGrant
	NoteTitle string
	ShareURL  string
}

// List returns the caller's unexpired grants, newest first.
func (s *ShareService) List(ctx context.Context, userID int64) ([]*ShareListItem, error) {
	grants, err := s.grants.ListGrantsByCreator(ctx, userID, s.now())
	if err != nil {
		return nil, fmt.Errorf("list share grants: %w", err)
	}

	items := make([]*ShareListItem, 0, len(grants))
	for _, g := range grants {
		grant := g.ShareGrant
		items = append(items, &ShareListItem{
			Grant:     &grant,
			NoteTitle: g.NoteTitle,
			ShareURL:  s.shareURL(grant.Token),
		})
	}

	return items, nil
}

// Revoke deletes one of the caller's grants. Revoking a grant that the
// reaper already removed reports ErrShareNotFound, which callers treat
// the same as an expired link.
func (s *ShareService) Revoke(ctx context.Context, userID int64, grantID string) error {
	if err := s.grants.DeleteGrant(ctx, grantID, userID); err != nil {
		if errors.Is(err, repository.ErrGrantNotFound) {
			return ErrShareNotFound
		}
		return fmt.Errorf("revoke share grant: %w", err)
	}

	s.metrics.IncGrantRevoked()
	s.logger.Info("share grant revoked", "grant_id", grantID, "user_id", userID)

	return nil
}

func (s *ShareService) shareURL(token string) string {
	return s.baseURL + "/shared/" + token
}
