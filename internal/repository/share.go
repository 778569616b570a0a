package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/inkpad/inkpad/internal/model"
)

// Common errors for the grant registry.
var (
	ErrGrantNotFound = errors.New("share grant not found")
	ErrTokenExists   = errors.New("share token already exists")
)

// OwnedGrant is a grant joined with its note title for listing.
type OwnedGrant struct {
	model.ShareGrant
	NoteTitle string
}

// CreateGrant inserts a new share grant. The token's unique constraint
// is the hard backstop against a random collision between two
// concurrent issuances.
func (r *Repository) CreateGrant(ctx context.Context, grant *model.ShareGrant) error {
	query := `
		INSERT INTO share_grants (id, note_id, token, permission, expires_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	err := r.pool.QueryRow(ctx, query,
		grant.ID,
		grant.NoteID,
		grant.Token,
		grant.Permission,
		grant.ExpiresAt,
		grant.CreatedBy,
	).Scan(&grant.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrTokenExists
		}
		return fmt.Errorf("failed to create share grant: %w", err)
	}

	return nil
}

// GetGrantByToken retrieves a grant by its capability token. This is
// the hot path for public share access. Expiry is NOT filtered here;
// the resolver checks it so that a grant the reaper has not yet swept
// still reads as invalid.
func (r *Repository) GetGrantByToken(ctx context.Context, token string) (*model.ShareGrant, error) {
	query := `
		SELECT id, note_id, token, permission, expires_at, created_by, created_at
		FROM share_grants
		WHERE token = $1
	`

	grant, err := scanGrant(r.pool.QueryRow(ctx, query, token))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrGrantNotFound
		}
		return nil, fmt.Errorf("failed to get share grant by token: %w", err)
	}

	return grant, nil
}

// ListGrantsByCreator retrieves a user's live grants, newest first,
// joined with the note title for display.
func (r *Repository) ListGrantsByCreator(ctx context.Context, userID int64, now time.Time) ([]*OwnedGrant, error) {
	query := `
		SELECT g.id, g.note_id, g.token, g.permission, g.expires_at, g.created_by, g.created_at, n.title
		FROM share_grants g
		JOIN notes n ON n.id = g.note_id
		WHERE g.created_by = $1 AND g.expires_at > $2
		ORDER BY g.created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, userID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list share grants: %w", err)
	}
	defer rows.Close()

	var grants []*OwnedGrant
	for rows.Next() {
		var g OwnedGrant
		err := rows.Scan(
			&g.ID,
			&g.NoteID,
			&g.Token,
			&g.Permission,
			&g.ExpiresAt,
			&g.CreatedBy,
			&g.CreatedAt,
			&g.NoteTitle,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan share grant: %w", err)
		}
		grants = append(grants, &g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating share grants: %w", err)
	}

	return grants, nil
}

// DeleteGrant removes a grant by ID, scoped to its creator so a user
// can only revoke their own shares.
func (r *Repository) DeleteGrant(ctx context.Context, id string, createdBy int64) error {
	query := `DELETE FROM share_grants WHERE id = $1 AND created_by = $2`

	result, err := r.pool.Exec(ctx, query, id, createdBy)
	if err != nil {
		return fmt.Errorf("failed to delete share grant: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrGrantNotFound
	}

	return nil
}

// DeleteExpiredGrants removes every grant past its expiry in one
// statement and returns the number removed. Used by the reaper sweep.
func (r *Repository) DeleteExpiredGrants(ctx context.Context, now time.Time) (int64, error) {
	query := `DELETE FROM share_grants WHERE expires_at <= $1`

	result, err := r.pool.Exec(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired grants: %w", err)
	}

	return result.RowsAffected(), nil
}

func scanGrant(row pgx.Row) (*model.ShareGrant, error) {
	var grant model.ShareGrant
	err := row.Scan(
		&grant.ID,
		&grant.NoteID,
		&grant.Token,
		&grant.Permission,
		&grant.ExpiresAt,
		&grant.CreatedBy,
		&grant.CreatedAt,
	)
	return &grant, err
}
