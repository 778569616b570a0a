package model

import "time"

// Permission is the access level carried by a share grant.
type Permission string

const (
	// PermissionRead allows viewing the shared note.
	PermissionRead Permission = "read"
	// PermissionWrite allows viewing and editing the shared note.
	PermissionWrite Permission = "write"
)

// IsValid checks if the permission is one of the two known levels.
func (p Permission) IsValid() bool {
	return p == PermissionRead || p == PermissionWrite
}

// CanWrite reports whether the permission allows mutations.
// Write implies read; read never implies write.
func (p Permission) CanWrite() bool {
	return p == PermissionWrite
}

// ShareGrant is a persisted capability binding a token to a note,
// a permission level and an expiry. Grants are immutable after
// creation; revocation and re-issuance substitute for updates.
type ShareGrant struct {
	ID         string     `json:"id"`
	NoteID     int64      `json:"note_id"`
	Token      string     `json:"-"`
	Permission Permission `json:"permission"`
	ExpiresAt  time.Time  `json:"expires_at"`
	CreatedBy  int64      `json:"-"`
	CreatedAt  time.Time  `json:"created_at"`
}

// ExpiredAt reports whether the grant is invalid at the given instant.
// A grant is valid strictly before its expiry.
func (g *ShareGrant) ExpiredAt(now time.Time) bool {
	return !now.Before(g.ExpiresAt)
}
