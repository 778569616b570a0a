//go:build integration

package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/inkpad/inkpad/internal/auth"
	"github.com/inkpad/inkpad/internal/model"
	"github.com/inkpad/inkpad/internal/testutil"
)

// newTestEnv connects to the database named by TEST_DATABASE_URL,
// runs migrations and starts from empty tables. Tests are serialized
// through an advisory lock so parallel packages cannot interleave.
func newTestEnv(t *testing.T) (context.Context, *Repository) {
	t.Helper()

	databaseURL := testutil.RequireEnv(t, "TEST_DATABASE_URL")
	ctx := context.Background()

	if err := Migrate(ctx, databaseURL); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	repo, err := New(ctx, databaseURL)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(repo.Close)

	unlock, err := testutil.AcquireDBLock(ctx, repo.Pool())
	if err != nil {
		t.Fatalf("acquire lock: %v", err)
	}
	t.Cleanup(func() {
		if err := unlock(); err != nil {
			t.Errorf("release lock: %v", err)
		}
	})

	if err := testutil.TruncateAll(ctx, repo.Pool()); err != nil {
		t.Fatalf("truncate: %v", err)
	}

	return ctx, repo
}

func seedUser(t *testing.T, ctx context.Context, repo *Repository, username, email string) *model.User {
	t.Helper()
	user := &model.User{Username: username, Email: email, PasswordHash: "$argon2id$v=19$m=65536,t=3,p=4$c2FsdA$aGFzaA"}
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func seedNote(t *testing.T, ctx context.Context, repo *Repository, userID int64, title string) *model.Note {
	t.Helper()
	note := &model.Note{UserID: userID, Title: title, Content: "content"}
	if err := repo.CreateNote(ctx, note); err != nil {
		t.Fatalf("seed note: %v", err)
	}
	return note
}

func seedGrant(t *testing.T, ctx context.Context, repo *Repository, noteID, createdBy int64, expiresAt time.Time) *model.ShareGrant {
	t.Helper()
	token, err := auth.NewShareToken()
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	grant := &model.ShareGrant{
		ID:         ulid.Make().String(),
		NoteID:     noteID,
		Token:      token,
		Permission: model.PermissionRead,
		ExpiresAt:  expiresAt,
		CreatedBy:  createdBy,
	}
	if err := repo.CreateGrant(ctx, grant); err != nil {
		t.Fatalf("seed grant: %v", err)
	}
	return grant
}

func TestIntegrationUsers_UniqueConstraints(t *testing.T) {
	ctx, repo := newTestEnv(t)

	seedUser(t, ctx, repo, "alice", "alice@example.com")

	err := repo.CreateUser(ctx, &model.User{Username: "alice", Email: "other@example.com", PasswordHash: "x"})
	if !errors.Is(err, ErrUserExists) {
		t.Errorf("expected ErrUserExists for duplicate username, got %v", err)
	}

	err = repo.CreateUser(ctx, &model.User{Username: "other", Email: "alice@example.com", PasswordHash: "x"})
	if !errors.Is(err, ErrUserExists) {
		t.Errorf("expected ErrUserExists for duplicate email, got %v", err)
	}
}

func TestIntegrationNotes_OwnerScoping(t *testing.T) {
	ctx, repo := newTestEnv(t)

	alice := seedUser(t, ctx, repo, "alice", "alice@example.com")
	bob := seedUser(t, ctx, repo, "bob", "bob@example.com")
	note := seedNote(t, ctx, repo, alice.ID, "Private")

	if _, err := repo.GetNoteForOwner(ctx, note.ID, alice.ID); err != nil {
		t.Errorf("owner should see the note: %v", err)
	}

	if _, err := repo.GetNoteForOwner(ctx, note.ID, bob.ID); !errors.Is(err, ErrNoteNotFound) {
		t.Errorf("expected ErrNoteNotFound for foreign note, got %v", err)
	}

	if err := repo.DeleteNote(ctx, note.ID, bob.ID); !errors.Is(err, ErrNoteNotFound) {
		t.Errorf("expected ErrNoteNotFound deleting foreign note, got %v", err)
	}
}

func TestIntegrationGrants_TokenUnique(t *testing.T) {
	ctx, repo := newTestEnv(t)

	alice := seedUser(t, ctx, repo, "alice", "alice@example.com")
	note := seedNote(t, ctx, repo, alice.ID, "Note")
	grant := seedGrant(t, ctx, repo, note.ID, alice.ID, time.Now().UTC().Add(time.Hour))

	dup := &model.ShareGrant{
		ID:         ulid.Make().String(),
		NoteID:     note.ID,
		Token:      grant.Token,
		Permission: model.PermissionRead,
		ExpiresAt:  time.Now().UTC().Add(time.Hour),
		CreatedBy:  alice.ID,
	}
	if err := repo.CreateGrant(ctx, dup); !errors.Is(err, ErrTokenExists) {
		t.Errorf("expected ErrTokenExists for duplicate token, got %v", err)
	}
}

func TestIntegrationGrants_LookupAndRevoke(t *testing.T) {
	ctx, repo := newTestEnv(t)

	alice := seedUser(t, ctx, repo, "alice", "alice@example.com")
	bob := seedUser(t, ctx, repo, "bob", "bob@example.com")
	note := seedNote(t, ctx, repo, alice.ID, "Note")
	grant := seedGrant(t, ctx, repo, note.ID, alice.ID, time.Now().UTC().Add(time.Hour))

	got, err := repo.GetGrantByToken(ctx, grant.Token)
	if err != nil {
		t.Fatalf("GetGrantByToken failed: %v", err)
	}
	if got.ID != grant.ID || got.NoteID != note.ID {
		t.Errorf("grant mismatch: %+v", got)
	}

	// Creator scoping on delete
	if err := repo.DeleteGrant(ctx, grant.ID, bob.ID); !errors.Is(err, ErrGrantNotFound) {
		t.Errorf("expected ErrGrantNotFound for foreign revoke, got %v", err)
	}
	if err := repo.DeleteGrant(ctx, grant.ID, alice.ID); err != nil {
		t.Fatalf("DeleteGrant failed: %v", err)
	}
	if _, err := repo.GetGrantByToken(ctx, grant.Token); !errors.Is(err, ErrGrantNotFound) {
		t.Errorf("expected ErrGrantNotFound after revoke, got %v", err)
	}
}

// An expired grant is still returned by token lookup; expiry is the
// resolver's decision, not the registry's.
func TestIntegrationGrants_ExpiredStillReadable(t *testing.T) {
	ctx, repo := newTestEnv(t)

	alice := seedUser(t, ctx, repo, "alice", "alice@example.com")
	note := seedNote(t, ctx, repo, alice.ID, "Note")
	grant := seedGrant(t, ctx, repo, note.ID, alice.ID, time.Now().UTC().Add(time.Second))

	time.Sleep(1500 * time.Millisecond)

	got, err := repo.GetGrantByToken(ctx, grant.Token)
	if err != nil {
		t.Fatalf("expired grant should still be readable: %v", err)
	}
	if !got.ExpiredAt(time.Now().UTC()) {
		t.Error("grant should read as expired")
	}

	// But it no longer shows in the creator's listing
	live, err := repo.ListGrantsByCreator(ctx, alice.ID, time.Now().UTC())
	if err != nil {
		t.Fatalf("ListGrantsByCreator failed: %v", err)
	}
	if len(live) != 0 {
		t.Errorf("expected no live grants, got %d", len(live))
	}
}

func TestIntegrationGrants_DeleteExpired(t *testing.T) {
	ctx, repo := newTestEnv(t)

	alice := seedUser(t, ctx, repo, "alice", "alice@example.com")
	note := seedNote(t, ctx, repo, alice.ID, "Note")

	now := time.Now().UTC()
	expired1 := seedGrant(t, ctx, repo, note.ID, alice.ID, now.Add(time.Second))
	expired2 := seedGrant(t, ctx, repo, note.ID, alice.ID, now.Add(time.Second))
	live := seedGrant(t, ctx, repo, note.ID, alice.ID, now.Add(time.Hour))

	time.Sleep(1500 * time.Millisecond)

	removed, err := repo.DeleteExpiredGrants(ctx, time.Now().UTC())
	if err != nil {
		t.Fatalf("DeleteExpiredGrants failed: %v", err)
	}
	if removed != 2 {
		t.Errorf("expected 2 removed grants, got %d", removed)
	}

	for _, g := range []*model.ShareGrant{expired1, expired2} {
		if _, err := repo.GetGrantByToken(ctx, g.Token); !errors.Is(err, ErrGrantNotFound) {
			t.Errorf("expired grant %s should be gone, got %v", g.ID, err)
		}
	}
	if _, err := repo.GetGrantByToken(ctx, live.Token); err != nil {
		t.Errorf("live grant should survive the sweep: %v", err)
	}

	// Deleting a note cascades to its grants
	if err := repo.DeleteNote(ctx, note.ID, alice.ID); err != nil {
		t.Fatalf("DeleteNote failed: %v", err)
	}
	if _, err := repo.GetGrantByToken(ctx, live.Token); !errors.Is(err, ErrGrantNotFound) {
		t.Errorf("grant should cascade with its note, got %v", err)
	}
}

func TestIntegrationNotes_SearchAndStats(t *testing.T) {
	ctx, repo := newTestEnv(t)

	alice := seedUser(t, ctx, repo, "alice", "alice@example.com")
	seedNote(t, ctx, repo, alice.ID, "Shopping list")
	note := &model.Note{UserID: alice.ID, Title: "Meeting", Content: "discuss milk supply"}
	if err := repo.CreateNote(ctx, note); err != nil {
		t.Fatalf("seed note: %v", err)
	}

	// Case-insensitive match across title and content
	found, err := repo.SearchNotes(ctx, alice.ID, "MILK")
	if err != nil {
		t.Fatalf("SearchNotes failed: %v", err)
	}
	if len(found) != 1 {
		t.Errorf("expected 1 hit, got %d", len(found))
	}

	stats, err := repo.NoteStats(ctx, alice.ID)
	if err != nil {
		t.Fatalf("NoteStats failed: %v", err)
	}
	if stats.TotalNotes != 2 || stats.NotesToday != 2 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}
