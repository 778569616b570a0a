package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/inkpad/inkpad/internal/model"
	"github.com/inkpad/inkpad/internal/repository"
)

// In-memory store fakes. They mirror the repository's error contract
// (sentinel errors, unique token enforcement) so services can be
// tested without PostgreSQL.

type memUserStore struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*model.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[int64]*model.User)}
}

func (s *memUserStore) CreateUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.Email || u.Username == user.Username {
			return repository.ErrUserExists
		}
	}
	s.nextID++
	user.ID = s.nextID
	user.CreatedAt = time.Now().UTC()
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s *memUserStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (s *memUserStore) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *memUserStore) delete(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
}

type memNoteStore struct {
	mu     sync.Mutex
	nextID int64
	notes  map[int64]*model.Note
}

func newMemNoteStore() *memNoteStore {
	return &memNoteStore{notes: make(map[int64]*model.Note)}
}

func (s *memNoteStore) CreateNote(ctx context.Context, note *model.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	note.ID = s.nextID
	note.CreatedAt = time.Now().UTC()
	note.UpdatedAt = note.CreatedAt
	cp := *note
	s.notes[note.ID] = &cp
	return nil
}

func (s *memNoteStore) GetNoteByID(ctx context.Context, id int64) (*model.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notes[id]
	if !ok {
		return nil, repository.ErrNoteNotFound
	}
	cp := *n
	return &cp, nil
}

func (s *memNoteStore) GetNoteForOwner(ctx context.Context, id, userID int64) (*model.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notes[id]
	if !ok || n.UserID != userID {
		return nil, repository.ErrNoteNotFound
	}
	cp := *n
	return &cp, nil
}

func (s *memNoteStore) ListNotes(ctx context.Context, userID int64) ([]*model.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.Note
	for _, n := range s.notes {
		if n.UserID == userID {
			cp := *n
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *memNoteStore) SearchNotes(ctx context.Context, userID int64, term string) ([]*model.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	term = strings.ToLower(term)
	var out []*model.Note
	for _, n := range s.notes {
		if n.UserID != userID {
			continue
		}
		if strings.Contains(strings.ToLower(n.Title), term) || strings.Contains(strings.ToLower(n.Content), term) {
			cp := *n
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *memNoteStore) UpdateNote(ctx context.Context, note *model.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.notes[note.ID]
	if !ok {
		return repository.ErrNoteNotFound
	}
	existing.Title = note.Title
	existing.Content = note.Content
	existing.UpdatedAt = time.Now().UTC()
	note.UpdatedAt = existing.UpdatedAt
	return nil
}

func (s *memNoteStore) DeleteNote(ctx context.Context, id, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notes[id]
	if !ok || n.UserID != userID {
		return repository.ErrNoteNotFound
	}
	delete(s.notes, id)
	return nil
}

func (s *memNoteStore) NoteStats(ctx context.Context, userID int64) (*model.NoteStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := &model.NoteStats{}
	for _, n := range s.notes {
		if n.UserID == userID {
			stats.TotalNotes++
		}
	}
	return stats, nil
}

type memGrantStore struct {
	mu     sync.Mutex
	grants map[string]*model.ShareGrant

	// createErrs is consumed one error per CreateGrant call, letting
	// tests exercise the token retry loop.
	createErrs []error
}

func newMemGrantStore() *memGrantStore {
	return &memGrantStore{grants: make(map[string]*model.ShareGrant)}
}

func (s *memGrantStore) CreateGrant(ctx context.Context, grant *model.ShareGrant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.createErrs) > 0 {
		err := s.createErrs[0]
		s.createErrs = s.createErrs[1:]
		if err != nil {
			return err
		}
	}
	for _, g := range s.grants {
		if g.Token == grant.Token {
			return repository.ErrTokenExists
		}
	}
	grant.CreatedAt = time.Now().UTC()
	cp := *grant
	s.grants[grant.ID] = &cp
	return nil
}

func (s *memGrantStore) GetGrantByToken(ctx context.Context, token string) (*model.ShareGrant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range s.grants {
		if g.Token == token {
			cp := *g
			return &cp, nil
		}
	}
	return nil, repository.ErrGrantNotFound
}

func (s *memGrantStore) ListGrantsByCreator(ctx context.Context, userID int64, now time.Time) ([]*repository.OwnedGrant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*repository.OwnedGrant
	for _, g := range s.grants {
		if g.CreatedBy == userID && now.Before(g.ExpiresAt) {
			out = append(out, &repository.OwnedGrant{ShareGrant: *g})
		}
	}
	return out, nil
}

func (s *memGrantStore) DeleteGrant(ctx context.Context, id string, createdBy int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.grants[id]
	if !ok || g.CreatedBy != createdBy {
		return repository.ErrGrantNotFound
	}
	delete(s.grants, id)
	return nil
}

func (s *memGrantStore) DeleteExpiredGrants(ctx context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed int64
	for id, g := range s.grants {
		if !now.Before(g.ExpiresAt) {
			delete(s.grants, id)
			removed++
		}
	}
	return removed, nil
}
