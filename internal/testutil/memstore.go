// Package testutil holds in-memory stores that stand in for the Postgres
// repositories in handler and router tests.
package testutil

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"go-watchlist/internal/model"
)

type MemoryUsers struct {
	mu    sync.Mutex
	users map[string]model.User
	now   func() time.Time
}

func NewMemoryUsers() *MemoryUsers {
	return &MemoryUsers{users: map[string]model.User{}, now: time.Now}
}

func (s *MemoryUsers) Create(_ context.Context, u model.User) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return model.User{}, model.ErrUserAlreadyExists
		}
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.CreatedAt = s.now()
	u.UpdatedAt = u.CreatedAt
	s.users[u.ID] = u
	return u, nil
}

func (s *MemoryUsers) FindByID(_ context.Context, id string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	return u, nil
}

func (s *MemoryUsers) FindByEmail(_ context.Context, email string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, model.ErrUserNotFound
}

func (s *MemoryUsers) SetResetToken(_ context.Context, userID, tokenHash string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return model.ErrUserNotFound
	}
	u.ResetTokenHash = tokenHash
	u.ResetTokenExpiresAt = &expiresAt
	s.users[userID] = u
	return nil
}

func (s *MemoryUsers) ConsumeResetToken(_ context.Context, tokenHash, passwordHash string, now time.Time) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, u := range s.users {
		if u.ResetTokenHash == "" || u.ResetTokenHash != tokenHash {
			continue
		}
		if u.ResetTokenExpiresAt == nil || !u.ResetTokenExpiresAt.After(now) {
			return "", model.ErrInvalidOrExpiredToken
		}
		u.PasswordHash = passwordHash
		u.ResetTokenHash = ""
		u.ResetTokenExpiresAt = nil
		s.users[id] = u
		return id, nil
	}
	return "", model.ErrInvalidOrExpiredToken
}

func (s *MemoryUsers) UpdateAvatar(_ context.Context, userID, avatar string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	u.Avatar = avatar
	s.users[userID] = u
	return u, nil
}

type MemoryWatchlist struct {
	mu      sync.Mutex
	entries []model.WatchlistEntry
	now     func() time.Time
}

func NewMemoryWatchlist() *MemoryWatchlist {
	return &MemoryWatchlist{now: time.Now}
}

// List filters like the SQL repository but always orders by creation, newest first.
func (s *MemoryWatchlist) List(_ context.Context, userID string, query model.WatchlistQuery) ([]model.WatchlistEntry, *model.Meta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if query.Page < 1 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 20
	}

	matched := make([]model.WatchlistEntry, 0)
	for i := len(s.entries) - 1; i >= 0; i-- {
		e := s.entries[i]
		if e.UserID != userID {
			continue
		}
		if query.Status != "" && e.Status != query.Status {
			continue
		}
		if query.MediaType != "" && e.MediaType != query.MediaType {
			continue
		}
		if len(query.Genres) > 0 && !slices.ContainsFunc(query.Genres, func(g string) bool { return slices.Contains(e.Genres, g) }) {
			continue
		}
		matched = append(matched, e)
	}

	meta := model.NewMeta(query.Page, query.Limit, len(matched))
	start := min((query.Page-1)*query.Limit, len(matched))
	end := min(start+query.Limit, len(matched))
	return matched[start:end], meta, nil
}

func (s *MemoryWatchlist) Create(_ context.Context, e model.WatchlistEntry) (model.WatchlistEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.entries {
		if existing.UserID == e.UserID && existing.TMDBID == e.TMDBID {
			return model.WatchlistEntry{}, model.ErrAlreadyListed
		}
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Genres == nil {
		e.Genres = []string{}
	}
	e.CreatedAt = s.now()
	e.UpdatedAt = e.CreatedAt
	s.entries = append(s.entries, e)
	return e, nil
}

func (s *MemoryWatchlist) Update(_ context.Context, userID, id string, req model.UpdateEntryRequest) (model.WatchlistEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, e := range s.entries {
		if e.ID != id || e.UserID != userID {
			continue
		}
		if req.Status != nil {
			e.Status = *req.Status
		}
		if req.Notes != nil {
			e.Notes = *req.Notes
		}
		if req.IsActive != nil {
			e.IsActive = *req.IsActive
		}
		e.UpdatedAt = s.now()
		s.entries[i] = e
		return e, nil
	}
	return model.WatchlistEntry{}, model.ErrEntryNotFound
}

func (s *MemoryWatchlist) Delete(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, e := range s.entries {
		if e.ID == id && e.UserID == userID {
			s.entries = slices.Delete(s.entries, i, i+1)
			return nil
		}
	}
	return model.ErrEntryNotFound
}
