package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/cinewhisper/services/api/internal/domain"
)

// In-memory implementations for development and handler tests.

type MemoryCatalogStore struct {
	mu     sync.RWMutex
	Movies []domain.Movie
	Shows  []domain.TVShow
}

func NewMemoryCatalogStore() *MemoryCatalogStore {
	return &MemoryCatalogStore{}
}

func (s *MemoryCatalogStore) ListMovies(_ context.Context, limit, offset int32) ([]domain.Movie, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sorted := make([]domain.Movie, len(s.Movies))
	copy(sorted, s.Movies)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Popularity > sorted[j].Popularity })
	return pageSlice(sorted, limit, offset), nil
}

func (s *MemoryCatalogStore) GetMovieByTMDBID(_ context.Context, tmdbID int64) (domain.Movie, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.Movies {
		if m.TMDBID == tmdbID {
			return m, nil
		}
	}
	return domain.Movie{}, ErrNotFound
}

func (s *MemoryCatalogStore) ListTVShows(_ context.Context, limit, offset int32) ([]domain.TVShow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sorted := make([]domain.TVShow, len(s.Shows))
	copy(sorted, s.Shows)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Popularity > sorted[j].Popularity })
	return pageSlice(sorted, limit, offset), nil
}

func (s *MemoryCatalogStore) GetTVShowByTMDBID(_ context.Context, tmdbID int64) (domain.TVShow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.Shows {
		if t.TMDBID == tmdbID {
			return t, nil
		}
	}
	return domain.TVShow{}, ErrNotFound
}

func (s *MemoryCatalogStore) HasItem(_ context.Context, media domain.MediaType, tmdbID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if media == domain.MediaTV {
		for _, t := range s.Shows {
			if t.TMDBID == tmdbID {
				return true, nil
			}
		}
		return false, nil
	}
	for _, m := range s.Movies {
		if m.TMDBID == tmdbID {
			return true, nil
		}
	}
	return false, nil
}

func pageSlice[T any](items []T, limit, offset int32) []T {
	if offset < 0 {
		offset = 0
	}
	if int(offset) >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && int(offset)+int(limit) < end {
		end = int(offset) + int(limit)
	}
	return items[offset:end]
}

type memoryUser struct {
	user         domain.User
	passwordHash string
}

type MemoryUserStore struct {
	mu       sync.RWMutex
	users    map[string]memoryUser     // keyed by user id
	sessions map[string]RefreshSession // keyed by token hash
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{
		users:    make(map[string]memoryUser),
		sessions: make(map[string]RefreshSession),
	}
}

func (s *MemoryUserStore) CreateUser(_ context.Context, p CreateUserParams) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.user.Email, p.Email) || strings.EqualFold(u.user.Username, p.Username) {
			return domain.User{}, ErrConflict
		}
	}
	u := domain.User{
		ID:        uuid.NewString(),
		Email:     p.Email,
		Username:  p.Username,
		CreatedAt: time.Now().UTC(),
	}
	s.users[u.ID] = memoryUser{user: u, passwordHash: p.PasswordHash}
	return u, nil
}

func (s *MemoryUserStore) FindUserByLogin(_ context.Context, login string) (UserRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	login = strings.TrimSpace(login)
	for _, u := range s.users {
		if strings.EqualFold(u.user.Email, login) || strings.EqualFold(u.user.Username, login) {
			return UserRow{User: u.user, PasswordHash: u.passwordHash}, nil
		}
	}
	return UserRow{}, ErrNotFound
}

func (s *MemoryUserStore) GetUserByID(_ context.Context, id string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.users[id]; ok {
		return u.user, nil
	}
	return domain.User{}, ErrNotFound
}

func (s *MemoryUserStore) UpdateProfile(_ context.Context, id string, p UpdateProfileParams) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.users[id]
	if !ok {
		return domain.User{}, ErrNotFound
	}
	if p.Username != nil {
		for otherID, other := range s.users {
			if otherID != id && strings.EqualFold(other.user.Username, *p.Username) {
				return domain.User{}, ErrConflict
			}
		}
		cur.user.Username = *p.Username
	}
	if p.ProfilePicture != nil {
		cur.user.ProfilePicture = *p.ProfilePicture
	}
	s.users[id] = cur
	return cur.user, nil
}

func (s *MemoryUserStore) CreateRefreshSession(_ context.Context, p CreateRefreshSessionParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sessions[p.TokenHash]; exists {
		return ErrConflict
	}
	s.sessions[p.TokenHash] = RefreshSession{
		ID:        p.SessionID,
		UserID:    p.UserID,
		TokenHash: p.TokenHash,
		ExpiresAt: p.ExpiresAt,
	}
	return nil
}

func (s *MemoryUserStore) GetRefreshSessionByHash(_ context.Context, tokenHash string) (RefreshSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if rs, ok := s.sessions[tokenHash]; ok {
		return rs, nil
	}
	return RefreshSession{}, ErrNotFound
}

func (s *MemoryUserStore) RevokeRefreshSession(_ context.Context, sessionID uuid.UUID, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for hash, rs := range s.sessions {
		if rs.ID == sessionID && rs.RevokedAt == nil {
			rs.RevokedAt = &now
			s.sessions[hash] = rs
		}
	}
	return nil
}

func (s *MemoryUserStore) ReplaceRefreshSession(_ context.Context, oldID, _ uuid.UUID, now time.Time) error {
	return s.RevokeRefreshSession(context.Background(), oldID, now)
}

type MemoryFavouriteStore struct {
	mu     sync.Mutex
	nextID int64
	items  []domain.Favourite
}

func NewMemoryFavouriteStore() *MemoryFavouriteStore {
	return &MemoryFavouriteStore{nextID: 1}
}

func (s *MemoryFavouriteStore) ListFavourites(_ context.Context, userID string) ([]domain.Favourite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []domain.Favourite{}
	for _, f := range s.items {
		if f.UserID == userID {
			out = append(out, f)
		}
	}
	// newest first, matching the SQL ordering
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *MemoryFavouriteStore) AddFavourite(_ context.Context, userID string, media domain.MediaType, tmdbID int64) (domain.Favourite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, f := range s.items {
		if f.UserID == userID && f.MediaType == media && f.TMDBID == tmdbID {
			return domain.Favourite{}, ErrConflict
		}
	}
	f := domain.Favourite{
		ID:        s.nextID,
		UserID:    userID,
		MediaType: media,
		TMDBID:    tmdbID,
		CreatedAt: time.Now().UTC(),
	}
	s.nextID++
	s.items = append(s.items, f)
	return f, nil
}

func (s *MemoryFavouriteStore) DeleteFavourite(_ context.Context, userID string, favouriteID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, f := range s.items {
		if f.ID == favouriteID && f.UserID == userID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}
