package store

import (
	"context"
	"maps"
	"sync"
)

// InMemoryCatalogStore is a development/test implementation of CatalogStore.
// Apply* builds the next state on a copy and swaps it in, which gives the
// same all-or-nothing behaviour as the Postgres transaction. FailCreates /
// FailUpdates inject a storage fault into the respective half of a write.
type InMemoryCatalogStore struct {
	mu     sync.RWMutex
	movies map[int64]Movie
	shows  map[int64]TVShow

	FailCreates error
	FailUpdates error
}

func NewInMemoryCatalogStore() *InMemoryCatalogStore {
	return &InMemoryCatalogStore{
		movies: make(map[int64]Movie),
		shows:  make(map[int64]TVShow),
	}
}

func (s *InMemoryCatalogStore) GetMoviesByTMDBIDs(_ context.Context, ids []int64) ([]Movie, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Movie
	for _, id := range ids {
		if m, ok := s.movies[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *InMemoryCatalogStore) GetTVShowsByTMDBIDs(_ context.Context, ids []int64) ([]TVShow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []TVShow
	for _, id := range ids {
		if t, ok := s.shows[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *InMemoryCatalogStore) ApplyMovies(_ context.Context, toCreate, toUpdate []Movie) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := maps.Clone(s.movies)
	if s.FailCreates != nil {
		return s.FailCreates
	}
	for _, m := range toCreate {
		if _, exists := next[m.TMDBID]; exists {
			continue // concurrent writer got there first; insert-ignore
		}
		next[m.TMDBID] = m
	}
	if s.FailUpdates != nil {
		return s.FailUpdates
	}
	for _, m := range toUpdate {
		next[m.TMDBID] = m
	}
	s.movies = next
	return nil
}

func (s *InMemoryCatalogStore) ApplyTVShows(_ context.Context, toCreate, toUpdate []TVShow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := maps.Clone(s.shows)
	if s.FailCreates != nil {
		return s.FailCreates
	}
	for _, t := range toCreate {
		if _, exists := next[t.TMDBID]; exists {
			continue
		}
		next[t.TMDBID] = t
	}
	if s.FailUpdates != nil {
		return s.FailUpdates
	}
	for _, t := range toUpdate {
		next[t.TMDBID] = t
	}
	s.shows = next
	return nil
}

// PutMovie seeds a row directly, bypassing Apply. Test helper.
func (s *InMemoryCatalogStore) PutMovie(m Movie) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.movies[m.TMDBID] = m
}

// MovieCount reports the number of stored movies. Test helper.
func (s *InMemoryCatalogStore) MovieCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.movies)
}
