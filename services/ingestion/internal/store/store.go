package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by single-row lookups.
var ErrNotFound = errors.New("not found")

// Movie is the internal catalog representation of a TMDB movie.
// TMDBID is the reconciliation key and never changes after insert.
type Movie struct {
	TMDBID           int64
	Title            string
	OriginalTitle    string
	Overview         string
	PosterPath       string
	BackdropPath     string
	Adult            bool
	Video            bool
	OriginalLanguage string
	GenreIDs         []int64
	Popularity       float64
	ReleaseDate      *time.Time
	VoteAverage      float64
	VoteCount        int64
}

// Key returns the reconciliation key.
func (m Movie) Key() int64 { return m.TMDBID }

// TVShow is the internal catalog representation of a TMDB TV show.
type TVShow struct {
	TMDBID           int64
	Name             string
	OriginalName     string
	Overview         string
	PosterPath       string
	BackdropPath     string
	Adult            bool
	OriginalLanguage string
	GenreIDs         []int64
	Popularity       float64
	FirstAirDate     *time.Time
	VoteAverage      float64
	VoteCount        int64
	OriginCountry    []string
}

// Key returns the reconciliation key.
func (s TVShow) Key() int64 { return s.TMDBID }

// CatalogStore is the write-side persistence port of the ingestion pipeline.
// Apply* executes creates and updates as one atomic transaction: either
// both sets commit or neither does. Creates are insert-ignore on the
// tmdb_id unique key so a concurrent writer racing on the same id never
// fails the batch.
type CatalogStore interface {
	GetMoviesByTMDBIDs(ctx context.Context, ids []int64) ([]Movie, error)
	GetTVShowsByTMDBIDs(ctx context.Context, ids []int64) ([]TVShow, error)

	ApplyMovies(ctx context.Context, toCreate, toUpdate []Movie) error
	ApplyTVShows(ctx context.Context, toCreate, toUpdate []TVShow) error
}
