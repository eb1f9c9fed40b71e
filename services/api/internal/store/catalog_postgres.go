package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/example/cinewhisper/services/api/internal/domain"
)

type PostgresCatalogStore struct {
	DB *pgxpool.Pool
}

func NewPostgresCatalogStore(db *pgxpool.Pool) *PostgresCatalogStore {
	return &PostgresCatalogStore{DB: db}
}

const movieColumns = `tmdb_id, title, original_title, overview, poster_path, backdrop_path,
adult, video, original_language, genre_ids, popularity, release_date, vote_average, vote_count`

const tvShowColumns = `tmdb_id, name, original_name, overview, poster_path, backdrop_path,
adult, original_language, genre_ids, popularity, first_air_date, origin_country, vote_average, vote_count`

func (s *PostgresCatalogStore) ListMovies(ctx context.Context, limit, offset int32) ([]domain.Movie, error) {
	q := `SELECT ` + movieColumns + ` FROM movies ORDER BY popularity DESC, tmdb_id LIMIT $1 OFFSET $2;`
	rows, err := s.DB.Query(ctx, q, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Movie{}
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *PostgresCatalogStore) GetMovieByTMDBID(ctx context.Context, tmdbID int64) (domain.Movie, error) {
	q := `SELECT ` + movieColumns + ` FROM movies WHERE tmdb_id = $1;`
	m, err := scanMovie(s.DB.QueryRow(ctx, q, tmdbID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Movie{}, ErrNotFound
		}
		return domain.Movie{}, err
	}
	return m, nil
}

func (s *PostgresCatalogStore) ListTVShows(ctx context.Context, limit, offset int32) ([]domain.TVShow, error) {
	q := `SELECT ` + tvShowColumns + ` FROM tv_shows ORDER BY popularity DESC, tmdb_id LIMIT $1 OFFSET $2;`
	rows, err := s.DB.Query(ctx, q, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.TVShow{}
	for rows.Next() {
		t, err := scanTVShow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *PostgresCatalogStore) GetTVShowByTMDBID(ctx context.Context, tmdbID int64) (domain.TVShow, error) {
	q := `SELECT ` + tvShowColumns + ` FROM tv_shows WHERE tmdb_id = $1;`
	t, err := scanTVShow(s.DB.QueryRow(ctx, q, tmdbID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.TVShow{}, ErrNotFound
		}
		return domain.TVShow{}, err
	}
	return t, nil
}

func (s *PostgresCatalogStore) HasItem(ctx context.Context, media domain.MediaType, tmdbID int64) (bool, error) {
	table := "movies"
	if media == domain.MediaTV {
		table = "tv_shows"
	}
	var exists bool
	err := s.DB.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM `+table+` WHERE tmdb_id = $1);`, tmdbID).Scan(&exists)
	return exists, err
}

func scanMovie(row pgx.Row) (domain.Movie, error) {
	var (
		m       domain.Movie
		genres  []byte
		release *time.Time
	)
	err := row.Scan(&m.TMDBID, &m.Title, &m.OriginalTitle, &m.Overview, &m.PosterPath, &m.BackdropPath,
		&m.Adult, &m.Video, &m.OriginalLanguage, &genres, &m.Popularity, &release, &m.VoteAverage, &m.VoteCount)
	if err != nil {
		return domain.Movie{}, err
	}
	m.MediaType = domain.MediaMovie
	m.GenreIDs = decodeInt64s(genres)
	m.ReleaseDate = domain.NewDate(release)
	return m, nil
}

func scanTVShow(row pgx.Row) (domain.TVShow, error) {
	var (
		t         domain.TVShow
		genres    []byte
		countries []byte
		firstAir  *time.Time
	)
	err := row.Scan(&t.TMDBID, &t.Name, &t.OriginalName, &t.Overview, &t.PosterPath, &t.BackdropPath,
		&t.Adult, &t.OriginalLanguage, &genres, &t.Popularity, &firstAir, &countries, &t.VoteAverage, &t.VoteCount)
	if err != nil {
		return domain.TVShow{}, err
	}
	t.MediaType = domain.MediaTV
	t.GenreIDs = decodeInt64s(genres)
	t.OriginCountry = decodeStrings(countries)
	t.FirstAirDate = domain.NewDate(firstAir)
	return t, nil
}

func decodeInt64s(b []byte) []int64 {
	var out []int64
	if len(b) > 0 {
		_ = json.Unmarshal(b, &out)
	}
	if out == nil {
		out = []int64{}
	}
	return out
}

func decodeStrings(b []byte) []string {
	var out []string
	if len(b) > 0 {
		_ = json.Unmarshal(b, &out)
	}
	if out == nil {
		out = []string{}
	}
	return out
}
