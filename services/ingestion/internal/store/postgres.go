package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresCatalogStore is the production Postgres-backed implementation.
// It is the sole writer of the movies and tv_shows tables.
type PostgresCatalogStore struct {
	db *pgxpool.Pool
}

func NewPostgresCatalogStore(db *pgxpool.Pool) *PostgresCatalogStore {
	return &PostgresCatalogStore{db: db}
}

// ── reads ──────────────────────────────────────────────────────────────────

func (s *PostgresCatalogStore) GetMoviesByTMDBIDs(ctx context.Context, ids []int64) ([]Movie, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := s.db.Query(ctx, `
SELECT tmdb_id, title, original_title, overview, poster_path, backdrop_path, adult, video,
       original_language, genre_ids, popularity, release_date, vote_average, vote_count
FROM movies WHERE tmdb_id = ANY($1::bigint[])`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Movie
	for rows.Next() {
		var m Movie
		var genres []byte
		if err := rows.Scan(&m.TMDBID, &m.Title, &m.OriginalTitle, &m.Overview, &m.PosterPath, &m.BackdropPath,
			&m.Adult, &m.Video, &m.OriginalLanguage, &genres, &m.Popularity, &m.ReleaseDate, &m.VoteAverage, &m.VoteCount); err != nil {
			return nil, err
		}
		m.GenreIDs = decodeInt64s(genres)
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *PostgresCatalogStore) GetTVShowsByTMDBIDs(ctx context.Context, ids []int64) ([]TVShow, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := s.db.Query(ctx, `
SELECT tmdb_id, name, original_name, overview, poster_path, backdrop_path, adult,
       original_language, genre_ids, popularity, first_air_date, vote_average, vote_count, origin_country
FROM tv_shows WHERE tmdb_id = ANY($1::bigint[])`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TVShow
	for rows.Next() {
		var t TVShow
		var genres, countries []byte
		if err := rows.Scan(&t.TMDBID, &t.Name, &t.OriginalName, &t.Overview, &t.PosterPath, &t.BackdropPath,
			&t.Adult, &t.OriginalLanguage, &genres, &t.Popularity, &t.FirstAirDate, &t.VoteAverage, &t.VoteCount, &countries); err != nil {
			return nil, err
		}
		t.GenreIDs = decodeInt64s(genres)
		t.OriginCountry = decodeStrings(countries)
		out = append(out, t)
	}
	return out, rows.Err()
}

// ── writes ─────────────────────────────────────────────────────────────────

func (s *PostgresCatalogStore) ApplyMovies(ctx context.Context, toCreate, toUpdate []Movie) error {
	if len(toCreate) == 0 && len(toUpdate) == 0 {
		return nil
	}
	now := time.Now().UTC()

	b := &pgx.Batch{}
	for _, m := range toCreate {
		b.Queue(`
INSERT INTO movies (tmdb_id, title, original_title, overview, poster_path, backdrop_path, adult, video,
                    original_language, genre_ids, popularity, release_date, vote_average, vote_count, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$15)
ON CONFLICT (tmdb_id) DO NOTHING`,
			m.TMDBID, m.Title, m.OriginalTitle, m.Overview, m.PosterPath, m.BackdropPath, m.Adult, m.Video,
			m.OriginalLanguage, encodeInt64s(m.GenreIDs), m.Popularity, m.ReleaseDate, m.VoteAverage, m.VoteCount, now)
	}
	for _, m := range toUpdate {
		b.Queue(`
UPDATE movies
SET title=$2, original_title=$3, overview=$4, poster_path=$5, backdrop_path=$6, adult=$7, video=$8,
    original_language=$9, genre_ids=$10, popularity=$11, release_date=$12, vote_average=$13, vote_count=$14, updated_at=$15
WHERE tmdb_id=$1`,
			m.TMDBID, m.Title, m.OriginalTitle, m.Overview, m.PosterPath, m.BackdropPath, m.Adult, m.Video,
			m.OriginalLanguage, encodeInt64s(m.GenreIDs), m.Popularity, m.ReleaseDate, m.VoteAverage, m.VoteCount, now)
	}
	return s.sendBatch(ctx, b)
}

func (s *PostgresCatalogStore) ApplyTVShows(ctx context.Context, toCreate, toUpdate []TVShow) error {
	if len(toCreate) == 0 && len(toUpdate) == 0 {
		return nil
	}
	now := time.Now().UTC()

	b := &pgx.Batch{}
	for _, t := range toCreate {
		b.Queue(`
INSERT INTO tv_shows (tmdb_id, name, original_name, overview, poster_path, backdrop_path, adult,
                      original_language, genre_ids, popularity, first_air_date, vote_average, vote_count, origin_country, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$15)
ON CONFLICT (tmdb_id) DO NOTHING`,
			t.TMDBID, t.Name, t.OriginalName, t.Overview, t.PosterPath, t.BackdropPath, t.Adult,
			t.OriginalLanguage, encodeInt64s(t.GenreIDs), t.Popularity, t.FirstAirDate, t.VoteAverage, t.VoteCount,
			encodeStrings(t.OriginCountry), now)
	}
	for _, t := range toUpdate {
		b.Queue(`
UPDATE tv_shows
SET name=$2, original_name=$3, overview=$4, poster_path=$5, backdrop_path=$6, adult=$7,
    original_language=$8, genre_ids=$9, popularity=$10, first_air_date=$11, vote_average=$12, vote_count=$13,
    origin_country=$14, updated_at=$15
WHERE tmdb_id=$1`,
			t.TMDBID, t.Name, t.OriginalName, t.Overview, t.PosterPath, t.BackdropPath, t.Adult,
			t.OriginalLanguage, encodeInt64s(t.GenreIDs), t.Popularity, t.FirstAirDate, t.VoteAverage, t.VoteCount,
			encodeStrings(t.OriginCountry), now)
	}
	return s.sendBatch(ctx, b)
}

// sendBatch runs all queued statements inside one transaction. Any statement
// error rolls the whole batch back; no partial commit is possible.
func (s *PostgresCatalogStore) sendBatch(ctx context.Context, b *pgx.Batch) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	br := tx.SendBatch(ctx, b)
	for i := 0; i < b.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return err
		}
	}
	if err := br.Close(); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
