package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/example/cinewhisper/services/api/internal/domain"
)

type PostgresFavouriteStore struct {
	DB *pgxpool.Pool
}

func NewPostgresFavouriteStore(db *pgxpool.Pool) *PostgresFavouriteStore {
	return &PostgresFavouriteStore{DB: db}
}

func (s *PostgresFavouriteStore) ListFavourites(ctx context.Context, userID string) ([]domain.Favourite, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, ErrNotFound
	}

	q := `
SELECT id, user_id::text, media_type, tmdb_id, created_at
FROM favourites
WHERE user_id = $1
ORDER BY created_at DESC, id DESC;
`
	rows, err := s.DB.Query(ctx, q, uid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Favourite{}
	for rows.Next() {
		var f domain.Favourite
		if err := rows.Scan(&f.ID, &f.UserID, &f.MediaType, &f.TMDBID, &f.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (s *PostgresFavouriteStore) AddFavourite(ctx context.Context, userID string, media domain.MediaType, tmdbID int64) (domain.Favourite, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return domain.Favourite{}, ErrNotFound
	}

	q := `
INSERT INTO favourites (user_id, media_type, tmdb_id)
VALUES ($1, $2, $3)
RETURNING id, user_id::text, media_type, tmdb_id, created_at;
`
	var f domain.Favourite
	err = s.DB.QueryRow(ctx, q, uid, media, tmdbID).Scan(&f.ID, &f.UserID, &f.MediaType, &f.TMDBID, &f.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.Favourite{}, ErrConflict
		}
		return domain.Favourite{}, err
	}
	return f, nil
}

func (s *PostgresFavouriteStore) DeleteFavourite(ctx context.Context, userID string, favouriteID int64) error {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return ErrNotFound
	}

	tag, err := s.DB.Exec(ctx, `DELETE FROM favourites WHERE id = $1 AND user_id = $2;`, favouriteID, uid)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
