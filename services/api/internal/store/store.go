// Package store holds the persistence interfaces the API handlers depend on
// and their Postgres implementations.
package store

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/google/uuid"

	"github.com/example/cinewhisper/services/api/internal/domain"
)

var (
	ErrConflict = errors.New("conflict")
	ErrNotFound = errors.New("not found")
)

// CatalogStore reads the catalog tables populated by the ingestion service.
type CatalogStore interface {
	ListMovies(ctx context.Context, limit, offset int32) ([]domain.Movie, error)
	GetMovieByTMDBID(ctx context.Context, tmdbID int64) (domain.Movie, error)
	ListTVShows(ctx context.Context, limit, offset int32) ([]domain.TVShow, error)
	GetTVShowByTMDBID(ctx context.Context, tmdbID int64) (domain.TVShow, error)
	// HasItem reports whether a catalog row exists for the given media type.
	HasItem(ctx context.Context, media domain.MediaType, tmdbID int64) (bool, error)
}

type CreateUserParams struct {
	Email        string
	Username     string
	PasswordHash string
}

type UpdateProfileParams struct {
	Username       *string
	ProfilePicture *string
}

// UserRow pairs a user with their stored credential hash.
type UserRow struct {
	User         domain.User
	PasswordHash string
}

type CreateRefreshSessionParams struct {
	SessionID uuid.UUID
	UserID    uuid.UUID
	TokenHash string
	ExpiresAt time.Time
	UserAgent string
	IP        net.IP
	Now       time.Time
}

type RefreshSession struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	TokenHash string
	ExpiresAt time.Time
	RevokedAt *time.Time
}

type UserStore interface {
	CreateUser(ctx context.Context, p CreateUserParams) (domain.User, error)
	FindUserByLogin(ctx context.Context, login string) (UserRow, error)
	GetUserByID(ctx context.Context, id string) (domain.User, error)
	UpdateProfile(ctx context.Context, id string, p UpdateProfileParams) (domain.User, error)

	CreateRefreshSession(ctx context.Context, p CreateRefreshSessionParams) error
	GetRefreshSessionByHash(ctx context.Context, tokenHash string) (RefreshSession, error)
	RevokeRefreshSession(ctx context.Context, sessionID uuid.UUID, now time.Time) error
	ReplaceRefreshSession(ctx context.Context, oldID, newID uuid.UUID, now time.Time) error
}

type FavouriteStore interface {
	ListFavourites(ctx context.Context, userID string) ([]domain.Favourite, error)
	AddFavourite(ctx context.Context, userID string, media domain.MediaType, tmdbID int64) (domain.Favourite, error)
	DeleteFavourite(ctx context.Context, userID string, favouriteID int64) error
}
