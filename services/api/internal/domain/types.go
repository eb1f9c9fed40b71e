package domain

import "time"

type User struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	Username       string    `json:"username"`
	ProfilePicture string    `json:"profile_picture,omitempty"`
	IsVerified     bool      `json:"is_verified"`
	CreatedAt      time.Time `json:"created_at"`
}

// MediaType distinguishes catalog rows in mixed contexts (favourites).
type MediaType string

const (
	MediaMovie MediaType = "movie"
	MediaTV    MediaType = "tv"
)

func (m MediaType) Valid() bool {
	return m == MediaMovie || m == MediaTV
}

type Favourite struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"-"`
	MediaType MediaType `json:"media_type"`
	TMDBID    int64     `json:"tmdb_id"`
	CreatedAt time.Time `json:"created_at"`
}
