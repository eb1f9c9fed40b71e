package tmdb

import "context"

// Provider is the port for fetching trending data from the TMDB API.
type Provider interface {
	Trending(ctx context.Context, category Category, page int) ([]RawRecord, error)
}
