package handlers

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/example/cinewhisper/internal/platform/api"
	"github.com/example/cinewhisper/internal/platform/cache"
	"github.com/example/cinewhisper/internal/platform/httpserver"
)

// Cache keys written by the ingestion service.
const (
	cacheKeyTrendingMovies  = "trending_movies"
	cacheKeyTrendingTVShows = "trending_tv_shows"
)

const (
	defaultPageSize = 10
	maxPageSize     = 50
)

// pagedResponse is the envelope for page-number pagination: total item
// count plus absolute URLs of the adjacent pages, null at either edge.
type pagedResponse struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  any     `json:"results"`
}

// TrendingMovies handles GET /v1/trending/movies?page=N&page_size=M.
// It serves the raw upstream batch cached by the last ingestion run.
func TrendingMovies(c cache.Cache) http.HandlerFunc {
	return trendingFromCache(c, cacheKeyTrendingMovies, "No trending movies")
}

// TrendingTVShows handles GET /v1/trending/tvshows?page=N&page_size=M.
func TrendingTVShows(c cache.Cache) http.HandlerFunc {
	return trendingFromCache(c, cacheKeyTrendingTVShows, "No trending TV shows")
}

func trendingFromCache(c cache.Cache, key, emptyMessage string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())

		var records []map[string]any
		ok, err := c.Get(r.Context(), key, &records)
		if err != nil {
			api.Internal(w, rid)
			return
		}
		if !ok || len(records) == 0 {
			api.NotFound(w, "NOT_FOUND", emptyMessage, rid)
			return
		}

		page := parseInt32(r.URL.Query().Get("page"), 1, 1, 1<<30)
		pageSize := parseInt32(r.URL.Query().Get("page_size"), defaultPageSize, 1, maxPageSize)

		total := len(records)
		lastPage := (total + int(pageSize) - 1) / int(pageSize)
		if int(page) > lastPage {
			api.NotFound(w, "INVALID_PAGE", "Invalid page", rid)
			return
		}

		start := (int(page) - 1) * int(pageSize)
		end := start + int(pageSize)
		if end > total {
			end = total
		}

		api.WriteJSON(w, http.StatusOK, pagedResponse{
			Count:    total,
			Next:     pageURL(r, page+1, pageSize, int(page) < lastPage),
			Previous: pageURL(r, page-1, pageSize, page > 1),
			Results:  records[start:end],
		})
	}
}

// pageURL rebuilds the request URL pointing at the given page, or nil when
// the page does not exist.
func pageURL(r *http.Request, page, pageSize int32, exists bool) *string {
	if !exists {
		return nil
	}
	u := *r.URL
	q := u.Query()
	q.Set("page", fmt.Sprint(page))
	if r.URL.Query().Get("page_size") != "" {
		q.Set("page_size", fmt.Sprint(pageSize))
	}
	u.RawQuery = q.Encode()

	abs := url.URL{Scheme: "http", Host: r.Host, Path: u.Path, RawQuery: u.RawQuery}
	if r.TLS != nil {
		abs.Scheme = "https"
	}
	s := abs.String()
	return &s
}
