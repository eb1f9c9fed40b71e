package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/example/cinewhisper/internal/platform/api"
	"github.com/example/cinewhisper/internal/platform/httpserver"
	"github.com/example/cinewhisper/services/api/internal/store"
)

// ListMovies handles GET /v1/movies?limit=N&offset=M
func ListMovies(catalog store.CatalogStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())

		limit := parseInt32(r.URL.Query().Get("limit"), 25, 1, 100)
		offset := parseInt32(r.URL.Query().Get("offset"), 0, 0, 100000)

		movies, err := catalog.ListMovies(r.Context(), limit, offset)
		if err != nil {
			api.Internal(w, rid)
			return
		}
		api.WriteJSON(w, http.StatusOK, map[string]any{"movies": movies, "limit": limit, "offset": offset})
	}
}

// GetMovie handles GET /v1/movies/{tmdb_id}
func GetMovie(catalog store.CatalogStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())

		id, ok := parseInt64Param(chi.URLParam(r, "tmdb_id"))
		if !ok {
			api.BadRequest(w, "INVALID_ID", "tmdb_id must be a positive integer", rid, nil)
			return
		}

		m, err := catalog.GetMovieByTMDBID(r.Context(), id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				api.NotFound(w, "NOT_FOUND", "movie not found", rid)
				return
			}
			api.Internal(w, rid)
			return
		}
		api.WriteJSON(w, http.StatusOK, m)
	}
}

// ListTVShows handles GET /v1/tvshows?limit=N&offset=M
func ListTVShows(catalog store.CatalogStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())

		limit := parseInt32(r.URL.Query().Get("limit"), 25, 1, 100)
		offset := parseInt32(r.URL.Query().Get("offset"), 0, 0, 100000)

		shows, err := catalog.ListTVShows(r.Context(), limit, offset)
		if err != nil {
			api.Internal(w, rid)
			return
		}
		api.WriteJSON(w, http.StatusOK, map[string]any{"tvshows": shows, "limit": limit, "offset": offset})
	}
}

// GetTVShow handles GET /v1/tvshows/{tmdb_id}
func GetTVShow(catalog store.CatalogStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())

		id, ok := parseInt64Param(chi.URLParam(r, "tmdb_id"))
		if !ok {
			api.BadRequest(w, "INVALID_ID", "tmdb_id must be a positive integer", rid, nil)
			return
		}

		t, err := catalog.GetTVShowByTMDBID(r.Context(), id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				api.NotFound(w, "NOT_FOUND", "tv show not found", rid)
				return
			}
			api.Internal(w, rid)
			return
		}
		api.WriteJSON(w, http.StatusOK, t)
	}
}
