package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/example/cinewhisper/internal/platform/analytics"
	"github.com/example/cinewhisper/internal/platform/api"
	"github.com/example/cinewhisper/internal/platform/auth"
	"github.com/example/cinewhisper/internal/platform/httpserver"
	"github.com/example/cinewhisper/services/api/internal/domain"
	"github.com/example/cinewhisper/services/api/internal/store"
)

// Favourites bundles the dependencies of the favourites endpoints.
// Catalog is consulted on add so a favourite always references a stored row.
type Favourites struct {
	Store     store.FavouriteStore
	Catalog   store.CatalogStore
	Analytics *analytics.Publisher
}

type addFavouriteRequest struct {
	MediaType domain.MediaType `json:"media_type"`
	TMDBID    int64            `json:"tmdb_id"`
}

// List handles GET /v1/me/favourites
func (h *Favourites) List(w http.ResponseWriter, r *http.Request) {
	rid := httpserver.RequestIDFromContext(r.Context())
	uid, _ := auth.UserIDFromContext(r.Context())

	favs, err := h.Store.ListFavourites(r.Context(), uid)
	if err != nil {
		api.Internal(w, rid)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"favourites": favs})
}

// Add handles POST /v1/me/favourites
func (h *Favourites) Add(w http.ResponseWriter, r *http.Request) {
	rid := httpserver.RequestIDFromContext(r.Context())
	uid, _ := auth.UserIDFromContext(r.Context())

	var req addFavouriteRequest
	if !decodeJSON(w, r, rid, &req) {
		return
	}
	if !req.MediaType.Valid() {
		api.BadRequest(w, "VALIDATION_MEDIA_TYPE", "media_type must be movie or tv", rid, nil)
		return
	}
	if req.TMDBID <= 0 {
		api.BadRequest(w, "VALIDATION_TMDB_ID", "tmdb_id must be a positive integer", rid, nil)
		return
	}

	exists, err := h.Catalog.HasItem(r.Context(), req.MediaType, req.TMDBID)
	if err != nil {
		api.Internal(w, rid)
		return
	}
	if !exists {
		api.NotFound(w, "NOT_FOUND", "catalog item not found", rid)
		return
	}

	f, err := h.Store.AddFavourite(r.Context(), uid, req.MediaType, req.TMDBID)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			api.Conflict(w, "ALREADY_FAVOURITE", "Item is already a favourite", rid, nil)
			return
		}
		api.Internal(w, rid)
		return
	}

	h.Analytics.Publish(analytics.SubjectFavouriteAdded, "favourite_added", uid, map[string]any{
		"media_type": string(f.MediaType),
		"tmdb_id":    f.TMDBID,
	})
	api.WriteJSON(w, http.StatusCreated, f)
}

// Delete handles DELETE /v1/me/favourites/{favourite_id}
func (h *Favourites) Delete(w http.ResponseWriter, r *http.Request) {
	rid := httpserver.RequestIDFromContext(r.Context())
	uid, _ := auth.UserIDFromContext(r.Context())

	id, ok := parseInt64Param(chi.URLParam(r, "favourite_id"))
	if !ok {
		api.BadRequest(w, "INVALID_ID", "favourite_id must be a positive integer", rid, nil)
		return
	}

	if err := h.Store.DeleteFavourite(r.Context(), uid, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			api.NotFound(w, "NOT_FOUND", "favourite not found", rid)
			return
		}
		api.Internal(w, rid)
		return
	}

	h.Analytics.Publish(analytics.SubjectFavouriteRemoved, "favourite_removed", uid, map[string]any{
		"favourite_id": id,
	})
	w.WriteHeader(http.StatusNoContent)
}
