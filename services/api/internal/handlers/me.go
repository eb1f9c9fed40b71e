package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/example/cinewhisper/internal/platform/api"
	"github.com/example/cinewhisper/internal/platform/auth"
	"github.com/example/cinewhisper/internal/platform/httpserver"
	"github.com/example/cinewhisper/services/api/internal/store"
)

// Me handles GET /v1/me
func Me(users store.UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())
		uid, _ := auth.UserIDFromContext(r.Context())

		u, err := users.GetUserByID(r.Context(), uid)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				api.NotFound(w, "NOT_FOUND", "user not found", rid)
				return
			}
			api.Internal(w, rid)
			return
		}
		api.WriteJSON(w, http.StatusOK, u)
	}
}

type updateProfileRequest struct {
	Username       *string `json:"username"`
	ProfilePicture *string `json:"profile_picture"`
}

// UpdateMe handles PATCH /v1/me. Only the fields present in the body change.
func UpdateMe(users store.UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())
		uid, _ := auth.UserIDFromContext(r.Context())

		var req updateProfileRequest
		if !decodeJSON(w, r, rid, &req) {
			return
		}
		if req.Username == nil && req.ProfilePicture == nil {
			api.BadRequest(w, "VALIDATION_EMPTY", "No fields to update", rid, nil)
			return
		}
		if req.Username != nil {
			trimmed := strings.TrimSpace(*req.Username)
			if !isValidUsername(trimmed) {
				api.BadRequest(w, "VALIDATION_USERNAME", "Invalid username", rid, map[string]any{"username": "invalid"})
				return
			}
			req.Username = &trimmed
		}

		u, err := users.UpdateProfile(r.Context(), uid, store.UpdateProfileParams{
			Username:       req.Username,
			ProfilePicture: req.ProfilePicture,
		})
		if err != nil {
			switch {
			case errors.Is(err, store.ErrNotFound):
				api.NotFound(w, "NOT_FOUND", "user not found", rid)
			case errors.Is(err, store.ErrConflict):
				api.Conflict(w, "USERNAME_TAKEN", "Username already taken", rid, nil)
			default:
				api.Internal(w, rid)
			}
			return
		}
		api.WriteJSON(w, http.StatusOK, u)
	}
}
