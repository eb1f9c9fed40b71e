package handlers

import (
	"errors"
	"net"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/example/cinewhisper/internal/platform/analytics"
	"github.com/example/cinewhisper/internal/platform/api"
	"github.com/example/cinewhisper/internal/platform/httpserver"
	"github.com/example/cinewhisper/services/api/internal/domain"
	"github.com/example/cinewhisper/services/api/internal/store"
	"github.com/example/cinewhisper/services/api/internal/tokens"
)

type registerRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type authResponse struct {
	User         domain.User `json:"user"`
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	ExpiresIn    int64       `json:"expires_in"`
}

// Auth bundles the dependencies of the account endpoints.
type Auth struct {
	Users     store.UserStore
	Tokens    tokens.Service
	Analytics *analytics.Publisher
}

// Register handles POST /v1/auth/register
func (h *Auth) Register(w http.ResponseWriter, r *http.Request) {
	rid := httpserver.RequestIDFromContext(r.Context())

	var req registerRequest
	if !decodeJSON(w, r, rid, &req) {
		return
	}
	email := strings.TrimSpace(req.Email)
	username := strings.TrimSpace(req.Username)

	if !isValidEmail(email) {
		api.BadRequest(w, "VALIDATION_EMAIL", "Invalid email", rid, map[string]any{"email": "invalid"})
		return
	}
	if !isValidUsername(username) {
		api.BadRequest(w, "VALIDATION_USERNAME", "Invalid username", rid, map[string]any{"username": "invalid"})
		return
	}
	if len(req.Password) < 8 {
		api.BadRequest(w, "VALIDATION_PASSWORD", "Password too short", rid, map[string]any{"password": "min length 8"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		api.Internal(w, rid)
		return
	}

	u, err := h.Users.CreateUser(r.Context(), store.CreateUserParams{Email: email, Username: username, PasswordHash: string(hash)})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			api.Conflict(w, "USER_ALREADY_EXISTS", "User already exists", rid, nil)
			return
		}
		api.Internal(w, rid)
		return
	}

	resp, err := h.issueTokens(r, u)
	if err != nil {
		api.Internal(w, rid)
		return
	}

	h.Analytics.Publish(analytics.SubjectAuthRegistered, "user_registered", u.ID, map[string]any{
		"username": u.Username,
	})
	api.WriteJSON(w, http.StatusCreated, resp)
}

// Login handles POST /v1/auth/login
func (h *Auth) Login(w http.ResponseWriter, r *http.Request) {
	rid := httpserver.RequestIDFromContext(r.Context())

	var req loginRequest
	if !decodeJSON(w, r, rid, &req) {
		return
	}
	login := strings.TrimSpace(req.Login)
	if login == "" {
		api.BadRequest(w, "VALIDATION_LOGIN", "Login is required", rid, map[string]any{"login": "required"})
		return
	}
	if req.Password == "" {
		api.BadRequest(w, "VALIDATION_PASSWORD", "Password is required", rid, map[string]any{"password": "required"})
		return
	}

	row, err := h.Users.FindUserByLogin(r.Context(), login)
	if err != nil {
		api.Unauthorized(w, "AUTH_INVALID_CREDENTIALS", "Invalid credentials", rid)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(row.PasswordHash), []byte(req.Password)) != nil {
		api.Unauthorized(w, "AUTH_INVALID_CREDENTIALS", "Invalid credentials", rid)
		return
	}

	resp, err := h.issueTokens(r, row.User)
	if err != nil {
		api.Internal(w, rid)
		return
	}

	h.Analytics.Publish(analytics.SubjectAuthLoggedIn, "user_logged_in", row.User.ID, nil)
	api.WriteJSON(w, http.StatusOK, resp)
}

// Refresh handles POST /v1/auth/refresh. The presented token is rotated:
// the old session is revoked and linked to its replacement.
func (h *Auth) Refresh(w http.ResponseWriter, r *http.Request) {
	rid := httpserver.RequestIDFromContext(r.Context())

	var req refreshRequest
	if !decodeJSON(w, r, rid, &req) {
		return
	}
	raw := strings.TrimSpace(req.RefreshToken)
	if raw == "" {
		api.BadRequest(w, "VALIDATION_REFRESH_TOKEN", "refresh_token is required", rid, map[string]any{"refresh_token": "required"})
		return
	}

	sess, err := h.Users.GetRefreshSessionByHash(r.Context(), tokens.HashToken(raw))
	if err != nil {
		api.Unauthorized(w, "AUTH_INVALID_REFRESH", "Invalid refresh token", rid)
		return
	}
	now := time.Now().UTC()
	if sess.RevokedAt != nil || now.After(sess.ExpiresAt) {
		api.Unauthorized(w, "AUTH_INVALID_REFRESH", "Invalid refresh token", rid)
		return
	}

	u, err := h.Users.GetUserByID(r.Context(), sess.UserID.String())
	if err != nil {
		api.Internal(w, rid)
		return
	}

	access, exp, err := h.Tokens.NewAccessToken(u, now)
	if err != nil {
		api.Internal(w, rid)
		return
	}
	newRaw, newHash, err := tokens.NewRefreshToken()
	if err != nil {
		api.Internal(w, rid)
		return
	}
	newID := uuid.New()
	if err := h.Users.ReplaceRefreshSession(r.Context(), sess.ID, newID, now); err != nil {
		api.Internal(w, rid)
		return
	}
	if err := h.Users.CreateRefreshSession(r.Context(), store.CreateRefreshSessionParams{
		SessionID: newID,
		UserID:    sess.UserID,
		TokenHash: newHash,
		ExpiresAt: now.Add(h.Tokens.RefreshTokenTTL),
		UserAgent: r.UserAgent(),
		IP:        clientIP(r),
		Now:       now,
	}); err != nil {
		api.Internal(w, rid)
		return
	}

	api.WriteJSON(w, http.StatusOK, authResponse{
		User:         u,
		AccessToken:  access,
		RefreshToken: newRaw,
		ExpiresIn:    int64(time.Until(exp).Seconds()),
	})
}

// Logout handles POST /v1/auth/logout. Unknown tokens are ignored so the
// endpoint is idempotent.
func (h *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	rid := httpserver.RequestIDFromContext(r.Context())

	var req refreshRequest
	if !decodeJSON(w, r, rid, &req) {
		return
	}
	raw := strings.TrimSpace(req.RefreshToken)
	if raw == "" {
		api.BadRequest(w, "VALIDATION_REFRESH_TOKEN", "refresh_token is required", rid, map[string]any{"refresh_token": "required"})
		return
	}

	if sess, err := h.Users.GetRefreshSessionByHash(r.Context(), tokens.HashToken(raw)); err == nil {
		_ = h.Users.RevokeRefreshSession(r.Context(), sess.ID, time.Now().UTC())
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Auth) issueTokens(r *http.Request, u domain.User) (authResponse, error) {
	now := time.Now().UTC()
	access, exp, err := h.Tokens.NewAccessToken(u, now)
	if err != nil {
		return authResponse{}, err
	}
	refreshRaw, refreshHash, err := tokens.NewRefreshToken()
	if err != nil {
		return authResponse{}, err
	}
	userID, _ := uuid.Parse(u.ID)
	if err := h.Users.CreateRefreshSession(r.Context(), store.CreateRefreshSessionParams{
		SessionID: uuid.New(),
		UserID:    userID,
		TokenHash: refreshHash,
		ExpiresAt: now.Add(h.Tokens.RefreshTokenTTL),
		UserAgent: r.UserAgent(),
		IP:        clientIP(r),
		Now:       now,
	}); err != nil {
		return authResponse{}, err
	}

	return authResponse{
		User:         u,
		AccessToken:  access,
		RefreshToken: refreshRaw,
		ExpiresIn:    int64(time.Until(exp).Seconds()),
	}, nil
}

var usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_]{3,32}$`)

func isValidUsername(s string) bool {
	return usernameRe.MatchString(strings.TrimSpace(s))
}

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func isValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) > 254 {
		return false
	}
	return emailRe.MatchString(s)
}

// clientIP trusts the first x-forwarded-for hop when set, falling back to
// the socket address.
func clientIP(r *http.Request) net.IP {
	if xff := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); xff != "" {
		parts := strings.Split(xff, ",")
		if ip := net.ParseIP(strings.TrimSpace(parts[0])); ip != nil {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return nil
	}
	return net.ParseIP(host)
}
