package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/example/cinewhisper/internal/platform/auth"
	"github.com/example/cinewhisper/services/api/internal/domain"
	"github.com/example/cinewhisper/services/api/internal/store"
)

const testUserID = "7d2a4a6e-0000-4000-8000-00000000abcd"

func newFavouritesRouter() chi.Router {
	h := &Favourites{
		Store:   store.NewMemoryFavouriteStore(),
		Catalog: seededCatalog(),
	}
	r := chi.NewRouter()
	r.Get("/v1/me/favourites", h.List)
	r.Post("/v1/me/favourites", h.Add)
	r.Delete("/v1/me/favourites/{favourite_id}", h.Delete)
	return r
}

func doAs(r chi.Router, userID, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req = req.WithContext(auth.WithUserID(req.Context(), userID))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestAddFavourite(t *testing.T) {
	r := newFavouritesRouter()

	rec := doAs(r, testUserID, http.MethodPost, "/v1/me/favourites", `{"media_type":"movie","tmdb_id":603}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}

	var f domain.Favourite
	if err := json.Unmarshal(rec.Body.Bytes(), &f); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if f.MediaType != domain.MediaMovie || f.TMDBID != 603 || f.ID == 0 {
		t.Fatalf("favourite = %+v", f)
	}
}

func TestAddFavourite_Duplicate(t *testing.T) {
	r := newFavouritesRouter()
	doAs(r, testUserID, http.MethodPost, "/v1/me/favourites", `{"media_type":"movie","tmdb_id":603}`)

	rec := doAs(r, testUserID, http.MethodPost, "/v1/me/favourites", `{"media_type":"movie","tmdb_id":603}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestAddFavourite_SameIDDifferentMedia(t *testing.T) {
	cat := seededCatalog()
	cat.Shows = append(cat.Shows, domain.TVShow{TMDBID: 603, Name: "shadow", GenreIDs: []int64{}})
	h := &Favourites{Store: store.NewMemoryFavouriteStore(), Catalog: cat}
	r := chi.NewRouter()
	r.Post("/v1/me/favourites", h.Add)

	if rec := doAs(r, testUserID, http.MethodPost, "/v1/me/favourites", `{"media_type":"movie","tmdb_id":603}`); rec.Code != http.StatusCreated {
		t.Fatalf("movie status = %d", rec.Code)
	}
	if rec := doAs(r, testUserID, http.MethodPost, "/v1/me/favourites", `{"media_type":"tv","tmdb_id":603}`); rec.Code != http.StatusCreated {
		t.Fatalf("tv status = %d, same tmdb_id under another media type must be allowed", rec.Code)
	}
}

func TestAddFavourite_UnknownCatalogItem(t *testing.T) {
	r := newFavouritesRouter()

	rec := doAs(r, testUserID, http.MethodPost, "/v1/me/favourites", `{"media_type":"movie","tmdb_id":999999}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestAddFavourite_Validation(t *testing.T) {
	r := newFavouritesRouter()

	cases := []string{
		`{"media_type":"book","tmdb_id":603}`,
		`{"media_type":"movie","tmdb_id":0}`,
		`{"media_type":"movie"}`,
		`{`,
	}
	for _, body := range cases {
		if rec := doAs(r, testUserID, http.MethodPost, "/v1/me/favourites", body); rec.Code != http.StatusBadRequest {
			t.Fatalf("body %q: status = %d", body, rec.Code)
		}
	}
}

func TestListFavourites_ScopedToUser(t *testing.T) {
	r := newFavouritesRouter()
	doAs(r, testUserID, http.MethodPost, "/v1/me/favourites", `{"media_type":"movie","tmdb_id":603}`)
	doAs(r, testUserID, http.MethodPost, "/v1/me/favourites", `{"media_type":"movie","tmdb_id":604}`)
	otherUser := "11111111-0000-4000-8000-000000000002"
	doAs(r, otherUser, http.MethodPost, "/v1/me/favourites", `{"media_type":"tv","tmdb_id":1399}`)

	rec := doAs(r, testUserID, http.MethodGet, "/v1/me/favourites", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Favourites []domain.Favourite `json:"favourites"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Favourites) != 2 {
		t.Fatalf("favourites = %d, want 2", len(body.Favourites))
	}
	// newest first
	if body.Favourites[0].TMDBID != 604 || body.Favourites[1].TMDBID != 603 {
		t.Fatalf("order = %+v", body.Favourites)
	}
}

func TestDeleteFavourite(t *testing.T) {
	r := newFavouritesRouter()
	rec := doAs(r, testUserID, http.MethodPost, "/v1/me/favourites", `{"media_type":"movie","tmdb_id":603}`)
	var f domain.Favourite
	if err := json.Unmarshal(rec.Body.Bytes(), &f); err != nil {
		t.Fatalf("decode: %v", err)
	}

	rec = doAs(r, testUserID, http.MethodDelete, "/v1/me/favourites/1", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rec.Code)
	}

	// gone now
	rec = doAs(r, testUserID, http.MethodDelete, "/v1/me/favourites/1", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d", rec.Code)
	}
}

func TestDeleteFavourite_OtherUsersRow(t *testing.T) {
	r := newFavouritesRouter()
	doAs(r, testUserID, http.MethodPost, "/v1/me/favourites", `{"media_type":"movie","tmdb_id":603}`)

	otherUser := "11111111-0000-4000-8000-000000000002"
	rec := doAs(r, otherUser, http.MethodDelete, "/v1/me/favourites/1", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, deleting another user's favourite must 404", rec.Code)
	}
}
