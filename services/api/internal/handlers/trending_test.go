package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/example/cinewhisper/internal/platform/cache"
)

func seedTrending(t *testing.T, c *cache.MemoryCache, key string, n int) {
	t.Helper()
	records := make([]map[string]any, 0, n)
	for i := 1; i <= n; i++ {
		records = append(records, map[string]any{"id": float64(i), "title": fmt.Sprintf("item %d", i)})
	}
	if err := c.Set(context.Background(), key, records, time.Hour); err != nil {
		t.Fatalf("seed cache: %v", err)
	}
}

type trendingPage struct {
	Count    int              `json:"count"`
	Next     *string          `json:"next"`
	Previous *string          `json:"previous"`
	Results  []map[string]any `json:"results"`
}

func getTrending(t *testing.T, h http.HandlerFunc, target string) (*httptest.ResponseRecorder, trendingPage) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h(rec, req)

	var page trendingPage
	if rec.Code == http.StatusOK {
		if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
			t.Fatalf("decode body: %v", err)
		}
	}
	return rec, page
}

func TestTrendingMovies_FirstPage(t *testing.T) {
	c := cache.NewMemoryCache()
	seedTrending(t, c, cacheKeyTrendingMovies, 25)

	rec, page := getTrending(t, TrendingMovies(c), "/v1/trending/movies")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if page.Count != 25 {
		t.Fatalf("count = %d", page.Count)
	}
	if len(page.Results) != 10 {
		t.Fatalf("results = %d, want default page size 10", len(page.Results))
	}
	if page.Results[0]["title"] != "item 1" {
		t.Fatalf("first result = %v", page.Results[0])
	}
	if page.Previous != nil {
		t.Fatalf("previous = %v, want null on first page", *page.Previous)
	}
	if page.Next == nil {
		t.Fatal("next = null, want a second page link")
	}
}

func TestTrendingMovies_LastPage(t *testing.T) {
	c := cache.NewMemoryCache()
	seedTrending(t, c, cacheKeyTrendingMovies, 25)

	rec, page := getTrending(t, TrendingMovies(c), "/v1/trending/movies?page=3")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(page.Results) != 5 {
		t.Fatalf("results = %d, want remainder of 5", len(page.Results))
	}
	if page.Next != nil {
		t.Fatalf("next = %v, want null on last page", *page.Next)
	}
	if page.Previous == nil {
		t.Fatal("previous = null, want a link to page 2")
	}
}

func TestTrendingMovies_PageSize(t *testing.T) {
	c := cache.NewMemoryCache()
	seedTrending(t, c, cacheKeyTrendingMovies, 25)

	rec, page := getTrending(t, TrendingMovies(c), "/v1/trending/movies?page=2&page_size=20")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(page.Results) != 5 {
		t.Fatalf("results = %d", len(page.Results))
	}
	if page.Results[0]["title"] != "item 21" {
		t.Fatalf("first result = %v", page.Results[0])
	}
}

func TestTrendingMovies_PageBeyondEnd(t *testing.T) {
	c := cache.NewMemoryCache()
	seedTrending(t, c, cacheKeyTrendingMovies, 25)

	rec, _ := getTrending(t, TrendingMovies(c), "/v1/trending/movies?page=99")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestTrendingMovies_EmptyCache(t *testing.T) {
	c := cache.NewMemoryCache()
	rec, _ := getTrending(t, TrendingMovies(c), "/v1/trending/movies")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 with cold cache", rec.Code)
	}
}

func TestTrendingTVShows_SeparateKey(t *testing.T) {
	c := cache.NewMemoryCache()
	seedTrending(t, c, cacheKeyTrendingTVShows, 3)

	rec, page := getTrending(t, TrendingTVShows(c), "/v1/trending/tvshows")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if page.Count != 3 || len(page.Results) != 3 {
		t.Fatalf("page = %+v", page)
	}

	// movies key stays cold
	rec, _ = getTrending(t, TrendingMovies(c), "/v1/trending/movies")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("movies status = %d, want 404", rec.Code)
	}
}
