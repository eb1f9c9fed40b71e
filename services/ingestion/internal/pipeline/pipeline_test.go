package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/example/cinewhisper/internal/platform/cache"
	"github.com/example/cinewhisper/services/ingestion/internal/store"
	"github.com/example/cinewhisper/services/ingestion/internal/tmdb"
)

// fakeProvider serves canned pages per category and can fail chosen pages.
type fakeProvider struct {
	pages     map[tmdb.Category]map[int][]tmdb.RawRecord
	failPages map[int]bool
}

func (f *fakeProvider) Trending(_ context.Context, cat tmdb.Category, page int) ([]tmdb.RawRecord, error) {
	if f.failPages[page] {
		return nil, errors.New("upstream 500")
	}
	return f.pages[cat][page], nil
}

func rawMovie(id int64, title string) tmdb.RawRecord {
	return tmdb.RawRecord{"id": float64(id), "title": title}
}

func rawShow(id int64, name string) tmdb.RawRecord {
	return tmdb.RawRecord{"id": float64(id), "name": name}
}

func newTestPipeline(provider tmdb.Provider, st store.CatalogStore) (*Pipeline, *cache.MemoryCache) {
	c := cache.NewMemoryCache()
	return &Pipeline{
		Log:       zap.NewNop(),
		TMDB:      provider,
		Store:     st,
		Cache:     c,
		PageCount: 2,
	}, c
}

func TestRun_CreatesThenUpdates(t *testing.T) {
	provider := &fakeProvider{pages: map[tmdb.Category]map[int][]tmdb.RawRecord{
		tmdb.CategoryMovie: {1: {rawMovie(1, "a"), rawMovie(2, "b")}},
		tmdb.CategoryTV:    {1: {rawShow(10, "x")}},
	}}
	st := store.NewInMemoryCatalogStore()
	p, _ := newTestPipeline(provider, st)

	status, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(status, "movies: 2 fetched, 2 created, 0 updated") {
		t.Fatalf("status = %q", status)
	}
	if !strings.Contains(status, "tv: 1 fetched, 1 created, 0 updated") {
		t.Fatalf("status = %q", status)
	}

	// a second identical run touches the same rows as updates
	status, err = p.Run(context.Background())
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if !strings.Contains(status, "movies: 2 fetched, 0 created, 2 updated") {
		t.Fatalf("second status = %q", status)
	}
	if st.MovieCount() != 2 {
		t.Fatalf("MovieCount = %d, want 2", st.MovieCount())
	}
}

func TestRun_RefreshesStoredFields(t *testing.T) {
	provider := &fakeProvider{pages: map[tmdb.Category]map[int][]tmdb.RawRecord{
		tmdb.CategoryMovie: {1: {rawMovie(1, "new title")}},
		tmdb.CategoryTV:    {},
	}}
	st := store.NewInMemoryCatalogStore()
	st.PutMovie(store.Movie{TMDBID: 1, Title: "old title"})
	p, _ := newTestPipeline(provider, st)

	if _, err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	got, err := st.GetMoviesByTMDBIDs(context.Background(), []int64{1})
	if err != nil || len(got) != 1 {
		t.Fatalf("GetMoviesByTMDBIDs: %v %v", got, err)
	}
	if got[0].Title != "new title" {
		t.Fatalf("Title = %q, want refreshed value", got[0].Title)
	}
}

func TestRun_NoDataFetched(t *testing.T) {
	provider := &fakeProvider{
		pages:     map[tmdb.Category]map[int][]tmdb.RawRecord{},
		failPages: map[int]bool{1: true, 2: true},
	}
	p, _ := newTestPipeline(provider, store.NewInMemoryCatalogStore())

	status, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if status != "no trending data fetched" {
		t.Fatalf("status = %q", status)
	}
}

func TestRun_StoreFailureIsolatedPerCategory(t *testing.T) {
	provider := &fakeProvider{pages: map[tmdb.Category]map[int][]tmdb.RawRecord{
		tmdb.CategoryMovie: {1: {rawMovie(1, "a")}},
		tmdb.CategoryTV:    {1: {rawShow(10, "x")}},
	}}
	st := store.NewInMemoryCatalogStore()
	p, c := newTestPipeline(provider, st)

	// fail every write; both categories report failure, nothing cached
	st.FailCreates = errors.New("disk full")
	status, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(status, "movies: failed") || !strings.Contains(status, "tv: failed") {
		t.Fatalf("status = %q", status)
	}
	var cached []tmdb.RawRecord
	if ok, _ := c.Get(context.Background(), CacheKeyTrendingMovies, &cached); ok {
		t.Fatal("cache must not be written after a failed store write")
	}
	if st.MovieCount() != 0 {
		t.Fatalf("MovieCount = %d after failed write", st.MovieCount())
	}
}

func TestRun_WriteAtomicity(t *testing.T) {
	// one row already stored so the run produces both a create and an update
	provider := &fakeProvider{pages: map[tmdb.Category]map[int][]tmdb.RawRecord{
		tmdb.CategoryMovie: {1: {rawMovie(1, "new"), rawMovie(2, "brand new")}},
		tmdb.CategoryTV:    {},
	}}
	st := store.NewInMemoryCatalogStore()
	st.PutMovie(store.Movie{TMDBID: 1, Title: "old"})
	st.FailUpdates = errors.New("conn reset")
	p, _ := newTestPipeline(provider, st)

	if _, err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	// the create half must have been rolled back with the failed update
	if st.MovieCount() != 1 {
		t.Fatalf("MovieCount = %d, want 1 (partial write leaked)", st.MovieCount())
	}
	got, _ := st.GetMoviesByTMDBIDs(context.Background(), []int64{1})
	if len(got) != 1 || got[0].Title != "old" {
		t.Fatalf("row 1 = %+v, want untouched", got)
	}
}

func TestRun_PopulatesCacheWithRawBatch(t *testing.T) {
	provider := &fakeProvider{pages: map[tmdb.Category]map[int][]tmdb.RawRecord{
		tmdb.CategoryMovie: {
			1: {rawMovie(1, "a")},
			2: {rawMovie(2, "b")},
		},
		tmdb.CategoryTV: {1: {rawShow(10, "x")}},
	}}
	p, c := newTestPipeline(provider, store.NewInMemoryCatalogStore())

	if _, err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	var movies []tmdb.RawRecord
	ok, err := c.Get(context.Background(), CacheKeyTrendingMovies, &movies)
	if err != nil || !ok {
		t.Fatalf("cache get: ok=%v err=%v", ok, err)
	}
	if len(movies) != 2 || movies[0]["title"] != "a" || movies[1]["title"] != "b" {
		t.Fatalf("cached movies = %v", movies)
	}

	var shows []tmdb.RawRecord
	if ok, _ := c.Get(context.Background(), CacheKeyTrendingTVShows, &shows); !ok || len(shows) != 1 {
		t.Fatalf("cached shows = %v", shows)
	}
}

func TestRun_SkipsRecordsWithoutID(t *testing.T) {
	provider := &fakeProvider{pages: map[tmdb.Category]map[int][]tmdb.RawRecord{
		tmdb.CategoryMovie: {1: {
			tmdb.RawRecord{"title": "no id"},
			rawMovie(5, "keeper"),
		}},
		tmdb.CategoryTV: {},
	}}
	st := store.NewInMemoryCatalogStore()
	p, _ := newTestPipeline(provider, st)

	status, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(status, "movies: 2 fetched, 1 created, 0 updated") {
		t.Fatalf("status = %q", status)
	}
	if st.MovieCount() != 1 {
		t.Fatalf("MovieCount = %d, want 1", st.MovieCount())
	}
}

func TestRun_ContextCancelled(t *testing.T) {
	provider := &fakeProvider{pages: map[tmdb.Category]map[int][]tmdb.RawRecord{}}
	p, _ := newTestPipeline(provider, store.NewInMemoryCatalogStore())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestRun_DuplicateAcrossPagesLastWins(t *testing.T) {
	provider := &fakeProvider{pages: map[tmdb.Category]map[int][]tmdb.RawRecord{
		tmdb.CategoryMovie: {
			1: {rawMovie(1, "page one copy")},
			2: {rawMovie(1, "page two copy")},
		},
		tmdb.CategoryTV: {},
	}}
	st := store.NewInMemoryCatalogStore()
	p, _ := newTestPipeline(provider, st)

	if _, err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	got, _ := st.GetMoviesByTMDBIDs(context.Background(), []int64{1})
	if len(got) != 1 {
		t.Fatalf("rows = %v", got)
	}
	if got[0].Title != "page two copy" {
		t.Fatalf("Title = %q, want the later page to win", got[0].Title)
	}
}

func TestFetchCategory_ManyPagesInOrder(t *testing.T) {
	pages := map[int][]tmdb.RawRecord{}
	for i := 1; i <= 10; i++ {
		pages[i] = []tmdb.RawRecord{rawMovie(int64(i*100), fmt.Sprintf("p%d", i))}
	}
	provider := &fakeProvider{
		pages:     map[tmdb.Category]map[int][]tmdb.RawRecord{tmdb.CategoryMovie: pages},
		failPages: map[int]bool{4: true, 7: true},
	}
	p, _ := newTestPipeline(provider, store.NewInMemoryCatalogStore())
	p.PageCount = 10

	all := p.fetchCategory(context.Background(), tmdb.CategoryMovie)
	if len(all) != 8 {
		t.Fatalf("got %d records, want 8", len(all))
	}
	prev := int64(0)
	for _, r := range all {
		id := int64(r["id"].(float64))
		if id <= prev {
			t.Fatalf("records out of page order: %d after %d", id, prev)
		}
		prev = id
	}
}
