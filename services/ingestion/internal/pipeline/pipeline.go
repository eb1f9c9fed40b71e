// Package pipeline implements the trending ingestion run: fetch the daily
// trending feeds from TMDB, reconcile them against the catalog tables,
// apply the batch atomically and refresh the serving cache.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/example/cinewhisper/internal/platform/cache"
	"github.com/example/cinewhisper/internal/platform/metrics"
	"github.com/example/cinewhisper/services/ingestion/internal/ratelimit"
	"github.com/example/cinewhisper/services/ingestion/internal/store"
	"github.com/example/cinewhisper/services/ingestion/internal/tmdb"
)

// Cache keys read by the serving layer. The cached value is the raw
// upstream batch, not the normalized rows.
const (
	CacheKeyTrendingMovies  = "trending_movies"
	CacheKeyTrendingTVShows = "trending_tv_shows"
)

const (
	DefaultPageCount = 10
	DefaultCacheTTL  = 7200 * time.Second
)

type Pipeline struct {
	Log     *zap.Logger
	TMDB    tmdb.Provider
	Store   store.CatalogStore
	Cache   cache.Cache
	Limiter *ratelimit.Limiter // optional pacing between page fetches
	Metrics *metrics.Ingest    // optional

	PageCount int
	CacheTTL  time.Duration
}

// Run executes one full ingestion pass and returns a human-readable status.
// A storage failure aborts only the failing category; fetch failures are
// absorbed per page. The only error returned is context cancellation.
func (p *Pipeline) Run(ctx context.Context) (string, error) {
	if p.Metrics != nil {
		p.Metrics.Runs.Inc()
	}

	rawMovies := p.fetchCategory(ctx, tmdb.CategoryMovie)
	rawShows := p.fetchCategory(ctx, tmdb.CategoryTV)
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var parts []string
	if msg := p.syncMovies(ctx, rawMovies); msg != "" {
		parts = append(parts, msg)
	}
	if msg := p.syncTVShows(ctx, rawShows); msg != "" {
		parts = append(parts, msg)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if len(parts) == 0 {
		return "no trending data fetched", nil
	}
	return strings.Join(parts, "; "), nil
}

// fetchCategory collects pages 1..PageCount in ascending order. A failed
// page contributes nothing and does not stop the remaining pages.
func (p *Pipeline) fetchCategory(ctx context.Context, cat tmdb.Category) []tmdb.RawRecord {
	pages := p.PageCount
	if pages <= 0 {
		pages = DefaultPageCount
	}

	var all []tmdb.RawRecord
	for page := 1; page <= pages; page++ {
		if p.Limiter != nil {
			if err := p.Limiter.Wait(ctx); err != nil {
				return all
			}
		}
		results, err := p.TMDB.Trending(ctx, cat, page)
		if err != nil {
			p.Log.Error("trending fetch failed",
				zap.String("category", string(cat)), zap.Int("page", page), zap.Error(err))
			if p.Metrics != nil {
				p.Metrics.FetchErrors.WithLabelValues(string(cat)).Inc()
			}
			continue
		}
		if p.Metrics != nil {
			p.Metrics.PagesFetched.WithLabelValues(string(cat)).Inc()
		}
		all = append(all, results...)
	}
	return all
}

func (p *Pipeline) syncMovies(ctx context.Context, raw []tmdb.RawRecord) string {
	if len(raw) == 0 {
		return ""
	}

	batch := make([]store.Movie, 0, len(raw))
	for _, r := range raw {
		m := tmdb.NormalizeMovie(r)
		if m.TMDBID <= 0 {
			continue
		}
		batch = append(batch, m)
	}

	existing, err := p.Store.GetMoviesByTMDBIDs(ctx, keysOf(batch))
	if err != nil {
		p.Log.Error("movies: read existing failed", zap.Error(err))
		p.countWriteFailure(tmdb.CategoryMovie)
		return "movies: failed"
	}
	toCreate, toUpdate := Partition(batch, byKey(existing))

	if err := p.Store.ApplyMovies(ctx, toCreate, toUpdate); err != nil {
		p.Log.Error("movies: write failed", zap.Error(err))
		p.countWriteFailure(tmdb.CategoryMovie)
		return "movies: failed"
	}
	if p.Metrics != nil {
		p.Metrics.RowsCreated.WithLabelValues(string(tmdb.CategoryMovie)).Add(float64(len(toCreate)))
		p.Metrics.RowsUpdated.WithLabelValues(string(tmdb.CategoryMovie)).Add(float64(len(toUpdate)))
	}

	p.populateCache(ctx, CacheKeyTrendingMovies, raw)
	p.Log.Info("movies: trending synced",
		zap.Int("fetched", len(raw)), zap.Int("created", len(toCreate)), zap.Int("updated", len(toUpdate)))
	return fmt.Sprintf("movies: %d fetched, %d created, %d updated", len(raw), len(toCreate), len(toUpdate))
}

func (p *Pipeline) syncTVShows(ctx context.Context, raw []tmdb.RawRecord) string {
	if len(raw) == 0 {
		return ""
	}

	batch := make([]store.TVShow, 0, len(raw))
	for _, r := range raw {
		t := tmdb.NormalizeTVShow(r)
		if t.TMDBID <= 0 {
			continue
		}
		batch = append(batch, t)
	}

	existing, err := p.Store.GetTVShowsByTMDBIDs(ctx, keysOf(batch))
	if err != nil {
		p.Log.Error("tv: read existing failed", zap.Error(err))
		p.countWriteFailure(tmdb.CategoryTV)
		return "tv: failed"
	}
	toCreate, toUpdate := Partition(batch, byKey(existing))

	if err := p.Store.ApplyTVShows(ctx, toCreate, toUpdate); err != nil {
		p.Log.Error("tv: write failed", zap.Error(err))
		p.countWriteFailure(tmdb.CategoryTV)
		return "tv: failed"
	}
	if p.Metrics != nil {
		p.Metrics.RowsCreated.WithLabelValues(string(tmdb.CategoryTV)).Add(float64(len(toCreate)))
		p.Metrics.RowsUpdated.WithLabelValues(string(tmdb.CategoryTV)).Add(float64(len(toUpdate)))
	}

	p.populateCache(ctx, CacheKeyTrendingTVShows, raw)
	p.Log.Info("tv: trending synced",
		zap.Int("fetched", len(raw)), zap.Int("created", len(toCreate)), zap.Int("updated", len(toUpdate)))
	return fmt.Sprintf("tv: %d fetched, %d created, %d updated", len(raw), len(toCreate), len(toUpdate))
}

// populateCache stores the raw batch under the category key. The cache is
// non-authoritative: a failure here is logged and does not fail the run.
func (p *Pipeline) populateCache(ctx context.Context, key string, raw []tmdb.RawRecord) {
	ttl := p.CacheTTL
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if err := p.Cache.Set(ctx, key, raw, ttl); err != nil {
		p.Log.Warn("cache populate failed", zap.String("key", key), zap.Error(err))
	}
}

func (p *Pipeline) countWriteFailure(cat tmdb.Category) {
	if p.Metrics != nil {
		p.Metrics.WriteFailed.WithLabelValues(string(cat)).Inc()
	}
}
