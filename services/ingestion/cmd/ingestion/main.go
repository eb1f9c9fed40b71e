package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/example/cinewhisper/internal/platform/analytics"
	platformapi "github.com/example/cinewhisper/internal/platform/api"
	"github.com/example/cinewhisper/internal/platform/cache"
	"github.com/example/cinewhisper/internal/platform/db"
	"github.com/example/cinewhisper/internal/platform/httpserver"
	"github.com/example/cinewhisper/internal/platform/logging"
	"github.com/example/cinewhisper/internal/platform/metrics"
	"github.com/example/cinewhisper/internal/platform/natsconn"
	"github.com/example/cinewhisper/internal/platform/run"
	"github.com/example/cinewhisper/services/ingestion/internal/config"
	"github.com/example/cinewhisper/services/ingestion/internal/pipeline"
	"github.com/example/cinewhisper/services/ingestion/internal/queue"
	"github.com/example/cinewhisper/services/ingestion/internal/ratelimit"
	"github.com/example/cinewhisper/services/ingestion/internal/store"
	"github.com/example/cinewhisper/services/ingestion/internal/tmdb"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	runner := run.New(logger)
	run.Exit(runner.WithSignals(func(ctx context.Context) error {
		return start(ctx, cfg, logger)
	}))
}

func start(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	pool, err := db.Open(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	var c cache.Cache
	if cfg.RedisURL != "" {
		rc, err := cache.NewRedisCache(cfg.RedisURL)
		if err != nil {
			return err
		}
		defer rc.Client.Close()
		c = rc
	} else {
		logger.Warn("REDIS_URL not set, using in-process cache")
		c = cache.NewMemoryCache()
	}

	limiter := ratelimit.NewRPS(cfg.TMDBRPS)
	defer limiter.Stop()

	ingestMetrics := metrics.NewIngest()

	p := &pipeline.Pipeline{
		Log:       logger,
		TMDB:      tmdb.New(cfg.TMDBBaseURL, cfg.TMDBAPIKey),
		Store:     store.NewPostgresCatalogStore(pool),
		Cache:     c,
		Limiter:   limiter,
		Metrics:   ingestMetrics,
		PageCount: cfg.PageCount,
	}

	errCh := make(chan error, 3)

	var publisher *analytics.Publisher
	nc, err := natsconn.Connect(natsconn.Options{URL: cfg.NATSURL})
	if err != nil {
		logger.Warn("nats unavailable, queue trigger disabled", zap.Error(err))
	} else {
		defer nc.Drain()
		if js, jsErr := nc.JetStream(); jsErr == nil {
			publisher = analytics.New(js, logger)
		}
	}

	// refresh wraps a pipeline run with the analytics event shared by every
	// trigger path.
	refresh := func(ctx context.Context) (string, error) {
		status, err := p.Run(ctx)
		if err == nil {
			publisher.Publish(analytics.SubjectTrendingRefreshed, "trending_refreshed", "", map[string]any{
				"status": status,
			})
		}
		return status, err
	}

	if nc != nil {
		worker, err := queue.NewWorker(logger, nc, refresh)
		if err != nil {
			return err
		}
		go func() { errCh <- worker.Run(ctx) }()
	}

	if cfg.FetchInterval > 0 {
		go runTicker(ctx, logger, refresh, cfg.FetchInterval)
	}

	r := chi.NewRouter()
	httpserver.SetupRouter(r, httpserver.RouterConfig{
		ReadyFunc:      func() error { return pool.Ping(context.Background()) },
		MetricsHandler: ingestMetrics.Handler(),
	})
	if cfg.EnableHTTPTriggers {
		r.Post("/v1/ingest/trending", func(w http.ResponseWriter, req *http.Request) {
			status, err := refresh(req.Context())
			if err != nil {
				platformapi.Internal(w, httpserver.RequestIDFromContext(req.Context()))
				return
			}
			platformapi.WriteJSON(w, http.StatusOK, map[string]string{"status": status})
		})
	}

	srv := httpserver.New(httpserver.Options{
		Addr:        cfg.App.HTTP.Addr,
		ServiceName: cfg.App.ServiceName,
		Logger:      logger,
		Router:      r,
	})
	go func() { errCh <- srv.Start(logger) }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// runTicker refreshes trending on a fixed interval, independent of queue
// triggers. The first run happens one interval after startup.
func runTicker(ctx context.Context, logger *zap.Logger, refresh func(context.Context) (string, error), interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			status, err := refresh(ctx)
			if err != nil {
				logger.Warn("scheduled refresh aborted", zap.Error(err))
				continue
			}
			logger.Info("scheduled refresh done", zap.String("status", status))
		}
	}
}
