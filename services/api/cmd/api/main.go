package main

import (
	"context"
	"log"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/example/cinewhisper/internal/platform/analytics"
	"github.com/example/cinewhisper/internal/platform/auth"
	"github.com/example/cinewhisper/internal/platform/cache"
	"github.com/example/cinewhisper/internal/platform/db"
	"github.com/example/cinewhisper/internal/platform/httpserver"
	"github.com/example/cinewhisper/internal/platform/logging"
	"github.com/example/cinewhisper/internal/platform/natsconn"
	"github.com/example/cinewhisper/internal/platform/run"
	"github.com/example/cinewhisper/services/api/internal/config"
	"github.com/example/cinewhisper/services/api/internal/handlers"
	"github.com/example/cinewhisper/services/api/internal/store"
	"github.com/example/cinewhisper/services/api/internal/tokens"
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

	var trendingCache cache.Cache
	if cfg.RedisURL != "" {
		rc, err := cache.NewRedisCache(cfg.RedisURL)
		if err != nil {
			return err
		}
		defer rc.Client.Close()
		trendingCache = rc
	} else {
		logger.Warn("REDIS_URL not set, trending endpoints will serve 404 until ingestion shares a cache")
		trendingCache = cache.NewMemoryCache()
	}

	var publisher *analytics.Publisher
	if nc, err := natsconn.Connect(natsconn.Options{URL: cfg.NATSURL}); err != nil {
		logger.Warn("nats unavailable, analytics disabled", zap.Error(err))
	} else {
		defer nc.Drain()
		if js, err := nc.JetStream(); err == nil {
			publisher = analytics.New(js, logger)
		}
	}

	tokenSvc := tokens.Service{
		Secret:          cfg.JWTSecret,
		AccessTokenTTL:  cfg.AccessTokenTTL,
		RefreshTokenTTL: cfg.RefreshTokenTTL,
	}
	catalog := store.NewPostgresCatalogStore(pool)
	users := store.NewPostgresUserStore(pool)
	favourites := store.NewPostgresFavouriteStore(pool)

	authHandlers := &handlers.Auth{Users: users, Tokens: tokenSvc, Analytics: publisher}
	favHandlers := &handlers.Favourites{Store: favourites, Catalog: catalog, Analytics: publisher}
	requireUser := auth.RequireUser(auth.JWTVerifier{Secret: cfg.JWTSecret})

	r := chi.NewRouter()
	httpserver.SetupRouter(r, httpserver.RouterConfig{
		ReadyFunc: func() error { return pool.Ping(context.Background()) },
	})

	r.Route("/v1", func(r chi.Router) {
		r.Get("/trending/movies", handlers.TrendingMovies(trendingCache))
		r.Get("/trending/tvshows", handlers.TrendingTVShows(trendingCache))

		r.Get("/movies", handlers.ListMovies(catalog))
		r.Get("/movies/{tmdb_id}", handlers.GetMovie(catalog))
		r.Get("/tvshows", handlers.ListTVShows(catalog))
		r.Get("/tvshows/{tmdb_id}", handlers.GetTVShow(catalog))

		r.Post("/auth/register", authHandlers.Register)
		r.Post("/auth/login", authHandlers.Login)
		r.Post("/auth/refresh", authHandlers.Refresh)
		r.Post("/auth/logout", authHandlers.Logout)

		r.Group(func(r chi.Router) {
			r.Use(requireUser)
			r.Get("/me", handlers.Me(users))
			r.Patch("/me", handlers.UpdateMe(users))
			r.Get("/me/favourites", favHandlers.List)
			r.Post("/me/favourites", favHandlers.Add)
			r.Delete("/me/favourites/{favourite_id}", favHandlers.Delete)
		})
	})

	srv := httpserver.New(httpserver.Options{
		Addr:        cfg.App.HTTP.Addr,
		ServiceName: cfg.App.ServiceName,
		Logger:      logger,
		Router:      r,
	})

	errCh := make(chan error, 1)
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
