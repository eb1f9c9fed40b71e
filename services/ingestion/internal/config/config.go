package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	platformcfg "github.com/example/cinewhisper/internal/platform/config"
)

type Config struct {
	App platformcfg.AppConfig

	TMDBBaseURL string
	TMDBAPIKey  string
	TMDBRPS     int

	PageCount     int
	FetchInterval time.Duration

	RedisURL string
	NATSURL  string

	EnableHTTPTriggers bool
}

func Load() (*Config, error) {
	app, err := platformcfg.Load()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		App:           app,
		TMDBBaseURL:   os.Getenv("TMDB_BASE_URL"),
		TMDBAPIKey:    os.Getenv("TMDB_API_KEY"),
		TMDBRPS:       envInt("TMDB_RPS", 4),
		PageCount:     envInt("PAGE_COUNT", 10),
		FetchInterval: envDuration("FETCH_INTERVAL", time.Hour),
		RedisURL:      os.Getenv("REDIS_URL"),
		NATSURL:       os.Getenv("NATS_URL"),
	}
	if v := os.Getenv("ENABLE_HTTP_TRIGGERS"); v == "1" || v == "true" {
		cfg.EnableHTTPTriggers = true
	}

	if cfg.TMDBAPIKey == "" {
		return nil, fmt.Errorf("TMDB_API_KEY is required")
	}
	if cfg.PageCount < 1 {
		return nil, fmt.Errorf("PAGE_COUNT must be positive")
	}
	return cfg, nil
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
