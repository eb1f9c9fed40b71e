package config

import (
	"fmt"
	"os"
	"time"

	platformcfg "github.com/example/cinewhisper/internal/platform/config"
)

type Config struct {
	App platformcfg.AppConfig

	JWTSecret       []byte
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	RedisURL string
	NATSURL  string
}

func Load() (*Config, error) {
	app, err := platformcfg.Load()
	if err != nil {
		return nil, err
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return &Config{
		App:             app,
		JWTSecret:       []byte(secret),
		AccessTokenTTL:  envDuration("ACCESS_TOKEN_TTL", 3*time.Hour),
		RefreshTokenTTL: envDuration("REFRESH_TOKEN_TTL", 24*time.Hour),
		RedisURL:        os.Getenv("REDIS_URL"),
		NATSURL:         os.Getenv("NATS_URL"),
	}, nil
}

func envDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
