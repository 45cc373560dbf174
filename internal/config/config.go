// Package config resolves process configuration from the environment once
// at startup. Services receive plain values; nothing reads the environment
// after construction.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	DatabaseDSN string
	RedisAddr   string // empty disables the resolve cache
	HTTPAddr    string
	Domain      string // public base for shortened URLs
	CodeLength  int

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

func Load() (*Config, error) {
	dsn := os.Getenv("DATABASE_DSN")
	if dsn == "" {
		return nil, fmt.Errorf("DATABASE_DSN not set")
	}

	cfg := &Config{
		DatabaseDSN:     dsn,
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		HTTPAddr:        envOr("HTTP_ADDR", ":8080"),
		Domain:          envOr("DEFAULT_DOMAIN", "http://localhost:8080"),
		CodeLength:      envIntOr("SHORT_CODE_LENGTH", 6),
		MaxOpenConns:    envIntOr("DB_MAX_OPEN_CONNS", 10),
		MaxIdleConns:    envIntOr("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: time.Duration(envIntOr("DB_CONN_MAX_LIFETIME_SECONDS", 3600)) * time.Second,
	}
	if cfg.CodeLength < 1 || cfg.CodeLength > 16 {
		return nil, fmt.Errorf("SHORT_CODE_LENGTH must be between 1 and 16, got %d", cfg.CodeLength)
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
