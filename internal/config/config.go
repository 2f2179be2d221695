// Package config loads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// OIDC holds single sign-on settings. SSO is enabled when Issuer and ClientID
// are both set.
type OIDC struct {
	Issuer       string
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// Enabled reports whether SSO should be offered.
func (o OIDC) Enabled() bool {
	return o.Issuer != "" && o.ClientID != ""
}

// Config is the full runtime configuration.
type Config struct {
	Addr         string
	StoreDriver  string
	MongoURI     string
	MongoDB      string
	DatabaseURL  string
	RedisAddr    string
	RedisPass    string
	RedisDB      int
	SessionTTL   time.Duration
	CookieSecure bool
	LogLevel     string
	LogFormat    string
	OIDC         OIDC
}

// Load reads an optional .env file from the working directory and then the
// process environment. Variables already set in the environment win over the
// file.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function.
func FromEnv(getenv func(string) string) (Config, error) {
	env := func(key, fallback string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return fallback
	}

	cfg := Config{
		Addr:        env("ADDR", ""),
		StoreDriver: env("STORE_DRIVER", DriverMongo),
		MongoURI:    env("MONGODB_URI", "mongodb://127.0.0.1:27017"),
		MongoDB:     env("MONGODB_DATABASE", "taskdb"),
		DatabaseURL: getenv("DATABASE_URL"),
		RedisAddr:   getenv("REDIS_ADDR"),
		RedisPass:   getenv("REDIS_PASSWORD"),
		LogLevel:    env("LOG_LEVEL", "info"),
		LogFormat:   env("LOG_FORMAT", "json"),
		OIDC: OIDC{
			Issuer:       getenv("OIDC_ISSUER"),
			ClientID:     getenv("OIDC_CLIENT_ID"),
			ClientSecret: getenv("OIDC_CLIENT_SECRET"),
			RedirectURL:  getenv("OIDC_REDIRECT_URL"),
		},
	}

	if cfg.Addr == "" {
		cfg.Addr = ":" + env("PORT", "3000")
	}

	var err error
	if cfg.RedisDB, err = strconv.Atoi(env("REDIS_DB", "0")); err != nil {
		return Config{}, fmt.Errorf("REDIS_DB: %w", err)
	}
	if cfg.SessionTTL, err = time.ParseDuration(env("SESSION_TTL", "1h")); err != nil {
		return Config{}, fmt.Errorf("SESSION_TTL: %w", err)
	}
	if cfg.SessionTTL <= 0 {
		return Config{}, fmt.Errorf("SESSION_TTL must be positive, got %s", cfg.SessionTTL)
	}
	if cfg.CookieSecure, err = strconv.ParseBool(env("COOKIE_SECURE", "false")); err != nil {
		return Config{}, fmt.Errorf("COOKIE_SECURE: %w", err)
	}

	switch cfg.StoreDriver {
	case DriverMongo, DriverMemory:
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, errors.New("DATABASE_URL is required for the postgres store")
		}
	default:
		return Config{}, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	if cfg.OIDC.Enabled() && cfg.OIDC.RedirectURL == "" {
		return Config{}, errors.New("OIDC_REDIRECT_URL is required when OIDC is enabled")
	}

	return cfg, nil
}
