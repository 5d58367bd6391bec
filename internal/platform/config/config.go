// Copyright (c) 2026 AgentDesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis) via constructors.
  - Zero Hidden State: No global variables are used to store config.

This ensures the application is Twelve-Factor compliant by storing config in the env.
*/
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/taibuivan/agentdesk/internal/platform/constants"
	"github.com/taibuivan/agentdesk/internal/platform/postgres"
)

// Supported session storage backends.
const (
	SessionStorePostgres = "postgres"
	SessionStoreRedis    = "redis"
)

// # Configuration Schema

// Config holds all runtime configuration for the AgentDesk API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL      string `env:"DATABASE_URL,required,notEmpty"`
	DatabaseMaxConns int32  `env:"DATABASE_MAX_CONNS" envDefault:"25"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Store (Redis). Only required when sessions live in Redis.
	RedisURL string `env:"REDIS_URL"`

	// Sessions
	SessionStore      string        `env:"SESSION_STORE"       envDefault:"postgres"`
	SessionCookieName string        `env:"SESSION_COOKIE_NAME" envDefault:"agentdesk.session_token"`
	SessionTTL        time.Duration `env:"SESSION_TTL"         envDefault:"168h"`
	SessionUpdateAge  time.Duration `env:"SESSION_UPDATE_AGE"  envDefault:"24h"`

	// Page navigation pre-filter
	PublicRoutePrefixes []string `env:"PUBLIC_ROUTE_PREFIXES" envSeparator:"," envDefault:"/login,/signup,/api/auth,/create-organization"`
	AuthPages           []string `env:"AUTH_PAGES"            envSeparator:"," envDefault:"/login,/signup"`
	LoginPath           string   `env:"LOGIN_PATH"            envDefault:"/login"`
	LandingPath         string   `env:"LANDING_PATH"          envDefault:"/dashboard"`

	// WebRoot is the directory holding the pre-built front-end assets.
	WebRoot string `env:"WEB_ROOT" envDefault:"./web/dist"`

	// Cross-Origin Resource Sharing
	ExtraOrigins []string `env:"EXTRA_ORIGINS" envSeparator:","`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks cross-field constraints that struct tags cannot express.
func (c *Config) Validate() error {
	switch c.SessionStore {
	case SessionStorePostgres:
	case SessionStoreRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("config: SESSION_STORE=redis requires REDIS_URL")
		}
	default:
		return fmt.Errorf("config: unsupported SESSION_STORE %q", c.SessionStore)
	}

	if c.SessionCookieName == "" {
		c.SessionCookieName = constants.DefaultSessionCookieName
	}

	if c.SessionTTL <= 0 {
		return fmt.Errorf("config: SESSION_TTL must be positive")
	}

	if c.DatabaseMaxConns < 1 {
		return fmt.Errorf("config: DATABASE_MAX_CONNS must be at least 1")
	}

	return nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// AllowedOrigins returns the extra CORS origins accepted in production.
func (c *Config) AllowedOrigins() []string {
	return c.ExtraOrigins
}

// # Database Settings

// Database derives the explicit connection settings handed to [postgres.NewPool].
func (c *Config) Database() postgres.Config {
	return postgres.Config{
		URL:      c.DatabaseURL,
		SSLMode:  ResolveSSLMode(c.DatabaseURL, c.IsProduction()),
		MaxConns: c.DatabaseMaxConns,
	}
}

// ResolveSSLMode decides the sslmode for a connection string.
//
// An sslmode already present in the string always wins. Otherwise production
// requires TLS and every other environment connects without it.
func ResolveSSLMode(databaseURL string, production bool) string {
	if mode := sslModeFrom(databaseURL); mode != "" {
		return mode
	}

	if production {
		return "require"
	}

	return "disable"
}

// sslModeFrom extracts sslmode from either a URL or a keyword/value DSN.
func sslModeFrom(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		parsed, err := url.Parse(dsn)
		if err != nil {
			return ""
		}
		return parsed.Query().Get("sslmode")
	}

	for _, field := range strings.Fields(dsn) {
		if value, found := strings.CutPrefix(field, "sslmode="); found {
			return value
		}
	}

	return ""
}
