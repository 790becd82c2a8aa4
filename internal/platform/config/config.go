// Copyright (c) 2026 Tubely. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It loads an optional .env file with 'joho/godotenv' and then maps OS environment
variables into a strongly-typed struct with 'caarlos0/env'.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (stores, tokens, media) via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Store backends.
const (
	BackendMongo    = "mongo"
	BackendPostgres = "postgres"
)

// Media backends.
const (
	MediaMinio = "minio"
	MediaS3    = "s3"
)

// # Configuration Schema

// Config holds all runtime configuration for the Tubely API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"PORT"         envDefault:"8000"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// StoreBackend selects the persistence engine for users, subscriptions and tweets.
	StoreBackend string `env:"STORE_BACKEND" envDefault:"mongo"`

	// Document store (MongoDB)
	MongoURI      string `env:"MONGODB_URI"`
	MongoDatabase string `env:"MONGODB_DATABASE" envDefault:"tubely"`

	// Relational store (PostgreSQL)
	DatabaseURL      string `env:"DATABASE_URL"`
	DatabaseMaxConns int32  `env:"DATABASE_MAX_CONNS" envDefault:"10"`
	MigrationPath    string `env:"MIGRATION_PATH"     envDefault:"./data/migrations"`

	// Key-Value store (Redis), optional
	RedisURL string `env:"REDIS_URL"`

	// Token signing
	AccessTokenSecret  string        `env:"ACCESS_TOKEN_SECRET,required,notEmpty"`
	AccessTokenExpiry  time.Duration `env:"ACCESS_TOKEN_EXPIRY"  envDefault:"15m"`
	RefreshTokenSecret string        `env:"REFRESH_TOKEN_SECRET,required,notEmpty"`
	RefreshTokenExpiry time.Duration `env:"REFRESH_TOKEN_EXPIRY" envDefault:"240h"`

	// Object hosting (MinIO / S3-compatible)
	MediaBackend       string        `env:"MEDIA_BACKEND"         envDefault:"minio"`
	MediaEndpoint      string        `env:"MEDIA_ENDPOINT"`
	MediaRegion        string        `env:"MEDIA_REGION"          envDefault:"us-east-1"`
	MediaAccessKey     string        `env:"MEDIA_ACCESS_KEY"`
	MediaSecretKey     string        `env:"MEDIA_SECRET_KEY"`
	MediaBucket        string        `env:"MEDIA_BUCKET"          envDefault:"tubely"`
	MediaUseSSL        bool          `env:"MEDIA_USE_SSL"         envDefault:"false"`
	MediaPublicBaseURL string        `env:"MEDIA_PUBLIC_BASE_URL"`
	MediaFolder        string        `env:"MEDIA_FOLDER"          envDefault:"tubely"`
	MediaUploadTimeout time.Duration `env:"MEDIA_UPLOAD_TIMEOUT"  envDefault:"30s"`
	UploadTempDir      string        `env:"UPLOAD_TEMP_DIR"       envDefault:"./public/temp"`

	// Cross-Origin Resource Sharing and cookies
	CORSOrigins  []string `env:"CORS_ORIGIN"   envSeparator:","`
	CookieSecure bool     `env:"COOKIE_SECURE" envDefault:"true"`

	// Auth route throttling
	AuthRateLimit  int           `env:"AUTH_RATE_LIMIT"  envDefault:"20"`
	AuthRateWindow time.Duration `env:"AUTH_RATE_WINDOW" envDefault:"1m"`
}

// # Configuration Loading

// Load reads an optional .env file and parses environment variables into a [Config].
func Load() (*Config, error) {

	// A missing .env file is normal outside local development.
	_ = godotenv.Load()

	return Parse()
}

// Parse maps the current environment into a validated [Config].
func Parse() (*Config, error) {
	cfg := &Config{}

	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	cfg.StoreBackend = strings.ToLower(strings.TrimSpace(cfg.StoreBackend))
	cfg.MediaBackend = strings.ToLower(strings.TrimSpace(cfg.MediaBackend))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate enforces the requirements that depend on the selected backends.
func (c *Config) Validate() error {
	var problems []error

	switch c.StoreBackend {
	case BackendMongo:
		if c.MongoURI == "" {
			problems = append(problems, errors.New("MONGODB_URI is required when STORE_BACKEND=mongo"))
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			problems = append(problems, errors.New("DATABASE_URL is required when STORE_BACKEND=postgres"))
		}
	default:
		problems = append(problems, fmt.Errorf("unsupported STORE_BACKEND %q", c.StoreBackend))
	}

	switch c.MediaBackend {
	case MediaMinio:
		if c.MediaEndpoint == "" {
			problems = append(problems, errors.New("MEDIA_ENDPOINT is required when MEDIA_BACKEND=minio"))
		}
	case MediaS3:
	default:
		problems = append(problems, fmt.Errorf("unsupported MEDIA_BACKEND %q", c.MediaBackend))
	}

	// Deletion derives keys from the last two URL segments, so the folder is one segment.
	if c.MediaFolder == "" || strings.ContainsAny(c.MediaFolder, `/\`) || c.MediaFolder == "." || c.MediaFolder == ".." {
		problems = append(problems, fmt.Errorf("MEDIA_FOLDER must be a single path segment, got %q", c.MediaFolder))
	}

	if c.AccessTokenSecret == c.RefreshTokenSecret {
		problems = append(problems, errors.New("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must differ"))
	}

	if c.AccessTokenExpiry <= 0 || c.RefreshTokenExpiry <= 0 {
		problems = append(problems, errors.New("token expiries must be positive"))
	}

	if c.AuthRateLimit <= 0 || c.AuthRateWindow <= 0 {
		problems = append(problems, errors.New("AUTH_RATE_LIMIT and AUTH_RATE_WINDOW must be positive"))
	}

	if len(problems) > 0 {
		return fmt.Errorf("config: %w", errors.Join(problems...))
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

// PublicMediaBaseURL returns the URL prefix under which uploaded objects are served.
func (c *Config) PublicMediaBaseURL() string {
	if c.MediaPublicBaseURL != "" {
		return strings.TrimRight(c.MediaPublicBaseURL, "/")
	}

	scheme := "http"
	if c.MediaUseSSL {
		scheme = "https"
	}

	if c.MediaEndpoint == "" {
		return fmt.Sprintf("https://s3.%s.amazonaws.com", c.MediaRegion)
	}

	return fmt.Sprintf("%s://%s", scheme, strings.TrimRight(c.MediaEndpoint, "/"))
}
