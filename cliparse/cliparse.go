package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port         int    `env:"PORT" envDefault:"3318"`
	DatabaseURL  string `env:"DATABASE_URL"`
	DatabaseType string `env:"DATABASE_TYPE" envDefault:"sqlite"`

	// Identity tokens
	JWTSecret string `env:"JWT_SECRET"`
	JWTIssuer string `env:"JWT_ISSUER"`

	// Live streams
	StreamBuffer       int           `env:"STREAM_BUFFER" envDefault:"16"`
	StreamWriteTimeout time.Duration `env:"STREAM_WRITE_TIMEOUT" envDefault:"5s"`
	StreamKeepAlive    time.Duration `env:"STREAM_KEEPALIVE" envDefault:"15s"`
}

// ParseFlags reads the environment first, then lets CLI flags override it
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("invalid environment: %w", err)
	}

	fs := flag.NewFlagSet("society-live", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", cfg.Port, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", cfg.DatabaseURL, "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", cfg.DatabaseType, "Database type (sqlite or postgres)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", cfg.JWTSecret, "Identity token secret (prefer env)")
	fs.StringVar(&cfg.JWTIssuer, "jwt-issuer", cfg.JWTIssuer, "Expected identity token issuer")

	fs.IntVar(&cfg.StreamBuffer, "stream-buffer", cfg.StreamBuffer, "Queued updates per live subscriber")
	fs.DurationVar(&cfg.StreamWriteTimeout, "stream-write-timeout", cfg.StreamWriteTimeout, "Write timeout for live streams")
	fs.DurationVar(&cfg.StreamKeepAlive, "stream-keepalive", cfg.StreamKeepAlive, "Keep-alive interval for live streams (0 disables)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("invalid port %d", cfg.Port)
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}

	// Secrets - MUST be provided
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET required")
	}

	if cfg.StreamBuffer <= 0 {
		return Config{}, errors.New("stream buffer must be positive")
	}
	if cfg.StreamWriteTimeout <= 0 {
		return Config{}, errors.New("stream write timeout must be positive")
	}
	if cfg.StreamKeepAlive < 0 {
		return Config{}, errors.New("stream keep-alive cannot be negative")
	}

	return cfg, nil
}
