// Package main runs the proxygen REST API server: decklist in, resolved
// card records out, with a SQLite-backed card cache in front of Scryfall.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/mtgproxy/proxygen/internal/api"
	"github.com/mtgproxy/proxygen/internal/cardcache"
	"github.com/mtgproxy/proxygen/internal/resolver"
	"github.com/mtgproxy/proxygen/internal/scryfall"
	"github.com/mtgproxy/proxygen/internal/storage"
)

// Config holds the server's deployment settings, read from PROXYGEN_*
// environment variables.
type Config struct {
	Port            int           `envconfig:"PORT" default:"8080"`
	CachePath       string        `envconfig:"CACHE_PATH"`
	CacheTTL        time.Duration `envconfig:"CACHE_TTL" default:"24h"`
	CacheEnabled    bool          `envconfig:"CACHE_ENABLED" default:"true"`
	ScryfallBaseURL string        `envconfig:"SCRYFALL_BASE_URL"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

func main() {
	var cfg Config
	if err := envconfig.Process("proxygen", &cfg); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	var cache resolver.Cache
	var store storage.Store
	if cfg.CacheEnabled {
		path := cfg.CachePath
		if path == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				logger.Error("failed to locate home directory", "error", err)
				os.Exit(1)
			}
			path = filepath.Join(home, ".proxygen", "card-cache.sqlite")
		}

		sqliteStore, err := storage.OpenSQLite(storage.DefaultSQLiteConfig(path))
		if err != nil {
			// The cache is best-effort; run without one rather than die.
			logger.Warn("failed to open card cache, running uncached", "path", path, "error", err)
		} else {
			store = sqliteStore
			cache = cardcache.New(sqliteStore, logger, cardcache.WithTTL(cfg.CacheTTL))
			logger.Info("card cache ready", "path", path, "ttl", cfg.CacheTTL)
		}
	}
	if store != nil {
		defer func() {
			if err := store.Close(); err != nil {
				logger.Warn("error closing cache store", "error", err)
			}
		}()
	}

	scryfallClient := scryfall.NewClient(scryfall.Options{
		BaseURL: cfg.ScryfallBaseURL,
		Logger:  logger,
	})

	res := resolver.New(cache, scryfallClient, logger)

	server := api.NewServer(&api.Config{Port: cfg.Port}, res, logger)
	if err := server.Start(); err != nil {
		logger.Error("failed to start server", "error", err)
		os.Exit(1)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

// newLogger builds a text slog logger at the configured level.
func newLogger(level string) *slog.Logger {
	var l slog.Level
	switch level {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}
