package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/danielhkuo/society-live/auth"
	"github.com/danielhkuo/society-live/cliparse"
	"github.com/danielhkuo/society-live/db"
	"github.com/danielhkuo/society-live/hub"
	"github.com/danielhkuo/society-live/middleware"
	"github.com/danielhkuo/society-live/router"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Optional .env for local development
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to load .env", "error", err)
	}

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to the database
	dbConn, err := db.Open(ctx, cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer dbConn.Close()

	// Create schema (tables)
	if err := db.CreateSchema(dbConn); err != nil {
		return err
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	store := db.NewStore(dbConn, slog.Default())
	votes := hub.New(store,
		hub.WithLogger(slog.Default().With("component", "hub")),
		hub.WithBufferSize(cfg.StreamBuffer),
		hub.WithWriteTimeout(cfg.StreamWriteTimeout),
		hub.WithKeepAlive(cfg.StreamKeepAlive),
	)
	if _, err := votes.Restore(ctx); err != nil {
		return err
	}

	verifier := auth.NewVerifier(cfg.JWTSecret, cfg.JWTIssuer)
	mux := router.NewRouter(store, votes, verifier)

	server := &http.Server{
		Handler:           middleware.CORS(mux),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("Listening", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		// End live streams first so Shutdown is not held open by them
		if err := votes.Shutdown(shutdownCtx); err != nil {
			slog.Warn("vote hub shutdown incomplete", "error", err)
		}
		return server.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	slog.Info("Server closed")
	return err
}
