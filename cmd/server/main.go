package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/crmdash/backend/internal/config"
	httpapi "github.com/crmdash/backend/internal/http"
	"github.com/crmdash/backend/internal/http/handlers"
	"github.com/crmdash/backend/internal/mirror"
	"github.com/crmdash/backend/internal/snapshot"
	"github.com/crmdash/backend/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	level, _ := zerolog.ParseLevel(cfg.LogLevel)
	logger := log.Level(level).With().Str("service", "crmdash-backend").Logger()

	ctx := context.Background()

	var source snapshot.Source
	var pinger handlers.Pinger
	switch cfg.DataSource {
	case config.SourceDatabase:
		st, err := store.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect db")
		}
		defer st.Close()
		source = st
		pinger = st
		logger.Info().Msg("using database source")
	case config.SourceMirror:
		source = mirror.NewClient(cfg.MirrorBaseURL, cfg.MirrorFolder)
		logger.Info().Str("base_url", cfg.MirrorBaseURL).Msg("using csv mirror source")
	}

	snapshots := &snapshot.Provider{
		Loader: &snapshot.Loader{Source: source, Logger: logger},
		Cache:  snapshot.NewCache(cfg.SnapshotTTL),
	}

	// Warm the cache so the first request does not pay the load.
	warmCtx, cancelWarm := context.WithTimeout(ctx, 2*time.Minute)
	if _, err := snapshots.Snapshot(warmCtx, cfg.ForceReload); err != nil {
		logger.Warn().Err(err).Msg("initial snapshot load failed, will retry on demand")
	}
	cancelWarm()

	router := httpapi.Router(cfg, snapshots, pinger, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShutdown)
	logger.Info().Msg("server stopped")
}
