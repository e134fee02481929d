package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/aliyakundil/Movie-Search-3.5.9.io/internal/config"
	httpserver "github.com/aliyakundil/Movie-Search-3.5.9.io/internal/http"
	"github.com/aliyakundil/Movie-Search-3.5.9.io/internal/repository"
	"github.com/aliyakundil/Movie-Search-3.5.9.io/internal/store"
	"github.com/aliyakundil/Movie-Search-3.5.9.io/internal/tmdb"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	tmdbClient, err := tmdb.NewHTTPClient(
		cfg.TMDBBaseURL,
		cfg.TMDBAPIKey,
		time.Duration(cfg.TMDBTimeoutSecs)*time.Second,
		cfg.TMDBRateLimit,
		logger,
	)
	if err != nil {
		logger.Fatal("init tmdb client", zap.Error(err))
	}

	var (
		st      *store.Store
		ratings repository.RatingStore
	)
	switch cfg.RatingsBackend {
	case config.RatingsPostgres:
		dbCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		st, err = store.New(dbCtx, cfg.DBURL, store.Options{
			MaxConns:        int32(cfg.DBMaxConns),
			MinConns:        int32(cfg.DBMinConns),
			MaxConnIdleTime: time.Duration(cfg.DBMaxIdleSecs) * time.Second,
			MaxConnLifetime: time.Duration(cfg.DBMaxLifeSecs) * time.Second,
			ConnTimeout:     time.Duration(cfg.DBConnTimeout) * time.Second,
			Logger:          logger,
		})
		if err != nil {
			logger.Fatal("connect database", zap.Error(err))
		}
		defer st.Close()
		ratings = repository.NewPostgresRatings(st.Pool())
	case config.RatingsTMDB:
		ratings = repository.NewGuestSessionRatings(tmdbClient)
	default:
		ratings = repository.NewMemoryRatings()
	}
	logger.Info("ratings backend selected", zap.String("backend", cfg.RatingsBackend))

	server := httpserver.New(cfg, st, ratings, tmdbClient, logger)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			serverErrCh <- err
			return
		}
		serverErrCh <- nil
	}()

	select {
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, context.Canceled) {
			logger.Error("server error", zap.Error(err))
		}
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("graceful shutdown error", zap.Error(err))
	}
}
