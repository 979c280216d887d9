package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gitactivity/internal/config"
	"gitactivity/internal/handlers"
	"gitactivity/internal/logger"
	"gitactivity/internal/pkg"
	"gitactivity/internal/repo"
	"gitactivity/internal/service"
	"gitactivity/internal/upstream"
)

const (
	requestTimeout     = 30 * time.Second
	serverReadTimeout  = 10 * time.Second
	serverWriteTimeout = 35 * time.Second
	serverIdleTimeout  = 60 * time.Second
	shutdownTimeout    = 10 * time.Second
)

func main() {
	loadedEnv := config.LoadDotEnv()
	cfg := config.FromEnv()
	logger.Configure(cfg.LogLevel, cfg.LogPretty)

	if loadedEnv {
		logger.Infof("Loaded .env file")
	}
	if cfg.UpstreamBaseURL == "" {
		logger.Warnf("UPSTREAM_BASE_URL not set, activity requests will fail")
	}

	logger.Infof("Starting application initialization")

	var archive service.Archive
	var pinger handlers.Pinger
	if cfg.ArchiveEnabled() {
		r, err := openArchive(cfg.DatabaseURL)
		if err != nil {
			logger.Fatalf(err, "Failed to open activity archive")
		}
		defer r.Close()
		archive, pinger = r, r
	} else {
		logger.Infof("DATABASE_URL not set, activity archive disabled")
	}

	src := upstream.New(cfg.UpstreamBaseURL, cfg.UpstreamTimeout)
	svc := service.New(src, archive, pkg.NewLockedRand(), service.Options{
		ActivityDelay: cfg.ActivityDelay,
		StatsDelay:    cfg.StatsDelay,
		StatsSource:   cfg.StatsSource,
	})
	h := handlers.New(svc, pinger)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handlers.NewRouter(h, requestTimeout),
		ReadTimeout:  serverReadTimeout,
		WriteTimeout: serverWriteTimeout,
		IdleTimeout:  serverIdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Infof("Server starting on :%s (stats source: %s)", cfg.Port, cfg.StatsSource)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf(err, "Server failed to start")
		}
	}()

	<-ctx.Done()
	logger.Infof("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf(err, "Graceful shutdown failed")
	}
}

func openArchive(dbURL string) (*repo.Repository, error) {
	if err := repo.RunMigrations(dbURL); err != nil {
		return nil, err
	}

	logger.Infof("Connecting to database")
	r, err := repo.Connect(context.Background(), dbURL)
	if err != nil {
		return nil, err
	}
	logger.Infof("Database connection established")
	return r, nil
}
