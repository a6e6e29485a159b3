// Package main runs the case tracker API server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aimd54/rocase/internal/api/rest"
	"github.com/aimd54/rocase/internal/auth"
	"github.com/aimd54/rocase/internal/cache"
	"github.com/aimd54/rocase/internal/config"
	"github.com/aimd54/rocase/internal/notify"
	"github.com/aimd54/rocase/internal/repository"
	"github.com/aimd54/rocase/internal/service/audit"
	"github.com/aimd54/rocase/internal/service/cases"
	"github.com/aimd54/rocase/internal/service/evidence"
	"github.com/aimd54/rocase/internal/service/notes"
	"github.com/aimd54/rocase/internal/service/players"
	"github.com/aimd54/rocase/internal/service/requests"
	"github.com/aimd54/rocase/internal/service/scheduler"
	"github.com/aimd54/rocase/internal/service/statistics"
	"github.com/aimd54/rocase/internal/service/users"
	"github.com/aimd54/rocase/internal/storage"
	"github.com/aimd54/rocase/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to the configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	log := logger.Get()
	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("Server stopped with error")
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	log.Info().
		Int("port", cfg.Server.Port).
		Str("environment", cfg.Server.Environment).
		Str("database", cfg.Database.Driver).
		Msg("Starting case tracker")

	db, err := repository.NewDB(&cfg.Database, log.Component("database"))
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close database")
		}
	}()

	if err := repository.Migrate(db, &cfg.Database, log); err != nil {
		return err
	}

	startCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	redisCache, err := cache.New(startCtx, &cfg.Database.Redis, log.Component("cache"))
	cancel()
	if err != nil {
		return err
	}
	defer func() {
		if err := redisCache.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close Redis")
		}
	}()

	sessions, err := auth.NewSessions(cfg.Auth.JWTSecret, cfg.Auth.TokenTTLDuration(), cache.NewRevocations(redisCache))
	if err != nil {
		return err
	}

	var blobs storage.BlobStore
	if cfg.Storage.Cloudinary.Enabled {
		cld, err := storage.NewCloudinary(&cfg.Storage.Cloudinary, log.Component("storage"))
		if err != nil {
			return err
		}
		blobs = cld
	} else {
		log.Warn().Msg("Blob storage disabled, evidence uploads will be rejected")
	}

	store := repository.NewStore(db)
	caseSvc := cases.NewService(store, log.Component("cases"))
	requestSvc := requests.NewService(store, caseSvc, log.Component("requests"))
	statsSvc := statistics.NewService(store, log.Component("statistics"))

	sched := scheduler.NewService(cfg, store.Requests, statsSvc, notify.NewClient(&cfg.Notifications, log.Component("notify")), log.Component("scheduler"))
	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	handler := rest.NewHandler(rest.Services{
		Users:      users.NewService(store, cfg.Auth.OwnerOpenID, log.Component("users")),
		Players:    players.NewService(store, log.Component("players")),
		Cases:      caseSvc,
		Evidence:   evidence.NewService(store, blobs, log.Component("evidence")),
		Notes:      notes.NewService(store, log.Component("notes")),
		Requests:   requestSvc,
		Audit:      audit.NewService(store, log.Component("audit")),
		Statistics: statsSvc,
	}, sessions, cfg.Auth.CookieName, log.Component("api"))
	handler.AddHealthCheck("database", func(context.Context) error { return db.Health() })
	handler.AddHealthCheck("redis", redisCache.Health)

	router := gin.New()
	router.Use(gin.Recovery(), rest.RequestID(), rest.Metrics(), handler.RequestLogger())
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout:      time.Duration(cfg.Server.WriteTimeout) * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	var metricsSrv *http.Server
	if cfg.Metrics.Prometheus.Enabled {
		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Prometheus.Path, promhttp.Handler())
		metricsSrv = &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Metrics.Prometheus.Port),
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			log.Info().Int("port", cfg.Metrics.Prometheus.Port).Str("path", cfg.Metrics.Prometheus.Path).Msg("Metrics server listening")
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("Metrics server failed")
			}
		}()
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("API server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("api server failed: %w", err)
		}
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("Shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(ctx); err != nil {
			log.Warn().Err(err).Msg("Failed to stop metrics server")
		}
	}
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to stop api server: %w", err)
	}

	log.Info().Msg("Server stopped")
	return nil
}
