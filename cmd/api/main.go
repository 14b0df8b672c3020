package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/coachhub/coachhub-api/internal/config"
	"github.com/coachhub/coachhub-api/internal/domain/admin"
	"github.com/coachhub/coachhub-api/internal/domain/navigation"
	"github.com/coachhub/coachhub-api/internal/domain/rbac"
	"github.com/coachhub/coachhub-api/internal/middleware"
	"github.com/coachhub/coachhub-api/internal/pkg/database"
	"github.com/coachhub/coachhub-api/internal/pkg/health"
	"github.com/coachhub/coachhub-api/internal/pkg/jwt"
	"github.com/coachhub/coachhub-api/internal/pkg/logger"
	"github.com/coachhub/coachhub-api/internal/pkg/metrics"
)

const version = "1.0.0"

func main() {
	cfg := config.Load()
	if err := logger.Init(logger.Config{
		Level:       cfg.LogLevel,
		Environment: cfg.Env,
		LogFile:     cfg.LogFile,
	}); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialise logger")
	}

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("Starting CoachHub admin API")

	// A broken permission table must never serve traffic.
	matrix := rbac.DefaultMatrix()
	if err := matrix.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Permission matrix is invalid")
	}

	destinations, err := navigation.LoadFile(cfg.NavigationFile)
	if err != nil {
		log.Fatal().Err(err).Str("file", cfg.NavigationFile).Msg("Failed to load navigation table")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := database.NewPostgres(ctx, cfg.DatabaseURL, database.DefaultPool)
	if err != nil {
		cancel()
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	redisClient, err := database.NewRedis(ctx, cfg.RedisURL)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(redisClient)
	if redisClient == nil {
		log.Warn().Msg("REDIS_URL not set: logout will not revoke sessions")
	}

	registry := prometheus.NewRegistry()
	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.NewMetrics(registry)
	}

	router := newRouter(routerDeps{
		Config:       cfg,
		JWT:          jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL),
		Repo:         admin.NewRepository(db),
		Redis:        redisClient,
		Destinations: destinations,
		Metrics:      m,
		Registry:     registry,
		Health:       health.NewChecker(db, redisClient, matrix, version),
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
		return
	}

	log.Info().Msg("Server exited properly")
}

type routerDeps struct {
	Config       *config.Config
	JWT          *jwt.Service
	Repo         admin.Repository
	Redis        *redis.Client
	Destinations []navigation.Destination
	Metrics      *metrics.Metrics
	Registry     *prometheus.Registry
	Health       *health.Checker
}

func newRouter(d routerDeps) http.Handler {
	sessions := admin.NewSessionStore(d.Redis)
	adminService := admin.NewService(d.Repo, sessions)
	authMiddleware := middleware.Auth(d.JWT, sessions, adminService)

	adminHandler := admin.NewHandler(adminService, d.JWT, d.Destinations, d.Metrics)
	navigationHandler := navigation.NewHandler(d.Destinations)

	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(d.Config.AllowedOrigins))
	if d.Metrics != nil {
		r.Use(metrics.Middleware(d.Metrics))
		r.Handle("/metrics", metrics.Handler(d.Registry))
	}

	r.Get("/health/live", d.Health.Liveness)
	r.Get("/health/ready", d.Health.Readiness)

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.Timeout(20 * time.Second))
		r.Mount("/", adminHandler.Routes(authMiddleware))
		r.With(authMiddleware).Get("/navigation", navigationHandler.List)
	})

	return r
}
