// Package main is the entry point for the VagaRoute API server.
// Its sole responsibility is wiring dependencies together and starting the
// server. No business logic belongs here.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql
	"github.com/lmittmann/tint"
	"github.com/pressly/goose/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vagaroute/backend/internal/auth"
	"github.com/vagaroute/backend/internal/config"
	"github.com/vagaroute/backend/internal/feed"
	"github.com/vagaroute/backend/internal/geo"
	"github.com/vagaroute/backend/internal/handler"
	"github.com/vagaroute/backend/internal/images"
	"github.com/vagaroute/backend/internal/middleware"
	"github.com/vagaroute/backend/internal/repo"
	"github.com/vagaroute/backend/internal/service"
	"github.com/vagaroute/backend/migrations"
)

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	// JSON for production log aggregators; the tint text handler for
	// readable local development output.
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	var logHandler slog.Handler
	if cfg.LogFormat == "text" {
		logHandler = tint.NewHandler(os.Stdout, &tint.Options{Level: logLevel})
	} else {
		logHandler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	}
	logger := slog.New(logHandler)
	slog.SetDefault(logger)

	// --- Database ---------------------------------------------------------
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Verify the DB is reachable before accepting traffic.
	if err := pool.Ping(context.Background()); err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	slog.Info("database connection established")

	// Apply pending migrations at boot so a fresh deploy needs no manual
	// schema step. goose needs database/sql, so open a short-lived conn.
	if err := migrate(cfg.DatabaseURL); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// --- Metrics ----------------------------------------------------------
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := middleware.NewMetrics(registry)

	// --- Wiring -----------------------------------------------------------
	hub := feed.NewHub()

	trips := repo.NewTripRepo(pool)
	activities := repo.NewActivityRepo(pool)
	users := repo.NewUserRepo(pool)

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)

	tripService := service.NewTripService(trips, time.Now)
	activityService := service.NewActivityService(trips, activities, hub)
	authService := service.NewAuthService(users, tokens)

	httpClient := &http.Client{Timeout: 10 * time.Second}
	geocoder := geo.NewGeocoder(cfg.NominatimURL, httpClient)
	directions := geo.NewRouter(cfg.ORSBaseURL, cfg.ORSAPIKey, httpClient)
	if cfg.ORSAPIKey == "" {
		slog.Warn("ORS_API_KEY not set; directions requests will fail upstream")
	}
	uploader := images.NewUploader(cfg.CloudinaryURL, cfg.CloudinaryPreset, httpClient)
	if cfg.CloudinaryURL == "" {
		slog.Warn("CLOUDINARY_URL not set; photo uploads will fail upstream")
	}

	server := handler.NewServer(tripService, activityService, authService, hub, geocoder, directions, uploader)

	// --- Router -----------------------------------------------------------
	// Middleware order: RequestID → RealIP → logging → CORS → metrics →
	// Recoverer → body cap, then the routes with JWT auth on the guarded group.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(metrics.Handler)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))

	r.Mount("/", server.Routes(middleware.NewAuthHandler(tokens)))
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	// --- HTTP Server ------------------------------------------------------
	// No WriteTimeout: the activity stream endpoint holds its response open
	// for as long as the client stays subscribed.
	srv := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     r,
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	// Graceful shutdown: wait for an OS signal, then give in-flight requests
	// up to 15 seconds to complete.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// migrate applies all pending embedded migrations.
func migrate(databaseURL string) error {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return err
	}

	results, err := provider.Up(context.Background())
	if err != nil {
		return err
	}
	if len(results) > 0 {
		slog.Info("migrations applied", "count", len(results))
	}
	return nil
}
