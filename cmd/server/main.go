// Campus Assistant - student portal study assistant server
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ashureev/campus-assistant/internal/api"
	"github.com/ashureev/campus-assistant/internal/assistant"
	"github.com/ashureev/campus-assistant/internal/config"
	"github.com/ashureev/campus-assistant/internal/conversation"
	"github.com/ashureev/campus-assistant/internal/domain"
	"github.com/ashureev/campus-assistant/internal/identity"
	"github.com/ashureev/campus-assistant/internal/middleware"
	"github.com/ashureev/campus-assistant/internal/snapshot"
	"github.com/ashureev/campus-assistant/internal/store"
	"github.com/ashureev/campus-assistant/internal/ticket"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment())

	// Initialize dependencies.
	repo, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()

	if err := repo.Ping(context.Background()); err != nil {
		slog.Error("Database health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database connected")

	var seed *domain.Snapshot
	if cfg.SnapshotPath != "" {
		seed, err = snapshot.Load(cfg.SnapshotPath)
		if err != nil {
			slog.Error("Failed to load snapshot seed", "path", cfg.SnapshotPath, "error", err)
			os.Exit(1)
		}
		slog.Info("Snapshot seed loaded",
			"path", cfg.SnapshotPath,
			"courses", len(seed.Courses),
			"events", len(seed.Events),
		)
	}

	// Initialize services.
	tickets := ticket.NewClient(cfg.TicketAPI.BaseURL, cfg.TicketAPI.AnonKey, cfg.TicketAPI.Timeout)
	cascade := assistant.DefaultCascade()
	if shadowed := cascade.Shadowed(); len(shadowed) > 0 {
		slog.Warn("Cascade rules can never fire", "keys", shadowed)
	}
	responder := assistant.NewResponder(ticket.NewDispatcher(tickets), assistant.Options{
		DisplayLimit: cfg.DisplayLimit,
	})
	svc := conversation.NewService(repo, assistant.New(cascade, responder), tickets)

	// Initialize handlers.
	limiter := httprate.LimitByIP(cfg.RateLimit.RequestsPerWindow, cfg.RateLimit.WindowDuration)
	assistantHandler := api.NewAssistantHandler(svc, seed, limiter)
	healthHandler := api.NewHealthHandler(repo)
	allowedOrigins := cfg.AllowedOrigins()
	wsHandler := api.NewChatSocket(svc, allowedOrigins[0], cfg.IsDevelopment())

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/ping"))
	r.Use(middleware.CORS(allowedOrigins))

	// Public routes.
	healthHandler.RegisterHealth(r)
	r.Handle("/metrics", promhttp.Handler())

	// Student-facing routes carry the anonymous device identity.
	r.Group(func(r chi.Router) {
		r.Use(identity.Middleware(cfg.IsDevelopment()))
		assistantHandler.RegisterRoutes(r)
		r.With(limiter).Get("/ws/assistant", wsHandler.ServeHTTP)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // websocket connections are long-lived
		IdleTimeout:  120 * time.Second,
	}

	// Start TTL worker.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conversation.StartTTLWorker(ctx, svc, cfg.SessionTTL)

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}
