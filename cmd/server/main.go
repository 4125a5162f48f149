package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kvr/userdb/internal/config"
	"kvr/userdb/internal/database"
	"kvr/userdb/internal/handlers"
	"kvr/userdb/internal/metrics"
	"kvr/userdb/internal/repositories"
	"kvr/userdb/internal/routers"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// newServer wraps a router with the shared timeouts.
func newServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func publicRouter(userHandler *handlers.UserHandler, cfg *config.Config, logger *zap.Logger) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer, middleware.Timeout(60*time.Second))
	r.Use(metrics.Middleware("public"))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.Write([]byte("ok")) })
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	routers.UserRoutes(r, userHandler, cfg, logger)
	return r
}

func adminRouter(adminHandler *handlers.AdminHandler, adminRepo *repositories.AdminRepository, logger *zap.Logger) *chi.Mux {
	r := chi.NewRouter()

	// The console is a browser client on another origin.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization"},
		AllowCredentials: false,
	}))
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer, middleware.Timeout(60*time.Second))
	r.Use(metrics.Middleware("admin"))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.Write([]byte("ok")) })
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	routers.AdminRoutes(r, adminHandler, adminRepo, logger)
	return r
}

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}
	if cfg.APIKey == "" {
		logger.Warn("API_KEY is not set; every public API request will be rejected with 500")
	}

	db, err := database.Open(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	logger.Info("Database ready",
		zap.String("driver", cfg.DatabaseDriver),
		zap.String("path", cfg.DatabasePath))

	userRepo := &repositories.UserRepository{DB: db}
	adminRepo := &repositories.AdminRepository{DB: db}

	userHandler := handlers.NewUserHandler(userRepo, logger)
	adminHandler := handlers.NewAdminHandler(userRepo, adminRepo, logger)

	publicServer := newServer(":"+cfg.Port, publicRouter(userHandler, cfg, logger))
	adminServer := newServer(":"+cfg.AdminPort, adminRouter(adminHandler, adminRepo, logger))

	go func() {
		logger.Info("Public API listening", zap.String("addr", publicServer.Addr))
		if err := publicServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("public server failed", zap.Error(err))
		}
	}()
	go func() {
		logger.Info("Admin API listening", zap.String("addr", adminServer.Addr))
		if err := adminServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("admin server failed", zap.Error(err))
		}
	}()

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)
	<-shutdownChan

	logger.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := publicServer.Shutdown(ctx); err != nil {
		logger.Error("public server forced to shutdown", zap.Error(err))
	}
	if err := adminServer.Shutdown(ctx); err != nil {
		logger.Error("admin server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
