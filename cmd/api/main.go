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

	"github.com/bizmatters/agent-builder/catalog-chatbot/internal/config"
	"github.com/bizmatters/agent-builder/catalog-chatbot/internal/logger"
	"github.com/bizmatters/agent-builder/catalog-chatbot/internal/server"
)

// @title Catalog Chatbot API
// @version 1.0
// @description Conversational assistant for the Tinh Tu Jewelry catalog.
// @description The model picks a catalog operation, the service runs it against the catalog backend, and a second model call phrases the grounded answer.

// @contact.name API Support
// @contact.email support@bizmatters.dev

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:5000
// @BasePath /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT token.

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zl, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	app, err := server.New(cfg, zl)
	if err != nil {
		zl.Fatal("Failed to initialize service", zap.Error(err))
	}

	srv := app.HTTPServer()

	go func() {
		zl.Info("Starting catalog chatbot API server",
			zap.String("port", cfg.Server.Port),
			zap.String("environment", cfg.Environment),
			zap.String("llm_provider", cfg.LLM.Provider),
			zap.String("llm_model", cfg.LLM.Model),
			zap.String("catalog_url", cfg.Catalog.BaseURL),
			zap.Bool("auth_enabled", cfg.Auth.Enabled))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zl.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zl.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := app.Shutdown(ctx); err != nil {
		zl.Warn("Telemetry shutdown incomplete", zap.Error(err))
	}

	zl.Info("Server exited")
}
