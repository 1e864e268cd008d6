// Package server assembles the chat service and its HTTP routes from a
// Config.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"

	"github.com/bizmatters/agent-builder/catalog-chatbot/internal/auth"
	"github.com/bizmatters/agent-builder/catalog-chatbot/internal/catalog"
	"github.com/bizmatters/agent-builder/catalog-chatbot/internal/chat"
	"github.com/bizmatters/agent-builder/catalog-chatbot/internal/composer"
	"github.com/bizmatters/agent-builder/catalog-chatbot/internal/config"
	"github.com/bizmatters/agent-builder/catalog-chatbot/internal/dispatch"
	"github.com/bizmatters/agent-builder/catalog-chatbot/internal/gateway"
	"github.com/bizmatters/agent-builder/catalog-chatbot/internal/llm"
	"github.com/bizmatters/agent-builder/catalog-chatbot/internal/logger"
	"github.com/bizmatters/agent-builder/catalog-chatbot/internal/metrics"

	_ "github.com/bizmatters/agent-builder/catalog-chatbot/docs" // swagger docs
)

// App is a fully wired service.
type App struct {
	Router *gin.Engine
	Chat   *chat.Service

	cfg       *config.Config
	logger    *zap.Logger
	shutdowns []func(context.Context) error
}

// Option customises New.
type Option func(*options)

type options struct {
	model llm.Model
}

// WithModel replaces the configured model adapter.
func WithModel(m llm.Model) Option {
	return func(o *options) { o.model = m }
}

// New wires every component described by cfg.
func New(cfg *config.Config, log *zap.Logger, opts ...Option) (*App, error) {
	log = logger.OrNop(log)
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	app := &App{cfg: cfg, logger: log}

	if cfg.Tracing.Enabled {
		tp, err := newTracerProvider()
		if err != nil {
			return nil, err
		}
		app.shutdowns = append(app.shutdowns, tp.Shutdown)
	}
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{},
	))

	meterProvider, metricsHandler, err := metrics.NewPrometheusProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics exporter: %w", err)
	}
	app.shutdowns = append(app.shutdowns, meterProvider.Shutdown)

	pipelineMetrics, err := metrics.NewPipelineMetrics(meterProvider)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline metrics: %w", err)
	}

	model := o.model
	if model == nil {
		model, err = llm.New(cfg.LLM, log)
		if err != nil {
			return nil, err
		}
	}

	catalogClient := catalog.NewClient(cfg.Catalog.BaseURL, cfg.Catalog.Timeout, log,
		catalog.WithRecorder(pipelineMetrics))
	router := dispatch.NewRouter(catalogClient, log)
	comp := composer.New(model, cfg.LLM.StoreName, log)
	app.Chat = chat.NewService(model, router, comp, pipelineMetrics, log)

	var tokens *auth.TokenManager
	if cfg.Auth.Enabled {
		tokens, err = auth.NewTokenManager(cfg.Auth.JWTSecret)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize token manager: %w", err)
		}
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(
		gateway.RequestID(),
		gateway.RequestLogger(log),
		gateway.Recovery(log),
		cors.New(corsConfig(cfg.Server.CORSOrigins)),
	)

	// Health checks stay at the root for the platform probes.
	engine.GET("/health", gateway.Health)
	engine.GET("/ready", gateway.Ready(catalogClient))
	engine.GET("/metrics", gin.WrapH(metricsHandler))
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	handler := gateway.NewHandler(app.Chat, log)
	socket := gateway.NewChatSocket(handler, cfg.Server.CORSOrigins)

	v1 := engine.Group("/api/v1")
	v1.Use(auth.Gate(cfg.Auth.Enabled, tokens, log))
	v1.POST("/response", handler.Respond)
	v1.GET("/ws/chat", socket.StreamChat)

	app.Router = engine
	return app, nil
}

// HTTPServer returns an http.Server for the app on the configured port.
func (a *App) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         ":" + a.cfg.Server.Port,
		Handler:      a.Router,
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}
}

// Shutdown flushes telemetry providers.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		if err := a.shutdowns[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func newTracerProvider() (*sdktrace.TracerProvider, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, fmt.Errorf("failed to create stdout exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
	otel.SetTracerProvider(tp)
	return tp, nil
}

func corsConfig(origins []string) cors.Config {
	c := cors.DefaultConfig()
	c.AllowHeaders = append(c.AllowHeaders, "Authorization", gateway.RequestIDHeader)
	c.ExposeHeaders = []string{gateway.RequestIDHeader}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	return c
}
