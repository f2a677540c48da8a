package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"promocast.app/engine/common/id"
	"promocast.app/engine/common/logger"
	"promocast.app/engine/common/otel"
	"promocast.app/engine/core/config"
	"promocast.app/engine/internal/backend"
	"promocast.app/engine/internal/http/handler"
	"promocast.app/engine/internal/http/middleware"
	httprouter "promocast.app/engine/internal/http/router"
	"promocast.app/engine/internal/publish"
	"promocast.app/engine/internal/workspace"
)

func main() {
	fmt.Printf("%s\n", banner)
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel must init before logger (logger uses OTel provider in production)
	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}

	slog.InfoContext(ctx, "engine starting", "env", cfg.Env, "backend", cfg.Backend.BaseURL)
	if err := id.Init(1); err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	client := backend.NewClient(cfg.Backend)

	store := workspace.NewStore(client, nil, workspace.Options{
		Autosave:      cfg.Autosave,
		ConfigTimeout: cfg.Backend.ConfigTimeout,
	})
	defer store.Close()

	var consumer *publish.ResultsConsumer
	if cfg.Results.Enabled() {
		redisOpts, err := redis.ParseURL(cfg.Results.RedisURL)
		if err != nil {
			slog.ErrorContext(ctx, "failed to parse redis url", "error", err)
			os.Exit(1)
		}
		redisClient := redis.NewClient(redisOpts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			slog.ErrorContext(ctx, "failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		consumer = publish.NewResultsConsumer(redisClient, cfg.Results)
		slog.InfoContext(ctx, "results stream enabled", "prefix", cfg.Results.StreamPrefix)
	} else {
		slog.InfoContext(ctx, "results stream disabled (no redis url configured)")
	}

	orchestrator := publish.NewOrchestrator(client, store, consumer)
	defer orchestrator.Close()

	// Warm the workspace before the UI asks; the endpoint stays available for
	// re-mounts and is a no-op after this.
	go func() {
		if err := store.Initialize(ctx); err != nil {
			slog.WarnContext(ctx, "startup workspace initialization failed", "error", err)
		}
	}()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := setupRouter(cfg, store, orchestrator, client)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.ErrorContext(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
}

func setupRouter(cfg config.Config, store *workspace.Store, orchestrator *publish.Orchestrator, client *backend.Client) *gin.Engine {
	router := gin.New()

	// Order matters: OTel creates span, Recovery catches panics, Logger logs
	// with trace context
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())

	httprouter.SetupRoutes(router, httprouter.Handlers{
		Workspace: handler.NewWorkspaceHandler(store),
		Publish:   handler.NewPublishHandler(orchestrator),
		Settings:  handler.NewSettingsHandler(store),
		History:   handler.NewHistoryHandler(client),
		Schema:    handler.NewSchemaHandler(),
	})

	return router
}

const banner = `
██████╗ ██████╗  ██████╗ ███╗   ███╗ ██████╗  ██████╗ █████╗ ███████╗████████╗
██╔══██╗██╔══██╗██╔═══██╗████╗ ████║██╔═══██╗██╔════╝██╔══██╗██╔════╝╚══██╔══╝
██████╔╝██████╔╝██║   ██║██╔████╔██║██║   ██║██║     ███████║███████╗   ██║
██╔═══╝ ██╔══██╗██║   ██║██║╚██╔╝██║██║   ██║██║     ██╔══██║╚════██║   ██║
██║     ██║  ██║╚██████╔╝██║ ╚═╝ ██║╚██████╔╝╚██████╗██║  ██║███████║   ██║
╚═╝     ╚═╝  ╚═╝ ╚═════╝ ╚═╝     ╚═╝ ╚═════╝  ╚═════╝╚═╝  ╚═╝╚══════╝   ╚═╝
`
