// Package main runs the video API: HTTP routes, the /ws realtime endpoint
// and the Prometheus /metrics endpoint.
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/emilythestrangee/vidtube/backend/internal/config"
	"github.com/emilythestrangee/vidtube/backend/internal/database"
	"github.com/emilythestrangee/vidtube/backend/internal/handlers"
	"github.com/emilythestrangee/vidtube/backend/internal/logging"
	"github.com/emilythestrangee/vidtube/backend/internal/media"
	"github.com/emilythestrangee/vidtube/backend/internal/observability"
	"github.com/emilythestrangee/vidtube/backend/internal/server"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := logging.New(cfg.LogLevel, cfg.IsProduction())
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	shutdownTracer, err := observability.InitTracer(ctx, cfg.OTLPEndpoint)
	if err != nil {
		return err
	}
	defer shutdownTracer(context.Background())

	db, err := database.New(cfg.DB, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	var uploader handlers.Uploader
	if cfg.S3.Enabled() {
		s3Uploader, err := media.NewS3Uploader(ctx, cfg.S3)
		if err != nil {
			return err
		}
		uploader = s3Uploader
		logger.Info("media uploads enabled", "bucket", cfg.S3.Bucket)
	} else {
		logger.Warn("AWS_REGION or AWS_BUCKET_NAME not set, uploads are disabled")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	srv := server.New(cfg, db, uploader, reg)
	go srv.Limiter().Cleanup(ctx, time.Minute)

	httpServer := srv.HTTPServer()
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", httpServer.Addr, "env", cfg.AppEnv)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
