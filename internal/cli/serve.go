package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/oldto/oldto/internal/config"
	logpkg "github.com/oldto/oldto/internal/logger"
	"github.com/oldto/oldto/internal/metrics"
	"github.com/oldto/oldto/internal/state"
	chiTransport "github.com/oldto/oldto/internal/transport/chi"
	"github.com/oldto/oldto/internal/version"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the derived photo indices over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(env)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
		if err != nil {
			return fmt.Errorf("creating logger: %w", err)
		}
		defer func() { _ = logger.Sync() }()

		return serve(cfg, logger)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(cfg config.Config, logger *zap.Logger) error {
	logger.Info("Starting oldto API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("geojson", cfg.Data.GeoJSON),
		zap.String("featured", cfg.Data.Featured),
	)

	// Register snapshot metrics explicitly (no init())
	metrics.RegisterSnapshotMetrics()

	holder := state.NewHolder()
	reloader := state.NewReloader(cfg.Data.GeoJSON, cfg.Data.Featured, cfg.Cache.ETagVersion, holder, logger)

	// The first load must succeed; later reload failures keep the last
	// good snapshot serving.
	if _, err := reloader.Reload(); err != nil {
		return fmt.Errorf("initial load: %w", err)
	}

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	chiTransport.NewServer(holder, logger).Register(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Data.Watch {
		go func() {
			if err := reloader.Watch(ctx); err != nil && ctx.Err() == nil {
				logger.Error("file watcher stopped", zap.Error(err))
			}
		}()
	}

	// SIGHUP forces a reload without restarting.
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	go func() {
		for range hup {
			logger.Info("Reloading on SIGHUP")
			if _, err := reloader.Reload(); err != nil {
				metrics.SnapshotReloadFailures.Inc()
				logger.Error("reload failed, keeping previous snapshot", zap.Error(err))
			}
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-quit:
		logger.Info("Received shutdown signal")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}
	logger.Info("Server stopped gracefully")
	return nil
}
