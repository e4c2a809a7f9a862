package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/facetdex/internal/config"
	logpkg "github.com/kailas-cloud/facetdex/internal/logger"
	"github.com/kailas-cloud/facetdex/internal/metrics"
	chiTransport "github.com/kailas-cloud/facetdex/internal/transport/chi"
	healthuc "github.com/kailas-cloud/facetdex/internal/usecase/health"
	"github.com/kailas-cloud/facetdex/internal/usecase/panel"
	"github.com/kailas-cloud/facetdex/internal/version"
	"github.com/kailas-cloud/facetdex/internal/view"
)

var portFlag int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the filter panel over HTTP",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&portFlag, "port", 0, "HTTP port (overrides http.port)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	env := resolveEnv()
	cfg, err := loadConfig(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if portFlag > 0 {
		cfg.HTTP.Port = portFlag
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting facetdex panel server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.String("catalog", cfg.Catalog.BaseURL),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics.RegisterPanelMetrics()

	a, err := newApp(ctx, cfg, prometheus.DefaultRegisterer, logger)
	if err != nil {
		return err
	}
	defer a.Close()
	logger.Info("Connected to database")

	tpl, err := view.Parse()
	if err != nil {
		return fmt.Errorf("parse templates: %w", err)
	}

	sessions := panel.NewService(a.deps, func() panel.Renderer { return view.NewResultRenderer(tpl) },
		panel.Config{IdleTimeout: cfg.Session.IdleTimeout(), MaxSessions: cfg.Session.MaxSessions}, logger)
	go sessions.Run(ctx, cfg.Session.SweepInterval())

	healthSvc := healthuc.New(a.store, a.catalog)
	server := chiTransport.NewServer(tpl, healthSvc, chiTransport.ServerConfig{Title: cfg.HTTP.PageTitle}, logger)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      newRouter(server, sessions, cfg.Session, logger),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
	return nil
}

// newRouter mounts the panel routes behind recovery, request logging, sessions and metrics.
func newRouter(server *chiTransport.Server, sessions chiTransport.SessionStore, cfg config.SessionConfig, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.SessionMiddleware(sessions, chiTransport.SessionConfig{
		CookieName: cfg.CookieName,
		Secure:     cfg.CookieSecure,
	}, logger))
	r.Use(metrics.Middleware())
	server.Register(r)
	return r
}
