package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudboard/cloudboard/config"
	httpx "github.com/cloudboard/cloudboard/internal/http"
)

// Serve starts the HTTP server and blocks until SIGINT/SIGTERM, then shuts
// down gracefully within the configured timeout.
func Serve(cfg *config.AppConfig, svcs *Services, logger *slog.Logger) error {
	server := startServer(logger, buildRouter(cfg, svcs, logger), cfg.HTTP.Addr)
	return waitForShutdown(server, cfg.HTTP.ShutdownTimeout, logger)
}

func buildRouter(cfg *config.AppConfig, svcs *Services, logger *slog.Logger) http.Handler {
	rs := httpx.RouterServices{
		Auth:         svcs.Auth,
		Albums:       svcs.Albums,
		Users:        svcs.Users,
		CookieDomain: cfg.HTTP.CookieDomain,
		Logger:       logger,
	}
	// Assign only when built so the router sees untyped nils and skips
	// the report routes.
	if svcs.Costs != nil {
		rs.Costs = svcs.Costs
	}
	if svcs.Resources != nil {
		rs.Resources = svcs.Resources
	}
	return httpx.NewRouter(rs)
}

func startServer(logger *slog.Logger, handler http.Handler, addr string) *http.Server {
	// Guard against empty addr to avoid listening on Go default
	if addr == "" {
		addr = ":8080"
	}

	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", "error", err)
		}
	}()

	return server
}

func waitForShutdown(server *http.Server, timeout time.Duration, logger *slog.Logger) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	<-quit
	logger.Info("shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	logger.Info("HTTP server stopped")
	return nil
}
