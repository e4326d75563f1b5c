// Command panel-mcp serves read-only operations of the configured panels
// as MCP tools over streamable HTTP.
//
// Configuration is read by pkg/config: OPEX_CONFIG, ./opex.yaml or
// /etc/opex/config.yaml, overridden by OPEX_LISTEN, OPEX_LOG_LEVEL,
// OPEX_DEBUG, OPEX_PANELS and OPEX_API_KEYS.
//
// Endpoints:
//
//	/mcp      - MCP streamable HTTP endpoint
//	/healthz  - liveness
//	/readyz   - ready once every profile has logged in at least once
//	/metrics  - Prometheus metrics (observability.metrics.path)
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

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rhuss/opexcore/pkg/auth"
	"github.com/rhuss/opexcore/pkg/auth/apikey"
	"github.com/rhuss/opexcore/pkg/config"
	"github.com/rhuss/opexcore/pkg/debug"
	"github.com/rhuss/opexcore/pkg/fleet"
	"github.com/rhuss/opexcore/pkg/observability"
	_ "github.com/rhuss/opexcore/pkg/panel/all"
	"github.com/rhuss/opexcore/pkg/tools"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		slog.Error("panel-mcp failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load("")
	if err != nil {
		return err
	}
	debug.Init(cfg.Log.Debug, cfg.Log.Level)

	f, err := fleet.New(cfg.Panels)
	if err != nil {
		return fmt.Errorf("building panels: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// A panel that is down at startup is retried on first use.
	loginCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	if err := f.LoginAll(loginCtx); err != nil {
		slog.Warn("some panels are not logged in", "error", err)
	}
	cancel()

	srv := &http.Server{
		Addr:         cfg.Server.Listen,
		Handler:      observability.MetricsMiddleware(newMux(cfg, f)),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("panel-mcp starting",
			"listen", cfg.Server.Listen,
			"version", version,
			"profiles", f.Names(),
			"auth", cfg.Auth.Type,
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func newMux(cfg *config.Config, f *fleet.Fleet) *http.ServeMux {
	mux := http.NewServeMux()

	bypass := []string{"/healthz", "/readyz"}
	if cfg.Observability.Metrics.Enabled {
		mux.Handle("GET "+cfg.Observability.Metrics.Path, promhttp.Handler())
		bypass = append(bypass, cfg.Observability.Metrics.Path)
	}

	var limiter auth.RateLimiter
	if cfg.Auth.RequestsPerMinute > 0 || cfg.Auth.Type == "apikey" {
		limiter = auth.NewSubjectLimiter(cfg.Auth.RequestsPerMinute)
	}
	mcpHandler := tools.New(f, version).Handler()
	mux.Handle("/mcp", auth.Middleware(authChain(cfg), limiter, bypass)(mcpHandler))

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	})
	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		for _, name := range f.Names() {
			m, _ := f.Member(name)
			if m.Cached() == nil {
				http.Error(w, "profile "+name+" not logged in", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	})

	return mux
}

func authChain(cfg *config.Config) *auth.AuthChain {
	if cfg.Auth.Type != "apikey" {
		return &auth.AuthChain{DefaultDecision: auth.Yes}
	}
	entries := make([]apikey.RawKeyEntry, 0, len(cfg.Auth.APIKeys))
	for _, k := range cfg.Auth.APIKeys {
		entries = append(entries, apikey.RawKeyEntry{
			Key: k.Key,
			Identity: auth.Identity{
				Subject:           k.Subject,
				Profiles:          k.Profiles,
				RequestsPerMinute: k.RequestsPerMinute,
			},
		})
	}
	return &auth.AuthChain{
		Authenticators:  []auth.Authenticator{apikey.New(entries)},
		DefaultDecision: auth.No,
	}
}
