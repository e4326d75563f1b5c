// Command mock-panel runs a stateful fake panel for local experiments and
// end-to-end checks. It logs in with paneltest.AdminUser and
// paneltest.AdminPassword.
//
// Configuration:
//
//	MOCK_PORT  - Listen port (default: 9090)
//	MOCK_KIND  - Panel kind to imitate (default: marzban)
//	MOCK_USERS - Seeded users (default: 10)
//	MOCK_NODES - Seeded nodes (default: 3)
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rhuss/opexcore/pkg/api"
	"github.com/rhuss/opexcore/pkg/debug"
	"github.com/rhuss/opexcore/pkg/panel/paneltest"
)

func main() {
	if err := run(); err != nil {
		slog.Error("mock panel failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	debug.Init("", "")

	kind, err := api.ParseKind(envOrDefault("MOCK_KIND", string(api.KindMarzban)))
	if err != nil {
		return err
	}
	users, err := envInt("MOCK_USERS", 10)
	if err != nil {
		return err
	}
	nodes, err := envInt("MOCK_NODES", 3)
	if err != nil {
		return err
	}

	handler, err := paneltest.NewHandler(kind, paneltest.Options{Users: users, Nodes: nodes})
	if err != nil {
		return err
	}

	port := envOrDefault("MOCK_PORT", "9090")
	srv := &http.Server{Addr: ":" + port, Handler: handler}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("mock panel starting", "port", port, "kind", kind, "users", users, "nodes", nodes,
			"username", paneltest.AdminUser)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("mock panel shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func envOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func envInt(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s %q", key, v)
	}
	return n, nil
}
