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

	"github.com/use-agent/badgecount/api"
	"github.com/use-agent/badgecount/browser"
	"github.com/use-agent/badgecount/cache"
	"github.com/use-agent/badgecount/config"
	"github.com/use-agent/badgecount/counter"
	"github.com/use-agent/badgecount/logging"
)

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Load()

	// ── 2. Initialise structured logging ────────────────────────────
	logger := logging.Setup(cfg.Log, os.Stdout)
	defer logger.Close()

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	slog.Info("badgecount starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"selector", cfg.Counter.Selector,
		"timeout", cfg.Counter.Timeout,
	)

	// ── 3. Browser launcher and counter ─────────────────────────────
	// Sessions are opened per request; nothing is launched here.
	launcher := browser.NewLauncher(browser.OptionsFromConfig(cfg.Browser))
	ctr := counter.New(cfg.Counter.Selector, cfg.Counter.Timeout)

	// ── 4. Initialise cache ─────────────────────────────────────────
	cc := cache.New(cfg.Cache.MaxEntries)

	// ── 5. Setup router ─────────────────────────────────────────────
	router := api.NewRouter(cfg, launcher.OpenSession, ctr, cc, time.Now())

	// ── 6. Start HTTP server ────────────────────────────────────────
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── 7. Graceful shutdown ────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	// In-flight counts hold a browser for up to the counter timeout.
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Counter.Timeout+5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	slog.Info("badgecount stopped")
}
