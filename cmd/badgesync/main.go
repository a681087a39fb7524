package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/use-agent/badgecount/browser"
	"github.com/use-agent/badgecount/config"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	launcher := browser.NewLauncher(browser.OptionsFromConfig(cfg.Browser))

	cmd := newRootCmd(cfg, launcher.OpenSession, os.Stdout, os.Stderr)
	if err := cmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
