package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/storykeeper/internal/buildinfo"
	"github.com/dmitrijs2005/storykeeper/internal/logging"
	"github.com/dmitrijs2005/storykeeper/internal/server"
	"github.com/dmitrijs2005/storykeeper/internal/server/config"
)

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	logger := logging.New(os.Stdout, "json", "info")
	cfg := config.LoadConfig()

	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "init failed", "error", err)
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		logger.Error(ctx, "server stopped with error", "error", err)
		os.Exit(1)
	}
}
