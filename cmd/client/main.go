package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/stockkeeper/internal/buildinfo"
	"github.com/dmitrijs2005/stockkeeper/internal/client/cli"
	"github.com/dmitrijs2005/stockkeeper/internal/client/config"
	"github.com/dmitrijs2005/stockkeeper/internal/logging"
)

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	log := logging.New(os.Stderr, "text", cfg.LogLevel)

	app, err := cli.NewApp(ctx, cfg, log)
	if err != nil {
		log.Error(ctx, "client start failed", "error", err)
		os.Exit(1)
	}

	app.Run(ctx)
}
