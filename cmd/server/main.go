package main

import (
	"context"
	"os"

	"github.com/dmitrijs2005/stockkeeper/internal/buildinfo"
	"github.com/dmitrijs2005/stockkeeper/internal/logging"
	"github.com/dmitrijs2005/stockkeeper/internal/server"
	"github.com/dmitrijs2005/stockkeeper/internal/server/config"
)

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()
	logger := logging.New(os.Stdout, "json", cfg.LogLevel)

	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "server start failed", "error", err)
		os.Exit(1)
	}

	app.Run(ctx)
}
