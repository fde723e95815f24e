// Package main provides the entry point for the ordermatters MCP server.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/raphaelgruber/ordermatters/internal/config"
	"github.com/raphaelgruber/ordermatters/internal/dataset"
	"github.com/raphaelgruber/ordermatters/internal/metrics"
	"github.com/raphaelgruber/ordermatters/internal/server"
	"github.com/raphaelgruber/ordermatters/internal/service"
	"github.com/raphaelgruber/ordermatters/internal/tools"
)

const version = "0.1.0"

func main() {
	cfg := config.Load()

	// Setup logger (dual output: stderr text + file JSON)
	logger, cleanup := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
	defer cleanup()

	logger.Info("ordermatters-mcp starting",
		"version", version,
		"data_file", cfg.DataFile,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	data, err := dataset.Load(cfg.DataFile)
	if err != nil {
		logger.Error("failed to load dataset", "error", err)
		os.Exit(1)
	}

	srv := server.New(version, logger)
	srv.Setup(&tools.Dependencies{
		Engine: service.NewEngine(data, metrics.NewCollector()),
		Logger: logger,
	})
	logger.Info("server ready, awaiting connections")

	// Run server (blocks until disconnect or context cancelled)
	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	logger.Info("shutdown complete")
}
