// Package main provides the HTTP server for ordermatters: live sessions,
// reference results, statistics and MCP over streamable HTTP.
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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/raphaelgruber/ordermatters/internal/chat"
	"github.com/raphaelgruber/ordermatters/internal/config"
	"github.com/raphaelgruber/ordermatters/internal/dataset"
	"github.com/raphaelgruber/ordermatters/internal/llm"
	"github.com/raphaelgruber/ordermatters/internal/metrics"
	"github.com/raphaelgruber/ordermatters/internal/server"
	"github.com/raphaelgruber/ordermatters/internal/service"
	"github.com/raphaelgruber/ordermatters/internal/tools"
)

const version = "0.1.0"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()

	logger, cleanup := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
	defer cleanup()

	logger.Info("starting ordermatters-server", "version", version, "port", cfg.ServerPort)

	data, err := dataset.Load(cfg.DataFile)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}

	collector := metrics.NewCollector()
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	if err := collector.Register(reg); err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	engine := service.NewEngine(data, collector)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The assistant is optional: sessions work without it.
	var assistant *chat.Assistant
	model, err := llm.NewModel(ctx, cfg, logger)
	if err != nil {
		logger.Warn("language model unavailable, chat disabled", "provider", cfg.LLMProvider, "error", err)
	} else {
		model.WithRecorder(collector)
		assistant = chat.NewAssistant(model, data.BriefingContext(), cfg.LLMTimeout, logger)
		logger.Info("language model ready", "provider", cfg.LLMProvider, "model", model.Model())
	}

	sessions := service.NewSessionManager(engine, assistant, cfg.RandomSeed, logger)

	mcpServer := server.New(version, logger)
	mcpServer.Setup(&tools.Dependencies{Engine: engine, Logger: logger})

	httpServer := &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: server.NewHTTPHandler(server.HTTPOptions{
			Engine:   engine,
			Sessions: sessions,
			Gatherer: reg,
			MCP:      mcpServer,
			Logger:   logger,
		}),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("live sessions available", "url", fmt.Sprintf("ws://localhost:%d/ws", cfg.ServerPort))
		logger.Info("metrics available", "url", fmt.Sprintf("http://localhost:%d/metrics", cfg.ServerPort))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve http: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server...")

		// Graceful shutdown with timeout
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server stopped", "open_sessions", sessions.Count())
	return nil
}
