package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"

	mcpadapter "github.com/MagicMike0112/Project-Study-BSH/internal/adapters/mcp"
	"github.com/MagicMike0112/Project-Study-BSH/internal/bootstrap"
	"github.com/MagicMike0112/Project-Study-BSH/internal/config"
	"github.com/MagicMike0112/Project-Study-BSH/internal/observability/logging"
)

var version = "dev"

func main() {
	cfg := config.Load()
	// stdout carries the protocol.
	logger := logging.NewJSONLoggerTo(os.Stderr, "mcp", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Scan jobs stay with the API; the tools run synchronously.
	cfg.AsyncScansEnabled = false
	app, err := bootstrap.New(ctx, cfg, bootstrap.Options{Logger: logger})
	if err != nil {
		logger.Error("bootstrap.failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	srv := mcpadapter.NewServer(mcpadapter.ServerConfig{
		Expiry:  app.Expiry,
		Scanner: app.Scanner,
		Version: version,
		Logger:  logger,
	})
	logger.Info("mcp.serving", "transport", "stdio")
	if err := server.ServeStdio(srv); err != nil {
		logger.Error("mcp.serve.failed", "error", err)
		os.Exit(1)
	}
}
