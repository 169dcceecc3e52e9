package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/taskwell/taskwell/internal/config"
	"github.com/taskwell/taskwell/internal/daemon"
	"github.com/taskwell/taskwell/internal/logging"
)

func main() {
	ctx, cancel := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		slog.Error("failed to create data directory", "error", err)
		os.Exit(1)
	}

	if err := logging.Init(cfg.DataDir, cfg.Logging.Level); err != nil {
		slog.Error("failed to initialize logging", "error", err)
		os.Exit(1)
	}

	server, err := daemon.NewServer(cfg.SocketPath())
	if err != nil {
		slog.Error("failed to create hub", "error", err)
		os.Exit(1)
	}

	slog.Info("taskwell hub starting", "socket_path", cfg.SocketPath(), "pid", os.Getpid())

	if err := server.Start(ctx); err != nil {
		slog.Error("hub error", "error", err)
		os.Exit(1)
	}

	slog.Info("taskwell hub shutting down gracefully")
}
