package main

import (
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"

	"go-repair-shop/internal/app"
	"go-repair-shop/internal/config"
	"go-repair-shop/internal/logger"
)

func main() {
	slog.SetDefault(slog.New(logger.NewPrettyHandler(os.Stdout, &logger.Options{
		Level:   slog.LevelInfo,
		NoColor: !isatty.IsTerminal(os.Stdout.Fd()),
	})))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(logger.NewPrettyHandler(os.Stdout, &logger.Options{
		Level:   logger.ParseLevel(cfg.LogLevel),
		NoColor: !isatty.IsTerminal(os.Stdout.Fd()),
	})))

	application, err := app.New(cfg)
	if err != nil {
		slog.Error("failed to initialize application", "error", err)
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		slog.Error("application run failed", "error", err)
		os.Exit(1)
	}
}
