package main

import (
	"log/slog"
	"os"

	"go-watchlist/internal/app"
	"go-watchlist/internal/logger"
)

func main() {
	// Replaced once the configured level and format are known.
	slog.SetDefault(slog.New(logger.NewPrettyHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	application, err := app.New()
	if err != nil {
		slog.Error("failed to initialize application", "error", err)
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		slog.Error("application run failed", "error", err)
		os.Exit(1)
	}
}
