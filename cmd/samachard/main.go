package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samachar-app/samachar/internal/app"
	"github.com/samachar-app/samachar/internal/config"
	"github.com/samachar-app/samachar/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "samachard start failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if _, err := logger.Init(cfg.LogLevel); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	logger.InfoObj("feed warmer starting", "app_meta", map[string]any{
		"app_name": cfg.AppName,
		"env":      cfg.Env,
		"country":  cfg.Country,
		"language": cfg.Language,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	warmer, err := app.NewWarmer(ctx, cfg)
	if err != nil {
		logger.ErrorObj("failed to initialize feed warmer", "error", err.Error())
		return err
	}

	if err := warmer.Run(ctx); err != nil {
		return fmt.Errorf("feed warmer run: %w", err)
	}

	return nil
}
