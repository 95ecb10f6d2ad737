// cmd/server/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jason-s-yu/uno/internal/cache"
	"github.com/jason-s-yu/uno/internal/config"
	"github.com/jason-s-yu/uno/internal/game"
	"github.com/jason-s-yu/uno/internal/mcp/domain"
	"github.com/jason-s-yu/uno/internal/mcp/service"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()
	// stdout carries the MCP stream in stdio mode
	logger.SetOutput(os.Stderr)

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Invalid configuration")
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.WithError(err).Warn("Unknown log level, using info")
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps := domain.Deps{
		Store:           game.NewGameStore(),
		Logger:          logger,
		DefaultHandSize: cfg.HandSize,
	}

	if cfg.RedisAddr != "" {
		rdb, err := cache.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			logger.WithError(err).Fatal("Action log unavailable")
		}
		defer rdb.Close()
		actions := cache.NewActionLog(rdb, cfg.QueueName, logger)
		defer actions.Close()
		deps.OnAction = actions.Record
		logger.WithField("queue", cfg.QueueName).Info("Publishing game actions to Redis")
	}

	if err := service.Serve(ctx, cfg, service.NewServer(deps), logger); err != nil {
		logger.WithError(err).Error("Server exited")
		return
	}
	logger.Info("Server stopped")
}
