// cmd/historian/main.go is the asynchronous consumer of the game action queue.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jason-s-yu/uno/internal/cache"
	"github.com/jason-s-yu/uno/internal/config"
	"github.com/jason-s-yu/uno/internal/historian"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Invalid configuration")
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}
	if cfg.RedisAddr == "" {
		logger.Fatal("REDIS_ADDR must be set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb, err := cache.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		logger.WithError(err).Fatal("Redis unavailable")
	}
	defer rdb.Close()

	h := historian.New(rdb, historian.LogSink{Logger: logger}, logger, historian.Options{
		Queue:         cfg.QueueName,
		BatchSize:     cfg.HistorianBatchSize,
		FlushInterval: cfg.HistorianFlushInterval,
		Inactivity:    cfg.GameInactivityTimeout,
	})
	if err := h.Run(ctx); err != nil {
		logger.WithError(err).Error("Historian exited")
	}
}
