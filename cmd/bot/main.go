// File: cmd/bot/main.go
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"telegram-media-publisher/internal/application"
	"telegram-media-publisher/internal/caption"
	"telegram-media-publisher/internal/config"
	"telegram-media-publisher/internal/infra/db"
	"telegram-media-publisher/internal/infra/logging"
	red "telegram-media-publisher/internal/infra/redis"
	tele "telegram-media-publisher/internal/infra/telegram"
	"telegram-media-publisher/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (verbose logs, no caption redaction)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("[DEV MODE] enabled")
	}

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer redisClient.Close()

	queue := red.NewJobQueue(redisClient, cfg.Redis.QueueKey, cfg.Redis.LeaseTTL)
	dests := red.NewDestinationRepo(redisClient, "")

	// ---- Use cases ----
	// The intake process never reads the archive; commands only touch the
	// queue and destination.
	submitUC := usecase.NewSubmissionUseCase(queue, caption.NewProcessor(), logger, cfg.Runtime.Dev)
	opsUC := usecase.NewOpsUseCase(queue, dests, db.NoopArchive{}, logger)

	// ---- Facade + Telegram ----
	facade := application.NewBotFacade(submitUC, opsUC)
	botAdapter, err := tele.NewRealBotAdapter(&cfg.Bot, facade, logger)
	if err != nil {
		log.Fatalf("telegram: %v", err)
	}
	go func() {
		if err := botAdapter.StartPolling(ctx); err != nil {
			logger.Error().Err(err).Msg("telegram polling stopped")
		}
	}()
	logger.Info().Int64("owner_id", cfg.Bot.OwnerID).Msg("intake bot started")

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	cancel()
	botAdapter.StopPolling()
}
