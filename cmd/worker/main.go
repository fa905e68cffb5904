// File: cmd/worker/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"telegram-media-publisher/internal/config"
	"telegram-media-publisher/internal/domain/ports/repository"
	"telegram-media-publisher/internal/infra/db"
	pg "telegram-media-publisher/internal/infra/db/postgres"
	"telegram-media-publisher/internal/infra/logging"
	"telegram-media-publisher/internal/infra/metrics"
	red "telegram-media-publisher/internal/infra/redis"
	"telegram-media-publisher/internal/infra/remux"
	tele "telegram-media-publisher/internal/infra/telegram"
	"telegram-media-publisher/internal/infra/web"
	"telegram-media-publisher/internal/infra/worker"
	"telegram-media-publisher/internal/thumbnail"
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

	metrics.MustRegister()

	if err := cfg.Worker.EnsureDirs(); err != nil {
		log.Fatalf("scratch dirs: %v", err)
	}

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer redisClient.Close()

	queue := red.NewJobQueue(redisClient, cfg.Redis.QueueKey, cfg.Redis.LeaseTTL)
	dests := red.NewDestinationRepo(redisClient, "")

	// ---- Delivery archive (optional Postgres) ----
	var archive repository.DeliveryArchive = db.NoopArchive{}
	if cfg.Database.URL != "" {
		pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 5)
		if err != nil {
			log.Fatalf("postgres: %v", err)
		}
		defer pool.Close()

		repo := pg.NewDeliveryArchiveRepo(pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			log.Fatalf("archive schema: %v", err)
		}
		archive = repo
		logger.Info().Msg("delivery archive enabled")
	} else {
		logger.Warn().Msg("database.url not set, delivery history will not be kept")
	}

	// ---- Telegram (download + delivery only, no polling) ----
	botAdapter, err := tele.NewRealBotAdapter(&cfg.Bot, nil, logger)
	if err != nil {
		log.Fatalf("telegram: %v", err)
	}

	// ---- Pipeline adapters ----
	renderer, err := thumbnail.NewCompositor(logger)
	if err != nil {
		log.Fatalf("thumbnail: %v", err)
	}
	remuxer := remux.NewFFmpeg(cfg.Worker.FFmpegBin, logger)

	// ---- Ops API ----
	opsUC := usecase.NewOpsUseCase(queue, dests, archive, logger)
	auth := web.NewAuthManager(cfg.Ops.JWTSecret, !cfg.Runtime.Dev, cfg.Ops.SessionTTL)
	srv := web.NewServer(opsUC, cfg.Ops.APIKey, auth, logger)
	httpServer := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Ops.Port), Handler: srv.Router()}
	go func() {
		logger.Info().Str("addr", httpServer.Addr).Msg("ops API listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("ops API server")
		}
	}()

	// ---- Processor ----
	proc := worker.NewMediaJobProcessor(queue, dests, archive, botAdapter, renderer, remuxer, cfg.Worker, logger)
	go func() {
		if err := proc.Run(ctx); err != nil {
			logger.Error().Err(err).Msg("processor stopped")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = httpServer.Shutdown(shutdownCtx)
}
