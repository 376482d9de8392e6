package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jaehyuk-lee/infinite_buying_bot/config"
	"github.com/jaehyuk-lee/infinite_buying_bot/data"
	"github.com/jaehyuk-lee/infinite_buying_bot/data/cache"
	"github.com/jaehyuk-lee/infinite_buying_bot/data/repository/postgres"
	"github.com/jaehyuk-lee/infinite_buying_bot/data/session"
	"github.com/jaehyuk-lee/infinite_buying_bot/internal/externalApi/cloudStorageApi/googleDriveApi"
	"github.com/jaehyuk-lee/infinite_buying_bot/internal/reportGenerator/xlsxGenerator"
	"github.com/jaehyuk-lee/infinite_buying_bot/internal/scheduler"
	"github.com/jaehyuk-lee/infinite_buying_bot/internal/service/portfolioService"
	"github.com/jaehyuk-lee/infinite_buying_bot/internal/tgbot"
	"github.com/jaehyuk-lee/infinite_buying_bot/internal/transport/telegram"
)

func main() {
	cfg := config.MustLoad()

	setupLogger(cfg)

	slog.Debug("config", slog.Any("cfg", cfg))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pgClient := data.NewPostgresClient(cfg)
	defer pgClient.Close()

	pgRepo := postgres.New(cfg, pgClient)

	redisClient := data.NewRedisClient(cfg)
	defer redisClient.Close()

	redisCache := cache.NewRedisCache(redisClient, cfg)
	redisSession := session.NewRedisSession(redisClient, cfg)

	reportGenerator := xlsxGenerator.New()

	googleCloudStorage := googleDriveApi.New(ctx, cfg)

	portfolioSrv := portfolioService.New(cfg, pgRepo, redisCache, reportGenerator, googleCloudStorage)

	sched := scheduler.New()
	sched.NewIntervalJob("warm portfolio cache", portfolioSrv.WarmPortfolioCache, cfg.Jobs.WarmPortfolioCacheInterval, true)
	sched.NewIntervalJob("cleanup old reports", portfolioSrv.CleanupOldReports, cfg.Jobs.DriveCleanupInterval, false)
	sched.Start()
	defer sched.Stop()

	tgController := telegram.NewController(portfolioSrv, redisSession)

	tgBot := tgbot.New(cfg, tgController, redisSession)
	tgBot.Start()
	defer tgBot.Stop()

	// Waiting interruption signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	<-interrupt
}

func setupLogger(cfg *config.Config) {
	var logLevel slog.Level

	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warning":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(log)
}
