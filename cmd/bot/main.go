package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/digkill/TGUpdateStore/internal/admin"
	"github.com/digkill/TGUpdateStore/internal/config"
	"github.com/digkill/TGUpdateStore/internal/database"
	"github.com/digkill/TGUpdateStore/internal/repository"
	"github.com/digkill/TGUpdateStore/internal/service"
	"github.com/digkill/TGUpdateStore/internal/storage"
	"github.com/digkill/TGUpdateStore/internal/telegram"
	"github.com/digkill/TGUpdateStore/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logr := logger.New(cfg.LogLevel)

	db, dialect, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("database connect: %v", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tables := database.NewTables(cfg.TablePrefix)
	if err := database.Migrate(ctx, db, dialect, tables); err != nil {
		log.Fatalf("database migrate: %v", err)
	}

	botAPI, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		log.Fatalf("telegram bot: %v", err)
	}

	store := repository.NewStore(db, dialect, tables, cfg.BotID)

	requester := telegram.NewRequester(botAPI, logr, store, telegram.LimiterConfig{
		Enabled:  cfg.LimiterEnabled,
		Interval: cfg.LimiterInterval,
		Timeout:  cfg.LimiterTimeout,
	})

	updateService := service.NewUpdateService(logr, store)
	reportService := service.NewReportService(store)
	broadcastService := service.NewBroadcastService(logr, store, requester)

	var archive telegram.Archive
	if cfg.ArchiveEnabled() {
		a, err := storage.NewArchive(storage.Config{
			Endpoint:     cfg.S3Endpoint,
			Region:       cfg.S3Region,
			AccessKey:    cfg.S3AccessKey,
			SecretKey:    cfg.S3SecretKey,
			Bucket:       cfg.S3Bucket,
			UsePathStyle: cfg.S3UsePathStyle,
			Prefix:       cfg.S3Prefix,
		})
		if err != nil {
			log.Fatalf("storage archive: %v", err)
		}
		archive = a
	}

	bot := telegram.NewBot(botAPI, logr, updateService, archive, cfg.PollTimeout)

	adminServer := admin.NewServer(admin.Options{
		Addr:          cfg.AdminListenAddr,
		Username:      cfg.AdminUsername,
		Password:      cfg.AdminPassword,
		WebhookSecret: cfg.WebhookSecret,
	}, logr, reportService, broadcastService, bot)
	go func() {
		if err := adminServer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logr.Error("admin server stopped", "err", err)
		}
	}()

	if err := bot.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logr.Error("bot stopped", "err", err)
	}
}
