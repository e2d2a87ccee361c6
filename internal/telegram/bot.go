package telegram

import (
	"context"
	"errors"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/digkill/TGUpdateStore/internal/models"
)

// Poller is the long-polling part of *tgbotapi.BotAPI.
type Poller interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

type UpdateProcessor interface {
	Process(ctx context.Context, u models.Update) error
}

// Archive keeps a copy of every raw update.
type Archive interface {
	Put(ctx context.Context, updateID int64, raw []byte) error
}

type Bot struct {
	api         Poller
	log         *slog.Logger
	updates     UpdateProcessor
	archive     Archive
	pollTimeout int
}

// NewBot wires the ingestion loop. archive may be nil.
func NewBot(api Poller, log *slog.Logger, updates UpdateProcessor, archive Archive, pollTimeout int) *Bot {
	return &Bot{
		api:         api,
		log:         log,
		updates:     updates,
		archive:     archive,
		pollTimeout: pollTimeout,
	}
}

func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.pollTimeout

	updates := b.api.GetUpdatesChan(u)
	b.log.Info("telegram polling started")

	for {
		select {
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			raw, parsed, err := FromAPI(update)
			if err != nil {
				updatesTotal.WithLabelValues("unknown", "invalid").Inc()
				b.log.Error("convert update", "update_id", update.UpdateID, "err", err)
				continue
			}
			b.handle(ctx, raw, parsed)
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		}
	}
}

// HandleRaw ingests one update delivered as Bot API JSON, e.g. by a webhook.
func (b *Bot) HandleRaw(ctx context.Context, raw []byte) error {
	parsed, err := models.ParseUpdate(raw)
	if err != nil {
		updatesTotal.WithLabelValues("unknown", "invalid").Inc()
		return err
	}
	return b.handle(ctx, raw, parsed)
}

func (b *Bot) handle(ctx context.Context, raw []byte, u models.Update) error {
	kind := kindLabel(string(u.Kind()))

	if b.archive != nil {
		if err := b.archive.Put(ctx, u.ID, raw); err != nil {
			b.log.Error("archive update", "update_id", u.ID, "err", err)
		}
	}

	if u.Event == nil {
		updatesTotal.WithLabelValues(kind, "skipped").Inc()
		b.log.Debug("update kind not stored", "update_id", u.ID)
		return nil
	}

	if err := b.updates.Process(ctx, u); err != nil {
		result := "error"
		if errors.Is(err, models.ErrValidation) {
			result = "invalid"
		}
		updatesTotal.WithLabelValues(kind, result).Inc()
		b.log.Error("process update", "update_id", u.ID, "kind", kind, "err", err)
		return err
	}
	updatesTotal.WithLabelValues(kind, "stored").Inc()
	return nil
}
