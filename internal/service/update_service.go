package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/digkill/TGUpdateStore/internal/database"
	"github.com/digkill/TGUpdateStore/internal/models"
	"github.com/digkill/TGUpdateStore/internal/repository"
)

// UpdateStore is the part of repository.Store the normalizer writes through.
type UpdateStore interface {
	InsertMessage(ctx context.Context, msg *models.Message) error
	AppendEditedMessage(ctx context.Context, msg *models.Message, editedAt time.Time) (int64, error)
	InsertInlineQuery(ctx context.Context, q *models.InlineQuery) error
	InsertChosenInlineResult(ctx context.Context, res *models.ChosenInlineResult) (int64, error)
	InsertCallbackQuery(ctx context.Context, q *models.CallbackQuery) error
	InsertUpdate(ctx context.Context, u repository.UpdateRecord) error
}

type UpdateService struct {
	log   *slog.Logger
	store UpdateStore
}

func NewUpdateService(log *slog.Logger, store UpdateStore) *UpdateService {
	return &UpdateService{log: log, store: store}
}

// Process stores the update's payload and then the update itself. The update
// row is written only when the payload insert succeeded; replaying an update
// changes nothing.
func (s *UpdateService) Process(ctx context.Context, u models.Update) error {
	if err := u.Validate(); err != nil {
		return err
	}

	rec, err := s.storePayload(ctx, u)
	if err != nil {
		return fmt.Errorf("store %s of update %d: %w", u.Kind(), u.ID, err)
	}
	if err := s.store.InsertUpdate(ctx, rec); err != nil {
		return fmt.Errorf("store update %d: %w", u.ID, err)
	}

	s.log.Debug("update stored", "update_id", u.ID, "kind", u.Kind())
	return nil
}

func (s *UpdateService) storePayload(ctx context.Context, u models.Update) (repository.UpdateRecord, error) {
	rec := repository.UpdateRecord{ID: u.ID, Kind: u.Kind()}

	switch e := u.Event.(type) {
	case models.MessageEvent:
		return s.message(ctx, rec, e.Message)
	case models.ChannelPostEvent:
		return s.message(ctx, rec, e.Message)
	case models.EditedMessageEvent:
		return s.edit(ctx, rec, e.Message)
	case models.EditedChannelPostEvent:
		return s.edit(ctx, rec, e.Message)
	case models.InlineQueryEvent:
		if err := s.store.InsertInlineQuery(ctx, e.Query); err != nil {
			return rec, err
		}
		rec.InlineQueryID = e.Query.ID
	case models.ChosenInlineResultEvent:
		id, err := s.store.InsertChosenInlineResult(ctx, e.Result)
		if err != nil {
			return rec, err
		}
		rec.ChosenInlineResultID = id
	case models.CallbackQueryEvent:
		if err := s.store.InsertCallbackQuery(ctx, e.Query); err != nil {
			return rec, err
		}
		rec.CallbackQueryID = e.Query.ID
	default:
		return rec, fmt.Errorf("%w: unsupported event %T", models.ErrValidation, u.Event)
	}
	return rec, nil
}

func (s *UpdateService) message(ctx context.Context, rec repository.UpdateRecord, msg *models.Message) (repository.UpdateRecord, error) {
	if err := s.store.InsertMessage(ctx, msg); err != nil {
		return rec, err
	}
	rec.ChatID = msg.Chat.ID
	rec.MessageID = msg.MessageID
	return rec, nil
}

func (s *UpdateService) edit(ctx context.Context, rec repository.UpdateRecord, msg *models.Message) (repository.UpdateRecord, error) {
	// A zero time lets the store stamp the edit with its own clock.
	id, err := s.store.AppendEditedMessage(ctx, msg, database.FromEpoch(msg.EditDate, time.Time{}))
	if err != nil {
		return rec, err
	}
	rec.EditedMessageID = id
	return rec, nil
}
