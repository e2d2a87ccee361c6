package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/digkill/TGUpdateStore/internal/models"
)

// Sender delivers one text message to a chat.
type Sender interface {
	SendText(ctx context.Context, chatID int64, text string) error
}

type BroadcastResult struct {
	Sent  int `json:"sent"`
	Total int `json:"total"`
}

type BroadcastService struct {
	log    *slog.Logger
	store  ReportStore
	sender Sender
}

func NewBroadcastService(log *slog.Logger, store ReportStore, sender Sender) *BroadcastService {
	return &BroadcastService{log: log, store: store, sender: sender}
}

// Broadcast sends text to every chat the filter selects. A failed send is
// logged and skipped; a cancelled context stops the run.
func (s *BroadcastService) Broadcast(ctx context.Context, filter models.ChatFilter, text string) (BroadcastResult, error) {
	if strings.TrimSpace(text) == "" {
		return BroadcastResult{}, fmt.Errorf("%w: message required", models.ErrValidation)
	}
	rows, err := s.store.SelectChats(ctx, filter)
	if err != nil {
		return BroadcastResult{}, fmt.Errorf("select chats: %w", err)
	}

	res := BroadcastResult{Total: len(rows)}
	for _, row := range rows {
		chatID, ok := row["chat_id"].(int64)
		if !ok {
			continue
		}
		if err := s.sender.SendText(ctx, chatID, text); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return res, err
			}
			s.log.Error("send broadcast", "chat_id", chatID, "err", err)
			continue
		}
		res.Sent++
	}
	return res, nil
}
