package repository

import (
	"context"
	"fmt"

	"github.com/digkill/TGUpdateStore/internal/database"
	"github.com/digkill/TGUpdateStore/internal/models"
)

// InsertCallbackQuery records the callback once per id. The attached message
// is stored as a new message the first time it is seen and as an edit after
// that. The lookup and the following write are separate statements, so two
// concurrent callbacks on the same message may both append an edit.
func (s *Store) InsertCallbackQuery(ctx context.Context, q *models.CallbackQuery) error {
	if err := s.checkConnected(); err != nil {
		return err
	}
	if q == nil || q.ID == "" {
		return fmt.Errorf("%w: callback query without id", models.ErrValidation)
	}

	now := s.now()
	var userID any
	if q.From != nil {
		if err := s.UpsertUser(ctx, q.From, now, nil); err != nil {
			return err
		}
		userID = q.From.ID
	}

	var chatID, messageID any
	if msg := q.Message; msg != nil && msg.Chat != nil && msg.MessageID != 0 {
		exists, err := s.MessageExists(ctx, msg.Chat.ID, msg.MessageID)
		if err != nil {
			return err
		}
		if exists {
			if _, err := s.AppendEditedMessage(ctx, msg, database.FromEpoch(msg.EditDate, now)); err != nil {
				return err
			}
		} else if err := s.InsertMessage(ctx, msg); err != nil {
			return err
		}
		chatID, messageID = msg.Chat.ID, msg.MessageID
	}

	var r row
	r.set("bot_id", s.botID)
	r.set("id", q.ID)
	r.set("user_id", userID)
	r.set("chat_id", chatID)
	r.set("message_id", messageID)
	r.set("inline_message_id", nullString(q.InlineMessageID))
	r.set("chat_instance", q.ChatInstance)
	r.set("data", q.Data)
	r.set("game_short_name", q.GameShortName)
	r.set("created_at", database.FormatTime(now))

	if _, err := s.db.ExecContext(ctx, s.dialect.InsertIgnore(s.tables.CallbackQuery, r.cols), r.args...); err != nil {
		return wrapStorage("insert callback query", err)
	}
	return nil
}
