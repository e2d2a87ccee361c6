package repository

import (
	"context"
	"fmt"

	"github.com/digkill/TGUpdateStore/internal/models"
)

// UpdateRecord is the telegram_update row. Exactly one reference is expected
// to be set, matching Kind.
type UpdateRecord struct {
	ID                   int64
	Kind                 models.Kind
	ChatID               int64
	MessageID            int64
	EditedMessageID      int64
	InlineQueryID        string
	ChosenInlineResultID int64
	CallbackQueryID      string
}

func (u UpdateRecord) empty() bool {
	return u.MessageID == 0 && u.EditedMessageID == 0 && u.InlineQueryID == "" &&
		u.ChosenInlineResultID == 0 && u.CallbackQueryID == ""
}

// InsertUpdate records the update once per id; replays are no-ops.
func (s *Store) InsertUpdate(ctx context.Context, u UpdateRecord) error {
	if err := s.checkConnected(); err != nil {
		return err
	}
	if u.ID == 0 || u.empty() {
		return fmt.Errorf("%w: update %d references nothing", models.ErrValidation, u.ID)
	}

	var chatID, messageID any
	if u.MessageID != 0 {
		chatID, messageID = u.ChatID, u.MessageID
	}

	var r row
	r.set("bot_id", s.botID)
	r.set("id", u.ID)
	r.set("kind", string(u.Kind))
	r.set("chat_id", chatID)
	r.set("message_id", messageID)
	r.set("edited_message_id", nullInt64(u.EditedMessageID))
	r.set("inline_query_id", nullString(u.InlineQueryID))
	r.set("chosen_inline_result_id", nullInt64(u.ChosenInlineResultID))
	r.set("callback_query_id", nullString(u.CallbackQueryID))
	r.set("created_at", s.timestamp())

	if _, err := s.db.ExecContext(ctx, s.dialect.InsertIgnore(s.tables.Update, r.cols), r.args...); err != nil {
		return wrapStorage("insert update", err)
	}
	return nil
}
