package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/digkill/TGUpdateStore/internal/database"
	"github.com/digkill/TGUpdateStore/internal/models"
)

// AppendEditedMessage stores a new edit of msg and returns its local row id.
// Edits are never merged: every call adds a row.
func (s *Store) AppendEditedMessage(ctx context.Context, msg *models.Message, editedAt time.Time) (int64, error) {
	if err := s.checkConnected(); err != nil {
		return 0, err
	}
	if msg == nil || msg.Chat == nil || msg.MessageID == 0 {
		return 0, fmt.Errorf("%w: edited message without chat or id", models.ErrValidation)
	}

	editedAt = s.orNow(editedAt)
	if err := s.UpsertChat(ctx, msg.Chat, editedAt, nil); err != nil {
		return 0, err
	}
	var userID any
	if msg.From != nil {
		if err := s.UpsertUser(ctx, msg.From, editedAt, msg.Chat); err != nil {
			return 0, err
		}
		userID = msg.From.ID
	}

	entities, err := database.JSONArray(msg.Entities, nil)
	if err != nil {
		return 0, err
	}

	var r row
	r.set("bot_id", s.botID)
	r.set("chat_id", msg.Chat.ID)
	r.set("message_id", msg.MessageID)
	r.set("user_id", userID)
	r.set("edit_date", database.FormatTime(editedAt))
	r.set("text", nullString(msg.Text))
	r.set("entities", entities)
	r.set("caption", nullString(msg.Caption))

	res, err := s.db.ExecContext(ctx, s.dialect.Insert(s.tables.EditedMessage, r.cols), r.args...)
	if err != nil {
		return 0, wrapStorage("insert edited message", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, wrapStorage("edited message id", err)
	}
	return id, nil
}

// EditedMessages lists the stored edits of one message, oldest first.
func (s *Store) EditedMessages(ctx context.Context, chatID, messageID int64) ([]models.EditedMessage, error) {
	if err := s.checkConnected(); err != nil {
		return nil, err
	}
	query := "SELECT `id`, `chat_id`, `message_id`, `user_id`, `edit_date`, `text`, `caption` FROM " +
		database.Quote(s.tables.EditedMessage) +
		" WHERE `bot_id` = ? AND `chat_id` = ? AND `message_id` = ? ORDER BY `id` ASC"

	rows, err := s.db.QueryContext(ctx, query, s.botID, chatID, messageID)
	if err != nil {
		return nil, wrapStorage("select edited messages", err)
	}
	defer rows.Close()

	var edits []models.EditedMessage
	for rows.Next() {
		var (
			e        models.EditedMessage
			userID   *int64
			editDate *string
			text     *string
			caption  *string
		)
		if err := rows.Scan(&e.ID, &e.ChatID, &e.MessageID, &userID, &editDate, &text, &caption); err != nil {
			return nil, wrapStorage("scan edited message", err)
		}
		if userID != nil {
			e.UserID = *userID
		}
		if editDate != nil {
			if e.EditDate, err = database.ParseTime(*editDate); err != nil {
				return nil, err
			}
		}
		if text != nil {
			e.Text = *text
		}
		if caption != nil {
			e.Caption = *caption
		}
		edits = append(edits, e)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapStorage("select edited messages", err)
	}
	return edits, nil
}
