package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/digkill/TGUpdateStore/internal/database"
	"github.com/digkill/TGUpdateStore/internal/models"
)

var chatMutableColumns = []string{
	"type", "title", "username", "first_name", "last_name", "all_members_are_administrators", "updated_at",
}

// UpsertChat inserts the chat or refreshes its mutable fields. With a
// migration target the row is written under that id as a supergroup that
// remembers the original id in old_id; the original row is not touched.
func (s *Store) UpsertChat(ctx context.Context, chat *models.Chat, observedAt time.Time, migrateToID *int64) error {
	if err := s.checkConnected(); err != nil {
		return err
	}
	r, err := s.chatRow(chat, observedAt, migrateToID)
	if err != nil {
		return err
	}
	query := s.dialect.Upsert(s.tables.Chat, r.cols, []string{"bot_id", "id"}, chatMutableColumns)
	if _, err := s.db.ExecContext(ctx, query, r.args...); err != nil {
		return wrapStorage("upsert chat", err)
	}
	return nil
}

// EnsureChat inserts the chat only if no row exists for its id.
func (s *Store) EnsureChat(ctx context.Context, chat *models.Chat, observedAt time.Time) error {
	if err := s.checkConnected(); err != nil {
		return err
	}
	r, err := s.chatRow(chat, observedAt, nil)
	if err != nil {
		return err
	}
	query := s.dialect.InsertIgnore(s.tables.Chat, r.cols)
	if _, err := s.db.ExecContext(ctx, query, r.args...); err != nil {
		return wrapStorage("insert chat", err)
	}
	return nil
}

func (s *Store) chatRow(chat *models.Chat, observedAt time.Time, migrateToID *int64) (row, error) {
	if chat == nil || chat.ID == 0 {
		return row{}, fmt.Errorf("%w: chat without id", models.ErrValidation)
	}

	id := chat.ID
	chatType := chat.Type
	var oldID any
	if migrateToID != nil && *migrateToID != 0 {
		id = *migrateToID
		chatType = models.ChatTypeSupergroup
		oldID = chat.ID
	}
	if chatType == "" {
		return row{}, fmt.Errorf("%w: chat %d without type", models.ErrValidation, chat.ID)
	}

	at := database.FormatTime(s.orNow(observedAt))
	var r row
	r.set("bot_id", s.botID)
	r.set("id", id)
	r.set("type", string(chatType))
	r.set("title", chat.Title)
	r.set("username", nullString(chat.Username))
	r.set("first_name", nullString(chat.FirstName))
	r.set("last_name", nullString(chat.LastName))
	r.set("all_members_are_administrators", chat.AllMembersAreAdministrators)
	r.set("created_at", at)
	r.set("updated_at", at)
	r.set("old_id", oldID)
	return r, nil
}
