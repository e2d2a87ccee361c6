package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/digkill/TGUpdateStore/internal/database"
	"github.com/digkill/TGUpdateStore/internal/models"
)

// UpsertUser inserts the user or refreshes its mutable fields. created_at is
// written only by the first insert. When chat is given, the membership row is
// added if absent.
func (s *Store) UpsertUser(ctx context.Context, user *models.User, observedAt time.Time, chat *models.Chat) error {
	if err := s.checkConnected(); err != nil {
		return err
	}
	if user == nil || user.ID == 0 {
		return fmt.Errorf("%w: user without id", models.ErrValidation)
	}

	at := database.FormatTime(s.orNow(observedAt))
	var r row
	r.set("bot_id", s.botID)
	r.set("id", user.ID)
	r.set("is_bot", user.IsBot)
	r.set("username", nullString(user.Username))
	r.set("first_name", user.FirstName)
	r.set("last_name", nullString(user.LastName))
	r.set("language_code", nullString(user.LanguageCode))
	r.set("created_at", at)
	r.set("updated_at", at)

	query := s.dialect.Upsert(s.tables.User, r.cols,
		[]string{"bot_id", "id"},
		[]string{"is_bot", "username", "first_name", "last_name", "language_code", "updated_at"},
	)
	if _, err := s.db.ExecContext(ctx, query, r.args...); err != nil {
		return wrapStorage("upsert user", err)
	}

	if chat == nil {
		return nil
	}
	link := s.dialect.InsertIgnore(s.tables.UserChat, []string{"bot_id", "user_id", "chat_id"})
	if _, err := s.db.ExecContext(ctx, link, s.botID, user.ID, chat.ID); err != nil {
		return wrapStorage("insert user chat", err)
	}
	return nil
}
