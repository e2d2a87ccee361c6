package repository

import (
	"context"
	"fmt"

	"github.com/digkill/TGUpdateStore/internal/database"
	"github.com/digkill/TGUpdateStore/internal/models"
)

// InsertInlineQuery records the query once per id after upserting its sender.
func (s *Store) InsertInlineQuery(ctx context.Context, q *models.InlineQuery) error {
	if err := s.checkConnected(); err != nil {
		return err
	}
	if q == nil || q.ID == "" {
		return fmt.Errorf("%w: inline query without id", models.ErrValidation)
	}

	now := s.now()
	var userID any
	if q.From != nil {
		if err := s.UpsertUser(ctx, q.From, now, nil); err != nil {
			return err
		}
		userID = q.From.ID
	}

	var r row
	r.set("bot_id", s.botID)
	r.set("id", q.ID)
	r.set("user_id", userID)
	r.set("location", database.JSONBlob(q.Location))
	r.set("query", q.Query)
	r.set("offset", q.Offset)
	r.set("chat_type", nullString(q.ChatType))
	r.set("created_at", database.FormatTime(now))

	if _, err := s.db.ExecContext(ctx, s.dialect.InsertIgnore(s.tables.InlineQuery, r.cols), r.args...); err != nil {
		return wrapStorage("insert inline query", err)
	}
	return nil
}

// InsertChosenInlineResult appends the chosen result and returns its local
// row id; the platform gives this event no unique id of its own.
func (s *Store) InsertChosenInlineResult(ctx context.Context, res *models.ChosenInlineResult) (int64, error) {
	if err := s.checkConnected(); err != nil {
		return 0, err
	}
	if res == nil {
		return 0, fmt.Errorf("%w: empty chosen inline result", models.ErrValidation)
	}

	now := s.now()
	var userID any
	if res.From != nil {
		if err := s.UpsertUser(ctx, res.From, now, nil); err != nil {
			return 0, err
		}
		userID = res.From.ID
	}

	var r row
	r.set("bot_id", s.botID)
	r.set("result_id", res.ResultID)
	r.set("user_id", userID)
	r.set("location", database.JSONBlob(res.Location))
	r.set("inline_message_id", nullString(res.InlineMessageID))
	r.set("query", res.Query)
	r.set("created_at", database.FormatTime(now))

	out, err := s.db.ExecContext(ctx, s.dialect.Insert(s.tables.ChosenInlineResult, r.cols), r.args...)
	if err != nil {
		return 0, wrapStorage("insert chosen inline result", err)
	}
	id, err := out.LastInsertId()
	if err != nil {
		return 0, wrapStorage("chosen inline result id", err)
	}
	return id, nil
}
