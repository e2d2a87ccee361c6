package repository

import (
	"context"
	"time"

	"github.com/digkill/TGUpdateStore/internal/database"
	"github.com/digkill/TGUpdateStore/internal/models"
)

// RecordOutboundRequest appends one outbound API call to the request log.
func (s *Store) RecordOutboundRequest(ctx context.Context, method string, target models.RequestTarget) error {
	if err := s.checkConnected(); err != nil {
		return err
	}
	var r row
	r.set("bot_id", s.botID)
	r.set("chat_id", nullString(target.ChatID))
	r.set("inline_message_id", nullString(target.InlineMessageID))
	r.set("method", method)
	r.set("created_at", s.timestamp())

	if _, err := s.db.ExecContext(ctx, s.dialect.Insert(s.tables.RequestLimiter, r.cols), r.args...); err != nil {
		return wrapStorage("insert request log", err)
	}
	return nil
}

// RequestCounters counts recent outbound requests: distinct chats in the last
// second, requests to target in the last second, and requests to the chat in
// the last minute. It only reports; enforcement is up to the caller.
func (s *Store) RequestCounters(ctx context.Context, target models.RequestTarget) (models.RequestCounters, error) {
	if err := s.checkConnected(); err != nil {
		return models.RequestCounters{}, err
	}

	table := database.Quote(s.tables.RequestLimiter)
	query := "SELECT " +
		"(SELECT COUNT(DISTINCT `chat_id`) FROM " + table + " WHERE `bot_id` = ? AND `created_at` >= ?) AS per_second_all, " +
		"(SELECT COUNT(*) FROM " + table + " WHERE `bot_id` = ? AND `created_at` >= ? AND " +
		"((`chat_id` = ? AND `inline_message_id` IS NULL) OR (`inline_message_id` = ? AND `chat_id` IS NULL))) AS per_second, " +
		"(SELECT COUNT(*) FROM " + table + " WHERE `bot_id` = ? AND `created_at` >= ? AND `chat_id` = ?) AS per_minute"

	now := s.now()
	second := database.FormatTime(now.Add(-time.Second))
	minute := database.FormatTime(now.Add(-time.Minute))
	chatID := nullString(target.ChatID)
	inlineID := nullString(target.InlineMessageID)

	var c models.RequestCounters
	err := s.db.QueryRowContext(ctx, query,
		s.botID, second,
		s.botID, second, chatID, inlineID,
		s.botID, minute, chatID,
	).Scan(&c.PerSecondAll, &c.PerSecond, &c.PerMinute)
	if err != nil {
		return models.RequestCounters{}, wrapStorage("count requests", err)
	}
	return c, nil
}
