package repository

import (
	"context"
	"strings"

	"github.com/digkill/TGUpdateStore/internal/database"
	"github.com/digkill/TGUpdateStore/internal/models"
)

// Row is one result row keyed by column alias.
type Row map[string]any

const chatColumns = "c.`id` AS chat_id, c.`type`, c.`title`, c.`username` AS chat_username, " +
	"c.`first_name` AS chat_first_name, c.`last_name` AS chat_last_name, " +
	"c.`all_members_are_administrators`, c.`old_id`, " +
	"c.`created_at` AS chat_created_at, c.`updated_at` AS chat_updated_at"

const userColumns = "u.`id` AS user_id, u.`is_bot`, u.`first_name` AS user_first_name, " +
	"u.`last_name` AS user_last_name, u.`username` AS user_username, u.`language_code`"

// SelectChats lists chats matching filter ordered by last update. A filter
// that includes no chat type yields an empty result without a query.
func (s *Store) SelectChats(ctx context.Context, filter models.ChatFilter) ([]Row, error) {
	if err := s.checkConnected(); err != nil {
		return nil, err
	}
	if filter.Empty() {
		return []Row{}, nil
	}

	query, args := s.chatQuery(filter)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapStorage("select chats", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, wrapStorage("select chats", err)
	}
	result := []Row{}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, wrapStorage("scan chat", err)
		}
		r := make(Row, len(cols))
		for i, col := range cols {
			if b, ok := values[i].([]byte); ok {
				r[col] = string(b)
				continue
			}
			r[col] = values[i]
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapStorage("select chats", err)
	}
	return result, nil
}

func (s *Store) chatQuery(filter models.ChatFilter) (string, []any) {
	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(chatColumns)
	if filter.Users {
		b.WriteString(", ")
		b.WriteString(userColumns)
	}
	b.WriteString(" FROM ")
	b.WriteString(database.Quote(s.tables.Chat))
	b.WriteString(" c")
	if filter.Users {
		b.WriteString(" LEFT JOIN ")
		b.WriteString(database.Quote(s.tables.User))
		b.WriteString(" u ON u.`bot_id` = c.`bot_id` AND u.`id` = c.`id`")
	}

	var types []any
	if filter.Users {
		types = append(types, string(models.ChatTypePrivate))
	}
	if filter.Groups {
		types = append(types, string(models.ChatTypeGroup))
	}
	if filter.Supergroups {
		types = append(types, string(models.ChatTypeSupergroup))
	}
	if filter.Channels {
		types = append(types, string(models.ChatTypeChannel))
	}

	where := []clause{
		cond("c.`bot_id` = ?", s.botID),
		in("c.`type`", types...),
	}
	if filter.UpdatedAfter != nil {
		where = append(where, cond("c.`updated_at` >= ?", database.FormatTime(*filter.UpdatedAfter)))
	}
	if filter.UpdatedBefore != nil {
		where = append(where, cond("c.`updated_at` <= ?", database.FormatTime(*filter.UpdatedBefore)))
	}
	if filter.ChatID != nil {
		where = append(where, cond("c.`id` = ?", *filter.ChatID))
	}
	if filter.Text != "" {
		text := []clause{containsFold(s.dialect, "c.`title`", filter.Text)}
		if filter.Users {
			text = append(text,
				containsFold(s.dialect, "u.`first_name`", filter.Text),
				containsFold(s.dialect, "u.`last_name`", filter.Text),
				containsFold(s.dialect, "u.`username`", filter.Text),
			)
		}
		where = append(where, anyOf(text...))
	}

	pred := allOf(where...)
	b.WriteString(" WHERE ")
	b.WriteString(pred.text)
	b.WriteString(" ORDER BY c.`updated_at` ASC")
	return b.String(), pred.args
}
