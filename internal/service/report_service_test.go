package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digkill/TGUpdateStore/internal/database"
	"github.com/digkill/TGUpdateStore/internal/models"
	"github.com/digkill/TGUpdateStore/internal/repository"
)

func TestReportService_ChatsAndCounters(t *testing.T) {
	store, _ := newSQLiteStore(t)
	ctx := context.Background()
	require.NoError(t, store.UpsertChat(ctx, &models.Chat{ID: -1, Type: models.ChatTypeGroup, Title: "g"}, time.Time{}, nil))
	require.NoError(t, store.RecordOutboundRequest(ctx, "sendMessage", models.RequestTarget{ChatID: "-1"}))

	svc := NewReportService(store)
	rows, err := svc.Chats(ctx, models.ChatFilter{Groups: true})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(-1), rows[0]["chat_id"])

	c, err := svc.Counters(ctx, models.RequestTarget{ChatID: "-1"})
	require.NoError(t, err)
	assert.Equal(t, 1, c.PerSecond)
	assert.Equal(t, 1, c.PerMinute)
}

func TestReportService_WrapsNotConnected(t *testing.T) {
	svc := NewReportService(repository.NewStore(nil, database.SQLite, database.NewTables(""), 1))
	_, err := svc.Chats(context.Background(), models.AllChats())
	assert.True(t, errors.Is(err, repository.ErrNotConnected))
}

type fakeSender struct {
	sent []int64
	fail map[int64]error
}

func (f *fakeSender) SendText(_ context.Context, chatID int64, _ string) error {
	if err := f.fail[chatID]; err != nil {
		return err
	}
	f.sent = append(f.sent, chatID)
	return nil
}

type staticChats []repository.Row

func (s staticChats) SelectChats(context.Context, models.ChatFilter) ([]repository.Row, error) {
	return s, nil
}

func (s staticChats) RequestCounters(context.Context, models.RequestTarget) (models.RequestCounters, error) {
	return models.RequestCounters{}, nil
}

func TestBroadcastService(t *testing.T) {
	chats := staticChats{{"chat_id": int64(1)}, {"chat_id": int64(2)}, {"chat_id": int64(3)}}
	sender := &fakeSender{fail: map[int64]error{2: errors.New("blocked")}}
	svc := NewBroadcastService(discardLogger(), chats, sender)

	res, err := svc.Broadcast(context.Background(), models.AllChats(), "hi")
	require.NoError(t, err)
	assert.Equal(t, BroadcastResult{Sent: 2, Total: 3}, res)
	assert.Equal(t, []int64{1, 3}, sender.sent)

	_, err = svc.Broadcast(context.Background(), models.AllChats(), "  ")
	assert.ErrorIs(t, err, models.ErrValidation)

	sender.fail[3] = context.Canceled
	res, err = svc.Broadcast(context.Background(), models.AllChats(), "hi")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, res.Sent)
}
