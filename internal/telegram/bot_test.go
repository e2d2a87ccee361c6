package telegram

import (
	"context"
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digkill/TGUpdateStore/internal/models"
)

type fakePoller struct {
	ch      chan tgbotapi.Update
	timeout int
	stopped bool
}

func (p *fakePoller) GetUpdatesChan(cfg tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	p.timeout = cfg.Timeout
	return p.ch
}

func (p *fakePoller) StopReceivingUpdates() {
	p.stopped = true
}

type fakeProcessor struct {
	got []models.Update
	err error
}

func (f *fakeProcessor) Process(_ context.Context, u models.Update) error {
	f.got = append(f.got, u)
	return f.err
}

type fakeArchive struct {
	ids []int64
}

func (f *fakeArchive) Put(_ context.Context, id int64, _ []byte) error {
	f.ids = append(f.ids, id)
	return nil
}

func groupMessage(updateID int64) tgbotapi.Update {
	return tgbotapi.Update{
		UpdateID: int(updateID),
		Message: &tgbotapi.Message{
			MessageID: 5,
			Chat:      &tgbotapi.Chat{ID: -10, Type: "group"},
		},
	}
}

func TestBot_RunProcessesUntilChannelCloses(t *testing.T) {
	poller := &fakePoller{ch: make(chan tgbotapi.Update, 3)}
	proc := &fakeProcessor{}
	archive := &fakeArchive{}
	bot := NewBot(poller, discardLogger(), proc, archive, 30)

	stored := testutil.ToFloat64(updatesTotal.WithLabelValues("message", "stored"))
	skipped := testutil.ToFloat64(updatesTotal.WithLabelValues("unsupported", "skipped"))

	poller.ch <- groupMessage(1)
	poller.ch <- tgbotapi.Update{UpdateID: 2, PollAnswer: &tgbotapi.PollAnswer{PollID: "p"}}
	poller.ch <- groupMessage(3)
	close(poller.ch)

	require.NoError(t, bot.Run(context.Background()))
	assert.Equal(t, 30, poller.timeout)
	require.Len(t, proc.got, 2)
	assert.Equal(t, int64(1), proc.got[0].ID)
	assert.Equal(t, int64(3), proc.got[1].ID)
	assert.Equal(t, []int64{1, 2, 3}, archive.ids)

	assert.Equal(t, stored+2, testutil.ToFloat64(updatesTotal.WithLabelValues("message", "stored")))
	assert.Equal(t, skipped+1, testutil.ToFloat64(updatesTotal.WithLabelValues("unsupported", "skipped")))
}

func TestBot_RunStopsOnCancel(t *testing.T) {
	poller := &fakePoller{ch: make(chan tgbotapi.Update)}
	bot := NewBot(poller, discardLogger(), &fakeProcessor{}, nil, 60)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := bot.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, poller.stopped)
}

func TestBot_HandleRaw(t *testing.T) {
	proc := &fakeProcessor{}
	bot := NewBot(&fakePoller{}, discardLogger(), proc, nil, 60)
	ctx := context.Background()

	require.NoError(t, bot.HandleRaw(ctx, []byte(`{"update_id":9,"inline_query":{"id":"q","from":{"id":1,"is_bot":false,"first_name":"A"},"query":"x","offset":""}}`)))
	require.Len(t, proc.got, 1)
	assert.Equal(t, models.KindInlineQuery, proc.got[0].Kind())

	assert.ErrorIs(t, bot.HandleRaw(ctx, []byte(`{not json`)), models.ErrValidation)
	assert.ErrorIs(t, bot.HandleRaw(ctx, []byte(`{"update_id":"abc","message":{"message_id":1,"date":1,"chat":{"id":1,"type":"private"}}}`)), models.ErrValidation)
	require.Len(t, proc.got, 1)

	invalid := testutil.ToFloat64(updatesTotal.WithLabelValues("message", "invalid"))
	proc.err = models.ErrValidation
	err := bot.HandleRaw(ctx, []byte(`{"update_id":10,"message":{"message_id":1,"date":1,"chat":{"id":1,"type":"private"}}}`))
	assert.True(t, errors.Is(err, models.ErrValidation))
	assert.Equal(t, invalid+1, testutil.ToFloat64(updatesTotal.WithLabelValues("message", "invalid")))
}
