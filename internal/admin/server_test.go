package admin

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digkill/TGUpdateStore/internal/config"
	"github.com/digkill/TGUpdateStore/internal/database"
	"github.com/digkill/TGUpdateStore/internal/models"
	"github.com/digkill/TGUpdateStore/internal/repository"
	"github.com/digkill/TGUpdateStore/internal/service"
	"github.com/digkill/TGUpdateStore/internal/telegram"
)

type fakeIngester struct {
	bodies []string
	err    error
}

func (f *fakeIngester) HandleRaw(_ context.Context, raw []byte) error {
	f.bodies = append(f.bodies, string(raw))
	return f.err
}

type fakeSender struct {
	sent []int64
}

func (f *fakeSender) SendText(_ context.Context, chatID int64, _ string) error {
	f.sent = append(f.sent, chatID)
	return nil
}

type testEnv struct {
	srv    *httptest.Server
	store  *repository.Store
	ingest *fakeIngester
	sender *fakeSender
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, dialect, err := database.Connect(config.Config{
		DBDriver:   config.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "admin.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	tables := database.NewTables("")
	require.NoError(t, database.Migrate(context.Background(), db, dialect, tables))

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := repository.NewStore(db, dialect, tables, 1)
	sender := &fakeSender{}
	ingest := &fakeIngester{}
	s := NewServer(
		Options{Username: "admin", Password: "secret", WebhookSecret: "hook"},
		log,
		service.NewReportService(store),
		service.NewBroadcastService(log, store, sender),
		ingest,
	)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return &testEnv{srv: srv, store: store, ingest: ingest, sender: sender}
}

func (e *testEnv) do(t *testing.T, method, path, body string, auth bool) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, e.srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if auth {
		req.SetBasicAuth("admin", "secret")
	}
	resp, err := e.srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (e *testEnv) seed(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range []*models.Chat{
		{ID: -1, Type: models.ChatTypeGroup, Title: "Alpha"},
		{ID: -2, Type: models.ChatTypeChannel, Title: "Beta"},
		{ID: 3, Type: models.ChatTypePrivate, FirstName: "Carol"},
	} {
		require.NoError(t, e.store.UpsertChat(ctx, c, at.Add(time.Duration(i)*time.Hour), nil))
	}
}

func TestServer_RequiresBasicAuth(t *testing.T) {
	env := newTestEnv(t)
	for _, path := range []string{"/chats", "/limits?chat_id=1"} {
		resp := env.do(t, http.MethodGet, path, "", false)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
	}
	resp := env.do(t, http.MethodPost, "/broadcast", `{"message":"x"}`, false)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestServer_ListChats(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t)

	resp := env.do(t, http.MethodGet, "/chats", "", true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var rows []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rows))
	require.Len(t, rows, 3)
	assert.Equal(t, float64(-1), rows[0]["chat_id"])

	q := url.Values{"types": {"groups,channels"}, "updated_after": {"2024-01-01T00:30:00Z"}}
	resp = env.do(t, http.MethodGet, "/chats?"+q.Encode(), "", true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rows = nil
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "Beta", rows[0]["title"])

	resp = env.do(t, http.MethodGet, "/chats?types=robots", "", true)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp = env.do(t, http.MethodGet, "/chats?chat_id=abc", "", true)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_Limits(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.store.RecordOutboundRequest(context.Background(), "sendMessage", models.RequestTarget{ChatID: "5"}))

	resp := env.do(t, http.MethodGet, "/limits?chat_id=5", "", true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got limitsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, limitsResponse{PerSecondAll: 1, PerSecond: 1, PerMinute: 1}, got)

	resp = env.do(t, http.MethodGet, "/limits", "", true)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_Broadcast(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t)

	resp := env.do(t, http.MethodPost, "/broadcast", `{"message":"hello","types":["groups","users"]}`, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var res service.BroadcastResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	assert.Equal(t, service.BroadcastResult{Sent: 2, Total: 2}, res)
	assert.Equal(t, []int64{-1, 3}, env.sender.sent)

	resp = env.do(t, http.MethodPost, "/broadcast", `{"message":" "}`, true)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp = env.do(t, http.MethodPost, "/broadcast", `nope`, true)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_TelegramWebhook(t *testing.T) {
	env := newTestEnv(t)
	body := `{"update_id":1,"message":{"message_id":1,"date":1,"chat":{"id":1,"type":"private"}}}`

	resp := env.do(t, http.MethodPost, "/webhook/telegram", body, false)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	send := func(body string) *http.Response {
		req, err := http.NewRequest(http.MethodPost, env.srv.URL+"/webhook/telegram", strings.NewReader(body))
		require.NoError(t, err)
		req.Header.Set(secretTokenHeader, "hook")
		resp, err := env.srv.Client().Do(req)
		require.NoError(t, err)
		t.Cleanup(func() { _ = resp.Body.Close() })
		return resp
	}

	assert.Equal(t, http.StatusOK, send(body).StatusCode)
	assert.Equal(t, []string{body}, env.ingest.bodies)

	assert.Equal(t, http.StatusBadRequest, send(`{broken`).StatusCode)

	env.ingest.err = models.ErrValidation
	assert.Equal(t, http.StatusOK, send(body).StatusCode)

	env.ingest.err = &repository.StorageError{Op: "insert message", Err: errors.New("down")}
	assert.Equal(t, http.StatusInternalServerError, send(body).StatusCode)
}

func TestServer_TelegramWebhookStoresThroughBot(t *testing.T) {
	env := newTestEnv(t)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	bot := telegram.NewBot(nil, log, service.NewUpdateService(log, env.store), nil, 0)
	s := NewServer(Options{WebhookSecret: "hook"}, log, service.NewReportService(env.store),
		service.NewBroadcastService(log, env.store, env.sender), bot)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	send := func(body string) int {
		req, err := http.NewRequest(http.MethodPost, srv.URL+"/webhook/telegram", strings.NewReader(body))
		require.NoError(t, err)
		req.Header.Set(secretTokenHeader, "hook")
		resp, err := srv.Client().Do(req)
		require.NoError(t, err)
		_ = resp.Body.Close()
		return resp.StatusCode
	}

	// Redelivery cannot fix a wrongly typed field, so it is acknowledged.
	assert.Equal(t, http.StatusOK, send(`{"update_id":"abc","message":{"message_id":1,"date":1,"chat":{"id":1,"type":"private"}}}`))

	assert.Equal(t, http.StatusOK, send(`{"update_id":77,"message":{"message_id":1,"date":1,"chat":{"id":5,"type":"private","first_name":"A"}}}`))
	ok, err := env.store.MessageExists(context.Background(), 5, 1)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestServer_Metrics(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, http.MethodGet, "/metrics", "", false)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestChatFilterFromQuery(t *testing.T) {
	f, err := chatFilterFromQuery(url.Values{})
	require.NoError(t, err)
	assert.Equal(t, models.AllChats(), f)

	f, err = chatFilterFromQuery(url.Values{
		"types":          {"supergroup, private"},
		"updated_before": {"2024-02-03 04:05:06"},
		"chat_id":        {"-100"},
		"text":           {" news "},
	})
	require.NoError(t, err)
	assert.True(t, f.Supergroups)
	assert.True(t, f.Users)
	assert.False(t, f.Groups)
	require.NotNil(t, f.UpdatedBefore)
	assert.Equal(t, time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC), *f.UpdatedBefore)
	assert.Equal(t, int64(-100), *f.ChatID)
	assert.Equal(t, "news", f.Text)

	_, err = chatFilterFromQuery(url.Values{"updated_after": {"yesterday"}})
	assert.Error(t, err)
}
