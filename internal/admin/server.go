package admin

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/digkill/TGUpdateStore/internal/database"
	"github.com/digkill/TGUpdateStore/internal/models"
	"github.com/digkill/TGUpdateStore/internal/service"
)

const secretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

const maxWebhookBody = 1 << 20

// Ingester stores one update delivered as Bot API JSON.
type Ingester interface {
	HandleRaw(ctx context.Context, raw []byte) error
}

type Server struct {
	addr          string
	username      string
	password      string
	webhookSecret string
	log           *slog.Logger
	reports       *service.ReportService
	broadcasts    *service.BroadcastService
	ingest        Ingester
	router        *chi.Mux
}

type Options struct {
	Addr          string
	Username      string
	Password      string
	WebhookSecret string
}

func NewServer(opts Options, log *slog.Logger, reports *service.ReportService, broadcasts *service.BroadcastService, ingest Ingester) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	s := &Server{
		addr:          opts.Addr,
		username:      opts.Username,
		password:      opts.Password,
		webhookSecret: opts.WebhookSecret,
		log:           log,
		reports:       reports,
		broadcasts:    broadcasts,
		ingest:        ingest,
		router:        r,
	}
	r.Post("/webhook/telegram", s.handleTelegramWebhook)
	r.Handle("/metrics", promhttp.Handler())
	r.Group(func(protected chi.Router) {
		protected.Use(s.basicAuthMiddleware())
		protected.Get("/chats", s.handleListChats)
		protected.Get("/limits", s.handleLimits)
		protected.Post("/broadcast", s.handleBroadcast)
	})
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Minute,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Error("admin shutdown error", "err", err)
		}
	}()

	s.log.Info("admin server listening", "addr", s.addr)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("admin listen: %w", err)
	}
	return nil
}

func (s *Server) handleTelegramWebhook(w http.ResponseWriter, r *http.Request) {
	if s.webhookSecret != "" {
		got := r.Header.Get(secretTokenHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(s.webhookSecret)) != 1 {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		http.Error(w, "read body error", http.StatusBadRequest)
		return
	}
	if !json.Valid(body) {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	if err := s.ingest.HandleRaw(r.Context(), body); err != nil {
		// Telegram redelivers on any non-2xx answer.
		if errors.Is(err, models.ErrValidation) {
			s.log.Warn("telegram webhook rejected update", "err", err)
			w.WriteHeader(http.StatusOK)
			return
		}
		s.internalError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleListChats(w http.ResponseWriter, r *http.Request) {
	filter, err := chatFilterFromQuery(r.URL.Query())
	if err != nil {
		s.badRequest(w, err)
		return
	}
	rows, err := s.reports.Chats(r.Context(), filter)
	if err != nil {
		s.internalError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rows)
}

type limitsResponse struct {
	PerSecondAll int `json:"per_second_all"`
	PerSecond    int `json:"per_second"`
	PerMinute    int `json:"per_minute"`
}

func (s *Server) handleLimits(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	target := models.RequestTarget{
		ChatID:          strings.TrimSpace(q.Get("chat_id")),
		InlineMessageID: strings.TrimSpace(q.Get("inline_message_id")),
	}
	if target.ChatID == "" && target.InlineMessageID == "" {
		http.Error(w, "chat_id or inline_message_id required", http.StatusBadRequest)
		return
	}
	c, err := s.reports.Counters(r.Context(), target)
	if err != nil {
		s.internalError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, limitsResponse{
		PerSecondAll: c.PerSecondAll,
		PerSecond:    c.PerSecond,
		PerMinute:    c.PerMinute,
	})
}

type broadcastRequest struct {
	Message string   `json:"message"`
	Types   []string `json:"types"`
	Text    string   `json:"text"`
}

func (s *Server) handleBroadcast(w http.ResponseWriter, r *http.Request) {
	var req broadcastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		http.Error(w, "message required", http.StatusBadRequest)
		return
	}
	filter, err := chatTypes(req.Types)
	if err != nil {
		s.badRequest(w, err)
		return
	}
	filter.Text = req.Text

	res, err := s.broadcasts.Broadcast(r.Context(), filter, req.Message)
	if err != nil {
		s.internalError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

// chatFilterFromQuery reads types (comma separated), updated_after,
// updated_before, chat_id and text.
func chatFilterFromQuery(q url.Values) (models.ChatFilter, error) {
	var types []string
	if v := strings.TrimSpace(q.Get("types")); v != "" {
		types = strings.Split(v, ",")
	}
	filter, err := chatTypes(types)
	if err != nil {
		return models.ChatFilter{}, err
	}

	if v := q.Get("updated_after"); v != "" {
		t, err := parseTime(v)
		if err != nil {
			return models.ChatFilter{}, fmt.Errorf("updated_after: %w", err)
		}
		filter.UpdatedAfter = &t
	}
	if v := q.Get("updated_before"); v != "" {
		t, err := parseTime(v)
		if err != nil {
			return models.ChatFilter{}, fmt.Errorf("updated_before: %w", err)
		}
		filter.UpdatedBefore = &t
	}
	if v := q.Get("chat_id"); v != "" {
		id, err := parseID(v)
		if err != nil {
			return models.ChatFilter{}, fmt.Errorf("chat_id: %w", err)
		}
		filter.ChatID = &id
	}
	filter.Text = strings.TrimSpace(q.Get("text"))
	return filter, nil
}

// chatTypes maps type names to filter flags; no names means every type.
func chatTypes(types []string) (models.ChatFilter, error) {
	if len(types) == 0 {
		return models.AllChats(), nil
	}
	var f models.ChatFilter
	for _, t := range types {
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "groups", "group":
			f.Groups = true
		case "supergroups", "supergroup":
			f.Supergroups = true
		case "channels", "channel":
			f.Channels = true
		case "users", "private":
			f.Users = true
		case "":
		default:
			return models.ChatFilter{}, fmt.Errorf("unknown chat type %q", t)
		}
	}
	return f, nil
}

func parseTime(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return database.ParseTime(v)
}

func (s *Server) basicAuthMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, pass, ok := r.BasicAuth()
			if !ok || user != s.username || pass != s.password {
				w.Header().Set("WWW-Authenticate", `Basic realm="tgupdatestore"`)
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) badRequest(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), http.StatusBadRequest)
}

func (s *Server) internalError(w http.ResponseWriter, err error) {
	s.log.Error("admin handler error", "err", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func parseID(value string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(value), 10, 64)
}
