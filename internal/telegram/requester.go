package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/digkill/TGUpdateStore/internal/models"
)

var ErrLimiterTimeout = errors.New("timed out waiting for a request slot")

const (
	maxPerSecondAll = 30
	maxPerMinute    = 20
)

// limitedMethods send or edit content in a chat and count against the
// platform's flood limits.
var limitedMethods = map[string]bool{
	"sendMessage":             true,
	"forwardMessage":          true,
	"copyMessage":             true,
	"sendPhoto":               true,
	"sendAudio":               true,
	"sendDocument":            true,
	"sendSticker":             true,
	"sendVideo":               true,
	"sendAnimation":           true,
	"sendVoice":               true,
	"sendVideoNote":           true,
	"sendMediaGroup":          true,
	"sendLocation":            true,
	"editMessageLiveLocation": true,
	"stopMessageLiveLocation": true,
	"sendVenue":               true,
	"sendContact":             true,
	"sendPoll":                true,
	"sendDice":                true,
	"sendInvoice":             true,
	"sendGame":                true,
	"setGameScore":            true,
	"editMessageText":         true,
	"editMessageCaption":      true,
	"editMessageMedia":        true,
	"editMessageReplyMarkup":  true,
	"stopPoll":                true,
	"setChatTitle":            true,
	"setChatDescription":      true,
	"setChatStickerSet":       true,
	"deleteChatStickerSet":    true,
}

// APIClient is satisfied by *tgbotapi.BotAPI.
type APIClient interface {
	MakeRequest(endpoint string, params tgbotapi.Params) (*tgbotapi.APIResponse, error)
}

// RequestLog counts and records outbound requests.
type RequestLog interface {
	RequestCounters(ctx context.Context, target models.RequestTarget) (models.RequestCounters, error)
	RecordOutboundRequest(ctx context.Context, method string, target models.RequestTarget) error
}

type LimiterConfig struct {
	Enabled  bool
	Interval time.Duration
	Timeout  time.Duration
}

// Requester sends Bot API requests, holding back limited methods until the
// request log shows a free slot for their target.
type Requester struct {
	api     APIClient
	log     *slog.Logger
	reqLog  RequestLog
	limiter LimiterConfig
	sleep   func(ctx context.Context, d time.Duration) error
}

func NewRequester(api APIClient, log *slog.Logger, reqLog RequestLog, limiter LimiterConfig) *Requester {
	if limiter.Interval <= 0 {
		limiter.Interval = time.Second
	}
	if limiter.Timeout <= 0 {
		limiter.Timeout = time.Minute
	}
	return &Requester{
		api:     api,
		log:     log,
		reqLog:  reqLog,
		limiter: limiter,
		sleep:   sleepContext,
	}
}

func (r *Requester) Request(ctx context.Context, method string, params tgbotapi.Params) (*tgbotapi.APIResponse, error) {
	target := models.RequestTarget{ChatID: params["chat_id"], InlineMessageID: params["inline_message_id"]}
	if r.limiter.Enabled && limitedMethods[method] && (target.ChatID != "" || target.InlineMessageID != "") {
		if err := r.waitForSlot(ctx, target); err != nil {
			outboundRequests.WithLabelValues(method, "limited").Inc()
			return nil, fmt.Errorf("%s: %w", method, err)
		}
		if err := r.reqLog.RecordOutboundRequest(ctx, method, target); err != nil {
			return nil, fmt.Errorf("record %s: %w", method, err)
		}
	}

	resp, err := r.api.MakeRequest(method, params)
	if err != nil {
		outboundRequests.WithLabelValues(method, "error").Inc()
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	outboundRequests.WithLabelValues(method, "ok").Inc()
	return resp, nil
}

// SendText sends a plain text message to chatID.
func (r *Requester) SendText(ctx context.Context, chatID int64, text string) error {
	_, err := r.Request(ctx, "sendMessage", tgbotapi.Params{
		"chat_id": strconv.FormatInt(chatID, 10),
		"text":    text,
	})
	return err
}

func (r *Requester) waitForSlot(ctx context.Context, target models.RequestTarget) error {
	start := time.Now()
	defer func() { limiterWait.Observe(time.Since(start).Seconds()) }()

	attempts := int(r.limiter.Timeout / r.limiter.Interval)
	for i := 0; ; i++ {
		if i >= attempts {
			return ErrLimiterTimeout
		}
		c, err := r.reqLog.RequestCounters(ctx, target)
		if err != nil {
			return err
		}
		if slotFree(c, target) {
			return nil
		}
		r.log.Debug("waiting for request slot", "chat_id", target.ChatID, "inline_message_id", target.InlineMessageID)
		if err := r.sleep(ctx, r.limiter.Interval); err != nil {
			return err
		}
	}
}

// slotFree allows one request per second per chat, 30 per second overall and
// 20 per minute per group chat.
func slotFree(c models.RequestCounters, target models.RequestTarget) bool {
	if c.PerSecond != 0 || c.PerSecondAll >= maxPerSecondAll {
		return false
	}
	if target.InlineMessageID != "" {
		return true
	}
	if id, err := strconv.ParseInt(target.ChatID, 10, 64); err == nil && id > 0 {
		return true
	}
	return c.PerMinute < maxPerMinute
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
