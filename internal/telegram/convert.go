package telegram

import (
	"encoding/json"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/digkill/TGUpdateStore/internal/models"
)

// FromAPI converts an update received through the Bot API client. The raw
// JSON is returned too so that callers can archive exactly what was parsed.
func FromAPI(update tgbotapi.Update) ([]byte, models.Update, error) {
	raw, err := json.Marshal(update)
	if err != nil {
		return nil, models.Update{}, fmt.Errorf("encode update %d: %w", update.UpdateID, err)
	}
	u, err := models.ParseUpdate(raw)
	if err != nil {
		return raw, models.Update{}, err
	}
	return raw, u, nil
}
