package models

import (
	"encoding/json"
	"errors"
	"time"
)

// ErrValidation marks input that is rejected before any storage call.
var ErrValidation = errors.New("validation failed")

type ChatType string

const (
	ChatTypePrivate    ChatType = "private"
	ChatTypeGroup      ChatType = "group"
	ChatTypeSupergroup ChatType = "supergroup"
	ChatTypeChannel    ChatType = "channel"
)

type User struct {
	ID           int64  `json:"id"`
	IsBot        bool   `json:"is_bot"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name,omitempty"`
	Username     string `json:"username,omitempty"`
	LanguageCode string `json:"language_code,omitempty"`
}

type Chat struct {
	ID                          int64    `json:"id"`
	Type                        ChatType `json:"type"`
	Title                       string   `json:"title,omitempty"`
	Username                    string   `json:"username,omitempty"`
	FirstName                   string   `json:"first_name,omitempty"`
	LastName                    string   `json:"last_name,omitempty"`
	AllMembersAreAdministrators bool     `json:"all_members_are_administrators,omitempty"`
}

// Message mirrors the Bot API message object. Nested objects that are
// persisted as-is (media, contact, location, ...) stay raw JSON.
type Message struct {
	MessageID             int64             `json:"message_id"`
	From                  *User             `json:"from,omitempty"`
	Date                  int64             `json:"date"`
	Chat                  *Chat             `json:"chat"`
	ForwardFrom           *User             `json:"forward_from,omitempty"`
	ForwardFromChat       *Chat             `json:"forward_from_chat,omitempty"`
	ForwardFromMessageID  int64             `json:"forward_from_message_id,omitempty"`
	ForwardSignature      string            `json:"forward_signature,omitempty"`
	ForwardSenderName     string            `json:"forward_sender_name,omitempty"`
	ForwardDate           int64             `json:"forward_date,omitempty"`
	ReplyToMessage        *Message          `json:"reply_to_message,omitempty"`
	ViaBot                *User             `json:"via_bot,omitempty"`
	EditDate              int64             `json:"edit_date,omitempty"`
	MediaGroupID          string            `json:"media_group_id,omitempty"`
	AuthorSignature       string            `json:"author_signature,omitempty"`
	Text                  string            `json:"text,omitempty"`
	Entities              []json.RawMessage `json:"entities,omitempty"`
	CaptionEntities       []json.RawMessage `json:"caption_entities,omitempty"`
	Audio                 json.RawMessage   `json:"audio,omitempty"`
	Document              json.RawMessage   `json:"document,omitempty"`
	Animation             json.RawMessage   `json:"animation,omitempty"`
	Game                  json.RawMessage   `json:"game,omitempty"`
	Photo                 []json.RawMessage `json:"photo,omitempty"`
	Sticker               json.RawMessage   `json:"sticker,omitempty"`
	Video                 json.RawMessage   `json:"video,omitempty"`
	Voice                 json.RawMessage   `json:"voice,omitempty"`
	VideoNote             json.RawMessage   `json:"video_note,omitempty"`
	Caption               string            `json:"caption,omitempty"`
	Contact               json.RawMessage   `json:"contact,omitempty"`
	Location              json.RawMessage   `json:"location,omitempty"`
	Venue                 json.RawMessage   `json:"venue,omitempty"`
	Poll                  json.RawMessage   `json:"poll,omitempty"`
	Dice                  json.RawMessage   `json:"dice,omitempty"`
	NewChatMembers        []User            `json:"new_chat_members,omitempty"`
	LeftChatMember        *User             `json:"left_chat_member,omitempty"`
	NewChatTitle          string            `json:"new_chat_title,omitempty"`
	NewChatPhoto          []json.RawMessage `json:"new_chat_photo,omitempty"`
	DeleteChatPhoto       bool              `json:"delete_chat_photo,omitempty"`
	GroupChatCreated      bool              `json:"group_chat_created,omitempty"`
	SupergroupChatCreated bool              `json:"supergroup_chat_created,omitempty"`
	ChannelChatCreated    bool              `json:"channel_chat_created,omitempty"`
	MigrateToChatID       int64             `json:"migrate_to_chat_id,omitempty"`
	MigrateFromChatID     int64             `json:"migrate_from_chat_id,omitempty"`
	PinnedMessage         json.RawMessage   `json:"pinned_message,omitempty"`
	Invoice               json.RawMessage   `json:"invoice,omitempty"`
	SuccessfulPayment     json.RawMessage   `json:"successful_payment,omitempty"`
	ConnectedWebsite      string            `json:"connected_website,omitempty"`
	PassportData          json.RawMessage   `json:"passport_data,omitempty"`
	ReplyMarkup           json.RawMessage   `json:"reply_markup,omitempty"`
}

// ChatID returns the owning chat id, or 0 when the chat is missing.
func (m *Message) ChatID() int64 {
	if m == nil || m.Chat == nil {
		return 0
	}
	return m.Chat.ID
}

// EditedMessage is a stored edit event. ID is the local row id.
type EditedMessage struct {
	ID        int64
	ChatID    int64
	MessageID int64
	UserID    int64
	EditDate  time.Time
	Text      string
	Caption   string
}

type InlineQuery struct {
	ID       string          `json:"id"`
	From     *User           `json:"from"`
	Query    string          `json:"query"`
	Offset   string          `json:"offset"`
	ChatType string          `json:"chat_type,omitempty"`
	Location json.RawMessage `json:"location,omitempty"`
}

type ChosenInlineResult struct {
	ResultID        string          `json:"result_id"`
	From            *User           `json:"from"`
	Location        json.RawMessage `json:"location,omitempty"`
	InlineMessageID string          `json:"inline_message_id,omitempty"`
	Query           string          `json:"query"`
}

type CallbackQuery struct {
	ID              string   `json:"id"`
	From            *User    `json:"from"`
	Message         *Message `json:"message,omitempty"`
	InlineMessageID string   `json:"inline_message_id,omitempty"`
	ChatInstance    string   `json:"chat_instance"`
	Data            string   `json:"data,omitempty"`
	GameShortName   string   `json:"game_short_name,omitempty"`
}
