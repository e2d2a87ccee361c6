package models

import (
	"encoding/json"
	"fmt"
)

type Kind string

const (
	KindMessage            Kind = "message"
	KindEditedMessage      Kind = "edited_message"
	KindChannelPost        Kind = "channel_post"
	KindEditedChannelPost  Kind = "edited_channel_post"
	KindInlineQuery        Kind = "inline_query"
	KindChosenInlineResult Kind = "chosen_inline_result"
	KindCallbackQuery      Kind = "callback_query"
)

// Event is the payload of an Update. The set of implementations is closed:
// only the seven variants below satisfy it.
type Event interface {
	Kind() Kind
	event()
}

type MessageEvent struct{ Message *Message }
type EditedMessageEvent struct{ Message *Message }
type ChannelPostEvent struct{ Message *Message }
type EditedChannelPostEvent struct{ Message *Message }
type InlineQueryEvent struct{ Query *InlineQuery }
type ChosenInlineResultEvent struct{ Result *ChosenInlineResult }
type CallbackQueryEvent struct{ Query *CallbackQuery }

func (MessageEvent) Kind() Kind            { return KindMessage }
func (EditedMessageEvent) Kind() Kind      { return KindEditedMessage }
func (ChannelPostEvent) Kind() Kind        { return KindChannelPost }
func (EditedChannelPostEvent) Kind() Kind  { return KindEditedChannelPost }
func (InlineQueryEvent) Kind() Kind        { return KindInlineQuery }
func (ChosenInlineResultEvent) Kind() Kind { return KindChosenInlineResult }
func (CallbackQueryEvent) Kind() Kind      { return KindCallbackQuery }

func (MessageEvent) event()            {}
func (EditedMessageEvent) event()      {}
func (ChannelPostEvent) event()        {}
func (EditedChannelPostEvent) event()  {}
func (InlineQueryEvent) event()        {}
func (ChosenInlineResultEvent) event() {}
func (CallbackQueryEvent) event()      {}

// Update is one top-level event delivered by the platform.
type Update struct {
	ID    int64
	Event Event
}

// Validate reports ErrValidation when the update carries no usable payload.
func (u Update) Validate() error {
	if u.ID == 0 {
		return fmt.Errorf("%w: update id is empty", ErrValidation)
	}
	var ok bool
	switch e := u.Event.(type) {
	case MessageEvent:
		ok = e.Message != nil && e.Message.Chat != nil
	case EditedMessageEvent:
		ok = e.Message != nil && e.Message.Chat != nil
	case ChannelPostEvent:
		ok = e.Message != nil && e.Message.Chat != nil
	case EditedChannelPostEvent:
		ok = e.Message != nil && e.Message.Chat != nil
	case InlineQueryEvent:
		ok = e.Query != nil && e.Query.ID != ""
	case ChosenInlineResultEvent:
		ok = e.Result != nil
	case CallbackQueryEvent:
		ok = e.Query != nil && e.Query.ID != ""
	}
	if !ok {
		return fmt.Errorf("%w: update %d has no resolvable payload", ErrValidation, u.ID)
	}
	return nil
}

// Kind returns the payload kind, or "" for an empty update.
func (u Update) Kind() Kind {
	if u.Event == nil {
		return ""
	}
	return u.Event.Kind()
}

type wireUpdate struct {
	UpdateID           int64               `json:"update_id"`
	Message            *Message            `json:"message,omitempty"`
	EditedMessage      *Message            `json:"edited_message,omitempty"`
	ChannelPost        *Message            `json:"channel_post,omitempty"`
	EditedChannelPost  *Message            `json:"edited_channel_post,omitempty"`
	InlineQuery        *InlineQuery        `json:"inline_query,omitempty"`
	ChosenInlineResult *ChosenInlineResult `json:"chosen_inline_result,omitempty"`
	CallbackQuery      *CallbackQuery      `json:"callback_query,omitempty"`
}

// ParseUpdate decodes a Bot API update object. Updates of kinds that are not
// persisted decode to an Update with a nil Event; more than one payload is an
// error.
func ParseUpdate(data []byte) (Update, error) {
	var w wireUpdate
	if err := json.Unmarshal(data, &w); err != nil {
		return Update{}, fmt.Errorf("%w: decode update: %v", ErrValidation, err)
	}

	u := Update{ID: w.UpdateID}
	var events []Event
	if w.Message != nil {
		events = append(events, MessageEvent{Message: w.Message})
	}
	if w.EditedMessage != nil {
		events = append(events, EditedMessageEvent{Message: w.EditedMessage})
	}
	if w.ChannelPost != nil {
		events = append(events, ChannelPostEvent{Message: w.ChannelPost})
	}
	if w.EditedChannelPost != nil {
		events = append(events, EditedChannelPostEvent{Message: w.EditedChannelPost})
	}
	if w.InlineQuery != nil {
		events = append(events, InlineQueryEvent{Query: w.InlineQuery})
	}
	if w.ChosenInlineResult != nil {
		events = append(events, ChosenInlineResultEvent{Result: w.ChosenInlineResult})
	}
	if w.CallbackQuery != nil {
		events = append(events, CallbackQueryEvent{Query: w.CallbackQuery})
	}

	switch len(events) {
	case 0:
		return u, nil
	case 1:
		u.Event = events[0]
		return u, nil
	default:
		return Update{}, fmt.Errorf("%w: update %d carries %d payloads", ErrValidation, w.UpdateID, len(events))
	}
}
