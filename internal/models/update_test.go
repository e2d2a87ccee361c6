package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUpdate_Kinds(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		kind Kind
	}{
		{"message", `{"update_id":1,"message":{"message_id":5,"date":1,"chat":{"id":-10,"type":"group"}}}`, KindMessage},
		{"edited", `{"update_id":2,"edited_message":{"message_id":5,"date":1,"edit_date":2,"chat":{"id":1,"type":"private"}}}`, KindEditedMessage},
		{"channel post", `{"update_id":3,"channel_post":{"message_id":7,"date":1,"chat":{"id":-100,"type":"channel"}}}`, KindChannelPost},
		{"edited channel post", `{"update_id":4,"edited_channel_post":{"message_id":7,"date":1,"chat":{"id":-100,"type":"channel"}}}`, KindEditedChannelPost},
		{"inline", `{"update_id":5,"inline_query":{"id":"q1","from":{"id":1,"is_bot":false,"first_name":"a"},"query":"x","offset":""}}`, KindInlineQuery},
		{"chosen", `{"update_id":6,"chosen_inline_result":{"result_id":"r","from":{"id":1,"is_bot":false,"first_name":"a"},"query":"x"}}`, KindChosenInlineResult},
		{"callback", `{"update_id":7,"callback_query":{"id":"c1","from":{"id":1,"is_bot":false,"first_name":"a"},"chat_instance":"i"}}`, KindCallbackQuery},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			u, err := ParseUpdate([]byte(tc.raw))
			require.NoError(t, err)
			assert.Equal(t, tc.kind, u.Kind())
			assert.NoError(t, u.Validate())
		})
	}
}

func TestParseUpdate_KeepsNestedPayloads(t *testing.T) {
	raw := `{"update_id":9,"message":{"message_id":5,"date":1700000000,"chat":{"id":-10,"type":"group","title":"G"},
		"from":{"id":3,"is_bot":false,"first_name":"Ann","username":"ann"},
		"entities":[{"type":"bold","offset":0,"length":2}],
		"location":{"latitude":1.5,"longitude":2.5},
		"reply_to_message":{"message_id":4,"date":1,"chat":{"id":-10,"type":"group"}}}}`
	u, err := ParseUpdate([]byte(raw))
	require.NoError(t, err)

	ev, ok := u.Event.(MessageEvent)
	require.True(t, ok)
	msg := ev.Message
	assert.Equal(t, int64(-10), msg.ChatID())
	assert.Equal(t, "ann", msg.From.Username)
	require.Len(t, msg.Entities, 1)
	assert.JSONEq(t, `{"latitude":1.5,"longitude":2.5}`, string(msg.Location))
	require.NotNil(t, msg.ReplyToMessage)
	assert.Equal(t, int64(4), msg.ReplyToMessage.MessageID)
}

func TestParseUpdate_UnsupportedKindHasNoEvent(t *testing.T) {
	u, err := ParseUpdate([]byte(`{"update_id":11,"poll":{"id":"p"}}`))
	require.NoError(t, err)
	assert.Nil(t, u.Event)
	assert.ErrorIs(t, u.Validate(), ErrValidation)
}

func TestParseUpdate_MultiplePayloadsRejected(t *testing.T) {
	raw := `{"update_id":12,
		"message":{"message_id":1,"date":1,"chat":{"id":1,"type":"private"}},
		"callback_query":{"id":"c","from":{"id":1,"is_bot":false,"first_name":"a"},"chat_instance":"i"}}`
	_, err := ParseUpdate([]byte(raw))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestParseUpdate_UndecodableIsValidation(t *testing.T) {
	for _, raw := range []string{
		`{"update_id":`,
		`{"update_id":"abc","message":{"message_id":1,"date":1,"chat":{"id":1,"type":"private"}}}`,
		`{"update_id":1,"message":{"message_id":"x","chat":{"id":1,"type":"private"}}}`,
	} {
		_, err := ParseUpdate([]byte(raw))
		assert.ErrorIs(t, err, ErrValidation, raw)
	}
}

func TestUpdateValidate(t *testing.T) {
	assert.ErrorIs(t, Update{}.Validate(), ErrValidation)
	assert.ErrorIs(t, Update{ID: 1, Event: MessageEvent{}}.Validate(), ErrValidation)
	assert.ErrorIs(t, Update{ID: 1, Event: MessageEvent{Message: &Message{MessageID: 1}}}.Validate(), ErrValidation)
	assert.ErrorIs(t, Update{ID: 1, Event: CallbackQueryEvent{Query: &CallbackQuery{}}}.Validate(), ErrValidation)
	assert.NoError(t, Update{ID: 1, Event: ChosenInlineResultEvent{Result: &ChosenInlineResult{ResultID: "r"}}}.Validate())
}

func TestChatFilterEmpty(t *testing.T) {
	assert.True(t, ChatFilter{}.Empty())
	assert.False(t, AllChats().Empty())
	assert.False(t, ChatFilter{Channels: true}.Empty())
}
