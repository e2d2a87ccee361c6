package database

// Tables holds the physical table names, resolved once from a prefix.
type Tables struct {
	User               string
	Chat               string
	UserChat           string
	Message            string
	EditedMessage      string
	InlineQuery        string
	ChosenInlineResult string
	CallbackQuery      string
	Update             string
	RequestLimiter     string
}

func NewTables(prefix string) Tables {
	return Tables{
		User:               prefix + "user",
		Chat:               prefix + "chat",
		UserChat:           prefix + "user_chat",
		Message:            prefix + "message",
		EditedMessage:      prefix + "edited_message",
		InlineQuery:        prefix + "inline_query",
		ChosenInlineResult: prefix + "chosen_inline_result",
		CallbackQuery:      prefix + "callback_query",
		Update:             prefix + "telegram_update",
		RequestLimiter:     prefix + "request_limiter",
	}
}
