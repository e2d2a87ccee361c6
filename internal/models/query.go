package models

import "time"

// ChatFilter selects chats for reporting. Type flags combine with OR, every
// other field narrows the result with AND.
type ChatFilter struct {
	Groups        bool
	Supergroups   bool
	Channels      bool
	Users         bool
	UpdatedAfter  *time.Time
	UpdatedBefore *time.Time
	ChatID        *int64
	Text          string
}

// AllChats returns a filter that includes every chat type.
func AllChats() ChatFilter {
	return ChatFilter{Groups: true, Supergroups: true, Channels: true, Users: true}
}

// Empty reports whether no chat type is included.
func (f ChatFilter) Empty() bool {
	return !f.Groups && !f.Supergroups && !f.Channels && !f.Users
}

// RequestTarget identifies the destination of an outbound API call. Either
// field may be empty.
type RequestTarget struct {
	ChatID          string
	InlineMessageID string
}

type RequestCounters struct {
	PerSecondAll int
	PerSecond    int
	PerMinute    int
}
