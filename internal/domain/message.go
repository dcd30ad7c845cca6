package domain

import (
	"strings"
	"time"
)

const MaxMessageSize = 5000

// Message Invariants:
// 1. Ordering: ID is store-assigned, strictly increasing per room, and is
//    the authoritative order within a room.
// 2. Immutability: a persisted message never changes.
// 3. Sender: must be one of the room's two participants, checked before
//    persistence.
type Message struct {
	ID             int64
	RoomID         int64
	SenderID       int64
	SenderUsername string
	Content        string
	Timestamp      time.Time
}

// ValidateContent trims and bounds message content. Empty or whitespace-only
// content never reaches storage.
func ValidateContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", ErrEmptyContent
	}
	if len(content) > MaxMessageSize {
		return "", ErrMessageTooLarge
	}
	return content, nil
}

// MessageView is the serialized form of a message. The same shape is sent on
// the websocket broadcast, returned by the HTTP API, pushed to the fan-out
// service and appended to the cached room page.
type MessageView struct {
	ID             int64   `json:"id"`
	Room           int64   `json:"room"`
	Sender         int64   `json:"sender"`
	SenderUsername string  `json:"sender_username"`
	Content        string  `json:"content"`
	Timestamp      *string `json:"timestamp"`
}

func NewMessageView(m *Message) MessageView {
	v := MessageView{
		ID:             m.ID,
		Room:           m.RoomID,
		Sender:         m.SenderID,
		SenderUsername: m.SenderUsername,
		Content:        m.Content,
	}
	if !m.Timestamp.IsZero() {
		ts := m.Timestamp.UTC().Format(time.RFC3339Nano)
		v.Timestamp = &ts
	}
	return v
}

// MessagePage is the paginated envelope for a room's message history and the
// closed form every cached room page normalizes to.
type MessagePage struct {
	Count   int           `json:"count"`
	Results []MessageView `json:"results"`
}
