package domain

import "time"

// MaxMessageContent is the default cap on chat content, in runes.
const MaxMessageContent = 1000

type MessageID int64

// Message is the canonical chat record sent to subscribers and returned to
// the author as acknowledgment.
type Message struct {
	ID        MessageID `json:"id"`
	RoomID    RoomID    `json:"room_id"`
	UserID    UserID    `json:"user_id"`
	UserName  string    `json:"user_name"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// MessageReceipt is what the store assigns on insert.
type MessageReceipt struct {
	ID        MessageID
	CreatedAt time.Time
}
