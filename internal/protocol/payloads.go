package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/dkeye/Huddle/internal/core"
	"github.com/dkeye/Huddle/internal/domain"
)

type Auth struct {
	Token string `json:"token" validate:"required"`
}

type JoinRoom struct {
	RoomID domain.RoomID `json:"roomId" validate:"required,gt=0"`
}

type LeaveRoom struct {
	RoomID domain.RoomID `json:"roomId" validate:"required,gt=0"`
}

type ChatPost struct {
	RoomID  domain.RoomID `json:"roomId" validate:"required,gt=0"`
	Content string        `json:"content"`
}

type TodoCreate struct {
	RoomID domain.RoomID `json:"roomId" validate:"required,gt=0"`
	Text   string        `json:"text"`
}

type TodoUpdate struct {
	ID        domain.TodoID `json:"id" validate:"required,gt=0"`
	Text      *string       `json:"text,omitempty"`
	Completed *bool         `json:"completed,omitempty"`
}

// UnmarshalJSON keeps key presence: "text": null clears the text and
// "completed": null marks the item open. Absent keys stay nil.
func (p *TodoUpdate) UnmarshalJSON(b []byte) error {
	type plain TodoUpdate
	var raw struct {
		plain
		Text      json.RawMessage `json:"text"`
		Completed json.RawMessage `json:"completed"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*p = TodoUpdate(raw.plain)
	if raw.Text != nil {
		text := ""
		if string(raw.Text) != "null" {
			if err := json.Unmarshal(raw.Text, &text); err != nil {
				return fmt.Errorf("text: %w", err)
			}
		}
		p.Text = &text
	}
	if raw.Completed != nil {
		done := false
		if string(raw.Completed) != "null" {
			if err := json.Unmarshal(raw.Completed, &done); err != nil {
				return fmt.Errorf("completed: %w", err)
			}
		}
		p.Completed = &done
	}
	return nil
}

func (p TodoUpdate) Patch() domain.TodoPatch {
	return domain.TodoPatch{Text: p.Text, Completed: p.Completed}
}

type TodoDelete struct {
	ID domain.TodoID `json:"id" validate:"required,gt=0"`
}

// SignalRelay carries an opaque call-setup payload. "to" and "data" are
// accepted as aliases of targetConnectionId and payload.
type SignalRelay struct {
	RoomID             domain.RoomID   `json:"roomId" validate:"required,gt=0"`
	TargetConnectionID string          `json:"targetConnectionId,omitempty"`
	To                 string          `json:"to,omitempty"`
	Payload            json.RawMessage `json:"payload,omitempty"`
	Data               json.RawMessage `json:"data,omitempty"`
}

func (p SignalRelay) Body() json.RawMessage {
	if len(p.Payload) > 0 {
		return p.Payload
	}
	return p.Data
}

func (p SignalRelay) Target() core.SessionID {
	if p.TargetConnectionID != "" {
		return core.SessionID(p.TargetConnectionID)
	}
	return core.SessionID(p.To)
}

// Ack is the reply to an inbound event that expects one.
type Ack struct {
	OK      bool             `json:"ok,omitempty"`
	Error   string           `json:"error,omitempty"`
	Message *domain.Message  `json:"message,omitempty"`
	Item    *domain.TodoItem `json:"item,omitempty"`
	Members []core.MemberDTO `json:"members,omitempty"`
}

type Session struct {
	ConnectionID core.SessionID `json:"connectionId"`
	UserID       domain.UserID  `json:"userId"`
	Name         string         `json:"name"`
}

type WhoAmI struct {
	ConnectionID core.SessionID  `json:"connectionId"`
	UserID       domain.UserID   `json:"userId"`
	Name         string          `json:"name"`
	Rooms        []domain.RoomID `json:"rooms"`
}

type PresenceJoin struct {
	UserID       domain.UserID  `json:"userId"`
	Name         string         `json:"name"`
	ConnectionID core.SessionID `json:"connectionId"`
}

type PresenceLeave struct {
	UserID       domain.UserID  `json:"userId"`
	ConnectionID core.SessionID `json:"connectionId"`
}

type TodoDeleted struct {
	ID domain.TodoID `json:"id"`
}

type Signal struct {
	From    core.SessionID  `json:"from"`
	Payload json.RawMessage `json:"payload"`
}

type Error struct {
	Error string `json:"error"`
}
