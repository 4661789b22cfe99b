package domain

import "time"

// MaxTodoText is the default cap on todo text, in runes.
const MaxTodoText = 255

type TodoID int64

type TodoItem struct {
	ID        TodoID    `json:"id"`
	RoomID    RoomID    `json:"room_id"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TodoPatch carries the mutable fields of an update. Nil means unchanged.
type TodoPatch struct {
	Text      *string
	Completed *bool
}

func (p TodoPatch) Empty() bool {
	return p.Text == nil && p.Completed == nil
}
