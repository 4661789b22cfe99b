package store

import "time"

type Room struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	Name      string `gorm:"size:120;not null"`
	OwnerID   int64  `gorm:"index;not null"`
	IsPrivate bool   `gorm:"not null;default:false"`
	CreatedAt time.Time
}

type RoomMember struct {
	RoomID    int64 `gorm:"primaryKey;autoIncrement:false"`
	UserID    int64 `gorm:"primaryKey;autoIncrement:false;index"`
	CreatedAt time.Time
}

type Message struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	RoomID    int64     `gorm:"index:idx_messages_room_created,priority:1;not null"`
	UserID    int64     `gorm:"not null"`
	Content   string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"index:idx_messages_room_created,priority:2"`
}

type TodoItem struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	RoomID    int64  `gorm:"index;not null"`
	Text      string `gorm:"size:255;not null"`
	Completed bool   `gorm:"not null;default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func models() []any {
	return []any{&Room{}, &RoomMember{}, &Message{}, &TodoItem{}}
}
