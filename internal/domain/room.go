package domain

type RoomID int64
