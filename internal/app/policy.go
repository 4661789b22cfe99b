package app

import "github.com/dkeye/Huddle/internal/domain"

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	KickMember
	DropFrame
)

// Policy decides what happens to a subscriber whose outbound queue is full.
type Policy interface {
	OnBackPressure(roomID domain.RoomID, member *Connection) BackpressureAction
}

// SimplePolicy kicks slow consumers; they reconnect and re-join.
type SimplePolicy struct{}

func (SimplePolicy) OnBackPressure(domain.RoomID, *Connection) BackpressureAction {
	return KickMember
}

// DropPolicy keeps slow consumers connected and loses the frame.
type DropPolicy struct{}

func (DropPolicy) OnBackPressure(domain.RoomID, *Connection) BackpressureAction {
	return DropFrame
}

// PolicyByName maps the config value to a Policy.
func PolicyByName(name string) Policy {
	switch name {
	case "drop":
		return DropPolicy{}
	default:
		return SimplePolicy{}
	}
}
