package core

import "github.com/dkeye/Huddle/internal/domain"

// PublishResult reports delivery stats/backpressure to orchestrator.
type PublishResult struct {
	SentTo  int
	Dropped []SessionID
}

// MemberDTO is a read-only view of a room subscriber (no transport fields).
type MemberDTO struct {
	ConnectionID SessionID     `json:"connectionId"`
	UserID       domain.UserID `json:"userId"`
	Name         string        `json:"name"`
}
