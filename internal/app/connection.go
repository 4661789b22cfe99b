package app

import (
	"slices"
	"sync"
	"time"

	"github.com/dkeye/Huddle/internal/core"
	"github.com/dkeye/Huddle/internal/domain"
)

// Connection is one live, authenticated client. Identity is immutable once
// attached. The room set and the sealed flag are guarded by mu; the lock is
// always taken before any subscription shard lock.
type Connection struct {
	ID          core.SessionID
	Identity    domain.Identity
	Signal      core.SignalConnection
	ConnectedAt time.Time

	mu     sync.Mutex
	rooms  map[domain.RoomID]struct{}
	sealed bool
}

func newConnection(sid core.SessionID, id domain.Identity, sig core.SignalConnection) *Connection {
	return &Connection{
		ID:          sid,
		Identity:    id,
		Signal:      sig,
		ConnectedAt: time.Now(),
		rooms:       make(map[domain.RoomID]struct{}),
	}
}

// Rooms returns the rooms this connection is subscribed to, sorted.
func (c *Connection) Rooms() []domain.RoomID {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.RoomID, 0, len(c.rooms))
	for id := range c.rooms {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

func (c *Connection) Subscribed(roomID domain.RoomID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.rooms[roomID]
	return ok
}

// Seal moves the connection to Closed. After Seal no join can subscribe it.
// It reports whether this call did the transition.
func (c *Connection) Seal() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sealed {
		return false
	}
	c.sealed = true
	return true
}

func (c *Connection) Sealed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sealed
}

func (c *Connection) member() core.MemberDTO {
	return core.MemberDTO{ConnectionID: c.ID, UserID: c.Identity.UserID, Name: c.Identity.Name}
}
