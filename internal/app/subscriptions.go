package app

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/dkeye/Huddle/internal/core"
	"github.com/dkeye/Huddle/internal/domain"
	"github.com/dkeye/Huddle/internal/metrics"
	"github.com/dkeye/Huddle/internal/protocol"
	"github.com/rs/zerolog/log"
)

const subscriptionShards = 32

type subscriptionShard struct {
	mu    sync.RWMutex
	rooms map[domain.RoomID]map[core.SessionID]*Connection
}

// Subscriptions maps rooms to their subscribed connections. Rooms are spread
// over shards; mutations of one room serialize on its shard lock, rooms in
// other shards are never blocked. The membership check runs outside every
// lock; TrySend never blocks, so fan-out may run under a Connection lock.
type Subscriptions struct {
	authority core.MembershipAuthority
	shards    [subscriptionShards]*subscriptionShard
}

func NewSubscriptions(authority core.MembershipAuthority) *Subscriptions {
	s := &Subscriptions{authority: authority}
	for i := range s.shards {
		s.shards[i] = &subscriptionShard{rooms: make(map[domain.RoomID]map[core.SessionID]*Connection)}
	}
	return s
}

func (s *Subscriptions) shard(roomID domain.RoomID) *subscriptionShard {
	return s.shards[uint64(roomID)%subscriptionShards]
}

// Join subscribes c to roomID after the membership authority confirms it and
// tells the other subscribers. Joining twice is a no-op.
func (s *Subscriptions) Join(ctx context.Context, c *Connection, roomID domain.RoomID) (core.PublishResult, error) {
	started := time.Now()
	ok, err := s.authority.IsMember(ctx, c.Identity.UserID, roomID)
	metrics.StoreLatency.WithLabelValues("is_member").Observe(time.Since(started).Seconds())
	if err != nil {
		return core.PublishResult{}, fmt.Errorf("%w: membership check: %w", domain.ErrPersistence, err)
	}
	if !ok {
		return core.PublishResult{}, domain.ErrNotAMember
	}

	c.mu.Lock()
	if c.sealed {
		c.mu.Unlock()
		return core.PublishResult{}, domain.ErrNotAuthenticated
	}
	if _, already := c.rooms[roomID]; already {
		c.mu.Unlock()
		return core.PublishResult{}, nil
	}
	sh := s.shard(roomID)
	sh.mu.Lock()
	set, exists := sh.rooms[roomID]
	if !exists {
		set = make(map[core.SessionID]*Connection)
		sh.rooms[roomID] = set
	}
	set[c.ID] = c
	sh.mu.Unlock()
	c.rooms[roomID] = struct{}{}

	metrics.RoomSubscriptions.Inc()
	log.Info().Str("module", "app.subscriptions").Str("sid", string(c.ID)).Int64("room", int64(roomID)).Msg("joined room")

	// presence-join goes out under c.mu so a concurrent RemoveAllFor cannot
	// send its presence-leave ahead of it.
	res := s.presence(roomID, c.ID, protocol.PushPresenceJoin, protocol.PresenceJoin{
		UserID:       c.Identity.UserID,
		Name:         c.Identity.Name,
		ConnectionID: c.ID,
	})
	c.mu.Unlock()
	return res, nil
}

// Leave drops the subscription unconditionally. Leaving a room that was never
// joined does nothing and notifies nobody.
func (s *Subscriptions) Leave(c *Connection, roomID domain.RoomID) core.PublishResult {
	c.mu.Lock()
	if _, ok := c.rooms[roomID]; !ok {
		c.mu.Unlock()
		return core.PublishResult{}
	}
	delete(c.rooms, roomID)
	s.remove(roomID, c.ID)
	c.mu.Unlock()

	log.Info().Str("module", "app.subscriptions").Str("sid", string(c.ID)).Int64("room", int64(roomID)).Msg("left room")
	return s.leaveNotice(c, roomID)
}

// RemoveAllFor drops every subscription of c, one presence-leave per room.
// The result is keyed by room. Safe to call twice.
func (s *Subscriptions) RemoveAllFor(c *Connection) map[domain.RoomID]core.PublishResult {
	c.mu.Lock()
	rooms := make([]domain.RoomID, 0, len(c.rooms))
	for roomID := range c.rooms {
		s.remove(roomID, c.ID)
		rooms = append(rooms, roomID)
	}
	clear(c.rooms)
	c.mu.Unlock()

	out := make(map[domain.RoomID]core.PublishResult, len(rooms))
	for _, roomID := range rooms {
		out[roomID] = s.leaveNotice(c, roomID)
	}
	if len(rooms) > 0 {
		log.Info().Str("module", "app.subscriptions").Str("sid", string(c.ID)).Int("rooms", len(rooms)).Msg("removed all subscriptions")
	}
	return out
}

func (s *Subscriptions) remove(roomID domain.RoomID, sid core.SessionID) {
	sh := s.shard(roomID)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	set, ok := sh.rooms[roomID]
	if !ok {
		return
	}
	if _, ok := set[sid]; !ok {
		return
	}
	delete(set, sid)
	if len(set) == 0 {
		delete(sh.rooms, roomID)
	}
	metrics.RoomSubscriptions.Dec()
}

func (s *Subscriptions) leaveNotice(c *Connection, roomID domain.RoomID) core.PublishResult {
	return s.presence(roomID, c.ID, protocol.PushPresenceLeave, protocol.PresenceLeave{
		UserID:       c.Identity.UserID,
		ConnectionID: c.ID,
	})
}

func (s *Subscriptions) presence(roomID domain.RoomID, actor core.SessionID, typ string, data any) core.PublishResult {
	frame, err := protocol.Encode(typ, data)
	if err != nil {
		log.Error().Err(err).Str("module", "app.subscriptions").Msg("presence encode")
		return core.PublishResult{}
	}
	return s.Broadcast(roomID, actor, frame)
}

func (s *Subscriptions) snapshot(roomID domain.RoomID) []*Connection {
	sh := s.shard(roomID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	set := sh.rooms[roomID]
	out := make([]*Connection, 0, len(set))
	for _, c := range set {
		out = append(out, c)
	}
	return out
}

// Broadcast queues f to every subscriber of roomID except exclude. Pass an
// empty exclude to include everyone. Sending happens outside the shard lock.
func (s *Subscriptions) Broadcast(roomID domain.RoomID, exclude core.SessionID, f core.Frame) core.PublishResult {
	res := core.PublishResult{}
	for _, c := range s.snapshot(roomID) {
		if c.ID == exclude {
			continue
		}
		if err := c.Signal.TrySend(f); err != nil {
			res.Dropped = append(res.Dropped, c.ID)
			continue
		}
		res.SentTo++
	}
	metrics.FanoutDelivered.Add(float64(res.SentTo))
	metrics.FanoutDropped.Add(float64(len(res.Dropped)))
	log.Debug().Str("module", "app.subscriptions").Int64("room", int64(roomID)).Int("sent_to", res.SentTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	return res
}

// SubscribersOf returns the connection ids subscribed to roomID, sorted.
func (s *Subscriptions) SubscribersOf(roomID domain.RoomID) []core.SessionID {
	conns := s.snapshot(roomID)
	out := make([]core.SessionID, 0, len(conns))
	for _, c := range conns {
		out = append(out, c.ID)
	}
	slices.Sort(out)
	return out
}

// Members is SubscribersOf with identities, for presence listings.
func (s *Subscriptions) Members(roomID domain.RoomID) []core.MemberDTO {
	conns := s.snapshot(roomID)
	out := make([]core.MemberDTO, 0, len(conns))
	for _, c := range conns {
		out = append(out, c.member())
	}
	slices.SortFunc(out, func(a, b core.MemberDTO) int {
		if a.ConnectionID < b.ConnectionID {
			return -1
		}
		if a.ConnectionID > b.ConnectionID {
			return 1
		}
		return 0
	})
	return out
}

func (s *Subscriptions) Contains(roomID domain.RoomID, sid core.SessionID) bool {
	sh := s.shard(roomID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	_, ok := sh.rooms[roomID][sid]
	return ok
}

// RoomCount returns how many rooms have at least one subscriber.
func (s *Subscriptions) RoomCount() int {
	n := 0
	for _, sh := range s.shards {
		sh.mu.RLock()
		n += len(sh.rooms)
		sh.mu.RUnlock()
	}
	return n
}
