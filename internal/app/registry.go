package app

import (
	"errors"
	"hash/fnv"
	"sync"

	"github.com/dkeye/Huddle/internal/core"
	"github.com/dkeye/Huddle/internal/domain"
	"github.com/dkeye/Huddle/internal/metrics"
	"github.com/rs/zerolog/log"
)

const registryShards = 32

var ErrSessionExists = errors.New("session already registered")

type registryShard struct {
	mu       sync.RWMutex
	sessions map[core.SessionID]*Connection
}

// Registry tracks live authenticated connections. There is no
// "registered but unauthenticated" entry: a connection is attached with its
// identity or not present at all.
type Registry struct {
	shards [registryShards]*registryShard
}

func NewRegistry() *Registry {
	r := &Registry{}
	for i := range r.shards {
		r.shards[i] = &registryShard{sessions: make(map[core.SessionID]*Connection)}
	}
	return r
}

func (r *Registry) shard(sid core.SessionID) *registryShard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sid))
	return r.shards[h.Sum32()%registryShards]
}

// Attach binds a verified identity to a new connection id.
func (r *Registry) Attach(sid core.SessionID, id domain.Identity, sig core.SignalConnection) (*Connection, error) {
	s := r.shard(sid)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sid]; ok {
		return nil, ErrSessionExists
	}
	c := newConnection(sid, id, sig)
	s.sessions[sid] = c
	metrics.ConnectionsActive.Inc()
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Int64("user", int64(id.UserID)).Msg("attached connection")
	return c, nil
}

func (r *Registry) Get(sid core.SessionID) (*Connection, bool) {
	s := r.shard(sid)
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.sessions[sid]
	return c, ok
}

func (r *Registry) Lookup(sid core.SessionID) (domain.Identity, bool) {
	c, ok := r.Get(sid)
	if !ok {
		return domain.Identity{}, false
	}
	return c.Identity, true
}

// Remove unregisters a connection. Safe to call twice.
func (r *Registry) Remove(sid core.SessionID) bool {
	s := r.shard(sid)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sid]; !ok {
		return false
	}
	delete(s.sessions, sid)
	metrics.ConnectionsActive.Dec()
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("removed connection")
	return true
}

func (r *Registry) Len() int {
	n := 0
	for _, s := range r.shards {
		s.mu.RLock()
		n += len(s.sessions)
		s.mu.RUnlock()
	}
	return n
}

// Snapshot returns every registered connection.
func (r *Registry) Snapshot() []*Connection {
	var out []*Connection
	for _, s := range r.shards {
		s.mu.RLock()
		for _, c := range s.sessions {
			out = append(out, c)
		}
		s.mu.RUnlock()
	}
	return out
}
