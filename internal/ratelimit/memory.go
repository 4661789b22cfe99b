package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Memory is a per-process sliding window limiter.
type Memory struct {
	mu       sync.Mutex
	history  map[string][]time.Time
	limit    int
	interval time.Duration
	now      func() time.Time
}

func NewMemory(cfg Config) *Memory {
	return &Memory{
		history:  make(map[string][]time.Time),
		limit:    cfg.Events,
		interval: cfg.Interval,
		now:      time.Now,
	}
}

func (m *Memory) Allow(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	windowStart := now.Add(-m.interval)

	attempts := m.history[key]
	fresh := attempts[:0]
	for _, t := range attempts {
		if t.After(windowStart) {
			fresh = append(fresh, t)
		}
	}

	if len(fresh) >= m.limit {
		m.history[key] = fresh
		return false, nil
	}
	m.history[key] = append(fresh, now)
	return true, nil
}

// Prune forgets keys with no attempt inside the window.
func (m *Memory) Prune() {
	m.mu.Lock()
	defer m.mu.Unlock()
	windowStart := m.now().Add(-m.interval)
	for key, attempts := range m.history {
		if len(attempts) == 0 || !attempts[len(attempts)-1].After(windowStart) {
			delete(m.history, key)
		}
	}
}

// Run prunes every interval until ctx is done. Without a positive interval
// there is no window to prune and Run returns at once.
func (m *Memory) Run(ctx context.Context) {
	if m.interval <= 0 {
		return
	}
	t := time.NewTicker(m.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			m.Prune()
		}
	}
}
