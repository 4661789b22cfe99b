// Package coretest provides in-memory transport doubles for tests.
package coretest

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/dkeye/Huddle/internal/core"
)

var ErrFull = errors.New("recorder full")

// Frame is a decoded outbound envelope.
type Frame struct {
	Type string          `json:"type"`
	ID   json.RawMessage `json:"id,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Recorder is a core.SignalConnection that keeps every frame it receives.
// A positive Capacity makes TrySend fail once that many frames are held.
type Recorder struct {
	Capacity int

	mu     sync.Mutex
	frames []core.Frame
	closed bool
	full   bool
}

func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) TrySend(f core.Frame) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return errors.New("connection closed")
	}
	if r.full || (r.Capacity > 0 && len(r.frames) >= r.Capacity) {
		return ErrFull
	}
	r.frames = append(r.frames, f)
	return nil
}

func (r *Recorder) Close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
}

// SetFull makes every following TrySend fail with ErrFull until cleared.
func (r *Recorder) SetFull(v bool) {
	r.mu.Lock()
	r.full = v
	r.mu.Unlock()
}

func (r *Recorder) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// Frames decodes everything received so far, in order.
func (r *Recorder) Frames() []Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Frame, 0, len(r.frames))
	for _, raw := range r.frames {
		var f Frame
		if err := json.Unmarshal(raw, &f); err != nil {
			continue
		}
		out = append(out, f)
	}
	return out
}

// OfType returns the data of every frame with the given type.
func (r *Recorder) OfType(typ string) []json.RawMessage {
	var out []json.RawMessage
	for _, f := range r.Frames() {
		if f.Type == typ {
			out = append(out, f.Data)
		}
	}
	return out
}

// Count returns how many frames of the given type arrived.
func (r *Recorder) Count(typ string) int {
	return len(r.OfType(typ))
}

// Reset drops recorded frames.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.frames = nil
	r.mu.Unlock()
}
