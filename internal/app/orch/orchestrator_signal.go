package orch

import (
	"encoding/json"

	"github.com/dkeye/Huddle/internal/core"
	"github.com/dkeye/Huddle/internal/domain"
	"github.com/dkeye/Huddle/internal/metrics"
	"github.com/dkeye/Huddle/internal/protocol"
	"github.com/rs/zerolog/log"
)

// Relay forwards an opaque signaling payload. With a target it goes to that
// one connection; without, to every other subscriber of roomID, provided the
// sender is subscribed there. Undeliverable signals are dropped silently.
func (o *Orchestrator) Relay(sid core.SessionID, roomID domain.RoomID, target core.SessionID, payload json.RawMessage) error {
	c, err := o.connection(sid)
	if err != nil {
		return err
	}
	frame, err := protocol.Encode(protocol.PushSignal, protocol.Signal{From: c.ID, Payload: payload})
	if err != nil {
		return err
	}

	if target != "" {
		dst, ok := o.Registry.Get(target)
		if !ok || dst.Sealed() {
			metrics.SignalsDropped.WithLabelValues("target_gone").Inc()
			log.Debug().Str("module", "orch.signal").Str("from", string(sid)).Str("to", string(target)).Msg("signal target gone")
			return nil
		}
		if err := dst.Signal.TrySend(frame); err != nil {
			metrics.SignalsDropped.WithLabelValues("backpressure").Inc()
			o.applyPolicy(roomID, core.PublishResult{Dropped: []core.SessionID{target}})
		}
		return nil
	}

	if !o.Rooms.Contains(roomID, sid) {
		metrics.SignalsDropped.WithLabelValues("not_subscribed").Inc()
		log.Debug().Str("module", "orch.signal").Str("from", string(sid)).Int64("room", int64(roomID)).Msg("signal from non-subscriber")
		return nil
	}
	o.applyPolicy(roomID, o.Rooms.Broadcast(roomID, sid, frame))
	return nil
}
