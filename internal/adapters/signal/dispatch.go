package signal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dkeye/Huddle/internal/core"
	"github.com/dkeye/Huddle/internal/domain"
	"github.com/dkeye/Huddle/internal/metrics"
	"github.com/dkeye/Huddle/internal/protocol"
	"github.com/rs/zerolog/log"
)

// dispatch handles one inbound frame. Frames of a connection are handled one
// at a time, in arrival order.
func (ctl *SignalWSController) dispatch(ctx context.Context, sid core.SessionID, conn *WsSignalConn, data []byte) {
	in, err := protocol.Decode(data)
	if err != nil {
		log.Debug().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("bad frame")
		ctl.push(conn, protocol.PushError, protocol.Error{Error: wireError(domain.ErrInvalidPayload, "")})
		return
	}

	started := time.Now()
	err = ctl.route(ctx, sid, conn, in)
	result := "ok"
	if err != nil {
		result = resultLabel(err)
	}
	metrics.EventsTotal.WithLabelValues(in.Type, result).Inc()
	metrics.EventDuration.WithLabelValues(in.Type).Observe(time.Since(started).Seconds())
}

func (ctl *SignalWSController) route(ctx context.Context, sid core.SessionID, conn *WsSignalConn, in protocol.Inbound) error {
	switch in.Type {
	case protocol.EventJoinRoom:
		return ctl.handleJoin(ctx, sid, conn, in)
	case protocol.EventLeaveRoom:
		return ctl.handleLeave(sid, conn, in)
	case protocol.EventChatPost:
		return ctl.handleChatPost(ctx, sid, conn, in)
	case protocol.EventTodoCreate:
		return ctl.handleTodoCreate(ctx, sid, conn, in)
	case protocol.EventTodoUpdate:
		return ctl.handleTodoUpdate(ctx, sid, conn, in)
	case protocol.EventTodoDelete:
		return ctl.handleTodoDelete(ctx, sid, conn, in)
	case protocol.EventSignal:
		return ctl.handleRelay(sid, conn, in)
	case protocol.EventPing:
		ctl.handlePing(conn)
		return nil
	case protocol.EventWhoAmI:
		return ctl.handleWhoAmI(sid, conn)
	case protocol.EventAuth:
		// Already authenticated; identity cannot change on a live connection.
		ctl.ack(conn, in, protocol.Ack{OK: true})
		return nil
	default:
		log.Warn().Str("module", "signal").Str("type", in.Type).Msg("unknown event")
		ctl.fail(conn, in, domain.ErrInvalidPayload, "")
		return domain.ErrInvalidPayload
	}
}

// bind decodes and validates the payload. On failure the client is told and
// false is returned.
func (ctl *SignalWSController) bind(conn *WsSignalConn, in protocol.Inbound, dst any) bool {
	if err := json.Unmarshal(in.Data, dst); err != nil {
		ctl.fail(conn, in, domain.ErrInvalidPayload, "")
		return false
	}
	if err := ctl.validate.Struct(dst); err != nil {
		ctl.fail(conn, in, domain.ErrInvalidPayload, "")
		return false
	}
	return true
}

// throttle applies the per-user limiter to mutating events. A limiter
// failure lets the event through.
func (ctl *SignalWSController) throttle(ctx context.Context, sid core.SessionID, event string) error {
	id, ok := ctl.Orch.Registry.Lookup(sid)
	if !ok {
		return domain.ErrNotAuthenticated
	}
	allowed, err := ctl.Limiter.Allow(ctx, fmt.Sprintf("user:%d", id.UserID))
	if err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("rate limiter unavailable")
		return nil
	}
	if !allowed {
		metrics.RateLimitHits.WithLabelValues(event).Inc()
		return domain.ErrRateLimited
	}
	return nil
}

// ack replies to in when the client asked for a reply by sending an id.
func (ctl *SignalWSController) ack(conn *WsSignalConn, in protocol.Inbound, a protocol.Ack) {
	if len(in.ID) == 0 {
		return
	}
	b, err := protocol.EncodeAck(in.ID, a)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("encode ack")
		return
	}
	_ = conn.TrySend(b)
}

// fail reports err to the actor only: as an ack when the frame had an id,
// as an error push otherwise.
func (ctl *SignalWSController) fail(conn *WsSignalConn, in protocol.Inbound, err error, fallback string) {
	msg := wireError(err, fallback)
	if len(in.ID) > 0 {
		ctl.ack(conn, in, protocol.Ack{Error: msg})
		return
	}
	ctl.push(conn, protocol.PushError, protocol.Error{Error: msg})
}

func (ctl *SignalWSController) push(conn *WsSignalConn, typ string, data any) {
	b, err := protocol.Encode(typ, data)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("encode push")
		return
	}
	_ = conn.TrySend(b)
}

// wireError maps domain errors to the strings clients see. Anything
// unexpected becomes the operation's generic failure.
func wireError(err error, fallback string) string {
	switch {
	case errors.Is(err, domain.ErrAuth):
		return "Unauthorized"
	case errors.Is(err, domain.ErrNotAuthenticated):
		return "Not authenticated"
	case errors.Is(err, domain.ErrNotAMember):
		return "Not a member"
	case errors.Is(err, domain.ErrNotFound):
		return "Not found"
	case errors.Is(err, domain.ErrNoChanges):
		return "No changes"
	case errors.Is(err, domain.ErrInvalidPayload):
		return "Invalid payload"
	case errors.Is(err, domain.ErrRateLimited):
		return "Rate limited"
	}
	if fallback == "" {
		return "Internal error"
	}
	return fallback
}

func resultLabel(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotAMember):
		return "not_member"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInvalidPayload):
		return "invalid"
	case errors.Is(err, domain.ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, domain.ErrPersistence):
		return "persistence"
	default:
		return "error"
	}
}
