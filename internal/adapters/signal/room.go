package signal

import (
	"context"

	"github.com/dkeye/Huddle/internal/core"
	"github.com/dkeye/Huddle/internal/protocol"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) handleJoin(ctx context.Context, sid core.SessionID, conn *WsSignalConn, in protocol.Inbound) error {
	var p protocol.JoinRoom
	if !ctl.bind(conn, in, &p) {
		return errInvalid
	}
	members, err := ctl.Orch.Join(ctx, sid, p.RoomID)
	if err != nil {
		ctl.fail(conn, in, err, "Failed to join")
		return err
	}
	log.Info().Str("module", "signal").Str("sid", string(sid)).Int64("room", int64(p.RoomID)).Msg("join")
	ctl.ack(conn, in, protocol.Ack{OK: true, Members: members})
	return nil
}

// handleLeave acks even when the room was never joined.
func (ctl *SignalWSController) handleLeave(sid core.SessionID, conn *WsSignalConn, in protocol.Inbound) error {
	var p protocol.LeaveRoom
	if !ctl.bind(conn, in, &p) {
		return errInvalid
	}
	if err := ctl.Orch.Leave(sid, p.RoomID); err != nil {
		ctl.fail(conn, in, err, "Failed to leave")
		return err
	}
	log.Info().Str("module", "signal").Str("sid", string(sid)).Int64("room", int64(p.RoomID)).Msg("leave")
	ctl.ack(conn, in, protocol.Ack{OK: true})
	return nil
}
