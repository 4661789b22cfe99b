package signal

import (
	"context"

	"github.com/dkeye/Huddle/internal/core"
	"github.com/dkeye/Huddle/internal/protocol"
)

func (ctl *SignalWSController) handleChatPost(ctx context.Context, sid core.SessionID, conn *WsSignalConn, in protocol.Inbound) error {
	var p protocol.ChatPost
	if !ctl.bind(conn, in, &p) {
		return errInvalid
	}
	if err := ctl.throttle(ctx, sid, in.Type); err != nil {
		ctl.fail(conn, in, err, "Failed to send message")
		return err
	}
	msg, err := ctl.Orch.PostMessage(ctx, sid, p.RoomID, p.Content)
	if err != nil {
		ctl.fail(conn, in, err, "Failed to send message")
		return err
	}
	ctl.ack(conn, in, protocol.Ack{OK: true, Message: msg})
	return nil
}
