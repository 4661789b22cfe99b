package signal

import (
	"encoding/json"

	"github.com/dkeye/Huddle/internal/core"
	"github.com/dkeye/Huddle/internal/domain"
	"github.com/dkeye/Huddle/internal/protocol"
)

var errInvalid = domain.ErrInvalidPayload

func (ctl *SignalWSController) handlePing(conn *WsSignalConn) {
	ctl.push(conn, protocol.PushPong, struct{}{})
}

func (ctl *SignalWSController) handleWhoAmI(sid core.SessionID, conn *WsSignalConn) error {
	who, err := ctl.Orch.WhoAmI(sid)
	if err != nil {
		return err
	}
	ctl.push(conn, protocol.PushWhoAmI, who)
	return nil
}

// handleRelay forwards call-setup payloads. Signals are fire and forget; only
// a malformed frame is reported back.
func (ctl *SignalWSController) handleRelay(sid core.SessionID, conn *WsSignalConn, in protocol.Inbound) error {
	var p protocol.SignalRelay
	if !ctl.bind(conn, in, &p) {
		return errInvalid
	}
	body := p.Body()
	if len(body) == 0 || string(body) == "null" || !json.Valid(body) {
		ctl.fail(conn, in, domain.ErrInvalidPayload, "")
		return errInvalid
	}
	return ctl.Orch.Relay(sid, p.RoomID, p.Target(), body)
}
