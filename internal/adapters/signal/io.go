package signal

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/dkeye/Huddle/internal/core"
	"github.com/dkeye/Huddle/internal/domain"
	"github.com/dkeye/Huddle/internal/metrics"
	"github.com/dkeye/Huddle/internal/protocol"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// HandleSignal upgrades the request and serves the connection until it
// closes. An identity stored under IdentityKey skips the in-band handshake.
func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	var preauth *domain.Identity
	if v, ok := c.Get(IdentityKey); ok {
		if id, ok := v.(domain.Identity); ok {
			preauth = &id
		}
	}

	ws, err := ctl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	ws.SetReadLimit(ctl.settings.ReadLimit)

	conn := newWsSignalConn(ws, ctl.settings.SendBuffer)
	ctx, cancel := context.WithCancel(ctx)
	go ctl.writePump(ctx, conn)
	go func() {
		defer cancel()
		ctl.serve(ctx, conn, preauth)
	}()
}

func (ctl *SignalWSController) serve(ctx context.Context, conn *WsSignalConn, preauth *domain.Identity) {
	defer conn.Close()

	var id domain.Identity
	if preauth != nil {
		id = *preauth
	} else {
		var err error
		id, err = ctl.handshake(ctx, conn)
		if err != nil {
			log.Info().Err(err).Str("module", "signal").Msg("handshake rejected")
			conn.closeWith(protocol.CloseUnauthorized, "Unauthorized", ctl.settings.WriteWait)
			return
		}
	}

	c, err := ctl.Orch.Attach(id, conn)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("attach")
		return
	}
	metrics.EventsTotal.WithLabelValues("connect", "ok").Inc()
	defer ctl.Orch.Disconnect(c.ID)

	ctl.readPump(ctx, c.ID, conn)
}

// handshake waits for the first frame, which must be an auth frame carrying
// a valid token. Success is acked when the frame had an id; failure is
// reported by the close code alone.
func (ctl *SignalWSController) handshake(ctx context.Context, conn *WsSignalConn) (domain.Identity, error) {
	if err := conn.conn.SetReadDeadline(time.Now().Add(ctl.settings.HandshakeTimeout)); err != nil {
		return domain.Identity{}, err
	}
	_, data, err := conn.conn.ReadMessage()
	if err != nil {
		metrics.HandshakeFailures.WithLabelValues("timeout").Inc()
		return domain.Identity{}, err
	}
	in, err := protocol.Decode(data)
	if err != nil || in.Type != protocol.EventAuth {
		metrics.HandshakeFailures.WithLabelValues("no_auth_frame").Inc()
		return domain.Identity{}, domain.ErrAuth
	}
	var p protocol.Auth
	if err := json.Unmarshal(in.Data, &p); err != nil || ctl.validate.Struct(p) != nil {
		metrics.HandshakeFailures.WithLabelValues("malformed").Inc()
		return domain.Identity{}, domain.ErrAuth
	}
	id, err := ctl.Orch.Authenticate(ctx, p.Token)
	if err != nil {
		return domain.Identity{}, err
	}
	ctl.ack(conn, in, protocol.Ack{OK: true})
	return id, nil
}

func (ctl *SignalWSController) readPump(ctx context.Context, sid core.SessionID, c *WsSignalConn) {
	defer log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("readPump closing")

	pongWait := ctl.settings.PongWait
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if ctx.Err() != nil {
			return
		}
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) && !errors.Is(err, websocket.ErrCloseSent) {
				log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("readPump read error")
			}
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		ctl.dispatch(ctx, sid, c, data)
	}
}

func (ctl *SignalWSController) writePump(ctx context.Context, c *WsSignalConn) {
	ticker := time.NewTicker(ctl.settings.PingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		case data := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.settings.WriteWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Debug().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(ctl.settings.WriteWait)); err != nil {
				log.Debug().Err(err).Str("module", "signal").Msg("writePump ping error")
				return
			}
		}
	}
}
