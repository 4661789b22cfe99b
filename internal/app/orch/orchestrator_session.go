package orch

import (
	"context"
	"errors"
	"fmt"

	"github.com/dkeye/Huddle/internal/app"
	"github.com/dkeye/Huddle/internal/core"
	"github.com/dkeye/Huddle/internal/domain"
	"github.com/dkeye/Huddle/internal/metrics"
	"github.com/dkeye/Huddle/internal/protocol"
	"github.com/rs/zerolog/log"
)

// Authenticate turns a bearer credential into an identity. Every failure
// wraps domain.ErrAuth.
func (o *Orchestrator) Authenticate(ctx context.Context, token string) (domain.Identity, error) {
	if token == "" {
		metrics.HandshakeFailures.WithLabelValues("missing").Inc()
		return domain.Identity{}, fmt.Errorf("%w: missing credential", domain.ErrAuth)
	}
	id, err := o.Verifier.Verify(ctx, token)
	if err != nil {
		metrics.HandshakeFailures.WithLabelValues("invalid").Inc()
		if errors.Is(err, domain.ErrAuth) {
			return domain.Identity{}, err
		}
		return domain.Identity{}, fmt.Errorf("%w: %w", domain.ErrAuth, err)
	}
	return id, nil
}

// Attach registers an already authenticated transport under a fresh
// connection id and greets it with a session push.
func (o *Orchestrator) Attach(id domain.Identity, sig core.SignalConnection) (*app.Connection, error) {
	c, err := o.Registry.Attach(o.newSessionID(), id, sig)
	if err != nil {
		return nil, err
	}
	frame, err := protocol.Encode(protocol.PushSession, protocol.Session{
		ConnectionID: c.ID,
		UserID:       id.UserID,
		Name:         id.Name,
	})
	if err == nil {
		_ = sig.TrySend(frame)
	}
	log.Info().Str("module", "orch").Str("sid", string(c.ID)).Int64("user", int64(id.UserID)).Msg("connection attached")
	return c, nil
}

// Connect authenticates and attaches in one step. On failure nothing is
// registered.
func (o *Orchestrator) Connect(ctx context.Context, token string, sig core.SignalConnection) (*app.Connection, error) {
	id, err := o.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	return o.Attach(id, sig)
}

// Disconnect tears down a connection: it is sealed first so a concurrent join
// cannot resurrect it, then its subscriptions go with one presence-leave per
// room, then the registry entry. Calling it again is a no-op.
func (o *Orchestrator) Disconnect(sid core.SessionID) {
	c, ok := o.Registry.Get(sid)
	if !ok {
		return
	}
	if !c.Seal() {
		return
	}
	for roomID, res := range o.Rooms.RemoveAllFor(c) {
		o.applyPolicy(roomID, res)
	}
	o.Registry.Remove(sid)
	log.Info().Str("module", "orch").Str("sid", string(sid)).Msg("connection closed")
}

// Kick closes the transport and disconnects. The transport's own teardown
// will call Disconnect again, which is harmless.
func (o *Orchestrator) Kick(sid core.SessionID) {
	c, ok := o.Registry.Get(sid)
	if !ok {
		return
	}
	c.Signal.Close()
	o.Disconnect(sid)
}

func (o *Orchestrator) WhoAmI(sid core.SessionID) (protocol.WhoAmI, error) {
	c, err := o.connection(sid)
	if err != nil {
		return protocol.WhoAmI{}, err
	}
	return protocol.WhoAmI{
		ConnectionID: c.ID,
		UserID:       c.Identity.UserID,
		Name:         c.Identity.Name,
		Rooms:        c.Rooms(),
	}, nil
}

// Shutdown kicks every live connection.
func (o *Orchestrator) Shutdown() {
	conns := o.Registry.Snapshot()
	for _, c := range conns {
		o.Kick(c.ID)
	}
	log.Info().Str("module", "orch").Int("connections", len(conns)).Msg("all connections closed")
}
