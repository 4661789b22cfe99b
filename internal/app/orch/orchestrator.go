package orch

import (
	"context"
	"fmt"
	"time"

	"github.com/dkeye/Huddle/internal/app"
	"github.com/dkeye/Huddle/internal/core"
	"github.com/dkeye/Huddle/internal/domain"
	"github.com/dkeye/Huddle/internal/metrics"
	"github.com/dkeye/Huddle/internal/protocol"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Limits caps user supplied text before it is stored.
type Limits struct {
	MessageContent int
	TodoText       int
}

func DefaultLimits() Limits {
	return Limits{MessageContent: domain.MaxMessageContent, TodoText: domain.MaxTodoText}
}

// Orchestrator routes client events between the registry, the subscription
// table and the backing store. Transports call it; it never touches a socket
// except through core.SignalConnection.
type Orchestrator struct {
	Registry  *app.Registry
	Rooms     *app.Subscriptions
	Policy    app.Policy
	Verifier  core.CredentialVerifier
	Authority core.MembershipAuthority
	Store     core.Store
	Limits    Limits

	// NewSessionID defaults to a random UUID.
	NewSessionID func() core.SessionID
}

func New(verifier core.CredentialVerifier, authority core.MembershipAuthority, store core.Store, policy app.Policy) *Orchestrator {
	return &Orchestrator{
		Registry:  app.NewRegistry(),
		Rooms:     app.NewSubscriptions(authority),
		Policy:    policy,
		Verifier:  verifier,
		Authority: authority,
		Store:     store,
		Limits:    DefaultLimits(),
	}
}

func (o *Orchestrator) newSessionID() core.SessionID {
	if o.NewSessionID != nil {
		return o.NewSessionID()
	}
	return core.SessionID(uuid.NewString())
}

func (o *Orchestrator) limits() Limits {
	l := o.Limits
	d := DefaultLimits()
	if l.MessageContent <= 0 {
		l.MessageContent = d.MessageContent
	}
	if l.TodoText <= 0 {
		l.TodoText = d.TodoText
	}
	return l
}

// connection resolves a live connection. Unknown or closing ids are treated
// as unauthenticated.
func (o *Orchestrator) connection(sid core.SessionID) (*app.Connection, error) {
	c, ok := o.Registry.Get(sid)
	if !ok || c.Sealed() {
		return nil, domain.ErrNotAuthenticated
	}
	return c, nil
}

func (o *Orchestrator) authorize(ctx context.Context, userID domain.UserID, roomID domain.RoomID) error {
	started := time.Now()
	ok, err := o.Authority.IsMember(ctx, userID, roomID)
	metrics.StoreLatency.WithLabelValues("is_member").Observe(time.Since(started).Seconds())
	if err != nil {
		return fmt.Errorf("%w: membership check: %w", domain.ErrPersistence, err)
	}
	if !ok {
		return domain.ErrNotAMember
	}
	return nil
}

// fanout encodes a push and delivers it to every subscriber of roomID except
// exclude.
func (o *Orchestrator) fanout(roomID domain.RoomID, exclude core.SessionID, typ string, data any) core.PublishResult {
	frame, err := protocol.Encode(typ, data)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Str("type", typ).Msg("encode push")
		return core.PublishResult{}
	}
	res := o.Rooms.Broadcast(roomID, exclude, frame)
	o.applyPolicy(roomID, res)
	return res
}

func (o *Orchestrator) applyPolicy(roomID domain.RoomID, res core.PublishResult) {
	if o.Policy == nil {
		return
	}
	for _, slow := range res.Dropped {
		c, ok := o.Registry.Get(slow)
		if !ok {
			continue
		}
		switch o.Policy.OnBackPressure(roomID, c) {
		case app.KickMember:
			log.Warn().Str("module", "orch").Str("sid", string(slow)).Int64("room", int64(roomID)).Msg("slow consumer kicked")
			o.Kick(slow)
		case app.DropFrame, app.NoAction:
		}
	}
}
