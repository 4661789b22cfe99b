package orch

import (
	"context"

	"github.com/dkeye/Huddle/internal/core"
	"github.com/dkeye/Huddle/internal/domain"
	"github.com/rs/zerolog/log"
)

// Join subscribes sid to roomID and returns who is in the room now, the
// joiner included.
func (o *Orchestrator) Join(ctx context.Context, sid core.SessionID, roomID domain.RoomID) ([]core.MemberDTO, error) {
	c, err := o.connection(sid)
	if err != nil {
		return nil, err
	}
	res, err := o.Rooms.Join(ctx, c, roomID)
	if err != nil {
		log.Debug().Err(err).Str("module", "orch").Str("sid", string(sid)).Int64("room", int64(roomID)).Msg("join refused")
		return nil, err
	}
	o.applyPolicy(roomID, res)
	return o.Rooms.Members(roomID), nil
}

// Leave never fails for a live connection; leaving an unjoined room is a no-op.
func (o *Orchestrator) Leave(sid core.SessionID, roomID domain.RoomID) error {
	c, err := o.connection(sid)
	if err != nil {
		return err
	}
	o.applyPolicy(roomID, o.Rooms.Leave(c, roomID))
	return nil
}

// RoomPresence lists live subscribers of a room for a caller that is a
// member of it.
func (o *Orchestrator) RoomPresence(ctx context.Context, id domain.Identity, roomID domain.RoomID) ([]core.MemberDTO, error) {
	if err := o.authorize(ctx, id.UserID, roomID); err != nil {
		return nil, err
	}
	return o.Rooms.Members(roomID), nil
}
