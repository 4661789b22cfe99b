package orch

import (
	"context"
	"fmt"
	"time"

	"github.com/dkeye/Huddle/internal/core"
	"github.com/dkeye/Huddle/internal/domain"
	"github.com/dkeye/Huddle/internal/metrics"
	"github.com/dkeye/Huddle/internal/protocol"
	"github.com/rs/zerolog/log"
)

// PostMessage stores a chat message and pushes it to every subscriber of the
// room, the author included. Content is cut to the configured limit.
func (o *Orchestrator) PostMessage(ctx context.Context, sid core.SessionID, roomID domain.RoomID, content string) (*domain.Message, error) {
	c, err := o.connection(sid)
	if err != nil {
		return nil, err
	}
	if err := o.authorize(ctx, c.Identity.UserID, roomID); err != nil {
		return nil, err
	}
	content = domain.Truncate(content, o.limits().MessageContent)

	started := time.Now()
	receipt, err := o.Store.InsertMessage(ctx, roomID, c.Identity.UserID, content)
	metrics.StoreLatency.WithLabelValues("insert_message").Observe(time.Since(started).Seconds())
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Int64("room", int64(roomID)).Msg("insert message")
		return nil, fmt.Errorf("%w: insert message: %w", domain.ErrPersistence, err)
	}

	msg := &domain.Message{
		ID:        receipt.ID,
		RoomID:    roomID,
		UserID:    c.Identity.UserID,
		UserName:  c.Identity.Name,
		Content:   content,
		CreatedAt: receipt.CreatedAt,
	}
	o.fanout(roomID, "", protocol.PushChatMessage, msg)
	return msg, nil
}
