package orch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dkeye/Huddle/internal/core"
	"github.com/dkeye/Huddle/internal/domain"
	"github.com/dkeye/Huddle/internal/metrics"
	"github.com/dkeye/Huddle/internal/protocol"
	"github.com/rs/zerolog/log"
)

func (o *Orchestrator) CreateTodo(ctx context.Context, sid core.SessionID, roomID domain.RoomID, text string) (*domain.TodoItem, error) {
	c, err := o.connection(sid)
	if err != nil {
		return nil, err
	}
	if err := o.authorize(ctx, c.Identity.UserID, roomID); err != nil {
		return nil, err
	}
	text = domain.Truncate(text, o.limits().TodoText)

	started := time.Now()
	item, err := o.Store.InsertTodo(ctx, roomID, text)
	metrics.StoreLatency.WithLabelValues("insert_todo").Observe(time.Since(started).Seconds())
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Int64("room", int64(roomID)).Msg("insert todo")
		return nil, fmt.Errorf("%w: insert todo: %w", domain.ErrPersistence, err)
	}
	o.fanout(roomID, "", protocol.PushTodoCreated, item)
	return item, nil
}

// UpdateTodo checks, in order: the item exists, the caller is a member of its
// room, the patch changes something.
func (o *Orchestrator) UpdateTodo(ctx context.Context, sid core.SessionID, itemID domain.TodoID, patch domain.TodoPatch) (*domain.TodoItem, error) {
	c, err := o.connection(sid)
	if err != nil {
		return nil, err
	}
	roomID, err := o.roomOfItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if err := o.authorize(ctx, c.Identity.UserID, roomID); err != nil {
		return nil, err
	}
	if patch.Empty() {
		return nil, domain.ErrNoChanges
	}
	if patch.Text != nil {
		t := domain.Truncate(*patch.Text, o.limits().TodoText)
		patch.Text = &t
	}

	started := time.Now()
	item, err := o.Store.UpdateTodo(ctx, itemID, patch)
	metrics.StoreLatency.WithLabelValues("update_todo").Observe(time.Since(started).Seconds())
	if err != nil {
		return nil, storeErr("update todo", err)
	}
	o.fanout(roomID, "", protocol.PushTodoUpdated, item)
	return item, nil
}

func (o *Orchestrator) DeleteTodo(ctx context.Context, sid core.SessionID, itemID domain.TodoID) error {
	c, err := o.connection(sid)
	if err != nil {
		return err
	}
	roomID, err := o.roomOfItem(ctx, itemID)
	if err != nil {
		return err
	}
	if err := o.authorize(ctx, c.Identity.UserID, roomID); err != nil {
		return err
	}

	started := time.Now()
	err = o.Store.DeleteTodo(ctx, itemID)
	metrics.StoreLatency.WithLabelValues("delete_todo").Observe(time.Since(started).Seconds())
	if err != nil {
		return storeErr("delete todo", err)
	}
	o.fanout(roomID, "", protocol.PushTodoDeleted, protocol.TodoDeleted{ID: itemID})
	return nil
}

func (o *Orchestrator) roomOfItem(ctx context.Context, itemID domain.TodoID) (domain.RoomID, error) {
	started := time.Now()
	roomID, err := o.Authority.RoomOfItem(ctx, itemID)
	metrics.StoreLatency.WithLabelValues("room_of_item").Observe(time.Since(started).Seconds())
	if err != nil {
		return 0, storeErr("room of item", err)
	}
	return roomID, nil
}

// storeErr passes ErrNotFound through and folds everything else into
// ErrPersistence.
func storeErr(op string, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrNotFound
	}
	log.Error().Err(err).Str("module", "orch").Str("op", op).Msg("store failure")
	return fmt.Errorf("%w: %s: %w", domain.ErrPersistence, op, err)
}
