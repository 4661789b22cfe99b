package signal

import (
	"context"

	"github.com/dkeye/Huddle/internal/core"
	"github.com/dkeye/Huddle/internal/protocol"
)

func (ctl *SignalWSController) handleTodoCreate(ctx context.Context, sid core.SessionID, conn *WsSignalConn, in protocol.Inbound) error {
	var p protocol.TodoCreate
	if !ctl.bind(conn, in, &p) {
		return errInvalid
	}
	if err := ctl.throttle(ctx, sid, in.Type); err != nil {
		ctl.fail(conn, in, err, "Failed to create todo")
		return err
	}
	item, err := ctl.Orch.CreateTodo(ctx, sid, p.RoomID, p.Text)
	if err != nil {
		ctl.fail(conn, in, err, "Failed to create todo")
		return err
	}
	ctl.ack(conn, in, protocol.Ack{OK: true, Item: item})
	return nil
}

func (ctl *SignalWSController) handleTodoUpdate(ctx context.Context, sid core.SessionID, conn *WsSignalConn, in protocol.Inbound) error {
	var p protocol.TodoUpdate
	if !ctl.bind(conn, in, &p) {
		return errInvalid
	}
	if err := ctl.throttle(ctx, sid, in.Type); err != nil {
		ctl.fail(conn, in, err, "Failed to update todo")
		return err
	}
	item, err := ctl.Orch.UpdateTodo(ctx, sid, p.ID, p.Patch())
	if err != nil {
		ctl.fail(conn, in, err, "Failed to update todo")
		return err
	}
	ctl.ack(conn, in, protocol.Ack{OK: true, Item: item})
	return nil
}

func (ctl *SignalWSController) handleTodoDelete(ctx context.Context, sid core.SessionID, conn *WsSignalConn, in protocol.Inbound) error {
	var p protocol.TodoDelete
	if !ctl.bind(conn, in, &p) {
		return errInvalid
	}
	if err := ctl.throttle(ctx, sid, in.Type); err != nil {
		ctl.fail(conn, in, err, "Failed to delete todo")
		return err
	}
	if err := ctl.Orch.DeleteTodo(ctx, sid, p.ID); err != nil {
		ctl.fail(conn, in, err, "Failed to delete todo")
		return err
	}
	ctl.ack(conn, in, protocol.Ack{OK: true})
	return nil
}
