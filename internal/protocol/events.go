// Package protocol defines the frames exchanged over the hub's websocket.
package protocol

// Inbound events.
const (
	EventAuth       = "auth"
	EventJoinRoom   = "join-room"
	EventLeaveRoom  = "leave-room"
	EventChatPost   = "chat-post"
	EventTodoCreate = "todo-create"
	EventTodoUpdate = "todo-update"
	EventTodoDelete = "todo-delete"
	EventSignal     = "signal"
	EventPing       = "ping"
	EventWhoAmI     = "whoami"
)

// Outbound pushes.
const (
	PushAck           = "ack"
	PushError         = "error"
	PushSession       = "session"
	PushPong          = "pong"
	PushWhoAmI        = "whoami"
	PushPresenceJoin  = "presence-join"
	PushPresenceLeave = "presence-leave"
	PushChatMessage   = "chat-message"
	PushTodoCreated   = "todo-created"
	PushTodoUpdated   = "todo-updated"
	PushTodoDeleted   = "todo-deleted"
	PushSignal        = "signal"
)

// CloseUnauthorized is the websocket close code sent when the in-band
// handshake fails.
const CloseUnauthorized = 4401
