package signal

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dkeye/Huddle/internal/app"
	"github.com/dkeye/Huddle/internal/app/orch"
	"github.com/dkeye/Huddle/internal/auth"
	"github.com/dkeye/Huddle/internal/core/coretest"
	"github.com/dkeye/Huddle/internal/domain"
	"github.com/dkeye/Huddle/internal/protocol"
	"github.com/dkeye/Huddle/internal/ratelimit"
	"github.com/dkeye/Huddle/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	url      string
	orch     *orch.Orchestrator
	store    *store.Store
	verifier *auth.JWTVerifier
}

func newHarness(t *testing.T, limiter ratelimit.Limiter) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st, err := store.Open(store.Config{Driver: "sqlite", DSN: ":memory:", AutoMigrate: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	v, err := auth.NewJWTVerifier(auth.Config{Secret: "test-secret"})
	require.NoError(t, err)

	o := orch.New(v, st, st, app.SimplePolicy{})
	settings := DefaultSettings()
	settings.HandshakeTimeout = 300 * time.Millisecond
	ctl := NewSignalWSController(o, limiter, settings)

	ctx, cancel := context.WithCancel(context.Background())
	r := gin.New()
	r.GET("/ws", func(c *gin.Context) {
		if token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer "); ok {
			id, err := o.Authenticate(c.Request.Context(), token)
			if err != nil {
				c.AbortWithStatus(http.StatusUnauthorized)
				return
			}
			c.Set(IdentityKey, id)
		}
		ctl.HandleSignal(ctx, c)
	})
	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		o.Shutdown()
		cancel()
		srv.Close()
	})

	return &harness{
		url:      "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws",
		orch:     o,
		store:    st,
		verifier: v,
	}
}

func (h *harness) token(t *testing.T, userID domain.UserID, name string) string {
	t.Helper()
	tok, err := h.verifier.Sign(domain.Identity{UserID: userID, Name: name})
	require.NoError(t, err)
	return tok
}

// room creates a room owned by the first user with the rest as members.
func (h *harness) room(t *testing.T, users ...domain.UserID) domain.RoomID {
	t.Helper()
	ctx := context.Background()
	roomID, err := h.store.CreateRoom(ctx, "room", users[0], false)
	require.NoError(t, err)
	for _, u := range users[1:] {
		require.NoError(t, h.store.AddMember(ctx, roomID, u))
	}
	return roomID
}

type client struct {
	t   *testing.T
	ws  *websocket.Conn
	sid string
	seq int
}

func (h *harness) dial(t *testing.T, token string) *client {
	t.Helper()
	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}
	ws, resp, err := websocket.DefaultDialer.Dial(h.url, header)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = ws.Close() })
	return &client{t: t, ws: ws}
}

// connect dials with a bearer token and waits for the session push.
func (h *harness) connect(t *testing.T, userID domain.UserID, name string) *client {
	t.Helper()
	c := h.dial(t, h.token(t, userID, name))
	var s protocol.Session
	c.decode(c.expect(protocol.PushSession).Data, &s)
	c.sid = string(s.ConnectionID)
	return c
}

func (c *client) send(typ string, data any) int {
	c.t.Helper()
	c.seq++
	raw, err := json.Marshal(data)
	require.NoError(c.t, err)
	frame := map[string]any{"type": typ, "id": c.seq, "data": json.RawMessage(raw)}
	require.NoError(c.t, c.ws.WriteJSON(frame))
	return c.seq
}

func (c *client) sendNoAck(typ string, data any) {
	c.t.Helper()
	require.NoError(c.t, c.ws.WriteJSON(map[string]any{"type": typ, "data": data}))
}

func (c *client) read() coretest.Frame {
	c.t.Helper()
	require.NoError(c.t, c.ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	var f coretest.Frame
	require.NoError(c.t, c.ws.ReadJSON(&f))
	return f
}

// expect reads until a frame of the given type arrives.
func (c *client) expect(typ string) coretest.Frame {
	c.t.Helper()
	for {
		if f := c.read(); f.Type == typ {
			return f
		}
	}
}

// ack waits for the ack of request id.
func (c *client) ack(id int) protocol.Ack {
	c.t.Helper()
	for {
		f := c.expect(protocol.PushAck)
		var got int
		c.decode(f.ID, &got)
		if got != id {
			continue
		}
		var a protocol.Ack
		c.decode(f.Data, &a)
		return a
	}
}

func (c *client) call(typ string, data any) protocol.Ack {
	c.t.Helper()
	return c.ack(c.send(typ, data))
}

// drain returns every frame that arrives before the reply to a fresh ping.
func (c *client) drain() []coretest.Frame {
	c.t.Helper()
	c.sendNoAck(protocol.EventPing, struct{}{})
	var out []coretest.Frame
	for {
		f := c.read()
		if f.Type == protocol.PushPong {
			return out
		}
		out = append(out, f)
	}
}

func (c *client) decode(raw json.RawMessage, v any) {
	c.t.Helper()
	require.NoError(c.t, json.Unmarshal(raw, v))
}

func types(frames []coretest.Frame) []string {
	out := make([]string, 0, len(frames))
	for _, f := range frames {
		out = append(out, f.Type)
	}
	return out
}

func closeCode(t *testing.T, ws *websocket.Conn) int {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		_, _, err := ws.ReadMessage()
		if err == nil {
			continue
		}
		var ce *websocket.CloseError
		if errors.As(err, &ce) {
			return ce.Code
		}
		t.Fatalf("expected close frame, got %v", err)
	}
}

func TestHandshake(t *testing.T) {
	t.Run("bearer header", func(t *testing.T) {
		h := newHarness(t, nil)
		c := h.dial(t, h.token(t, 7, "ana"))
		var s protocol.Session
		c.decode(c.expect(protocol.PushSession).Data, &s)
		assert.Equal(t, domain.UserID(7), s.UserID)
		assert.Equal(t, "ana", s.Name)
		assert.NotEmpty(t, s.ConnectionID)
	})

	t.Run("in-band auth frame", func(t *testing.T) {
		h := newHarness(t, nil)
		c := h.dial(t, "")
		a := c.call(protocol.EventAuth, protocol.Auth{Token: h.token(t, 8, "bob")})
		assert.True(t, a.OK)
		var s protocol.Session
		c.decode(c.expect(protocol.PushSession).Data, &s)
		assert.Equal(t, domain.UserID(8), s.UserID)
	})

	t.Run("bad in-band token closes with 4401", func(t *testing.T) {
		h := newHarness(t, nil)
		c := h.dial(t, "")
		c.send(protocol.EventAuth, protocol.Auth{Token: "forged"})
		assert.Equal(t, protocol.CloseUnauthorized, closeCode(t, c.ws))
		assert.Zero(t, h.orch.Registry.Len())
	})

	t.Run("first frame must be auth", func(t *testing.T) {
		h := newHarness(t, nil)
		c := h.dial(t, "")
		c.send(protocol.EventJoinRoom, protocol.JoinRoom{RoomID: 1})
		assert.Equal(t, protocol.CloseUnauthorized, closeCode(t, c.ws))
	})

	t.Run("silent client times out", func(t *testing.T) {
		h := newHarness(t, nil)
		c := h.dial(t, "")
		assert.Equal(t, protocol.CloseUnauthorized, closeCode(t, c.ws))
	})

	t.Run("bad bearer is refused before upgrade", func(t *testing.T) {
		h := newHarness(t, nil)
		header := http.Header{"Authorization": []string{"Bearer forged"}}
		_, resp, err := websocket.DefaultDialer.Dial(h.url, header)
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestChatRoom(t *testing.T) {
	h := newHarness(t, nil)
	roomID := h.room(t, 1, 2)

	a := h.connect(t, 1, "ana")
	b := h.connect(t, 2, "bob")
	intruder := h.connect(t, 3, "eve")

	ack := a.call(protocol.EventJoinRoom, protocol.JoinRoom{RoomID: roomID})
	require.True(t, ack.OK)
	require.Len(t, ack.Members, 1)

	ack = b.call(protocol.EventJoinRoom, protocol.JoinRoom{RoomID: roomID})
	require.True(t, ack.OK)
	assert.Len(t, ack.Members, 2)

	var pj protocol.PresenceJoin
	a.decode(a.expect(protocol.PushPresenceJoin).Data, &pj)
	assert.Equal(t, domain.UserID(2), pj.UserID)
	assert.Equal(t, b.sid, string(pj.ConnectionID))

	ack = intruder.call(protocol.EventJoinRoom, protocol.JoinRoom{RoomID: roomID})
	assert.Equal(t, "Not a member", ack.Error)
	ack = intruder.call(protocol.EventChatPost, protocol.ChatPost{RoomID: roomID, Content: "let me in"})
	assert.Equal(t, "Not a member", ack.Error)

	ack = a.call(protocol.EventChatPost, protocol.ChatPost{RoomID: roomID, Content: "hello"})
	require.True(t, ack.OK, ack.Error)
	require.NotNil(t, ack.Message)
	assert.Equal(t, "hello", ack.Message.Content)
	assert.Equal(t, "ana", ack.Message.UserName)
	assert.NotZero(t, ack.Message.ID)

	for _, c := range []*client{a, b} {
		var m domain.Message
		c.decode(c.expect(protocol.PushChatMessage).Data, &m)
		assert.Equal(t, ack.Message.ID, m.ID)
		assert.Equal(t, roomID, m.RoomID)
	}
	assert.NotContains(t, types(intruder.drain()), protocol.PushChatMessage)
}

func TestLeaveAndDisconnect(t *testing.T) {
	h := newHarness(t, nil)
	r1 := h.room(t, 1, 2)
	r2 := h.room(t, 1, 2)

	a := h.connect(t, 1, "ana")
	b := h.connect(t, 2, "bob")
	for _, r := range []domain.RoomID{r1, r2} {
		require.True(t, a.call(protocol.EventJoinRoom, protocol.JoinRoom{RoomID: r}).OK)
		require.True(t, b.call(protocol.EventJoinRoom, protocol.JoinRoom{RoomID: r}).OK)
	}
	a.drain()

	require.True(t, b.call(protocol.EventLeaveRoom, protocol.LeaveRoom{RoomID: r1}).OK)
	var pl protocol.PresenceLeave
	a.decode(a.expect(protocol.PushPresenceLeave).Data, &pl)
	assert.Equal(t, b.sid, string(pl.ConnectionID))

	require.NoError(t, b.ws.Close())
	a.decode(a.expect(protocol.PushPresenceLeave).Data, &pl)
	assert.Equal(t, domain.UserID(2), pl.UserID)

	require.Eventually(t, func() bool { return h.orch.Registry.Len() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{a.sid}, sids(h.orch.Rooms.SubscribersOf(r2)))
}

func TestTodos(t *testing.T) {
	h := newHarness(t, nil)
	roomID := h.room(t, 1)
	a := h.connect(t, 1, "ana")
	require.True(t, a.call(protocol.EventJoinRoom, protocol.JoinRoom{RoomID: roomID}).OK)

	ack := a.call(protocol.EventTodoCreate, protocol.TodoCreate{RoomID: roomID, Text: "ship it"})
	require.True(t, ack.OK, ack.Error)
	require.NotNil(t, ack.Item)
	itemID := ack.Item.ID
	a.expect(protocol.PushTodoCreated)

	ack = a.call(protocol.EventTodoUpdate, map[string]any{"id": itemID})
	assert.Equal(t, "No changes", ack.Error)

	ack = a.call(protocol.EventTodoUpdate, map[string]any{"id": itemID, "completed": true})
	require.True(t, ack.OK, ack.Error)
	assert.True(t, ack.Item.Completed)
	assert.Equal(t, "ship it", ack.Item.Text)
	a.expect(protocol.PushTodoUpdated)

	ack = a.call(protocol.EventTodoUpdate, map[string]any{"id": itemID, "text": nil})
	require.True(t, ack.OK, ack.Error)
	assert.Empty(t, ack.Item.Text)
	assert.True(t, ack.Item.Completed)
	a.expect(protocol.PushTodoUpdated)

	ack = a.call(protocol.EventTodoDelete, protocol.TodoDelete{ID: itemID})
	require.True(t, ack.OK, ack.Error)
	var del protocol.TodoDeleted
	a.decode(a.expect(protocol.PushTodoDeleted).Data, &del)
	assert.Equal(t, itemID, del.ID)

	ack = a.call(protocol.EventTodoDelete, protocol.TodoDelete{ID: itemID})
	assert.Equal(t, "Not found", ack.Error)
}

func TestSignalRelay(t *testing.T) {
	h := newHarness(t, nil)
	roomID := h.room(t, 1, 2, 3)
	x := h.connect(t, 1, "x")
	y := h.connect(t, 2, "y")
	z := h.connect(t, 3, "z")
	for _, c := range []*client{x, y, z} {
		require.True(t, c.call(protocol.EventJoinRoom, protocol.JoinRoom{RoomID: roomID}).OK)
	}
	x.drain()
	y.drain()
	z.drain()

	x.sendNoAck(protocol.EventSignal, map[string]any{"roomId": roomID, "payload": map[string]string{"type": "offer"}})
	for _, c := range []*client{y, z} {
		var s protocol.Signal
		c.decode(c.expect(protocol.PushSignal).Data, &s)
		assert.Equal(t, x.sid, string(s.From))
		assert.JSONEq(t, `{"type":"offer"}`, string(s.Payload))
	}
	assert.NotContains(t, types(x.drain()), protocol.PushSignal)

	x.sendNoAck(protocol.EventSignal, map[string]any{"roomId": roomID, "targetConnectionId": z.sid, "payload": "answer"})
	z.expect(protocol.PushSignal)
	assert.NotContains(t, types(y.drain()), protocol.PushSignal)

	x.sendNoAck(protocol.EventSignal, map[string]any{"roomId": roomID, "to": "gone", "data": 1})
	assert.Empty(t, x.drain())

	x.sendNoAck(protocol.EventSignal, map[string]any{"roomId": roomID})
	assert.Equal(t, []string{protocol.PushError}, types(x.drain()))
}

func TestControlEvents(t *testing.T) {
	h := newHarness(t, nil)
	roomID := h.room(t, 1)
	a := h.connect(t, 1, "ana")
	require.True(t, a.call(protocol.EventJoinRoom, protocol.JoinRoom{RoomID: roomID}).OK)

	a.sendNoAck(protocol.EventWhoAmI, struct{}{})
	var who protocol.WhoAmI
	a.decode(a.expect(protocol.PushWhoAmI).Data, &who)
	assert.Equal(t, a.sid, string(who.ConnectionID))
	assert.Equal(t, []domain.RoomID{roomID}, who.Rooms)

	require.NoError(t, a.ws.WriteMessage(websocket.TextMessage, []byte("{not json")))
	var e protocol.Error
	a.decode(a.expect(protocol.PushError).Data, &e)
	assert.Equal(t, "Invalid payload", e.Error)

	ack := a.call(protocol.EventJoinRoom, map[string]any{"roomId": 0})
	assert.Equal(t, "Invalid payload", ack.Error)

	ack = a.call("shout", struct{}{})
	assert.Equal(t, "Invalid payload", ack.Error)
}

func TestRateLimit(t *testing.T) {
	h := newHarness(t, ratelimit.NewMemory(ratelimit.Config{Events: 2, Interval: time.Minute}))
	roomID := h.room(t, 1)
	a := h.connect(t, 1, "ana")

	for range 2 {
		ack := a.call(protocol.EventChatPost, protocol.ChatPost{RoomID: roomID, Content: "spam"})
		require.True(t, ack.OK, ack.Error)
	}
	ack := a.call(protocol.EventChatPost, protocol.ChatPost{RoomID: roomID, Content: "spam"})
	assert.Equal(t, "Rate limited", ack.Error)

	ack = a.call(protocol.EventJoinRoom, protocol.JoinRoom{RoomID: roomID})
	assert.True(t, ack.OK, "joins are not throttled")
}

func TestWireError(t *testing.T) {
	tests := []struct {
		err      error
		fallback string
		want     string
	}{
		{domain.ErrNotAMember, "Failed to join", "Not a member"},
		{domain.ErrNotFound, "Failed to update todo", "Not found"},
		{domain.ErrNoChanges, "Failed to update todo", "No changes"},
		{domain.ErrRateLimited, "", "Rate limited"},
		{domain.ErrAuth, "", "Unauthorized"},
		{domain.ErrNotAuthenticated, "", "Not authenticated"},
		{domain.ErrPersistence, "Failed to send message", "Failed to send message"},
		{errors.New("boom"), "Failed to create todo", "Failed to create todo"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, wireError(tt.err, tt.fallback), tt.err.Error())
	}
}

func sids[T ~string](in []T) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, string(s))
	}
	return out
}
