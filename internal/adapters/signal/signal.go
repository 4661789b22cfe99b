package signal

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/dkeye/Huddle/internal/app/orch"
	"github.com/dkeye/Huddle/internal/core"
	"github.com/dkeye/Huddle/internal/ratelimit"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
)

var (
	ErrBackpressure = errors.New("backpressure")
	ErrClosed       = errors.New("connection closed")
)

// IdentityKey is the gin context key under which the router stores an
// identity verified before the upgrade.
const IdentityKey = "identity"

type Settings struct {
	ReadLimit        int64
	PingPeriod       time.Duration
	PongWait         time.Duration
	WriteWait        time.Duration
	SendBuffer       int
	HandshakeTimeout time.Duration
	CheckOrigin      func(r *http.Request) bool
}

func DefaultSettings() Settings {
	return Settings{
		ReadLimit:        65536,
		PingPeriod:       20 * time.Second,
		PongWait:         40 * time.Second,
		WriteWait:        5 * time.Second,
		SendBuffer:       64,
		HandshakeTimeout: 10 * time.Second,
	}
}

type SignalWSController struct {
	Orch    *orch.Orchestrator
	Limiter ratelimit.Limiter

	settings Settings
	upgrader websocket.Upgrader
	validate *validator.Validate
}

func NewSignalWSController(o *orch.Orchestrator, limiter ratelimit.Limiter, s Settings) *SignalWSController {
	if limiter == nil {
		limiter = ratelimit.Unlimited{}
	}
	checkOrigin := s.CheckOrigin
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	return &SignalWSController{
		Orch:     o,
		Limiter:  limiter,
		settings: s,
		upgrader: websocket.Upgrader{CheckOrigin: checkOrigin},
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// WsSignalConn is the core.SignalConnection of one websocket. Frames are
// queued on a bounded channel drained by the write pump.
type WsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame
	done chan struct{}

	mu     sync.RWMutex
	closed bool
}

func newWsSignalConn(ws *websocket.Conn, buffer int) *WsSignalConn {
	return &WsSignalConn{
		conn: ws,
		send: make(chan core.Frame, buffer),
		done: make(chan struct{}),
	}
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrClosed
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.done)
	_ = c.conn.Close()
	c.mu.Unlock()
}

// closeWith sends a close frame with code and reason, then closes.
func (c *WsSignalConn) closeWith(code int, reason string, wait time.Duration) {
	msg := websocket.FormatCloseMessage(code, reason)
	_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(wait))
	c.Close()
}

var _ core.SignalConnection = (*WsSignalConn)(nil)

// AllowOrigin accepts requests from origin and requests with no Origin
// header. An empty origin accepts everything.
func AllowOrigin(origin string) func(r *http.Request) bool {
	if origin == "" {
		return nil
	}
	return func(r *http.Request) bool {
		got := r.Header.Get("Origin")
		return got == "" || got == origin
	}
}
