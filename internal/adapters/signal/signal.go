// Package signal is the WebSocket side of the hub: it accepts
// connections, owns their read loops and hands decoded envelopes to the
// orchestrator.
package signal

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dkeye/telesync/internal/app/orch"
	"github.com/dkeye/telesync/internal/core"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

type Config struct {
	ReadLimit  int64
	PingPeriod time.Duration
	WriteWait  time.Duration
}

type SignalWSController struct {
	Orch    *orch.Orchestrator
	Limiter *JoinRateLimiter
	cfg     Config
}

func NewSignalWSController(o *orch.Orchestrator, limiter *JoinRateLimiter, cfg Config) *SignalWSController {
	if cfg.WriteWait <= 0 {
		cfg.WriteWait = 5 * time.Second
	}
	return &SignalWSController{
		Orch:    o,
		Limiter: limiter,
		cfg:     cfg,
	}
}

// WsSignalConn is the write handle the registry holds. Writes are
// serialized by the registry; control frames may interleave.
type WsSignalConn struct {
	conn      *websocket.Conn
	writeWait time.Duration

	closeOnce sync.Once
	closed    atomic.Bool
}

func (c *WsSignalConn) Send(f core.Frame) error {
	if c.closed.Load() {
		return core.ErrConnClosed
	}
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, f)
}

func (c *WsSignalConn) Close() {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		_ = c.conn.Close()
	})
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleSignal upgrades the request and starts the connection's read and
// keep-alive loops. Both stop when ctx is cancelled.
func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	id := core.ConnID(uuid.NewString())
	client := c.GetString("client_token")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Str("client", client).Msg("ws upgrade")
		return
	}
	log.Info().Str("module", "signal").Str("conn", string(id)).Str("client", client).Msg("new WS connection")

	conn := &WsSignalConn{conn: ws, writeWait: ctl.cfg.WriteWait}
	ctl.Orch.Connect(id, conn)

	ctx, cancel := context.WithCancel(ctx)
	go ctl.keepAlive(ctx, id, conn)
	go func() {
		defer cancel()
		ctl.readPump(ctx, id, conn)
	}()
}
