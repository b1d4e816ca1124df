package signal

import (
	"context"
	"time"

	"github.com/dkeye/telesync/internal/app/orch"
	"github.com/dkeye/telesync/internal/core"
	"github.com/dkeye/telesync/internal/protocol"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) pongWait() time.Duration {
	return ctl.cfg.PingPeriod * 10 / 9
}

// keepAlive pings the peer every PingPeriod and closes the connection
// once ctx is done.
func (ctl *SignalWSController) keepAlive(ctx context.Context, id core.ConnID, c *WsSignalConn) {
	if ctl.cfg.PingPeriod <= 0 {
		<-ctx.Done()
		c.Close()
		return
	}
	ticker := time.NewTicker(ctl.cfg.PingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("module", "signal").Str("conn", string(id)).Msg("keepAlive ctx done")
			c.Close()
			return
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(ctl.cfg.WriteWait)); err != nil {
				log.Debug().Err(err).Str("module", "signal").Str("conn", string(id)).Msg("ping failed")
				c.Close()
				return
			}
		}
	}
}

// readPump is the only reader of the connection. Envelopes are handled
// one at a time in arrival order.
func (ctl *SignalWSController) readPump(ctx context.Context, id core.ConnID, c *WsSignalConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("conn", string(id)).Msg("readPump closing")
		ctl.Orch.Disconnect(id)
		if ctl.Limiter != nil {
			ctl.Limiter.Forget(id)
		}
		c.Close()
	}()

	if ctl.cfg.ReadLimit > 0 {
		c.conn.SetReadLimit(ctl.cfg.ReadLimit)
	}
	if ctl.cfg.PingPeriod > 0 {
		_ = c.conn.SetReadDeadline(time.Now().Add(ctl.pongWait()))
		c.conn.SetPongHandler(func(string) error {
			return c.conn.SetReadDeadline(time.Now().Add(ctl.pongWait()))
		})
	}

	for {
		mt, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("module", "signal").Str("conn", string(id)).Msg("readPump read error")
			}
			return
		}
		if mt != websocket.TextMessage {
			continue
		}
		ctl.handleFrame(ctx, id, data)
	}
}

func (ctl *SignalWSController) handleFrame(ctx context.Context, id core.ConnID, data []byte) {
	ev, err := protocol.Decode(data)
	if err != nil {
		ctl.Orch.DropFrame(id, err)
		return
	}
	if join, ok := ev.(protocol.JoinRoom); ok && ctl.Limiter != nil && !ctl.Limiter.Allow(id) {
		ctl.Orch.Reject(id, join, orch.ErrRateLimited)
		return
	}
	ctl.Orch.Dispatch(ctx, id, ev)
}
