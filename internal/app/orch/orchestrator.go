package orch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dkeye/telesync/internal/app"
	"github.com/dkeye/telesync/internal/core"
	"github.com/dkeye/telesync/internal/domain"
	"github.com/dkeye/telesync/internal/metrics"
	"github.com/dkeye/telesync/internal/protocol"
	"github.com/rs/zerolog/log"
)

type Options struct {
	// GatewayTimeout bounds the store and token calls of one envelope.
	GatewayTimeout time.Duration
	// CleanupOnClose purges registry and presence entries of a closed
	// connection. When false, stale entries stay until the user rejoins.
	CleanupOnClose bool
	// JoinNack answers a failed join-room with join-failed on the
	// originating connection.
	JoinNack bool
}

// Orchestrator routes decoded envelopes. It keeps no per-connection
// state: everything lives in Registry and Presence.
type Orchestrator struct {
	Registry *app.Registry
	Presence *app.Presence
	Rooms    core.RoomStore
	Auth     core.TokenVerifier
	Policy   app.Policy
	Options  Options
}

func (o *Orchestrator) Connect(id core.ConnID, conn core.SignalConnection) {
	o.Registry.Register(id, conn)
	metrics.ConnectionOpened()
	log.Info().Str("module", "orch").Str("conn", string(id)).Msg("connection accepted")
}

func (o *Orchestrator) Disconnect(id core.ConnID) {
	metrics.ConnectionClosed()
	if !o.Options.CleanupOnClose {
		log.Info().Str("module", "orch").Str("conn", string(id)).Msg("connection closed, entries kept")
		return
	}
	o.Registry.Unregister(id)
	released := o.Presence.Release(id)
	log.Info().Str("module", "orch").Str("conn", string(id)).Int("released", len(released)).Msg("connection closed")
}

// Dispatch runs the handler for ev. Handlers return an error instead of
// writing anything back; this is the only place that error is dropped.
func (o *Orchestrator) Dispatch(ctx context.Context, from core.ConnID, ev protocol.Event) {
	if _, ok := ev.(protocol.Unrecognized); ok {
		metrics.EnvelopeDropped("unknown", "unrecognized")
		log.Debug().Str("module", "orch").Str("conn", string(from)).Str("type", ev.EventType()).Msg("ignoring unrecognized envelope")
		return
	}

	if o.Options.GatewayTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.Options.GatewayTimeout)
		defer cancel()
	}

	var err error
	switch e := ev.(type) {
	case protocol.JoinRoom:
		err = o.JoinRoom(ctx, from, e)
	case protocol.RequestAccepted:
		err = o.AcceptRequest(ctx, e)
	case protocol.RTCSignal:
		err = o.Relay(e)
	case protocol.MouseMove:
		err = o.MoveCursor(e)
	case protocol.ChatMessage:
		err = o.Broadcast(ctx, e)
	default:
		err = fmt.Errorf("no handler for %T", ev)
	}
	if err != nil {
		o.Reject(from, ev, err)
		return
	}
	metrics.EnvelopeDispatched(ev.EventType())
}

// Reject drops ev. Nothing is sent back unless join-failed is enabled
// and ev is a join-room.
func (o *Orchestrator) Reject(from core.ConnID, ev protocol.Event, err error) {
	reason := Reason(err)
	metrics.EnvelopeDropped(ev.EventType(), reason)

	lvl := log.Warn()
	if reason == "decode" || reason == "not_found" {
		lvl = log.Debug()
	}
	lvl.Err(err).Str("module", "orch").Str("conn", string(from)).Str("type", ev.EventType()).Str("reason", reason).Msg("envelope dropped")

	join, ok := ev.(protocol.JoinRoom)
	if !ok || !o.Options.JoinNack {
		return
	}
	frame, encErr := protocol.Encode(protocol.TypeJoinFailed, protocol.JoinFailed{Code: join.Code, Reason: reason})
	if encErr != nil {
		return
	}
	o.deliver(protocol.TypeJoinFailed, from, frame)
}

// DropFrame records a frame that could not be decoded.
func (o *Orchestrator) DropFrame(from core.ConnID, err error) {
	metrics.EnvelopeDropped("invalid", "decode")
	log.Debug().Err(err).Str("module", "orch").Str("conn", string(from)).Msg("frame dropped")
}

// deliver writes one frame. Failures are logged and never returned.
func (o *Orchestrator) deliver(typ string, to core.ConnID, f core.Frame) bool {
	if err := o.Registry.Send(to, f); err != nil {
		metrics.Delivered(typ, false)
		log.Warn().Err(err).Str("module", "orch").Str("conn", string(to)).Str("type", typ).Msg("delivery failed")
		o.onSendFailure(to, err)
		return false
	}
	metrics.Delivered(typ, true)
	return true
}

func (o *Orchestrator) onSendFailure(conn core.ConnID, err error) {
	if o.Policy == nil {
		return
	}
	switch o.Policy.OnSendFailure(conn, err) {
	case app.EvictConnection:
		if c, ok := o.Registry.Unregister(conn); ok {
			c.Close()
		}
		o.Presence.Release(conn)
		log.Info().Str("module", "orch").Str("conn", string(conn)).Msg("evicted connection after failed send")
	case app.KeepEntry:
	}
}

func (o *Orchestrator) sendToUser(typ string, user domain.UserID, f core.Frame) bool {
	conn, ok := o.Presence.Resolve(user)
	if !ok {
		log.Debug().Str("module", "orch").Str("user", string(user)).Str("type", typ).Msg("recipient not bound")
		return false
	}
	return o.deliver(typ, conn, f)
}

// fanOut sends f to each user bound in snap. Users may repeat.
func (o *Orchestrator) fanOut(typ string, snap map[domain.UserID]core.ConnID, users []domain.UserID, f core.Frame) int {
	sent := 0
	for _, u := range users {
		conn, ok := snap[u]
		if !ok {
			continue
		}
		if o.deliver(typ, conn, f) {
			sent++
		}
	}
	return sent
}

func lookupErr(what string, err error) error {
	if errors.Is(err, core.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	}
	return fmt.Errorf("%s lookup: %w", what, err)
}
