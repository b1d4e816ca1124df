package orch

import (
	"fmt"

	"github.com/dkeye/telesync/internal/protocol"
)

// Relay forwards an offer, answer or ICE candidate to ev.To. The item is
// passed through untouched and there is no room check.
func (o *Orchestrator) Relay(ev protocol.RTCSignal) error {
	frame, err := protocol.EncodeRelay(ev.Kind, protocol.RTCRelay{Item: ev.Item, From: ev.From, UserID: ev.To})
	if err != nil {
		return fmt.Errorf("encode %s: %w", ev.Kind, err)
	}
	o.sendToUser(ev.Kind, ev.To, frame)
	return nil
}

// MoveCursor forwards a cursor position without the sender's identity.
// Every event is sent; there is no throttling.
func (o *Orchestrator) MoveCursor(ev protocol.MouseMove) error {
	frame, err := protocol.Encode(protocol.TypeMouseMove, protocol.CursorPosition{X: ev.X, Y: ev.Y})
	if err != nil {
		return fmt.Errorf("encode %s: %w", protocol.TypeMouseMove, err)
	}
	o.sendToUser(protocol.TypeMouseMove, ev.To, frame)
	return nil
}
