package orch

import (
	"context"
	"fmt"

	"github.com/dkeye/telesync/internal/domain"
	"github.com/dkeye/telesync/internal/protocol"
	"github.com/rs/zerolog/log"
)

// Broadcast sends a chat message to every participant of the room and
// then to the host. A host that is also listed as a participant gets it
// twice.
func (o *Orchestrator) Broadcast(ctx context.Context, ev protocol.ChatMessage) error {
	room, err := o.Rooms.RoomByCode(ctx, ev.Code)
	if err != nil {
		return lookupErr("room", err)
	}

	frame, err := protocol.Encode(protocol.TypeMessage, protocol.ChatBroadcast{Message: ev.Message, Username: ev.Username, ID: ev.ID})
	if err != nil {
		return fmt.Errorf("encode %s: %w", protocol.TypeMessage, err)
	}

	snap := o.Presence.Snapshot()
	sent := o.fanOut(protocol.TypeMessage, snap, room.ParticipantsID, frame)
	sent += o.fanOut(protocol.TypeMessage, snap, []domain.UserID{room.HostID}, frame)

	log.Debug().Str("module", "orch").Str("room", string(ev.Code)).Int("sent_to", sent).Msg("chat broadcast")
	return nil
}
