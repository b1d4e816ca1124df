package orch

import (
	"context"
	"fmt"

	"github.com/dkeye/telesync/internal/core"
	"github.com/dkeye/telesync/internal/domain"
	"github.com/dkeye/telesync/internal/protocol"
	"github.com/rs/zerolog/log"
)

// JoinRoom authenticates the sender, binds them to from, and notifies
// the room host: host-joined when the sender is the host (so the host's
// own connection), join-request otherwise.
func (o *Orchestrator) JoinRoom(ctx context.Context, from core.ConnID, ev protocol.JoinRoom) error {
	uid, err := o.Auth.VerifyToken(ev.AccessToken)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAuth, err)
	}

	if prev, replaced := o.Presence.Bind(uid, from); replaced {
		log.Info().Str("module", "orch").Str("user", string(uid)).Str("conn", string(from)).Str("prev_conn", string(prev)).Msg("user rebound to new connection")
	}

	room, err := o.Rooms.RoomByCode(ctx, ev.Code)
	if err != nil {
		return lookupErr("room", err)
	}
	user, err := o.Rooms.UserByID(ctx, uid)
	if err != nil {
		return lookupErr("user", err)
	}

	typ, target := protocol.TypeHostJoined, uid
	if !room.IsHost(uid) {
		host, err := o.Rooms.UserByID(ctx, room.HostID)
		if err != nil {
			return lookupErr("host", err)
		}
		typ, target = protocol.TypeJoinRequest, host.ID
	}

	frame, err := protocol.Encode(typ, protocol.UserNotice{UserID: uid, Username: user.Username})
	if err != nil {
		return fmt.Errorf("encode %s: %w", typ, err)
	}
	o.sendToUser(typ, target, frame)
	log.Info().Str("module", "orch").Str("user", string(uid)).Str("room", string(ev.Code)).Str("type", typ).Msg("join handled")
	return nil
}

// AcceptRequest persists the admission, announces the newcomer to the
// listed participants and hands the newcomer the roster. A failure of
// the second write does not undo the first.
func (o *Orchestrator) AcceptRequest(ctx context.Context, ev protocol.RequestAccepted) error {
	if err := o.Rooms.AddParticipantToRoom(ctx, ev.Code, ev.UserID); err != nil {
		return fmt.Errorf("%w: add participant to room: %v", ErrPersistence, err)
	}
	if err := o.Rooms.AddParticipant(ctx, ev.Code, ev.UserID); err != nil {
		return fmt.Errorf("%w: add participant: %v", ErrPersistence, err)
	}

	notice, err := protocol.Encode(protocol.TypeNewParticipant, protocol.UserNotice{UserID: ev.UserID, Username: ev.Username})
	if err != nil {
		return fmt.Errorf("encode %s: %w", protocol.TypeNewParticipant, err)
	}
	roster, err := protocol.Encode(protocol.TypeParticipantJoined, protocol.ParticipantJoined{
		UserID:       ev.UserID,
		Username:     ev.Username,
		Participants: ev.Participants,
		HostUsername: ev.HostUsername,
		HostID:       ev.HostID,
	})
	if err != nil {
		return fmt.Errorf("encode %s: %w", protocol.TypeParticipantJoined, err)
	}

	snap := o.Presence.Snapshot()
	ids := make([]domain.UserID, 0, len(ev.Participants))
	for _, p := range ev.Participants {
		ids = append(ids, p.ID)
	}
	sent := o.fanOut(protocol.TypeNewParticipant, snap, ids, notice)
	o.fanOut(protocol.TypeParticipantJoined, snap, []domain.UserID{ev.UserID}, roster)

	log.Info().Str("module", "orch").Str("user", string(ev.UserID)).Str("room", string(ev.Code)).Int("notified", sent).Msg("participant admitted")
	return nil
}
