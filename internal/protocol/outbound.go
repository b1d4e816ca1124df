package protocol

import (
	"encoding/json"

	"github.com/dkeye/telesync/internal/domain"
)

// UserNotice is the data of host-joined, join-request and new-participant.
type UserNotice struct {
	UserID   domain.UserID `json:"user_id"`
	Username string        `json:"username"`
}

type ParticipantJoined struct {
	UserID       domain.UserID        `json:"user_id"`
	Username     string               `json:"username"`
	Participants []domain.Participant `json:"participants"`
	HostUsername string               `json:"host_username"`
	HostID       domain.UserID        `json:"host_id"`
}

type RTCRelay struct {
	Item   json.RawMessage `json:"item"`
	From   domain.UserID   `json:"from"`
	UserID domain.UserID   `json:"user_id"`
}

// CursorPosition deliberately omits the sender.
type CursorPosition struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type ChatBroadcast struct {
	Message  string        `json:"message"`
	Username string        `json:"username"`
	ID       domain.UserID `json:"id"`
}

type JoinFailed struct {
	Code   domain.RoomCode `json:"code"`
	Reason string          `json:"reason"`
}
