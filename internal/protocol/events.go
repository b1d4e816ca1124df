package protocol

import (
	"encoding/json"

	"github.com/dkeye/telesync/internal/domain"
)

// Event is one decoded inbound envelope.
type Event interface {
	EventType() string
}

type JoinRoom struct {
	AccessToken string
	Code        domain.RoomCode
}

type RequestAccepted struct {
	Username     string
	UserID       domain.UserID
	Participants []domain.Participant
	Code         domain.RoomCode
	HostUsername string
	HostID       domain.UserID
}

// RTCSignal is an offer, answer or ice-candidate. Item is never parsed.
type RTCSignal struct {
	Kind string
	Item json.RawMessage
	From domain.UserID
	To   domain.UserID
}

type MouseMove struct {
	X, Y float64
	To   domain.UserID
}

type ChatMessage struct {
	Message  string
	Username string
	ID       domain.UserID
	Code     domain.RoomCode
}

// Unrecognized carries the type tag of an envelope nobody handles.
type Unrecognized struct {
	Kind string
}

func (JoinRoom) EventType() string        { return TypeJoinRoom }
func (RequestAccepted) EventType() string { return TypeRequestAccepted }
func (e RTCSignal) EventType() string     { return e.Kind }
func (MouseMove) EventType() string       { return TypeMouseMove }
func (ChatMessage) EventType() string     { return TypeMessage }
func (e Unrecognized) EventType() string  { return e.Kind }

func decodeJoinRoom(data json.RawMessage) (Event, error) {
	var p struct {
		AccessToken string `json:"access_token"`
		Code        string `json:"code"`
	}
	if err := unmarshalData(data, &p); err != nil {
		return nil, err
	}
	if p.AccessToken == "" {
		return nil, missing("access_token")
	}
	if p.Code == "" {
		return nil, missing("code")
	}
	return JoinRoom{AccessToken: p.AccessToken, Code: domain.RoomCode(p.Code)}, nil
}

func decodeRequestAccepted(data json.RawMessage) (Event, error) {
	var p struct {
		Username     *string              `json:"username"`
		UserID       domain.UserID        `json:"user_id"`
		Participants []domain.Participant `json:"participants"`
		Code         string               `json:"code"`
		HostUsername *string              `json:"host_username"`
		HostID       domain.UserID        `json:"host_id"`
	}
	if err := unmarshalData(data, &p); err != nil {
		return nil, err
	}
	switch {
	case p.UserID == "":
		return nil, missing("user_id")
	case p.Username == nil:
		return nil, missing("username")
	case p.HostID == "":
		return nil, missing("host_id")
	case p.Code == "":
		return nil, missing("code")
	case p.HostUsername == nil:
		return nil, missing("host_username")
	case p.Participants == nil:
		return nil, missing("participants")
	}
	for _, part := range p.Participants {
		if part.ID == "" {
			return nil, missing("participants.id")
		}
	}
	return RequestAccepted{
		Username:     *p.Username,
		UserID:       p.UserID,
		Participants: p.Participants,
		Code:         domain.RoomCode(p.Code),
		HostUsername: *p.HostUsername,
		HostID:       p.HostID,
	}, nil
}

func decodeRTCSignal(kind string, data json.RawMessage) (Event, error) {
	var p struct {
		Item   json.RawMessage `json:"item"`
		To     domain.UserID   `json:"to"`
		UserID domain.UserID   `json:"user_id"`
	}
	if err := unmarshalData(data, &p); err != nil {
		return nil, err
	}
	switch {
	case len(p.Item) == 0:
		return nil, missing("item")
	case p.To == "":
		return nil, missing("to")
	case p.UserID == "":
		return nil, missing("user_id")
	}
	return RTCSignal{Kind: kind, Item: p.Item, From: p.UserID, To: p.To}, nil
}

func decodeMouseMove(data json.RawMessage) (Event, error) {
	var p struct {
		X  *float64      `json:"x"`
		Y  *float64      `json:"y"`
		To domain.UserID `json:"to"`
	}
	if err := unmarshalData(data, &p); err != nil {
		return nil, err
	}
	switch {
	case p.X == nil:
		return nil, missing("x")
	case p.Y == nil:
		return nil, missing("y")
	case p.To == "":
		return nil, missing("to")
	}
	return MouseMove{X: *p.X, Y: *p.Y, To: p.To}, nil
}

func decodeChatMessage(data json.RawMessage) (Event, error) {
	var p struct {
		Message  *string       `json:"message"`
		Username *string       `json:"username"`
		ID       domain.UserID `json:"id"`
		Code     string        `json:"code"`
	}
	if err := unmarshalData(data, &p); err != nil {
		return nil, err
	}
	switch {
	case p.Message == nil:
		return nil, missing("message")
	case p.Username == nil:
		return nil, missing("username")
	case p.ID == "":
		return nil, missing("id")
	case p.Code == "":
		return nil, missing("code")
	}
	return ChatMessage{Message: *p.Message, Username: *p.Username, ID: p.ID, Code: domain.RoomCode(p.Code)}, nil
}
