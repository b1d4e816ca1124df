// Package protocol defines the {type, data} envelope exchanged over a
// signaling connection. Inbound frames are decoded once, here, into one
// of a closed set of Event variants.
package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dkeye/telesync/internal/core"
)

const (
	TypeJoinRoom        = "join-room"
	TypeRequestAccepted = "request-accepted"
	TypeOffer           = "offer"
	TypeAnswer          = "answer"
	TypeICECandidate    = "ice-candidate"
	TypeMouseMove       = "mouse-move"
	TypeMessage         = "message"

	TypeHostJoined        = "host-joined"
	TypeJoinRequest       = "join-request"
	TypeNewParticipant    = "new-participant"
	TypeParticipantJoined = "participant-joined"
	TypeJoinFailed        = "join-failed"
)

var (
	ErrMalformed     = errors.New("malformed envelope")
	ErrMissingField  = errors.New("missing field")
	ErrInvalidFormat = errors.New("invalid payload")
)

type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Decode parses one inbound frame. Unknown types decode to Unrecognized
// without error; a known type whose data does not match its shape is an
// error.
func Decode(frame []byte) (Event, error) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if env.Type == "" {
		return nil, fmt.Errorf("%w: no type", ErrMalformed)
	}

	var (
		ev  Event
		err error
	)
	switch env.Type {
	case TypeJoinRoom:
		ev, err = decodeJoinRoom(env.Data)
	case TypeRequestAccepted:
		ev, err = decodeRequestAccepted(env.Data)
	case TypeOffer, TypeAnswer, TypeICECandidate:
		ev, err = decodeRTCSignal(env.Type, env.Data)
	case TypeMouseMove:
		ev, err = decodeMouseMove(env.Data)
	case TypeMessage:
		ev, err = decodeChatMessage(env.Data)
	default:
		return Unrecognized{Kind: env.Type}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", env.Type, err)
	}
	return ev, nil
}

// Encode serializes an outbound envelope with HTML escaping disabled.
// Raw JSON inside data is compacted; use EncodeRelay to forward an item
// untouched.
func Encode(typ string, data any) (core.Frame, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, outbound{Type: typ, Data: data}); err != nil {
		return nil, err
	}
	return core.Frame(buf.Bytes()), nil
}

// EncodeRelay builds an offer, answer or ice-candidate frame with r.Item
// spliced in byte for byte.
func EncodeRelay(typ string, r RTCRelay) (core.Frame, error) {
	if !json.Valid(r.Item) {
		return nil, fmt.Errorf("%w: item is not valid JSON", ErrInvalidFormat)
	}
	var buf bytes.Buffer
	buf.WriteString(`{"type":`)
	if err := writeJSON(&buf, typ); err != nil {
		return nil, err
	}
	buf.WriteString(`,"data":{"item":`)
	buf.Write(r.Item)
	buf.WriteString(`,"from":`)
	if err := writeJSON(&buf, r.From); err != nil {
		return nil, err
	}
	buf.WriteString(`,"user_id":`)
	if err := writeJSON(&buf, r.UserID); err != nil {
		return nil, err
	}
	buf.WriteString(`}}`)
	return core.Frame(buf.Bytes()), nil
}

func writeJSON(buf *bytes.Buffer, v any) error {
	start := buf.Len()
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		buf.Truncate(start)
		return err
	}
	buf.Truncate(buf.Len() - 1)
	return nil
}

type outbound struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

func unmarshalData(data json.RawMessage, v any) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: data", ErrMissingField)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	return nil
}

func missing(field string) error {
	return fmt.Errorf("%w: %s", ErrMissingField, field)
}
