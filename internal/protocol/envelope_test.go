package protocol

import (
	"encoding/json"
	"testing"

	"github.com/dkeye/telesync/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	alice = "65f1c2a9b4e8d7a1c3b2e4f0"
	bob   = "65f1c2a9b4e8d7a1c3b2e4f1"
)

func TestDecodeJoinRoom(t *testing.T) {
	ev, err := Decode([]byte(`{"type":"join-room","data":{"access_token":"tok","code":"abc"}}`))
	require.NoError(t, err)
	assert.Equal(t, JoinRoom{AccessToken: "tok", Code: "abc"}, ev)
	assert.Equal(t, TypeJoinRoom, ev.EventType())
}

func TestDecodeRequestAccepted(t *testing.T) {
	frame := `{"type":"request-accepted","data":{
		"username":"bob","user_id":{"$oid":"` + bob + `"},
		"participants":[{"username":"carol","id":"` + alice + `"}],
		"code":"abc","host_username":"alice","host_id":"` + alice + `"}}`
	ev, err := Decode([]byte(frame))
	require.NoError(t, err)

	ra, ok := ev.(RequestAccepted)
	require.True(t, ok)
	assert.Equal(t, domain.UserID(bob), ra.UserID)
	assert.Equal(t, domain.UserID(alice), ra.HostID)
	assert.Equal(t, domain.RoomCode("abc"), ra.Code)
	require.Len(t, ra.Participants, 1)
	assert.Equal(t, "carol", ra.Participants[0].Username)
}

func TestDecodeRTCSignalKeepsItemBytes(t *testing.T) {
	item := `{"sdp":"v=0\r\no=- 1 2 IN IP4 <127.0.0.1>&","type":"offer"}`
	for _, kind := range []string{TypeOffer, TypeAnswer, TypeICECandidate} {
		frame := `{"type":"` + kind + `","data":{"item":` + item + `,"to":"` + bob + `","user_id":"` + alice + `"}}`
		ev, err := Decode([]byte(frame))
		require.NoError(t, err, kind)

		sig, ok := ev.(RTCSignal)
		require.True(t, ok)
		assert.Equal(t, kind, sig.EventType())
		assert.Equal(t, item, string(sig.Item))
		assert.Equal(t, domain.UserID(alice), sig.From)
		assert.Equal(t, domain.UserID(bob), sig.To)
	}
}

func TestDecodeRTCSignalAnyItemShape(t *testing.T) {
	for _, item := range []string{`"candidate:1"`, `42`, `[1,2]`, `null`} {
		ev, err := Decode([]byte(`{"type":"ice-candidate","data":{"item":` + item + `,"to":"` + bob + `","user_id":"` + alice + `"}}`))
		require.NoError(t, err, item)
		assert.Equal(t, item, string(ev.(RTCSignal).Item))
	}
}

func TestDecodeMouseMove(t *testing.T) {
	ev, err := Decode([]byte(`{"type":"mouse-move","data":{"x":0.25,"y":0,"to":"` + bob + `"}}`))
	require.NoError(t, err)
	assert.Equal(t, MouseMove{X: 0.25, Y: 0, To: domain.UserID(bob)}, ev)
}

func TestDecodeChatMessage(t *testing.T) {
	ev, err := Decode([]byte(`{"type":"message","data":{"message":"hi","username":"alice","id":"` + alice + `","code":"abc"}}`))
	require.NoError(t, err)
	assert.Equal(t, ChatMessage{Message: "hi", Username: "alice", ID: domain.UserID(alice), Code: "abc"}, ev)
}

func TestDecodeUnknownType(t *testing.T) {
	ev, err := Decode([]byte(`{"type":"video-started","data":{"host":true}}`))
	require.NoError(t, err)
	assert.Equal(t, Unrecognized{Kind: "video-started"}, ev)
}

func TestDecodeErrors(t *testing.T) {
	cases := map[string]struct {
		frame string
		want  error
	}{
		"not json":            {`{"type":`, ErrMalformed},
		"no type":             {`{"data":{}}`, ErrMalformed},
		"no data":             {`{"type":"join-room"}`, ErrMissingField},
		"null data":           {`{"type":"join-room","data":null}`, ErrMissingField},
		"no token":            {`{"type":"join-room","data":{"code":"abc"}}`, ErrMissingField},
		"no code":             {`{"type":"join-room","data":{"access_token":"t"}}`, ErrMissingField},
		"wrong field type":    {`{"type":"join-room","data":{"access_token":1,"code":"abc"}}`, ErrInvalidFormat},
		"bad object id":       {`{"type":"offer","data":{"item":{},"to":"zzz","user_id":"` + alice + `"}}`, ErrInvalidFormat},
		"no item":             {`{"type":"answer","data":{"to":"` + bob + `","user_id":"` + alice + `"}}`, ErrMissingField},
		"no x":                {`{"type":"mouse-move","data":{"y":1,"to":"` + bob + `"}}`, ErrMissingField},
		"no message":          {`{"type":"message","data":{"username":"a","id":"` + alice + `","code":"abc"}}`, ErrMissingField},
		"no participants":     {`{"type":"request-accepted","data":{"user_id":"` + bob + `","host_id":"` + alice + `","code":"abc"}}`, ErrMissingField},
		"chat no username":    {`{"type":"message","data":{"message":"hi","id":"` + alice + `","code":"abc"}}`, ErrMissingField},
		"accept no username":  {`{"type":"request-accepted","data":{"user_id":"` + bob + `","host_id":"` + alice + `","host_username":"h","code":"abc","participants":[]}}`, ErrMissingField},
		"accept no host name": {`{"type":"request-accepted","data":{"username":"b","user_id":"` + bob + `","host_id":"` + alice + `","code":"abc","participants":[]}}`, ErrMissingField},
		"participant no id":   {`{"type":"request-accepted","data":{"username":"b","user_id":"` + bob + `","host_id":"` + alice + `","host_username":"h","code":"abc","participants":[{"username":"x"}]}}`, ErrMissingField},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(tc.frame))
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestEncodeEnvelope(t *testing.T) {
	item := json.RawMessage(`{"sdp":"<a>&b"}`)
	frame, err := Encode(TypeOffer, RTCRelay{Item: item, From: domain.UserID(alice), UserID: domain.UserID(bob)})
	require.NoError(t, err)

	assert.Contains(t, string(frame), `"item":{"sdp":"<a>&b"}`)
	assert.JSONEq(t, `{"type":"offer","data":{"item":{"sdp":"<a>&b"},"from":{"$oid":"`+alice+`"},"user_id":{"$oid":"`+bob+`"}}}`, string(frame))
	assert.NotContains(t, string(frame), "\n")
}

func TestEncodeCursorOmitsSender(t *testing.T) {
	frame, err := Encode(TypeMouseMove, CursorPosition{X: 0.5, Y: 0.75})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"mouse-move","data":{"x":0.5,"y":0.75}}`, string(frame))
}

func TestEncodeRelayKeepsItemBytes(t *testing.T) {
	raw := `{"type":"offer","data":{"item":{"sdp": "v=0",  "type" : "offer"},"to":"` + bob + `","user_id":"` + alice + `"}}`
	ev, err := Decode([]byte(raw))
	require.NoError(t, err)
	sig := ev.(RTCSignal)

	frame, err := EncodeRelay(sig.Kind, RTCRelay{Item: sig.Item, From: sig.From, UserID: sig.To})
	require.NoError(t, err)
	assert.Contains(t, string(frame), `"item":{"sdp": "v=0",  "type" : "offer"}`)

	var env Envelope
	require.NoError(t, json.Unmarshal(frame, &env))
	assert.Equal(t, TypeOffer, env.Type)
	var out struct {
		Item json.RawMessage `json:"item"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &out))
	assert.Equal(t, `{"sdp": "v=0",  "type" : "offer"}`, string(out.Item))
	assert.JSONEq(t, `{"item":{"sdp":"v=0","type":"offer"},"from":{"$oid":"`+alice+`"},"user_id":{"$oid":"`+bob+`"}}`, string(env.Data))
}

func TestEncodeRelayRejectsInvalidItem(t *testing.T) {
	_, err := EncodeRelay(TypeAnswer, RTCRelay{Item: json.RawMessage(`{"sdp":`), From: domain.UserID(alice), UserID: domain.UserID(bob)})
	assert.ErrorIs(t, err, ErrInvalidFormat)
}
