package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const hexID = "65f1c2a9b4e8d7a1c3b2e4f0"

func TestParseUserID(t *testing.T) {
	id, err := ParseUserID(hexID)
	require.NoError(t, err)
	assert.Equal(t, UserID(hexID), id)

	_, err = ParseUserID("not-an-object-id")
	assert.ErrorIs(t, err, ErrInvalidUserID)

	_, err = ParseUserID("")
	assert.ErrorIs(t, err, ErrInvalidUserID)
}

func TestUserIDJSON(t *testing.T) {
	b, err := json.Marshal(UserID(hexID))
	require.NoError(t, err)
	assert.JSONEq(t, `{"$oid":"`+hexID+`"}`, string(b))

	var fromExt UserID
	require.NoError(t, json.Unmarshal([]byte(`{"$oid":"`+hexID+`"}`), &fromExt))
	assert.Equal(t, UserID(hexID), fromExt)

	var fromHex UserID
	require.NoError(t, json.Unmarshal([]byte(`"`+hexID+`"`), &fromHex))
	assert.Equal(t, UserID(hexID), fromHex)

	var bad UserID
	assert.Error(t, json.Unmarshal([]byte(`"xyz"`), &bad))
	assert.Error(t, json.Unmarshal([]byte(`42`), &bad))
}

func TestUserIDObjectIDRoundTrip(t *testing.T) {
	oid, err := UserID(hexID).ObjectID()
	require.NoError(t, err)
	assert.Equal(t, UserID(hexID), UserIDFromObjectID(oid))
}

func TestNewUser(t *testing.T) {
	u, err := NewUser(UserID(hexID), "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)

	_, err = NewUser(UserID(hexID), "")
	assert.ErrorIs(t, err, ErrUsernameEmpty)

	_, err = NewUser(UserID(hexID), strings.Repeat("a", MaxUsernameLen+1))
	assert.ErrorIs(t, err, ErrUsernameTooLong)
}

func TestRoomIsHost(t *testing.T) {
	host := UserID(hexID)
	guest := UserID("65f1c2a9b4e8d7a1c3b2e4f1")
	other := UserID("65f1c2a9b4e8d7a1c3b2e4f2")
	room := &Room{Code: "abc", HostID: host, ParticipantsID: []UserID{guest}}

	assert.True(t, room.IsHost(host))
	assert.False(t, room.IsHost(guest))
	assert.False(t, room.IsHost(other))
}
