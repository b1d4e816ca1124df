package app

import (
	"context"
	"testing"

	"github.com/dkeye/telesync/internal/core"
	"github.com/dkeye/telesync/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomManagerLookups(t *testing.T) {
	ctx := context.Background()
	m := NewRoomManager()
	m.PutUser(domain.User{ID: userID(1), Username: "host"})
	m.PutRoom(domain.Room{Code: "abc", HostID: userID(1)})

	room, err := m.RoomByCode(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, userID(1), room.HostID)

	_, err = m.RoomByCode(ctx, "nope")
	assert.ErrorIs(t, err, core.ErrNotFound)

	u, err := m.UserByID(ctx, userID(1))
	require.NoError(t, err)
	assert.Equal(t, "host", u.Username)

	_, err = m.UserByID(ctx, userID(9))
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestRoomManagerAddParticipant(t *testing.T) {
	ctx := context.Background()
	m := NewRoomManager()
	m.PutRoom(domain.Room{Code: "abc", HostID: userID(1)})

	require.NoError(t, m.AddParticipantToRoom(ctx, "abc", userID(2)))
	require.NoError(t, m.AddParticipantToRoom(ctx, "abc", userID(2)))
	assert.ErrorIs(t, m.AddParticipantToRoom(ctx, "nope", userID(2)), core.ErrNotFound)

	room, err := m.RoomByCode(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, []domain.UserID{userID(2)}, room.ParticipantsID)

	require.NoError(t, m.AddParticipant(ctx, "abc", userID(2)))
	recs := m.Participants()
	require.Len(t, recs, 1)
	assert.Equal(t, domain.RoomCode("abc"), recs[0].Code)
}

func TestRoomManagerReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m := NewRoomManager()
	m.PutRoom(domain.Room{Code: "abc", HostID: userID(1), ParticipantsID: []domain.UserID{userID(2)}})

	room, err := m.RoomByCode(ctx, "abc")
	require.NoError(t, err)
	room.ParticipantsID[0] = userID(7)

	again, err := m.RoomByCode(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, userID(2), again.ParticipantsID[0])
}
