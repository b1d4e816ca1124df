package app

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/dkeye/telesync/internal/core"
	"github.com/dkeye/telesync/internal/domain"
)

// ParticipantRecord is one admission logged by AddParticipant.
type ParticipantRecord struct {
	Code     domain.RoomCode
	UserID   domain.UserID
	JoinedAt time.Time
}

// RoomManagerImpl is an in-memory core.RoomStore used by the memory
// store driver and by tests.
type RoomManagerImpl struct {
	mu           sync.RWMutex
	rooms        map[domain.RoomCode]*domain.Room
	users        map[domain.UserID]*domain.User
	participants []ParticipantRecord
}

func NewRoomManager() *RoomManagerImpl {
	return &RoomManagerImpl{
		rooms: make(map[domain.RoomCode]*domain.Room),
		users: make(map[domain.UserID]*domain.User),
	}
}

func (f *RoomManagerImpl) PutUser(u domain.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[u.ID] = &u
}

func (f *RoomManagerImpl) PutRoom(r domain.Room) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r.ParticipantsID = slices.Clone(r.ParticipantsID)
	f.rooms[r.Code] = &r
}

func (f *RoomManagerImpl) RoomByCode(_ context.Context, code domain.RoomCode) (*domain.Room, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	r, ok := f.rooms[code]
	if !ok {
		return nil, core.ErrNotFound
	}
	out := *r
	out.ParticipantsID = slices.Clone(r.ParticipantsID)
	return &out, nil
}

func (f *RoomManagerImpl) UserByID(_ context.Context, id domain.UserID) (*domain.User, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	u, ok := f.users[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	out := *u
	return &out, nil
}

func (f *RoomManagerImpl) AddParticipantToRoom(_ context.Context, code domain.RoomCode, id domain.UserID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rooms[code]
	if !ok {
		return core.ErrNotFound
	}
	if !slices.Contains(r.ParticipantsID, id) {
		r.ParticipantsID = append(r.ParticipantsID, id)
	}
	return nil
}

func (f *RoomManagerImpl) AddParticipant(_ context.Context, code domain.RoomCode, id domain.UserID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.participants = append(f.participants, ParticipantRecord{Code: code, UserID: id, JoinedAt: time.Now()})
	return nil
}

func (f *RoomManagerImpl) Participants() []ParticipantRecord {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return slices.Clone(f.participants)
}
