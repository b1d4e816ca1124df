package core

import (
	"context"

	"github.com/dkeye/telesync/internal/domain"
)

// TokenVerifier checks an access token and returns its subject.
type TokenVerifier interface {
	VerifyToken(token string) (domain.UserID, error)
}

// RoomStore is the persistence collaborator. Lookups return ErrNotFound
// on a miss. The two participant writes are independent of each other.
type RoomStore interface {
	RoomByCode(ctx context.Context, code domain.RoomCode) (*domain.Room, error)
	UserByID(ctx context.Context, id domain.UserID) (*domain.User, error)
	AddParticipantToRoom(ctx context.Context, code domain.RoomCode, id domain.UserID) error
	AddParticipant(ctx context.Context, code domain.RoomCode, id domain.UserID) error
}
