// Package store holds the RoomStore backends used outside tests: MongoDB
// for the source of truth and a Redis read-through cache for room
// lookups.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dkeye/telesync/internal/core"
	"github.com/dkeye/telesync/internal/domain"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	roomsCollection        = "rooms"
	usersCollection        = "users"
	participantsCollection = "participants"
)

type roomDoc struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty"`
	Code           string               `bson:"code"`
	HostID         primitive.ObjectID   `bson:"host_id"`
	ParticipantsID []primitive.ObjectID `bson:"participants_id"`
}

func (d roomDoc) toDomain() *domain.Room {
	ids := make([]domain.UserID, 0, len(d.ParticipantsID))
	for _, oid := range d.ParticipantsID {
		ids = append(ids, domain.UserIDFromObjectID(oid))
	}
	return &domain.Room{
		Code:           domain.RoomCode(d.Code),
		HostID:         domain.UserIDFromObjectID(d.HostID),
		ParticipantsID: ids,
	}
}

type userDoc struct {
	ID       primitive.ObjectID `bson:"_id"`
	Username string             `bson:"username"`
}

type participantDoc struct {
	Code     string             `bson:"code"`
	UserID   primitive.ObjectID `bson:"user_id"`
	JoinedAt time.Time          `bson:"joined_at"`
}

// Mongo is a core.RoomStore over the rooms, users and participants
// collections.
type Mongo struct {
	rooms        *mongo.Collection
	users        *mongo.Collection
	participants *mongo.Collection
}

func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{
		rooms:        db.Collection(roomsCollection),
		users:        db.Collection(usersCollection),
		participants: db.Collection(participantsCollection),
	}
}

// Connect dials uri and pings the primary. The returned client must be
// disconnected by the caller.
func Connect(ctx context.Context, uri, database string) (*Mongo, *mongo.Client, error) {
	if uri == "" {
		return nil, nil, errors.New("mongo uri is empty")
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}
	log.Info().Str("module", "adapters.store").Str("database", database).Msg("connected to mongo")
	return NewMongo(client.Database(database)), client, nil
}

func (m *Mongo) RoomByCode(ctx context.Context, code domain.RoomCode) (*domain.Room, error) {
	var doc roomDoc
	if err := m.rooms.FindOne(ctx, bson.M{"code": string(code)}).Decode(&doc); err != nil {
		return nil, notFound(err)
	}
	return doc.toDomain(), nil
}

func (m *Mongo) UserByID(ctx context.Context, id domain.UserID) (*domain.User, error) {
	oid, err := id.ObjectID()
	if err != nil {
		return nil, err
	}
	var doc userDoc
	if err := m.users.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, notFound(err)
	}
	user, err := domain.NewUser(domain.UserIDFromObjectID(doc.ID), doc.Username)
	if err != nil {
		return nil, fmt.Errorf("%w: user %s: %v", core.ErrNotFound, id, err)
	}
	return user, nil
}

// AddParticipantToRoom appends id to the room's participant list unless
// it is already there.
func (m *Mongo) AddParticipantToRoom(ctx context.Context, code domain.RoomCode, id domain.UserID) error {
	oid, err := id.ObjectID()
	if err != nil {
		return err
	}
	res, err := m.rooms.UpdateOne(ctx,
		bson.M{"code": string(code)},
		bson.M{"$addToSet": bson.M{"participants_id": oid}},
	)
	if err != nil {
		return fmt.Errorf("update room %s: %w", code, err)
	}
	if res.MatchedCount == 0 {
		return core.ErrNotFound
	}
	return nil
}

// AddParticipant records the admission in the participants collection.
func (m *Mongo) AddParticipant(ctx context.Context, code domain.RoomCode, id domain.UserID) error {
	oid, err := id.ObjectID()
	if err != nil {
		return err
	}
	doc := participantDoc{Code: string(code), UserID: oid, JoinedAt: time.Now().UTC()}
	if _, err := m.participants.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert participant: %w", err)
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return core.ErrNotFound
	}
	return err
}
