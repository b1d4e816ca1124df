package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/dkeye/telesync/internal/core"
	"github.com/dkeye/telesync/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const roomKeyPrefix = "telesync:room:"

// CachedRooms wraps a RoomStore with a Redis read-through cache for
// RoomByCode. Cache errors never fail a lookup; they fall through to the
// backing store.
type CachedRooms struct {
	core.RoomStore
	rdb *redis.Client
	ttl time.Duration
}

func NewCachedRooms(next core.RoomStore, rdb *redis.Client, ttl time.Duration) *CachedRooms {
	return &CachedRooms{RoomStore: next, rdb: rdb, ttl: ttl}
}

func roomKey(code domain.RoomCode) string { return roomKeyPrefix + string(code) }

func (c *CachedRooms) RoomByCode(ctx context.Context, code domain.RoomCode) (*domain.Room, error) {
	key := roomKey(code)
	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var room domain.Room
		if jerr := json.Unmarshal(raw, &room); jerr == nil {
			return &room, nil
		}
		log.Warn().Str("module", "adapters.store").Str("key", key).Msg("dropping unreadable cache entry")
		c.rdb.Del(ctx, key)
	case !errors.Is(err, redis.Nil):
		log.Warn().Err(err).Str("module", "adapters.store").Str("key", key).Msg("room cache read failed")
	}

	room, err := c.RoomStore.RoomByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(room); err == nil {
		if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
			log.Warn().Err(err).Str("module", "adapters.store").Str("key", key).Msg("room cache write failed")
		}
	}
	return room, nil
}

// AddParticipantToRoom writes through and drops the cached room so the
// next chat broadcast sees the new participant.
func (c *CachedRooms) AddParticipantToRoom(ctx context.Context, code domain.RoomCode, id domain.UserID) error {
	if err := c.RoomStore.AddParticipantToRoom(ctx, code, id); err != nil {
		return err
	}
	if err := c.rdb.Del(ctx, roomKey(code)).Err(); err != nil {
		log.Warn().Err(err).Str("module", "adapters.store").Str("code", string(code)).Msg("room cache invalidation failed")
	}
	return nil
}
