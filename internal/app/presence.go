package app

import (
	"maps"
	"sync"

	"github.com/dkeye/telesync/internal/core"
	"github.com/dkeye/telesync/internal/domain"
	"github.com/rs/zerolog/log"
)

// Presence maps each authenticated user to the connection they joined
// from most recently. The lock is only held to read or copy the map.
type Presence struct {
	mu    sync.RWMutex
	users map[domain.UserID]core.ConnID
}

func NewPresence() *Presence {
	return &Presence{users: make(map[domain.UserID]core.ConnID)}
}

// Bind is last-write-wins. It returns the connection the user was bound
// to before, if any; that connection is left untouched.
func (p *Presence) Bind(user domain.UserID, conn core.ConnID) (core.ConnID, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	prev, had := p.users[user]
	p.users[user] = conn
	log.Debug().Str("module", "app.presence").Str("user", string(user)).Str("conn", string(conn)).Msg("bound user")
	return prev, had && prev != conn
}

func (p *Presence) Resolve(user domain.UserID) (core.ConnID, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	c, ok := p.users[user]
	return c, ok
}

// Snapshot returns a point-in-time copy for fan-out.
func (p *Presence) Snapshot() map[domain.UserID]core.ConnID {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make(map[domain.UserID]core.ConnID, len(p.users))
	maps.Copy(out, p.users)
	return out
}

// Release drops every binding that still points at conn. Users that
// already rebound to another connection are kept.
func (p *Presence) Release(conn core.ConnID) []domain.UserID {
	p.mu.Lock()
	defer p.mu.Unlock()
	var released []domain.UserID
	for user, c := range p.users {
		if c == conn {
			delete(p.users, user)
			released = append(released, user)
		}
	}
	if len(released) > 0 {
		log.Debug().Str("module", "app.presence").Str("conn", string(conn)).Int("users", len(released)).Msg("released bindings")
	}
	return released
}

func (p *Presence) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.users)
}
