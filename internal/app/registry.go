package app

import (
	"sync"

	"github.com/dkeye/telesync/internal/core"
	"github.com/rs/zerolog/log"
)

// connEntry pairs a write handle with the lock serializing writes to it.
type connEntry struct {
	mu   sync.Mutex
	conn core.SignalConnection
}

// Registry owns the live write handles. The map lock and each entry's
// write lock are independent: the map lock is never held during a write.
type Registry struct {
	mu    sync.RWMutex
	conns map[core.ConnID]*connEntry
}

func NewRegistry() *Registry {
	return &Registry{
		conns: make(map[core.ConnID]*connEntry),
	}
}

func (r *Registry) Register(id core.ConnID, conn core.SignalConnection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[id] = &connEntry{conn: conn}
	log.Debug().Str("module", "app.registry").Str("conn", string(id)).Msg("registered connection")
}

func (r *Registry) Lookup(id core.ConnID) (core.SignalConnection, bool) {
	e, ok := r.entry(id)
	if !ok {
		return nil, false
	}
	return e.conn, true
}

func (r *Registry) entry(id core.ConnID) (*connEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.conns[id]
	return e, ok
}

// Send writes f to the connection under its exclusive write lock.
func (r *Registry) Send(id core.ConnID, f core.Frame) error {
	e, ok := r.entry(id)
	if !ok {
		return core.ErrConnNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.conn.Send(f)
}

// Unregister removes the entry and returns its handle so the caller can
// close it.
func (r *Registry) Unregister(id core.ConnID) (core.SignalConnection, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.conns[id]
	if !ok {
		return nil, false
	}
	delete(r.conns, id)
	log.Debug().Str("module", "app.registry").Str("conn", string(id)).Msg("unregistered connection")
	return e.conn, true
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
