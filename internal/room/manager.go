package room

import (
	"context"
	"sync"

	"github.com/iliyamo/live-seat-reservation/internal/storage"
)

// StoreFactory yields the durable store scoped to one room.
type StoreFactory func(name string) storage.Store

// Manager lazily constructs rooms by name and hands out the existing
// instance afterwards, so every connection for the same room lands on
// the same single-writer Room.
type Manager struct {
	stores StoreFactory
	opts   Options

	mu    sync.Mutex
	rooms map[string]*Room
}

// NewManager builds a Manager; every room it creates shares the same
// Options and draws its store from the factory.
func NewManager(stores StoreFactory, opts Options) *Manager {
	return &Manager{
		stores: stores,
		opts:   opts,
		rooms:  make(map[string]*Room),
	}
}

// GetOrCreate returns the room with the given name, constructing it
// (and reloading its confirmed reservations) on first use.
func (m *Manager) GetOrCreate(ctx context.Context, name string) (*Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.rooms[name]; ok {
		return r, nil
	}
	r, err := New(ctx, name, m.stores(name), m.opts)
	if err != nil {
		return nil, err
	}
	m.rooms[name] = r
	return r, nil
}

// Lookup returns an existing room without creating one.  Admin reads
// use it so that reconciliation queries never spawn empty rooms.
func (m *Manager) Lookup(name string) (*Room, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rooms[name]
	return r, ok
}
