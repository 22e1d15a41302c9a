package store

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/layer-3/auctioneer/core"
	"github.com/layer-3/auctioneer/ports"
)

type itemSlot struct {
	mu      sync.Mutex
	item    core.AuctionItem
	removed bool
}

// MemoryAuctionStore is an in-memory implementation of the AuctionStore interface.
// The map lock only guards slot lookup; bids and closures serialize on the slot lock.
type MemoryAuctionStore struct {
	lastID atomic.Uint64

	mu    sync.RWMutex
	items map[uint64]*itemSlot
}

// NewMemoryAuctionStore creates a new in-memory auction store
func NewMemoryAuctionStore() ports.AuctionStore {
	return &MemoryAuctionStore{
		items: make(map[uint64]*itemSlot),
	}
}

// Insert stores the item under a fresh id
func (s *MemoryAuctionStore) Insert(ctx context.Context, item core.AuctionItem) (uint64, error) {
	item.ID = s.lastID.Add(1)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[item.ID] = &itemSlot{item: item}
	return item.ID, nil
}

// Get returns a copy of an open item
func (s *MemoryAuctionStore) Get(ctx context.Context, id uint64) (core.AuctionItem, error) {
	slot, ok := s.slot(id)
	if !ok {
		return core.AuctionItem{}, core.ErrNotFound
	}

	slot.mu.Lock()
	defer slot.mu.Unlock()

	if slot.removed {
		return core.AuctionItem{}, core.ErrNotFound
	}
	return slot.item, nil
}

// List returns a snapshot of all open items ordered by id
func (s *MemoryAuctionStore) List(ctx context.Context) ([]core.AuctionItem, error) {
	s.mu.RLock()
	slots := make([]*itemSlot, 0, len(s.items))
	for _, slot := range s.items {
		slots = append(slots, slot)
	}
	s.mu.RUnlock()

	items := make([]core.AuctionItem, 0, len(slots))
	for _, slot := range slots {
		slot.mu.Lock()
		if !slot.removed {
			items = append(items, slot.item)
		}
		slot.mu.Unlock()
	}

	slices.SortFunc(items, func(a, b core.AuctionItem) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})

	return items, nil
}

// Update applies fn to a working copy under the item lock and commits it if fn succeeds
func (s *MemoryAuctionStore) Update(ctx context.Context, id uint64, fn ports.ItemUpdate) (core.AuctionItem, error) {
	slot, ok := s.slot(id)
	if !ok {
		return core.AuctionItem{}, core.ErrNotFound
	}

	slot.mu.Lock()
	defer slot.mu.Unlock()

	if slot.removed {
		return core.AuctionItem{}, core.ErrNotFound
	}

	working := slot.item
	if err := fn(&working); err != nil {
		return slot.item, err
	}
	slot.item = working

	return working, nil
}

// Remove marks the item removed under its lock, then drops it from the map
func (s *MemoryAuctionStore) Remove(ctx context.Context, id uint64, check func(item core.AuctionItem) error) (core.AuctionItem, error) {
	slot, ok := s.slot(id)
	if !ok {
		return core.AuctionItem{}, core.ErrNotFound
	}

	slot.mu.Lock()
	if slot.removed {
		slot.mu.Unlock()
		return core.AuctionItem{}, core.ErrNotFound
	}
	if check != nil {
		if err := check(slot.item); err != nil {
			slot.mu.Unlock()
			return core.AuctionItem{}, err
		}
	}
	slot.removed = true
	item := slot.item
	slot.mu.Unlock()

	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()

	return item, nil
}

func (s *MemoryAuctionStore) slot(id uint64) (*itemSlot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	slot, ok := s.items[id]
	return slot, ok
}
