package cart

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/edumaster/core"
	"github.com/trezcool/edumaster/core/lesson"
)

// Manager holds the lessons a student intends to buy. Every mutation is written
// through to durable storage.
type Manager struct {
	mu          sync.RWMutex
	items       []Item
	store       core.Storage
	logger      core.Logger
	checkingOut bool
}

// NewManager loads the persisted cart. Missing or malformed data yields an empty cart.
func NewManager(ctx context.Context, store core.Storage, logger core.Logger) (*Manager, error) {
	m := &Manager{
		items:  []Item{},
		store:  store,
		logger: logger,
	}

	data, err := store.Get(ctx, StorageKey)
	if err != nil {
		if errors.Cause(err) == core.ErrKeyNotFound {
			return m, nil
		}
		return nil, errors.Wrap(err, "loading cart")
	}
	items, err := decodeItems(data)
	if err != nil {
		logger.Warn("discarding malformed cart", err)
		return m, nil
	}
	m.items = items
	return m, nil
}

// Add appends l to the cart unless an item with the same id is already there.
// A lesson without an id is ignored.
func (m *Manager) Add(ctx context.Context, l lesson.Lesson) error {
	if l.ID == "" {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.indexOf(l.ID) >= 0 {
		return nil
	}
	m.items = append(m.items, NewItem(l))
	return m.persist(ctx)
}

// Remove drops the item with the given id, if any.
func (m *Manager) Remove(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.indexOf(id)
	if idx < 0 {
		return nil
	}
	m.items = append(m.items[:idx:idx], m.items[idx+1:]...)
	return m.persist(ctx)
}

func (m *Manager) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items = []Item{}
	return m.persist(ctx)
}

// TotalPrice sums the item prices.
func (m *Manager) TotalPrice() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var total float64
	for _, it := range m.items {
		total += it.Price.Float64()
	}
	return total
}

func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

func (m *Manager) Contains(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.indexOf(id) >= 0
}

// Items returns a copy of the cart in insertion order.
func (m *Manager) Items() []Item {
	m.mu.RLock()
	defer m.mu.RUnlock()

	items := make([]Item, len(m.items))
	copy(items, m.items)
	return items
}

func (m *Manager) indexOf(id string) int {
	for i, it := range m.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

// persist must be called with m.mu held.
func (m *Manager) persist(ctx context.Context) error {
	data, err := encodeItems(m.items)
	if err != nil {
		return err
	}
	if err := m.store.Set(ctx, StorageKey, data); err != nil {
		return errors.Wrap(err, "persisting cart")
	}
	return nil
}
