// Package itemstore persists the item collection as a whole.
//
// Every backend serializes Update calls: the read of the current snapshot,
// the caller's transformation, and the write of the result happen as one
// unit, and a failed transformation or write leaves the stored collection
// untouched. Load may run concurrently with other loads and always observes
// the latest committed snapshot. Items are kept in insertion order.
package itemstore

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/erazemk/lostfound/internal/model"
)

// ErrNotFound is returned when an item ID does not exist.
var ErrNotFound = errors.New("item not found")

// UpdateFunc receives a private copy of the current collection and returns
// the collection to store. Returning an error aborts the update.
type UpdateFunc func(items []model.Item) ([]model.Item, error)

// Store is a whole-collection item store.
type Store interface {
	Load(ctx context.Context) ([]model.Item, error)
	Update(ctx context.Context, fn UpdateFunc) error
}

// Get returns a single item from the latest snapshot.
func Get(ctx context.Context, s Store, id string) (*model.Item, error) {
	items, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	idx := model.IndexOf(items, id)
	if idx < 0 {
		return nil, ErrNotFound
	}
	return &items[idx], nil
}

// Insert appends a new item. The ID must not be in use.
func Insert(ctx context.Context, s Store, item model.Item) error {
	return s.Update(ctx, func(items []model.Item) ([]model.Item, error) {
		if model.IndexOf(items, item.ID) >= 0 {
			return nil, errors.New("duplicate item id")
		}
		return append(items, item), nil
	})
}

// Memory is an in-process store, used in tests and as a scratch backend.
type Memory struct {
	mu    sync.RWMutex
	items []model.Item
}

// NewMemory returns a memory store seeded with items.
func NewMemory(items ...model.Item) *Memory {
	return &Memory{items: slices.Clone(items)}
}

// Load implements Store.
func (m *Memory) Load(ctx context.Context) ([]model.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.items), nil
}

// Update implements Store.
func (m *Memory) Update(ctx context.Context, fn UpdateFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	next, err := fn(slices.Clone(m.items))
	if err != nil {
		return err
	}
	m.items = next
	return nil
}
