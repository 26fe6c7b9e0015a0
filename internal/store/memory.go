package store

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vyrodovalexey/gildedrose/internal/inventory"
	"github.com/vyrodovalexey/gildedrose/internal/model"
)

// MemoryStore implements Store interface with in-memory storage.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]*model.Item
	order []string
	now   func() time.Time
}

// NewMemoryStore creates a new MemoryStore instance.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: make(map[string]*model.Item),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// List returns all items from the store in insertion order.
func (s *MemoryStore) List(ctx context.Context) ([]model.Item, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("list items: %w", ctx.Err())
	default:
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.snapshot(), nil
}

// Get retrieves an item by its ID.
func (s *MemoryStore) Get(ctx context.Context, id string) (*model.Item, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("get item: %w", ctx.Err())
	default:
	}

	if id == "" {
		return nil, ErrInvalidID
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	item, exists := s.items[id]
	if !exists {
		return nil, ErrNotFound
	}

	found := *item
	return &found, nil
}

// Create adds a new item to the store and returns the created item with generated ID.
func (s *MemoryStore) Create(ctx context.Context, item *model.Item) (*model.Item, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("create item: %w", ctx.Err())
	default:
	}

	if item == nil {
		return nil, fmt.Errorf("create item: %w", ErrNilItem)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	newItem := &model.Item{
		ID:        uuid.New().String(),
		Item:      item.Item,
		CreatedAt: now,
		UpdatedAt: now,
	}
	newItem.Refresh()

	s.items[newItem.ID] = newItem
	s.order = append(s.order, newItem.ID)

	created := *newItem
	return &created, nil
}

// Update modifies an existing item in the store. The item keeps its
// position in the collection.
func (s *MemoryStore) Update(ctx context.Context, id string, item *model.Item) (*model.Item, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("update item: %w", ctx.Err())
	default:
	}

	if id == "" {
		return nil, ErrInvalidID
	}

	if item == nil {
		return nil, fmt.Errorf("update item: %w", ErrNilItem)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.items[id]
	if !exists {
		return nil, ErrNotFound
	}

	existing.Item = item.Item
	existing.UpdatedAt = s.now()
	existing.Refresh()

	updated := *existing
	return &updated, nil
}

// Delete removes an item from the store by its ID.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("delete item: %w", ctx.Err())
	default:
	}

	if id == "" {
		return ErrInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[id]; !exists {
		return ErrNotFound
	}

	delete(s.items, id)
	s.order = slices.DeleteFunc(s.order, func(v string) bool { return v == id })

	return nil
}

// Apply hands fn pointers to every stored stock line in insertion order
// while holding the write lock, then refreshes the derived fields.
func (s *MemoryStore) Apply(ctx context.Context, fn ApplyFunc) ([]model.Item, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("apply: %w", ctx.Err())
	default:
	}

	if fn == nil {
		return nil, ErrNilFunc
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batch := make([]*inventory.Item, len(s.order))
	for i, id := range s.order {
		batch[i] = &s.items[id].Item
	}

	fn(batch)

	now := s.now()
	for _, id := range s.order {
		item := s.items[id]
		item.Refresh()
		item.UpdatedAt = now
	}

	return s.snapshot(), nil
}

// snapshot copies the stored items in order. Callers must hold the lock.
func (s *MemoryStore) snapshot() []model.Item {
	items := make([]model.Item, 0, len(s.order))
	for _, id := range s.order {
		items = append(items, *s.items[id])
	}

	return items
}
