// Package store provides data storage interfaces and implementations.
package store

import (
	"context"
	"errors"

	"github.com/vyrodovalexey/gildedrose/internal/inventory"
	"github.com/vyrodovalexey/gildedrose/internal/model"
)

// Store errors.
var (
	ErrNotFound  = errors.New("item not found")
	ErrInvalidID = errors.New("invalid item ID")
	ErrNilItem   = errors.New("item cannot be nil")
	ErrNilFunc   = errors.New("apply function cannot be nil")
)

// ApplyFunc mutates a batch of stock lines in place. The slice and the
// pointers in it are only valid for the duration of the call.
type ApplyFunc func(items []*inventory.Item)

// Store defines the interface for item storage operations.
// List and Apply observe items in insertion order.
type Store interface {
	// List returns all items from the store.
	List(ctx context.Context) ([]model.Item, error)

	// Get retrieves an item by its ID.
	Get(ctx context.Context, id string) (*model.Item, error)

	// Create adds a new item to the store and returns the created item with generated ID.
	Create(ctx context.Context, item *model.Item) (*model.Item, error)

	// Update modifies an existing item in the store.
	Update(ctx context.Context, id string, item *model.Item) (*model.Item, error)

	// Delete removes an item from the store by its ID.
	Delete(ctx context.Context, id string) error

	// Apply runs fn over every stored item under an exclusive lock and
	// returns the resulting items.
	Apply(ctx context.Context, fn ApplyFunc) ([]model.Item, error)
}
