// Package model defines data structures used throughout the application.
package model

import (
	"errors"
	"time"

	"github.com/vyrodovalexey/gildedrose/internal/inventory"
)

// Validation errors for Item.
var (
	ErrEmptyName   = errors.New("name cannot be empty")
	ErrNameTooLong = errors.New("name cannot exceed 255 characters")
)

// Validation constants.
const (
	MaxNameLength = 255
)

// Item is a stock record held by the shop. The embedded inventory.Item is
// what the daily update mutates; Category is derived from the name and
// refreshed whenever the record is written.
type Item struct {
	ID string `json:"id"`
	inventory.Item
	Category  inventory.Category `json:"category"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// NewItem builds a record for the given stock line with its category set.
func NewItem(name string, sellIn, quality int) *Item {
	item := &Item{Item: *inventory.NewItem(name, sellIn, quality)}
	item.Refresh()
	return item
}

// Refresh recomputes the derived category from the name.
func (i *Item) Refresh() {
	i.Category = inventory.CategoryOf(&i.Item)
}

// Validate checks that the record can be stored. Quality and sell-in are
// accepted as given; the daily update handles out-of-range values.
func (i *Item) Validate() error {
	if i.Name == "" {
		return ErrEmptyName
	}

	if len(i.Name) > MaxNameLength {
		return ErrNameTooLong
	}

	return nil
}

// APIResponse is a generic wrapper for API responses.
type APIResponse[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// NewSuccessResponse creates a successful API response.
func NewSuccessResponse[T any](data T) APIResponse[T] {
	return APIResponse[T]{
		Success: true,
		Data:    data,
	}
}

// ErrorResponse represents an error response structure.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}
