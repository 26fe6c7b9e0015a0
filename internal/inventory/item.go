// Package inventory implements the nightly quality and sell-in update rules
// for the shop's stock.
//
// Items are classified by name into a fixed set of categories and each
// category has its own quality rule. The package is pure: it performs no I/O,
// holds no global state and never returns errors.
package inventory

import "fmt"

// Quality bounds for every non-legendary item.
const (
	MinQuality = 0
	MaxQuality = 50
)

// Item is a single line of stock. Name is fixed at creation and decides the
// item's category; SellIn and Quality are mutated by the daily update.
type Item struct {
	Name    string `json:"name"`
	SellIn  int    `json:"sell_in"`
	Quality int    `json:"quality"`
}

// NewItem creates an item with the given initial state.
// No validation is performed.
func NewItem(name string, sellIn, quality int) *Item {
	return &Item{
		Name:    name,
		SellIn:  sellIn,
		Quality: quality,
	}
}

// String renders the item as "name, sell_in, quality".
func (i *Item) String() string {
	return fmt.Sprintf("%s, %d, %d", i.Name, i.SellIn, i.Quality)
}
