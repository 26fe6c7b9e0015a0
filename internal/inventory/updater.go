package inventory

// Updater advances a caller-owned collection of items one day at a time.
// It holds no state besides the borrowed slice.
type Updater struct {
	items []*Item
}

// NewUpdater binds an updater to items. The slice and the items stay owned
// by the caller; later changes to them are visible to the updater.
func NewUpdater(items []*Item) *Updater {
	return &Updater{items: items}
}

// Items returns the bound collection.
func (u *Updater) Items() []*Item {
	return u.items
}

// AdvanceOneDay applies one day of updates to every bound item in order.
func (u *Updater) AdvanceOneDay() {
	Advance(u.items)
}

// Advance applies one day of updates to items in slice order. Nil entries
// are skipped. The items are not retained after the call returns.
func Advance(items []*Item) {
	for _, item := range items {
		if item == nil {
			continue
		}
		advanceItem(item)
	}
}

// advanceItem runs the category rule and then ages the item by one day.
// Legendary items never age.
func advanceItem(item *Item) {
	category := CategoryOf(item)
	if category == CategoryLegendary {
		return
	}

	RuleFor(category)(item)
	item.SellIn--
}
