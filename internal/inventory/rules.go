package inventory

// Rule applies one day of quality change to an item. Rules never touch
// SellIn; the updater decrements it afterwards.
type Rule func(item *Item)

// Backstage pass thresholds on the pre-decrement sell-in.
const (
	backstageTripleDays = 5
	backstageDoubleDays = 10
)

// ClampQuality applies delta to current and bounds the result to
// [MinQuality, MaxQuality].
func ClampQuality(current, delta int) int {
	return max(MinQuality, min(MaxQuality, current+delta))
}

// RuleFor returns the quality rule for a category. The legendary rule is a
// no-op. Unknown categories get the normal rule.
func RuleFor(c Category) Rule {
	switch c {
	case CategoryLegendary:
		return keepLegendary
	case CategoryBackstagePass:
		return adjustBackstagePass
	case CategoryAged:
		return ageItem
	case CategoryConjured:
		return degradeConjured
	default:
		return degradeNormal
	}
}

func keepLegendary(*Item) {}

func degradeNormal(item *Item) {
	item.Quality = ClampQuality(item.Quality, expiringDelta(item, -1))
}

func degradeConjured(item *Item) {
	item.Quality = ClampQuality(item.Quality, expiringDelta(item, -2))
}

func ageItem(item *Item) {
	item.Quality = ClampQuality(item.Quality, expiringDelta(item, 1))
}

// adjustBackstagePass raises quality as the concert approaches and zeroes it
// once the concert has passed.
func adjustBackstagePass(item *Item) {
	var delta int

	switch {
	case item.SellIn <= 0:
		item.Quality = 0
		return
	case item.SellIn <= backstageTripleDays:
		delta = 3
	case item.SellIn <= backstageDoubleDays:
		delta = 2
	default:
		delta = 1
	}

	item.Quality = ClampQuality(item.Quality, delta)
}

// expiringDelta doubles base once the item is past its sell-in date.
func expiringDelta(item *Item, base int) int {
	if item.SellIn > 0 {
		return base
	}

	return 2 * base
}
