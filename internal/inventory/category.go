package inventory

import (
	"errors"
	"strings"
)

// ErrUnknownCategory is returned by ParseCategory for unrecognized values.
var ErrUnknownCategory = errors.New("unknown item category")

// Category is the rule group an item belongs to. It is derived from the
// item name on every update and never stored on the item itself.
type Category string

// Item categories.
const (
	CategoryLegendary     Category = "legendary"
	CategoryBackstagePass Category = "backstage_pass"
	CategoryAged          Category = "aged"
	CategoryConjured      Category = "conjured"
	CategoryNormal        Category = "normal"
)

// Name patterns used by the classifier.
const (
	legendaryPrefix     = "Sulfuras"
	backstagePassPrefix = "Backstage passes"
	agedName            = "Aged Brie"
	conjuredPrefix      = "Conjured"
)

// matcher pairs a name predicate with the category it selects.
type matcher struct {
	match    func(name string) bool
	category Category
}

func hasPrefix(prefix string) func(string) bool {
	return func(name string) bool {
		return strings.HasPrefix(name, prefix)
	}
}

func equals(want string) func(string) bool {
	return func(name string) bool {
		return name == want
	}
}

// matchers is evaluated in order; the first match wins.
var matchers = []matcher{
	{match: hasPrefix(legendaryPrefix), category: CategoryLegendary},
	{match: hasPrefix(backstagePassPrefix), category: CategoryBackstagePass},
	{match: equals(agedName), category: CategoryAged},
	{match: hasPrefix(conjuredPrefix), category: CategoryConjured},
}

// Classify returns the category for an item name. Names that match no
// pattern fall back to CategoryNormal.
func Classify(name string) Category {
	for _, m := range matchers {
		if m.match(name) {
			return m.category
		}
	}

	return CategoryNormal
}

// CategoryOf returns the category of the given item.
func CategoryOf(item *Item) Category {
	return Classify(item.Name)
}

// Categories returns every category in classification order.
func Categories() []Category {
	return []Category{
		CategoryLegendary,
		CategoryBackstagePass,
		CategoryAged,
		CategoryConjured,
		CategoryNormal,
	}
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryLegendary, CategoryBackstagePass, CategoryAged, CategoryConjured, CategoryNormal:
		return true
	default:
		return false
	}
}

// ParseCategory converts a string into a Category.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", ErrUnknownCategory
	}

	return c, nil
}

// String implements fmt.Stringer.
func (c Category) String() string {
	return string(c)
}
