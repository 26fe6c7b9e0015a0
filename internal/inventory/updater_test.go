package inventory

import "testing"

const (
	vestName     = "+5 Dexterity Vest"
	brieName     = "Aged Brie"
	elixirName   = "Elixir of the Mongoose"
	sulfurasName = "Sulfuras, Hand of Ragnaros"
	passName     = "Backstage passes to a TAFKAL80ETC concert"
	cakeName     = "Conjured Mana Cake"
)

// classicItems returns the fixture list the shop has always been tested with.
func classicItems() []*Item {
	return []*Item{
		NewItem(vestName, 10, 20),
		NewItem(brieName, 2, 0),
		NewItem(elixirName, 5, 7),
		NewItem(sulfurasName, 0, 80),
		NewItem(sulfurasName, -1, 80),
		NewItem(passName, 15, 20),
		NewItem(passName, 10, 49),
		NewItem(passName, 5, 49),
		NewItem(cakeName, 3, 6),
	}
}

type state struct {
	sellIn  int
	quality int
}

// runDays advances a single item and records its state after each day.
func runDays(item *Item, days int) []state {
	updater := NewUpdater([]*Item{item})
	states := make([]state, 0, days)
	for range days {
		updater.AdvanceOneDay()
		states = append(states, state{sellIn: item.SellIn, quality: item.Quality})
	}
	return states
}

func TestAdvanceOneDay_Scenarios(t *testing.T) {
	tests := []struct {
		name string
		item *Item
		want []state
	}{
		{
			name: "normal item before expiry",
			item: NewItem(vestName, 10, 20),
			want: []state{{9, 19}},
		},
		{
			name: "normal item after expiry",
			item: NewItem(vestName, 0, 5),
			want: []state{{-1, 3}},
		},
		{
			name: "normal item crosses expiry",
			item: NewItem(vestName, 1, 20),
			want: []state{{0, 19}, {-1, 17}, {-2, 15}},
		},
		{
			name: "aged brie",
			item: NewItem(brieName, 2, 0),
			want: []state{{1, 1}, {0, 2}, {-1, 4}},
		},
		{
			name: "conjured item",
			item: NewItem(cakeName, 3, 8),
			want: []state{{2, 6}, {1, 4}, {0, 2}, {-1, 0}},
		},
		{
			name: "conjured item after expiry",
			item: NewItem(cakeName, 0, 8),
			want: []state{{-1, 4}, {-2, 0}},
		},
		{
			name: "backstage pass far from concert",
			item: NewItem(passName, 15, 20),
			want: []state{{14, 21}, {13, 22}},
		},
		{
			name: "backstage pass ten days out",
			item: NewItem(passName, 10, 20),
			want: []state{{9, 22}, {8, 24}},
		},
		{
			name: "backstage pass five days out",
			item: NewItem(passName, 5, 20),
			want: []state{{4, 23}, {3, 26}},
		},
		{
			name: "backstage pass capped then worthless",
			item: NewItem(passName, 1, 49),
			want: []state{{0, 50}, {-1, 0}, {-2, 0}},
		},
		{
			name: "backstage pass never exceeds fifty",
			item: NewItem(passName, 5, 49),
			want: []state{{4, 50}, {3, 50}},
		},
		{
			name: "legendary on sell date",
			item: NewItem(sulfurasName, 0, 80),
			want: []state{{0, 80}, {0, 80}, {0, 80}},
		},
		{
			name: "legendary after sell date",
			item: NewItem(sulfurasName, -1, 80),
			want: []state{{-1, 80}, {-1, 80}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			got := runDays(tt.item, len(tt.want))

			// Assert
			for day, want := range tt.want {
				if got[day] != want {
					t.Errorf("day %d: (sell_in, quality) = (%d, %d), want (%d, %d)",
						day+1, got[day].sellIn, got[day].quality, want.sellIn, want.quality)
				}
			}
		})
	}
}

func TestAdvanceOneDay_BackstagePassSellInStillDecrementsAfterConcert(t *testing.T) {
	// Arrange
	item := NewItem(passName, 0, 35)

	// Act
	NewUpdater([]*Item{item}).AdvanceOneDay()

	// Assert
	if item.Quality != 0 {
		t.Errorf("Quality = %d, want 0", item.Quality)
	}
	if item.SellIn != -1 {
		t.Errorf("SellIn = %d, want -1", item.SellIn)
	}
}

func TestAdvanceOneDay_PreservesNamesOrderAndCount(t *testing.T) {
	// Arrange
	items := classicItems()
	names := make([]string, len(items))
	for i, item := range items {
		names[i] = item.Name
	}
	updater := NewUpdater(items)

	// Act
	updater.AdvanceOneDay()

	// Assert
	if len(updater.Items()) != len(names) {
		t.Fatalf("item count = %d, want %d", len(updater.Items()), len(names))
	}
	for i, item := range items {
		if item.Name != names[i] {
			t.Errorf("items[%d].Name = %q, want %q", i, item.Name, names[i])
		}
	}
}

func TestAdvanceOneDay_QualityStaysBounded(t *testing.T) {
	// Arrange
	items := classicItems()
	items = append(items,
		NewItem(brieName, 0, 50),
		NewItem(vestName, -10, 0),
		NewItem(cakeName, 20, 1),
		NewItem(passName, 3, 50),
	)
	updater := NewUpdater(items)

	// Act + Assert
	for day := 1; day <= 100; day++ {
		updater.AdvanceOneDay()
		for _, item := range items {
			if CategoryOf(item) == CategoryLegendary {
				continue
			}
			if item.Quality < MinQuality || item.Quality > MaxQuality {
				t.Fatalf("day %d: %s quality = %d, out of [%d, %d]",
					day, item.Name, item.Quality, MinQuality, MaxQuality)
			}
		}
	}
}

func TestAdvanceOneDay_OutOfRangeInputIsClampedNotRejected(t *testing.T) {
	tests := []struct {
		name        string
		item        *Item
		wantQuality int
	}{
		{"negative quality normal", NewItem(vestName, 5, -3), 0},
		{"oversized quality normal", NewItem(vestName, 5, 70), 50},
		{"oversized quality aged", NewItem(brieName, 5, 70), 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			Advance([]*Item{tt.item})

			// Assert
			if tt.item.Quality != tt.wantQuality {
				t.Errorf("Quality = %d, want %d", tt.item.Quality, tt.wantQuality)
			}
		})
	}
}

func TestAdvanceOneDay_LegendaryInvariance(t *testing.T) {
	// Arrange
	items := []*Item{
		NewItem(sulfurasName, 0, 80),
		NewItem(sulfurasName, -1, 80),
		NewItem("Sulfuras, Eye of the Storm", 12, 3),
	}
	before := make([]Item, len(items))
	for i, item := range items {
		before[i] = *item
	}
	updater := NewUpdater(items)

	// Act
	for range 50 {
		updater.AdvanceOneDay()
	}

	// Assert
	for i, item := range items {
		if *item != before[i] {
			t.Errorf("legendary item changed: got %v, want %v", item, &before[i])
		}
	}
}

func TestAdvanceOneDay_SellInDecreasesByOne(t *testing.T) {
	// Arrange
	items := classicItems()
	updater := NewUpdater(items)

	for day := 1; day <= 20; day++ {
		previous := make([]int, len(items))
		for i, item := range items {
			previous[i] = item.SellIn
		}

		// Act
		updater.AdvanceOneDay()

		// Assert
		for i, item := range items {
			if CategoryOf(item) == CategoryLegendary {
				continue
			}
			if item.SellIn != previous[i]-1 {
				t.Fatalf("day %d: %s SellIn = %d, want %d", day, item.Name, item.SellIn, previous[i]-1)
			}
		}
	}
}

func TestAdvanceOneDay_SeesCallerChanges(t *testing.T) {
	// Arrange
	items := []*Item{NewItem(vestName, 10, 20)}
	updater := NewUpdater(items)

	// Act
	items[0].SellIn = 0
	updater.AdvanceOneDay()

	// Assert
	if items[0].Quality != 18 {
		t.Errorf("Quality = %d, want 18", items[0].Quality)
	}
}

func TestAdvance_SkipsNilItems(t *testing.T) {
	// Arrange
	item := NewItem(vestName, 3, 3)

	// Act
	Advance([]*Item{nil, item, nil})

	// Assert
	if item.SellIn != 2 || item.Quality != 2 {
		t.Errorf("item = %v, want (2, 2)", item)
	}
}

func TestAdvance_EmptyCollection(t *testing.T) {
	// Act + Assert - must not panic
	Advance(nil)
	NewUpdater(nil).AdvanceOneDay()
}

func TestItem_String(t *testing.T) {
	// Arrange
	item := NewItem(cakeName, 3, 6)

	// Act
	got := item.String()

	// Assert
	if got != "Conjured Mana Cake, 3, 6" {
		t.Errorf("String() = %q", got)
	}
}
