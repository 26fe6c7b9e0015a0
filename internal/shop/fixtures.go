package shop

import "github.com/vyrodovalexey/gildedrose/internal/model"

// ClassicStock returns the shop's traditional opening inventory, one of
// each kind of item the rules know about.
func ClassicStock() []*model.Item {
	return []*model.Item{
		model.NewItem("+5 Dexterity Vest", 10, 20),
		model.NewItem("Aged Brie", 2, 0),
		model.NewItem("Elixir of the Mongoose", 5, 7),
		model.NewItem("Sulfuras, Hand of Ragnaros", 0, 80),
		model.NewItem("Sulfuras, Hand of Ragnaros", -1, 80),
		model.NewItem("Backstage passes to a TAFKAL80ETC concert", 15, 20),
		model.NewItem("Backstage passes to a TAFKAL80ETC concert", 10, 49),
		model.NewItem("Backstage passes to a TAFKAL80ETC concert", 5, 49),
		model.NewItem("Conjured Mana Cake", 3, 6),
	}
}
