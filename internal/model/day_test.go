package model

import (
	"encoding/json"
	"testing"

	"github.com/vyrodovalexey/gildedrose/internal/inventory"
)

func TestCountByCategory(t *testing.T) {
	// Arrange
	items := []Item{
		*NewItem("Aged Brie", 2, 0),
		*NewItem("Sulfuras, Hand of Ragnaros", 0, 80),
		*NewItem("Sulfuras, Hand of Ragnaros", -1, 80),
		*NewItem("+5 Dexterity Vest", 10, 20),
	}

	// Act
	counts := CountByCategory(items)

	// Assert
	want := map[inventory.Category]int{
		inventory.CategoryLegendary:     2,
		inventory.CategoryBackstagePass: 0,
		inventory.CategoryAged:          1,
		inventory.CategoryConjured:      0,
		inventory.CategoryNormal:        1,
	}
	if len(counts) != len(want) {
		t.Fatalf("len(counts) = %d, want %d", len(counts), len(want))
	}
	for c, n := range want {
		if counts[c] != n {
			t.Errorf("counts[%s] = %d, want %d", c, counts[c], n)
		}
	}
}

func TestCountByCategory_Empty(t *testing.T) {
	// Act
	counts := CountByCategory(nil)

	// Assert
	for _, c := range inventory.Categories() {
		if n, ok := counts[c]; !ok || n != 0 {
			t.Errorf("counts[%s] = %d (present=%v), want 0", c, n, ok)
		}
	}
}

func TestNewDayMessage(t *testing.T) {
	// Arrange
	report := &DayReport{Day: 2}

	// Act
	msg := NewDayMessage(WSMessageTypeDayAdvanced, report)

	// Assert
	if msg.Type != WSMessageTypeDayAdvanced {
		t.Errorf("Type = %s, want %s", msg.Type, WSMessageTypeDayAdvanced)
	}
	if msg.Report != report {
		t.Error("Report was not attached")
	}
	if msg.Timestamp.IsZero() {
		t.Error("Timestamp should be set")
	}
}

func TestNewErrorMessage_JSON(t *testing.T) {
	// Arrange
	msg := NewErrorMessage("bad request")

	// Act
	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("json.Marshal() unexpected error: %v", err)
	}

	var decoded WebSocketMessage
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("json.Unmarshal() unexpected error: %v", err)
	}

	// Assert
	if decoded.Type != WSMessageTypeError {
		t.Errorf("Type = %s, want %s", decoded.Type, WSMessageTypeError)
	}
	if decoded.Error != "bad request" {
		t.Errorf("Error = %q, want %q", decoded.Error, "bad request")
	}
	if decoded.Report != nil {
		t.Error("Report should be omitted")
	}
}

func TestNewPongMessage(t *testing.T) {
	// Act
	msg := NewPongMessage()

	// Assert
	if msg.Type != WSMessageTypePong {
		t.Errorf("Type = %s, want %s", msg.Type, WSMessageTypePong)
	}
	if msg.Report != nil || msg.Error != "" {
		t.Errorf("pong should carry no payload, got %+v", msg)
	}
	if msg.Timestamp.IsZero() {
		t.Error("Timestamp should be set")
	}
}
