package model

import (
	"time"

	"github.com/vyrodovalexey/gildedrose/internal/inventory"
)

// DayReport describes the inventory right after a daily update.
type DayReport struct {
	Day        int                        `json:"day"`
	Items      []Item                     `json:"items"`
	Counts     map[inventory.Category]int `json:"counts"`
	AdvancedAt time.Time                  `json:"advanced_at"`
}

// CountByCategory tallies items per category. Every known category is
// present in the result, with zero when no item falls into it.
func CountByCategory(items []Item) map[inventory.Category]int {
	counts := make(map[inventory.Category]int, len(inventory.Categories()))
	for _, c := range inventory.Categories() {
		counts[c] = 0
	}

	for i := range items {
		counts[items[i].Category]++
	}

	return counts
}

// DayStatus is the response body for the current-day query.
type DayStatus struct {
	Day int `json:"day"`
}

// Classification is the response body for a category query.
type Classification struct {
	Name     string             `json:"name"`
	Category inventory.Category `json:"category"`
}

// ClampResult is the response body for a quality clamp query.
type ClampResult struct {
	Current int `json:"current"`
	Delta   int `json:"delta"`
	Quality int `json:"quality"`
}

// WebSocketMessage represents a message sent over WebSocket connection.
type WebSocketMessage struct {
	Type      string     `json:"type"`
	Report    *DayReport `json:"report,omitempty"`
	Error     string     `json:"error,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}

// WebSocket message types.
const (
	WSMessageTypeSnapshot    = "snapshot"
	WSMessageTypeDayAdvanced = "day_advanced"
	WSMessageTypePing        = "ping"
	WSMessageTypePong        = "pong"
	WSMessageTypeError       = "error"
)

// NewDayMessage wraps a report in a WebSocket message of the given type.
func NewDayMessage(msgType string, report *DayReport) WebSocketMessage {
	return WebSocketMessage{
		Type:      msgType,
		Report:    report,
		Timestamp: time.Now().UTC(),
	}
}

// NewPongMessage creates the reply to a client ping.
func NewPongMessage() WebSocketMessage {
	return WebSocketMessage{
		Type:      WSMessageTypePong,
		Timestamp: time.Now().UTC(),
	}
}

// NewErrorMessage creates a WebSocket error message.
func NewErrorMessage(errMsg string) WebSocketMessage {
	return WebSocketMessage{
		Type:      WSMessageTypeError,
		Error:     errMsg,
		Timestamp: time.Now().UTC(),
	}
}
