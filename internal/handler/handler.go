// Package handler provides HTTP request handlers for the REST API.
package handler

import (
	"context"

	"github.com/vyrodovalexey/gildedrose/internal/inventory"
	"github.com/vyrodovalexey/gildedrose/internal/model"
)

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// ReadyResponse represents the readiness check response.
type ReadyResponse struct {
	Status string `json:"status"`
}

// DayAdvancer runs the daily inventory update.
type DayAdvancer interface {
	AdvanceDay(ctx context.Context) (*model.DayReport, error)
	Day() int
	Classify(name string) inventory.Category
}

// DayFeed streams inventory reports.
type DayFeed interface {
	Snapshot(ctx context.Context) (*model.DayReport, error)
	Subscribe() (<-chan *model.DayReport, func())
}
