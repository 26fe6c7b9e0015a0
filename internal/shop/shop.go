// Package shop runs the daily inventory update against the item store and
// publishes the results.
package shop

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/vyrodovalexey/gildedrose/internal/inventory"
	"github.com/vyrodovalexey/gildedrose/internal/model"
	"github.com/vyrodovalexey/gildedrose/internal/store"
)

// subscriberBuffer is the number of reports a subscriber may lag behind
// before new reports are dropped for it.
const subscriberBuffer = 16

// ErrClosed is returned by operations on a closed Shop.
var ErrClosed = errors.New("shop is closed")

// Shop owns the day counter and applies the inventory rules to the store.
type Shop struct {
	store   store.Store
	logger  *zap.Logger
	metrics *Metrics

	// advanceMu serializes day advances so day numbers follow update order.
	advanceMu sync.Mutex
	day       int

	mu          sync.RWMutex
	subscribers map[chan *model.DayReport]struct{}
	closed      bool
}

// New creates a Shop over the given store. metrics may be nil.
func New(s store.Store, logger *zap.Logger, metrics *Metrics) *Shop {
	return &Shop{
		store:       s,
		logger:      logger,
		metrics:     metrics,
		subscribers: make(map[chan *model.DayReport]struct{}),
	}
}

// Day returns the number of days advanced since the shop was created.
func (s *Shop) Day() int {
	s.advanceMu.Lock()
	defer s.advanceMu.Unlock()

	return s.day
}

// AdvanceDay applies exactly one day of updates to every stocked item, in
// stock order, and publishes the resulting report to subscribers.
func (s *Shop) AdvanceDay(ctx context.Context) (*model.DayReport, error) {
	if s.isClosed() {
		return nil, ErrClosed
	}

	s.advanceMu.Lock()
	defer s.advanceMu.Unlock()

	start := time.Now()

	items, err := s.store.Apply(ctx, inventory.Advance)
	if err != nil {
		return nil, fmt.Errorf("advance day: %w", err)
	}

	s.day++
	report := &model.DayReport{
		Day:        s.day,
		Items:      items,
		Counts:     model.CountByCategory(items),
		AdvancedAt: time.Now().UTC(),
	}

	elapsed := time.Since(start)
	if s.metrics != nil {
		s.metrics.observe(report, elapsed)
	}

	s.logger.Info("inventory advanced one day",
		zap.Int("day", report.Day),
		zap.Int("items", len(report.Items)),
		zap.Any("counts", report.Counts),
		zap.Duration("duration", elapsed),
	)

	s.publish(report)

	return report, nil
}

// Snapshot returns the current inventory as a report for the current day.
func (s *Shop) Snapshot(ctx context.Context) (*model.DayReport, error) {
	s.advanceMu.Lock()
	defer s.advanceMu.Unlock()

	items, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}

	return &model.DayReport{
		Day:        s.day,
		Items:      items,
		Counts:     model.CountByCategory(items),
		AdvancedAt: time.Now().UTC(),
	}, nil
}

// Classify returns the category the rules would apply to name.
func (s *Shop) Classify(name string) inventory.Category {
	return inventory.Classify(name)
}

// Seed stocks the store with the classic opening inventory.
func (s *Shop) Seed(ctx context.Context) error {
	stock := ClassicStock()
	for _, item := range stock {
		if _, err := s.store.Create(ctx, item); err != nil {
			return fmt.Errorf("seed %q: %w", item.Name, err)
		}
	}

	s.logger.Info("inventory seeded", zap.Int("items", len(stock)))
	return nil
}

// Subscribe registers a listener for day reports. The returned channel is
// closed by Unsubscribe or Close.
func (s *Shop) Subscribe() (<-chan *model.DayReport, func()) {
	ch := make(chan *model.DayReport, subscriberBuffer)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		close(ch)
		return ch, func() {}
	}
	s.subscribers[ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() { s.unsubscribe(ch) })
	}
}

// Subscribers returns the number of active subscriptions.
func (s *Shop) Subscribers() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.subscribers)
}

// Close closes every subscription. Further AdvanceDay calls fail with ErrClosed.
func (s *Shop) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true

	for ch := range s.subscribers {
		close(ch)
		delete(s.subscribers, ch)
	}
}

func (s *Shop) unsubscribe(ch chan *model.DayReport) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.subscribers[ch]; ok {
		delete(s.subscribers, ch)
		close(ch)
	}
}

// publish delivers report to every subscriber without blocking.
func (s *Shop) publish(report *model.DayReport) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for ch := range s.subscribers {
		select {
		case ch <- report:
		default:
			s.logger.Warn("dropping day report for slow subscriber", zap.Int("day", report.Day))
		}
	}
}

func (s *Shop) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.closed
}
