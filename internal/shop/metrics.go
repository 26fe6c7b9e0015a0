package shop

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vyrodovalexey/gildedrose/internal/model"
)

const metricsNamespace = "gildedrose"

// Metrics holds the Prometheus collectors for daily updates.
type Metrics struct {
	daysAdvanced    prometheus.Counter
	currentDay      prometheus.Gauge
	items           *prometheus.GaugeVec
	quality         *prometheus.HistogramVec
	advanceDuration prometheus.Histogram
}

// NewMetrics registers the shop collectors with reg. A nil reg uses the
// default Prometheus registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		daysAdvanced: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "days_advanced_total",
			Help:      "Total number of daily updates applied to the inventory",
		}),
		currentDay: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "current_day",
			Help:      "Number of days the inventory has been advanced since startup",
		}),
		items: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "items",
			Help:      "Number of stocked items per category after the last update",
		}, []string{"category"}),
		quality: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "item_quality",
			Help:      "Item quality observed after each daily update",
			Buckets:   []float64{0, 5, 10, 20, 30, 40, 49, 50, 80},
		}, []string{"category"}),
		advanceDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "day_advance_duration_seconds",
			Help:      "Time taken to apply a daily update",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

// observe records the outcome of one daily update.
func (m *Metrics) observe(report *model.DayReport, elapsed time.Duration) {
	m.daysAdvanced.Inc()
	m.currentDay.Set(float64(report.Day))
	m.advanceDuration.Observe(elapsed.Seconds())

	for category, count := range report.Counts {
		m.items.WithLabelValues(string(category)).Set(float64(count))
	}

	for i := range report.Items {
		item := &report.Items[i]
		m.quality.WithLabelValues(string(item.Category)).Observe(float64(item.Quality))
	}
}
