package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Monitor collects planner metrics in its own registry
type Monitor struct {
	registry *prometheus.Registry

	assignments  *prometheus.CounterVec
	saves        *prometheus.CounterVec
	saveDuration prometheus.Histogram
	products     prometheus.Gauge
	dishes       prometheus.Gauge
	plannedSlots prometheus.Gauge
	startTime    time.Time
}

// NewMonitor creates a monitor with every planner metric registered
func NewMonitor() *Monitor {
	m := &Monitor{
		registry: prometheus.NewRegistry(),
		assignments: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "menuplanner_assignments_total",
				Help: "Menu slot assignments by outcome",
			},
			[]string{"outcome"},
		),
		saves: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "menuplanner_snapshot_saves_total",
				Help: "Snapshot writes by result",
			},
			[]string{"result"},
		),
		saveDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "menuplanner_snapshot_save_seconds",
				Help:    "Time taken to write a snapshot",
				Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
			},
		),
		products: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "menuplanner_products",
			Help: "Products currently in stock",
		}),
		dishes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "menuplanner_dishes",
			Help: "Dishes in the catalog",
		}),
		plannedSlots: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "menuplanner_planned_slots",
			Help: "Weekly menu slots with a dish assigned",
		}),
		startTime: time.Now(),
	}

	m.registry.MustRegister(
		m.assignments,
		m.saves,
		m.saveDuration,
		m.products,
		m.dishes,
		m.plannedSlots,
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "menuplanner_uptime_seconds",
			Help: "Seconds since the planner started",
		}, func() float64 { return time.Since(m.startTime).Seconds() }),
	)
	return m
}

// RecordAssignment counts one assignment attempt
func (m *Monitor) RecordAssignment(outcome string) {
	m.assignments.WithLabelValues(outcome).Inc()
}

// RecordSave counts one snapshot write and its duration
func (m *Monitor) RecordSave(took time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.saves.WithLabelValues(result).Inc()
	m.saveDuration.Observe(took.Seconds())
}

// RecordState sets the size gauges
func (m *Monitor) RecordState(products, dishes, planned int) {
	m.products.Set(float64(products))
	m.dishes.Set(float64(dishes))
	m.plannedSlots.Set(float64(planned))
}

// Registry returns the underlying registry
func (m *Monitor) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Monitor) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
