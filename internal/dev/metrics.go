package dev

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the watch session collectors. A nil *Metrics records nothing.
type Metrics struct {
	eventsTotal  prometheus.Counter
	droppedTotal prometheus.Counter
	rebuilds     *prometheus.CounterVec
	duration     prometheus.Histogram
	state        prometheus.Gauge
}

// NewMetrics registers the watch session collectors with reg. A nil reg uses
// prometheus.DefaultRegisterer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		eventsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "agreed",
			Subsystem: "watch",
			Name:      "events_total",
			Help:      "File change notifications received",
		}),
		droppedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "agreed",
			Subsystem: "watch",
			Name:      "events_dropped_total",
			Help:      "Notifications dropped because the queue was full",
		}),
		rebuilds: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agreed",
			Subsystem: "watch",
			Name:      "rebuilds_total",
			Help:      "Rebuilds by outcome",
		}, []string{"outcome"}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "agreed",
			Subsystem: "watch",
			Name:      "rebuild_duration_seconds",
			Help:      "Rebuild duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}),
		state: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "agreed",
			Subsystem: "watch",
			Name:      "state",
			Help:      "Coordinator state (0 idle, 1 debouncing, 2 building, 3 pending rebuild, 4 stopped)",
		}),
	}
}

func (m *Metrics) event() {
	if m == nil {
		return
	}
	m.eventsTotal.Inc()
}

func (m *Metrics) dropped() {
	if m == nil {
		return
	}
	m.droppedTotal.Inc()
}

func (m *Metrics) rebuild(err error, d time.Duration) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.rebuilds.WithLabelValues(outcome).Inc()
	m.duration.Observe(d.Seconds())
}

func (m *Metrics) setState(s State) {
	if m == nil {
		return
	}
	m.state.Set(float64(s))
}
