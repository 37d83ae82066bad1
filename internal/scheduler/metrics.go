package scheduler

import (
	"github.com/me/sheetsync/pkg/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exposes Prometheus collectors for sync activity.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	cycles      *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	rows        prometheus.Gauge
	lastSuccess prometheus.Gauge
	active      prometheus.Gauge
}

// NewMetrics registers the sync collectors with reg.
// A nil reg builds unregistered collectors, which is handy in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		cycles: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sheetsync",
			Subsystem: "sync",
			Name:      "cycles_total",
			Help:      "Sync cycles executed, by trigger and result.",
		}, []string{"trigger", "result"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "sheetsync",
			Subsystem: "sync",
			Name:      "cycle_duration_seconds",
			Help:      "Wall time of a fetch-then-write cycle.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"trigger"}),
		rows: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "sheetsync",
			Subsystem: "sync",
			Name:      "rows_synced",
			Help:      "Rows written by the last completed cycle.",
		}),
		lastSuccess: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "sheetsync",
			Subsystem: "sync",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last completed cycle.",
		}),
		active: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "sheetsync",
			Subsystem: "scheduler",
			Name:      "active",
			Help:      "1 while a recurring sync job is armed.",
		}),
	}
}

func (m *Metrics) observeCycle(rec model.RunRecord) {
	if m == nil {
		return
	}
	m.cycles.WithLabelValues(string(rec.Trigger), string(rec.Phase)).Inc()
	m.duration.WithLabelValues(string(rec.Trigger)).Observe(rec.Duration().Seconds())
	if rec.Phase == model.SyncPhaseCompleted {
		m.rows.Set(float64(rec.Rows))
		m.lastSuccess.Set(float64(rec.FinishedAt.Unix()))
	}
}

func (m *Metrics) setActive(active bool) {
	if m == nil {
		return
	}
	if active {
		m.active.Set(1)
	} else {
		m.active.Set(0)
	}
}
