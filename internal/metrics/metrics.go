package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Load outcomes.
const (
	OutcomeSuccess    = "success"
	OutcomeFailure    = "failure"
	OutcomeSuperseded = "superseded"
)

// Recorder observes engine activity.
type Recorder interface {
	ObserveLoad(outcome string, records int, d time.Duration)
	ObserveDerive(matched, total int, d time.Duration)
}

// Nop discards observations.
type Nop struct{}

func (Nop) ObserveLoad(string, int, time.Duration) {}
func (Nop) ObserveDerive(int, int, time.Duration)  {}

// Prometheus records engine activity as Prometheus metrics.
type Prometheus struct {
	loads          *prometheus.CounterVec
	loadDuration   prometheus.Histogram
	records        prometheus.Gauge
	derivations    prometheus.Counter
	deriveDuration prometheus.Histogram
	matches        prometheus.Gauge
}

// NewPrometheus registers the engine metrics with reg.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	f := promauto.With(reg)
	return &Prometheus{
		loads: f.NewCounterVec(prometheus.CounterOpts{
			Name: "geodash_loads_total",
			Help: "Dataset loads by outcome",
		}, []string{"outcome"}),
		loadDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "geodash_load_duration_seconds",
			Help:    "Duration of dataset loads",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		records: f.NewGauge(prometheus.GaugeOpts{
			Name: "geodash_dataset_records",
			Help: "Records held after the last successful load",
		}),
		derivations: f.NewCounter(prometheus.CounterOpts{
			Name: "geodash_view_derivations_total",
			Help: "Total number of view derivations",
		}),
		deriveDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "geodash_view_derive_duration_seconds",
			Help:    "Duration of view derivations",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
		}),
		matches: f.NewGauge(prometheus.GaugeOpts{
			Name: "geodash_view_matches",
			Help: "Records matching the filter in the last derived view",
		}),
	}
}

func (p *Prometheus) ObserveLoad(outcome string, records int, d time.Duration) {
	p.loads.WithLabelValues(outcome).Inc()
	p.loadDuration.Observe(d.Seconds())
	if outcome == OutcomeSuccess {
		p.records.Set(float64(records))
	}
}

func (p *Prometheus) ObserveDerive(matched, _ int, d time.Duration) {
	p.derivations.Inc()
	p.deriveDuration.Observe(d.Seconds())
	p.matches.Set(float64(matched))
}
