// Package metrics exports controller telemetry as Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/llehouerou/ripple/internal/playback"
)

const namespace = "ripple"

// Recorder implements playback.Recorder on a private registry.
type Recorder struct {
	registry    *prometheus.Registry
	transitions *prometheus.CounterVec
	loads       *prometheus.CounterVec
	seeks       *prometheus.CounterVec
	failures    *prometheus.CounterVec
	stale       prometheus.Counter
	status      *prometheus.GaugeVec
}

// NewRecorder creates a recorder with Go runtime collectors attached.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "playback_transitions_total",
			Help:      "Playback status transitions.",
		}, []string{"from", "to"}),
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "track_loads_total",
			Help:      "Track load attempts by result.",
		}, []string{"result"}),
		seeks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "seeks_total",
			Help:      "Backend seeks by result.",
		}, []string{"result"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "playback_failures_total",
			Help:      "Load and playback failures by kind.",
		}, []string{"kind"}),
		stale: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_events_dropped_total",
			Help:      "Backend results discarded because a newer request superseded them.",
		}),
		status: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "playback_status",
			Help:      "1 for the current playback status, 0 otherwise.",
		}, []string{"status"}),
	}

	r.registry.MustRegister(
		r.transitions, r.loads, r.seeks, r.failures, r.stale, r.status,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	r.setStatus(playback.StatusIdle)
	return r
}

func (r *Recorder) setStatus(current playback.Status) {
	for s := playback.StatusIdle; s <= playback.StatusError; s++ {
		v := 0.0
		if s == current {
			v = 1
		}
		r.status.WithLabelValues(s.String()).Set(v)
	}
}

func (r *Recorder) Transition(from, to playback.Status) {
	r.transitions.WithLabelValues(from.String(), to.String()).Inc()
	r.setStatus(to)
}

func (r *Recorder) Load(result string) { r.loads.WithLabelValues(result).Inc() }

func (r *Recorder) Seek(result string) { r.seeks.WithLabelValues(result).Inc() }

func (r *Recorder) Failure(kind playback.ErrorKind) {
	r.failures.WithLabelValues(kind.String()).Inc()
}

func (r *Recorder) StaleDropped() { r.stale.Inc() }

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

var _ playback.Recorder = (*Recorder)(nil)
