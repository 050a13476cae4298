package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "diamond_insights"

// Recorder collects upstream and aggregation counters on its own registry.
type Recorder struct {
	registry        *prometheus.Registry
	upstreamTotal   *prometheus.CounterVec
	upstreamLatency *prometheus.HistogramVec
	droppedPlayers  *prometheus.CounterVec
	probeWindows    prometheus.Counter
}

func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		upstreamTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "statsapi_requests_total",
			Help:      "Upstream statistics requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		upstreamLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "statsapi_request_duration_seconds",
			Help:      "Upstream statistics request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		droppedPlayers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "aggregation_dropped_players_total",
			Help:      "Leaders excluded because their detail fetch failed.",
		}, []string{"group"}),
		probeWindows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "schedule_probe_windows_total",
			Help:      "Additional schedule windows probed after an empty initial window.",
		}),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.upstreamTotal,
		r.upstreamLatency,
		r.droppedPlayers,
		r.probeWindows,
	)
	return r
}

func (r *Recorder) ObserveUpstream(endpoint, outcome string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.upstreamTotal.WithLabelValues(endpoint, outcome).Inc()
	r.upstreamLatency.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

func (r *Recorder) PlayerDropped(group string) {
	if r == nil {
		return
	}
	r.droppedPlayers.WithLabelValues(group).Inc()
}

func (r *Recorder) ScheduleProbed() {
	if r == nil {
		return
	}
	r.probeWindows.Inc()
}

func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
