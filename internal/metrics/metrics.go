package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "bracketd"

// Recorder owns a private Prometheus registry. A nil *Recorder is valid and
// records nothing.
type Recorder struct {
	registry *prometheus.Registry

	commands           *prometheus.CounterVec
	commandDuration    *prometheus.HistogramVec
	httpRequests       *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec
	tournamentsCreated prometheus.Counter
	matchesCreated     prometheus.Counter
	connections        prometheus.Gauge
}

func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		registry: reg,
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Commands handled, by verb and outcome kind.",
		}, []string{LabelCommand, LabelOutcome}),
		commandDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "command_duration_seconds",
			Help:      "Time spent handling a command.",
			Buckets:   prometheus.DefBuckets,
		}, []string{LabelCommand}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served.",
		}, []string{LabelMethod, LabelRoute, LabelStatus}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{LabelMethod, LabelRoute}),
		tournamentsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tournaments_created_total",
			Help:      "Tournaments created.",
		}),
		matchesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matches_created_total",
			Help:      "Matches allocated by bracket creation.",
		}),
		connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "command_connections",
			Help:      "Open command connections.",
		}),
	}

	reg.MustRegister(
		r.commands,
		r.commandDuration,
		r.httpRequests,
		r.httpDuration,
		r.tournamentsCreated,
		r.matchesCreated,
		r.connections,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// RecordCommand tracks one handled command. outcome is "ok" or an error kind.
func (r *Recorder) RecordCommand(command, outcome string, duration time.Duration) {
	if r == nil {
		return
	}
	r.commands.WithLabelValues(command, outcome).Inc()
	r.commandDuration.WithLabelValues(command).Observe(duration.Seconds())
}

// RecordHTTPRequest tracks basic HTTP metrics.
func (r *Recorder) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if r == nil {
		return
	}
	r.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (r *Recorder) RecordTournamentCreated(matches int) {
	if r == nil {
		return
	}
	r.tournamentsCreated.Inc()
	r.matchesCreated.Add(float64(matches))
}

func (r *Recorder) ConnectionOpened() {
	if r == nil {
		return
	}
	r.connections.Inc()
}

func (r *Recorder) ConnectionClosed() {
	if r == nil {
		return
	}
	r.connections.Dec()
}
