package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder groups the collectors of the service and implements
// outbound.MetricsRecorder. Each Recorder owns its registry so tests can
// create as many as they need.
type Recorder struct {
	registry *prometheus.Registry

	authAttempts        *prometheus.CounterVec
	mutations           *prometheus.CounterVec
	persistenceFailures prometheus.Counter
	httpRequests        *prometheus.CounterVec
	httpDuration        *prometheus.HistogramVec
}

func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		authAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kpi_auth_attempts_total",
			Help: "Login attempts by outcome.",
		}, []string{"outcome"}),
		mutations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kpi_record_mutations_total",
			Help: "Record mutations by table, action and outcome.",
		}, []string{"table", "action", "outcome"}),
		persistenceFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "kpi_persistence_failures_total",
			Help: "Failed writes to durable storage.",
		}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kpi_http_requests_total",
			Help: "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kpi_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
}

func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

func (r *Recorder) AuthAttempt(outcome string) {
	r.authAttempts.WithLabelValues(outcome).Inc()
}

func (r *Recorder) Mutation(table, action, outcome string) {
	r.mutations.WithLabelValues(table, action, outcome).Inc()
}

func (r *Recorder) PersistenceFailure() {
	r.persistenceFailures.Inc()
}

func (r *Recorder) HTTPRequest(route, method, status string, elapsed time.Duration) {
	r.httpRequests.WithLabelValues(route, method, status).Inc()
	r.httpDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}
