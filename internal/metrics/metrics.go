package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rosterd/rosterd/internal/health"
)

var (
	// Dispatcher metrics

	QueueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "roster",
		Name:      "dispatch_queue_depth",
		Help:      "Number of schedule jobs waiting in the dispatch queue.",
	})

	JobsProcessedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "roster",
		Name:      "schedule_jobs_processed_total",
		Help:      "Total schedule jobs driven to a terminal state, by outcome.",
	}, []string{"outcome"})

	JobPickupLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "roster",
		Name:      "job_pickup_latency_seconds",
		Help:      "Time from job creation to worker pickup.",
		Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120, 300},
	})

	// Generator metrics

	GenerationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "roster",
		Name:      "schedule_generation_duration_seconds",
		Help:      "Duration of one 28-day schedule generation.",
		Buckets:   []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2.5, 5},
	})

	FallbackAssignmentsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "roster",
		Name:      "fallback_assignments_total",
		Help:      "Assignments placed by the last-resort fallback after every shift was rejected.",
	})

	// Reaper metrics

	ReapedJobsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "roster",
		Name:      "reaped_jobs_total",
		Help:      "Stale PROCESSING jobs marked FAILED by the reaper.",
	})

	// Cache metrics

	CacheRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "roster",
		Name:      "cache_requests_total",
		Help:      "Cache lookups, by result.",
	}, []string{"result"})

	// HTTP metrics

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "roster",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "roster",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests.",
	}, []string{"method", "path", "status"})
)

func Register() {
	prometheus.MustRegister(
		QueueDepth,
		JobsProcessedTotal,
		JobPickupLatency,
		GenerationDuration,
		FallbackAssignmentsTotal,
		ReapedJobsTotal,
		CacheRequestsTotal,
		HTTPRequestDuration,
		HTTPRequestsTotal,
	)
}

func NewServer(addr string, checker *health.Checker) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", checker.LivenessHandler)
	mux.HandleFunc("/readyz", checker.ReadinessHandler)
	return &http.Server{Addr: addr, Handler: mux}
}
