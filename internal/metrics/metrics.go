package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	LabelStatus   = "status"
	LabelMethod   = "method"
	LabelResource = "resource"
)

var (
	HttpResponseDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "nmos_console_http_response_duration_seconds",
			Help: "How long requests are taking to be served.",
		},
		[]string{"code", "route"},
	)
)

var (
	UpstreamRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nmos_console_upstream_requests_total",
			Help: "Requests sent to Query and Connection APIs",
		},
		[]string{LabelMethod, LabelStatus},
	)
	UpstreamDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name: "nmos_console_upstream_request_duration_seconds",
			Help: "Time taken by Query and Connection API requests",
		},
	)
)

var (
	Renders = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nmos_console_renders_total",
			Help: "Number of resource views rendered",
		},
		[]string{LabelResource, "tab"},
	)
	CacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "nmos_console_cache_hits_total",
			Help: "Resource fetches served from the record cache",
		},
	)
	CacheMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "nmos_console_cache_misses_total",
			Help: "Resource fetches that went upstream",
		},
	)
)

var (
	JobsFinished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nmos_console_jobs_finished_total",
			Help: "Staged parameter saves by outcome",
		},
		[]string{LabelStatus},
	)
)

// NewHandler returns the /metrics handler. Collectors live in a private
// registry so that tests can create handlers repeatedly.
func NewHandler() http.Handler {
	registry := prometheus.NewRegistry()

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),

		HttpResponseDuration,

		UpstreamRequests,
		UpstreamDuration,

		Renders,
		CacheHits,
		CacheMisses,

		JobsFinished,
	)

	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
