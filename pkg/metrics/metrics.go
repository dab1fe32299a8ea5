package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "treviro_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "treviro_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Event bus metrics
	EventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "treviro_events_published_total",
			Help: "Total number of domain events published",
		},
		[]string{"event_type"},
	)

	EventHandlerFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "treviro_event_handler_failures_total",
			Help: "Total number of event handler errors and panics",
		},
		[]string{"event_type"},
	)

	// Dashboard aggregate metrics
	AggregateUpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "treviro_aggregate_updates_total",
			Help: "Total number of incremental dashboard aggregate updates",
		},
		[]string{"result"}, // applied, failed, skipped
	)

	RecalculationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "treviro_dashboard_recalculations_total",
			Help: "Total number of full dashboard recalculations",
		},
	)

	// Market data ingestion metrics
	IngestionRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "treviro_ingestion_runs_total",
			Help: "Total number of market data ingestion runs",
		},
		[]string{"source", "result"},
	)

	IngestionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "treviro_ingestion_duration_seconds",
			Help:    "Market data ingestion run duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	// Session metrics
	ActiveSessionsGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "treviro_active_sessions",
			Help: "Number of active user service sessions",
		},
	)
)
