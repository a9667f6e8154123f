package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Registry holds every sheetsync collector; served at /api/metrics.
	Registry = prometheus.NewRegistry()

	factory = promauto.With(Registry)

	// Custom histogram buckets for request and upstream call latency, milliseconds to 30+ seconds
	CustomAPIBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5, 8, 13, 21, 34, 55}

	// HTTP Metrics
	HTTPRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_server_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"http_request_method", "http_route", "http_response_status_code"},
	)

	HTTPRequestTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_server_request_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"http_request_method", "http_route", "http_response_status_code"},
	)

	ActiveRequests = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_server_active_requests",
			Help: "Number of active HTTP requests",
		},
		[]string{"http_request_method"},
	)

	RateLimited = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_server_rate_limited_total",
			Help: "Requests rejected by the per-client rate limiter",
		},
		[]string{"http_route"},
	)

	// Spreadsheet source metrics
	SourceReadDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sheetsync_source_read_duration_seconds",
			Help:    "Spreadsheet source read duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"source", "status"},
	)

	SourceReadTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sheetsync_source_read_total",
			Help: "Total number of spreadsheet source reads",
		},
		[]string{"source", "status"},
	)

	UpstreamCircuitOpen = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sheetsync_upstream_circuit_open",
			Help: "1 while calls to the upstream are short-circuited, 0 otherwise",
		},
		[]string{"upstream"},
	)

	// Extraction metrics
	SheetsExtracted = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sheetsync_sheets_total",
			Help: "Sheets seen during extraction, by outcome",
		},
		[]string{"outcome"}, // "published", "not_allowed", "too_short"
	)

	RecordsPublished = factory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sheetsync_document_records",
			Help:    "Number of records in each published sync document",
			Buckets: []float64{0, 1, 10, 50, 100, 500, 1000, 5000, 10000},
		},
	)

	// Notification metrics
	NotificationsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sheetsync_notifications_total",
			Help: "Total number of change notifications attempted",
		},
		[]string{"status"}, // "delivered", "rejected", "transport_error", "skipped"
	)

	NotificationDuration = factory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sheetsync_notification_duration_seconds",
			Help:    "Change notification round-trip duration in seconds",
			Buckets: CustomAPIBuckets,
		},
	)

	EditsReceived = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sheetsync_edits_total",
			Help: "Total number of edit events delivered to the trigger",
		},
		[]string{"adapter"}, // "http", "watcher", "cli"
	)

	// Destination database metrics
	DBOperationDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_client_operation_duration_seconds",
			Help:    "Database client operation duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"operation", "status"},
	)

	DBOperationTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_client_operation_total",
			Help: "Total number of database client operations",
		},
		[]string{"operation", "status"},
	)

	// Object storage metrics
	StorageRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storage_client_operation_duration_seconds",
			Help:    "Storage client operation duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"operation", "status"},
	)

	StorageRequestTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storage_client_operation_total",
			Help: "Total number of storage client operations",
		},
		[]string{"operation", "status"},
	)

	// Infrastructure Metrics
	GoRoutines = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "process_runtime_go_goroutines",
			Help: "Number of goroutines",
		},
	)

	HeapAlloc = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "process_runtime_go_mem_heap_alloc_bytes",
			Help: "Heap allocated bytes",
		},
	)
)

func init() {
	Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
}

// RecordInfrastructureMetrics collects infrastructure metrics periodically until stop is closed
func RecordInfrastructureMetrics(stop <-chan struct{}) {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				var m runtime.MemStats
				runtime.ReadMemStats(&m)

				GoRoutines.Set(float64(runtime.NumGoroutine()))
				HeapAlloc.Set(float64(m.HeapAlloc))
			}
		}
	}()
}

// MeasureDuration measures the duration of an operation
func MeasureDuration(start time.Time) float64 {
	return time.Since(start).Seconds()
}
