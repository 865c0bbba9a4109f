package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP 请求延迟（秒）
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	// 数据库查询延迟（秒）
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"operation", "table"},
	)

	SlowQueryCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_slow_query_total",
			Help: "Queries slower than the configured threshold",
		},
		[]string{"sql"},
	)

	ContentCacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_cache_requests_total",
			Help: "Public content cache lookups",
		},
		[]string{"kind", "result"}, // result: hit, miss, error
	)

	ContentInvalidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_invalidations_total",
			Help: "Content cache invalidations",
		},
		[]string{"kind", "origin"}, // origin: local, remote
	)

	UploadCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_upload_total",
			Help: "Image uploads by result",
		},
		[]string{"prefix", "result"},
	)

	AuthEventCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_event_total",
			Help: "Admin authentication events",
		},
		[]string{"kind"},
	)

	AdminSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photostudio_admin_sessions",
			Help: "Admin users currently signed in",
		},
	)
)

// RecordHTTPRequestDuration 记录 HTTP 请求延迟
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveDBQuery is meant to be deferred with the query start time.
func ObserveDBQuery(operation, table string, start time.Time) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
}

func IncrementSlowQuery(sql string, _ time.Duration) {
	SlowQueryCount.WithLabelValues(sql).Inc()
}

func RecordCacheLookup(kind, result string) {
	ContentCacheRequests.WithLabelValues(kind, result).Inc()
}

func RecordInvalidation(kind, origin string) {
	ContentInvalidations.WithLabelValues(kind, origin).Inc()
}

func RecordUpload(prefix, result string) {
	UploadCount.WithLabelValues(prefix, result).Inc()
}

func RecordAuthEvent(kind string) {
	AuthEventCount.WithLabelValues(kind).Inc()
}
