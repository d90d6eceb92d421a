package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "marathon_http_requests_total",
		Help: "Total HTTP requests by method and status",
	}, []string{"method", "status"})
	RequestDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "marathon_http_request_duration_ms",
		Help:    "Request duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000, 5000},
	})
	GeoNormalizedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "marathon_geo_normalized_total",
		Help: "Geographic names rewritten by normalization, by level",
	}, []string{"level"})
	GeoCacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "marathon_geo_cache_hits_total",
		Help: "Geo reference cache hits",
	})
	GeoCacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "marathon_geo_cache_misses_total",
		Help: "Geo reference cache misses",
	})
	UploadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "marathon_uploads_total",
		Help: "Stored files by kind",
	}, []string{"kind"})
	UploadBytes = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "marathon_upload_bytes",
		Help:    "Stored file size in bytes",
		Buckets: prometheus.ExponentialBuckets(16*1024, 4, 8),
	})
	LoginsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "marathon_admin_logins_total",
		Help: "Admin login attempts by result",
	}, []string{"result"})
	VisitsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "marathon_visits_total",
		Help: "Recorded visits by resolution result",
	}, []string{"resolved"})
	RateLimitedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "marathon_rate_limited_total",
		Help: "Requests rejected by the rate limiter",
	})
)

func init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(RequestDurationMs)
	prometheus.MustRegister(GeoNormalizedTotal)
	prometheus.MustRegister(GeoCacheHitsTotal)
	prometheus.MustRegister(GeoCacheMissesTotal)
	prometheus.MustRegister(UploadsTotal)
	prometheus.MustRegister(UploadBytes)
	prometheus.MustRegister(LoginsTotal)
	prometheus.MustRegister(VisitsTotal)
	prometheus.MustRegister(RateLimitedTotal)
}

// 文档注释：返回 Prometheus 指标处理器，由主入口挂载到 /metrics
func Handler() http.Handler { return promhttp.Handler() }
