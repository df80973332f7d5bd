package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	TaskProcessed  *prometheus.CounterVec
	APIErrors      prometheus.Counter
	RequestSeconds *prometheus.HistogramVec
	ActiveWorkers  prometheus.Gauge

	SpreadSeconds prometheus.Histogram
	Clusters      *prometheus.CounterVec
	Consultations *prometheus.CounterVec
	CacheLookups  *prometheus.CounterVec
	HTTPRequests  *prometheus.CounterVec
	HTTPSeconds   *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		TaskProcessed: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "meridian_location_tasks_processed_total",
			Help: "Total number of processed location geocoding tasks.",
		}, []string{"status"}),
		APIErrors: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "meridian_geocoding_provider_api_errors_total",
			Help: "Total number of errors received from the geocoding provider API.",
		}),
		RequestSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "meridian_geocoding_provider_request_duration_seconds",
			Help:    "Duration of requests to the geocoding provider API.",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
		ActiveWorkers: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "meridian_location_active_workers",
			Help: "Current number of active workers resolving locations.",
		}),
		SpreadSeconds: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "meridian_spread_duration_seconds",
			Help:    "Time spent clustering and fanning out globe points.",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}),
		Clusters: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "meridian_spread_clusters_total",
			Help: "Total number of clusters formed, by kind (singleton or ring).",
		}, []string{"kind"}),
		Consultations: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "meridian_consultations_total",
			Help: "Total number of consultation previews, by status.",
		}, []string{"status"}),
		CacheLookups: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "meridian_geocode_cache_lookups_total",
			Help: "Total number of geocode cache lookups, by result (hit or miss).",
		}, []string{"result"}),
		HTTPRequests: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "meridian_http_requests_total",
			Help: "Total number of HTTP requests, by route, method and status code.",
		}, []string{"route", "method", "code"}),
		HTTPSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "meridian_http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}
}
