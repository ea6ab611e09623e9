package observability

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Histogram bucket definitions.
var (
	httpDurationBuckets  = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}
	storeDurationBuckets = []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1}
	bodySizeBuckets      = []float64{100, 1024, 10240, 102400, 1048576}
)

// Metrics holds all Prometheus metric instruments for the runtime.
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal     *prometheus.CounterVec
	HTTPRequestDuration   *prometheus.HistogramVec
	HTTPRequestSizeBytes  *prometheus.HistogramVec
	HTTPResponseSizeBytes *prometheus.HistogramVec

	// Store metrics
	StoreOperationsTotal    *prometheus.CounterVec
	StoreOperationDuration  *prometheus.HistogramVec
	StoreValidationFailures *prometheus.CounterVec

	// Transform metrics
	TransformDuration *prometheus.HistogramVec

	// Reference cache metrics
	ReferenceCacheHitsTotal   *prometheus.CounterVec
	ReferenceCacheMissesTotal *prometheus.CounterVec

	// Wizard metrics
	WizardStartsTotal      *prometheus.CounterVec
	WizardAdvancesTotal    *prometheus.CounterVec
	WizardCompletionsTotal *prometheus.CounterVec
	WizardActiveInstances  prometheus.Gauge

	// Auth metrics
	AuthLoginsTotal *prometheus.CounterVec

	// System metrics
	ConfigReloadTotal *prometheus.CounterVec
	ResourcesLoaded   prometheus.Gauge
	PagesLoaded       prometheus.Gauge
	SearchDuration    prometheus.Histogram
	SearchSources     prometheus.Histogram
}

// InitMetrics creates and registers all Prometheus metric instruments.
func InitMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		// HTTP
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "oneshot_http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "path_pattern", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "oneshot_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: httpDurationBuckets,
		}, []string{"method", "path_pattern"}),
		HTTPRequestSizeBytes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "oneshot_http_request_size_bytes",
			Help:    "HTTP request body size in bytes.",
			Buckets: bodySizeBuckets,
		}, []string{"method", "path_pattern"}),
		HTTPResponseSizeBytes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "oneshot_http_response_size_bytes",
			Help:    "HTTP response body size in bytes.",
			Buckets: bodySizeBuckets,
		}, []string{"method", "path_pattern"}),

		// Store
		StoreOperationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "oneshot_store_operations_total",
			Help: "Total number of record store operations.",
		}, []string{"resource", "operation", "status"}),
		StoreOperationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "oneshot_store_operation_duration_seconds",
			Help:    "Record store operation duration in seconds.",
			Buckets: storeDurationBuckets,
		}, []string{"resource", "operation"}),
		StoreValidationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "oneshot_store_validation_failures_total",
			Help: "Total number of record schema validation failures.",
		}, []string{"resource"}),

		// Transform
		TransformDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "oneshot_transform_duration_seconds",
			Help:    "Chart/metric transform duration in seconds.",
			Buckets: storeDurationBuckets,
		}, []string{"resource", "kind"}),

		// Reference cache
		ReferenceCacheHitsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "oneshot_reference_cache_hits_total",
			Help: "Total reference index cache hits.",
		}, []string{"resource"}),
		ReferenceCacheMissesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "oneshot_reference_cache_misses_total",
			Help: "Total reference index cache misses.",
		}, []string{"resource"}),

		// Wizards
		WizardStartsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "oneshot_wizard_starts_total",
			Help: "Total number of wizard sessions started.",
		}, []string{"page_id"}),
		WizardAdvancesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "oneshot_wizard_advances_total",
			Help: "Total number of wizard step transitions.",
		}, []string{"page_id", "direction"}),
		WizardCompletionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "oneshot_wizard_completions_total",
			Help: "Total number of wizard sessions finished.",
		}, []string{"page_id", "final_status"}),
		WizardActiveInstances: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "oneshot_wizard_active_instances",
			Help: "Number of active wizard sessions.",
		}),

		// Auth
		AuthLoginsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "oneshot_auth_logins_total",
			Help: "Total number of login attempts.",
		}, []string{"status"}),

		// System
		ConfigReloadTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "oneshot_config_reload_total",
			Help: "Total app config reloads.",
		}, []string{"status"}),
		ResourcesLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "oneshot_resources_loaded",
			Help: "Number of resources in the loaded app config.",
		}),
		PagesLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "oneshot_pages_loaded",
			Help: "Number of pages in the loaded app config.",
		}),
		SearchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "oneshot_search_duration_seconds",
			Help:    "Search execution duration in seconds.",
			Buckets: storeDurationBuckets,
		}),
		SearchSources: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "oneshot_search_sources_responded",
			Help:    "Number of resources scanned per search.",
			Buckets: []float64{1, 2, 3, 5, 10, 20},
		}),
	}

	reg.MustRegister(
		// HTTP
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestSizeBytes,
		m.HTTPResponseSizeBytes,
		// Store
		m.StoreOperationsTotal,
		m.StoreOperationDuration,
		m.StoreValidationFailures,
		// Transform
		m.TransformDuration,
		// Reference cache
		m.ReferenceCacheHitsTotal,
		m.ReferenceCacheMissesTotal,
		// Wizards
		m.WizardStartsTotal,
		m.WizardAdvancesTotal,
		m.WizardCompletionsTotal,
		m.WizardActiveInstances,
		// Auth
		m.AuthLoginsTotal,
		// System
		m.ConfigReloadTotal,
		m.ResourcesLoaded,
		m.PagesLoaded,
		m.SearchDuration,
		m.SearchSources,
	)

	return m
}

// --- Recording helpers ---

// RecordHTTPRequest records HTTP request metrics.
func (m *Metrics) RecordHTTPRequest(method, pathPattern string, status int, duration time.Duration, reqSize, respSize int) {
	statusStr := strconv.Itoa(status)
	m.HTTPRequestsTotal.WithLabelValues(method, pathPattern, statusStr).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, pathPattern).Observe(duration.Seconds())
	m.HTTPRequestSizeBytes.WithLabelValues(method, pathPattern).Observe(float64(reqSize))
	m.HTTPResponseSizeBytes.WithLabelValues(method, pathPattern).Observe(float64(respSize))
}

// RecordStoreOperation records a record store operation.
func (m *Metrics) RecordStoreOperation(resource, operation, status string, duration time.Duration) {
	m.StoreOperationsTotal.WithLabelValues(resource, operation, status).Inc()
	m.StoreOperationDuration.WithLabelValues(resource, operation).Observe(duration.Seconds())
}

// RecordStoreValidationFailure records a record schema validation failure.
func (m *Metrics) RecordStoreValidationFailure(resource string) {
	m.StoreValidationFailures.WithLabelValues(resource).Inc()
}

// RecordTransform records a chart or metric transform.
func (m *Metrics) RecordTransform(resource, kind string, duration time.Duration) {
	m.TransformDuration.WithLabelValues(resource, kind).Observe(duration.Seconds())
}

// RecordReferenceCacheHit records a reference index cache hit.
func (m *Metrics) RecordReferenceCacheHit(resource string) {
	m.ReferenceCacheHitsTotal.WithLabelValues(resource).Inc()
}

// RecordReferenceCacheMiss records a reference index cache miss.
func (m *Metrics) RecordReferenceCacheMiss(resource string) {
	m.ReferenceCacheMissesTotal.WithLabelValues(resource).Inc()
}

// RecordWizardStart records a wizard session start.
func (m *Metrics) RecordWizardStart(pageID string) {
	m.WizardStartsTotal.WithLabelValues(pageID).Inc()
	m.WizardActiveInstances.Inc()
}

// RecordWizardAdvance records a wizard step transition.
func (m *Metrics) RecordWizardAdvance(pageID, direction string) {
	m.WizardAdvancesTotal.WithLabelValues(pageID, direction).Inc()
}

// RecordWizardCompletion records a wizard session finishing.
func (m *Metrics) RecordWizardCompletion(pageID, finalStatus string) {
	m.WizardCompletionsTotal.WithLabelValues(pageID, finalStatus).Inc()
	m.WizardActiveInstances.Dec()
}

// RecordAuthLogin records a login attempt outcome.
func (m *Metrics) RecordAuthLogin(status string) {
	m.AuthLoginsTotal.WithLabelValues(status).Inc()
}

// RecordConfigReload records an app config reload.
func (m *Metrics) RecordConfigReload(status string) {
	m.ConfigReloadTotal.WithLabelValues(status).Inc()
}

// SetConfigSize sets the loaded resource and page gauges.
func (m *Metrics) SetConfigSize(resources, pages float64) {
	m.ResourcesLoaded.Set(resources)
	m.PagesLoaded.Set(pages)
}

// RecordSearch records a search execution.
func (m *Metrics) RecordSearch(duration time.Duration, sourcesScanned int) {
	m.SearchDuration.Observe(duration.Seconds())
	m.SearchSources.Observe(float64(sourcesScanned))
}

// --- HTTP Middleware ---

// MetricsMiddleware returns HTTP middleware that records request metrics using
// chi's route pattern (not the actual URL path) to avoid label cardinality
// explosion.
func (m *Metrics) MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &metricsResponseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		duration := time.Since(start)
		pathPattern := routePattern(r)
		reqSize := 0
		if r.ContentLength > 0 {
			reqSize = int(r.ContentLength)
		}

		m.RecordHTTPRequest(r.Method, pathPattern, sw.status, duration, reqSize, sw.bytes)
	})
}

// Handler returns the Prometheus HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// routePattern extracts chi's route pattern from the request context.
// Falls back to the raw URL path if no pattern is found.
func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return r.URL.Path
	}
	pattern := strings.Join(rctx.RoutePatterns, "")
	// chi route patterns have trailing /*, remove it.
	pattern = strings.TrimSuffix(pattern, "/*")
	if pattern == "" {
		return r.URL.Path
	}
	return pattern
}

// metricsResponseWriter wraps http.ResponseWriter to capture status and bytes.
type metricsResponseWriter struct {
	http.ResponseWriter
	status  int
	bytes   int
	written bool
}

func (w *metricsResponseWriter) WriteHeader(code int) {
	if !w.written {
		w.status = code
		w.written = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *metricsResponseWriter) Write(b []byte) (int, error) {
	if !w.written {
		w.written = true
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}
