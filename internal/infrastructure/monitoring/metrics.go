// Package monitoring provides Prometheus metrics, OpenTelemetry tracing and
// the operations server.
package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const namespace = "recipewise"

// MetricsCollector implements outbound.PipelineMetrics on a private registry
type MetricsCollector struct {
	registry *prometheus.Registry
	logger   *zap.Logger

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	modelCalls        *prometheus.CounterVec
	modelCallDuration *prometheus.HistogramVec
	modelAttempts     prometheus.Histogram
	imageTier         *prometheus.CounterVec
	synthesized       prometheus.Counter
	retrievalResults  *prometheus.CounterVec
	mealPlans         *prometheus.CounterVec
	cacheOperations   *prometheus.CounterVec
}

// NewMetricsCollector creates a collector with Go and process collectors registered
func NewMetricsCollector(logger *zap.Logger) *MetricsCollector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &MetricsCollector{
		registry: reg,
		logger:   logger.Named("metrics"),

		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path", "status_code"},
		),
		modelCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "model_calls_total",
				Help:      "Language model invocations by operation and outcome",
			},
			[]string{"operation", "status"},
		),
		modelCallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "model_call_duration_seconds",
				Help:      "Language model invocation duration including retries",
				Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"operation"},
		),
		modelAttempts: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "model_call_attempts",
				Help:      "Attempts used per language model invocation",
				Buckets:   []float64{1, 2, 3, 4, 5},
			},
		),
		imageTier: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "image_tier_outcomes_total",
				Help:      "Image resolution outcomes per tier",
			},
			[]string{"tier", "outcome"},
		),
		synthesized: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "recipes_synthesized_total",
				Help:      "Recipes generated and stored",
			},
		),
		retrievalResults: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "retrieval_results_total",
				Help:      "Recipes returned by retrieval, by origin",
			},
			[]string{"origin"},
		),
		mealPlans: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "meal_plans_generated_total",
				Help:      "Meal plan generation attempts by outcome",
			},
			[]string{"status"},
		),
		cacheOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_operations_total",
				Help:      "Total number of cache operations",
			},
			[]string{"operation", "status"},
		),
	}
}

// Registry exposes the registry so other components can add collectors
func (m *MetricsCollector) Registry() *prometheus.Registry {
	return m.registry
}

// ModelCall records one gateway invocation
func (m *MetricsCollector) ModelCall(operation, status string, attempts int, duration time.Duration) {
	m.modelCalls.WithLabelValues(operation, status).Inc()
	m.modelCallDuration.WithLabelValues(operation).Observe(duration.Seconds())
	m.modelAttempts.Observe(float64(attempts))
}

// ImageTierOutcome records a resolver tier result
func (m *MetricsCollector) ImageTierOutcome(tier, outcome string) {
	m.imageTier.WithLabelValues(tier, outcome).Inc()
}

// RecipesSynthesized adds stored synthesized recipes
func (m *MetricsCollector) RecipesSynthesized(count int) {
	m.synthesized.Add(float64(count))
}

// RetrievalCompleted records the composition of a search response
func (m *MetricsCollector) RetrievalCompleted(catalogCount, generatedCount int) {
	m.retrievalResults.WithLabelValues("catalog").Add(float64(catalogCount))
	m.retrievalResults.WithLabelValues("generated").Add(float64(generatedCount))
}

// MealPlanGenerated records a plan generation outcome
func (m *MetricsCollector) MealPlanGenerated(status string) {
	m.mealPlans.WithLabelValues(status).Inc()
}

// CacheOperation records a cache access
func (m *MetricsCollector) CacheOperation(operation, status string) {
	m.cacheOperations.WithLabelValues(operation, status).Inc()
}

// HTTPMiddleware creates a Gin middleware for HTTP metrics collection
func (m *MetricsCollector) HTTPMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		m.observe(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}

// Middleware instruments a net/http handler chain. route maps a request to a
// low-cardinality path label.
func (m *MetricsCollector) Middleware(route func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			m.observe(r.Method, route(r), rec.status, time.Since(start))
		})
	}
}

func (m *MetricsCollector) observe(method, path string, status int, duration time.Duration) {
	code := strconv.Itoa(status)
	m.httpRequestsTotal.WithLabelValues(method, path, code).Inc()
	m.httpRequestDuration.WithLabelValues(method, path, code).Observe(duration.Seconds())
}

// Handler returns the Prometheus scrape handler
func (m *MetricsCollector) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
