package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "iot_http_requests_total",
		Help: "Total number of HTTP requests by route and status code",
	}, []string{"route", "code"})
	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "iot_http_request_duration_seconds",
		Help:    "Duration of HTTP request handling in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	MeasurementsIngestedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "iot_measurements_ingested_total",
		Help: "Measurement records stored",
	})
	MeasurementsRejectedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "iot_measurements_rejected_total",
		Help: "Measurement payloads rejected by validation",
	})
	PersistenceFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "iot_persistence_failures_total",
		Help: "Measurement inserts that failed in the store",
	})

	CommandsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "iot_hardware_commands_total",
		Help: "Hardware commands by method and outcome",
	}, []string{"method", "outcome"})

	registerOnce sync.Once
)

// Init registers all collectors with the default registry. Safe to call repeatedly.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			HTTPRequestsTotal,
			HTTPRequestDuration,
			MeasurementsIngestedTotal,
			MeasurementsRejectedTotal,
			PersistenceFailuresTotal,
			CommandsTotal,
		)
	})
}

// Handler exposes the registered metrics.
func Handler() http.Handler {
	Init()
	return promhttp.Handler()
}

// Middleware instruments handlers with request counts and latency. routeOf maps
// a request to a low-cardinality label; nil falls back to the URL path.
func Middleware(routeOf func(*http.Request) string) func(http.Handler) http.Handler {
	Init()
	if routeOf == nil {
		routeOf = func(r *http.Request) string { return r.URL.Path }
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			recorder := &StatusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()

			next.ServeHTTP(recorder, r)

			route := routeOf(r)
			HTTPRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
			HTTPRequestsTotal.WithLabelValues(route, strconv.Itoa(recorder.Status())).Inc()
		})
	}
}

// StatusRecorder captures the response status code.
type StatusRecorder struct {
	http.ResponseWriter
	status int
}

func NewStatusRecorder(w http.ResponseWriter) *StatusRecorder {
	return &StatusRecorder{ResponseWriter: w, status: http.StatusOK}
}

func (r *StatusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *StatusRecorder) Status() int {
	return r.status
}
