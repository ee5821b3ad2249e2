package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"IotMonitor.api/internal/logging"
	"IotMonitor.api/internal/metrics"
	"IotMonitor.api/internal/utils"
)

const RequestIDHeader = "X-Request-ID"

// RequestLogger tags each request with an id, puts a request scoped logger in
// its context and logs the outcome.
func RequestLogger(logger *logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, requestID)

			reqLogger := logger.With("request_id", requestID)
			recorder := metrics.NewStatusRecorder(w)
			start := time.Now()

			next.ServeHTTP(recorder, r.WithContext(reqLogger.WithContext(r.Context())))

			reqLogger.Info("request handled",
				"method", r.Method,
				"path", r.URL.Path,
				"status", recorder.Status(),
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}

// Recover turns a handler panic into an empty 500 response.
func Recover(logger *logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logging.FromContext(r.Context(), logger).Error("panic while handling request", "panic", rec, "path", r.URL.Path)
					utils.RespondWithEmpty(w, http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
