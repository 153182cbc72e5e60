package middleware

import (
	"net/http"
	"time"

	"pinksync/internal/platform/metrics"
)

// LatencyMiddleware records request latency into the submit duration
// histogram for POST /v1/events, the path the broker is sized around.
func LatencyMiddleware(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			if r.Method == http.MethodPost && r.URL.Path == "/v1/events" {
				m.ObserveSubmitDuration(time.Since(start).Seconds())
			}
		})
	}
}
