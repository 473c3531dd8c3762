package metrics

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// MetricsPath is the Prometheus scrape endpoint. Scrapes are exempt from
// request instrumentation so the scraper's own traffic does not pollute the
// series.
const MetricsPath = "/metrics"

// Middleware records request counts and latencies for the camradar API,
// labeled by the matched chi route pattern rather than the raw path so
// per-camera URLs collapse into one series.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == MetricsPath {
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		ObserveHTTPRequest(r.Method, route, sw.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (sw *statusWriter) WriteHeader(code int) {
	sw.status = code
	sw.ResponseWriter.WriteHeader(code)
}
