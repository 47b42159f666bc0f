package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"sales-analytics/internal/observability"
)

// Metrics records request counts and latency labelled by the matched chi
// route pattern. It must run inside the router so the pattern is known.
func Metrics() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			observability.HTTPRequestsInFlight.Inc()
			defer observability.HTTPRequestsInFlight.Dec()

			start := time.Now()
			wrapped := wrap(w)

			next.ServeHTTP(wrapped, r)

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					route = pattern
				}
			}

			observability.RecordRequest(r.Method, route, wrapped.statusCode, time.Since(start))
		})
	}
}
