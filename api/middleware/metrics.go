package middleware

import (
	"net/http"
	"time"

	"github.com/bhargavsatvara/zyqora-storefront/pkg/metrics"
)

// Metrics records request counts and latency labelled by chi route pattern.
func Metrics(m *metrics.Storefront) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if m == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{ResponseWriter: w}
			start := time.Now()
			next.ServeHTTP(rec, r)
			if rec.status == 0 {
				rec.status = http.StatusOK
			}
			// the pattern is only complete after routing ran
			route := routePattern(r)
			if route == r.URL.Path {
				route = "unmatched"
			}
			m.ObserveHTTP(route, r.Method, rec.status, time.Since(start))
		})
	}
}
