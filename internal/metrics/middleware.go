package metrics

import (
	"net/http"
	"time"
)

// RouteFunc returns the route template that matched r.
type RouteFunc func(r *http.Request) string

// Middleware records request metrics for next. route resolves the label;
// an empty result is recorded as "unknown".
func (m *Metrics) Middleware(route RouteFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)

			routePattern := route(r)
			if routePattern == "" {
				routePattern = "unknown"
			}

			m.ObserveHTTPRequest(r.Method, routePattern, ww.status, time.Since(start))
		})
	}
}

type responseWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.status = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}
