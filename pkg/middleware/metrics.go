// Package middleware provides the HTTP middleware of the search API: request
// ids, Prometheus instrumentation and a response deadline.
package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/metrics"
)

// Metrics counts requests by method, route and status, observes their
// latency and tracks how many are in flight.
func Metrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := normalizePath(r.URL.Path)
			m.HTTPRequestsInFlight.Inc()
			timer := prometheus.NewTimer(m.HTTPRequestDuration.WithLabelValues(r.Method, path))
			cw := &captureWriter{ResponseWriter: w, status: http.StatusOK}
			defer func() {
				timer.ObserveDuration()
				m.HTTPRequestsInFlight.Dec()
				m.HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(cw.status)).Inc()
			}()
			next.ServeHTTP(cw, r)
		})
	}
}

// captureWriter remembers the first status code written through it.
type captureWriter struct {
	http.ResponseWriter
	status  int
	written bool
}

func (cw *captureWriter) WriteHeader(code int) {
	if !cw.written {
		cw.status = code
		cw.written = true
	}
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
	cw.written = true
	return cw.ResponseWriter.Write(b)
}

func (cw *captureWriter) Unwrap() http.ResponseWriter {
	return cw.ResponseWriter
}

// normalizePath replaces numeric segments (document ids) with ":id" to keep
// label cardinality bounded.
func normalizePath(path string) string {
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		if seg == "" {
			continue
		}
		if _, err := strconv.Atoi(seg); err == nil {
			segments[i] = ":id"
		}
	}
	return strings.Join(segments, "/")
}
