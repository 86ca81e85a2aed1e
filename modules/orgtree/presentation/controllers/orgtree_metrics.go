package controllers

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	orgTreeAPIRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "orgtree",
		Subsystem: "api",
		Name:      "requests_total",
		Help:      "Total number of org tree API requests broken down by endpoint and result.",
	}, []string{"endpoint", "result"})

	orgTreeAPILatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "orgtree",
		Subsystem: "api",
		Name:      "latency_seconds",
		Help:      "Latency distribution for org tree API requests.",
		Buckets: []float64{
			0.001, 0.002, 0.005,
			0.01, 0.02, 0.05,
			0.1, 0.2, 0.5,
			1, 2, 5,
		},
	}, []string{"endpoint", "result"})
)

type statusRecordingResponseWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusRecordingResponseWriter) WriteHeader(status int) {
	w.status = status
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusRecordingResponseWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

func resultLabel(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	default:
		return "2xx"
	}
}

func instrumentAPI(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecordingResponseWriter{ResponseWriter: w, status: http.StatusOK}

		next(rec, r)

		result := resultLabel(rec.status)
		orgTreeAPIRequests.WithLabelValues(endpoint, result).Inc()
		orgTreeAPILatency.WithLabelValues(endpoint, result).Observe(time.Since(start).Seconds())
	}
}
