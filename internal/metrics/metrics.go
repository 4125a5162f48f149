package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kvr",
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests received",
	}, []string{"listener", "method", "path", "status"})

	httpLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "kvr",
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"listener", "method", "path", "status"})

	httpInFlight = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "kvr",
		Name:      "http_in_flight_requests",
		Help:      "Current number of in-flight HTTP requests",
	}, []string{"listener"})
)

type responseRecorder struct {
	http.ResponseWriter
	status int
}

func (r *responseRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

// Middleware records request metrics, labelled by listener so the public
// and admin servers stay distinguishable on one registry.
func Middleware(listener string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()

			httpInFlight.WithLabelValues(listener).Inc()
			defer httpInFlight.WithLabelValues(listener).Dec()

			next.ServeHTTP(rec, r)

			labels := prometheus.Labels{
				"listener": listener,
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   strconv.Itoa(rec.status),
			}
			httpRequests.With(labels).Inc()
			httpLatency.With(labels).Observe(time.Since(start).Seconds())
		})
	}
}

// Handler exposes the default Prometheus metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
