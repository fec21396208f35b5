// Package observability holds process-wide Prometheus collectors.
package observability

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	activityPersistGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "fitness",
		Subsystem: "activities",
		Name:      "last_activity_persisted_timestamp_seconds",
		Help:      "Unix timestamp of the most recent activity persisted to Postgres.",
	})
	activitySyncedGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "fitness",
		Subsystem: "activities",
		Name:      "last_activity_synced_timestamp_seconds",
		Help:      "Unix timestamp of the most recent activity published to the recommendation pipeline.",
	})
	httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "fitness",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by server, method and status.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"server", "method", "status"})
)

func init() {
	prometheus.MustRegister(activityPersistGauge, activitySyncedGauge, httpRequestDuration)
}

// RecordActivityPersisted updates the persistence watermark gauge.
func RecordActivityPersisted(ts time.Time) {
	if ts.IsZero() {
		return
	}
	activityPersistGauge.Set(float64(ts.Unix()))
}

// RecordActivitySynced updates the synced watermark gauge.
func RecordActivitySynced(ts time.Time) {
	if ts.IsZero() {
		return
	}
	activitySyncedGauge.Set(float64(ts.Unix()))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// RequestLogger logs each request and records its latency under the server label.
func RequestLogger(server string, logger *log.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = log.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			elapsed := time.Since(start)
			httpRequestDuration.WithLabelValues(server, r.Method, strconv.Itoa(rec.status)).Observe(elapsed.Seconds())
			logger.Printf("%s %s %d %s", r.Method, r.URL.Path, rec.status, elapsed.Round(time.Microsecond))
		})
	}
}
