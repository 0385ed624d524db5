// Package metrics holds the Prometheus collectors shared by the reconciliation
// service, its worker and the Kafka plumbing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gstrecon/pkg/reconciler"
)

const namespace = "gstrecon"

const (
	StatusSuccess   = "success"
	StatusError     = "error"
	StatusTimeout   = "timeout"
	StatusInvalid   = "invalid"
	StatusDuplicate = "duplicate"
	StatusCreated   = "created"
)

var (
	// Labels: source (http, kafka), status (success, invalid, timeout, error)
	reconciliationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "reconciliation",
		Name:      "runs_total",
		Help:      "Reconciliation runs by source and outcome",
	}, []string{"source", "status"})

	reconciliationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "reconciliation",
		Name:      "duration_seconds",
		Help:      "Time spent in the reconciler per run",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"source"})

	// Labels: bucket (exact, partial, high_discrepancy, gst_mismatch, tally_mismatch)
	reconciliationRecords = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "reconciliation",
		Name:      "classified_records_total",
		Help:      "Records placed into each classification bucket",
	}, []string{"bucket"})

	reconciliationInputRows = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "reconciliation",
		Name:      "input_rows",
		Help:      "Rows handed to the reconciler per side",
		Buckets:   prometheus.ExponentialBuckets(10, 4, 8),
	}, []string{"side"})

	// Labels: status (created, duplicate, invalid, error)
	uploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "upload",
		Name:      "total",
		Help:      "Upload attempts by outcome",
	}, []string{"status"})

	uploadBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "upload",
		Name:      "size_bytes",
		Help:      "Combined size of the two uploaded ledgers",
		Buckets:   prometheus.ExponentialBuckets(1024, 4, 9),
	})

	// Labels: direction (publish, consume), topic, status (success, error)
	kafkaMessagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "kafka",
		Name:      "messages_total",
		Help:      "Kafka messages handled by direction, topic and outcome",
	}, []string{"direction", "topic", "status"})

	kafkaDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "kafka",
		Name:      "duration_seconds",
		Help:      "Kafka publish and handler latency",
		Buckets:   prometheus.DefBuckets,
	}, []string{"direction", "topic"})

	kafkaConsumerLag = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "kafka",
		Name:      "consumer_lag",
		Help:      "Messages behind the partition head as last reported by the reader",
	}, []string{"topic", "group"})

	// Labels: method, code
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by method and status code",
	}, []string{"method", "code"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method"})

	httpPanicsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "panics_total",
		Help:      "Handler panics recovered by the HTTP middleware",
	}, []string{"method"})
)

// RecordReconciliation records one reconciler run. summary may be nil when
// the run failed.
func RecordReconciliation(source, status string, duration time.Duration, summary *reconciler.Summary) {
	reconciliationsTotal.WithLabelValues(source, status).Inc()
	reconciliationDuration.WithLabelValues(source).Observe(duration.Seconds())
	if summary == nil {
		return
	}

	reconciliationInputRows.WithLabelValues(string(reconciler.SideGST)).Observe(float64(summary.TotalGSTRecords))
	reconciliationInputRows.WithLabelValues(string(reconciler.SideTally)).Observe(float64(summary.TotalTallyRecords))

	reconciliationRecords.WithLabelValues("exact").Add(float64(summary.ExactMatches))
	reconciliationRecords.WithLabelValues("partial").Add(float64(summary.PartialMatches))
	reconciliationRecords.WithLabelValues("high_discrepancy").Add(float64(summary.HighDiscrepancyMatches))
	reconciliationRecords.WithLabelValues("gst_mismatch").Add(float64(summary.GSTMismatches))
	reconciliationRecords.WithLabelValues("tally_mismatch").Add(float64(summary.TallyMismatches))
}

func RecordUpload(status string, size int) {
	uploadsTotal.WithLabelValues(status).Inc()
	if size > 0 {
		uploadBytes.Observe(float64(size))
	}
}

func RecordKafkaMessage(direction, topic string, err error, duration time.Duration) {
	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	kafkaMessagesTotal.WithLabelValues(direction, topic, status).Inc()
	kafkaDuration.WithLabelValues(direction, topic).Observe(duration.Seconds())
}

func SetConsumerLag(topic, group string, lag int64) {
	kafkaConsumerLag.WithLabelValues(topic, group).Set(float64(lag))
}

func RecordHTTPRequest(method string, statusCode int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(statusCode)).Inc()
	httpRequestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

func RecordPanic(method string) {
	httpPanicsTotal.WithLabelValues(method).Inc()
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
