package consumer

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	processedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fitness",
		Subsystem: "consumer",
		Name:      "messages_processed_total",
		Help:      "Kafka messages handled and committed.",
	}, []string{"topic", "event_type"})

	handlerErrorCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fitness",
		Subsystem: "consumer",
		Name:      "handler_errors_total",
		Help:      "Handler failures grouped by topic and event type.",
	}, []string{"topic", "event_type"})

	droppedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fitness",
		Subsystem: "consumer",
		Name:      "messages_dropped_total",
		Help:      "Records committed without a successful handler run after exhausting retries.",
	}, []string{"topic", "event_type"})

	decodeErrorCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fitness",
		Subsystem: "consumer",
		Name:      "decode_errors_total",
		Help:      "Records that could not be decoded, per topic.",
	}, []string{"topic"})

	lastMessageGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "fitness",
		Subsystem: "consumer",
		Name:      "last_message_timestamp_seconds",
		Help:      "Unix timestamp of the most recent processed message per topic.",
	}, []string{"topic"})

	recommendationCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fitness",
		Subsystem: "recommendations",
		Name:      "outcomes_total",
		Help:      "Recommendation attempts by outcome (saved, invalid, failed).",
	}, []string{"outcome"})
)

func init() {
	prometheus.MustRegister(processedCounter, handlerErrorCounter, droppedCounter, decodeErrorCounter, lastMessageGauge, recommendationCounter)
}

func recordProcessed(msg Message) {
	processedCounter.WithLabelValues(msg.Topic, msg.EventType).Inc()
	RecordLag(msg.Topic, msg.Timestamp)
}

func recordHandlerError(msg Message) {
	handlerErrorCounter.WithLabelValues(msg.Topic, msg.EventType).Inc()
}

func recordDropped(msg Message) {
	droppedCounter.WithLabelValues(msg.Topic, msg.EventType).Inc()
}

func recordDecodeError(topic string) {
	decodeErrorCounter.WithLabelValues(topic).Inc()
}

func recordRecommendation(outcome string) {
	recommendationCounter.WithLabelValues(outcome).Inc()
}

// RecordLag sets the last-message gauge for topic; zero timestamps are ignored.
func RecordLag(topic string, ts time.Time) {
	if ts.IsZero() {
		return
	}
	lastMessageGauge.WithLabelValues(topic).Set(float64(ts.Unix()))
}
