package kafka

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeOK     = "ok"
	outcomeFailed = "failed"
)

var (
	publishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Subsystem: "kafka_producer",
		Name:      "messages_total",
		Help:      "Publish attempts by topic and outcome.",
	}, []string{"topic", "outcome"})

	publishSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Subsystem: "kafka_producer",
		Name:      "publish_duration_seconds",
		Help:      "Time spent in WriteMessages.",
		Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5},
	}, []string{"topic"})
)

func observePublish(topic string, seconds float64, err error) {
	publishSeconds.WithLabelValues(topic).Observe(seconds)
	outcome := outcomeOK
	if err != nil {
		outcome = outcomeFailed
	}
	publishedTotal.WithLabelValues(topic, outcome).Inc()
}
