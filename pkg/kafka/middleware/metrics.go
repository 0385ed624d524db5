package kafka_middleware

import (
	"context"
	"time"

	"gstrecon/pkg/kafka"
	"gstrecon/pkg/metrics"
)

const (
	directionPublish = "publish"
	directionConsume = "consume"
)

// MetricsProducerMiddleware counts publishes and their latency per topic.
func MetricsProducerMiddleware() kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		start := time.Now()
		err := next(ctx, msg)
		metrics.RecordKafkaMessage(directionPublish, msg.Topic, err, time.Since(start))
		return err
	}
}

// MetricsConsumerMiddleware counts handled messages and handler latency per topic.
func MetricsConsumerMiddleware() kafka.ConsumerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error {
		start := time.Now()
		err := next(ctx, msg)
		metrics.RecordKafkaMessage(directionConsume, msg.Topic, err, time.Since(start))
		return err
	}
}
