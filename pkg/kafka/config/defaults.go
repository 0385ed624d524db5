package kafka_config

import "time"

const (
	DefaultKafkaBrokers = "localhost:9092"

	DefaultResultsTopic  = "gstrecon.reconciliation.completed"
	DefaultRequestsTopic = "gstrecon.reconciliation.requested"
	DefaultDLQTopic      = "gstrecon.reconciliation.dlq"
	DefaultConsumerGroup = "gstrecon-reconciliation-worker"

	DefaultProducerMaxAttempts  = 3
	DefaultProducerBatchTimeout = 10 * time.Millisecond
	DefaultProducerRequireAcks  = -1
	DefaultProducerCompression  = "snappy"
	DefaultProducerAsync        = false

	DefaultConsumerStartOffset = OffsetOldest
	DefaultConsumerMinBytes    = 1
	// A request carries only ids and column names; 1MB batches are plenty.
	DefaultConsumerMaxBytes          = 1 << 20
	DefaultConsumerMaxWait           = 500 * time.Millisecond
	DefaultConsumerCommitInterval    = time.Second
	DefaultConsumerHeartbeatInterval = 3 * time.Second
	DefaultConsumerSessionTimeout    = 30 * time.Second
	DefaultConsumerRebalanceTimeout  = 60 * time.Second
	DefaultConsumerMaxRetries        = 3

	DefaultEnableMiddleware = true
)
