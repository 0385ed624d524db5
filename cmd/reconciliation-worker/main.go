package main

import (
	"context"
	"time"

	"gstrecon/internal/reconciliation/consumer"
	"gstrecon/internal/reconciliation/handler"
	"gstrecon/internal/reconciliation/repository"
	"gstrecon/internal/reconciliation/service"
	"gstrecon/internal/reconciliation/validator"
	"gstrecon/pkg/app"
	"gstrecon/pkg/config"
	"gstrecon/pkg/kafka"
	kafka_config "gstrecon/pkg/kafka/config"
	kafka_middleware "gstrecon/pkg/kafka/middleware"
	"gstrecon/pkg/metrics"
)

const (
	ServiceName = "reconciliation-worker"

	lagReportInterval = 15 * time.Second
)

func main() {
	cfg := config.Load(ServiceName)

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log.Info)
	cfg.SetMongo()

	cfg.Log.Info("Starting Reconciliation worker")

	producer, err := kafka.NewProducer(kafkaCfg, kafkaCfg.ResultsTopic, kafkaCfg.DLQTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}

	reconciliationService := service.NewReconciliationService(
		repository.NewMongoUploadRepository(cfg),
		repository.NewMongoResultRepository(cfg),
		validator.NewReconcileValidator(cfg.Log),
		producer,
		cfg,
	)

	requests := consumer.NewRequestHandler(reconciliationService, cfg.Log)
	requestConsumer, err := kafka.NewConsumer(
		kafkaCfg,
		kafkaCfg.RequestsTopic,
		kafkaCfg.ConsumerGroup,
		kafkaCfg.DLQTopic,
		requests.Handle,
		cfg.Log,
	)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}

	if kafkaCfg.EnableMiddleware {
		producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
		producer.Use(kafka_middleware.MetricsProducerMiddleware())
		requestConsumer.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))
		requestConsumer.Use(kafka_middleware.MetricsConsumerMiddleware())
	}

	health := handler.NewHealthHandler(cfg.Client.Mongo, cfg.Log)
	health.AddCheck(handler.KafkaCheck, producer.Ping)

	serverApp := app.NewApplication()
	serverApp.SetApp(cfg, health, nil)
	serverApp.AddWorker("requests-consumer", requestConsumer.Start)
	serverApp.AddWorker("consumer-lag", func(ctx context.Context) error {
		reportLag(ctx, requestConsumer, kafkaCfg)
		return nil
	})
	serverApp.OnShutdown(func(ctx context.Context) {
		if err := requestConsumer.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka consumer", "error", err)
		}
		if err := producer.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka producer", "error", err)
		}
		cfg.GracefulShutdown()
	})
	serverApp.Run()
}

func reportLag(ctx context.Context, c *kafka.Consumer, kafkaCfg *kafka_config.Config) {
	ticker := time.NewTicker(lagReportInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.SetConsumerLag(kafkaCfg.RequestsTopic, kafkaCfg.ConsumerGroup, c.Lag())
		}
	}
}
