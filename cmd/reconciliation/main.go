package main

import (
	"context"

	"gstrecon/internal/reconciliation/handler"
	"gstrecon/internal/reconciliation/repository"
	"gstrecon/internal/reconciliation/service"
	"gstrecon/internal/reconciliation/validator"
	"gstrecon/pkg/app"
	"gstrecon/pkg/config"
	"gstrecon/pkg/kafka"
	kafka_config "gstrecon/pkg/kafka/config"
	kafka_middleware "gstrecon/pkg/kafka/middleware"
)

const ServiceName = "reconciliation"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Reconciliation service")
	serverApp := app.NewApplication()

	health := handler.NewHealthHandler(cfg.Client.Mongo, cfg.Log)

	var publisher service.EventPublisher
	if cfg.KafkaEnabled {
		producer := initProducer(cfg)
		serverApp.OnShutdown(func(ctx context.Context) {
			if err := producer.Close(); err != nil {
				cfg.Log.Error("Failed to close Kafka producer", "error", err)
			}
		})
		health.AddCheck(handler.KafkaCheck, producer.Ping)
		publisher = producer
	}

	reconciliationService := initServices(cfg, publisher)
	serverApp.SetApp(cfg, health, handler.NewReconciliationHandler(reconciliationService, cfg.Log))
	serverApp.OnShutdown(func(ctx context.Context) {
		cfg.GracefulShutdown()
	})
	serverApp.Run()
}

func initProducer(cfg *config.Config) *kafka.Producer {
	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	producer, err := kafka.NewProducer(kafkaCfg, kafkaCfg.ResultsTopic, kafkaCfg.DLQTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	if kafkaCfg.EnableMiddleware {
		producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
		producer.Use(kafka_middleware.MetricsProducerMiddleware())
	}

	cfg.Log.Info("Kafka producer initialized", "topic", producer.Topic())
	return producer
}

func initServices(cfg *config.Config, publisher service.EventPublisher) service.ReconciliationService {
	reconcileValidator := validator.NewReconcileValidator(cfg.Log)
	uploadRepo := repository.NewMongoUploadRepository(cfg)
	resultRepo := repository.NewMongoResultRepository(cfg)
	reconciliationService := service.NewReconciliationService(
		uploadRepo,
		resultRepo,
		reconcileValidator,
		publisher,
		cfg,
	)

	cfg.Log.Info("Reconciliation service initialized",
		"database", cfg.MongoDatabaseName,
		"events", publisher != nil,
	)
	return reconciliationService
}
