package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"gstrecon/internal/reconciliation/consumer"
	"gstrecon/internal/reconciliation/validator"
	"gstrecon/pkg/kafka"
	kafka_config "gstrecon/pkg/kafka/config"
)

const cliEventSource = "gstrecon-cli"

func (a *App) newEnqueueCommand() *cobra.Command {
	var (
		mapping       mappingFlags
		uploadID      string
		correlationID string
	)

	cmd := &cobra.Command{
		Use:   "enqueue",
		Short: "Queue a reconciliation of an existing upload for the worker",
		Long: `enqueue publishes a reconcile request for an upload already stored by the
service to the requests topic. Brokers and topics come from the KAFKA_*
environment variables.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := mapping.request(uploadID)
			if err != nil {
				return err
			}
			if err := validator.NewReconcileValidator(a.log).Validate(req); err != nil {
				return err
			}

			kafkaCfg, err := kafka_config.Load()
			if err != nil {
				return err
			}
			producer, err := kafka.NewProducer(kafkaCfg, kafkaCfg.RequestsTopic, kafkaCfg.DLQTopic, a.log)
			if err != nil {
				return err
			}
			defer func() {
				if err := producer.Close(); err != nil {
					a.log.Warn("Failed to close Kafka producer", "error", err)
				}
			}()

			msg, err := consumer.NewRequestMessage(req, correlationID, cliEventSource)
			if err != nil {
				return err
			}
			if err := producer.Publish(cmd.Context(), msg); err != nil {
				return fmt.Errorf("publish to %s: %w", producer.Topic(), err)
			}

			fmt.Fprintf(a.out, "Queued on %s\n", producer.Topic())
			fmt.Fprintf(a.out, "Event:       %s\n", msg.GetEventID())
			fmt.Fprintf(a.out, "Correlation: %s\n", msg.GetCorrelationID())
			return nil
		},
	}

	cmd.Flags().StringVar(&uploadID, "upload-id", "", "id returned by the upload endpoint")
	cmd.Flags().StringVar(&correlationID, "correlation-id", "", "correlation id to carry through to the completion event (default: random)")
	mapping.register(cmd)
	_ = cmd.MarkFlagRequired("upload-id")
	_ = cmd.MarkFlagRequired("map")
	return cmd
}
