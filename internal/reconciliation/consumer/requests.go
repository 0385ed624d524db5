package consumer

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"gstrecon/internal/reconciliation/service"
	apperrors "gstrecon/pkg/errors"
	"gstrecon/pkg/kafka"
	"gstrecon/pkg/logger"
	"gstrecon/pkg/model"
)

const EventSource = "reconciliation-worker"

// RequestHandler runs reconcile requests delivered on the requests topic
// through the same service path as the HTTP API.
type RequestHandler struct {
	service service.ReconciliationService
	log     *logger.Logger
}

func NewRequestHandler(service service.ReconciliationService, log *logger.Logger) *RequestHandler {
	return &RequestHandler{
		service: service,
		log:     log,
	}
}

// Handle is a kafka.MessageHandler. Requests that can never succeed come back
// as permanent errors so the consumer dead-letters them without retrying.
func (h *RequestHandler) Handle(ctx context.Context, msg kafka.Message) error {
	if eventType := msg.GetEventType(); eventType != "" && eventType != kafka.EventReconciliationRequested {
		return kafka.NewPermanentError("invalid message", fmt.Errorf("unexpected event type %q", eventType)).
			WithDetail("event_id", msg.GetEventID())
	}

	var req model.ReconcileRequest
	if err := msg.DecodeValue(&req); err != nil {
		return kafka.NewPermanentError("deserialization failed", err).
			WithDetail("event_id", msg.GetEventID())
	}

	origin := service.Origin{
		Source:        model.SourceKafka,
		CorrelationID: correlationID(msg),
	}

	resp, err := h.service.Reconcile(ctx, &req, origin)
	if err != nil {
		h.log.Warn("Queued reconciliation failed",
			"event_id", msg.GetEventID(),
			"correlation_id", origin.CorrelationID,
			"upload_id", req.UploadID,
			"retry_count", msg.GetRetryCount(),
			"error", err,
		)
		return classify(err)
	}

	h.log.Info("Queued reconciliation completed",
		"event_id", msg.GetEventID(),
		"correlation_id", origin.CorrelationID,
		"id", resp.ID,
		"upload_id", req.UploadID,
	)
	return nil
}

// NewRequestMessage builds the message Handle expects. The key is the upload id
// so requests against one upload stay ordered on a partition.
func NewRequestMessage(req *model.ReconcileRequest, correlationID, source string) (kafka.Message, error) {
	if correlationID == "" {
		correlationID = uuid.NewString()
	}
	return kafka.NewMessage().
		WithKey(req.UploadID).
		WithValue(req).
		WithEventType(kafka.EventReconciliationRequested).
		WithCorrelationID(correlationID).
		WithSchemaVersion(kafka.SchemaVersionV1).
		WithSource(source).
		Build()
}

func correlationID(msg kafka.Message) string {
	if id := msg.GetCorrelationID(); id != "" {
		return id
	}
	return msg.GetEventID()
}

// classify maps service errors onto the consumer's retry model: client-side
// failures and timeouts are permanent, server-side ones transient.
func classify(err error) error {
	appErr := apperrors.AsAppError(err)
	switch {
	case appErr.StatusCode() < http.StatusInternalServerError:
		return kafka.NewPermanentError("invalid message", err).WithDetail("code", appErr.Code)
	case appErr.StatusCode() == http.StatusGatewayTimeout:
		return kafka.NewPermanentError("reconciliation timed out", err).WithDetail("code", appErr.Code)
	default:
		return kafka.NewTransientError("reconciliation failed", err).WithDetail("code", appErr.Code)
	}
}
