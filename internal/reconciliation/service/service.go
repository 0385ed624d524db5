package service

import (
	"context"

	"gstrecon/internal/reconciliation/repository"
	"gstrecon/internal/reconciliation/validator"
	"gstrecon/pkg/config"
	"gstrecon/pkg/export"
	"gstrecon/pkg/kafka"
	"gstrecon/pkg/model"
)

const EventSource = "reconciliation-service"

// UploadFile is one uploaded ledger as received from the client.
type UploadFile struct {
	Name    string
	Content []byte
}

// Origin identifies who asked for a reconciliation.
type Origin struct {
	Source        string
	CorrelationID string
}

// ExportFile is a rendered reconciliation result ready for download.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// EventPublisher is satisfied by *kafka.Producer.
type EventPublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type ReconciliationService interface {
	Upload(ctx context.Context, gst, tally UploadFile) (*model.UploadResponse, error)
	GetUpload(ctx context.Context, id string) (*model.Upload, error)
	Reconcile(ctx context.Context, req *model.ReconcileRequest, origin Origin) (*model.ReconcileResponse, error)
	GetResult(ctx context.Context, id string) (*model.ReconciliationResult, error)
	ListResults(ctx context.Context, uploadID string, limit int, offset int64) ([]*model.ReconciliationResult, int64, error)
	Export(ctx context.Context, id string, format export.Format) (*ExportFile, error)
}

type reconciliationService struct {
	uploads   repository.UploadRepository
	results   repository.ResultRepository
	validator *validator.ReconcileValidator
	publisher EventPublisher
	cfg       *config.Config
}

// NewReconciliationService wires the service. publisher may be nil, in which
// case no completion events are sent.
func NewReconciliationService(
	uploads repository.UploadRepository,
	results repository.ResultRepository,
	validator *validator.ReconcileValidator,
	publisher EventPublisher,
	cfg *config.Config,
) ReconciliationService {
	return &reconciliationService{
		uploads:   uploads,
		results:   results,
		validator: validator,
		publisher: publisher,
		cfg:       cfg,
	}
}
