package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	reconerrors "gstrecon/internal/reconciliation/errors"
	"gstrecon/internal/reconciliation/validator"
	"gstrecon/pkg/config"
	apperrors "gstrecon/pkg/errors"
	"gstrecon/pkg/export"
	"gstrecon/pkg/kafka"
	"gstrecon/pkg/metrics"
	"gstrecon/pkg/model"
	"gstrecon/pkg/parser"
	"gstrecon/pkg/reconciler"
	"gstrecon/pkg/sanitizer"
)

const publishTimeout = 5 * time.Second

func (s *reconciliationService) Reconcile(ctx context.Context, req *model.ReconcileRequest, origin Origin) (*model.ReconcileResponse, error) {
	if origin.Source == "" {
		origin.Source = model.SourceHTTP
	}

	if err := s.validator.Validate(req); err != nil {
		s.cfg.Log.Warn("Reconcile request validation failed",
			"upload_id", req.UploadID,
			"source", origin.Source,
			"error", err,
		)
		metrics.RecordReconciliation(origin.Source, metrics.StatusInvalid, 0, nil)
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return nil, apperrors.Validation("Reconcile request validation failed", verrs.Details())
		}
		return nil, apperrors.Validation("Reconcile request validation failed", map[string]any{"error": err.Error()})
	}

	upload, err := s.GetUpload(ctx, req.UploadID)
	if err != nil {
		return nil, err
	}

	gstHeaderRow := sanitizer.NormalizeHeaderRow(req.GSTHeaderRow)
	tallyHeaderRow := sanitizer.NormalizeHeaderRow(req.TallyHeaderRow)
	gst := parser.SkipToHeaderRow(upload.GSTData, gstHeaderRow)
	tally := parser.SkipToHeaderRow(upload.TallyData, tallyHeaderRow)

	mapping := reconciler.NewMapping(
		sanitizer.NormalizeColumnNames(req.GSTColumns),
		sanitizer.NormalizeColumnNames(req.TallyColumns),
	)
	s.warnUnknownColumns(upload, mapping)

	threshold := s.cfg.PartialThreshold
	if req.PartialThreshold != nil {
		threshold = sanitizer.NormalizeThreshold(*req.PartialThreshold, 1, s.cfg.MaxPartialThreshold)
	}
	opts := []reconciler.Option{reconciler.WithPartialThreshold(threshold)}
	if len(req.KeyFeatures) > 0 {
		opts = append(opts, reconciler.WithKeyFeatures(req.KeyFeatures...))
	}

	timeout := s.cfg.ReconcileTimeout(len(gst) + len(tally))
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	result, err := reconciler.ReconcileContext(runCtx, gst, tally, mapping, opts...)
	elapsed := time.Since(start)
	if err != nil {
		return nil, s.reconcileFailed(req, origin, err, elapsed, timeout)
	}

	summary := result.Summary()
	metrics.RecordReconciliation(origin.Source, metrics.StatusSuccess, elapsed, &summary)

	stored := &model.ReconciliationResult{
		UploadID:       upload.ID,
		GSTHeaderRow:   gstHeaderRow,
		TallyHeaderRow: tallyHeaderRow,
		Summary: model.ResultSummary{
			Summary:        summary,
			GSTHeaderRow:   gstHeaderRow,
			TallyHeaderRow: tallyHeaderRow,
		},
		Result: result,
		Source: origin.Source,
	}
	if err := s.results.Create(ctx, stored); err != nil {
		s.cfg.Log.Error("Failed to store reconciliation result",
			"upload_id", upload.ID,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to store reconciliation result", err)
	}

	s.cfg.Log.Info("Reconciliation completed successfully",
		"id", stored.ID,
		"upload_id", upload.ID,
		"source", origin.Source,
		"correlation_id", origin.CorrelationID,
		"features", len(result.Mapping),
		"key_features", result.KeyFeatures,
		"partial_threshold", result.PartialThreshold,
		"exact", summary.ExactMatches,
		"partial", summary.PartialMatches,
		"high_discrepancy", summary.HighDiscrepancyMatches,
		"gst_mismatches", summary.GSTMismatches,
		"tally_mismatches", summary.TallyMismatches,
		"duration_ms", elapsed.Milliseconds(),
	)

	s.publishCompleted(ctx, stored, origin)

	return &model.ReconcileResponse{
		ID:      stored.ID,
		Summary: stored.Summary,
	}, nil
}

func (s *reconciliationService) reconcileFailed(req *model.ReconcileRequest, origin Origin, err error, elapsed, timeout time.Duration) error {
	var cfgErr *reconciler.ConfigurationError
	switch {
	case errors.As(err, &cfgErr):
		s.cfg.Log.Warn("Reconciliation rejected by configuration",
			"upload_id", req.UploadID,
			"source", origin.Source,
			"error", err,
		)
		metrics.RecordReconciliation(origin.Source, metrics.StatusInvalid, elapsed, nil)
		return apperrors.Validation(cfgErr.Error(), map[string]any{
			"gst_columns":   req.GSTColumns,
			"tally_columns": req.TallyColumns,
			"key_features":  req.KeyFeatures,
		})

	case errors.Is(err, context.DeadlineExceeded):
		s.cfg.Log.Error("Reconciliation timed out",
			"upload_id", req.UploadID,
			"source", origin.Source,
			"timeout", timeout,
		)
		metrics.RecordReconciliation(origin.Source, metrics.StatusTimeout, elapsed, nil)
		return apperrors.Timeout(fmt.Sprintf("Reconciliation exceeded %s", timeout))

	default:
		s.cfg.Log.Error("Reconciliation failed",
			"upload_id", req.UploadID,
			"source", origin.Source,
			"error", err,
		)
		metrics.RecordReconciliation(origin.Source, metrics.StatusError, elapsed, nil)
		return apperrors.Internal("Reconciliation failed", err)
	}
}

// warnUnknownColumns logs mapped columns the upload does not have. Such a
// column reads as blank on every row, which is allowed but usually a typo.
func (s *reconciliationService) warnUnknownColumns(upload *model.Upload, mapping reconciler.Mapping) {
	known := map[reconciler.Side]map[string]bool{
		reconciler.SideGST:   toSet(upload.GSTHeaders),
		reconciler.SideTally: toSet(upload.TallyHeaders),
	}
	for side, headers := range known {
		for _, col := range sanitizer.UniqueColumns(mapping.Valid().Columns(side)) {
			if !headers[col] {
				s.cfg.Log.Warn("Mapped column not found in upload headers",
					"upload_id", upload.ID,
					"side", side,
					"column", col,
				)
			}
		}
	}
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}

func (s *reconciliationService) publishCompleted(ctx context.Context, res *model.ReconciliationResult, origin Origin) {
	if s.publisher == nil {
		return
	}

	event := model.CompletedEvent{
		ResultID:      res.ID,
		UploadID:      res.UploadID,
		Source:        origin.Source,
		CorrelationID: origin.CorrelationID,
		Summary:       res.Summary,
		CompletedAt:   res.CreatedAt,
	}
	msg, err := kafka.NewMessage().
		WithKey(res.ID).
		WithValue(event).
		WithEventType(kafka.EventReconciliationCompleted).
		WithCorrelationID(origin.CorrelationID).
		WithSchemaVersion(kafka.SchemaVersionV1).
		WithSource(EventSource).
		Build()
	if err != nil {
		s.cfg.Log.Error("Failed to build completion event", "id", res.ID, "error", err)
		return
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := s.publisher.Publish(pubCtx, msg); err != nil {
		s.cfg.Log.Error("Failed to publish completion event",
			"id", res.ID,
			"event_id", msg.GetEventID(),
			"error", err,
		)
	}
}

func (s *reconciliationService) GetResult(ctx context.Context, id string) (*model.ReconciliationResult, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Reconciliation ID cannot be empty")
	}

	res, err := s.results.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, reconerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Reconciliation result", id)
		}
		if errors.Is(err, reconerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid reconciliation ID format")
		}
		s.cfg.Log.Error("Failed to get reconciliation result by ID",
			"id", id,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to retrieve reconciliation result", err)
	}

	return res, nil
}

func (s *reconciliationService) ListResults(ctx context.Context, uploadID string, limit int, offset int64) ([]*model.ReconciliationResult, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var (
		count   int64
		results []*model.ReconciliationResult
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		count, err = s.results.Count(gctx, uploadID)
		if err != nil {
			s.cfg.Log.Error("Failed to count reconciliation results", "upload_id", uploadID, "error", err)
			return apperrors.Internal("Failed to count reconciliation results", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		results, err = s.results.FindAll(gctx, uploadID, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to list reconciliation results",
				"upload_id", uploadID,
				"limit", limit,
				"offset", offset,
				"error", err,
			)
			return apperrors.Internal("Failed to list reconciliation results", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	return results, count, nil
}

func (s *reconciliationService) Export(ctx context.Context, id string, format export.Format) (*ExportFile, error) {
	res, err := s.GetResult(ctx, id)
	if err != nil {
		return nil, err
	}
	if res.Result == nil {
		return nil, apperrors.Internal("Stored reconciliation has no result body", fmt.Errorf("result %s: empty result", id))
	}

	var buf bytes.Buffer
	doc := export.Document{
		ID:      res.ID,
		Summary: res.Summary.Summary,
		Result:  res.Result,
	}
	if err := export.Write(&buf, format, doc); err != nil {
		if errors.Is(err, export.ErrUnsupportedFormat) {
			return nil, apperrors.InvalidInput(err.Error())
		}
		s.cfg.Log.Error("Failed to render export",
			"id", id,
			"format", format,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to render export", err)
	}

	s.cfg.Log.Info("Reconciliation exported",
		"id", id,
		"format", format,
		"bytes", buf.Len(),
	)

	return &ExportFile{
		Filename:    "reconciliation-" + res.ID + format.Extension(),
		ContentType: format.ContentType(),
		Body:        buf.Bytes(),
	}, nil
}
