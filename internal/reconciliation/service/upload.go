package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"

	reconerrors "gstrecon/internal/reconciliation/errors"
	"gstrecon/pkg/checksum"
	apperrors "gstrecon/pkg/errors"
	"gstrecon/pkg/metrics"
	"gstrecon/pkg/model"
	"gstrecon/pkg/parser"
)

func (s *reconciliationService) Upload(ctx context.Context, gst, tally UploadFile) (*model.UploadResponse, error) {
	size := len(gst.Content) + len(tally.Content)
	if err := checkUploadFile("gst_file", gst); err != nil {
		metrics.RecordUpload(metrics.StatusInvalid, size)
		return nil, err
	}
	if err := checkUploadFile("tally_file", tally); err != nil {
		metrics.RecordUpload(metrics.StatusInvalid, size)
		return nil, err
	}

	sum := checksum.Upload(
		checksum.File{Name: gst.Name, Content: gst.Content},
		checksum.File{Name: tally.Name, Content: tally.Content},
	)

	existing, err := s.findByChecksum(ctx, sum)
	if err != nil {
		metrics.RecordUpload(metrics.StatusError, size)
		return nil, err
	}
	if existing != nil {
		return s.duplicateResponse(existing, size), nil
	}

	var gstData, tallyData *parser.Dataset
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ds, err := parseUploadFile(gctx, "gst_file", gst)
		gstData = ds
		return err
	})
	g.Go(func() error {
		ds, err := parseUploadFile(gctx, "tally_file", tally)
		tallyData = ds
		return err
	})
	if err := g.Wait(); err != nil {
		s.cfg.Log.Warn("Upload parsing failed",
			"gst_file", gst.Name,
			"tally_file", tally.Name,
			"error", err,
		)
		metrics.RecordUpload(metrics.StatusInvalid, size)
		return nil, err
	}

	upload := &model.Upload{
		GSTFileName:   gst.Name,
		TallyFileName: tally.Name,
		GSTHeaders:    gstData.Headers,
		TallyHeaders:  tallyData.Headers,
		GSTData:       gstData.Records,
		TallyData:     tallyData.Records,
		Checksum:      sum,
	}

	var duplicate *model.Upload
	err = s.uploads.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		found, err := s.findByChecksum(sessCtx, sum)
		if err != nil {
			return err
		}
		if found != nil {
			duplicate = found
			return nil
		}
		return s.uploads.Create(sessCtx, upload)
	})
	if errors.Is(err, reconerrors.ErrDuplicateChecksum) {
		// a concurrent upload of the same pair won the insert
		duplicate, err = s.findByChecksum(ctx, sum)
		if err == nil && duplicate == nil {
			err = apperrors.Internal("Upload vanished after duplicate insert", reconerrors.ErrUploadNotFound)
		}
	}
	if err != nil {
		s.cfg.Log.Error("Failed to store upload",
			"gst_file", gst.Name,
			"tally_file", tally.Name,
			"checksum", sum,
			"error", err,
		)
		metrics.RecordUpload(metrics.StatusError, size)
		if apperrors.IsAppError(err) {
			return nil, err
		}
		return nil, apperrors.Internal("Failed to store upload", err)
	}
	if duplicate != nil {
		return s.duplicateResponse(duplicate, size), nil
	}

	metrics.RecordUpload(metrics.StatusCreated, size)
	s.cfg.Log.Info("Upload stored successfully",
		"id", upload.ID,
		"gst_file", gst.Name,
		"tally_file", tally.Name,
		"gst_rows", len(upload.GSTData),
		"tally_rows", len(upload.TallyData),
		"checksum", sum,
	)
	return model.NewUploadResponse(upload, s.cfg.PreviewRows), nil
}

func (s *reconciliationService) GetUpload(ctx context.Context, id string) (*model.Upload, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Upload ID cannot be empty")
	}

	u, err := s.uploads.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, reconerrors.ErrUploadNotFound) {
			return nil, apperrors.NotFoundWithID("Upload", id)
		}
		if errors.Is(err, reconerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid upload ID format")
		}
		s.cfg.Log.Error("Failed to get upload by ID",
			"id", id,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to retrieve upload", err)
	}

	return u, nil
}

// findByChecksum returns nil, nil when no upload has the checksum.
func (s *reconciliationService) findByChecksum(ctx context.Context, sum string) (*model.Upload, error) {
	u, err := s.uploads.FindByChecksum(ctx, sum)
	if err != nil {
		if errors.Is(err, reconerrors.ErrUploadNotFound) {
			return nil, nil
		}
		return nil, apperrors.Internal("Failed to check for an identical upload", err)
	}
	return u, nil
}

func (s *reconciliationService) duplicateResponse(u *model.Upload, size int) *model.UploadResponse {
	metrics.RecordUpload(metrics.StatusDuplicate, size)
	s.cfg.Log.Info("Identical upload found, reusing it",
		"id", u.ID,
		"checksum", u.Checksum,
	)
	resp := model.NewUploadResponse(u, s.cfg.PreviewRows)
	resp.Duplicate = true
	return resp
}

func checkUploadFile(field string, f UploadFile) error {
	if f.Name == "" || len(f.Content) == 0 {
		return apperrors.InvalidInput(fmt.Sprintf("%s is required and must not be empty", field))
	}
	if _, err := parser.DetectFormat(f.Name); err != nil {
		return apperrors.InvalidInput(fmt.Sprintf("%s: %v (accepted: .csv, .xlsx, .xlsm)", field, err)).
			WithDetails(map[string]any{"field": field, "filename": f.Name})
	}
	return nil
}

func parseUploadFile(ctx context.Context, field string, f UploadFile) (*parser.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ds, err := parser.ParseFile(f.Name, bytes.NewReader(f.Content))
	if err != nil {
		return nil, apperrors.InvalidInput(fmt.Sprintf("%s could not be parsed", field)).
			WithDetails(map[string]any{"field": field, "filename": f.Name, "error": err.Error()})
	}
	return ds, nil
}
