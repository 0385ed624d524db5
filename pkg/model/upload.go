package model

import (
	"time"

	"gstrecon/pkg/reconciler"
)

// Upload is a parsed GST/Tally file pair. Records hold normalized cells keyed by
// header name; rows above a reconciliation's header row are dropped only when that
// reconciliation runs.
type Upload struct {
	ID            string              `json:"id,omitempty" bson:"_id,omitempty"`
	GSTFileName   string              `json:"gst_file_name" bson:"gst_file_name"`
	TallyFileName string              `json:"tally_file_name" bson:"tally_file_name"`
	GSTHeaders    []string            `json:"gst_headers" bson:"gst_headers"`
	TallyHeaders  []string            `json:"tally_headers" bson:"tally_headers"`
	GSTData       []reconciler.Record `json:"gst_data,omitempty" bson:"gst_data"`
	TallyData     []reconciler.Record `json:"tally_data,omitempty" bson:"tally_data"`
	Checksum      string              `json:"checksum" bson:"checksum"`
	CreatedAt     time.Time           `json:"created_at" bson:"created_at"`
}

type UploadResponse struct {
	ID            string              `json:"id"`
	GSTHeaders    []string            `json:"gst_headers"`
	TallyHeaders  []string            `json:"tally_headers"`
	GSTPreview    []reconciler.Record `json:"gst_preview"`
	TallyPreview  []reconciler.Record `json:"tally_preview"`
	GSTRowCount   int                 `json:"gst_row_count"`
	TallyRowCount int                 `json:"tally_row_count"`
	Checksum      string              `json:"checksum"`
	Duplicate     bool                `json:"duplicate"`
}

func NewUploadResponse(u *Upload, previewRows int) *UploadResponse {
	return &UploadResponse{
		ID:            u.ID,
		GSTHeaders:    u.GSTHeaders,
		TallyHeaders:  u.TallyHeaders,
		GSTPreview:    head(u.GSTData, previewRows),
		TallyPreview:  head(u.TallyData, previewRows),
		GSTRowCount:   len(u.GSTData),
		TallyRowCount: len(u.TallyData),
		Checksum:      u.Checksum,
	}
}

func head(records []reconciler.Record, n int) []reconciler.Record {
	n = max(0, min(n, len(records)))
	out := make([]reconciler.Record, n)
	copy(out, records[:n])
	return out
}
