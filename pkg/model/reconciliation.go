package model

import (
	"time"

	"gstrecon/pkg/reconciler"
)

const (
	SourceHTTP  = "http"
	SourceKafka = "kafka"
)

type ReconcileRequest struct {
	UploadID         string   `json:"upload_id" validate:"required,mongodb"`
	GSTColumns       []string `json:"gst_columns" validate:"required,min=1,max=64,column_list"`
	TallyColumns     []string `json:"tally_columns" validate:"required,min=1,max=64,column_list"`
	GSTHeaderRow     int      `json:"gst_header_row,omitempty" validate:"omitempty,min=1"`
	TallyHeaderRow   int      `json:"tally_header_row,omitempty" validate:"omitempty,min=1"`
	PartialThreshold *int     `json:"partial_threshold,omitempty" validate:"omitempty,min=1"`
	KeyFeatures      []int    `json:"key_features,omitempty" validate:"omitempty,min=1,unique,dive,min=0"`
}

type ResultSummary struct {
	reconciler.Summary `bson:",inline"`
	GSTHeaderRow       int `json:"gst_header_row" bson:"gst_header_row"`
	TallyHeaderRow     int `json:"tally_header_row" bson:"tally_header_row"`
}

type ReconciliationResult struct {
	ID             string             `json:"id,omitempty" bson:"_id,omitempty"`
	UploadID       string             `json:"upload_id" bson:"upload_id"`
	GSTHeaderRow   int                `json:"gst_header_row" bson:"gst_header_row"`
	TallyHeaderRow int                `json:"tally_header_row" bson:"tally_header_row"`
	Summary        ResultSummary      `json:"summary" bson:"summary"`
	Result         *reconciler.Result `json:"result,omitempty" bson:"result,omitempty"`
	Source         string             `json:"source" bson:"source"`
	CreatedAt      time.Time          `json:"created_at" bson:"created_at"`
}

type ReconcileResponse struct {
	ID      string        `json:"id"`
	Summary ResultSummary `json:"summary"`
}

// CompletedEvent is published after a reconciliation result is stored.
type CompletedEvent struct {
	ResultID      string        `json:"result_id"`
	UploadID      string        `json:"upload_id"`
	Source        string        `json:"source"`
	CorrelationID string        `json:"correlation_id,omitempty"`
	Summary       ResultSummary `json:"summary"`
	CompletedAt   time.Time     `json:"completed_at"`
}
