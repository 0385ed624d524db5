package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"gstrecon/pkg/model"
)

const (
	uploadsPath         = "/api/v1/uploads"
	reconciliationsPath = "/api/v1/reconciliations"
)

// APIError is a non-2xx response from the reconciliation service.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Details    map[string]any
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("reconciliation api: %d %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("reconciliation api: %d %s", e.StatusCode, e.Message)
}

type ReconciliationClient struct {
	httpClient *HttpClient
}

func NewReconciliationClient(baseURL string) *ReconciliationClient {
	return &ReconciliationClient{
		httpClient: NewHttpClient(baseURL),
	}
}

// Upload sends both ledgers in one multipart request.
func (c *ReconciliationClient) Upload(ctx context.Context, gstName string, gst io.Reader, tallyName string, tally io.Reader) (*model.UploadResponse, error) {
	resp, err := c.httpClient.PostMultipart(ctx, uploadsPath, []FilePart{
		{Field: "gst_file", Filename: gstName, Content: gst},
		{Field: "tally_file", Filename: tallyName, Content: tally},
	})
	if err != nil {
		return nil, err
	}

	var out model.UploadResponse
	if err := decodeData(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *ReconciliationClient) GetUpload(ctx context.Context, id string) (*model.Upload, error) {
	resp, err := c.httpClient.Get(ctx, uploadsPath+"/"+url.PathEscape(id))
	if err != nil {
		return nil, err
	}

	var out model.Upload
	if err := decodeData(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Reconcile runs a reconciliation. A non-empty idempotencyKey makes retries of
// the same request return the first response.
func (c *ReconciliationClient) Reconcile(ctx context.Context, req *model.ReconcileRequest, idempotencyKey string) (*model.ReconcileResponse, error) {
	var headers map[string]string
	if idempotencyKey != "" {
		headers = map[string]string{"Idempotency-Key": idempotencyKey}
	}
	resp, err := c.httpClient.PostJSON(ctx, reconciliationsPath, req, headers)
	if err != nil {
		return nil, err
	}

	var out model.ReconcileResponse
	if err := decodeData(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *ReconciliationClient) Get(ctx context.Context, id string) (*model.ReconciliationResult, error) {
	resp, err := c.httpClient.Get(ctx, reconciliationsPath+"/"+url.PathEscape(id))
	if err != nil {
		return nil, err
	}

	var out model.ReconciliationResult
	if err := decodeData(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type ReconciliationPage struct {
	Data       []*model.ReconciliationResult `json:"data"`
	TotalCount int64                         `json:"total_count"`
	Limit      int                           `json:"limit"`
	Offset     int64                         `json:"offset"`
}

func (c *ReconciliationClient) List(ctx context.Context, uploadID string, limit int, offset int64) (*ReconciliationPage, error) {
	q := url.Values{}
	if uploadID != "" {
		q.Set("upload_id", uploadID)
	}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.FormatInt(offset, 10))

	resp, err := c.httpClient.Get(ctx, reconciliationsPath+"?"+q.Encode())
	if err != nil {
		return nil, err
	}
	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var page ReconciliationPage
	if err := resp.DecodeJSON(&page); err != nil {
		return nil, fmt.Errorf("failed to decode reconciliation list: %w", err)
	}
	return &page, nil
}

// Export downloads a rendered result; format is json, csv or xlsx.
func (c *ReconciliationClient) Export(ctx context.Context, id, format string) ([]byte, error) {
	path := reconciliationsPath + "/" + url.PathEscape(id) + "/export?format=" + url.QueryEscape(format)
	resp, err := c.httpClient.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func checkStatus(resp *Response) error {
	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		return nil
	}
	return apiError(resp)
}

// decodeData unwraps the {"data": ...} envelope of a success response.
func decodeData(resp *Response, target any) error {
	if err := checkStatus(resp); err != nil {
		return err
	}
	envelope := struct {
		Data any `json:"data"`
	}{Data: target}
	if err := resp.DecodeJSON(&envelope); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
