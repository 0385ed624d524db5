package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	apperrors "gstrecon/pkg/errors"
)

const (
	defaultRequestTimeout = 2 * time.Minute
	readyPollInterval     = 500 * time.Millisecond
	readyPath             = "/ready"
)

// HttpClient issues requests against one service and buffers each response body.
type HttpClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewHttpClient(baseURL string) *HttpClient {
	return &HttpClient{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: defaultRequestTimeout},
	}
}

type Response struct {
	*http.Response
	Body []byte
}

func (r *Response) DecodeJSON(target any) error {
	return json.Unmarshal(r.Body, target)
}

// FilePart is one file field of a multipart request.
type FilePart struct {
	Field    string
	Filename string
	Content  io.Reader
}

func (c *HttpClient) Get(ctx context.Context, path string) (*Response, error) {
	return c.do(ctx, http.MethodGet, path, nil, nil)
}

func (c *HttpClient) PostJSON(ctx context.Context, path string, body any, headers map[string]string) (*Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	merged := map[string]string{"Content-Type": "application/json"}
	for k, v := range headers {
		merged[k] = v
	}
	return c.do(ctx, http.MethodPost, path, bytes.NewReader(data), merged)
}

// PostMultipart buffers the parts into a multipart/form-data body and posts it.
func (c *HttpClient) PostMultipart(ctx context.Context, path string, parts []FilePart) (*Response, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for _, part := range parts {
		fw, err := writer.CreateFormFile(part.Field, part.Filename)
		if err != nil {
			return nil, fmt.Errorf("failed to create form file %s: %w", part.Field, err)
		}
		if _, err := io.Copy(fw, part.Content); err != nil {
			return nil, fmt.Errorf("failed to write form file %s: %w", part.Field, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart body: %w", err)
	}

	return c.do(ctx, http.MethodPost, path, &buf, map[string]string{
		"Content-Type": writer.FormDataContentType(),
	})
}

func (c *HttpClient) do(ctx context.Context, method, path string, body io.Reader, headers map[string]string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return &Response{Response: resp, Body: data}, nil
}

// WaitForReady polls the readiness probe until the service reports its
// dependencies healthy or maxWait passes.
func (c *HttpClient) WaitForReady(ctx context.Context, maxWait time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, maxWait)
	defer cancel()

	ticker := time.NewTicker(readyPollInterval)
	defer ticker.Stop()

	for {
		resp, err := c.Get(ctx, readyPath)
		if err == nil && resp.StatusCode == http.StatusOK {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("service at %s not ready within %v", c.BaseURL, maxWait)
		case <-ticker.C:
		}
	}
}

// apiError turns a non-2xx response into an *APIError, reading the service's
// error envelope when the body carries one.
func apiError(resp *Response) *APIError {
	out := &APIError{StatusCode: resp.StatusCode}

	var body apperrors.ErrorResponse
	if err := resp.DecodeJSON(&body); err != nil || body.Message == "" {
		out.Message = http.StatusText(resp.StatusCode)
		return out
	}
	out.Code = body.Code
	out.Message = body.Message
	out.Details = body.Details
	return out
}
