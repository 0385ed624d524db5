package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gstrecon/internal/reconciliation/service"
	apperrors "gstrecon/pkg/errors"
	"gstrecon/pkg/export"
	"gstrecon/pkg/logger"
	"gstrecon/pkg/middleware"
	"gstrecon/pkg/model"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) Upload(ctx context.Context, gst, tally service.UploadFile) (*model.UploadResponse, error) {
	args := m.Called(ctx, gst, tally)
	resp, _ := args.Get(0).(*model.UploadResponse)
	return resp, args.Error(1)
}

func (m *mockService) GetUpload(ctx context.Context, id string) (*model.Upload, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*model.Upload)
	return u, args.Error(1)
}

func (m *mockService) Reconcile(ctx context.Context, req *model.ReconcileRequest, origin service.Origin) (*model.ReconcileResponse, error) {
	args := m.Called(ctx, req, origin)
	resp, _ := args.Get(0).(*model.ReconcileResponse)
	return resp, args.Error(1)
}

func (m *mockService) GetResult(ctx context.Context, id string) (*model.ReconciliationResult, error) {
	args := m.Called(ctx, id)
	res, _ := args.Get(0).(*model.ReconciliationResult)
	return res, args.Error(1)
}

func (m *mockService) ListResults(ctx context.Context, uploadID string, limit int, offset int64) ([]*model.ReconciliationResult, int64, error) {
	args := m.Called(ctx, uploadID, limit, offset)
	res, _ := args.Get(0).([]*model.ReconciliationResult)
	return res, args.Get(1).(int64), args.Error(2)
}

func (m *mockService) Export(ctx context.Context, id string, format export.Format) (*service.ExportFile, error) {
	args := m.Called(ctx, id, format)
	f, _ := args.Get(0).(*service.ExportFile)
	return f, args.Error(1)
}

func newTestRouter(svc service.ReconciliationService) *httprouter.Router {
	router := httprouter.New()
	NewReconciliationHandler(svc, logger.Discard()).RegisterRoutes(router)
	return router
}

func multipartBody(t *testing.T, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for field, content := range files {
		name := field + ".csv"
		part, err := mw.CreateFormFile(field, name)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) apperrors.ErrorResponse {
	t.Helper()
	var body apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestUpload(t *testing.T) {
	tests := []struct {
		name       string
		duplicate  bool
		wantStatus int
	}{
		{name: "new upload", duplicate: false, wantStatus: http.StatusCreated},
		{name: "identical upload", duplicate: true, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockService{}
			svc.On("Upload", mock.Anything,
				service.UploadFile{Name: "gst_file.csv", Content: []byte("Invoice\nINV1\n")},
				service.UploadFile{Name: "tally_file.csv", Content: []byte("Voucher\nINV1\n")},
			).Return(&model.UploadResponse{ID: "u1", Duplicate: tt.duplicate}, nil)

			body, contentType := multipartBody(t, map[string]string{
				GSTFileField:   "Invoice\nINV1\n",
				TallyFileField: "Voucher\nINV1\n",
			})
			req := httptest.NewRequest(http.MethodPost, UploadsPath, body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()

			newTestRouter(svc).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), `"id":"u1"`)
			svc.AssertExpectations(t)
		})
	}
}

func TestUpload_MissingFile(t *testing.T) {
	svc := &mockService{}
	body, contentType := multipartBody(t, map[string]string{GSTFileField: "Invoice\nINV1\n"})
	req := httptest.NewRequest(http.MethodPost, UploadsPath, body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	newTestRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	errBody := decodeError(t, rec)
	assert.Equal(t, apperrors.CodeInvalidInput, errBody.Code)
	assert.Equal(t, TallyFileField, errBody.Details["field"])
	svc.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpload_NotMultipart(t *testing.T) {
	svc := &mockService{}
	req := httptest.NewRequest(http.MethodPost, UploadsPath, strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	newTestRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpload_BodyTooLarge(t *testing.T) {
	svc := &mockService{}
	body, contentType := multipartBody(t, map[string]string{
		GSTFileField:   strings.Repeat("x", 4096),
		TallyFileField: "Voucher\n",
	})
	req := httptest.NewRequest(http.MethodPost, UploadsPath, body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	req.Body = http.MaxBytesReader(rec, req.Body, 512)

	newTestRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, apperrors.CodeTooLarge, decodeError(t, rec).Code)
}

func TestGetUpload_NotFound(t *testing.T) {
	svc := &mockService{}
	svc.On("GetUpload", mock.Anything, "missing").Return(nil, apperrors.NotFoundWithID("Upload", "missing"))
	rec := httptest.NewRecorder()

	newTestRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, UploadsPath+"/missing", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, apperrors.CodeNotFound, decodeError(t, rec).Code)
}

func TestReconcile(t *testing.T) {
	svc := &mockService{}
	svc.On("Reconcile", mock.Anything,
		mock.MatchedBy(func(req *model.ReconcileRequest) bool {
			return req.UploadID == "65f1a2b3c4d5e6f708192a3b" &&
				len(req.GSTColumns) == 2 && req.PartialThreshold != nil && *req.PartialThreshold == 2
		}),
		service.Origin{Source: model.SourceHTTP, CorrelationID: "req-1"},
	).Return(&model.ReconcileResponse{ID: "r1"}, nil)

	body := `{"upload_id":"65f1a2b3c4d5e6f708192a3b","gst_columns":["Invoice","Amount"],"tally_columns":["Voucher","Value"],"partial_threshold":2}`
	req := httptest.NewRequest(http.MethodPost, ReconciliationsPath, strings.NewReader(body))
	req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "req-1"))
	rec := httptest.NewRecorder()

	newTestRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":"r1"`)
	svc.AssertExpectations(t)
}

func TestReconcile_ErrorStatus(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		svcErr     error
		wantStatus int
	}{
		{name: "malformed json", body: `{"upload_id":`, wantStatus: http.StatusBadRequest},
		{name: "mapping rejected", body: `{}`, svcErr: apperrors.Validation("no valid column mappings", nil), wantStatus: http.StatusUnprocessableEntity},
		{name: "timeout", body: `{}`, svcErr: apperrors.Timeout("Reconciliation exceeded 1s"), wantStatus: http.StatusGatewayTimeout},
		{name: "unexpected", body: `{}`, svcErr: errors.New("boom"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockService{}
			svc.On("Reconcile", mock.Anything, mock.Anything, mock.Anything).Return(nil, tt.svcErr)
			rec := httptest.NewRecorder()

			newTestRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, ReconciliationsPath, strings.NewReader(tt.body)))

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestGetAll_Pagination(t *testing.T) {
	tests := []struct {
		name        string
		query       string
		wantStatus  int
		wantLimit   int
		wantOffset  int64
		wantService bool
	}{
		{name: "defaults", query: "", wantStatus: http.StatusOK, wantLimit: 10, wantOffset: 0, wantService: true},
		{name: "capped limit", query: "?limit=1000&offset=20&upload_id=u1", wantStatus: http.StatusOK, wantLimit: 100, wantOffset: 20, wantService: true},
		{name: "negative offset", query: "?offset=-5", wantStatus: http.StatusOK, wantLimit: 10, wantOffset: 0, wantService: true},
		{name: "non-numeric limit", query: "?limit=abc", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockService{}
			svc.On("ListResults", mock.Anything, mock.Anything, tt.wantLimit, tt.wantOffset).
				Return([]*model.ReconciliationResult{}, int64(3), nil)
			rec := httptest.NewRecorder()

			newTestRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, ReconciliationsPath+tt.query, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantService {
				svc.AssertExpectations(t)
				assert.Contains(t, rec.Body.String(), `"total_count":3`)
			} else {
				svc.AssertNotCalled(t, "ListResults", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestGetByID(t *testing.T) {
	svc := &mockService{}
	svc.On("GetResult", mock.Anything, "r1").Return(&model.ReconciliationResult{ID: "r1", UploadID: "u1"}, nil)
	rec := httptest.NewRecorder()

	newTestRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, ReconciliationsPath+"/r1", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"upload_id":"u1"`)
}

func TestExport(t *testing.T) {
	svc := &mockService{}
	svc.On("Export", mock.Anything, "r1", export.FormatCSV).Return(&service.ExportFile{
		Filename:    "reconciliation-r1.csv",
		ContentType: "text/csv",
		Body:        []byte("bucket\n"),
	}, nil)
	rec := httptest.NewRecorder()

	newTestRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, ReconciliationsPath+"/r1/export?format=CSV", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="reconciliation-r1.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "bucket\n", rec.Body.String())
}

func TestExport_InvalidFormat(t *testing.T) {
	svc := &mockService{}
	rec := httptest.NewRecorder()

	newTestRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, ReconciliationsPath+"/r1/export?format=pdf", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "Export", mock.Anything, mock.Anything, mock.Anything)
}

func newTestHealthHandler(checks map[string]error) *HealthHandler {
	h := &HealthHandler{checks: make(map[string]Check), log: logger.Discard()}
	for name, err := range checks {
		h.AddCheck(name, func(context.Context) error { return err })
	}
	return h
}

func TestHealth(t *testing.T) {
	down := errors.New("no reachable servers")

	tests := []struct {
		name       string
		path       string
		checks     map[string]error
		wantStatus int
		wantBody   []string
	}{
		{name: "liveness", path: "/health", wantStatus: http.StatusOK, wantBody: []string{`"status":"ok"`}},
		{
			name:       "ready",
			path:       "/ready",
			checks:     map[string]error{DatabaseCheck: nil, KafkaCheck: nil},
			wantStatus: http.StatusOK,
			wantBody:   []string{`"status":"ready"`, `"database":"ok"`, `"kafka":"ok"`},
		},
		{
			name:       "database down",
			path:       "/ready",
			checks:     map[string]error{DatabaseCheck: down},
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   []string{`"status":"unavailable"`, `"database":"error"`},
		},
		{
			name:       "kafka down only",
			path:       "/ready",
			checks:     map[string]error{DatabaseCheck: nil, KafkaCheck: down},
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   []string{`"database":"ok"`, `"kafka":"error"`},
		},
		{name: "metrics", path: "/metrics", wantStatus: http.StatusOK, wantBody: []string{"go_goroutines"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := httprouter.New()
			newTestHealthHandler(tt.checks).RegisterRoutes(router)
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			for _, want := range tt.wantBody {
				assert.Contains(t, rec.Body.String(), want)
			}
		})
	}
}

func TestHealth_ReadyHonoursDeadline(t *testing.T) {
	h := newTestHealthHandler(nil)
	h.AddCheck(DatabaseCheck, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	router := httprouter.New()
	h.RegisterRoutes(router)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil).WithContext(ctx))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
