package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"gstrecon/internal/reconciliation/service"
	apperrors "gstrecon/pkg/errors"
	"gstrecon/pkg/export"
	httputil "gstrecon/pkg/http"
	"gstrecon/pkg/logger"
	"gstrecon/pkg/middleware"
	"gstrecon/pkg/model"
)

const (
	UploadsPath         = "/api/v1/uploads"
	ReconciliationsPath = "/api/v1/reconciliations"

	GSTFileField   = "gst_file"
	TallyFileField = "tally_file"

	// multipart parts beyond this are spooled to disk
	multipartMemory = 8 << 20
)

type ReconciliationHandler struct {
	service service.ReconciliationService
	log     *logger.Logger
}

func NewReconciliationHandler(service service.ReconciliationService, log *logger.Logger) *ReconciliationHandler {
	return &ReconciliationHandler{
		service: service,
		log:     log,
	}
}

func (h *ReconciliationHandler) Upload(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		h.writeError(w, "Upload", requestBodyError(err, "Invalid multipart form"))
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			h.log.Warn("failed to remove multipart temp files", "error", err)
		}
	}()

	gst, err := readFormFile(r, GSTFileField)
	if err != nil {
		h.writeError(w, "Upload", err)
		return
	}
	tally, err := readFormFile(r, TallyFileField)
	if err != nil {
		h.writeError(w, "Upload", err)
		return
	}

	resp, err := h.service.Upload(r.Context(), gst, tally)
	if err != nil {
		h.writeError(w, "Upload", err)
		return
	}

	if resp.Duplicate {
		if err := httputil.WriteSuccess(w, resp); err != nil {
			h.log.Error("failed to write success response", "handler", "Upload", "operation", "WriteSuccess", "error", err)
		}
		return
	}
	if err := httputil.WriteCreated(w, resp); err != nil {
		h.log.Error("failed to write created response", "handler", "Upload", "operation", "WriteCreated", "error", err)
	}
}

func (h *ReconciliationHandler) GetUpload(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	upload, err := h.service.GetUpload(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetUpload", err)
		return
	}

	if err := httputil.WriteSuccess(w, upload); err != nil {
		h.log.Error("failed to write success response", "handler", "GetUpload", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReconciliationHandler) Reconcile(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.ReconcileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Reconcile", requestBodyError(err, "Invalid request body"))
		return
	}

	origin := service.Origin{
		Source:        model.SourceHTTP,
		CorrelationID: middleware.RequestIDFromContext(r.Context()),
	}
	resp, err := h.service.Reconcile(r.Context(), &req, origin)
	if err != nil {
		h.writeError(w, "Reconcile", err)
		return
	}

	if err := httputil.WriteCreated(w, resp); err != nil {
		h.log.Error("failed to write created response", "handler", "Reconcile", "operation", "WriteCreated", "error", err)
	}
}

func (h *ReconciliationHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	results, total, err := h.service.ListResults(r.Context(), r.URL.Query().Get("upload_id"), limit, offset)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	if err := httputil.WritePaginated(w, results, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "operation", "WritePaginated", "error", err)
	}
}

func (h *ReconciliationHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	result, err := h.service.GetResult(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, result); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReconciliationHandler) Export(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		h.writeError(w, "Export", apperrors.InvalidInput(fmt.Sprintf("invalid format parameter: %s (accepted: json, csv, xlsx)", r.URL.Query().Get("format"))))
		return
	}

	file, err := h.service.Export(r.Context(), ps.ByName("id"), format)
	if err != nil {
		h.writeError(w, "Export", err)
		return
	}

	if err := httputil.WriteAttachment(w, file.ContentType, file.Filename, file.Body); err != nil {
		h.log.Error("failed to write attachment", "handler", "Export", "operation", "WriteAttachment", "error", err)
	}
}

func (h *ReconciliationHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST(UploadsPath, h.Upload)
	router.GET(UploadsPath+"/:id", h.GetUpload)
	router.POST(ReconciliationsPath, h.Reconcile)
	router.GET(ReconciliationsPath, h.GetAll)
	router.GET(ReconciliationsPath+"/:id", h.GetByID)
	router.GET(ReconciliationsPath+"/:id/export", h.Export)
}

func (h *ReconciliationHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func readFormFile(r *http.Request, field string) (service.UploadFile, error) {
	f, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return service.UploadFile{}, apperrors.InvalidInput(fmt.Sprintf("%s is required", field)).
				WithDetails(map[string]any{"field": field})
		}
		return service.UploadFile{}, requestBodyError(err, "Invalid "+field)
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return service.UploadFile{}, requestBodyError(err, "Failed to read "+field)
	}
	return service.UploadFile{Name: header.Filename, Content: content}, nil
}

func requestBodyError(err error, message string) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return apperrors.TooLarge(fmt.Sprintf("Request body exceeds %d bytes", maxErr.Limit))
	}
	return apperrors.InvalidInput(message)
}
