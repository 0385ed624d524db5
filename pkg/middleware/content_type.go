package middleware

import (
	"mime"
	"net/http"
	"strings"

	apperrors "gstrecon/pkg/errors"
	"gstrecon/pkg/logger"
)

const (
	contentTypeJSON      = "application/json"
	contentTypeMultipart = "multipart/form-data"
)

// ContentTypeValidation requires JSON bodies on POST, PUT and PATCH, except for
// paths under one of multipartPrefixes, which must be multipart/form-data.
func ContentTypeValidation(log *logger.Logger, multipartPrefixes ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if requiresContentType(r.Method) {
				contentType := extractContentType(r.Header.Get("Content-Type"))
				expected := contentTypeJSON
				if hasAnyPrefix(r.URL.Path, multipartPrefixes) {
					expected = contentTypeMultipart
				}

				if contentType != expected {
					rejectInvalidContentType(w, log, r, contentType, expected)
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func requiresContentType(method string) bool {
	return method == http.MethodPost || method == http.MethodPut || method == http.MethodPatch
}

func extractContentType(header string) string {
	if header == "" {
		return ""
	}

	mediaType, _, err := mime.ParseMediaType(header)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(strings.Split(header, ";")[0]))
	}
	return mediaType
}

func hasAnyPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

func rejectInvalidContentType(w http.ResponseWriter, log *logger.Logger, r *http.Request, contentType, expected string) {
	log.Warn("Invalid Content-Type header",
		"request_id", RequestIDFromContext(r.Context()),
		"content_type", contentType,
		"expected", expected,
		"path", r.URL.Path,
		"method", r.Method,
	)

	appErr := apperrors.New(apperrors.CodeInvalidInput, "Content-Type must be "+expected, http.StatusUnsupportedMediaType)
	_ = apperrors.WriteError(w, appErr)
}
