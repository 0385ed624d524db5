package middleware

import (
	"fmt"
	"net/http"
	"strings"

	apperrors "gstrecon/pkg/errors"
)

// SizeLimits caps request bodies. The longest matching ByPrefix entry wins
// over Default.
type SizeLimits struct {
	Default  int64
	ByPrefix map[string]int64
}

func (l SizeLimits) limitFor(path string) int64 {
	limit := l.Default
	matched := -1
	for prefix, v := range l.ByPrefix {
		if strings.HasPrefix(path, prefix) && len(prefix) > matched {
			limit = v
			matched = len(prefix)
		}
	}
	return limit
}

// MaxRequestSize rejects declared oversize bodies up front and wraps the rest
// in http.MaxBytesReader, so handlers see *http.MaxBytesError on overflow.
func MaxRequestSize(limits SizeLimits) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			limit := limits.limitFor(r.URL.Path)
			if limit <= 0 {
				next.ServeHTTP(w, r)
				return
			}

			if r.ContentLength > limit {
				_ = apperrors.WriteError(w, apperrors.TooLarge(fmt.Sprintf("request body exceeds %d bytes", limit)))
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
