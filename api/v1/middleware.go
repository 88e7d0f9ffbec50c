package v1

import (
	"context"
	"net/http"
	"strings"
	"time"
)

type fetchBody struct {
	URL string `json:"url"`
}

type ctxKeyFetch struct{}

// MiddlewareFetchValidation decodes and validates the POST body before the
// handler runs, stashing the parsed request in the context.
func MiddlewareFetchValidation(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body fetchBody
		if err := decodeJSONStrict(w, r, &body, 1<<20); err != nil {
			markErr(w, err)
			if err == ErrContentType {
				http.Error(w, err.Error(), http.StatusUnsupportedMediaType)
				return
			}
			http.Error(w, "invalid JSON: "+err.Error(), http.StatusBadRequest)
			return
		}

		if strings.TrimSpace(body.URL) == "" {
			markErr(w, ErrURLRequired)
			http.Error(w, ErrURLRequired.Error(), http.StatusBadRequest)
			return
		}

		ctx := context.WithValue(r.Context(), ctxKeyFetch{}, body)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Log is the access-log middleware: one structured line per request.
func (h *FetchHandler) Log(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		startTime := time.Now()
		rw := &rwLogger{ResponseWriter: w}
		next.ServeHTTP(rw, r)
		if rw.status == 0 {
			rw.status = http.StatusOK
		}
		elapsed := time.Since(startTime)
		if rw.err != nil {
			h.l.Error(rw.err.Error(),
				"method", r.Method,
				"url", r.URL.Path,
				"status", rw.status,
				"remote", r.RemoteAddr,
				"dur_ms", elapsed.Milliseconds(),
				"bytes", rw.bytes)
			return
		}
		h.l.Info("request",
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.status,
			"remote", r.RemoteAddr,
			"dur_ms", elapsed.Milliseconds(),
			"bytes", rw.bytes)
	})
}
