// Package v1 is the daemon's HTTP API: submit image URLs to prefetch,
// inspect fetch history, and cancel in-flight fetches.
package v1

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"imgbind/data"
	"imgbind/internal/repo"
	"imgbind/internal/service"
)

// FetchHandler serves the /v1/fetches endpoints.
type FetchHandler struct {
	l   *slog.Logger
	svc service.Fetch
}

// NewFetchHandler wires the handler to the fetch service.
func NewFetchHandler(l *slog.Logger, svc service.Fetch) *FetchHandler {
	if l == nil {
		l = slog.Default()
	}
	return &FetchHandler{l: l, svc: svc}
}

type rwLogger struct {
	http.ResponseWriter
	status int
	bytes  int
	err    error
}

func (w *rwLogger) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *rwLogger) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

func (w *rwLogger) SetErr(err error) { w.err = err }

type errorSetter interface{ SetErr(error) }

func markErr(w http.ResponseWriter, err error) {
	if es, ok := w.(errorSetter); ok {
		es.SetErr(err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// GetFetches lists the fetch history.
func (h *FetchHandler) GetFetches(w http.ResponseWriter, r *http.Request) {
	records, err := h.svc.List(r.Context())
	if err != nil {
		markErr(w, err)
		http.Error(w, "failed to list fetches", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// GetFetch returns one history record by id.
func (h *FetchHandler) GetFetch(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	rec, err := h.svc.Get(r.Context(), id)
	if err != nil {
		markErr(w, err)
		if errors.Is(err, repo.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to get fetch", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// AddFetch submits a URL for fetching and answers 202 with the Pending
// record.
func (h *FetchHandler) AddFetch(w http.ResponseWriter, r *http.Request) {
	v := r.Context().Value(ctxKeyFetch{})
	body, ok := v.(fetchBody)
	if !ok {
		markErr(w, ErrFetchCtx)
		http.Error(w, ErrFetchCtx.Error(), http.StatusInternalServerError)
		return
	}

	rec, err := h.svc.Submit(r.Context(), body.URL)
	if err != nil {
		markErr(w, err)
		if data.IsKind(err, data.InvalidURLString) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, "failed to submit fetch", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusAccepted, rec)
}

// CancelFetch aborts an in-flight fetch.
func (h *FetchHandler) CancelFetch(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.svc.Cancel(r.Context(), id); err != nil {
		markErr(w, err)
		if errors.Is(err, repo.ErrNotFound) {
			http.Error(w, "no such in-flight fetch", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to cancel fetch", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
