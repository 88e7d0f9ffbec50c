// Package recorder consumes fetch outcomes and updates history storage
// and the event stream.
package recorder

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"imgbind/data"
	"imgbind/internal/hub"
	"imgbind/internal/repo"
)

// Outcome is one lifecycle report for a tracked fetch.
type Outcome struct {
	RecordID   string
	Kind       data.EventKind
	URL        string
	StatusCode *int
	Err        error
	Width      int
	Height     int
	Duration   time.Duration
}

// Recorder processes outcomes from the channel and mutates the repository
// accordingly, broadcasting each event to the hub.
type Recorder struct {
	repo   repo.FetchRepo
	hub    *hub.Hub
	events <-chan Outcome
	log    *slog.Logger
	ctx    context.Context

	stop chan struct{}
	wg   sync.WaitGroup
}

// New creates a Recorder. hub may be nil; a nil log falls back to
// slog.Default().
func New(log *slog.Logger, r repo.FetchRepo, h *hub.Hub, events <-chan Outcome) *Recorder {
	if log == nil {
		log = slog.Default()
	}
	return &Recorder{repo: r, hub: h, events: events, log: log, ctx: context.Background()}
}

// Run starts the recording loop.
func (r *Recorder) Run() {
	r.stop = make(chan struct{})
	// Tag this run with a stable operation_id for correlation.
	opID := uuid.NewString()
	r.log = r.log.With("operation_id", opID)
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		for {
			select {
			case <-r.stop:
				return
			case o, ok := <-r.events:
				if !ok {
					return
				}
				r.handle(o)
			}
		}
	}()
}

// Stop terminates the recording loop.
func (r *Recorder) Stop() {
	if r.stop != nil {
		close(r.stop)
		r.wg.Wait()
	}
}

func (r *Recorder) handle(o Outcome) {
	if r.hub != nil {
		m := hub.Message{RecordID: o.RecordID, Kind: string(o.Kind), URL: o.URL, StatusCode: o.StatusCode}
		if o.Err != nil {
			m.Error = o.Err.Error()
		}
		r.hub.Broadcast(m)
	}

	var status repo.Status
	switch o.Kind {
	case data.EventRequestSent:
		// The record is already Pending; nothing to persist.
		return
	case data.EventResponseSuccess:
		status = repo.StatusSucceeded
	case data.EventResponseError:
		status = repo.StatusFailed
	case data.EventRequestCancelled:
		status = repo.StatusCancelled
	default:
		r.log.Warn("unknown outcome kind", "record_id", o.RecordID, "kind", o.Kind)
		return
	}

	_, err := r.repo.Update(r.ctx, o.RecordID, func(rec *repo.Record) error {
		rec.Status = status
		rec.StatusCode = o.StatusCode
		rec.DurationMS = o.Duration.Milliseconds()
		if o.Err != nil {
			rec.Error = o.Err.Error()
			var de *data.Error
			if errors.As(o.Err, &de) {
				code := de.Kind.Code()
				rec.ErrorCode = &code
			}
		}
		if status == repo.StatusSucceeded {
			rec.Width = o.Width
			rec.Height = o.Height
		}
		return nil
	})
	if err != nil {
		r.log.Error("update record", "record_id", o.RecordID, "status", status, "err", err)
		return
	}
	r.log.Info("recorded outcome", "record_id", o.RecordID, "kind", o.Kind)
}
