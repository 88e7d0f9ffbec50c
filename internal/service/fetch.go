// Package service sits between the HTTP handlers and the download
// pipeline: it validates submissions, tracks history records, and reports
// outcomes to the recorder.
package service

import (
	"context"
	"image"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"imgbind/bind"
	"imgbind/data"
	"imgbind/download"
	"imgbind/internal/recorder"
	"imgbind/internal/repo"
)

// Fetch submits image URLs through the download pipeline and tracks them.
type Fetch interface {
	List(ctx context.Context) (repo.Records, error)
	Get(ctx context.Context, id string) (*repo.Record, error)
	Submit(ctx context.Context, rawURL string) (*repo.Record, error)
	Cancel(ctx context.Context, id string) error
}

type fetchSvc struct {
	repo repo.FetchRepo
	env  *bind.Env
	out  chan<- recorder.Outcome
	log  *slog.Logger

	mu     sync.Mutex
	active map[string]download.ImageSession
}

// NewFetch creates the fetch service. Outcomes for every submitted URL are
// sent on out for the recorder to persist.
func NewFetch(log *slog.Logger, r repo.FetchRepo, env *bind.Env, out chan<- recorder.Outcome) Fetch {
	if log == nil {
		log = slog.Default()
	}
	return &fetchSvc{
		repo:   r,
		env:    env,
		out:    out,
		log:    log,
		active: make(map[string]download.ImageSession),
	}
}

func (s *fetchSvc) List(ctx context.Context) (repo.Records, error) {
	return s.repo.List(ctx)
}

func (s *fetchSvc) Get(ctx context.Context, id string) (*repo.Record, error) {
	return s.repo.Get(ctx, id)
}

// Submit records the URL as Pending and starts its download session. The
// session reports back asynchronously through the outcome channel.
func (s *fetchSvc) Submit(ctx context.Context, rawURL string) (*repo.Record, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, data.NewError(data.InvalidURLString, rawURL, nil)
	}
	if u, err := url.Parse(rawURL); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, data.NewError(data.InvalidURLString, rawURL, err)
	}

	rec, err := s.repo.Add(ctx, &repo.Record{URL: rawURL, Status: repo.StatusPending})
	if err != nil {
		return nil, err
	}

	sess, simulated := s.env.NewSession(rawURL)
	s.mu.Lock()
	s.active[rec.ID] = sess
	s.mu.Unlock()
	s.log.Info("fetch submitted", "record_id", rec.ID, "url", rawURL, "simulated", simulated)

	start := time.Now()
	s.report(recorder.Outcome{RecordID: rec.ID, Kind: data.EventRequestSent, URL: rawURL})
	sess.Start(
		func(img image.Image, meta *data.ResponseMeta) {
			o := recorder.Outcome{
				RecordID: rec.ID,
				Kind:     data.EventResponseSuccess,
				URL:      rawURL,
				Duration: time.Since(start),
			}
			if meta != nil {
				status := meta.StatusCode
				o.StatusCode = &status
			}
			if img != nil {
				b := img.Bounds()
				o.Width = b.Dx()
				o.Height = b.Dy()
			}
			s.finish(rec.ID)
			s.report(o)
		},
		func(err error, meta *data.ResponseMeta) {
			o := recorder.Outcome{
				RecordID: rec.ID,
				Kind:     data.EventResponseError,
				URL:      rawURL,
				Err:      err,
				Duration: time.Since(start),
			}
			if meta != nil {
				status := meta.StatusCode
				o.StatusCode = &status
			}
			s.finish(rec.ID)
			s.report(o)
		},
	)
	return rec, nil
}

// Cancel aborts an in-flight fetch. Fetches that already finished return
// ErrNotFound.
func (s *fetchSvc) Cancel(ctx context.Context, id string) error {
	s.mu.Lock()
	sess, ok := s.active[id]
	delete(s.active, id)
	s.mu.Unlock()
	if !ok {
		return repo.ErrNotFound
	}
	sess.Cancel()
	s.report(recorder.Outcome{RecordID: id, Kind: data.EventRequestCancelled})
	return nil
}

func (s *fetchSvc) finish(id string) {
	s.mu.Lock()
	delete(s.active, id)
	s.mu.Unlock()
}

func (s *fetchSvc) report(o recorder.Outcome) {
	if s.out == nil {
		return
	}
	s.out <- o
}
