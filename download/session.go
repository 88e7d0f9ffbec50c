package download

import (
	"image"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"imgbind/data"
	"imgbind/imagecheck"
	"imgbind/internal/metrics"
)

// State is the lifecycle position of a Session.
type State int

const (
	StateIdle State = iota
	StateInFlight
	StateCancelled
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateInFlight:
		return "InFlight"
	case StateCancelled:
		return "Cancelled"
	case StateCompleted:
		return "Completed"
	}
	return "Unknown"
}

// Session drives a single image download through the fetcher and the
// response validator. It owns at most one transport operation and delivers
// at most one of the success/error callbacks. A cancelled session swallows
// any late outcome from the transport.
//
// Transport callbacks arrive on worker goroutines, so state transitions are
// mutex-guarded.
type Session struct {
	url     string
	fetcher Fetcher
	log     *slog.Logger
	events  Logger

	mu           sync.Mutex
	state        State
	handle       Handle
	cancelLogOff bool
}

var _ ImageSession = (*Session)(nil)

// NewSession creates an idle session for url. events may be nil; a nil log
// falls back to slog.Default().
func NewSession(url string, fetcher Fetcher, log *slog.Logger, events Logger) *Session {
	if log == nil {
		log = slog.Default()
	}
	return &Session{
		url:     url,
		fetcher: fetcher,
		log:     log.With("session_id", uuid.NewString(), "url", url),
		events:  events,
	}
}

// URL returns the URL the session was created for.
func (s *Session) URL() string { return s.url }

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start transitions the session to InFlight and begins the download.
// It is a no-op unless the session is Idle.
func (s *Session) Start(onSuccess func(image.Image, *data.ResponseMeta), onError func(error, *data.ResponseMeta)) {
	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return
	}
	s.state = StateInFlight
	s.mu.Unlock()

	s.log.Info("request sent")
	metrics.FetchEvents.WithLabelValues("sent").Inc()
	s.emit(data.Event{Kind: data.EventRequestSent, URL: s.url})

	handle, err := s.fetcher.Fetch(s.url,
		func(body []byte, meta *data.ResponseMeta) {
			img, derr := imagecheck.Decode(meta, body)
			if derr != nil {
				s.finishError(derr, meta, onError)
				return
			}
			s.finishSuccess(img, meta, onSuccess)
		},
		func(ferr error, meta *data.ResponseMeta) {
			s.finishError(ferr, meta, onError)
		},
	)
	if err != nil {
		s.finishError(err, nil, onError)
		return
	}

	s.mu.Lock()
	if s.state == StateCancelled {
		s.mu.Unlock()
		handle.Cancel()
		return
	}
	s.handle = handle
	s.mu.Unlock()
}

// Cancel aborts the underlying operation. It is idempotent, and once a
// success or error has fired it neither logs nor changes state.
func (s *Session) Cancel() {
	s.mu.Lock()
	if s.state != StateIdle && s.state != StateInFlight {
		s.mu.Unlock()
		return
	}
	logIt := s.state == StateInFlight && !s.cancelLogOff
	s.state = StateCancelled
	h := s.handle
	s.handle = nil
	s.mu.Unlock()

	if h != nil {
		h.Cancel()
	}
	if logIt {
		s.log.Info("request cancelled")
		metrics.FetchEvents.WithLabelValues("cancelled").Inc()
		s.emit(data.Event{Kind: data.EventRequestCancelled, URL: s.url})
	}
}

func (s *Session) finishSuccess(img image.Image, meta *data.ResponseMeta, onSuccess func(image.Image, *data.ResponseMeta)) {
	s.mu.Lock()
	if s.state != StateInFlight {
		s.mu.Unlock()
		return
	}
	s.state = StateCompleted
	s.cancelLogOff = true
	s.handle = nil
	s.mu.Unlock()

	status := meta.StatusCode
	s.log.Info("response received", "status", status)
	metrics.FetchEvents.WithLabelValues("success").Inc()
	s.emit(data.Event{Kind: data.EventResponseSuccess, URL: s.url, StatusCode: &status})
	if onSuccess != nil {
		onSuccess(img, meta)
	}
}

func (s *Session) finishError(err error, meta *data.ResponseMeta, onError func(error, *data.ResponseMeta)) {
	s.mu.Lock()
	if s.state != StateInFlight {
		s.mu.Unlock()
		return
	}
	s.state = StateCompleted
	s.cancelLogOff = true
	s.handle = nil
	s.mu.Unlock()

	e := data.Event{Kind: data.EventResponseError, URL: s.url, Err: err}
	if meta != nil {
		status := meta.StatusCode
		e.StatusCode = &status
		s.log.Error("response error", "status", status, "err", err)
	} else {
		s.log.Error("response error", "err", err)
	}
	metrics.FetchEvents.WithLabelValues("error").Inc()
	s.emit(e)
	if onError != nil {
		onError(err, meta)
	}
}

// emit invokes the logger callback; a panicking logger must not take down
// the session.
func (s *Session) emit(e data.Event) {
	if s.events == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("event logger panic", "panic", r)
		}
	}()
	s.events(e)
}
