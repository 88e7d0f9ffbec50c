// Package sim intercepts session creation during tests. Rules match URLs
// by substring and spawn simulated sessions that never touch the network;
// every delivery is synchronous on the calling goroutine so assertions
// need no waiting.
package sim

import (
	"image"
	"strings"
	"sync"

	"imgbind/data"
	"imgbind/download"
	"imgbind/internal/metrics"
)

// Registry holds an ordered list of simulator rules. It is instance
// scoped: the owning application or test harness passes it by reference
// wherever interception is wanted.
type Registry struct {
	mu    sync.Mutex
	rules []*Rule
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Simulate registers a rule matching URLs that contain urlPart
// (case-sensitive). The rule lives until Clear.
func (r *Registry) Simulate(urlPart string) *Rule {
	rule := &Rule{substring: urlPart}
	r.mu.Lock()
	r.rules = append(r.rules, rule)
	r.mu.Unlock()
	return rule
}

// AutorespondWithImage registers a rule that immediately answers matched
// sessions with img once they start.
func (r *Registry) AutorespondWithImage(urlPart string, img image.Image) *Rule {
	return r.Simulate(urlPart).AutorespondWithImage(img)
}

// AutorespondWithError registers a rule that immediately answers matched
// sessions with err. A nil err becomes a SimulatedError; meta is an
// optional fake response.
func (r *Registry) AutorespondWithError(urlPart string, err error, meta *data.ResponseMeta) *Rule {
	return r.Simulate(urlPart).AutorespondWithError(err, meta)
}

// Clear drops all rules and forgets their spawned sessions.
func (r *Registry) Clear() {
	r.mu.Lock()
	r.rules = nil
	r.mu.Unlock()
}

// SessionFor returns a simulated session when at least one rule matches
// url. The session is attached to every matching rule; matching rules'
// auto-responses are queued in registration order, so when several rules
// carry one, the last registered is the outcome that fires at Start.
func (r *Registry) SessionFor(url string) (*Session, bool) {
	r.mu.Lock()
	rules := make([]*Rule, len(r.rules))
	copy(rules, r.rules)
	r.mu.Unlock()

	var matched []*Rule
	for _, rule := range rules {
		if strings.Contains(url, rule.substring) {
			matched = append(matched, rule)
		}
	}
	if len(matched) == 0 {
		return nil, false
	}
	s := &Session{url: url}
	for _, rule := range matched {
		rule.attach(s)
	}
	metrics.SimulatedSessions.Inc()
	return s, true
}

// Rule matches URLs by substring containment and remembers the sessions it
// has spawned so manual responses can be broadcast to them.
type Rule struct {
	substring string

	mu        sync.Mutex
	autoImage image.Image
	autoErr   error
	autoMeta  *data.ResponseMeta
	sessions  []*Session
}

// AutorespondWithImage configures the rule to answer future matched
// sessions with img. It returns the rule for chaining.
func (rule *Rule) AutorespondWithImage(img image.Image) *Rule {
	rule.mu.Lock()
	rule.autoImage = img
	rule.autoErr = nil
	rule.autoMeta = nil
	rule.mu.Unlock()
	return rule
}

// AutorespondWithError configures the rule to answer future matched
// sessions with err. A nil err becomes a SimulatedError.
func (rule *Rule) AutorespondWithError(err error, meta *data.ResponseMeta) *Rule {
	if err == nil {
		err = data.NewError(data.SimulatedError, "", nil)
	}
	rule.mu.Lock()
	rule.autoImage = nil
	rule.autoErr = err
	rule.autoMeta = meta
	rule.mu.Unlock()
	return rule
}

// RespondWithImage delivers img to every session this rule has spawned.
func (rule *Rule) RespondWithImage(img image.Image) {
	for _, s := range rule.spawned() {
		s.RespondWithImage(img)
	}
}

// RespondWithError delivers err to every session this rule has spawned.
func (rule *Rule) RespondWithError(err error, meta *data.ResponseMeta) {
	for _, s := range rule.spawned() {
		s.RespondWithError(err, meta)
	}
}

func (rule *Rule) spawned() []*Session {
	rule.mu.Lock()
	defer rule.mu.Unlock()
	return append([]*Session(nil), rule.sessions...)
}

func (rule *Rule) attach(s *Session) {
	rule.mu.Lock()
	defer rule.mu.Unlock()
	rule.sessions = append(rule.sessions, s)
	if rule.autoImage != nil {
		s.queue(&outcome{img: rule.autoImage})
	} else if rule.autoErr != nil {
		s.queue(&outcome{err: rule.autoErr, meta: rule.autoMeta})
	}
}

type outcome struct {
	img  image.Image
	err  error
	meta *data.ResponseMeta
}

// Session is a download session stand-in with no transport. It honors only
// the first outcome delivered to it; later deliveries and deliveries after
// Cancel are ignored.
type Session struct {
	url string

	mu        sync.Mutex
	cancelled bool
	delivered bool
	pending   *outcome
	onSuccess func(image.Image, *data.ResponseMeta)
	onError   func(error, *data.ResponseMeta)
}

var _ download.ImageSession = (*Session)(nil)

// URL returns the URL the session was matched for.
func (s *Session) URL() string { return s.url }

// Start installs the outcome callbacks. Any queued auto-response fires
// immediately, synchronously.
func (s *Session) Start(onSuccess func(image.Image, *data.ResponseMeta), onError func(error, *data.ResponseMeta)) {
	s.mu.Lock()
	s.onSuccess = onSuccess
	s.onError = onError
	p := s.pending
	s.pending = nil
	s.mu.Unlock()
	if p != nil {
		s.deliver(p)
	}
}

// Cancel makes the session inert: no outcome will ever be delivered.
func (s *Session) Cancel() {
	s.mu.Lock()
	s.cancelled = true
	s.pending = nil
	s.mu.Unlock()
}

// RespondWithImage delivers a success outcome carrying img.
func (s *Session) RespondWithImage(img image.Image) {
	s.deliver(&outcome{img: img})
}

// RespondWithError delivers an error outcome. A nil err becomes a
// SimulatedError for this session's URL; meta is an optional fake response.
func (s *Session) RespondWithError(err error, meta *data.ResponseMeta) {
	if err == nil {
		err = data.NewError(data.SimulatedError, s.url, nil)
	}
	s.deliver(&outcome{err: err, meta: meta})
}

// queue replaces the pending auto-response; used before Start, while the
// session is being attached to its matching rules.
func (s *Session) queue(o *outcome) {
	s.mu.Lock()
	s.pending = o
	s.mu.Unlock()
}

func (s *Session) deliver(o *outcome) {
	s.mu.Lock()
	if s.cancelled || s.delivered {
		s.mu.Unlock()
		return
	}
	if s.onSuccess == nil && s.onError == nil {
		// Respond before Start: hold the outcome until callbacks exist.
		s.pending = o
		s.mu.Unlock()
		return
	}
	s.delivered = true
	onSuccess := s.onSuccess
	onError := s.onError
	s.mu.Unlock()

	if o.err != nil {
		if onError != nil {
			onError(o.err, o.meta)
		}
		return
	}
	if onSuccess != nil {
		onSuccess(o.img, o.meta)
	}
}
