package bind

import (
	"image"
	"log/slog"
	"sync"

	"imgbind/download"
	"imgbind/fetch"
	"imgbind/sim"
)

// Env carries the collaborators a controller needs: the simulation
// registry, the shared HTTP client, loggers, and the main executor. The
// application or test harness owns one Env and passes it by reference;
// there is no hidden global state.
type Env struct {
	Sim    *sim.Registry
	Client *fetch.Client
	Log    *slog.Logger
	Events download.Logger
	// ErrorImage is the global fallback shown on errors. A controller's
	// own ErrorImage takes precedence.
	ErrorImage image.Image
	Main       Executor

	once sync.Once
}

// NewEnv returns an Env with a fresh registry, default settings, and an
// inline main executor.
func NewEnv() *Env {
	e := &Env{}
	e.init()
	return e
}

func (e *Env) init() {
	e.once.Do(func() {
		if e.Sim == nil {
			e.Sim = sim.NewRegistry()
		}
		if e.Client == nil {
			e.Client = fetch.NewClient(fetch.DefaultSettings())
		}
		if e.Log == nil {
			e.Log = slog.Default()
		}
		if e.Main == nil {
			e.Main = Inline{}
		}
	})
}

// NewSession returns the session to use for url, consulting the simulation
// registry first. The second result reports whether the session is
// simulated.
func (e *Env) NewSession(url string) (download.ImageSession, bool) {
	e.init()
	if s, ok := e.Sim.SessionFor(url); ok {
		return s, true
	}
	adapter := fetch.NewAdapter(e.Client, e.Log)
	return download.NewSession(url, adapter, e.Log, e.Events), false
}
