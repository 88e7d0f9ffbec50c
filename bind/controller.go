// Package bind connects a download session's outcome to a displayable
// view: cancel-old/start-new sequencing on URL changes, user hook chains,
// and hand-off of the final assignment to the main execution context.
package bind

import (
	"image"
	"sync"

	"imgbind/data"
	"imgbind/download"
)

// View is the displayable surface a controller updates. The controller
// never extends the view's lifetime; the owner must call Dispose when the
// view is torn down.
type View interface {
	SetImage(img image.Image)
}

// Controller binds image downloads to a single view. It holds at most one
// active session; setting a URL always cancels the previous session first.
//
// Hook fields are read from transport goroutines and must be configured
// before the first SetURL.
type Controller struct {
	env *Env

	mu        sync.Mutex
	view      View
	session   download.ImageSession
	simulated bool
	url       string

	// OnSuccess transforms the image on the main executor just before it
	// is assigned to the view. Returning nil suppresses the assignment.
	OnSuccess func(img image.Image) image.Image
	// OnSuccessAsync transforms the image on the worker context, before
	// the display step is scheduled.
	OnSuccessAsync func(img image.Image) image.Image
	// OnError runs on the main executor after a failed download.
	OnError func(err error, meta *data.ResponseMeta)
	// OnErrorAsync runs synchronously on the worker context after a
	// failed download.
	OnErrorAsync func(err error, meta *data.ResponseMeta)
	// ErrorImage, when set, is displayed as a substitute success whenever
	// a download fails. It wins over Env.ErrorImage.
	ErrorImage image.Image
}

// NewController binds view to the given environment. A nil env gets a
// fresh default environment.
func NewController(env *Env, view View) *Controller {
	if env == nil {
		env = NewEnv()
	}
	env.init()
	return &Controller{env: env, view: view}
}

// URL returns the most recently assigned URL.
func (c *Controller) URL() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.url
}

// SetURL cancels the current session unconditionally, then starts a new
// one for a non-empty url. The previous session is cancelled even when the
// url has not changed.
func (c *Controller) SetURL(url string) {
	c.mu.Lock()
	old := c.session
	c.session = nil
	c.url = url
	c.mu.Unlock()
	if old != nil {
		old.Cancel()
	}
	if url == "" {
		return
	}

	sess, simulated := c.env.NewSession(url)
	c.mu.Lock()
	c.session = sess
	c.simulated = simulated
	c.mu.Unlock()

	sess.Start(
		func(img image.Image, meta *data.ResponseMeta) {
			c.handleSuccess(img, simulated)
		},
		func(err error, meta *data.ResponseMeta) {
			c.handleError(err, meta, simulated)
		},
	)
}

// Cancel aborts the active session without clearing the view.
func (c *Controller) Cancel() {
	c.mu.Lock()
	old := c.session
	c.session = nil
	c.mu.Unlock()
	if old != nil {
		old.Cancel()
	}
}

// Dispose cancels any in-flight session and releases the view reference.
// The owner must call it when the bound view is torn down.
func (c *Controller) Dispose() {
	c.mu.Lock()
	old := c.session
	c.session = nil
	c.view = nil
	c.url = ""
	c.mu.Unlock()
	if old != nil {
		old.Cancel()
	}
}

// handleSuccess applies the async transform, then runs the display step:
// inline for simulated sessions so test assertions are deterministic,
// posted to the main executor otherwise.
func (c *Controller) handleSuccess(img image.Image, simulated bool) {
	if c.OnSuccessAsync != nil {
		img = c.OnSuccessAsync(img)
	}
	if simulated {
		c.display(img)
		return
	}
	c.env.Main.Post(func() { c.display(img) })
}

// handleError shows the configured error image as a substitute success
// (when one exists) and fires both error hooks. Error image display and
// error callbacks are independent: both occur.
func (c *Controller) handleError(err error, meta *data.ResponseMeta, simulated bool) {
	if ei := c.errorImage(); ei != nil {
		c.handleSuccess(ei, simulated)
	}
	if c.OnErrorAsync != nil {
		c.OnErrorAsync(err, meta)
	}
	if c.OnError != nil {
		c.env.Main.Post(func() { c.OnError(err, meta) })
	}
}

// display applies the sync transform and assigns the image to the view,
// when both still exist.
func (c *Controller) display(img image.Image) {
	if c.OnSuccess != nil {
		img = c.OnSuccess(img)
	}
	c.mu.Lock()
	v := c.view
	c.mu.Unlock()
	if img == nil || v == nil {
		return
	}
	v.SetImage(img)
}

func (c *Controller) errorImage() image.Image {
	if c.ErrorImage != nil {
		return c.ErrorImage
	}
	return c.env.ErrorImage
}
