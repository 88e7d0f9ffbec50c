// Package download owns the per-request session state machine and the
// contracts it needs from the transport layer.
package download

import (
	"image"

	"imgbind/data"
)

// Fetcher turns a URL into a pending, cancellable transport operation.
// Exactly one of onBody or onErr fires, unless the handle is cancelled
// first. An unparseable URL is reported as an immediate error return and
// no handle is created.
type Fetcher interface {
	Fetch(url string, onBody func(body []byte, meta *data.ResponseMeta), onErr func(err error, meta *data.ResponseMeta)) (Handle, error)
}

// Handle aborts an in-flight transport operation. Cancelling after the
// outcome has fired is a no-op.
type Handle interface {
	Cancel()
}

// ImageSession is one request/response cycle for a single image URL.
// Both real and simulated sessions satisfy it.
type ImageSession interface {
	Start(onSuccess func(img image.Image, meta *data.ResponseMeta), onError func(err error, meta *data.ResponseMeta))
	Cancel()
}
