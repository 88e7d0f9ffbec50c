package data

import "errors"

// ErrorKind classifies the failures a fetch can produce. The numeric codes
// are stable and exposed to callers.
type ErrorKind int

const (
	// InvalidURLString means the URL could not be parsed; no request was made.
	InvalidURLString ErrorKind = iota
	// HTTPStatusNot200 means the server answered with a status other than 200.
	HTTPStatusNot200
	// MissingContentTypeHeader means the response carried no Content-Type.
	MissingContentTypeHeader
	// NotAnImageContentType means the Content-Type is not a supported image type.
	NotAnImageContentType
	// FailedToReadImageData means the response body did not decode as an image.
	FailedToReadImageData
	// SimulatedError is delivered by simulated sessions in tests.
	SimulatedError
)

// Code returns the stable numeric code for the kind.
func (k ErrorKind) Code() int { return int(k) }

func (k ErrorKind) String() string {
	switch k {
	case InvalidURLString:
		return "invalid URL string"
	case HTTPStatusNot200:
		return "response HTTP status code is not 200"
	case MissingContentTypeHeader:
		return "response is missing the Content-Type header"
	case NotAnImageContentType:
		return "response Content-Type is not a supported image type"
	case FailedToReadImageData:
		return "could not decode response body as an image"
	case SimulatedError:
		return "simulated error"
	}
	return "unknown error"
}

// Error is the typed error reported through session and controller callbacks.
type Error struct {
	Kind ErrorKind
	URL  string
	Err  error
}

// NewError builds an Error of the given kind. cause may be nil.
func NewError(kind ErrorKind, url string, cause error) *Error {
	return &Error{Kind: kind, URL: url, Err: cause}
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.URL != "" {
		msg += ": " + e.URL
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// IsKind reports whether err is (or wraps) an Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind == kind
	}
	return false
}
