package data

import "net/http"

// ResponseMeta carries the HTTP response details paired with a fetch
// outcome. It is nil when no response was obtained (transport failure).
type ResponseMeta struct {
	StatusCode int
	Headers    http.Header
	URL        string
}

// ContentType returns the response Content-Type header. ok is false when
// the header is absent or empty.
func (m *ResponseMeta) ContentType() (string, bool) {
	if m == nil || m.Headers == nil {
		return "", false
	}
	ct := m.Headers.Get("Content-Type")
	if ct == "" {
		return "", false
	}
	return ct, true
}
