package data

// EventKind identifies a session lifecycle event delivered to the logger
// callback.
type EventKind string

const (
	EventRequestSent      EventKind = "RequestSent"
	EventRequestCancelled EventKind = "RequestCancelled"
	EventResponseSuccess  EventKind = "ResponseSuccess"
	EventResponseError    EventKind = "ResponseError"
)

// Verb returns the short form used by the text log formatter.
func (k EventKind) Verb() string {
	switch k {
	case EventRequestSent:
		return "GET"
	case EventRequestCancelled:
		return "Cancelled"
	case EventResponseSuccess:
		return "Received"
	case EventResponseError:
		return "Error"
	}
	return string(k)
}

// Event is one session lifecycle notification. StatusCode and Err are set
// only when known for the event kind.
type Event struct {
	Kind       EventKind
	URL        string
	StatusCode *int
	Err        error
}
