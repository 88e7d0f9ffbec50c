// Package repo stores the daemon's fetch history.
package repo

import (
	"context"
	"errors"
	"time"
)

// Status is the daemon-side lifecycle of a tracked fetch.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusSucceeded Status = "Succeeded"
	StatusFailed    Status = "Failed"
	StatusCancelled Status = "Cancelled"
)

var ErrNotFound = errors.New("fetch record not found")

// Record is one fetch attempt tracked by the daemon. ErrorCode carries the
// library's stable numeric code when the fetch failed; Width/Height are the
// decoded image dimensions on success.
type Record struct {
	ID          string    `json:"id"`
	URL         string    `json:"url"`
	Fingerprint string    `json:"fingerprint"`
	Status      Status    `json:"status"`
	ErrorCode   *int      `json:"errorCode,omitempty"`
	Error       string    `json:"error,omitempty"`
	StatusCode  *int      `json:"statusCode,omitempty"`
	Width       int       `json:"width,omitempty"`
	Height      int       `json:"height,omitempty"`
	DurationMS  int64     `json:"durationMs"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Records is a list of history records.
type Records []*Record

// Clone returns a deep copy so callers cannot mutate stored state.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	out := *r
	if r.ErrorCode != nil {
		v := *r.ErrorCode
		out.ErrorCode = &v
	}
	if r.StatusCode != nil {
		v := *r.StatusCode
		out.StatusCode = &v
	}
	return &out
}

// Clone returns a deep copy of the list.
func (rs Records) Clone() Records {
	out := make(Records, len(rs))
	for i, r := range rs {
		out[i] = r.Clone()
	}
	return out
}

// FetchRepo is the storage contract for fetch history.
type FetchRepo interface {
	List(ctx context.Context) (Records, error)
	Get(ctx context.Context, id string) (*Record, error)
	Add(ctx context.Context, r *Record) (*Record, error)
	Update(ctx context.Context, id string, mutate func(*Record) error) (*Record, error)
}
