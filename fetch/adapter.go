package fetch

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"imgbind/data"
	"imgbind/download"
	"imgbind/internal/metrics"
)

// Adapter implements download.Fetcher over the shared HTTP client. Each
// fetch runs on its own goroutine and is aborted through the returned
// handle's context.
type Adapter struct {
	client *Client
	log    *slog.Logger
}

// NewAdapter creates an Adapter using the provided shared client. A nil
// log falls back to slog.Default().
func NewAdapter(client *Client, log *slog.Logger) *Adapter {
	if log == nil {
		log = slog.Default()
	}
	return &Adapter{client: client, log: log}
}

var _ download.Fetcher = (*Adapter)(nil)

type handle struct {
	cancel context.CancelFunc
}

func (h *handle) Cancel() { h.cancel() }

// Fetch issues a GET for rawURL. An unparseable URL is returned as an
// immediate InvalidURLString error with no handle. A transport failure
// with no HTTP response reports onErr with nil meta; any obtained response
// is delivered raw to onBody, paired with its status and headers.
func (a *Adapter) Fetch(rawURL string, onBody func([]byte, *data.ResponseMeta), onErr func(error, *data.ResponseMeta)) (download.Handle, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, data.NewError(data.InvalidURLString, rawURL, err)
	}

	// Snapshot the client and policy now so a concurrent settings change
	// does not affect this operation.
	httpc := a.client.HTTP()
	policy := a.client.Settings().Cache.RequestCachePolicy

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		metrics.ActiveFetches.Inc()
		defer metrics.ActiveFetches.Dec()
		start := time.Now()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			onErr(data.NewError(data.InvalidURLString, rawURL, err), nil)
			return
		}
		applyCachePolicy(req, policy)

		resp, err := httpc.Do(req)
		if err != nil {
			metrics.RequestLatency.WithLabelValues("transport_error").Observe(time.Since(start).Seconds())
			onErr(err, nil)
			return
		}
		defer func() {
			_ = resp.Body.Close()
		}()

		meta := &data.ResponseMeta{StatusCode: resp.StatusCode, Headers: resp.Header.Clone(), URL: rawURL}
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			metrics.RequestLatency.WithLabelValues("transport_error").Observe(time.Since(start).Seconds())
			onErr(err, meta)
			return
		}
		metrics.RequestLatency.WithLabelValues("response").Observe(time.Since(start).Seconds())
		onBody(body, meta)
	}()
	return &handle{cancel: cancel}, nil
}

func applyCachePolicy(req *http.Request, p CachePolicy) {
	switch p {
	case ReloadIgnoringLocalCacheData:
		req.Header.Set("Cache-Control", "no-cache")
	case ReturnCacheDataElseLoad:
		req.Header.Set("Cache-Control", "max-stale=31536000")
	case ReturnCacheDataDontLoad:
		req.Header.Set("Cache-Control", "only-if-cached")
	}
}
