package fetch

import (
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/gregjones/httpcache"
	"github.com/gregjones/httpcache/diskcache"
	"github.com/peterbourgon/diskv"
)

// Client owns the shared http.Client built from Settings. The underlying
// client is created lazily on first use and rebuilt after Update; requests
// already in flight keep the client they started with.
type Client struct {
	mu       sync.Mutex
	settings Settings
	httpc    *http.Client
}

// NewClient creates a Client with the given settings. No http.Client is
// built until the first request.
func NewClient(s Settings) *Client {
	return &Client{settings: s}
}

// Settings returns a copy of the current settings.
func (c *Client) Settings() Settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settings
}

// Update mutates the settings and invalidates the shared client. Only
// subsequent requests see the new configuration.
func (c *Client) Update(fn func(*Settings)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if fn != nil {
		fn(&c.settings)
	}
	c.httpc = nil
}

// HTTP returns the shared client, building it from the current settings
// when needed.
func (c *Client) HTTP() *http.Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.httpc == nil {
		c.httpc = build(c.settings)
	}
	return c.httpc
}

func build(s Settings) *http.Client {
	base := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxConnsPerHost:     s.MaximumSimultaneousDownloads,
		MaxIdleConnsPerHost: s.MaximumSimultaneousDownloads,
	}
	var rt http.RoundTripper = base
	if s.Cache.RequestCachePolicy != ReloadIgnoringLocalCacheData && s.Cache.DiskPath != "" {
		store := diskv.New(diskv.Options{
			BasePath:     filepath.Join(os.TempDir(), s.Cache.DiskPath),
			CacheSizeMax: uint64(s.Cache.MemoryCapacityBytes),
		})
		cached := httpcache.NewTransport(diskcache.NewWithDiskv(store))
		cached.Transport = base
		rt = cached
	}
	return &http.Client{
		Transport: rt,
		Timeout:   s.RequestTimeout,
	}
}
