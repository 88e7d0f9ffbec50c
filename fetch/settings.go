// Package fetch wraps the shared HTTP transport: process-wide settings,
// the lazily built client, and the adapter that turns URLs into pending
// cancellable operations.
package fetch

import "time"

// CachePolicy selects how requests consult the transport cache.
// Values mirror the request cache policies of the settings surface.
type CachePolicy string

const (
	UseProtocolCachePolicy       CachePolicy = "useProtocolCachePolicy"
	ReloadIgnoringLocalCacheData CachePolicy = "reloadIgnoringLocalCacheData"
	ReturnCacheDataElseLoad      CachePolicy = "returnCacheDataElseLoad"
	ReturnCacheDataDontLoad      CachePolicy = "returnCacheDataDontLoad"
)

// ParseCachePolicy converts a string to a CachePolicy, defaulting to
// UseProtocolCachePolicy for unknown values.
func ParseCachePolicy(s string) CachePolicy {
	switch CachePolicy(s) {
	case ReloadIgnoringLocalCacheData:
		return ReloadIgnoringLocalCacheData
	case ReturnCacheDataElseLoad:
		return ReturnCacheDataElseLoad
	case ReturnCacheDataDontLoad:
		return ReturnCacheDataDontLoad
	case UseProtocolCachePolicy:
		fallthrough
	default:
		return UseProtocolCachePolicy
	}
}

// CacheSettings configures the transport-level response cache.
type CacheSettings struct {
	MemoryCapacityBytes int64
	// DiskCapacityBytes is advisory; the disk store does not evict on size.
	DiskCapacityBytes  int64
	RequestCachePolicy CachePolicy
	DiskPath           string
}

// Settings is the mutable process-wide configuration for real downloads.
// Mutate it through Client.Update so the shared client is invalidated.
type Settings struct {
	RequestTimeout               time.Duration
	MaximumSimultaneousDownloads int
	Cache                        CacheSettings
}

// DefaultSettings returns the standard configuration: 10s timeout, 4
// simultaneous downloads, 20 MiB memory / 100 MiB disk cache.
func DefaultSettings() Settings {
	return Settings{
		RequestTimeout:               10 * time.Second,
		MaximumSimultaneousDownloads: 4,
		Cache: CacheSettings{
			MemoryCapacityBytes: 20 * 1024 * 1024,
			DiskCapacityBytes:   100 * 1024 * 1024,
			RequestCachePolicy:  UseProtocolCachePolicy,
			DiskPath:            "moaImageDownloader",
		},
	}
}
