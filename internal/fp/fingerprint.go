package fp

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// NormalizeURL trims surrounding whitespace. Further normalization rules
// (e.g. percent-encoding canonicalization) can be added later as needed.
func NormalizeURL(u string) string {
	return strings.TrimSpace(u)
}

// Fingerprint computes a stable hex-encoded SHA-256 over the normalized
// URL. Repeat fetches of the same URL share a fingerprint, which lets
// clients correlate history records.
func Fingerprint(url string) string {
	sum := sha256.Sum256([]byte(NormalizeURL(url)))
	return hex.EncodeToString(sum[:])
}
