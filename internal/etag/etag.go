// Package etag computes the content fingerprint used for cache validation
// and matches it against HTTP If-None-Match headers.
package etag

import (
	"crypto/md5"
	"encoding/hex"
	"io"
	"strings"
)

// Compute returns the hex digest over the version tag followed by each
// serialized artifact, in order. md5 is fine here: the fingerprint is a
// cache-busting token, not an integrity guarantee.
func Compute(version string, blobs ...[]byte) string {
	h := md5.New()
	_, _ = io.WriteString(h, version)
	for _, b := range blobs {
		_, _ = h.Write(b)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Match reports whether an If-None-Match header value accepts the given
// fingerprint. The header is a comma-separated list of entity tags,
// optionally quoted or weak-prefixed; "*" matches any current tag.
func Match(header, tag string) bool {
	if header == "" || tag == "" {
		return false
	}
	for _, part := range strings.Split(header, ",") {
		part = strings.TrimSpace(part)
		if part == "*" {
			return true
		}
		part = strings.TrimPrefix(part, "W/")
		part = strings.Trim(part, `"`)
		if part == tag {
			return true
		}
	}
	return false
}
