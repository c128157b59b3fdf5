package feed

import (
	"fmt"
	"net/url"
	"strings"
)

// Query parameter names shared with the original feed endpoint contract.
const (
	QueryVar     = "stream"
	KeyQueryVar  = "key"
	TypeQueryVar = "type"
)

// BuildURL constructs the canonical feed URL for a key. With pretty
// permalinks the feed lives under /feed/stream/; otherwise it hangs off
// the site root as ?feed=stream. Pre-existing query parameters on the
// base URL are merged, never clobbered, and the key is percent-encoded.
func BuildURL(siteURL, key string, pretty bool) (string, error) {
	u, err := url.Parse(siteURL)
	if err != nil {
		return "", fmt.Errorf("parse site url: %w", err)
	}

	q := u.Query()
	if pretty {
		u.Path = strings.TrimRight(u.Path, "/") + "/feed/" + QueryVar + "/"
	} else {
		q.Set("feed", QueryVar)
	}
	q.Set(KeyQueryVar, key)
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// WithType returns the feed URL with the rendering format appended.
func WithType(feedURL, format string) (string, error) {
	return AddParams(feedURL, map[string]string{TypeQueryVar: format})
}

// AddParams merges query parameters into an existing URL.
func AddParams(rawURL string, params map[string]string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	q := u.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
