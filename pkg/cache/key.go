package cache

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// KeyPrefix namespaces every cache key produced by this package.
const KeyPrefix = "content"

// Key identifies a cached API response.
type Key struct {
	// Endpoint is the logical API path (e.g., "/videos" or "/videos/42")
	Endpoint string

	// Params are the normalized query parameters sent with the request
	Params url.Values
}

// String generates a deterministic cache key string.
// Format: content:endpoint:param1=val1:param2=val2
//
// Parameter names are sorted, so two option sets that differ only in
// insertion order map to the same key. Endpoint segments, names and values
// are query-escaped so that separators inside them cannot collide with
// other keys.
//
// Example:
//
//	content:videos:category=ai:page=1
func (k Key) String() string {
	parts := []string{KeyPrefix}

	if endpoint := strings.Trim(k.Endpoint, "/"); endpoint != "" {
		segments := strings.Split(endpoint, "/")
		for i, segment := range segments {
			segments[i] = url.QueryEscape(segment)
		}
		parts = append(parts, strings.Join(segments, "/"))
	}

	if len(k.Params) > 0 {
		names := make([]string, 0, len(k.Params))
		for name := range k.Params {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			values := k.Params[name]
			if len(values) == 0 {
				continue
			}
			escaped := make([]string, len(values))
			for i, v := range values {
				escaped[i] = url.QueryEscape(v)
			}
			parts = append(parts, fmt.Sprintf("%s=%s", url.QueryEscape(name), strings.Join(escaped, ",")))
		}
	}

	return strings.Join(parts, ":")
}
