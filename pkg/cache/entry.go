package cache

import (
	"time"
)

// DefaultTTL is the freshness window shared by all entries of a store.
const DefaultTTL = 5 * time.Minute

// entry is a cached response body. It never leaves the store.
type entry struct {
	// Value is the raw, already validated response body
	Value []byte `json:"value"`

	// StoredAt is when the value was written, set together with Value
	StoredAt time.Time `json:"stored_at"`
}

// isFresh reports whether the entry is still within ttl at now.
func (e *entry) isFresh(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.StoredAt) < ttl
}

// age returns how long ago the entry was stored.
// Returns 0 for entries stamped in the future (clock skew between processes).
func (e *entry) age(now time.Time) time.Duration {
	age := now.Sub(e.StoredAt)
	if age < 0 {
		return 0
	}
	return age
}
