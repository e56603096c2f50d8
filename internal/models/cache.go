package models

import "time"

// CacheEntry is one row of a computed-result cache table (KPI or chart).
// At most one entry exists per key; writes replace. Entries never expire in
// storage; staleness is a read-time decision made by the consumer.
type CacheEntry struct {
	// Key identifies the cached computation, e.g. "kpi:collection_efficiency".
	Key string

	// Payload is the serialized (JSON) computed result.
	Payload string

	// CreatedAt is when the payload was computed.
	CreatedAt time.Time
}

// Stale reports whether the entry is older than ttl at the given instant.
func (e CacheEntry) Stale(ttl time.Duration, now time.Time) bool {
	return now.Sub(e.CreatedAt) >= ttl
}
