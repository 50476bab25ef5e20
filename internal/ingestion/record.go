// Package ingestion contains the normalization and idempotent-upsert core of
// the feedback pipeline: per-channel normalizers that map source-native
// records into one canonical shape, a deterministic identity resolver, the
// upsert engine that reconciles batches against the raw_feedback table, and
// the channel registry that tracks ingestion watermarks.
package ingestion

import (
	"time"

	"github.com/google/uuid"
)

// SourceRecord is the raw shape returned by a fetch adapter for one channel:
// an opaque mapping of source field names to values. The core never assumes
// anything about its keys beyond what the channel's own normalizer reads.
type SourceRecord map[string]interface{}

// String returns the value under key when it is a non-empty string.
func (r SourceRecord) String(key string) string {
	if v, ok := r[key].(string); ok {
		return v
	}
	return ""
}

// Float returns the numeric value under key, accepting the types JSON
// decoding produces.
func (r SourceRecord) Float(key string) (float64, bool) {
	switch v := r[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}

// Map returns the nested object under key, or nil.
func (r SourceRecord) Map(key string) map[string]interface{} {
	if v, ok := r[key].(map[string]interface{}); ok {
		return v
	}
	return nil
}

// Clone returns a shallow copy. Enrichers modify copies so the adapter's
// original record stays intact for the metadata audit trail.
func (r SourceRecord) Clone() SourceRecord {
	out := make(SourceRecord, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Record is the canonical feedback record produced by a normalizer and
// consumed exactly once by the upsert engine. It is immutable once built.
type Record struct {
	ChannelID  uuid.UUID
	ExternalID string // empty means no resolvable identity (legacy dedup path)
	AuthorName string
	Rating     *float64
	RatingText string
	Content    string
	SourceURL  string

	// ReviewCreatedAt is the authoring time, or the ingestion time when the
	// source value was unparseable; Metadata then carries created_time_missing.
	ReviewCreatedAt time.Time

	Metadata map[string]interface{}
}
