package models

import (
	"time"

	"github.com/google/uuid"
)

// Feedback is one persisted raw feedback row: a review or comment pulled from
// a channel and normalized into the canonical shape.
//
// ExternalID is the source system's stable identifier when one exists, or a
// deterministic content fingerprint when it does not. Rows that predate
// identity resolution carry a null ExternalID and are deduplicated by the
// (author_name, rating, content) compound instead. The composite unique index
// on (channel_id, external_id) backstops the upsert existence check against
// concurrent runs.
type Feedback struct {
	ID         uuid.UUID `json:"id" db:"id" gorm:"primaryKey;type:uuid"`
	ChannelID  uuid.UUID `json:"channel_id" db:"channel_id" gorm:"type:uuid;not null;uniqueIndex:idx_feedback_channel_external,priority:1"`
	ExternalID *string   `json:"external_id" db:"external_id" gorm:"uniqueIndex:idx_feedback_channel_external,priority:2"`
	AuthorName string    `json:"author_name" db:"author_name"`

	// Rating holds the numeric rating when the source has one and it parses.
	// RatingText keeps the source-native representation (e.g. "4/5") for
	// sources whose documented policy preserves the original format.
	Rating     *float64 `json:"rating" db:"rating"`
	RatingText string   `json:"rating_text" db:"rating_text"`

	Content   string  `json:"content" db:"content" gorm:"type:text;not null"`
	SourceURL *string `json:"source_url" db:"source_url"`

	// ReviewCreatedAt is when the author wrote the feedback (or the ingestion
	// time when the source timestamp was unparseable; metadata flags that).
	// ReviewUpdatedAt is stamped every time the upsert engine rewrites the row.
	ReviewCreatedAt time.Time  `json:"review_created_at" db:"review_created_at" gorm:"not null"`
	ReviewUpdatedAt *time.Time `json:"review_updated_at" db:"review_updated_at"`

	// Metadata is a JSON object with source provenance (the verbatim raw
	// record, channel-specific fields) and normalization flags.
	Metadata string `json:"metadata" db:"metadata" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at" db:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at" gorm:"autoUpdateTime"`
}

// TableName sets the table name for the Feedback model
func (Feedback) TableName() string {
	return "raw_feedback"
}
