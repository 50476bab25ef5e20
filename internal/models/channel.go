package models

import (
	"time"

	"github.com/google/uuid"
)

// Channel type values.
const (
	ChannelTypeAPI   = "api"
	ChannelTypeCrawl = "crawl"
)

// Channel represents one configured feedback source (a page, a place listing,
// a hotel crawl target). Name is the natural key used for get-or-create.
type Channel struct {
	ID             uuid.UUID `json:"id" db:"id" gorm:"primaryKey;type:uuid"`
	Name           string    `json:"name" db:"name" gorm:"uniqueIndex;not null"`
	Type           string    `json:"type" db:"type" gorm:"not null"` // "api" or "crawl"
	BaseURL        string    `json:"base_url" db:"base_url"`
	LastIngestedAt time.Time `json:"last_ingested_at" db:"last_ingested_at"`
	CreatedAt      time.Time `json:"created_at" db:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at" gorm:"autoUpdateTime"`

	// Relationships
	Feedback []Feedback `json:"feedback,omitempty" gorm:"foreignKey:ChannelID"`
}

// TableName sets the table name for the Channel model
func (Channel) TableName() string {
	return "channels"
}
