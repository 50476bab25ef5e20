package ingestion

import (
	"errors"
	"fmt"
	"time"

	"omni-feedback/internal/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Registry maps human-readable channel names to durable channel rows and
// tracks the per-channel ingestion watermark. Name is the natural key, so
// GetOrCreate is safe to call on every run.
type Registry struct {
	db *gorm.DB
}

// NewRegistry creates a channel registry backed by db.
func NewRegistry(db *gorm.DB) *Registry {
	return &Registry{db: db}
}

// GetOrCreate returns the id of the channel with the given name, creating it
// if absent. A freshly created channel gets its watermark set to now.
func (r *Registry) GetOrCreate(name, channelType, baseURL string) (uuid.UUID, error) {
	var channel models.Channel
	err := r.db.Where("name = ?", name).First(&channel).Error
	if err == nil {
		return channel.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return uuid.Nil, fmt.Errorf("failed to look up channel %q: %w", name, err)
	}

	channel = models.Channel{
		ID:             uuid.New(),
		Name:           name,
		Type:           channelType,
		BaseURL:        baseURL,
		LastIngestedAt: time.Now(),
	}
	if err := r.db.Create(&channel).Error; err != nil {
		return uuid.Nil, fmt.Errorf("failed to create channel %q: %w", name, err)
	}

	logrus.WithFields(logrus.Fields{
		"channel": name,
		"type":    channelType,
	}).Info("Created channel")
	return channel.ID, nil
}

// MarkIngested advances the channel's watermark to now. It runs after every
// completed ingestion pass, including runs that changed zero rows, so a
// recently checked channel is distinguishable from a stale one.
func (r *Registry) MarkIngested(channelID uuid.UUID) error {
	result := r.db.Model(&models.Channel{}).
		Where("id = ?", channelID).
		Update("last_ingested_at", time.Now())
	if result.Error != nil {
		return fmt.Errorf("failed to update channel watermark: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("no channel with id %s", channelID)
	}
	return nil
}
