package ingestion

import (
	"errors"
	"fmt"

	"omni-feedback/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FeedbackStore is the persistence surface the upsert engine reconciles
// against. Lookups return (nil, nil) when no row matches.
type FeedbackStore interface {
	// FindByExternalID looks up the row for (channelID, externalID).
	FindByExternalID(channelID uuid.UUID, externalID string) (*models.Feedback, error)

	// FindByContent looks up a row by the (author, rating, content) compound
	// within a channel; used for records with no resolvable identity.
	FindByContent(channelID uuid.UUID, author string, rating *float64, content string) (*models.Feedback, error)

	Insert(row *models.Feedback) error
	Update(row *models.Feedback) error
}

// GormStore implements FeedbackStore over the raw_feedback table.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a feedback store backed by db.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) FindByExternalID(channelID uuid.UUID, externalID string) (*models.Feedback, error) {
	var row models.Feedback
	err := s.db.Where("channel_id = ? AND external_id = ?", channelID, externalID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up feedback by external id: %w", err)
	}
	return &row, nil
}

func (s *GormStore) FindByContent(channelID uuid.UUID, author string, rating *float64, content string) (*models.Feedback, error) {
	query := s.db.Where("channel_id = ? AND author_name = ? AND content = ?", channelID, author, content)
	if rating != nil {
		query = query.Where("rating = ?", *rating)
	} else {
		query = query.Where("rating IS NULL")
	}

	var row models.Feedback
	err := query.First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up feedback by content: %w", err)
	}
	return &row, nil
}

func (s *GormStore) Insert(row *models.Feedback) error {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if err := s.db.Create(row).Error; err != nil {
		return fmt.Errorf("failed to insert feedback: %w", err)
	}
	return nil
}

func (s *GormStore) Update(row *models.Feedback) error {
	if err := s.db.Save(row).Error; err != nil {
		return fmt.Errorf("failed to update feedback: %w", err)
	}
	return nil
}
