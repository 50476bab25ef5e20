package ingestion

import (
	"encoding/json"
	"strings"
	"time"

	"omni-feedback/internal/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Summary reports what happened to one channel's batch.
type Summary struct {
	Fetched    int `json:"fetched"`
	Normalized int `json:"normalized"`
	Inserted   int `json:"inserted"`
	Updated    int `json:"updated"`
	Duplicate  int `json:"duplicate"`
	Invalid    int `json:"invalid"`
	Failed     int `json:"failed"`
}

// Applied is the count of rows successfully inserted or updated.
func (s Summary) Applied() int {
	return s.Inserted + s.Updated
}

// Engine reconciles batches of canonical records against the feedback store:
// update-if-exists, insert-if-absent, skip-if-invalid. One bad row never
// aborts the batch.
type Engine struct {
	store FeedbackStore
}

// NewEngine creates an upsert engine over store.
func NewEngine(store FeedbackStore) *Engine {
	return &Engine{store: store}
}

// UpsertBatch processes records in batch order and returns the per-outcome
// counts. Storage failures on individual records are logged with the record's
// index and payload and absorbed into Summary.Failed.
func (e *Engine) UpsertBatch(channel string, records []*Record) Summary {
	var summary Summary

	for idx, rec := range records {
		outcome, err := e.upsertOne(rec)
		if err != nil {
			summary.Failed++
			logrus.WithFields(logrus.Fields{
				"channel": channel,
				"index":   idx,
				"payload": serializeRecord(rec),
			}).WithError(err).Error("Failed to upsert feedback record")
			continue
		}

		switch outcome {
		case outcomeInserted:
			summary.Inserted++
		case outcomeUpdated:
			summary.Updated++
		case outcomeDuplicate:
			summary.Duplicate++
		case outcomeInvalid:
			summary.Invalid++
		}
	}

	logrus.WithFields(logrus.Fields{
		"channel":   channel,
		"inserted":  summary.Inserted,
		"updated":   summary.Updated,
		"duplicate": summary.Duplicate,
		"invalid":   summary.Invalid,
		"failed":    summary.Failed,
	}).Info("Upsert batch completed")

	return summary
}

type upsertOutcome int

const (
	outcomeInserted upsertOutcome = iota
	outcomeUpdated
	outcomeDuplicate
	outcomeInvalid
)

func (e *Engine) upsertOne(rec *Record) (upsertOutcome, error) {
	// Normalizers already drop empty content; this guards records that reach
	// the engine through other paths.
	if strings.TrimSpace(rec.Content) == "" {
		return outcomeInvalid, nil
	}

	if rec.ExternalID != "" {
		existing, err := e.store.FindByExternalID(rec.ChannelID, rec.ExternalID)
		if err != nil {
			return 0, err
		}
		if existing != nil {
			applyMutableFields(existing, rec)
			if err := e.store.Update(existing); err != nil {
				return 0, err
			}
			return outcomeUpdated, nil
		}
		if err := e.store.Insert(newRow(rec)); err != nil {
			return 0, err
		}
		return outcomeInserted, nil
	}

	// No resolvable identity: dedup by the content compound. An exact match
	// is skipped, never rewritten.
	existing, err := e.store.FindByContent(rec.ChannelID, rec.AuthorName, rec.Rating, rec.Content)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		return outcomeDuplicate, nil
	}
	if err := e.store.Insert(newRow(rec)); err != nil {
		return 0, err
	}
	return outcomeInserted, nil
}

func newRow(rec *Record) *models.Feedback {
	row := &models.Feedback{
		ID:              uuid.New(),
		ChannelID:       rec.ChannelID,
		AuthorName:      rec.AuthorName,
		Rating:          rec.Rating,
		RatingText:      rec.RatingText,
		Content:         rec.Content,
		ReviewCreatedAt: rec.ReviewCreatedAt,
		Metadata:        serializeMetadata(rec.Metadata),
	}
	if rec.ExternalID != "" {
		externalID := rec.ExternalID
		row.ExternalID = &externalID
	}
	if rec.SourceURL != "" {
		sourceURL := rec.SourceURL
		row.SourceURL = &sourceURL
	}
	return row
}

// applyMutableFields rewrites every non-identity field on an existing row and
// stamps the row-update watermark.
func applyMutableFields(row *models.Feedback, rec *Record) {
	row.AuthorName = rec.AuthorName
	row.Rating = rec.Rating
	row.RatingText = rec.RatingText
	row.Content = rec.Content
	row.ReviewCreatedAt = rec.ReviewCreatedAt
	row.Metadata = serializeMetadata(rec.Metadata)

	row.SourceURL = nil
	if rec.SourceURL != "" {
		sourceURL := rec.SourceURL
		row.SourceURL = &sourceURL
	}

	now := time.Now()
	row.ReviewUpdatedAt = &now
}

func serializeMetadata(metadata map[string]interface{}) string {
	if len(metadata) == 0 {
		return "{}"
	}
	data, err := json.Marshal(metadata)
	if err != nil {
		// Raw source payloads can hold values json cannot encode; keep the
		// row and record what happened instead of failing it.
		logrus.WithError(err).Warn("Failed to serialize record metadata")
		return `{"metadata_error":"unserializable"}`
	}
	return string(data)
}

func serializeRecord(rec *Record) string {
	data, err := json.Marshal(rec)
	if err != nil {
		return "<unserializable record>"
	}
	return string(data)
}
