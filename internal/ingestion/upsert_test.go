package ingestion

import (
	"fmt"
	"testing"
	"time"

	"omni-feedback/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeRecord(channelID uuid.UUID, externalID, author, content string, rating *float64) *Record {
	return &Record{
		ChannelID:       channelID,
		ExternalID:      externalID,
		AuthorName:      author,
		Rating:          rating,
		Content:         content,
		ReviewCreatedAt: time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
		Metadata:        map[string]interface{}{"source": "test"},
	}
}

func floatPtr(v float64) *float64 { return &v }

func TestUpsertBatch_IdempotentReingestion(t *testing.T) {
	db := setupTestDB(t)
	engine := NewEngine(NewGormStore(db))
	channelID := uuid.New()

	batch := []*Record{
		makeRecord(channelID, "ext-1", "Alice", "great stay", floatPtr(9.5)),
		makeRecord(channelID, "ext-2", "Bob", "decent breakfast", floatPtr(7.0)),
	}

	first := engine.UpsertBatch("test", batch)
	assert.Equal(t, 2, first.Inserted)
	assert.Equal(t, 0, first.Updated)
	assert.EqualValues(t, 2, countRows(t, db))

	second := engine.UpsertBatch("test", batch)
	assert.Equal(t, 0, second.Inserted)
	assert.Equal(t, 2, second.Updated)
	assert.EqualValues(t, 2, countRows(t, db), "re-ingestion must not grow the table")
}

func TestUpsertBatch_UpdateRewritesMutableFields(t *testing.T) {
	db := setupTestDB(t)
	engine := NewEngine(NewGormStore(db))
	channelID := uuid.New()

	engine.UpsertBatch("test", []*Record{
		makeRecord(channelID, "ext-1", "Alice", "first version", floatPtr(8.0)),
	})

	summary := engine.UpsertBatch("test", []*Record{
		makeRecord(channelID, "ext-1", "Alice Smith", "edited review", floatPtr(6.0)),
	})
	assert.Equal(t, 1, summary.Updated)

	var row models.Feedback
	require.NoError(t, db.Where("external_id = ?", "ext-1").First(&row).Error)
	assert.Equal(t, "Alice Smith", row.AuthorName)
	assert.Equal(t, "edited review", row.Content)
	require.NotNil(t, row.Rating)
	assert.InDelta(t, 6.0, *row.Rating, 1e-9)
	assert.NotNil(t, row.ReviewUpdatedAt, "update must stamp the row watermark")
}

func TestUpsertBatch_SameExternalIDDifferentChannels(t *testing.T) {
	db := setupTestDB(t)
	engine := NewEngine(NewGormStore(db))

	summaryA := engine.UpsertBatch("a", []*Record{
		makeRecord(uuid.New(), "ext-1", "Alice", "channel A review", nil),
	})
	summaryB := engine.UpsertBatch("b", []*Record{
		makeRecord(uuid.New(), "ext-1", "Alice", "channel B review", nil),
	})

	assert.Equal(t, 1, summaryA.Inserted)
	assert.Equal(t, 1, summaryB.Inserted, "identity is scoped per channel")
	assert.EqualValues(t, 2, countRows(t, db))
}

func TestUpsertBatch_LegacyCompoundDedup(t *testing.T) {
	db := setupTestDB(t)
	engine := NewEngine(NewGormStore(db))
	channelID := uuid.New()

	noID := []*Record{makeRecord(channelID, "", "Carol", "no identity here", nil)}

	first := engine.UpsertBatch("test", noID)
	assert.Equal(t, 1, first.Inserted)

	second := engine.UpsertBatch("test", noID)
	assert.Equal(t, 0, second.Inserted)
	assert.Equal(t, 0, second.Updated, "exact duplicates are skipped, never rewritten")
	assert.Equal(t, 1, second.Duplicate)
	assert.EqualValues(t, 1, countRows(t, db))

	var row models.Feedback
	require.NoError(t, db.First(&row).Error)
	assert.Nil(t, row.ExternalID)
}

func TestUpsertBatch_EmptyContentCountsInvalid(t *testing.T) {
	db := setupTestDB(t)
	engine := NewEngine(NewGormStore(db))
	channelID := uuid.New()

	summary := engine.UpsertBatch("test", []*Record{
		makeRecord(channelID, "ext-1", "Alice", "   ", nil),
		makeRecord(channelID, "ext-2", "Bob", "real content", nil),
	})

	assert.Equal(t, 1, summary.Invalid)
	assert.Equal(t, 1, summary.Inserted)
	assert.Equal(t, 1, summary.Applied())
	assert.EqualValues(t, 1, countRows(t, db))
}

// faultStore fails inserts for one designated content value so tests can
// simulate a storage fault mid-batch.
type faultStore struct {
	FeedbackStore
	failContent string
}

func (s *faultStore) Insert(row *models.Feedback) error {
	if row.Content == s.failContent {
		return fmt.Errorf("simulated constraint violation")
	}
	return s.FeedbackStore.Insert(row)
}

func TestUpsertBatch_PerRecordIsolation(t *testing.T) {
	db := setupTestDB(t)
	store := &faultStore{FeedbackStore: NewGormStore(db), failContent: "poison row"}
	engine := NewEngine(store)
	channelID := uuid.New()

	batch := []*Record{
		makeRecord(channelID, "ext-0", "A", "row zero", nil),
		makeRecord(channelID, "ext-1", "B", "row one", nil),
		makeRecord(channelID, "ext-2", "C", "poison row", nil),
		makeRecord(channelID, "ext-3", "D", "row three", nil),
		makeRecord(channelID, "ext-4", "E", "row four", nil),
	}

	summary := engine.UpsertBatch("test", batch)

	assert.Equal(t, 4, summary.Inserted)
	assert.Equal(t, 1, summary.Failed)
	assert.EqualValues(t, 4, countRows(t, db))

	for _, ext := range []string{"ext-0", "ext-1", "ext-3", "ext-4"} {
		var row models.Feedback
		assert.NoError(t, db.Where("external_id = ?", ext).First(&row).Error,
			"record %s must survive the mid-batch fault", ext)
	}
}
