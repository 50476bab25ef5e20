package ingestion

import (
	"testing"
	"time"

	"omni-feedback/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_GetOrCreateIdempotent(t *testing.T) {
	db := setupTestDB(t)
	registry := NewRegistry(db)

	first, err := registry.GetOrCreate("Facebook", models.ChannelTypeAPI, "https://graph.facebook.com/v24.0")
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, first)

	second, err := registry.GetOrCreate("Facebook", models.ChannelTypeAPI, "https://graph.facebook.com/v24.0")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	var count int64
	require.NoError(t, db.Model(&models.Channel{}).Count(&count).Error)
	assert.EqualValues(t, 1, count, "repeated get-or-create must not duplicate channels")
}

func TestRegistry_CreateSetsWatermark(t *testing.T) {
	db := setupTestDB(t)
	registry := NewRegistry(db)

	before := time.Now().Add(-time.Second)
	id, err := registry.GetOrCreate("Traveloka", models.ChannelTypeCrawl, "https://example.test/hotel")
	require.NoError(t, err)

	var channel models.Channel
	require.NoError(t, db.First(&channel, "id = ?", id).Error)
	assert.True(t, channel.LastIngestedAt.After(before), "new channels start with a fresh watermark")
}

func TestRegistry_MarkIngestedAdvancesWatermark(t *testing.T) {
	db := setupTestDB(t)
	registry := NewRegistry(db)

	id, err := registry.GetOrCreate("Google Maps", models.ChannelTypeAPI, "")
	require.NoError(t, err)

	var channel models.Channel
	require.NoError(t, db.First(&channel, "id = ?", id).Error)
	previous := channel.LastIngestedAt

	// No feedback rows exist; the watermark still advances on a run.
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, registry.MarkIngested(id))

	require.NoError(t, db.First(&channel, "id = ?", id).Error)
	assert.False(t, channel.LastIngestedAt.Before(previous))
	assert.True(t, channel.LastIngestedAt.After(previous))
}

func TestRegistry_MarkIngestedUnknownChannel(t *testing.T) {
	db := setupTestDB(t)
	registry := NewRegistry(db)

	err := registry.MarkIngested(uuid.New())
	assert.Error(t, err)
}
