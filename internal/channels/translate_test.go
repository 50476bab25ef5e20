package channels

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"omni-feedback/internal/ingestion"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockTranslator is a mock implementation of the Translator interface
type MockTranslator struct {
	mock.Mock
}

func (m *MockTranslator) Translate(ctx context.Context, text string) (*TranslationResult, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*TranslationResult), args.Error(1)
}

func TestTranslateEnricher_TranslatesContentField(t *testing.T) {
	translator := new(MockTranslator)
	translator.On("Translate", mock.Anything, "Great place").
		Return(&TranslationResult{Text: "Tempat yang bagus", DetectedLanguage: "en"}, nil)

	enricher := NewTranslateEnricher(translator, "text")
	rec := ingestion.SourceRecord{"text": "Great place", "author_name": "John"}

	out := enricher.Enrich(context.Background(), rec)
	assert.Equal(t, "Tempat yang bagus", out.String("text"))
	assert.Equal(t, true, out["translated"])
	assert.Equal(t, "Great place", out.String("original_content"))
	assert.Equal(t, "en", out.String("detected_language"))

	// The adapter's record is untouched.
	assert.Equal(t, "Great place", rec.String("text"))
	translator.AssertExpectations(t)
}

func TestTranslateEnricher_AlreadyTargetLanguage(t *testing.T) {
	translator := new(MockTranslator)
	translator.On("Translate", mock.Anything, "Tempat yang bagus").
		Return(&TranslationResult{Text: "Tempat yang bagus", DetectedLanguage: "id"}, nil)

	enricher := NewTranslateEnricher(translator, "text")
	out := enricher.Enrich(context.Background(), ingestion.SourceRecord{"text": "Tempat yang bagus"})

	assert.Equal(t, false, out["translated"])
	assert.Equal(t, "Tempat yang bagus", out.String("text"))
}

func TestTranslateEnricher_FailurePassesOriginalThrough(t *testing.T) {
	translator := new(MockTranslator)
	translator.On("Translate", mock.Anything, "Great place").
		Return(nil, fmt.Errorf("endpoint unreachable"))

	enricher := NewTranslateEnricher(translator, "text")
	rec := ingestion.SourceRecord{"text": "Great place"}

	out := enricher.Enrich(context.Background(), rec)
	assert.Equal(t, "Great place", out.String("text"))
	_, flagged := out["translated"]
	assert.False(t, flagged, "failed translation leaves the record unannotated")
}

func TestTranslateEnricher_EmptyFieldSkipsTranslation(t *testing.T) {
	translator := new(MockTranslator)
	enricher := NewTranslateEnricher(translator, "text")

	out := enricher.Enrich(context.Background(), ingestion.SourceRecord{"author_name": "John"})
	assert.Equal(t, "", out.String("text"))
	translator.AssertNotCalled(t, "Translate")
}

func TestHTTPTranslator_Translate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		fmt.Fprint(w, `{"translatedText":"Tempat yang bagus","detectedLanguage":{"language":"en"}}`)
	}))
	defer server.Close()

	translator := NewHTTPTranslator(server.URL, "id")
	result, err := translator.Translate(context.Background(), "Great place")
	require.NoError(t, err)
	assert.Equal(t, "Tempat yang bagus", result.Text)
	assert.Equal(t, "en", result.DetectedLanguage)
}

func TestHTTPTranslator_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	translator := NewHTTPTranslator(server.URL, "id")
	_, err := translator.Translate(context.Background(), "Great place")
	assert.Error(t, err)
}
