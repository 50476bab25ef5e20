package channels

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"omni-feedback/internal/ingestion"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

// TranslationResult is a translated text plus the language it came from.
type TranslationResult struct {
	Text             string
	DetectedLanguage string
}

// Translator translates review content into the pipeline's target language.
type Translator interface {
	Translate(ctx context.Context, text string) (*TranslationResult, error)
}

// HTTPTranslator calls a LibreTranslate-compatible endpoint.
type HTTPTranslator struct {
	endpoint string
	target   string
	client   *resty.Client
}

// NewHTTPTranslator creates a translator against endpoint, translating into
// the target language code.
func NewHTTPTranslator(endpoint, target string) *HTTPTranslator {
	return &HTTPTranslator{
		endpoint: endpoint,
		target:   target,
		client:   resty.New().SetTimeout(10 * time.Second),
	}
}

type translateResponse struct {
	TranslatedText   string `json:"translatedText"`
	DetectedLanguage struct {
		Language string `json:"language"`
	} `json:"detectedLanguage"`
}

func (t *HTTPTranslator) Translate(ctx context.Context, text string) (*TranslationResult, error) {
	resp, err := t.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{
			"q":      text,
			"source": "auto",
			"target": t.target,
			"format": "text",
		}).
		Post(t.endpoint)
	if err != nil {
		return nil, fmt.Errorf("translate request failed: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("translate endpoint returned status %d", resp.StatusCode())
	}

	var result translateResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("failed to decode translation: %w", err)
	}
	return &TranslationResult{
		Text:             result.TranslatedText,
		DetectedLanguage: result.DetectedLanguage.Language,
	}, nil
}

// TranslateEnricher applies best-effort translation to one field of a raw
// record before normalization. On any failure the original record passes
// through unchanged; when translation happens, the enriched record records
// what the content looked like before.
type TranslateEnricher struct {
	translator Translator
	field      string
}

var _ ingestion.Enricher = (*TranslateEnricher)(nil)

// NewTranslateEnricher wraps translator around the named record field.
func NewTranslateEnricher(translator Translator, field string) *TranslateEnricher {
	return &TranslateEnricher{translator: translator, field: field}
}

func (e *TranslateEnricher) Enrich(ctx context.Context, rec ingestion.SourceRecord) ingestion.SourceRecord {
	text := rec.String(e.field)
	if text == "" {
		return rec
	}

	result, err := e.translator.Translate(ctx, text)
	if err != nil {
		logrus.WithError(err).Warn("Translation failed, passing original content through")
		return rec
	}

	out := rec.Clone()
	out[e.field] = result.Text
	out["translated"] = result.Text != text
	out["original_content"] = text
	out["detected_language"] = result.DetectedLanguage
	return out
}
